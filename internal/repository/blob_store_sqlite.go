package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"martapp/kiosk/internal/model"
)

type sqliteBlobStore struct {
	database *Database
}

// NewSQLiteBlobStore returns a BlobStore over the shared local database.
func NewSQLiteBlobStore(database *Database) BlobStore {
	return &sqliteBlobStore{database: database}
}

func (s *sqliteBlobStore) Get(ctx context.Context, key string) (*model.BlobRecord, error) {
	db, err := s.database.Get(ctx)
	if err != nil {
		return nil, err
	}

	var record model.BlobRecord
	if err := db.Where("key = ?", key).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlobMissing
		}
		return nil, err
	}
	return &record, nil
}

func (s *sqliteBlobStore) Put(ctx context.Context, record *model.BlobRecord) error {
	db, err := s.database.Get(ctx)
	if err != nil {
		return err
	}

	record.Size = int64(len(record.Data))
	return writeError(db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "mime_type", "size", "data"}),
	}).Create(record).Error)
}

func (s *sqliteBlobStore) List(ctx context.Context) ([]model.BlobRecord, error) {
	db, err := s.database.Get(ctx)
	if err != nil {
		return nil, err
	}

	var records []model.BlobRecord
	err = db.Select("key", "name", "mime_type", "size", "created_at").
		Order("created_at").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *sqliteBlobStore) Delete(ctx context.Context, key string) error {
	db, err := s.database.Get(ctx)
	if err != nil {
		return err
	}
	return writeError(db.Where("key = ?", key).Delete(&model.BlobRecord{}).Error)
}

func (s *sqliteBlobStore) Clear(ctx context.Context) error {
	db, err := s.database.Get(ctx)
	if err != nil {
		return err
	}
	return writeError(db.Where("1 = 1").Delete(&model.BlobRecord{}).Error)
}
