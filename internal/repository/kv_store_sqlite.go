package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"martapp/kiosk/internal/model"
)

type sqliteKVStore struct {
	database *Database
}

// NewSQLiteKVStore returns a KVStore over the shared local database.
func NewSQLiteKVStore(database *Database) KVStore {
	return &sqliteKVStore{database: database}
}

func (s *sqliteKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	db, err := s.database.Get(ctx)
	if err != nil {
		return nil, err
	}

	var entry model.KVEntry
	if err := db.Where("key = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return entry.Value, nil
}

func (s *sqliteKVStore) Set(ctx context.Context, key string, value []byte) error {
	db, err := s.database.Get(ctx)
	if err != nil {
		return err
	}

	entry := model.KVEntry{Key: key, Value: value}
	return writeError(db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error)
}

func (s *sqliteKVStore) Delete(ctx context.Context, key string) error {
	db, err := s.database.Get(ctx)
	if err != nil {
		return err
	}
	return writeError(db.Where("key = ?", key).Delete(&model.KVEntry{}).Error)
}

func (s *sqliteKVStore) Clear(ctx context.Context) error {
	db, err := s.database.Get(ctx)
	if err != nil {
		return err
	}
	return writeError(db.Where("1 = 1").Delete(&model.KVEntry{}).Error)
}
