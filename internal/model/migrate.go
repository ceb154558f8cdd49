package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for the storage tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&KVEntry{},
		&BlobRecord{},
	)
}
