package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"martapp/kiosk/internal/model"
)

// Database is the process-wide handle to the local SQLite file. The
// connection is opened lazily on first use and memoized, including a failed
// open: concurrent first callers share one open attempt instead of racing
// to create duplicate schemas.
type Database struct {
	dsn  string
	once sync.Once
	db   *gorm.DB
	err  error
}

// NewDatabase prepares a lazily-opened database for the given DSN. No
// connection is made until Get is called.
func NewDatabase(dsn string) *Database {
	return &Database{dsn: dsn}
}

// Get returns the shared connection, opening and migrating it on first call.
// Every failure is reported as ErrNotAvailable.
func (d *Database) Get(ctx context.Context) (*gorm.DB, error) {
	d.once.Do(func() {
		db, err := gorm.Open(sqlite.Open(d.dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			d.err = fmt.Errorf("%w: %v", ErrNotAvailable, err)
			return
		}
		if err := model.AutoMigrate(db); err != nil {
			d.err = fmt.Errorf("%w: migrate: %v", ErrNotAvailable, err)
			return
		}
		d.db = db
	})
	if d.err != nil {
		return nil, d.err
	}
	return d.db.WithContext(ctx), nil
}

// writeError maps a driver error to the store's error taxonomy. SQLite
// reports exhausted capacity as SQLITE_FULL ("database or disk is full").
func writeError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "database or disk is full") {
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
}
