// Package db opens the SQLite database backing the stake transaction journal.
package db

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pushchain/push-stake-provider/stakeClient/store"
)

const (
	// InMemorySQLiteDSN opens an ephemeral database that lives as long as its connection.
	InMemorySQLiteDSN = ":memory:"

	// fileParams enables WAL so readers never block the journal writer.
	fileParams = "?_journal_mode=WAL&_busy_timeout=5000&mode=rwc"

	dirPermissions = 0o750
)

// DB owns the gorm handle of the journal database.
type DB struct {
	client *gorm.DB
}

// OpenFileDB opens or creates dir/filename. migrateSchema creates the journal tables.
func OpenFileDB(dir, filename string, migrateSchema bool) (*DB, error) {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, errors.Wrapf(err, "failed to create database directory %s", dir)
	}
	return open(filepath.Join(dir, filename)+fileParams, migrateSchema)
}

// OpenInMemoryDB opens a database that is discarded on Close. Used by tests.
func OpenInMemoryDB(migrateSchema bool) (*DB, error) {
	return open(InMemorySQLiteDSN, migrateSchema)
}

func open(dsn string, migrateSchema bool) (*DB, error) {
	client, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open SQLite database")
	}

	// One connection: an in-memory database exists per connection, and the
	// journal has a single writer anyway.
	sqlDB, err := client.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying sql.DB")
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	d := &DB{client: client}
	if migrateSchema {
		if err := d.Migrate(); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}
	return d, nil
}

// Migrate creates or updates the journal tables.
func (d *DB) Migrate() error {
	if err := d.client.AutoMigrate(&store.StakeTransaction{}); err != nil {
		return errors.Wrap(err, "failed to auto-migrate journal schema")
	}
	return nil
}

// Client exposes the gorm handle.
func (d *DB) Client() *gorm.DB {
	return d.client
}

// Journal returns the transaction journal stored in this database.
func (d *DB) Journal() *store.Journal {
	return store.NewJournal(d.client)
}

// Close closes the database.
func (d *DB) Close() error {
	sqlDB, err := d.client.DB()
	if err != nil {
		return errors.Wrap(err, "failed to retrieve native sql.DB")
	}
	return errors.Wrap(sqlDB.Close(), "failed to close database connection")
}
