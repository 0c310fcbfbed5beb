// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gormkv realizes the repo.KeyValue interface as a table of
// named binary entries, using the gorm ORM. Both the PostgreSQL and
// SQLite gorm drivers are supported, so a local device may keep its
// pins in an embedded file while a shared deployment keeps them in a
// PostgreSQL server.
package gormkv

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one row of the key/value table.
type Entry struct {
	Name      string `gorm:"column:name;primaryKey"`
	Value     []byte `gorm:"column:value"`
	UpdatedAt time.Time
}

// TableName specifies the key/value table name for gorm.
func (Entry) TableName() string {
	return "kv_entries"
}

// Store wraps a gorm connection pool.
type Store struct {
	*gorm.DB
}

// Dialects which are accepted by Open.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Open connects to the database which is identified by the dialect
// and dsn (a PostgreSQL URL or a SQLite file path), creates the table
// if needed, and checks the connection.
func Open(ctx context.Context, dialect, dsn string) (*Store, error) {
	var d gorm.Dialector
	switch dialect {
	case DialectPostgres:
		d = postgres.Open(dsn)
	case DialectSQLite:
		d = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	gdb, err := gorm.Open(d, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open: %w", err)
	}
	gdb = gdb.Session(&gorm.Session{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  true,
				ParameterizedQueries:      true,
			}),
	})
	s := &Store{DB: gdb}
	if err = s.DB.WithContext(ctx).AutoMigrate(&Entry{}); err != nil {
		s.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}
	return s, nil
}

// Get implements repo.KeyValue.
func (s *Store) Get(
	ctx context.Context, key string,
) (value []byte, found bool, err error) {
	e := Entry{}
	err = s.DB.WithContext(ctx).Where("name = ?", key).Take(&e).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return e.Value, true, nil
}

// Put implements repo.KeyValue, inserting or replacing the entry.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	e := Entry{Name: key, Value: value}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

// Delete implements repo.KeyValue. Deleting a missing key succeeds.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.DB.WithContext(ctx).Where("name = ?", key).Delete(&Entry{}).Error
}

// Close closes the underlying connections pool.
func (s *Store) Close() error {
	db, err := s.DB.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
