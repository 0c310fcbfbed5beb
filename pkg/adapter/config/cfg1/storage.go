// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cfg1

import (
	"context"
	"errors"
	"fmt"

	"github.com/momeni/fieldpin/pkg/adapter/db/filekv"
	"github.com/momeni/fieldpin/pkg/adapter/db/gormkv"
	"github.com/momeni/fieldpin/pkg/adapter/db/mongokv"
	"github.com/momeni/fieldpin/pkg/adapter/db/pinsrp"
	"github.com/momeni/fieldpin/pkg/core/repo"
)

// Supported storage drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Storage contains the durable storage settings. The Path is used by
// the file (a directory) and sqlite (a database file) drivers, while
// the URL is used by the postgres and mongo drivers.
type Storage struct {
	Driver     string `yaml:"driver"`
	Path       string `yaml:"path,omitempty"`
	URL        string `yaml:"url,omitempty"`
	Database   string `yaml:"database,omitempty"`   // mongo database
	Collection string `yaml:"collection,omitempty"` // mongo collection
	Key        string `yaml:"key,omitempty"`        // pins entry name
}

// ValidateAndNormalize validates the storage settings.
func (s *Storage) ValidateAndNormalize() error {
	if s.Driver == "" {
		s.Driver = DriverFile
	}
	if s.Key == "" {
		s.Key = pinsrp.DefaultKey
	}
	switch s.Driver {
	case DriverFile, DriverSQLite:
		if s.Path == "" {
			return fmt.Errorf("%s driver needs a path", s.Driver)
		}
	case DriverPostgres:
		if s.URL == "" {
			return errors.New("postgres driver needs a url")
		}
	case DriverMongo:
		if s.URL == "" {
			return errors.New("mongo driver needs a url")
		}
		if s.Database == "" {
			s.Database = "fieldpin"
		}
		if s.Collection == "" {
			s.Collection = "kv"
		}
	default:
		return fmt.Errorf("unknown driver: %q", s.Driver)
	}
	return nil
}

// Open opens the configured key/value store. The returned closer
// function must be called in order to release the store.
func (s *Storage) Open(ctx context.Context) (
	kv repo.KeyValue, closer func(context.Context) error, err error,
) {
	noop := func(context.Context) error { return nil }
	switch s.Driver {
	case DriverFile:
		fs, err := filekv.New(s.Path)
		if err != nil {
			return nil, nil, err
		}
		return fs, noop, nil
	case DriverSQLite, DriverPostgres:
		dialect, dsn := gormkv.DialectSQLite, s.Path
		if s.Driver == DriverPostgres {
			dialect, dsn = gormkv.DialectPostgres, s.URL
		}
		gs, err := gormkv.Open(ctx, dialect, dsn)
		if err != nil {
			return nil, nil, err
		}
		return gs, func(context.Context) error { return gs.Close() }, nil
	case DriverMongo:
		ms, err := mongokv.Connect(ctx, s.URL, s.Database, s.Collection)
		if err != nil {
			return nil, nil, err
		}
		return ms, ms.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown driver: %q", s.Driver)
	}
}

// PinsRepo opens the configured store and returns a pins repository
// over it, plus the closer function of that store.
func (s *Storage) PinsRepo(ctx context.Context) (
	*pinsrp.Repo, func(context.Context) error, error,
) {
	kv, closer, err := s.Open(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s storage: %w", s.Driver, err)
	}
	return pinsrp.New(kv, s.Key), closer, nil
}
