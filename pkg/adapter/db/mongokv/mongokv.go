// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package mongokv realizes the repo.KeyValue interface as a MongoDB
// collection whose documents are identified by their key.
package mongokv

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type document struct {
	Key   string `bson:"_id"`
	Value []byte `bson:"value"`
}

// Store keeps entries in one collection of a connected client.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Connect connects to the uri MongoDB deployment, checks it by a ping,
// and returns a Store for the database/collection pair.
func Connect(ctx context.Context, uri, database, collection string) (
	*Store, error,
) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging: %w", err)
	}
	return &Store{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Get implements repo.KeyValue.
func (s *Store) Get(
	ctx context.Context, key string,
) (value []byte, found bool, err error) {
	d := document{}
	err = s.collection.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&d)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return d.Value, true, nil
}

// Put implements repo.KeyValue, replacing the whole document.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.collection.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: key}},
		document{Key: key, Value: value},
		options.Replace().SetUpsert(true),
	)
	return err
}

// Delete implements repo.KeyValue. Deleting a missing key succeeds.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: key}})
	return err
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
