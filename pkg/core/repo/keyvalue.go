// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package repo defines the interfaces which the use cases layer expects
// from the adapters layer: the durable key-value storage, the pins
// repository on top of it, and the external devices and rendering
// surface which fieldpin consumes but does not implement.
// Implementations live in pkg/adapter sub-packages, so the use cases
// stay independent of the third-party libraries behind them.
package repo

import "context"

// KeyValue is a process-local durable store of named entries which
// survive restarts. It is effectively single-writer; concurrent writers
// from several processes are not detected and the last writer wins.
type KeyValue interface {
	// Get returns the value of the key entry. A missing entry is not
	// an error and is reported by found=false.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Put overwrites the key entry with value as a whole.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes the key entry. Deleting a missing entry is not an
	// error.
	Delete(ctx context.Context, key string) error
}
