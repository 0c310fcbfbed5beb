// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/momeni/fieldpin/pkg/core/model"
)

// Pins loads and saves the whole pins collection as one durable
// document. There is no incremental update; Save rewrites the document
// so it matches the given sequence exactly.
type Pins interface {
	// Load returns the persisted pins in their capture order. A missing
	// document yields an empty slice and no error, while a corrupt or
	// unknown document yields an error.
	Load(ctx context.Context) ([]model.Pin, error)

	// Save replaces the persisted document with pins.
	Save(ctx context.Context, pins []model.Pin) error
}
