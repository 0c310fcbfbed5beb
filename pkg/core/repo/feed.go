// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/momeni/fieldpin/pkg/core/model"
)

// FixHandler receives one location fix. Fixes are delivered in their
// reporting order and each one supersedes the previous fixes.
type FixHandler func(ctx context.Context, pos model.Position)

// FixErrorHandler receives a location feed failure, such as a denied
// permission or a temporarily unavailable position.
type FixErrorHandler func(ctx context.Context, err error)

// Subscription is an opaque handle of a LocationFeed subscription.
type Subscription interface {
	// IsSubscription prevents unrelated values from implementing
	// the Subscription interface.
	IsSubscription()
}

// LocationFeed is a push-based stream of position fixes which is not
// controlled by its subscribers.
type LocationFeed interface {
	Subscribe(onFix FixHandler, onErr FixErrorHandler) (Subscription, error)
	Unsubscribe(s Subscription) error
}
