// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"

	"github.com/momeni/fieldpin/pkg/adapter/db/pinsrp"
	"github.com/momeni/fieldpin/pkg/core/log"
	"github.com/spf13/cobra"
)

var pinsCmd = &cobra.Command{
	Use:   "pins",
	Short: "Persisted pins management actions",
	Long: `Persisted pins management actions can be chosen by sub-commands.
All actions use the storage settings of the configuration file, so they
work on the same pins document which is restored by the web server.
They should not be used while the web server is running, since the
last writer wins.`,
}

// withPinsRepo loads the configuration file, opens its storage, and
// calls f with a pins repository on top of it. Storage is closed
// after f returns.
func withPinsRepo(
	f func(ctx context.Context, r *pinsrp.Repo) error,
) error {
	ctx := context.Background()
	c, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	r, closeStorage, err := c.Storage.PinsRepo(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStorage(ctx); err != nil {
			log.Warn(ctx, "closing storage", log.Err("err", err))
		}
	}()
	if err = f(ctx, r); err != nil {
		return fmt.Errorf("%s entry: %w", r.Key(), err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(pinsCmd)
}
