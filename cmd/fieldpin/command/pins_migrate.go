// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/momeni/fieldpin/pkg/adapter/db/pinsrp"
	"github.com/spf13/cobra"
)

var pinsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Rewrite a legacy pins document with the latest version",
	Long: `Rewrite a legacy pins document with the latest version.
Older documents are readable by the web server too, but they are only
rewritten when the next pin is committed. This action rewrites them
right away, so older binaries may no longer read them.
Having no pins document or one with the latest version is not an error.`,
	RunE: migratePins,
	Args: cobra.NoArgs,
}

func migratePins(cmd *cobra.Command, _ []string) error {
	return withPinsRepo(func(ctx context.Context, r *pinsrp.Repo) error {
		from, err := r.Migrate(ctx)
		switch {
		case errors.Is(err, pinsrp.ErrNothingToMigrate):
			fmt.Fprintln(cmd.OutOrStdout(), "no pins document exists")
			return nil
		case err != nil:
			return err
		case from == pinsrp.Version:
			fmt.Fprintf(cmd.OutOrStdout(), "already at v%s\n", from)
		default:
			fmt.Fprintf(cmd.OutOrStdout(),
				"migrated from v%s to v%s\n", from, pinsrp.Version,
			)
		}
		return nil
	})
}

func init() {
	pinsCmd.AddCommand(pinsMigrateCmd)
}
