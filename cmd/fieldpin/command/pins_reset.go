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

var confirmReset bool

var pinsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove all persisted pins",
	Long: `Remove all persisted pins by deleting their document from the
storage. Individual pins cannot be removed. Since this is not reversible,
the --yes flag is required.`,
	RunE: resetPins,
	Args: cobra.NoArgs,
}

func resetPins(cmd *cobra.Command, _ []string) error {
	if !confirmReset {
		return errors.New("refusing to remove pins without --yes")
	}
	return withPinsRepo(func(ctx context.Context, r *pinsrp.Repo) error {
		if err := r.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "pins are removed")
		return nil
	})
}

func init() {
	pinsResetCmd.Flags().BoolVar(
		&confirmReset, "yes", false, "confirm removing all pins",
	)
	pinsCmd.AddCommand(pinsResetCmd)
}
