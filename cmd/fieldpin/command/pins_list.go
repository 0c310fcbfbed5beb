// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/momeni/fieldpin/pkg/adapter/db/pinsrp"
	"github.com/spf13/cobra"
)

var pinsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the persisted pins in their capture order",
	Long: `List the persisted pins in their capture order.
Each line shows the pin index, its location, and the length of its
image payload (and its media type when it is a data URL). Legacy pins
documents are migrated in memory, without updating the storage.`,
	RunE: listPins,
	Args: cobra.NoArgs,
}

func listPins(cmd *cobra.Command, _ []string) error {
	return withPinsRepo(func(ctx context.Context, r *pinsrp.Repo) error {
		pins, err := r.Load(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for i, p := range pins {
			fmt.Fprintf(out, "%d\t%s\t%s\n", i, p.Location, describe(p.Image))
		}
		fmt.Fprintf(out, "%d pins\n", len(pins))
		return nil
	})
}

// describe summarizes an image payload as its media type and length.
func describe(image string) string {
	media := "opaque"
	if rest, ok := strings.CutPrefix(image, "data:"); ok {
		if i := strings.IndexAny(rest, ";,"); i >= 0 {
			media = rest[:i]
		}
	}
	return fmt.Sprintf("%s (%d bytes)", media, len(image))
}

func init() {
	pinsCmd.AddCommand(pinsListCmd)
}
