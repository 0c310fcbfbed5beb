// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config is an adapter which accepts yaml formatted config
// files from its users and allows the fieldpin to instantiate different
// components, from the adapter or use cases layers, using those loaded
// configuration settings.
// These settings may be versioned and maintained by sub-packages.
// However, the parsed and validated configurations should be passed
// to their ultimate components as a series of individual params (for
// the mandatory items) and a series of functional options (for
// the optional items), so they may be accumulated and validated
// in another (possibly non-exported) config struct (or directly in the
// relevant end-component such as a UseCase instance).
package config

import (
	"context"
	"fmt"
	"os"

	"github.com/momeni/fieldpin/pkg/adapter/config/cfg1"
	"github.com/momeni/fieldpin/pkg/adapter/config/vers"
	"github.com/momeni/fieldpin/pkg/adapter/db/pinsrp"
	"github.com/momeni/fieldpin/pkg/core/log"
)

// Load function loads, validates, and normalizes the configuration
// file and returns its settings as an instance of the Config struct.
// Given path must belong to a configuration file which conforms with
// the latest known configuration settings format.
// The declared pins document version may be older than the latest
// known version (since older documents are migrated while reading
// them), but it may not be newer.
func Load(ctx context.Context, path string) (*cfg1.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	v, err := vers.Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading versions: %w", err)
	}
	vc := v.Versions
	switch pm := vc.Pins.Major(); {
	case vc.Config.Major() != cfg1.Major:
		return nil, fmt.Errorf(
			"unexpected config version: %s", vc.Config.String(),
		)
	case pm == 0 || pm > pinsrp.Major:
		return nil, fmt.Errorf(
			"unexpected pins document version: %s", vc.Pins.String(),
		)
	case pm < pinsrp.Major:
		log.Warn(ctx, "pins document is older than the latest version",
			log.Version("declared", vc.Pins),
			log.Version("latest", pinsrp.Version),
		)
	}
	c, err := cfg1.Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading cfg1.Config: %w", err)
	}
	return c, nil
}
