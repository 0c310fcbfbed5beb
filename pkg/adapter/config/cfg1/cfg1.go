// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cfg1 makes it possible to load configuration settings with
// version 1.x.y since all minor and patch versions (which are known)
// with the same major version, can be loaded with one implementation.
// When trying to serialize and write out settings, the latest known
// minor and patch version will be used since older versions (with the
// same major version) can ignore the extra fields too.
package cfg1

import (
	"fmt"
	"log/slog"

	"github.com/momeni/fieldpin/pkg/adapter/config/settings"
	"github.com/momeni/fieldpin/pkg/adapter/config/vers"
	"github.com/momeni/fieldpin/pkg/core/model"
	"gopkg.in/yaml.v3"
)

// These constants define the major, minor, and patch version of the
// configuration settings which are supported by the Config struct.
const (
	Major = 1
	Minor = 0
	Patch = 0
)

// Version is the semantic version of Config struct.
var Version = model.SemVer{Major, Minor, Patch}

// Config contains all settings which are required by different parts
// of the project following the v1.x.y format, such as adapters or
// use cases. It is preferred to implement Config with primitive fields
// or other structs which are defined locally, not models or structs
// which are defined in lower layers, so the configuration can be
// versioned and kept intact while other layers can change freely.
type Config struct {
	Storage  Storage  // durable storage of the pins document
	Gin      Gin      // Gin-Gonic instantiation settings
	Camera   Camera   // pushed camera frames settings
	Map      Map      // map surface view settings
	Usecases Usecases // Supported use cases configuration settings
	Log      Log      // logging settings

	// Vers contains the configuration file and pins document version
	// strings corresponding to this Config instance.
	Vers vers.Config `yaml:",inline"`
}

// Log contains the logging settings.
type Log struct {
	Level *slog.Level `yaml:"level,omitempty"` // debug, info, warn, or error
}

// Load deserializes the data byte slice into a new Config instance,
// and validates and normalizes it, filling the missing optional
// settings with their default values.
func Load(data []byte) (*Config, error) {
	n := &yaml.Node{}
	if err := yaml.Unmarshal(data, n); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	if l := len(n.Content); l != 1 {
		return nil, fmt.Errorf(
			"found %d children nodes, instead of 1 mapping child", l,
		)
	}
	c := &Config{}
	if err := n.Decode(c); err != nil {
		return nil, fmt.Errorf("decoding yaml node: %w", err)
	}
	if err := c.ValidateAndNormalize(); err != nil {
		return nil, fmt.Errorf("validating configs: %w", err)
	}
	return c, nil
}

// ValidateAndNormalize validates the settings of c and fills the
// missing optional settings with their default values.
func (c *Config) ValidateAndNormalize() error {
	if err := c.Vers.Validate(Major, Minor); err != nil {
		return fmt.Errorf(
			"expecting version v%d.%d: %w", Major, Minor, err,
		)
	}
	if err := c.Storage.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating storage settings: %w", err)
	}
	if err := c.Gin.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating gin settings: %w", err)
	}
	if err := c.Camera.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating camera settings: %w", err)
	}
	if err := c.Map.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating map settings: %w", err)
	}
	if err := c.Usecases.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating usecases settings: %w", err)
	}
	info := slog.LevelInfo
	settings.OverwriteNil(&c.Log.Level, &info)
	return nil
}

// Version returns the configuration file version of c.
func (c *Config) Version() model.SemVer {
	return c.Vers.Versions.Config
}

// PinsVersion returns the pins document version which is declared by
// the versions.pins setting.
func (c *Config) PinsVersion() model.SemVer {
	return c.Vers.Versions.Pins
}
