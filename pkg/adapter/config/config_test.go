// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/momeni/fieldpin/pkg/adapter/config"
	"github.com/momeni/fieldpin/pkg/adapter/config/cfg1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSampleConfig(t *testing.T) {
	c, err := config.Load(
		context.Background(), "../../../configs/sample-config.yaml",
	)
	require.NoError(t, err)
	assert.Equal(t, cfg1.DriverSQLite, c.Storage.Driver)
	assert.True(t, *c.Gin.Logger)
}

func TestLoadVersions(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	write := func(name, versions string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(
			"storage: {path: /tmp}\nversions: "+versions+"\n",
		), 0o600))
		return p
	}
	_, err := config.Load(ctx, write("legacy.yaml", "{config: 1.0.0, pins: 1.0.0}"))
	assert.NoError(t, err, "older pins documents are migrated on read")
	_, err = config.Load(ctx, write("newer.yaml", "{config: 1.0.0, pins: 3.0.0}"))
	assert.Error(t, err)
	_, err = config.Load(ctx, write("nopins.yaml", "{config: 1.0.0}"))
	assert.Error(t, err)
	_, err = config.Load(ctx, write("cfg2.yaml", "{config: 2.0.0, pins: 2.0.0}"))
	assert.Error(t, err)
	_, err = config.Load(ctx, filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
