// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cfg1

import (
	"fmt"

	"github.com/momeni/fieldpin/pkg/adapter/config/settings"
	"github.com/momeni/fieldpin/pkg/adapter/restful/gin"
)

// DefaultAddress is the listening address of the REST API.
const DefaultAddress = "127.0.0.1:8080"

// Gin contains the gin-gonic related configuration settings.
type Gin struct {
	Logger   *bool  `yaml:"logger,omitempty"`   // Use gin.Logger middleware
	Recovery *bool  `yaml:"recovery,omitempty"` // Use gin.Recovery middleware
	Mode     string `yaml:"mode,omitempty"`     // debug, release, or test
	Address  string `yaml:"address,omitempty"`  // host:port to listen on
}

// ValidateAndNormalize validates the gin settings.
func (g *Gin) ValidateAndNormalize() error {
	settings.Nil2Zero(&g.Logger)
	settings.Nil2Zero(&g.Recovery)
	switch g.Mode {
	case "":
		g.Mode = gin.ReleaseMode
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("unknown mode: %q", g.Mode)
	}
	if g.Address == "" {
		g.Address = DefaultAddress
	}
	return nil
}

// NewEngine instantiates a gin-gonic engine with the middlewares which
// are enabled by g.
func (g *Gin) NewEngine() *gin.Engine {
	gin.SetMode(g.Mode)
	var middlewares []gin.HandlerFunc
	if *g.Logger {
		middlewares = append(middlewares, gin.Logger())
	}
	if *g.Recovery {
		middlewares = append(middlewares, gin.Recovery())
	}
	return gin.New(middlewares...)
}
