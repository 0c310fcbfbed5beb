// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gin wraps the gin-gonic engine, so the command and test
// packages may create an engine without importing gin-gonic directly.
package gin

import "github.com/gin-gonic/gin"

type HandlerFunc = gin.HandlerFunc
type Engine = gin.Engine

// Gin modes which may be passed to SetMode.
const (
	DebugMode   = gin.DebugMode
	ReleaseMode = gin.ReleaseMode
	TestMode    = gin.TestMode
)

func New(middlewares ...HandlerFunc) *Engine {
	e := gin.New()
	e.Use(middlewares...)
	return e
}

// SetMode selects the gin-gonic mode, e.g., ReleaseMode.
func SetMode(mode string) {
	gin.SetMode(mode)
}

func Logger() HandlerFunc {
	return gin.Logger()
}

func Recovery() HandlerFunc {
	return gin.Recovery()
}
