// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package log provides helper functions over the standard log/slog
// structured logging package. The exported Debug, Info, Warn, and Error
// functions accept a context, message, and a series of statically typed
// slog.Attr arguments which are passed to the default slog.Logger
// without the interleaved key/value "any" allocations.
// Use cases log through this package, so the adapters layer (the CLI)
// decides about the handler and level by calling slog.SetDefault.
package log

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// Debug logs msg and attrs with the given context at the debug level.
func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelDebug, msg, attrs...)
}

// Info logs msg and attrs with the given context at the info level.
func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

// Warn logs msg and attrs with the given context at the warning level.
func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

// Error logs msg and attrs with the given context at the error level.
func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelError, msg, attrs...)
}

// logAttrs must be called directly by the exported functions above,
// since it skips exactly one frame inside this package when looking
// for the caller's file name and line number.
func logAttrs(
	ctx context.Context,
	level slog.Level,
	msg string,
	attrs ...slog.Attr,
) {
	l := slog.Default()
	if !l.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	// skip [runtime.Callers, this function, its parent in log pkg]
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, r)
}

// Setup installs a text handler writing to stderr as the default slog
// logger, enabling records at the given level and above.
func Setup(level slog.Level) {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: level <= slog.LevelDebug,
		Level:     level,
	})
	slog.SetDefault(slog.New(h))
}
