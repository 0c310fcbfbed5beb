// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands for the fieldpin
// project. Commands are organized using the cobra library.
// The root command starts the web server itself while the "pins"
// sub-command can be used for managing the persisted pins document.
//
//	./fieldpin [-c /path/of/main/config.yaml]        # start web server
//	./fieldpin pins list [-c /path/of/main/config.yaml]
//	./fieldpin pins migrate [-c /path/of/main/config.yaml]
//	./fieldpin pins reset --yes [-c /path/of/main/config.yaml]
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/momeni/fieldpin/pkg/adapter/config"
	"github.com/momeni/fieldpin/pkg/adapter/config/cfg1"
	"github.com/momeni/fieldpin/pkg/adapter/restful/gin"
	"github.com/momeni/fieldpin/pkg/adapter/restful/gin/routes"
	"github.com/momeni/fieldpin/pkg/core/log"
	"github.com/spf13/cobra"
)

// ShutdownTimeout bounds the graceful shutdown of the web server.
const ShutdownTimeout = 5 * time.Second

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "fieldpin",
	Short: "Pins field photos to the map at the location they were taken",
	Long: `Pins field photos to the map at the location they were taken.
The web server keeps a capture session which receives location fixes
and camera frames from the device (over its REST APIs), lets the user
take and review a still image, and commits the confirmed still as a pin
at the current location. Pins are persisted in a versioned document,
which is kept in a local file, a SQLite or PostgreSQL database, or a
MongoDB collection, and they are restored on the map when the server
starts again. Map changes are pushed to clients over a websocket.`,
	RunE: startWebServer,
	Args: cobra.NoArgs,
}

func startWebServer(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()
	c, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	pins, closeStorage, err := c.Storage.PinsRepo(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStorage(context.Background()); err != nil {
			log.Warn(ctx, "closing storage", log.Err("err", err))
		}
	}()
	var e *gin.Engine = c.Gin.NewEngine()
	s, err := routes.Register(ctx, e, pins, c)
	if err != nil {
		return fmt.Errorf("registering routes: %w", err)
	}
	defer s.Close(context.Background())

	srv := &http.Server{Addr: c.Gin.Address, Handler: e}
	srv.RegisterOnShutdown(func() {
		if err := s.Close(context.Background()); err != nil {
			log.Warn(ctx, "closing routes session", log.Err("err", err))
		}
	})
	errs := make(chan error, 1)
	go func() {
		log.Info(ctx, "serving", slogAddr(c.Gin.Address))
		errs <- srv.ListenAndServe()
	}()
	select {
	case err = <-errs:
		return fmt.Errorf("running web server: %w", err)
	case <-ctx.Done():
	}
	log.Info(context.Background(), "shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down web server: %w", err)
	}
	if err = <-errs; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("running web server: %w", err)
	}
	return nil
}

// loadConfig loads the configuration file from cfgPath and sets up
// the logging level accordingly.
func loadConfig(ctx context.Context) (*cfg1.Config, error) {
	c, err := config.Load(ctx, cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	log.Setup(*c.Log.Level)
	log.Debug(ctx, "configs are loaded",
		slogAddr(c.Gin.Address),
		log.Version("config", c.Version()),
		log.Version("pins", c.PinsVersion()),
	)
	return c, nil
}

func slogAddr(addr string) slog.Attr {
	return slog.String("address", addr)
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		// the default path should usually be in the /etc directory
		cfgPath = "configs/sample-config.yaml"
	}
}
