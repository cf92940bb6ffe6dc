/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"topodraw/internal/backend"
	"topodraw/internal/catalog"
	"topodraw/internal/config"
	applog "topodraw/internal/log"
	"topodraw/internal/storage"
	"topodraw/internal/telemetry"
	"topodraw/internal/version"
)

// app is the state shared by all commands of one invocation.
type app struct {
	out     io.Writer
	st      styles
	cfg     config.AppConfig
	dsn     string
	log     *slog.Logger
	catalog *catalog.Catalog

	// flags
	library     string
	remote      bool
	catalogPath string
	verbose     bool
}

func newApp(out io.Writer) *app {
	return &app{out: out, st: newStyles(out)}
}

func (a *app) root() *cobra.Command {
	root := &cobra.Command{
		Use:                "topodraw",
		Short:              "topodraw draws network topology diagrams",
		Long:               "topodraw keeps a library of network topology designs, routes their connections and exports them as JSON, SVG, PNG or PDF.",
		Version:            version.String(),
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.flush,
	}
	root.SetOut(a.out)
	root.SetVersionTemplate("topodraw {{.Version}}\n")

	f := root.PersistentFlags()
	f.StringVar(&a.library, "library", "", "path of the local design library (default: user config dir)")
	f.BoolVar(&a.remote, "remote", false, "use the shared server from the backend config instead of the local library")
	f.StringVar(&a.catalogPath, "catalog", "", "stencil catalog YAML replacing the built-in one")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.newCommand(),
		a.listCommand(),
		a.showCommand(),
		a.renameCommand(),
		a.deleteCommand(),
		a.historyCommand(),
		a.restoreCommand(),
		a.importCommand(),
		a.exportCommand(),
		a.copyCommand(),
		a.routeCommand(),
		a.legendCommand(),
		a.serveCommand(),
		a.editCommand(),
		a.configCommand(),
		a.versionCommand(),
	)
	return root
}

// setup loads config, logging, telemetry and the catalog before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, dsn, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg, a.dsn = cfg, dsn

	opts := applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Console:   cmd.ErrOrStderr(),
	}
	if a.verbose {
		opts.Level = "debug"
	}
	applog.Init(opts)
	a.log = applog.WithComponent("cli")
	telemetry.NewDefault(telemetry.FromEnv().WithOptIn(cfg.General.TelemetryOptIn))

	if a.catalogPath != "" {
		c, err := catalog.Load(a.catalogPath)
		if err != nil {
			return err
		}
		a.catalog = c
	} else {
		a.catalog = catalog.Default()
	}
	a.log.Debug("start", slog.String("cmd", cmd.CommandPath()))
	return nil
}

// flush gives queued telemetry a bounded chance to reach its endpoint
// before the process exits.
func (a *app) flush(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := telemetry.Flush(context.WithoutCancel(ctx)); err != nil {
		a.log.Debug("telemetry not flushed", slog.Any("err", err))
	}
	return nil
}

func (a *app) libraryPath() (string, error) {
	switch {
	case a.library != "":
		return filepath.Abs(a.library)
	case a.cfg.Library.Path != "":
		return a.cfg.Library.Path, nil
	}
	return storage.DefaultLibraryPath()
}

// store opens the design store selected by the flags. The returned func
// releases it.
func (a *app) store() (storage.Store, func(), error) {
	if a.remote || a.cfg.Backend.Enabled {
		c := backend.NewClient(a.cfg.Backend.BaseURL).
			WithHTTPClient(&http.Client{Timeout: time.Duration(a.cfg.Backend.TimeoutMs) * time.Millisecond})
		return c, func() {}, nil
	}
	path, err := a.libraryPath()
	if err != nil {
		return nil, nil, err
	}
	lib, err := storage.OpenLibrary(path)
	if err != nil {
		return nil, nil, err
	}
	return lib, func() {
		if err := lib.Close(); err != nil {
			a.log.Warn("close library", slog.Any("err", err))
		}
	}, nil
}

// local opens the SQLite library for commands that need its history.
func (a *app) local() (*storage.Library, error) {
	if a.remote {
		return nil, fmt.Errorf("history is only kept in the local library")
	}
	path, err := a.libraryPath()
	if err != nil {
		return nil, err
	}
	return storage.OpenLibrary(path)
}

func (a *app) withStore(ctx context.Context, fn func(context.Context, storage.Store) error) error {
	s, done, err := a.store()
	if err != nil {
		return err
	}
	defer done()
	return fn(ctx, s)
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(a.out, "topodraw", version.String())
		},
	}
}
