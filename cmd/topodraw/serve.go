/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"topodraw/internal/backend"
	"topodraw/internal/config"
	"topodraw/internal/telemetry"
)

func (a *app) serveCommand() *cobra.Command {
	var listen, dsn string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the shared design library over HTTP (Postgres backed)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dsn == "" {
				dsn = a.dsn
			}
			if dsn == "" {
				return fmt.Errorf("serve: %w (set %s or run: topodraw config set-dsn <dsn>)", config.ErrNoDSN, config.EnvBackendDSN)
			}
			if listen == "" {
				listen = a.cfg.Backend.ListenAddr
			}
			ctx := cmd.Context()
			store, err := backend.OpenPG(ctx, dsn)
			if err != nil {
				return err
			}
			defer store.Close()
			telemetry.Event(telemetry.EventServe, nil)
			a.log.Info("serving", slog.String("addr", listen))
			a.st.ok("listening on %s", a.st.value.Render(listen))
			return backend.Serve(ctx, listen, backend.NewRouter(store))
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Postgres DSN (default from "+config.EnvBackendDSN+" or the keychain)")
	return cmd
}
