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

	"github.com/spf13/cobra"

	"topodraw/internal/config"
	"topodraw/internal/telemetry"
)

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path, err := config.ConfigPath()
				if err != nil {
					return err
				}
				lib, err := a.libraryPath()
				if err != nil {
					return err
				}
				a.st.heading("Configuration")
				a.st.field("file", path)
				a.field("library", "library.path", lib)
				a.field("theme", "general.theme", a.cfg.General.Theme)
				a.field("telemetry", "general.telemetry_opt_in", a.cfg.General.TelemetryOptIn)
				a.st.field("sending", telemetry.Enabled())
				a.field("backend", "backend.enabled", a.cfg.Backend.Enabled)
				a.field("url", "backend.base_url", a.cfg.Backend.BaseURL)
				a.field("listen", "backend.listen_addr", a.cfg.Backend.ListenAddr)
				dsn := "not set"
				if a.dsn != "" {
					dsn = "set"
				}
				a.field("dsn", "backend.dsn", dsn)
				a.field("log", "logging.level", a.cfg.Logging.Level)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set-dsn <dsn>",
			Short: "Store the backend Postgres DSN in the OS keychain",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := config.Save(a.cfg, args[0]); err != nil {
					return err
				}
				a.st.ok("backend DSN stored in the keychain")
				return nil
			},
		},
		&cobra.Command{
			Use:   "forget-dsn",
			Short: "Remove the backend DSN from the OS keychain",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := config.ForgetDSN(); err != nil {
					return err
				}
				a.st.ok("backend DSN removed")
				return nil
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the current settings to the config file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path, err := config.ConfigPath()
				if err != nil {
					return err
				}
				if err := config.Save(a.cfg, ""); err != nil {
					return err
				}
				a.st.ok("wrote %s", a.st.value.Render(path))
				return nil
			},
		},
	)
	return cmd
}

// field prints a setting and marks it when the environment controls it.
func (a *app) field(name, key string, value any) {
	if env, ok := config.EnvOverrideFor(key); ok {
		value = fmt.Sprintf("%v %s", value, a.st.dim.Render("("+env+")"))
	}
	a.st.field(name, value)
}
