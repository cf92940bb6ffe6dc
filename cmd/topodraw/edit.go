/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"topodraw/internal/storage"
	"topodraw/internal/ui"
)

func (a *app) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit [id]",
		Short: "Open a design in the desktop editor (new design without id)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, done, err := a.store()
			if err != nil {
				return err
			}
			defer done()
			opts := ui.Options{Store: s, Catalog: a.catalog}
			if len(args) == 1 {
				opts.DesignID = args[0]
			}
			if lib, ok := s.(*storage.Library); ok {
				opts.BackupDir = filepath.Dir(lib.Path())
			}
			return ui.Run(opts)
		},
	}
}
