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
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"topodraw/internal/storage"
	"topodraw/internal/telemetry"
)

const timeLayout = "2006-01-02 15:04"

func (a *app) newCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "new [title]",
		Short: "Create an empty design",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			return a.withStore(cmd.Context(), func(ctx context.Context, s storage.Store) error {
				d, err := s.Create(ctx, title)
				if err != nil {
					return err
				}
				telemetry.Event(telemetry.EventDesignCreated, nil)
				a.st.ok("created %s %s", a.st.value.Render(d.Title), a.st.dim.Render(d.ID))
				return nil
			})
		},
	}
}

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List designs, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, s storage.Store) error {
				items, err := s.List(ctx)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(a.out, a.st.dim.Render("no designs yet; create one with: topodraw new <title>"))
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, it := range items {
					rows = append(rows, []string{
						it.ID, it.Title,
						strconv.Itoa(it.Nodes), strconv.Itoa(it.Edges),
						it.UpdatedAt.Local().Format(timeLayout),
					})
				}
				a.st.table([]string{"ID", "TITLE", "NODES", "EDGES", "UPDATED"}, rows)
				return nil
			})
		},
	}
}

func (a *app) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a design summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, s storage.Store) error {
				d, err := s.Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("design %s: %w", args[0], err)
				}
				a.st.heading(d.Title)
				a.st.field("id", d.ID)
				a.st.field("nodes", len(d.Nodes))
				a.st.field("edges", len(d.Edges))
				a.st.field("zoom", fmt.Sprintf("%.0f%%", d.Viewport.K*100))
				a.st.field("created", d.CreatedAt.Local().Format(timeLayout))
				a.st.field("updated", d.UpdatedAt.Local().Format(timeLayout))
				if len(d.Nodes) == 0 {
					return nil
				}
				rows := make([][]string, 0, len(d.Nodes))
				for _, n := range d.Nodes {
					rows = append(rows, []string{n.ID, n.Type, n.Label, fmt.Sprintf("%g,%g", n.X, n.Y), fmt.Sprintf("%gx%g", n.W, n.H)})
				}
				a.st.table([]string{"NODE", "TYPE", "LABEL", "AT", "SIZE"}, rows)
				return nil
			})
		},
	}
}

func (a *app) renameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a design",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args[1:], " ")
			return a.withStore(cmd.Context(), func(ctx context.Context, s storage.Store) error {
				if err := s.Rename(ctx, args[0], title); err != nil {
					return fmt.Errorf("rename %s: %w", args[0], err)
				}
				a.st.ok("renamed %s to %s", a.st.dim.Render(args[0]), a.st.value.Render(title))
				return nil
			})
		},
	}
}

func (a *app) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete designs",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, s storage.Store) error {
				for _, id := range args {
					if err := s.Delete(ctx, id); err != nil {
						return fmt.Errorf("delete %s: %w", id, err)
					}
					a.st.ok("deleted %s", a.st.dim.Render(id))
				}
				return nil
			})
		},
	}
}

func (a *app) historyCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <id>",
		Short: "List saved versions of a design in the local library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.local()
			if err != nil {
				return err
			}
			defer lib.Close()
			snaps, err := lib.Snapshots(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(snaps))
			for _, s := range snaps {
				rows = append(rows, []string{strconv.FormatInt(s.ID, 10), s.TS.Local().Format(time.DateTime), strconv.Itoa(s.Size)})
			}
			a.st.table([]string{"VERSION", "SAVED", "BYTES"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", storage.DefaultHistoryLimit, "maximum versions to show (0 for all)")
	return cmd
}

func (a *app) restoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id> <version>",
		Short: "Restore a saved version of a design",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("version must be a number: %w", err)
			}
			lib, err := a.local()
			if err != nil {
				return err
			}
			defer lib.Close()
			d, err := lib.Restore(cmd.Context(), args[0], v)
			if err != nil {
				return err
			}
			a.st.ok("restored %s to version %d", a.st.value.Render(d.Title), v)
			return nil
		},
	}
}
