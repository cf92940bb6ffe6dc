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
	"strings"

	"github.com/spf13/cobra"

	"topodraw/internal/legend"
	"topodraw/internal/routing"
	"topodraw/internal/storage"
)

func (a *app) routeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "route <id>",
		Short: "Print the routed path of every connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, s storage.Store) error {
				d, err := s.Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("design %s: %w", args[0], err)
				}
				routes := routing.Routes(d.Nodes, d.Edges, a.catalog)
				if len(routes) == 0 {
					fmt.Fprintln(a.out, a.st.dim.Render("no routable connections"))
					return nil
				}
				rows := make([][]string, 0, len(routes))
				for _, r := range routes {
					rows = append(rows, []string{
						r.EdgeID,
						string(r.SideA) + " → " + string(r.SideB),
						r.Path.SVG(),
						strings.Join(routing.LabelLines(r.Label), " / "),
					})
				}
				a.st.table([]string{"EDGE", "SIDES", "PATH", "LABEL"}, rows)
				return nil
			})
		},
	}
}

func (a *app) legendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "legend <id>",
		Short: "Print the traffic and colour legends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, s storage.Store) error {
				d, err := s.Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("design %s: %w", args[0], err)
				}
				a.st.heading("Traffic")
				traffic := legend.Traffic(d.Nodes, d.Edges, a.catalog)
				if len(traffic) == 0 {
					fmt.Fprintln(a.out, a.st.dim.Render("  no labelled connections"))
				} else {
					rows := make([][]string, 0, len(traffic))
					for _, t := range traffic {
						rows = append(rows, []string{t.Source, string(t.Direction), t.Target, strings.Join(t.Lines(), ", ")})
					}
					a.st.table([]string{"SOURCE", "", "DESTINATION", "PORTS / PROTOCOL"}, rows)
				}
				a.st.heading("Connection types")
				colors := legend.Colors(d.Edges, d.ColorLabels)
				if len(colors) == 0 {
					fmt.Fprintln(a.out, a.st.dim.Render("  no connections"))
					return nil
				}
				rows := make([][]string, 0, len(colors))
				for _, c := range colors {
					rows = append(rows, []string{c.Color, c.Label})
				}
				a.st.table([]string{"COLOUR", "LABEL"}, rows)
				return nil
			})
		},
	}
}
