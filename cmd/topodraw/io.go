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
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"topodraw/internal/domain"
	"topodraw/internal/export"
	"topodraw/internal/storage"
	"topodraw/internal/telemetry"
)

// formatDocument writes the design as a standalone document file with backups.
const formatDocument = "topo"

var exportFormats = []string{"json", "svg", "png", "pdf", formatDocument}

func (a *app) importCommand() *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Import a design snapshot (JSON) as a new design",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := readDesign(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			if t := strings.TrimSpace(title); t != "" {
				d.Title = t
			}
			return a.withStore(cmd.Context(), func(ctx context.Context, s storage.Store) error {
				saved, err := s.Save(ctx, d)
				if err != nil {
					return err
				}
				a.st.ok("imported %s %s (%d nodes, %d edges)", a.st.value.Render(saved.Title), a.st.dim.Render(saved.ID), len(saved.Nodes), len(saved.Edges))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title for the imported design")
	return cmd
}

// readDesign loads a snapshot from a file or stdin ("-"). Design documents
// written by "export --format topo" fall back to their newest backup.
func readDesign(path string, stdin io.Reader) (domain.Design, error) {
	if strings.HasSuffix(path, storage.DesignFileExt) {
		d, err := storage.OpenFile(path)
		if err != nil {
			return domain.Design{}, err
		}
		d.ID = ""
		return d, nil
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return domain.Design{}, err
	}
	return storage.ImportJSON(data)
}

func (a *app) exportCommand() *cobra.Command {
	var (
		formats []string
		out     string
		scale   float64
	)
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a design as JSON, SVG, PNG, PDF or a design document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range formats {
				if !slices.Contains(exportFormats, f) {
					return fmt.Errorf("unknown format %q (want one of %s)", f, strings.Join(exportFormats, ", "))
				}
			}
			return a.withStore(cmd.Context(), func(ctx context.Context, s storage.Store) error {
				d, err := s.Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("design %s: %w", args[0], err)
				}
				snap := export.FromDesign(d)
				opt := export.Options{Ports: a.catalog, Scale: scale}
				for _, f := range formats {
					path := outputPath(out, snap, f, len(formats) == 1)
					if err := writeExport(snap, f, path, opt); err != nil {
						return fmt.Errorf("export %s: %w", f, err)
					}
					telemetry.Export(f, len(snap.Nodes), len(snap.Edges))
					a.st.ok("wrote %s", a.st.value.Render(path))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{"pdf"}, "output formats: "+strings.Join(exportFormats, ", "))
	cmd.Flags().StringVarP(&out, "out", "o", ".", "output directory, or file when exporting a single format")
	cmd.Flags().Float64Var(&scale, "scale", 2, "PNG pixels per world unit")
	return cmd
}

func extension(format string) string {
	if format == formatDocument {
		return storage.DesignFileExt
	}
	return "." + format
}

// outputPath treats out as a file when a single format is written and out
// already carries that format's extension; otherwise out is a directory.
func outputPath(out string, snap export.Snapshot, format string, single bool) string {
	ext := extension(format)
	if single && strings.HasSuffix(strings.ToLower(out), ext) {
		return out
	}
	return filepath.Join(out, snap.FileName(ext))
}

func writeExport(snap export.Snapshot, format, path string, opt export.Options) error {
	switch format {
	case "json":
		return export.WriteJSON(snap, path)
	case "svg":
		return export.WriteSVG(snap, path, opt)
	case "png":
		return export.WritePNG(snap, path, opt)
	case "pdf":
		return export.WritePDF(snap, path, opt)
	case formatDocument:
		return storage.SaveFile(path, snap.Design())
	}
	return fmt.Errorf("unknown format %q", format)
}

func (a *app) copyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "copy <id>",
		Short: "Copy a design's JSON snapshot to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(ctx context.Context, s storage.Store) error {
				d, err := s.Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("design %s: %w", args[0], err)
				}
				if err := export.CopyJSON(export.FromDesign(d)); err != nil {
					return err
				}
				a.st.ok("copied %s to the clipboard", a.st.value.Render(d.Title))
				return nil
			})
		},
	}
}
