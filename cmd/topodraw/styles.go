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
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorRed   = lipgloss.Color("167")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

// styles are bound to one output writer so colour detection follows it.
type styles struct {
	w       io.Writer
	title   lipgloss.Style
	value   lipgloss.Style
	dim     lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	border  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		w:       w,
		title:   r.NewStyle().Bold(true).Foreground(colorCyan),
		value:   r.NewStyle().Foreground(colorCyan),
		dim:     r.NewStyle().Foreground(colorDim),
		success: r.NewStyle().Foreground(colorGreen),
		failure: r.NewStyle().Foreground(colorRed),
		header:  r.NewStyle().Bold(true).Foreground(colorGray).Padding(0, 1),
		cell:    r.NewStyle().Padding(0, 1),
		border:  r.NewStyle().Foreground(colorDim),
	}
}

func (s styles) ok(format string, args ...any) {
	fmt.Fprintln(s.w, s.success.Render("✓")+" "+fmt.Sprintf(format, args...))
}

func (s styles) heading(text string) { fmt.Fprintln(s.w, s.title.Render(text)) }

func (s styles) field(name string, value any) {
	fmt.Fprintf(s.w, "  %s %s\n", s.dim.Render(fmt.Sprintf("%-9s", name)), s.value.Render(fmt.Sprint(value)))
}

func (s styles) table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.header
			}
			return s.cell
		})
	fmt.Fprintln(s.w, t.Render())
}
