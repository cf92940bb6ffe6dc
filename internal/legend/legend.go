/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package legend derives the traffic and colour legends shown next to a
// diagram and printed into exported documents.
package legend

import (
	"topodraw/internal/domain"
	"topodraw/internal/routing"
)

// Direction of traffic as implied by an edge's end markers.
type Direction string

const (
	Forward  Direction = "→"
	Backward Direction = "←"
	Both     Direction = "↔"
)

// DirectionOf maps end markers to a direction: arrows at both ends are
// bidirectional, an arrow only at the start points back, anything else forward.
func DirectionOf(e domain.Edge) Direction {
	switch {
	case e.MarkerStart == domain.MarkerArrow && e.MarkerEnd == domain.MarkerArrow:
		return Both
	case e.MarkerStart == domain.MarkerArrow:
		return Backward
	}
	return Forward
}

// TrafficEntry is one row of the traffic legend.
type TrafficEntry struct {
	EdgeID    string
	Source    string
	Target    string
	Direction Direction
	Label     string
	Color     string
}

// Lines splits the label into its port/protocol lines.
func (t TrafficEntry) Lines() []string { return routing.LabelLines(t.Label) }

// Traffic lists every routable edge that has a label, in edge order.
// Endpoints are reported by node label.
func Traffic(nodes []domain.Node, edges []domain.Edge, ports routing.PortLookup) []TrafficEntry {
	ix := routing.NewIndex(nodes)
	var out []TrafficEntry
	for _, e := range edges {
		src, dst, ok := ix.Ends(e)
		if !ok {
			continue
		}
		label := routing.LabelText(e, src, dst, ports)
		if label == "" {
			continue
		}
		out = append(out, TrafficEntry{
			EdgeID:    e.ID,
			Source:    src.Label,
			Target:    dst.Label,
			Direction: DirectionOf(e),
			Label:     label,
			Color:     e.StrokeColor(),
		})
	}
	return out
}

// ColorEntry is one swatch of the colour legend.
type ColorEntry struct {
	Color string
	Label string
}

// Colors lists the distinct edge colours in first-use order with their user
// names from labels. Unnamed colours have an empty Label.
func Colors(edges []domain.Edge, labels map[string]string) []ColorEntry {
	seen := map[string]bool{}
	var out []ColorEntry
	for _, e := range edges {
		c := e.StrokeColor()
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, ColorEntry{Color: c, Label: labels[c]})
	}
	return out
}

// Named keeps only entries that carry a user label.
func Named(entries []ColorEntry) []ColorEntry {
	var out []ColorEntry
	for _, c := range entries {
		if c.Label != "" {
			out = append(out, c)
		}
	}
	return out
}
