/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"topodraw/internal/vector"
)

func TestDesignJSONRoundTrip(t *testing.T) {
	d := NewDesign("Lab")
	d.Nodes = append(d.Nodes, Node{ID: "a", Type: "uag", Label: "UAG", X: 24, Y: 48, W: NodeWidth, H: NodeHeight, CustomColor: "#0f766e", Opacity: 0.1})
	e := NewEdge("e1", "a", "b")
	e.TargetSide = vector.Left
	e.TargetRatio = Ratio(0.25)
	d.Edges = append(d.Edges, e)

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"targetSide":"left"`, `"targetRatio":0.25`, `"markerEnd":"arrow"`, `"viewport":{"x":0,"y":0,"k":1}`} {
		if !strings.Contains(s, want) {
			t.Fatalf("json %s missing %s", s, want)
		}
	}
	for _, absent := range []string{"sourceSide", "sourceRatio", "labelOffsetX", "createdAt"} {
		if strings.Contains(s, absent) {
			t.Fatalf("json %s should omit %s", s, absent)
		}
	}

	var got Design
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Edges) != 1 || got.Edges[0].TargetAt() != 0.25 || got.Edges[0].SourceAt() != vector.DefaultRatio {
		t.Fatalf("edge ratios not preserved: %+v", got.Edges)
	}
}

func TestNormalizeDefaultsMissingCollections(t *testing.T) {
	var d Design
	if err := json.Unmarshal([]byte(`{"title":"","edges":[{"id":"x","source":"a","target":"b","markerEnd":"bogus","sourceSide":"middle"}]}`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	d = d.Normalize()
	if d.Nodes == nil || len(d.Nodes) != 0 {
		t.Fatalf("nodes should default to empty, got %#v", d.Nodes)
	}
	if d.Title != DefaultTitle || d.Background != BackgroundDots || d.Viewport != vector.DefaultViewport() {
		t.Fatalf("defaults not applied: %+v", d)
	}
	e := d.Edges[0]
	if e.Color != DefaultColor || e.Width != DefaultEdgeWidth || e.MarkerEnd != MarkerNone || e.SourceSide != vector.SideNone {
		t.Fatalf("edge defaults not applied: %+v", e)
	}
}

func TestDesignCloneIsDeep(t *testing.T) {
	d := NewDesign("x")
	d.Nodes = append(d.Nodes, Node{ID: "n"})
	e := NewEdge("e", "n", "m")
	e.SourceRatio = Ratio(0.1)
	d.Edges = append(d.Edges, e)
	d.ColorLabels["#ef4444"] = "HTTPS"

	c := d.Clone()
	c.Nodes[0].X = 99
	*c.Edges[0].SourceRatio = 0.9
	c.ColorLabels["#ef4444"] = "changed"

	if d.Nodes[0].X != 0 || *d.Edges[0].SourceRatio != 0.1 || d.ColorLabels["#ef4444"] != "HTTPS" {
		t.Fatalf("clone aliases original: %+v", d)
	}
}

func TestNodeDefaults(t *testing.T) {
	n := Node{Type: ZoneType}
	if !n.IsZone() || n.Color() != DefaultColor || n.Alpha() != DefaultOpacity {
		t.Fatalf("zone defaults wrong: %+v", n)
	}
	n = Node{X: 1, Y: 2, W: 3, H: 4, Opacity: 0.5, CustomColor: "#fff"}
	if n.Rect() != vector.R(1, 2, 3, 4) || n.Alpha() != 0.5 || n.Color() != "#fff" {
		t.Fatalf("node accessors wrong: %+v", n)
	}
}

func TestEdgeTouches(t *testing.T) {
	e := NewEdge("e", "a", "b")
	if !e.Touches("a") || !e.Touches("b") || e.Touches("c") {
		t.Fatal("Touches mismatch")
	}
	if !MarkerCircle.Valid() || Marker("x").Valid() {
		t.Fatal("Marker.Valid mismatch")
	}
}
