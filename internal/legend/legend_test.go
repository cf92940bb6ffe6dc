/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package legend

import (
	"slices"
	"testing"

	"topodraw/internal/domain"
)

type ports map[string]string

func (p ports) PortInfo(s, t string) string { return p[s+">"+t] }

func edge(id, s, t string, start, end domain.Marker) domain.Edge {
	e := domain.NewEdge(id, s, t)
	e.MarkerStart, e.MarkerEnd = start, end
	return e
}

func TestDirectionOf(t *testing.T) {
	cases := []struct {
		start, end domain.Marker
		want       Direction
	}{
		{domain.MarkerArrow, domain.MarkerArrow, Both},
		{domain.MarkerArrow, domain.MarkerNone, Backward},
		{domain.MarkerArrow, domain.MarkerCircle, Backward},
		{domain.MarkerNone, domain.MarkerArrow, Forward},
		{domain.MarkerNone, domain.MarkerNone, Forward},
		{domain.MarkerCircle, domain.MarkerCircle, Forward},
	}
	for _, tc := range cases {
		if got := DirectionOf(edge("e", "a", "b", tc.start, tc.end)); got != tc.want {
			t.Errorf("%s/%s = %s, want %s", tc.start, tc.end, got, tc.want)
		}
	}
}

func TestTraffic(t *testing.T) {
	nodes := []domain.Node{
		{ID: "a", Type: "uag", Label: "UAG"},
		{ID: "b", Type: "connection-server", Label: "CS"},
		{ID: "c", Type: "db", Label: "DB"},
	}
	custom := edge("e2", "b", "c", domain.MarkerArrow, domain.MarkerArrow)
	custom.CustomLabel = "TCP 1433"
	edges := []domain.Edge{
		edge("e1", "a", "b", domain.MarkerNone, domain.MarkerArrow),
		custom,
		edge("e3", "c", "a", domain.MarkerNone, domain.MarkerArrow), // no label
		edge("e4", "a", "gone", domain.MarkerNone, domain.MarkerArrow),
	}
	got := Traffic(nodes, edges, ports{"uag>connection-server": "HTTPS 443 / Blast 8443"})
	if len(got) != 2 {
		t.Fatalf("entries = %+v", got)
	}
	if got[0].Source != "UAG" || got[0].Target != "CS" || got[0].Direction != Forward {
		t.Fatalf("first = %+v", got[0])
	}
	if !slices.Equal(got[0].Lines(), []string{"HTTPS 443", "Blast 8443"}) {
		t.Fatalf("lines = %q", got[0].Lines())
	}
	if got[1].Label != "TCP 1433" || got[1].Direction != Both {
		t.Fatalf("second = %+v", got[1])
	}
}

func TestColors(t *testing.T) {
	red := edge("e2", "a", "b", domain.MarkerNone, domain.MarkerArrow)
	red.Color = "#ef4444"
	blank := edge("e3", "a", "b", domain.MarkerNone, domain.MarkerArrow)
	blank.Color = ""
	edges := []domain.Edge{edge("e1", "a", "b", domain.MarkerNone, domain.MarkerArrow), red, blank}

	got := Colors(edges, map[string]string{"#ef4444": "Production"})
	want := []ColorEntry{{Color: domain.DefaultColor}, {Color: "#ef4444", Label: "Production"}}
	if !slices.Equal(got, want) {
		t.Fatalf("Colors = %+v, want %+v", got, want)
	}
	if named := Named(got); len(named) != 1 || named[0].Color != "#ef4444" {
		t.Fatalf("Named = %+v", named)
	}
	if Colors(nil, nil) != nil {
		t.Fatal("no edges, no colours")
	}
}
