/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"testing"

	"topodraw/internal/domain"
	"topodraw/internal/vector"
)

func ptr[T any](v T) *T { return &v }

func TestPatchSingleNode(t *testing.T) {
	s := fixture()
	s.Select(KindNode, "a")
	n := s.PatchSelectedNodes(NodePatch{Label: ptr("Edge GW"), CustomColor: ptr("#ef4444"), Opacity: ptr(1.7)})
	if n != 1 {
		t.Fatalf("patched %d nodes", n)
	}
	a, _ := s.Node("a")
	if a.Label != "Edge GW" || a.CustomColor != "#ef4444" || a.Opacity != 1 {
		t.Fatalf("node a = %+v", a)
	}
}

func TestPatchMultiOnlyColorAndOpacity(t *testing.T) {
	s := fixture()
	s.AddToMulti("a", "b")
	if n := s.PatchSelectedNodes(NodePatch{Label: ptr("ignored"), CustomColor: ptr("#22c55e"), Opacity: ptr(0.4)}); n != 2 {
		t.Fatalf("patched %d nodes", n)
	}
	for _, id := range []string{"a", "b"} {
		n, _ := s.Node(id)
		if n.Label == "ignored" || n.CustomColor != "#22c55e" || n.Opacity != 0.4 {
			t.Fatalf("node %s = %+v", id, n)
		}
	}
	c, _ := s.Node("c")
	if c.CustomColor != "" {
		t.Fatalf("unselected node changed: %+v", c)
	}
}

func TestPatchSelectedEdge(t *testing.T) {
	s := fixture()
	if s.PatchSelectedEdge(EdgePatch{Color: ptr("#000")}) {
		t.Fatal("patch without edge selection should fail")
	}
	s.Select(KindEdge, "ab")
	ok := s.PatchSelectedEdge(EdgePatch{
		CustomLabel: ptr("TCP 443"),
		Width:       ptr(0.0),
		MarkerStart: ptr(domain.MarkerArrow),
		MarkerEnd:   ptr(domain.Marker("bogus")),
	})
	if !ok {
		t.Fatal("patch failed")
	}
	e, _ := s.Edge("ab")
	if e.CustomLabel != "TCP 443" || e.Width != domain.DefaultEdgeWidth || e.MarkerStart != domain.MarkerArrow || e.MarkerEnd != domain.MarkerArrow {
		t.Fatalf("edge = %+v", e)
	}
}

func TestResetAndSwapEdge(t *testing.T) {
	s := fixture()
	s.UpdateEdge("ab", func(e *domain.Edge) {
		e.SourceSide, e.SourceRatio = vector.Bottom, domain.Ratio(0.2)
		e.LabelOffsetX = 30
	})
	if !s.SwapEdgeDirection("ab") {
		t.Fatal("swap failed")
	}
	e, _ := s.Edge("ab")
	if e.Source != "b" || e.Target != "a" || e.TargetSide != vector.Bottom || e.TargetAt() != 0.2 ||
		e.MarkerStart != domain.MarkerArrow || e.MarkerEnd != domain.MarkerNone {
		t.Fatalf("swapped edge = %+v", e)
	}
	s.ResetEdgeRouting("ab")
	e, _ = s.Edge("ab")
	if e.TargetSide != vector.SideNone || e.TargetRatio != nil || e.LabelOffsetX != 0 {
		t.Fatalf("reset edge = %+v", e)
	}
	if s.ResetEdgeRouting("missing") {
		t.Fatal("reset of unknown edge reported success")
	}
}
