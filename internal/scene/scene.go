/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene owns the node and edge collections of an open design and its
// selection. Nodes are kept in painter's order: later nodes render on top and
// win hit tests. All mutation goes through methods on Scene; readers get
// copies.
package scene

import (
	"slices"

	"topodraw/internal/domain"
	"topodraw/internal/vector"
)

// Scene is the in-memory model of one design.
type Scene struct {
	nodes  []domain.Node
	nodeAt map[string]int
	edges  []domain.Edge
	edgeAt map[string]int
	sel    Selection
	newID  func() string
}

// Option configures a Scene.
type Option func(*Scene)

// WithIDs overrides the id generator (domain.NewID by default).
func WithIDs(gen func() string) Option { return func(s *Scene) { s.newID = gen } }

// New returns an empty scene.
func New(opts ...Option) *Scene {
	s := &Scene{sel: None{}, newID: domain.NewID}
	for _, o := range opts {
		o(s)
	}
	s.reindex()
	return s
}

// Load replaces the contents with copies of nodes and edges and clears the selection.
func (s *Scene) Load(nodes []domain.Node, edges []domain.Edge) {
	s.nodes = slices.Clone(nodes)
	s.edges = make([]domain.Edge, len(edges))
	for i, e := range edges {
		s.edges[i] = e.Clone()
	}
	s.sel = None{}
	s.reindex()
}

// NewID returns a fresh identifier from the scene's generator.
func (s *Scene) NewID() string { return s.newID() }

func (s *Scene) reindex() {
	s.nodeAt = make(map[string]int, len(s.nodes))
	for i, n := range s.nodes {
		s.nodeAt[n.ID] = i
	}
	s.edgeAt = make(map[string]int, len(s.edges))
	for i, e := range s.edges {
		s.edgeAt[e.ID] = i
	}
}

// Nodes returns a copy of the nodes in painter's order.
func (s *Scene) Nodes() []domain.Node {
	out := make([]domain.Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Edges returns a copy of the edges.
func (s *Scene) Edges() []domain.Edge {
	out := make([]domain.Edge, len(s.edges))
	for i, e := range s.edges {
		out[i] = e.Clone()
	}
	return out
}

func (s *Scene) NodeCount() int { return len(s.nodes) }
func (s *Scene) EdgeCount() int { return len(s.edges) }

// Node looks up a node by id.
func (s *Scene) Node(id string) (domain.Node, bool) {
	i, ok := s.nodeAt[id]
	if !ok {
		return domain.Node{}, false
	}
	return s.nodes[i], true
}

// Edge looks up an edge by id.
func (s *Scene) Edge(id string) (domain.Edge, bool) {
	i, ok := s.edgeAt[id]
	if !ok {
		return domain.Edge{}, false
	}
	return s.edges[i].Clone(), true
}

// TopmostAt returns the last node in painter's order whose bounds contain p.
func (s *Scene) TopmostAt(p vector.Pt) (domain.Node, bool) {
	for i := len(s.nodes) - 1; i >= 0; i-- {
		if s.nodes[i].Rect().Contains(p) {
			return s.nodes[i], true
		}
	}
	return domain.Node{}, false
}

// NodesOverlapping returns ids of nodes whose bounds overlap r, in painter's order.
func (s *Scene) NodesOverlapping(r vector.Rect) []string {
	var ids []string
	for _, n := range s.nodes {
		if n.Rect().Overlaps(r) {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// AddNode appends n on top of the painter's order, assigning an id when empty.
func (s *Scene) AddNode(n domain.Node) domain.Node {
	if n.ID == "" {
		n.ID = s.newID()
	}
	if i, dup := s.nodeAt[n.ID]; dup {
		s.nodes[i] = n
		return n
	}
	s.nodeAt[n.ID] = len(s.nodes)
	s.nodes = append(s.nodes, n)
	return n
}

// UpdateNode applies fn to the node with id. It reports whether the node exists.
func (s *Scene) UpdateNode(id string, fn func(*domain.Node)) bool {
	i, ok := s.nodeAt[id]
	if !ok {
		return false
	}
	fn(&s.nodes[i])
	s.nodes[i].ID = id
	return true
}

// AddEdge appends e, assigning an id when empty.
func (s *Scene) AddEdge(e domain.Edge) domain.Edge {
	if e.ID == "" {
		e.ID = s.newID()
	}
	if i, dup := s.edgeAt[e.ID]; dup {
		s.edges[i] = e
		return e
	}
	s.edgeAt[e.ID] = len(s.edges)
	s.edges = append(s.edges, e)
	return e
}

// UpdateEdge applies fn to the edge with id. It reports whether the edge exists.
func (s *Scene) UpdateEdge(id string, fn func(*domain.Edge)) bool {
	i, ok := s.edgeAt[id]
	if !ok {
		return false
	}
	fn(&s.edges[i])
	s.edges[i].ID = id
	return true
}

// RemoveNodes deletes the given nodes and every edge touching any of them.
// It returns the number of nodes and edges removed.
func (s *Scene) RemoveNodes(ids ...string) (nodes, edges int) {
	if len(ids) == 0 {
		return 0, 0
	}
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
	}
	before := len(s.nodes)
	s.nodes = slices.DeleteFunc(s.nodes, func(n domain.Node) bool { return gone[n.ID] })
	nodes = before - len(s.nodes)

	before = len(s.edges)
	s.edges = slices.DeleteFunc(s.edges, func(e domain.Edge) bool { return gone[e.Source] || gone[e.Target] })
	edges = before - len(s.edges)

	s.reindex()
	s.pruneSelection()
	return nodes, edges
}

// RemoveEdge deletes a single edge.
func (s *Scene) RemoveEdge(id string) bool {
	if _, ok := s.edgeAt[id]; !ok {
		return false
	}
	s.edges = slices.DeleteFunc(s.edges, func(e domain.Edge) bool { return e.ID == id })
	s.reindex()
	s.pruneSelection()
	return true
}

// pruneSelection drops selection members that no longer exist.
func (s *Scene) pruneSelection() {
	switch sel := s.sel.(type) {
	case Single:
		if _, ok := s.lookup(sel.Kind, sel.ID); !ok {
			s.sel = None{}
		}
	case Multi:
		s.sel = multiOf(slices.DeleteFunc(slices.Clone(sel.IDs), func(id string) bool {
			_, ok := s.nodeAt[id]
			return !ok
		}))
	}
}

func (s *Scene) lookup(k Kind, id string) (int, bool) {
	if k == KindEdge {
		i, ok := s.edgeAt[id]
		return i, ok
	}
	i, ok := s.nodeAt[id]
	return i, ok
}

// Design assembles a persisted snapshot from the scene and the given document fields.
func (s *Scene) Design(meta domain.Design) domain.Design {
	d := meta.Clone()
	d.Nodes = s.Nodes()
	d.Edges = s.Edges()
	return d
}
