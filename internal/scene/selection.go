/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import "slices"

// Kind distinguishes what a single selection refers to.
type Kind uint8

const (
	KindNode Kind = iota + 1
	KindEdge
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindEdge:
		return "edge"
	}
	return "unknown"
}

// Selection is one of None, Single or Multi. Single and multi selection are
// mutually exclusive by construction.
type Selection interface{ isSelection() }

// None is the empty selection.
type None struct{}

// Single selects exactly one node or edge.
type Single struct {
	ID   string
	Kind Kind
}

// Multi selects a set of nodes in selection order.
type Multi struct{ IDs []string }

func (None) isSelection()   {}
func (Single) isSelection() {}
func (Multi) isSelection()  {}

// Contains reports whether id is a member of the set.
func (m Multi) Contains(id string) bool { return slices.Contains(m.IDs, id) }

// multiOf builds a Multi or None for an empty set.
func multiOf(ids []string) Selection {
	if len(ids) == 0 {
		return None{}
	}
	return Multi{IDs: ids}
}
