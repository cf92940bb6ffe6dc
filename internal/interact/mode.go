/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import "topodraw/internal/vector"

// Tool is the persistent tool mode chosen in the toolbar.
type Tool uint8

const (
	ToolSelect Tool = iota
	ToolPan
	ToolConnect
)

func (t Tool) String() string {
	switch t {
	case ToolPan:
		return "pan"
	case ToolConnect:
		return "connect"
	}
	return "select"
}

// Button identifies the pointer button of a press.
type Button uint8

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Modifiers is a bitmask of held keyboard modifiers.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModMeta
	ModAlt
)

// Toggle reports whether the modifiers request a multi-selection toggle.
func (m Modifiers) Toggle() bool { return m&(ModShift|ModCtrl|ModMeta) != 0 }

// Command reports whether ctrl or meta is held.
func (m Modifiers) Command() bool { return m&(ModCtrl|ModMeta) != 0 }

// PointerEvent is a pointer press in screen coordinates.
type PointerEvent struct {
	Screen vector.Pt
	Button Button
	Mods   Modifiers
}

// End names one end of an edge.
type End uint8

const (
	EndSource End = iota
	EndTarget
)

func (e End) String() string {
	if e == EndTarget {
		return "target"
	}
	return "source"
}

// Hover is the node under the pointer during connect and endpoint gestures
// together with the snapped anchor on its geometry. NodeID is empty when
// the pointer is over empty canvas.
type Hover struct {
	NodeID string
	Snap   vector.Snap
}

// Mode is the active pointer gesture. Exactly one is in effect at a time;
// every variant other than Idle exists only while a pointer is down.
type Mode interface{ isMode() }

type Idle struct{}

// Panning moves the viewport by the raw screen delta since the press.
type Panning struct {
	StartScreen vector.Pt
	StartView   vector.Viewport
}

// MarqueeSelecting stretches a world-space rectangle from Start to Current.
type MarqueeSelecting struct {
	Start, Current vector.Pt
}

// Rect is the normalized marquee rectangle.
func (m MarqueeSelecting) Rect() vector.Rect { return vector.RectFromCorners(m.Start, m.Current) }

// DraggingNode moves one node; its top-left snaps to the grid on every move.
type DraggingNode struct {
	NodeID     string
	StartWorld vector.Pt
	StartPos   vector.Pt
}

// DraggingNodes moves a multi-selection by raw deltas and snaps on release.
type DraggingNodes struct {
	IDs       []string
	LastWorld vector.Pt
}

// ResizingNode drags the bottom-right corner of a node.
type ResizingNode struct {
	NodeID string
}

// Connecting draws a pending edge from SourceID toward the pointer.
type Connecting struct {
	SourceID string
	Pointer  vector.Pt
	Hover    Hover
}

// DraggingEdgeEndpoint re-points one end of an existing edge.
type DraggingEdgeEndpoint struct {
	EdgeID  string
	End     End
	Pointer vector.Pt
	Hover   Hover
}

// DraggingEdgeLabel accumulates world deltas into an edge's label offset.
type DraggingEdgeLabel struct {
	EdgeID    string
	LastWorld vector.Pt
}

func (Idle) isMode()                 {}
func (Panning) isMode()              {}
func (MarqueeSelecting) isMode()     {}
func (DraggingNode) isMode()         {}
func (DraggingNodes) isMode()        {}
func (ResizingNode) isMode()         {}
func (Connecting) isMode()           {}
func (DraggingEdgeEndpoint) isMode() {}
func (DraggingEdgeLabel) isMode()    {}

// ModeName returns a short name for logs.
func ModeName(m Mode) string {
	switch m.(type) {
	case Panning:
		return "panning"
	case MarqueeSelecting:
		return "marquee"
	case DraggingNode:
		return "drag-node"
	case DraggingNodes:
		return "drag-nodes"
	case ResizingNode:
		return "resize"
	case Connecting:
		return "connect"
	case DraggingEdgeEndpoint:
		return "drag-endpoint"
	case DraggingEdgeLabel:
		return "drag-label"
	}
	return "idle"
}
