package engine

import (
	"fmt"

	"github.com/quotebuilder/sketchpad/backend-go/internal/document"
)

// Tool is the active interaction mode.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolFreehand  Tool = "freehand"
	ToolRectangle Tool = "rectangle"
	ToolCircle    Tool = "circle"
	ToolLine      Tool = "line"
	ToolPolyline  Tool = "polyline"
)

// Tools lists every tool in toolbar order.
var Tools = []Tool{ToolSelect, ToolFreehand, ToolRectangle, ToolCircle, ToolLine, ToolPolyline}

// ParseTool converts a tool name coming from a host.
func ParseTool(s string) (Tool, error) {
	for _, t := range Tools {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tool %q", s)
}

// IsDrawing reports whether the tool creates objects.
func (t Tool) IsDrawing() bool {
	return t != ToolSelect
}

// isDrag reports whether the tool builds objects from a pointer drag.
func (t Tool) isDrag() bool {
	switch t {
	case ToolFreehand, ToolRectangle, ToolCircle, ToolLine:
		return true
	}
	return false
}

// interactiveFor returns the object flags implied by a tool: everything is
// grabbable under select and nothing is while drawing.
func interactiveFor(t Tool) document.Interactive {
	on := t == ToolSelect
	return document.Interactive{Selectable: on, EventTarget: on}
}

// ToolMachine owns the active tool. Entering a tool runs the hooks the
// editor registers; no state is terminal and every transition is allowed.
type ToolMachine struct {
	current Tool
	onExit  func(from Tool)
	onEnter func(to Tool)
}

// NewToolMachine starts in the freehand tool.
func NewToolMachine(onExit, onEnter func(Tool)) *ToolMachine {
	return &ToolMachine{current: ToolFreehand, onExit: onExit, onEnter: onEnter}
}

// Current returns the active tool.
func (m *ToolMachine) Current() Tool { return m.current }

// Set transitions to t. Re-entering the current tool still runs the hooks
// so flags and brush settings are re-applied.
func (m *ToolMachine) Set(t Tool) {
	if m.onExit != nil {
		m.onExit(m.current)
	}
	m.current = t
	if m.onEnter != nil {
		m.onEnter(t)
	}
}
