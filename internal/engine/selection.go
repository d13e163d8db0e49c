package engine

import (
	"errors"
	"fmt"

	"github.com/quotebuilder/sketchpad/backend-go/internal/document"
)

var ErrNotSelectable = errors.New("object is not selectable")

// StylePatch carries the style attributes to change on a selection. Nil
// fields are left as they are.
type StylePatch struct {
	StrokeColor *string    `json:"strokeColor,omitempty"`
	StrokeWidth *float64   `json:"strokeWidth,omitempty"`
	DashPattern *[]float64 `json:"dashPattern,omitempty"`
}

// Apply returns s with the patch applied.
func (p StylePatch) Apply(s document.Style) document.Style {
	s = s.Clone()
	if p.StrokeColor != nil {
		s.StrokeColor = *p.StrokeColor
	}
	if p.StrokeWidth != nil {
		s.StrokeWidth = *p.StrokeWidth
	}
	if p.DashPattern != nil {
		s.DashPattern = append([]float64(nil), (*p.DashPattern)...)
	}
	return s
}

func (p StylePatch) validate() error {
	sample := document.Object{Kind: document.KindLine, Style: p.Apply(document.Style{StrokeColor: "black", StrokeWidth: 1})}
	return sample.Validate()
}

// Selection toggles interactivity for the active tool and forwards the
// commands that act on the host's active selection. Every command that
// changes the surface records exactly one snapshot.
type Selection struct {
	surface *Surface
	history *History
}

func newSelection(s *Surface, h *History) *Selection {
	return &Selection{surface: s, history: h}
}

// applyInteractivity sets every object's flags for tool t and drops the
// active selection.
func (c *Selection) applyInteractivity(t Tool) {
	flags := interactiveFor(t)
	for _, o := range c.surface.objects {
		o.Interactive = flags
	}
	c.surface.setSelection(nil)
}

// Select replaces the active selection. Only selectable objects can be
// picked; an empty list clears the selection.
func (c *Selection) Select(ids []string) error {
	picked := make([]string, 0, len(ids))
	for _, id := range ids {
		o := c.surface.Object(id)
		if o == nil || !o.Interactive.Selectable {
			return fmt.Errorf("%w: %s", ErrNotSelectable, id)
		}
		picked = append(picked, id)
	}
	c.surface.setSelection(picked)
	return nil
}

// DeleteSelected removes every selected object.
func (c *Selection) DeleteSelected() (int, error) {
	n := c.surface.Remove(c.surface.Selection())
	if n == 0 {
		return 0, nil
	}
	return n, c.history.Snapshot()
}

// ApplyStyle changes the style of every selected object.
func (c *Selection) ApplyStyle(p StylePatch) (int, error) {
	if err := p.validate(); err != nil {
		return 0, err
	}
	n := 0
	for _, id := range c.surface.selection {
		if o := c.surface.Object(id); o != nil {
			o.Style = p.Apply(o.Style)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	c.surface.Render()
	return n, c.history.Snapshot()
}

// ApplyTransform commits a move/resize/rotate the host performed on the
// selection, expressed as one affine matrix in surface coordinates. The
// selection is transformed as a whole or not at all.
func (c *Selection) ApplyTransform(m Matrix2D) (int, error) {
	if m.IsIdentity() {
		return 0, nil
	}
	var targets, moved []*document.Object
	for _, id := range c.surface.selection {
		o := c.surface.Object(id)
		if o == nil {
			continue
		}
		t := o.Clone()
		transformObject(t, m)
		if err := t.Validate(); err != nil {
			return 0, fmt.Errorf("transform %s: %w", o.ID, err)
		}
		targets = append(targets, o)
		moved = append(moved, t)
	}
	if len(targets) == 0 {
		return 0, nil
	}

	before := make([]document.Object, len(targets))
	for i, o := range targets {
		before[i] = *o
		*o = *moved[i]
	}
	if err := c.history.Snapshot(); err != nil {
		for i, o := range targets {
			*o = before[i]
		}
		return 0, err
	}
	c.surface.Render()
	return len(targets), nil
}
