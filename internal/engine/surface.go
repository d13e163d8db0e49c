package engine

import (
	"slices"

	"github.com/quotebuilder/sketchpad/backend-go/internal/document"
)

// Scene is the render-ready state of a surface handed to a Renderer.
// Overlays are provisional objects (shapes being dragged, the elastic
// polyline segment, the snap ring) drawn above committed objects and never
// serialized.
type Scene struct {
	Width      int
	Height     int
	Background string
	Objects    []*document.Object
	Overlays   []*document.Object
	Selection  []string
}

// Renderer is the adapter to the concrete drawing backend (a browser
// canvas through wasm, a websocket client, or nothing in tests).
type Renderer interface {
	Render(scene Scene)
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(scene Scene)

func (f RendererFunc) Render(scene Scene) { f(scene) }

type overlaySlot int

const (
	overlayShape overlaySlot = iota
	overlayPreview
	overlayRing
	numOverlays
)

// Surface is the ordered collection of committed drawing objects plus the
// background, viewport dimensions and the host's active selection.
type Surface struct {
	objects    []*document.Object
	background string
	width      int
	height     int
	selection  []string
	overlays   [numOverlays]*document.Object
	renderer   Renderer
}

// NewSurface creates an empty white surface of the given size.
func NewSurface(width, height int, r Renderer) *Surface {
	return &Surface{
		background: document.DefaultBackground,
		width:      width,
		height:     height,
		renderer:   r,
	}
}

// --- Mutations ---

// Add appends an object on top of the paint order.
func (s *Surface) Add(o *document.Object) {
	s.objects = append(s.objects, o)
	s.Render()
}

// Remove deletes the objects with the given ids and returns how many were
// removed.
func (s *Surface) Remove(ids []string) int {
	if len(ids) == 0 {
		return 0
	}
	before := len(s.objects)
	s.objects = slices.DeleteFunc(s.objects, func(o *document.Object) bool {
		return slices.Contains(ids, o.ID)
	})
	s.selection = slices.DeleteFunc(s.selection, func(id string) bool {
		return slices.Contains(ids, id)
	})
	removed := before - len(s.objects)
	if removed > 0 {
		s.Render()
	}
	return removed
}

// Clear removes every object and resets the background.
func (s *Surface) Clear() {
	s.objects = nil
	s.selection = nil
	s.background = document.DefaultBackground
	s.Render()
}

// SetBackground changes the fill colour.
func (s *Surface) SetBackground(c string) {
	s.background = c
	s.Render()
}

// SetDimensions follows the host viewport. Object coordinates are left
// untouched; only the rendering area changes.
func (s *Surface) SetDimensions(width, height int) {
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	s.Render()
}

// Serialize captures the committed objects and background.
func (s *Surface) Serialize() ([]byte, error) {
	return document.EncodeSnapshot(s.background, s.objects)
}

// Restore replaces the surface contents with a decoded snapshot. The
// active selection is dropped; overlays belong to in-flight gestures and
// are left alone.
func (s *Surface) Restore(snap *document.Snapshot) {
	objects := make([]*document.Object, 0, len(snap.Objects))
	for i := range snap.Objects {
		objects = append(objects, snap.Objects[i].Clone())
	}
	s.objects = objects
	s.background = snap.Background
	s.selection = nil
	s.Render()
}

// --- Overlays ---

func (s *Surface) setOverlay(slot overlaySlot, o *document.Object) {
	s.overlays[slot] = o
	s.Render()
}

// --- Queries ---

// Objects returns the committed objects in paint order. The slice is a
// copy; the objects are shared.
func (s *Surface) Objects() []*document.Object {
	return slices.Clone(s.objects)
}

// Object returns the committed object with the given id, or nil.
func (s *Surface) Object(id string) *document.Object {
	for _, o := range s.objects {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (s *Surface) Background() string { return s.background }

func (s *Surface) Dimensions() (int, int) { return s.width, s.height }

// Selection returns the ids of the active selection.
func (s *Surface) Selection() []string { return slices.Clone(s.selection) }

func (s *Surface) setSelection(ids []string) {
	s.selection = ids
	s.Render()
}

// Scene returns the current render-ready state.
func (s *Surface) Scene() Scene {
	var overlays []*document.Object
	for _, o := range s.overlays {
		if o != nil {
			overlays = append(overlays, o)
		}
	}
	return Scene{
		Width:      s.width,
		Height:     s.height,
		Background: s.background,
		Objects:    slices.Clone(s.objects),
		Overlays:   overlays,
		Selection:  slices.Clone(s.selection),
	}
}

// Render pushes the current scene to the renderer, if any.
func (s *Surface) Render() {
	if s.renderer == nil {
		return
	}
	s.renderer.Render(s.Scene())
}

// HitTest returns the ID of the topmost interactive object whose stroked
// bounds contain the point, or an empty string.
func (s *Surface) HitTest(x, y float64) string {
	for i := len(s.objects) - 1; i >= 0; i-- {
		o := s.objects[i]
		if !o.Interactive.EventTarget {
			continue
		}
		if ObjectBounds(o).Inflate(o.Style.StrokeWidth / 2).Contains(x, y) {
			return o.ID
		}
	}
	return ""
}

// SelectionBounds returns the combined bounding box of the active selection.
func (s *Surface) SelectionBounds() Rect {
	result := Rect{Width: -1, Height: -1}
	for _, id := range s.selection {
		if o := s.Object(id); o != nil {
			result = result.Union(ObjectBounds(o))
		}
	}
	return result
}
