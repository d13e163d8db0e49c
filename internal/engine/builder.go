package engine

import (
	"math"

	"github.com/quotebuilder/sketchpad/backend-go/internal/document"
)

// DefaultDecimation is the minimum spacing, in pixels, between kept
// freehand samples.
const DefaultDecimation = 8.0

// Gesture is the state of one pointer-down → move* → up sequence. It lives
// only for the duration of the drag.
type Gesture struct {
	Anchor document.Point
	Last   document.Point
	Object *document.Object
}

// ShapeBuilder turns a drag into a provisional object. Begin creates the
// zero-extent object at the anchor; Update recomputes it from the anchor
// and the live pointer; End applies the final pointer position.
type ShapeBuilder interface {
	Begin(anchor document.Point, style document.Style) *Gesture
	Update(g *Gesture, p document.Point)
	End(g *Gesture, p document.Point)
}

type rectBuilder struct{}

func (rectBuilder) Begin(anchor document.Point, style document.Style) *Gesture {
	return &Gesture{
		Anchor: anchor,
		Last:   anchor,
		Object: &document.Object{Kind: document.KindRect, Origin: anchor, Style: style.Clone()},
	}
}

func (rectBuilder) Update(g *Gesture, p document.Point) {
	g.Last = p
	o := g.Object
	o.Origin = document.Pt(math.Min(g.Anchor.X, p.X), math.Min(g.Anchor.Y, p.Y))
	o.Width = math.Abs(p.X - g.Anchor.X)
	o.Height = math.Abs(p.Y - g.Anchor.Y)
}

func (b rectBuilder) End(g *Gesture, p document.Point) { b.Update(g, p) }

type circleBuilder struct{}

func (circleBuilder) Begin(anchor document.Point, style document.Style) *Gesture {
	return &Gesture{
		Anchor: anchor,
		Last:   anchor,
		Object: &document.Object{Kind: document.KindCircle, Center: anchor, Style: style.Clone()},
	}
}

func (circleBuilder) Update(g *Gesture, p document.Point) {
	g.Last = p
	g.Object.Center = g.Anchor
	g.Object.Radius = g.Anchor.Dist(p)
}

func (b circleBuilder) End(g *Gesture, p document.Point) { b.Update(g, p) }

type lineBuilder struct{}

func (lineBuilder) Begin(anchor document.Point, style document.Style) *Gesture {
	return &Gesture{
		Anchor: anchor,
		Last:   anchor,
		Object: &document.Object{Kind: document.KindLine, From: anchor, To: anchor, Style: style.Clone()},
	}
}

func (lineBuilder) Update(g *Gesture, p document.Point) {
	g.Last = p
	g.Object.From = g.Anchor
	g.Object.To = p
}

func (b lineBuilder) End(g *Gesture, p document.Point) { b.Update(g, p) }

// freehandBrush records a continuous stroke, dropping samples closer than
// decimate to the last kept one.
type freehandBrush struct {
	style    document.Style
	decimate float64
}

func newFreehandBrush(style document.Style, decimate float64) *freehandBrush {
	return &freehandBrush{style: style.Clone(), decimate: decimate}
}

// Begin ignores the passed style; the brush carries the style it was
// installed with.
func (b *freehandBrush) Begin(anchor document.Point, _ document.Style) *Gesture {
	return &Gesture{
		Anchor: anchor,
		Last:   anchor,
		Object: &document.Object{
			Kind:   document.KindPath,
			Points: []document.Point{anchor},
			Style:  b.style.Clone(),
		},
	}
}

func (b *freehandBrush) Update(g *Gesture, p document.Point) {
	g.Last = p
	pts := g.Object.Points
	if pts[len(pts)-1].Dist(p) < b.decimate {
		return
	}
	g.Object.Points = append(pts, p)
}

func (b *freehandBrush) End(g *Gesture, p document.Point) {
	g.Last = p
	pts := g.Object.Points
	if pts[len(pts)-1] != p {
		g.Object.Points = append(pts, p)
	}
}
