package engine

import "github.com/quotebuilder/sketchpad/backend-go/internal/document"

const (
	snapRingRadius = 6.0
	snapRingColor  = "#22c55e"
)

// PendingPolyline is the click-built point list alive between the first
// polyline click and the finish.
type PendingPolyline struct {
	Points []document.Point
	Style  document.Style
}

// polylineBuilder collects discrete clicks into a polyline or polygon.
type polylineBuilder struct {
	snap    SnapOptions
	pending *PendingPolyline
}

func (b *polylineBuilder) active() bool { return b.pending != nil }

// click starts a pending polyline or appends a snapped point to it. It
// reports whether the point closed the shape. A click that snaps onto the
// last point adds nothing.
func (b *polylineBuilder) click(p document.Point, style document.Style) (closed bool) {
	if b.pending == nil {
		b.pending = &PendingPolyline{Points: []document.Point{p}, Style: style.Clone()}
		return false
	}

	pts := b.pending.Points
	res := SnapPoint(pts, p, b.snap)
	if !res.Closed && res.Point == pts[len(pts)-1] {
		return false
	}
	b.pending.Points = append(pts, res.Point)
	return res.Closed
}

// shouldClose applies the closing-snap test to a finish gesture position.
func (b *polylineBuilder) shouldClose(p document.Point) bool {
	return b.pending != nil && NearFirst(b.pending.Points, p, b.snap.CloseRadius)
}

// take ends the session and returns the object to commit, or nil when
// fewer than two points were collected. A close request with fewer than
// three points yields an open polyline. Polygon vertices always end on
// the first point, however the close was requested.
func (b *polylineBuilder) take(close bool) *document.Object {
	pending := b.pending
	b.pending = nil
	if pending == nil || len(pending.Points) < 2 {
		return nil
	}
	pts := pending.Points
	if !close || len(pts) < 3 {
		return &document.Object{Kind: document.KindPolyline, Points: pts, Style: pending.Style}
	}
	if pts[len(pts)-1] != pts[0] {
		pts = append(pts, pts[0])
	}
	return &document.Object{Kind: document.KindPolygon, Points: pts, Style: pending.Style}
}

// provisional is the live feedback object for the collected points.
func (b *polylineBuilder) provisional() *document.Object {
	if b.pending == nil {
		return nil
	}
	kind := document.KindPolyline
	if len(b.pending.Points) < 2 {
		kind = document.KindPath
	}
	return &document.Object{
		Kind:   kind,
		Points: append([]document.Point(nil), b.pending.Points...),
		Style:  b.pending.Style.Clone(),
	}
}

// preview returns the elastic segment from the last point to the pointer
// and, when the pointer is inside the closing radius, the snap ring.
func (b *polylineBuilder) preview(pointer document.Point) (segment, ring *document.Object) {
	if b.pending == nil {
		return nil, nil
	}
	pts := b.pending.Points
	style := b.pending.Style.Clone()
	style.DashPattern = []float64{4, 4}
	segment = &document.Object{Kind: document.KindLine, From: pts[len(pts)-1], To: pointer, Style: style}

	if NearFirst(pts, pointer, b.snap.CloseRadius) {
		ring = &document.Object{
			Kind:   document.KindCircle,
			Center: pts[0],
			Radius: snapRingRadius,
			Style:  document.Style{StrokeColor: snapRingColor, StrokeWidth: 2},
		}
	}
	return segment, ring
}
