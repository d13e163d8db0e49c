package engine

import (
	"math"

	"github.com/quotebuilder/sketchpad/backend-go/internal/document"
)

// Rect represents an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains checks if a point is inside the rect.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// IsEmpty checks if the rect has negative extent. A zero-size rect still
// marks a location (degenerate shapes are hittable once inflated).
func (r Rect) IsEmpty() bool {
	return r.Width < 0 || r.Height < 0
}

// Inflate grows the rect by d on every side.
func (r Rect) Inflate(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}

	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Center returns the center point of the rect.
func (r Rect) Center() document.Point {
	return document.Pt(r.X+r.Width/2, r.Y+r.Height/2)
}

func boundsOfPoints(pts []document.Point) Rect {
	if len(pts) == 0 {
		return Rect{Width: -1, Height: -1}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, minY = min(minX, p.X), min(minY, p.Y)
		maxX, maxY = max(maxX, p.X), max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// ObjectBounds returns the geometry's axis-aligned bounds, rotation included,
// without the stroke.
func ObjectBounds(o *document.Object) Rect {
	switch o.Kind {
	case document.KindRect:
		return boundsOfPoints(rectCorners(o))
	case document.KindCircle:
		return Rect{X: o.Center.X - o.Radius, Y: o.Center.Y - o.Radius, Width: 2 * o.Radius, Height: 2 * o.Radius}
	case document.KindLine:
		return boundsOfPoints([]document.Point{o.From, o.To})
	default:
		return boundsOfPoints(o.Points)
	}
}

// rectCorners returns the rectangle's four corners in drawing order with
// Angle applied around its centre.
func rectCorners(o *document.Object) []document.Point {
	corners := []document.Point{
		o.Origin,
		document.Pt(o.Origin.X+o.Width, o.Origin.Y),
		document.Pt(o.Origin.X+o.Width, o.Origin.Y+o.Height),
		document.Pt(o.Origin.X, o.Origin.Y+o.Height),
	}
	if o.Angle == 0 {
		return corners
	}
	m := RotateDegrees(o.Angle).About(document.Pt(o.Origin.X+o.Width/2, o.Origin.Y+o.Height/2))
	for i, c := range corners {
		corners[i] = m.Apply(c)
	}
	return corners
}
