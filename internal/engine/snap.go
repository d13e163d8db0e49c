package engine

import (
	"math"

	"github.com/quotebuilder/sketchpad/backend-go/internal/document"
)

const (
	DefaultCloseRadius    = 20.0
	DefaultOrthoThreshold = 15.0
)

// SnapOptions holds the screen-space thresholds used for polyline points.
// The surface has no zoom, so pixels are surface units.
type SnapOptions struct {
	CloseRadius    float64
	OrthoThreshold float64
}

// SnapResult is the corrected point and whether it closed the shape.
type SnapResult struct {
	Point  document.Point
	Closed bool
}

// NearFirst reports whether p lies inside the closing radius of the first
// pending point. Closing needs at least three points already placed.
func NearFirst(pending []document.Point, p document.Point, radius float64) bool {
	if len(pending) < 3 {
		return false
	}
	return pending[0].Dist(p) < radius
}

// SnapPoint applies the closing snap and, when that did not fire, the
// per-axis orthogonal snap against the previous point.
func SnapPoint(pending []document.Point, proposed document.Point, opts SnapOptions) SnapResult {
	if NearFirst(pending, proposed, opts.CloseRadius) {
		return SnapResult{Point: pending[0], Closed: true}
	}
	if len(pending) == 0 {
		return SnapResult{Point: proposed}
	}

	prev := pending[len(pending)-1]
	p := proposed
	if math.Abs(p.X-prev.X) < opts.OrthoThreshold {
		p.X = prev.X
	}
	if math.Abs(p.Y-prev.Y) < opts.OrthoThreshold {
		p.Y = prev.Y
	}
	return SnapResult{Point: p}
}
