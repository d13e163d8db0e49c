package engine

import (
	"math"

	"github.com/quotebuilder/sketchpad/backend-go/internal/document"
)

// Matrix2D represents a 2D affine transformation matrix.
// Layout: [a, b, c, d, e, f] representing:
// | a  c  e |
// | b  d  f |
// | 0  0  1 |
type Matrix2D [6]float64

// Identity returns the identity matrix.
func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// RotateDegrees returns a rotation matrix (angle in degrees).
func RotateDegrees(degrees float64) Matrix2D {
	rad := degrees * math.Pi / 180.0
	cos := math.Cos(rad)
	sin := math.Sin(rad)
	return Matrix2D{cos, sin, -sin, cos, 0, 0}
}

// About conjugates m so that it acts around pivot instead of the origin.
func (m Matrix2D) About(pivot document.Point) Matrix2D {
	return Translate(pivot.X, pivot.Y).Multiply(m).Multiply(Translate(-pivot.X, -pivot.Y))
}

// Multiply multiplies this matrix by another: result = m * other
// This applies 'other' first, then 'm'.
func (m Matrix2D) Multiply(other Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*other[0] + m[2]*other[1],
		m[1]*other[0] + m[3]*other[1],
		m[0]*other[2] + m[2]*other[3],
		m[1]*other[2] + m[3]*other[3],
		m[0]*other[4] + m[2]*other[5] + m[4],
		m[1]*other[4] + m[3]*other[5] + m[5],
	}
}

// Apply transforms a point.
func (m Matrix2D) Apply(p document.Point) document.Point {
	return document.Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Determinant returns the determinant of the matrix.
func (m Matrix2D) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// ScaleFactors returns the lengths the unit axes are mapped to.
func (m Matrix2D) ScaleFactors() (float64, float64) {
	return math.Hypot(m[0], m[1]), math.Hypot(m[2], m[3])
}

// RotationDegrees extracts the rotation of the x axis.
func (m Matrix2D) RotationDegrees() float64 {
	return math.Atan2(m[1], m[0]) * 180.0 / math.Pi
}

// ToSlice returns the matrix as a float64 slice for JSON serialization.
func (m Matrix2D) ToSlice() []float64 {
	return []float64{m[0], m[1], m[2], m[3], m[4], m[5]}
}

// IsIdentity checks if this is the identity matrix (within epsilon).
// Finite reports whether every coefficient is a real number.
func (m Matrix2D) Finite() bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (m Matrix2D) IsIdentity() bool {
	const eps = 1e-10
	return math.Abs(m[0]-1) < eps &&
		math.Abs(m[1]) < eps &&
		math.Abs(m[2]) < eps &&
		math.Abs(m[3]-1) < eps &&
		math.Abs(m[4]) < eps &&
		math.Abs(m[5]) < eps
}

// transformObject applies m to the object's geometry in place. Point based
// kinds map every vertex. Rectangles and circles keep their axis-aligned
// description: their centre moves with m, their extent scales by m's axis
// factors and the rotation part accumulates into Angle.
func transformObject(o *document.Object, m Matrix2D) {
	switch o.Kind {
	case document.KindPath, document.KindPolyline, document.KindPolygon:
		for i, p := range o.Points {
			o.Points[i] = m.Apply(p)
		}
	case document.KindLine:
		o.From = m.Apply(o.From)
		o.To = m.Apply(o.To)
	case document.KindRect:
		sx, sy := m.ScaleFactors()
		c := m.Apply(document.Pt(o.Origin.X+o.Width/2, o.Origin.Y+o.Height/2))
		o.Width *= sx
		o.Height *= sy
		o.Origin = document.Pt(c.X-o.Width/2, c.Y-o.Height/2)
		o.Angle = normalizeDegrees(o.Angle + m.RotationDegrees())
	case document.KindCircle:
		sx, sy := m.ScaleFactors()
		o.Center = m.Apply(o.Center)
		o.Radius *= math.Sqrt(sx * sy)
		o.Angle = normalizeDegrees(o.Angle + m.RotationDegrees())
	}
}

func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	if math.Abs(d) < 1e-9 || math.Abs(d-360) < 1e-9 {
		return 0
	}
	return d
}
