package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// SnapshotVersion is bumped whenever the serialized surface layout changes.
const SnapshotVersion = 1

// DefaultBackground is the fill a fresh or cleared surface starts with.
const DefaultBackground = "#ffffff"

var (
	ErrUnknownKind     = errors.New("unknown object kind")
	ErrInvalidStyle    = errors.New("invalid style")
	ErrInvalidGeometry = errors.New("invalid geometry")
	ErrSnapshotVersion = errors.New("unsupported snapshot version")
)

type Kind string

const (
	KindPath     Kind = "path"
	KindRect     Kind = "rect"
	KindCircle   Kind = "circle"
	KindLine     Kind = "line"
	KindPolyline Kind = "polyline"
	KindPolygon  Kind = "polygon"
)

// Valid reports whether k is one of the known object kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPath, KindRect, KindCircle, KindLine, KindPolyline, KindPolygon:
		return true
	}
	return false
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Finite reports whether both coordinates are real numbers.
func (p Point) Finite() bool { return finite(p.X) && finite(p.Y) }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Dist is the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

type Style struct {
	StrokeColor string    `json:"strokeColor"`
	StrokeWidth float64   `json:"strokeWidth"`
	DashPattern []float64 `json:"dashPattern,omitempty"`
}

func (s Style) Clone() Style {
	if s.DashPattern != nil {
		s.DashPattern = append([]float64(nil), s.DashPattern...)
	}
	return s
}

// Interactive mirrors the host surface's per-object hit flags. It is tool
// state, not document state, so snapshots never carry it.
type Interactive struct {
	Selectable  bool `json:"-"`
	EventTarget bool `json:"-"`
}

// Object is a single committed (or provisional) drawing object. Which
// geometry fields are meaningful depends on Kind:
//
//	path, polyline, polygon: Points
//	rect:                    Origin, Width, Height
//	circle:                  Center, Radius
//	line:                    From, To
//
// Angle is the rotation in degrees applied around the shape's centre; only
// rect and circle keep it, point based kinds bake rotation into Points.
type Object struct {
	ID     string  `json:"id"`
	Kind   Kind    `json:"kind"`
	Points []Point `json:"points,omitempty"`
	Origin Point   `json:"origin"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Center Point   `json:"center"`
	Radius float64 `json:"radius,omitempty"`
	From   Point   `json:"from"`
	To     Point   `json:"to"`
	Angle  float64 `json:"angle,omitempty"`
	Style  Style   `json:"style"`

	Interactive Interactive `json:"-"`
}

// Clone returns a deep copy of o.
func (o *Object) Clone() *Object {
	c := *o
	if o.Points != nil {
		c.Points = append([]Point(nil), o.Points...)
	}
	c.Style = o.Style.Clone()
	return &c
}

// Validate checks that the object's geometry matches its kind.
func (o *Object) Validate() error {
	if !o.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, o.Kind)
	}
	if o.Style.StrokeWidth <= 0 || !finite(o.Style.StrokeWidth) {
		return fmt.Errorf("%w: stroke width %v", ErrInvalidStyle, o.Style.StrokeWidth)
	}
	if _, err := ParseColor(o.Style.StrokeColor); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStyle, err)
	}
	for _, d := range o.Style.DashPattern {
		if d < 0 || !finite(d) {
			return fmt.Errorf("%w: dash length %v", ErrInvalidStyle, d)
		}
	}
	if !o.finiteGeometry() {
		return fmt.Errorf("%w: non-finite coordinate", ErrInvalidGeometry)
	}

	switch o.Kind {
	case KindPath:
		if len(o.Points) < 1 {
			return fmt.Errorf("%w: path needs at least one point", ErrInvalidGeometry)
		}
	case KindPolyline:
		if len(o.Points) < 2 {
			return fmt.Errorf("%w: polyline needs at least two points", ErrInvalidGeometry)
		}
	case KindPolygon:
		if len(o.Points) < 3 {
			return fmt.Errorf("%w: polygon needs at least three points", ErrInvalidGeometry)
		}
	case KindRect:
		if o.Width < 0 || o.Height < 0 {
			return fmt.Errorf("%w: negative rect extent", ErrInvalidGeometry)
		}
	case KindCircle:
		if o.Radius < 0 {
			return fmt.Errorf("%w: negative radius", ErrInvalidGeometry)
		}
	}
	return nil
}

func (o *Object) finiteGeometry() bool {
	for _, p := range o.Points {
		if !p.Finite() {
			return false
		}
	}
	for _, v := range []float64{o.Width, o.Height, o.Radius, o.Angle} {
		if !finite(v) {
			return false
		}
	}
	return o.Origin.Finite() && o.Center.Finite() && o.From.Finite() && o.To.Finite()
}

// Snapshot is the serialized form of a whole surface: its background and
// its committed objects in paint order.
type Snapshot struct {
	Version    int      `json:"version"`
	Background string   `json:"background"`
	Objects    []Object `json:"objects"`
}

// EncodeSnapshot serializes a snapshot. Objects are copied so later edits
// to the live surface cannot leak into the encoded bytes.
func EncodeSnapshot(background string, objects []*Object) ([]byte, error) {
	snap := Snapshot{
		Version:    SnapshotVersion,
		Background: background,
		Objects:    make([]Object, 0, len(objects)),
	}
	for _, o := range objects {
		snap.Objects = append(snap.Objects, *o.Clone())
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses and validates a serialized surface.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}
	if snap.Background == "" {
		snap.Background = DefaultBackground
	}
	for i := range snap.Objects {
		if err := snap.Objects[i].Validate(); err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
	}
	return &snap, nil
}
