package document

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStyle() Style {
	return Style{StrokeColor: "#000000", StrokeWidth: 2}
}

func TestObjectValidate(t *testing.T) {
	tests := []struct {
		name string
		obj  Object
		err  error
	}{
		{"rect", Object{Kind: KindRect, Width: 10, Height: 5, Style: testStyle()}, nil},
		{"degenerate rect", Object{Kind: KindRect, Style: testStyle()}, nil},
		{"negative rect", Object{Kind: KindRect, Width: -1, Style: testStyle()}, ErrInvalidGeometry},
		{"circle", Object{Kind: KindCircle, Radius: 3, Style: testStyle()}, nil},
		{"polyline one point", Object{Kind: KindPolyline, Points: []Point{{1, 1}}, Style: testStyle()}, ErrInvalidGeometry},
		{"polygon two points", Object{Kind: KindPolygon, Points: []Point{{1, 1}, {2, 2}}, Style: testStyle()}, ErrInvalidGeometry},
		{"path single point", Object{Kind: KindPath, Points: []Point{{1, 1}}, Style: testStyle()}, nil},
		{"unknown kind", Object{Kind: "triangle", Style: testStyle()}, ErrUnknownKind},
		{"zero stroke", Object{Kind: KindLine, Style: Style{StrokeColor: "#000"}}, ErrInvalidStyle},
		{"bad color", Object{Kind: KindLine, Style: Style{StrokeColor: "nope", StrokeWidth: 1}}, ErrInvalidStyle},
		{"negative dash", Object{Kind: KindLine, Style: Style{StrokeColor: "red", StrokeWidth: 1, DashPattern: []float64{4, -1}}}, ErrInvalidStyle},
		{"infinite stroke", Object{Kind: KindLine, Style: Style{StrokeColor: "red", StrokeWidth: math.Inf(1)}}, ErrInvalidStyle},
		{"NaN line end", Object{Kind: KindLine, To: Pt(math.NaN(), 20), Style: testStyle()}, ErrInvalidGeometry},
		{"NaN path point", Object{Kind: KindPath, Points: []Point{{1, 1}, {math.NaN(), 2}}, Style: testStyle()}, ErrInvalidGeometry},
		{"infinite radius", Object{Kind: KindCircle, Radius: math.Inf(1), Style: testStyle()}, ErrInvalidGeometry},
		{"NaN rect width", Object{Kind: KindRect, Width: math.NaN(), Style: testStyle()}, ErrInvalidGeometry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.obj.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	o := &Object{
		Kind:   KindPolyline,
		Points: []Point{{0, 0}, {10, 0}},
		Style:  Style{StrokeColor: "black", StrokeWidth: 1, DashPattern: []float64{5, 5}},
	}
	c := o.Clone()
	c.Points[0].X = 99
	c.Style.DashPattern[0] = 1

	assert.Equal(t, 0.0, o.Points[0].X)
	assert.Equal(t, 5.0, o.Style.DashPattern[0])
}

func TestSnapshotEncodeDecode(t *testing.T) {
	objs := []*Object{
		{ID: "obj_a", Kind: KindRect, Origin: Pt(10, 10), Width: 100, Height: 50, Style: testStyle(),
			Interactive: Interactive{Selectable: true, EventTarget: true}},
		{ID: "obj_b", Kind: KindPolygon, Points: []Point{{0, 0}, {10, 0}, {10, 10}, {0, 0}}, Style: testStyle()},
	}
	data, err := EncodeSnapshot("#eeeeee", objs)
	require.NoError(t, err)

	// Mutating the live objects must not affect encoded bytes.
	objs[0].Width = 1

	snap, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, "#eeeeee", snap.Background)
	require.Len(t, snap.Objects, 2)
	assert.Equal(t, 100.0, snap.Objects[0].Width)
	assert.False(t, snap.Objects[0].Interactive.Selectable, "interactive flags are not serialized")
	assert.Equal(t, Pt(0, 0), snap.Objects[1].Points[3])
}

func TestDecodeSnapshotRejectsCorrupt(t *testing.T) {
	_, err := DecodeSnapshot([]byte(`{"version":1,"objects":[`))
	assert.Error(t, err)

	_, err = DecodeSnapshot([]byte(`{"version":7,"objects":[]}`))
	assert.ErrorIs(t, err, ErrSnapshotVersion)

	_, err = DecodeSnapshot([]byte(`{"version":1,"objects":[{"kind":"circle","radius":-2,"style":{"strokeColor":"#000","strokeWidth":1}}]}`))
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff0000")
	require.NoError(t, err)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(0), c.G)

	c, err = ParseColor("#0f0")
	require.NoError(t, err)
	assert.Equal(t, uint8(255), c.G)

	c, err = ParseColor(" White ")
	require.NoError(t, err)
	assert.Equal(t, uint8(255), c.B)

	_, err = ParseColor("#12")
	assert.Error(t, err)
}
