package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quotebuilder/sketchpad/backend-go/internal/document"
)

var testSnap = SnapOptions{CloseRadius: DefaultCloseRadius, OrthoThreshold: DefaultOrthoThreshold}

func TestSnapPointOrthogonal(t *testing.T) {
	prev := document.Pt(100, 100)
	pending := []document.Point{prev}

	tests := []struct {
		name     string
		proposed document.Point
		want     document.Point
	}{
		{"vertical", document.Pt(106, 140), document.Pt(100, 140)},
		{"horizontal", document.Pt(160, 92), document.Pt(160, 100)},
		{"both axes", document.Pt(110, 110), document.Pt(100, 100)},
		{"free", document.Pt(130, 140), document.Pt(130, 140)},
		{"threshold is exclusive", document.Pt(115, 140), document.Pt(115, 140)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := SnapPoint(pending, tt.proposed, testSnap)
			assert.False(t, res.Closed)
			assert.Equal(t, tt.want, res.Point)
		})
	}
}

func TestSnapPointClosing(t *testing.T) {
	pending := []document.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}}

	res := SnapPoint(pending, document.Pt(5, 8), testSnap)
	assert.True(t, res.Closed)
	assert.Equal(t, pending[0], res.Point)

	// Outside the radius the orthogonal snap still applies.
	res = SnapPoint(pending, document.Pt(20, 105), testSnap)
	assert.False(t, res.Closed)
	assert.Equal(t, document.Pt(20, 100), res.Point)
}

func TestNearFirstNeedsThreePoints(t *testing.T) {
	two := []document.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}
	assert.False(t, NearFirst(two, document.Pt(1, 1), DefaultCloseRadius))

	three := append(two, document.Pt(100, 100))
	assert.True(t, NearFirst(three, document.Pt(1, 1), DefaultCloseRadius))
	assert.False(t, NearFirst(three, document.Pt(20, 0), DefaultCloseRadius))
}
