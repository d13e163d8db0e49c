package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotebuilder/sketchpad/backend-go/internal/document"
)

func TestCompileDrawCommandsPaintOrder(t *testing.T) {
	rect := &document.Object{ID: "r", Kind: document.KindRect, Origin: document.Pt(10, 10), Width: 20, Height: 10, Style: testStyle}
	poly := &document.Object{ID: "p", Kind: document.KindPolygon, Points: []document.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 5}}, Style: testStyle}
	ring := &document.Object{Kind: document.KindCircle, Center: document.Pt(0, 0), Radius: 6, Style: testStyle}

	cmds := CompileDrawCommands(Scene{
		Width:      400,
		Height:     300,
		Background: "#ffffff",
		Objects:    []*document.Object{rect, poly},
		Overlays:   []*document.Object{ring},
		Selection:  []string{"p"},
	})

	require.Len(t, cmds, 4)
	assert.Equal(t, "background", cmds[0].Op)
	assert.Equal(t, 400, cmds[0].Width)

	assert.Equal(t, "r", cmds[1].ObjectID)
	assert.Equal(t, []float64{1, 0, 0, 1, 20, 15}, cmds[1].Transform)
	assert.Equal(t, PathCommand{"M", -10.0, -5.0}, cmds[1].Path[0])
	assert.False(t, cmds[1].Selected)

	assert.Equal(t, "p", cmds[2].ObjectID)
	assert.True(t, cmds[2].Selected)
	assert.Equal(t, PathCommand{"Z"}, cmds[2].Path[len(cmds[2].Path)-1])

	assert.True(t, cmds[3].Overlay)
	assert.Empty(t, cmds[3].ObjectID)
}

func TestDrawCommandsToJSON(t *testing.T) {
	cmds := CompileDrawCommands(Scene{Width: 10, Height: 10, Background: "white"})
	out, err := DrawCommandsToJSON(cmds)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "background", decoded[0]["op"])
	assert.Equal(t, "white", decoded[0]["fill"])
}

func TestRectToJSON(t *testing.T) {
	assert.JSONEq(t, `{"x":1,"y":2,"width":3,"height":4}`, RectToJSON(Rect{X: 1, Y: 2, Width: 3, Height: 4}))
}
