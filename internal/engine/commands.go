package engine

import (
	"encoding/json"
	"math"

	"github.com/quotebuilder/sketchpad/backend-go/internal/document"
)

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["A", cx, cy, r, start, end], ["Z"].
type PathCommand []interface{}

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op          string        `json:"op"`                    // Operation: "background", "path"
	ObjectID    string        `json:"objectId,omitempty"`    // For hit correlation
	Transform   []float64     `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Path        []PathCommand `json:"path,omitempty"`        // Path data for "path" ops
	Fill        string        `json:"fill,omitempty"`        // Fill color
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
	Dash        []float64     `json:"dash,omitempty"`        // Canvas setLineDash pattern
	Overlay     bool          `json:"overlay,omitempty"`     // Provisional, not part of the document
	Selected    bool          `json:"selected,omitempty"`    // In the active selection
	Width       int           `json:"width,omitempty"`       // Viewport width for "background"
	Height      int           `json:"height,omitempty"`      // Viewport height for "background"
}

// CompileDrawCommands generates a draw command buffer from a scene.
// Commands are in painter's order (back to front): the background, the
// committed objects, then the overlays.
func CompileDrawCommands(scene Scene) []DrawCommand {
	commands := make([]DrawCommand, 0, 1+len(scene.Objects)+len(scene.Overlays))
	commands = append(commands, DrawCommand{
		Op:     "background",
		Fill:   scene.Background,
		Width:  scene.Width,
		Height: scene.Height,
	})

	selected := make(map[string]bool, len(scene.Selection))
	for _, id := range scene.Selection {
		selected[id] = true
	}
	for _, o := range scene.Objects {
		cmd := compileObject(o)
		cmd.Selected = selected[o.ID]
		commands = append(commands, cmd)
	}
	for _, o := range scene.Overlays {
		cmd := compileObject(o)
		cmd.Overlay = true
		commands = append(commands, cmd)
	}
	return commands
}

// compileObject emits a path in the object's local frame plus the transform
// that places it on the surface.
func compileObject(o *document.Object) DrawCommand {
	cmd := DrawCommand{
		Op:          "path",
		ObjectID:    o.ID,
		Transform:   Identity().ToSlice(),
		Stroke:      o.Style.StrokeColor,
		StrokeWidth: o.Style.StrokeWidth,
		Dash:        o.Style.DashPattern,
	}

	switch o.Kind {
	case document.KindRect:
		c := document.Pt(o.Origin.X+o.Width/2, o.Origin.Y+o.Height/2)
		cmd.Transform = Translate(c.X, c.Y).Multiply(RotateDegrees(o.Angle)).ToSlice()
		hw, hh := o.Width/2, o.Height/2
		cmd.Path = []PathCommand{
			{"M", -hw, -hh}, {"L", hw, -hh}, {"L", hw, hh}, {"L", -hw, hh}, {"Z"},
		}
	case document.KindCircle:
		cmd.Transform = Translate(o.Center.X, o.Center.Y).Multiply(RotateDegrees(o.Angle)).ToSlice()
		cmd.Path = []PathCommand{{"M", o.Radius, 0.0}, {"A", 0.0, 0.0, o.Radius, 0.0, 2 * math.Pi}, {"Z"}}
	case document.KindLine:
		cmd.Path = []PathCommand{{"M", o.From.X, o.From.Y}, {"L", o.To.X, o.To.Y}}
	default:
		cmd.Path = pointsPath(o.Points, o.Kind == document.KindPolygon)
	}
	return cmd
}

func pointsPath(pts []document.Point, closed bool) []PathCommand {
	if len(pts) == 0 {
		return nil
	}
	path := make([]PathCommand, 0, len(pts)+1)
	path = append(path, PathCommand{"M", pts[0].X, pts[0].Y})
	for _, p := range pts[1:] {
		path = append(path, PathCommand{"L", p.X, p.Y})
	}
	if len(pts) == 1 {
		// Single-sample stroke: a zero-length segment renders as a dot with round caps.
		path = append(path, PathCommand{"L", pts[0].X, pts[0].Y})
	}
	if closed {
		path = append(path, PathCommand{"Z"})
	}
	return path
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r Rect) string {
	data, _ := json.Marshal(r)
	return string(data)
}
