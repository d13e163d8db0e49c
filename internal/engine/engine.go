package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/quotebuilder/sketchpad/backend-go/internal/document"
	"github.com/quotebuilder/sketchpad/backend-go/internal/export"
	"github.com/quotebuilder/sketchpad/backend-go/internal/typeid"
)

var (
	ErrNotMounted = errors.New("viewport has zero size")
	ErrClosed     = errors.New("editing session closed")
	ErrWrongTool  = errors.New("command not available for the active tool")

	ErrInvalidPoint     = errors.New("point has a non-finite coordinate")
	ErrInvalidTransform = errors.New("transform has a non-finite coefficient")
)

// Options are the editor tunables.
type Options struct {
	Snap         SnapOptions
	HistoryLimit int
	Decimation   float64
	Style        document.Style
	Export       export.Options

	// NewID generates ids for committed objects.
	NewID func() string
}

// DefaultOptions returns the stock editor settings.
func DefaultOptions() Options {
	return Options{
		Snap:         SnapOptions{CloseRadius: DefaultCloseRadius, OrthoThreshold: DefaultOrthoThreshold},
		HistoryLimit: DefaultHistoryLimit,
		Decimation:   DefaultDecimation,
		Style:        document.Style{StrokeColor: "#000000", StrokeWidth: 2},
		Export:       export.DefaultOptions(),
		NewID:        typeid.NewObjectID,
	}
}

// Editor is the drawing surface together with its tool state machine,
// shape builders, selection controller and history. All methods are meant
// to be called from a single goroutine, the host's event loop.
type Editor struct {
	opts      Options
	surface   *Surface
	history   *History
	tools     *ToolMachine
	selection *Selection
	exporter  *export.Exporter

	style    document.Style
	brush    *freehandBrush
	shapes   map[Tool]ShapeBuilder
	drag     *Gesture
	dragWith ShapeBuilder
	polyline polylineBuilder

	closed bool

	// OnSave receives the exported image when the user finalizes the
	// drawing. OnCancel fires when the user aborts.
	OnSave   func(image string)
	OnCancel func()
}

// NewEditor mounts an editor on a viewport of the given size. A zero-sized
// viewport is not mounted yet; callers retry after layout.
func NewEditor(width, height int, opts Options, r Renderer) (*Editor, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotMounted, width, height)
	}
	if opts.NewID == nil {
		opts.NewID = typeid.NewObjectID
	}
	if err := (&document.Object{Kind: document.KindLine, Style: opts.Style}).Validate(); err != nil {
		return nil, fmt.Errorf("default style: %w", err)
	}

	e := &Editor{
		opts:     opts,
		surface:  NewSurface(width, height, r),
		exporter: export.New(opts.Export),
		style:    opts.Style.Clone(),
		shapes: map[Tool]ShapeBuilder{
			ToolRectangle: rectBuilder{},
			ToolCircle:    circleBuilder{},
			ToolLine:      lineBuilder{},
		},
		polyline: polylineBuilder{snap: opts.Snap},
	}
	e.history = NewHistory(e.surface, opts.HistoryLimit)
	e.history.afterRestore = e.reapplyInteractivity
	e.selection = newSelection(e.surface, e.history)
	e.tools = NewToolMachine(e.exitTool, e.enterTool)
	e.enterTool(e.tools.Current())

	if err := e.history.Snapshot(); err != nil {
		return nil, err
	}
	return e, nil
}

// --- Tool state machine hooks ---

// exitTool finishes whatever gesture the outgoing tool had in flight so
// that switching never loses geometry.
func (e *Editor) exitTool(from Tool) {
	if e.drag != nil {
		if err := e.commitDrag(e.drag.Last); err != nil {
			slog.Warn("commit drag on tool switch", "tool", from, "error", err)
		}
	}
	if from == ToolPolyline && e.polyline.active() {
		if err := e.finishPolyline(false); err != nil {
			slog.Warn("finish polyline on tool switch", "error", err)
		}
	}
}

func (e *Editor) enterTool(to Tool) {
	e.selection.applyInteractivity(to)
	if to == ToolFreehand {
		e.brush = newFreehandBrush(e.style, e.opts.Decimation)
	}
	slog.Debug("tool entered", "tool", to)
}

func (e *Editor) reapplyInteractivity() {
	flags := interactiveFor(e.tools.Current())
	for _, o := range e.surface.objects {
		o.Interactive = flags
	}
}

func (e *Editor) builderFor(t Tool) ShapeBuilder {
	if t == ToolFreehand {
		return e.brush
	}
	return e.shapes[t]
}

// --- Commands (host → editor) ---

// SetTool switches the active tool.
func (e *Editor) SetTool(t Tool) {
	if e.closed {
		return
	}
	e.tools.Set(t)
}

// SetStyle changes the style used for new objects. Under the select tool
// it is also applied to the active selection.
func (e *Editor) SetStyle(style document.Style) error {
	if e.closed {
		return ErrClosed
	}
	if err := (&document.Object{Kind: document.KindLine, Style: style}).Validate(); err != nil {
		return err
	}
	e.style = style.Clone()

	switch e.tools.Current() {
	case ToolFreehand:
		e.brush = newFreehandBrush(e.style, e.opts.Decimation)
	case ToolSelect:
		dash := style.DashPattern
		patch := StylePatch{StrokeColor: &style.StrokeColor, StrokeWidth: &style.StrokeWidth, DashPattern: &dash}
		if _, err := e.selection.ApplyStyle(patch); err != nil {
			return err
		}
	}
	return nil
}

// checkPoint guards every pointer entry point. Hosts hand over whatever
// their event carried, NaN included.
func checkPoint(p document.Point) error {
	if !p.Finite() {
		return fmt.Errorf("%w: (%v, %v)", ErrInvalidPoint, p.X, p.Y)
	}
	return nil
}

// PointerDown starts a drag gesture for the drag-based tools.
func (e *Editor) PointerDown(p document.Point) error {
	if e.closed {
		return ErrClosed
	}
	if err := checkPoint(p); err != nil {
		return err
	}
	if e.drag != nil {
		return nil
	}
	t := e.tools.Current()
	if !t.isDrag() {
		return nil
	}
	e.dragWith = e.builderFor(t)
	e.drag = e.dragWith.Begin(p, e.style)
	e.surface.setOverlay(overlayShape, e.drag.Object)
	return nil
}

// PointerMove updates the provisional drag shape, or the polyline preview
// between clicks.
func (e *Editor) PointerMove(p document.Point) error {
	if e.closed {
		return ErrClosed
	}
	if err := checkPoint(p); err != nil {
		return err
	}
	if e.drag != nil {
		e.dragWith.Update(e.drag, p)
		e.surface.Render()
		return nil
	}
	if e.tools.Current() == ToolPolyline && e.polyline.active() {
		segment, ring := e.polyline.preview(p)
		e.surface.overlays[overlayPreview] = segment
		e.surface.overlays[overlayRing] = ring
		e.surface.Render()
	}
	return nil
}

// PointerUp commits the drag gesture, degenerate shapes included. A
// rejected point leaves the drag in flight.
func (e *Editor) PointerUp(p document.Point) error {
	if e.closed {
		return ErrClosed
	}
	if err := checkPoint(p); err != nil {
		return err
	}
	if e.drag == nil {
		return nil
	}
	return e.commitDrag(p)
}

func (e *Editor) commitDrag(p document.Point) error {
	g, b := e.drag, e.dragWith
	e.drag, e.dragWith = nil, nil
	b.End(g, p)
	e.surface.overlays[overlayShape] = nil
	return e.commit(g.Object)
}

// Click adds a point to the pending polyline, starting one if needed.
func (e *Editor) Click(p document.Point) error {
	if e.closed {
		return ErrClosed
	}
	if err := checkPoint(p); err != nil {
		return err
	}
	if e.tools.Current() != ToolPolyline {
		return nil
	}

	closesShape := e.polyline.click(p, e.style)
	e.surface.overlays[overlayPreview] = nil
	e.surface.overlays[overlayRing] = nil
	if closesShape {
		return e.finishPolyline(true)
	}
	e.surface.setOverlay(overlayShape, e.polyline.provisional())
	return nil
}

// DoubleClick finishes the pending polyline. Finishing inside the closing
// radius of the first point closes it into a polygon.
func (e *Editor) DoubleClick(p document.Point) error {
	if e.closed {
		return ErrClosed
	}
	if err := checkPoint(p); err != nil {
		return err
	}
	if e.tools.Current() != ToolPolyline || !e.polyline.active() {
		return nil
	}
	return e.finishPolyline(e.polyline.shouldClose(p))
}

// FinishPolyline is the explicit open/close trigger.
func (e *Editor) FinishPolyline(close bool) error {
	if e.closed {
		return ErrClosed
	}
	if !e.polyline.active() {
		return nil
	}
	return e.finishPolyline(close)
}

func (e *Editor) finishPolyline(close bool) error {
	obj := e.polyline.take(close)
	e.surface.overlays[overlayShape] = nil
	e.surface.overlays[overlayPreview] = nil
	e.surface.overlays[overlayRing] = nil
	if obj == nil {
		e.surface.Render()
		return nil
	}
	return e.commit(obj)
}

// commit adds o to the surface and records it. If the snapshot fails the
// object is taken off again so surface and history stay in step.
func (e *Editor) commit(o *document.Object) error {
	if err := o.Validate(); err != nil {
		e.surface.Render()
		return fmt.Errorf("commit %s: %w", o.Kind, err)
	}
	o.ID = e.opts.NewID()
	o.Interactive = interactiveFor(e.tools.Current())
	e.surface.Add(o)
	if err := e.history.Snapshot(); err != nil {
		e.surface.Remove([]string{o.ID})
		return err
	}
	slog.Debug("object committed", "id", o.ID, "kind", o.Kind)
	return nil
}

// Select sets the active selection under the select tool.
func (e *Editor) Select(ids []string) error {
	if e.closed {
		return ErrClosed
	}
	if e.tools.Current() != ToolSelect {
		return ErrWrongTool
	}
	return e.selection.Select(ids)
}

// DeleteSelected removes the selected objects.
func (e *Editor) DeleteSelected() (int, error) {
	if e.closed {
		return 0, ErrClosed
	}
	return e.selection.DeleteSelected()
}

// ApplyStyle patches the style of the selected objects.
func (e *Editor) ApplyStyle(p StylePatch) (int, error) {
	if e.closed {
		return 0, ErrClosed
	}
	return e.selection.ApplyStyle(p)
}

// Transform commits a move/resize/rotate of the selection.
func (e *Editor) Transform(m Matrix2D) (int, error) {
	if e.closed {
		return 0, ErrClosed
	}
	if e.tools.Current() != ToolSelect {
		return 0, ErrWrongTool
	}
	if !m.Finite() {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTransform, m)
	}
	return e.selection.ApplyTransform(m)
}

// Clear wipes the surface, including any gesture in flight, and resets the
// background.
func (e *Editor) Clear() error {
	if e.closed {
		return ErrClosed
	}
	e.drag, e.dragWith = nil, nil
	e.polyline.pending = nil
	e.surface.overlays = [numOverlays]*document.Object{}
	e.surface.Clear()
	return e.history.Snapshot()
}

// SetBackground changes the surface fill. Clear resets it to white.
func (e *Editor) SetBackground(c string) error {
	if e.closed {
		return ErrClosed
	}
	if _, err := document.ParseColor(c); err != nil {
		return fmt.Errorf("%w: %w", document.ErrInvalidStyle, err)
	}
	if c == e.surface.Background() {
		return nil
	}
	e.surface.SetBackground(c)
	return e.history.Snapshot()
}

// Undo steps back one snapshot.
func (e *Editor) Undo() (bool, error) {
	if e.closed {
		return false, ErrClosed
	}
	return e.history.Undo()
}

// Resize follows the host viewport.
func (e *Editor) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.surface.SetDimensions(width, height)
}

// Save exports the drawing, emits OnSave and ends the session. A pending
// polyline is finished open first.
func (e *Editor) Save() (string, error) {
	if e.closed {
		return "", ErrClosed
	}
	if e.polyline.active() {
		if err := e.finishPolyline(false); err != nil {
			return "", err
		}
	}
	img, err := e.ExportImage()
	if err != nil {
		return "", err
	}
	e.closed = true
	if e.OnSave != nil {
		e.OnSave(img)
	}
	return img, nil
}

// Cancel emits OnCancel and ends the session without exporting.
func (e *Editor) Cancel() error {
	if e.closed {
		return ErrClosed
	}
	e.closed = true
	if e.OnCancel != nil {
		e.OnCancel()
	}
	return nil
}

// --- Queries ---

// ExportImage flattens the committed objects over the background.
func (e *Editor) ExportImage() (string, error) {
	w, h := e.surface.Dimensions()
	return e.exporter.DataURL(e.Snapshot(), w, h)
}

// Snapshot returns a detached copy of the committed surface state.
func (e *Editor) Snapshot() *document.Snapshot {
	snap := &document.Snapshot{Version: document.SnapshotVersion, Background: e.surface.background}
	for _, o := range e.surface.objects {
		snap.Objects = append(snap.Objects, *o.Clone())
	}
	return snap
}

func (e *Editor) Tool() Tool { return e.tools.Current() }

func (e *Editor) Style() document.Style { return e.style.Clone() }

func (e *Editor) Surface() *Surface { return e.surface }

func (e *Editor) History() *History { return e.history }

func (e *Editor) Closed() bool { return e.closed }

// HitTest returns the topmost interactive object under the point.
func (e *Editor) HitTest(x, y float64) string {
	return e.surface.HitTest(x, y)
}

// Pending returns the points of the polyline being built, if any.
func (e *Editor) Pending() []document.Point {
	if !e.polyline.active() {
		return nil
	}
	return append([]document.Point(nil), e.polyline.pending.Points...)
}

// Render pushes the current scene to the renderer.
func (e *Editor) Render() { e.surface.Render() }
