package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quotebuilder/sketchpad/backend-go/internal/document"
	"github.com/quotebuilder/sketchpad/backend-go/internal/engine"
	"github.com/quotebuilder/sketchpad/backend-go/internal/export"
	"github.com/quotebuilder/sketchpad/backend-go/internal/typeid"
)

var ErrUnknownType = errors.New("unknown message type")

// ImageSaver persists the image a session produces on save and returns the
// stored sketch id.
type ImageSaver interface {
	Save(ctx context.Context, quoteID string, data []byte, contentType string) (string, error)
}

// Session is one live editor driven by one connection. It is not safe for
// concurrent use; the owning client's read loop is its only caller.
type Session struct {
	ID      string
	QuoteID string

	editor *engine.Editor
	saver  ImageSaver
	scene  *engine.Scene
}

// New mounts an editor for quoteID on a width x height viewport.
func New(quoteID string, width, height int, opts engine.Options, saver ImageSaver) (*Session, error) {
	s := &Session{
		ID:      typeid.NewSessionID(),
		QuoteID: quoteID,
		saver:   saver,
	}
	ed, err := engine.NewEditor(width, height, opts, engine.RendererFunc(s.capture))
	if err != nil {
		return nil, fmt.Errorf("create editor: %w", err)
	}
	s.editor = ed
	s.scene = nil
	return s, nil
}

func (s *Session) capture(scene engine.Scene) { s.scene = &scene }

func (s *Session) Editor() *engine.Editor { return s.editor }

// Initial returns the welcome message followed by the first render.
func (s *Session) Initial() []*Message {
	w, h := s.editor.Surface().Dimensions()
	tools := make([]string, 0, len(engine.Tools))
	for _, t := range engine.Tools {
		tools = append(tools, string(t))
	}
	out := []*Message{
		newMessage(TypeWelcome, WelcomePayload{
			SessionID: s.ID,
			QuoteID:   s.QuoteID,
			Width:     w,
			Height:    h,
			Tool:      string(s.editor.Tool()),
			Tools:     tools,
			Style:     s.editor.Style(),
		}),
		s.renderMessage(s.editor.Surface().Scene()),
	}
	for _, m := range out {
		m.SessionID = s.ID
	}
	return out
}

// Apply runs one client message against the editor. The replies hold a
// render message when the scene changed, the command's own reply if it has
// one, and an error message when the command failed.
func (s *Session) Apply(ctx context.Context, msg *Message) []*Message {
	s.scene = nil
	reply, err := s.apply(ctx, msg)

	var out []*Message
	if s.scene != nil {
		out = append(out, s.renderMessage(*s.scene))
		s.scene = nil
	}
	if reply != nil {
		out = append(out, reply)
	}
	if err != nil {
		slog.Debug("session command failed", "session", s.ID, "type", msg.Type, "error", err)
		out = append(out, newMessage(TypeError, ErrorPayload{Message: err.Error(), Ref: msg.Type}))
	}
	for _, m := range out {
		m.SessionID = s.ID
		m.Seq = msg.Seq
	}
	return out
}

func (s *Session) apply(ctx context.Context, msg *Message) (*Message, error) {
	ed := s.editor
	switch msg.Type {
	case TypePointerDown, TypePointerMove, TypePointerUp, TypeClick, TypeDoubleClick:
		p, err := decode[PointPayload](msg)
		if err != nil {
			return nil, err
		}
		return nil, s.pointer(msg.Type, p.Point())

	case TypeToolSet:
		p, err := decode[ToolPayload](msg)
		if err != nil {
			return nil, err
		}
		tool, err := engine.ParseTool(p.Tool)
		if err != nil {
			return nil, err
		}
		if ed.Closed() {
			return nil, engine.ErrClosed
		}
		ed.SetTool(tool)
		return nil, nil

	case TypeStyleSet:
		style, err := decode[document.Style](msg)
		if err != nil {
			return nil, err
		}
		return nil, ed.SetStyle(style)

	case TypePolylineFinish:
		p, err := decode[FinishPayload](msg)
		if err != nil {
			return nil, err
		}
		return nil, ed.FinishPolyline(p.Close)

	case TypeSelect:
		p, err := decode[SelectPayload](msg)
		if err != nil {
			return nil, err
		}
		return nil, ed.Select(p.IDs)

	case TypeSelectionDelete:
		_, err := ed.DeleteSelected()
		return nil, err

	case TypeSelectionStyle:
		p, err := decode[engine.StylePatch](msg)
		if err != nil {
			return nil, err
		}
		_, err = ed.ApplyStyle(p)
		return nil, err

	case TypeSelectionTransform:
		p, err := decode[TransformPayload](msg)
		if err != nil {
			return nil, err
		}
		_, err = ed.Transform(engine.Matrix2D(p.Matrix))
		return nil, err

	case TypeBackgroundSet:
		p, err := decode[BackgroundPayload](msg)
		if err != nil {
			return nil, err
		}
		return nil, ed.SetBackground(p.Color)

	case TypeClear:
		return nil, ed.Clear()

	case TypeUndo:
		_, err := ed.Undo()
		return nil, err

	case TypeResize:
		p, err := decode[ResizePayload](msg)
		if err != nil {
			return nil, err
		}
		ed.Resize(p.Width, p.Height)
		return nil, nil

	case TypeHitTest:
		p, err := decode[PointPayload](msg)
		if err != nil {
			return nil, err
		}
		return newMessage(TypeHit, HitPayload{ObjectID: ed.HitTest(p.X, p.Y), X: p.X, Y: p.Y}), nil

	case TypeSave:
		return s.save(ctx)

	case TypeCancel:
		if err := ed.Cancel(); err != nil {
			return nil, err
		}
		slog.Info("session cancelled", "session", s.ID, "quote", s.QuoteID)
		return newMessage(TypeCancelled, struct{}{}), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, msg.Type)
	}
}

func (s *Session) pointer(typ string, p document.Point) error {
	ed := s.editor
	switch typ {
	case TypePointerDown:
		return ed.PointerDown(p)
	case TypePointerMove:
		return ed.PointerMove(p)
	case TypePointerUp:
		return ed.PointerUp(p)
	case TypeClick:
		return ed.Click(p)
	case TypeDoubleClick:
		return ed.DoubleClick(p)
	}
	return nil
}

// save exports the drawing and persists it. The saved reply carries the
// image even when persisting fails, since the editor is closed by then.
func (s *Session) save(ctx context.Context) (*Message, error) {
	img, err := s.editor.Save()
	if err != nil {
		return nil, err
	}
	payload := SavedPayload{Image: img}
	if s.saver == nil {
		return newMessage(TypeSaved, payload), nil
	}

	data, contentType, err := export.DecodeDataURL(img)
	if err != nil {
		return newMessage(TypeSaved, payload), err
	}
	id, err := s.saver.Save(ctx, s.QuoteID, data, contentType)
	if err != nil {
		slog.Error("persist sketch", "session", s.ID, "quote", s.QuoteID, "error", err)
		return newMessage(TypeSaved, payload), fmt.Errorf("persist sketch: %w", err)
	}
	payload.SketchID = id
	slog.Info("sketch saved", "session", s.ID, "quote", s.QuoteID, "sketch", id, "size", len(data))
	return newMessage(TypeSaved, payload), nil
}

func (s *Session) renderMessage(scene engine.Scene) *Message {
	payload := RenderPayload{
		Commands:  engine.CompileDrawCommands(scene),
		Tool:      string(s.editor.Tool()),
		CanUndo:   s.editor.History().Cursor() > 0,
		Selection: scene.Selection,
	}
	if len(scene.Selection) > 0 {
		b := s.editor.Surface().SelectionBounds()
		payload.Bounds = &b
	}
	return newMessage(TypeRender, payload)
}

func decode[T any](msg *Message) (T, error) {
	var v T
	if len(msg.Payload) == 0 {
		return v, fmt.Errorf("%s: missing payload", msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("%s: invalid payload: %w", msg.Type, err)
	}
	return v, nil
}
