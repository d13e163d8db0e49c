package session

import (
	"encoding/json"

	"github.com/quotebuilder/sketchpad/backend-go/internal/document"
	"github.com/quotebuilder/sketchpad/backend-go/internal/engine"
)

type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	// Pointer input
	TypePointerDown = "pointer.down"
	TypePointerMove = "pointer.move"
	TypePointerUp   = "pointer.up"
	TypeClick       = "click"
	TypeDoubleClick = "dblclick"

	// Editor commands
	TypeToolSet            = "tool.set"
	TypeStyleSet           = "style.set"
	TypePolylineFinish     = "polyline.finish"
	TypeSelect             = "select"
	TypeSelectionDelete    = "selection.delete"
	TypeSelectionStyle     = "selection.style"
	TypeSelectionTransform = "selection.transform"
	TypeBackgroundSet      = "background.set"
	TypeClear              = "clear"
	TypeUndo               = "undo"
	TypeResize             = "resize"
	TypeHitTest            = "hit.test"
	TypeSave               = "save"
	TypeCancel             = "cancel"

	// Server replies
	TypeWelcome   = "welcome"
	TypeRender    = "render"
	TypeHit       = "hit"
	TypeSaved     = "saved"
	TypeCancelled = "cancelled"
	TypeError     = "error"
)

// PointPayload carries surface coordinates for pointer, click and hit
// messages.
type PointPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p PointPayload) Point() document.Point { return document.Pt(p.X, p.Y) }

type ToolPayload struct {
	Tool string `json:"tool"`
}

type FinishPayload struct {
	Close bool `json:"close"`
}

type SelectPayload struct {
	IDs []string `json:"ids"`
}

// TransformPayload is the affine matrix [a, b, c, d, e, f] the host applied
// to the selection.
type TransformPayload struct {
	Matrix [6]float64 `json:"matrix"`
}

type BackgroundPayload struct {
	Color string `json:"color"`
}

type ResizePayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type WelcomePayload struct {
	SessionID string         `json:"sessionId"`
	QuoteID   string         `json:"quoteId"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Tool      string         `json:"tool"`
	Tools     []string       `json:"tools"`
	Style     document.Style `json:"style"`
}

// RenderPayload is the full draw command list for the current scene.
type RenderPayload struct {
	Commands  []engine.DrawCommand `json:"commands"`
	Tool      string               `json:"tool"`
	CanUndo   bool                 `json:"canUndo"`
	Selection []string             `json:"selection,omitempty"`
	Bounds    *engine.Rect         `json:"selectionBounds,omitempty"`
}

type HitPayload struct {
	ObjectID string  `json:"objectId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type SavedPayload struct {
	Image    string `json:"image"`
	SketchID string `json:"sketchId,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Ref     string `json:"ref,omitempty"` // type of the message that failed
}

func newMessage(typ string, payload any) *Message {
	data, _ := json.Marshal(payload)
	return &Message{Type: typ, Payload: data}
}
