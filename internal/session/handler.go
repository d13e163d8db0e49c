package session

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/quotebuilder/sketchpad/backend-go/internal/engine"
)

// TokenValidator resolves a bearer token to a user id.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

type Handler struct {
	hub            *Hub
	tokens         TokenValidator
	saver          ImageSaver
	opts           engine.Options
	originPatterns []string
}

func NewHandler(hub *Hub, tokens TokenValidator, saver ImageSaver, opts engine.Options, originPatterns []string) *Handler {
	return &Handler{
		hub:            hub,
		tokens:         tokens,
		saver:          saver,
		opts:           opts,
		originPatterns: originPatterns,
	}
}

// ServeWS upgrades /ws/sketch/{quoteId}?token=...&width=...&height=... to a
// live editing session.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quoteID := mux.Vars(r)["quoteId"]
	if quoteID == "" {
		http.Error(w, "missing quote id", http.StatusBadRequest)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	userID, err := h.tokens.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	width, _ := strconv.Atoi(r.URL.Query().Get("width"))
	height, _ := strconv.Atoi(r.URL.Query().Get("height"))
	sess, err := New(quoteID, width, height, h.opts, h.saver)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := NewClient(h.hub, conn, sess, userID, clientID)

	h.hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
