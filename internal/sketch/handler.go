package sketch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/quotebuilder/sketchpad/backend-go/internal/auth"
	"github.com/quotebuilder/sketchpad/backend-go/internal/export"
)

const maxImageSize = 16 << 20 // 16MB

// Repository is the storage the handler reads and writes.
type Repository interface {
	Save(ctx context.Context, quoteID string, image []byte, contentType string) (string, error)
	Latest(ctx context.Context, quoteID string) (*Sketch, error)
	List(ctx context.Context, quoteID string) ([]Sketch, error)
}

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type uploadRequest struct {
	Image string `json:"image"` // data URL as produced by save
}

// Latest serves the newest saved image for a quote.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	quoteID := mux.Vars(r)["quoteId"]

	sk, err := h.repo.Latest(r.Context(), quoteID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", sk.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(sk.Image)))
	w.Header().Set("X-Sketch-Id", sk.ID)
	w.Write(sk.Image)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	quoteID := mux.Vars(r)["quoteId"]

	sketches, err := h.repo.List(r.Context(), quoteID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if sketches == nil {
		sketches = []Sketch{}
	}

	writeJSON(w, http.StatusOK, sketches)
}

// Upload stores an image a browser-hosted editor exported on its own.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	quoteID := mux.Vars(r)["quoteId"]
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	data, contentType, err := export.DecodeDataURL(req.Image)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := checkImage(data, contentType); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	id, err := h.repo.Save(r.Context(), quoteID, data, contentType)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	slog.Info("sketch uploaded", "quote", quoteID, "sketch", id, "user", auth.UserIDFromContext(r.Context()), "size", len(data))
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// checkImage makes sure the bytes decode as the declared format.
func checkImage(data []byte, contentType string) error {
	var want string
	switch contentType {
	case "image/png":
		want = "png"
	case "image/jpeg":
		want = "jpeg"
	default:
		return errors.New("image must be png or jpeg")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	if format != want {
		return fmt.Errorf("image is %s, declared %s", format, contentType)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return errors.New("image has zero size")
	}
	return nil
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "sketch not found"})
	case errors.Is(err, ErrEmptyImage), errors.Is(err, ErrMissingQuote):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("sketch service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
