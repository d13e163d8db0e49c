package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/quotebuilder/sketchpad/backend-go/internal/document"
)

const maxSnapshotSize = 8 << 20 // 8MB

// renderRequest is the body of an export call: the viewport the snapshot
// was drawn in and the snapshot itself.
type renderRequest struct {
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Name     string          `json:"name"`
	Snapshot json.RawMessage `json:"snapshot"`
}

type Handler struct {
	exporter *Exporter
}

func NewHandler(exporter *Exporter) *Handler {
	return &Handler{exporter: exporter}
}

// ExportImage flattens a posted snapshot and streams the encoded image back.
func (h *Handler) ExportImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSnapshotSize)

	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		http.Error(w, "width and height must be positive", http.StatusBadRequest)
		return
	}
	if len(req.Snapshot) == 0 {
		http.Error(w, "snapshot is required", http.StatusBadRequest)
		return
	}

	snap, err := document.DecodeSnapshot(req.Snapshot)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid snapshot: %v", err), http.StatusBadRequest)
		return
	}

	data, err := h.exporter.Render(snap, req.Width, req.Height)
	if err != nil {
		slog.Error("render snapshot", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	name := req.Name
	if name == "" {
		name = "sketch"
	}
	// Sanitize filename
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)

	ext := h.exporter.Options().Format
	if ext == FormatJPEG {
		ext = "jpg"
	}
	w.Header().Set("Content-Type", h.exporter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, name, ext))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)

	slog.Info("export complete", "objects", len(snap.Objects), "size", len(data))
}
