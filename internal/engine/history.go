package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/quotebuilder/sketchpad/backend-go/internal/document"
)

// DefaultHistoryLimit caps the number of snapshots kept.
const DefaultHistoryLimit = 50

var ErrRestoring = errors.New("history restore in progress")

type historyState int

const (
	historyIdle historyState = iota
	historyRestoring
)

// History is a linear stack of whole-surface snapshots. Only backward
// traversal is exposed; a new snapshot after an undo discards the entries
// beyond the cursor.
type History struct {
	surface *Surface
	entries [][]byte
	cursor  int
	limit   int
	state   historyState

	// afterRestore runs while the restoring guard is still held.
	afterRestore func()
}

// NewHistory creates an empty history over s. A limit of zero or less keeps
// every snapshot.
func NewHistory(s *Surface, limit int) *History {
	return &History{surface: s, limit: limit, cursor: -1}
}

// Snapshot serializes the surface and makes it the current entry. It is a
// no-op while a restore is running.
func (h *History) Snapshot() error {
	if h.state == historyRestoring {
		slog.Debug("snapshot suppressed during restore")
		return nil
	}

	data, err := h.surface.Serialize()
	if err != nil {
		return fmt.Errorf("snapshot surface: %w", err)
	}

	h.entries = append(h.entries[:h.cursor+1], data)
	if h.limit > 0 && len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		h.entries = append([][]byte(nil), h.entries[drop:]...)
	}
	h.cursor = len(h.entries) - 1
	return nil
}

// Undo restores the previous snapshot. It returns false when there is
// nothing to undo. A snapshot that fails to decode aborts the undo and
// leaves both the surface and the cursor unchanged.
func (h *History) Undo() (bool, error) {
	if h.state == historyRestoring {
		return false, ErrRestoring
	}
	if h.cursor <= 0 {
		return false, nil
	}

	snap, err := document.DecodeSnapshot(h.entries[h.cursor-1])
	if err != nil {
		return false, fmt.Errorf("undo: %w", err)
	}

	h.state = historyRestoring
	defer func() { h.state = historyIdle }()

	h.surface.Restore(snap)
	if h.afterRestore != nil {
		h.afterRestore()
	}
	h.cursor--
	return true, nil
}

// Restoring reports whether a restore is in progress.
func (h *History) Restoring() bool { return h.state == historyRestoring }

// Cursor is the index of the displayed snapshot.
func (h *History) Cursor() int { return h.cursor }

// Len is the number of stored snapshots.
func (h *History) Len() int { return len(h.entries) }
