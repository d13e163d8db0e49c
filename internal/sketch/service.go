package sketch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quotebuilder/sketchpad/backend-go/internal/typeid"
)

var (
	ErrNotFound     = errors.New("sketch not found")
	ErrEmptyImage   = errors.New("sketch image is empty")
	ErrMissingQuote = errors.New("quote id is required")
)

const schema = `
CREATE TABLE IF NOT EXISTS sketches (
	id           TEXT PRIMARY KEY,
	quote_id     TEXT NOT NULL,
	content_type TEXT NOT NULL,
	image        BYTEA NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS sketches_quote_created_idx ON sketches (quote_id, created_at DESC);
`

// DBTX is the subset of pgx used by the store; *pgxpool.Pool, *pgx.Conn and
// pgx.Tx all satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Sketch is a stored export of a drawing session.
type Sketch struct {
	ID          string    `json:"id"`
	QuoteID     string    `json:"quoteId"`
	ContentType string    `json:"contentType"`
	Size        int       `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
	Image       []byte    `json:"-"`
}

// Store keeps the images produced by saved sessions, one row per save.
type Store struct {
	db DBTX
}

func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the sketches table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create sketches table: %w", err)
	}
	return nil
}

// Save stores a new image for quoteID and returns its id.
func (s *Store) Save(ctx context.Context, quoteID string, image []byte, contentType string) (string, error) {
	if quoteID == "" {
		return "", ErrMissingQuote
	}
	if len(image) == 0 {
		return "", ErrEmptyImage
	}

	id := typeid.NewSketchID()
	_, err := s.db.Exec(ctx,
		`INSERT INTO sketches (id, quote_id, content_type, image) VALUES ($1, $2, $3, $4)`,
		id, quoteID, contentType, image)
	if err != nil {
		return "", fmt.Errorf("insert sketch: %w", err)
	}
	return id, nil
}

// Latest returns the most recent sketch saved for quoteID, image included.
func (s *Store) Latest(ctx context.Context, quoteID string) (*Sketch, error) {
	var sk Sketch
	err := s.db.QueryRow(ctx,
		`SELECT id, quote_id, content_type, image, created_at
		   FROM sketches WHERE quote_id = $1
		  ORDER BY created_at DESC LIMIT 1`, quoteID).
		Scan(&sk.ID, &sk.QuoteID, &sk.ContentType, &sk.Image, &sk.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get latest sketch: %w", err)
	}
	sk.Size = len(sk.Image)
	return &sk, nil
}

// List returns the metadata of every sketch saved for quoteID, newest first.
func (s *Store) List(ctx context.Context, quoteID string) ([]Sketch, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, quote_id, content_type, octet_length(image), created_at
		   FROM sketches WHERE quote_id = $1
		  ORDER BY created_at DESC`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("list sketches: %w", err)
	}

	sketches, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Sketch, error) {
		var sk Sketch
		err := row.Scan(&sk.ID, &sk.QuoteID, &sk.ContentType, &sk.Size, &sk.CreatedAt)
		return sk, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan sketches: %w", err)
	}
	return sketches, nil
}
