package sketch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotebuilder/sketchpad/backend-go/internal/typeid"
)

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	execs   []execCall
	execErr error
	row     pgx.Row
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), f.execErr
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row { return f.row }

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch d := d.(type) {
		case *string:
			*d = r.values[i].(string)
		case *[]byte:
			*d = r.values[i].([]byte)
		case *time.Time:
			*d = r.values[i].(time.Time)
		}
	}
	return nil
}

func TestStoreSave(t *testing.T) {
	db := &fakeDB{}
	id, err := NewStore(db).Save(context.Background(), "quote_1", []byte{1, 2, 3}, "image/png")
	require.NoError(t, err)
	require.NoError(t, typeid.Validate(id, typeid.PrefixSketch))

	require.Len(t, db.execs, 1)
	assert.True(t, strings.HasPrefix(db.execs[0].sql, "INSERT INTO sketches"))
	assert.Equal(t, []any{id, "quote_1", "image/png", []byte{1, 2, 3}}, db.execs[0].args)
}

func TestStoreSaveValidates(t *testing.T) {
	store := NewStore(&fakeDB{})
	_, err := store.Save(context.Background(), "", []byte{1}, "image/png")
	assert.ErrorIs(t, err, ErrMissingQuote)
	_, err = store.Save(context.Background(), "quote_1", nil, "image/png")
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestStoreSaveWrapsDBError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewStore(&fakeDB{execErr: boom}).Save(context.Background(), "quote_1", []byte{1}, "image/png")
	assert.ErrorIs(t, err, boom)
}

func TestStoreLatest(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	db := &fakeDB{row: fakeRow{values: []any{"sketch_1", "quote_1", "image/png", []byte{9, 9}, created}}}

	sk, err := NewStore(db).Latest(context.Background(), "quote_1")
	require.NoError(t, err)
	assert.Equal(t, "sketch_1", sk.ID)
	assert.Equal(t, 2, sk.Size)
	assert.Equal(t, created, sk.CreatedAt)
}

func TestStoreLatestNotFound(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
	_, err := NewStore(db).Latest(context.Background(), "quote_1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreEnsureSchema(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, NewStore(db).EnsureSchema(context.Background()))
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0].sql, "CREATE TABLE IF NOT EXISTS sketches")
}
