package export

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postExport(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewHandler(New(DefaultOptions()))
	req := httptest.NewRequest(http.MethodPost, "/export/png", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ExportImage(rec, req)
	return rec
}

func TestExportImageHandler(t *testing.T) {
	snap, err := json.Marshal(sampleSnapshot())
	require.NoError(t, err)
	body, err := json.Marshal(map[string]any{
		"width":    160,
		"height":   100,
		"name":     "quote 42",
		"snapshot": json.RawMessage(snap),
	})
	require.NoError(t, err)

	rec := postExport(t, string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="quote-42.png"`, rec.Header().Get("Content-Disposition"))

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
}

func TestExportImageHandlerRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"no viewport", `{"snapshot":{"version":1,"objects":[]}}`},
		{"no snapshot", `{"width":10,"height":10}`},
		{"bad version", `{"width":10,"height":10,"snapshot":{"version":9,"objects":[]}}`},
		{"bad object", `{"width":10,"height":10,"snapshot":{"version":1,"objects":[{"kind":"rect","style":{"strokeColor":"#000","strokeWidth":0}}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postExport(t, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
