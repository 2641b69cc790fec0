package sheet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var rowRangeRE = regexp.MustCompile(`!A(\d+):F\d+$`)

// fakeSheets imitates the three Sheets v4 endpoints the client uses.
type fakeSheets struct {
	worksheet string
	rows      map[int][]any
	failRows  map[int]bool
	denyOpen  bool
	denyBatch bool

	mu       sync.Mutex
	ranges   []string
	requests int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests++
	f.mu.Unlock()

	p := r.URL.Path
	switch {
	case strings.HasSuffix(p, "/values:batchGet"):
		if f.denyBatch {
			apiError(w, http.StatusForbidden)
			return
		}
		var vrs []map[string]any
		for _, rng := range r.URL.Query()["ranges"] {
			f.record(rng)
			vrs = append(vrs, f.valueRange(rng))
		}
		writeJSON(w, map[string]any{"spreadsheetId": "sheet-id", "valueRanges": vrs})

	case strings.Contains(p, "/values/"):
		rng := p[strings.Index(p, "/values/")+len("/values/"):]
		f.record(rng)
		if f.failRows[rowOf(rng)] {
			apiError(w, http.StatusBadRequest)
			return
		}
		writeJSON(w, f.valueRange(rng))

	default:
		if f.denyOpen {
			apiError(w, http.StatusForbidden)
			return
		}
		writeJSON(w, map[string]any{
			"sheets": []map[string]any{
				{"properties": map[string]any{"title": "Other"}},
				{"properties": map[string]any{"title": f.worksheet}},
			},
		})
	}
}

func (f *fakeSheets) record(rng string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ranges = append(f.ranges, rng)
}

func (f *fakeSheets) valueRange(rng string) map[string]any {
	vr := map[string]any{"range": rng, "majorDimension": "ROWS"}
	if cells, ok := f.rows[rowOf(rng)]; ok {
		vr["values"] = [][]any{cells}
	}
	return vr
}

func rowOf(rng string) int {
	m := rowRangeRE.FindStringSubmatch(rng)
	if m == nil {
		return -1
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func apiError(w http.ResponseWriter, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
		"error": map[string]any{"code": code, "message": http.StatusText(code)},
	})
}

func newTestClient(t *testing.T, f *fakeSheets, batch bool) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return New(svc, Options{SpreadsheetID: "sheet-id", Worksheet: f.worksheet, Batch: batch})
}

func TestClient_ReadRows_PerRow(t *testing.T) {
	f := &fakeSheets{
		worksheet: "週報",
		rows: map[int][]any{
			2: {"10/13/2026 09:00:00", "", "陳冠宇", "shipped the parser"},
			4: {"10/12/2026 18:30:00", "x", "潘班"},
		},
	}
	c := newTestClient(t, f, false)

	rows, err := c.ReadRows(context.Background(), 2, 4)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 2, rows[0].Index)
	assert.Equal(t, []string{"10/13/2026 09:00:00", "", "陳冠宇", "shipped the parser"}, rows[0].Cells)
	assert.NoError(t, rows[0].Err)

	assert.Equal(t, 3, rows[1].Index)
	assert.Empty(t, rows[1].Cells)

	assert.Equal(t, []string{"10/12/2026 18:30:00", "x", "潘班"}, rows[2].Cells)

	assert.Equal(t, []string{"'週報'!A2:F2", "'週報'!A3:F3", "'週報'!A4:F4"}, f.ranges)
}

func TestClient_ReadRows_RowFailureIsPerRow(t *testing.T) {
	f := &fakeSheets{
		worksheet: "週報",
		rows:      map[int][]any{2: {"a"}, 3: {"b"}},
		failRows:  map[int]bool{2: true},
	}
	c := newTestClient(t, f, false)

	rows, err := c.ReadRows(context.Background(), 2, 3)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Error(t, rows[0].Err)
	assert.Nil(t, rows[0].Cells)
	assert.NoError(t, rows[1].Err)
	assert.Equal(t, []string{"b"}, rows[1].Cells)
}

func TestClient_ReadRows_OpenDenied(t *testing.T) {
	f := &fakeSheets{worksheet: "週報", denyOpen: true}
	c := newTestClient(t, f, false)

	_, err := c.ReadRows(context.Background(), 2, 14)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open spreadsheet")
	var gerr *googleapi.Error
	require.True(t, errors.As(err, &gerr), "error should wrap *googleapi.Error")
	assert.Equal(t, http.StatusForbidden, gerr.Code)
	assert.Empty(t, f.ranges, "no row may be fetched after a failed access check")
}

func TestClient_ReadRows_WorksheetMissing(t *testing.T) {
	f := &fakeSheets{worksheet: "週報"}
	c := newTestClient(t, f, false)
	c.opts.Worksheet = "Weekly"

	_, err := c.ReadRows(context.Background(), 2, 14)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `worksheet "Weekly" not found`)
}

func TestClient_ReadRows_Batch(t *testing.T) {
	f := &fakeSheets{
		worksheet: "週報",
		rows: map[int][]any{
			3: {"10/13/2026 09:00:00", "", "林柏志", 42.0},
		},
	}
	c := newTestClient(t, f, true)

	rows, err := c.ReadRows(context.Background(), 2, 4)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Empty(t, rows[0].Cells)
	assert.Equal(t, []string{"10/13/2026 09:00:00", "", "林柏志", "42"}, rows[1].Cells)
	assert.Equal(t, 4, rows[2].Index)
	assert.Len(t, f.ranges, 3)
}

func TestClient_ReadRows_BatchFailureIsWhole(t *testing.T) {
	f := &fakeSheets{worksheet: "週報", denyBatch: true}
	c := newTestClient(t, f, true)

	_, err := c.ReadRows(context.Background(), 2, 14)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch read rows 2..14")
}

func TestClient_ReadRows_RequestCount(t *testing.T) {
	for _, tc := range []struct {
		name  string
		batch bool
		want  int
	}{
		{"per-row", false, 14}, // access check plus rows 2..14
		{"batch", true, 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeSheets{worksheet: "週報"}
			c := newTestClient(t, f, tc.batch)

			_, err := c.ReadRows(context.Background(), 2, 14)
			require.NoError(t, err)
			f.mu.Lock()
			defer f.mu.Unlock()
			assert.Equal(t, tc.want, f.requests)
		})
	}
}

func TestClient_ReadRows_InvalidRange(t *testing.T) {
	c := New(nil, Options{})
	_, err := c.ReadRows(context.Background(), 5, 4)
	assert.Error(t, err)
}

func TestQuoteSheet(t *testing.T) {
	assert.Equal(t, "'週報'", quoteSheet("週報"))
	assert.Equal(t, "'Bob''s sheet'", quoteSheet("Bob's sheet"))
}
