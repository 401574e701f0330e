// Package sheetstest provides an in-process fake of the Sheets values API
// covering get, append and update on a single spreadsheet.
package sheetstest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

type Server struct {
	SpreadsheetID string

	srv  *httptest.Server
	mu   sync.Mutex
	grid [][]interface{} // grid[0] is sheet row 1

	// FailWrites makes append and update return 500
	FailWrites   bool
	// DecimalComma renders numbers with a comma separator in formatted reads,
	// as a spreadsheet with a European locale does
	DecimalComma bool
}

func NewServer(t *testing.T, spreadsheetID string) *Server {
	t.Helper()
	s := &Server{SpreadsheetID: spreadsheetID}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the endpoint of the fake
func (s *Server) URL() string {
	return s.srv.URL + "/"
}

// ClientOptions points a Sheets client at the fake
func (s *Server) ClientOptions() []option.ClientOption {
	return []option.ClientOption{
		option.WithEndpoint(s.URL()),
		option.WithoutAuthentication(),
	}
}

// Rows returns a copy of the grid as strings
func (s *Server) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([][]string, len(s.grid))
	for i, cells := range s.grid {
		rows[i] = make([]string, len(cells))
		for j, c := range cells {
			rows[i][j] = fmt.Sprint(c)
		}
	}
	return rows
}

// SetRow overwrites one sheet row (1-based)
func (s *Server) SetRow(sheetRow int, cells ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setRow(sheetRow, cells)
}

func (s *Server) setRow(sheetRow int, cells []interface{}) {
	for len(s.grid) < sheetRow {
		s.grid = append(s.grid, nil)
	}
	s.grid[sheetRow-1] = append([]interface{}(nil), cells...)
}

// parseRange returns the first and last sheet rows of an A1 range. last is 0
// for an open-ended range.
func parseRange(a1 string) (first, last int) {
	if i := strings.LastIndex(a1, "!"); i >= 0 {
		a1 = a1[i+1:]
	}
	start, end, hasEnd := strings.Cut(a1, ":")
	first = rowOf(start)
	if first == 0 {
		first = 1
	}
	if hasEnd {
		last = rowOf(end)
	} else {
		last = first
	}
	return first, last
}

func rowOf(cell string) int {
	n, err := strconv.Atoi(strings.TrimLeft(cell, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
	if err != nil {
		return 0
	}
	return n
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	prefix := "/v4/spreadsheets/" + s.SpreadsheetID + "/values/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	rng := strings.TrimPrefix(r.URL.Path, prefix)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case r.Method == http.MethodGet:
		s.get(w, rng, r.URL.Query().Get("valueRenderOption"))
	case r.Method == http.MethodPost && strings.HasSuffix(rng, ":append"):
		s.write(w, r, strings.TrimSuffix(rng, ":append"), true)
	case r.Method == http.MethodPut:
		s.write(w, r, rng, false)
	default:
		http.Error(w, "unsupported", http.StatusMethodNotAllowed)
	}
}

func (s *Server) get(w http.ResponseWriter, rng, renderOption string) {
	first, last := parseRange(rng)
	if last == 0 || last > len(s.grid) {
		last = len(s.grid)
	}

	var values [][]interface{}
	for i := first; i <= last; i++ {
		if renderOption == "UNFORMATTED_VALUE" {
			values = append(values, s.grid[i-1])
			continue
		}
		values = append(values, s.formatted(s.grid[i-1]))
	}
	// Sheets drops trailing empty rows
	for len(values) > 0 && len(values[len(values)-1]) == 0 {
		values = values[:len(values)-1]
	}

	writeJSON(w, &sheetsapi.ValueRange{Range: rng, MajorDimension: "ROWS", Values: values})
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, rng string, appendRows bool) {
	if s.FailWrites {
		http.Error(w, `{"error":{"code":500,"message":"backend error"}}`, http.StatusInternalServerError)
		return
	}

	var vr sheetsapi.ValueRange
	if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sheet := rng
	if i := strings.LastIndex(rng, "!"); i >= 0 {
		sheet = rng[:i]
	}

	start, _ := parseRange(rng)
	if appendRows {
		start = s.tableEnd(start)
		if r.URL.Query().Get("insertDataOption") == "INSERT_ROWS" {
			s.insertRows(start, len(vr.Values))
		}
	}
	for i, cells := range vr.Values {
		s.setRow(start+i, cells)
	}

	end := start + len(vr.Values) - 1
	updated := &sheetsapi.UpdateValuesResponse{
		SpreadsheetId: s.SpreadsheetID,
		UpdatedRange:  fmt.Sprintf("%s!A%d:Z%d", sheet, start, end),
		UpdatedRows:   int64(len(vr.Values)),
	}
	if appendRows {
		writeJSON(w, &sheetsapi.AppendValuesResponse{SpreadsheetId: s.SpreadsheetID, Updates: updated})
		return
	}
	writeJSON(w, updated)
}

// formatted renders cells the way FORMATTED_VALUE reads return them
func (s *Server) formatted(cells []interface{}) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		switch v := c.(type) {
		case float64:
			text := strconv.FormatFloat(v, 'f', -1, 64)
			if s.DecimalComma {
				text = strings.ReplaceAll(text, ".", ",")
			}
			out[i] = text
		case nil:
			out[i] = ""
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

// tableEnd returns the first empty row of the table starting at sheet row
// first. An empty row at first itself is returned as is, so appending to an
// empty sheet writes row 1.
func (s *Server) tableEnd(first int) int {
	row := first
	for row <= len(s.grid) && len(s.grid[row-1]) > 0 {
		row++
	}
	return row
}

// insertRows shifts sheet rows from row down by n
func (s *Server) insertRows(row, n int) {
	if row > len(s.grid) {
		return
	}
	tail := append([][]interface{}(nil), s.grid[row-1:]...)
	s.grid = append(s.grid[:row-1], make([][]interface{}, n)...)
	s.grid = append(s.grid, tail...)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
