package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/secmon-lab/hlpreview/pkg/domain/model"
	"github.com/secmon-lab/hlpreview/pkg/domain/model/config"
	"github.com/secmon-lab/hlpreview/pkg/domain/types"
	"github.com/secmon-lab/hlpreview/pkg/utils/logging"
)

const (
	headerName      = "Name"
	headerEmail     = "Email"
	headerClaim     = "Claim Number"
	headerTimeSpent = "Time Spent (s)"
	headerTimestamp = "Timestamp"

	leadingColumns = 3
)

// Header returns the response sheet header for schema
func Header(schema *config.FormSchema) []string {
	header := make([]string, 0, leadingColumns+len(schema.Fields)+2)
	header = append(header, headerName, headerEmail, headerClaim)
	for _, f := range schema.Fields {
		header = append(header, f.Label)
	}
	return append(header, headerTimeSpent, headerTimestamp)
}

// columnName converts a 1-based column number to A1 letters (1 -> A, 27 -> AA)
func columnName(n int) string {
	var name []byte
	for n > 0 {
		n--
		name = append([]byte{byte('A' + n%26)}, name...)
		n /= 26
	}
	return string(name)
}

func (r *Repository) lastColumn() string {
	return columnName(leadingColumns + len(r.schema.Fields) + 2)
}

// a1 qualifies cells with the quoted sheet name
func (r *Repository) a1(cells string) string {
	return "'" + strings.ReplaceAll(r.sheetName, "'", "''") + "'!" + cells
}

func (r *Repository) encodeRow(a *model.Assessment) []interface{} {
	row := make([]interface{}, 0, leadingColumns+len(r.schema.Fields)+2)
	row = append(row, a.ReviewerName, a.ReviewerEmail.String(), a.ClaimNumber)
	for _, f := range r.schema.Fields {
		row = append(row, a.Values[f.ID])
	}
	return append(row, a.TimeSpentSeconds, a.Timestamp.UTC().Format(time.RFC3339))
}

// cellString renders an unformatted cell. Numbers keep every digit and a dot
// separator whatever the spreadsheet locale is.
func cellString(cells []interface{}, i int) string {
	if i >= len(cells) || cells[i] == nil {
		return ""
	}
	switch v := cells[i].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// decodeRow reads one sheet row. Corrupt time cells fall back to zero values.
func (r *Repository) decodeRow(ctx context.Context, rowNum int, cells []interface{}) *model.Assessment {
	a := &model.Assessment{
		Row:           rowNum,
		ReviewerName:  cellString(cells, 0),
		ReviewerEmail: types.Email(cellString(cells, 1)),
		ClaimNumber:   cellString(cells, 2),
		Values:        make(map[string]string, len(r.schema.Fields)),
	}
	for i, f := range r.schema.Fields {
		a.Values[f.ID] = cellString(cells, leadingColumns+i)
	}

	timeCol := leadingColumns + len(r.schema.Fields)
	if raw := strings.TrimSpace(cellString(cells, timeCol)); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			logging.From(ctx).Warn("corrupt time spent cell, using 0",
				"row", rowNum, "value", raw, "error", err)
		} else {
			a.TimeSpentSeconds = v
		}
	}

	if raw := strings.TrimSpace(cellString(cells, timeCol+1)); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			logging.From(ctx).Warn("corrupt timestamp cell",
				"row", rowNum, "value", raw, "error", err)
		} else {
			a.Timestamp = ts
		}
	}

	return a
}

// parseUpdatedRow extracts the first row number from a range like 'Sheet'!A5:P5
func parseUpdatedRow(updatedRange string) (int, bool) {
	cells := updatedRange
	if i := strings.LastIndex(cells, "!"); i >= 0 {
		cells = cells[i+1:]
	}
	if i := strings.Index(cells, ":"); i >= 0 {
		cells = cells[:i]
	}
	digits := strings.TrimLeft(cells, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
