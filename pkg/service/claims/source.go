package claims

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hlpreview/pkg/domain/interfaces"
	"github.com/secmon-lab/hlpreview/pkg/domain/model"
	"github.com/secmon-lab/hlpreview/pkg/domain/model/config"
)

var (
	ErrMissingColumn  = goerr.New("required claim column is missing")
	ErrDuplicateClaim = goerr.New("duplicate claim number")
	ErrBlankClaim     = goerr.New("claim number is blank")
	ErrEmptySource    = goerr.New("claim source has no header")
)

const (
	ColumnKey = "column"
	LineKey   = "line"
)

// DefaultDelimiter matches the semicolon separated export of the claims system
const DefaultDelimiter = ';'

// Source is the ordered, read-only claim sequence loaded once at startup
type Source struct {
	claims []*model.Claim
	header []string
}

var _ interfaces.ClaimSource = &Source{}

func (s *Source) Count() int {
	return len(s.claims)
}

func (s *Source) At(index int) (*model.Claim, bool) {
	if index < 0 || index >= len(s.claims) {
		return nil, false
	}
	return s.claims[index], true
}

// Header returns the normalized column names in file order
func (s *Source) Header() []string {
	return append([]string(nil), s.header...)
}

// NormalizeColumn strips a byte order mark, trims, lower-cases and replaces
// spaces with underscores
func NormalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}

// Parse reads delimited UTF-8 text. Every required column must be present
// after normalization and claim numbers must be present and unique.
func Parse(r io.Reader, delimiter rune, required []string) (*Source, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rawHeader, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, goerr.Wrap(ErrEmptySource, "claim file is empty")
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read claim header")
	}

	header := make([]string, len(rawHeader))
	index := make(map[string]int, len(rawHeader))
	for i, h := range rawHeader {
		header[i] = NormalizeColumn(h)
		if _, ok := index[header[i]]; !ok {
			index[header[i]] = i
		}
	}

	for _, col := range append([]string{config.ColumnClaimNumber, config.ColumnLossDescription}, required...) {
		if _, ok := index[col]; !ok {
			return nil, goerr.Wrap(ErrMissingColumn, "claim file lacks column",
				goerr.V(ColumnKey, col), goerr.V("header", header))
		}
	}

	src := &Source{header: header}
	seen := make(map[string]int)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read claim record")
		}
		line, _ := reader.FieldPos(0)

		if isBlank(record) {
			continue
		}

		columns := make(map[string]string, len(header))
		for col, i := range index {
			if i < len(record) {
				columns[col] = strings.TrimSpace(record[i])
			} else {
				columns[col] = ""
			}
		}

		claim := model.NewClaim(columns)
		if claim.Number == "" {
			return nil, goerr.Wrap(ErrBlankClaim, "claim record has no claim number", goerr.V(LineKey, line))
		}
		if prev, dup := seen[claim.Number]; dup {
			return nil, goerr.Wrap(ErrDuplicateClaim, "claim number appears twice",
				goerr.V("claim_number", claim.Number), goerr.V(LineKey, line), goerr.V("first_line", prev))
		}
		seen[claim.Number] = line
		src.claims = append(src.claims, claim)
	}

	return src, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
