package sheets

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hlpreview/pkg/domain/model"
	sheetsapi "google.golang.org/api/sheets/v4"
)

func (r *Repository) List(ctx context.Context) ([]*model.Assessment, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, r.a1("A2:"+r.lastColumn())).
		ValueRenderOption(valueRenderUnformatted).
		Context(ctx).Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read response sheet",
			goerr.V("spreadsheet_id", r.spreadsheetID), goerr.V("sheet", r.sheetName))
	}

	rows := make([]*model.Assessment, 0, len(resp.Values))
	for i, cells := range resp.Values {
		if len(cells) == 0 {
			continue
		}
		rows = append(rows, r.decodeRow(ctx, i+1, cells))
	}
	return rows, nil
}

// Append adds a row below the table. Row 1 of an empty worksheet receives the
// header first so the row never takes its place.
func (r *Repository) Append(ctx context.Context, assessment *model.Assessment) (*model.Assessment, error) {
	if err := r.prepareAppend(ctx); err != nil {
		return nil, err
	}
	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	vr := &sheetsapi.ValueRange{Values: [][]interface{}{r.encodeRow(assessment)}}
	resp, err := r.service.Spreadsheets.Values.Append(r.spreadsheetID, r.a1("A1"), vr).
		ValueInputOption(valueInputRaw).
		InsertDataOption(insertRows).
		Context(ctx).Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append response row",
			goerr.V("spreadsheet_id", r.spreadsheetID), goerr.V("claim_number", assessment.ClaimNumber))
	}

	created := assessment.Copy()
	if resp.Updates != nil {
		if sheetRow, ok := parseUpdatedRow(resp.Updates.UpdatedRange); ok {
			created.Row = sheetRow - 1
		}
	}
	return created, nil
}

func (r *Repository) Update(ctx context.Context, assessment *model.Assessment) (*model.Assessment, error) {
	if assessment.Row < 1 {
		return nil, goerr.Wrap(ErrNotFound, "assessment row not found", goerr.V("row", assessment.Row))
	}
	sheetRow := assessment.Row + 1

	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	existing, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, r.a1(fmt.Sprintf("A%d:C%d", sheetRow, sheetRow))).
		ValueRenderOption(valueRenderUnformatted).
		Context(ctx).Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read response row", goerr.V("row", assessment.Row))
	}
	if len(existing.Values) == 0 || len(existing.Values[0]) == 0 {
		return nil, goerr.Wrap(ErrNotFound, "assessment row not found", goerr.V("row", assessment.Row))
	}

	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	vr := &sheetsapi.ValueRange{Values: [][]interface{}{r.encodeRow(assessment)}}
	if _, err := r.service.Spreadsheets.Values.Update(r.spreadsheetID, r.a1(fmt.Sprintf("A%d", sheetRow)), vr).
		ValueInputOption(valueInputRaw).
		Context(ctx).Do(); err != nil {
		return nil, goerr.Wrap(err, "failed to update response row",
			goerr.V("row", assessment.Row), goerr.V("claim_number", assessment.ClaimNumber))
	}

	return assessment.Copy(), nil
}

func (r *Repository) readHeader(ctx context.Context) ([]string, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, r.a1("A1:"+r.lastColumn()+"1")).
		ValueRenderOption(valueRenderUnformatted).
		Context(ctx).Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read response sheet header",
			goerr.V("spreadsheet_id", r.spreadsheetID), goerr.V("sheet", r.sheetName))
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	header := make([]string, 0, len(resp.Values[0]))
	for i := range resp.Values[0] {
		header = append(header, cellString(resp.Values[0], i))
	}
	return header, nil
}

// CheckHeader verifies row 1 matches the form columns
func (r *Repository) CheckHeader(ctx context.Context) error {
	got, err := r.readHeader(ctx)
	if err != nil {
		return err
	}
	if len(got) == 0 {
		return goerr.Wrap(ErrHeaderMissing, "run init-sheet first", goerr.V("sheet", r.sheetName))
	}
	if want := Header(r.schema); !slices.Equal(got, want) {
		return goerr.Wrap(ErrHeaderMismatch, "response sheet header differs",
			goerr.V("expected", want), goerr.V("actual", got))
	}
	return nil
}

// EnsureHeader writes the header when row 1 is empty. It reports whether the
// header was written.
func (r *Repository) EnsureHeader(ctx context.Context) (bool, error) {
	err := r.CheckHeader(ctx)
	if err == nil {
		r.headerReady.Store(true)
		return false, nil
	}
	if !errors.Is(err, ErrHeaderMissing) {
		return false, err
	}

	header := Header(r.schema)
	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}

	if err := r.wait(ctx); err != nil {
		return false, err
	}
	if _, err := r.service.Spreadsheets.Values.Update(r.spreadsheetID, r.a1("A1"), &sheetsapi.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption(valueInputRaw).
		Context(ctx).Do(); err != nil {
		return false, goerr.Wrap(err, "failed to write response sheet header", goerr.V("sheet", r.sheetName))
	}
	r.headerReady.Store(true)
	return true, nil
}

func (r *Repository) prepareAppend(ctx context.Context) error {
	if r.headerReady.Load() {
		return nil
	}
	r.headerMu.Lock()
	defer r.headerMu.Unlock()
	if r.headerReady.Load() {
		return nil
	}
	if _, err := r.EnsureHeader(ctx); err != nil {
		return goerr.Wrap(err, "response sheet is not ready for rows", goerr.V("sheet", r.sheetName))
	}
	return nil
}
