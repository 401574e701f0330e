package errutil_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/hlpreview/pkg/utils/errutil"
	"github.com/secmon-lab/hlpreview/pkg/utils/logging"
)

func TestHandleHTTP(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.With(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	rec := httptest.NewRecorder()
	err := goerr.New("sheet unavailable", goerr.V("spreadsheet_id", "abc"))
	errutil.HandleHTTP(ctx, rec, err, http.StatusInternalServerError)

	gt.Value(t, rec.Code).Equal(http.StatusInternalServerError)
	gt.String(t, rec.Body.String()).Contains("Internal Server Error")
	gt.String(t, buf.String()).Contains("sheet unavailable")
	gt.String(t, buf.String()).Contains("spreadsheet_id")
}

func TestHandle_NilError(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.With(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	errutil.Handle(ctx, nil, "nothing")
	gt.Value(t, buf.Len()).Equal(0)
}
