// Package sheets stores assessments as rows of a Google Sheets worksheet.
// Row 1 is the header; assessment Row n lives on sheet row n+1.
package sheets

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hlpreview/pkg/domain/interfaces"
	"github.com/secmon-lab/hlpreview/pkg/domain/model/config"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

var (
	// ErrNotFound is returned when an assessment row does not exist
	ErrNotFound       = interfaces.ErrNotFound
	// ErrHeaderMissing is returned when row 1 of the worksheet is empty
	ErrHeaderMissing  = goerr.New("response sheet header is missing")
	// ErrHeaderMismatch is returned when row 1 differs from the form columns
	ErrHeaderMismatch = goerr.New("response sheet header does not match form")
)

const (
	valueInputRaw          = "RAW"
	valueRenderUnformatted = "UNFORMATTED_VALUE"
	insertRows             = "INSERT_ROWS"

	// Sheets API allows 60 requests per minute per user
	defaultRatePerSecond = 1.0
	defaultBurst         = 5
)

type Repository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	sheetName     string
	schema        *config.FormSchema
	limiter       *rate.Limiter

	clientOptions []option.ClientOption

	// headerMu serializes the header check done before the first append
	headerMu    sync.Mutex
	headerReady atomic.Bool
}

var _ interfaces.AssessmentRepository = &Repository{}

type Option func(*Repository)

// WithClientOptions passes options to the Sheets API client (credentials, endpoint)
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(r *Repository) {
		r.clientOptions = append(r.clientOptions, opts...)
	}
}

// WithRateLimit bounds API calls per second. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(r *Repository) {
		if rps <= 0 {
			r.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst <= 0 {
			burst = defaultBurst
		}
		r.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func New(ctx context.Context, spreadsheetID, sheetName string, schema *config.FormSchema, opts ...Option) (*Repository, error) {
	if spreadsheetID == "" {
		return nil, goerr.New("spreadsheet ID is required")
	}
	if sheetName == "" {
		return nil, goerr.New("sheet name is required", goerr.V("spreadsheet_id", spreadsheetID))
	}
	if schema == nil {
		return nil, goerr.New("form schema is required")
	}

	r := &Repository{
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		schema:        schema,
		limiter:       rate.NewLimiter(rate.Limit(defaultRatePerSecond), defaultBurst),
	}
	for _, opt := range opts {
		opt(r)
	}

	service, err := sheetsapi.NewService(ctx, r.clientOptions...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create sheets service", goerr.V("spreadsheet_id", spreadsheetID))
	}
	r.service = service

	return r, nil
}

func (r *Repository) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return goerr.Wrap(err, "sheets rate limit wait aborted")
	}
	return nil
}
