package config

import (
	"context"
	"io"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hlpreview/pkg/domain/interfaces"
	domainConfig "github.com/secmon-lab/hlpreview/pkg/domain/model/config"
	"github.com/secmon-lab/hlpreview/pkg/repository/firestore"
	"github.com/secmon-lab/hlpreview/pkg/repository/memory"
	"github.com/secmon-lab/hlpreview/pkg/repository/sheets"
	"github.com/secmon-lab/hlpreview/pkg/utils/logging"
	"github.com/secmon-lab/hlpreview/pkg/utils/safe"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

const (
	BackendSheets    = "sheets"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
	BackendRedis     = "redis"
)

// Repository holds CLI flags for the assessment store backend
type Repository struct {
	backend          string
	spreadsheetID    string
	sheetName        string
	credentialsFile  string
	sheetsEndpoint   string
	sheetsRate       float64
	sheetsBurst      int
	projectID        string
	databaseID       string
	collectionPrefix string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Assessment store backend (sheets, firestore or memory)",
			Value:       BackendSheets,
			Category:    "Repository",
			Sources:     cli.EnvVars("HLP_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "spreadsheet-id",
			Usage:       "Google Sheets spreadsheet ID (required when using sheets backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("HLP_SPREADSHEET_ID"),
			Destination: &r.spreadsheetID,
		},
		&cli.StringFlag{
			Name:        "sheet-name",
			Usage:       "Worksheet holding the responses",
			Value:       "HLP_Responses",
			Category:    "Repository",
			Sources:     cli.EnvVars("HLP_SHEET_NAME"),
			Destination: &r.sheetName,
		},
		&cli.StringFlag{
			Name:        "credentials-file",
			Usage:       "Service account JSON for Google APIs; application default credentials when empty",
			Category:    "Repository",
			Sources:     cli.EnvVars("HLP_CREDENTIALS_FILE", "GOOGLE_APPLICATION_CREDENTIALS"),
			Destination: &r.credentialsFile,
		},
		&cli.StringFlag{
			Name:        "sheets-endpoint",
			Usage:       "Sheets API endpoint override for emulators; requests are sent without credentials",
			Category:    "Repository",
			Sources:     cli.EnvVars("HLP_SHEETS_ENDPOINT"),
			Destination: &r.sheetsEndpoint,
		},
		&cli.FloatFlag{
			Name:        "sheets-rate",
			Usage:       "Sheets API requests per second (0 disables limiting)",
			Value:       1,
			Category:    "Repository",
			Sources:     cli.EnvVars("HLP_SHEETS_RATE"),
			Destination: &r.sheetsRate,
		},
		&cli.IntFlag{
			Name:        "sheets-burst",
			Usage:       "Sheets API request burst",
			Value:       5,
			Category:    "Repository",
			Sources:     cli.EnvVars("HLP_SHEETS_BURST"),
			Destination: &r.sheetsBurst,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("HLP_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("HLP_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix for Firestore collection names",
			Category:    "Repository",
			Sources:     cli.EnvVars("HLP_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("backend", r.backend)}
	switch r.backend {
	case BackendSheets:
		attrs = append(attrs,
			slog.String("spreadsheet_id", r.spreadsheetID),
			slog.String("sheet_name", r.sheetName),
			slog.Float64("rate", r.sheetsRate),
		)
	case BackendFirestore:
		attrs = append(attrs,
			slog.String("project_id", r.projectID),
			slog.String("database_id", r.databaseID),
		)
	}
	return slog.GroupValue(attrs...)
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// ClientOptions returns the Google API client options shared by Sheets and
// Cloud Storage
func (r *Repository) ClientOptions() []option.ClientOption {
	if r.credentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(r.credentialsFile)}
}

// ConfigureSheets opens the response sheet regardless of the selected backend
func (r *Repository) ConfigureSheets(ctx context.Context, schema *domainConfig.FormSchema) (*sheets.Repository, error) {
	if r.spreadsheetID == "" {
		return nil, goerr.Wrap(ErrMissingFlag, "spreadsheet-id is required", goerr.V(FlagKey, "spreadsheet-id"))
	}

	clientOptions := r.ClientOptions()
	if r.sheetsEndpoint != "" {
		clientOptions = []option.ClientOption{
			option.WithEndpoint(r.sheetsEndpoint),
			option.WithoutAuthentication(),
		}
	}

	repo, err := sheets.New(ctx, r.spreadsheetID, r.sheetName, schema,
		sheets.WithClientOptions(clientOptions...),
		sheets.WithRateLimit(r.sheetsRate, r.sheetsBurst),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize sheets repository")
	}
	return repo, nil
}

func (r *Repository) openFirestore(ctx context.Context) (*firestore.Firestore, error) {
	if r.projectID == "" {
		return nil, goerr.Wrap(ErrMissingFlag, "firestore-project-id is required", goerr.V(FlagKey, "firestore-project-id"))
	}
	repo, err := firestore.New(ctx, r.projectID, r.databaseID, firestore.WithCollectionPrefix(r.collectionPrefix))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize firestore repository")
	}
	return repo, nil
}

// Configure initializes the assessment store. The caller must call the
// returned closer.
func (r *Repository) Configure(ctx context.Context, schema *domainConfig.FormSchema) (interfaces.AssessmentRepository, func(), error) {
	switch r.backend {
	case BackendSheets:
		repo, err := r.ConfigureSheets(ctx, schema)
		if err != nil {
			return nil, nil, err
		}
		logging.Default().Info("Using Google Sheets repository",
			"spreadsheet_id", r.spreadsheetID,
			"sheet_name", r.sheetName,
		)
		return repo, func() {}, nil

	case BackendFirestore:
		repo, err := r.openFirestore(ctx)
		if err != nil {
			return nil, nil, err
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo.Assessment(), closeRepository(repo), nil

	case BackendMemory:
		logging.Default().Warn("Using in-memory repository, responses are lost on exit")
		repo := memory.New()
		return repo.Assessment(), closeRepository(repo), nil

	default:
		return nil, nil, goerr.Wrap(ErrInvalidBackend, "invalid repository backend", goerr.V(BackendKey, r.backend))
	}
}

func closeRepository(repo io.Closer) func() {
	return func() {
		safe.Close(context.Background(), repo)
	}
}
