package config

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hlpreview/pkg/service/claims"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

// Claims holds CLI flags for the claim source
type Claims struct {
	path      string
	delimiter string
}

func (c *Claims) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "claims-path",
			Usage:       "Claims CSV as a local path or gs://bucket/object",
			Value:       "Claims.csv",
			Category:    "Claims",
			Sources:     cli.EnvVars("HLP_CLAIMS_PATH"),
			Destination: &c.path,
		},
		&cli.StringFlag{
			Name:        "claims-delimiter",
			Usage:       "Claims CSV field delimiter",
			Value:       string(claims.DefaultDelimiter),
			Category:    "Claims",
			Sources:     cli.EnvVars("HLP_CLAIMS_DELIMITER"),
			Destination: &c.delimiter,
		},
	}
}

// Path returns the configured claim file location
func (c *Claims) Path() string {
	return c.path
}

func (c Claims) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", c.path),
		slog.String("delimiter", c.delimiter),
	)
}

// Configure loads the claim source. Columns in required must be present in
// addition to claim number and loss description.
func (c *Claims) Configure(ctx context.Context, required []string, opts ...option.ClientOption) (*claims.Source, error) {
	if utf8.RuneCountInString(c.delimiter) != 1 {
		return nil, goerr.Wrap(ErrInvalidConfig, "claims-delimiter must be a single character",
			goerr.V(FlagKey, "claims-delimiter"), goerr.V("delimiter", c.delimiter))
	}
	delimiter, _ := utf8.DecodeRuneInString(c.delimiter)

	source, err := claims.Load(ctx, c.path,
		claims.WithDelimiter(delimiter),
		claims.WithRequiredColumns(required...),
		claims.WithStorageClientOptions(opts...),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load claims", goerr.V(ConfigPathKey, c.path))
	}
	return source, nil
}
