package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hlpreview/pkg/cli/config"
	"github.com/secmon-lab/hlpreview/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdInitSheet() *cli.Command {
	var formCfg config.Form
	var repoCfg config.Repository

	var flags []cli.Flag
	flags = append(flags, formCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "init-sheet",
		Usage: "Write the header row to an empty response sheet",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			schema, _, err := formCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load form configuration")
			}

			repo, err := repoCfg.ConfigureSheets(ctx, schema)
			if err != nil {
				return err
			}

			written, err := repo.EnsureHeader(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize response sheet")
			}

			if written {
				logging.Default().Info("Response sheet header written", "columns", len(schema.Fields)+5)
			} else {
				logging.Default().Info("Response sheet header already present")
			}
			return nil
		},
	}
}
