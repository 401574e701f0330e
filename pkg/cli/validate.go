package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hlpreview/pkg/cli/config"
	"github.com/secmon-lab/hlpreview/pkg/service/claims"
	"github.com/urfave/cli/v3"
)

var ErrValidationFailed = goerr.New("validation failed")

var (
	passMark = color.New(color.FgGreen).Sprint("✔")
	failMark = color.New(color.FgRed).Sprint("✘")
	warnMark = color.New(color.FgYellow).Sprint("!")
	heading  = color.New(color.Bold)
)

// validationReport prints checks and counts failures
type validationReport struct {
	w        io.Writer
	failures int
}

func (r *validationReport) section(title string) {
	_, _ = heading.Fprintln(r.w, title)
}

func (r *validationReport) pass(format string, args ...any) {
	_, _ = fmt.Fprintf(r.w, "  %s %s\n", passMark, fmt.Sprintf(format, args...))
}

func (r *validationReport) fail(format string, args ...any) {
	r.failures++
	_, _ = fmt.Fprintf(r.w, "  %s %s\n", failMark, fmt.Sprintf(format, args...))
}

func (r *validationReport) warn(format string, args ...any) {
	_, _ = fmt.Fprintf(r.w, "  %s %s\n", warnMark, fmt.Sprintf(format, args...))
}

// checkClaimColumns reports each column the form reads from the claim file
func (r *validationReport) checkClaimColumns(source *claims.Source, required []string) {
	present := make(map[string]bool, len(source.Header()))
	for _, h := range source.Header() {
		present[h] = true
	}
	for _, col := range required {
		if present[col] {
			r.pass("column %s", col)
		} else {
			r.fail("column %s is missing", col)
		}
	}
}

func cmdValidate() *cli.Command {
	var checkSheet bool
	var formCfg config.Form
	var claimsCfg config.Claims
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "check-sheet",
			Usage:       "Also compare the response sheet header with the form",
			Sources:     cli.EnvVars("HLP_VALIDATE_CHECK_SHEET"),
			Destination: &checkSheet,
		},
	}
	flags = append(flags, formCfg.Flags()...)
	flags = append(flags, claimsCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the form configuration against the claim file and response sheet",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			w := c.Root().Writer
			if w == nil {
				w = os.Stdout
			}
			report := &validationReport{w: w}

			report.section("Form")
			schema, allowList, err := formCfg.Configure()
			if err != nil {
				report.fail("%s", err.Error())
				return goerr.Wrap(ErrValidationFailed, "form configuration is invalid", goerr.V("cause", err.Error()))
			}
			required := 0
			for _, f := range schema.Fields {
				if f.Required {
					required++
				}
			}
			report.pass("%d fields (%d required), %d milestones", len(schema.Fields), required, len(schema.Milestones))
			report.pass("%d reviewers in allow-list", allowList.Len())

			report.section("Claims " + claimsCfg.Path())
			source, err := claimsCfg.Configure(ctx, nil, repoCfg.ClientOptions()...)
			if err != nil {
				report.fail("%s", err.Error())
			} else {
				report.pass("%d claims", source.Count())
				report.checkClaimColumns(source, schema.RequiredColumns())
			}

			if checkSheet {
				report.section("Response sheet")
				repo, err := repoCfg.ConfigureSheets(ctx, schema)
				if err != nil {
					report.fail("%s", err.Error())
				} else if err := repo.CheckHeader(ctx); err != nil {
					report.fail("%s", err.Error())
				} else {
					report.pass("header matches the form")
				}
			} else {
				report.warn("response sheet not checked (use --check-sheet)")
			}

			if report.failures > 0 {
				return goerr.Wrap(ErrValidationFailed, "validation found problems", goerr.V("failures", report.failures))
			}
			return nil
		},
	}
}
