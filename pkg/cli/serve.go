package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hlpreview/pkg/cli/config"
	httpctrl "github.com/secmon-lab/hlpreview/pkg/controller/http"
	"github.com/secmon-lab/hlpreview/pkg/domain/interfaces"
	"github.com/secmon-lab/hlpreview/pkg/service/worker"
	"github.com/secmon-lab/hlpreview/pkg/usecase"
	"github.com/secmon-lab/hlpreview/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

type headerEnsurer interface {
	EnsureHeader(ctx context.Context) (bool, error)
}

// prepareResponseSheet writes the header to an empty response sheet and
// refuses to start against one whose header does not match the form
func prepareResponseSheet(ctx context.Context, sheet headerEnsurer) error {
	written, err := sheet.EnsureHeader(ctx)
	if err != nil {
		return goerr.Wrap(err, "response sheet does not match the form")
	}
	if written {
		logging.Default().Info("Wrote response sheet header")
	}
	return nil
}

func cmdServe(sentryCfg *config.Sentry) *cli.Command {
	var addr string
	var secureCookies bool
	var formCfg config.Form
	var claimsCfg config.Claims
	var repoCfg config.Repository
	var sessionCfg config.Session

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("HLP_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "secure-cookies",
			Usage:       "Mark session cookies Secure (set when TLS terminates at a proxy)",
			Sources:     cli.EnvVars("HLP_SECURE_COOKIES"),
			Destination: &secureCookies,
		},
	}

	// Add shared config flags
	flags = append(flags, formCfg.Flags()...)
	flags = append(flags, claimsCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, sessionCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			schema, allowList, err := formCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load form configuration")
			}

			assessments, closeAssessments, err := repoCfg.Configure(ctx, schema)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer closeAssessments()

			if sheet, ok := assessments.(headerEnsurer); ok {
				if err := prepareResponseSheet(ctx, sheet); err != nil {
					return err
				}
			}

			source, err := claimsCfg.Configure(ctx, schema.RequiredColumns(), repoCfg.ClientOptions()...)
			if err != nil {
				return err
			}

			sessions, closeSessions, err := sessionCfg.Configure(ctx, &repoCfg)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize session store")
			}
			defer closeSessions()

			if sweeper, ok := sessions.(interfaces.SessionSweeper); ok {
				sweepWorker := worker.NewSessionSweepWorker(sweeper, sessionCfg.SweepInterval())
				if err := sweepWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start session sweep worker")
				}
				defer sweepWorker.Stop()
			}

			uc := usecase.New(assessments, sessions, source, schema,
				usecase.WithAllowList(allowList),
				usecase.WithSessionTTL(sessionCfg.TTL()),
			)

			logging.Default().Info("Review configured",
				"form", formCfg,
				"claims", claimsCfg,
				"claim_count", source.Count(),
				"reviewers", allowList.Len(),
				"repository", repoCfg,
				"session", sessionCfg,
			)

			server := &http.Server{
				Addr: addr,
				Handler: httpctrl.New(uc.Review, schema,
					httpctrl.WithSecureCookies(secureCookies),
					httpctrl.WithSentry(sentryCfg.Enabled()),
				),
				ReadHeaderTimeout: 30 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server")
				}
				return nil
			})
			eg.Go(func() error {
				<-ctx.Done()
				logging.Default().Info("Shutting down HTTP server")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			})

			return eg.Wait()
		},
	}
}
