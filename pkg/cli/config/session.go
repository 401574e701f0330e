package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hlpreview/pkg/domain/interfaces"
	"github.com/secmon-lab/hlpreview/pkg/domain/model"
	"github.com/secmon-lab/hlpreview/pkg/repository/memory"
	"github.com/secmon-lab/hlpreview/pkg/repository/redis"
	"github.com/secmon-lab/hlpreview/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Session holds CLI flags for the review session store
type Session struct {
	backend   string
	redisURL  string
	keyPrefix string
	ttl       time.Duration
	sweep     time.Duration
}

func (s *Session) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "session-backend",
			Usage:       "Session store backend (memory, redis or firestore)",
			Value:       BackendMemory,
			Category:    "Session",
			Sources:     cli.EnvVars("HLP_SESSION_BACKEND"),
			Destination: &s.backend,
		},
		&cli.StringFlag{
			Name:        "redis-url",
			Usage:       "Redis URL (required when using redis backend), e.g. redis://localhost:6379/0",
			Category:    "Session",
			Sources:     cli.EnvVars("HLP_REDIS_URL"),
			Destination: &s.redisURL,
		},
		&cli.StringFlag{
			Name:        "redis-key-prefix",
			Usage:       "Prefix for session keys in Redis",
			Value:       "hlpreview:session:",
			Category:    "Session",
			Sources:     cli.EnvVars("HLP_REDIS_KEY_PREFIX"),
			Destination: &s.keyPrefix,
		},
		&cli.DurationFlag{
			Name:        "session-ttl",
			Usage:       "Lifetime of a review session",
			Value:       model.DefaultSessionTTL,
			Category:    "Session",
			Sources:     cli.EnvVars("HLP_SESSION_TTL"),
			Destination: &s.ttl,
		},
		&cli.DurationFlag{
			Name:        "session-sweep-interval",
			Usage:       "Interval for deleting expired sessions from stores without native expiry",
			Value:       time.Hour,
			Category:    "Session",
			Sources:     cli.EnvVars("HLP_SESSION_SWEEP_INTERVAL"),
			Destination: &s.sweep,
		},
	}
}

func (s Session) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", s.backend),
		slog.Duration("ttl", s.ttl),
	)
}

// TTL returns the configured session lifetime
func (s *Session) TTL() time.Duration {
	if s.ttl <= 0 {
		return model.DefaultSessionTTL
	}
	return s.ttl
}

// SweepInterval returns how often expired sessions are deleted
func (s *Session) SweepInterval() time.Duration {
	return s.sweep
}

// Configure initializes the session store. The firestore backend reuses the
// project and database of repo. The caller must call the returned closer.
func (s *Session) Configure(ctx context.Context, repo *Repository) (interfaces.SessionRepository, func(), error) {
	switch s.backend {
	case BackendMemory:
		logging.Default().Info("Using in-memory session store")
		m := memory.New()
		return m.Session(), closeRepository(m), nil

	case BackendRedis:
		if s.redisURL == "" {
			return nil, nil, goerr.Wrap(ErrMissingFlag, "redis-url is required", goerr.V(FlagKey, "redis-url"))
		}
		store, err := redis.New(ctx, s.redisURL, redis.WithKeyPrefix(s.keyPrefix))
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize redis session store")
		}
		logging.Default().Info("Using Redis session store")
		return store, closeRepository(store), nil

	case BackendFirestore:
		fs, err := repo.openFirestore(ctx)
		if err != nil {
			return nil, nil, err
		}
		logging.Default().Info("Using Firestore session store", "project_id", repo.projectID)
		return fs.Session(), closeRepository(fs), nil

	default:
		return nil, nil, goerr.Wrap(ErrInvalidBackend, "invalid session backend", goerr.V(BackendKey, s.backend))
	}
}
