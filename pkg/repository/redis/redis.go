// Package redis stores review sessions in Redis so several server replicas can
// share them.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/hlpreview/pkg/domain/interfaces"
	"github.com/secmon-lab/hlpreview/pkg/domain/model"
)

// ErrNotFound is returned when a row or session does not exist
var ErrNotFound = interfaces.ErrNotFound

const defaultKeyPrefix = "hlpreview:session:"

type SessionRepository struct {
	client *redis.Client
	prefix string
}

var _ interfaces.SessionRepository = &SessionRepository{}

type Option func(*SessionRepository)

func WithKeyPrefix(prefix string) Option {
	return func(r *SessionRepository) {
		r.prefix = prefix
	}
}

// New connects to the Redis server at redisURL (redis://host:port/db)
func New(ctx context.Context, redisURL string, opts ...Option) (*SessionRepository, error) {
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse redis URL")
	}

	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", redisOpts.Addr))
	}

	return NewWithClient(client, opts...), nil
}

func NewWithClient(client *redis.Client, opts ...Option) *SessionRepository {
	r := &SessionRepository{
		client: client,
		prefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *SessionRepository) key(id model.SessionID) string {
	return r.prefix + id.String()
}

func (r *SessionRepository) Put(ctx context.Context, session *model.ReviewSession) error {
	if err := session.Validate(); err != nil {
		return goerr.Wrap(err, "invalid session")
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal session", goerr.V("session_id", session.ID))
	}

	if err := r.client.Set(ctx, r.key(session.ID), raw, session.TTL(time.Now())).Err(); err != nil {
		return goerr.Wrap(err, "failed to save session", goerr.V("session_id", session.ID))
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id model.SessionID) (*model.ReviewSession, error) {
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid session ID")
	}

	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, goerr.Wrap(ErrNotFound, "session not found", goerr.V("session_id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get session", goerr.V("session_id", id))
	}

	var session model.ReviewSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal session", goerr.V("session_id", id))
	}
	return &session, nil
}

func (r *SessionRepository) Close() error {
	return r.client.Close()
}
