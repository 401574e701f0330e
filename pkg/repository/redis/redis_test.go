package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/hlpreview/pkg/domain/model"
	"github.com/secmon-lab/hlpreview/pkg/domain/types"
	"github.com/secmon-lab/hlpreview/pkg/repository/redis"
)

func setupRedis(t *testing.T) (*redis.SessionRepository, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	repo, err := redis.New(context.Background(), "redis://"+s.Addr(), redis.WithKeyPrefix("test:"))
	gt.NoError(t, err).Required()
	t.Cleanup(func() { _ = repo.Close() })
	return repo, s
}

func TestSessionExpiresWithTTL(t *testing.T) {
	repo, s := setupRedis(t)
	ctx := context.Background()

	reviewer := model.Reviewer{Name: "Ana", Email: types.Email("ana@example.com")}
	session := model.NewReviewSession(reviewer, 0, time.Now(), time.Minute)
	gt.NoError(t, repo.Put(ctx, session)).Required()

	gt.Bool(t, s.Exists("test:"+session.ID.String())).True()

	s.FastForward(2 * time.Minute)

	_, err := repo.Get(ctx, session.ID)
	gt.Error(t, err).Is(redis.ErrNotFound)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := redis.New(context.Background(), "not-a-url")
	gt.Value(t, err).NotNil()
}
