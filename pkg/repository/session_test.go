package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/hlpreview/pkg/domain/interfaces"
	"github.com/secmon-lab/hlpreview/pkg/domain/model"
	"github.com/secmon-lab/hlpreview/pkg/domain/types"
	"github.com/secmon-lab/hlpreview/pkg/repository/firestore"
	"github.com/secmon-lab/hlpreview/pkg/repository/memory"
	"github.com/secmon-lab/hlpreview/pkg/repository/redis"
)

func isSessionNotFound(err error) bool {
	return errors.Is(err, memory.ErrNotFound) ||
		errors.Is(err, firestore.ErrNotFound) ||
		errors.Is(err, redis.ErrNotFound)
}

func runSessionRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.SessionRepository) {
	reviewer := model.Reviewer{Name: "Ana", Email: types.Email("ana@example.com")}

	t.Run("Put and Get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		now := time.Now().UTC().Truncate(time.Millisecond)
		session := model.NewReviewSession(reviewer, 3, now, time.Hour)
		session.Paused = true
		session.Draft = model.NewDraft(testSchema(), "C-4")
		session.Draft.Values["loss_cause"] = model.FieldValue{Choice: types.Chosen("Mold")}
		session.Draft.Values["coverage"] = model.FieldValue{Choices: []string{"A", "B"}}
		session.Draft.Values["notes"] = model.FieldValue{Text: "checked"}

		gt.NoError(t, repo.Put(ctx, session)).Required()

		got, err := repo.Get(ctx, session.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(session.ID)
		gt.Bool(t, got.Authenticate(session.Secret)).True()
		gt.Value(t, got.Reviewer).Equal(reviewer)
		gt.Number(t, got.ClaimIndex).Equal(3)
		gt.Bool(t, got.Paused).True()
		gt.Bool(t, got.StartTime.Equal(now)).True()

		gt.Value(t, got.Draft).NotNil().Required()
		gt.Value(t, got.Draft.ClaimNumber).Equal("C-4")
		cause := got.Draft.Value("loss_cause").Choice
		gt.Bool(t, cause.IsSet()).True()
		gt.Value(t, cause.Value()).Equal("Mold")
		gt.Value(t, got.Draft.Value("coverage").Choices).Equal([]string{"A", "B"})
		gt.Value(t, got.Draft.Value("notes").Text).Equal("checked")
	})

	t.Run("Put overwrites", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session := model.NewReviewSession(reviewer, 0, time.Now(), time.Hour)
		gt.NoError(t, repo.Put(ctx, session)).Required()

		session.Advance(10, time.Now())
		gt.NoError(t, repo.Put(ctx, session)).Required()

		got, err := repo.Get(ctx, session.ID)
		gt.NoError(t, err).Required()
		gt.Number(t, got.ClaimIndex).Equal(1)
		gt.Value(t, got.Draft).Nil()
	})

	t.Run("Get returns a copy", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		session := model.NewReviewSession(reviewer, 0, time.Now(), time.Hour)
		session.Draft = model.NewDraft(testSchema(), "C-1")
		gt.NoError(t, repo.Put(ctx, session)).Required()

		session.Draft.Values["notes"] = model.FieldValue{Text: "local only"}

		got, err := repo.Get(ctx, session.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Draft.Value("notes").Text).Equal("")
	})

	t.Run("Get not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Get(context.Background(), model.NewSessionID())
		gt.Value(t, err).NotNil().Required()
		gt.Bool(t, isSessionNotFound(err)).True()
	})

	t.Run("Get invalid ID", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Get(context.Background(), model.SessionID("not-a-uuid"))
		gt.Value(t, err).NotNil()
	})

	t.Run("Put invalid session", func(t *testing.T) {
		repo := newRepo(t)
		session := model.NewReviewSession(reviewer, 0, time.Now(), time.Hour)
		session.Secret = ""
		gt.Value(t, repo.Put(context.Background(), session)).NotNil()
	})
}

func TestMemorySessionRepository(t *testing.T) {
	runSessionRepositoryTest(t, func(t *testing.T) interfaces.SessionRepository {
		return memory.New().Session()
	})
}

func TestRedisSessionRepository(t *testing.T) {
	runSessionRepositoryTest(t, func(t *testing.T) interfaces.SessionRepository {
		t.Helper()
		s := miniredis.RunT(t)
		repo, err := redis.New(context.Background(), "redis://"+s.Addr())
		gt.NoError(t, err).Required()
		t.Cleanup(func() { _ = repo.Close() })
		return repo
	})
}

func TestFirestoreSessionRepository(t *testing.T) {
	runSessionRepositoryTest(t, func(t *testing.T) interfaces.SessionRepository {
		return newFirestore(t).Session()
	})
}

func TestFirestoreSessionSweep(t *testing.T) {
	repo := newFirestore(t).Session()
	ctx := context.Background()
	reviewer := model.Reviewer{Name: "Ana", Email: types.Email("ana@example.com")}
	now := time.Now().UTC()

	expired := model.NewReviewSession(reviewer, 0, now.Add(-2*time.Hour), time.Hour)
	live := model.NewReviewSession(reviewer, 0, now, time.Hour)
	gt.NoError(t, repo.Put(ctx, expired)).Required()
	gt.NoError(t, repo.Put(ctx, live)).Required()

	sweeper, ok := repo.(interfaces.SessionSweeper)
	gt.Bool(t, ok).True()

	deleted, err := sweeper.DeleteExpired(ctx, now)
	gt.NoError(t, err).Required()
	gt.Number(t, deleted).Equal(1)

	_, err = repo.Get(ctx, live.ID)
	gt.NoError(t, err)
}
