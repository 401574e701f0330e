package memory

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	gocache "github.com/patrickmn/go-cache"
	"github.com/secmon-lab/hlpreview/pkg/domain/interfaces"
	"github.com/secmon-lab/hlpreview/pkg/domain/model"
)

type sessionRepository struct {
	cache *gocache.Cache
}

var _ interfaces.SessionRepository = &sessionRepository{}

func newSessionRepository(cleanupInterval time.Duration) *sessionRepository {
	return &sessionRepository{
		cache: gocache.New(model.DefaultSessionTTL, cleanupInterval),
	}
}

// copySession creates a deep copy of a session so callers never share drafts
func copySession(s *model.ReviewSession) *model.ReviewSession {
	copied := *s
	if s.Draft != nil {
		draft := *s.Draft
		draft.Values = make(map[string]model.FieldValue, len(s.Draft.Values))
		for k, v := range s.Draft.Values {
			if v.Choices != nil {
				v.Choices = append([]string(nil), v.Choices...)
			}
			draft.Values[k] = v
		}
		copied.Draft = &draft
	}
	return &copied
}

func (r *sessionRepository) Put(ctx context.Context, session *model.ReviewSession) error {
	if err := session.Validate(); err != nil {
		return goerr.Wrap(err, "invalid session")
	}

	r.cache.Set(session.ID.String(), copySession(session), session.TTL(time.Now()))
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id model.SessionID) (*model.ReviewSession, error) {
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid session ID")
	}

	v, found := r.cache.Get(id.String())
	if !found {
		return nil, goerr.Wrap(ErrNotFound, "session not found", goerr.V("session_id", id))
	}
	return copySession(v.(*model.ReviewSession)), nil
}
