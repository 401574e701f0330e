package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/hlpreview/pkg/domain/model"
)

// SessionRepository persists review sessions between requests
type SessionRepository interface {
	Put(ctx context.Context, session *model.ReviewSession) error
	Get(ctx context.Context, id model.SessionID) (*model.ReviewSession, error)
}

// SessionSweeper is implemented by session stores whose expired entries are
// not evicted by the backend itself
type SessionSweeper interface {
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}
