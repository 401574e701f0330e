package model

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hlpreview/pkg/domain/types"
)

// SessionID identifies a review session
type SessionID string

// NewSessionID generates a random session ID
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

// Validate checks the ID is a UUID
func (id SessionID) Validate() error {
	if _, err := uuid.Parse(string(id)); err != nil {
		return goerr.Wrap(err, "invalid session ID", goerr.V("session_id", string(id)))
	}
	return nil
}

func (id SessionID) String() string {
	return string(id)
}

// SessionSecret authenticates the holder of a SessionID
type SessionSecret string

// NewSessionSecret generates a random 256-bit secret
func NewSessionSecret() SessionSecret {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return SessionSecret(hex.EncodeToString(buf))
}

func (s SessionSecret) String() string {
	return string(s)
}

// DefaultSessionTTL bounds how long an idle session can be resumed by cookie
const DefaultSessionTTL = 12 * time.Hour

// ReviewSession is the per-reviewer review state: identity, cursor position,
// pause flag and the form draft of the displayed claim.
type ReviewSession struct {
	ID         SessionID     `json:"id"`
	Secret     SessionSecret `json:"secret" masq:"secret"`
	Reviewer   Reviewer      `json:"reviewer"`
	ClaimIndex int           `json:"claim_index"`
	Paused     bool          `json:"paused"`
	StartTime  time.Time     `json:"start_time"`
	Draft      *Draft        `json:"draft,omitempty"` // nil until the current claim is hydrated
	CreatedAt  time.Time     `json:"created_at"`
	ExpiresAt  time.Time     `json:"expires_at"`
}

// NewReviewSession starts a session for reviewer positioned at claimIndex
func NewReviewSession(reviewer Reviewer, claimIndex int, now time.Time, ttl time.Duration) *ReviewSession {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &ReviewSession{
		ID:         NewSessionID(),
		Secret:     NewSessionSecret(),
		Reviewer:   reviewer,
		ClaimIndex: claimIndex,
		StartTime:  now,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
}

// Validate checks the session is well formed
func (s *ReviewSession) Validate() error {
	if err := s.ID.Validate(); err != nil {
		return err
	}
	if s.Secret == "" {
		return goerr.New("session secret is required", goerr.V("session_id", s.ID))
	}
	if s.ClaimIndex < 0 {
		return goerr.New("claim index must not be negative",
			goerr.V("session_id", s.ID), goerr.V(ClaimIndexKey, s.ClaimIndex))
	}
	return nil
}

// Authenticate compares secret in constant time
func (s *ReviewSession) Authenticate(secret SessionSecret) bool {
	return subtle.ConstantTimeCompare([]byte(s.Secret), []byte(secret)) == 1
}

// Expired reports whether the session lifetime has passed
func (s *ReviewSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// TTL returns the remaining lifetime, never less than one second
func (s *ReviewSession) TTL(now time.Time) time.Duration {
	ttl := s.ExpiresAt.Sub(now)
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}

// IsComplete reports whether every one of total claims has been passed
func (s *ReviewSession) IsComplete(total int) bool {
	return s.ClaimIndex >= total
}

// State derives the state machine position for a claim sequence of length total
func (s *ReviewSession) State(total int) types.ReviewState {
	switch {
	case s.IsComplete(total):
		return types.ReviewStateComplete
	case s.Paused:
		return types.ReviewStatePaused
	default:
		return types.ReviewStateReviewing
	}
}

// Advance moves to the next claim, never past total
func (s *ReviewSession) Advance(total int, now time.Time) {
	if s.ClaimIndex < total {
		s.ClaimIndex++
	}
	s.Reset(true, now)
}

// Retreat moves back to the previous claim. A completed review stays complete.
func (s *ReviewSession) Retreat(total int, now time.Time) error {
	if s.IsComplete(total) {
		return goerr.Wrap(ErrReviewComplete, "cannot go back from a completed review", goerr.V(ClaimIndexKey, s.ClaimIndex))
	}
	if s.Paused {
		return goerr.Wrap(ErrSessionPaused, "cannot navigate while paused", goerr.V(ClaimIndexKey, s.ClaimIndex))
	}
	if s.ClaimIndex <= 0 {
		return goerr.Wrap(ErrAtFirstClaim, "cannot go back", goerr.V(ClaimIndexKey, s.ClaimIndex))
	}
	s.ClaimIndex--
	s.Reset(true, now)
	return nil
}

// Pause holds the cursor on the current claim until Resume
func (s *ReviewSession) Pause() {
	s.Paused = true
}

// Resume clears the pause flag and moves past the claim paused on
func (s *ReviewSession) Resume(total int, now time.Time) error {
	if !s.Paused {
		return goerr.Wrap(ErrNotPaused, "cannot resume", goerr.V(ClaimIndexKey, s.ClaimIndex))
	}
	s.Paused = false
	s.Advance(total, now)
	return nil
}

// Reset clears the form draft and restarts the claim timer. Without
// preserveIdentity the reviewer and cursor are cleared as well.
func (s *ReviewSession) Reset(preserveIdentity bool, now time.Time) {
	s.Draft = nil
	s.StartTime = now
	if !preserveIdentity {
		s.Reviewer = Reviewer{}
		s.ClaimIndex = 0
		s.Paused = false
	}
}

// Elapsed returns seconds since the current claim started, rounded to 0.01
func (s *ReviewSession) Elapsed(now time.Time) float64 {
	return roundSeconds(now.Sub(s.StartTime).Seconds())
}

func roundSeconds(v float64) float64 {
	if v < 0 {
		return 0
	}
	return float64(int64(v*100+0.5)) / 100
}

// Progress is the "claim i of N" position of a session
type Progress struct {
	Position int `json:"position"`
	Total    int `json:"total"`
	Percent  int `json:"percent"`
}

// Progress returns the 1-based position and completion percentage
func (s *ReviewSession) Progress(total int) Progress {
	if total <= 0 {
		return Progress{}
	}
	position := s.ClaimIndex + 1
	if position > total {
		position = total
	}
	return Progress{
		Position: position,
		Total:    total,
		Percent:  position * 100 / total,
	}
}
