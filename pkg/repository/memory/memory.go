package memory

import (
	"time"

	"github.com/secmon-lab/hlpreview/pkg/domain/interfaces"
)

// ErrNotFound is returned when a row or session does not exist
var ErrNotFound = interfaces.ErrNotFound

// Memory keeps assessments and sessions in process memory (development mode)
type Memory struct {
	assessment *assessmentRepository
	session    *sessionRepository
}

var _ interfaces.Repository = &Memory{}

// Option configures Memory
type Option func(*Memory)

// WithSessionCleanupInterval sets how often expired sessions are purged
func WithSessionCleanupInterval(d time.Duration) Option {
	return func(m *Memory) {
		m.session = newSessionRepository(d)
	}
}

func New(opts ...Option) *Memory {
	m := &Memory{
		assessment: newAssessmentRepository(),
		session:    newSessionRepository(10 * time.Minute),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Assessment() interfaces.AssessmentRepository {
	return m.assessment
}

func (m *Memory) Session() interfaces.SessionRepository {
	return m.session
}

func (m *Memory) Close() error {
	return nil
}
