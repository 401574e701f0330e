package usecase

import (
	"time"

	"github.com/secmon-lab/hlpreview/pkg/domain/interfaces"
	"github.com/secmon-lab/hlpreview/pkg/domain/model"
	"github.com/secmon-lab/hlpreview/pkg/domain/model/config"
)

type UseCases struct {
	assessments interfaces.AssessmentRepository
	sessions    interfaces.SessionRepository
	claims      interfaces.ClaimSource
	schema      *config.FormSchema
	allowList   *model.AllowList
	clock       func() time.Time
	sessionTTL  time.Duration

	Review *ReviewUseCase
}

type Option func(*UseCases)

// WithAllowList sets the reviewers permitted to log in. Without it nobody can.
func WithAllowList(list *model.AllowList) Option {
	return func(uc *UseCases) {
		uc.allowList = list
	}
}

func WithClock(clock func() time.Time) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(uc *UseCases) {
		uc.sessionTTL = ttl
	}
}

func New(assessments interfaces.AssessmentRepository, sessions interfaces.SessionRepository, claims interfaces.ClaimSource, schema *config.FormSchema, opts ...Option) *UseCases {
	uc := &UseCases{
		assessments: assessments,
		sessions:    sessions,
		claims:      claims,
		schema:      schema,
		allowList:   model.NewAllowList(),
		clock:       time.Now,
		sessionTTL:  model.DefaultSessionTTL,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Review = NewReviewUseCase(uc)

	return uc
}

// Schema returns the review form definition
func (uc *UseCases) Schema() *config.FormSchema {
	return uc.schema
}
