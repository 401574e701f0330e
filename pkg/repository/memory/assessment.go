package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hlpreview/pkg/domain/interfaces"
	"github.com/secmon-lab/hlpreview/pkg/domain/model"
)

type assessmentRepository struct {
	mu   sync.RWMutex
	rows []*model.Assessment
}

var _ interfaces.AssessmentRepository = &assessmentRepository{}

func newAssessmentRepository() *assessmentRepository {
	return &assessmentRepository{}
}

func (r *assessmentRepository) List(ctx context.Context) ([]*model.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := make([]*model.Assessment, 0, len(r.rows))
	for _, row := range r.rows {
		rows = append(rows, row.Copy())
	}
	return rows, nil
}

func (r *assessmentRepository) Append(ctx context.Context, assessment *model.Assessment) (*model.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := assessment.Copy()
	created.Row = len(r.rows) + 1
	r.rows = append(r.rows, created)
	return created.Copy(), nil
}

func (r *assessmentRepository) Update(ctx context.Context, assessment *model.Assessment) (*model.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if assessment.Row < 1 || assessment.Row > len(r.rows) {
		return nil, goerr.Wrap(ErrNotFound, "assessment row not found", goerr.V("row", assessment.Row))
	}

	updated := assessment.Copy()
	r.rows[updated.Row-1] = updated
	return updated.Copy(), nil
}
