package interfaces

import (
	"context"

	"github.com/secmon-lab/hlpreview/pkg/domain/model"
)

// AssessmentRepository is the tabular response store. Rows keep their insertion
// order; Row numbers are assigned by Append and address rows for Update.
type AssessmentRepository interface {
	// List reads every stored row in store order
	List(ctx context.Context) ([]*model.Assessment, error)

	// Append adds a row at the end of the store and returns it with Row set
	Append(ctx context.Context, assessment *model.Assessment) (*model.Assessment, error)

	// Update overwrites every column of the row addressed by assessment.Row
	Update(ctx context.Context, assessment *model.Assessment) (*model.Assessment, error)
}
