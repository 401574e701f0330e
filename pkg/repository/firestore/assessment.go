package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hlpreview/pkg/domain/model"
	"github.com/secmon-lab/hlpreview/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type assessmentDocument struct {
	Row              int64             `firestore:"row"`
	ReviewerName     string            `firestore:"reviewer_name"`
	ReviewerEmail    string            `firestore:"reviewer_email"`
	ClaimNumber      string            `firestore:"claim_number"`
	Values           map[string]string `firestore:"values"`
	TimeSpentSeconds float64           `firestore:"time_spent_seconds"`
	Timestamp        time.Time         `firestore:"timestamp"`
}

type assessmentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAssessmentRepository(client *firestore.Client) *assessmentRepository {
	return &assessmentRepository{
		client: client,
	}
}

func (r *assessmentRepository) assessmentsCollection() string {
	return collectionName(r.collectionPrefix, "assessments")
}

func (r *assessmentRepository) counterCollection() string {
	return collectionName(r.collectionPrefix, "counters")
}

func (r *assessmentRepository) assessmentCounterDoc() string {
	return "assessment_counter"
}

// docID zero-pads the row so lexical document order matches row order
func docID(row int64) string {
	return fmt.Sprintf("%010d", row)
}

func toAssessmentDocument(a *model.Assessment) *assessmentDocument {
	return &assessmentDocument{
		Row:              int64(a.Row),
		ReviewerName:     a.ReviewerName,
		ReviewerEmail:    a.ReviewerEmail.String(),
		ClaimNumber:      a.ClaimNumber,
		Values:           a.Values,
		TimeSpentSeconds: a.TimeSpentSeconds,
		Timestamp:        a.Timestamp,
	}
}

func toAssessmentModel(doc *assessmentDocument) *model.Assessment {
	values := doc.Values
	if values == nil {
		values = map[string]string{}
	}
	return &model.Assessment{
		Row:              int(doc.Row),
		ReviewerName:     doc.ReviewerName,
		ReviewerEmail:    types.Email(doc.ReviewerEmail),
		ClaimNumber:      doc.ClaimNumber,
		Values:           values,
		TimeSpentSeconds: doc.TimeSpentSeconds,
		Timestamp:        doc.Timestamp,
	}
}

func (r *assessmentRepository) getNextRow(ctx context.Context) (int64, error) {
	counterRef := r.client.Collection(r.counterCollection()).Doc(r.assessmentCounterDoc())

	var nextRow int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				nextRow = 1
				return tx.Set(counterRef, map[string]interface{}{
					"value": nextRow,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}

		val, ok := currentValue.(int64)
		if !ok {
			return goerr.New("counter value is not of type int64", goerr.V("value", currentValue))
		}
		nextRow = val + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: nextRow},
		})
	})

	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next row")
	}

	return nextRow, nil
}

func (r *assessmentRepository) List(ctx context.Context) ([]*model.Assessment, error) {
	iter := r.client.Collection(r.assessmentsCollection()).OrderBy("row", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var rows []*model.Assessment
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate assessments")
		}

		var doc assessmentDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal assessment", goerr.V("doc_id", snap.Ref.ID))
		}
		rows = append(rows, toAssessmentModel(&doc))
	}

	return rows, nil
}

func (r *assessmentRepository) Append(ctx context.Context, assessment *model.Assessment) (*model.Assessment, error) {
	row, err := r.getNextRow(ctx)
	if err != nil {
		return nil, err
	}

	created := assessment.Copy()
	created.Row = int(row)

	if _, err := r.client.Collection(r.assessmentsCollection()).Doc(docID(row)).Set(ctx, toAssessmentDocument(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to append assessment", goerr.V("row", row))
	}

	return created, nil
}

func (r *assessmentRepository) Update(ctx context.Context, assessment *model.Assessment) (*model.Assessment, error) {
	docRef := r.client.Collection(r.assessmentsCollection()).Doc(docID(int64(assessment.Row)))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "assessment row not found", goerr.V("row", assessment.Row))
		}
		return nil, goerr.Wrap(err, "failed to get assessment", goerr.V("row", assessment.Row))
	}

	updated := assessment.Copy()
	if _, err := docRef.Set(ctx, toAssessmentDocument(updated)); err != nil {
		return nil, goerr.Wrap(err, "failed to update assessment", goerr.V("row", assessment.Row))
	}

	return updated, nil
}
