package firestore

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hlpreview/pkg/domain/model"
	"github.com/secmon-lab/hlpreview/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type sessionDocument struct {
	ID            string    `firestore:"id"`
	Secret        string    `firestore:"secret"`
	ReviewerName  string    `firestore:"reviewer_name"`
	ReviewerEmail string    `firestore:"reviewer_email"`
	ClaimIndex    int64     `firestore:"claim_index"`
	Paused        bool      `firestore:"paused"`
	StartTime     time.Time `firestore:"start_time"`
	Draft         string    `firestore:"draft"` // JSON encoded model.Draft, empty when nil
	CreatedAt     time.Time `firestore:"created_at"`
	ExpiresAt     time.Time `firestore:"expires_at"`
}

type sessionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSessionRepository(client *firestore.Client) *sessionRepository {
	return &sessionRepository{
		client: client,
	}
}

func (r *sessionRepository) sessionsCollection() string {
	return collectionName(r.collectionPrefix, "sessions")
}

func (r *sessionRepository) Put(ctx context.Context, session *model.ReviewSession) error {
	if err := session.Validate(); err != nil {
		return goerr.Wrap(err, "invalid session")
	}

	doc := &sessionDocument{
		ID:            session.ID.String(),
		Secret:        session.Secret.String(),
		ReviewerName:  session.Reviewer.Name,
		ReviewerEmail: session.Reviewer.Email.String(),
		ClaimIndex:    int64(session.ClaimIndex),
		Paused:        session.Paused,
		StartTime:     session.StartTime,
		CreatedAt:     session.CreatedAt,
		ExpiresAt:     session.ExpiresAt,
	}
	if session.Draft != nil {
		raw, err := json.Marshal(session.Draft)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal draft", goerr.V("session_id", session.ID))
		}
		doc.Draft = string(raw)
	}

	if _, err := r.client.Collection(r.sessionsCollection()).Doc(doc.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put session to firestore", goerr.V("session_id", session.ID))
	}

	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id model.SessionID) (*model.ReviewSession, error) {
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid session ID")
	}

	snap, err := r.client.Collection(r.sessionsCollection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "session not found", goerr.V("session_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get session from firestore", goerr.V("session_id", id))
	}

	var doc sessionDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal session", goerr.V("session_id", id))
	}

	// Expired documents stay until DeleteExpired runs
	if time.Now().After(doc.ExpiresAt) {
		return nil, goerr.Wrap(ErrNotFound, "session expired", goerr.V("session_id", id))
	}

	session := &model.ReviewSession{
		ID:         model.SessionID(doc.ID),
		Secret:     model.SessionSecret(doc.Secret),
		Reviewer:   model.Reviewer{Name: doc.ReviewerName, Email: types.Email(doc.ReviewerEmail)},
		ClaimIndex: int(doc.ClaimIndex),
		Paused:     doc.Paused,
		StartTime:  doc.StartTime,
		CreatedAt:  doc.CreatedAt,
		ExpiresAt:  doc.ExpiresAt,
	}
	if doc.Draft != "" {
		var draft model.Draft
		if err := json.Unmarshal([]byte(doc.Draft), &draft); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal draft", goerr.V("session_id", id))
		}
		session.Draft = &draft
	}

	return session, nil
}

// DeleteExpired removes session documents that expired before the given time
// and returns how many were deleted
func (r *sessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	const batchSize = 500
	totalDeleted := 0

	for {
		iter := r.client.Collection(r.sessionsCollection()).
			Where("expires_at", "<", before).
			Limit(batchSize).
			Documents(ctx)
		bulkWriter := r.client.BulkWriter(ctx)
		count := 0

		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				bulkWriter.End()
				return totalDeleted, goerr.Wrap(err, "failed to iterate expired sessions")
			}

			if _, err := bulkWriter.Delete(doc.Ref); err != nil {
				iter.Stop()
				bulkWriter.End()
				return totalDeleted, goerr.Wrap(err, "failed to delete expired session", goerr.V("session_id", doc.Ref.ID))
			}
			count++
		}
		iter.Stop()
		bulkWriter.End()

		totalDeleted += count
		if count < batchSize {
			break
		}
	}

	return totalDeleted, nil
}
