package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hlpreview/pkg/domain/interfaces"
	"github.com/secmon-lab/hlpreview/pkg/domain/model"
	"github.com/secmon-lab/hlpreview/pkg/domain/types"
	"github.com/secmon-lab/hlpreview/pkg/utils/logging"
)

type ReviewUseCase struct {
	uc        *UseCases
	validator *model.FormValidator
}

func NewReviewUseCase(uc *UseCases) *ReviewUseCase {
	return &ReviewUseCase{
		uc:        uc,
		validator: model.NewFormValidator(uc.schema),
	}
}

// ReviewView is what a reviewer sees for the current cursor position
type ReviewView struct {
	State     types.ReviewState    `json:"state"`
	Reviewer  model.Reviewer       `json:"reviewer"`
	Index     int                  `json:"index"`
	Progress  model.Progress       `json:"progress"`
	Milestone string               `json:"milestone,omitempty"`
	Claim     *model.Claim         `json:"claim,omitempty"` // nil when complete
	Draft     *model.Draft         `json:"draft,omitempty"`
	Issues    []model.HydrateIssue `json:"issues,omitempty"`
	CanGoBack bool                 `json:"can_go_back"`
}

// SubmitResult describes a committed assessment
type SubmitResult struct {
	Assessment *model.Assessment `json:"assessment"`
	Updated    bool              `json:"updated"` // an existing row was overwritten
	View       *ReviewView       `json:"view"`
}

// Login checks the allow-list and opens a session positioned after the last
// claim the reviewer has a stored response for.
func (r *ReviewUseCase) Login(ctx context.Context, name, email string) (*model.ReviewSession, error) {
	name = strings.TrimSpace(name)
	addr := types.Email(strings.TrimSpace(email))
	if name == "" {
		return nil, goerr.Wrap(ErrInvalidIdentity, "name is empty")
	}
	if err := addr.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidIdentity, "malformed email", goerr.V(EmailKey, email))
	}

	if !r.uc.allowList.Allows(addr) {
		logging.From(ctx).Warn("login rejected", "email", addr.Normalize())
		return nil, goerr.Wrap(ErrUnauthorized, "email not in allow-list", goerr.V(EmailKey, addr.Normalize()))
	}

	index, err := r.ResumeIndex(ctx, addr)
	if err != nil {
		return nil, err
	}

	now := r.uc.clock()
	session := model.NewReviewSession(model.Reviewer{Name: name, Email: addr}, index, now, r.uc.sessionTTL)
	if err := r.uc.sessions.Put(ctx, session); err != nil {
		return nil, goerr.Wrap(err, "failed to save session", goerr.V(SessionIDKey, session.ID))
	}

	logging.From(ctx).Info("reviewer logged in",
		"email", addr.Normalize(),
		"session_id", session.ID,
		"claim_index", index,
		"total", r.uc.claims.Count())
	return session, nil
}

// ResumeIndex counts the distinct claims email has a stored row for, bounded
// by the claim count
func (r *ReviewUseCase) ResumeIndex(ctx context.Context, email types.Email) (int, error) {
	rows, err := r.uc.assessments.List(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to read responses", goerr.V(EmailKey, email.Normalize()))
	}

	return min(model.CountReviewedClaims(rows, email), r.uc.claims.Count()), nil
}

// Session loads and authenticates a session by its cookie credentials
func (r *ReviewUseCase) Session(ctx context.Context, id model.SessionID, secret model.SessionSecret) (*model.ReviewSession, error) {
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidSession, "malformed session ID")
	}

	session, err := r.uc.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrSessionNotFound, "no such session", goerr.V(SessionIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to load session", goerr.V(SessionIDKey, id))
	}

	if !session.Authenticate(secret) {
		return nil, goerr.Wrap(ErrInvalidSession, "session secret mismatch", goerr.V(SessionIDKey, id))
	}
	if session.Expired(r.uc.clock()) {
		return nil, goerr.Wrap(ErrSessionExpired, "session expired", goerr.V(SessionIDKey, id))
	}
	return session, nil
}

// View returns the current position. The draft of the displayed claim is
// hydrated from the stored row on first view and then kept in the session.
func (r *ReviewUseCase) View(ctx context.Context, session *model.ReviewSession) (*ReviewView, error) {
	view := r.baseView(session)

	claim, ok := r.uc.claims.At(session.ClaimIndex)
	if !ok {
		return view, nil
	}
	view.Claim = claim

	if session.Draft == nil || session.Draft.ClaimNumber != claim.Number {
		rows, err := r.uc.assessments.List(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read responses", goerr.V(ClaimNumberKey, claim.Number))
		}

		prior, _ := model.FindAssessment(rows, session.Reviewer.Email, claim.Number)
		draft, issues := model.HydrateDraft(r.uc.schema, claim.Number, prior)
		for _, issue := range issues {
			logging.From(ctx).Warn("stored value dropped on hydrate",
				"claim_number", claim.Number,
				"field_id", issue.FieldID,
				"stored", issue.Stored,
				"reason", issue.Reason)
		}

		session.Draft = draft
		view.Issues = issues
		if err := r.uc.sessions.Put(ctx, session); err != nil {
			return nil, goerr.Wrap(err, "failed to save session", goerr.V(SessionIDKey, session.ID))
		}
	}

	view.Draft = session.Draft
	return view, nil
}

func (r *ReviewUseCase) baseView(session *model.ReviewSession) *ReviewView {
	total := r.uc.claims.Count()
	view := &ReviewView{
		State:     session.State(total),
		Reviewer:  session.Reviewer,
		Index:     session.ClaimIndex,
		Progress:  session.Progress(total),
		CanGoBack: session.ClaimIndex > 0 && !session.Paused && !session.IsComplete(total),
	}
	if !session.IsComplete(total) {
		if msg, ok := r.uc.schema.Milestone(session.ClaimIndex + 1); ok {
			view.Milestone = msg
		}
	}
	return view
}

// Submit validates input for the displayed claim, upserts it and then either
// advances or pauses. On validation or store failure the cursor does not move
// and the entered values stay in the session draft.
func (r *ReviewUseCase) Submit(ctx context.Context, session *model.ReviewSession, action types.SubmitAction, input map[string]any) (*SubmitResult, error) {
	if !action.IsValid() {
		return nil, goerr.New("invalid submit action", goerr.V("action", action))
	}

	total := r.uc.claims.Count()
	if session.IsComplete(total) {
		return nil, goerr.Wrap(model.ErrReviewComplete, "nothing left to submit", goerr.V(ClaimIndexKey, session.ClaimIndex))
	}
	if session.Paused {
		return nil, goerr.Wrap(model.ErrSessionPaused, "resume before submitting", goerr.V(ClaimIndexKey, session.ClaimIndex))
	}

	claim, ok := r.uc.claims.At(session.ClaimIndex)
	if !ok {
		return nil, goerr.Wrap(ErrClaimNotFound, "cursor out of range", goerr.V(ClaimIndexKey, session.ClaimIndex))
	}

	draft, err := r.validator.ParseInput(claim.Number, input)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid form input", goerr.V(ClaimNumberKey, claim.Number))
	}
	session.Draft = draft

	if err := r.validator.Validate(draft); err != nil {
		if putErr := r.uc.sessions.Put(ctx, session); putErr != nil {
			return nil, goerr.Wrap(putErr, "failed to save session", goerr.V(SessionIDKey, session.ID))
		}
		return nil, err
	}

	assessment, updated, err := r.Commit(ctx, session, claim, draft)
	if err != nil {
		if putErr := r.uc.sessions.Put(ctx, session); putErr != nil {
			logging.From(ctx).Error("failed to save session after commit failure",
				"session_id", session.ID, "error", putErr)
		}
		return nil, err
	}

	now := r.uc.clock()
	switch action {
	case types.SubmitActionPause:
		session.Pause()
	default:
		session.Advance(total, now)
	}

	if err := r.uc.sessions.Put(ctx, session); err != nil {
		return nil, goerr.Wrap(err, "failed to save session", goerr.V(SessionIDKey, session.ID))
	}

	logging.From(ctx).Info("assessment submitted",
		"email", session.Reviewer.Email.Normalize(),
		"claim_number", claim.Number,
		"row", assessment.Row,
		"updated", updated,
		"action", action)

	view, err := r.View(ctx, session)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{Assessment: assessment, Updated: updated, View: view}, nil
}

// Commit writes draft for claim as the reviewer's single row for that claim.
// The store is re-read so a row written since login is updated, not duplicated.
func (r *ReviewUseCase) Commit(ctx context.Context, session *model.ReviewSession, claim *model.Claim, draft *model.Draft) (*model.Assessment, bool, error) {
	if err := r.validator.Validate(draft); err != nil {
		return nil, false, err
	}

	now := r.uc.clock()
	rows, err := r.uc.assessments.List(ctx)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to read responses", goerr.V(ClaimNumberKey, claim.Number))
	}

	assessment := &model.Assessment{
		ReviewerName:     session.Reviewer.Name,
		ReviewerEmail:    session.Reviewer.Email,
		ClaimNumber:      claim.Number,
		Values:           draft.Serialize(r.uc.schema),
		TimeSpentSeconds: session.Elapsed(now),
		Timestamp:        now,
	}

	if existing, found := model.FindAssessment(rows, session.Reviewer.Email, claim.Number); found {
		assessment.Row = existing.Row
		assessment.TimeSpentSeconds = existing.TimeSpentSeconds

		saved, err := r.uc.assessments.Update(ctx, assessment)
		if err != nil {
			return nil, false, goerr.Wrap(err, "failed to update response row",
				goerr.V(ClaimNumberKey, claim.Number), goerr.V(RowKey, existing.Row))
		}
		return saved, true, nil
	}

	saved, err := r.uc.assessments.Append(ctx, assessment)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to append response row", goerr.V(ClaimNumberKey, claim.Number))
	}
	return saved, false, nil
}

// Pause holds the cursor on the displayed claim without writing anything
func (r *ReviewUseCase) Pause(ctx context.Context, session *model.ReviewSession) (*ReviewView, error) {
	if session.IsComplete(r.uc.claims.Count()) {
		return nil, goerr.Wrap(model.ErrReviewComplete, "nothing to pause", goerr.V(ClaimIndexKey, session.ClaimIndex))
	}

	session.Pause()
	return r.save(ctx, session)
}

// Resume clears the pause and moves past the claim paused on
func (r *ReviewUseCase) Resume(ctx context.Context, session *model.ReviewSession) (*ReviewView, error) {
	if err := session.Resume(r.uc.claims.Count(), r.uc.clock()); err != nil {
		return nil, err
	}
	return r.save(ctx, session)
}

// Back moves to the previous claim
func (r *ReviewUseCase) Back(ctx context.Context, session *model.ReviewSession) (*ReviewView, error) {
	if err := session.Retreat(r.uc.claims.Count(), r.uc.clock()); err != nil {
		return nil, err
	}
	return r.save(ctx, session)
}

func (r *ReviewUseCase) save(ctx context.Context, session *model.ReviewSession) (*ReviewView, error) {
	if err := r.uc.sessions.Put(ctx, session); err != nil {
		return nil, goerr.Wrap(err, "failed to save session", goerr.V(SessionIDKey, session.ID))
	}
	return r.View(ctx, session)
}
