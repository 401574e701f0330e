package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/hlpreview/pkg/domain/interfaces"
	"github.com/secmon-lab/hlpreview/pkg/domain/model"
	"github.com/secmon-lab/hlpreview/pkg/domain/model/config"
	"github.com/secmon-lab/hlpreview/pkg/domain/types"
	"github.com/secmon-lab/hlpreview/pkg/repository/memory"
	"github.com/secmon-lab/hlpreview/pkg/usecase"
)

const (
	reviewerEmail = "a@x.com"
	reviewerName  = "Ana"
)

func testSchema() *config.FormSchema {
	return &config.FormSchema{
		Placeholder: "Choose an option:",
		Fields: []config.FieldDefinition{
			{ID: "loss_cause", Label: "SME Loss Cause", Type: types.FieldTypeSelect, Required: true,
				Options: []string{"Flood", "Freezing", "Mold", "Other"}},
			{ID: "triage", Label: "SME Triage", Type: types.FieldTypeSelect, Required: true,
				Options: []string{"Enough information", "More information needed"}},
			{ID: "reasoning", Label: "SME Reasoning", Type: types.FieldTypeText, Required: true},
			{ID: "coverage_applicable", Label: "SME Coverage (applicable)", Type: types.FieldTypeMultiSelect, Required: true,
				Options: []string{"Advantage Elite", "Coverage A: Dwelling", "Coverage B: Other Structures", "Coverage C: Personal Property"}},
			{ID: "limit_applicable", Label: "SME Limit (applicable)", Type: types.FieldTypeNumber},
			{ID: "notes", Label: "SME Notes", Type: types.FieldTypeText},
		},
		Milestones: []config.Milestone{
			{Position: 1, Message: "First claim!"},
			{Position: 3, Message: "Three down"},
		},
	}
}

type claimList []*model.Claim

func (c claimList) Count() int { return len(c) }

func (c claimList) At(index int) (*model.Claim, bool) {
	if index < 0 || index >= len(c) {
		return nil, false
	}
	return c[index], true
}

func newClaims(numbers ...string) claimList {
	list := make(claimList, 0, len(numbers))
	for _, n := range numbers {
		list = append(list, model.NewClaim(map[string]string{
			config.ColumnClaimNumber:     n,
			config.ColumnLossDescription: "loss of " + n,
		}))
	}
	return list
}

func sequentialClaims(n int) claimList {
	numbers := make([]string, n)
	for i := range numbers {
		numbers[i] = fmt.Sprintf("C-%d", i+1)
	}
	return newClaims(numbers...)
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testEnv struct {
	uc     *usecase.UseCases
	repo   *memory.Memory
	clock  *testClock
	claims claimList
}

func newTestEnv(t *testing.T, claims claimList) *testEnv {
	t.Helper()
	return newTestEnvWithRepo(t, claims, nil)
}

func newTestEnvWithRepo(t *testing.T, claims claimList, assessments interfaces.AssessmentRepository) *testEnv {
	t.Helper()
	repo := memory.New()
	if assessments == nil {
		assessments = repo.Assessment()
	}
	clock := &testClock{now: time.Now().UTC().Truncate(time.Second)}
	uc := usecase.New(assessments, repo.Session(), claims, testSchema(),
		usecase.WithAllowList(model.NewAllowList(reviewerEmail, "b@x.com")),
		usecase.WithClock(clock.Now),
	)
	return &testEnv{uc: uc, repo: repo, clock: clock, claims: claims}
}

func (e *testEnv) login(t *testing.T) *model.ReviewSession {
	t.Helper()
	session, err := e.uc.Review.Login(context.Background(), reviewerName, reviewerEmail)
	gt.NoError(t, err).Required()
	return session
}

// reload fetches the stored copy as the HTTP layer does on every request
func (e *testEnv) reload(t *testing.T, s *model.ReviewSession) *model.ReviewSession {
	t.Helper()
	got, err := e.uc.Review.Session(context.Background(), s.ID, s.Secret)
	gt.NoError(t, err).Required()
	return got
}

func (e *testEnv) rows(t *testing.T) []*model.Assessment {
	t.Helper()
	rows, err := e.repo.Assessment().List(context.Background())
	gt.NoError(t, err).Required()
	return rows
}

func validInput() map[string]any {
	return map[string]any{
		"loss_cause":          "Flood",
		"triage":              "Enough information",
		"reasoning":           "Policy covers sudden water damage",
		"coverage_applicable": []any{"Coverage A: Dwelling"},
	}
}

type failingAssessments struct {
	interfaces.AssessmentRepository
}

func (f *failingAssessments) Append(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	return nil, goerr.New("sheet unavailable")
}

func (f *failingAssessments) Update(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	return nil, goerr.New("sheet unavailable")
}
