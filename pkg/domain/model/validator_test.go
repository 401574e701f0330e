package model_test

import (
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/hlpreview/pkg/domain/model"
	"github.com/secmon-lab/hlpreview/pkg/domain/types"
)

func completeDraft() *model.Draft {
	d := model.NewDraft(testSchema(), "C-100")
	d.Values["loss_cause"] = model.FieldValue{Choice: types.Chosen("Flood")}
	d.Values["triage"] = model.FieldValue{Choice: types.Chosen("Enough information")}
	d.Values["triage_reasoning"] = model.FieldValue{Text: "enough photos"}
	d.Values["coverage_applicable"] = model.FieldValue{Choices: []string{"Coverage A: Dwelling"}}
	return d
}

func TestFormValidator_Missing(t *testing.T) {
	v := model.NewFormValidator(testSchema())

	t.Run("complete draft is valid", func(t *testing.T) {
		gt.Array(t, v.Missing(completeDraft())).Length(0)
		gt.NoError(t, v.Validate(completeDraft()))
	})

	t.Run("default draft misses every required field", func(t *testing.T) {
		missing := v.Missing(model.NewDraft(testSchema(), "C-100"))
		gt.Value(t, missing).Equal([]string{"loss_cause", "triage", "triage_reasoning", "coverage_applicable"})
	})

	tests := []struct {
		name    string
		mutate  func(d *model.Draft)
		missing []string
	}{
		{
			name:    "unset select",
			mutate:  func(d *model.Draft) { d.Values["triage"] = model.FieldValue{} },
			missing: []string{"triage"},
		},
		{
			name:    "whitespace-only text",
			mutate:  func(d *model.Draft) { d.Values["triage_reasoning"] = model.FieldValue{Text: "  \n\t"} },
			missing: []string{"triage_reasoning"},
		},
		{
			name:    "empty multi-select",
			mutate:  func(d *model.Draft) { d.Values["coverage_applicable"] = model.FieldValue{Choices: []string{}} },
			missing: []string{"coverage_applicable"},
		},
		{
			name:    "optional fields may stay empty",
			mutate:  func(d *model.Draft) { d.Values["notes"] = model.FieldValue{} },
			missing: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := completeDraft()
			tt.mutate(d)
			missing := v.Missing(d)
			gt.Value(t, len(missing)).Equal(len(tt.missing))
			for i := range tt.missing {
				gt.Value(t, missing[i]).Equal(tt.missing[i])
			}
		})
	}
}

func TestFormValidator_Validate(t *testing.T) {
	v := model.NewFormValidator(testSchema())
	d := completeDraft()
	d.Values["loss_cause"] = model.FieldValue{}

	err := v.Validate(d)
	gt.Error(t, err).Is(model.ErrMissingRequired)

	values := goerr.Unwrap(err).Values()
	gt.Value(t, values[model.MissingKey]).Equal([]string{"loss_cause"})
}

func TestFormValidator_ParseInput(t *testing.T) {
	v := model.NewFormValidator(testSchema())

	t.Run("parses decoded JSON values", func(t *testing.T) {
		d, err := v.ParseInput("C-100", map[string]any{
			"loss_cause":          "Flood",
			"triage":              "",
			"triage_reasoning":    "ok",
			"coverage_applicable": []any{"Coverage A: Dwelling", "Coverage C: Personal Property"},
			"limit_applicable":    float64(5000),
			"unknown_field":       "ignored",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, d.ClaimNumber).Equal("C-100")
		gt.Value(t, d.Value("loss_cause").Choice.Value()).Equal("Flood")
		gt.Bool(t, d.Value("triage").Choice.IsSet()).False()
		gt.Value(t, d.Value("coverage_applicable").Choices).Equal([]string{"Coverage A: Dwelling", "Coverage C: Personal Property"})
		gt.Value(t, d.Value("limit_applicable").Number).Equal(5000.0)
	})

	t.Run("number accepts numeric strings", func(t *testing.T) {
		d, err := v.ParseInput("C-100", map[string]any{"limit_applicable": "1000"})
		gt.NoError(t, err).Required()
		gt.Value(t, d.Value("limit_applicable").Number).Equal(1000.0)
	})

	tests := []struct {
		name    string
		input   map[string]any
		wantErr error
	}{
		{"select with unknown option", map[string]any{"loss_cause": "Earthquake"}, model.ErrInvalidOptionID},
		{"select with non-string", map[string]any{"loss_cause": 3.0}, model.ErrInvalidFieldType},
		{"multi-select with unknown option", map[string]any{"coverage_applicable": []any{"Coverage Z"}}, model.ErrInvalidOptionID},
		{"multi-select with non-array", map[string]any{"coverage_applicable": "Coverage A: Dwelling"}, model.ErrInvalidFieldType},
		{"multi-select with non-string item", map[string]any{"coverage_applicable": []any{1.0}}, model.ErrInvalidFieldType},
		{"text with non-string", map[string]any{"notes": true}, model.ErrInvalidFieldType},
		{"number with garbage", map[string]any{"limit_applicable": "abc"}, model.ErrInvalidFieldType},
		{"negative number", map[string]any{"limit_applicable": -1.0}, model.ErrInvalidFieldType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ParseInput("C-100", tt.input)
			gt.Error(t, err).Is(tt.wantErr)
		})
	}
}

func TestMissingFields(t *testing.T) {
	v := model.NewFormValidator(testSchema())
	d := completeDraft()
	d.Values["triage"] = model.FieldValue{}
	d.Values["triage_reasoning"] = model.FieldValue{Text: "   "}

	err := goerr.Wrap(v.Validate(d), "submit failed")
	gt.Value(t, model.MissingFields(err)).Equal([]string{"triage", "triage_reasoning"})
	gt.Value(t, model.MissingFields(model.ErrAtFirstClaim)).Nil()
}
