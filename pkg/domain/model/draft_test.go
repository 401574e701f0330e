package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/hlpreview/pkg/domain/model"
	"github.com/secmon-lab/hlpreview/pkg/domain/types"
)

func TestNewDraft(t *testing.T) {
	schema := testSchema()
	d := model.NewDraft(schema, "C-100")

	gt.Value(t, d.ClaimNumber).Equal("C-100")
	gt.Bool(t, d.Hydrated).False()
	gt.Number(t, len(d.Values)).Equal(len(schema.Fields))
	gt.Bool(t, d.Value("loss_cause").Choice.IsSet()).False()
	gt.Value(t, d.Value("triage_reasoning").Text).Equal("")
	gt.Array(t, d.Value("coverage_applicable").Choices).Length(0)
}

func TestHydrateDraft(t *testing.T) {
	schema := testSchema()

	t.Run("no prior keeps defaults", func(t *testing.T) {
		d, issues := model.HydrateDraft(schema, "C-1", nil)
		gt.Bool(t, d.Hydrated).False()
		gt.Array(t, issues).Length(0)
		gt.Bool(t, d.Value("triage").Choice.IsSet()).False()
	})

	t.Run("copies stored cells", func(t *testing.T) {
		prior := &model.Assessment{
			ClaimNumber: "C-1",
			Values: map[string]string{
				"loss_cause":          "Flood",
				"triage":              "Enough information",
				"triage_reasoning":    "photos attached",
				"coverage_applicable": "Coverage A: Dwelling; Coverage B: Other Structures",
				"limit_applicable":    "25000.0",
				"notes":               "",
			},
		}

		d, issues := model.HydrateDraft(schema, "C-1", prior)
		gt.Array(t, issues).Length(0)
		gt.Bool(t, d.Hydrated).True()
		gt.Value(t, d.Value("loss_cause").Choice.Value()).Equal("Flood")
		gt.Value(t, d.Value("triage").Choice.Value()).Equal("Enough information")
		gt.Value(t, d.Value("triage_reasoning").Text).Equal("photos attached")
		gt.Value(t, d.Value("coverage_applicable").Choices).Equal([]string{"Coverage A: Dwelling", "Coverage B: Other Structures"})
		gt.Value(t, d.Value("limit_applicable").Number).Equal(25000.0)
	})

	t.Run("drops stale multi-select values", func(t *testing.T) {
		prior := &model.Assessment{
			Values: map[string]string{
				"coverage_applicable": "Coverage A: Dwelling; Liability claim",
			},
		}

		d, issues := model.HydrateDraft(schema, "C-1", prior)
		gt.Value(t, d.Value("coverage_applicable").Choices).Equal([]string{"Coverage A: Dwelling"})
		gt.Array(t, issues).Length(1)
		gt.Value(t, issues[0].Stored).Equal("Liability claim")
	})

	t.Run("unknown select option becomes unset", func(t *testing.T) {
		prior := &model.Assessment{
			Values: map[string]string{"loss_cause": "Earthquake"},
		}

		d, issues := model.HydrateDraft(schema, "C-1", prior)
		gt.Bool(t, d.Value("loss_cause").Choice.IsSet()).False()
		gt.Array(t, issues).Length(1)
		gt.Value(t, issues[0].FieldID).Equal("loss_cause")
	})

	t.Run("corrupt number falls back to zero", func(t *testing.T) {
		prior := &model.Assessment{
			Values: map[string]string{
				"limit_applicable": "twenty thousand",
				"triage":           "More information needed",
			},
		}

		d, issues := model.HydrateDraft(schema, "C-1", prior)
		gt.Value(t, d.Value("limit_applicable").Number).Equal(0.0)
		gt.Value(t, d.Value("triage").Choice.Value()).Equal("More information needed")
		gt.Array(t, issues).Length(1)
		gt.Value(t, issues[0].Reason).Equal("not a number")
	})
}

func TestMultiSelectRoundTrip(t *testing.T) {
	schema := testSchema()
	field, ok := schema.Field("coverage_applicable")
	gt.Bool(t, ok).True()

	stored := "Coverage A: Dwelling; Coverage B: Other Structures"
	values := model.SplitMultiSelect(stored)
	gt.Value(t, values).Equal([]string{"Coverage A: Dwelling", "Coverage B: Other Structures"})
	gt.Value(t, model.JoinMultiSelect(field, values)).Equal(stored)
}

func TestJoinMultiSelect_UsesOptionOrder(t *testing.T) {
	schema := testSchema()
	field, _ := schema.Field("coverage_applicable")

	joined := model.JoinMultiSelect(field, []string{"Coverage C: Personal Property", "Coverage A: Dwelling"})
	gt.Value(t, joined).Equal("Coverage A: Dwelling; Coverage C: Personal Property")
	gt.Value(t, model.JoinMultiSelect(field, nil)).Equal("")
}

func TestSplitMultiSelect(t *testing.T) {
	gt.Array(t, model.SplitMultiSelect("")).Length(0)
	gt.Value(t, model.SplitMultiSelect("A;  B ; A;")).Equal([]string{"A", "B"})
}

func TestDraft_Serialize(t *testing.T) {
	schema := testSchema()
	d := model.NewDraft(schema, "C-100")
	d.Values["loss_cause"] = model.FieldValue{Choice: types.Chosen("Flood")}
	d.Values["triage_reasoning"] = model.FieldValue{Text: "clear photos"}
	d.Values["coverage_applicable"] = model.FieldValue{Choices: []string{"Coverage A: Dwelling"}}
	d.Values["limit_applicable"] = model.FieldValue{Number: 1500.5}

	cells := d.Serialize(schema)
	gt.Value(t, cells["loss_cause"]).Equal("Flood")
	gt.Value(t, cells["triage"]).Equal("")
	gt.Value(t, cells["triage_reasoning"]).Equal("clear photos")
	gt.Value(t, cells["coverage_applicable"]).Equal("Coverage A: Dwelling")
	gt.Value(t, cells["limit_applicable"]).Equal("1500.5")
	gt.Value(t, cells["notes"]).Equal("")
}
