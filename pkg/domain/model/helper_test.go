package model_test

import (
	"github.com/secmon-lab/hlpreview/pkg/domain/model/config"
	"github.com/secmon-lab/hlpreview/pkg/domain/types"
)

func testSchema() *config.FormSchema {
	return &config.FormSchema{
		Placeholder: "Choose an option:",
		Fields: []config.FieldDefinition{
			{ID: "loss_cause", Label: "SME Loss Cause", Type: types.FieldTypeSelect, Required: true, AIColumn: "ai_loss_cause",
				Options: []string{"Flood", "Freezing", "Mold", "Other"}},
			{ID: "triage", Label: "SME Triage", Type: types.FieldTypeSelect, Required: true, AIColumn: "ai_triage",
				Options: []string{"Enough information", "More information needed"}},
			{ID: "triage_reasoning", Label: "SME Triage Reasoning", Type: types.FieldTypeText, Required: true, AIColumn: "ai_triage_reasoning"},
			{ID: "coverage_applicable", Label: "SME Coverage (applicable)", Type: types.FieldTypeMultiSelect, Required: true, AIColumn: "ai_coverage_(applicable)",
				Options: []string{"Advantage Elite", "Coverage A: Dwelling", "Coverage B: Other Structures", "Coverage C: Personal Property"}},
			{ID: "limit_applicable", Label: "SME Limit (applicable)", Type: types.FieldTypeNumber, AIColumn: "ai_limit_(applicable)"},
			{ID: "notes", Label: "SME Notes", Type: types.FieldTypeText},
		},
		Display: []config.DisplayColumn{
			{Column: "ai_section/page_document", Label: "AI Section/Page Document"},
		},
		Milestones: []config.Milestone{
			{Position: 1, Message: "First claim!"},
		},
	}
}
