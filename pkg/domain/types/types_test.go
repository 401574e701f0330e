package types_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/hlpreview/pkg/domain/types"
)

func TestFieldType_IsValid(t *testing.T) {
	for _, ft := range types.AllFieldTypes() {
		gt.Bool(t, ft.IsValid()).True()
	}
	gt.Bool(t, types.FieldType("date").IsValid()).False()
	gt.Bool(t, types.FieldType("").IsValid()).False()
}

func TestReviewState(t *testing.T) {
	for _, s := range types.AllReviewStates() {
		gt.Bool(t, s.IsValid()).True()
	}
	gt.Bool(t, types.ReviewState("done").IsValid()).False()
	gt.Bool(t, types.ReviewStateComplete.IsTerminal()).True()
	gt.Bool(t, types.ReviewStatePaused.IsTerminal()).False()
}

func TestParseSubmitAction(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.SubmitAction
		wantErr bool
	}{
		{"continue", "continue", types.SubmitActionContinue, false},
		{"pause", "pause", types.SubmitActionPause, false},
		{"empty defaults to continue", "", types.SubmitActionContinue, false},
		{"unknown", "stop", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseSubmitAction(tt.input)
			if tt.wantErr {
				gt.Value(t, err).NotNil()
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestChoice(t *testing.T) {
	t.Run("zero value is unset", func(t *testing.T) {
		var c types.Choice
		gt.Bool(t, c.IsSet()).False()
		gt.Value(t, c.Value()).Equal("")
	})

	t.Run("chosen holds value", func(t *testing.T) {
		c := types.Chosen("Flood")
		gt.Bool(t, c.IsSet()).True()
		gt.Value(t, c.Value()).Equal("Flood")
	})

	t.Run("json encodes unset as null", func(t *testing.T) {
		data, err := json.Marshal(types.Unset())
		gt.NoError(t, err).Required()
		gt.Value(t, string(data)).Equal("null")

		data, err = json.Marshal(types.Chosen("Policy"))
		gt.NoError(t, err).Required()
		gt.Value(t, string(data)).Equal(`"Policy"`)
	})

	t.Run("json decodes empty string and null as unset", func(t *testing.T) {
		for _, input := range []string{`null`, `""`} {
			var c types.Choice
			gt.NoError(t, json.Unmarshal([]byte(input), &c)).Required()
			gt.Bool(t, c.IsSet()).False()
		}

		var c types.Choice
		gt.NoError(t, json.Unmarshal([]byte(`"Endorsement"`), &c)).Required()
		gt.Bool(t, c.IsSet()).True()
		gt.Value(t, c.Value()).Equal("Endorsement")
	})
}

func TestEmail(t *testing.T) {
	gt.Bool(t, types.Email("A@X.com").Equal(types.Email(" a@x.COM "))).True()
	gt.Bool(t, types.Email("a@x.com").Equal(types.Email("b@x.com"))).False()
	gt.Value(t, types.Email(" Reviewer@Example.com").Normalize()).Equal("reviewer@example.com")

	tests := []struct {
		email   types.Email
		wantErr bool
	}{
		{"a@x.com", false},
		{"", true},
		{"no-at-sign", true},
		{"@x.com", true},
		{"a@", true},
		{"a@b@c", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.email), func(t *testing.T) {
			err := tt.email.Validate()
			gt.Value(t, err != nil).Equal(tt.wantErr)
		})
	}
}
