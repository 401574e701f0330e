package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/secmon-lab/hlpreview/pkg/domain/model"
	"github.com/secmon-lab/hlpreview/pkg/domain/model/config"
	"github.com/secmon-lab/hlpreview/pkg/domain/types"
	"github.com/secmon-lab/hlpreview/pkg/usecase"
	"github.com/secmon-lab/hlpreview/pkg/utils/errutil"
	"github.com/secmon-lab/hlpreview/pkg/utils/logging"
)

type errorResponse struct {
	Error         string            `json:"error"`
	State         types.ReviewState `json:"state,omitempty"`
	MissingFields []string          `json:"missing_fields,omitempty"`
}

type fieldResponse struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	Type        types.FieldType `json:"type"`
	Required    bool            `json:"required"`
	Description string          `json:"description,omitempty"`
	AIColumn    string          `json:"ai_column,omitempty"`
	AILabel     string          `json:"ai_label,omitempty"`
	Options     []string        `json:"options,omitempty"`
}

type displayResponse struct {
	Column string `json:"column"`
	Label  string `json:"label"`
}

type formResponse struct {
	Title       string            `json:"title"`
	Placeholder string            `json:"placeholder"`
	Fields      []fieldResponse   `json:"fields"`
	Display     []displayResponse `json:"display"`
}

func toFormResponse(schema *config.FormSchema) formResponse {
	resp := formResponse{
		Title:       schema.Title,
		Placeholder: schema.Placeholder,
		Fields:      make([]fieldResponse, len(schema.Fields)),
		Display:     make([]displayResponse, len(schema.Display)),
	}
	for i, f := range schema.Fields {
		resp.Fields[i] = fieldResponse{
			ID:          f.ID,
			Label:       f.Label,
			Type:        f.Type,
			Required:    f.Required,
			Description: f.Description,
			AIColumn:    f.AIColumn,
			AILabel:     f.AILabel,
			Options:     f.Options,
		}
	}
	for i, d := range schema.Display {
		resp.Display[i] = displayResponse{Column: d.Column, Label: d.Label}
	}
	return resp
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

// clientErrors maps caller mistakes to their status code
var clientErrors = []struct {
	target error
	status int
}{
	{usecase.ErrInvalidIdentity, http.StatusBadRequest},
	{model.ErrInvalidFieldType, http.StatusBadRequest},
	{model.ErrInvalidOptionID, http.StatusBadRequest},
	{usecase.ErrUnauthorized, http.StatusForbidden},
	{model.ErrMissingRequired, http.StatusUnprocessableEntity},
	{model.ErrSessionPaused, http.StatusConflict},
	{model.ErrNotPaused, http.StatusConflict},
	{model.ErrReviewComplete, http.StatusConflict},
	{model.ErrAtFirstClaim, http.StatusConflict},
}

// handleError writes the response for err. Unknown errors are server failures.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	for _, ce := range clientErrors {
		if !errors.Is(err, ce.target) {
			continue
		}
		logging.From(r.Context()).Info("request rejected", "status", ce.status, "error", err.Error())
		writeJSON(r.Context(), w, ce.status, errorResponse{
			Error:         ce.target.Error(),
			MissingFields: model.MissingFields(err),
		})
		return
	}

	errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
}
