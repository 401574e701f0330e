package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hlpreview/pkg/domain/model"
	"github.com/secmon-lab/hlpreview/pkg/domain/types"
	"github.com/secmon-lab/hlpreview/pkg/usecase"
)

const maxBodyBytes = 1 << 20

type loginRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type submitRequest struct {
	Action string         `json:"action"`
	Values map[string]any `json:"values"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return goerr.Wrap(err, "failed to decode request body")
	}
	return nil
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: msg})
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, r, "invalid request body")
		return
	}

	session, err := s.review.Login(r.Context(), req.Name, req.Email)
	if err != nil {
		handleError(w, r, err)
		return
	}

	view, err := s.review.View(r.Context(), session)
	if err != nil {
		handleError(w, r, err)
		return
	}

	s.setSessionCookies(w, r, session)
	writeJSON(r.Context(), w, http.StatusOK, view)
}

func (s *Server) formHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, toFormResponse(s.schema))
}

func (s *Server) viewHandler(w http.ResponseWriter, r *http.Request) {
	view, err := s.review.View(r.Context(), sessionFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, view)
}

func (s *Server) submitHandler(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, r, "invalid request body")
		return
	}

	action, err := types.ParseSubmitAction(req.Action)
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}
	if req.Values == nil {
		req.Values = map[string]any{}
	}

	result, err := s.review.Submit(r.Context(), sessionFromContext(r.Context()), action, req.Values)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, result)
}

// cursorHandler serves the body-less cursor moves
func cursorHandler(move func(r *http.Request, session *model.ReviewSession) (*usecase.ReviewView, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := move(r, sessionFromContext(r.Context()))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, view)
	}
}

func (s *Server) pauseHandler(w http.ResponseWriter, r *http.Request) {
	cursorHandler(func(r *http.Request, session *model.ReviewSession) (*usecase.ReviewView, error) {
		return s.review.Pause(r.Context(), session)
	})(w, r)
}

func (s *Server) resumeHandler(w http.ResponseWriter, r *http.Request) {
	cursorHandler(func(r *http.Request, session *model.ReviewSession) (*usecase.ReviewView, error) {
		return s.review.Resume(r.Context(), session)
	})(w, r)
}

func (s *Server) backHandler(w http.ResponseWriter, r *http.Request) {
	cursorHandler(func(r *http.Request, session *model.ReviewSession) (*usecase.ReviewView, error) {
		return s.review.Back(r.Context(), session)
	})(w, r)
}
