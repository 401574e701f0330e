package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/secmon-lab/hlpreview/pkg/domain/model"
	"github.com/secmon-lab/hlpreview/pkg/domain/types"
	"github.com/secmon-lab/hlpreview/pkg/usecase"
	"github.com/secmon-lab/hlpreview/pkg/utils/errutil"
	"github.com/secmon-lab/hlpreview/pkg/utils/logging"
)

const (
	sessionIDCookie     = "session_id"
	sessionSecretCookie = "session_secret"
)

type sessionCtxKey struct{}

func contextWithSession(ctx context.Context, session *model.ReviewSession) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, session)
}

func sessionFromContext(ctx context.Context) *model.ReviewSession {
	session, _ := ctx.Value(sessionCtxKey{}).(*model.ReviewSession)
	return session
}

// sessionMiddleware loads the review session named by the session cookies.
// A missing or invalid session is the not-logged-in state.
func sessionMiddleware(review ReviewUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idCookie, err := r.Cookie(sessionIDCookie)
			if err != nil {
				writeNotLoggedIn(w, r, "login required")
				return
			}

			secretCookie, err := r.Cookie(sessionSecretCookie)
			if err != nil {
				writeNotLoggedIn(w, r, "login required")
				return
			}

			session, err := review.Session(r.Context(),
				model.SessionID(idCookie.Value),
				model.SessionSecret(secretCookie.Value))
			if err != nil {
				if errors.Is(err, usecase.ErrSessionNotFound) ||
					errors.Is(err, usecase.ErrInvalidSession) ||
					errors.Is(err, usecase.ErrSessionExpired) {
					logging.From(r.Context()).Info("session rejected", "error", err.Error())
					writeNotLoggedIn(w, r, "session expired or invalid")
					return
				}
				errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
				return
			}

			ctx := contextWithSession(r.Context(), session)
			ctx = logging.With(ctx, logging.From(ctx).With("reviewer", session.Reviewer.Email.Normalize()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeNotLoggedIn(w http.ResponseWriter, r *http.Request, msg string) {
	writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{
		Error: msg,
		State: types.ReviewStateNotLoggedIn,
	})
}

func (s *Server) setSessionCookies(w http.ResponseWriter, r *http.Request, session *model.ReviewSession) {
	secure := s.secureCookie || r.TLS != nil
	for name, value := range map[string]string{
		sessionIDCookie:     session.ID.String(),
		sessionSecretCookie: session.Secret.String(),
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
			Expires:  session.ExpiresAt,
		})
	}
}
