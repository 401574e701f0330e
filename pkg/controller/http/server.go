package http

import (
	"context"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/hlpreview/pkg/domain/model"
	"github.com/secmon-lab/hlpreview/pkg/domain/model/config"
	"github.com/secmon-lab/hlpreview/pkg/domain/types"
	"github.com/secmon-lab/hlpreview/pkg/usecase"
	"github.com/secmon-lab/hlpreview/pkg/utils/logging"
)

// ReviewUseCase is the review flow the API exposes
type ReviewUseCase interface {
	Login(ctx context.Context, name, email string) (*model.ReviewSession, error)
	Session(ctx context.Context, id model.SessionID, secret model.SessionSecret) (*model.ReviewSession, error)
	View(ctx context.Context, session *model.ReviewSession) (*usecase.ReviewView, error)
	Submit(ctx context.Context, session *model.ReviewSession, action types.SubmitAction, input map[string]any) (*usecase.SubmitResult, error)
	Pause(ctx context.Context, session *model.ReviewSession) (*usecase.ReviewView, error)
	Resume(ctx context.Context, session *model.ReviewSession) (*usecase.ReviewView, error)
	Back(ctx context.Context, session *model.ReviewSession) (*usecase.ReviewView, error)
}

var _ ReviewUseCase = &usecase.ReviewUseCase{}

type Server struct {
	router       *chi.Mux
	review       ReviewUseCase
	schema       *config.FormSchema
	secureCookie bool
	sentry       bool
}

type Options func(*Server)

// WithSecureCookies marks session cookies Secure regardless of request TLS,
// for deployments behind a TLS terminating proxy
func WithSecureCookies(enabled bool) Options {
	return func(s *Server) {
		s.secureCookie = enabled
	}
}

// WithSentry binds a Sentry hub to every request context
func WithSentry(enabled bool) Options {
	return func(s *Server) {
		s.sentry = enabled
	}
}

func New(review ReviewUseCase, schema *config.FormSchema, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		review: review,
		schema: schema,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	if s.sentry {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.loginHandler)
		r.Get("/form", s.formHandler)

		r.Route("/review", func(r chi.Router) {
			r.Use(sessionMiddleware(s.review))
			r.Get("/", s.viewHandler)
			r.Post("/submit", s.submitHandler)
			r.Post("/pause", s.pauseHandler)
			r.Post("/resume", s.resumeHandler)
			r.Post("/back", s.backHandler)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger binds a logger carrying the request ID to the request context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(logging.With(r.Context(), logger)))
	})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
