package http

import (
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
	"github.com/salesdesk-io/salesdesk/pkg/utils/logging"
)

// DefaultMaxUploadBytes bounds the multipart body of an upload request
const DefaultMaxUploadBytes = 128 << 20

type Server struct {
	router         *chi.Mux
	uc             *usecase.UseCases
	authUC         AuthUseCase
	maxUploadBytes int64
	gqlHandler     http.Handler
	enableGraphiQL bool
}

type Options func(*Server)

// WithAuth authenticates API requests with authUC. Without it every API
// request is anonymous and mutations are rejected.
func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

func WithMaxUploadBytes(n int64) Options {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithGraphQL serves h at /graphql behind the same authentication as the API
func WithGraphQL(h http.Handler) Options {
	return func(s *Server) {
		s.gqlHandler = h
	}
}

// WithGraphiQL serves the GraphiQL playground at /graphiql when GraphQL is enabled
func WithGraphiQL(enabled bool) Options {
	return func(s *Server) {
		s.enableGraphiQL = enabled
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:         r,
		uc:             uc,
		authUC:         uc.Auth,
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.gqlHandler != nil {
		r.Route("/graphql", func(r chi.Router) {
			r.Use(authMiddleware(s.authUC))
			r.Post("/", s.gqlHandler.ServeHTTP)
			r.Get("/", s.gqlHandler.ServeHTTP) // Support GET for introspection
		})

		if s.enableGraphiQL {
			r.Get("/graphiql", playground.Handler("GraphQL playground", "/graphql").ServeHTTP)
		}
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware(s.authUC))

		r.Get("/me", meHandler)
		r.Get("/navigation", s.navigationHandler)
		r.Get("/dashboard", s.dashboardHandler)

		r.Route("/entities", func(r chi.Router) {
			r.Get("/", s.listSchemasHandler)
			r.Route("/{entity}", func(r chi.Router) {
				r.Get("/table", s.recordTableHandler)
				r.Get("/export.csv", s.recordExportHandler)
				r.Get("/form", s.recordFormHandler)
				r.Post("/form", s.recordFormHandler)
				r.Get("/records", s.listRecordsHandler)
				r.Post("/records", s.createRecordHandler)
				r.Get("/records/{id}", s.getRecordHandler)
				r.Put("/records/{id}", s.updateRecordHandler)
				r.Delete("/records/{id}", s.deleteRecordHandler)
			})
		})

		r.Route("/expense-claims", func(r chi.Router) {
			r.Get("/", s.listClaimsHandler)
			r.Post("/", s.createClaimHandler)
			r.Get("/table", s.claimTableHandler)
			r.Get("/{id}", s.getClaimHandler)
			r.Delete("/{id}", s.deleteClaimHandler)
			r.Post("/{id}/status", s.changeClaimStatusHandler)
		})

		r.Route("/schemes", func(r chi.Router) {
			r.Get("/", s.listSchemesHandler)
			r.Post("/", s.createSchemeHandler)
			r.Get("/table", s.schemeTableHandler)
			r.Get("/{id}", s.getSchemeHandler)
			r.Put("/{id}", s.updateSchemeHandler)
			r.Delete("/{id}", s.deleteSchemeHandler)
			r.Get("/{id}/totals", s.schemeTotalsHandler)
			r.Post("/{id}/recompute", s.recomputeSchemeHandler)
		})

		r.Route("/targets", func(r chi.Router) {
			r.Get("/", s.listTargetsHandler)
			r.Post("/", s.createTargetHandler)
			r.Get("/table", s.targetTableHandler)
			r.Get("/{id}", s.getTargetHandler)
			r.Put("/{id}", s.updateTargetHandler)
			r.Delete("/{id}", s.deleteTargetHandler)
		})

		r.Get("/uploads/policies", s.uploadPoliciesHandler)
		r.Post("/uploads", s.uploadHandler)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
