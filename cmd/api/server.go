package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"renewalboard/manager"
	"renewalboard/performance"
	"renewalboard/plan"
)

type managerService interface {
	List(ctx context.Context, filter manager.ListFilter) ([]manager.Record, error)
	Get(ctx context.Context, id int64) (manager.Record, error)
	Create(ctx context.Context, n manager.NewRecord) (manager.Record, error)
	Update(ctx context.Context, id int64, patch manager.Patch) (manager.Record, error)
	Delete(ctx context.Context, id int64) error
}

// Server serves the dashboard API.
type Server struct {
	managers    managerService
	strategy    performance.ClassificationStrategy
	goals       performance.Goals
	targets     performance.ComplianceTargets
	monthLabels []string
	plan        plan.Plan
}

const headerRequestID = "X-Request-ID"

func (s *Server) routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", headerRequestID},
		ExposedHeaders: []string{headerRequestID},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/managers", func(r chi.Router) {
			r.Get("/", s.handleListManagers)
			r.Post("/", s.handleCreateManager)
			r.Get("/{id}", s.handleGetManager)
			r.Patch("/{id}", s.handleUpdateManager)
			r.Delete("/{id}", s.handleDeleteManager)
		})
		r.Get("/stats", s.handleStats)
		r.Get("/classification", s.handleClassification)
		r.Get("/compliance", s.handleCompliance)
		r.Get("/plan", s.handlePlan)
		r.Get("/export.csv", s.handleExportCSV)
		r.Get("/export.xlsx", s.handleExportXLSX)
	})

	return r
}

// requestLogger tags each request with an id and logs its outcome.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(headerRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(headerRequestID, reqID)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		zap.L().Info("http request",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
