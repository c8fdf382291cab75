package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/raysh454/promptlab/internal/catalog"
	"github.com/raysh454/promptlab/internal/logging"
	_ "github.com/raysh454/promptlab/internal/server/docs" // swagger doc registration
)

//go:embed web
var webFS embed.FS

const requestIDHeader = "X-Request-ID"

// Server is the HTTP surface of the problem catalog.
type Server struct {
	cfg     Config
	store   catalog.Store
	router  chi.Router
	logger  logging.Logger
	metrics *metrics
	page    *template.Template
}

// NewServer wires the routes over store. The store stays owned by the caller.
func NewServer(cfg Config, store catalog.Store, logger logging.Logger) (*Server, error) {
	if store == nil {
		return nil, errors.New("server: catalog store is required")
	}
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}
	defaults := DefaultConfig()
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaults.ListenAddr
	}
	if len(cfg.Modes) == 0 {
		cfg.Modes = defaults.Modes
	}
	if cfg.ProblemID == "" {
		cfg.ProblemID = defaults.ProblemID
	}

	page, err := template.ParseFS(webFS, "web/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse test page: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		store:   store,
		router:  chi.NewRouter(),
		logger:  logger.With(logging.Field{Key: "component", Value: "server"}),
		metrics: newMetrics(),
		page:    page,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.requestMiddleware)
	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/api/problems", s.optionsHandler("GET"))
	r.Options("/api/problems/{id}", s.optionsHandler("GET"))

	r.Get("/api/problems", s.handleListProblems)
	r.Get("/api/problems/{id}", s.handleGetProblem)

	r.Get("/", s.handleIndex)
	static, _ := fs.Sub(webFS, "web")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Handle("/metrics", s.metrics.handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

// requestMiddleware assigns a request id (reusing the caller's), then logs and
// counts the request once the handler returns.
func (s *Server) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)
		s.metrics.observe(route, r.Method, status, elapsed)

		fields := []logging.Field{
			{Key: "request_id", Value: reqID},
			{Key: "method", Value: r.Method},
			{Key: "path", Value: r.URL.Path},
			{Key: "status", Value: status},
			{Key: "duration_ms", Value: elapsed.Milliseconds()},
		}
		if q := r.URL.RawQuery; q != "" {
			fields = append(fields, logging.Field{Key: "query", Value: q})
		}
		s.logger.Info("http_request", fields...)
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+requestIDHeader)
		w.Header().Set("Access-Control-Expose-Headers", requestIDHeader)
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := s.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", logging.Field{Key: "addr", Value: srv.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Detail: msg})
}

// --- HTTP handlers ---

// handleGetProblem godoc
// @Summary Get a problem
// @Tags problems
// @Produce json
// @Param id path string true "Problem ID"
// @Param mode query string false "Practice mode (guided or evaluation)"
// @Success 200 {object} ProblemResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/problems/{id} [get]
func (s *Server) handleGetProblem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// The mode is accepted for the client's benefit; every mode sees the same problem.
	mode := s.modeLabel(r.URL.Query().Get("mode"))

	p, err := s.store.Get(r.Context(), id)
	if errors.Is(err, catalog.ErrProblemNotFound) {
		s.metrics.problemLookups.WithLabelValues(mode, "not_found").Inc()
		writeError(w, http.StatusNotFound, "problem not found")
		return
	}
	if err != nil {
		s.metrics.problemLookups.WithLabelValues(mode, "error").Inc()
		s.logger.Warn("getting problem", logging.Field{Key: "id", Value: id}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.problemLookups.WithLabelValues(mode, "found").Inc()
	writeJSON(w, http.StatusOK, p)
}

// handleListProblems godoc
// @Summary List problems
// @Tags problems
// @Produce json
// @Success 200 {array} ProblemResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/problems [get]
func (s *Server) handleListProblems(w http.ResponseWriter, r *http.Request) {
	ps, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Warn("listing problems", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if ps == nil {
		ps = []*catalog.Problem{}
	}
	writeJSON(w, http.StatusOK, ps)
}

// modeLabel bounds the metric label set to the configured modes.
func (s *Server) modeLabel(mode string) string {
	if mode == "" {
		return "none"
	}
	for _, m := range s.cfg.Modes {
		if m == mode {
			return mode
		}
	}
	return "other"
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, s.cfg); err != nil {
		s.logger.Error("rendering test page", logging.Field{Key: "error", Value: err.Error()})
	}
}
