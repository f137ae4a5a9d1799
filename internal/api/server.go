package api

import (
	"bufio"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/workerlist/internal/config"
	"github.com/JakeFAU/workerlist/internal/metrics"
	"github.com/JakeFAU/workerlist/internal/page"
	"github.com/JakeFAU/workerlist/internal/workers"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server wires HTTP handlers to the worker source and page controller.
type Server struct {
	router    chi.Router
	source    workers.Source
	clock     page.Clock
	cfg       config.Config
	logger    *zap.Logger
	templates *template.Template
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	source workers.Source,
	clock page.Clock,
	cfg config.Config,
	logger *zap.Logger,
) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tmpl, err := template.New("pages").
		Funcs(template.FuncMap{"selectPath": selectPath}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s := &Server{
		source:    source,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
		templates: tmpl,
	}

	timeout := cfg.RequestTimeout()
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(timeout))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/workers", s.workerList)
	r.Get("/workers/{worker_id}/select", s.selectWorker)
	r.Get("/workerdetails/{worker_id}", s.workerDetail)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Auth.Enabled {
			r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
		}
		r.Get("/workers", s.workerListJSON)
		r.Get("/categories", s.categories)
	})

	s.router = r
	return s, nil
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// The worker source is only contacted per page view.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type listPage struct {
	View page.View
}

type detailPage struct {
	Worker workers.Worker
}

func (s *Server) workerList(w http.ResponseWriter, r *http.Request) {
	view, err := s.loadPage(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.renderHTML(w, http.StatusOK, "workers", listPage{View: view})
}

func (s *Server) workerListJSON(w http.ResponseWriter, r *http.Request) {
	view, err := s.loadPage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories":   workers.Aliases(),
		"sort_choices": workers.SortChoices(),
	})
}

// loadPage mounts a page controller for the request query and returns its view.
// Only an invalid sort value is an error; page errors are part of the view.
func (s *Server) loadPage(r *http.Request) (page.View, error) {
	query := r.URL.Query()
	opt, err := workers.ParseSortOption(query.Get("sort"))
	if err != nil {
		return page.View{}, err
	}

	ctrl := page.NewController(s.source, nil, s.clock, s.requestLogger(r))
	ctrl.SetSort(opt)
	ctrl.Load(r.Context(), query)
	view := ctrl.View()
	metrics.ObservePage(string(view.Branch), view.Count)
	return view, nil
}

func (s *Server) selectWorker(w http.ResponseWriter, r *http.Request) {
	workerID := workerIDParam(r)
	nav := page.NavigatorFunc(func(_ context.Context, path string) error {
		http.Redirect(w, r, path, http.StatusSeeOther)
		return nil
	})
	ctrl := page.NewController(s.source, nav, s.clock, s.requestLogger(r))
	if err := ctrl.SelectWorker(r.Context(), workerID); err != nil {
		s.logger.Error("navigate failed", zap.String("worker_id", workerID), zap.Error(err))
		http.Error(w, "navigation failed", http.StatusInternalServerError)
	}
}

func (s *Server) workerDetail(w http.ResponseWriter, r *http.Request) {
	workerID := workerIDParam(r)
	list, err := s.source.ListWorkers(r.Context())
	if err != nil {
		s.requestLogger(r).Warn("fetch workers failed", zap.Error(err))
		http.Error(w, page.MsgFetchFailed, http.StatusBadGateway)
		return
	}
	worker, ok := workers.FindByID(list, workerID)
	if !ok {
		http.Error(w, "worker not found", http.StatusNotFound)
		return
	}
	s.renderHTML(w, http.StatusOK, "detail", detailPage{Worker: worker})
}

func (s *Server) renderHTML(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("render template failed", zap.String("template", name), zap.Error(err))
	}
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if reqID, ok := r.Context().Value(requestIDKey{}).(string); ok {
		return s.logger.With(zap.String("request_id", reqID))
	}
	return s.logger
}

// workerIDParam returns the decoded worker id route segment.
func workerIDParam(r *http.Request) string {
	raw := chi.URLParam(r, "worker_id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

func selectPath(workerID string) string {
	return "/workers/" + url.PathEscape(workerID) + "/select"
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			reqID, _ := r.Context().Value(requestIDKey{}).(string)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("request_id", reqID),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec), zap.String("path", r.URL.Path))
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		conn, buf, err := h.Hijack()
		if err != nil {
			return nil, nil, fmt.Errorf("hijack connection: %w", err)
		}
		return conn, buf, nil
	}
	return nil, nil, errors.New("hijacker not supported")
}

type requestIDKey struct{}

func apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key != expected {
				writeError(w, http.StatusForbidden, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
