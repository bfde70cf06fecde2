// Package web serves the rendered portfolio page. Every GET / runs one full
// load; nothing is cached between requests.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sheetfolio/history"
	"sheetfolio/internal/metrics"
	"sheetfolio/portfolio"
	"sheetfolio/render"
)

const (
	renderStatusOK      = "ok"
	renderStatusPartial = "partial"
	renderStatusFailed  = "failed"

	renderStatusLoadFailed = "load_failed"

	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

type PageLoader interface {
	Load(ctx context.Context) (portfolio.Page, history.Run)
}

type PageRenderer interface {
	Render(w io.Writer, page portfolio.Page) (render.Report, error)
	RenderError(w io.Writer, cause error) error
}

// HistoryLister reads recorded loads, newest first.
type HistoryLister interface {
	ListLoads(ctx context.Context, limit int) ([]history.Run, error)
}

type Options struct {
	Loader   PageLoader
	Renderer PageRenderer
	// History enables GET /api/history when set.
	History HistoryLister
	Metrics *metrics.Metrics
	// Gatherer backs /metrics; the default registry is used when nil.
	Gatherer  prometheus.Gatherer
	StaticDir string
	Logger    *zap.Logger
}

type Server struct {
	loader   PageLoader
	renderer PageRenderer
	history  HistoryLister
	metrics  *metrics.Metrics
	logger   *zap.Logger
	router   http.Handler
}

type pageResponse struct {
	Page portfolio.Page `json:"page"`
	Run  history.Run    `json:"run"`
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	server := &Server{
		loader:   opts.Loader,
		renderer: opts.Renderer,
		history:  opts.History,
		metrics:  opts.Metrics,
		logger:   logger,
	}
	server.router = server.setupRouter(opts)
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	metricsHandler := promhttp.Handler()
	if opts.Gatherer != nil {
		metricsHandler = promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)
	r.Get("/healthz", s.handleHealth)
	r.Get("/", s.handleIndex)

	r.Route("/api", func(r chi.Router) {
		r.Get("/page", s.handleAPIPage)
		if s.history != nil {
			r.Get("/history", s.handleAPIHistory)
		}
	})

	if dir := strings.TrimSpace(opts.StaticDir); dir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
	}

	return r
}

// handleIndex always answers 200. When no source could be fetched, or the
// page fails to render outright, the bare page with an error banner is served.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, run := s.loader.Load(r.Context())

	var buf bytes.Buffer
	if loadErr := run.LoadError(); loadErr != nil {
		s.logger.Warn("every source failed, serving error banner", zap.Error(loadErr))
		s.metrics.ObserveRender(renderStatusLoadFailed)
		if !s.writeBanner(w, &buf, loadErr) {
			return
		}
	} else if report, err := s.renderer.Render(&buf, page); err != nil {
		s.logger.Error("render page failed", zap.Error(err))
		s.metrics.ObserveRender(renderStatusFailed)
		buf.Reset()
		if !s.writeBanner(w, &buf, err) {
			return
		}
	} else {
		status := renderStatusOK
		if len(report.FailedSections) > 0 {
			status = renderStatusPartial
			s.logger.Warn("page sections kept template markup", zap.Strings("sections", report.FailedSections))
		}
		if len(report.MissingMounts) > 0 {
			s.logger.Debug("page template lacks mount points", zap.Strings("mounts", report.MissingMounts))
		}
		s.metrics.ObserveRender(status)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// writeBanner renders the banner page into buf. When even that fails it
// answers 500 itself and reports false.
func (s *Server) writeBanner(w http.ResponseWriter, buf *bytes.Buffer, cause error) bool {
	if err := s.renderer.RenderError(buf, cause); err != nil {
		s.logger.Error("render error banner failed", zap.Error(err))
		http.Error(w, "Error loading data: "+cause.Error(), http.StatusInternalServerError)
		return false
	}
	return true
}

func (s *Server) handleAPIPage(w http.ResponseWriter, r *http.Request) {
	page, run := s.loader.Load(r.Context())
	s.respondWithJSON(w, http.StatusOK, pageResponse{Page: page, Run: run})
}

func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxHistoryLimit {
			s.respondWithError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxHistoryLimit))
			return
		}
		limit = parsed
	}

	runs, err := s.history.ListLoads(r.Context(), limit)
	if err != nil {
		s.logger.Error("list load history failed", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not retrieve history")
		return
	}
	s.respondWithJSON(w, http.StatusOK, runs)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to marshal response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
