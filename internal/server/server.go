package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raysh454/gesturepanel/internal/logging"
	"github.com/raysh454/gesturepanel/internal/routes"
)

// proxiedMethods are forwarded to the backend. OPTIONS is answered locally.
var proxiedMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

const shellHTML = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Gesture Control Panel</title></head>
<body><div id="app"></div></body>
</html>
`

// Server is the development host for the control panel. It proxies the
// backend API, exposes metrics and serves the panel's history routes.
type Server struct {
	cfg     Config
	router  chi.Router
	logger  logging.Logger
	backend *url.URL
	proxy   *httputil.ReverseProxy
	history routes.History
}

// NewServer validates cfg and builds the router.
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	backend, err := url.Parse(cfg.BackendURL)
	if err != nil {
		return nil, fmt.Errorf("parsing backend url: %w", err)
	}
	if backend.Scheme == "" || backend.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", cfg.BackendURL)
	}

	if cfg.Routes == nil {
		tbl, err := routes.Standard(nil)
		if err != nil {
			return nil, fmt.Errorf("building route table: %w", err)
		}
		cfg.Routes = tbl
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		cfg:     cfg,
		router:  chi.NewRouter(),
		logger:  logger,
		backend: backend,
		history: routes.History{Base: cfg.BasePath},
	}
	s.proxy = httputil.NewSingleHostReverseProxy(backend)
	s.proxy.ErrorHandler = s.proxyErrorHandler

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/api/*", s.optionsHandler("GET, POST"))

	// Backend
	for _, m := range proxiedMethods {
		r.Method(m, "/api/*", s.proxy)
		r.Method(m, "/assets/*", s.proxy)
	}

	// Introspection
	r.Get("/healthz", s.handleStatus)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))

	// Everything else is a panel route or a 404.
	r.NotFound(s.cfg.Routes.Handler(s.history, s.indexHandler()).ServeHTTP)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
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
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}
	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}
	if id := r.Header.Get("X-Request-ID"); id != "" {
		fields = append(fields, logging.Field{Key: "request_id", Value: id})
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // proxied uploads
	}
}

func (s *Server) indexHandler() http.Handler {
	if s.cfg.IndexFile != "" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, s.cfg.IndexFile)
		})
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if r.Method == http.MethodHead {
			return
		}
		_, _ = io.WriteString(w, shellHTML)
	})
}

func (s *Server) proxyErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("proxying to backend",
		logging.Field{Key: "backend", Value: s.backend.String()},
		logging.Field{Key: "path", Value: r.URL.Path},
		logging.Field{Key: "error", Value: err.Error()})
	writeError(w, http.StatusBadGateway, "backend unavailable")
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	entries := s.cfg.Routes.Entries()
	out := StatusResponse{
		Status:  "ok",
		Backend: s.backend.String(),
		Routes:  make([]RouteInfo, 0, len(entries)),
	}
	for _, e := range entries {
		out.Routes = append(out.Routes, RouteInfo{Name: e.Name, Path: e.Path, Href: s.history.Href(e.Path)})
	}
	writeJSON(w, http.StatusOK, out)
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
	writeJSON(w, status, ErrorResponse{Error: msg})
}
