package demoserver

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/raysh454/gesturepanel/internal/api"
	"github.com/raysh454/gesturepanel/internal/logging"
)

var allowedExtensions = map[api.FileKind]map[string]bool{
	api.FileKindVideos:        {"mp4": true, "avi": true, "mkv": true, "mov": true, "webm": true},
	api.FileKindPresentations: {"pptx": true, "ppt": true, "pdf": true},
}

// DemoServer is an in-memory stand-in for the gesture recognition backend.
// It serves the same REST surface without any vision processing.
type DemoServer struct {
	cfg    Config
	logger logging.Logger
	router chi.Router

	mu     sync.RWMutex
	config map[api.Module]api.ModuleConfig
	files  map[api.FileKind]map[string][]byte
}

// NewDemoServer creates a demo backend with the default gesture mapping.
func NewDemoServer(cfg Config, logger logging.Logger) *DemoServer {
	if logger == nil {
		logger = logging.Nop{}
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultConfig().MaxUploadBytes
	}
	s := &DemoServer{
		cfg:    cfg,
		logger: logger.With(logging.Field{Key: "component", Value: "demoserver"}),
		config: DefaultMapping(),
		files: map[api.FileKind]map[string][]byte{
			api.FileKindVideos:        {},
			api.FileKindPresentations: {},
		},
	}
	s.routes()
	return s
}

func (s *DemoServer) routes() {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.healthHandler)
		r.Get("/config", s.getConfigHandler)
		r.Post("/config", s.updateConfigHandler)
		r.Post("/config/reset", s.resetConfigHandler)
		r.Post("/gesture/recognize", s.recognizeHandler)
		r.Post("/gesture/action", s.actionHandler)
		r.Post("/upload/video", s.uploadHandler(api.FileKindVideos))
		r.Post("/upload/ppt", s.uploadHandler(api.FileKindPresentations))
		r.Get("/files/{kind}", s.listFilesHandler)
	})
	r.Get("/assets/{kind}/{name}", s.assetHandler)
	s.router = r
}

// ServeHTTP lets the demo backend be mounted or wrapped by httptest.
func (s *DemoServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start listens on the configured port.
func (s *DemoServer) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("demo backend starting", logging.Field{Key: "addr", Value: addr})
	return http.ListenAndServe(addr, s)
}

func (s *DemoServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.HealthStatus{Status: "ok", Message: "service running"})
}

func (s *DemoServer) getConfigHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	module := api.Module(r.URL.Query().Get("module"))
	if module == "" {
		writeJSON(w, http.StatusOK, s.config)
		return
	}
	cfg, ok := s.config[module]
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *DemoServer) updateConfigHandler(w http.ResponseWriter, r *http.Request) {
	var req api.ConfigUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.Module == "" || (len(req.Config.Gestures) == 0 && len(req.Config.KeyboardShortcuts) == 0) {
		writeError(w, http.StatusBadRequest, "missing required parameters")
		return
	}

	s.mu.Lock()
	cur := s.config[req.Module]
	if req.Config.Gestures != nil {
		cur.Gestures = req.Config.Gestures
	}
	if req.Config.KeyboardShortcuts != nil {
		cur.KeyboardShortcuts = req.Config.KeyboardShortcuts
	}
	s.config[req.Module] = cur
	s.mu.Unlock()

	s.logger.Info("config updated", logging.Field{Key: "module", Value: string(req.Module)})
	writeJSON(w, http.StatusOK, api.ConfigResult{Message: "config updated", Config: cur})
}

func (s *DemoServer) resetConfigHandler(w http.ResponseWriter, r *http.Request) {
	var req api.ConfigReset
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	defaults := DefaultMapping()
	s.mu.Lock()
	if req.Module == "" {
		s.config = defaults
	} else {
		cfg, ok := defaults[req.Module]
		if !ok {
			s.mu.Unlock()
			writeError(w, http.StatusInternalServerError, "config reset failed")
			return
		}
		s.config[req.Module] = cfg
	}
	out := s.config[req.Module]
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, api.ConfigResult{Message: "config reset", Config: out})
}

// recognizeHandler validates the frame but never detects a hand.
func (s *DemoServer) recognizeHandler(w http.ResponseWriter, r *http.Request) {
	var req api.RecognizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if _, err := decodeFrame(req.Image); err != nil {
		writeError(w, http.StatusBadRequest, "invalid image data")
		return
	}
	writeJSON(w, http.StatusOK, api.Recognition{StaticGestureID: -1, DynamicGestureID: -1})
}

func (s *DemoServer) actionHandler(w http.ResponseWriter, r *http.Request) {
	var req api.ActionQuery
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if req.Module == "" || req.Gesture == "" {
		writeError(w, http.StatusBadRequest, "missing required parameters")
		return
	}

	s.mu.RLock()
	cfg := s.config[req.Module]
	action, ok := cfg.Gestures[req.Gesture]
	shortcut := cfg.KeyboardShortcuts[action]
	s.mu.RUnlock()

	out := api.GestureAction{Gesture: req.Gesture}
	if ok {
		out.Action = &action
		if shortcut != "" {
			out.KeyboardShortcut = &shortcut
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *DemoServer) uploadHandler(kind api.FileKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "no file")
			return
		}
		defer file.Close()

		name := path.Base(strings.ReplaceAll(header.Filename, "\\", "/"))
		if name == "" || name == "." || name == "/" {
			writeError(w, http.StatusBadRequest, "empty filename")
			return
		}
		if !allowedFile(name, kind) {
			writeError(w, http.StatusBadRequest, "unsupported file type")
			return
		}

		buf, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		s.mu.Lock()
		s.files[kind][name] = buf
		s.mu.Unlock()

		writeJSON(w, http.StatusOK, api.UploadResult{
			Message:  "upload succeeded",
			Filename: name,
			Path:     "/assets/" + string(kind) + "/" + name,
		})
	}
}

func (s *DemoServer) listFilesHandler(w http.ResponseWriter, r *http.Request) {
	kind := api.FileKind(chi.URLParam(r, "kind"))
	if _, ok := allowedExtensions[kind]; !ok {
		writeError(w, http.StatusBadRequest, "invalid file type")
		return
	}

	s.mu.RLock()
	names := make([]string, 0, len(s.files[kind]))
	for name := range s.files[kind] {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)

	out := api.FileList{Files: make([]api.FileInfo, 0, len(names))}
	for _, name := range names {
		out.Files = append(out.Files, api.FileInfo{Filename: name, Path: "/assets/" + string(kind) + "/" + name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *DemoServer) assetHandler(w http.ResponseWriter, r *http.Request) {
	kind := api.FileKind(chi.URLParam(r, "kind"))
	name := chi.URLParam(r, "name")

	s.mu.RLock()
	data, ok := s.files[kind][name]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "file does not exist")
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	_, _ = w.Write(data)
}

// decodeFrame accepts raw base64 or a data URL.
func decodeFrame(image string) ([]byte, error) {
	if i := strings.Index(image, ","); strings.HasPrefix(image, "data:") && i >= 0 {
		image = image[i+1:]
	}
	image = strings.TrimSpace(image)
	if image == "" {
		return nil, errors.New("empty frame")
	}
	return base64.StdEncoding.DecodeString(image)
}

func allowedFile(name string, kind api.FileKind) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	return allowedExtensions[kind][strings.ToLower(name[i+1:])]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
