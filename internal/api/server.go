package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/jpeg"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"polereview/internal/config"
	"polereview/internal/imagecache"
	"polereview/internal/logging"
	"polereview/internal/session"
)

// Server exposes the review session over a local HTTP API while serve mode
// is running. An empty bind address disables it.
type Server struct {
	bind      string
	token     string
	workDir   string
	viewportW int
	viewportH int
	logger    *slog.Logger
	svc       *SessionService
	store     *session.Store
	images    *imagecache.Service

	navMu    sync.Mutex
	navPole  string
	navToken uint64
	navReady map[string]ReadyRendition

	listener net.Listener
	server   *http.Server
}

// NewServer wires the API endpoints. Returns nil when the bind address is
// empty.
func NewServer(cfg *config.Config, store *session.Store, images *imagecache.Service, logger *slog.Logger) *Server {
	if cfg == nil || store == nil {
		return nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}

	srv := &Server{
		bind:      bind,
		token:     cfg.Paths.APIToken,
		workDir:   cfg.Paths.WorkDir,
		viewportW: cfg.Viewer.ViewportWidth,
		viewportH: cfg.Viewer.ViewportHeight,
		logger:    logger,
		svc:       NewSessionService(store),
		store:     store,
		images:    images,
		navReady:  make(map[string]ReadyRendition),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", authMiddleware(srv.token, srv.handleStatus))
	mux.HandleFunc("/api/poles", authMiddleware(srv.token, srv.handlePoles))
	mux.HandleFunc("/api/poles/", authMiddleware(srv.token, srv.handlePole))
	mux.HandleFunc("/api/image", authMiddleware(srv.token, srv.handleImage))
	mux.HandleFunc("/api/navigate", authMiddleware(srv.token, srv.handleNavigate))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Start begins serving and shuts down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address, empty before Start.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down.
func (s *Server) Stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	summaries, err := s.svc.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	payload := StatusResponse{
		Running:       true,
		PID:           os.Getpid(),
		SessionDBPath: s.store.Path(),
		WorkDir:       s.workDir,
		PoleCount:     len(summaries),
	}
	for _, summary := range summaries {
		if summary.Reviewed {
			payload.ReviewedCount++
		}
		if summary.Flagged {
			payload.FlaggedCount++
		}
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handlePoles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	summaries, err := s.svc.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, PoleListResponse{Poles: summaries})
}

func (s *Server) handlePole(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/poles/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "pole not found")
		return
	}
	detail, err := s.svc.Describe(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if detail == nil {
		s.writeError(w, http.StatusNotFound, "pole not found")
		return
	}
	s.writeJSON(w, http.StatusOK, PoleDetailResponse{Pole: *detail})
}

// handleNavigate changes the navigation target. POST bumps the cache token,
// queues thumbnail prefetches for every photo of the pole plus the large
// rendition of the first one, and resets the ready set; GET reports which
// renditions the drain loop has applied since.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.navigationStatus(w)
	case http.MethodPost:
		s.navigate(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request) {
	if s.images == nil {
		s.writeError(w, http.StatusServiceUnavailable, "image service not running")
		return
	}
	id := r.URL.Query().Get("pole")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "missing pole")
		return
	}
	detail, err := s.svc.Describe(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if detail == nil {
		s.writeError(w, http.StatusNotFound, "pole not found")
		return
	}

	token := s.images.Navigate()
	s.navMu.Lock()
	s.navPole = id
	s.navToken = token
	s.navReady = make(map[string]ReadyRendition)
	s.navMu.Unlock()

	requested := 0
	for i, photo := range detail.Photos {
		path := photo.Original
		if photo.MarkedUp != "" {
			path = photo.MarkedUp
		}
		s.images.RequestThumbnail(path)
		requested++
		if i == 0 {
			s.images.RequestLarge(path, s.viewportW, s.viewportH)
			requested++
		}
	}
	s.writeJSON(w, http.StatusOK, NavigateResponse{Pole: id, Token: token, Requested: requested})
}

func (s *Server) navigationStatus(w http.ResponseWriter) {
	s.navMu.Lock()
	payload := NavigationResponse{
		Pole:  s.navPole,
		Token: s.navToken,
		Ready: make([]ReadyRendition, 0, len(s.navReady)),
	}
	for _, entry := range s.navReady {
		payload.Ready = append(payload.Ready, entry)
	}
	s.navMu.Unlock()

	sort.Slice(payload.Ready, func(i, j int) bool {
		a, b := payload.Ready[i], payload.Ready[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Rendition < b.Rendition
	})
	s.writeJSON(w, http.StatusOK, payload)
}

// ApplyResult records one drained cache result against the current
// navigation target. The serve drain loop passes it to imagecache.Drain,
// which already discarded results carrying a superseded token.
func (s *Server) ApplyResult(res imagecache.Result) {
	s.navMu.Lock()
	defer s.navMu.Unlock()
	if res.Token != s.navToken {
		return
	}
	key := string(res.Rendition) + ":" + res.Path
	s.navReady[key] = ReadyRendition{
		Path:      res.Path,
		Rendition: string(res.Rendition),
		FromCache: res.FromCache,
	}
}

// handleImage serves a viewport-fit JPEG rendition of a photo inside the
// working tree. Paths outside the working directory are rejected.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.images == nil {
		s.writeError(w, http.StatusServiceUnavailable, "image service not running")
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "missing path")
		return
	}
	if !s.insideWorkDir(path) {
		s.writeError(w, http.StatusForbidden, "path outside working directory")
		return
	}

	width := queryInt(r, "w", 1200)
	height := queryInt(r, "h", 800)
	img, _, err := s.images.RenderLarge(r.Context(), path, width, height)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: 85}); err != nil {
		s.log().Error("failed to encode image response", logging.Error(err))
	}
}

func (s *Server) insideWorkDir(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	root, err := filepath.Abs(s.workDir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func queryInt(r *http.Request, key string, fallback int) int {
	value, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) log() *slog.Logger {
	if s.logger != nil {
		return logging.NewComponentLogger(s.logger, "api-server")
	}
	return logging.NewNop()
}
