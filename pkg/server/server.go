package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"

	"github.com/matzehuels/plotmap/pkg/buildinfo"
	"github.com/matzehuels/plotmap/pkg/core/view"
	"github.com/matzehuels/plotmap/pkg/engine"
	perrors "github.com/matzehuels/plotmap/pkg/errors"
	"github.com/matzehuels/plotmap/pkg/observability"
	"github.com/matzehuels/plotmap/pkg/pipeline"
)

// Default server settings.
const (
	DefaultAddr        = ":8080"
	DefaultIdleTimeout = 10 * time.Minute
	DefaultMaxSessions = 256

	shutdownTimeout = 5 * time.Second
)

// Config configures a Server. Zero values select the defaults.
type Config struct {
	Addr        string
	IdleTimeout time.Duration // 0 selects DefaultIdleTimeout; negative disables
	MaxSessions int
	View        *view.Config  // Engine view settings; nil uses view.DefaultConfig()
	Stagger     time.Duration // Animation stagger; 0 uses anim.DefaultStagger
}

// Server owns the live sessions and serves the HTTP API.
type Server struct {
	cfg      Config
	runner   *pipeline.Runner
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// New creates a server. A nil runner renders without caching; a nil logger
// uses log.Default().
func New(cfg Config, runner *pipeline.Runner, logger *log.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	return &Server{
		cfg:    cfg,
		runner: runner,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 << 10,
			WriteBufferSize: 64 << 10,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		sessions: make(map[string]*Session),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Server", buildinfo.ServerHeader()))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler { return gzhttp.GzipHandler(next) })

		r.Get("/parcels", s.handleParcels)
		r.Get("/parcels/{id}", s.handleParcel)
		r.Get("/layout", s.handleLayout)
		r.Get("/site", s.handleSite)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{sid}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Get("/plan.svg", s.handlePlanSVG)
			r.Post("/events", s.handleEvent)
		})
	})

	r.Get("/ws/{sid}", s.handleWebSocket)
	return r
}

// logRequests logs each request and reports it to the server hooks. The
// route pattern, not the raw path, is reported to keep cardinality low.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		pattern := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			pattern = rc.RoutePattern()
		}
		elapsed := time.Since(start)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()))
		observability.Server().OnResponse(r.Context(), r.Method, pattern, status, elapsed)
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// and closes every session.
func (s *Server) ListenAndServe(ctx context.Context) error {
	hs := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := hs.Shutdown(shutdownCtx)
	s.Close()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	if serveErr := <-errc; err == nil && !errors.Is(serveErr, http.ErrServerClosed) {
		err = serveErr
	}
	s.logger.Info("server stopped")
	return err
}

// Close tears down every session. New sessions are refused afterwards.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	live := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		live = append(live, sess)
	}
	s.mu.Unlock()

	for _, sess := range live {
		sess.Close(ReasonShutdown)
	}
}

// =============================================================================
// Session registry
// =============================================================================

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// OpenSession creates a session whose engine renders for viewport.
func (s *Server) OpenSession(ctx context.Context, viewport view.Size) (*Session, error) {
	plan := s.runner.Plan
	eng, err := engine.New(engine.Options{
		Registry: plan.Registry,
		Sectors:  plan.Resolver.Sectors(),
		View:     s.cfg.View,
		Stagger:  s.cfg.Stagger,
		Logger:   s.logger,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		eng.Close()
		return nil, perrors.New(perrors.ErrCodeUnavailable, "server is shutting down")
	}
	if len(s.sessions) >= s.cfg.MaxSessions {
		eng.Close()
		return nil, perrors.New(perrors.ErrCodeUnavailable, "session limit reached (%d)", s.cfg.MaxSessions)
	}

	idle := max(s.cfg.IdleTimeout, 0)
	sess := newSession(uuid.NewString(), eng, viewport, idle, s.logger, s.forget)
	s.sessions[sess.ID] = sess

	s.logger.Info("session opened", "session", sess.ID, "viewport", viewport)
	observability.Server().OnSessionOpen(ctx, sess.ID)
	return sess, nil
}

// Session looks up a live session.
func (s *Server) Session(id string) (*Session, error) {
	if err := perrors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, perrors.New(perrors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	return sess, nil
}

// CloseSession closes a live session and waits for its teardown.
func (s *Server) CloseSession(id, reason string) error {
	sess, err := s.Session(id)
	if err != nil {
		return err
	}
	sess.Close(reason)
	return nil
}

// forget runs on the session goroutine after teardown.
func (s *Server) forget(sess *Session, reason string) {
	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
	observability.Server().OnSessionClose(context.Background(), sess.ID, reason)
}
