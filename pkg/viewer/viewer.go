// Package viewer hosts the interactive treemap page over local HTTP.
//
// The server renders the viewer page for one report at a time. Reports
// arrive either from the serve command at startup or over the API: a
// report page POSTs its data to /api/reports with a single-use handshake
// token, and every connected viewer page is told to reload over
// WebSocket. Loaded reports are archived so earlier ones can be listed
// and reopened.
//
// # Endpoints
//
//	GET  /                 viewer page for the current report, or a waiting shell
//	GET  /debug.json       current viewer options document
//	POST /api/reports      push a report (token-protected, single use)
//	GET  /api/reports      archive listing, newest first
//	GET  /api/reports/{id} one archived report with its options body
//	GET  /ws               reload socket for open viewer pages
package viewer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/zhengjing-huang/lighthouse/pkg/archive"
	"github.com/zhengjing-huang/lighthouse/pkg/lhreport"
	"github.com/zhengjing-huang/lighthouse/pkg/observability"
	"github.com/zhengjing-huang/lighthouse/pkg/pipeline"
	"github.com/zhengjing-huang/lighthouse/pkg/session"
)

const (
	// DefaultHost is the address the viewer binds to.
	DefaultHost = "localhost"

	// DefaultPort is the port the viewer serves on.
	DefaultPort = 7333

	// maxPushBytes caps the accepted report size. Reports with source
	// maps run to tens of megabytes; anything past this is not a report.
	maxPushBytes = 64 << 20

	shutdownTimeout = 5 * time.Second
)

// Config holds viewer server configuration.
type Config struct {
	Host string
	Port int
	Open bool // open the page in the default browser once serving
}

// Stores bundles the persistence backends the viewer uses. Nil fields
// fall back to in-memory implementations.
type Stores struct {
	Sessions session.Store
	Tokens   session.TokenStore
	Archive  archive.Store
}

// Server is the viewer host. It keeps at most one current report; pushes
// replace it and notify connected pages.
type Server struct {
	cfg      Config
	runner   *pipeline.Runner
	base     pipeline.Options
	sessions session.Store
	tokens   session.TokenStore
	archive  archive.Store
	logger   *log.Logger
	hub      *hub

	router     chi.Router
	httpServer *http.Server

	mu        sync.RWMutex
	sess      *session.Session
	pushToken string
	current   *lhreport.Options
	page      []byte
}

// New creates a viewer server. base carries the render options pushes
// inherit (view, locale, title, debug); its Source is only used as a
// last-resort display name.
//
// A session and a push token are minted up front. If the configured
// session or token backend is unreachable, the server degrades to
// in-memory storage with a logged warning rather than refusing to start.
func New(ctx context.Context, cfg Config, runner *pipeline.Runner, base pipeline.Options, stores Stores, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if stores.Sessions == nil || stores.Tokens == nil {
		mem := session.NewMemoryStore()
		if stores.Sessions == nil {
			stores.Sessions = mem
		}
		if stores.Tokens == nil {
			stores.Tokens = mem
		}
	}
	if stores.Archive == nil {
		stores.Archive = archive.NewMemoryStore()
	}

	s := &Server{
		cfg:      cfg,
		runner:   runner,
		base:     base,
		sessions: stores.Sessions,
		tokens:   stores.Tokens,
		archive:  stores.Archive,
		logger:   logger,
		hub:      newHub(),
	}

	sess, err := session.New("", "", base.View, session.DefaultTTL)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.sessions.Set(ctx, sess); err != nil {
		logger.Warn("session store unavailable, using in-memory sessions", "err", err)
		s.sessions = session.NewMemoryStore()
		_ = s.sessions.Set(ctx, sess)
	}
	s.sess = sess

	token, err := s.tokens.Generate(ctx, session.DefaultTokenTTL)
	if err != nil {
		logger.Warn("token store unavailable, using in-memory tokens", "err", err)
		mem := session.NewMemoryStore()
		s.tokens = mem
		token, err = mem.Generate(ctx, session.DefaultTokenTTL)
		if err != nil {
			return nil, fmt.Errorf("mint push token: %w", err)
		}
	}
	s.pushToken = token

	s.router = s.buildRouter()
	return s, nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	// Pushes come from report pages on other origins; that exchange is
	// what the token protects.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Treemap-Token"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Get("/debug.json", s.handleDebug)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// The socket stays open for the lifetime of the page, so it skips
	// the API timeout.
	r.Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Post("/reports", s.handlePush)
		r.Get("/reports", s.handleList)
		r.Get("/reports/{id}", s.handleGet)
	})

	return r
}

// requestLogger logs each request at debug level and reports it to the
// HTTP hooks.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.Host, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.Host, r.URL.Path, ww.Status(), time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

// Router returns the configured router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Addr returns the host:port the server binds to.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

// URL returns the base URL of the viewer.
func (s *Server) URL() string {
	return "http://" + s.Addr()
}

// PushToken returns the currently valid handshake token. Each accepted
// push consumes it and mints a replacement.
func (s *Server) PushToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pushToken
}

// Session returns a snapshot of the server's session. The serve command
// persists it so a later bare serve can reopen the same report.
func (s *Server) Session() session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.sess
}

// PushURL returns the full report push URL including the current token.
func (s *Server) PushURL() string {
	return s.URL() + "/api/reports?token=" + url.QueryEscape(s.PushToken())
}

// wsPath returns the reload socket path, qualified by the server session
// so only pages this server handed out can connect.
func (s *Server) wsPath() string {
	return "/ws?session=" + url.QueryEscape(s.sess.ID)
}

// Start serves until the context is canceled or the listener fails.
// Cancellation shuts down gracefully: open sockets are closed and
// in-flight requests get shutdownTimeout to finish.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	s.logger.Info("viewer listening", "url", s.URL())
	if s.cfg.Open {
		go openBrowser(s.URL())
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.hub.closeAll()
		return s.httpServer.Shutdown(shutCtx)
	}
}

// Shutdown stops the server outside of Start's context handling.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.closeAll()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}
