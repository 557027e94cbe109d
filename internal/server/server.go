// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/chatbot/internal/conversation"
	"github.com/jeranaias/chatbot/internal/markup"
)

//go:embed templates/*.html static/*
var assets embed.FS

const (
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = "127.0.0.1:8080"

	// DefaultSessionTTL is how long an idle browser session is kept.
	DefaultSessionTTL = time.Hour

	shutdownTimeout = 5 * time.Second
	sessionKey      = "session"
)

// ErrShuttingDown is returned to sends that arrive after Shutdown.
var ErrShuttingDown = errors.New("server is shutting down")

// =============================================================================
// CONFIG
// =============================================================================

// Config holds the options for a Server.
type Config struct {
	Addr       string
	SessionTTL time.Duration
	Ordering   conversation.Ordering
	DarkMode   bool
	Logger     *zerolog.Logger
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:       DefaultAddr,
		SessionTTL: DefaultSessionTTL,
		Ordering:   conversation.OrderResolution,
	}
}

// =============================================================================
// SERVER
// =============================================================================

// Server serves the browser chat page. Each browser gets its own
// conversation store; changes are pushed to open sockets through the hub.
type Server struct {
	cfg      Config
	echo     *echo.Echo
	hub      *Hub
	sessions *Sessions
	gen      conversation.Generator
	html     *markup.HTMLRenderer
	tmpl     *template.Template
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	ordering atomic.Int64

	// ctx bounds in-flight generations; cancelled by Shutdown.
	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
}

// New creates a server that answers prompts with gen.
func New(cfg Config, gen conversation.Generator) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	logger = logger.With().Str("component", "server").Logger()

	tmpl, err := template.ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse templates")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:      cfg,
		hub:      NewHub(logger),
		gen:      gen,
		html:     markup.NewHTMLRenderer(),
		tmpl:     tmpl,
		upgrader: newUpgrader(),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	s.ordering.Store(int64(cfg.Ordering))
	s.sessions = NewSessions(s.newStore)
	// A page with a live socket is still open even if it sends nothing.
	s.sessions.KeepWhile(s.hub.HasConnections)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(RequestLogger(logger))
	e.Use(SecurityHeaders())
	s.echo = e

	s.setupRoutes()
	return s, nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	e := s.echo
	e.GET("/health", s.handleHealth)
	e.StaticFS("/static", echo.MustSubFS(assets, "static"))

	e.GET("/", s.handleIndex, s.withSession)
	e.GET("/ws", s.handleWS, s.withSession)

	api := e.Group("/api", noStore, s.withSession)
	api.GET("/state", s.handleState)
	api.POST("/send", s.handleSend)
	api.POST("/clear", s.handleClear)
	api.POST("/sidebar", s.handleSidebar)
	api.POST("/theme", s.handleTheme)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Sessions returns the live session set.
func (s *Server) Sessions() *Sessions {
	return s.sessions
}

// SetOrdering changes the reply ordering for new and existing sessions.
func (s *Server) SetOrdering(o conversation.Ordering) {
	s.ordering.Store(int64(o))
	s.sessions.Each(func(sess *Session) {
		sess.Store.SetOrdering(o)
	})
}

func (s *Server) newStore(sessionID string) *conversation.Store {
	logger := s.logger.With().Str("session", sessionID).Logger()
	store := conversation.NewStoreWithConfig(conversation.Config{
		Ordering: conversation.Ordering(s.ordering.Load()),
		DarkMode: s.cfg.DarkMode,
		Logger:   &logger,
	})
	store.OnChange(func(snap conversation.Snapshot) {
		s.push(sessionID, snap)
	})
	return store
}

// push renders a snapshot and queues it for the session's sockets.
func (s *Server) push(sessionID string, snap conversation.Snapshot) {
	if !s.hub.HasConnections(sessionID) {
		return
	}
	sess, ok := s.sessions.Peek(sessionID)
	if !ok {
		return
	}
	f, err := s.frame(sess, snap)
	if err != nil {
		s.logger.Error().Err(err).Str("session", sessionID).Msg("render failed")
		return
	}
	if err := s.hub.BroadcastJSON(sessionID, f); err != nil {
		s.logger.Error().Err(err).Str("session", sessionID).Msg("broadcast failed")
	}
}

// =============================================================================
// SESSIONS
// =============================================================================

// withSession resolves the session cookie, starting a new session when the
// cookie is missing or names a pruned session.
func (s *Server) withSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var sess *Session
		if ck, err := c.Cookie(SessionCookie); err == nil {
			sess, _ = s.sessions.Get(ck.Value)
		}
		if sess == nil {
			sess = s.sessions.Create()
			c.SetCookie(&http.Cookie{
				Name:     SessionCookie,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			s.logger.Debug().Str("session", sess.ID).Msg("session started")
		}
		c.Set(sessionKey, sess)
		return next(c)
	}
}

func sessionFrom(c echo.Context) *Session {
	sess, _ := c.Get(sessionKey).(*Session)
	return sess
}

// =============================================================================
// HANDLERS
// =============================================================================

// SendRequest is the body of POST /api/send.
type SendRequest struct {
	Draft string `json:"draft"`
}

// SendResponse reports whether a draft started a request.
type SendResponse struct {
	Accepted bool `json:"accepted"`
}

// ThemeRequest is the body of POST /api/theme. A nil Dark toggles.
type ThemeRequest struct {
	Dark *bool `json:"dark"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Sessions    int    `json:"sessions"`
	Connections int    `json:"connections"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:      "ok",
		Sessions:    s.sessions.Len(),
		Connections: s.hub.ConnectionCount(),
	})
}

func (s *Server) handleIndex(c echo.Context) error {
	sess := sessionFrom(c)
	view := s.pageView(sess, sess.Store.Snapshot())

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	if err := s.tmpl.ExecuteTemplate(c.Response(), "index", view); err != nil {
		return errors.Wrap(err, "render page")
	}
	return nil
}

func (s *Server) handleState(c echo.Context) error {
	sess := sessionFrom(c)
	return c.JSON(http.StatusOK, s.state(sess, sess.Store.Snapshot()))
}

func (s *Server) handleSend(c echo.Context) error {
	var req SendRequest
	if err := c.Bind(&req); err != nil {
		return s.writeError(c, http.StatusBadRequest, "invalid request body")
	}
	if s.ctx.Err() != nil {
		return s.writeError(c, http.StatusServiceUnavailable, ErrShuttingDown.Error())
	}

	sess := sessionFrom(c)
	r, ok := sess.Store.Send(req.Draft)
	if !ok {
		return c.JSON(http.StatusAccepted, SendResponse{Accepted: false})
	}

	s.inflight.Add(1)
	go s.generate(sess, r)
	return c.JSON(http.StatusAccepted, SendResponse{Accepted: true})
}

// generate runs one request and settles its outcome into the session.
func (s *Server) generate(sess *Session, req conversation.Request) {
	defer s.inflight.Done()
	out := conversation.Dispatch(s.ctx, s.gen, req)
	if out.Failed() {
		s.logger.Warn().Err(out.Err).Str("session", sess.ID).Uint64("request", out.RequestID).Msg("generation failed")
	}
	sess.Store.Settle(out)
}

func (s *Server) handleClear(c echo.Context) error {
	sess := sessionFrom(c)
	sess.Store.Clear()
	return s.writeFrame(c, sess)
}

func (s *Server) handleSidebar(c echo.Context) error {
	sess := sessionFrom(c)
	sess.Store.ToggleSidebar()
	return s.writeFrame(c, sess)
}

func (s *Server) handleTheme(c echo.Context) error {
	var req ThemeRequest
	if err := c.Bind(&req); err != nil {
		return s.writeError(c, http.StatusBadRequest, "invalid request body")
	}

	sess := sessionFrom(c)
	if req.Dark == nil {
		sess.Store.ToggleDarkMode()
	} else {
		sess.Store.SetDarkMode(*req.Dark)
	}
	return s.writeFrame(c, sess)
}

// writeFrame answers a mutation with the session's current frame.
func (s *Server) writeFrame(c echo.Context, sess *Session) error {
	f, err := s.frame(sess, sess.Store.Snapshot())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, f)
}

// writeError writes a JSON error response.
func (s *Server) writeError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]any{
		"error": map[string]any{
			"message": message,
			"code":    status,
		},
	})
}

// =============================================================================
// SERVER LIFECYCLE
// =============================================================================

// Start listens on the configured address. It blocks until the server
// stops and returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.cfg.Addr).Msg("server starting")
	return s.echo.Start(s.cfg.Addr)
}

// Shutdown stops accepting requests and waits for in-flight generations,
// which see a cancelled context and settle as failures.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("server shutting down")
	s.cancel()
	err := s.echo.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return errors.Wrap(err, "shutdown")
}

// Run serves HTTP and the socket hub until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.hub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Janitor prunes idle sessions until ctx is cancelled.
func (s *Server) Janitor(ctx context.Context) error {
	s.sessions.Janitor(ctx, s.cfg.SessionTTL, func(n int) {
		s.logger.Debug().Int("pruned", n).Int("remaining", s.sessions.Len()).Msg("sessions pruned")
	})
	return nil
}
