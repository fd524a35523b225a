// Package api serves backgammon tables over HTTP. Each table is a game (or
// a match) held in memory; clients drive it with REST calls, a websocket
// channel, or watch it through a Server-Sent Events stream.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/yourusername/bgrules/pkg/dice"
)

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Host         string        // Host to bind to (default "localhost")
	Port         int           // Port to listen on (default 8080)
	ReadTimeout  time.Duration // Read timeout (default 30s)
	WriteTimeout time.Duration // Write timeout (default 30s)
	IdleTimeout  time.Duration // Idle timeout (default 60s)
	MaxGames     int           // Max games held in memory (default 1000)
	Pool         PoolConfig
	Archive      Archive // Optional store for finished games
	// Dice supplies a dice source per game. Defaults to a random source.
	Dice func() (dice.Source, error)
}

// DefaultConfig returns a ServerConfig with sensible defaults.
func DefaultConfig() ServerConfig {
	return ServerConfig{
		Host:         "localhost",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		MaxGames:     1000,
		Pool:         DefaultPoolConfig(),
	}
}

// Server is the HTTP API server.
type Server struct {
	config   ServerConfig
	store    *Store
	handlers *Handlers
	server   *http.Server
	pool     *WorkerPool
	logger   *zap.SugaredLogger
	version  string
}

// NewServer creates a new API server.
func NewServer(config ServerConfig, version string, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	pool := NewWorkerPool(config.Pool)
	store := NewStore(StoreConfig{
		MaxGames: config.MaxGames,
		Archive:  config.Archive,
		Logger:   logger.Named("game"),
		NewDice:  config.Dice,
	})

	return &Server{
		config:   config,
		store:    store,
		handlers: NewHandlers(store, version, pool, logger),
		pool:     pool,
		logger:   logger,
		version:  version,
	}
}

// Store returns the game store.
func (s *Server) Store() *Store {
	return s.store
}

// Pool returns the worker pool for monitoring.
func (s *Server) Pool() *WorkerPool {
	return s.pool
}

// requestLogger logs every request with its status and duration.
func requestLogger(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Infow("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// Routes configures all API routes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         60 * 15,
	}))

	h := s.handlers
	r.Get("/api/health", h.Health)
	r.Route("/api/games", func(rr chi.Router) {
		rr.Post("/", h.CreateGame)
		rr.Route("/{id}", func(g chi.Router) {
			g.Get("/", h.GetGame)
			g.Delete("/", h.DeleteGame)
			g.Post("/roll", h.serveOp("roll"))
			g.Post("/move", h.serveOp("move"))
			g.Post("/end-turn", h.serveOp("end_turn"))
			g.Post("/undo", h.serveOp("undo"))
			g.Post("/double", h.serveOp("double"))
			g.Post("/respond", h.serveOp("respond"))
			g.Post("/next", h.serveOp("next"))
			g.Get("/moves", h.Moves)
			g.Get("/transcript", h.Transcript)
			g.Get("/board", h.Board)
			g.Get("/events", h.Events)
			g.Get("/ws", h.WebSocket)
		})
	})
	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.logger.Infow("starting backgammon server", "version", s.version, "addr", addr,
		"max_games", s.config.MaxGames, "archive", s.config.Archive != nil)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// ListenAndServeWithGracefulShutdown starts the server and handles shutdown signals.
func (s *Server) ListenAndServeWithGracefulShutdown() error {
	errChan := make(chan error, 1)

	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		s.logger.Infow("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
