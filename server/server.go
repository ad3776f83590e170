// Package server exposes the solver and the tutor over HTTP.
//
// Solves run the same pipeline as the terminal client with the cosmetic stage
// delays removed. Tutor replies stream as server-sent events carrying the whole
// reply so far, so a client can simply replace what it shows.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"edusolver/config"
	"edusolver/model"
	"edusolver/provider"
	"edusolver/storage"
)

type Server struct {
	cfg      *config.Config
	provider model.Provider
	history  *storage.HistoryStore
	credErr  error
	models   model.ModelSet
	mode     model.Mode

	pipeline *model.Pipeline
	tutor    *model.Tutor
	engine   *gin.Engine
}

// New builds the router. p may be nil when credErr is set; the generation
// endpoints then answer 503. history may be nil.
func New(cfg *config.Config, p model.Provider, history *storage.HistoryStore, credErr error) *Server {
	mode, err := model.ParseMode(cfg.DefaultMode)
	if err != nil {
		mode = model.ModeDeep
	}

	s := &Server{
		cfg:      cfg,
		provider: p,
		history:  history,
		credErr:  credErr,
		models:   provider.ModelsFor(cfg),
		mode:     mode,
	}
	if p != nil {
		s.pipeline = model.NewPipeline(p, model.NoChoreography)
		s.pipeline.Timeout = cfg.RequestTimeout.Duration
		s.tutor = model.NewTutor(p, s.models.Chat)
		s.tutor.Timeout = cfg.RequestTimeout.Duration
	}

	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	if !config.Debug && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	if mw := corsMiddleware(s.cfg.Server.AllowedOrigins); mw != nil {
		r.Use(mw)
	}

	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	{
		api.POST("/solve", s.handleSolve)
		api.POST("/chat", s.handleChat)
		api.GET("/history", s.handleHistory)
		api.GET("/history/:id", s.handleHistoryRecord)
		api.DELETE("/history/:id", s.handleHistoryDelete)
		api.GET("/progress", s.handleProgress)
	}
	return r
}

// Handler returns the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then drains open requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		config.DebugLog.Infow("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// corsMiddleware returns nil when no usable origin is configured, leaving the
// API same-origin only. Invalid origins are dropped because cors.New panics on
// them.
func corsMiddleware(origins []string) gin.HandlerFunc {
	var allowed []string
	for _, origin := range origins {
		if err := config.ValidateOrigin(origin); err != nil {
			config.DebugLog.Warnw("ignoring allowed origin", "error", err)
			continue
		}
		if origin == "*" {
			return cors.New(cors.Config{
				AllowAllOrigins: true,
				AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
				AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
				MaxAge:          12 * time.Hour,
			})
		}
		allowed = append(allowed, origin)
	}
	if len(allowed) == 0 {
		return nil
	}
	return cors.New(cors.Config{
		AllowOrigins:     allowed,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func (s *Server) ready() bool {
	return s.credErr == nil && s.provider != nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		config.DebugLog.Debugw("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
