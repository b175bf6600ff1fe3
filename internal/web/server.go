// Package web serves the ats Service as a JSON API.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"ats-go/internal/ats"
	"ats-go/internal/config"
)

// ActorHeader names the request header carrying the acting user.
const ActorHeader = "X-Actor"

const shutdownTimeout = 10 * time.Second

// Auditor records mutating requests. app.App implements it.
type Auditor interface {
	Track(ctx context.Context, operation, parameters string, fn func(context.Context) error) error
}

// Server is the ats HTTP API.
type Server struct {
	service *ats.Service
	audit   Auditor
	logger  *slog.Logger
	router  *gin.Engine
	addr    string

	// dc decrypts documents for download. Nil when the key was not unlocked.
	dc ats.DecryptionContext
}

// NewServer creates the API server. audit and dc may be nil.
func NewServer(service *ats.Service, audit Auditor, logger *slog.Logger, cfg config.ServerConfig, dc ats.DecryptionContext) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", ActorHeader}
		router.Use(cors.New(corsCfg))
	}
	router.Use(actorFromHeader())

	if audit == nil {
		audit = untracked{}
	}
	s := &Server{
		service: service,
		audit:   audit,
		logger:  logger,
		router:  router,
		addr:    cfg.Addr,
		dc:      dc,
	}

	api := router.Group("/api/v1")
	{
		api.GET("/health", s.handleHealth)

		api.GET("/candidates", s.handleListCandidates)
		api.POST("/candidates", s.handleCreateCandidate)
		api.GET("/candidates/:id", s.handleGetCandidate)
		api.PUT("/candidates/:id", s.handleUpdateCandidate)
		api.DELETE("/candidates/:id", s.handleDeleteCandidate)
		api.GET("/candidates/:id/documents/:index", s.handleDownloadDocument)
		api.POST("/candidates/:id/status", s.handleChangeStatus)
		api.GET("/candidates/:id/interviews", s.handleCandidateInterviews)
		api.POST("/candidates/:id/interviews", s.handleScheduleInterview)

		api.GET("/interviews", s.handleListInterviews)
		api.DELETE("/interviews/:id", s.handleCancelInterview)

		api.GET("/calendar", s.handleCalendar)
		api.GET("/board", s.handleBoard)
		api.GET("/metrics", s.handleMetrics)
		api.POST("/insights", s.handleInsights)

		api.GET("/job-positions", s.handleListJobPositions)
		api.POST("/job-positions", s.handleAddJobPosition)
		api.GET("/interviewers", s.handleListInterviewers)
		api.POST("/interviewers", s.handleAddInterviewer)
	}

	return s
}

// Handler exposes the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		s.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// actorFromHeader stores the X-Actor header in the request context.
func actorFromHeader() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := c.GetHeader(ActorHeader); actor != "" {
			c.Request = c.Request.WithContext(ats.WithActor(c.Request.Context(), actor))
		}
		c.Next()
	}
}

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// untracked runs operations without an audit record.
type untracked struct{}

func (untracked) Track(ctx context.Context, _, _ string, fn func(context.Context) error) error {
	return fn(ctx)
}
