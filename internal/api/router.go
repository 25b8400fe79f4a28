package api

import (
	"context"
	"fmt"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/maxaizer/cv-matcher/internal/auth"
	"github.com/maxaizer/cv-matcher/internal/config"
	"github.com/maxaizer/cv-matcher/internal/metrics"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"net/http"
	"time"
)

type tokenVerifier interface {
	GetUserID(ctx context.Context, token string) (string, error)
}

func NewRouter(cfg config.ServerConfig, handlers *Handlers, tokens tokenVerifier) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(), requestMetrics())
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.GET("/health", handlers.Health)

	protected := api.Group("", auth.Middleware(tokens))
	{
		protected.POST("/jobs/extract", handlers.ExtractJob)
		protected.GET("/jobs", handlers.ListJobs)
		protected.POST("/resumes", handlers.UploadResume)
		protected.POST("/analyses", handlers.CreateAnalysis)
		protected.GET("/analyses", handlers.ListAnalyses)
	}

	return r
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", requestIDHeader}
	cfg.ExposeHeaders = []string{requestIDHeader}
	return cfg
}

type Server struct {
	httpServer *http.Server
}

func NewServer(port int, handler http.Handler) *Server {
	return &Server{httpServer: &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// Start blocks until the server stops; a graceful shutdown is not an error.
func (s *Server) Start() error {
	log.Infof("http server listening on %v", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
