package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wavepilot/internal/analyzer"
	"wavepilot/internal/api/middleware"
	"wavepilot/internal/catalog"
	"wavepilot/internal/config"
	"wavepilot/internal/queue"
)

type Server struct {
	cfg      *config.Config
	manager  *queue.Manager
	analyzer *analyzer.Analyzer
	catalog  *catalog.Service
	router   *gin.Engine
}

func New(cfg *config.Config, m *queue.Manager, an *analyzer.Analyzer, cat *catalog.Service) *Server {
	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:      cfg,
		manager:  m,
		analyzer: an,
		catalog:  cat,
		router:   gin.Default(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}

	s.router.Use(cors.New(corsConfig))
	s.router.Use(middleware.Identity([]byte(s.cfg.Server.JWTSecret)))
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "wavepilot"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/tracks", s.ListTracks)

		v1.GET("/player", s.GetState)
		v1.GET("/player/frequency", s.GetFrequency)
		v1.GET("/player/frequency/stream", s.StreamFrequency)

		v1.POST("/player/play", s.PlayTrack)
		v1.POST("/player/play-many", s.PlayTracks)
		v1.POST("/player/toggle", s.TogglePlay)
		v1.POST("/player/next", s.Next)
		v1.POST("/player/previous", s.Previous)

		v1.POST("/player/queue", s.AddToQueue)
		v1.POST("/player/queue/next", s.AddNext)
		v1.DELETE("/player/queue/:queueId", s.RemoveFromQueue)
		v1.POST("/player/queue/reorder", s.ReorderQueue)
		v1.POST("/player/skip/:queueId", s.SkipTo)

		v1.POST("/player/shuffle", s.ToggleShuffle)
		v1.POST("/player/repeat", s.ToggleRepeat)
		v1.POST("/player/crossfade", s.SetCrossfade)
		v1.POST("/player/record", s.RecordPlay)
	}
}

// Start runs the server on the configured address.
func (s *Server) Start() error {
	return s.router.Run(s.cfg.Server.ListenAddr)
}
