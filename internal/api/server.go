package api

import (
	"net/http"
	"time"

	"github.com/ivlev/adforge/internal/config"
	"github.com/ivlev/adforge/internal/engine"
	"github.com/ivlev/adforge/internal/llm"
	"github.com/ivlev/adforge/internal/logger"
	"github.com/ivlev/adforge/internal/video"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// MaxUploadBytes bounds the multipart form kept in memory.
const MaxUploadBytes = 64 << 20

// Server exposes the generator over HTTP. Runs are serialized: only one
// video renders at a time.
type Server struct {
	cfg       *config.Config
	completer llm.Completer
	writers   video.FrameWriterFactory
	muxer     engine.AudioMuxer
	sem       *semaphore.Weighted
	log       *zap.Logger
}

func NewServer(cfg *config.Config, completer llm.Completer, writers video.FrameWriterFactory, muxer engine.AudioMuxer, log *zap.Logger) *Server {
	return &Server{
		cfg:       cfg,
		completer: completer,
		writers:   writers,
		muxer:     muxer,
		sem:       semaphore.NewWeighted(1),
		log:       logger.OrNop(log),
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router(allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = MaxUploadBytes
	router.Use(RequestID())
	router.Use(ZapLogger(s.log))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.POST("/generate", s.handleGenerate)
	v1.GET("/videos/:id", s.handleVideo)
	return router
}
