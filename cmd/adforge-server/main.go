package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ivlev/adforge/internal/api"
	"github.com/ivlev/adforge/internal/config"
	"github.com/ivlev/adforge/internal/llm"
	"github.com/ivlev/adforge/internal/logger"
	"github.com/ivlev/adforge/internal/system"
	"github.com/ivlev/adforge/internal/video"

	"go.uber.org/zap"
)

var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.BuildVersion = Version

	zl, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: "json"})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	completer, err := llm.NewCompleter(cfg, zl)
	if err != nil {
		zl.Fatal("Failed to create model client", zap.Error(err))
	}

	if !system.FFmpegAvailable(cfg.FFmpegPath) {
		zl.Fatal("ffmpeg binary not found", zap.String("ffmpeg", cfg.FFmpegPath))
	}
	encoderName := cfg.VideoEncoder
	if encoderName == "" {
		encoderName = system.GetBestH264Encoder(cfg.FFmpegPath)
	}
	enc := video.NewFFmpegStreamEncoder(cfg.FFmpegPath, encoderName, cfg.Quality, zl)
	muxer := video.NewMuxer(cfg.FFmpegPath, zl)

	router := api.NewServer(cfg, completer, enc, muxer, zl).Router(cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:        cfg.HTTPAddr,
		Handler:     router,
		ReadTimeout: 60 * time.Second,
		// Rendering runs inside the request.
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	zl.Info("Starting HTTP server",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("version", Version),
		zap.String("encoder", encoderName),
		zap.String("model", cfg.AIModel),
	)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("HTTP Server forced to shutdown", zap.Error(err))
	}
	zl.Info("Server exiting")
}
