package api

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ivlev/adforge/internal/config"
	"github.com/ivlev/adforge/internal/director"
	"github.com/ivlev/adforge/internal/engine"
	"github.com/ivlev/adforge/internal/renderer"
	"github.com/ivlev/adforge/internal/source"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	jobsDirName    = "adforge-jobs"
	silentVideo    = "ad.mp4"
	videoWithMusic = "ad_with_music.mp4"
)

// GenerateResponse is returned by POST /api/v1/generate.
type GenerateResponse struct {
	VideoID string `json:"video_id"`
	URL     string `json:"url"`
	Frames  int    `json:"frames"`
	Scenes  int    `json:"scenes"`
	Warning string `json:"warning,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) jobDir(id string) string {
	return filepath.Join(s.cfg.WorkDir, jobsDirName, id)
}

func (s *Server) handleGenerate(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "multipart form expected"})
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: engine.ErrNoImages.Error()})
		return
	}
	if len(files) > source.MaxImages {
		c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("at most %d images are allowed", source.MaxImages)})
		return
	}

	description := strings.TrimSpace(c.PostForm("description"))
	if description == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: engine.ErrEmptyDescription.Error()})
		return
	}

	cfg := *s.cfg
	cfg.Preset = c.DefaultPostForm("aspect", "9:16")
	if err := cfg.Finalize(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	images, err := decodeUploads(files)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	badge, err := renderer.NewBadge(strings.TrimSpace(c.PostForm("cta_url")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.sem.Acquire(c.Request.Context(), 1); err != nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "request cancelled while waiting for renderer"})
		return
	}
	defer s.sem.Release(1)

	id := uuid.NewString()
	dir := s.jobDir(id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not create job directory"})
		return
	}
	cfg.OutputVideo = filepath.Join(dir, silentVideo)
	cfg.MuxedVideo = filepath.Join(dir, videoWithMusic)

	req := engine.Request{Images: images, Description: description}
	if fh, ok := firstFile(form, "audio"); ok {
		path, err := saveUpload(fh, dir)
		if err != nil {
			c.Error(err)
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not store audio"})
			return
		}
		defer os.Remove(path)
		req.AudioPath = path
	}

	res, err := s.newProject(&cfg, badge).Run(c.Request.Context(), req)
	if err != nil {
		os.RemoveAll(dir)
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			c.Error(err)
		}
		c.JSON(status, errorResponse{Error: err.Error()})
		return
	}

	s.log.Info("video generated",
		zap.String("video_id", id),
		zap.Int("scenes", res.Stats.Scenes),
		zap.Int("frames", res.Stats.Frames),
		zap.String("aspect", cfg.Preset),
	)
	c.JSON(http.StatusOK, GenerateResponse{
		VideoID: id,
		URL:     "/api/v1/videos/" + id,
		Frames:  res.Stats.Frames,
		Scenes:  res.Stats.Scenes,
		Warning: res.Warning,
	})
}

func (s *Server) newProject(cfg *config.Config, badge *renderer.Badge) *engine.AdProject {
	overlay := renderer.NewTextOverlay(cfg.FontPath, cfg.FontSize, s.log)
	asm := engine.NewAssembler(cfg.Canvas, cfg.FPS, overlay, s.writers, s.log)
	asm.Badge = badge
	d := director.NewDirector(s.completer, cfg.Canvas, s.log)
	if cfg.AITemperature > 0 {
		d.Temperature = cfg.AITemperature
	}
	return engine.NewAdProject(cfg, d, asm, s.muxer, s.log)
}

func (s *Server) handleVideo(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid video id"})
		return
	}

	dir := s.jobDir(id)
	for _, name := range []string{videoWithMusic, silentVideo} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			c.Header("Content-Type", "video/mp4")
			c.File(path)
			return
		}
	}
	c.JSON(http.StatusNotFound, errorResponse{Error: "video not found"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrNoImages), errors.Is(err, engine.ErrEmptyDescription):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrNoScenes):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func firstFile(form *multipart.Form, field string) (*multipart.FileHeader, bool) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, false
	}
	return files[0], true
}

func decodeUploads(files []*multipart.FileHeader) ([]image.Image, error) {
	readers := make([]io.Reader, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		defer f.Close()
		readers = append(readers, f)
	}
	return source.DecodeImages(readers)
}

func saveUpload(fh *multipart.FileHeader, dir string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(dir, "audio"+strings.ToLower(filepath.Ext(fh.Filename)))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", err
	}
	return path, dst.Close()
}
