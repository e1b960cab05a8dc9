package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ivlev/adforge/internal/config"
	"github.com/ivlev/adforge/internal/mocks"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const plan = `{"scenes":[{"image_index":0,"duration":0.2,"motion":"none","text":"Hi"},{"image_index":1,"duration":0.3,"motion":"zoom_in","text":""}]}`

func init() {
	gin.SetMode(gin.TestMode)
}

type upload struct {
	images      int
	description string
	aspect      string
	audio       bool
}

func multipartBody(t *testing.T, u upload) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for i := 0; i < u.images; i++ {
		part, err := w.CreateFormFile("images", "img.png")
		require.NoError(t, err)
		require.NoError(t, png.Encode(part, image.NewRGBA(image.Rect(0, 0, 8+i, 8))))
	}
	if u.audio {
		part, err := w.CreateFormFile("audio", "track.MP3")
		require.NoError(t, err)
		_, err = part.Write([]byte("not really mp3"))
		require.NoError(t, err)
	}
	if u.description != "" {
		require.NoError(t, w.WriteField("description", u.description))
	}
	if u.aspect != "" {
		require.NoError(t, w.WriteField("aspect", u.aspect))
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func newTestServer(t *testing.T) (*gin.Engine, *mocks.MockCompleter, *mocks.FrameRecorder, *mocks.MockMuxer) {
	t.Helper()
	cfg := &config.Config{
		Preset:   "9:16",
		FPS:      30,
		FontSize: 20,
		WorkDir:  t.TempDir(),
	}
	require.NoError(t, cfg.Finalize())

	completer := mocks.NewMockCompleter(t)
	rec := &mocks.FrameRecorder{}
	muxer := mocks.NewMockMuxer(t)
	return NewServer(cfg, completer, rec, muxer, nil).Router(nil), completer, rec, muxer
}

func post(t *testing.T, router *gin.Engine, u upload) *httptest.ResponseRecorder {
	body, contentType := multipartBody(t, u)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGenerateAndDownload(t *testing.T) {
	router, completer, rec, _ := newTestServer(t)
	completer.On("Complete", mock.Anything, mock.Anything).Return(plan, nil).Once()

	w := post(t, router, upload{images: 2, description: "summer sale", aspect: "16:9"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Scenes)
	assert.Equal(t, 15, resp.Frames)
	assert.Equal(t, "/api/v1/videos/"+resp.VideoID, resp.URL)
	assert.Equal(t, 15, rec.Frames())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	get := httptest.NewRecorder()
	router.ServeHTTP(get, httptest.NewRequest(http.MethodGet, resp.URL, nil))
	require.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, "recorded", get.Body.String())
}

func TestGenerateWithAudio(t *testing.T) {
	router, completer, _, muxer := newTestServer(t)
	completer.On("Complete", mock.Anything, mock.Anything).Return(plan, nil).Once()
	muxer.On("Mux", mock.Anything, mock.Anything, mock.MatchedBy(func(p string) bool {
		return len(p) > 4 && p[len(p)-4:] == ".mp3"
	}), mock.Anything).Return("", assert.AnError).Once()

	w := post(t, router, upload{images: 1, description: "summer sale", audio: true})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGenerateValidation(t *testing.T) {
	router, _, rec, _ := newTestServer(t)

	tests := []struct {
		name string
		u    upload
	}{
		{"no images", upload{description: "ad"}},
		{"too many images", upload{images: 11, description: "ad"}},
		{"no description", upload{images: 1}},
		{"bad aspect", upload{images: 1, description: "ad", aspect: "4:3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, router, tt.u)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
	assert.Equal(t, 0, rec.Opened)
}

func TestGenerateNoScenes(t *testing.T) {
	router, completer, _, _ := newTestServer(t)
	completer.On("Complete", mock.Anything, mock.Anything).Return(`{"scenes":[]}`, nil).Once()

	w := post(t, router, upload{images: 1, description: "ad"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "no scenes generated")
}

func TestVideoLookup(t *testing.T) {
	router, _, _, _ := newTestServer(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/videos/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/videos/6f1c1c3e-8d2a-4f55-9b8e-2f7f1c8b9a10", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	router, _, _, _ := newTestServer(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
