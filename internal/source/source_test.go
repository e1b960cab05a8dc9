package source

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestImageSourceDirectory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 4, 2)
	writePNG(t, filepath.Join(dir, "a.png"), 2, 4)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0644))

	src, err := Open(dir)
	require.NoError(t, err)
	defer src.Close()
	require.Equal(t, 2, src.PageCount())

	first, err := src.RenderPage(0, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 4), first.Bounds())

	_, err = src.RenderPage(5, 0)
	assert.Error(t, err)
}

func TestImageSourceList(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "one.png")
	b := filepath.Join(dir, "two.png")
	writePNG(t, a, 3, 3)
	writePNG(t, b, 5, 5)

	src, err := NewImageSource(b + ", " + a)
	require.NoError(t, err)
	images, warning, err := LoadAll(src, 0)
	require.NoError(t, err)
	assert.Empty(t, warning)
	require.Len(t, images, 2)
	assert.Equal(t, 5, images[0].Bounds().Dx())
}

type stubSource struct{ n int }

func (s stubSource) PageCount() int { return s.n }
func (s stubSource) RenderPage(int, int) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}
func (s stubSource) Close() error { return nil }

func TestLoadAllLimit(t *testing.T) {
	images, warning, err := LoadAll(stubSource{n: 12}, 72)
	require.NoError(t, err)
	assert.Len(t, images, MaxImages)
	assert.Contains(t, warning, "12 images")

	_, _, err = LoadAll(stubSource{}, 72)
	assert.Error(t, err)
}

func TestDecodeImages(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 7, 3))))

	images, err := DecodeImages([]io.Reader{bytes.NewReader(buf.Bytes())})
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, 7, images[0].Bounds().Dx())

	_, err = DecodeImages([]io.Reader{strings.NewReader("not an image")})
	assert.ErrorContains(t, err, "image 0")
}
