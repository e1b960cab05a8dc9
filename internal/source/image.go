package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ivlev/adforge/internal/system"
)

// ImageSource reads still images from disk. Each file is one page.
type ImageSource struct {
	paths []string
}

// NewImageSource accepts a directory (png/jpg files sorted by name), a
// single file, or a comma separated list of files.
func NewImageSource(path string) (*ImageSource, error) {
	if strings.Contains(path, ",") {
		var paths []string
		for _, p := range strings.Split(path, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
		return &ImageSource{paths: paths}, nil
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return &ImageSource{paths: []string{path}}, nil
	}

	paths, err := system.ListImages(path)
	if err != nil {
		return nil, err
	}
	return &ImageSource{paths: paths}, nil
}

func (s *ImageSource) PageCount() int {
	return len(s.paths)
}

func (s *ImageSource) RenderPage(index int, dpi int) (image.Image, error) {
	if index < 0 || index >= len(s.paths) {
		return nil, fmt.Errorf("page %d out of range", index)
	}
	f, err := os.Open(s.paths[index])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(s.paths[index]), err)
	}
	return img, nil
}

func (s *ImageSource) Close() error {
	return nil
}

// Open picks a source by extension: .pdf goes through MuPDF, anything
// else is treated as images.
func Open(path string) (Source, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return NewFitzPDFSource(path)
	}
	return NewImageSource(path)
}
