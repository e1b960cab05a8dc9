package source

import (
	"fmt"
	"image"
	"io"

	"github.com/gen2brain/go-fitz"
)

// MaxImages is the most images a single ad uses.
const MaxImages = 10

type Source interface {
	PageCount() int
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// LoadAll renders every page of src, keeping at most MaxImages. The
// returned warning is non-empty when pages were dropped.
func LoadAll(src Source, dpi int) ([]image.Image, string, error) {
	n := src.PageCount()
	if n == 0 {
		return nil, "", fmt.Errorf("source has no pages")
	}

	var warning string
	if n > MaxImages {
		warning = fmt.Sprintf("%d images supplied, only the first %d are used", n, MaxImages)
		n = MaxImages
	}

	images := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		img, err := src.RenderPage(i, dpi)
		if err != nil {
			return nil, "", fmt.Errorf("page %d: %w", i, err)
		}
		images = append(images, img)
	}
	return images, warning, nil
}

// DecodeImages decodes uploaded PNG or JPEG streams in order.
func DecodeImages(readers []io.Reader) ([]image.Image, error) {
	images := make([]image.Image, 0, len(readers))
	for i, r := range readers {
		img, _, err := image.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		images = append(images, img)
	}
	return images, nil
}

// FitzPDFSource renders the pages of a product catalogue PDF.
type FitzPDFSource struct {
	doc *fitz.Document
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	if dpi <= 0 {
		dpi = 150
	}
	return f.doc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
