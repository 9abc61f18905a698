package pdf

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// Rasterizer renders PDF pages to images
type Rasterizer interface {
	// PageCount returns the number of pages the renderer sees in path.
	PageCount(path string) (int, error)
	// Render calls fn with each requested 1-based page, in order, rendered at dpi.
	Render(ctx context.Context, path string, pages []int, dpi float64, fn func(page int, img image.Image) error) error
}

// FitzRasterizer renders with MuPDF through go-fitz
type FitzRasterizer struct{}

// PageCount implements Rasterizer
func (FitzRasterizer) PageCount(path string) (int, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return 0, fmt.Errorf("failed reading document: %w", err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}

// Render implements Rasterizer
func (FitzRasterizer) Render(ctx context.Context, path string, pages []int, dpi float64, fn func(page int, img image.Image) error) error {
	doc, err := fitz.New(path)
	if err != nil {
		return fmt.Errorf("failed reading document: %w", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if page < 1 || page > n {
			return fmt.Errorf("cannot read page %d in document with %d pages", page, n)
		}

		img, err := doc.ImageDPI(page-1, dpi)
		if err != nil {
			return fmt.Errorf("failed to render page %d: %w", page, err)
		}
		if err := fn(page, img); err != nil {
			return err
		}
	}

	return nil
}
