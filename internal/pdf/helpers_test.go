package pdf

import (
	"archive/zip"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeRasterizer renders every page as a flat 85x110 image so tests do not
// depend on MuPDF
type fakeRasterizer struct {
	mu    sync.Mutex
	calls [][]int
}

func (f *fakeRasterizer) PageCount(path string) (int, error) {
	return pageCount(path)
}

func (f *fakeRasterizer) Render(ctx context.Context, path string, pages []int, dpi float64, fn func(int, image.Image) error) error {
	f.mu.Lock()
	f.calls = append(f.calls, append([]int(nil), pages...))
	f.mu.Unlock()

	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		img := image.NewRGBA(image.Rect(0, 0, 85, 110))
		for x := 0; x < 85; x++ {
			for y := 0; y < 110; y++ {
				img.Set(x, y, color.RGBA{R: uint8(p * 40), G: 200, B: 255, A: 255})
			}
		}
		if err := fn(p, img); err != nil {
			return err
		}
	}
	return nil
}

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	svc, err := NewService(ServiceConfig{
		Directory:  dir,
		Rasterizer: &fakeRasterizer{},
	})
	require.NoError(t, err)
	return svc, svc.Directory()
}

func writeTestPNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

// makePDF builds a PDF with the given number of pages in the workspace and
// returns its path
func makePDF(t *testing.T, svc *Service, name string, pages int) string {
	t.Helper()
	dir := filepath.Join(svc.Directory(), "fixtures", strings.TrimSuffix(name, ".pdf"))
	require.NoError(t, os.MkdirAll(dir, 0o755))

	var images []string
	for i := 0; i < pages; i++ {
		p := filepath.Join(dir, fmt.Sprintf("page%d.png", i+1))
		writeTestPNG(t, p, 60, 80, color.RGBA{R: uint8(50 * i), G: 100, B: 150, A: 255})
		images = append(images, p)
	}

	out := filepath.Join(svc.Directory(), name)
	res, err := svc.JPGToPDF(context.Background(), ImagesToPDFRequest{Inputs: images, Output: out})
	require.NoError(t, err)
	require.Equal(t, pages, res.Pages)
	return res.Output
}

func countPages(t *testing.T, path string) int {
	t.Helper()
	n, err := pageCount(path)
	require.NoError(t, err)
	return n
}

// zipEntries extracts an archive into a temp dir and returns the paths in archive order
func zipEntries(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	dir := t.TempDir()
	var files []string
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		dst := filepath.Join(dir, filepath.Base(f.Name))
		out, err := os.Create(dst)
		require.NoError(t, err)
		_, err = io.Copy(out, rc)
		require.NoError(t, err)
		require.NoError(t, out.Close())
		require.NoError(t, rc.Close())
		files = append(files, dst)
	}
	return files
}

func assertNoJobs(t *testing.T, svc *Service) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(svc.Directory(), JobsDir))
	if os.IsNotExist(err) {
		return
	}
	require.NoError(t, err)
	require.Empty(t, entries, "scratch directories left behind")
}
