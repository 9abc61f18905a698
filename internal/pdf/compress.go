package pdf

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	pdferrors "github.com/a3tai/pdf-tools/internal/pdf/errors"
)

type rasterSettings struct {
	dpi     int
	quality int
}

var compressLevels = map[string]rasterSettings{
	CompressBalanced: {dpi: 150, quality: 70},
	CompressStrong:   {dpi: 96, quality: 50},
}

// Compress shrinks a PDF. The lossless level rewrites the file with pdfcpu's
// optimizer; the other levels rebuild every page from a rendered JPEG and
// fall back to lossless when that does not make the file smaller.
func (s *Service) Compress(ctx context.Context, req CompressRequest) (*Result, error) {
	return run(ctx, s, ToolCompress, func() (res *Result, err error) {
		in, err := s.inputPDF(ToolCompress, req.Input)
		if err != nil {
			return nil, err
		}

		level := strings.ToLower(strings.TrimSpace(req.Level))
		if level == "" {
			level = CompressLossless
		}
		settings, raster := compressLevels[level]
		if !raster && level != CompressLossless {
			return nil, pdferrors.Validation(ToolCompress, "unknown compression level %q (use %s, %s or %s)",
				req.Level, CompressLossless, CompressBalanced, CompressStrong)
		}
		if req.DPI != 0 {
			settings.dpi = req.DPI
		}
		if req.Quality != 0 {
			settings.quality = req.Quality
		}
		if raster {
			if settings.dpi, settings.quality, err = s.renderSettings(ToolCompress, settings.dpi, settings.quality); err != nil {
				return nil, err
			}
		}

		out, err := s.output(ToolCompress, req.Output, outputName(in, "compressed", ".pdf"), in)
		if err != nil {
			return nil, err
		}
		defer removeOnError(&err, out)

		inInfo, err := os.Stat(in)
		if err != nil {
			return nil, err
		}

		var notes []string
		if raster {
			if err = s.rasterRebuild(ctx, ToolCompress, in, out, settings); err != nil {
				return nil, err
			}
			if outInfo, statErr := os.Stat(out); statErr == nil && outInfo.Size() >= inInfo.Size() {
				notes = append(notes, "rendered pages were larger than the original; used lossless optimization instead")
				raster = false
			} else {
				notes = append(notes, "pages were rebuilt from images; text is no longer selectable")
			}
		}
		if !raster {
			if err = api.OptimizeFile(in, out, newConfiguration()); err != nil {
				return nil, err
			}
		}

		res, err = s.result(ToolCompress, out, notes...)
		if err != nil {
			return nil, err
		}
		res.Notes = append(res.Notes, reductionNote(inInfo.Size(), res.Size))
		return res, nil
	})
}

func reductionNote(before, after int64) string {
	if before <= 0 {
		return ""
	}
	saved := float64(before-after) / float64(before) * 100
	return fmt.Sprintf("size %d -> %d bytes (%.1f%% smaller)", before, after, saved)
}

// rasterRebuild renders every page of in and writes a new PDF to out in
// which each page is a single JPEG. Page sizes come from the renderings, so
// this works on files pdfcpu itself cannot parse.
func (s *Service) rasterRebuild(ctx context.Context, tool, in, out string, settings rasterSettings) error {
	count, err := s.rasterizer.PageCount(in)
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("document has no pages")
	}

	dir, cleanup, err := s.scratch(tool)
	if err != nil {
		return err
	}
	defer cleanup()

	conf := newConfiguration()
	parts := make([]string, 0, count)
	err = s.rasterizer.Render(ctx, in, allPages(count), float64(settings.dpi), func(page int, img image.Image) error {
		jpg := filepath.Join(dir, fmt.Sprintf("page_%04d.jpg", page))
		if err := writeJPEG(jpg, img, settings.quality); err != nil {
			return err
		}

		// pixels back to points at the render resolution
		b := img.Bounds()
		width := float64(b.Dx()) * 72 / float64(settings.dpi)
		height := float64(b.Dy()) * 72 / float64(settings.dpi)
		imp, err := pdfcpu.ParseImportDetails(
			fmt.Sprintf("dimensions:%.2f %.2f, position:c, scalefactor:1 rel", width, height), types.POINTS)
		if err != nil {
			return err
		}

		part := filepath.Join(dir, fmt.Sprintf("page_%04d.pdf", page))
		if err := api.ImportImagesFile([]string{jpg}, part, imp, conf); err != nil {
			return err
		}
		parts = append(parts, part)
		return nil
	})
	if err != nil {
		return err
	}

	if len(parts) == 1 {
		return copyFile(parts[0], out)
	}
	return api.MergeCreateFile(parts, out, false, conf)
}
