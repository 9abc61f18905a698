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

// PDFToJPG renders the selected pages to JPEG files packed in a ZIP archive
func (s *Service) PDFToJPG(ctx context.Context, req PDFToImagesRequest) (*Result, error) {
	return run(ctx, s, ToolPDFToJPG, func() (res *Result, err error) {
		in, err := s.inputPDF(ToolPDFToJPG, req.Input)
		if err != nil {
			return nil, err
		}
		dpi, quality, err := s.renderSettings(ToolPDFToJPG, req.DPI, req.Quality)
		if err != nil {
			return nil, err
		}
		_, pages, err := s.selectPages(ToolPDFToJPG, in, req.Pages)
		if err != nil {
			return nil, err
		}
		pages = uniquePages(pages)

		out, err := s.output(ToolPDFToJPG, req.Output, outputName(in, "images", ".zip"), in)
		if err != nil {
			return nil, err
		}

		dir, cleanup, err := s.scratch(ToolPDFToJPG)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		defer removeOnError(&err, out)

		base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		var images []string
		err = s.rasterizer.Render(ctx, in, pages, float64(dpi), func(page int, img image.Image) error {
			name := filepath.Join(dir, fmt.Sprintf("%s_page_%d.jpg", base, page))
			if err := writeJPEG(name, img, quality); err != nil {
				return err
			}
			images = append(images, name)
			return nil
		})
		if err != nil {
			return nil, err
		}

		entries, err := writeZip(out, images)
		if err != nil {
			return nil, err
		}

		res, err = s.result(ToolPDFToJPG, out)
		if err != nil {
			return nil, err
		}
		res.Pages = len(pages)
		res.Files = entries
		return res, nil
	})
}

// JPGToPDF builds a PDF with one image per page, in the given order
func (s *Service) JPGToPDF(ctx context.Context, req ImagesToPDFRequest) (*Result, error) {
	return run(ctx, s, ToolJPGToPDF, func() (res *Result, err error) {
		inputs, err := s.inputs(ToolJPGToPDF, req.Inputs, 1, s.input)
		if err != nil {
			return nil, err
		}
		imp, err := importSettings(req.PageSize, req.Landscape)
		if err != nil {
			return nil, err
		}

		fallback := "images.pdf"
		if len(inputs) == 1 {
			fallback = outputName(inputs[0], "converted", ".pdf")
		}
		out, err := s.output(ToolJPGToPDF, req.Output, fallback, inputs...)
		if err != nil {
			return nil, err
		}

		dir, cleanup, err := s.scratch(ToolJPGToPDF)
		if err != nil {
			return nil, err
		}
		defer cleanup()

		images := make([]string, 0, len(inputs))
		for i, in := range inputs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			img, err := prepareImage(ToolJPGToPDF, in, req.Inputs[i], dir, i)
			if err != nil {
				return nil, err
			}
			images = append(images, img.Path)
		}

		// ImportImagesFile appends to an existing file
		if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		defer removeOnError(&err, out)

		if err = api.ImportImagesFile(images, out, imp, newConfiguration()); err != nil {
			return nil, err
		}

		return s.result(ToolJPGToPDF, out)
	})
}

var paperSizes = map[string]string{
	"a3":     "A3",
	"a4":     "A4",
	"a5":     "A5",
	"letter": "Letter",
	"legal":  "Legal",
}

// importSettings maps a page size choice onto pdfcpu import details. "fit"
// sizes each page to its image; a paper size centers the image with a margin.
func importSettings(pageSize string, landscape bool) (*pdfcpu.Import, error) {
	size := strings.ToLower(strings.TrimSpace(pageSize))
	if size == "" || size == "fit" {
		return pdfcpu.ParseImportDetails("position:full", types.POINTS)
	}

	form, ok := paperSizes[size]
	if !ok {
		return nil, pdferrors.Validation(ToolJPGToPDF, "unknown page size %q (use fit, A3, A4, A5, Letter or Legal)", pageSize)
	}
	if landscape {
		form += "L"
	}
	return pdfcpu.ParseImportDetails("formsize:"+form+", position:c, scalefactor:0.95 rel", types.POINTS)
}

// renderSettings applies service defaults and checks bounds
func (s *Service) renderSettings(tool string, dpi, quality int) (int, int, error) {
	if dpi == 0 {
		dpi = s.dpi
	}
	if quality == 0 {
		quality = s.quality
	}
	if dpi < 36 || dpi > 600 {
		return 0, 0, pdferrors.Validation(tool, "dpi must be between 36 and 600, got %d", dpi)
	}
	if quality < 1 || quality > 100 {
		return 0, 0, pdferrors.Validation(tool, "jpeg quality must be between 1 and 100, got %d", quality)
	}
	return dpi, quality, nil
}
