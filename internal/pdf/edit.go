package pdf

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	pdferrors "github.com/a3tai/pdf-tools/internal/pdf/errors"
)

// EditPDF draws annotation rectangles onto their pages. Each annotation is
// rendered to a transparent PNG and stamped on top of the page content.
func (s *Service) EditPDF(ctx context.Context, req EditRequest) (*Result, error) {
	return run(ctx, s, ToolEditPDF, func() (res *Result, err error) {
		in, err := s.inputPDF(ToolEditPDF, req.Input)
		if err != nil {
			return nil, err
		}
		if len(req.Annotations) == 0 {
			return nil, pdferrors.Validation(ToolEditPDF, "no annotations given")
		}

		count, err := pageCount(in)
		if err != nil {
			return nil, err
		}

		styles := make([]annotationStyle, len(req.Annotations))
		for i, a := range req.Annotations {
			if styles[i], err = checkAnnotation(a, count); err != nil {
				return nil, pdferrors.Validation(ToolEditPDF, "annotation %d: %v", i+1, err)
			}
		}

		dir, cleanup, err := s.scratch(ToolEditPDF)
		if err != nil {
			return nil, err
		}
		defer cleanup()

		stamps := make(map[int][]*model.Watermark)
		for i, a := range req.Annotations {
			if err = ctx.Err(); err != nil {
				return nil, err
			}

			png := filepath.Join(dir, fmt.Sprintf("annotation_%03d.png", i+1))
			if err = writePNG(png, renderAnnotation(a, styles[i])); err != nil {
				return nil, err
			}

			wm, err := api.ImageWatermark(png, overlayDescription(a.X, a.Y), true, false, types.POINTS)
			if err != nil {
				return nil, err
			}
			stamps[a.Page] = append(stamps[a.Page], wm)
		}

		out, err := s.output(ToolEditPDF, req.Output, outputName(in, "edited", ".pdf"), in)
		if err != nil {
			return nil, err
		}
		defer removeOnError(&err, out)

		if err = api.AddWatermarksSliceMapFile(in, out, stamps, newConfiguration()); err != nil {
			return nil, err
		}
		return s.result(ToolEditPDF, out)
	})
}

// overlayDescription places an overlay's lower left corner at x, y
func overlayDescription(x, y float64) string {
	var d descriptor
	d.add("position", "bl")
	d.add("offset", "%.2f %.2f", x, y)
	d.add("scalefactor", "%g abs", 1.0/overlayScale)
	d.add("rotation", "0")
	d.add("opacity", "1")
	return d.String()
}

func checkAnnotation(a Annotation, pages int) (annotationStyle, error) {
	if a.Page < 1 || a.Page > pages {
		return annotationStyle{}, fmt.Errorf("page %d is out of range (document has %d pages)", a.Page, pages)
	}
	if a.X < 0 || a.Y < 0 {
		return annotationStyle{}, fmt.Errorf("position must not be negative")
	}
	if a.Width <= 0 || a.Height <= 0 {
		return annotationStyle{}, fmt.Errorf("width and height must be positive")
	}
	if a.Width > maxAnnotationSize || a.Height > maxAnnotationSize {
		return annotationStyle{}, fmt.Errorf("width and height must not exceed %d points", maxAnnotationSize)
	}
	if a.BorderWidth < 0 || a.FontSize < 0 {
		return annotationStyle{}, fmt.Errorf("border width and font size must not be negative")
	}

	st, err := parseAnnotationStyle(a)
	if err != nil {
		return annotationStyle{}, err
	}
	if st.fill == nil && st.border == nil && st.text == nil {
		return annotationStyle{}, fmt.Errorf("nothing to draw: set text, a fill color or a border")
	}
	return st, nil
}
