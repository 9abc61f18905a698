package pdf

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	pdferrors "github.com/a3tai/pdf-tools/internal/pdf/errors"
)

// Watermark defaults
const (
	DefaultWatermarkFont     = "Helvetica"
	DefaultWatermarkSize     = 48
	DefaultWatermarkColor    = "#808080"
	DefaultWatermarkOpacity  = 0.3
	DefaultWatermarkRotation = 45
	DefaultPageNumberFormat  = "{n}"
	DefaultPageNumberSize    = 12
	DefaultPageNumberMargin  = 20
)

var positions = map[string]bool{
	"tl": true, "tc": true, "tr": true,
	"l": true, "c": true, "r": true,
	"bl": true, "bc": true, "br": true,
}

// descriptor builds a pdfcpu watermark description string
type descriptor []string

func (d *descriptor) add(key, format string, args ...interface{}) {
	*d = append(*d, key+":"+fmt.Sprintf(format, args...))
}

func (d descriptor) String() string {
	return strings.Join(d, ", ")
}

// Watermark stamps text or an image onto the selected pages
func (s *Service) Watermark(ctx context.Context, req WatermarkRequest) (*Result, error) {
	return run(ctx, s, ToolWatermark, func() (res *Result, err error) {
		in, err := s.inputPDF(ToolWatermark, req.Input)
		if err != nil {
			return nil, err
		}

		hasText := strings.TrimSpace(req.Text) != ""
		hasImage := strings.TrimSpace(req.Image) != ""
		switch {
		case hasText && hasImage:
			return nil, pdferrors.Validation(ToolWatermark, "use either text or an image, not both")
		case !hasText && !hasImage:
			return nil, pdferrors.Validation(ToolWatermark, "watermark text is required")
		}

		opacity := req.Opacity
		if opacity == 0 {
			opacity = DefaultWatermarkOpacity
		}
		if opacity < 0 || opacity > 1 {
			return nil, pdferrors.Validation(ToolWatermark, "opacity must be between 0 and 1, got %g", opacity)
		}
		rotation := float64(DefaultWatermarkRotation)
		if req.Rotation != nil {
			rotation = *req.Rotation
		}
		if rotation < -180 || rotation > 180 {
			return nil, pdferrors.Validation(ToolWatermark, "rotation must be between -180 and 180, got %g", rotation)
		}
		position, err := checkPosition(ToolWatermark, req.Position, "c")
		if err != nil {
			return nil, err
		}

		var d descriptor
		d.add("position", "%s", position)
		d.add("rotation", "%g", rotation)
		d.add("opacity", "%.2f", opacity)

		var wm *model.Watermark
		if hasText {
			font := req.FontName
			if font == "" {
				font = DefaultWatermarkFont
			}
			size := req.FontSize
			if size == 0 {
				size = DefaultWatermarkSize
			}
			if size < 1 || size > 500 {
				return nil, pdferrors.Validation(ToolWatermark, "font size must be between 1 and 500, got %d", size)
			}
			color, err := hexColor(ToolWatermark, req.Color, DefaultWatermarkColor)
			if err != nil {
				return nil, err
			}
			d.add("fontname", "%s", font)
			d.add("points", "%d", size)
			d.add("fillcolor", "%s", color)
			d.add("scalefactor", "1 abs")

			if wm, err = api.TextWatermark(req.Text, d.String(), req.OnTop, false, types.POINTS); err != nil {
				return nil, pdferrors.Validation(ToolWatermark, "invalid watermark settings").WithDetails("%v", err)
			}
		} else {
			img, err := s.input(ToolWatermark, req.Image)
			if err != nil {
				return nil, err
			}
			scale := req.Scale
			if scale == 0 {
				scale = 0.5
			}
			if scale < 0.01 || scale > 1 {
				return nil, pdferrors.Validation(ToolWatermark, "scale must be between 0.01 and 1, got %g", scale)
			}
			dir, cleanup, err := s.scratch(ToolWatermark)
			if err != nil {
				return nil, err
			}
			defer cleanup()
			prepared, err := prepareImage(ToolWatermark, img, req.Image, dir, 0)
			if err != nil {
				return nil, err
			}
			d.add("scalefactor", "%g rel", scale)

			if wm, err = api.ImageWatermark(prepared.Path, d.String(), req.OnTop, false, types.POINTS); err != nil {
				return nil, pdferrors.Validation(ToolWatermark, "invalid watermark settings").WithDetails("%v", err)
			}
		}

		_, pages, err := s.selectPages(ToolWatermark, in, req.Pages)
		if err != nil {
			return nil, err
		}

		out, err := s.output(ToolWatermark, req.Output, outputName(in, "watermarked", ".pdf"), in)
		if err != nil {
			return nil, err
		}
		defer removeOnError(&err, out)

		if err = api.AddWatermarksFile(in, out, pageStrings(uniquePages(pages)), wm, newConfiguration()); err != nil {
			return nil, err
		}
		return s.result(ToolWatermark, out)
	})
}

// Sign stamps a signature image onto one page. The image keeps its aspect
// ratio; its lower left corner lands at X, Y points from the page's lower
// left corner.
func (s *Service) Sign(ctx context.Context, req SignRequest) (*Result, error) {
	return run(ctx, s, ToolSign, func() (res *Result, err error) {
		in, err := s.inputPDF(ToolSign, req.Input)
		if err != nil {
			return nil, err
		}
		img, err := s.input(ToolSign, req.Image)
		if err != nil {
			return nil, err
		}
		if req.X < 0 || req.Y < 0 {
			return nil, pdferrors.Validation(ToolSign, "position must not be negative")
		}
		if req.Scale < 0 || req.Width < 0 {
			return nil, pdferrors.Validation(ToolSign, "scale and width must not be negative")
		}

		count, err := pageCount(in)
		if err != nil {
			return nil, err
		}
		page := req.Page
		if page == 0 {
			page = 1
		}
		if page < 1 || page > count {
			return nil, pdferrors.Validation(ToolSign, "page %d is out of range (document has %d pages)", page, count)
		}

		dir, cleanup, err := s.scratch(ToolSign)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		prepared, err := prepareImage(ToolSign, img, req.Image, dir, 0)
		if err != nil {
			return nil, err
		}

		scale := req.Scale
		if req.Width > 0 {
			scale = req.Width / float64(prepared.Width)
		}
		if scale == 0 {
			scale = 1
		}

		var d descriptor
		d.add("position", "bl")
		d.add("offset", "%.2f %.2f", req.X, req.Y)
		d.add("scalefactor", "%.4f abs", scale)
		d.add("rotation", "0")
		d.add("opacity", "1")

		wm, err := api.ImageWatermark(prepared.Path, d.String(), true, false, types.POINTS)
		if err != nil {
			return nil, err
		}

		out, err := s.output(ToolSign, req.Output, outputName(in, "signed", ".pdf"), in)
		if err != nil {
			return nil, err
		}
		defer removeOnError(&err, out)

		if err = api.AddWatermarksFile(in, out, []string{strconv.Itoa(page)}, wm, newConfiguration()); err != nil {
			return nil, err
		}
		return s.result(ToolSign, out)
	})
}

// PageNumbers stamps a number on each selected page. The first selected
// page gets StartAt; {n} in Format is the number and {total} the last number.
func (s *Service) PageNumbers(ctx context.Context, req PageNumbersRequest) (*Result, error) {
	return run(ctx, s, ToolPageNumbers, func() (res *Result, err error) {
		in, err := s.inputPDF(ToolPageNumbers, req.Input)
		if err != nil {
			return nil, err
		}

		format := req.Format
		if format == "" {
			format = DefaultPageNumberFormat
		}
		if !strings.Contains(format, "{n}") {
			return nil, pdferrors.Validation(ToolPageNumbers, "format must contain {n}")
		}
		start := req.StartAt
		if start == 0 {
			start = 1
		}
		if start < 0 {
			return nil, pdferrors.Validation(ToolPageNumbers, "start number must be positive, got %d", start)
		}
		size := req.FontSize
		if size == 0 {
			size = DefaultPageNumberSize
		}
		if size < 1 || size > 200 {
			return nil, pdferrors.Validation(ToolPageNumbers, "font size must be between 1 and 200, got %d", size)
		}
		margin := req.Margin
		if margin == 0 {
			margin = DefaultPageNumberMargin
		}
		if margin < 0 {
			return nil, pdferrors.Validation(ToolPageNumbers, "margin must not be negative")
		}
		position, err := checkPosition(ToolPageNumbers, req.Position, "bc")
		if err != nil {
			return nil, err
		}
		color, err := hexColor(ToolPageNumbers, req.Color, "#000000")
		if err != nil {
			return nil, err
		}

		_, pages, err := s.selectPages(ToolPageNumbers, in, req.Pages)
		if err != nil {
			return nil, err
		}
		pages = uniquePages(pages)

		dx, dy := marginOffset(position, margin)
		var d descriptor
		d.add("fontname", "%s", DefaultWatermarkFont)
		d.add("points", "%d", size)
		d.add("position", "%s", position)
		d.add("offset", "%g %g", dx, dy)
		d.add("scalefactor", "1 abs")
		d.add("rotation", "0")
		d.add("opacity", "1")
		d.add("fillcolor", "%s", color)
		desc := d.String()

		total := strconv.Itoa(start + len(pages) - 1)
		stamps := make(map[int]*model.Watermark, len(pages))
		for i, page := range pages {
			if err = ctx.Err(); err != nil {
				return nil, err
			}
			text := strings.ReplaceAll(format, "{n}", strconv.Itoa(start+i))
			text = strings.ReplaceAll(text, "{total}", total)
			if stamps[page], err = api.TextWatermark(text, desc, true, false, types.POINTS); err != nil {
				return nil, err
			}
		}

		out, err := s.output(ToolPageNumbers, req.Output, outputName(in, "numbered", ".pdf"), in)
		if err != nil {
			return nil, err
		}
		defer removeOnError(&err, out)

		if err = api.AddWatermarksMapFile(in, out, stamps, newConfiguration()); err != nil {
			return nil, err
		}
		return s.result(ToolPageNumbers, out)
	})
}

func checkPosition(tool, position, fallback string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(position))
	if p == "" {
		return fallback, nil
	}
	if !positions[p] {
		return "", pdferrors.Validation(tool, "unknown position %q (use tl, tc, tr, l, c, r, bl, bc or br)", position)
	}
	return p, nil
}

// marginOffset moves an anchored stamp margin points away from the page edges
func marginOffset(position string, margin float64) (float64, float64) {
	var dx, dy float64
	switch {
	case strings.HasSuffix(position, "l"):
		dx = margin
	case strings.HasSuffix(position, "r"):
		dx = -margin
	}
	switch {
	case strings.HasPrefix(position, "b"):
		dy = margin
	case strings.HasPrefix(position, "t"):
		dy = -margin
	}
	return dx, dy
}
