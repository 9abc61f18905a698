package pdf

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	pdferrors "github.com/a3tai/pdf-tools/internal/pdf/errors"
)

// Merge concatenates the inputs, in order, into one PDF
func (s *Service) Merge(ctx context.Context, req MergeRequest) (*Result, error) {
	return run(ctx, s, ToolMerge, func() (res *Result, err error) {
		inputs, err := s.inputs(ToolMerge, req.Inputs, 2, s.inputPDF)
		if err != nil {
			return nil, err
		}

		out, err := s.output(ToolMerge, req.Output, "merged.pdf", inputs...)
		if err != nil {
			return nil, err
		}
		defer removeOnError(&err, out)

		if err = api.MergeCreateFile(inputs, out, false, newConfiguration()); err != nil {
			return nil, err
		}
		return s.result(ToolMerge, out)
	})
}

// Split cuts a PDF into parts, either every Span pages or along explicit
// ranges, and packs the parts into a ZIP archive
func (s *Service) Split(ctx context.Context, req SplitRequest) (*Result, error) {
	return run(ctx, s, ToolSplit, func() (res *Result, err error) {
		in, err := s.inputPDF(ToolSplit, req.Input)
		if err != nil {
			return nil, err
		}
		if req.Span < 0 {
			return nil, pdferrors.Validation(ToolSplit, "span must be positive, got %d", req.Span)
		}

		count, err := pageCount(in)
		if err != nil {
			return nil, err
		}

		var ranges []pageRange
		if strings.TrimSpace(req.Ranges) != "" {
			if ranges, err = parseRanges(req.Ranges, count); err != nil {
				return nil, pdferrors.Validation(ToolSplit, "%v", err)
			}
		} else {
			span := req.Span
			if span == 0 {
				span = 1
			}
			ranges = spanRanges(count, span)
		}
		if len(ranges) > s.maxFiles*10 {
			return nil, pdferrors.Validation(ToolSplit, "too many parts: %d", len(ranges))
		}

		out, err := s.output(ToolSplit, req.Output, outputName(in, "split", ".zip"), in)
		if err != nil {
			return nil, err
		}

		dir, cleanup, err := s.scratch(ToolSplit)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		defer removeOnError(&err, out)

		base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		conf := newConfiguration()
		parts := make([]string, 0, len(ranges))
		for i, r := range ranges {
			if err = ctx.Err(); err != nil {
				return nil, err
			}
			part := filepath.Join(dir, fmt.Sprintf("%s_%02d_pages_%s.pdf", base, i+1, r))
			if err = api.TrimFile(in, part, []string{r.String()}, conf); err != nil {
				return nil, err
			}
			parts = append(parts, part)
		}

		entries, err := writeZip(out, parts)
		if err != nil {
			return nil, err
		}

		res, err = s.result(ToolSplit, out)
		if err != nil {
			return nil, err
		}
		res.Pages = count
		res.Files = entries
		return res, nil
	})
}
