package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	pdferrors "github.com/a3tai/pdf-tools/internal/pdf/errors"
)

// Rotate turns the selected pages clockwise. Rotation must be a multiple of
// 90; negative values rotate counterclockwise.
func (s *Service) Rotate(ctx context.Context, req RotateRequest) (*Result, error) {
	return run(ctx, s, ToolRotate, func() (res *Result, err error) {
		in, err := s.inputPDF(ToolRotate, req.Input)
		if err != nil {
			return nil, err
		}
		rotation, err := NormalizeRotation(req.Rotation)
		if err != nil {
			return nil, pdferrors.Validation(ToolRotate, "%v", err)
		}
		_, pages, err := s.selectPages(ToolRotate, in, req.Pages)
		if err != nil {
			return nil, err
		}

		out, err := s.output(ToolRotate, req.Output, outputName(in, "rotated", ".pdf"), in)
		if err != nil {
			return nil, err
		}
		defer removeOnError(&err, out)

		if rotation == 0 {
			if err = copyFile(in, out); err != nil {
				return nil, err
			}
			return s.result(ToolRotate, out, "rotation is a multiple of 360; pages are unchanged")
		}

		if err = api.RotateFile(in, out, rotation, pageStrings(uniquePages(pages)), newConfiguration()); err != nil {
			return nil, err
		}
		return s.result(ToolRotate, out)
	})
}

// NormalizeRotation maps a multiple of 90 onto 0, 90, 180 or 270
func NormalizeRotation(degrees int) (int, error) {
	if degrees%90 != 0 {
		return 0, fmt.Errorf("rotation must be a multiple of 90, got %d", degrees)
	}
	return ((degrees % 360) + 360) % 360, nil
}

// Organize rewrites the document with exactly the listed pages in the
// listed order. Pages may repeat; unlisted pages are dropped.
func (s *Service) Organize(ctx context.Context, req PagesRequest) (*Result, error) {
	return run(ctx, s, ToolOrganize, func() (res *Result, err error) {
		in, err := s.inputPDF(ToolOrganize, req.Input)
		if err != nil {
			return nil, err
		}
		if req.Pages == "" {
			return nil, pdferrors.Validation(ToolOrganize, "no page order given")
		}
		_, pages, err := s.selectPages(ToolOrganize, in, req.Pages)
		if err != nil {
			return nil, err
		}

		out, err := s.output(ToolOrganize, req.Output, outputName(in, "organized", ".pdf"), in)
		if err != nil {
			return nil, err
		}
		defer removeOnError(&err, out)

		if err = api.CollectFile(in, out, pageStrings(pages), newConfiguration()); err != nil {
			return nil, err
		}
		return s.result(ToolOrganize, out)
	})
}

// RemovePages deletes the selected pages. At least one page must remain.
func (s *Service) RemovePages(ctx context.Context, req PagesRequest) (*Result, error) {
	return run(ctx, s, ToolRemovePages, func() (res *Result, err error) {
		in, err := s.inputPDF(ToolRemovePages, req.Input)
		if err != nil {
			return nil, err
		}
		if req.Pages == "" {
			return nil, pdferrors.Validation(ToolRemovePages, "no pages selected")
		}
		count, pages, err := s.selectPages(ToolRemovePages, in, req.Pages)
		if err != nil {
			return nil, err
		}
		pages = uniquePages(pages)
		if len(pages) >= count {
			return nil, pdferrors.Validation(ToolRemovePages, "cannot remove every page of the document")
		}

		out, err := s.output(ToolRemovePages, req.Output, outputName(in, "removed", ".pdf"), in)
		if err != nil {
			return nil, err
		}
		defer removeOnError(&err, out)

		if err = api.RemovePagesFile(in, out, pageStrings(pages), newConfiguration()); err != nil {
			return nil, err
		}
		return s.result(ToolRemovePages, out)
	})
}

// ExtractPages keeps only the selected pages, in document order
func (s *Service) ExtractPages(ctx context.Context, req PagesRequest) (*Result, error) {
	return run(ctx, s, ToolExtractPages, func() (res *Result, err error) {
		in, err := s.inputPDF(ToolExtractPages, req.Input)
		if err != nil {
			return nil, err
		}
		if req.Pages == "" {
			return nil, pdferrors.Validation(ToolExtractPages, "no pages selected")
		}
		_, pages, err := s.selectPages(ToolExtractPages, in, req.Pages)
		if err != nil {
			return nil, err
		}

		out, err := s.output(ToolExtractPages, req.Output, outputName(in, "extracted", ".pdf"), in)
		if err != nil {
			return nil, err
		}
		defer removeOnError(&err, out)

		if err = api.TrimFile(in, out, pageStrings(uniquePages(pages)), newConfiguration()); err != nil {
			return nil, err
		}
		return s.result(ToolExtractPages, out)
	})
}

// ExtractImages pulls the embedded images of the selected pages into a ZIP archive
func (s *Service) ExtractImages(ctx context.Context, req PagesRequest) (*Result, error) {
	return run(ctx, s, ToolExtractImages, func() (res *Result, err error) {
		in, err := s.inputPDF(ToolExtractImages, req.Input)
		if err != nil {
			return nil, err
		}
		_, pages, err := s.selectPages(ToolExtractImages, in, req.Pages)
		if err != nil {
			return nil, err
		}

		out, err := s.output(ToolExtractImages, req.Output, outputName(in, "images", ".zip"), in)
		if err != nil {
			return nil, err
		}

		dir, cleanup, err := s.scratch(ToolExtractImages)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		defer removeOnError(&err, out)

		if err = api.ExtractImagesFile(in, dir, pageStrings(uniquePages(pages)), newConfiguration()); err != nil {
			return nil, err
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		var images []string
		for _, e := range entries {
			if !e.IsDir() {
				images = append(images, filepath.Join(dir, e.Name()))
			}
		}
		if len(images) == 0 {
			return nil, pdferrors.Validation(ToolExtractImages, "the selected pages contain no extractable images")
		}
		sort.Strings(images)

		names, err := writeZip(out, images)
		if err != nil {
			return nil, err
		}

		res, err = s.result(ToolExtractImages, out)
		if err != nil {
			return nil, err
		}
		res.Files = names
		return res, nil
	})
}
