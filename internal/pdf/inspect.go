package pdf

import (
	"context"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	pdferrors "github.com/a3tai/pdf-tools/internal/pdf/errors"
)

// Info reports page count, page sizes, metadata and encryption. An
// encrypted file that cannot be opened without a password still reports
// its size and Encrypted=true.
func (s *Service) Info(ctx context.Context, req InfoRequest) (*InfoResult, error) {
	return run(ctx, s, ToolInfo, func() (*InfoResult, error) {
		in, err := s.inputPDF(ToolInfo, req.Input)
		if err != nil {
			return nil, err
		}
		stat, err := os.Stat(in)
		if err != nil {
			return nil, err
		}
		result := &InfoResult{Path: in, Size: stat.Size()}

		file, err := os.Open(in)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		pdfCtx, err := api.ReadValidateAndOptimize(file, newConfiguration())
		if err != nil {
			if isPasswordError(err) {
				result.Encrypted = true
				return result, nil
			}
			return nil, err
		}
		if err := pdfCtx.EnsurePageCount(); err != nil {
			return nil, err
		}

		result.Pages = pdfCtx.PageCount
		result.Version = pdfCtx.HeaderVersion.String()
		result.Title = pdfCtx.Title
		result.Author = pdfCtx.Author
		result.Subject = pdfCtx.Subject
		result.Creator = pdfCtx.Creator
		result.Producer = pdfCtx.Producer
		result.Encrypted = pdfCtx.Encrypt != nil

		dims, err := pdfCtx.PageDims()
		if err != nil {
			return nil, err
		}
		for i, dim := range dims {
			page := PageDimensions{Page: i + 1, Width: dim.Width, Height: dim.Height}
			if _, _, inherited, err := pdfCtx.PageDict(i+1, false); err == nil && inherited != nil {
				page.Rotation = inherited.Rotate
			}
			result.PageSizes = append(result.PageSizes, page)
		}

		return result, nil
	})
}

// Validate checks a PDF strictly, then leniently, and finally probes
// whether a plain reader can open it
func (s *Service) Validate(ctx context.Context, req ValidateRequest) (*ValidateResult, error) {
	return run(ctx, s, ToolValidate, func() (*ValidateResult, error) {
		in, err := s.inputPDF(ToolValidate, req.Input)
		if err != nil {
			return nil, err
		}
		result := &ValidateResult{Path: in}

		strict := newConfiguration()
		strict.ValidationMode = model.ValidationStrict
		strictErr := api.ValidateFile(in, strict)
		if strictErr == nil {
			result.Valid = true
			result.Strict = true
		} else if relaxedErr := api.ValidateFile(in, newConfiguration()); relaxedErr == nil {
			result.Valid = true
			result.Message = "minor issues: " + strictErr.Error()
		} else {
			result.Message = relaxedErr.Error()
		}

		if f, _, err := pdf.Open(in); err == nil {
			result.Readable = true
			f.Close()
		}

		return result, nil
	})
}

// PDFToText extracts the plain text of the selected pages. When Output is
// set the text is also written there, pages separated by form feeds.
func (s *Service) PDFToText(ctx context.Context, req TextRequest) (*TextResult, error) {
	return run(ctx, s, ToolPDFToText, func() (result *TextResult, err error) {
		in, err := s.inputPDF(ToolPDFToText, req.Input)
		if err != nil {
			return nil, err
		}

		f, pdfReader, err := pdf.Open(in)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		count := pdfReader.NumPage()
		pages, err := parsePages(req.Pages, count)
		if err != nil {
			return nil, pdferrors.Validation(ToolPDFToText, "%v", err)
		}

		result = &TextResult{Path: in, Pages: count, Text: []PageText{}}
		for _, pageNum := range uniquePages(pages) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			page := pdfReader.Page(pageNum)
			if page.V.IsNull() {
				continue
			}
			content, err := page.GetPlainText(nil)
			if err != nil {
				return nil, err
			}
			result.Text = append(result.Text, PageText{Page: pageNum, Text: strings.TrimSpace(content)})
		}

		if req.Output != "" {
			out, err := s.output(ToolPDFToText, req.Output, "", in)
			if err != nil {
				return nil, err
			}
			if err := os.WriteFile(out, []byte(result.Joined()), 0o644); err != nil {
				_ = os.Remove(out)
				return nil, err
			}
			result.Output = out
		}

		return result, nil
	})
}
