package pdf

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/a3tai/pdf-tools/internal/logging"
	pdferrors "github.com/a3tai/pdf-tools/internal/pdf/errors"
	"github.com/a3tai/pdf-tools/internal/pdf/security"
	"github.com/a3tai/pdf-tools/internal/telemetry"
)

// Defaults applied when ServiceConfig leaves a field zero
const (
	DefaultMaxFileSize = 100 * 1024 * 1024
	DefaultMaxFiles    = 50
	DefaultDPI         = 150
	DefaultJPEGQuality = 85
)

// ServiceConfig configures a Service
type ServiceConfig struct {
	// Directory is the workspace root. Every input and output must live below it.
	Directory   string
	MaxFileSize int64
	MaxFiles    int
	DefaultDPI  int
	JPEGQuality int
	// Rasterizer renders pages for pdf-to-jpg and raster compression.
	// Defaults to MuPDF through go-fitz.
	Rasterizer Rasterizer
	Metrics    *telemetry.Metrics
}

// Service runs the PDF tools against files in the workspace directory
type Service struct {
	maxFileSize   int64
	maxFiles      int
	dpi           int
	quality       int
	rasterizer    Rasterizer
	metrics       *telemetry.Metrics
	pathValidator *security.PathValidator
}

// NewService creates a new PDF service
func NewService(cfg ServiceConfig) (*Service, error) {
	pathValidator, err := security.NewPathValidator(cfg.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	s := &Service{
		maxFileSize:   cfg.MaxFileSize,
		maxFiles:      cfg.MaxFiles,
		dpi:           cfg.DefaultDPI,
		quality:       cfg.JPEGQuality,
		rasterizer:    cfg.Rasterizer,
		metrics:       cfg.Metrics,
		pathValidator: pathValidator,
	}
	if s.maxFileSize <= 0 {
		s.maxFileSize = DefaultMaxFileSize
	}
	if s.maxFiles <= 0 {
		s.maxFiles = DefaultMaxFiles
	}
	if s.dpi <= 0 {
		s.dpi = DefaultDPI
	}
	if s.quality <= 0 {
		s.quality = DefaultJPEGQuality
	}
	if s.rasterizer == nil {
		s.rasterizer = FitzRasterizer{}
	}

	return s, nil
}

// Directory returns the workspace root
func (s *Service) Directory() string {
	return s.pathValidator.Root()
}

// MaxFileSize returns the configured maximum input size in bytes
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

// MaxFiles returns the maximum number of inputs per request
func (s *Service) MaxFiles() int {
	return s.maxFiles
}

// run executes one tool operation, converting its error into a ToolError
// and recording duration and outcome
func run[T any](ctx context.Context, s *Service, tool string, op func() (T, error)) (T, error) {
	start := time.Now()

	var (
		res T
		err error
	)
	if err = ctx.Err(); err == nil {
		res, err = op()
	}
	elapsed := time.Since(start)

	if err != nil {
		err = failure(tool, err)
		s.metrics.RecordRun(ctx, tool, elapsed, 0, err)
		logging.Warn().
			With(logging.Tool(tool), logging.Duration(elapsed), logging.Err(err)).
			Msg("tool failed")
		var zero T
		return zero, err
	}

	size, fields := resultFields(res)
	s.metrics.RecordRun(ctx, tool, elapsed, size, nil)
	logging.Info().
		With(logging.Tool(tool), logging.Duration(elapsed)).
		With(fields...).
		Msg("tool finished")
	return res, nil
}

// resultFields picks the output size and the log fields that describe a
// tool's result. Fields a result does not carry are left out.
func resultFields(res any) (int64, []logging.Field) {
	var (
		size  int64
		path  string
		pages int
	)
	switch r := res.(type) {
	case *Result:
		if r != nil {
			size, path, pages = r.Size, r.Output, r.Pages
		}
	case *TextResult:
		if r != nil {
			path, pages = r.Path, r.Pages
			if r.Output != "" {
				path = r.Output
			}
		}
	case *InfoResult:
		if r != nil {
			path, pages = r.Path, r.Pages
		}
	case *ValidateResult:
		if r != nil {
			path = r.Path
		}
	case *ListFilesResult:
		if r != nil {
			path = r.Directory
		}
	}

	var fields []logging.Field
	if path != "" {
		fields = append(fields, logging.Path(path))
	}
	if pages > 0 {
		fields = append(fields, logging.Pages(pages))
	}
	return size, fields
}

// failure turns a library error into the tool's user-facing ToolError
func failure(tool string, err error) error {
	var te *pdferrors.ToolError
	if errors.As(err, &te) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return pdferrors.New(pdferrors.KindInternal, tool, "The operation was canceled.", err)
	}
	if isPasswordError(err) {
		return pdferrors.Password(tool, err)
	}
	return pdferrors.Processing(tool, FailureMessage(tool), err)
}

func isPasswordError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password")
}

var failureMessages = map[string]string{
	ToolMerge:         "Could not merge the PDFs. One of the files might be corrupted or password protected.",
	ToolSplit:         "Could not split the PDF. The file might be corrupted or password protected.",
	ToolCompress:      "Could not compress the PDF. The file might be corrupted or password protected.",
	ToolWatermark:     "Could not add the watermark. The file might be corrupted or password protected.",
	ToolSign:          "Could not sign the PDF. Check the signature image and the page number.",
	ToolRotate:        "Could not rotate the PDF. The file might be corrupted or password protected.",
	ToolPageNumbers:   "Could not add page numbers. The file might be corrupted or password protected.",
	ToolPDFToJPG:      "Could not convert the PDF to images. The file might be corrupted or password protected.",
	ToolJPGToPDF:      "Could not convert the images to PDF. One of the images might be corrupted.",
	ToolProtect:       "Could not protect the PDF. The file might be corrupted or already protected.",
	ToolUnlock:        "Could not unlock the PDF. The password might be wrong or the file corrupted.",
	ToolRepair:        "Could not repair the PDF. The file is damaged beyond recovery.",
	ToolEditPDF:       "Could not edit the PDF. The file might be corrupted or password protected.",
	ToolOrganize:      "Could not reorder the pages. The file might be corrupted or password protected.",
	ToolRemovePages:   "Could not remove the pages. The file might be corrupted or password protected.",
	ToolExtractPages:  "Could not extract the pages. The file might be corrupted or password protected.",
	ToolExtractImages: "Could not extract the images. The file might be corrupted or password protected.",
	ToolPDFToText:     "Could not extract text from the PDF. The file might be corrupted or scanned.",
	ToolInfo:          "Could not read the PDF. The file might be corrupted.",
	ToolValidate:      "Could not validate the PDF.",
	ToolListFiles:     "Could not list the workspace files.",
}

// FailureMessage returns the message shown when tool fails
func FailureMessage(tool string) string {
	if msg, ok := failureMessages[tool]; ok {
		return msg
	}
	return "The operation failed."
}

var disableConfigDir sync.Once

// newConfiguration returns a pdfcpu configuration that tolerates minor
// structural defects and never touches the user's config directory
func newConfiguration() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// selectPages counts the pages of path and resolves expr against them
func (s *Service) selectPages(tool, path, expr string) (int, []int, error) {
	count, err := pageCount(path)
	if err != nil {
		return 0, nil, err
	}
	pages, err := parsePages(expr, count)
	if err != nil {
		return 0, nil, pdferrors.Validation(tool, "%v", err)
	}
	return count, pages, nil
}

func pageCount(path string) (int, error) {
	disableConfigDir.Do(api.DisableConfigDir)
	return api.PageCountFile(path)
}
