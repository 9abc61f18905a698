package pdf

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/a3tai/pdf-tools/internal/logging"
	pdferrors "github.com/a3tai/pdf-tools/internal/pdf/errors"
)

// Protect encrypts a PDF with AES-256. Opening it needs the user password;
// the owner password additionally lifts permission restrictions.
func (s *Service) Protect(ctx context.Context, req ProtectRequest) (*Result, error) {
	return run(ctx, s, ToolProtect, func() (res *Result, err error) {
		in, err := s.inputPDF(ToolProtect, req.Input)
		if err != nil {
			return nil, err
		}
		if req.UserPassword == "" {
			return nil, pdferrors.Validation(ToolProtect, "a password is required")
		}
		owner := req.OwnerPassword
		if owner == "" {
			owner = req.UserPassword
		}

		out, err := s.output(ToolProtect, req.Output, outputName(in, "protected", ".pdf"), in)
		if err != nil {
			return nil, err
		}
		defer removeOnError(&err, out)

		disableConfigDir.Do(api.DisableConfigDir)
		conf := model.NewAESConfiguration(req.UserPassword, owner, 256)
		conf.ValidationMode = model.ValidationRelaxed

		if err = api.EncryptFile(in, out, conf); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "already encrypted") {
				return nil, pdferrors.Validation(ToolProtect, "this PDF is already password protected")
			}
			return nil, err
		}
		return s.result(ToolProtect, out)
	})
}

// Unlock removes encryption. Password may be either the user or the owner
// password; it may be empty for files restricted only by an owner password.
func (s *Service) Unlock(ctx context.Context, req UnlockRequest) (*Result, error) {
	return run(ctx, s, ToolUnlock, func() (res *Result, err error) {
		in, err := s.inputPDF(ToolUnlock, req.Input)
		if err != nil {
			return nil, err
		}

		out, err := s.output(ToolUnlock, req.Output, outputName(in, "unlocked", ".pdf"), in)
		if err != nil {
			return nil, err
		}
		defer removeOnError(&err, out)

		conf := newConfiguration()
		conf.UserPW = req.Password
		conf.OwnerPW = req.Password

		if err = api.DecryptFile(in, out, conf); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "not encrypted") {
				return nil, pdferrors.Validation(ToolUnlock, "this PDF is not password protected")
			}
			return nil, err
		}
		return s.result(ToolUnlock, out)
	})
}

var (
	pdfHeader = []byte("%PDF-")
	eofMarker = []byte("%%EOF")
)

// Repair rewrites a damaged PDF. Data trailing the last end-of-file marker
// is dropped, then pdfcpu re-reads the file leniently and writes a clean
// cross-reference table. When pdfcpu cannot parse the file at all, the
// pages are rebuilt from renderings.
func (s *Service) Repair(ctx context.Context, req RepairRequest) (*Result, error) {
	return run(ctx, s, ToolRepair, func() (res *Result, err error) {
		in, err := s.inputPDF(ToolRepair, req.Input)
		if err != nil {
			return nil, err
		}

		data, err := os.ReadFile(in)
		if err != nil {
			return nil, err
		}
		if idx := bytes.Index(data, pdfHeader); idx < 0 || idx > 1024 {
			return nil, pdferrors.Validation(ToolRepair, "file does not start with a PDF header")
		}

		out, err := s.output(ToolRepair, req.Output, outputName(in, "repaired", ".pdf"), in)
		if err != nil {
			return nil, err
		}

		dir, cleanup, err := s.scratch(ToolRepair)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		defer removeOnError(&err, out)

		var notes []string
		src := in
		if trimmed, ok := trimAfterEOF(data); ok {
			src = filepath.Join(dir, filepath.Base(in))
			if err = os.WriteFile(src, trimmed, 0o600); err != nil {
				return nil, err
			}
			notes = append(notes, "removed data after the end-of-file marker")
		}

		optErr := api.OptimizeFile(src, out, newConfiguration())
		if optErr == nil {
			return s.result(ToolRepair, out, append(notes, "rewrote the document structure")...)
		}
		if isPasswordError(optErr) {
			return nil, optErr
		}

		logging.Warn().
			With(logging.Tool(ToolRepair), logging.Path(in), logging.Err(optErr)).
			Msg("structural repair failed, rebuilding from rendered pages")
		settings := rasterSettings{dpi: s.dpi, quality: s.quality}
		if rebuildErr := s.rasterRebuild(ctx, ToolRepair, src, out, settings); rebuildErr != nil {
			return nil, optErr
		}
		return s.result(ToolRepair, out, append(notes, "pages were rebuilt from images; text is no longer selectable")...)
	})
}

// trimAfterEOF cuts data after the last %%EOF marker. It reports false when
// there is no marker or nothing but whitespace follows it.
func trimAfterEOF(data []byte) ([]byte, bool) {
	idx := bytes.LastIndex(data, eofMarker)
	if idx < 0 {
		return nil, false
	}
	end := idx + len(eofMarker)
	if len(bytes.TrimSpace(data[end:])) == 0 {
		return nil, false
	}
	trimmed := make([]byte, end, end+1)
	copy(trimmed, data[:end])
	return append(trimmed, '\n'), true
}
