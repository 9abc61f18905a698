package pdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	pdferrors "github.com/a3tai/pdf-tools/internal/pdf/errors"
)

// JobsDir is the workspace subdirectory holding per-request scratch space.
// It is hidden so ListFiles never reports its contents.
const JobsDir = ".jobs"

const dirPerm = 0o755

// input resolves path inside the workspace and checks that it is a
// readable, non-empty file within the size limit
func (s *Service) input(tool, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", pdferrors.Validation(tool, "no file selected")
	}

	resolved, err := s.pathValidator.Resolve(path)
	if err != nil {
		return "", pdferrors.Security(tool, err)
	}

	info, err := os.Stat(resolved)
	if os.IsNotExist(err) {
		return "", pdferrors.NotFound(tool, path)
	}
	if err != nil {
		return "", pdferrors.Internal(tool, fmt.Errorf("cannot access file: %w", err))
	}
	if info.IsDir() {
		return "", pdferrors.Validation(tool, "path is a directory, not a file: %s", path)
	}
	if info.Size() == 0 {
		return "", pdferrors.Validation(tool, "file is empty: %s", path)
	}
	if info.Size() > s.maxFileSize {
		return "", pdferrors.Validation(tool, "file too large: %d bytes (max: %d bytes)", info.Size(), s.maxFileSize)
	}

	return resolved, nil
}

// inputPDF is input plus a PDF extension check
func (s *Service) inputPDF(tool, path string) (string, error) {
	resolved, err := s.input(tool, path)
	if err != nil {
		return "", err
	}
	if !isPDFFile(resolved) {
		return "", pdferrors.Validation(tool, "file is not a PDF: %s", path)
	}
	return resolved, nil
}

// inputs resolves a multi-file selection of at least least files
func (s *Service) inputs(tool string, paths []string, least int, check func(tool, path string) (string, error)) ([]string, error) {
	if len(paths) < least {
		if least == 1 {
			return nil, pdferrors.Validation(tool, "no files selected")
		}
		return nil, pdferrors.Validation(tool, "select at least %d files", least)
	}
	if len(paths) > s.maxFiles {
		return nil, pdferrors.Validation(tool, "too many files: %d (max: %d)", len(paths), s.maxFiles)
	}

	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		r, err := check(tool, p)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, r)
	}
	return resolved, nil
}

// output resolves the destination file. An empty request places fallback
// next to the first input, or in the workspace root when there is none.
// The destination may never be one of the inputs.
func (s *Service) output(tool, requested, fallback string, inputs ...string) (string, error) {
	if strings.TrimSpace(requested) == "" {
		dir := s.pathValidator.Root()
		if len(inputs) > 0 {
			dir = filepath.Dir(inputs[0])
		}
		requested = filepath.Join(dir, fallback)
	}

	resolved, err := s.pathValidator.Resolve(requested)
	if err != nil {
		return "", pdferrors.Security(tool, err)
	}
	for _, in := range inputs {
		if resolved == in {
			return "", pdferrors.Validation(tool, "output must not overwrite an input file: %s", requested)
		}
	}
	if info, err := os.Stat(resolved); err == nil && info.IsDir() {
		return "", pdferrors.Validation(tool, "output is a directory: %s", requested)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), dirPerm); err != nil {
		return "", pdferrors.Internal(tool, err)
	}

	return resolved, nil
}

// scratch creates a private job directory under the workspace. The
// returned cleanup removes it and everything in it.
func (s *Service) scratch(tool string) (string, func(), error) {
	dir := filepath.Join(s.pathValidator.Root(), JobsDir, uuid.NewString())
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", nil, pdferrors.Internal(tool, err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// result describes a finished output file
func (s *Service) result(tool, out string, notes ...string) (*Result, error) {
	info, err := os.Stat(out)
	if err != nil {
		return nil, pdferrors.Internal(tool, err)
	}

	res := &Result{
		Tool:   tool,
		Output: out,
		Size:   info.Size(),
		Notes:  notes,
	}
	if isPDFFile(out) {
		if n, err := pageCount(out); err == nil {
			res.Pages = n
		}
	}
	return res, nil
}

// removeOnError deletes paths when *errp is set, so a failed tool never
// leaves a partial output behind
func removeOnError(errp *error, paths ...string) {
	if *errp == nil {
		return
	}
	for _, p := range paths {
		_ = os.Remove(p)
	}
}

// outputName derives a file name from the input's base name
func outputName(input, suffix, ext string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return base + "_" + suffix + ext
}

func isPDFFile(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
