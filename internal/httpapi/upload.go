package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/a3tai/pdf-tools/internal/pdf"
	pdferrors "github.com/a3tai/pdf-tools/internal/pdf/errors"
)

// Multipart field names
const (
	fieldFile    = "file"
	fieldImage   = "image"
	fieldOptions = "options"
)

// memoryLimit is how much of a multipart body is held in memory before
// parts spill to temporary files
const memoryLimit = 32 << 20

// Option keys that always come from the uploaded files
var reservedOptions = []string{"input", "inputs", "output", "image", "directory"}

// multiInput lists the tools whose request takes an ordered file list
var multiInput = map[string]bool{
	pdf.ToolMerge:    true,
	pdf.ToolJPGToPDF: true,
}

// upload is a multipart request saved into its own job directory
type upload struct {
	dir  string
	args json.RawMessage
}

// Close removes the job directory with everything the tool wrote into it
func (u *upload) Close() error {
	return os.RemoveAll(u.dir)
}

// saveUpload stores the "file" parts, in order, and the optional "image"
// part in a fresh job directory below the workspace. The "options" field
// holds the remaining tool arguments as a JSON object.
func (h *Handler) saveUpload(r *http.Request, tool string) (*upload, error) {
	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, sizeError(tool, tooLarge.Limit)
		}
		return nil, pdferrors.Validation(tool, "invalid multipart form").WithDetails("%v", err)
	}

	files := r.MultipartForm.File[fieldFile]
	if len(files) == 0 {
		return nil, pdferrors.Validation(tool, "no file uploaded")
	}
	if len(files) > h.service.MaxFiles() {
		return nil, pdferrors.Validation(tool, "too many files: %d (max: %d)", len(files), h.service.MaxFiles())
	}

	opts, err := parseOptions(tool, r.MultipartForm.Value[fieldOptions])
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(h.service.Directory(), pdf.JobsDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pdferrors.Internal(tool, err)
	}
	u := &upload{dir: dir}

	saved := make([]string, 0, len(files))
	for _, fh := range files {
		path, err := h.saveFile(tool, dir, fh)
		if err != nil {
			_ = u.Close()
			return nil, err
		}
		saved = append(saved, path)
	}

	if multiInput[tool] {
		opts["inputs"] = mustMarshal(saved)
	} else {
		if len(saved) > 1 {
			_ = u.Close()
			return nil, pdferrors.Validation(tool, "this tool takes a single file, got %d", len(saved))
		}
		opts["input"] = mustMarshal(saved[0])
	}

	if images := r.MultipartForm.File[fieldImage]; len(images) > 0 {
		path, err := h.saveFile(tool, dir, images[0])
		if err != nil {
			_ = u.Close()
			return nil, err
		}
		opts["image"] = mustMarshal(path)
	}

	u.args, err = json.Marshal(opts)
	if err != nil {
		_ = u.Close()
		return nil, pdferrors.Internal(tool, err)
	}
	return u, nil
}

// saveFile copies one part into dir under its sanitized name
func (h *Handler) saveFile(tool, dir string, fh *multipart.FileHeader) (string, error) {
	if fh.Size > h.service.MaxFileSize() {
		return "", pdferrors.Validation(tool, "file too large: %s", sanitizeFilename(fh.Filename)).
			WithDetails("limit is %s", formatBytes(h.service.MaxFileSize()))
	}

	src, err := fh.Open()
	if err != nil {
		return "", pdferrors.Internal(tool, err)
	}
	defer src.Close()

	path := uniquePath(dir, sanitizeFilename(fh.Filename))
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", pdferrors.Internal(tool, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", pdferrors.Internal(tool, err)
	}
	if err := dst.Close(); err != nil {
		return "", pdferrors.Internal(tool, err)
	}
	return path, nil
}

func parseOptions(tool string, values []string) (map[string]json.RawMessage, error) {
	opts := map[string]json.RawMessage{}
	if len(values) > 0 && strings.TrimSpace(values[0]) != "" {
		if err := json.Unmarshal([]byte(values[0]), &opts); err != nil {
			return nil, pdferrors.Validation(tool, "options must be a JSON object").WithDetails("%v", err)
		}
		if opts == nil {
			opts = map[string]json.RawMessage{}
		}
	}
	for _, key := range reservedOptions {
		delete(opts, key)
	}
	return opts, nil
}

// sanitizeFilename strips any path components from a client file name
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimSpace(filepath.Base(name))
	name = strings.TrimLeft(name, ".")
	if name == "" || name == string(filepath.Separator) {
		return "upload"
	}
	return name
}

// uniquePath returns dir/name, adding a counter before the extension when
// the name is taken
func uniquePath(dir, name string) string {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
	}
}

func mustMarshal(v interface{}) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
