package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/a3tai/pdf-tools/internal/logging"
	"github.com/a3tai/pdf-tools/internal/pdf"
	pdferrors "github.com/a3tai/pdf-tools/internal/pdf/errors"
)

// Response headers describing a downloaded result
const (
	HeaderPages = "X-PDF-Pages"
	HeaderNotes = "X-PDF-Notes"
)

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one failure
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, kind, message, details string) {
	writeJSON(w, statusCode, ErrorBody{Error: ErrorDetail{
		Type:    kind,
		Message: message,
		Details: details,
	}})
}

// writeToolError maps err onto its HTTP status. Causes of internal errors
// are logged, never returned.
func writeToolError(w http.ResponseWriter, err error) {
	var te *pdferrors.ToolError
	if !errors.As(err, &te) {
		logging.Error().With(logging.Component("http"), logging.Err(err)).Msg("unexpected error")
		writeError(w, http.StatusInternalServerError, pdferrors.KindInternal.String(), "internal error", "")
		return
	}

	details := te.Details
	if pdferrors.Is(err, pdferrors.KindInternal) {
		logging.Error().With(logging.Component("http"), logging.Tool(te.Tool), logging.Err(err)).Msg("tool failed")
		details = ""
	}
	writeError(w, pdferrors.StatusCode(err), te.Kind.String(), te.Message, details)
}

// writeFile streams a tool's output file as an attachment
func writeFile(w http.ResponseWriter, r *http.Request, res *pdf.Result) {
	f, err := os.Open(res.Output)
	if err != nil {
		writeToolError(w, pdferrors.Internal(res.Tool, err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeToolError(w, pdferrors.Internal(res.Tool, err))
		return
	}

	name := filepath.Base(res.Output)
	h := w.Header()
	h.Set("Content-Type", res.ContentType())
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	if res.Pages > 0 {
		h.Set(HeaderPages, strconv.Itoa(res.Pages))
	}
	if notes := joinNotes(res.Notes); notes != "" {
		h.Set(HeaderNotes, notes)
	}
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// joinNotes flattens notes into one header-safe line
func joinNotes(notes []string) string {
	var parts []string
	for _, n := range notes {
		n = strings.Join(strings.Fields(n), " ")
		if n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "; ")
}

func sizeError(tool string, limit int64) *pdferrors.ToolError {
	return pdferrors.Validation(tool, "request too large").WithDetails("limit is %s", formatBytes(limit))
}

func formatBytes(n int64) string {
	const mb = 1024 * 1024
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%d MB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
