package pdf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-tools/internal/logging"
	pdferrors "github.com/a3tai/pdf-tools/internal/pdf/errors"
)

func TestNewService(t *testing.T) {
	svc, dir := newTestService(t)

	assert.Equal(t, dir, svc.Directory())
	assert.Equal(t, int64(DefaultMaxFileSize), svc.MaxFileSize())
	assert.Equal(t, DefaultMaxFiles, svc.MaxFiles())
	assert.Equal(t, DefaultDPI, svc.dpi)
	assert.Equal(t, DefaultJPEGQuality, svc.quality)

	_, err := NewService(ServiceConfig{})
	assert.Error(t, err)

	plain, err := NewService(ServiceConfig{Directory: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, FitzRasterizer{}, plain.rasterizer)
}

func TestFailure(t *testing.T) {
	te := pdferrors.Validation(ToolMerge, "bad")
	assert.Same(t, te, failure(ToolMerge, te))

	err := failure(ToolUnlock, errors.New("pdfcpu: please provide the correct password"))
	assert.True(t, pdferrors.Is(err, pdferrors.KindPassword))

	err = failure(ToolSplit, fmt.Errorf("wrapped: %w", context.Canceled))
	assert.True(t, pdferrors.Is(err, pdferrors.KindInternal))

	err = failure(ToolCompress, errors.New("xref corrupt"))
	require.True(t, pdferrors.Is(err, pdferrors.KindProcessing))
	assert.Contains(t, err.Error(), "Could not compress the PDF")
	assert.Contains(t, err.Error(), "xref corrupt")
}

func TestFailureMessageCoversEveryTool(t *testing.T) {
	tools := []string{
		ToolMerge, ToolSplit, ToolCompress, ToolWatermark, ToolSign, ToolRotate,
		ToolPageNumbers, ToolPDFToJPG, ToolJPGToPDF, ToolProtect, ToolUnlock,
		ToolRepair, ToolEditPDF, ToolOrganize, ToolRemovePages, ToolExtractPages,
		ToolExtractImages, ToolPDFToText, ToolInfo, ToolValidate, ToolListFiles,
	}
	for _, tool := range tools {
		assert.NotEqual(t, "The operation failed.", FailureMessage(tool), tool)
	}
	assert.Equal(t, "The operation failed.", FailureMessage("unknown"))
}

func TestInputValidation(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.pdf"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.pdf"), 0o755))

	tests := []struct {
		name  string
		input string
		kind  pdferrors.Kind
	}{
		{name: "empty path", input: "", kind: pdferrors.KindValidation},
		{name: "missing file", input: "missing.pdf", kind: pdferrors.KindNotFound},
		{name: "outside workspace", input: "../outside.pdf", kind: pdferrors.KindSecurity},
		{name: "empty file", input: "empty.pdf", kind: pdferrors.KindValidation},
		{name: "not a pdf", input: "notes.txt", kind: pdferrors.KindValidation},
		{name: "directory", input: "folder.pdf", kind: pdferrors.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Rotate(ctx, RotateRequest{Input: tt.input, Rotation: 90})
			require.Error(t, err)
			assert.Equal(t, tt.kind, pdferrors.KindOf(err), err.Error())
		})
	}
}

func TestInputTooLarge(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewService(ServiceConfig{Directory: dir, MaxFileSize: 10})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.pdf"), []byte("%PDF-1.7 more than ten bytes"), 0o644))

	_, err = svc.Info(context.Background(), InfoRequest{Input: "big.pdf"})
	require.Error(t, err)
	assert.True(t, pdferrors.Is(err, pdferrors.KindValidation))
	assert.Contains(t, err.Error(), "file too large")
}

func TestOutputMustNotOverwriteInput(t *testing.T) {
	svc, _ := newTestService(t)
	doc := makePDF(t, svc, "doc.pdf", 1)

	_, err := svc.Rotate(context.Background(), RotateRequest{Input: doc, Output: doc, Rotation: 90})
	require.Error(t, err)
	assert.True(t, pdferrors.Is(err, pdferrors.KindValidation))
	assert.Contains(t, err.Error(), "must not overwrite an input")
}

func TestOutputOutsideWorkspace(t *testing.T) {
	svc, _ := newTestService(t)
	doc := makePDF(t, svc, "doc.pdf", 1)

	_, err := svc.Rotate(context.Background(), RotateRequest{
		Input:    doc,
		Output:   filepath.Join(t.TempDir(), "elsewhere.pdf"),
		Rotation: 90,
	})
	assert.True(t, pdferrors.Is(err, pdferrors.KindSecurity))
}

func TestCanceledContext(t *testing.T) {
	svc, _ := newTestService(t)
	doc := makePDF(t, svc, "doc.pdf", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Rotate(ctx, RotateRequest{Input: doc, Rotation: 90})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(doc), "doc_rotated.pdf"))
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "report_rotated.pdf", outputName("/tmp/report.pdf", "rotated", ".pdf"))
	assert.Equal(t, "scan.v2_images.zip", outputName("scan.v2.PDF", "images", ".zip"))
}

func TestResultContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", (&Result{Output: "a.pdf"}).ContentType())
	assert.Equal(t, "application/zip", (&Result{Output: "a.ZIP"}).ContentType())
	assert.Equal(t, "text/plain; charset=utf-8", (&Result{Output: "a.txt"}).ContentType())
}

// lastLogLine returns the final JSON log record written to buf
func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &record), buf.String())
	return record
}

func TestRunLogsResultFields(t *testing.T) {
	svc, dir := newTestService(t)
	doc := makePDF(t, svc, "doc.pdf", 2)

	buf := &bytes.Buffer{}
	logging.Init(logging.Config{Level: "info", Format: "json", Output: buf})
	t.Cleanup(func() { logging.Init(logging.Config{Level: "info", Output: io.Discard}) })

	_, err := svc.Info(context.Background(), InfoRequest{Input: doc})
	require.NoError(t, err)
	record := lastLogLine(t, buf)
	assert.Equal(t, ToolInfo, record["tool"])
	assert.Equal(t, doc, record["path"])
	assert.EqualValues(t, 2, record["pages"])

	buf.Reset()
	_, err = svc.ListFiles(context.Background(), ListFilesRequest{})
	require.NoError(t, err)
	record = lastLogLine(t, buf)
	assert.Equal(t, dir, record["path"])
	assert.NotContains(t, record, "pages")

	buf.Reset()
	res, err := svc.Rotate(context.Background(), RotateRequest{Input: doc, Rotation: 90})
	require.NoError(t, err)
	record = lastLogLine(t, buf)
	assert.Equal(t, res.Output, record["path"])
	assert.EqualValues(t, 2, record["pages"])
}
