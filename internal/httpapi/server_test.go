package httpapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-tools/internal/config"
	"github.com/a3tai/pdf-tools/internal/pdf"
)

func TestNewServerValidation(t *testing.T) {
	svc, err := pdf.NewService(pdf.ServiceConfig{Directory: t.TempDir()})
	require.NoError(t, err)

	_, err = NewServer(nil, svc, nil)
	assert.Error(t, err)

	_, err = NewServer(config.DefaultConfig(), nil, nil)
	assert.Error(t, err)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.WorkDir = t.TempDir()
	svc, err := pdf.NewService(pdf.ServiceConfig{Directory: cfg.WorkDir})
	require.NoError(t, err)
	srv, err := NewServer(cfg, svc, nil)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	url := fmt.Sprintf("http://%s/health", ln.Addr().String())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":              "report.pdf",
		"../../etc/passwd":        "passwd",
		"C:\\Users\\me\\scan.pdf": "scan.pdf",
		"  spaced.pdf ":           "spaced.pdf",
		".hidden.pdf":             "hidden.pdf",
		"":                        "upload",
		"..":                      "upload",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, "a.pdf"), uniquePath(dir, "a.pdf"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("x"), 0o644))
	assert.Equal(t, filepath.Join(dir, "a_2.pdf"), uniquePath(dir, "a.pdf"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_2.pdf"), []byte("x"), 0o644))
	assert.Equal(t, filepath.Join(dir, "a_3.pdf"), uniquePath(dir, "a.pdf"))
}

func TestJoinNotes(t *testing.T) {
	assert.Equal(t, "", joinNotes(nil))
	assert.Equal(t, "first; second line", joinNotes([]string{"first", "", "second\nline"}))
}

func TestParseOptionsStripsReservedKeys(t *testing.T) {
	opts, err := parseOptions("rotate", []string{`{"input":"/etc/x.pdf","output":"y.pdf","rotation":90,"directory":"/"}`})
	require.NoError(t, err)
	assert.Len(t, opts, 1)
	assert.JSONEq(t, `90`, string(opts["rotation"]))

	opts, err = parseOptions("rotate", []string{"null"})
	require.NoError(t, err)
	assert.Empty(t, opts)
}
