package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-tools/internal/blog"
	"github.com/a3tai/pdf-tools/internal/config"
	"github.com/a3tai/pdf-tools/internal/descriptions"
	"github.com/a3tai/pdf-tools/internal/pdf"
)

type testAPI struct {
	handler http.Handler
	service *pdf.Service
	dir     string
}

func newTestAPI(t *testing.T, configure func(*config.Config)) *testAPI {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.WorkDir = dir
	cfg.ServerName = "pdf-tools-test"
	cfg.RateLimit = 0
	if configure != nil {
		configure(cfg)
	}

	svc, err := pdf.NewService(pdf.ServiceConfig{Directory: dir, MaxFiles: cfg.MaxFiles})
	require.NoError(t, err)

	posts, err := blog.Default()
	require.NoError(t, err)

	srv, err := NewServer(cfg, svc, posts)
	require.NoError(t, err)
	return &testAPI{handler: srv.Handler(), service: svc, dir: svc.Directory()}
}

func pngBytes(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 30, 40))
	for x := 0; x < 30; x++ {
		for y := 0; y < 40; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// pdfBytes builds a one page PDF outside the API's workspace
func pdfBytes(t *testing.T) []byte {
	t.Helper()
	dir := t.TempDir()
	svc, err := pdf.NewService(pdf.ServiceConfig{Directory: dir})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.png"), pngBytes(t, color.White), 0o644))
	res, err := svc.JPGToPDF(context.Background(), pdf.ImagesToPDFRequest{Inputs: []string{"page.png"}})
	require.NoError(t, err)

	data, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	return data
}

type part struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, path, options string, parts ...part) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.name)
		require.NoError(t, err)
		_, err = fw.Write(p.data)
		require.NoError(t, err)
	}
	if options != "" {
		require.NoError(t, mw.WriteField(fieldOptions, options))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (a *testAPI) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body.Error
}

func assertJobsCleaned(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(dir, pdf.JobsDir))
	if os.IsNotExist(err) {
		return
	}
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, nil)

	rr := api.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "pdf-tools-test", body["service"])
}

func TestListTools(t *testing.T) {
	api := newTestAPI(t, nil)

	rr := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/tools", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var tools []descriptions.Tool
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tools))
	assert.Len(t, tools, len(descriptions.Catalog))
	assert.Equal(t, "merge", tools[0].ID)
}

func TestServerInfo(t *testing.T) {
	api := newTestAPI(t, nil)

	rr := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/server-info", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var info pdf.ServerInfoResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, "pdf-tools-test", info.ServerName)
	assert.Equal(t, api.dir, info.Directory)
	assert.NotEmpty(t, info.Tools)
}

func TestBlogEndpoints(t *testing.T) {
	api := newTestAPI(t, nil)

	rr := api.do(httptest.NewRequest(http.MethodGet, "/api/v1/blog", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var list []blog.Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 3)
	assert.Equal(t, "compress-without-losing-quality", list[0].Slug)

	rr = api.do(httptest.NewRequest(http.MethodGet, "/api/v1/blog/how-to-merge-pdf-files", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var post blog.Post
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &post))
	assert.Equal(t, "how-to-merge-pdf-files", post.Slug)
	assert.NotEmpty(t, post.HTML)

	rr = api.do(httptest.NewRequest(http.MethodGet, "/api/v1/blog/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rr).Type)
}

func TestBlogWithoutPosts(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.WorkDir = t.TempDir()
	svc, err := pdf.NewService(pdf.ServiceConfig{Directory: cfg.WorkDir})
	require.NoError(t, err)
	handler := NewRouter(NewHandler(cfg, svc, nil))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/blog", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestUploadMerge(t *testing.T) {
	api := newTestAPI(t, nil)
	doc := pdfBytes(t)

	req := multipartRequest(t, "/api/v1/merge", `{"output":"../../escape.pdf"}`,
		part{fieldFile, "a.pdf", doc},
		part{fieldFile, "a.pdf", doc},
		part{fieldFile, "b.pdf", doc},
	)
	rr := api.do(req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=merged.pdf`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "3", rr.Header().Get(HeaderPages))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF-")))

	assertJobsCleaned(t, api.dir)
	_, err := os.Stat(filepath.Join(filepath.Dir(filepath.Dir(api.dir)), "escape.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func TestUploadRotate(t *testing.T) {
	api := newTestAPI(t, nil)

	req := multipartRequest(t, "/api/v1/rotate", `{"rotation":90}`,
		part{fieldFile, "C:\\scans\\report.pdf", pdfBytes(t)},
	)
	rr := api.do(req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, `attachment; filename=report_rotated.pdf`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "1", rr.Header().Get(HeaderPages))
	assertJobsCleaned(t, api.dir)
}

func TestUploadImagesToPDF(t *testing.T) {
	api := newTestAPI(t, nil)

	req := multipartRequest(t, "/api/v1/jpg-to-pdf", `{"page_size":"A4"}`,
		part{fieldFile, "one.png", pngBytes(t, color.Black)},
		part{fieldFile, "two.png", pngBytes(t, color.White)},
	)
	rr := api.do(req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, `attachment; filename=images.pdf`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "2", rr.Header().Get(HeaderPages))
}

func TestUploadJSONResult(t *testing.T) {
	api := newTestAPI(t, nil)

	req := multipartRequest(t, "/api/v1/info", "", part{fieldFile, "doc.pdf", pdfBytes(t)})
	rr := api.do(req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var info pdf.InfoResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, 1, info.Pages)
	assertJobsCleaned(t, api.dir)
}

func TestJSONRequest(t *testing.T) {
	api := newTestAPI(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(api.dir, "doc.pdf"), pdfBytes(t), 0o644))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rotate", strings.NewReader(`{"input":"doc.pdf","rotation":180}`))
	req.Header.Set("Content-Type", "application/json")
	rr := api.do(req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res pdf.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Equal(t, filepath.Join(api.dir, "doc_rotated.pdf"), res.Output)
	assert.FileExists(t, res.Output)
}

func TestRunToolErrors(t *testing.T) {
	api := newTestAPI(t, nil)

	tests := []struct {
		name   string
		req    func() *http.Request
		status int
		kind   string
		msg    string
	}{
		{
			name:   "unknown tool",
			req:    func() *http.Request { return httptest.NewRequest(http.MethodPost, "/api/v1/shred", nil) },
			status: http.StatusNotFound,
			kind:   "NOT_FOUND",
			msg:    "unknown tool: shred",
		},
		{
			name: "unknown argument",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/info", strings.NewReader(`{"input":"a.pdf","colour":"red"}`))
			},
			status: http.StatusBadRequest,
			kind:   "VALIDATION",
			msg:    "invalid arguments",
		},
		{
			name: "outside workspace",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/info", strings.NewReader(`{"input":"../secret.pdf"}`))
			},
			status: http.StatusForbidden,
			kind:   "SECURITY",
		},
		{
			name: "missing file",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/info", strings.NewReader(`{"input":"missing.pdf"}`))
			},
			status: http.StatusNotFound,
			kind:   "NOT_FOUND",
		},
		{
			name:   "no upload",
			req:    func() *http.Request { return multipartRequest(t, "/api/v1/rotate", `{"rotation":90}`) },
			status: http.StatusBadRequest,
			kind:   "VALIDATION",
			msg:    "no file uploaded",
		},
		{
			name: "options not an object",
			req: func() *http.Request {
				return multipartRequest(t, "/api/v1/rotate", `[1,2]`, part{fieldFile, "a.pdf", []byte("%PDF-1.4")})
			},
			status: http.StatusBadRequest,
			kind:   "VALIDATION",
			msg:    "options must be a JSON object",
		},
		{
			name: "single file tool",
			req: func() *http.Request {
				return multipartRequest(t, "/api/v1/rotate", `{"rotation":90}`,
					part{fieldFile, "a.pdf", []byte("%PDF-1.4")},
					part{fieldFile, "b.pdf", []byte("%PDF-1.4")},
				)
			},
			status: http.StatusBadRequest,
			kind:   "VALIDATION",
			msg:    "this tool takes a single file, got 2",
		},
		{
			name: "corrupt pdf",
			req: func() *http.Request {
				return multipartRequest(t, "/api/v1/rotate", `{"rotation":90}`, part{fieldFile, "a.pdf", []byte("not a pdf at all")})
			},
			status: http.StatusUnprocessableEntity,
			kind:   "PROCESSING",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := api.do(tt.req())
			require.Equal(t, tt.status, rr.Code, rr.Body.String())
			e := decodeError(t, rr)
			assert.Equal(t, tt.kind, e.Type)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, e.Message)
			}
		})
	}
	assertJobsCleaned(t, api.dir)
}

func TestUploadTooManyFiles(t *testing.T) {
	api := newTestAPI(t, func(cfg *config.Config) { cfg.MaxFiles = 2 })
	doc := pdfBytes(t)

	req := multipartRequest(t, "/api/v1/merge", "",
		part{fieldFile, "a.pdf", doc},
		part{fieldFile, "b.pdf", doc},
		part{fieldFile, "c.pdf", doc},
	)
	rr := api.do(req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "too many files: 3 (max: 2)", decodeError(t, rr).Message)
}

func TestRateLimit(t *testing.T) {
	api := newTestAPI(t, func(cfg *config.Config) { cfg.RateLimit = 1 })

	first := httptest.NewRequest(http.MethodGet, "/api/v1/tools", nil)
	first.RemoteAddr = "192.0.2.10:5000"
	assert.Equal(t, http.StatusOK, api.do(first).Code)

	second := httptest.NewRequest(http.MethodGet, "/api/v1/tools", nil)
	second.RemoteAddr = "192.0.2.10:5001"
	rr := api.do(second)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, rr).Type)

	other := httptest.NewRequest(http.MethodGet, "/api/v1/tools", nil)
	other.RemoteAddr = "192.0.2.11:5000"
	assert.Equal(t, http.StatusOK, api.do(other).Code)

	// health checks are not limited
	health := httptest.NewRequest(http.MethodGet, "/health", nil)
	health.RemoteAddr = "192.0.2.10:5002"
	assert.Equal(t, http.StatusOK, api.do(health).Code)
}

func TestCORS(t *testing.T) {
	api := newTestAPI(t, func(cfg *config.Config) { cfg.AllowedOrigins = []string{"https://app.example"} })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tools", nil)
	req.Header.Set("Origin", "https://app.example")
	rr := api.do(req)
	assert.Equal(t, "https://app.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(rr.Header().Get("Access-Control-Expose-Headers")), strings.ToLower(HeaderPages))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/tools", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = api.do(req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
