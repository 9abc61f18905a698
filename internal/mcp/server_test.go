package mcp

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdf-tools/internal/config"
	"github.com/a3tai/pdf-tools/internal/descriptions"
	"github.com/a3tai/pdf-tools/internal/pdf"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.WorkDir = dir
	cfg.ServerName = "test-server"
	cfg.Version = "1.0.0"

	svc, err := pdf.NewService(pdf.ServiceConfig{Directory: dir})
	require.NoError(t, err)

	s, err := NewServer(cfg, svc)
	require.NoError(t, err)
	return s, svc.Directory()
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 60))
	for x := 0; x < 40; x++ {
		for y := 0; y < 60; y++ {
			img.Set(x, y, color.RGBA{R: 90, G: 120, B: 200, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func callTool(t *testing.T, s *Server, id string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = descriptions.NameFor(id)
	req.Params.Arguments = args

	res, err := s.handleTool(id)(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestNewServer(t *testing.T) {
	s, _ := newTestServer(t)
	assert.NotNil(t, s.mcpServer)
	assert.NotNil(t, s.serverInfo)

	_, err := NewServer(config.DefaultConfig(), nil)
	assert.Error(t, err)

	_, err = NewServer(nil, s.pdfService)
	assert.Error(t, err)
}

func TestRegisteredTools(t *testing.T) {
	s, _ := newTestServer(t)

	var names []string
	for _, tool := range s.Tools() {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, tool.Name)
	}
	require.Len(t, names, len(descriptions.Catalog))
	for _, entry := range descriptions.Catalog {
		assert.Contains(t, names, entry.Name)
	}
}

func TestEveryServiceToolHasParameters(t *testing.T) {
	for _, tool := range pdf.Tools {
		_, ok := toolParams[tool]
		assert.True(t, ok, tool)

		_, ok = descriptions.Lookup(tool)
		assert.True(t, ok, tool)
	}
}

func TestToolsListMessage(t *testing.T) {
	s, _ := newTestServer(t)

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	resp := s.mcpServer.HandleMessage(context.Background(), msg)
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"pdf_merge"`)
	assert.Contains(t, string(data), `"pdf_server_info"`)
}

func TestHandleToolRoundTrip(t *testing.T) {
	s, dir := newTestServer(t)
	writePNG(t, filepath.Join(dir, "one.png"))
	writePNG(t, filepath.Join(dir, "two.png"))

	res := callTool(t, s, pdf.ToolJPGToPDF, map[string]any{
		"inputs": []any{"one.png", "two.png"},
		"output": "scan.pdf",
	})
	require.False(t, res.IsError, resultText(t, res))
	text := resultText(t, res)
	assert.Contains(t, text, "jpg-to-pdf finished")
	assert.Contains(t, text, filepath.Join(dir, "scan.pdf"))
	assert.Contains(t, text, "Pages: 2")

	// numbers arrive as float64 from JSON clients
	res = callTool(t, s, pdf.ToolRotate, map[string]any{"input": "scan.pdf", "rotation": float64(180)})
	require.False(t, res.IsError, resultText(t, res))

	res = callTool(t, s, pdf.ToolInfo, map[string]any{"input": "scan_rotated.pdf"})
	require.False(t, res.IsError, resultText(t, res))
	var info pdf.InfoResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &info))
	assert.Equal(t, 2, info.Pages)
	require.Len(t, info.PageSizes, 2)
	assert.Equal(t, 180, info.PageSizes[0].Rotation)
}

func TestHandleToolErrors(t *testing.T) {
	s, _ := newTestServer(t)

	res := callTool(t, s, pdf.ToolMerge, map[string]any{"inputs": []any{"only.pdf"}})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "select at least 2 files")

	res = callTool(t, s, pdf.ToolRotate, map[string]any{"input": "x.pdf", "rotation": 12.5})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "invalid arguments")

	res = callTool(t, s, pdf.ToolInfo, map[string]any{"input": "../etc/passwd.pdf"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "SECURITY")
}

func TestListFilesEmpty(t *testing.T) {
	s, dir := newTestServer(t)

	res := callTool(t, s, pdf.ToolListFiles, map[string]any{"query": "report"})
	require.False(t, res.IsError)
	assert.Equal(t, "No PDF files found in directory: "+dir+" (searched for: report)", resultText(t, res))
}

func TestHandleServerInfo(t *testing.T) {
	s, dir := newTestServer(t)

	res, err := s.handleServerInfo(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "test-server v1.0.0")
	assert.Contains(t, text, "Workspace: "+dir)
	assert.Contains(t, text, "pdf_merge")
	assert.Contains(t, text, "No PDF files found")
}

func TestFormatFileResult(t *testing.T) {
	text := formatFileResult(&pdf.Result{
		Tool:   pdf.ToolSplit,
		Output: "/w/doc_split.zip",
		Size:   100,
		Pages:  3,
		Files:  []string{"a.pdf", "b.pdf"},
		Notes:  []string{"", "kept bookmarks"},
	})
	assert.Equal(t, "split finished\n"+
		"Output: /w/doc_split.zip\n"+
		"Size: 100 bytes\n"+
		"Pages: 3\n"+
		"Files in archive (2):\n"+
		"1. a.pdf\n"+
		"2. b.pdf\n"+
		"Note: kept bookmarks\n", text)
}
