package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/pdf-tools/internal/config"
	"github.com/a3tai/pdf-tools/internal/descriptions"
	"github.com/a3tai/pdf-tools/internal/logging"
	"github.com/a3tai/pdf-tools/internal/pdf"
)

const serverInfoID = "server-info"

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	serverInfo *pdf.ServerInfo
	mcpServer  *server.MCPServer
	tools      []mcp.Tool
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		serverInfo: pdf.NewServerInfo(pdfService),
		mcpServer:  mcpServer,
	}

	if err := s.registerTools(); err != nil {
		return nil, err
	}

	return s, nil
}

// registerTools registers one MCP tool per catalog entry
func (s *Server) registerTools() error {
	for _, entry := range descriptions.Catalog {
		if entry.ID == serverInfoID {
			continue
		}
		params, ok := toolParams[entry.ID]
		if !ok {
			return fmt.Errorf("no parameters defined for tool %s", entry.ID)
		}
		opts := append([]mcp.ToolOption{mcp.WithDescription(descriptions.GetToolDescription(entry.Name))}, params...)
		s.addTool(mcp.NewTool(entry.Name, opts...), s.handleTool(entry.ID))
	}

	serverInfoTool := mcp.NewTool(
		descriptions.NameFor(serverInfoID),
		mcp.WithDescription(descriptions.GetToolDescription(descriptions.NameFor(serverInfoID))),
	)
	s.addTool(serverInfoTool, s.handleServerInfo)
	return nil
}

func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcpServer.AddTool(tool, handler)
	s.tools = append(s.tools, tool)
}

// Tools returns the registered tools in registration order
func (s *Server) Tools() []mcp.Tool {
	return s.tools
}

// handleTool returns the handler for a PDF tool. Arguments are passed
// through as JSON so the service decodes them into its request type.
func (s *Server) handleTool(id string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := s.pdfService.Invoke(ctx, id, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(formatResult(result)), nil
	}
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result := s.serverInfo.Get(ctx, s.config.ServerName, s.config.Version)
	return mcp.NewToolResultText(formatServerInfo(result)), nil
}

// formatResult renders file results as readable text and everything else
// as indented JSON
func formatResult(result any) string {
	if r, ok := result.(*pdf.Result); ok {
		return formatFileResult(r)
	}
	if r, ok := result.(*pdf.ListFilesResult); ok && r.TotalCount == 0 {
		text := fmt.Sprintf("No PDF files found in directory: %s", r.Directory)
		if r.Query != "" {
			text += fmt.Sprintf(" (searched for: %s)", r.Query)
		}
		return text
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", result)
	}
	return string(data)
}

func formatFileResult(r *pdf.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s finished\n", r.Tool)
	fmt.Fprintf(&b, "Output: %s\n", r.Output)
	fmt.Fprintf(&b, "Size: %d bytes\n", r.Size)
	if r.Pages > 0 {
		fmt.Fprintf(&b, "Pages: %d\n", r.Pages)
	}
	if len(r.Files) > 0 {
		fmt.Fprintf(&b, "Files in archive (%d):\n", len(r.Files))
		for i, f := range r.Files {
			fmt.Fprintf(&b, "%d. %s\n", i+1, f)
		}
	}
	for _, note := range r.Notes {
		if note != "" {
			fmt.Fprintf(&b, "Note: %s\n", note)
		}
	}
	return b.String()
}

func formatServerInfo(result *pdf.ServerInfoResult) string {
	text := fmt.Sprintf("%s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("Workspace: %s\n", result.Directory)
	text += fmt.Sprintf("Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("Max Files Per Request: %d\n", result.MaxFiles)
	text += fmt.Sprintf("Default DPI: %d, JPEG quality: %d\n\n", result.DefaultDPI, result.JPEGQuality)

	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("Workspace Contents (%d PDF files found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 { // Limit to first 10 files for readability
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		if result.Truncated {
			text += "   (listing truncated)\n"
		}
		text += "\n"
	} else {
		text += "Workspace Contents: No PDF files found\n\n"
	}

	text += "Available Tools:\n"
	for _, tool := range result.Tools {
		text += fmt.Sprintf("  • %s (%s): %s\n", tool.Name, tool.Output, tool.Summary)
	}

	text += "\nSupported Image Formats: " + strings.Join(result.SupportedImages, ", ") + "\n"
	return text
}

// Run serves MCP over stdin and stdout until ctx is canceled or stdin closes
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve serves MCP over the given streams
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	logging.Debug().
		With(logging.Component("mcp"), logging.Path(s.config.WorkDir)).
		Msg("starting MCP server on stdio")

	stdio := server.NewStdioServer(s.mcpServer)
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
