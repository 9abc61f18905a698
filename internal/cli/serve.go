package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/a3tai/pdf-tools/internal/blog"
	"github.com/a3tai/pdf-tools/internal/config"
	"github.com/a3tai/pdf-tools/internal/httpapi"
	"github.com/a3tai/pdf-tools/internal/logging"
	"github.com/a3tai/pdf-tools/internal/mcp"
)

// newServeCmd creates the serve command.
func (a *App) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools and the blog over HTTP",
		Long: `Serve every tool under POST /api/v1/{tool}.

Upload files as multipart/form-data in "file" parts (and an optional "image"
part) with the remaining arguments as a JSON "options" field; the response is
the output file. Alternatively send a JSON body naming workspace paths and
receive the result as JSON.

Examples:
  pdf-tools serve --port 8080 --dir ./workspace
  curl -F file=@a.pdf -F file=@b.pdf localhost:8080/api/v1/merge -o merged.pdf`,
		GroupID: "servers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfigFor(config.ModeServer)
			if err != nil {
				return err
			}
			return a.serveHTTP(cmd.Context(), cfg)
		},
	}
}

// newMCPCmd creates the mcp command.
func (a *App) newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "mcp",
		Short:   "Serve the tools to MCP clients over standard I/O",
		GroupID: "servers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfigFor(config.ModeStdio)
			if err != nil {
				return err
			}
			return a.serveMCP(cmd.Context(), cfg)
		},
	}
}

// loadConfigFor loads the configuration and validates it again under the
// mode the command forces, so server-only settings such as the port are
// checked before anything is bound.
func (a *App) loadConfigFor(mode string) (*config.Config, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	cfg.Mode = mode
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (a *App) serveHTTP(ctx context.Context, cfg *config.Config) error {
	a.setupLogging(cfg, true)
	if cfg.IsDebug() {
		logging.Debug().With(logging.Component("cli"), logging.Str("config", cfg.String())).Msg("starting with configuration")
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	posts, err := blog.Default()
	if err != nil {
		return fmt.Errorf("failed to load blog posts: %w", err)
	}

	server, err := httpapi.NewServer(cfg, svc, posts)
	if err != nil {
		return err
	}
	if err := server.Run(ctx); err != nil {
		return err
	}
	logging.Info().With(logging.Component("cli")).Msg("server stopped successfully")
	return nil
}

func (a *App) serveMCP(ctx context.Context, cfg *config.Config) error {
	a.setupLogging(cfg, true)

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	server, err := mcp.NewServer(cfg, svc)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server.Serve(ctx, a.stdin, a.stdout)
}
