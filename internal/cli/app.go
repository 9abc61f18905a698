// Package cli provides the pdf-tools command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/a3tai/pdf-tools/internal/config"
	"github.com/a3tai/pdf-tools/internal/logging"
	"github.com/a3tai/pdf-tools/internal/pdf"
	"github.com/a3tai/pdf-tools/internal/telemetry"
)

// Version information set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App represents the CLI application.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
}

// New creates a new CLI application.
func New() *App {
	app := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
		stdin:  os.Stdin,
	}

	app.root = &cobra.Command{
		Use:   "pdf-tools",
		Short: "Merge, split, convert and secure PDF files",
		Long: `pdf-tools runs a suite of PDF tools against files in a workspace directory.

Run a tool once from the command line, serve every tool over HTTP, or expose
them to MCP clients over standard I/O. Without a subcommand the --mode flag
selects between the stdio MCP server and the HTTP server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			if cfg.IsServerMode() {
				return app.serveHTTP(cmd.Context(), cfg)
			}
			return app.serveMCP(cmd.Context(), cfg)
		},
	}

	config.DefineFlags(app.root.PersistentFlags(), config.DefaultConfig())

	app.root.AddGroup(
		&cobra.Group{ID: "tools", Title: "PDF Tools:"},
		&cobra.Group{ID: "servers", Title: "Servers:"},
	)
	app.root.AddCommand(
		app.newVersionCmd(),
		app.newServeCmd(),
		app.newMCPCmd(),
	)
	app.root.AddCommand(app.newToolCmds()...)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// WithInput sets the reader the MCP server reads requests from.
func (a *App) WithInput(stdin io.Reader) *App {
	a.stdin = stdin
	a.root.SetIn(stdin)
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

// loadConfig resolves the persistent flags, the environment and .env
func (a *App) loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(a.root.PersistentFlags())
	if err != nil {
		return nil, err
	}
	if Version != "dev" {
		cfg.Version = Version
	}
	return cfg, nil
}

// setupLogging sends logs to stderr unless a server owns the terminal.
// In stdio mode stdout carries the protocol.
func (a *App) setupLogging(cfg *config.Config, server bool) {
	switch {
	case server && cfg.IsStdioMode():
		logging.Init(logging.StdioConfig(cfg.LogLevel))
	case server:
		logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: a.stdout})
	default:
		logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: a.stderr})
	}
}

func newService(cfg *config.Config) (*pdf.Service, error) {
	metrics, err := telemetry.NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	return pdf.NewService(pdf.ServiceConfig{
		Directory:   cfg.WorkDir,
		MaxFileSize: cfg.MaxFileSize,
		MaxFiles:    cfg.MaxFiles,
		DefaultDPI:  cfg.RenderDPI,
		JPEGQuality: cfg.JPEGQuality,
		Metrics:     metrics,
	})
}

// runTool runs one tool and prints its result as JSON
func (a *App) runTool(cmd *cobra.Command, tool string, args json.RawMessage) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.setupLogging(cfg, false)

	svc, err := newService(cfg)
	if err != nil {
		return err
	}

	res, err := svc.Invoke(cmd.Context(), tool, args)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// newVersionCmd creates the version command.
func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "pdf-tools version %s\n", Version)
			fmt.Fprintf(a.stdout, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(a.stdout, "  Build date: %s\n", BuildDate)
			fmt.Fprintf(a.stdout, "  Built with: %s\n", runtime.Version())
		},
	}
}
