package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "console"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultMaxFiles    = 50
	DefaultRateLimit   = 10
	DefaultRenderDPI   = 150
	DefaultJPEGQuality = 85

	// EnvPrefix is prepended to every environment variable
	EnvPrefix = "PDF_TOOLS"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the PDF tools server and CLI
type Config struct {
	// Server configuration
	Mode           string // "server" or "stdio"
	Host           string
	Port           int
	AllowedOrigins []string
	RateLimit      int // requests per second per client, 0 disables

	// Workspace directory all input and output paths must stay inside
	WorkDir string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	LogFormat   string
	MaxFileSize int64 // Maximum input file size in bytes
	MaxFiles    int   // Maximum number of files per request

	// Rendering defaults for pdf-to-jpg and raster compression
	RenderDPI   int
	JPEGQuality int
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:           ModeStdio, // stdio keeps MCP clients working without flags
		Host:           DefaultHost,
		Port:           DefaultPort,
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		RateLimit:      DefaultRateLimit,
		WorkDir:        currentDir,
		Version:        "1.0.0",
		ServerName:     "pdf-tools",
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
		MaxFileSize:    DefaultMaxFileSize,
		MaxFiles:       DefaultMaxFiles,
		RenderDPI:      DefaultRenderDPI,
		JPEGQuality:    DefaultJPEGQuality,
	}
}

// DefineFlags registers all configuration flags on the flag set
func DefineFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP API")
	flags.String("host", cfg.Host, "Server host address (server mode only)")
	flags.Int("port", cfg.Port, "Server port (server mode only)")
	flags.String("dir", cfg.WorkDir, "Workspace directory for input and output files")
	flags.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.String("logformat", cfg.LogFormat, "Log format (console, json)")
	flags.Int64("maxfilesize", cfg.MaxFileSize, "Maximum input file size in bytes")
	flags.Int("maxfiles", cfg.MaxFiles, "Maximum number of files per request")
	flags.StringSlice("allowedorigins", cfg.AllowedOrigins, "CORS allowed origins (server mode only)")
	flags.Int("ratelimit", cfg.RateLimit, "Requests per second per client, 0 disables (server mode only)")
	flags.Int("dpi", cfg.RenderDPI, "Default render resolution for page images")
	flags.Int("jpegquality", cfg.JPEGQuality, "Default JPEG quality (1-100)")
}

// Load resolves configuration from flags, environment and defaults, in that
// order of precedence. flags must have been populated by DefineFlags.
func Load(flags *pflag.FlagSet) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	setupViperEnvironment(v, cfg)
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	populateConfigFromViper(v, cfg)

	if cfg.WorkDir != "" {
		if expandedPath, err := filepath.Abs(cfg.WorkDir); err == nil {
			cfg.WorkDir = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from a .env file. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("dir", cfg.WorkDir)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("logformat", cfg.LogFormat)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
	v.SetDefault("maxfiles", cfg.MaxFiles)
	v.SetDefault("allowedorigins", cfg.AllowedOrigins)
	v.SetDefault("ratelimit", cfg.RateLimit)
	v.SetDefault("dpi", cfg.RenderDPI)
	v.SetDefault("jpegquality", cfg.JPEGQuality)
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString("mode")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.WorkDir = v.GetString("dir")
	cfg.LogLevel = v.GetString("loglevel")
	cfg.LogFormat = v.GetString("logformat")
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
	cfg.MaxFiles = v.GetInt("maxfiles")
	cfg.AllowedOrigins = splitOrigins(v.GetStringSlice("allowedorigins"))
	cfg.RateLimit = v.GetInt("ratelimit")
	cfg.RenderDPI = v.GetInt("dpi")
	cfg.JPEGQuality = v.GetInt("jpegquality")
}

// splitOrigins accepts both repeated values and a single comma separated
// environment value.
func splitOrigins(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Port only matters when serving HTTP
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.WorkDir == "" {
		return errors.New("workspace directory cannot be empty")
	}

	if _, err := os.Stat(c.WorkDir); os.IsNotExist(err) {
		if err := os.MkdirAll(c.WorkDir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create workspace directory %s: %w", c.WorkDir, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access workspace directory %s: %w", c.WorkDir, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.MaxFiles <= 0 {
		return errors.New("maximum files per request must be positive")
	}

	if c.RateLimit < 0 {
		return errors.New("rate limit cannot be negative")
	}

	if c.RenderDPI < 36 || c.RenderDPI > 600 {
		return fmt.Errorf("dpi must be between 36 and 600, got %d", c.RenderDPI)
	}

	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality must be between 1 and 100, got %d", c.JPEGQuality)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format: %s (must be console or json)", c.LogFormat)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, WorkDir: %s, LogLevel: %s, MaxFileSize: %d, MaxFiles: %d}",
		c.Mode, c.Host, c.Port, c.WorkDir, c.LogLevel, c.MaxFileSize, c.MaxFiles)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
