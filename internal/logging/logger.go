// Package logging provides structured logging using bolt.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
)

var (
	defaultLogger *bolt.Logger
	mu            sync.Mutex
)

// Config configures the logger.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string

	// Format is the output format (json or console).
	Format string

	// Output is the output destination.
	Output io.Writer
}

// DefaultConfig returns a console logger at info level on stdout.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
		Output: os.Stdout,
	}
}

// StdioConfig returns the configuration used when stdout carries the MCP
// protocol. Nothing is written below debug level.
func StdioConfig(level string) Config {
	cfg := Config{
		Level:  level,
		Format: "console",
		Output: os.Stderr,
	}
	if level != "debug" {
		cfg.Output = io.Discard
	}
	return cfg
}

func parseLevel(s string) bolt.Level {
	switch s {
	case "debug":
		return bolt.DEBUG
	case "info":
		return bolt.INFO
	case "warn":
		return bolt.WARN
	case "error":
		return bolt.ERROR
	default:
		return bolt.INFO
	}
}

// New builds a logger from the given configuration.
func New(config Config) *bolt.Logger {
	output := config.Output
	if output == nil {
		output = os.Stdout
	}

	var handler bolt.Handler
	if config.Format == "json" {
		handler = bolt.NewJSONHandler(output)
	} else {
		handler = bolt.NewConsoleHandler(output)
	}

	return bolt.New(handler).SetLevel(parseLevel(config.Level))
}

// Init replaces the default logger.
func Init(config Config) {
	l := New(config)
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
}

// Get returns the default logger, initializing it if necessary.
func Get() *bolt.Logger {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New(DefaultConfig())
	}
	return defaultLogger
}

// Field applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Event wraps a bolt.Event so Fields can be chained onto it.
type Event struct {
	event *bolt.Event
}

// With applies fields to the event.
func (e *Event) With(fields ...Field) *Event {
	for _, f := range fields {
		e.event = f(e.event)
	}
	return e
}

// Msg sends the event with a message.
func (e *Event) Msg(msg string) {
	e.event.Msg(msg)
}

// Debug starts a debug level event on the default logger.
func Debug() *Event { return &Event{event: Get().Debug()} }

// Info starts an info level event on the default logger.
func Info() *Event { return &Event{event: Get().Info()} }

// Warn starts a warning event on the default logger.
func Warn() *Event { return &Event{event: Get().Warn()} }

// Error starts an error event on the default logger.
func Error() *Event { return &Event{event: Get().Error()} }

// Tool adds the tool name.
func Tool(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("tool", name)
	}
}

// Path adds a file path.
func Path(p string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("path", p)
	}
}

// Pages adds a page count.
func Pages(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("pages", n)
	}
}

// Duration adds a duration in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// Err adds an error. A nil error adds nothing.
func Err(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Component adds a component name for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Str adds a string field with a custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}

// Int adds an int field with a custom key.
func Int(key string, value int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int(key, value)
	}
}
