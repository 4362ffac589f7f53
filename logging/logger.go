package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger defines the minimal logging interface for agentswarm. This allows
// users to provide their own logger implementation or use the built-in
// adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// NoOpLogger discards all log messages. Useful for testing or when logging
// is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

// SwarmLoggerConfig configures construction of a SwarmLogger.
type SwarmLoggerConfig struct {
	Level     slog.Level
	Format    string // json or text
	Output    io.Writer
	AddSource bool
}

// DefaultSwarmLoggerConfig returns a baseline JSON info level configuration.
func DefaultSwarmLoggerConfig() *SwarmLoggerConfig {
	return &SwarmLoggerConfig{Level: slog.LevelInfo, Format: "json", Output: os.Stdout}
}

// SwarmLogger wraps slog.Logger adding contextual cloning helpers and domain
// convenience methods. It is cheap to copy via the With* methods.
type SwarmLogger struct {
	logger *slog.Logger
}

// NewSwarmLogger builds a SwarmLogger from a config (or defaults if nil).
func NewSwarmLogger(cfg *SwarmLoggerConfig) *SwarmLogger {
	if cfg == nil {
		cfg = DefaultSwarmLoggerConfig()
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}
	return &SwarmLogger{logger: slog.New(handler)}
}

// WithSwarm attaches the swarm name to every subsequent log entry.
func (l *SwarmLogger) WithSwarm(name string) *SwarmLogger {
	return &SwarmLogger{logger: l.logger.With(slog.String("swarm", name))}
}

// WithAgent attaches agent identity to every subsequent log entry.
func (l *SwarmLogger) WithAgent(id, name string) *SwarmLogger {
	return &SwarmLogger{logger: l.logger.With(slog.String("agent_id", id), slog.String("agent_name", name))}
}

// WithRun attaches the run (conversation) id to every subsequent log entry.
func (l *SwarmLogger) WithRun(runID string) *SwarmLogger {
	return &SwarmLogger{logger: l.logger.With(slog.String("run_id", runID))}
}

// Debug logs at debug level.
func (l *SwarmLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }

// Info logs at info level.
func (l *SwarmLogger) Info(msg string, args ...any) { l.logger.Info(msg, args...) }

// Warn logs at warn level.
func (l *SwarmLogger) Warn(msg string, args ...any) { l.logger.Warn(msg, args...) }

// Error logs at error level.
func (l *SwarmLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// LogAgentCall records latency, attempts and outcome for one agent dispatch.
func (l *SwarmLogger) LogAgentCall(agentName string, attempts int, dur time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("agent_name", agentName),
		slog.Int("attempts", attempts),
		slog.Duration("duration", dur),
		slog.Bool("success", err == nil),
	}
	level := slog.LevelInfo
	msg := "Agent call completed"
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		level = slog.LevelError
		msg = "Agent call failed"
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogSwarmRun records aggregate metrics for one swarm run.
func (l *SwarmLogger) LogSwarmRun(swarm string, records int, failures int, dur time.Duration) {
	l.logger.LogAttrs(context.Background(), slog.LevelInfo, "Swarm run completed",
		slog.String("swarm", swarm),
		slog.Int("records", records),
		slog.Int("failures", failures),
		slog.Duration("duration", dur),
	)
}
