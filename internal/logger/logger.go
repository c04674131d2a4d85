// Package logger provides structured logging functionality.
// It wraps the standard log/slog package for consistent logging across gridfilter.
//
// This package provides run context helpers for consistent view execution logging,
// including helpers for run start/end and per-step results.
// All helpers use structured logging with consistent field names (snake_case).
//
// The package supports two output formats:
//   - JSON (default): Machine-readable structured logging
//   - Human: Human-readable console output with colors and prefixes
//
// Logs go to stderr so that command output on stdout stays machine readable.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger is the default logger instance.
var Logger *slog.Logger

// output is where console logs are written.
var output io.Writer = os.Stderr

func init() {
	Logger = slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// SetLevel configures the logging level, keeping JSON output.
func SetLevel(level slog.Level) {
	SetLevelAndFormat(level, FormatJSON)
}

// SetOutput redirects console logs, e.g. to io.Discard in tests.
// The current level and format must be applied again afterwards.
func SetOutput(w io.Writer) {
	output = w
	SetLevelAndFormat(slog.LevelInfo, FormatJSON)
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// WithList returns a logger with entity list context.
func WithList(listID string) *slog.Logger {
	return Logger.With(slog.String("list_id", listID))
}

// WithModule returns a logger with module context.
func WithModule(moduleType string, moduleName string) *slog.Logger {
	return Logger.With(slog.String("module_type", moduleType), slog.String("module_name", moduleName))
}

// =============================================================================
// Run Context Types
// =============================================================================

// RunContext contains context information for view execution logging.
type RunContext struct {
	// RunID is the unique identifier of the run (required)
	RunID string
	// ViewName is the human-readable name of the view
	ViewName string
	// Stage is the current execution stage (source, step, output)
	Stage string
	// StepIndex is the index of the current step, -1 outside the step stage
	StepIndex int
	// DryRun indicates if output is skipped
	DryRun bool
}

// ErrorContext contains structured context for error logging.
type ErrorContext struct {
	RunID     string
	ViewName  string
	Stage     string
	StepIndex int

	ErrorCode string
	Err       error

	// Path is the file involved, if any
	Path string

	// Extra context as key-value pairs
	Extra map[string]interface{}
}

// =============================================================================
// Run Context Helpers
// =============================================================================

// WithRun returns a logger with run context attached.
// Only non-empty fields are included in the log output.
func WithRun(ctx RunContext) *slog.Logger {
	return Logger.With(buildContextAttrs(ctx)...)
}

// LogRunStart logs the start of a view execution.
func LogRunStart(ctx RunContext, recordsLoaded int) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs, slog.Int("records_loaded", recordsLoaded))
	Logger.Info("run started", attrs...)
}

// LogRunEnd logs the completion of a view execution.
func LogRunEnd(ctx RunContext, status string, recordsMatched int, duration time.Duration) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs,
		slog.String("status", status),
		slog.Int("records_matched", recordsMatched),
		slog.Duration("duration", duration),
	)
	Logger.Info("run completed", attrs...)
}

// LogStepEnd logs the result of one entity list step.
func LogStepEnd(ctx RunContext, kind string, activeFilters, records int) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs,
		slog.String("step_kind", kind),
		slog.Int("active_filters", activeFilters),
		slog.Int("records", records),
	)
	Logger.Debug("step completed", attrs...)
}

// LogError logs an error with full run context.
func LogError(message string, errCtx ErrorContext) {
	attrs := make([]any, 0, 12)

	if errCtx.RunID != "" {
		attrs = append(attrs, slog.String("run_id", errCtx.RunID))
	}
	if errCtx.ViewName != "" {
		attrs = append(attrs, slog.String("view_name", errCtx.ViewName))
	}
	if errCtx.Stage != "" {
		attrs = append(attrs, slog.String("stage", errCtx.Stage))
	}
	if errCtx.StepIndex >= 0 {
		attrs = append(attrs, slog.Int("step_index", errCtx.StepIndex))
	}
	if errCtx.ErrorCode != "" {
		attrs = append(attrs, slog.String("error_code", errCtx.ErrorCode))
	}
	if errCtx.Err != nil {
		attrs = append(attrs,
			slog.String("error", errCtx.Err.Error()),
			slog.String("error_type", fmt.Sprintf("%T", errCtx.Err)),
		)
		if chain := errorChain(errCtx.Err); len(chain) > 1 {
			attrs = append(attrs, slog.String("error_chain", strings.Join(chain, " -> ")))
		}
	}
	if errCtx.Path != "" {
		attrs = append(attrs, slog.String("path", errCtx.Path))
	}
	for k, v := range errCtx.Extra {
		attrs = append(attrs, slog.Any(k, v))
	}

	Logger.Error(message, attrs...)
}

func errorChain(err error) []string {
	chain := []string{err.Error()}
	for current := errors.Unwrap(err); current != nil; current = errors.Unwrap(current) {
		chain = append(chain, current.Error())
	}
	return chain
}

// buildContextAttrs builds a slice of slog attributes from a RunContext.
// Only non-empty fields are included.
func buildContextAttrs(ctx RunContext) []any {
	attrs := make([]any, 0, 6)

	attrs = append(attrs, slog.String("run_id", ctx.RunID))
	if ctx.ViewName != "" {
		attrs = append(attrs, slog.String("view_name", ctx.ViewName))
	}
	if ctx.Stage != "" {
		attrs = append(attrs, slog.String("stage", ctx.Stage))
	}
	if ctx.StepIndex >= 0 {
		attrs = append(attrs, slog.Int("step_index", ctx.StepIndex))
	}
	if ctx.DryRun {
		attrs = append(attrs, slog.Bool("dry_run", true))
	}

	return attrs
}

// =============================================================================
// Level and Format
// =============================================================================

// OutputFormat represents the log output format
type OutputFormat int

const (
	// FormatJSON is the default machine-readable JSON format
	FormatJSON OutputFormat = iota
	// FormatHuman is a human-readable console format with colors and prefixes
	FormatHuman
)

// ParseLevel converts a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// ParseFormat converts a format name (json, human) to an OutputFormat.
func ParseFormat(name string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "human", "text", "console":
		return FormatHuman, nil
	default:
		return FormatJSON, fmt.Errorf("invalid log format %q (expected json or human)", name)
	}
}

// SetLevelAndFormat sets both the log level and format.
func SetLevelAndFormat(level slog.Level, format OutputFormat) {
	Logger = slog.New(consoleHandler(level, format))
}

func consoleHandler(level slog.Level, format OutputFormat) slog.Handler {
	if format == FormatHuman {
		return NewHumanHandler(output, &HumanHandlerOptions{
			Level:     level,
			UseColors: isTerminal(output),
		})
	}
	return slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level})
}

// isTerminal returns true if the writer is a terminal (supports colors)
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		fi, err := f.Stat()
		if err != nil {
			return false
		}
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// formatName returns the name of the output format.
func formatName(f OutputFormat) string {
	switch f {
	case FormatHuman:
		return "human"
	default:
		return "json"
	}
}

// =============================================================================
// Log File Output Support
// =============================================================================

// logFile holds the currently open log file (if any)
var logFile *os.File

const (
	// maxLogFileSize is the maximum size of a log file before rotation (10MB)
	maxLogFileSize = 10 * 1024 * 1024
)

// rotateLogFile renames the log file with a timestamp suffix once it exceeds maxLogFileSize.
func rotateLogFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking log file size: %w", err)
	}

	if info.Size() >= maxLogFileSize {
		rotatedPath := fmt.Sprintf("%s.%s", path, time.Now().Format("20060102-150405"))
		if err := os.Rename(path, rotatedPath); err != nil {
			return fmt.Errorf("rotating log file: %w", err)
		}
	}

	return nil
}

// SetLogFile configures logging to write to both the console and the specified file.
// File logs are always JSON.
func SetLogFile(path string, level slog.Level, consoleFormat OutputFormat) error {
	CloseLogFile()

	if err := rotateLogFile(path); err != nil {
		Warn("log rotation failed", slog.String("error", err.Error()))
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	logFile = f

	Logger = slog.New(&dualHandler{
		console: consoleHandler(level, consoleFormat),
		file:    slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}),
	})

	Debug("log file opened",
		slog.String("path", path),
		slog.String("console_format", formatName(consoleFormat)),
	)

	return nil
}

// CloseLogFile closes the current log file if one is open.
func CloseLogFile() {
	if logFile == nil {
		return
	}
	if err := logFile.Sync(); err != nil {
		Warn("failed to sync log file", slog.String("error", err.Error()))
	}
	if err := logFile.Close(); err != nil {
		Warn("failed to close log file", slog.String("error", err.Error()))
	}
	logFile = nil
}

// dualHandler is a slog.Handler that writes to both console and file handlers.
type dualHandler struct {
	console slog.Handler
	file    slog.Handler
}

func (d *dualHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return d.console.Enabled(ctx, level) || d.file.Enabled(ctx, level)
}

func (d *dualHandler) Handle(ctx context.Context, r slog.Record) error {
	if d.console.Enabled(ctx, r.Level) {
		if err := d.console.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	if d.file.Enabled(ctx, r.Level) {
		if err := d.file.Handle(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (d *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &dualHandler{
		console: d.console.WithAttrs(attrs),
		file:    d.file.WithAttrs(attrs),
	}
}

func (d *dualHandler) WithGroup(name string) slog.Handler {
	return &dualHandler{
		console: d.console.WithGroup(name),
		file:    d.file.WithGroup(name),
	}
}
