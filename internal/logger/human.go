package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorCyan   = "\033[36m"
)

// maxInlineAttrs is the number of attributes printed on the log line.
const maxInlineAttrs = 6

// HumanHandlerOptions configures the human-readable log handler.
type HumanHandlerOptions struct {
	// Level is the minimum log level to output
	Level slog.Level
	// UseColors enables ANSI color codes
	UseColors bool
}

// HumanHandler is a slog handler that outputs one readable line per record:
//
//	15:04:05 ✓ run completed run_id=... status=success records_matched=2
type HumanHandler struct {
	opts   HumanHandlerOptions
	mu     *sync.Mutex
	writer io.Writer
	attrs  []slog.Attr
	prefix string
}

// NewHumanHandler creates a new human-readable log handler.
func NewHumanHandler(w io.Writer, opts *HumanHandlerOptions) *HumanHandler {
	if opts == nil {
		opts = &HumanHandlerOptions{Level: slog.LevelInfo}
	}
	return &HumanHandler{
		opts:   *opts,
		mu:     &sync.Mutex{},
		writer: w,
	}
}

// Enabled returns true if the handler is enabled for the given level.
func (h *HumanHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level
}

// Handle outputs a log record in human-readable format.
func (h *HumanHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	sb.WriteString(r.Time.Format("15:04:05"))
	sb.WriteString(" ")
	sb.WriteString(h.levelPrefix(r.Level, r.Message))
	sb.WriteString(" ")
	sb.WriteString(r.Message)

	parts := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		parts = append(parts, formatAttr(a))
	}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, formatAttr(slog.Attr{Key: h.prefix + a.Key, Value: a.Value}))
		return true
	})

	if len(parts) > 0 {
		shown := parts
		if len(shown) > maxInlineAttrs {
			shown = shown[:maxInlineAttrs]
		}
		sb.WriteString(" ")
		sb.WriteString(strings.Join(shown, " "))
		if extra := len(parts) - len(shown); extra > 0 {
			sb.WriteString(fmt.Sprintf(" (+%d more)", extra))
		}
	}
	sb.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, sb.String())
	return err
}

// WithAttrs returns a new handler with the given attributes added.
func (h *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &clone
}

// WithGroup returns a new handler that prefixes later attribute keys with name.
func (h *HumanHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// levelPrefix returns a symbol for the level, using ✓ for completion messages.
func (h *HumanHandler) levelPrefix(level slog.Level, message string) string {
	msg := strings.ToLower(message)
	isSuccess := strings.Contains(msg, "completed") || strings.Contains(msg, "success")

	var prefix, color string
	switch {
	case level >= slog.LevelError:
		prefix, color = "✗", colorRed
	case level >= slog.LevelWarn:
		prefix, color = "⚠", colorYellow
	case level >= slog.LevelInfo && isSuccess:
		prefix, color = "✓", colorGreen
	case level >= slog.LevelInfo:
		prefix, color = "ℹ", colorCyan
	default:
		prefix, color = "·", colorReset
	}

	if h.opts.UseColors {
		return color + prefix + colorReset
	}
	return prefix
}

// formatAttr formats a single attribute for display.
func formatAttr(a slog.Attr) string {
	switch v := a.Value.Resolve().Any().(type) {
	case time.Duration:
		return fmt.Sprintf("%s=%s", a.Key, formatDuration(v))
	case float64:
		return fmt.Sprintf("%s=%.2f", a.Key, v)
	case string:
		if strings.ContainsAny(v, " \t\"") {
			return fmt.Sprintf("%s=%q", a.Key, v)
		}
		return a.Key + "=" + v
	default:
		return fmt.Sprintf("%s=%v", a.Key, v)
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	default:
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
}
