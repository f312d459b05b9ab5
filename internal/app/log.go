package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// ssbHandler is a custom slog.Handler that formats log records as:
//
//	<timestamp>\t<level>\t<runID>\t<message>\t<key=value ...>
//
// Every record goes to w. Records at or above echoLevel are also written to
// echo, when set.
type ssbHandler struct {
	w         io.Writer
	echo      io.Writer
	echoLevel slog.Level
	runID     string
	attrs     []slog.Attr
}

func (h *ssbHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *ssbHandler) Handle(_ context.Context, r slog.Record) error {
	line := h.format(r)
	if _, err := io.WriteString(h.w, line); err != nil {
		return err
	}
	if h.echo != nil && r.Level >= h.echoLevel {
		if _, err := io.WriteString(h.echo, line); err != nil {
			return err
		}
	}
	return nil
}

func (h *ssbHandler) format(r slog.Record) string {
	ts := r.Time.UTC().Format("2006-01-02T15:04:05Z")
	line := fmt.Sprintf("%s\t%s\t%s\t%s", ts, r.Level.String(), h.runID, r.Message)

	// Write pre-set attrs.
	for _, a := range h.attrs {
		line += fmt.Sprintf("\t%s=%v", a.Key, a.Value)
	}

	// Write per-record attrs.
	r.Attrs(func(a slog.Attr) bool {
		line += fmt.Sprintf("\t%s=%v", a.Key, a.Value)
		return true
	})

	return line + "\n"
}

func (h *ssbHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ssbHandler{
		w:         h.w,
		echo:      h.echo,
		echoLevel: h.echoLevel,
		runID:     h.runID,
		attrs:     append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *ssbHandler) WithGroup(string) slog.Handler { return h }

// newLogger creates a structured logger that appends to logDir/ssb.log and
// mirrors warnings and errors to stderr. Progress output belongs to the
// console reporter, so info records stay in the file.
// It returns the slog.Logger, the open log file (for cleanup), and any error.
func newLogger(logDir string, runID string) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	logPath := filepath.Join(logDir, "ssb.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	handler := &ssbHandler{w: f, echo: os.Stderr, echoLevel: slog.LevelWarn, runID: runID}
	return slog.New(handler), f, nil
}

// slogAdapter wraps *slog.Logger to satisfy the ssb.Logger interface.
type slogAdapter struct {
	l *slog.Logger
}

func (a *slogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *slogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }
