// Package logging configures the daemon logger: slog with a line handler
// writing "timestamp | LEVEL | message key=value ..." to stdout and to the
// append-mode log file inside the working tree. The file lives in the repo so
// log updates ride along in the rolling PR.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const timeFormat = "2006-01-02 15:04:05"

// Options controls logger construction.
type Options struct {
	// FilePath is the log file to append to; empty disables file output
	FilePath string
	// Level is the minimum level, defaulting to Info
	Level slog.Level
	// Console receives a copy of every line; nil means os.Stdout
	Console io.Writer
}

// New builds the logger and returns a close func for the underlying file.
func New(opts Options) (*slog.Logger, func() error, error) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	writers := []io.Writer{console}
	closeFn := func() error { return nil }

	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
		closeFn = f.Close
	}

	h := &lineHandler{
		mu:    &sync.Mutex{},
		w:     io.MultiWriter(writers...),
		level: opts.Level,
	}
	return slog.New(h), closeFn, nil
}

// lineHandler renders records as single pipe-separated lines.
type lineHandler struct {
	mu    *sync.Mutex // shared across WithAttrs copies
	w     io.Writer
	level slog.Level
	attrs []slog.Attr
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *lineHandler) Handle(_ context.Context, rec slog.Record) error {
	var b strings.Builder
	ts := rec.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	fmt.Fprintf(&b, "%s | %-8s | %s", ts.Format(timeFormat), rec.Level.String(), rec.Message)

	for _, attr := range h.attrs {
		writeAttr(&b, attr)
	}
	rec.Attrs(func(attr slog.Attr) bool {
		writeAttr(&b, attr)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &lineHandler{mu: h.mu, w: h.w, level: h.level, attrs: merged}
}

func (h *lineHandler) WithGroup(string) slog.Handler {
	// Groups are not used by this daemon; attrs stay flat.
	return h
}

func writeAttr(b *strings.Builder, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	fmt.Fprintf(b, " %s=%v", attr.Key, attr.Value.Resolve().Any())
}
