// Package logctx provides the slog handler pkger installs as its default
// logger.
//
// cruxd, the repository this package's shape is modeled on, delegates this
// concern to a private, unpublished handler library
// (github.com/cruciblehq/crex) that lives in the same origin org as cruxd
// itself and cannot be fetched here. This package reimplements the same
// surface — an unbuffered, level-gated slog.Handler paired with a pluggable
// formatter, configured post-parse from CLI flags — directly on top of
// log/slog, which is the standard library's own structured logging
// façade and needs no further justification.
package logctx

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Handler is a slog.Handler whose level, formatter, and output stream can be
// reconfigured after construction, once CLI flags have been parsed.
type Handler struct {
	mu        sync.Mutex
	level     *slog.LevelVar
	formatter *Formatter
	stream    io.Writer
	group     string
	attrs     []slog.Attr
}

// NewHandler creates a Handler writing to stderr at info level with the
// default pretty formatter.
func NewHandler() *Handler {
	lv := &slog.LevelVar{}
	lv.Set(slog.LevelInfo)
	return &Handler{
		level:     lv,
		formatter: NewPrettyFormatter(false),
		stream:    os.Stderr,
	}
}

// SetLevel changes the minimum level handled.
func (h *Handler) SetLevel(level slog.Level) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.level.Set(level)
}

// SetFormatter swaps the formatter used to render records.
func (h *Handler) SetFormatter(f *Formatter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.formatter = f
}

// SetStream redirects output to w.
func (h *Handler) SetStream(w io.Writer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stream = w
}

// Flush is a no-op for unbuffered streams; kept for parity with buffered
// sinks that may be wired in later.
func (h *Handler) Flush() {}

// Enabled reports whether level is handled given the current minimum level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle renders and writes a single record.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	formatter, stream, group := h.formatter, h.stream, h.group
	attrs := append([]slog.Attr(nil), h.attrs...)
	h.mu.Unlock()

	line := formatter.Format(r, group, attrs)
	_, err := io.WriteString(stream, line)
	return err
}

// WithAttrs returns a derived handler carrying additional fields.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	clone := &Handler{
		level:     h.level,
		formatter: h.formatter,
		stream:    h.stream,
		group:     h.group,
		attrs:     append(append([]slog.Attr(nil), h.attrs...), attrs...),
	}
	return clone
}

// WithGroup returns a derived handler that nests subsequent attributes under
// name.
func (h *Handler) WithGroup(name string) slog.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	clone := &Handler{
		level:     h.level,
		formatter: h.formatter,
		stream:    h.stream,
		group:     joinGroup(h.group, name),
		attrs:     append([]slog.Attr(nil), h.attrs...),
	}
	return clone
}

func joinGroup(existing, name string) string {
	if existing == "" {
		return name
	}
	return existing + "." + name
}
