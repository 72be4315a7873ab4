package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

type Logger struct {
	InfoLog  *slog.Logger
	ErrorLog *slog.Logger
}

func (l Logger) Info(message string, module string) {
	l.InfoLog.Info(message, "module", module)
}

func (l Logger) Error(message string) {
	l.ErrorLog.Error(message)
}

// Handler is a compact slog handler for interactive runs: one line per
// record, timestamp, level, module and message only.
type Handler struct {
	opts  *slog.HandlerOptions
	attrs []slog.Attr
	mu    *sync.Mutex
	out   io.Writer
}

func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &Handler{opts: opts, mu: &sync.Mutex{}, out: out}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	module := ""
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == "module" {
			module = attr.Value.String()
			return false
		}
		return true
	})
	for _, attr := range h.attrs {
		if attr.Key == "module" {
			module = attr.Value.String()
		}
	}

	timestamp := record.Time.Format("15:04:05.000")
	line := fmt.Sprintf("[%s] %s %s: %s\n", timestamp, record.Level, module, record.Message)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line)
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{
		opts:  h.opts,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
		mu:    h.mu,
		out:   h.out,
	}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return h
}
