package clog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/fatih/color"
)

// leadColumns are printed on the headline, in this order, when present.
var leadColumns = []string{"method", "path", "status", "document"}

// TextHandler writes one colored headline per record followed by the
// remaining attributes, one per line. It is meant for local development.
type TextHandler struct {
	opts   textOptions
	attrs  []slog.Attr
	groups []string
	mu     *sync.Mutex
	w      io.Writer
}

type textOptions struct {
	color bool
	level slog.Leveler
}

type TextOption func(*textOptions)

func WithColor(enabled bool) TextOption {
	return func(o *textOptions) {
		o.color = enabled
	}
}

func WithLevel(level slog.Leveler) TextOption {
	return func(o *textOptions) {
		o.level = level
	}
}

func NewTextHandler(w io.Writer, opts ...TextOption) *TextHandler {
	o := textOptions{color: true, level: slog.LevelInfo}
	for _, opt := range opts {
		opt(&o)
	}
	return &TextHandler{opts: o, mu: &sync.Mutex{}, w: w}
}

func (h *TextHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.opts.level.Level()
}

func (h *TextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(slices.Clip(h.attrs), h.qualify(attrs)...)
	return &nh
}

func (h *TextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.groups = append(slices.Clip(h.groups), name)
	return &nh
}

func (h *TextHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if len(h.groups) == 0 {
		return attrs
	}
	prefix := ""
	for _, g := range h.groups {
		prefix += g + "."
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}
	return out
}

func (h *TextHandler) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if h.opts.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func levelColor(l slog.Level) color.Attribute {
	switch {
	case l >= slog.LevelError:
		return color.FgRed
	case l >= slog.LevelWarn:
		return color.FgYellow
	case l >= slog.LevelInfo:
		return color.FgBlue
	default:
		return color.FgCyan
	}
}

func (h *TextHandler) Handle(_ context.Context, record slog.Record) error {
	kv := make(map[string]slog.Value, len(h.attrs)+record.NumAttrs())
	for _, a := range h.attrs {
		kv[a.Key] = a.Value
	}
	var recAttrs []slog.Attr
	record.Attrs(func(a slog.Attr) bool {
		recAttrs = append(recAttrs, a)
		return true
	})
	for _, a := range h.qualify(recAttrs) {
		kv[a.Key] = a.Value
	}

	buf := &bytes.Buffer{}
	plain := h.paint()
	plain.Fprintf(buf, "%s ", record.Time.Format(time.RFC3339))
	h.paint(levelColor(record.Level)).Fprintf(buf, "%s ", record.Level)
	for _, key := range leadColumns {
		if v, ok := kv[key]; ok {
			plain.Fprintf(buf, "%s ", v)
			delete(kv, key)
		}
	}
	h.paint(color.FgGreen).Fprint(buf, record.Message)
	if e, ok := kv[ErrorAttributeKey]; ok {
		delete(kv, ErrorAttributeKey)
		h.paint(color.FgRed).Fprintf(buf, " %s", e)
	}
	buf.WriteByte('\n')

	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		plain.Fprintf(buf, "    %s=%s\n", k, kv[k])
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("can't write log record: %w", err)
	}
	return nil
}
