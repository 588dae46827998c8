package logger

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
)

// Severity markers written at the start of each tagged line.
const (
	TagError = "[ERR]"
	TagWarn  = "[WARN]"
	TagInfo  = "[INFO]"
	TagDebug = "[DEBUG]"
)

// tagHandler writes one line per record: "[ERR] message key=value ...".
type tagHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

func newTagHandler(w io.Writer, level slog.Leveler) *tagHandler {
	return &tagHandler{
		mu:    &sync.Mutex{},
		w:     w,
		level: level,
	}
}

// Tag returns the severity marker for level.
func Tag(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return TagError
	case level >= slog.LevelWarn:
		return TagWarn
	case level >= slog.LevelInfo:
		return TagInfo
	default:
		return TagDebug
	}
}

func (h *tagHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *tagHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	sb.WriteString(Tag(r.Level))
	sb.WriteString(" ")
	sb.WriteString(r.Message)

	for _, a := range h.attrs {
		appendAttr(&sb, "", a)
	}

	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&sb, h.prefix, a)

		return true
	})

	sb.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := io.WriteString(h.w, sb.String())

	return err
}

func (h *tagHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)

	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}

		clone.attrs = append(clone.attrs, a)
	}

	return &clone
}

func (h *tagHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	clone := *h
	clone.prefix = h.prefix + name + "."

	return &clone
}

func appendAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix += a.Key + "."
		}

		for _, ga := range a.Value.Group() {
			appendAttr(sb, groupPrefix, ga)
		}

		return
	}

	val := a.Value.String()
	if strings.ContainsAny(val, " \t\n\"=") || val == "" {
		val = strconv.Quote(val)
	}

	sb.WriteString(" ")
	sb.WriteString(prefix)
	sb.WriteString(a.Key)
	sb.WriteString("=")
	sb.WriteString(val)
}
