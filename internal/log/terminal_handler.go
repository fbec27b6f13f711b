package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiDim    = "\033[2m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// runIDWidth is how much of a run ID the terminal prefix shows.
const runIDWidth = 8

// TerminalHandler formats log records as terminal output, coloured when the
// writer is a terminal. A run_id attribute is lifted into a short prefix.
//
// Output format:
//
//	15:04:05.000 INF [1f0c2a9e] fetching records 1 to 100 taxid=562
type TerminalHandler struct {
	writer io.Writer
	level  slog.Leveler
	colour bool
	runID  string
	attrs  []slog.Attr
	groups []string
	mu     *sync.Mutex
}

func newTerminalHandler(w io.Writer, opts *slog.HandlerOptions) *TerminalHandler {
	var level slog.Leveler
	if opts != nil && opts.Level != nil {
		level = opts.Level
	} else {
		level = slog.LevelInfo
	}
	return &TerminalHandler{
		writer: w,
		level:  level,
		colour: isTerminal(w),
		mu:     &sync.Mutex{},
	}
}

// isTerminal reports whether w is a character device.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func (h *TerminalHandler) style(buf *bytes.Buffer, code, s string) {
	if !h.colour {
		buf.WriteString(s)
		return
	}
	buf.WriteString(code)
	buf.WriteString(s)
	buf.WriteString(ansiReset)
}

func (h *TerminalHandler) clone() *TerminalHandler {
	c := *h
	return &c
}

// Enabled reports whether the handler handles records at the given level.
func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats a log record as coloured terminal output and writes it.
func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	buf.Grow(256)

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	h.style(&buf, ansiDim, ts.Format("15:04:05.000"))
	buf.WriteByte(' ')

	colour, label := levelStyle(r.Level)
	h.style(&buf, colour, label)
	buf.WriteByte(' ')

	runID := h.runID
	var attrs []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "run_id" && len(h.groups) == 0 {
			runID = a.Value.String()
			return true
		}
		attrs = append(attrs, a)
		return true
	})
	if runID != "" {
		h.style(&buf, ansiDim, "["+shortID(runID)+"]")
		buf.WriteByte(' ')
	}

	h.style(&buf, ansiBold, r.Message)

	for _, a := range h.attrs {
		h.appendAttr(&buf, a, h.groups)
	}
	for _, a := range attrs {
		h.appendAttr(&buf, a, h.groups)
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

// WithAttrs returns a new handler whose attributes consist of both the
// existing attributes and attrs.
func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	merged := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(merged, h.attrs)
	for _, a := range attrs {
		if a.Key == "run_id" && len(h.groups) == 0 {
			c.runID = a.Value.String()
			continue
		}
		merged = append(merged, a)
	}
	c.attrs = merged
	return c
}

// WithGroup returns a new handler with the given group name prepended to
// subsequent attribute keys.
func (h *TerminalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	extended := make([]string, len(h.groups)+1)
	copy(extended, h.groups)
	extended[len(h.groups)] = name
	c := h.clone()
	c.groups = extended
	return c
}

func shortID(id string) string {
	if len(id) > runIDWidth {
		return id[:runIDWidth]
	}
	return id
}

func levelStyle(level slog.Level) (string, string) {
	switch {
	case level < slog.LevelInfo:
		return ansiCyan, "DBG"
	case level < slog.LevelWarn:
		return ansiGreen, "INF"
	case level < slog.LevelError:
		return ansiYellow, "WRN"
	default:
		return ansiRed, "ERR"
	}
}

func (h *TerminalHandler) appendAttr(buf *bytes.Buffer, a slog.Attr, groups []string) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		var prefix []string
		if a.Key != "" {
			prefix = make([]string, len(groups)+1)
			copy(prefix, groups)
			prefix[len(groups)] = a.Key
		} else {
			prefix = groups
		}
		for _, ga := range attrs {
			h.appendAttr(buf, ga, prefix)
		}
		return
	}

	buf.WriteByte(' ')
	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	h.style(buf, ansiDim, key+"=")
	buf.WriteString(formatAttrValue(a.Value))
}

func formatAttrValue(v slog.Value) string {
	if v.Kind() == slog.KindString {
		s := v.String()
		if strings.ContainsAny(s, " \t\n\"\\") {
			return fmt.Sprintf("%q", s)
		}
		return s
	}
	return v.String()
}
