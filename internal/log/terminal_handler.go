package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
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
	ansiBlue   = "\033[34m"
)

// componentKey is rendered as a bracketed prefix instead of key=value.
const componentKey = "component"

// TerminalHandler formats log records as coloured single-line terminal
// output. The component and request id, when present, form a bracketed
// prefix ahead of the message:
//
//	15:04:05.000 INF [api #a1b2c3/000004] request completed status=200
//	15:04:05.120 WRN [search] remote search failed query=user page=0
type TerminalHandler struct {
	writer io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
	mu     *sync.Mutex
}

func newTerminalHandler(w io.Writer, opts *slog.HandlerOptions) *TerminalHandler {
	h := &TerminalHandler{writer: w, level: slog.LevelInfo, mu: &sync.Mutex{}}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes r as one line.
func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var recordAttrs []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		recordAttrs = append(recordAttrs, a)
		return true
	})

	component, handlerAttrs := takeString(h.attrs, componentKey, true)
	requestID, recordAttrs := takeString(recordAttrs, string(RequestIDKey), false)

	var buf bytes.Buffer
	buf.Grow(256)

	buf.WriteString(ansiDim + ts.Format("15:04:05.000") + ansiReset + " ")
	color, label := levelStyle(r.Level)
	buf.WriteString(color + label + ansiReset + " ")

	if prefix := linePrefix(component, requestID); prefix != "" {
		buf.WriteString(ansiBlue + "[" + prefix + "] " + ansiReset)
	}
	buf.WriteString(ansiBold + r.Message + ansiReset)

	for _, a := range handlerAttrs {
		appendAttr(&buf, a, h.groups)
	}
	for _, a := range recordAttrs {
		appendAttr(&buf, a, h.groups)
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

// WithAttrs returns a handler carrying attrs in addition to h's attributes.
func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append(make([]slog.Attr, 0, len(h.attrs)+len(attrs)), h.attrs...), attrs...)
	return &next
}

// WithGroup returns a handler that qualifies later attribute keys with name.
func (h *TerminalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append(make([]string, 0, len(h.groups)+1), h.groups...), name)
	return &next
}

func linePrefix(component, requestID string) string {
	switch {
	case component != "" && requestID != "":
		return component + " #" + requestID
	case requestID != "":
		return "#" + requestID
	default:
		return component
	}
}

// takeString removes the string attributes named key from attrs and returns
// the last (innermost) or first value found.
func takeString(attrs []slog.Attr, key string, last bool) (string, []slog.Attr) {
	value := ""
	found := false
	rest := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		if a.Key != key || a.Value.Kind() != slog.KindString {
			rest = append(rest, a)
			continue
		}
		if last || !found {
			value = a.Value.String()
		}
		found = true
	}
	return value, rest
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

func appendAttr(buf *bytes.Buffer, a slog.Attr, groups []string) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		prefix := groups
		if a.Key != "" {
			prefix = append(append(make([]string, 0, len(groups)+1), groups...), a.Key)
		}
		for _, ga := range a.Value.Group() {
			appendAttr(buf, ga, prefix)
		}
		return
	}

	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	buf.WriteString(" " + ansiDim + key + "=" + ansiReset)
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
