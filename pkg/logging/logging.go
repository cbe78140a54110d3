package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// ComponentKey is the attribute that fills the component column.
const ComponentKey = "component"

// tabHandler is a slog.Handler that formats log records as:
//
//	<timestamp>\t<LEVEL>\t<component>\t<message>\t<key=value ...>
type tabHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Leveler
	component string
	attrs     []slog.Attr
}

// NewHandler returns a tab-separated handler writing to w.
func NewHandler(w io.Writer, level slog.Leveler) slog.Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &tabHandler{mu: &sync.Mutex{}, w: w, level: level, component: "-"}
}

// New returns a logger backed by NewHandler.
func New(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(NewHandler(w, level))
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}

// Component returns a child logger tagged with the given component name.
func Component(l *slog.Logger, name string) *slog.Logger {
	return l.With(ComponentKey, name)
}

func (h *tabHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *tabHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	ts := r.Time.UTC().Format("2006-01-02T15:04:05Z")
	fmt.Fprintf(&b, "%s\t%s\t%s\t%s", ts, r.Level.String(), h.component, r.Message)

	for _, a := range h.attrs {
		writeAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *tabHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &tabHandler{
		mu:        h.mu,
		w:         h.w,
		level:     h.level,
		component: h.component,
		attrs:     append([]slog.Attr{}, h.attrs...),
	}
	for _, a := range attrs {
		if a.Key == ComponentKey {
			next.component = a.Value.String()
			continue
		}
		next.attrs = append(next.attrs, a)
	}
	return next
}

func (h *tabHandler) WithGroup(string) slog.Handler { return h }

func writeAttr(b *strings.Builder, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	fmt.Fprintf(b, "\t%s=%v", a.Key, a.Value.Resolve())
}
