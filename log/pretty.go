package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by the pretty handlers. Styles are bound to
// a renderer for the output writer, so color is dropped automatically when
// the writer is not a terminal.
type palette struct {
	key   lipgloss.Style
	str   lipgloss.Style
	num   lipgloss.Style
	yes   lipgloss.Style
	no    lipgloss.Style
	dur   lipgloss.Style
	time  lipgloss.Style
	null  lipgloss.Style
	trace lipgloss.Style
	debug lipgloss.Style
	info  lipgloss.Style
	warn  lipgloss.Style
	fail  lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		yes:   fg("2"),
		no:    fg("1"),
		dur:   fg("5"),
		time:  fg("4"),
		null:  fg("8"),
		trace: fg("8"),
		debug: fg("4"),
		info:  fg("2").Bold(true),
		warn:  fg("3").Bold(true),
		fail:  fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) string {
	name := strings.ToUpper(Level(l).String())

	switch {
	case l >= slog.LevelError:
		return p.fail.Render(name)
	case l >= slog.LevelWarn:
		return p.warn.Render(name)
	case l >= slog.LevelInfo:
		return p.info.Render(name)
	case l >= slog.LevelDebug:
		return p.debug.Render(name)
	default:
		return p.trace.Render(name)
	}
}

func (p palette) value(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return p.str.Render(v.String())

	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")

	case slog.KindDuration:
		return p.dur.Render(v.Duration().String())

	case slog.KindTime:
		return p.time.Render(v.Time().String())

	case slog.KindAny:
		if v.Any() == nil {
			return p.null.Render("null")
		}

		if level, ok := v.Any().(slog.Level); ok {
			return p.level(level)
		}

		if err, ok := v.Any().(error); ok {
			return p.no.Render(err.Error())
		}

		return p.str.Render(fmt.Sprint(v.Any()))

	default:
		return p.str.Render(v.String())
	}
}

// field is one flattened key/value pair of a record.
type field struct {
	key   string
	value slog.Value
}

// flatten resolves a and expands groups into dotted keys.
func flatten(dst []field, prefix string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return dst
	}

	if a.Value.Kind() == slog.KindGroup {
		sub := prefix
		if a.Key != "" {
			sub = prefix + a.Key + "."
		}

		for _, g := range a.Value.Group() {
			dst = flatten(dst, sub, g)
		}

		return dst
	}

	return append(dst, field{key: prefix + a.Key, value: a.Value})
}

// prettyBase holds state shared by both pretty handlers.
type prettyBase struct {
	opts       slog.HandlerOptions
	formatTime FormatTime
	style      palette
	mu         *sync.Mutex
	w          io.Writer
	fields     []field // from WithAttrs
	prefix     string  // from WithGroup
}

func newPrettyBase(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) prettyBase {
	return prettyBase{
		opts:       *opts,
		formatTime: formatTime,
		style:      newPalette(w),
		mu:         &sync.Mutex{},
		w:          w,
	}
}

func (b prettyBase) enabled(level slog.Level) bool {
	min := slog.LevelInfo
	if b.opts.Level != nil {
		min = b.opts.Level.Level()
	}

	return level >= min
}

// collect returns the header and attribute fields of r in output order.
func (b prettyBase) collect(r slog.Record) (header, attrs []field) {
	if !r.Time.IsZero() && b.formatTime != nil {
		if ts := b.formatTime(r.Time); ts != "" {
			header = append(header, field{slog.TimeKey, slog.StringValue(ts)})
		}
	}

	header = append(header, field{slog.LevelKey, slog.AnyValue(r.Level)})

	if b.opts.AddSource {
		if src := r.Source(); src != nil {
			header = append(header, field{
				slog.SourceKey,
				slog.StringValue(src.File + ":" + strconv.Itoa(src.Line)),
			})
		}
	}

	header = append(header, field{slog.MessageKey, slog.StringValue(r.Message)})

	attrs = slices.Clone(b.fields)

	r.Attrs(func(a slog.Attr) bool {
		attrs = flatten(attrs, b.prefix, a)

		return true
	})

	return header, attrs
}

func (b prettyBase) write(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.w.Write(buf.Bytes())

	return err
}

func (b prettyBase) withAttrs(attrs []slog.Attr) prettyBase {
	fields := slices.Clone(b.fields)
	for _, a := range attrs {
		fields = flatten(fields, b.prefix, a)
	}

	b.fields = fields

	return b
}

func (b prettyBase) withGroup(name string) prettyBase {
	if name != "" {
		b.prefix += name + "."
	}

	return b
}

// prettyTextHandler writes colorized key=value lines.
type prettyTextHandler struct {
	prettyBase
}

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyTextHandler {
	return &prettyTextHandler{newPrettyBase(w, opts, formatTime)}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	header, attrs := h.collect(r)

	buf := new(bytes.Buffer)

	for _, f := range append(header, attrs...) {
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.style.key.Render(f.key))
		buf.WriteByte('=')
		buf.WriteString(h.style.value(f.value))
	}

	return h.write(buf)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.withAttrs(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.withGroup(name)}
}

// prettyJSONHandler writes colorized, indented JSON-like objects.
type prettyJSONHandler struct {
	prettyBase
}

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyJSONHandler {
	return &prettyJSONHandler{newPrettyBase(w, opts, formatTime)}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	header, attrs := h.collect(r)

	buf := new(bytes.Buffer)
	buf.WriteString("{")

	for i, f := range append(header, attrs...) {
		if i > 0 {
			buf.WriteByte(',')
		}

		buf.WriteString("\n  ")
		buf.WriteString(h.style.key.Render(strconv.Quote(f.key)))
		buf.WriteString(": ")
		buf.WriteString(h.jsonValue(f.value))
	}

	buf.WriteString("\n}")

	return h.write(buf)
}

func (h *prettyJSONHandler) jsonValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return h.style.str.Render(strconv.Quote(v.String()))

	case slog.KindDuration, slog.KindTime:
		return h.style.value(slog.StringValue(strconv.Quote(v.String())))

	case slog.KindAny:
		if level, ok := v.Any().(slog.Level); ok {
			return h.style.level(level)
		}

		if v.Any() == nil {
			return h.style.null.Render("null")
		}

		return h.style.str.Render(strconv.Quote(fmt.Sprint(v.Any())))

	default:
		return h.style.value(v)
	}
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.withAttrs(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.withGroup(name)}
}
