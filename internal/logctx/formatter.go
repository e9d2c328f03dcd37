package logctx

import (
	"fmt"
	"log/slog"
	"strings"
)

// Facet is a single component of a rendered log line that the §6 filter
// string can hide: Date, Fields, Level, or Spans (group path).
type Facet byte

const (
	FacetDate   Facet = 'D'
	FacetFields Facet = 'F'
	FacetLevel  Facet = 'L'
	FacetSpans  Facet = 'S'
)

// Formatter renders a slog.Record as a single line of text.
type Formatter struct {
	tty     bool
	verbose bool
	hidden  map[Facet]bool
}

// NewPrettyFormatter creates a formatter. tty controls whether ANSI color
// is applied to the level badge.
func NewPrettyFormatter(tty bool) *Formatter {
	return &Formatter{tty: tty, hidden: make(map[Facet]bool)}
}

// SetVerbose controls whether the record's program counter is appended
// to each line as "(pc=<hex>)".
func (f *Formatter) SetVerbose(v bool) { f.verbose = v }

// ApplyFilter hides facets named by chars in s (case-insensitive); any
// character outside {D,F,L,S} is ignored, per §6's filter string contract.
func (f *Formatter) ApplyFilter(s string) {
	for _, c := range strings.ToUpper(s) {
		switch Facet(c) {
		case FacetDate, FacetFields, FacetLevel, FacetSpans:
			f.hidden[Facet(c)] = true
		}
	}
}

// Format renders r as a single newline-terminated line.
func (f *Formatter) Format(r slog.Record, group string, attrs []slog.Attr) string {
	var b strings.Builder

	if !f.hidden[FacetDate] {
		b.WriteString(r.Time.Format("15:04:05.000"))
		b.WriteByte(' ')
	}

	if !f.hidden[FacetLevel] {
		b.WriteString(f.levelBadge(r.Level))
		b.WriteByte(' ')
	}

	if !f.hidden[FacetSpans] && group != "" {
		b.WriteByte('[')
		b.WriteString(group)
		b.WriteString("] ")
	}

	b.WriteString(r.Message)

	if !f.hidden[FacetFields] {
		for _, a := range attrs {
			fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		}
		r.Attrs(func(a slog.Attr) bool {
			fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
			return true
		})
	}

	if f.verbose && r.PC != 0 {
		fmt.Fprintf(&b, " (pc=%x)", r.PC)
	}

	b.WriteByte('\n')
	return b.String()
}

func (f *Formatter) levelBadge(level slog.Level) string {
	label := level.String()
	if !f.tty {
		return label
	}
	code := "37"
	switch {
	case level >= slog.LevelError:
		code = "31"
	case level >= slog.LevelWarn:
		code = "33"
	case level >= slog.LevelInfo:
		code = "36"
	default:
		code = "90"
	}
	return fmt.Sprintf("\x1b[%sm%s\x1b[0m", code, label)
}
