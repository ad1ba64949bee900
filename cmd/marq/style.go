package main

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"pkt.systems/marq"
	"pkt.systems/marq/internal/config"
)

// palette holds the styles of one dump theme.
type palette struct {
	name    string
	kind    lipgloss.Style
	field   lipgloss.Style
	value   lipgloss.Style
	rng     lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	plain   bool
}

var themeNames = []string{"default", "boring", "mono"}

// availableThemes returns the theme names in sorted order.
func availableThemes() []string {
	names := append([]string(nil), themeNames...)
	sort.Strings(names)
	return names
}

// newPalette builds the named theme. The default theme takes its colors
// from the configuration; boring emits no escape sequences and mono only
// uses bold and faint.
func newPalette(name string, styles config.Styles, color bool) (palette, bool) {
	r := lipgloss.NewRenderer(nil)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	switch strings.ToLower(name) {
	case "", "default":
		return palette{
			name:    "default",
			kind:    r.NewStyle().Foreground(lipgloss.Color(styles.Kind)).Bold(true),
			field:   r.NewStyle().Foreground(lipgloss.Color(styles.Field)),
			value:   r.NewStyle().Foreground(lipgloss.Color(styles.Value)),
			rng:     r.NewStyle().Foreground(lipgloss.Color(styles.Range)),
			warning: r.NewStyle().Foreground(lipgloss.Color(styles.Warning)),
			err:     r.NewStyle().Foreground(lipgloss.Color(styles.Error)).Bold(true),
			plain:   !color,
		}, true
	case "mono":
		return palette{
			name:    "mono",
			kind:    r.NewStyle().Bold(true),
			field:   r.NewStyle().Faint(true),
			value:   r.NewStyle(),
			rng:     r.NewStyle().Faint(true),
			warning: r.NewStyle().Underline(true),
			err:     r.NewStyle().Bold(true),
			plain:   !color,
		}, true
	case "boring":
		return boringPalette(), true
	}
	return palette{}, false
}

func boringPalette() palette {
	s := lipgloss.NewStyle()
	return palette{name: "boring", kind: s, field: s, value: s, rng: s, warning: s, err: s, plain: true}
}

func (p palette) render(s lipgloss.Style, text string) string {
	if p.plain || text == "" {
		return text
	}
	return s.Render(text)
}

// treeLine is one DumpTree line split into its parts.
type treeLine struct {
	indent string
	kind   string
	fields []treeField
}

type treeField struct {
	key    string
	value  string
	quoted bool
	// set when the quoted value was cut short
	open bool
}

// parseTreeLine splits a DumpTree line. Values are kept escaped.
func parseTreeLine(line string) treeLine {
	var tl treeLine
	rest := strings.TrimLeft(line, " ")
	tl.indent = line[:len(line)-len(rest)]
	if i := strings.IndexByte(rest, ' '); i >= 0 {
		tl.kind, rest = rest[:i], rest[i+1:]
	} else {
		tl.kind, rest = rest, ""
	}
	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq < 0 {
			tl.fields = append(tl.fields, treeField{value: rest})
			break
		}
		f := treeField{key: rest[:eq]}
		rest = rest[eq+1:]
		if strings.HasPrefix(rest, `"`) {
			f.quoted = true
			end := closingQuote(rest)
			if end < 0 {
				f.value, f.open, rest = rest[1:], true, ""
			} else {
				f.value, rest = rest[1:end], strings.TrimPrefix(rest[end+1:], " ")
			}
		} else if sp := strings.IndexByte(rest, ' '); sp >= 0 {
			f.value, rest = rest[:sp], rest[sp+1:]
		} else {
			f.value, rest = rest, ""
		}
		tl.fields = append(tl.fields, f)
	}
	return tl
}

// closingQuote returns the index of the first unescaped quote after s[0], or
// -1 when the value was cut short.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// paintTreeLine styles one DumpTree line. Link resources become OSC 8
// hyperlinks when osc8 is set.
func (p palette) paintTreeLine(line string, osc8 bool) string {
	tl := parseTreeLine(line)
	var b strings.Builder
	b.WriteString(tl.indent)
	b.WriteString(p.render(p.kind, tl.kind))
	link := tl.kind == "Link" || tl.kind == "View" || tl.kind == "Reference"
	for _, f := range tl.fields {
		b.WriteByte(' ')
		if f.key != "" {
			b.WriteString(p.render(p.field, f.key+"="))
		}
		value := f.value
		if f.quoted {
			value = `"` + value
			if !f.open {
				value += `"`
			}
		}
		styled := p.render(p.value, value)
		if osc8 && link && f.key == "resource" && !f.open {
			if target, err := marq.Unescape(f.value); err == nil {
				styled = hyperlink(target, styled)
			}
		}
		b.WriteString(styled)
	}
	return b.String()
}

// paintTokenLine styles one DumpTokens line.
func (p palette) paintTokenLine(line string) string {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) != 3 {
		return line
	}
	return p.render(p.rng, parts[0]) + "\t" + p.render(p.kind, parts[1]) + "\t" + p.render(p.value, parts[2])
}
