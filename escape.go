package marq

import (
	"fmt"
	"strings"
)

// Escape makes s printable on one line: tab and newline become \t and \n,
// other bytes below 0x20 become \d followed by two decimal digits and a
// backslash is doubled.
func Escape(s string) string {
	return escape(s, false)
}

// EscapeJSON is Escape that additionally escapes the double quote.
func EscapeJSON(s string) string {
	return escape(s, true)
}

func escape(s string, quote bool) string {
	clean := true
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 || c == '\\' || quote && c == '"' {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\\':
			b.WriteString(`\\`)
		case quote && c == '"':
			b.WriteString(`\"`)
		case c < 0x20:
			fmt.Fprintf(&b, `\d%02d`, c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Unescape reverses Escape and EscapeJSON.
func Unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			return "", fmt.Errorf("unescape: trailing backslash")
		}
		i++
		switch s[i] {
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case 'd':
			if i+2 >= len(s) || !isDigit(s[i+1]) || !isDigit(s[i+2]) {
				return "", fmt.Errorf("unescape: malformed \\d at %d", i-1)
			}
			b.WriteByte((s[i+1]-'0')*10 + s[i+2] - '0')
			i += 2
		default:
			return "", fmt.Errorf("unescape: unknown escape \\%c at %d", s[i], i-1)
		}
	}
	return b.String(), nil
}
