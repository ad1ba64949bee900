package marq

import (
	"strings"
	"testing"
)

func TestEscape(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
		json string
	}{
		{in: "plain", want: "plain", json: "plain"},
		{in: "a\tb\nc", want: `a\tb\nc`, json: `a\tb\nc`},
		{in: "x\x01y\x1f", want: `x\d01y\d31`, json: `x\d01y\d31`},
		{in: `back\slash`, want: `back\\slash`, json: `back\\slash`},
		{in: `say "hi"`, want: `say "hi"`, json: `say \"hi\"`},
		{in: "\r", want: `\d13`, json: `\d13`},
	}
	for _, tc := range tests {
		if got := Escape(tc.in); got != tc.want {
			t.Fatalf("Escape(%q) = %q want %q", tc.in, got, tc.want)
		}
		if got := EscapeJSON(tc.in); got != tc.json {
			t.Fatalf("EscapeJSON(%q) = %q want %q", tc.in, got, tc.json)
		}
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	t.Parallel()
	var all strings.Builder
	for c := 0; c < 0x80; c++ {
		all.WriteByte(byte(c))
	}
	inputs := []string{
		"",
		all.String(),
		"\\d01 is not an escape once escaped",
		"ünïcødé\t\n\"\\",
		`\\\"`,
	}
	for _, in := range inputs {
		for name, esc := range map[string]func(string) string{"Escape": Escape, "EscapeJSON": EscapeJSON} {
			out, err := Unescape(esc(in))
			if err != nil {
				t.Fatalf("Unescape(%s(%q)): %v", name, in, err)
			}
			if out != in {
				t.Fatalf("%s round trip of %q gave %q", name, in, out)
			}
		}
	}
}

func TestUnescapeRejectsMalformed(t *testing.T) {
	t.Parallel()
	for _, in := range []string{`\`, `\d1`, `\dx1`, `\q`} {
		if _, err := Unescape(in); err == nil {
			t.Fatalf("Unescape(%q): expected error", in)
		}
	}
}

func TestDumpEscapesRoundTrip(t *testing.T) {
	t.Parallel()
	src := "```\nline one\n\tindented \"quoted\" \\ back\n```\n"
	root, _ := Parse([]byte(src))
	want := root.Children[0].Data.(*CodeData).Source
	var out strings.Builder
	if err := DumpTree(&out, root); err != nil {
		t.Fatalf("dump: %v", err)
	}
	line := strings.Split(out.String(), "\n")[1]
	const prefix = `  CodeBlock source="`
	if !strings.HasPrefix(line, prefix) || !strings.HasSuffix(line, `"`) {
		t.Fatalf("unexpected dump line %q", line)
	}
	got, err := Unescape(strings.TrimSuffix(strings.TrimPrefix(line, prefix), `"`))
	if err != nil {
		t.Fatalf("unescape: %v", err)
	}
	if got != want {
		t.Fatalf("decoded %q want %q", got, want)
	}
}
