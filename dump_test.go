package marq

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDumpTokens(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	if err := DumpTokens(&out, Scan([]byte("# Hi\n"))); err != nil {
		t.Fatalf("dump: %v", err)
	}
	want := "1:1-1:2\tHeading\t#\n" +
		"1:3-1:5\tText\tHi\n" +
		"1:5-2:1\tNewline\t\\n\n"
	if out.String() != want {
		t.Fatalf("unexpected token dump:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestDumpTree(t *testing.T) {
	t.Parallel()
	root, _ := Parse([]byte("# Hi\n\n- [x] done {2024-05-01}\n"))
	var out bytes.Buffer
	if err := DumpTree(&out, root); err != nil {
		t.Fatalf("dump: %v", err)
	}
	want := strings.Join([]string{
		"Document",
		"  Section level=1",
		"    Content",
		`      Text value="Hi"`,
		`    List type="check"`,
		`      CheckItem checked=true marker="-"`,
		"        Paragraph",
		`          Text value="done "`,
		`          DateTime value="2024-05-01"`,
		"",
	}, "\n")
	if out.String() != want {
		t.Fatalf("unexpected tree dump:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestDumpTreeShowsAttributes(t *testing.T) {
	t.Parallel()
	root, _ := Parse([]byte("---\ntitle: Post\n---\nBody\n"))
	var out bytes.Buffer
	if err := DumpTree(&out, root); err != nil {
		t.Fatalf("dump: %v", err)
	}
	first := strings.SplitN(out.String(), "\n", 2)[0]
	if first != `Document @title="Post"` {
		t.Fatalf("unexpected document line %q", first)
	}
}

func TestDumpTreeEscapesQuotes(t *testing.T) {
	t.Parallel()
	root := NewNode(KindDocument, Range{}, &DocumentData{})
	root.Append(NewNode(KindText, Range{}, &TextData{Value: `a" key="b`}))
	var out bytes.Buffer
	if err := DumpTree(&out, root); err != nil {
		t.Fatalf("dump: %v", err)
	}
	want := "Document\n  Text value=\"a\\\" key=\\\"b\"\n"
	if out.String() != want {
		t.Fatalf("unexpected tree dump %q, want %q", out.String(), want)
	}
}

func TestDumpJSON(t *testing.T) {
	t.Parallel()
	root, _ := Parse([]byte("a"))
	var out bytes.Buffer
	if err := DumpJSON(&out, root); err != nil {
		t.Fatalf("dump: %v", err)
	}
	want := `{"kind":"Document","range":"1:1-1:2","children":[
  {"kind":"Paragraph","range":"1:1-1:2","children":[
    {"kind":"Text","range":"1:1-1:2","value":"a"}
  ]}
]}
`
	if out.String() != want {
		t.Fatalf("unexpected json dump:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestDumpJSONIsValidForSamples(t *testing.T) {
	t.Parallel()
	paths, err := filepath.Glob("testdata/*.mq")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	for _, p := range paths {
		src, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		if bytes.ContainsAny(src, "\t\r") {
			// \dNN escapes are not JSON
			continue
		}
		root, _ := Parse(src)
		var out bytes.Buffer
		if err := DumpJSON(&out, root); err != nil {
			t.Fatalf("dump %s: %v", p, err)
		}
		var doc map[string]any
		if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
			t.Fatalf("%s: invalid json: %v\n%s", p, err, out.String())
		}
		if doc["kind"] != "Document" {
			t.Fatalf("%s: unexpected root %v", p, doc["kind"])
		}
	}
}

func TestDumpJSONNil(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	if err := DumpJSON(&out, nil); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if out.String() != "null\n" {
		t.Fatalf("unexpected nil dump %q", out.String())
	}
}
