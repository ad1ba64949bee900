package marq

import (
	"reflect"
	"strings"
	"testing"
)

func TestFrontMatterAttrs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		src   string
		attrs []Attr
	}{
		{
			name: "yaml",
			src:  "---\ntitle: Post\ndate: 2026-02-09\nauthor:\n  name: Ann\n---\n\n# Hello\n\nBody.\n",
			attrs: []Attr{
				{Key: "author.name", Value: "Ann"},
				{Key: "date", Value: "2026-02-09"},
				{Key: "title", Value: "Post"},
			},
		},
		{
			name:  "toml",
			src:   "+++\ntitle = \"Post\"\ndraft = true\n+++\n\n# Hello\n",
			attrs: []Attr{{Key: "draft", Value: "true"}, {Key: "title", Value: "Post"}},
		},
		{
			name: "json",
			src:  ";;;\n{\"title\": \"Post\", \"tags\": [\"a\", \"b\"], \"n\": 3}\n;;;\n\n# Hello\n",
			attrs: []Attr{
				{Key: "n", Value: "3"},
				{Key: "tags.0", Value: "a"},
				{Key: "tags.1", Value: "b"},
				{Key: "title", Value: "Post"},
			},
		},
		{
			name:  "crlf",
			src:   "---\r\ntitle: Post\r\n---\r\n# Hello\r\n",
			attrs: []Attr{{Key: "title", Value: "Post"}},
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			root, diags := Parse([]byte(tc.src))
			if len(diags) != 0 {
				t.Fatalf("unexpected diagnostics: %v", diags)
			}
			if !reflect.DeepEqual(root.Attrs, tc.attrs) {
				t.Fatalf("attrs:\n got %v\nwant %v", root.Attrs, tc.attrs)
			}
			if root.Children[0].Kind != KindSection {
				t.Fatalf("the body must start after the front matter, got %v", childKinds(root))
			}
			if strings.Contains(root.Text(), "Post") {
				t.Fatalf("front matter leaked into the tree: %q", root.Text())
			}
		})
	}
}

func TestFrontMatterIsOnlyCheckedAtStart(t *testing.T) {
	t.Parallel()
	root, _ := Parse([]byte("# Intro\n\n+++\ntitle = \"Keep me\"\n+++\n\nTail\n"))
	if len(root.Attrs) != 0 {
		t.Fatalf("unexpected attrs %v", root.Attrs)
	}
	for _, want := range []string{"Intro", "Keep me", "Tail"} {
		if !strings.Contains(root.Text(), want) {
			t.Fatalf("missing %q in %q", want, root.Text())
		}
	}
}

func TestFrontMatterUnclosedIsNotStripped(t *testing.T) {
	t.Parallel()
	root, _ := Parse([]byte("---\ntitle: Post\n\n# Hello\n"))
	if len(root.Attrs) != 0 {
		t.Fatalf("unexpected attrs %v", root.Attrs)
	}
	if !strings.Contains(root.Text(), "Post") {
		t.Fatalf("unclosed front matter must stay content: %q", root.Text())
	}
}

func TestFrontMatterWithoutMetadataIsNotStripped(t *testing.T) {
	t.Parallel()
	root, _ := Parse([]byte("---\n# Keep\n---\n\nTail\n"))
	if len(root.Attrs) != 0 {
		t.Fatalf("unexpected attrs %v", root.Attrs)
	}
	for _, want := range []string{"Keep", "Tail"} {
		if !strings.Contains(root.Text(), want) {
			t.Fatalf("missing %q in %q", want, root.Text())
		}
	}
}

func TestFrontMatterOnlyFirstBlock(t *testing.T) {
	t.Parallel()
	root, _ := Parse([]byte("---\ntitle: Skip\n---\n\nBody\n\n---\nkeep: yes\n---\n"))
	if v, _ := root.Attr("title"); v != "Skip" {
		t.Fatalf("unexpected title %q", v)
	}
	if _, ok := root.Attr("keep"); ok {
		t.Fatalf("a later block must not become metadata")
	}
	if !strings.Contains(root.Text(), "keep") {
		t.Fatalf("a later block must stay content: %q", root.Text())
	}
}

func TestFrontMatterDecodeErrorDegrades(t *testing.T) {
	t.Parallel()
	root, diags := Parse([]byte("---\ntitle: [unclosed\n---\nBody\n"))
	if diags.Count(DiagStructuralDegradation) != 1 || diags.Err() != nil {
		t.Fatalf("expected a single degradation, got %v", diags)
	}
	if diags[0].Range.Begin.Line != 1 {
		t.Fatalf("diagnostic must cover the block, got %s", diags[0].Range)
	}
	if len(root.Attrs) != 0 || root.Text() != "Body" {
		t.Fatalf("unexpected tree: attrs %v text %q", root.Attrs, root.Text())
	}
}

func TestFrontMatterDisabled(t *testing.T) {
	t.Parallel()
	root, _ := Parse([]byte("---\ntitle: Post\n---\nBody\n"), WithFrontMatter(false))
	if len(root.Attrs) != 0 {
		t.Fatalf("unexpected attrs %v", root.Attrs)
	}
	if !strings.Contains(root.Text(), "Post") {
		t.Fatalf("disabled front matter must stay content: %q", root.Text())
	}
}

func TestIncludedFrontMatterStaysOnIncludedDocument(t *testing.T) {
	t.Parallel()
	files := map[string]string{
		"main.mq": "<<(a.mq)\n",
		"a.mq":    "---\ntitle: A\n---\nA body\n",
	}
	root, diags := Parse([]byte(files["main.mq"]), WithLoader(mapLoader(files)), WithPath("main.mq"))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(root.Attrs) != 0 {
		t.Fatalf("root must not inherit included attrs: %v", root.Attrs)
	}
	docs := includedDocs(root)
	if len(docs) != 1 {
		t.Fatalf("expected one included document")
	}
	if v, _ := docs[0].Attr("title"); v != "A" {
		t.Fatalf("unexpected included title %q", v)
	}
	if v, _ := docs[0].Attr("include"); v != "a.mq" {
		t.Fatalf("unexpected include attr %q", v)
	}
}

// mapLoader serves includes from memory by exact name.
type mapLoader map[string]string

func (m mapLoader) Resolve(_, ref string) string { return ref }

func (m mapLoader) Load(target string) ([]byte, error) {
	body, ok := m[target]
	if !ok {
		return nil, ErrFileNotFound
	}
	return []byte(body), nil
}
