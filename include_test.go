package marq

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func includedDocs(root *Node) []*Node {
	var docs []*Node
	Visit(root, func(n *Node) {
		if n != root && n.Kind == KindDocument {
			docs = append(docs, n)
		}
	})
	return docs
}

func parseFS(t *testing.T, files fstest.MapFS, name string) (*Node, Diagnostics) {
	t.Helper()
	src, ok := files[name]
	if !ok {
		t.Fatalf("missing %s in test file system", name)
	}
	return Parse(src.Data, WithLoader(FSLoader{FS: files}), WithPath(name))
}

func TestIncludeAttachesDocument(t *testing.T) {
	t.Parallel()
	files := fstest.MapFS{
		"main.mq":      {Data: []byte("Intro\n\n<<(part/a.mq)\n")},
		"part/a.mq":    {Data: []byte("A <<(b.mq) is inline text\n\n<<(b.mq)\n")},
		"part/b.mq":    {Data: []byte("B\n")},
		"unrelated.mq": {Data: []byte("x\n")},
	}
	root, diags := parseFS(t, files, "main.mq")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	docs := includedDocs(root)
	if len(docs) != 2 {
		t.Fatalf("expected two included documents, got %d", len(docs))
	}
	if got := docs[0].Data.(*DocumentData).Path; got != "part/a.mq" {
		t.Fatalf("unexpected include path %q", got)
	}
	if got := docs[1].Data.(*DocumentData).Path; got != "part/b.mq" {
		t.Fatalf("nested include must resolve against its parent, got %q", got)
	}
	if v, ok := docs[0].Attr("include"); !ok || v != "part/a.mq" {
		t.Fatalf("unexpected include attr %q %v", v, ok)
	}
	assertMonotoneNodes(t, docs[0])
}

func TestIncludeCycle(t *testing.T) {
	t.Parallel()
	files := fstest.MapFS{
		"main.mq": {Data: []byte("<<(a.mq)\n")},
		"a.mq":    {Data: []byte("A\n\n<<(main.mq)\n")},
	}
	root, diags := parseFS(t, files, "main.mq")
	if diags.Count(DiagCyclicInclusion) != 1 {
		t.Fatalf("expected one cycle diagnostic, got %v", diags)
	}
	if !errors.Is(diags.Err(), ErrCyclicInclusion) {
		t.Fatalf("expected ErrCyclicInclusion, got %v", diags.Err())
	}
	if got := diags[0].Path; got != "a.mq" {
		t.Fatalf("diagnostic must name the including document, got %q", got)
	}
	if docs := includedDocs(root); len(docs) != 1 {
		t.Fatalf("the cyclic include must attach nothing, got %d documents", len(docs))
	}
}

func TestIncludeSelf(t *testing.T) {
	t.Parallel()
	files := fstest.MapFS{"main.mq": {Data: []byte("<<(main.mq)\n")}}
	root, diags := parseFS(t, files, "main.mq")
	if diags.Count(DiagCyclicInclusion) != 1 {
		t.Fatalf("expected a cycle diagnostic, got %v", diags)
	}
	if len(root.Children) != 0 {
		t.Fatalf("expected an empty document, got %v", childKinds(root))
	}
}

func TestIncludeSiblingsAreNotCycles(t *testing.T) {
	t.Parallel()
	files := fstest.MapFS{
		"main.mq":   {Data: []byte("<<(a.mq)\n<<(b.mq)\n")},
		"a.mq":      {Data: []byte("<<(common.mq)\n")},
		"b.mq":      {Data: []byte("<<(common.mq)\n")},
		"common.mq": {Data: []byte("shared\n")},
	}
	root, diags := parseFS(t, files, "main.mq")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if docs := includedDocs(root); len(docs) != 4 {
		t.Fatalf("expected four included documents, got %d", len(docs))
	}
}

func TestIncludeMissingFile(t *testing.T) {
	t.Parallel()
	files := fstest.MapFS{"main.mq": {Data: []byte("before\n\n<<(missing.mq)\n\nafter\n")}}
	root, diags := parseFS(t, files, "main.mq")
	if diags.Count(DiagFileNotFound) != 1 {
		t.Fatalf("expected one file-not-found diagnostic, got %v", diags)
	}
	if !errors.Is(diags.Err(), ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", diags.Err())
	}
	if got := diags[0].Range.Begin.Line; got != 3 {
		t.Fatalf("diagnostic must point at the directive, got line %d", got)
	}
	assertChildKinds(t, root, KindParagraph, KindParagraph)
}

func TestIncludeWithoutLoader(t *testing.T) {
	t.Parallel()
	_, diags := Parse([]byte("<<(a.mq)\n"))
	if !errors.Is(diags.Err(), ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound without a loader, got %v", diags.Err())
	}
}

func TestIncludeSelectsSection(t *testing.T) {
	t.Parallel()
	guide := "# Intro\n\nx\n\n# Setup\n\n## Windows\n\nw\n\n## Linux Hosts\n\nl\n"
	files := fstest.MapFS{
		"main.mq":  {Data: []byte("<<(guide.mq> Setup >> linux-hosts)\n")},
		"guide.mq": {Data: []byte(guide)},
	}
	root, diags := parseFS(t, files, "main.mq")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	docs := includedDocs(root)
	if len(docs) != 1 || len(docs[0].Children) != 1 {
		t.Fatalf("expected a single selected section")
	}
	sec := docs[0].Children[0]
	if sec.Kind != KindSection || sec.Children[0].Text() != "Linux Hosts" {
		t.Fatalf("unexpected selection %s %q", sec.Kind, sec.Children[0].Text())
	}
}

func TestIncludeMissingSectionDegrades(t *testing.T) {
	t.Parallel()
	files := fstest.MapFS{
		"main.mq":  {Data: []byte("<<(guide.mq>Nope)\n")},
		"guide.mq": {Data: []byte("# Intro\n")},
	}
	root, diags := parseFS(t, files, "main.mq")
	if diags.Count(DiagStructuralDegradation) != 1 || diags.Err() != nil {
		t.Fatalf("expected a single degradation, got %v", diags)
	}
	if docs := includedDocs(root); len(docs) != 1 || len(docs[0].Children) != 1 {
		t.Fatalf("the whole document must be kept when the section is missing")
	}
}

func TestParseFileResolvesRelativeIncludes(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "inc"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("main.mq", "<<(inc/a.mq)\n")
	write("inc/a.mq", "<<(../main.mq)\n")

	root, diags, err := ParseFile(filepath.Join(dir, "main.mq"))
	if err != nil {
		t.Fatalf("parse file: %v", err)
	}
	if diags.Count(DiagCyclicInclusion) != 1 {
		t.Fatalf("expected the back reference to be a cycle, got %v", diags)
	}
	if got := root.Data.(*DocumentData).Path; got != filepath.Join(dir, "main.mq") {
		t.Fatalf("unexpected document path %q", got)
	}
}

func TestParseFileMissing(t *testing.T) {
	t.Parallel()
	_, _, err := ParseFile(filepath.Join(t.TempDir(), "nope.mq"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestSlug(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"Linux Hosts":       "linux-hosts",
		"  Getting started": "getting-started",
		"C++ & Go!":         "c-go",
		"Überblick 2":       "überblick-2",
		"":                  "",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Fatalf("Slug(%q)=%q want %q", in, got, want)
		}
	}
}
