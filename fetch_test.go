package marq

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newDocServer(t *testing.T, docs map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.mq" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		body, ok := docs[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParseURLResolvesIncludes(t *testing.T) {
	t.Parallel()
	srv := newDocServer(t, map[string]string{
		"/docs/index.mq":     "# Index\n\n<<(parts/one.mq)\n",
		"/docs/parts/one.mq": "One <<(two.mq)\n\n<<(/top.mq)\n",
		"/top.mq":             "Top\n",
	})
	root, diags, err := ParseURL(context.Background(), URLRequest{URL: srv.URL + "/docs/index.mq"})
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	docs := includedDocs(root)
	if len(docs) != 2 {
		t.Fatalf("expected two included documents, got %d", len(docs))
	}
	if got := docs[0].Data.(*DocumentData).Path; got != srv.URL+"/docs/parts/one.mq" {
		t.Fatalf("unexpected include URL %q", got)
	}
	if got := docs[1].Data.(*DocumentData).Path; got != srv.URL+"/top.mq" {
		t.Fatalf("unexpected absolute include URL %q", got)
	}
}

func TestParseURLMissingInclude(t *testing.T) {
	t.Parallel()
	srv := newDocServer(t, map[string]string{"/a.mq": "<<(gone.mq)\n"})
	_, diags, err := ParseURL(context.Background(), URLRequest{URL: srv.URL + "/a.mq", Client: srv.Client()})
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if diags.Count(DiagFileNotFound) != 1 || !errors.Is(diags.Err(), ErrFileNotFound) {
		t.Fatalf("expected a file-not-found diagnostic, got %v", diags)
	}
}

func TestParseURLCycle(t *testing.T) {
	t.Parallel()
	srv := newDocServer(t, map[string]string{
		"/a.mq": "<<(b.mq)\n",
		"/b.mq": "<<(a.mq)\n",
	})
	_, diags, err := ParseURL(context.Background(), URLRequest{URL: srv.URL + "/a.mq"})
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if !errors.Is(diags.Err(), ErrCyclicInclusion) {
		t.Fatalf("expected a cycle, got %v", diags)
	}
}

func TestParseURLErrors(t *testing.T) {
	t.Parallel()
	srv := newDocServer(t, map[string]string{})
	ctx := context.Background()

	if _, _, err := ParseURL(ctx, URLRequest{}); err == nil {
		t.Fatalf("expected error for empty URL")
	}
	_, _, err := ParseURL(ctx, URLRequest{URL: srv.URL + "/broken.mq"})
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("expected status error, got %v", err)
	}
	_, _, err = ParseURL(ctx, URLRequest{URL: srv.URL + "/nope.mq"})
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound for a 404, got %v", err)
	}
	if _, _, err := ParseURL(ctx, URLRequest{URL: "ftp://example.com/a.mq"}); err == nil {
		t.Fatalf("expected unsupported scheme error")
	}
}

func TestParseURLHonoursContext(t *testing.T) {
	t.Parallel()
	srv := newDocServer(t, map[string]string{"/a.mq": "a\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := ParseURL(ctx, URLRequest{URL: srv.URL + "/a.mq"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
