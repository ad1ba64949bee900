package marq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Loader resolves and reads include targets.
type Loader interface {
	// Resolve returns the target of ref as seen from the document at base.
	// The result identifies the target for cycle detection.
	Resolve(base, ref string) string
	// Load reads a resolved target. A missing target is reported with an
	// error wrapping ErrFileNotFound.
	Load(target string) ([]byte, error)
}

// OSLoader reads includes from the operating system file system.
type OSLoader struct{}

// Resolve joins ref to the directory of base.
func (OSLoader) Resolve(base, ref string) string {
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref)
	}
	return filepath.Join(filepath.Dir(base), filepath.FromSlash(ref))
}

// Load reads target from disk.
func (OSLoader) Load(target string) ([]byte, error) {
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, notFound(err)
	}
	return data, nil
}

// FSLoader reads includes from an fs.FS using slash-separated paths.
type FSLoader struct {
	FS fs.FS
}

// Resolve joins ref to the directory of base inside the file system.
func (l FSLoader) Resolve(base, ref string) string {
	if strings.HasPrefix(ref, "/") {
		return path.Clean(strings.TrimPrefix(ref, "/"))
	}
	return path.Join(path.Dir(base), ref)
}

// Load reads target from the file system.
func (l FSLoader) Load(target string) ([]byte, error) {
	if l.FS == nil {
		return nil, fmt.Errorf("%w: %s: no file system", ErrFileNotFound, target)
	}
	data, err := fs.ReadFile(l.FS, target)
	if err != nil {
		return nil, notFound(err)
	}
	return data, nil
}

// HTTPLoader fetches includes over HTTP(S). Relative references resolve
// against the including document's URL.
type HTTPLoader struct {
	Context context.Context
	Client  *http.Client
}

// Resolve resolves ref against base as a URL reference.
func (l HTTPLoader) Resolve(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// Load fetches target with GET. A 404 or 410 status maps to ErrFileNotFound.
func (l HTTPLoader) Load(target string) ([]byte, error) {
	ctx := l.Context
	if ctx == nil {
		ctx = context.Background()
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("http loader: build request: %w", err)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return nil, fmt.Errorf("http loader: unsupported scheme %q", req.URL.Scheme)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http loader: request: %w", err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, target)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("http loader: status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("http loader: read body: %w", err)
	}
	return data, nil
}

// notFound marks a missing-file error with ErrFileNotFound.
func notFound(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}
	return err
}
