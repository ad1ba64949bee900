package marq

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Parse builds the document tree of src. It never fails; malformed markup
// degrades to literal content and include failures are reported in the
// returned diagnostics.
func Parse(src []byte, opts ...Option) (*Node, Diagnostics) {
	cfg := newConfig(opts)
	var diags Diagnostics
	root := parseDocument(src, rootContext(&cfg), &diags)
	return root, diags
}

// rootContext seeds the include state of the top-level document.
func rootContext(cfg *config) *docContext {
	ctx := &docContext{cfg: cfg, path: cfg.path}
	switch {
	case cfg.path != "":
		if cfg.loader != nil {
			ctx.path = cfg.loader.Resolve("", cfg.path)
		}
		ctx.base = ctx.path
	case cfg.baseDir != "":
		ctx.base = filepath.Clean(cfg.baseDir) + string(filepath.Separator)
	}
	if ctx.path != "" {
		ctx.ancestors = []string{ctx.path}
	}
	return ctx
}

// ParseFile reads and parses the file at path. Includes resolve relative to
// the file's directory unless another loader is configured.
func ParseFile(path string, opts ...Option) (*Node, Diagnostics, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, fmt.Errorf("parse file: %w", err)
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("parse file: %w: %w", ErrFileNotFound, err)
		}
		return nil, nil, fmt.Errorf("parse file: %w", err)
	}
	all := make([]Option, 0, len(opts)+2)
	all = append(all, WithLoader(OSLoader{}))
	all = append(all, opts...)
	all = append(all, WithPath(abs))
	root, diags := Parse(src, all...)
	return root, diags, nil
}

// ParseRequest configures ParseReader.
type ParseRequest struct {
	Reader io.Reader
	// Path names the input for include resolution and diagnostics.
	Path string
	// Sanitize strips invalid UTF-8 and control bytes instead of rejecting
	// the input.
	Sanitize bool
	Options  []Option
}

// ParseReader reads all of req.Reader, validates it and parses it.
func ParseReader(req ParseRequest) (*Node, Diagnostics, error) {
	if req.Reader == nil {
		return nil, nil, fmt.Errorf("parse: reader is nil")
	}
	src, err := io.ReadAll(req.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("parse: read: %w", err)
	}
	if req.Sanitize {
		src = Sanitize(src[:0:0], src)
	} else if err := ValidateInput(src); err != nil {
		return nil, nil, fmt.Errorf("parse: %w", err)
	}
	opts := req.Options
	if req.Path != "" {
		opts = append(opts[:len(opts):len(opts)], WithPath(req.Path))
	}
	root, diags := Parse(src, opts...)
	return root, diags, nil
}
