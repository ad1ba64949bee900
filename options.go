package marq

// Option configures lexing and parsing.
type Option func(*config)

type config struct {
	indentUnit  int
	loader      Loader
	baseDir     string
	path        string
	frontMatter bool
}

func newConfig(opts []Option) config {
	cfg := config{indentUnit: defaultIndentUnit, frontMatter: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.indentUnit <= 0 {
		cfg.indentUnit = defaultIndentUnit
	}
	return cfg
}

// WithIndentUnit sets the number of spaces that make one indentation level.
func WithIndentUnit(n int) Option {
	return func(cfg *config) {
		cfg.indentUnit = n
	}
}

// WithLoader sets the loader used to resolve include directives. Without a
// loader every include reports ErrFileNotFound.
func WithLoader(l Loader) Option {
	return func(cfg *config) {
		cfg.loader = l
	}
}

// WithBaseDir resolves includes of an in-memory buffer relative to dir using
// the operating system file system.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = dir
		if cfg.loader == nil {
			cfg.loader = OSLoader{}
		}
	}
}

// WithFrontMatter enables or disables front matter detection.
func WithFrontMatter(enabled bool) Option {
	return func(cfg *config) {
		cfg.frontMatter = enabled
	}
}

// WithPath names the buffer being parsed. The path is recorded on the
// document node and seeds the include ancestor set.
func WithPath(path string) Option {
	return func(cfg *config) {
		cfg.path = path
	}
}
