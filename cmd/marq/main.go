package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/k0kubun/pp"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"pkt.systems/marq"
	"pkt.systems/marq/internal/config"
	"pkt.systems/version"
)

func init() {
	version.SetDefaultModule("pkt.systems/marq")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	configPath    string
	tokens        bool
	format        string
	indent        int
	baseDir       string
	color         string
	osc8          string
	width         int
	stats         bool
	noFrontMatter bool
	sanitize      bool
	theme         string
	listThemes    bool
	boring        bool
	outPath       string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var o options
	flags := pflag.NewFlagSet("marq", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&o.configPath, "config", "c", "", "Config file (TOML or YAML, default $"+config.EnvVar+" or ./marq.toml)")
	flags.BoolVarP(&o.tokens, "tokens", "k", false, "Dump the token stream instead of the tree")
	flags.StringVarP(&o.format, "format", "f", "tree", "Tree dump format: tree|json|go")
	flags.IntVar(&o.indent, "indent", 2, "Spaces per indentation level")
	flags.StringVar(&o.baseDir, "base-dir", "", "Directory includes of stdin input resolve against")
	flags.StringVar(&o.color, "color", "auto", "Colored output: auto|on|off")
	flags.StringVarP(&o.osc8, "osc8", "8", "auto", "OSC8 hyperlinks for link resources: auto|on|off")
	flags.IntVarP(&o.width, "width", "w", 0, "Truncate tree lines to this width (0 uses terminal width if available)")
	flags.BoolVar(&o.stats, "stats", false, "Print input size, node and diagnostic counts to stderr")
	flags.BoolVar(&o.noFrontMatter, "no-front-matter", false, "Treat a leading front matter block as markup")
	flags.BoolVar(&o.sanitize, "sanitize", false, "Strip invalid UTF-8 and control bytes from stdin instead of rejecting it")
	flags.StringVarP(&o.theme, "theme", "t", "default", "Dump theme")
	flags.BoolVar(&o.listThemes, "list-themes", false, "List available themes")
	flags.BoolVarP(&o.boring, "boring", "b", false, "Plain output without escape sequences")
	flags.StringVarP(&o.outPath, "output", "o", "", "Output file instead of stdout")
	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(stderr, version.Module(), version.Current())
		fmt.Fprintf(stderr, "Usage: marq [flags] [inputs...]\n")
		fmt.Fprintln(stderr, "\nInputs are files, file:// or http(s):// URLs, or - for stdin.")
		fmt.Fprintln(stderr, "If no input is provided, markup is read from stdin.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}

	if o.listThemes {
		for _, name := range availableThemes() {
			fmt.Fprintln(stdout, name)
		}
		return 0
	}

	cfg, err := loadConfig(o.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 2
	}
	applyFlags(cfg, flags, o)

	writer, closeOut, err := resolveOutput(stdout, o.outPath)
	if err != nil {
		fmt.Fprintf(stderr, "open output: %v\n", err)
		return 1
	}
	if closeOut != nil {
		defer func() { _ = closeOut.Close() }()
	}

	color, err := resolveMode(cfg.Color, func() bool { return isTerminal(writer) })
	if err != nil {
		fmt.Fprintf(stderr, "invalid --color %q: %v\n", cfg.Color, err)
		return 2
	}
	osc8, err := resolveMode(cfg.OSC8, func() bool { return isTerminal(writer) && detectOSC8() })
	if err != nil {
		fmt.Fprintf(stderr, "invalid --osc8 %q: %v\n", cfg.OSC8, err)
		return 2
	}
	themeName := o.theme
	if o.boring {
		themeName, color, osc8 = "boring", false, false
	}
	pal, ok := newPalette(themeName, cfg.Styles, color)
	if !ok {
		fmt.Fprintf(stderr, "unknown theme %q\n\n", themeName)
		for _, name := range availableThemes() {
			fmt.Fprintln(stderr, name)
		}
		return 2
	}
	errPal := pal
	if !isTerminal(stderr) {
		errPal = boringPalette()
	}

	width := cfg.Width
	if width == 0 && isTerminal(writer) {
		width = terminalWidth()
	}

	inputs, err := resolveInputs(flags.Args())
	if err != nil {
		fmt.Fprintf(stderr, "open input: %v\n", err)
		return 1
	}
	d := &dumper{
		cfg:      cfg,
		pal:      pal,
		errPal:   errPal,
		color:    color,
		osc8:     osc8,
		width:    width,
		stats:    o.stats,
		sanitize: o.sanitize,
		stdin:    stdin,
		out:      writer,
		errOut:   stderr,
	}
	code := 0
	for _, in := range inputs {
		if c := d.dump(in); c > code {
			code = c
		}
	}
	return code
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(normalizePath(path))
	}
	return config.LoadDefault()
}

// applyFlags lets explicitly set flags override file values.
func applyFlags(cfg *config.Config, flags *pflag.FlagSet, o options) {
	if flags.Changed("tokens") {
		cfg.Tokens = o.tokens
	}
	if flags.Changed("format") {
		cfg.Format = o.format
	}
	if flags.Changed("indent") {
		cfg.IndentUnit = o.indent
	}
	if flags.Changed("base-dir") {
		cfg.BaseDir = o.baseDir
	}
	if flags.Changed("color") {
		cfg.Color = o.color
	}
	if flags.Changed("osc8") {
		cfg.OSC8 = o.osc8
	}
	if flags.Changed("width") {
		cfg.Width = o.width
	}
	if o.noFrontMatter {
		off := false
		cfg.FrontMatter = &off
	}
}

type inputKind uint8

const (
	inputStdin inputKind = iota
	inputFile
	inputURL
)

type input struct {
	kind   inputKind
	target string
}

func (in input) name() string {
	if in.kind == inputStdin {
		return "<stdin>"
	}
	return in.target
}

func resolveInputs(args []string) ([]input, error) {
	if len(args) == 0 {
		return []input{{kind: inputStdin}}, nil
	}
	inputs := make([]input, 0, len(args))
	for _, raw := range args {
		in, err := resolveInput(raw)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func resolveInput(raw string) (input, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return input{}, fmt.Errorf("empty input argument")
	}
	if raw == "-" {
		return input{kind: inputStdin}, nil
	}
	u, err := url.Parse(raw)
	if err == nil && u.Scheme != "" {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return input{kind: inputURL, target: raw}, nil
		case "file":
			path := u.Path
			if path == "" {
				path = u.Host
			}
			if unescaped, err := url.PathUnescape(path); err == nil {
				path = unescaped
			}
			return input{kind: inputFile, target: normalizePath(path)}, nil
		}
	}
	return input{kind: inputFile, target: normalizePath(raw)}, nil
}

type dumper struct {
	cfg      *config.Config
	pal      palette
	errPal   palette
	color    bool
	osc8     bool
	width    int
	stats    bool
	sanitize bool
	stdin    io.Reader
	out      io.Writer
	errOut   io.Writer
}

func (d *dumper) parseOptions() []marq.Option {
	return []marq.Option{
		marq.WithIndentUnit(d.cfg.IndentUnit),
		marq.WithFrontMatter(d.cfg.FrontMatterEnabled()),
	}
}

// dump parses one input and writes its dump. It returns the exit code for
// the input.
func (d *dumper) dump(in input) int {
	if d.cfg.Tokens {
		return d.dumpTokens(in)
	}
	root, diags, err := d.parse(in)
	if err != nil {
		fmt.Fprintf(d.errOut, "%s\n", d.errPal.render(d.errPal.err, fmt.Sprintf("%s: %v", in.name(), err)))
		return 1
	}
	if err := d.writeTree(root); err != nil {
		fmt.Fprintf(d.errOut, "write: %v\n", err)
		return 1
	}
	d.report(diags)
	if d.stats {
		d.printStats(in, root, diags)
	}
	if diags.Err() != nil {
		return 1
	}
	return 0
}

func (d *dumper) parse(in input) (*marq.Node, marq.Diagnostics, error) {
	opts := d.parseOptions()
	switch in.kind {
	case inputURL:
		return marq.ParseURL(context.Background(), marq.URLRequest{URL: in.target, Options: opts})
	case inputFile:
		return marq.ParseFile(in.target, opts...)
	}
	base := d.cfg.BaseDir
	if base == "" {
		base = "."
	}
	opts = append(opts, marq.WithBaseDir(normalizePath(base)))
	return marq.ParseReader(marq.ParseRequest{Reader: d.stdin, Sanitize: d.sanitize, Options: opts})
}

func (d *dumper) dumpTokens(in input) int {
	src, err := d.read(in)
	if err != nil {
		fmt.Fprintf(d.errOut, "%s: %v\n", in.name(), err)
		return 1
	}
	toks := marq.Scan(src, d.parseOptions()...)
	if err := d.writeTokens(toks); err != nil {
		fmt.Fprintf(d.errOut, "write: %v\n", err)
		return 1
	}
	if d.stats {
		fmt.Fprintf(d.errOut, "%s: %s, %s tokens\n", in.name(), humanize.Bytes(uint64(len(src))), humanize.Comma(int64(len(toks))))
	}
	return 0
}

func (d *dumper) read(in input) ([]byte, error) {
	switch in.kind {
	case inputURL:
		return marq.HTTPLoader{Context: context.Background()}.Load(in.target)
	case inputFile:
		return os.ReadFile(in.target)
	}
	src, err := io.ReadAll(d.stdin)
	if err != nil {
		return nil, err
	}
	if d.sanitize {
		return marq.Sanitize(nil, src), nil
	}
	return src, nil
}

func (d *dumper) writeTokens(toks []marq.Token) error {
	if d.pal.plain && d.width <= 0 {
		return marq.DumpTokens(d.out, toks)
	}
	var buf bytes.Buffer
	if err := marq.DumpTokens(&buf, toks); err != nil {
		return err
	}
	return d.writeLines(&buf, func(line string) string { return d.pal.paintTokenLine(line) })
}

func (d *dumper) writeTree(root *marq.Node) error {
	switch d.cfg.Format {
	case "json":
		return marq.DumpJSON(d.out, root)
	case "go":
		pp.ColoringEnabled = d.color
		_, err := pp.Fprintln(d.out, root)
		return err
	}
	var buf bytes.Buffer
	if err := marq.DumpTree(&buf, root); err != nil {
		return err
	}
	return d.writeLines(&buf, func(line string) string { return d.pal.paintTreeLine(line, d.osc8) })
}

// writeLines fits every line of buf to the output width, then paints it.
func (d *dumper) writeLines(buf *bytes.Buffer, paint func(string) string) error {
	if buf.Len() == 0 {
		return nil
	}
	bw := bufio.NewWriter(d.out)
	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		bw.WriteString(paint(fitLine(line, d.width)))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func (d *dumper) report(diags marq.Diagnostics) {
	for _, diag := range diags {
		style := d.errPal.warning
		if diag.Err != nil {
			style = d.errPal.err
		}
		fmt.Fprintln(d.errOut, d.errPal.render(style, diag.String()))
	}
}

func (d *dumper) printStats(in input, root *marq.Node, diags marq.Diagnostics) {
	var nodes int64
	marq.Visit(root, func(*marq.Node) { nodes++ })
	fmt.Fprintf(d.errOut, "%s: %s, %s nodes, %s diagnostics\n",
		in.name(),
		humanize.Bytes(uint64(root.Range.Len())),
		humanize.Comma(nodes),
		humanize.Comma(int64(len(diags))),
	)
}

func resolveOutput(stdout io.Writer, path string) (io.Writer, io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		return stdout, nil, nil
	}
	clean := normalizePath(path)
	dir := filepath.Dir(clean)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	f, err := os.Create(clean)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			if path == "~" {
				path = home
			} else {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		return abs
	}
	return path
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		return w
	}
	return 0
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
