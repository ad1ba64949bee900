package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"pkt.systems/marq"
)

func main() {
	var (
		root   string
		tokens bool
	)
	flags := pflag.NewFlagSet("gen-golden", pflag.ExitOnError)
	flags.StringVarP(&root, "dir", "d", "testdata", "Directory holding .mq samples")
	flags.BoolVar(&tokens, "tokens", false, "Also write token dumps")
	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() && strings.HasSuffix(path, ".mq") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		fatalf("walk %s: %v", root, err)
	}
	if len(paths) == 0 {
		fatalf("no .mq files found under %s", root)
	}
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			fatalf("read %s: %v", path, err)
		}
		var out bytes.Buffer
		doc, _ := marq.Parse(src)
		if err := marq.DumpTree(&out, doc); err != nil {
			fatalf("dump %s: %v", path, err)
		}
		write(goldenPath(root, path, "tree"), out.Bytes())
		if tokens {
			out.Reset()
			if err := marq.DumpTokens(&out, marq.Scan(src)); err != nil {
				fatalf("dump tokens %s: %v", path, err)
			}
			write(goldenPath(root, path, "tokens"), out.Bytes())
		}
	}
}

func write(path string, data []byte) {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fatalf("write %s: %v", path, err)
	}
	fmt.Fprintf(os.Stdout, "wrote %s\n", path)
}

// goldenPath flattens the sample path below root into one file name, so
// testdata/a/b.mq becomes testdata/a__b.tree.golden.
func goldenPath(root, path, kind string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	name := strings.TrimSuffix(rel, ".mq")
	name = strings.ReplaceAll(filepath.ToSlash(name), "/", "__")
	return filepath.Join(root, fmt.Sprintf("%s.%s.golden", name, kind))
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
