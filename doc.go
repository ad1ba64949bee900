// Package marq turns marq markup into a document tree.
//
// Parsing happens in two passes over an in-memory buffer: a lexer splits the
// text into tokens with source ranges, then a tree builder assembles blocks
// with an explicit scope stack driven by indentation and builds inline
// content per paragraph. Neither pass fails on malformed markup; it degrades
// to literal text and is reported as a Diagnostic.
//
// Core properties:
//   - Positions are 1-based line and byte column plus a 0-based offset
//   - Ranges of siblings never overlap and follow source order
//   - Includes load through a Loader and are guarded against cycles
//   - Front matter in YAML, TOML or JSON becomes document attributes
//
// Example:
//
//	root, diags := marq.Parse([]byte("# Hello\n\n**marq** in, tree out.\n"))
//	if err := diags.Err(); err != nil {
//		log.Fatal(err)
//	}
//	marq.DumpTree(os.Stdout, root)
//
// Parsing can be customized with Options such as WithIndentUnit and
// WithLoader.
package marq
