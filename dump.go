package marq

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// DumpTokens writes one line per token: range, kind and escaped value
// separated by tabs.
func DumpTokens(w io.Writer, toks []Token) error {
	bw := bufio.NewWriter(w)
	for _, t := range toks {
		bw.WriteString(t.Range.String())
		bw.WriteByte('\t')
		bw.WriteString(t.Kind.String())
		bw.WriteByte('\t')
		bw.WriteString(Escape(t.Value))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// DumpTree writes one line per node, indented two spaces per depth, with the
// node kind followed by its payload fields and attributes. Quoted values use
// EscapeJSON so an embedded quote never ends a value.
func DumpTree(w io.Writer, root *Node) error {
	bw := bufio.NewWriter(w)
	Walk(root, func(n *Node, depth int) {
		for i := 0; i < depth; i++ {
			bw.WriteString("  ")
		}
		bw.WriteString(n.Kind.String())
		for _, f := range nodeFields(n) {
			bw.WriteByte(' ')
			bw.WriteString(f.key)
			bw.WriteByte('=')
			if f.quoted {
				bw.WriteByte('"')
				bw.WriteString(EscapeJSON(f.value))
				bw.WriteByte('"')
			} else {
				bw.WriteString(f.value)
			}
		}
		bw.WriteByte('\n')
	})
	return bw.Flush()
}

// DumpJSON writes the tree as nested JSON-style objects. Strings use the
// EscapeJSON rule, so control bytes appear as \dNN rather than JSON escapes.
func DumpJSON(w io.Writer, root *Node) error {
	bw := bufio.NewWriter(w)
	if root == nil {
		bw.WriteString("null\n")
		return bw.Flush()
	}
	type entry struct {
		n    *Node
		next int
	}
	writeJSONOpen(bw, root, 0)
	stack := []entry{{n: root}}
	if len(root.Children) == 0 {
		stack = stack[:0]
	}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.n.Children) {
			c := top.n.Children[top.next]
			if top.next > 0 {
				bw.WriteByte(',')
			}
			bw.WriteByte('\n')
			top.next++
			writeJSONOpen(bw, c, len(stack))
			if len(c.Children) > 0 {
				stack = append(stack, entry{n: c})
			}
			continue
		}
		stack = stack[:len(stack)-1]
		bw.WriteByte('\n')
		writeIndent(bw, len(stack))
		bw.WriteString("]}")
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

func writeJSONOpen(bw *bufio.Writer, n *Node, depth int) {
	writeIndent(bw, depth)
	bw.WriteString(`{"kind":"`)
	bw.WriteString(n.Kind.String())
	bw.WriteString(`","range":"`)
	bw.WriteString(n.Range.String())
	bw.WriteByte('"')
	for _, f := range nodeFields(n) {
		bw.WriteString(`,"`)
		bw.WriteString(EscapeJSON(f.key))
		bw.WriteString(`":`)
		if f.quoted {
			bw.WriteByte('"')
			bw.WriteString(EscapeJSON(f.value))
			bw.WriteByte('"')
		} else {
			bw.WriteString(f.value)
		}
	}
	if len(n.Children) == 0 {
		bw.WriteByte('}')
		return
	}
	bw.WriteString(`,"children":[`)
}

func writeIndent(bw *bufio.Writer, depth int) {
	for i := 0; i < depth; i++ {
		bw.WriteString("  ")
	}
}

type field struct {
	key    string
	value  string
	quoted bool
}

func str(key, value string) field { return field{key: key, value: value, quoted: true} }
func num(key string, v int) field { return field{key: key, value: strconv.Itoa(v)} }
func flag(key string, v bool) field {
	return field{key: key, value: strconv.FormatBool(v)}
}

// nodeFields lists the payload fields of n followed by its attributes.
func nodeFields(n *Node) []field {
	var fs []field
	switch d := n.Data.(type) {
	case *DocumentData:
		if d.Path != "" {
			fs = append(fs, str("path", d.Path))
		}
	case *TextData:
		fs = append(fs, str("value", d.Value))
	case *StyleData:
		fs = append(fs, str("style", d.Style.String()))
	case *SpaceData:
		fs = append(fs, num("size", d.Size))
	case *SectionData:
		fs = append(fs, num("level", d.Level))
		if d.ID != "" {
			fs = append(fs, str("id", d.ID))
		}
	case *QuoteData:
		if d.Inline {
			fs = append(fs, flag("inline", true))
		}
	case *ListData:
		fs = append(fs, str("type", d.Type.String()))
		if d.Type == ListNumbered {
			fs = append(fs, num("start", d.Start))
		}
	case *ItemData:
		if d.Number > 0 {
			fs = append(fs, num("number", d.Number))
		}
		if n.Kind == KindCheckItem {
			fs = append(fs, flag("checked", d.Checked))
		}
		fs = append(fs, str("marker", d.Marker))
	case *TableData:
		aligns := make([]string, len(d.Aligns))
		for i, a := range d.Aligns {
			aligns[i] = a.String()
		}
		fs = append(fs,
			str("aligns", strings.Join(aligns, ",")),
			num("header", d.HeaderBoundary),
			num("footer", d.FooterBoundary),
			num("columns", d.Columns),
		)
	case *RowData:
		if d.Separator {
			fs = append(fs, flag("separator", true))
		}
	case *CodeData:
		if d.Lang != "" {
			fs = append(fs, str("lang", d.Lang))
		}
		fs = append(fs, str("source", d.Source))
	case *LinkData:
		fs = append(fs, str("resource", d.Resource))
		if len(d.Sections) > 0 {
			fs = append(fs, str("sections", strings.Join(d.Sections, string(SectionSeparator))))
		}
		fs = append(fs, str("label", d.Label))
	case *RefData:
		fs = append(fs, str("key", d.Key))
		if d.Resource != "" {
			fs = append(fs, str("resource", d.Resource))
		}
		if len(d.Sections) > 0 {
			fs = append(fs, str("sections", strings.Join(d.Sections, string(SectionSeparator))))
		}
	case *PunctData:
		fs = append(fs, str("punct", d.Punct.String()), str("literal", d.Literal))
	case *EmojiData:
		fs = append(fs, str("code", d.Code))
	case *DateTimeData:
		fs = append(fs, str("value", d.String()))
	case *AdmonitionData:
		fs = append(fs, str("type", d.Type))
	case *TagData:
		fs = append(fs, str("name", d.Name))
	}
	for _, a := range n.Attrs {
		fs = append(fs, str("@"+a.Key, a.Value))
	}
	return fs
}
