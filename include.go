package marq

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// docContext is the per-document state of a parse. Every included document
// gets its own context; ancestors is never shared between siblings.
type docContext struct {
	cfg *config
	// resolved path of the document, empty for an anonymous buffer
	path string
	// reference point for relative includes
	base      string
	ancestors []string
}

// child returns the context of an included document at target.
func (c *docContext) child(target string) *docContext {
	return &docContext{
		cfg:       c.cfg,
		path:      target,
		base:      target,
		ancestors: append(c.ancestors[:len(c.ancestors):len(c.ancestors)], target),
	}
}

// parseDocument builds the tree of one buffer, including front matter.
func parseDocument(src []byte, ctx *docContext, diags *Diagnostics) *Node {
	first := len(*diags)
	root := NewNode(KindDocument, bufferRange(src), &DocumentData{Path: ctx.path})
	start := bomLen(src)
	if ctx.cfg.frontMatter {
		if fm, ok := splitFrontMatter(src); ok {
			start = fm.end
			m, err := fm.decode()
			if err != nil {
				diags.degrade(fm.rng, "%v", err)
			} else {
				root.Attrs = frontMatterAttrs(m)
			}
		}
	}
	toks := scan(src, start, ctx.cfg.indentUnit)
	newParser(toks, root, ctx, diags).run()
	if ctx.path != "" {
		for i := first; i < len(*diags); i++ {
			if (*diags)[i].Path == "" {
				(*diags)[i].Path = ctx.path
			}
		}
	}
	return root
}

// include resolves an include directive and attaches the included document
// to the current scope. Failures attach nothing and are recorded as
// diagnostics.
func (p *parser) include(tok Token) {
	ref := tok.Resource
	loader := p.doc.cfg.loader
	if loader == nil {
		p.diags.fail(DiagFileNotFound, tok.Range, ref.Path, ErrFileNotFound)
		return
	}
	target := loader.Resolve(p.doc.base, ref.Path)
	if slices.Contains(p.doc.ancestors, target) {
		p.diags.fail(DiagCyclicInclusion, tok.Range, target, ErrCyclicInclusion)
		return
	}
	src, err := loader.Load(target)
	if err != nil {
		if !errors.Is(err, ErrFileNotFound) {
			err = fmt.Errorf("%w: %w", ErrFileNotFound, err)
		}
		p.diags.fail(DiagFileNotFound, tok.Range, target, err)
		return
	}
	doc := parseDocument(src, p.doc.child(target), p.diags)
	doc.SetAttr("include", ref.String())
	if len(ref.Sections) > 0 {
		if sec := findSection(doc, ref.Sections); sec != nil {
			doc.Children = []*Node{sec}
		} else {
			p.diags.degrade(tok.Range, "no section %q in %s", strings.Join(ref.Sections, string(SectionSeparator)), target)
		}
	}
	p.top().node.Append(doc)
}

// findSection follows anchors downwards from root, each anchor naming a
// section below the previous match by id, title or title slug.
func findSection(root *Node, anchors []string) *Node {
	cur := root
	for _, anchor := range anchors {
		var found *Node
		Visit(cur, func(n *Node) {
			if found != nil || n == cur || n.Kind != KindSection {
				return
			}
			if sectionMatches(n, anchor) {
				found = n
			}
		})
		if found == nil {
			return nil
		}
		cur = found
	}
	return cur
}

func sectionMatches(n *Node, anchor string) bool {
	if n.Data.(*SectionData).ID == anchor {
		return true
	}
	if len(n.Children) == 0 || n.Children[0].Kind != KindContent {
		return false
	}
	title := n.Children[0].Text()
	return strings.EqualFold(strings.TrimSpace(title), anchor) || Slug(title) == strings.ToLower(anchor)
}

// Slug lowercases s, keeps letters and digits and joins the words with
// hyphens.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r >= 0x80:
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	return b.String()
}

func bufferRange(src []byte) Range {
	var c cursor
	c.reset(src, 0)
	begin := c.pos()
	c.advanceTo(len(src))
	return Range{Begin: begin, End: c.pos()}
}
