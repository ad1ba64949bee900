package marq

import "strings"

type inlineKind uint8

const (
	inlineRoot inlineKind = iota
	inlineToggle
	inlineQuote
	inlineLink
	inlineView
	inlineFootnote
)

// inlineFrame is an open span awaiting its closer.
type inlineFrame struct {
	kind  inlineKind
	open  Token
	nodes []*Node
}

type inliner struct {
	stack []inlineFrame
	diags *Diagnostics
}

// parseInline builds the inline nodes of one run. Unmatched openers are
// turned back into literal text, so the function never fails.
func parseInline(toks []Token, diags *Diagnostics) []*Node {
	in := inliner{diags: diags}
	in.stack = append(in.stack, inlineFrame{kind: inlineRoot})
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.Kind {
		case TokenToggle:
			in.toggle(t)
		case TokenQuoteOpen:
			in.stack = append(in.stack, inlineFrame{kind: inlineQuote, open: t})
		case TokenQuoteClose:
			in.quoteClose(t)
		case TokenLinkOpen:
			in.stack = append(in.stack, inlineFrame{kind: inlineLink, open: t})
		case TokenViewOpen:
			in.stack = append(in.stack, inlineFrame{kind: inlineView, open: t})
		case TokenFootnoteOpen:
			in.stack = append(in.stack, inlineFrame{kind: inlineFootnote, open: t})
		case TokenBracketClose:
			var res *Token
			if i+1 < len(toks) && toks[i+1].Kind == TokenResource {
				res = &toks[i+1]
			}
			if in.bracketClose(t, res) {
				i++
			}
		default:
			in.add(leafNode(t))
		}
	}
	for len(in.stack) > 1 {
		in.degrade()
	}
	return in.stack[0].nodes
}

// leafNode maps a token without inline structure to its node.
func leafNode(t Token) *Node {
	switch t.Kind {
	case TokenPunct:
		return NewNode(KindPunctuation, t.Range, &PunctData{Punct: Punct(t.Count), Literal: t.Value})
	case TokenCodeInline:
		return NewNode(KindCode, t.Range, &CodeData{Source: t.Value})
	case TokenLineBreak:
		return NewNode(KindLineBreak, t.Range, nil)
	case TokenInTextRef:
		return NewNode(KindInTextRef, t.Range, &RefData{Key: t.Value})
	case TokenEmoji:
		return NewNode(KindEmoji, t.Range, &EmojiData{Code: t.Value})
	case TokenDateTime:
		dt, _ := ParseDateTime(t.Value)
		return NewNode(KindDateTime, t.Range, &dt)
	case TokenAccountTag:
		return NewNode(KindAccountTag, t.Range, &TagData{Name: t.Value})
	case TokenHashTag:
		return NewNode(KindHashTag, t.Range, &TagData{Name: t.Value})
	case TokenResource:
		return textNode(t.Range, "("+t.Value+")")
	default:
		return textNode(t.Range, t.Value)
	}
}

func textNode(r Range, s string) *Node {
	return NewNode(KindText, r, &TextData{Value: s})
}

// add appends n to the innermost open span, merging adjacent text.
func (in *inliner) add(n *Node) {
	f := &in.stack[len(in.stack)-1]
	if n.Kind == KindText && len(f.nodes) > 0 {
		last := f.nodes[len(f.nodes)-1]
		if last.Kind == KindText {
			last.Data.(*TextData).Value += n.Data.(*TextData).Value
			last.Range = last.Range.Union(n.Range)
			return
		}
	}
	f.nodes = append(f.nodes, n)
}

// find returns the index of the innermost open span matching t, or -1.
// Toggles and quotes do not pair across an open bracket.
func (in *inliner) find(kind inlineKind, t Token) int {
	for i := len(in.stack) - 1; i > 0; i-- {
		f := in.stack[i]
		if f.kind == kind && f.open.Value == t.Value && f.open.Count == t.Count {
			return i
		}
		if f.kind >= inlineLink {
			break
		}
	}
	return -1
}

func (in *inliner) findBracket() int {
	for i := len(in.stack) - 1; i > 0; i-- {
		if in.stack[i].kind >= inlineLink {
			return i
		}
	}
	return -1
}

// closeAt degrades the spans above index i and pops span i.
func (in *inliner) closeAt(i int) inlineFrame {
	for len(in.stack)-1 > i {
		in.degrade()
	}
	f := in.stack[i]
	in.stack = in.stack[:i]
	return f
}

func (in *inliner) toggle(t Token) {
	i := in.find(inlineToggle, t)
	if i < 0 {
		in.stack = append(in.stack, inlineFrame{kind: inlineToggle, open: t})
		return
	}
	f := in.closeAt(i)
	n := NewNode(KindStyle, Range{Begin: f.open.Range.Begin, End: t.Range.End}, &StyleData{Style: toggleStyle(t.Value[0], t.Count)})
	n.Children = f.nodes
	in.add(n)
}

func (in *inliner) quoteClose(t Token) {
	i := in.find(inlineQuote, Token{Value: t.Value})
	if i < 0 {
		punct := PunctRightQuote
		if t.Value == "'" {
			punct = PunctRightSingleQuote
		}
		in.add(NewNode(KindPunctuation, t.Range, &PunctData{Punct: punct, Literal: t.Value}))
		return
	}
	f := in.closeAt(i)
	n := NewNode(KindQuote, Range{Begin: f.open.Range.Begin, End: t.Range.End}, &QuoteData{Inline: true})
	n.Children = f.nodes
	in.add(n)
}

// bracketClose closes the innermost bracket span. It reports whether the
// resource token res was consumed.
func (in *inliner) bracketClose(t Token, res *Token) bool {
	i := in.findBracket()
	if i < 0 {
		in.add(textNode(t.Range, t.Value))
		return false
	}
	kind := in.stack[i].kind
	if kind != inlineFootnote && res == nil {
		for len(in.stack) > i {
			in.degrade()
		}
		in.add(textNode(t.Range, t.Value))
		return false
	}
	f := in.closeAt(i)
	if kind == inlineFootnote {
		n := NewNode(KindFootnote, Range{Begin: f.open.Range.Begin, End: t.Range.End}, nil)
		n.Children = f.nodes
		in.add(n)
		return false
	}
	k := KindLink
	if kind == inlineView {
		k = KindView
	}
	n := NewNode(k, Range{Begin: f.open.Range.Begin, End: res.Range.End}, &LinkData{
		Resource: res.Resource.Path,
		Sections: res.Resource.Sections,
	})
	n.Children = f.nodes
	n.Data.(*LinkData).Label = n.Text()
	in.add(n)
	return true
}

// degrade pops the innermost span and splices its opener, as literal text,
// and its content into the enclosing span.
func (in *inliner) degrade() {
	f := in.stack[len(in.stack)-1]
	in.stack = in.stack[:len(in.stack)-1]
	switch f.kind {
	case inlineToggle:
		in.diags.degrade(f.open.Range, "unmatched %q", f.open.Value)
	case inlineQuote:
		in.diags.degrade(f.open.Range, "unterminated quote")
	}
	literal := f.open.Value
	if f.kind == inlineToggle {
		literal = strings.Repeat(literal, f.open.Count)
	}
	in.add(textNode(f.open.Range, literal))
	for _, n := range f.nodes {
		in.add(n)
	}
}
