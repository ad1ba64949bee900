package marq

// frame is an open block on the scope stack.
type frame struct {
	node  *Node
	depth int
	// quote nesting level, 1 for '>'
	level int
	// next item number of a numbered list
	next int
	// rows attached to a table
	rows int
}

// paragraph collects the inline tokens of an open paragraph. The inline tree
// is built when the paragraph closes so styles may span line ends.
type paragraph struct {
	node  *Node
	owner *Node
	toks  []Token
}

// line is one source line with indentation and trailing blanks split off.
type line struct {
	depth int
	toks  []Token
	// trailing blank width
	space Token
	// count of the newline run that ends the line, 0 at end of input
	brk int
}

type lineKind uint8

const (
	lineText lineKind = iota
	lineBlock
	lineItem
	lineDef
	lineQuote
	lineRow
)

type parser struct {
	toks  []Token
	i     int
	stack []frame
	para  *paragraph
	// set once the first content line has been seen
	started bool

	doc   *docContext
	diags *Diagnostics
}

func newParser(toks []Token, root *Node, doc *docContext, diags *Diagnostics) *parser {
	p := &parser{toks: toks, doc: doc, diags: diags}
	p.stack = append(p.stack, frame{node: root})
	return p
}

func (p *parser) run() {
	for p.i < len(p.toks) {
		if t := p.toks[p.i]; t.Kind == TokenNewline {
			p.i++
			p.blank(t)
			continue
		}
		p.line(p.nextLine())
	}
	p.closePara()
	for len(p.stack) > 1 {
		p.pop()
	}
}

func (p *parser) nextLine() line {
	var ln line
	start := p.i
	for p.i < len(p.toks) && p.toks[p.i].Kind != TokenNewline {
		p.i++
	}
	toks := p.toks[start:p.i]
	if len(toks) > 0 && toks[0].Kind == TokenIndent {
		ln.depth = toks[0].Count
		toks = toks[1:]
	}
	if n := len(toks); n > 0 && toks[n-1].Kind == TokenSpace {
		ln.space = toks[n-1]
		toks = toks[:n-1]
	}
	ln.toks = toks
	if p.i < len(p.toks) {
		ln.brk = p.toks[p.i].Count
	}
	return ln
}

// blank applies the blank-line policy for a run of line breaks.
func (p *parser) blank(t Token) {
	blanks := t.Count - 1
	if blanks < 1 {
		return
	}
	p.closePara()
	for p.topKindIn(KindQuote, KindTable) {
		p.pop()
	}
	if blanks < 2 {
		return
	}
	for p.topKindIn(KindList, KindItem, KindCheckItem, KindDefinitionDesc, KindQuote, KindTable) {
		p.pop()
	}
	if !p.started || p.i >= len(p.toks) {
		return
	}
	p.top().node.Append(NewNode(KindSpace, t.Range, &SpaceData{Size: blanks - 1}))
}

func (p *parser) line(ln line) {
	if len(ln.toks) == 0 {
		return
	}
	p.started = true
	first := ln.toks[0]
	switch first.Kind {
	case TokenHeading:
		p.heading(ln)
	case TokenSubtitle:
		p.enter(lineBlock, ln.depth, 0)
		n := NewNode(KindSubtitle, first.Range, nil)
		p.appendInline(n, ln.toks[1:])
		p.top().node.Append(n)
	case TokenComment:
		p.enter(lineBlock, ln.depth, 0)
		p.top().node.Append(NewNode(KindComment, first.Range, &TextData{Value: first.Value}))
	case TokenCodeFence:
		p.fence(ln)
	case TokenDinkus:
		p.enter(lineBlock, ln.depth, 0)
		p.top().node.Append(NewNode(KindDinkus, first.Range, nil))
	case TokenPageBreak:
		p.enter(lineBlock, ln.depth, 0)
		p.top().node.Append(NewNode(KindPageBreak, first.Range, nil))
	case TokenBullet, TokenNumber:
		p.item(ln)
	case TokenTerm, TokenDesc:
		p.definition(ln)
	case TokenQuoteMarker:
		p.quote(ln)
	case TokenAdmonition:
		p.enter(lineBlock, ln.depth, 0)
		n := NewNode(KindAdmonition, first.Range, &AdmonitionData{Type: first.Value})
		if len(ln.toks) > 1 {
			title := NewNode(KindContent, Range{}, nil)
			p.appendInline(title, ln.toks[1:])
			n.Append(title)
		}
		p.push(frame{node: n, depth: ln.depth})
	case TokenReference:
		p.enter(lineBlock, ln.depth, 0)
		data := &RefData{Key: first.Value}
		n := NewNode(KindReference, first.Range, data)
		if len(ln.toks) > 1 && ln.toks[1].Resource != nil {
			data.Resource = ln.toks[1].Resource.Path
			data.Sections = ln.toks[1].Resource.Sections
			n.Range = n.Range.Union(ln.toks[1].Range)
		}
		p.top().node.Append(n)
	case TokenInclude:
		p.enter(lineBlock, ln.depth, 0)
		p.include(first)
	case TokenRowOpen, TokenRowSep:
		p.row(ln)
	default:
		p.text(ln)
	}
}

func (p *parser) top() *frame {
	return &p.stack[len(p.stack)-1]
}

func (p *parser) topKindIn(kinds ...Kind) bool {
	if len(p.stack) < 2 {
		return false
	}
	k := p.top().node.Kind
	for _, kind := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (p *parser) push(f frame) {
	p.closePara()
	p.top().node.Append(f.node)
	p.stack = append(p.stack, f)
}

// pop closes the top frame and finalizes its range.
func (p *parser) pop() {
	f := p.top()
	if p.para != nil && p.para.owner == f.node {
		p.closePara()
	}
	finishRange(f.node)
	p.stack = p.stack[:len(p.stack)-1]
}

// enter pops every frame that does not accept a line of kind k at depth.
// Block lines also close the open paragraph; text and quote lines may
// continue it.
func (p *parser) enter(k lineKind, depth int, list ListType) {
	for len(p.stack) > 1 && !p.top().accepts(k, depth, list) {
		p.pop()
	}
	if k != lineText && k != lineQuote {
		p.closePara()
	}
}

func (f *frame) accepts(k lineKind, depth int, list ListType) bool {
	switch f.node.Kind {
	case KindDocument, KindSection:
		return true
	case KindList:
		data := f.node.Data.(*ListData)
		switch k {
		case lineItem:
			return depth == f.depth && data.Type == list
		case lineDef:
			return depth == f.depth && data.Type == ListDefinition
		}
		return false
	case KindItem, KindCheckItem, KindDefinitionDesc, KindAdmonition:
		return depth > f.depth
	case KindQuote:
		return k == lineQuote && depth == f.depth || depth > f.depth
	case KindTable:
		return k == lineRow && depth == f.depth
	}
	return false
}

func (p *parser) heading(ln line) {
	tok := ln.toks[0]
	p.closePara()
	for len(p.stack) > 1 {
		n := p.top().node
		if n.Kind == KindSection && n.Data.(*SectionData).Level < tok.Count {
			break
		}
		p.pop()
	}
	section := NewNode(KindSection, tok.Range, &SectionData{Level: tok.Count, ID: tok.ID})
	title := NewNode(KindContent, Range{}, nil)
	p.appendInline(title, ln.toks[1:])
	if !title.Range.IsValid() {
		title.Range = Range{Begin: tok.Range.End, End: tok.Range.End}
	}
	section.Append(title)
	p.push(frame{node: section})
}

func (p *parser) fence(ln line) {
	p.enter(lineBlock, ln.depth, 0)
	open := ln.toks[0]
	data := &CodeData{}
	n := NewNode(KindCodeBlock, open.Range, data)
	closed := false
	for _, t := range ln.toks[1:] {
		switch t.Kind {
		case TokenCodeLang:
			data.Lang = t.Value
		case TokenCodeSource:
			data.Source = t.Value
		case TokenCodeFence:
			closed = true
		}
		n.Range = n.Range.Union(t.Range)
	}
	if !closed {
		p.diags.degrade(open.Range, "unterminated code fence")
	}
	p.top().node.Append(n)
}

func (p *parser) item(ln line) {
	marker := ln.toks[0]
	rest := ln.toks[1:]
	typ, kind := ListBullet, KindItem
	checked := false
	if marker.Kind == TokenNumber {
		typ = ListNumbered
	} else if len(rest) > 0 && rest[0].Kind == TokenCheckbox {
		typ, kind = ListCheck, KindCheckItem
		checked = rest[0].Checked
		rest = rest[1:]
	}
	p.enter(lineItem, ln.depth, typ)
	top := p.top()
	if top.node.Kind != KindList {
		list := &ListData{Type: typ}
		if typ == ListNumbered {
			list.Start = marker.Count
		}
		p.push(frame{node: NewNode(KindList, marker.Range, list), depth: ln.depth, next: marker.Count})
		top = p.top()
	}
	data := &ItemData{Checked: checked, Marker: marker.Value}
	if typ == ListNumbered {
		data.Number = top.next
		top.next++
	}
	p.push(frame{node: NewNode(kind, marker.Range, data), depth: ln.depth})
	p.openPara(rest, ln)
}

func (p *parser) definition(ln line) {
	marker := ln.toks[0]
	p.enter(lineDef, ln.depth, ListDefinition)
	if p.top().node.Kind != KindList {
		p.push(frame{node: NewNode(KindList, marker.Range, &ListData{Type: ListDefinition}), depth: ln.depth})
	}
	if marker.Kind == TokenTerm {
		term := NewNode(KindDefinitionTerm, marker.Range, nil)
		p.appendInline(term, ln.toks[1:])
		p.top().node.Append(term)
		return
	}
	p.push(frame{node: NewNode(KindDefinitionDesc, marker.Range, nil), depth: ln.depth})
	p.openPara(ln.toks[1:], ln)
}

func (p *parser) quote(ln line) {
	marker := ln.toks[0]
	level := marker.Count
	p.enter(lineQuote, ln.depth, 0)
	sameQuote := func() bool {
		f := p.top()
		return f.node.Kind == KindQuote && f.depth == ln.depth
	}
	for sameQuote() && p.top().level > level {
		p.pop()
	}
	if sameQuote() && p.top().level == level {
		f := p.top()
		f.node.Range = f.node.Range.Union(marker.Range)
		if p.para != nil && p.para.owner == f.node && len(ln.toks) > 1 {
			p.continuePara(ln.toks[1:], ln)
			return
		}
		p.closePara()
		p.openPara(ln.toks[1:], ln)
		return
	}
	base := 0
	if sameQuote() {
		base = p.top().level
	}
	for lvl := base + 1; lvl <= level; lvl++ {
		p.push(frame{node: NewNode(KindQuote, marker.Range, &QuoteData{}), depth: ln.depth, level: lvl})
	}
	p.openPara(ln.toks[1:], ln)
}

func (p *parser) text(ln line) {
	p.enter(lineText, ln.depth, 0)
	if p.para != nil && p.para.owner == p.top().node {
		p.continuePara(ln.toks, ln)
		return
	}
	p.closePara()
	p.openPara(ln.toks, ln)
}

func (p *parser) row(ln line) {
	p.enter(lineRow, ln.depth, 0)
	first := ln.toks[0]
	f := p.top()
	if f.node.Kind != KindTable {
		table := &TableData{HeaderBoundary: -1, FooterBoundary: -1}
		p.push(frame{node: NewNode(KindTable, first.Range, table), depth: ln.depth})
		f = p.top()
	}
	table := f.node.Data.(*TableData)
	index := f.rows
	f.rows++

	if first.Kind == TokenRowSep {
		f.node.Append(NewNode(KindRow, first.Range, &RowData{Separator: true}))
		switch {
		case table.HeaderBoundary < 0:
			table.HeaderBoundary = index
			table.Aligns = first.Aligns
		case table.FooterBoundary < 0:
			table.FooterBoundary = index
		}
		if len(first.Aligns) > table.Columns {
			table.Columns = len(first.Aligns)
		}
		return
	}

	row := NewNode(KindRow, first.Range, &RowData{})
	cellStart := first.Range.End
	var cellToks []Token
	for _, t := range ln.toks[1:] {
		if t.Kind != TokenCellSep && t.Kind != TokenRowClose {
			cellToks = append(cellToks, t)
			continue
		}
		cell := NewNode(KindCell, Range{Begin: cellStart, End: t.Range.Begin}, nil)
		p.appendInline(cell, cellToks)
		row.Append(cell)
		row.Range = row.Range.Union(t.Range)
		cellToks = cellToks[:0]
		cellStart = t.Range.End
	}
	if len(row.Children) > table.Columns {
		table.Columns = len(row.Children)
	}
	f.node.Append(row)
}

// openPara starts a paragraph on the top frame with toks as its first line.
func (p *parser) openPara(toks []Token, ln line) {
	if len(toks) == 0 {
		return
	}
	n := NewNode(KindParagraph, Range{}, nil)
	p.top().node.Append(n)
	p.para = &paragraph{node: n, owner: p.top().node}
	p.para.toks = append(p.para.toks, toks...)
	p.lineEnd(ln)
}

// continuePara joins a continuation line to the open paragraph with a single
// space.
func (p *parser) continuePara(toks []Token, ln line) {
	if n := len(p.para.toks); n > 0 && p.para.toks[n-1].Kind != TokenLineBreak {
		last := p.para.toks[n-1].Range.End
		p.para.toks = append(p.para.toks, Token{
			Kind:  TokenText,
			Range: Range{Begin: last, End: last},
			Value: " ",
		})
	}
	p.para.toks = append(p.para.toks, toks...)
	p.lineEnd(ln)
}

// lineEnd turns a trailing blank run of width two or more into a hard break
// when another line follows directly.
func (p *parser) lineEnd(ln line) {
	if ln.brk == 1 && ln.space.Count >= 2 {
		if n := len(p.para.toks); n > 0 && p.para.toks[n-1].Kind == TokenLineBreak {
			return
		}
		p.para.toks = append(p.para.toks, Token{Kind: TokenLineBreak, Range: ln.space.Range})
	}
}

func (p *parser) closePara() {
	if p.para == nil {
		return
	}
	para := p.para
	p.para = nil
	p.appendInline(para.node, para.toks)
}

// appendInline builds the inline nodes of toks under n and extends n's range
// over them.
func (p *parser) appendInline(n *Node, toks []Token) {
	for _, c := range parseInline(toks, p.diags) {
		n.Append(c)
		n.Range = n.Range.Union(c.Range)
	}
}

// finishRange extends n's range over its children. Included documents keep
// their own buffer's positions and are skipped.
func finishRange(n *Node) {
	for _, c := range n.Children {
		if c.Kind == KindDocument {
			continue
		}
		n.Range = n.Range.Union(c.Range)
	}
}
