package marq

import (
	"bytes"
	"strings"
	"sync"
)

const defaultIndentUnit = 2

var lexerPool = sync.Pool{
	New: func() any {
		return &lexer{}
	},
}

// lexer scans a buffer line by line. Block markers are recognised at line
// start, the remainder of the line is scanned by scanInline.
type lexer struct {
	cursor

	unit int
	toks []Token

	// end of the current line's content (trailing blanks excluded) and
	// whether a line break follows it
	contentEnd int
	hasNewline bool

	text      []byte
	textOpen  bool
	textBegin Position
	textEnd   Position

	table tableState

	textArr [256]byte
}

// tableState carries the per-table row counter.
type tableState struct {
	active bool
	rows   int
}

// Scan splits src into tokens. It never fails: malformed constructs are
// emitted as text. A leading front matter block is skipped unless disabled
// with WithFrontMatter.
func Scan(src []byte, opts ...Option) []Token {
	cfg := newConfig(opts)
	start := bomLen(src)
	if cfg.frontMatter {
		if fm, ok := splitFrontMatter(src); ok {
			start = fm.end
		}
	}
	return scan(src, start, cfg.indentUnit)
}

// bomLen returns the length of a leading UTF-8 byte order mark.
func bomLen(src []byte) int {
	return len(src) - len(trimBOM(src))
}

func scan(src []byte, start, unit int) []Token {
	l := lexerPool.Get().(*lexer)
	l.reset(src, start, unit)
	l.run()
	toks := l.toks
	l.reset(nil, 0, unit)
	lexerPool.Put(l)
	return toks
}

func (l *lexer) reset(src []byte, start, unit int) {
	if unit <= 0 {
		unit = defaultIndentUnit
	}
	l.cursor.reset(src, start)
	l.unit = unit
	l.toks = nil
	if len(src) > 0 {
		l.toks = make([]Token, 0, (len(src)-start)/4+8)
	}
	l.contentEnd = 0
	l.hasNewline = false
	l.text = l.textArr[:0]
	l.textOpen = false
	l.textBegin = Position{}
	l.textEnd = Position{}
	l.table = tableState{}
}

func (l *lexer) run() {
	for !l.eof() {
		if blankLineEnd(l.src, l.off) >= 0 {
			l.scanNewlines()
			continue
		}
		l.scanLine()
	}
	l.flushText()
}

// emit appends a token spanning begin up to the cursor. Pending text is
// flushed first so tokens stay in source order.
func (l *lexer) emit(kind TokenKind, begin Position, value string) *Token {
	l.flushText()
	l.toks = append(l.toks, Token{
		Kind:  kind,
		Range: Range{Begin: begin, End: l.pos()},
		Value: value,
	})
	return &l.toks[len(l.toks)-1]
}

// appendText adds value to the pending text run and moves the cursor over n
// source bytes.
func (l *lexer) appendText(value []byte, n int) {
	if !l.textOpen {
		l.textBegin = l.pos()
		l.textOpen = true
	}
	l.text = append(l.text, value...)
	l.advance(n)
	l.textEnd = l.pos()
}

func (l *lexer) flushText() {
	if !l.textOpen {
		return
	}
	l.toks = append(l.toks, Token{
		Kind:  TokenText,
		Range: Range{Begin: l.textBegin, End: l.textEnd},
		Value: string(l.text),
	})
	l.text = l.text[:0]
	l.textOpen = false
}

// scanNewlines emits one Newline token for a run of line breaks, swallowing
// whitespace-only lines in between.
func (l *lexer) scanNewlines() {
	l.flushText()
	begin := l.pos()
	count := 0
	for !l.eof() {
		if end := blankLineEnd(l.src, l.off); end >= 0 {
			l.advanceTo(end)
		}
		n := newlineLen(l.src, l.off)
		if n == 0 {
			break
		}
		l.advance(n)
		count++
	}
	if count == 0 {
		return
	}
	if count > 1 {
		l.table = tableState{}
	}
	tok := l.emit(TokenNewline, begin, string(l.src[begin.Offset:l.off]))
	tok.Count = count
}

func (l *lexer) scanLine() {
	lineEnd := lineEndAt(l.src, l.off)
	l.hasNewline = lineEnd < len(l.src)

	begin := l.pos()
	width := 0
	i := l.off
	for i < lineEnd && (l.src[i] == ' ' || l.src[i] == '\t') {
		if l.src[i] == '\t' {
			width += l.unit
		} else {
			width++
		}
		i++
	}
	if i > l.off {
		l.advanceTo(i)
		tok := l.emit(TokenIndent, begin, string(l.src[begin.Offset:i]))
		tok.Count = (width + l.unit/2) / l.unit
	}
	if i >= lineEnd || l.src[i] != '|' {
		l.table = tableState{}
	}

	end := lineEnd
	for end > l.off && (l.src[end-1] == ' ' || l.src[end-1] == '\t') {
		end--
	}
	l.contentEnd = end
	l.scanBlock(end, width == 0)
	if l.off < end {
		l.advanceTo(end)
	}
	l.flushText()
	if l.off < lineEnd {
		begin := l.pos()
		n := lineEnd - l.off
		l.advanceTo(lineEnd)
		tok := l.emit(TokenSpace, begin, string(l.src[begin.Offset:lineEnd]))
		tok.Count = n
	}
}

// scanBlock recognises block markers at the start of the line content and
// hands the rest of the line to the inline scanner.
func (l *lexer) scanBlock(end int, col1 bool) {
	rest := l.src[l.off:end]
	if len(rest) == 0 {
		return
	}
	begin := l.pos()
	switch {
	case rest[0] == '`' && runLen(rest, '`') >= 3:
		l.scanFence()
		return
	case isPageBreak(rest):
		l.advanceTo(end)
		l.emit(TokenPageBreak, begin, string(rest))
		return
	case isDinkus(rest):
		l.advanceTo(end)
		l.emit(TokenDinkus, begin, string(rest))
		return
	case rest[0] == '#' && col1:
		if l.scanHeading(rest, end) {
			return
		}
	case bytes.HasPrefix(rest, []byte("//")):
		l.advanceTo(end)
		l.emit(TokenComment, begin, strings.TrimSpace(string(rest[2:])))
		return
	case rest[0] == '|':
		l.scanRow(end)
		return
	case rest[0] == '>':
		n := runLen(rest, '>')
		l.advance(n)
		tok := l.emit(TokenQuoteMarker, begin, string(rest[:n]))
		tok.Count = n
		l.skipSpace(end)
	case rest[0] == '-' || rest[0] == '*' || rest[0] == '+':
		if len(rest) == 1 || rest[1] == ' ' {
			l.advance(1)
			l.emit(TokenBullet, begin, string(rest[:1]))
			l.skipSpace(end)
			l.scanCheckbox(end)
		}
	case isDigit(rest[0]):
		l.scanNumber(rest)
	case (rest[0] == ';' || rest[0] == ':') && (len(rest) == 1 || rest[1] == ' '):
		l.advance(1)
		kind := TokenTerm
		if rest[0] == ':' {
			kind = TokenDesc
		}
		l.emit(kind, begin, string(rest[:1]))
		l.skipSpace(end)
	case bytes.HasPrefix(rest, []byte("!!! ")):
		l.scanAdmonition(rest, end)
	case bytes.HasPrefix(rest, []byte("[@")):
		if l.scanReference(rest, end) {
			return
		}
	case bytes.HasPrefix(rest, []byte("<<(")) && rest[len(rest)-1] == ')':
		inner := string(rest[3 : len(rest)-1])
		l.advanceTo(end)
		tok := l.emit(TokenInclude, begin, inner)
		tok.Resource = NewResource(inner)
		return
	}
	l.scanInline(end)
}

func (l *lexer) skipSpace(end int) {
	for l.off < end && (l.src[l.off] == ' ' || l.src[l.off] == '\t') {
		l.advance(1)
	}
}

func (l *lexer) scanHeading(rest []byte, end int) bool {
	begin := l.pos()
	n := runLen(rest, '#')
	if n == 1 && len(rest) > 1 && rest[1] == '+' && (len(rest) == 2 || rest[2] == ' ') {
		l.advance(2)
		l.emit(TokenSubtitle, begin, "#+")
		l.skipSpace(end)
		l.scanInline(end)
		return true
	}
	if n < len(rest) && rest[n] != ' ' {
		return false
	}
	l.advance(n)
	tok := l.emit(TokenHeading, begin, string(rest[:n]))
	tok.Count = n
	l.skipSpace(end)

	inlineEnd := end
	content := l.src[l.off:end]
	if len(content) > 0 && content[len(content)-1] == '}' {
		if idx := bytes.LastIndex(content, []byte("{#")); idx >= 0 {
			id := content[idx+2 : len(content)-1]
			if len(id) > 0 && bytes.IndexAny(id, " \t{}") < 0 {
				tok.ID = string(id)
				inlineEnd = l.off + idx
				for inlineEnd > l.off && (l.src[inlineEnd-1] == ' ' || l.src[inlineEnd-1] == '\t') {
					inlineEnd--
				}
			}
		}
	}
	l.scanInline(inlineEnd)
	l.flushText()
	l.advanceTo(end)
	return true
}

func (l *lexer) scanCheckbox(end int) {
	rest := l.src[l.off:end]
	if len(rest) < 3 || rest[0] != '[' || rest[2] != ']' {
		return
	}
	if len(rest) > 3 && rest[3] != ' ' {
		return
	}
	var checked bool
	switch rest[1] {
	case ' ':
	case 'x', 'X':
		checked = true
	default:
		return
	}
	begin := l.pos()
	l.advance(3)
	tok := l.emit(TokenCheckbox, begin, string(rest[:3]))
	tok.Checked = checked
	l.skipSpace(end)
}

func (l *lexer) scanNumber(rest []byte) {
	n := 0
	for n < len(rest) && n < 9 && isDigit(rest[n]) {
		n++
	}
	if n >= len(rest) || (rest[n] != '.' && rest[n] != ')') {
		return
	}
	if n+1 < len(rest) && rest[n+1] != ' ' {
		return
	}
	value := 0
	for _, b := range rest[:n] {
		value = value*10 + int(b-'0')
	}
	begin := l.pos()
	l.advance(n + 1)
	tok := l.emit(TokenNumber, begin, string(rest[:n+1]))
	tok.Count = value
	l.skipSpace(l.contentEnd)
}

func (l *lexer) scanAdmonition(rest []byte, end int) {
	i := 4
	for i < len(rest) && rest[i] == ' ' {
		i++
	}
	j := i
	for j < len(rest) && rest[j] != ' ' && rest[j] != '\t' {
		j++
	}
	if j == i {
		return
	}
	begin := l.pos()
	l.advance(j)
	l.emit(TokenAdmonition, begin, string(rest[i:j]))
	l.skipSpace(end)
}

// scanReference handles "[@key]: resource" reference definitions.
func (l *lexer) scanReference(rest []byte, end int) bool {
	idx := bytes.IndexByte(rest, ']')
	if idx < 3 || idx+1 >= len(rest) || rest[idx+1] != ':' || !isRefKey(rest[2:idx]) {
		return false
	}
	begin := l.pos()
	l.advance(idx + 2)
	l.emit(TokenReference, begin, string(rest[2:idx]))
	l.skipSpace(end)
	if l.off < end {
		begin = l.pos()
		raw := l.src[l.off:end]
		if len(raw) >= 2 && raw[0] == '(' && raw[len(raw)-1] == ')' {
			raw = raw[1 : len(raw)-1]
		}
		l.advanceTo(end)
		tok := l.emit(TokenResource, begin, string(raw))
		tok.Resource = NewResource(string(raw))
	}
	return true
}

// scanFence captures a fenced code block verbatim up to a closing fence of at
// least the same width, or to the end of the buffer.
func (l *lexer) scanFence() {
	begin := l.pos()
	n := runLen(l.src[l.off:], '`')
	l.advance(n)
	tok := l.emit(TokenCodeFence, begin, strings.Repeat("`", n))
	tok.Count = n

	lineEnd := lineEndAt(l.src, l.off)
	l.skipSpace(lineEnd)
	info := bytes.TrimRight(l.src[l.off:lineEnd], " \t")
	if len(info) > 0 {
		begin = l.pos()
		l.advance(len(info))
		l.emit(TokenCodeLang, begin, string(info))
	}
	l.advanceTo(lineEnd)
	l.advance(newlineLen(l.src, l.off))

	bodyStart := l.off
	closeLine := -1
	for off := bodyStart; off < len(l.src); {
		le := lineEndAt(l.src, off)
		if isClosingFence(l.src[off:le], n) {
			closeLine = off
			break
		}
		next := le + newlineLen(l.src, le)
		if next == le {
			break
		}
		off = next
	}

	begin = l.pos()
	if closeLine < 0 {
		l.advanceTo(len(l.src))
		l.emit(TokenCodeSource, begin, string(l.src[bodyStart:]))
		return
	}
	bodyEnd := closeLine
	if closeLine > bodyStart {
		bodyEnd = closeLine - 1
		if bodyEnd > bodyStart && l.src[bodyEnd-1] == '\r' {
			bodyEnd--
		}
	}
	l.advanceTo(bodyEnd)
	l.emit(TokenCodeSource, begin, string(l.src[bodyStart:bodyEnd]))

	l.advanceTo(closeLine)
	le := lineEndAt(l.src, closeLine)
	l.skipSpace(le)
	begin = l.pos()
	m := runLen(l.src[l.off:le], '`')
	l.advance(m)
	tok = l.emit(TokenCodeFence, begin, strings.Repeat("`", m))
	tok.Count = m
	l.advanceTo(le)
}

func isClosingFence(line []byte, n int) bool {
	line = bytes.Trim(line, " \t\r")
	return len(line) >= n && runLen(line, '`') == len(line)
}

func isPageBreak(rest []byte) bool {
	return bytes.Equal(rest, []byte("///")) || bytes.Equal(rest, []byte("\f"))
}

func isDinkus(rest []byte) bool {
	return bytes.Equal(rest, []byte("***")) || bytes.Equal(rest, []byte("* * *"))
}

// blankLineEnd returns the offset of the line terminator when the line
// remainder starting at off holds only blanks, len(src) when that remainder
// runs to the end of the buffer, and -1 otherwise.
func blankLineEnd(src []byte, off int) int {
	for i := off; i < len(src); i++ {
		switch src[i] {
		case ' ', '\t':
		case '\n':
			return i
		case '\r':
			if i+1 < len(src) && src[i+1] == '\n' {
				return i
			}
			return -1
		default:
			return -1
		}
	}
	return len(src)
}

// lineEndAt returns the offset of the terminator of the line containing off.
func lineEndAt(src []byte, off int) int {
	i := bytes.IndexByte(src[off:], '\n')
	if i < 0 {
		return len(src)
	}
	end := off + i
	if end > off && src[end-1] == '\r' {
		end--
	}
	return end
}

func newlineLen(src []byte, off int) int {
	if off >= len(src) {
		return 0
	}
	switch {
	case src[off] == '\n':
		return 1
	case src[off] == '\r' && off+1 < len(src) && src[off+1] == '\n':
		return 2
	}
	return 0
}

func runLen(b []byte, c byte) int {
	n := 0
	for n < len(b) && b[n] == c {
		n++
	}
	return n
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

func isLetter(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

// isWord reports whether b belongs to a word. Non-ASCII bytes count as letters.
func isWord(b byte) bool {
	return isLetter(b) || isDigit(b) || b >= 0x80
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

func isRefKey(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if !isWord(c) && c != '_' && c != '-' && c != ':' && c != '.' {
			return false
		}
	}
	return true
}
