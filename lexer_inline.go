package marq

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// scanInline scans the line content between the cursor and end.
func (l *lexer) scanInline(end int) {
	for l.off < end {
		switch c := l.src[l.off]; c {
		case '\\':
			l.scanEscape(end)
		case '*', '_', '`', '~':
			l.scanToggle(end)
		case '-':
			l.scanDash(end)
		case '.':
			if bytes.HasPrefix(l.src[l.off:end], []byte("...")) {
				begin := l.pos()
				l.advance(3)
				tok := l.emit(TokenPunct, begin, "...")
				tok.Count = int(PunctEllipsis)
			} else {
				l.appendText(l.src[l.off:l.off+1], 1)
			}
		case '"', '\'':
			l.scanQuote(end)
		case '[':
			l.scanBracket(end)
		case '!':
			if l.peek(1, end) == '[' {
				begin := l.pos()
				l.advance(2)
				l.emit(TokenViewOpen, begin, "![")
			} else {
				l.appendText(l.src[l.off:l.off+1], 1)
			}
		case ']':
			l.scanBracketClose(end)
		case ':':
			l.scanEmoji(end)
		case '@':
			l.scanAccountTag(end)
		case '#':
			l.scanHashTag(end)
		case '{':
			l.scanDateTime(end)
		default:
			l.scanText(end)
		}
	}
	l.flushText()
}

// scanText consumes plain bytes up to the next byte that may start a symbol.
func (l *lexer) scanText(end int) {
	i := l.off + 1
	for i < end && !isInlineSymbol(l.src[i]) {
		i++
	}
	l.appendText(l.src[l.off:i], i-l.off)
}

func isInlineSymbol(b byte) bool {
	switch b {
	case '\\', '*', '_', '`', '~', '-', '.', '"', '\'', '[', ']', '!', ':', '@', '#', '{':
		return true
	}
	return false
}

// prev returns the byte before the cursor on the current line, or 0 at line
// start.
func (l *lexer) prev() byte {
	if l.off <= l.lineStart {
		return 0
	}
	return l.src[l.off-1]
}

// peek returns the byte n positions past the cursor, or 0 beyond end.
func (l *lexer) peek(n, end int) byte {
	if l.off+n >= end {
		return 0
	}
	return l.src[l.off+n]
}

func (l *lexer) scanEscape(end int) {
	if l.off+1 >= end {
		if end == l.contentEnd && l.hasNewline {
			begin := l.pos()
			l.advance(1)
			l.emit(TokenLineBreak, begin, `\`)
			return
		}
		l.appendText(l.src[l.off:l.off+1], 1)
		return
	}
	_, size := utf8.DecodeRune(l.src[l.off+1 : end])
	l.appendText(l.src[l.off+1:l.off+1+size], 1+size)
}

func (l *lexer) scanToggle(end int) {
	c := l.src[l.off]
	n := runLen(l.src[l.off:end], c)
	prev, next := l.prev(), l.peek(n, end)
	literal := false
	switch {
	case c == '`' && n == 2:
		if idx := bytes.Index(l.src[l.off+2:end], []byte("``")); idx >= 0 {
			begin := l.pos()
			value := string(l.src[l.off+2 : l.off+2+idx])
			l.advance(idx + 4)
			tok := l.emit(TokenCodeInline, begin, value)
			tok.Count = 2
			return
		}
		literal = true
	case c == '`' && n > 2, c == '~' && n == 1:
		literal = true
	case c == '_' && isWord(prev) && isWord(next):
		literal = true
	case (prev == 0 || isSpace(prev)) && (next == 0 || isSpace(next)):
		literal = true
	}
	if literal {
		l.appendText(l.src[l.off:l.off+n], n)
		return
	}
	begin := l.pos()
	l.advance(n)
	tok := l.emit(TokenToggle, begin, string(c))
	tok.Count = n
}

// scanDash maps hyphen runs to hyphen, en-dash and em-dash punctuation.
// Runs longer than three are split into em-dash groups.
func (l *lexer) scanDash(end int) {
	n := runLen(l.src[l.off:end], '-')
	for n > 0 {
		k := n
		if k > 3 {
			k = 3
		}
		begin := l.pos()
		l.advance(k)
		tok := l.emit(TokenPunct, begin, strings.Repeat("-", k))
		tok.Count = int(PunctHyphen) + k - 1
		n -= k
	}
}

// scanQuote promotes a straight quote to an opening or closing quote using the
// surrounding bytes. Ambiguous quotes stay literal.
func (l *lexer) scanQuote(end int) {
	c := l.src[l.off]
	prev, next := l.prev(), l.peek(1, end)
	prevBoundary := prev == 0 || isSpace(prev) || strings.IndexByte("([{<-/\"'", prev) >= 0
	nextBoundary := next == 0 || isSpace(next)
	begin := l.pos()
	switch {
	case c == '\'' && isWord(prev) && isWord(next):
		l.advance(1)
		tok := l.emit(TokenPunct, begin, "'")
		tok.Count = int(PunctApostrophe)
	case prevBoundary && !nextBoundary:
		l.advance(1)
		l.emit(TokenQuoteOpen, begin, string(c))
	case !prevBoundary && (nextBoundary || isClosingPunct(next)):
		l.advance(1)
		l.emit(TokenQuoteClose, begin, string(c))
	default:
		l.appendText(l.src[l.off:l.off+1], 1)
	}
}

func isClosingPunct(b byte) bool {
	return strings.IndexByte(".,;:!?)]}\"'-*_`~", b) >= 0
}

func (l *lexer) scanBracket(end int) {
	begin := l.pos()
	switch l.peek(1, end) {
	case '^':
		l.advance(2)
		l.emit(TokenFootnoteOpen, begin, "[^")
		return
	case '@':
		rest := l.src[l.off:end]
		if idx := bytes.IndexByte(rest, ']'); idx > 2 && isRefKey(rest[2:idx]) {
			l.advance(idx + 1)
			l.emit(TokenInTextRef, begin, string(rest[2:idx]))
			return
		}
	}
	l.advance(1)
	l.emit(TokenLinkOpen, begin, "[")
}

// scanBracketClose emits the closing bracket and, when a parenthesised
// resource follows directly, the resource token split into path and anchors.
func (l *lexer) scanBracketClose(end int) {
	begin := l.pos()
	l.advance(1)
	l.emit(TokenBracketClose, begin, "]")
	if l.peek(0, end) != '(' {
		return
	}
	idx := bytes.IndexByte(l.src[l.off:end], ')')
	if idx < 0 {
		return
	}
	begin = l.pos()
	raw := string(l.src[l.off+1 : l.off+idx])
	l.advance(idx + 1)
	tok := l.emit(TokenResource, begin, raw)
	tok.Resource = NewResource(raw)
}

func (l *lexer) scanEmoji(end int) {
	if !isWord(l.prev()) && isLetter(l.peek(1, end)) {
		j := l.off + 1
		for j < end && isEmojiByte(l.src[j]) {
			j++
		}
		if j < end && l.src[j] == ':' {
			begin := l.pos()
			code := string(l.src[l.off+1 : j])
			l.advance(j - l.off + 1)
			l.emit(TokenEmoji, begin, code)
			return
		}
	}
	l.appendText(l.src[l.off:l.off+1], 1)
}

func isEmojiByte(b byte) bool {
	return 'a' <= b && b <= 'z' || isDigit(b) || b == '_' || b == '+' || b == '-'
}

func (l *lexer) scanAccountTag(end int) {
	if !isWord(l.prev()) {
		j := l.off + 1
		for j < end && (isWord(l.src[j]) || l.src[j] == '_' || l.src[j] == '.' || l.src[j] == '-') {
			j++
		}
		for j > l.off+1 && (l.src[j-1] == '.' || l.src[j-1] == '-') {
			j--
		}
		if j > l.off+1 {
			begin := l.pos()
			name := string(l.src[l.off+1 : j])
			l.advance(j - l.off)
			l.emit(TokenAccountTag, begin, name)
			return
		}
	}
	l.appendText(l.src[l.off:l.off+1], 1)
}

func (l *lexer) scanHashTag(end int) {
	if prev := l.prev(); !isWord(prev) && prev != '&' {
		j := l.off + 1
		for j < end && (isWord(l.src[j]) || l.src[j] == '_' || l.src[j] == '-') {
			j++
		}
		for j > l.off+1 && l.src[j-1] == '-' {
			j--
		}
		if j > l.off+1 {
			begin := l.pos()
			name := string(l.src[l.off+1 : j])
			l.advance(j - l.off)
			l.emit(TokenHashTag, begin, name)
			return
		}
	}
	l.appendText(l.src[l.off:l.off+1], 1)
}

func (l *lexer) scanDateTime(end int) {
	if idx := bytes.IndexByte(l.src[l.off:end], '}'); idx > 1 {
		raw := string(l.src[l.off+1 : l.off+idx])
		if _, ok := ParseDateTime(raw); ok {
			begin := l.pos()
			l.advance(idx + 1)
			l.emit(TokenDateTime, begin, raw)
			return
		}
	}
	l.appendText(l.src[l.off:l.off+1], 1)
}
