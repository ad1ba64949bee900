package marq

import "bytes"

// scanRow emits one table row. A row made only of dash/colon cells is the
// alignment separator and becomes a single RowSep token.
func (l *lexer) scanRow(end int) {
	if !l.table.active {
		l.table = tableState{active: true}
	}
	row := l.table.rows
	l.table.rows++

	pipes := pipeOffsets(l.src, l.off, end)
	cells := make([][2]int, 0, len(pipes))
	for i, p := range pipes {
		next := end
		if i+1 < len(pipes) {
			next = pipes[i+1]
		}
		if i+1 == len(pipes) && len(bytes.TrimSpace(l.src[p+1:next])) == 0 {
			break
		}
		cells = append(cells, [2]int{p + 1, next})
	}
	begin := l.pos()
	if aligns, ok := separatorAligns(l.src, cells); ok {
		l.advanceTo(end)
		tok := l.emit(TokenRowSep, begin, string(l.src[begin.Offset:end]))
		tok.Count = row
		tok.Aligns = aligns
		return
	}

	l.advance(1)
	tok := l.emit(TokenRowOpen, begin, "|")
	tok.Count = row
	for i, cell := range cells {
		start, stop := cell[0], cell[1]
		for start < stop && isSpace(l.src[start]) {
			start++
		}
		contentEnd := stop
		for contentEnd > start && isSpace(l.src[contentEnd-1]) {
			contentEnd--
		}
		l.advanceTo(start)
		l.scanInline(contentEnd)
		l.advanceTo(stop)
		if stop >= end {
			break
		}
		begin = l.pos()
		l.advance(1)
		if i+1 < len(cells) {
			l.emit(TokenCellSep, begin, "|")
		} else {
			l.emit(TokenRowClose, begin, "|")
		}
	}
	l.advanceTo(end)
	if last := l.toks[len(l.toks)-1]; last.Kind != TokenRowClose {
		// no trailing pipe
		l.emit(TokenRowClose, l.pos(), "")
	}
}

// pipeOffsets returns the offsets of unescaped cell delimiters in [off, end).
func pipeOffsets(src []byte, off, end int) []int {
	var out []int
	for i := off; i < end; i++ {
		switch src[i] {
		case '\\':
			i++
		case '|':
			out = append(out, i)
		}
	}
	return out
}

// separatorAligns reports whether every cell matches :?-+:? and returns the
// per-column alignment.
func separatorAligns(src []byte, cells [][2]int) ([]Align, bool) {
	if len(cells) == 0 {
		return nil, false
	}
	aligns := make([]Align, len(cells))
	for i, cell := range cells {
		c := bytes.TrimSpace(src[cell[0]:cell[1]])
		left := len(c) > 0 && c[0] == ':'
		right := len(c) > 1 && c[len(c)-1] == ':'
		core := c
		if left {
			core = core[1:]
		}
		if right {
			core = core[:len(core)-1]
		}
		if len(core) == 0 || runLen(core, '-') != len(core) {
			return nil, false
		}
		switch {
		case left && right:
			aligns[i] = AlignCenter
		case left:
			aligns[i] = AlignLeft
		case right:
			aligns[i] = AlignRight
		}
	}
	return aligns, true
}
