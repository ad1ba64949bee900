package marq

import "fmt"

// Position is a location in a source buffer.
// Line and Col are 1-based, Col counts bytes within the line and Offset is the
// 0-based byte offset. The zero value is an invalid position.
type Position struct {
	Offset int
	Line   int
	Col    int
}

// IsValid reports whether the position is valid.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Before reports whether p comes strictly before q.
func (p Position) Before(q Position) bool {
	return p.Offset < q.Offset
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Range is a half-open span [Begin, End) of a source buffer.
type Range struct {
	Begin Position
	End   Position
}

// IsValid reports whether the range has a valid beginning.
func (r Range) IsValid() bool {
	return r.Begin.IsValid()
}

// Len returns the number of bytes covered by r.
func (r Range) Len() int {
	return r.End.Offset - r.Begin.Offset
}

// Contains reports whether o lies within r.
func (r Range) Contains(o Range) bool {
	return r.Begin.Offset <= o.Begin.Offset && o.End.Offset <= r.End.Offset
}

// Union returns the smallest range covering both r and o. Invalid ranges are
// ignored.
func (r Range) Union(o Range) Range {
	if !o.IsValid() {
		return r
	}
	if !r.IsValid() {
		return o
	}
	out := r
	if o.Begin.Before(out.Begin) {
		out.Begin = o.Begin
	}
	if out.End.Before(o.End) {
		out.End = o.End
	}
	return out
}

func (r Range) String() string {
	return r.Begin.String() + "-" + r.End.String()
}

// cursor walks a buffer byte by byte and keeps line/column bookkeeping.
type cursor struct {
	src       []byte
	off       int
	line      int
	lineStart int
}

func (c *cursor) reset(src []byte, off int) {
	c.src = src
	c.off = 0
	c.line = 1
	c.lineStart = 0
	c.advance(off)
}

func (c *cursor) pos() Position {
	return Position{Offset: c.off, Line: c.line, Col: c.off - c.lineStart + 1}
}

func (c *cursor) eof() bool {
	return c.off >= len(c.src)
}

// advance moves the cursor forward n bytes, crossing line breaks.
func (c *cursor) advance(n int) {
	for ; n > 0 && c.off < len(c.src); n-- {
		if c.src[c.off] == '\n' {
			c.line++
			c.lineStart = c.off + 1
		}
		c.off++
	}
}

// advanceTo moves the cursor forward to offset off.
func (c *cursor) advanceTo(off int) {
	if off > c.off {
		c.advance(off - c.off)
	}
}
