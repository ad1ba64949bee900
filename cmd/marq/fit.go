package main

import (
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

const ellipsis = "…"

// fitLine cuts line to width printable cells, ending it with an ellipsis
// when anything was dropped. A width of zero or less disables fitting.
func fitLine(line string, width int) string {
	if width <= 0 || ansi.PrintableRuneWidth(line) <= width {
		return line
	}
	if width == 1 {
		return ellipsis
	}
	return truncate.StringWithTail(line, uint(width), ellipsis)
}
