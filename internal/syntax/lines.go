package syntax

import (
	"sort"
	"unicode/utf8"
)

// Lines converts between byte offsets and 1-based line and rune column
// positions of a source.
type Lines struct {
	source []byte
	starts []uint32
}

// NewLines indexes the line starts of source.
func NewLines(source []byte) *Lines {
	starts := []uint32{0}
	for i, c := range source {
		if c == '\n' {
			starts = append(starts, uint32(i+1))
		}
	}
	return &Lines{source: source, starts: starts}
}

// Count returns the number of lines, counting the one after a final newline.
func (l *Lines) Count() int {
	return len(l.starts)
}

// Position converts a byte offset into a 1-based line and rune column.
// Offsets past the end clamp to the end of the source.
func (l *Lines) Position(off uint32) (line, col int) {
	if int(off) > len(l.source) {
		off = uint32(len(l.source))
	}
	i := sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > off }) - 1
	if i < 0 {
		i = 0
	}
	return i + 1, utf8.RuneCount(l.source[l.starts[i]:off]) + 1
}

// Offset converts a 1-based line and rune column into a byte offset. A
// column past the end of the line clamps to the line end.
func (l *Lines) Offset(line, column uint32) (uint32, bool) {
	if line == 0 || column == 0 || int(line) > len(l.starts) {
		return 0, false
	}
	start := l.starts[line-1]
	end := uint32(len(l.source))
	if int(line) < len(l.starts) {
		end = l.starts[line] - 1
	}
	off := start
	for col := uint32(1); col < column && off < end; col++ {
		_, size := utf8.DecodeRune(l.source[off:end])
		off += uint32(size)
	}
	return off, true
}
