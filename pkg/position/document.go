package position

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

// Document converts between the byte offsets used internally and the
// UTF-16 based positions editors speak.
type Document struct {
	text       string
	lineStarts []int
}

func NewDocument(text string) *Document {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Document{text: text, lineStarts: starts}
}

func (d *Document) Text() string {
	return d.text
}

func (d *Document) LineCount() int {
	return len(d.lineStarts)
}

// LineAndCharacter returns the zero-based line and UTF-16 character of a byte offset.
func (d *Document) LineAndCharacter(offset int) (line, character int) {
	offset = d.clamp(offset)
	line = sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	}) - 1
	return line, utf16Len(d.text[d.lineStarts[line]:offset])
}

// OffsetAt is the inverse of LineAndCharacter. Characters past the end of the
// line resolve to the end of the line.
func (d *Document) OffsetAt(line, character int) int {
	if line < 0 {
		return 0
	}
	if line >= len(d.lineStarts) {
		return len(d.text)
	}
	end := len(d.text)
	if line+1 < len(d.lineStarts) {
		end = d.lineStarts[line+1] - 1
	}
	return d.advance(d.lineStarts[line], end, character)
}

// UTF16Offset converts a byte offset to a UTF-16 code unit offset.
func (d *Document) UTF16Offset(offset int) int {
	return utf16Len(d.text[:d.clamp(offset)])
}

// ByteOffset converts a UTF-16 code unit offset to a byte offset.
func (d *Document) ByteOffset(utf16Offset int) int {
	return d.advance(0, len(d.text), utf16Offset)
}

// Range returns the LSP style range covered by a position.
func (d *Document) Range(p RawPosition) Range {
	sl, sc := d.LineAndCharacter(p.Offset)
	el, ec := d.LineAndCharacter(p.End())
	return Range{
		Start: Place{Line: sl, Character: sc},
		End:   Place{Line: el, Character: ec},
	}
}

func (d *Document) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(d.text) {
		return len(d.text)
	}
	return offset
}

// advance walks from byte start towards end until units UTF-16 code units
// have been consumed.
func (d *Document) advance(start, end, units int) int {
	i := start
	for i < end && units > 0 {
		r, size := utf8.DecodeRuneInString(d.text[i:])
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		units -= n
		i += size
	}
	return i
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		l := utf16.RuneLen(r)
		if l < 0 {
			l = 1
		}
		n += l
	}
	return n
}

type Place struct {
	Line      int
	Character int
}

type Range struct {
	Start Place
	End   Place
}
