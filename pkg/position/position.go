package position

import (
	"fmt"

	"github.com/walteh/sfcmap/pkg/sourcemap"
)

// RawPosition represents a span of text by its starting byte offset
type RawPosition struct {
	// Offset is the byte offset in the source text
	Offset int
	// Text is the actual text at this position
	Text string
}

// Length returns the length of the text at this position
func (p *RawPosition) Length() int {
	return len(p.Text)
}

func NewBasicPosition(text string, offset int) RawPosition {
	return RawPosition{Text: text, Offset: offset}
}

// End is the offset one past the last byte of the text
func (p RawPosition) End() int {
	return p.Offset + len(p.Text)
}

func (p RawPosition) HasRangeOverlapWith(start RawPosition) bool {
	startOffset := start.Offset
	endOffset := startOffset + start.Length()

	posOffset := p.Offset
	posEndOffset := posOffset + p.Length()

	// A zero-length position overlaps if it falls within the other range
	if p.Length() == 0 {
		return posOffset >= startOffset && posOffset <= endOffset
	}
	if start.Length() == 0 {
		return startOffset >= posOffset && startOffset <= posEndOffset
	}

	return startOffset < posEndOffset && endOffset > posOffset
}

// GetLineAndColumn calculates the line and column number for a given position in the text
// Returns zero-based line and column numbers, the column counted in bytes
func (p RawPosition) GetLineAndColumn(text string) (line, col int) {
	if p.Offset == 0 {
		return 0, 0
	}

	lastNewline := -1
	for i := 0; i < p.Offset && i < len(text); i++ {
		if text[i] == '\n' {
			line++
			lastNewline = i
		}
	}

	col = p.Offset - lastNewline - 1

	return line, col
}

func (p RawPosition) String() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

// Translate maps a position in generated text back to the document the
// mapping was built from. The returned position carries the source text
// covered by the translated span.
func Translate(m *sourcemap.Mapping, generated RawPosition, source string) (RawPosition, bool) {
	start, end, ok := m.ToSourceRange(generated.Offset, generated.End())
	if !ok || start > end || end > len(source) {
		return RawPosition{}, false
	}
	return RawPosition{Offset: start, Text: source[start:end]}, true
}
