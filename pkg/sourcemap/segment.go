// Package sourcemap models generated text as an ordered list of segments and
// translates offsets between the generated text and the document it came from.
package sourcemap

import (
	"fmt"
	"strings"
)

// Segment is one piece of generated output. Exactly one of the variants
// Literal, Copied or Marker.
type Segment interface {
	// GeneratedText is the text this segment contributes to the output.
	GeneratedText() string
	// Source returns the source offset this segment maps to, if any.
	Source() (offset int, ok bool)

	isSegment()
}

var (
	_ Segment = Literal{}
	_ Segment = Copied{}
	_ Segment = Marker{}
)

// Literal is synthesized text with no origin in the source document.
type Literal struct {
	Text string
}

func (me Literal) GeneratedText() string { return me.Text }
func (me Literal) Source() (int, bool)   { return 0, false }
func (me Literal) String() string        { return fmt.Sprintf("%q", me.Text) }
func (Literal) isSegment()               {}

// Copied is text taken from the source document at SourceOffset.
//
// SourceText is only set when the source span differs from the generated
// text (display-only mappings); its length then defines the source range.
type Copied struct {
	Text         string
	SourceOffset int
	SourceText   string
}

func (me Copied) GeneratedText() string { return me.Text }
func (me Copied) Source() (int, bool)   { return me.SourceOffset, true }
func (Copied) isSegment()               {}

func (me Copied) sourceLength() int {
	if me.SourceText != "" {
		return len(me.SourceText)
	}
	return len(me.Text)
}

func (me Copied) String() string {
	return fmt.Sprintf("%q@%d", me.Text, me.SourceOffset)
}

// Marker is a zero-width, mapping-only anchor at SourceOffset.
type Marker struct {
	SourceOffset int
}

func (me Marker) GeneratedText() string { return "" }
func (me Marker) Source() (int, bool)   { return me.SourceOffset, true }
func (me Marker) String() string        { return fmt.Sprintf("|@%d", me.SourceOffset) }
func (Marker) isSegment()               {}

// String concatenates the generated text of every segment.
func String(segments []Segment) string {
	var sb strings.Builder
	for _, seg := range segments {
		sb.WriteString(seg.GeneratedText())
	}
	return sb.String()
}

// Builder collects segments in generation order.
type Builder struct {
	segments []Segment
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Literal appends synthesized text. Empty text is dropped.
func (me *Builder) Literal(text string) *Builder {
	if text != "" {
		me.segments = append(me.segments, Literal{Text: text})
	}
	return me
}

// Copy appends text copied verbatim from offset in the source.
func (me *Builder) Copy(text string, offset int) *Builder {
	me.segments = append(me.segments, Copied{Text: text, SourceOffset: offset})
	return me
}

// CopyAs appends generated text that stands in for sourceText at offset.
func (me *Builder) CopyAs(text string, offset int, sourceText string) *Builder {
	me.segments = append(me.segments, Copied{Text: text, SourceOffset: offset, SourceText: sourceText})
	return me
}

// Marker appends a zero-width anchor at offset.
func (me *Builder) Marker(offset int) *Builder {
	me.segments = append(me.segments, Marker{SourceOffset: offset})
	return me
}

// Append adds already built segments.
func (me *Builder) Append(segments ...Segment) *Builder {
	me.segments = append(me.segments, segments...)
	return me
}

func (me *Builder) Segments() []Segment {
	return me.segments
}

func (me *Builder) Len() int {
	return len(me.segments)
}

func (me *Builder) Build() (string, *Mapping) {
	return Build(me.segments)
}
