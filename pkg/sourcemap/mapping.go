package sourcemap

import (
	"fmt"
	"strings"
)

// Range pairs a generated span with the source span it came from. Both spans
// include their end offset so that zero-width anchors and exclusive block ends
// can still be resolved.
type Range struct {
	GeneratedStart int
	GeneratedEnd   int
	SourceStart    int
	SourceEnd      int
}

func (me Range) String() string {
	return fmt.Sprintf("[%d,%d]->[%d,%d]", me.GeneratedStart, me.GeneratedEnd, me.SourceStart, me.SourceEnd)
}

// Mapping translates offsets between generated text and its source. It is
// never modified after Build and may be read from any number of goroutines.
type Mapping struct {
	ranges []Range
}

// Build concatenates the segments and records a Range for every segment that
// has a source offset.
func Build(segments []Segment) (string, *Mapping) {
	var sb strings.Builder
	m := &Mapping{ranges: make([]Range, 0, len(segments))}

	for _, seg := range segments {
		start := sb.Len()
		sb.WriteString(seg.GeneratedText())

		switch s := seg.(type) {
		case Copied:
			m.ranges = append(m.ranges, Range{
				GeneratedStart: start,
				GeneratedEnd:   start + len(s.Text),
				SourceStart:    s.SourceOffset,
				SourceEnd:      s.SourceOffset + s.sourceLength(),
			})
		case Marker:
			m.ranges = append(m.ranges, Range{
				GeneratedStart: start,
				GeneratedEnd:   start,
				SourceStart:    s.SourceOffset,
				SourceEnd:      s.SourceOffset,
			})
		}
	}

	return sb.String(), m
}

// ToSourceOffset resolves a generated offset through the first range, in
// generation order, that contains it. ok is false when the offset belongs to
// synthesized text only.
func (me *Mapping) ToSourceOffset(generated int) (offset int, ok bool) {
	for _, r := range me.ranges {
		if generated < r.GeneratedStart || generated > r.GeneratedEnd {
			continue
		}
		return translate(generated, r.GeneratedStart, r.SourceStart, r.SourceEnd), true
	}
	return 0, false
}

// ToGeneratedOffset is the inverse of ToSourceOffset. ok is false when the
// source offset was elided from the generated text.
func (me *Mapping) ToGeneratedOffset(source int) (offset int, ok bool) {
	for _, r := range me.ranges {
		if source < r.SourceStart || source > r.SourceEnd {
			continue
		}
		return translate(source, r.SourceStart, r.GeneratedStart, r.GeneratedEnd), true
	}
	return 0, false
}

// ToSourceRange translates both ends of a generated range.
func (me *Mapping) ToSourceRange(start, end int) (int, int, bool) {
	s, ok := me.ToSourceOffset(start)
	if !ok {
		return 0, 0, false
	}
	e, ok := me.ToSourceOffset(end)
	if !ok {
		return 0, 0, false
	}
	return s, e, true
}

// ToGeneratedRange translates both ends of a source range.
func (me *Mapping) ToGeneratedRange(start, end int) (int, int, bool) {
	s, ok := me.ToGeneratedOffset(start)
	if !ok {
		return 0, 0, false
	}
	e, ok := me.ToGeneratedOffset(end)
	if !ok {
		return 0, 0, false
	}
	return s, e, true
}

// Ranges returns a copy of the recorded ranges in generation order.
func (me *Mapping) Ranges() []Range {
	out := make([]Range, len(me.ranges))
	copy(out, me.ranges)
	return out
}

// translate carries the in-range delta over, clamped to the target span when
// the two spans have different lengths.
func translate(offset, fromStart, toStart, toEnd int) int {
	delta := offset - fromStart
	if toStart+delta > toEnd {
		return toEnd
	}
	return toStart + delta
}
