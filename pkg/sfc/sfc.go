// Package sfc describes single-file-component documents as a set of
// top-level blocks and provides a small structural parser for them.
package sfc

import (
	"github.com/walteh/sfcmap/pkg/sourcemap"
)

// Unmappable marks a block offset that has no counterpart in the host document.
const Unmappable = -1

// Block is one top-level element of a document.
//
//	<script setup lang="ts">const a = 1</script>
//	^Start                  ^StartTagEnd
//	                                   ^EndTagStart
//	                                            ^End
type Block struct {
	Type    string
	Attrs   map[string]string
	Lang    string
	Content string

	Start       int
	End         int
	StartTagEnd int
	EndTagStart int
}

// Has reports whether the attribute is present, with or without a value.
func (b *Block) Has(attr string) bool {
	_, ok := b.Attrs[attr]
	return ok
}

type Descriptor struct {
	Template     *Block
	Script       *Block
	ScriptSetup  *Block
	Styles       []*Block
	CustomBlocks []*Block

	// Errors holds recoverable problems found while parsing (duplicate or
	// unterminated blocks). They never abort a parse.
	Errors []error
}

// Blocks returns every block ordered by its position in the parsed text.
func (d *Descriptor) Blocks() []*Block {
	var out []*Block
	if d.Template != nil {
		out = append(out, d.Template)
	}
	if d.Script != nil {
		out = append(out, d.Script)
	}
	if d.ScriptSetup != nil {
		out = append(out, d.ScriptSetup)
	}
	out = append(out, d.Styles...)
	out = append(out, d.CustomBlocks...)
	sortBlocks(out)
	return out
}

// Parser is the structural block parser fed with masked documents.
type Parser interface {
	Parse(source string) (*Descriptor, error)
}

// Relocate rewrites the offsets of every block through m so that they point
// into the document m was built from. Offsets m cannot resolve become
// Unmappable.
func Relocate(d *Descriptor, m *sourcemap.Mapping) {
	for _, b := range d.Blocks() {
		b.Start = relocate(m, b.Start)
		b.End = relocate(m, b.End)
		b.StartTagEnd = relocate(m, b.StartTagEnd)
		b.EndTagStart = relocate(m, b.EndTagStart)
	}
}

func relocate(m *sourcemap.Mapping, offset int) int {
	if got, ok := m.ToSourceOffset(offset); ok {
		return got
	}
	return Unmappable
}
