// Package tsparse parses TypeScript fragments (template interpolations,
// event handlers, script snippets) with tree-sitter.
package tsparse

import (
	"context"
	"sync"

	"github.com/alexaandru/go-sitter-forest/typescript"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"gitlab.com/tozd/go/errors"
)

var language = sync.OnceValue(func() *sitter.Language {
	return sitter.NewLanguage(typescript.GetLanguage())
})

var parserPool = sync.Pool{
	New: func() any {
		p := sitter.NewParser()
		p.SetLanguage(language())
		return p
	},
}

// Fragment is a parsed piece of code. Offsets reported by Fragment are byte
// offsets into Code, whatever wrapping was needed to parse it.
type Fragment struct {
	Code string
	Root sitter.Node
	// Base is how many bytes of wrapping precede Code in the parsed text.
	Base int

	source []byte
	tree   *sitter.Tree
}

// Parse parses code as a sequence of statements.
func Parse(ctx context.Context, code string) (*Fragment, error) {
	return parse(ctx, code, "", "")
}

// ParseExpression parses code as a single expression, so that `{ a }` reads
// as an object literal rather than a block.
func ParseExpression(ctx context.Context, code string) (*Fragment, error) {
	frag, err := parse(ctx, code, "(", "\n)")
	if err != nil {
		return nil, err
	}

	if !frag.isSingleExpression() {
		frag.Close()
		return nil, errors.Errorf("%q is not a single expression", code)
	}

	return frag, nil
}

// isSingleExpression reports whether the wrapping parentheses enclose the
// whole of Code, which rules out input such as `a) + (b`.
func (f *Fragment) isSingleExpression() bool {
	if f.Root.NamedChildCount() != 1 {
		return false
	}
	stmt := f.Root.NamedChild(0)
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return false
	}
	expr := stmt.NamedChild(0)
	return expr.Type() == "parenthesized_expression" &&
		expr.StartByte() == 0 &&
		int(expr.EndByte()) == len(f.source)
}

func parse(ctx context.Context, code, prefix, suffix string) (*Fragment, error) {
	p, ok := parserPool.Get().(*sitter.Parser)
	if !ok {
		return nil, errors.Errorf("unexpected parser pool entry")
	}
	defer parserPool.Put(p)

	source := []byte(prefix + code + suffix)

	tree, err := p.ParseString(ctx, nil, source)
	if err != nil {
		return nil, errors.Errorf("parsing fragment: %w", err)
	}

	root := tree.RootNode()
	if root.IsNull() {
		tree.Close()
		return nil, errors.Errorf("parsing fragment: no root node")
	}

	frag := &Fragment{
		Code:   code,
		Root:   root,
		Base:   len(prefix),
		source: source,
		tree:   tree,
	}

	if bad, found := findError(root); found {
		offset := frag.Offset(bad)
		tree.Close()
		return nil, errors.Errorf("syntax error at offset %d in %q", offset, code)
	}

	return frag, nil
}

// Offset is the start of n relative to Code.
func (f *Fragment) Offset(n sitter.Node) int {
	return int(n.StartByte()) - f.Base
}

// End is the end of n relative to Code.
func (f *Fragment) End(n sitter.Node) int {
	return int(n.EndByte()) - f.Base
}

// Text is the source text of n.
func (f *Fragment) Text(n sitter.Node) string {
	return string(f.source[n.StartByte():n.EndByte()])
}

// Close releases the syntax tree. Nodes of the fragment must not be used
// afterwards.
func (f *Fragment) Close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

func findError(n sitter.Node) (sitter.Node, bool) {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n, true
	}
	for i := range n.ChildCount() {
		if bad, found := findError(n.Child(i)); found {
			return bad, true
		}
	}
	return sitter.Node{}, false
}
