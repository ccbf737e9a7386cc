package tsparse_test

import (
	"context"
	"testing"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/sfcmap/pkg/tsparse"
)

func find(n sitter.Node, typ string) (sitter.Node, bool) {
	if n.Type() == typ {
		return n, true
	}
	for i := range n.NamedChildCount() {
		if got, ok := find(n.NamedChild(i), typ); ok {
			return got, true
		}
	}
	return sitter.Node{}, false
}

func TestParse(t *testing.T) {
	ctx := context.Background()

	frag, err := tsparse.Parse(ctx, "foo + bar.baz")
	require.NoError(t, err)
	defer frag.Close()

	assert.Equal(t, 0, frag.Base)
	member, ok := find(frag.Root, "member_expression")
	require.True(t, ok)
	assert.Equal(t, "bar.baz", frag.Text(member))
	assert.Equal(t, 6, frag.Offset(member))
	assert.Equal(t, 13, frag.End(member))
}

func TestParseExpression(t *testing.T) {
	ctx := context.Background()

	frag, err := tsparse.ParseExpression(ctx, "{ x }")
	require.NoError(t, err)
	defer frag.Close()

	assert.Equal(t, "{ x }", frag.Code)
	obj, ok := find(frag.Root, "object")
	require.True(t, ok, "an expression starting with a brace is an object literal")
	assert.Equal(t, 0, frag.Offset(obj))

	short, ok := find(frag.Root, "shorthand_property_identifier")
	require.True(t, ok)
	assert.Equal(t, "x", frag.Text(short))
	assert.Equal(t, 2, frag.Offset(short))
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := tsparse.Parse(context.Background(), "}}{{")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")
}

func TestParseExpression_Incomplete(t *testing.T) {
	_, err := tsparse.ParseExpression(context.Background(), "a +")
	require.Error(t, err)
}

func TestParseExpression_NotSingle(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{name: "escapes the wrapping", code: "a) + (b", wantErr: true},
		{name: "parenthesized operand", code: "(a) + (b)", wantErr: false},
		{name: "trailing line comment", code: "a // note", wantErr: false},
		{name: "arrow function", code: "(x) => x + 1", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag, err := tsparse.ParseExpression(context.Background(), tt.code)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			frag.Close()
		})
	}
}
