package interpolation

import (
	"context"
	"slices"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sfcmap/pkg/scope"
	"github.com/walteh/sfcmap/pkg/sourcemap"
	"github.com/walteh/sfcmap/pkg/tsparse"
)

// Result is a rewritten fragment.
type Result struct {
	Code        string
	Segments    []sourcemap.Segment
	Identifiers []FreeIdentifier
}

// Generated is the rewritten code.
func (me *Result) Generated() string {
	return sourcemap.String(me.Segments)
}

// Mapping maps the rewritten code back onto Code.
func (me *Result) Mapping() *sourcemap.Mapping {
	_, m := sourcemap.Build(me.Segments)
	return m
}

// Names returns each free identifier name once, sorted.
func (me *Result) Names() []string {
	names := make([]string, 0, len(me.Identifiers))
	for _, id := range me.Identifiers {
		names = append(names, id.Text)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Rewrite routes every free identifier of frag through the context object.
// Text outside free identifiers is copied verbatim.
func Rewrite(frag *tsparse.Fragment, table *scope.Table, opts Options) (*Result, error) {
	ids, err := Collect(frag, table, opts)
	if err != nil {
		return nil, err
	}

	return &Result{
		Code:        frag.Code,
		Segments:    generate(frag.Code, ids, opts),
		Identifiers: ids,
	}, nil
}

// RewriteExpression parses code as a single expression and rewrites it.
func RewriteExpression(ctx context.Context, code string, table *scope.Table, opts Options) (*Result, error) {
	frag, err := tsparse.ParseExpression(ctx, code)
	if err != nil {
		return nil, errors.Errorf("parsing expression: %w", err)
	}
	defer frag.Close()

	res, err := Rewrite(frag, table, opts)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Trace().
		Str("code", code).
		Str("style", opts.Style.String()).
		Strs("free", res.Names()).
		Msg("rewrote expression")

	return res, nil
}

func generate(code string, ids []FreeIdentifier, opts Options) []sourcemap.Segment {
	b := sourcemap.NewBuilder()

	if len(ids) == 0 {
		return b.Copy(code, 0).Segments()
	}

	// the leading copy is emitted even when empty so that generated offset 0
	// resolves to source offset 0
	first := ids[0]
	if first.IsShorthand {
		b.Copy(code[:first.End()], 0).Literal(": ")
	} else {
		b.Copy(code[:first.Offset], 0)
	}

	prefix := opts.contextName()

	for i, id := range ids {
		last := i == len(ids)-1

		next := len(code)
		if !last {
			next = ids[i+1].Offset
			if ids[i+1].IsShorthand {
				next = ids[i+1].End()
			}
			b.Marker(ids[i+1].Offset)
		} else {
			b.Marker(id.Offset)
		}

		switch opts.Style {
		case Bracketed:
			b.Literal(prefix + "[").
				Marker(id.Offset).
				Literal("'").
				Copy(id.Text, id.Offset).
				Literal("'").
				Marker(id.End()).
				Literal("]").
				Copy(code[id.End():next], id.End())
		default:
			b.Literal(prefix + ".").
				Copy(code[id.Offset:next], id.Offset)
		}

		if !last && ids[i+1].IsShorthand {
			b.Literal(": ")
		}
	}

	return b.Segments()
}
