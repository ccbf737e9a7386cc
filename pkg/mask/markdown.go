package mask

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sfcmap/pkg/sfc"
	"github.com/walteh/sfcmap/pkg/sourcemap"
)

type Options struct {
	// BlockTags are the elements extracted from prose, tried in order.
	BlockTags []string
	// Parser is the structural parser run over the masked text.
	Parser sfc.Parser
}

func DefaultOptions() Options {
	return Options{
		BlockTags: DefaultBlockTags,
		Parser:    sfc.NewDefaultParser(),
	}
}

// Result of parsing a markdown document.
type Result struct {
	// Generated is the text handed to the structural parser.
	Generated string
	Segments  []sourcemap.Segment
	// Mapping translates offsets in Generated to offsets in the markdown.
	Mapping *sourcemap.Mapping
	// Descriptor holds the parsed blocks, already relocated to markdown offsets.
	Descriptor *sfc.Descriptor
}

// Handles reports whether fileName is a markdown document.
func Handles(fileName string) bool {
	return strings.EqualFold(filepath.Ext(fileName), ".md")
}

// ParseMarkdown masks content, extracts its blocks and parses the result.
// Every block offset in the returned descriptor refers to content, or is
// sfc.Unmappable for synthesized text.
func ParseMarkdown(ctx context.Context, content string, opts Options) (*Result, error) {
	if opts.BlockTags == nil {
		opts.BlockTags = DefaultBlockTags
	}
	if opts.Parser == nil {
		opts.Parser = sfc.NewDefaultParser()
	}

	// masking runs over the whole buffer before extraction; the order matters
	masked := Mask(content)

	segments, remaining := Extract(masked, opts.BlockTags)

	remaining = Neutralize(remaining)

	segments = Wrap(segments, remaining)

	generated, mapping := sourcemap.Build(segments)

	desc, err := opts.Parser.Parse(generated)
	if err != nil {
		return nil, errors.Errorf("parsing masked document: %w", err)
	}

	sfc.Relocate(desc, mapping)

	zerolog.Ctx(ctx).Trace().
		Int("length", len(content)).
		Int("segments", len(segments)).
		Int("blocks", len(desc.Blocks())).
		Int("parse_errors", len(desc.Errors)).
		Msg("parsed markdown document")

	return &Result{
		Generated:  generated,
		Segments:   segments,
		Mapping:    mapping,
		Descriptor: desc,
	}, nil
}
