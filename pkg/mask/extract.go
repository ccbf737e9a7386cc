package mask

import (
	"strings"

	"github.com/walteh/sfcmap/pkg/sourcemap"
)

// DefaultBlockTags are the block elements lifted out of markdown prose.
var DefaultBlockTags = []string{"script", "style"}

// blockSeparator is emitted after every extracted block so the structural
// parser sees blocks as separate top-level elements.
const blockSeparator = "\n\n"

// Extract finds `<tag ...>...</tag>` regions for the given tags, scanning
// leftmost-first without overlap. Each region is emitted as a segment copied
// from its offset followed by a synthesized separator, and is blanked in the
// returned content.
func Extract(content string, tags []string) ([]sourcemap.Segment, string) {
	b := sourcemap.NewBuilder()
	buf := []byte(content)

	i := 0
	for i < len(content) {
		lt := strings.IndexByte(content[i:], '<')
		if lt < 0 {
			break
		}
		i += lt

		end := matchBlock(content, i, tags)
		if end < 0 {
			i++
			continue
		}

		b.Copy(content[i:end], i)
		b.Literal(blockSeparator)
		for j := i; j < end; j++ {
			buf[j] = ' '
		}
		i = end
	}

	return b.Segments(), string(buf)
}

// matchBlock tries every tag in order at offset i, which holds a '<', and
// returns the end of the first complete block or -1.
func matchBlock(content string, i int, tags []string) int {
	for _, tag := range tags {
		nameEnd := i + 1 + len(tag)
		if !strings.HasPrefix(content[i+1:], tag) || isWordChar(content, nameEnd) {
			continue
		}
		gt := strings.IndexByte(content[nameEnd:], '>')
		if gt < 0 {
			continue
		}
		closing := "</" + tag + ">"
		bodyStart := nameEnd + gt + 1
		closeAt := strings.Index(content[bodyStart:], closing)
		if closeAt < 0 {
			continue
		}
		return bodyStart + closeAt + len(closing)
	}
	return -1
}

func isWordChar(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	c := s[i]
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Wrap appends the remaining prose to segments inside a synthetic template
// block anchored at offset 0.
func Wrap(segments []sourcemap.Segment, content string) []sourcemap.Segment {
	return sourcemap.NewBuilder().
		Append(segments...).
		Literal("<template>\n").
		Copy(content, 0).
		Literal("\n</template>").
		Segments()
}
