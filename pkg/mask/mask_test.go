package mask_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/sfcmap/pkg/mask"
	"github.com/walteh/sfcmap/pkg/sfc"
	"github.com/walteh/sfcmap/pkg/sourcemap"
)

var documents = []string{
	"",
	"plain prose only",
	"a ```js\n<script>x</script>\n``` b",
	"use `<style>` here and `é` there",
	"\\<script setup>\nnext line",
	"see <https://vuejs.org> and [docs](https://x.y)",
	"```unterminated fence <script>a</script>",
	"# Título\n\n<script setup lang=\"ts\">\nconst a = `x`\n</script>\n\n<style>p{}</style>\n",
}

func TestPasses_PreserveLength(t *testing.T) {
	for _, doc := range documents {
		masked := mask.Mask(doc)
		assert.Len(t, masked, len(doc), "Mask(%q)", doc)

		_, remaining := mask.Extract(masked, mask.DefaultBlockTags)
		assert.Len(t, remaining, len(doc), "Extract(%q)", doc)

		assert.Len(t, mask.Neutralize(remaining), len(doc), "Neutralize(%q)", doc)
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "fenced code keeps its delimiters",
			in:   "a ```js\n<script>x</script>\n``` b",
			want: "a ```" + strings.Repeat(" ", 22) + "``` b",
		},
		{
			name: "inline code",
			in:   "use `<style>` here",
			want: "use `       ` here",
		},
		{
			name: "inline code does not cross lines",
			in:   "a `b\nc` d",
			want: "a `b\nc` d",
		},
		{
			name: "escaped tag marker and its newline",
			in:   "\\<script setup>\nnext",
			want: strings.Repeat(" ", 16) + "next",
		},
		{
			name: "unterminated fence is prose",
			in:   "```js <b>",
			want: "```js <b>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mask.Mask(tt.in))
		})
	}
}

func TestNeutralize(t *testing.T) {
	in := "see <https://vuejs.org> and [docs](https://x.y)!"
	want := "see " + strings.Repeat(" ", 19) + " and " + strings.Repeat(" ", 19) + "!"
	assert.Equal(t, want, mask.Neutralize(in))

	assert.Equal(t, "a <div> b", mask.Neutralize("a <div> b"), "tags without a colon are kept")
}

func TestExtract(t *testing.T) {
	content := "a<script>1</script>b<style>2</style><scripts>3</scripts>"

	segs, remaining := mask.Extract(content, mask.DefaultBlockTags)

	assert.Equal(t, []sourcemap.Segment{
		sourcemap.Copied{Text: "<script>1</script>", SourceOffset: 1},
		sourcemap.Literal{Text: "\n\n"},
		sourcemap.Copied{Text: "<style>2</style>", SourceOffset: 20},
		sourcemap.Literal{Text: "\n\n"},
	}, segs)

	assert.Equal(t, "a"+strings.Repeat(" ", 18)+"b"+strings.Repeat(" ", 16)+"<scripts>3</scripts>", remaining)
}

func TestExtract_FirstMatchWins(t *testing.T) {
	content := "<style><script>a</script></style><script>b"

	segs, remaining := mask.Extract(content, mask.DefaultBlockTags)

	require.Len(t, segs, 2)
	assert.Equal(t, sourcemap.Copied{Text: "<style><script>a</script></style>", SourceOffset: 0}, segs[0])
	assert.Equal(t, strings.Repeat(" ", 33)+"<script>b", remaining, "unterminated blocks stay as prose")
}

func TestParseMarkdown_NeutralProse(t *testing.T) {
	content := "# Hello\n\nJust prose here.\n"

	res, err := mask.ParseMarkdown(context.Background(), content, mask.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "<template>\n"+content+"\n</template>", res.Generated)
	require.NotNil(t, res.Descriptor.Template)
	assert.Equal(t, "\n"+content+"\n", res.Descriptor.Template.Content)
	assert.Equal(t, sfc.Unmappable, res.Descriptor.Template.Start)

	for i := 0; i <= len(content); i++ {
		got, ok := res.Mapping.ToSourceOffset(len("<template>\n") + i)
		require.True(t, ok)
		assert.Equal(t, i, got)
	}
}

func TestParseMarkdown_FencedBlockIsNotExtracted(t *testing.T) {
	content := "Example:\n\n```vue\n<script>x</script>\n```\n\n" +
		"<script setup>\nconst a = 1\n</script>\n\n" +
		"Text [link](http://a.b) <https://c.d>\n"

	res, err := mask.ParseMarkdown(context.Background(), content, mask.DefaultOptions())
	require.NoError(t, err)

	d := res.Descriptor
	assert.Empty(t, d.Errors)
	assert.Nil(t, d.Script, "the fenced example must not become a block")
	require.NotNil(t, d.ScriptSetup)

	start := strings.Index(content, "<script setup>")
	assert.Equal(t, start, d.ScriptSetup.Start)
	assert.Equal(t, start+len("<script setup>"), d.ScriptSetup.StartTagEnd)
	assert.Equal(t, strings.Index(content, "</script>\n\nText"), d.ScriptSetup.EndTagStart)
	assert.Equal(t, d.ScriptSetup.EndTagStart+len("</script>"), d.ScriptSetup.End)
	assert.Equal(t, "\nconst a = 1\n", d.ScriptSetup.Content)

	require.NotNil(t, d.Template)
	assert.NotContains(t, d.Template.Content, "link")
	assert.NotContains(t, d.Template.Content, "https")
	assert.NotContains(t, d.Template.Content, "<script")
	assert.True(t, strings.HasPrefix(res.Generated, "<script setup>\nconst a = 1\n</script>\n\n<template>\n"))
}

func TestParseMarkdown_TemplateTag(t *testing.T) {
	content := "```\n<template>x</template>\n```\n<template><p>{{ msg }}</p></template>\n"

	opts := mask.DefaultOptions()
	opts.BlockTags = []string{"script", "style", "template"}

	res, err := mask.ParseMarkdown(context.Background(), content, opts)
	require.NoError(t, err)

	d := res.Descriptor
	require.NotNil(t, d.Template)
	assert.Equal(t, strings.LastIndex(content, "<template>"), d.Template.Start)
	assert.Equal(t, "<p>{{ msg }}</p>", d.Template.Content)
	assert.Len(t, d.Errors, 1, "the synthetic wrapper is reported as a duplicate")
}

func TestParseMarkdown_TemplateInProseByDefault(t *testing.T) {
	content := "```\n<template>x</template>\n```\n<template><p>{{ msg }}</p></template>\n"

	res, err := mask.ParseMarkdown(context.Background(), content, mask.DefaultOptions())
	require.NoError(t, err)

	d := res.Descriptor
	require.NotNil(t, d.Template)
	assert.Len(t, d.Blocks(), 1, "the real template stays nested in the synthetic one")
	assert.Empty(t, d.Errors)
	assert.Equal(t, sfc.Unmappable, d.Template.Start)
	assert.Contains(t, d.Template.Content, "<template><p>{{ msg }}</p></template>")
	assert.NotContains(t, d.Template.Content, "<template>x</template>", "the fenced copy is blanked")

	inner := strings.Index(res.Generated, "<template><p>")
	require.GreaterOrEqual(t, inner, 0)
	got, ok := res.Mapping.ToSourceOffset(inner)
	require.True(t, ok)
	assert.Equal(t, strings.LastIndex(content, "<template>"), got)
}

func TestHandles(t *testing.T) {
	assert.True(t, mask.Handles("docs/README.md"))
	assert.True(t, mask.Handles("NOTES.MD"))
	assert.False(t, mask.Handles("App.vue"))
}
