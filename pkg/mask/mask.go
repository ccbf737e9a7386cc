// Package mask turns a markdown document into text a structural block parser
// can consume without shifting any offset of the original document.
//
// Fenced and inline code, escaped tag markers, autolinks and links are
// replaced by same-length whitespace; recognized blocks are lifted out into
// their own segments and the remaining prose is wrapped in a synthetic
// template block.
package mask

import (
	"regexp"
	"strings"
)

var (
	codeBlockRegex    = regexp.MustCompile("```[\\s\\S]+?```")
	inlineCodeRegex   = regexp.MustCompile("`[^\\n`]+?`")
	escapedTagRegex   = regexp.MustCompile(`\\<[\s\S]+?>\n?`)
	angleBracketRegex = regexp.MustCompile(`<\S*:\S*>`)
	linkRegex         = regexp.MustCompile(`\[[\s\S]*?\]\([\s\S]*?\)`)
)

// Mask blanks fenced code blocks, inline code spans and escaped tag markers
// (`\<script setup>`), keeping delimiters of code so the layout survives.
func Mask(content string) string {
	content = codeBlockRegex.ReplaceAllStringFunc(content, func(m string) string {
		return "```" + blank(len(m)-6) + "```"
	})
	content = inlineCodeRegex.ReplaceAllStringFunc(content, func(m string) string {
		return "`" + blank(len(m)-2) + "`"
	})
	return escapedTagRegex.ReplaceAllStringFunc(content, func(m string) string {
		return blank(len(m))
	})
}

// Neutralize blanks autolinks (`<https://example.com>`) and links
// (`[text](url)`), which would otherwise read as tags.
func Neutralize(content string) string {
	content = angleBracketRegex.ReplaceAllStringFunc(content, func(m string) string {
		return blank(len(m))
	})
	return linkRegex.ReplaceAllStringFunc(content, func(m string) string {
		return blank(len(m))
	})
}

func blank(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}
