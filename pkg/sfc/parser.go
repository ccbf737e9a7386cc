package sfc

import (
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// rawTextTags hold content that is never scanned for nested elements.
var rawTextTags = map[string]bool{
	"script": true,
	"style":  true,
}

// DefaultParser scans the top level of a document for blocks. Text and
// comments between blocks are ignored.
type DefaultParser struct{}

var _ Parser = (*DefaultParser)(nil)

func NewDefaultParser() *DefaultParser {
	return &DefaultParser{}
}

func (p *DefaultParser) Parse(source string) (*Descriptor, error) {
	d := &Descriptor{}

	i := 0
	for i < len(source) {
		lt := strings.IndexByte(source[i:], '<')
		if lt < 0 {
			break
		}
		i += lt

		if strings.HasPrefix(source[i:], "<!--") {
			end := strings.Index(source[i+4:], "-->")
			if end < 0 {
				break
			}
			i += 4 + end + 3
			continue
		}

		name := scanTagName(source, i+1)
		if name == "" {
			i++
			continue
		}

		attrs, startTagEnd, selfClosing := scanAttrs(source, i+1+len(name))
		if startTagEnd < 0 {
			d.Errors = append(d.Errors, errors.Errorf("unterminated start tag <%s> at offset %d", name, i))
			break
		}
		if selfClosing {
			i = startTagEnd
			continue
		}

		endTagStart, end := findClose(source, name, startTagEnd)
		if endTagStart < 0 {
			d.Errors = append(d.Errors, errors.Errorf("element <%s> at offset %d is missing its end tag", name, i))
			i = startTagEnd
			continue
		}

		block := &Block{
			Type:        name,
			Attrs:       attrs,
			Lang:        attrs["lang"],
			Content:     source[startTagEnd:endTagStart],
			Start:       i,
			End:         end,
			StartTagEnd: startTagEnd,
			EndTagStart: endTagStart,
		}
		d.add(block)

		i = end
	}

	return d, nil
}

func (d *Descriptor) add(b *Block) {
	switch b.Type {
	case "template":
		if d.Template != nil {
			d.Errors = append(d.Errors, errors.Errorf("duplicate <template> at offset %d", b.Start))
			return
		}
		d.Template = b
	case "script":
		target := &d.Script
		if b.Has("setup") {
			target = &d.ScriptSetup
		}
		if *target != nil {
			d.Errors = append(d.Errors, errors.Errorf("duplicate <script> at offset %d", b.Start))
			return
		}
		*target = b
	case "style":
		d.Styles = append(d.Styles, b)
	default:
		d.CustomBlocks = append(d.CustomBlocks, b)
	}
}

func isNameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == ':' || c == '.'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func scanTagName(s string, i int) string {
	if i >= len(s) || !isNameStart(s[i]) {
		return ""
	}
	j := i + 1
	for j < len(s) && isNameChar(s[j]) {
		j++
	}
	return s[i:j]
}

// scanAttrs reads attributes up to and including the closing '>' of a start
// tag and returns the offset just past it, or -1 if the tag never closes.
func scanAttrs(s string, i int) (map[string]string, int, bool) {
	attrs := map[string]string{}
	for i < len(s) {
		c := s[i]
		switch {
		case isSpace(c):
			i++
		case c == '>':
			return attrs, i + 1, false
		case c == '/' && i+1 < len(s) && s[i+1] == '>':
			return attrs, i + 2, true
		case c == '/':
			i++
		default:
			start := i
			for i < len(s) && !isSpace(s[i]) && s[i] != '=' && s[i] != '>' && s[i] != '/' {
				i++
			}
			name := s[start:i]
			if i < len(s) && s[i] == '=' {
				i++
				var value string
				value, i = scanAttrValue(s, i)
				attrs[name] = value
			} else {
				attrs[name] = ""
			}
		}
	}
	return attrs, -1, false
}

func scanAttrValue(s string, i int) (string, int) {
	if i >= len(s) {
		return "", i
	}
	if q := s[i]; q == '"' || q == '\'' {
		end := strings.IndexByte(s[i+1:], q)
		if end < 0 {
			return s[i+1:], len(s)
		}
		return s[i+1 : i+1+end], i + 1 + end + 1
	}
	start := i
	for i < len(s) && !isSpace(s[i]) && s[i] != '>' {
		i++
	}
	return s[start:i], i
}

// findClose locates the end tag matching an element named name whose content
// starts at from. Elements other than raw text ones may nest.
func findClose(s, name string, from int) (endTagStart, end int) {
	closing := "</" + name
	depth := 0
	i := from
	for i < len(s) {
		lt := strings.IndexByte(s[i:], '<')
		if lt < 0 {
			return -1, -1
		}
		i += lt

		switch {
		case strings.HasPrefix(s[i:], closing) && !followedByName(s, i+len(closing)):
			gt := strings.IndexByte(s[i:], '>')
			if gt < 0 {
				return -1, -1
			}
			if depth == 0 {
				return i, i + gt + 1
			}
			depth--
			i += gt + 1
		case !rawTextTags[name] && strings.HasPrefix(s[i+1:], name) && !followedByName(s, i+1+len(name)):
			_, tagEnd, selfClosing := scanAttrs(s, i+1+len(name))
			if tagEnd < 0 {
				return -1, -1
			}
			if !selfClosing {
				depth++
			}
			i = tagEnd
		default:
			i++
		}
	}
	return -1, -1
}

func followedByName(s string, i int) bool {
	return i < len(s) && isNameChar(s[i])
}

func sortBlocks(blocks []*Block) {
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Start < blocks[j].Start
	})
}
