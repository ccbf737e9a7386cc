// Package diff renders how generated text differs from the document it was
// built from.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Lines diffs want against got line by line. Removed lines are prefixed with
// ➖ and added lines with ➕. The result is empty when both are equal.
func Lines(want, got string) string {
	if want == got {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(want, got)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "➖"
		case diffmatchpatch.DiffInsert:
			prefix = "➕"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}
