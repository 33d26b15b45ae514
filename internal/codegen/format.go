package codegen

import (
	"strings"
	"unicode"
)

const indentUnit = "  "

// Format re-indents generated code by line shape alone. A line that starts
// or ends with "}" is dedented before it is written; a line ending in "{"
// or "=>" indents the lines after it. Each line keeps its own leading
// whitespace under the computed indent, and blank lines become empty.
//
// Braces or arrows inside string literals and comments are not recognized
// and can skew the result.
func Format(code string) string {
	lines := strings.Split(code, "\n")
	out := make([]string, len(lines))

	level := 0
	for i, line := range lines {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "}") || strings.HasSuffix(trimmed, "}") {
			level = max(0, level-1)
		}

		if trimmed != "" {
			out[i] = strings.Repeat(indentUnit, level) + line
		}

		if strings.HasSuffix(trimmed, "{") || strings.HasSuffix(trimmed, "=>") {
			level++
		}
	}
	return strings.Join(out, "\n")
}
