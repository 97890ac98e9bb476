package testutil

import "strings"

// Unindent removes common leading whitespace from a multi-line string,
// allowing for readable, indented RPL and HCL snippets in Go tests. A
// trailing newline is kept.
func Unindent(s string) string {
	lines := strings.Split(s, "\n")
	if strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}

	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}

	var b strings.Builder
	for _, line := range lines {
		if len(line) >= minIndent && minIndent > 0 {
			line = line[minIndent:]
		} else if minIndent > 0 {
			line = strings.TrimSpace(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
