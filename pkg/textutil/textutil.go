// Package textutil formats help text.
package textutil

import (
	"strings"
	"unicode/utf8"
)

// Wrap splits text into lines of at most width runes, breaking on whitespace. Words longer than
// width get a line of their own. A width of zero or less disables wrapping.
func Wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if width <= 0 {
		return []string{strings.Join(words, " ")}
	}
	var (
		lines         []string
		currentLine   []string
		currentLength int
	)
	for _, word := range words {
		n := utf8.RuneCountInString(word)
		if len(currentLine) > 0 && currentLength+n+1 > width {
			lines = append(lines, strings.Join(currentLine, " "))
			currentLine, currentLength = nil, 0
		}
		if len(currentLine) == 0 {
			currentLine = []string{word}
			currentLength = n
			continue
		}
		currentLine = append(currentLine, word)
		currentLength += n + 1
	}
	return append(lines, strings.Join(currentLine, " "))
}

// Indent prefixes every non-empty line of text with n spaces.
func Indent(text string, n int) string {
	pad := strings.Repeat(" ", max(n, 0))
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}
