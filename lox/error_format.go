package lox

import (
	"fmt"
	"strconv"
	"strings"
)

// formatCodeFrame renders the source line containing pos with a caret
// marker under the first span runes starting at pos.Column.
func formatCodeFrame(source string, pos Position, span int) string {
	if source == "" || pos.Line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	lineText := strings.TrimRight(lines[pos.Line-1], "\r")
	lineRunes := []rune(lineText)

	column := pos.Column
	if column <= 0 {
		column = 1
	}
	if column > len(lineRunes)+1 {
		column = len(lineRunes) + 1
	}
	if span < 1 {
		span = 1
	}
	// A multi-line lexeme (string literal) is only underlined on its first line.
	if limit := len(lineRunes) - column + 1; span > limit {
		span = max(limit, 1)
	}

	lineLabel := strconv.Itoa(pos.Line)
	gutterPad := strings.Repeat(" ", len(lineLabel))
	caretPad := strings.Repeat(" ", column-1)

	return fmt.Sprintf(
		"  --> line %d, column %d\n %s | %s\n %s | %s%s",
		pos.Line,
		column,
		lineLabel,
		lineText,
		gutterPad,
		caretPad,
		strings.Repeat("^", span),
	)
}
