package errors

import (
	"fmt"
	"strings"

	"mercator-hq/rulescript/pkg/rsl/ast"
)

// ExtractContext extracts the lines surrounding location from the script source
// for error display. It returns a formatted string with line numbers and a
// caret under the error column.
func ExtractContext(source string, location ast.Location, contextLines int) string {
	if !location.IsValid() || source == "" {
		return ""
	}

	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")

	errorLine := location.Line - 1 // Convert to 0-based index
	if errorLine >= len(lines) {
		return ""
	}

	startLine := errorLine - contextLines
	endLine := errorLine + contextLines

	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}

	var sb strings.Builder
	maxLineNumWidth := len(fmt.Sprintf("%d", endLine+1))

	for i := startLine; i <= endLine; i++ {
		lineNumStr := fmt.Sprintf("%*d", maxLineNumWidth, i+1)
		prefix := "  "
		if i == errorLine {
			prefix = "->"
		}

		sb.WriteString(fmt.Sprintf("%s %s | %s\n", prefix, lineNumStr, lines[i]))

		if i == errorLine && location.Column > 0 {
			padding := strings.Repeat(" ", location.Column-1)
			sb.WriteString(fmt.Sprintf("   %s | %s^\n", strings.Repeat(" ", maxLineNumWidth), padding))
		}
	}

	return sb.String()
}

// WithContext fills err.Context from the script source.
func WithContext(err *Error, source string, contextLines int) *Error {
	if err.Location.IsValid() {
		err.Context = ExtractContext(source, err.Location, contextLines)
	}
	return err
}

// AddContext fills the context of every error in the list, showing
// two lines before and after by default.
func AddContext(el *ErrorList, source string) {
	for i, e := range el.Errors {
		el.Errors[i] = WithContext(e, source, 2)
	}
}
