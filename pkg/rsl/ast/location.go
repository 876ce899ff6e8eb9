package ast

import "fmt"

// Location represents a position in a script's source text.
// It enables precise diagnostics with line and column information.
type Location struct {
	Source string // Script name used in diagnostics (e.g. "org/acme")
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
	Offset int    // Byte offset (0-based)
}

// String returns a human-readable representation of the location.
// Format: "source:line:column", or "line:column" when the source is unnamed.
func (l Location) String() string {
	if l.Source == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.Source, l.Line, l.Column)
}

// IsValid returns true if the location points at a real line.
func (l Location) IsValid() bool {
	return l.Line > 0
}

// Span is a half-open source range.
type Span struct {
	Start Location
	End   Location
}

// String returns "start-end" using line:column pairs.
func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}
