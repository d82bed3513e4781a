// Package position tracks source positions for the Sable compiler. SIR
// instructions carry spans so that verification failures can point back at
// the originating source.
package position

import (
	"fmt"
	"path/filepath"
)

// Position is a single point in a source file. Line and column are 1-based.
type Position struct {
	Filename string
	Line     int
	Column   int
}

// IsValid reports whether the position names a real source point.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0
}

// String renders the position as file:line:column, omitting the file when it
// is unknown.
func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", filepath.Base(p.Filename), p.Line, p.Column)
}

// Span is a source range within one file, inclusive of both endpoints.
type Span struct {
	Start Position
	End   Position
}

// IsValid reports whether the span is a well-ordered range in one file.
func (s Span) IsValid() bool {
	if !s.Start.IsValid() || !s.End.IsValid() || s.Start.Filename != s.End.Filename {
		return false
	}
	if s.Start.Line != s.End.Line {
		return s.Start.Line < s.End.Line
	}
	return s.Start.Column <= s.End.Column
}

// String renders the span compactly, collapsing the end line when it matches
// the start line.
func (s Span) String() string {
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%s-%d", s.Start, s.End.Column)
	}
	return fmt.Sprintf("%s-%d:%d", s.Start, s.End.Line, s.End.Column)
}
