package ast

import "fmt"

// Location is a 1-based source range. Column 0 means "whole line".
type Location struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

// Line builds a location covering a whole source line.
func Line(line int) Location {
	return Location{StartLine: line, EndLine: line}
}

func (l Location) IsZero() bool {
	return l.StartLine == 0 && l.StartColumn == 0 && l.EndLine == 0 && l.EndColumn == 0
}

func (l Location) String() string {
	if l.StartColumn == 0 {
		return fmt.Sprintf("%d", l.StartLine)
	}
	return fmt.Sprintf("%d:%d", l.StartLine, l.StartColumn)
}

// Contains reports whether other starts inside l.
func (l Location) Contains(other Location) bool {
	if l.IsZero() || other.IsZero() {
		return false
	}
	endLine := l.EndLine
	if endLine < l.StartLine {
		endLine = l.StartLine
	}
	if other.StartLine < l.StartLine || other.StartLine > endLine {
		return false
	}
	if l.StartColumn > 0 && other.StartLine == l.StartLine && other.StartColumn < l.StartColumn {
		return false
	}
	if l.EndColumn > 0 && other.StartLine == endLine && other.StartColumn > l.EndColumn {
		return false
	}
	return true
}
