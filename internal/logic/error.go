package logic

import "fmt"

// ParseError is returned by Parse when the token stream does not match the
// grammar. Position is the zero-based byte offset of the offending token.
type ParseError struct {
	Position int
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("position %d: %s", e.Position, e.Message)
}

func errUnexpected(got Token, expected string) *ParseError {
	return &ParseError{
		Position: got.Position,
		Message:  fmt.Sprintf("expected %s but found %s", expected, got.String()),
	}
}
