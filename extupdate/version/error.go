package version

import (
	"errors"
	"fmt"
)

// ParseError is returned when a version token has a segment that is not a non-negative integer.
type ParseError struct {
	Token   string
	Index   int
	Segment string
}

func newParseError(token string, index int, segment string) *ParseError {
	return &ParseError{
		Token:   token,
		Index:   index,
		Segment: segment,
	}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid version %q: segment %d (%q) is not a non-negative integer", e.Token, e.Index, e.Segment)
}

func (e *ParseError) Is(target error) bool {
	var t *ParseError
	if !errors.As(target, &t) {
		return false
	}
	return t.Token == "" || t.Token == e.Token
}
