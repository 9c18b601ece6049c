package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidDueDate  = errors.New("invalid due date")
	ErrInvalidTitle    = errors.New("invalid title")
)

// ParseErrorKind identifies which annotation failed to parse.
type ParseErrorKind int

const (
	InvalidPriority ParseErrorKind = iota + 1
	InvalidDueDate
)

// ParseError reports an annotation whose text matched but whose value is unusable.
type ParseError struct {
	Kind  ParseErrorKind
	Value string
}

// Error implements error.
func (e *ParseError) Error() string {
	switch e.Kind {
	case InvalidPriority:
		return fmt.Sprintf("invalid priority: %s (expected %d-%d)", e.Value, MinPriority, MaxPriority)
	case InvalidDueDate:
		return fmt.Sprintf("invalid due date: %s (expected YYYY-MM-DD)", e.Value)
	default:
		return "invalid input: " + e.Value
	}
}

// Unwrap maps the parse error onto the matching sentinel.
func (e *ParseError) Unwrap() error {
	switch e.Kind {
	case InvalidPriority:
		return ErrInvalidPriority
	case InvalidDueDate:
		return ErrInvalidDueDate
	default:
		return nil
	}
}
