package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidPage   = errors.New("invalid page")
	ErrInvalidTaskID = errors.New("invalid task id")
)
