package rag

import "errors"

// Failure classes surfaced by the turn pipeline. Stage errors wrap one of
// these so callers can classify with errors.Is.
var (
	ErrRetrieval       = errors.New("retrieval failed")
	ErrModelInvocation = errors.New("model invocation failed")
	ErrHistory         = errors.New("history store failed")
	ErrEmptyQuestion   = errors.New("question must not be empty")
)
