package extupdateerr

import (
	"fmt"
)

// ExpectedErr represents a class of expected errors that extupdate may produce. Each carries the
// process exit code the CLI should terminate with.
type ExpectedErr struct {
	Err      error
	ExitCode int
}

// NewExpectedErr generates a new ExpectedErr.
func NewExpectedErr(exitCode int, msgFormat string, args ...interface{}) ExpectedErr {
	return ExpectedErr{
		Err:      fmt.Errorf(msgFormat, args...),
		ExitCode: exitCode,
	}
}

// Error returns a string representing the underlying error condition.
func (e ExpectedErr) Error() string {
	return e.Err.Error()
}

func (e ExpectedErr) Unwrap() error {
	return e.Err
}
