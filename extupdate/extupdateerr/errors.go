package extupdateerr

import "errors"

const (
	ExitCodeFailure       = 1
	ExitCodeInconsistency = 2
	ExitCodeInterrupted   = 130
)

var (
	// ErrTrialsFailed indicates that at least one upgrade trial failed while --fail-on-trial-error was set.
	ErrTrialsFailed = NewExpectedErr(ExitCodeFailure, "one or more upgrade trials failed")

	// ErrInconsistentReleases indicates that the migration scripts and the repository tags disagree, so no
	// trial can be trusted to run.
	ErrInconsistentReleases = NewExpectedErr(ExitCodeInconsistency, "release history is inconsistent")

	// ErrInterrupted indicates the run was stopped by SIGINT or SIGTERM.
	ErrInterrupted = NewExpectedErr(ExitCodeInterrupted, "interrupted")
)

// ExitCode returns the exit code for the given error: 0 for nil, the carried code for expected errors
// (anywhere in the chain) and ExitCodeFailure for anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var expected ExpectedErr
	if errors.As(err, &expected) {
		return expected.ExitCode
	}
	return ExitCodeFailure
}
