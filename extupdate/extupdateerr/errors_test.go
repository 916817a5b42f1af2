package extupdateerr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "no error", err: nil, want: 0},
		{name: "unexpected error", err: fmt.Errorf("boom"), want: ExitCodeFailure},
		{name: "failed trials", err: ErrTrialsFailed, want: ExitCodeFailure},
		{name: "interrupted", err: ErrInterrupted, want: ExitCodeInterrupted},
		{name: "wrapped inconsistency", err: fmt.Errorf("validating: %w", ErrInconsistentReleases), want: ExitCodeInconsistency},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, ExitCode(test.err))
		})
	}
}
