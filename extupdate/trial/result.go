package trial

import (
	"time"

	"github.com/lanterndata/extupdate/extupdate/pairs"
	"github.com/lanterndata/extupdate/extupdate/version"
)

// Result is the outcome of one upgrade trial.
type Result struct {
	Pair     pairs.Pair
	Err      error
	Note     string
	Started  time.Time
	Duration time.Duration
}

func (r Result) Succeeded() bool {
	return r.Err == nil
}

// Report collects the results of a run in execution order.
type Report struct {
	PlatformVersion string
	Results         []Result
	Skipped         []version.Version
}

func (r Report) Failed() int {
	var n int
	for _, res := range r.Results {
		if !res.Succeeded() {
			n++
		}
	}
	return n
}
