package monitor

import (
	"github.com/wagoodman/go-progress"

	"github.com/lanterndata/extupdate/extupdate/pairs"
)

// Trial is published when an upgrade trial starts; the stage names the step currently running.
type Trial struct {
	Pair     pairs.Pair
	Stage    progress.Stager
	Progress progress.Progressable
}
