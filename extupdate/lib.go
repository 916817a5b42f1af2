package extupdate

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/wagoodman/go-partybus"

	"github.com/lanterndata/extupdate/extupdate/compat"
	"github.com/lanterndata/extupdate/extupdate/logger"
	"github.com/lanterndata/extupdate/extupdate/pairs"
	"github.com/lanterndata/extupdate/internal/bus"
	"github.com/lanterndata/extupdate/internal/log"
)

// ScheduleTrials discovers the migration scripts in scriptsDir, validates them against the repository tags
// and orders the trials that can run on the given platform version.
func ScheduleTrials(fs afero.Fs, scriptsDir string, tags []string, matrix *compat.Matrix, platformVersion string) (pairs.Schedule, error) {
	discovered, err := pairs.Discover(fs, scriptsDir)
	if err != nil {
		return pairs.Schedule{}, err
	}
	log.Debugf("discovered %d migration scripts in %q", len(discovered), scriptsDir)

	plan, err := pairs.NewPlan(discovered, tags)
	if err != nil {
		return pairs.Schedule{}, fmt.Errorf("migration scripts in %q do not match the repository tags: %w", scriptsDir, err)
	}
	if plan.Empty() {
		log.Warnf("no migration scripts found in %q", scriptsDir)
		return pairs.Schedule{}, nil
	}

	return plan.Schedule(matrix, platformVersion), nil
}

func SetLogger(logger logger.Logger) {
	log.Log = logger
}

func SetBus(b *partybus.Bus) {
	bus.SetPublisher(b)
}
