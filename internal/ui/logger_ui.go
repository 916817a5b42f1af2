package ui

import (
	"io"

	"github.com/wagoodman/go-partybus"

	"github.com/lanterndata/extupdate/extupdate/event"
	"github.com/lanterndata/extupdate/extupdate/event/parsers"
	"github.com/lanterndata/extupdate/extupdate/presenter/table"
	"github.com/lanterndata/extupdate/internal/log"
)

type loggerUI struct {
	unsubscribe  func() error
	reportOutput io.Writer
}

// NewLoggerUI writes all events to the common application logger and writes the final report to the given writer.
func NewLoggerUI(reportWriter io.Writer) UI {
	return &loggerUI{
		reportOutput: reportWriter,
	}
}

func (l *loggerUI) Setup(unsubscribe func() error) error {
	l.unsubscribe = unsubscribe
	return nil
}

func (l loggerUI) Handle(e partybus.Event) error {
	switch e.Type {
	case event.TrialsScheduled:
		schedule, err := parsers.ParseTrialsScheduled(e)
		if err != nil {
			log.Warnf("unable to show %s event: %+v", e.Type, err)
			return nil
		}
		log.Infof("%d upgrade trials scheduled (%d releases skipped)", len(schedule.Trials), len(schedule.Skipped))
	case event.TrialStarted:
		mon, err := parsers.ParseTrialStarted(e)
		if err != nil {
			log.Warnf("unable to show %s event: %+v", e.Type, err)
			return nil
		}
		log.Infof("starting upgrade trial %s", mon.Pair)
	case event.TrialFinished:
		result, err := parsers.ParseTrialFinished(e)
		if err != nil {
			log.Warnf("unable to show %s event: %+v", e.Type, err)
			return nil
		}
		if result.Succeeded() {
			log.Infof("upgrade trial %s passed in %s", result.Pair, table.FormatDuration(result.Duration))
		} else {
			log.Errorf("upgrade trial %s failed in %s: %+v", result.Pair, table.FormatDuration(result.Duration), result.Err)
			if out := failedOutput(result.Err); out != "" {
				log.Debugf("output of the failed command:\n%s", out)
			}
		}
	case event.Notification:
		message, err := parsers.ParseNotification(e)
		if err != nil {
			log.Warnf("unable to show %s event: %+v", e.Type, err)
			return nil
		}
		log.Warn(message)
	case event.RunFinished:
		if err := handleRunFinished(e, l.reportOutput); err != nil {
			log.Warnf("unable to show run finished event: %+v", err)
		}
		// this is the last expected event, stop listening to events
		return l.unsubscribe()
	}
	return nil
}

func (l loggerUI) Teardown(_ bool) error {
	return nil
}
