package ui

import (
	"fmt"
	"io"

	"github.com/gookit/color"
	"github.com/wagoodman/go-partybus"

	"github.com/lanterndata/extupdate/extupdate/event"
	"github.com/lanterndata/extupdate/extupdate/event/monitor"
	"github.com/lanterndata/extupdate/extupdate/event/parsers"
	"github.com/lanterndata/extupdate/extupdate/presenter/table"
	"github.com/lanterndata/extupdate/internal/log"
	"github.com/lanterndata/extupdate/internal/stringutil"
)

const (
	startedMark = "•"
	passedMark  = "✔"
	failedMark  = "✘"
)

// terminalUI writes one status line per trial event to the terminal (stderr) and the final report to the
// report writer. Output of the external tools is expected to be captured, not streamed, while it is active.
type terminalUI struct {
	unsubscribe  func() error
	uiOutput     io.Writer
	reportOutput io.Writer
	running      map[string]monitor.Trial
}

// NewTerminalUI shows the progress of the run on uiOutput and writes the final report to the given writer.
func NewTerminalUI(uiOutput, reportWriter io.Writer) UI {
	return &terminalUI{
		uiOutput:     uiOutput,
		reportOutput: reportWriter,
		running:      make(map[string]monitor.Trial),
	}
}

func (h *terminalUI) Setup(unsubscribe func() error) error {
	h.unsubscribe = unsubscribe
	return nil
}

func (h *terminalUI) Handle(e partybus.Event) error {
	var err error
	switch e.Type {
	case event.TrialsScheduled:
		err = h.handleTrialsScheduled(e)
	case event.TrialStarted:
		err = h.handleTrialStarted(e)
	case event.TrialFinished:
		err = h.handleTrialFinished(e)
	case event.Notification:
		err = h.handleNotification(e)
	case event.RunFinished:
		if err := handleRunFinished(e, h.reportOutput); err != nil {
			log.Errorf("unable to show %s event: %+v", e.Type, err)
		}
		// this is the last expected event, stop listening to events
		return h.unsubscribe()
	}
	if err != nil {
		log.Errorf("unable to show %s event: %+v", e.Type, err)
	}
	return nil
}

func (h *terminalUI) handleTrialsScheduled(e partybus.Event) error {
	schedule, err := parsers.ParseTrialsScheduled(e)
	if err != nil {
		return err
	}
	for _, v := range schedule.Skipped {
		h.printf("%s %s\n", color.Gray.Sprint("-"), color.Gray.Sprintf("skipping %s (incompatible platform version)", v))
	}
	h.printf("%s\n", color.Bold.Sprintf("running %d upgrade trials", len(schedule.Trials)))
	return nil
}

func (h *terminalUI) handleTrialStarted(e partybus.Event) error {
	mon, err := parsers.ParseTrialStarted(e)
	if err != nil {
		return err
	}
	h.running[mon.Pair.String()] = *mon
	h.printf("%s upgrading %s\n", color.Cyan.Sprint(startedMark), mon.Pair)
	return nil
}

func (h *terminalUI) handleTrialFinished(e partybus.Event) error {
	result, err := parsers.ParseTrialFinished(e)
	if err != nil {
		return err
	}
	key := result.Pair.String()
	mon, started := h.running[key]
	delete(h.running, key)

	took := color.Gray.Sprintf("(%s)", table.FormatDuration(result.Duration))
	if result.Succeeded() {
		line := fmt.Sprintf("%s %s %s", color.Green.Sprint(passedMark), result.Pair, took)
		if result.Note != "" {
			line += " " + color.Gray.Sprint(result.Note)
		}
		h.printf("%s\n", line)
		return nil
	}

	step := ""
	if started && mon.Stage != nil {
		step = fmt.Sprintf(" while %s", mon.Stage.Stage())
	}
	h.printf("%s %s %s\n", color.Red.Sprint(failedMark), color.Red.Sprintf("%s failed%s", result.Pair, step), took)
	h.printf("    %s\n", result.Err)
	if out := failedOutput(result.Err); out != "" {
		h.printf("%s\n", color.Gray.Sprint(stringutil.Indent(out, "    │ ")))
	}
	return nil
}

func (h *terminalUI) handleNotification(e partybus.Event) error {
	message, err := parsers.ParseNotification(e)
	if err != nil {
		return err
	}
	h.printf("%s\n", color.Yellow.Sprint(message))
	return nil
}

func (h *terminalUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(h.uiOutput, format, args...)
}

func (h *terminalUI) Teardown(force bool) error {
	if force && len(h.running) > 0 {
		for key := range h.running {
			h.printf("%s %s\n", color.Yellow.Sprint(failedMark), color.Yellow.Sprintf("%s interrupted", key))
		}
	}
	return nil
}
