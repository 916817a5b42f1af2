package ui

import (
	"errors"
	"fmt"
	"io"

	"github.com/acarl005/stripansi"
	"github.com/wagoodman/go-partybus"

	"github.com/lanterndata/extupdate/extupdate/event/parsers"
	"github.com/lanterndata/extupdate/extupdate/presenter/table"
	"github.com/lanterndata/extupdate/internal/shell"
	"github.com/lanterndata/extupdate/internal/stringutil"
)

// number of trailing output lines of a failed command shown with a failed trial
const failedOutputLines = 20

func handleRunFinished(event partybus.Event, reportOutput io.Writer) error {
	// show the summary to stdout
	report, err := parsers.ParseRunFinished(event)
	if err != nil {
		return fmt.Errorf("bad %s event: %w", event.Type, err)
	}

	if err := table.NewPresenter(*report).Present(reportOutput); err != nil {
		return fmt.Errorf("unable to show upgrade report: %w", err)
	}
	return nil
}

// failedOutput is the tail of the output of the command that failed the trial, if a command failed it.
func failedOutput(err error) string {
	var cmdErr *shell.CommandError
	if !errors.As(err, &cmdErr) {
		return ""
	}
	return stringutil.TailLines(stripansi.Strip(cmdErr.Output), failedOutputLines)
}
