package ui

import (
	"io"
	"os"
	"runtime"

	"golang.org/x/term"
)

// Select is responsible for determining the specific UI given the user options and environment status (such as
// a TTY being present). A writer is provided to capture the output of the final report.
func Select(verbose, quiet bool, reportWriter io.Writer) UI {
	isStderrATty := term.IsTerminal(int(os.Stderr.Fd()))

	switch {
	case runtime.GOOS == "windows" || verbose || quiet || !isStderrATty:
		return NewLoggerUI(reportWriter)
	default:
		return NewTerminalUI(os.Stderr, reportWriter)
	}
}
