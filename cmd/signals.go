package cmd

import (
	"os"
	"os/signal"
	"syscall"
)

// setupSignals relays interrupts to the returned channel until the returned stop function is called. Once
// stopped, interrupts terminate the process as usual.
func setupSignals() (<-chan os.Signal, func()) {
	c := make(chan os.Signal, 1) // a buffered channel is required, see https://golang.org/pkg/os/signal/#Notify

	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	return c, func() {
		signal.Stop(c)
	}
}
