package bus

import (
	"github.com/wagoodman/go-partybus"

	"github.com/lanterndata/extupdate/extupdate/event"
)

// Notify publishes a message that the UI should show the user regardless of the log level.
func Notify(message string) {
	Publish(partybus.Event{
		Type:  event.Notification,
		Value: message,
	})
}
