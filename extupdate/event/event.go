package event

import "github.com/wagoodman/go-partybus"

const (
	TrialsScheduled partybus.EventType = "extupdate-trials-scheduled"
	TrialStarted    partybus.EventType = "extupdate-trial-started"
	TrialFinished   partybus.EventType = "extupdate-trial-finished"
	RunFinished     partybus.EventType = "extupdate-run-finished"
	Notification    partybus.EventType = "extupdate-notification"
)
