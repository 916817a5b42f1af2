package parsers

import (
	"fmt"

	"github.com/wagoodman/go-partybus"

	"github.com/lanterndata/extupdate/extupdate/event"
	"github.com/lanterndata/extupdate/extupdate/event/monitor"
	"github.com/lanterndata/extupdate/extupdate/pairs"
	"github.com/lanterndata/extupdate/extupdate/trial"
)

type ErrBadPayload struct {
	Type  partybus.EventType
	Field string
	Value interface{}
}

func (e *ErrBadPayload) Error() string {
	return fmt.Sprintf("event='%s' has bad event payload field='%v': '%+v'", string(e.Type), e.Field, e.Value)
}

func newPayloadErr(t partybus.EventType, field string, value interface{}) error {
	return &ErrBadPayload{
		Type:  t,
		Field: field,
		Value: value,
	}
}

func checkEventType(actual, expected partybus.EventType) error {
	if actual != expected {
		return newPayloadErr(expected, "Type", actual)
	}
	return nil
}

func ParseTrialsScheduled(e partybus.Event) (*pairs.Schedule, error) {
	if err := checkEventType(e.Type, event.TrialsScheduled); err != nil {
		return nil, err
	}

	s, ok := e.Value.(pairs.Schedule)
	if !ok {
		return nil, newPayloadErr(e.Type, "Value", e.Value)
	}

	return &s, nil
}

func ParseTrialStarted(e partybus.Event) (*monitor.Trial, error) {
	if err := checkEventType(e.Type, event.TrialStarted); err != nil {
		return nil, err
	}

	mon, ok := e.Value.(monitor.Trial)
	if !ok {
		return nil, newPayloadErr(e.Type, "Value", e.Value)
	}

	return &mon, nil
}

func ParseTrialFinished(e partybus.Event) (*trial.Result, error) {
	if err := checkEventType(e.Type, event.TrialFinished); err != nil {
		return nil, err
	}

	result, ok := e.Value.(trial.Result)
	if !ok {
		return nil, newPayloadErr(e.Type, "Value", e.Value)
	}

	return &result, nil
}

func ParseRunFinished(e partybus.Event) (*trial.Report, error) {
	if err := checkEventType(e.Type, event.RunFinished); err != nil {
		return nil, err
	}

	report, ok := e.Value.(trial.Report)
	if !ok {
		return nil, newPayloadErr(e.Type, "Value", e.Value)
	}

	return &report, nil
}

func ParseNotification(e partybus.Event) (string, error) {
	if err := checkEventType(e.Type, event.Notification); err != nil {
		return "", err
	}

	message, ok := e.Value.(string)
	if !ok {
		return "", newPayloadErr(e.Type, "Value", e.Value)
	}

	return message, nil
}
