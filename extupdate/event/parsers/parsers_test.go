package parsers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagoodman/go-partybus"

	"github.com/lanterndata/extupdate/extupdate/event"
	"github.com/lanterndata/extupdate/extupdate/pairs"
	"github.com/lanterndata/extupdate/extupdate/trial"
)

func TestParseTrialFinished(t *testing.T) {
	p, err := pairs.NewPair("0.2.0", "latest")
	require.NoError(t, err)

	result, err := ParseTrialFinished(partybus.Event{
		Type:  event.TrialFinished,
		Value: trial.Result{Pair: p},
	})
	require.NoError(t, err)
	assert.Equal(t, "0.2.0 -> latest", result.Pair.String())
}

func TestParse_badPayload(t *testing.T) {
	_, err := ParseRunFinished(partybus.Event{
		Type:  event.RunFinished,
		Value: "not a report",
	})
	var payloadErr *ErrBadPayload
	require.True(t, errors.As(err, &payloadErr))
	assert.Equal(t, "Value", payloadErr.Field)

	_, err = ParseTrialStarted(partybus.Event{Type: event.TrialFinished})
	require.True(t, errors.As(err, &payloadErr))
	assert.Equal(t, "Type", payloadErr.Field)
}

func TestParseNotification(t *testing.T) {
	message, err := ParseNotification(partybus.Event{
		Type:  event.Notification,
		Value: "offline: testing against local tags only",
	})
	require.NoError(t, err)
	assert.Equal(t, "offline: testing against local tags only", message)
}
