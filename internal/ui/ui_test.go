package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"

	"github.com/lanterndata/extupdate/extupdate/event"
	"github.com/lanterndata/extupdate/extupdate/event/monitor"
	"github.com/lanterndata/extupdate/extupdate/pairs"
	"github.com/lanterndata/extupdate/extupdate/trial"
	"github.com/lanterndata/extupdate/extupdate/version"
	"github.com/lanterndata/extupdate/internal/shell"
)

func testPair() pairs.Pair {
	return pairs.Pair{From: version.MustParse("0.2.0"), To: version.Latest()}
}

func withoutColor(t *testing.T) {
	enabled := color.Enable
	color.Enable = false
	t.Cleanup(func() { color.Enable = enabled })
}

func TestTerminalUI_failedTrial(t *testing.T) {
	withoutColor(t)

	var uiOut, reportOut bytes.Buffer
	ux := NewTerminalUI(&uiOut, &reportOut)

	var unsubscribed bool
	require.NoError(t, ux.Setup(func() error {
		unsubscribed = true
		return nil
	}))

	p := testPair()
	cmdErr := &shell.CommandError{
		Args:   []string{"make", "-C", "build_updates", "test"},
		Output: "compiling\nFAILED: upgrade_test\n",
		Err:    errors.New("exit status 2"),
	}

	events := []partybus.Event{
		{
			Type:  event.TrialsScheduled,
			Value: pairs.Schedule{Trials: []pairs.Pair{p}, Skipped: []version.Version{version.MustParse("0.3.0")}},
		},
		{
			Type: event.TrialStarted,
			Value: monitor.Trial{
				Pair:     p,
				Stage:    &progress.Stage{Current: "running test suite after upgrade"},
				Progress: &progress.Manual{Total: 11},
			},
		},
		{
			Type:  event.TrialFinished,
			Value: trial.Result{Pair: p, Err: cmdErr, Duration: 2 * time.Minute},
		},
		{
			Type:  event.RunFinished,
			Value: trial.Report{Results: []trial.Result{{Pair: p, Err: cmdErr}}},
		},
	}
	for _, e := range events {
		require.NoError(t, ux.Handle(e))
	}
	require.NoError(t, ux.Teardown(false))

	out := uiOut.String()
	assert.Contains(t, out, "skipping 0.3.0")
	assert.Contains(t, out, "running 1 upgrade trials")
	assert.Contains(t, out, "upgrading 0.2.0 -> latest")
	assert.Contains(t, out, "0.2.0 -> latest failed while running test suite after upgrade")
	assert.Contains(t, out, "(2 minutes)")
	assert.Contains(t, out, "│ FAILED: upgrade_test")

	assert.Contains(t, reportOut.String(), "1 of 1 upgrade trials failed")
	assert.True(t, unsubscribed)
}

func TestTerminalUI_notification(t *testing.T) {
	withoutColor(t)

	var uiOut bytes.Buffer
	ux := NewTerminalUI(&uiOut, &bytes.Buffer{})
	require.NoError(t, ux.Setup(func() error { return nil }))

	require.NoError(t, ux.Handle(partybus.Event{Type: event.Notification, Value: "offline: testing against local tags only"}))
	assert.Equal(t, "offline: testing against local tags only\n", uiOut.String())
}

func TestTerminalUI_teardownReportsInterruptedTrials(t *testing.T) {
	withoutColor(t)

	var uiOut bytes.Buffer
	ux := NewTerminalUI(&uiOut, &bytes.Buffer{})
	require.NoError(t, ux.Setup(func() error { return nil }))

	require.NoError(t, ux.Handle(partybus.Event{Type: event.TrialStarted, Value: monitor.Trial{Pair: testPair()}}))
	require.NoError(t, ux.Teardown(true))

	assert.Contains(t, uiOut.String(), "0.2.0 -> latest interrupted")
}

func TestLoggerUI_writesReportOnRunFinished(t *testing.T) {
	var reportOut bytes.Buffer
	ux := NewLoggerUI(&reportOut)

	var unsubscribed bool
	require.NoError(t, ux.Setup(func() error {
		unsubscribed = true
		return nil
	}))

	require.NoError(t, ux.Handle(partybus.Event{Type: event.TrialFinished, Value: trial.Result{Pair: testPair()}}))
	assert.False(t, unsubscribed)

	require.NoError(t, ux.Handle(partybus.Event{
		Type:  event.RunFinished,
		Value: trial.Report{Results: []trial.Result{{Pair: testPair()}}},
	}))
	assert.True(t, unsubscribed)
	assert.Contains(t, reportOut.String(), "0 of 1 upgrade trials failed")
}

func TestFailedOutput(t *testing.T) {
	assert.Empty(t, failedOutput(errors.New("not a command")))

	var lines []byte
	for i := 0; i < 30; i++ {
		lines = append(lines, []byte("line\n")...)
	}
	lines = append(lines, []byte("last\n")...)
	out := failedOutput(&shell.CommandError{Output: string(lines), Err: errors.New("exit status 1")})

	assert.Len(t, bytes.Split([]byte(out), []byte("\n")), failedOutputLines)
	assert.True(t, bytes.HasSuffix([]byte(out), []byte("last")))
}
