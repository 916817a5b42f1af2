package table

import (
	"bytes"
	"errors"
	"flag"
	"testing"
	"time"

	"github.com/anchore/go-testutils"
	"github.com/google/go-cmp/cmp"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanterndata/extupdate/extupdate/compat"
	"github.com/lanterndata/extupdate/extupdate/pairs"
	"github.com/lanterndata/extupdate/extupdate/trial"
	"github.com/lanterndata/extupdate/extupdate/version"
)

var update = flag.Bool("update", false, "update the *.golden files for table presenters")

func pair(from, to string) pairs.Pair {
	return pairs.Pair{From: version.MustParse(from), To: version.MustParse(to)}
}

func TestCreateRow(t *testing.T) {
	cases := []struct {
		name     string
		result   trial.Result
		expected []string
	}{
		{
			name: "passed",
			result: trial.Result{
				Pair:     pair("0.3.0", "latest"),
				Duration: 3 * time.Minute,
			},
			expected: []string{"0.3.0", "latest", "passed", "3 minutes", ""},
		},
		{
			name: "passed with note",
			result: trial.Result{
				Pair:     pair("0.0.4", "0.1.0"),
				Note:     trial.NoteNoParallelTests,
				Duration: 90 * time.Second,
			},
			expected: []string{"0.0.4", "0.1.0", "passed", "1 minute", trial.NoteNoParallelTests},
		},
		{
			name: "failed keeps first line of the error",
			result: trial.Result{
				Pair:     pair("0.2.0", "latest"),
				Err:      errors.New("test (from=0.2.0 to=latest) failed\nmore output"),
				Duration: 500 * time.Millisecond,
			},
			expected: []string{"0.2.0", "latest", "failed", "< 1 second", "test (from=0.2.0 to=latest) failed"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			actual := newRow(tc.result).Columns()
			if d := cmp.Diff(tc.expected, actual); d != "" {
				t.Errorf("newRow() mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestPresenter_Present(t *testing.T) {
	report := trial.Report{
		PlatformVersion: "17",
		Results: []trial.Result{
			{Pair: pair("0.2.0", "latest"), Duration: 2 * time.Hour},
			{Pair: pair("0.1.0", "latest"), Err: errors.New("unable to check out \"v0.1.0\"\nexit status 1")},
			{Pair: pair("0.0.4", "0.1.0"), Note: trial.NoteNoParallelTests, Duration: 90 * time.Second},
		},
		Skipped: []version.Version{version.MustParse("0.3.0")},
	}

	var buffer bytes.Buffer
	pres := NewPresenter(report)
	pres.withColor = false

	require.NoError(t, pres.Present(&buffer))
	assertGolden(t, buffer.Bytes())
}

func TestPresenter_Present_noResults(t *testing.T) {
	var buffer bytes.Buffer
	pres := NewPresenter(trial.Report{})

	require.NoError(t, pres.Present(&buffer))
	assert.Equal(t, "No upgrade trials were run\n", buffer.String())
}

func TestSchedulePresenter_Present(t *testing.T) {
	untagged := version.Latest()
	schedule := pairs.Schedule{
		Trials:   []pairs.Pair{pair("0.2.0", "latest"), pair("0.1.0", "latest")},
		Skipped:  []version.Version{version.MustParse("0.4.1")},
		Untagged: &untagged,
	}

	var buffer bytes.Buffer
	require.NoError(t, NewSchedulePresenter(schedule, "17", compat.Default()).Present(&buffer))
	assertGolden(t, buffer.Bytes())
}

func TestSchedulePresenter_Present_withoutPlatform(t *testing.T) {
	var buffer bytes.Buffer
	require.NoError(t, NewSchedulePresenter(pairs.Schedule{}, "", compat.Default()).Present(&buffer))
	assertGolden(t, buffer.Bytes())
}

func assertGolden(t *testing.T, actual []byte) {
	t.Helper()
	if *update {
		testutils.UpdateGoldenFileContents(t, actual)
	}

	var expected = testutils.GetGoldenFileContents(t)

	if !bytes.Equal(expected, actual) {
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(string(expected), string(actual), true)
		t.Errorf("mismatched output:\n%s", dmp.DiffPrettyText(diffs))
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "< 1 second", FormatDuration(0))
	assert.Equal(t, "1 second", FormatDuration(time.Second))
	assert.Equal(t, "45 seconds", FormatDuration(45*time.Second))
	assert.Equal(t, "12 minutes", FormatDuration(12*time.Minute))
}
