package cmd

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanterndata/extupdate/extupdate/compat"
	"github.com/lanterndata/extupdate/extupdate/extupdateerr"
	"github.com/lanterndata/extupdate/extupdate/pairs"
	"github.com/lanterndata/extupdate/extupdate/trial"
	"github.com/lanterndata/extupdate/extupdate/version"
	"github.com/lanterndata/extupdate/internal/config"
	"github.com/lanterndata/extupdate/internal/log"
	"github.com/lanterndata/extupdate/internal/logger"
)

type fakeTagLister struct {
	tags   []string
	err    error
	called bool
}

func (f *fakeTagLister) Tags(context.Context) ([]string, error) {
	f.called = true
	return f.tags, f.err
}

func Test_scheduleTrials(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{"0.2.0--0.3.0.sql", "0.3.0--latest.sql"} {
		require.NoError(t, afero.WriteFile(fs, filepath.Join("/repo", "sql", "updates", name), nil, 0644))
	}

	tests := []struct {
		name           string
		from           string
		to             string
		platform       string
		tags           []string
		tagsErr        error
		wantErr        require.ErrorAssertionFunc
		wantTrials     []string
		wantSkipped    []string
		wantWarning    string
		wantTagsListed bool
	}{
		{
			name:       "explicit pair",
			from:       "0.2.0",
			to:         "latest",
			platform:   "16",
			wantErr:    require.NoError,
			wantTrials: []string{"0.2.0 -> latest"},
		},
		{
			name:        "explicit pair incompatible with the platform is tried anyway",
			from:        "0.3.0",
			to:          "latest",
			platform:    "17",
			wantErr:     require.NoError,
			wantTrials:  []string{"0.3.0 -> latest"},
			wantWarning: "0.3.0 is not supported on platform version 17, trying it anyway",
		},
		{
			name:     "explicit pair with an invalid version",
			from:     "nightly",
			to:       "latest",
			platform: "17",
			wantErr:  require.Error,
		},
		{
			name:           "discovered from migration scripts",
			tags:           []string{"v0.2.0", "v0.3.0"},
			wantErr:        require.NoError,
			wantTrials:     []string{"0.3.0 -> latest", "0.2.0 -> latest"},
			wantTagsListed: true,
		},
		{
			name:           "discovered sources incompatible with the platform are skipped",
			platform:       "17",
			tags:           []string{"v0.2.0", "v0.3.0"},
			wantErr:        require.NoError,
			wantTrials:     []string{"0.2.0 -> latest"},
			wantSkipped:    []string{"0.3.0"},
			wantTagsListed: true,
		},
		{
			name:           "tags cannot be listed",
			tagsErr:        errors.New("fatal: not a git repository"),
			wantErr:        require.Error,
			wantTagsListed: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := &config.Application{
				From:            test.from,
				To:              test.to,
				PlatformVersion: test.platform,
				Matrix:          compat.Default(),
			}
			cfg.Build.RootDir = "/repo"
			cfg.Build.ScriptsDir = "sql/updates"
			withAppConfig(t, cfg)
			hook := withLogHook(t)

			repo := &fakeTagLister{tags: test.tags, err: test.tagsErr}
			schedule, err := scheduleTrials(context.Background(), repo, fs)
			test.wantErr(t, err)
			assert.Equal(t, test.wantTagsListed, repo.called)
			if err != nil {
				return
			}

			var trials []string
			for _, p := range schedule.Trials {
				trials = append(trials, p.String())
			}
			assert.Equal(t, test.wantTrials, trials)

			var skipped []string
			if len(schedule.Skipped) > 0 {
				skipped = version.Versions(schedule.Skipped).Strings()
			}
			assert.Equal(t, test.wantSkipped, skipped)

			var warnings []string
			for _, e := range hook.AllEntries() {
				if e.Level == logrus.WarnLevel {
					warnings = append(warnings, e.Message)
				}
			}
			if test.wantWarning != "" {
				assert.Contains(t, warnings, test.wantWarning)
				return
			}
			for _, w := range warnings {
				assert.NotContains(t, w, "trying it anyway")
			}
		})
	}
}

func Test_checkReport(t *testing.T) {
	passed := trial.Result{Pair: pairs.Pair{From: version.MustParse("0.2.0"), To: version.Latest()}}
	failed := trial.Result{Pair: pairs.Pair{From: version.MustParse("0.1.0"), To: version.Latest()}, Err: errors.New("build failed")}

	tests := []struct {
		name             string
		results          []trial.Result
		failOnTrialError bool
		wantExitCode     int
	}{
		{name: "all passed", results: []trial.Result{passed}, failOnTrialError: true, wantExitCode: 0},
		{name: "failures are reported only in the table by default", results: []trial.Result{passed, failed}, wantExitCode: 0},
		{name: "failures fail the run when asked", results: []trial.Result{passed, failed}, failOnTrialError: true, wantExitCode: extupdateerr.ExitCodeFailure},
		{name: "nothing ran", failOnTrialError: true, wantExitCode: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := checkReport(trial.Report{Results: test.results}, test.failOnTrialError)
			assert.Equal(t, test.wantExitCode, extupdateerr.ExitCode(err))
		})
	}
}

func withAppConfig(t *testing.T, cfg *config.Application) {
	t.Helper()
	previous := appConfig
	appConfig = cfg
	t.Cleanup(func() {
		appConfig = previous
	})
}

func withLogHook(t *testing.T) *logrustest.Hook {
	t.Helper()
	l := logger.NewLogrusLogger(logger.LogrusConfig{Level: logrus.DebugLevel})
	previous := log.Log
	log.Log = l
	t.Cleanup(func() {
		log.Log = previous
	})
	return logrustest.NewLocal(l.Logger)
}
