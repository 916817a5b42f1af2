package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/wagoodman/go-partybus"

	"github.com/lanterndata/extupdate/extupdate"
	"github.com/lanterndata/extupdate/extupdate/event"
	"github.com/lanterndata/extupdate/extupdate/extupdateerr"
	"github.com/lanterndata/extupdate/extupdate/pairs"
	"github.com/lanterndata/extupdate/extupdate/presenter/table"
	"github.com/lanterndata/extupdate/extupdate/trial"
	"github.com/lanterndata/extupdate/internal"
	"github.com/lanterndata/extupdate/internal/bus"
	"github.com/lanterndata/extupdate/internal/cmake"
	"github.com/lanterndata/extupdate/internal/config"
	"github.com/lanterndata/extupdate/internal/git"
	"github.com/lanterndata/extupdate/internal/log"
	"github.com/lanterndata/extupdate/internal/pgdb"
	"github.com/lanterndata/extupdate/internal/shell"
	"github.com/lanterndata/extupdate/internal/stringutil"
	"github.com/lanterndata/extupdate/internal/ui"
)

var persistentOpts = config.CliOnlyOptions{}

var rootCmd = &cobra.Command{
	Use:   internal.ApplicationName,
	Short: "Test in-place upgrades of the extension from every released version",
	Long: stringutil.Tprintf(`Builds every released version that has a migration script, installs it into a fresh database,
upgrades it in place to the newest version and runs the test suite against the upgraded database.

    {{.appName}}                                  try every upgrade path found in sql/updates
    {{.appName}} --from 0.2.0 --to latest         try a single upgrade path
    {{.appName}} --dry-run                        show the upgrade paths that would be tried

The database server major version is read from {{ .appName | upper }}_PLATFORM_VERSION (or PG_VERSION)
and selects the releases that are skipped as incompatible.
`, map[string]interface{}{
		"appName": internal.ApplicationName,
	}),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDefaultCmd,
}

func init() {
	setPersistentFlags(rootCmd.PersistentFlags())
	setRootFlags(rootCmd.Flags())

	if err := bindRootConfigOptions(rootCmd.Flags()); err != nil {
		panic(err)
	}
}

func setPersistentFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&persistentOpts.ConfigPath, "config", "c", "", "application config file")
	flags.CountVarP(&persistentOpts.Verbosity, "verbose", "v", "increase verbosity (-v = info, -vv = debug)")
	flags.BoolP("quiet", "q", false, "suppress all logging output")
}

func setRootFlags(flags *pflag.FlagSet) {
	flags.String("from", "", "released version to upgrade from (requires --to)")
	flags.String("to", "", "version to upgrade to (requires --from)")
	flags.StringP("db", "d", "update_db", "database recreated for every upgrade trial")
	flags.StringP("user", "U", "", "database user (default: the current user)")
	flags.String("builddir", "build_updates", "build directory, removed before every build")
	flags.String("rootdir", ".", "root directory of the extension sources")
	flags.String("platform-version", "", "database server major version, selects the releases to skip (default: $PG_VERSION)")
	flags.Bool("fail-on-trial-error", false, "exit with a non-zero code when any upgrade trial fails")
	flags.Bool("dry-run", false, "show the upgrade trials that would run and exit")
}

// bindRootConfigOptions maps command line flags onto application config keys.
func bindRootConfigOptions(flags *pflag.FlagSet) error {
	bindings := []struct {
		key  string
		flag *pflag.Flag
	}{
		{key: "quiet", flag: rootCmd.PersistentFlags().Lookup("quiet")},
		{key: "from", flag: flags.Lookup("from")},
		{key: "to", flag: flags.Lookup("to")},
		{key: "db.name", flag: flags.Lookup("db")},
		{key: "db.user", flag: flags.Lookup("user")},
		{key: "build.build-dir", flag: flags.Lookup("builddir")},
		{key: "build.root-dir", flag: flags.Lookup("rootdir")},
		{key: "platform-version", flag: flags.Lookup("platform-version")},
		{key: "fail-on-trial-error", flag: flags.Lookup("fail-on-trial-error")},
		{key: "dry-run", flag: flags.Lookup("dry-run")},
	}

	for _, b := range bindings {
		if b.flag == nil {
			return fmt.Errorf("no flag bound to config key %q", b.key)
		}
		if err := viper.BindPFlag(b.key, b.flag); err != nil {
			return fmt.Errorf("unable to bind flag '%s': %w", b.flag.Name, err)
		}
	}
	return nil
}

func runDefaultCmd(_ *cobra.Command, _ []string) error {
	if appConfig.Dev.ProfileCPU && appConfig.Dev.ProfileMem {
		return fmt.Errorf("cannot profile CPU and memory simultaneously")
	}
	if appConfig.Dev.ProfileCPU {
		defer profile.Start(profile.CPUProfile).Stop()
	} else if appConfig.Dev.ProfileMem {
		defer profile.Start(profile.MemProfile).Stop()
	}

	verbose := appConfig.CliOptions.Verbosity > 0
	execFn := shell.QuietExecFn
	if verbose && !appConfig.Quiet {
		execFn = shell.DefaultExecFn
	}

	repo := git.New(appConfig.Build.RootDir, execFn)
	fs := afero.NewOsFs()

	if appConfig.DryRun {
		schedule, err := scheduleTrials(context.Background(), repo, fs)
		if err != nil {
			return err
		}
		return table.NewSchedulePresenter(schedule, appConfig.PlatformVersion, appConfig.Matrix).Present(os.Stdout)
	}

	ctx, cancel := context.WithCancel(context.Background())
	signals, stopSignals := setupSignals()

	project := cmake.New(appConfig.Build.RootDir, appConfig.Build.Jobs, execFn)
	director := trial.NewDirector(appConfig.ToDirectorConfig(), trial.Collaborators{
		SourceControl: repo,
		Builder:       project,
		Tests:         project,
		Database:      pgdb.New(appConfig.DB.ToClientConfig()),
	}, fs)

	reports := make(chan trial.Report, 1)
	err := eventLoop(
		startWorker(ctx, repo, fs, director, reports),
		signals,
		eventSubscription,
		func() {
			cancel()
			stopSignals()
		},
		ui.Select(verbose, appConfig.Quiet, os.Stdout),
	)
	if err != nil {
		return err
	}

	select {
	case report := <-reports:
		return checkReport(report, appConfig.FailOnTrialError)
	default:
	}
	return nil
}

// checkReport turns failed trials into an error when the run was asked to fail on them.
func checkReport(report trial.Report, failOnTrialError bool) error {
	if failOnTrialError && report.Failed() > 0 {
		return extupdateerr.ErrTrialsFailed
	}
	return nil
}

type tagLister interface {
	Tags(ctx context.Context) ([]string, error)
}

func startWorker(ctx context.Context, repo tagLister, fs afero.Fs, director *trial.Director, reports chan<- trial.Report) <-chan error {
	errs := make(chan error)
	go func() {
		defer close(errs)

		schedule, err := scheduleTrials(ctx, repo, fs)
		if err != nil {
			errs <- err
			return
		}

		report := trial.Report{
			PlatformVersion: appConfig.PlatformVersion,
			Results:         director.Run(ctx, schedule),
			Skipped:         schedule.Skipped,
		}
		reports <- report

		bus.Publish(partybus.Event{
			Type:  event.RunFinished,
			Value: report,
		})
	}()
	return errs
}

// scheduleTrials returns the single requested upgrade path, or every upgrade path found in the migration scripts.
func scheduleTrials(ctx context.Context, repo tagLister, fs afero.Fs) (pairs.Schedule, error) {
	if appConfig.HasExplicitPair() {
		p, err := pairs.NewPair(appConfig.From, appConfig.To)
		if err != nil {
			return pairs.Schedule{}, err
		}
		if appConfig.Matrix.IsIncompatible(appConfig.PlatformVersion, p.From) {
			log.Warnf("%s is not supported on platform version %s, trying it anyway", p.From, appConfig.PlatformVersion)
		}
		return pairs.Schedule{Trials: []pairs.Pair{p}}, nil
	}

	tags, err := repo.Tags(ctx)
	if err != nil {
		return pairs.Schedule{}, err
	}
	return extupdate.ScheduleTrials(fs, appConfig.Build.MigrationScriptsDir(), tags, appConfig.Matrix, appConfig.PlatformVersion)
}
