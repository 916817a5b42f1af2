package trial

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/scylladb/go-set/strset"
	"github.com/spf13/afero"
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"

	"github.com/lanterndata/extupdate/extupdate/event"
	"github.com/lanterndata/extupdate/extupdate/event/monitor"
	"github.com/lanterndata/extupdate/extupdate/logger"
	"github.com/lanterndata/extupdate/extupdate/pairs"
	"github.com/lanterndata/extupdate/extupdate/version"
	"github.com/lanterndata/extupdate/internal/bus"
	"github.com/lanterndata/extupdate/internal/log"
)

// test-suite targets and selectors understood by the extension's build
const (
	TargetTest     = "test"
	TargetParallel = "test-parallel"
	TargetMisc     = "test-misc"

	SelectorBegin           = "begin"
	SelectorVersionMismatch = "version_mismatch"
)

// number of progress steps in a complete trial
const trialSteps = 11

// NoteNoParallelTests is attached to results of trials that stop after installing the old release.
const NoteNoParallelTests = "stopped after install: release has no parallel test schedule"

// Director runs upgrade trials one at a time. Every trial mutates the same working tree, build directory
// and database, so trials must never run concurrently.
type Director struct {
	cfg   Config
	scm   SourceControl
	build Builder
	tests TestRunner
	db    Database
	fs    afero.Fs
	now   func() time.Time
}

func NewDirector(cfg Config, c Collaborators, fs afero.Fs) *Director {
	return &Director{
		cfg:   cfg,
		scm:   c.SourceControl,
		build: c.Builder,
		tests: c.Tests,
		db:    c.Database,
		fs:    fs,
		now:   time.Now,
	}
}

// Run attempts every scheduled trial in order. A failed trial does not stop the run.
func (d *Director) Run(ctx context.Context, schedule pairs.Schedule) []Result {
	bus.Publish(partybus.Event{
		Type:  event.TrialsScheduled,
		Value: schedule,
	})

	results := make([]Result, 0, len(schedule.Trials))
	for _, p := range schedule.Trials {
		if ctx.Err() != nil {
			log.Warnf("interrupted, not attempting %s", p)
			break
		}
		results = append(results, d.Try(ctx, p))
	}
	return results
}

// Try runs a single trial. On failure the working tree is restored to the revision checked out when the
// trial began; the failure is recorded in the result and never returned.
func (d *Director) Try(ctx context.Context, p pairs.Pair) Result {
	result := Result{
		Pair:    p,
		Started: d.now(),
	}

	start, err := d.startingPoint(ctx)
	if err != nil {
		result.Err = fmt.Errorf("unable to determine starting revision: %w", err)
		d.finish(&result)
		return result
	}

	t := newTracker(p)
	bus.Publish(partybus.Event{
		Type:  event.TrialStarted,
		Value: t.monitor(),
	})

	result.Note, result.Err = d.run(ctx, p, start, t)
	if result.Err != nil {
		t.log.Errorf("error updating from %s to %s: %+v", p.From, p.To, result.Err)
		// the trial context may already be cancelled (interrupt); the restore must still run
		if restoreErr := d.scm.Checkout(context.Background(), start); restoreErr != nil {
			result.Err = multierror.Append(result.Err, fmt.Errorf("unable to restore starting revision %q: %w", start, restoreErr))
		}
	} else {
		t.log.Infof("update %s -> %s success!", p.From, p.To)
	}
	t.done(result.Err == nil)

	d.finish(&result)
	return result
}

func (d *Director) finish(result *Result) {
	result.Duration = d.now().Sub(result.Started)
	bus.Publish(partybus.Event{
		Type:  event.TrialFinished,
		Value: *result,
	})
}

// startingPoint prefers the active branch name so that the branch is re-attached after each checkout.
func (d *Director) startingPoint(ctx context.Context) (string, error) {
	branch, err := d.scm.Branch(ctx)
	if err == nil {
		return branch, nil
	}
	log.Infof("did not detect active branch: %v; using HEAD as starting point", err)
	return d.scm.Head(ctx)
}

//nolint:funlen
func (d *Director) run(ctx context.Context, p pairs.Pair, start string, t *tracker) (string, error) {
	t.step("resolving target revision")
	target, err := d.targetRevision(ctx, p.To, start)
	if err != nil {
		return "", err
	}

	t.step("fetching remote")
	status, err := d.scm.Fetch(ctx)
	if err != nil {
		return "", fmt.Errorf("unknown fetch error: %w", err)
	}
	if status == FetchOffline {
		t.log.Debugf("remote is unreachable, testing against local tags only")
		bus.Notify("offline: testing against local tags only")
	}

	fromTag := version.TagName(p.From)
	t.log.Infof("updating from tag %s (starting at %s) to %s", fromTag, start, p.To)

	// the old release supplies the binary and the catalog scripts
	t.step("building " + fromTag)
	if err := d.checkout(ctx, fromTag); err != nil {
		return "", err
	}
	if err := d.rebuild(ctx, d.cfg.sourceDirFor(p.From), p.From.String(), true); err != nil {
		return "", err
	}

	// the current tree supplies the test scripts, compiled against the old release id but not installed
	t.step("compiling current test scripts")
	if err := d.checkout(ctx, start); err != nil {
		return "", err
	}
	if err := d.clean(d.cfg.ThirdPartyDir); err != nil {
		return "", err
	}
	if err := d.rebuild(ctx, currentSourceDir, p.From.String(), false); err != nil {
		return "", err
	}

	t.step("creating database " + d.cfg.Database)
	if err := d.db.Recreate(ctx, d.cfg.Database); err != nil {
		return "", fmt.Errorf("unable to recreate database %q: %w", d.cfg.Database, err)
	}
	if err := d.db.InstallExtension(ctx, d.cfg.Database, d.cfg.Extension); err != nil {
		return "", fmt.Errorf("unable to install extension %q: %w", d.cfg.Extension, err)
	}

	if !d.cfg.hasParallelTests(p.From) {
		return NoteNoParallelTests, nil
	}

	t.step("running begin schedules on " + p.From.String())
	if err := d.removeLockFiles(); err != nil {
		return "", err
	}
	if err := d.runTests(ctx, TargetParallel, p.From, p.From, SelectorBegin, ""); err != nil {
		return "", err
	}
	t.step("running misc begin schedule on " + p.From.String())
	if err := d.runTests(ctx, TargetMisc, p.From, p.From, SelectorBegin, ""); err != nil {
		return "", err
	}

	t.step("building " + target)
	if err := d.checkout(ctx, target); err != nil {
		return "", err
	}
	if err := d.clean(d.cfg.ThirdPartyDir); err != nil {
		return "", err
	}
	if err := d.rebuild(ctx, currentSourceDir, p.To.String(), true); err != nil {
		return "", err
	}
	if err := d.checkout(ctx, start); err != nil {
		return "", err
	}

	t.step("checking version mismatch")
	if err := d.runTests(ctx, TargetMisc, p.From, p.From, SelectorVersionMismatch, ""); err != nil {
		return "", err
	}

	t.step("running test suite after upgrade")
	if err := d.runTests(ctx, TargetTest, p.From, p.To, "", ""); err != nil {
		return "", err
	}

	t.step("running parallel schedule after upgrade")
	if err := d.removeLockFiles(); err != nil {
		return "", err
	}
	if err := d.runTests(ctx, TargetParallel, p.From, p.To, "", SelectorBegin); err != nil {
		return "", err
	}

	return "", nil
}

// targetRevision is the tag of a released target, or the starting revision when the target is unreleased.
func (d *Director) targetRevision(ctx context.Context, to version.Version, start string) (string, error) {
	if to.IsLatest() {
		return start, nil
	}
	tags, err := d.scm.Tags(ctx)
	if err != nil {
		return "", fmt.Errorf("unable to list tags: %w", err)
	}
	toTag := version.TagName(to)
	if strset.New(tags...).Has(toTag) {
		return toTag, nil
	}
	log.Warnf("to_version=%s has no corresponding tag, assuming %s corresponds to that version", to, start)
	bus.Notify(fmt.Sprintf("%s is not tagged, testing %s in its place", to, start))
	return start, nil
}

func (d *Director) checkout(ctx context.Context, revision string) error {
	if err := d.scm.Checkout(ctx, revision); err != nil {
		return fmt.Errorf("unable to check out %q: %w", revision, err)
	}
	return nil
}

func (d *Director) rebuild(ctx context.Context, sourceDir, releaseID string, install bool) error {
	if err := d.clean(d.cfg.BuildDir); err != nil {
		return err
	}
	if err := d.fs.MkdirAll(d.cfg.path(d.cfg.BuildDir), 0755); err != nil {
		return fmt.Errorf("unable to create build directory %q: %w", d.cfg.BuildDir, err)
	}
	if err := d.scm.UpdateSubmodules(ctx); err != nil {
		return fmt.Errorf("unable to update submodules: %w", err)
	}
	req := BuildRequest{
		SourceDir: sourceDir,
		BuildDir:  d.cfg.BuildDir,
		ReleaseID: releaseID,
		Install:   install,
	}
	if err := d.build.Build(ctx, req); err != nil {
		return fmt.Errorf("unable to build release %s from %q: %w", releaseID, sourceDir, err)
	}
	return nil
}

func (d *Director) clean(dir string) error {
	if dir == "" {
		return nil
	}
	if err := d.fs.RemoveAll(d.cfg.path(dir)); err != nil {
		return fmt.Errorf("unable to remove %q: %w", dir, err)
	}
	return nil
}

func (d *Director) removeLockFiles() error {
	for _, f := range d.cfg.LockFiles {
		if err := d.fs.Remove(d.cfg.path(f)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("unable to remove test lock file %q: %w", f, err)
		}
	}
	return nil
}

func (d *Director) runTests(ctx context.Context, target string, from, to version.Version, filter, exclude string) error {
	req := TestRequest{
		BuildDir: d.cfg.BuildDir,
		Target:   target,
		From:     from,
		To:       to,
		Filter:   filter,
		Exclude:  exclude,
	}
	if err := d.tests.RunTests(ctx, req); err != nil {
		return fmt.Errorf("%s (from=%s to=%s filter=%q exclude=%q) failed: %w", target, from, to, filter, exclude, err)
	}
	return nil
}

type tracker struct {
	pair     pairs.Pair
	log      logger.Logger
	stage    *progress.Stage
	progress *progress.Manual
}

func newTracker(p pairs.Pair) *tracker {
	return &tracker{
		pair: p,
		log: log.Nested(map[string]interface{}{
			"from": p.From.String(),
			"to":   p.To.String(),
		}),
		stage:    &progress.Stage{},
		progress: &progress.Manual{Total: trialSteps},
	}
}

func (t *tracker) step(name string) {
	t.stage.Current = name
	if t.progress.N < t.progress.Total {
		t.progress.N++
	}
	t.log.Debug(name)
}

// done completes the progress; a failed trial keeps the name of the step that failed.
func (t *tracker) done(succeeded bool) {
	if succeeded {
		t.stage.Current = "done"
	}
	t.progress.SetCompleted()
}

func (t *tracker) monitor() monitor.Trial {
	return monitor.Trial{
		Pair:     t.pair,
		Stage:    progress.Stager(t.stage),
		Progress: progress.Progressable(t.progress),
	}
}
