package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lanterndata/extupdate/extupdate/trial"
	"github.com/lanterndata/extupdate/internal/log"
	"github.com/lanterndata/extupdate/internal/shell"
)

var _ trial.SourceControl = (*Repo)(nil)

// offlineMarkers identify fetch failures caused by an unreachable remote (e.g. a dev container without ssh).
var offlineMarkers = []string{
	"cannot run ssh",
	"Could not resolve host",
}

// Repo drives the git CLI in a working tree.
type Repo struct {
	runner shell.Runner
}

func New(dir string, execFn shell.ExecFn) *Repo {
	return &Repo{
		runner: shell.Runner{
			Dir:    dir,
			ExecFn: execFn,
		},
	}
}

func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	out, err := r.runner.Run(ctx, nil, "git", args...)
	return strings.TrimSpace(string(out)), err
}

func (r *Repo) Tags(ctx context.Context) ([]string, error) {
	out, err := r.git(ctx, "tag", "--list")
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

// Fetch fetches the first configured remote. A repository without remotes, or a remote that cannot be
// reached, is reported as FetchOffline rather than an error.
func (r *Repo) Fetch(ctx context.Context) (trial.FetchStatus, error) {
	out, err := r.git(ctx, "remote")
	if err != nil {
		return trial.FetchOffline, err
	}
	remotes := lines(out)
	if len(remotes) == 0 {
		log.Debugf("no git remotes configured, skipping fetch")
		return trial.FetchOffline, nil
	}

	if _, err := r.git(ctx, "fetch", remotes[0]); err != nil {
		if isOffline(err) {
			log.Debugf("unable to reach remote %q: %v", remotes[0], err)
			return trial.FetchOffline, nil
		}
		return trial.FetchOffline, err
	}
	return trial.FetchOK, nil
}

func isOffline(err error) bool {
	var cmdErr *shell.CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	for _, marker := range offlineMarkers {
		if strings.Contains(cmdErr.Output, marker) {
			return true
		}
	}
	return false
}

func (r *Repo) Checkout(ctx context.Context, revision string) error {
	_, err := r.git(ctx, "checkout", revision)
	return err
}

func (r *Repo) Head(ctx context.Context) (string, error) {
	return r.git(ctx, "rev-parse", "HEAD")
}

func (r *Repo) Branch(ctx context.Context) (string, error) {
	out, err := r.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	if out == "HEAD" || out == "" {
		return "", fmt.Errorf("%w: HEAD is detached", trial.ErrNoActiveBranch)
	}
	return out, nil
}

func (r *Repo) UpdateSubmodules(ctx context.Context) error {
	_, err := r.git(ctx, "submodule", "update", "--init", "--recursive")
	return err
}

func lines(s string) []string {
	var ret []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			ret = append(ret, l)
		}
	}
	return ret
}
