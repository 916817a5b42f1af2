package cmake

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lanterndata/extupdate/extupdate/trial"
	"github.com/lanterndata/extupdate/internal/shell"
)

var (
	_ trial.Builder    = (*Project)(nil)
	_ trial.TestRunner = (*Project)(nil)
)

// Project configures, builds and tests the extension through cmake and the generated makefiles.
type Project struct {
	runner shell.Runner
	// Jobs limits make parallelism; zero lets make run an unlimited number of jobs.
	Jobs int
}

func New(dir string, jobs int, execFn shell.ExecFn) *Project {
	return &Project{
		runner: shell.Runner{
			Dir:    dir,
			ExecFn: execFn,
		},
		Jobs: jobs,
	}
}

func (p *Project) Build(ctx context.Context, req trial.BuildRequest) error {
	configure := []string{
		"-DRELEASE_ID=" + req.ReleaseID,
		"-S", req.SourceDir,
		"-B", req.BuildDir,
	}
	if _, err := p.runner.Run(ctx, nil, "cmake", configure...); err != nil {
		return fmt.Errorf("configure failed: %w", err)
	}

	args := []string{"-C", req.BuildDir, p.jobsFlag()}
	if req.Install {
		args = append(args, "install")
	}
	if _, err := p.runner.Run(ctx, nil, "make", args...); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	return nil
}

// RunTests runs a make target of the build directory with the upgrade environment the test scripts
// read to decide which version to install and which to update to.
func (p *Project) RunTests(ctx context.Context, req trial.TestRequest) error {
	env := []string{
		"UPDATE_EXTENSION=1",
		"UPDATE_FROM=" + req.From.String(),
		"UPDATE_TO=" + req.To.String(),
	}
	args := []string{"-C", req.BuildDir, req.Target}
	if req.Filter != "" {
		args = append(args, "FILTER="+req.Filter)
	}
	if req.Exclude != "" {
		args = append(args, "EXCLUDE="+req.Exclude)
	}
	_, err := p.runner.Run(ctx, env, "make", args...)
	return err
}

func (p *Project) jobsFlag() string {
	if p.Jobs > 0 {
		return "-j" + strconv.Itoa(p.Jobs)
	}
	return "-j"
}
