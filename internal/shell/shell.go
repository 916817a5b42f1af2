package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/lanterndata/extupdate/internal/log"
)

// ExecFn is a mockable wrapper that executes the given command and returns its combined output.
type ExecFn func(*exec.Cmd) ([]byte, error)

// DefaultExecFn runs the command, streaming its output to stderr while also capturing it.
var DefaultExecFn ExecFn = func(c *exec.Cmd) ([]byte, error) {
	if c.Stdout != nil || c.Stderr != nil {
		return nil, fmt.Errorf("exec: output already set")
	}
	var out bytes.Buffer
	c.Stdout = io.MultiWriter(&out, os.Stderr)
	c.Stderr = io.MultiWriter(&out, os.Stderr)
	err := c.Run()
	return out.Bytes(), err
}

// QuietExecFn runs the command and only captures its output.
var QuietExecFn ExecFn = func(c *exec.Cmd) ([]byte, error) {
	return c.CombinedOutput()
}

// Runner executes external tools from a fixed working directory.
type Runner struct {
	Dir    string
	Env    []string
	ExecFn ExecFn
}

// CommandError is returned when a command exits unsuccessfully.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", strings.Join(e.Args, " "), e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Run executes name with args (and any extra environment entries) and returns the command output.
func (r Runner) Run(ctx context.Context, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 || len(env) > 0 {
		cmd.Env = append(append(os.Environ(), r.Env...), env...)
	}

	execFn := r.ExecFn
	if execFn == nil {
		execFn = DefaultExecFn
	}

	log.Debugf("running: %s %s", strings.Join(env, " "), strings.Join(cmd.Args, " "))
	out, err := execFn(cmd)
	if err != nil {
		return out, &CommandError{
			Args:   cmd.Args,
			Output: string(out),
			Err:    err,
		}
	}
	return out, nil
}
