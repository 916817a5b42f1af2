package shell

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_Run(t *testing.T) {
	var got *exec.Cmd
	r := Runner{
		Dir: "/repo",
		Env: []string{"A=1"},
		ExecFn: func(c *exec.Cmd) ([]byte, error) {
			got = c
			return []byte("ok"), nil
		},
	}

	out, err := r.Run(context.Background(), []string{"B=2"}, "make", "-C", "build", "test")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(out))

	require.NotNil(t, got)
	assert.Equal(t, "/repo", got.Dir)
	assert.Equal(t, []string{"make", "-C", "build", "test"}, got.Args)
	assert.Contains(t, got.Env, "A=1")
	assert.Contains(t, got.Env, "B=2")
}

func TestRunner_Run_inheritsEnvironmentByDefault(t *testing.T) {
	var got *exec.Cmd
	r := Runner{ExecFn: func(c *exec.Cmd) ([]byte, error) {
		got = c
		return nil, nil
	}}

	_, err := r.Run(context.Background(), nil, "git", "status")
	require.NoError(t, err)
	assert.Nil(t, got.Env)
}

func TestRunner_Run_commandError(t *testing.T) {
	exitErr := errors.New("exit status 128")
	r := Runner{ExecFn: func(c *exec.Cmd) ([]byte, error) {
		return []byte("fatal: not a git repository"), exitErr
	}}

	_, err := r.Run(context.Background(), nil, "git", "tag")
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, "fatal: not a git repository", cmdErr.Output)
	assert.ErrorIs(t, err, exitErr)
	assert.Equal(t, "git tag: exit status 128", err.Error())
}
