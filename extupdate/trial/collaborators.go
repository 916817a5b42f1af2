package trial

import (
	"context"
	"errors"

	"github.com/lanterndata/extupdate/extupdate/version"
)

// ErrNoActiveBranch is returned by SourceControl.Branch when HEAD is detached.
var ErrNoActiveBranch = errors.New("no active branch")

// FetchStatus distinguishes a completed fetch from the expected case of a remote that cannot be reached
// (e.g. a container without ssh). Any other fetch failure is an error.
type FetchStatus int

const (
	FetchOK FetchStatus = iota
	FetchOffline
)

func (s FetchStatus) String() string {
	switch s {
	case FetchOK:
		return "fetched"
	case FetchOffline:
		return "offline"
	}
	return "unknown"
}

// SourceControl is the working tree of the extension repository.
type SourceControl interface {
	Tags(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context) (FetchStatus, error)
	Checkout(ctx context.Context, revision string) error
	// Head returns the revision identifier of HEAD.
	Head(ctx context.Context) (string, error)
	// Branch returns the checked out branch name, or ErrNoActiveBranch.
	Branch(ctx context.Context) (string, error)
	UpdateSubmodules(ctx context.Context) error
}

type BuildRequest struct {
	SourceDir string
	BuildDir  string
	// ReleaseID is the version the build identifies itself as.
	ReleaseID string
	// Install the build artifacts into the database server after compiling.
	Install bool
}

// Builder configures and compiles the extension.
type Builder interface {
	Build(ctx context.Context, req BuildRequest) error
}

type TestRequest struct {
	BuildDir string
	Target   string
	From     version.Version
	To       version.Version
	Filter   string
	Exclude  string
}

// TestRunner runs a test-suite target of a configured build directory.
type TestRunner interface {
	RunTests(ctx context.Context, req TestRequest) error
}

// Database prepares the database the test suite runs against.
type Database interface {
	Recreate(ctx context.Context, name string) error
	InstallExtension(ctx context.Context, database, extension string) error
}

type Collaborators struct {
	SourceControl SourceControl
	Builder       Builder
	Tests         TestRunner
	Database      Database
}
