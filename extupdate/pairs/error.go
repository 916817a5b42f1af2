package pairs

import (
	"fmt"
	"strings"

	"github.com/lanterndata/extupdate/extupdate/extupdateerr"
	"github.com/lanterndata/extupdate/extupdate/version"
)

type InconsistencyKind string

const (
	// UntaggedSource means a migration script upgrades from a version that was never tagged.
	UntaggedSource InconsistencyKind = "untagged-source"
	// MultipleUntaggedTargets means more than one upgrade target lacks a tag, i.e. two releases are in progress at once.
	MultipleUntaggedTargets InconsistencyKind = "multiple-untagged-targets"
)

// InconsistencyError reports a release history where migration scripts and repository tags disagree.
// It is fatal: no trial is started.
type InconsistencyError struct {
	Kind     InconsistencyKind
	Versions []version.Version
}

func (e *InconsistencyError) Error() string {
	names := version.Versions(e.Versions).Strings()
	switch e.Kind {
	case UntaggedSource:
		return fmt.Sprintf("migration scripts upgrade from versions without a tag: %s", strings.Join(names, ", "))
	case MultipleUntaggedTargets:
		return fmt.Sprintf("found more than one untagged upgrade target (at most one, the unreleased version, is expected): %s", strings.Join(names, ", "))
	}
	return fmt.Sprintf("inconsistent release history (%s): %s", e.Kind, strings.Join(names, ", "))
}

func (e *InconsistencyError) Unwrap() error {
	return extupdateerr.ErrInconsistentReleases
}
