package trial

import (
	"path/filepath"

	"github.com/lanterndata/extupdate/extupdate/version"
)

// source directory of the current layout, relative to RootDir
const currentSourceDir = "."

// Config is everything a trial needs to know about the working tree, the build and the database.
// Relative directories are relative to RootDir, where every external tool runs.
type Config struct {
	RootDir       string
	BuildDir      string
	ThirdPartyDir string

	Database  string
	Extension string

	// LegacyLayoutBefore marks the first release built from RootDir; older releases are configured from
	// LegacyRootDir instead. Nil disables the legacy layout.
	LegacyLayoutBefore *version.Version
	LegacyRootDir      string

	// NoParallelTests lists releases whose source has no parallel test schedule. Trials from these
	// releases stop successfully once the old version is installed.
	NoParallelTests []version.Version

	// LockFiles are removed before every parallel schedule.
	LockFiles []string
}

func (c Config) sourceDirFor(v version.Version) string {
	if c.LegacyLayoutBefore != nil && v.LessThan(*c.LegacyLayoutBefore) {
		return c.LegacyRootDir
	}
	return currentSourceDir
}

// path resolves a directory of the config against RootDir for filesystem operations.
func (c Config) path(p string) string {
	if filepath.IsAbs(p) || c.RootDir == "" {
		return p
	}
	return filepath.Join(c.RootDir, p)
}

func (c Config) hasParallelTests(v version.Version) bool {
	for _, n := range c.NoParallelTests {
		if n.Equal(v) {
			return false
		}
	}
	return true
}
