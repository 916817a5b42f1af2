package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

type build struct {
	RootDir       string `yaml:"root-dir" json:"root-dir" mapstructure:"root-dir"`                      // --rootdir, the extension source root
	BuildDir      string `yaml:"build-dir" json:"build-dir" mapstructure:"build-dir"`                   // --builddir, recreated before every build
	ThirdPartyDir string `yaml:"third-party-dir" json:"third-party-dir" mapstructure:"third-party-dir"` // removed before rebuilding from another revision
	ScriptsDir    string `yaml:"scripts-dir" json:"scripts-dir" mapstructure:"scripts-dir"`             // migration scripts, relative to the root dir
	Jobs          int    `yaml:"jobs" json:"jobs" mapstructure:"jobs"`                                  // make parallelism, zero for unlimited
}

func (cfg build) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("build.root-dir", ".")
	v.SetDefault("build.build-dir", "build_updates")
	v.SetDefault("build.third-party-dir", "third_party")
	v.SetDefault("build.scripts-dir", "sql/updates")
	v.SetDefault("build.jobs", 0)
}

func (cfg *build) parseConfigValues() error {
	if cfg.BuildDir == "" {
		return fmt.Errorf("a build directory is required")
	}
	if filepath.Clean(cfg.BuildDir) == filepath.Clean(cfg.RootDir) {
		return fmt.Errorf("the build directory %q cannot be the root directory, it is removed before every build", cfg.BuildDir)
	}
	if cfg.Jobs < 0 {
		return fmt.Errorf("build jobs must not be negative (got %d)", cfg.Jobs)
	}
	return nil
}

// MigrationScriptsDir is where the <from>--<to>.sql scripts are discovered.
func (cfg build) MigrationScriptsDir() string {
	return filepath.Join(cfg.RootDir, cfg.ScriptsDir)
}
