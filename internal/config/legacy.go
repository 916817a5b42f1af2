package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/lanterndata/extupdate/extupdate/version"
)

// legacy describes releases that predate the current source layout and test schedules.
type legacy struct {
	LayoutBefore    string   `yaml:"layout-before" json:"layout-before" mapstructure:"layout-before"`             // releases before this one are configured from RootDir
	RootDir         string   `yaml:"root-dir" json:"root-dir" mapstructure:"root-dir"`                            // source root of legacy releases
	NoParallelTests []string `yaml:"no-parallel-tests" json:"no-parallel-tests" mapstructure:"no-parallel-tests"` // releases without a parallel test schedule
	layoutBefore    *version.Version
	noParallelTests []version.Version
}

func (cfg legacy) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("legacy.layout-before", "0.4.0")
	v.SetDefault("legacy.root-dir", "..")
	v.SetDefault("legacy.no-parallel-tests", []string{"0.0.4"})
}

func (cfg *legacy) parseConfigValues() error {
	cfg.layoutBefore = nil
	if cfg.LayoutBefore != "" {
		v, err := version.Parse(cfg.LayoutBefore)
		if err != nil {
			return fmt.Errorf("bad legacy.layout-before value: %w", err)
		}
		cfg.layoutBefore = &v
	}

	cfg.noParallelTests = nil
	for _, token := range cfg.NoParallelTests {
		v, err := version.Parse(token)
		if err != nil {
			return fmt.Errorf("bad legacy.no-parallel-tests value: %w", err)
		}
		cfg.noParallelTests = append(cfg.noParallelTests, v)
	}
	return nil
}
