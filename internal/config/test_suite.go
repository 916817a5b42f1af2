package config

import "github.com/spf13/viper"

type testSuite struct {
	LockFiles []string `yaml:"lock-files" json:"lock-files" mapstructure:"lock-files"` // files left behind by the parallel test runner
}

func (cfg testSuite) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("test.lock-files", []string{"/tmp/ldb_update.lock", "/tmp/ldb_update_finished"})
}
