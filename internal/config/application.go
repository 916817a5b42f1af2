package config

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"strings"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/lanterndata/extupdate/extupdate/compat"
	"github.com/lanterndata/extupdate/extupdate/trial"
	"github.com/lanterndata/extupdate/internal"
)

var ErrApplicationConfigNotFound = fmt.Errorf("application config not found")

type defaultValueLoader interface {
	loadDefaultValues(*viper.Viper)
}

type parser interface {
	parseConfigValues() error
}

// CliOnlyOptions are options that can only be provided on the command line.
type CliOnlyOptions struct {
	ConfigPath string
	Verbosity  int
}

type Application struct {
	ConfigPath       string              `yaml:",omitempty" json:"configPath"`                                                   // the location where the application config was read from (either from -c or discovered while loading)
	From             string              `yaml:"from" json:"from" mapstructure:"from"`                                           // --from, the released version to upgrade from
	To               string              `yaml:"to" json:"to" mapstructure:"to"`                                                 // --to, the version to upgrade to
	PlatformVersion  string              `yaml:"platform-version" json:"platform-version" mapstructure:"platform-version"`       // the database server major version, selects compatibility exclusions
	Quiet            bool                `yaml:"quiet" json:"quiet" mapstructure:"quiet"`                                       // -q, indicates to not show any status output to stderr
	DryRun           bool                `yaml:"dry-run" json:"dry-run" mapstructure:"dry-run"`                                 // --dry-run, show the trial schedule without running it
	FailOnTrialError bool                `yaml:"fail-on-trial-error" json:"fail-on-trial-error" mapstructure:"fail-on-trial-error"` // exit non-zero when any trial fails
	Compatibility    map[string][]string `yaml:"compatibility" json:"compatibility" mapstructure:"compatibility"`              // extra platform version -> excluded releases entries
	Matrix           *compat.Matrix      `yaml:"-" json:"-"`
	CliOptions       CliOnlyOptions      `yaml:"-" json:"-"`
	DB               database            `yaml:"db" json:"db" mapstructure:"db"`
	Build            build               `yaml:"build" json:"build" mapstructure:"build"`
	Legacy           legacy              `yaml:"legacy" json:"legacy" mapstructure:"legacy"`
	Test             testSuite           `yaml:"test" json:"test" mapstructure:"test"`
	Log              logging             `yaml:"log" json:"log" mapstructure:"log"`
	Dev              development         `yaml:"dev" json:"dev" mapstructure:"dev"`
}

func newApplicationConfig(v *viper.Viper, cliOpts CliOnlyOptions) *Application {
	config := &Application{
		CliOptions: cliOpts,
	}
	config.loadDefaultValues(v)

	return config
}

func LoadApplicationConfig(v *viper.Viper, cliOpts CliOnlyOptions) (*Application, error) {
	// the user may not have a config, and this is OK, we can use the default config + default cobra cli values instead
	config := newApplicationConfig(v, cliOpts)

	if err := readConfig(v, cliOpts.ConfigPath); err != nil && !errors.Is(err, ErrApplicationConfigNotFound) {
		return nil, err
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}
	config.ConfigPath = v.ConfigFileUsed()

	if err := config.parseConfigValues(); err != nil {
		return nil, fmt.Errorf("invalid application config: %w", err)
	}

	return config, nil
}

// init loads the default configuration values into the viper instance (before the config values are read and parsed).
func (cfg Application) loadDefaultValues(v *viper.Viper) {
	// set the default values for primitive fields in this struct
	v.SetDefault("from", "")
	v.SetDefault("to", "")
	v.SetDefault("dry-run", false)
	v.SetDefault("fail-on-trial-error", false)

	// the platform version is usually provided by the CI matrix as PG_VERSION
	_ = v.BindEnv("platform-version", strings.ToUpper(internal.ApplicationName)+"_PLATFORM_VERSION", "PG_VERSION")

	// for each field in the configuration struct, see if the field implements the defaultValueLoader interface and invoke it if it does
	value := reflect.ValueOf(cfg)
	for i := 0; i < value.NumField(); i++ {
		// note: the defaultValueLoader method receiver is NOT a pointer receiver.
		if loadable, ok := value.Field(i).Interface().(defaultValueLoader); ok {
			// the field implements defaultValueLoader, call it
			loadable.loadDefaultValues(v)
		}
	}
}

func (cfg *Application) parseConfigValues() error {
	// parse application config options
	for _, optionFn := range []func() error{
		cfg.parseLogLevelOption,
		cfg.parseUpgradePairOption,
		cfg.parseCompatibilityOption,
	} {
		if err := optionFn(); err != nil {
			return err
		}
	}

	// parse nested config options
	// for each field in the configuration struct, see if the field implements the parser interface
	// note: the app config is a pointer, so we need to grab the elements explicitly (to traverse the address)
	value := reflect.ValueOf(cfg).Elem()
	for i := 0; i < value.NumField(); i++ {
		// note: since the interface method of parser is a pointer receiver we need to get the value of the field as a pointer.
		if parsable, ok := value.Field(i).Addr().Interface().(parser); ok {
			// the field implements parser, call it
			if err := parsable.parseConfigValues(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (cfg *Application) parseLogLevelOption() error {
	switch {
	case cfg.Quiet:
		// quiet trumps all other logging options, including logging to a file on disk
		cfg.Log.LevelOpt = logrus.PanicLevel
	case cfg.CliOptions.Verbosity > 0:
		cfg.Log.LevelOpt = levelFromVerbosity(cfg.CliOptions.Verbosity)
	case cfg.Log.Level != "":
		lvl, err := logrus.ParseLevel(strings.ToLower(cfg.Log.Level))
		if err != nil {
			return fmt.Errorf("bad log level value '%s': %w", cfg.Log.Level, err)
		}
		cfg.Log.LevelOpt = lvl
		if lvl >= logrus.InfoLevel {
			cfg.CliOptions.Verbosity = 1
		}
	default:
		cfg.Log.LevelOpt = logrus.WarnLevel
	}

	return nil
}

func levelFromVerbosity(verbosity int) logrus.Level {
	switch v := verbosity; {
	case v == 1:
		return logrus.InfoLevel
	case v == 2:
		return logrus.DebugLevel
	case v >= 3:
		return logrus.TraceLevel
	default:
		return logrus.WarnLevel
	}
}

func (cfg *Application) parseUpgradePairOption() error {
	if (cfg.From == "") != (cfg.To == "") {
		return fmt.Errorf("must specify both or neither of --from and --to (from=%q to=%q)", cfg.From, cfg.To)
	}
	return nil
}

func (cfg *Application) parseCompatibilityOption() error {
	m, err := compat.New(compat.DefaultTable, cfg.Compatibility)
	if err != nil {
		return fmt.Errorf("bad compatibility table: %w", err)
	}
	cfg.Matrix = m
	return nil
}

// HasExplicitPair reports whether a single upgrade path was requested.
func (cfg Application) HasExplicitPair() bool {
	return cfg.From != "" && cfg.To != ""
}

// ToDirectorConfig is the run configuration handed to every upgrade trial.
func (cfg Application) ToDirectorConfig() trial.Config {
	return trial.Config{
		RootDir:            cfg.Build.RootDir,
		BuildDir:           cfg.Build.BuildDir,
		ThirdPartyDir:      cfg.Build.ThirdPartyDir,
		Database:           cfg.DB.Name,
		Extension:          cfg.DB.Extension,
		LegacyLayoutBefore: cfg.Legacy.layoutBefore,
		LegacyRootDir:      cfg.Legacy.RootDir,
		NoParallelTests:    cfg.Legacy.noParallelTests,
		LockFiles:          cfg.Test.LockFiles,
	}
}

func (cfg Application) String() string {
	// yaml is pretty human friendly (at least when compared to json)
	appCfgStr, err := yaml.Marshal(&cfg)

	if err != nil {
		return err.Error()
	}

	return string(appCfgStr)
}

// readConfig attempts to read the given config path from disk or discover an alternate store location
func readConfig(v *viper.Viper, configPath string) error {
	var err error
	v.AutomaticEnv()
	v.SetEnvPrefix(internal.ApplicationName)
	// allow for nested options to be specified via environment variables
	// e.g. db.name = EXTUPDATE_DB_NAME
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// use explicitly the given user config
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read application config=%q : %w", configPath, err)
		}
		// don't fall through to other options if the config path was explicitly provided
		return nil
	}

	// start searching for valid configs in order...

	// 1. look for .<appname>.yaml (in the current directory)
	v.AddConfigPath(".")
	v.SetConfigName("." + internal.ApplicationName)
	if err = v.ReadInConfig(); err == nil {
		return nil
	} else if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
		return fmt.Errorf("unable to parse config=%q: %w", v.ConfigFileUsed(), err)
	}

	// 2. look for .<appname>/config.yaml (in the current directory)
	v.AddConfigPath("." + internal.ApplicationName)
	v.SetConfigName("config")
	if err = v.ReadInConfig(); err == nil {
		return nil
	} else if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
		return fmt.Errorf("unable to parse config=%q: %w", v.ConfigFileUsed(), err)
	}

	// 3. look for ~/.<appname>.yaml
	home, err := homedir.Dir()
	if err == nil {
		v.AddConfigPath(home)
		v.SetConfigName("." + internal.ApplicationName)
		if err = v.ReadInConfig(); err == nil {
			return nil
		} else if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return fmt.Errorf("unable to parse config=%q: %w", v.ConfigFileUsed(), err)
		}
	}

	// 4. look for <appname>/config.yaml in xdg locations (starting with xdg home config dir, then moving upwards)
	v.AddConfigPath(path.Join(xdg.ConfigHome, internal.ApplicationName))
	for _, dir := range xdg.ConfigDirs {
		v.AddConfigPath(path.Join(dir, internal.ApplicationName))
	}
	v.SetConfigName("config")
	if err = v.ReadInConfig(); err == nil {
		return nil
	} else if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
		return fmt.Errorf("unable to parse config=%q: %w", v.ConfigFileUsed(), err)
	}

	return ErrApplicationConfigNotFound
}
