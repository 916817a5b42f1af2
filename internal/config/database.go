package config

import (
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/viper"

	"github.com/lanterndata/extupdate/internal/pgdb"
)

type database struct {
	Name          string `yaml:"name" json:"name" mapstructure:"name"`                               // -d, --db, the database recreated for every trial
	User          string `yaml:"user" json:"user" mapstructure:"user"`                               // -U, --user, the database user
	Host          string `yaml:"host" json:"host" mapstructure:"host"`                               // empty uses the local socket
	Port          int    `yaml:"port" json:"port" mapstructure:"port"`                               // zero uses the libpq default
	Password      string `yaml:"-" json:"-" mapstructure:"password"`                                 // prefer EXTUPDATE_DB_PASSWORD over the config file
	SSLMode       string `yaml:"sslmode" json:"sslmode" mapstructure:"sslmode"`                      // libpq sslmode
	MaintenanceDB string `yaml:"maintenance-db" json:"maintenance-db" mapstructure:"maintenance-db"` // the database used to drop and create the trial database
	Extension     string `yaml:"extension" json:"extension" mapstructure:"extension"`                // the extension under test
}

func (cfg database) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("db.name", "update_db")
	v.SetDefault("db.user", defaultUser())
	v.SetDefault("db.host", "")
	v.SetDefault("db.port", 0)
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.maintenance-db", "postgres")
	v.SetDefault("db.extension", "lantern")
}

func (cfg *database) parseConfigValues() error {
	if cfg.Name == "" {
		return fmt.Errorf("a database name is required")
	}
	if cfg.Name == cfg.MaintenanceDB {
		return fmt.Errorf("the trial database %q cannot be the maintenance database", cfg.Name)
	}
	if cfg.Extension == "" {
		return fmt.Errorf("an extension name is required")
	}
	return nil
}

func (cfg database) ToClientConfig() pgdb.Config {
	return pgdb.Config{
		Host:          cfg.Host,
		Port:          cfg.Port,
		User:          cfg.User,
		Password:      cfg.Password,
		SSLMode:       cfg.SSLMode,
		MaintenanceDB: cfg.MaintenanceDB,
	}
}

func defaultUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}
