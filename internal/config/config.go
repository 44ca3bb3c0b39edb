package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tobsdb/flatdb/pkg"
)

// ENV_PREFIX is prepended to every key when read from the environment, e.g. TDB_DB_PATH.
const ENV_PREFIX = "TDB"

type Config struct {
	Port int `mapstructure:"port"`
	// DBPath is the directory the database is written to.
	DBPath string `mapstructure:"db_path"`
	// SchemaPath is read when DBPath holds no saved schema yet.
	SchemaPath      string `mapstructure:"schema_path"`
	InMem           bool   `mapstructure:"in_mem"`
	WriteIntervalMs int    `mapstructure:"write_interval"`
	LogLevel        string `mapstructure:"log_level"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", 7085)
	v.SetDefault("db_path", "")
	v.SetDefault("schema_path", "./schema.tdb")
	v.SetDefault("in_mem", false)
	v.SetDefault("write_interval", 1000)
	v.SetDefault("log_level", "error")
}

// New returns a viper instance with defaults set and TDB_ environment variables bound.
// Flags bound to it later take precedence over the environment.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file into v and unmarshals the result.
func Load(v *viper.Viper, config_file string) (*Config, error) {
	if len(config_file) > 0 {
		v.SetConfigFile(config_file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("Invalid port: %d", c.Port)
	}
	if !c.InMem && len(c.DBPath) == 0 {
		return fmt.Errorf("Must either provide db path or use in-memory mode")
	}
	if c.WriteIntervalMs < 0 {
		return fmt.Errorf("Invalid write interval: %d", c.WriteIntervalMs)
	}
	if _, err := pkg.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c *Config) WriteInterval() time.Duration {
	return time.Duration(c.WriteIntervalMs) * time.Millisecond
}

func (c *Config) Level() pkg.LogLevel {
	level, _ := pkg.ParseLogLevel(c.LogLevel)
	return level
}
