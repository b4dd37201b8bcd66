// Package config loads process configuration for the matching core's
// transport adapter: fee schedule, snapshot directory, listen address
// and log level. Layered the way the pack's polymarket-mm and tradSys
// examples do it: defaults, then an optional config file, then
// SKOLL_-prefixed environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the fully-resolved process configuration.
type Config struct {
	MakerFeeBps    int64  `mapstructure:"maker_fee_bps"`
	TakerFeeBps    int64  `mapstructure:"taker_fee_bps"`
	StateDir       string `mapstructure:"state_dir"`
	ListenAddress  string `mapstructure:"listen_address"`
	ListenPort     int    `mapstructure:"listen_port"`
	MetricsAddress string `mapstructure:"metrics_address"`
	LogLevel       string `mapstructure:"log_level"`
}

// Load resolves configuration from (in increasing priority) built-in
// defaults, an optional file at path (ignored if empty or missing),
// and SKOLL_*  environment variables.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("maker_fee_bps", 10)
	v.SetDefault("taker_fee_bps", 20)
	v.SetDefault("state_dir", "./state")
	v.SetDefault("listen_address", "0.0.0.0")
	v.SetDefault("listen_port", 9001)
	v.SetDefault("metrics_address", "0.0.0.0:9090")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("skoll")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
