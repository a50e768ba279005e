package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the merged file + flag configuration for a bundle run. File keys
// live in .bough.yaml; any flag explicitly set on the command line wins.
type Config struct {
	Mode       string            `mapstructure:"mode"`
	Out        string            `mapstructure:"out"`
	Engine     string            `mapstructure:"engine"`
	Extensions []string          `mapstructure:"extensions"`
	Languages  map[string]string `mapstructure:"languages"`
	OrderHint  []string          `mapstructure:"order_hint"`
	Attribute  string            `mapstructure:"attribute"`
	Cache      bool              `mapstructure:"cache"`
	CacheDB    string            `mapstructure:"cache_db"`
}

// loadConfig reads .bough.yaml from the target directory (or an explicit
// --config path). A missing config file is not an error; defaults apply.
func loadConfig(explicit, targetDir string) (*Config, error) {
	v := viper.New()
	v.SetDefault("mode", "full")
	v.SetDefault("engine", "")

	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", explicit, err)
		}
	} else {
		v.SetConfigName(".bough")
		v.SetConfigType("yaml")
		v.AddConfigPath(targetDir)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// mergeFlags overlays explicitly set command-line flags onto the file config.
func mergeFlags(cmd *cobra.Command, cfg *Config) {
	if cmd.Flags().Changed("mode") {
		cfg.Mode = flagMode
	}
	if cmd.Flags().Changed("out") {
		cfg.Out = flagOut
	}
	if cmd.Flags().Changed("engine") {
		cfg.Engine = flagEngine
	}
	if cmd.Flags().Changed("ext") {
		cfg.Extensions = flagExts
	}
	if cmd.Flags().Changed("attribute") {
		cfg.Attribute = flagAttribute
	}
	if cmd.Flags().Changed("order") {
		cfg.OrderHint = flagOrder
	}
	if cmd.Flags().Changed("cache") {
		cfg.Cache = flagCache
	}
	if cmd.Flags().Changed("db") {
		cfg.CacheDB = flagDB
	}
}
