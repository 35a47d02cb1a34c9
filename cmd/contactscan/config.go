package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nao1215/contactscan/internal/config"
)

// loadConfig builds a Config from the defaults and the configuration file.
// If the user explicitly specified a config file path, a missing file is an
// error; otherwise the defaults are used silently.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.ConfigFilePath = getStringFlag(cmd, "config")
	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.LogJSON = getBoolFlag(cmd, "log-json")
	cfg.MaskEmails = getBoolFlag(cmd, "mask-emails")

	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath == "" {
		if cfg.ConfigFilePath != "" {
			return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		return cfg, nil
	}

	file, err := config.LoadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	file.ApplyTo(cfg)

	return cfg, nil
}

// override copies a flag value into dst only when the user set the flag,
// so values from the configuration file survive flag defaults.
func override[T any](flags *pflag.FlagSet, name string, dst *T, get func(string) (T, error)) error {
	if !flags.Changed(name) {
		return nil
	}
	v, err := get(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
