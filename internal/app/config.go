package app

import (
	"context"

	"github.com/oshokin/httpreq/internal/config"
	"github.com/oshokin/httpreq/internal/logger"
)

// ExecuteConfigInitCommand writes a configuration file filled with the defaults.
func ExecuteConfigInitCommand(ctx context.Context, configFilename string, force bool) error {
	if err := config.SaveConfig(config.Default(), configFilename, force); err != nil {
		return err
	}

	if configFilename == "" {
		configFilename = config.DefaultConfigFilename
	}

	logger.Infof(ctx, "Configuration written to '%s'", configFilename)

	return nil
}

// ExecuteConfigSetCommand updates one key in the configuration file.
// The updated file must still load and validate.
func ExecuteConfigSetCommand(ctx context.Context, configFilename, key, value string) error {
	if err := config.SetConfigValue(configFilename, key, value); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configFilename)
	if err != nil {
		return err
	}

	if err = config.ValidateConfig(cfg); err != nil {
		logger.Warnf(ctx, "Configuration saved but is invalid: %v", err)

		return err
	}

	logger.Infof(ctx, "Set '%s' to '%s'", key, value)

	return nil
}
