package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/leancoffee-api/internal/config"
)

// loadAppConfig loads the application configuration, reading config.yaml
// from configDir when one is given.
func loadAppConfig(configDir string) (*config.Config, error) {
	var paths []string
	if configDir != "" {
		paths = []string{configDir}
	}

	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"store_driver", cfg.Store.Driver)

	return cfg, nil
}
