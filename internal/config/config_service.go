package config

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"taxifare.predict.org/internal/models"
	"taxifare.predict.org/internal/report"
)

// remoteConfigRetries bounds how often one refresh retries a flaky config host.
const remoteConfigRetries = 3

// ConfigService holds dependencies and provides config operations.
type ConfigService struct {
	Logger *slog.Logger
	Client *http.Client
	Config *Config
}

// NewConfigService creates a new ConfigService instance with the provided logger and HTTP client.
func NewConfigService(logger *slog.Logger, client *http.Client, config *Config) *ConfigService {
	return &ConfigService{
		Logger: logger,
		Client: client,
		Config: config,
	}
}

// RefreshConfig blocks, re-fetching settings from url every interval until ctx is cancelled.
func (cs *ConfigService) RefreshConfig(ctx context.Context, url, authUser, authPass string, interval time.Duration) {
	refreshConfig(ctx, cs.Client, url, authUser, authPass, cs.Config, cs.Logger, interval, remoteConfigRetries)
}

// LoadSettings resolves the startup settings from the flags: a file, a URL,
// or DefaultSettings (with environment overrides) when both are empty.
func LoadSettings(ctx context.Context, client *http.Client, configFile, configURL, authUser, authPass string) (models.Settings, error) {
	switch {
	case configFile != "":
		return LoadConfigFromFile(configFile)
	case configURL != "":
		return LoadConfigFromURL(ctx, client, configURL, authUser, authPass)
	default:
		settings := DefaultSettings()
		applyEnvOverrides(&settings)
		return settings, settings.Validate()
	}
}

// LoadConfigFromFile reads settings from a local JSON file.
func LoadConfigFromFile(filePath string) (models.Settings, error) {
	settings, err := loadConfigFromFile(filePath)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to load config from file %s: %w", filePath, err)
	}
	return settings, nil
}

// LoadConfigFromURL fetches settings from a remote JSON document.
func LoadConfigFromURL(ctx context.Context, client *http.Client, url, authUser, authPass string) (models.Settings, error) {
	settings, err := loadConfigFromURL(ctx, client, url, authUser, authPass, remoteConfigRetries)
	if err != nil {
		err := fmt.Errorf("failed to load config from URL %s: %w", url, err)
		report.ReportUpstreamError("config", err, map[string]interface{}{
			"config_url": url,
		})
		return models.Settings{}, err
	}
	return settings, nil
}

