package config

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"taxifare.predict.org/internal/models"
	"taxifare.predict.org/internal/report"
	"taxifare.predict.org/internal/utils"
)

// ValidateConfigFlags ensures that at most one settings source is specified:
// either a config file "--config-file" or a remote config URL "--config-url".
// With neither, the service runs on DefaultSettings.
//
// Returns an error if more than one input method is specified.
func ValidateConfigFlags(configFile, configURL *string) error {
	if (*configFile != "" && *configURL != "") || (*configFile != "" && len(flag.Args()) > 0) || (*configURL != "" && len(flag.Args()) > 0) {
		return fmt.Errorf("only one of --config-file or --config-url can be specified")
	}
	return nil
}

// decodeSettings overlays the JSON document on DefaultSettings, so a file only
// needs the keys it changes, then validates the result.
func decodeSettings(data []byte) (models.Settings, error) {
	settings := DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return models.Settings{}, fmt.Errorf("failed to unmarshal JSON: %v", err)
	}
	applyEnvOverrides(&settings)
	if err := settings.Validate(); err != nil {
		return models.Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

// refreshConfig periodically fetches settings from a remote URL and swaps them
// into cfg. Fetch or parse errors are logged and reported, and the previous
// settings stay in force. The routine stops when ctx is cancelled.
func refreshConfig(ctx context.Context, client *http.Client, configURL, configAuthUser, configAuthPass string, cfg *Config, logger *slog.Logger, interval time.Duration, maxRetries int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		settings, err := loadConfigFromURL(ctx, client, configURL, configAuthUser, configAuthPass, maxRetries)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("Stopping config refresh routine")
				return
			}
			report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
				Tags:  utils.MakeMap("config_url", configURL),
				Level: sentry.LevelError,
			})
			logger.Error("Failed to refresh remote config", "error", err)
		} else {
			cfg.UpdateSettings(settings)
			logger.Info("Successfully refreshed settings", "predict_url", settings.PredictURL, "geocoder", settings.Geocoder.Provider)
		}

		select {
		case <-ctx.Done():
			logger.Info("Stopping config refresh routine")
			return
		case <-ticker.C:
		}
	}
}

func loadConfigFromFile(filePath string) (models.Settings, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags:  utils.MakeMap("file_path", filePath),
			Level: sentry.LevelError,
		})
		return models.Settings{}, fmt.Errorf("failed to read config file: %v", err)
	}

	settings, err := decodeSettings(data)
	if err != nil {
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags:  utils.MakeMap("file_path", filePath),
			Level: sentry.LevelError,
		})
		return models.Settings{}, err
	}
	return settings, nil
}

func loadConfigFromURL(ctx context.Context, client *http.Client, url, authUser, authPass string, maxRetries int) (models.Settings, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Accept", "application/json")

	if authUser != "" && authPass != "" {
		req.SetBasicAuth(authUser, authPass)
	}

	resp, err := DoWithBackoff(ctx, client, req, maxRetries)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to fetch remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Settings{}, fmt.Errorf("remote config returned status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to read remote config: %v", err)
	}

	return decodeSettings(data)
}
