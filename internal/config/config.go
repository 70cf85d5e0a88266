package config

import (
	"sync"
	"time"

	"taxifare.predict.org/internal/models"
)

// Config holds all the configuration settings for our application.
// Port and Env are fixed at startup; Settings may be replaced by the
// remote config refresh while requests are being served.
type Config struct {
	Port            int
	Env             string
	RefreshInterval time.Duration
	mu              sync.RWMutex
	settings        models.Settings
}

// NewConfig creates a new instance of a Config struct.
func NewConfig(port int, env string, settings models.Settings) *Config {
	return &Config{
		Port:            port,
		Env:             env,
		RefreshInterval: time.Minute,
		settings:        settings,
	}
}

// UpdateSettings safely swaps the runtime settings.
func (cfg *Config) UpdateSettings(settings models.Settings) {
	cfg.mu.Lock()
	defer cfg.mu.Unlock()
	cfg.settings = settings
}

// GetSettings returns a copy of the current settings. Callers should read the
// settings once per request so a refresh cannot change them halfway through.
func (cfg *Config) GetSettings() models.Settings {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()
	return cfg.settings
}
