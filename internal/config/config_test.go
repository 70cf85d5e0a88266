package config

import (
	"sync"
	"testing"
)

func TestConfigSettingsAreSwappedSafely(t *testing.T) {
	cfg := NewConfig(4000, "testing", DefaultSettings())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s := DefaultSettings()
			s.PredictURL = "https://other.example.com/predict"
			cfg.UpdateSettings(s)
		}()
		go func() {
			defer wg.Done()
			_ = cfg.GetSettings().PredictURL
		}()
	}
	wg.Wait()

	if got := cfg.GetSettings().PredictURL; got != "https://other.example.com/predict" {
		t.Errorf("unexpected predict URL after updates: %q", got)
	}
}

func TestGetSettingsReturnsCopy(t *testing.T) {
	cfg := NewConfig(4000, "testing", DefaultSettings())

	s := cfg.GetSettings()
	s.PredictURL = "mutated"

	if cfg.GetSettings().PredictURL == "mutated" {
		t.Error("mutating the returned settings changed the config")
	}
}
