package config

import (
	"errors"
	"fmt"

	"github.com/miragem-dev/miragem/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if len(cfg.Models) == 0 {
		return errors.New("at least one model must be configured")
	}
	name := cfg.Preferences.DefaultModel
	if name == "" {
		name = cfg.Models[0].Name
	}
	if _, ok := domain.FindModel(cfg, name); !ok {
		return fmt.Errorf("default model %s not found in models list", name)
	}
	if cfg.Preferences.ImageModel != "" {
		if _, ok := domain.FindModel(cfg, cfg.Preferences.ImageModel); !ok {
			return fmt.Errorf("image model %s not found in models list", cfg.Preferences.ImageModel)
		}
	}
	for _, model := range cfg.Models {
		if model.Name == "" {
			return errors.New("every model needs a name")
		}
		if model.ModelID == "" {
			return fmt.Errorf("model %s needs a model_id", model.Name)
		}
	}
	if err := validateRetry(cfg.Retry); err != nil {
		return err
	}
	return validateSession(cfg.Session)
}

func validateRetry(retry domain.RetrySettings) error {
	if retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must be >= 0")
	}
	if retry.InitialDelayMS < 0 {
		return fmt.Errorf("retry.initial_delay_ms must be >= 0")
	}
	return nil
}

func validateSession(session domain.SessionSettings) error {
	if session.ContextWindow <= 0 {
		return fmt.Errorf("session.context_window must be > 0")
	}
	if session.FlushIntervalMS <= 0 {
		return fmt.Errorf("session.flush_interval_ms must be > 0")
	}
	return nil
}
