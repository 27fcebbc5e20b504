package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miragem-dev/miragem/internal/domain"
)

func validConfig() domain.Config {
	return domain.Config{
		Preferences: domain.Preferences{DefaultModel: "flash"},
		Models: []domain.ModelDefinition{
			{Name: "flash", ModelID: "gemini-2.5-flash"},
		},
		Retry:   domain.RetrySettings{MaxRetries: 3, InitialDelayMS: 2000},
		Session: domain.SessionSettings{ContextWindow: 15, FlushIntervalMS: 300},
	}
}

func TestValidateAcceptsDefaultShape(t *testing.T) {
	require.NoError(t, Validate(validConfig()))
}

func TestValidateRejectsEmptyModels(t *testing.T) {
	cfg := validConfig()
	cfg.Models = nil
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsUnknownDefaultModel(t *testing.T) {
	cfg := validConfig()
	cfg.Preferences.DefaultModel = "inexistente"
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsModelWithoutID(t *testing.T) {
	cfg := validConfig()
	cfg.Models[0].ModelID = ""
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsZeroContextWindow(t *testing.T) {
	cfg := validConfig()
	cfg.Session.ContextWindow = 0
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsUnknownImageModel(t *testing.T) {
	cfg := validConfig()
	cfg.Preferences.ImageModel = "fantasma"
	assert.Error(t, Validate(cfg))
}
