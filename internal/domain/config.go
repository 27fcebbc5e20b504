package domain

// Config mirrors ~/.miragem/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Preferences         Preferences       `yaml:"preferences"`
	Models              []ModelDefinition `yaml:"models"`
	Retry               RetrySettings     `yaml:"retry"`
	Session             SessionSettings   `yaml:"session"`
}

// Preferences captures user level toggles.
type Preferences struct {
	DefaultModel   string `yaml:"default_model"`
	ImageModel     string `yaml:"image_model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// RetrySettings controls the backoff executor wrapping every generation call.
type RetrySettings struct {
	MaxRetries     int `yaml:"max_retries"`
	InitialDelayMS int `yaml:"initial_delay_ms"`
}

// SessionSettings controls the persisted terminal sessions.
type SessionSettings struct {
	ContextWindow   int    `yaml:"context_window"`
	FlushIntervalMS int    `yaml:"flush_interval_ms"`
	Dir             string `yaml:"dir"`
}

// FindModel looks a model definition up by name.
func FindModel(cfg Config, name string) (ModelDefinition, bool) {
	for _, model := range cfg.Models {
		if model.Name == name {
			return model, true
		}
	}
	return ModelDefinition{}, false
}
