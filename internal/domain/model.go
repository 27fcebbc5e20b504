// Package domain defines core business entities and value objects for miragem.
//
// This file contains generation-service model definitions used throughout the
// application. The domain layer is independent of infrastructure concerns and
// represents pure business logic and data structures.
package domain

// ModelDefinition describes a generation-service model declared in the config
// file. Each model represents one endpoint plus its authentication and
// generation parameters.
type ModelDefinition struct {
	Name       string `yaml:"name"`
	Endpoint   string `yaml:"endpoint"`
	AuthEnvVar string `yaml:"auth_env_var"`
	ModelID    string `yaml:"model_id"`
	MaxTokens  int    `yaml:"max_tokens"`
}

const (
	// DefaultEndpoint is the generation-service API root used when a model
	// definition leaves the endpoint empty.
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultAuthEnvVar names the environment variable consulted for the
	// API credential when a model definition does not override it.
	DefaultAuthEnvVar = "GEMINI_API_KEY"
)

// EndpointOrDefault returns the configured endpoint with default fallback.
func (m ModelDefinition) EndpointOrDefault() string {
	if m.Endpoint == "" {
		return DefaultEndpoint
	}
	return m.Endpoint
}

// AuthEnvVarOrDefault returns the credential environment variable with
// default fallback.
func (m ModelDefinition) AuthEnvVarOrDefault() string {
	if m.AuthEnvVar == "" {
		return DefaultAuthEnvVar
	}
	return m.AuthEnvVar
}
