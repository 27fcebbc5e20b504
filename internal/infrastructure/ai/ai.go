// Package ai provides the generation-service factory and HTTP provider.
//
// The provider is configuration-driven: each model definition carries its
// endpoint, model ID and credential environment variable, and the single
// generic HTTP client serves every capability. Nothing here knows what the
// instruction text simulates.
package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/miragem-dev/miragem/internal/domain"
	"github.com/miragem-dev/miragem/internal/ports"
)

const providerName = "gemini-http"

// Factory creates generator instances based on model definitions.
// It maintains a single HTTP client shared across all providers.
type Factory struct {
	httpClient *http.Client
}

// NewFactory creates a new provider factory with a configured HTTP client.
func NewFactory() *Factory {
	return &Factory{
		httpClient: &http.Client{Timeout: domain.DefaultHTTPClientTimeout},
	}
}

// ForModel creates a generator for any model definition.
func (f *Factory) ForModel(model domain.ModelDefinition) (ports.Generator, error) {
	if model.ModelID == "" {
		return nil, fmt.Errorf("model %q has no model_id", model.Name)
	}
	return &httpGenerator{model: model, httpClient: f.httpClient}, nil
}

var _ ports.GeneratorFactory = (*Factory)(nil)

// httpGenerator talks to the generation service's generateContent endpoint.
type httpGenerator struct {
	model      domain.ModelDefinition
	httpClient *http.Client
}

func (g *httpGenerator) Name() string {
	return providerName
}

func (g *httpGenerator) Model() domain.ModelDefinition {
	return g.model
}

func (g *httpGenerator) Generate(ctx context.Context, req ports.GenerateRequest) (ports.GenerateResponse, error) {
	body := generateContentRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: req.Instruction}},
		}},
	}
	if req.JSONReply {
		body.GenerationConfig = &generationConfig{ResponseMIMEType: "application/json"}
	}
	if g.model.MaxTokens > 0 {
		if body.GenerationConfig == nil {
			body.GenerationConfig = &generationConfig{}
		}
		body.GenerationConfig.MaxOutputTokens = g.model.MaxTokens
	}

	raw, err := g.post(ctx, g.model.ModelID, body)
	if err != nil {
		return ports.GenerateResponse{}, err
	}
	return parseGenerateResponse(raw)
}

func (g *httpGenerator) GenerateImage(ctx context.Context, req ports.ImageRequest) (ports.ImageResult, error) {
	parts := []part{{Text: req.Prompt}}
	if len(req.BaseImage) > 0 {
		parts = append(parts, part{InlineData: &inlineData{
			MIMEType: req.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(req.BaseImage),
		}})
	}

	raw, err := g.post(ctx, g.model.ModelID, generateContentRequest{
		Contents: []content{{Role: "user", Parts: parts}},
	})
	if err != nil {
		return ports.ImageResult{}, err
	}
	return parseImageResponse(raw)
}

// post sends one generateContent call and surfaces service failures as
// *domain.GenerationError so the classifier sees status and message intact.
func (g *httpGenerator) post(ctx context.Context, modelID string, body generateContentRequest) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(g.model.EndpointOrDefault(), "/"), modelID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	apiKey := os.Getenv(g.model.AuthEnvVarOrDefault())
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key: set %s environment variable", g.model.AuthEnvVarOrDefault())
	}
	httpReq.Header.Set("x-goog-api-key", apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	var responseBody bytes.Buffer
	if _, err := responseBody.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &domain.GenerationError{
			Status:  resp.StatusCode,
			Message: serviceErrorMessage(responseBody.Bytes(), resp.Status),
		}
	}
	return responseBody.Bytes(), nil
}

// serviceErrorMessage digs the human-readable message out of the service's
// error envelope, falling back to the HTTP status line.
func serviceErrorMessage(body []byte, fallback string) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		if envelope.Error.Status != "" {
			return envelope.Error.Message + " (" + envelope.Error.Status + ")"
		}
		return envelope.Error.Message
	}
	return fallback
}
