// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and
// external adapters (infrastructure). The application depends on these
// abstractions only; the generation service, durable session storage, chart
// surface and CLI are all adapters behind them.
package ports

import (
	"context"

	"github.com/miragem-dev/miragem/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.miragem/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// GeneratorFactory builds generator instances for configured models.
type GeneratorFactory interface {
	ForModel(domain.ModelDefinition) (Generator, error)
}

// Generator is the single boundary to the external generation service. It is
// deliberately ignorant of capabilities: it receives finished instruction
// text and returns whatever the service answered.
type Generator interface {
	Name() string
	Model() domain.ModelDefinition
	Generate(context.Context, GenerateRequest) (GenerateResponse, error)
	GenerateImage(context.Context, ImageRequest) (ImageResult, error)
}

// GenerateRequest carries one finished instruction to the service.
type GenerateRequest struct {
	Instruction string
	// JSONReply asks the service for a machine-parseable JSON document
	// instead of free text (framework capability).
	JSONReply bool
}

// GenerateResponse is the raw service reply before extraction.
type GenerateResponse struct {
	Text      string
	Citations []domain.Citation
}

// ImageRequest asks the service to generate or edit an image. BaseImage is
// set only for edits.
type ImageRequest struct {
	Prompt    string
	BaseImage []byte
	MIMEType  string
}

// ImageResult holds the produced image bytes.
type ImageResult struct {
	Data     []byte
	MIMEType string
}

// PromptBuilder turns a simulated request into the instruction text sent to
// the generation service. String construction only.
type PromptBuilder interface {
	Build(domain.SimulatedRequest) (string, error)
}

// Extractor normalizes a raw reply into the structured shape the UI expects.
// It never fails on malformed model output; salvage plus a visible notice is
// always preferred over an error.
type Extractor interface {
	Normalize(domain.Capability, GenerateResponse) domain.SimulatedResponse
}

// SessionStore owns one surface's transcript and bounded context buffer,
// mirrored to durable storage by a coalescing writer.
type SessionStore interface {
	Key() string
	Transcript() []string
	ContextWindow() []domain.Interaction
	LastArtifact() *domain.Artifact
	SetLastArtifact(*domain.Artifact)
	Append(lines ...string)
	AppendInteraction(domain.Interaction)
	ClearTranscript() error
	FullReset() error
	Flush() error
	Close() error
}

// SessionOpener hydrates (or creates) the store for a given storage key.
type SessionOpener interface {
	Open(key string, window int) (SessionStore, error)
}

// ArchiveStore persists completed interactions durably for later inspection.
type ArchiveStore interface {
	Save(domain.ArchiveRecord) error
	Records(limit int, search string) ([]domain.ArchiveRecord, error)
	Clear() error
	ExportJSON(dest string) error
	Path() string
}

// CredentialGate abstracts the host-provided credential-selection capability.
// Request is side-effecting and is invoked at most once per credential
// failure, never retried automatically.
type CredentialGate interface {
	HasKey(domain.ModelDefinition) bool
	Request(domain.ModelDefinition)
}

// ChartSink consumes a chart-specification document and returns where it was
// rendered. The core never depends on what the sink did with it.
type ChartSink interface {
	Render(domain.ChartSpec) (string, error)
}

// ImageSink stores produced image bytes and returns their location.
type ImageSink interface {
	Save(ImageResult) (string, error)
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stderr, files).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
