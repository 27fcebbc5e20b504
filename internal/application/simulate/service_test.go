package simulate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miragem-dev/miragem/internal/domain"
	"github.com/miragem-dev/miragem/internal/infrastructure/extract"
	"github.com/miragem-dev/miragem/internal/infrastructure/prompt"
	"github.com/miragem-dev/miragem/internal/pkg/logger"
	"github.com/miragem-dev/miragem/internal/ports"
)

func testConfig() domain.Config {
	return domain.Config{
		Preferences: domain.Preferences{DefaultModel: "flash", ImageModel: "imagem"},
		Models: []domain.ModelDefinition{
			{Name: "flash", ModelID: "gemini-2.5-flash"},
			{Name: "imagem", ModelID: "gemini-image"},
		},
		Retry:   domain.RetrySettings{MaxRetries: 3, InitialDelayMS: 1},
		Session: domain.SessionSettings{ContextWindow: 15, FlushIntervalMS: 300},
	}
}

type stubConfigProvider struct {
	cfg domain.Config
	err error
}

func (s stubConfigProvider) Load(context.Context) (domain.Config, error) {
	return s.cfg, s.err
}

type stubGenerator struct {
	model     domain.ModelDefinition
	replies   []string
	failures  []error
	calls     int
	image     ports.ImageResult
	imageReqs []ports.ImageRequest
}

func (g *stubGenerator) Name() string                  { return "stub" }
func (g *stubGenerator) Model() domain.ModelDefinition { return g.model }

func (g *stubGenerator) Generate(context.Context, ports.GenerateRequest) (ports.GenerateResponse, error) {
	idx := g.calls
	g.calls++
	if idx < len(g.failures) && g.failures[idx] != nil {
		return ports.GenerateResponse{}, g.failures[idx]
	}
	reply := "resposta padrão"
	if n := idx - len(g.failures); n >= 0 && n < len(g.replies) {
		reply = g.replies[n]
	} else if len(g.replies) > 0 {
		reply = g.replies[len(g.replies)-1]
	}
	return ports.GenerateResponse{Text: reply}, nil
}

func (g *stubGenerator) GenerateImage(_ context.Context, req ports.ImageRequest) (ports.ImageResult, error) {
	g.calls++
	g.imageReqs = append(g.imageReqs, req)
	if len(g.failures) > 0 && g.failures[0] != nil {
		return ports.ImageResult{}, g.failures[0]
	}
	return g.image, nil
}

type stubFactory struct {
	generator *stubGenerator
	built     int
}

func (f *stubFactory) ForModel(model domain.ModelDefinition) (ports.Generator, error) {
	f.built++
	f.generator.model = model
	return f.generator, nil
}

type stubGate struct {
	hasKey   bool
	requests int
}

func (g *stubGate) HasKey(domain.ModelDefinition) bool { return g.hasKey }
func (g *stubGate) Request(domain.ModelDefinition)     { g.requests++ }

type stubArchive struct {
	records []domain.ArchiveRecord
}

func (a *stubArchive) Save(record domain.ArchiveRecord) error { a.records = append(a.records, record); return nil }
func (a *stubArchive) Records(int, string) ([]domain.ArchiveRecord, error) {
	return a.records, nil
}
func (a *stubArchive) Clear() error            { return nil }
func (a *stubArchive) ExportJSON(string) error { return nil }
func (a *stubArchive) Path() string            { return "" }

type stubChartSink struct {
	path  string
	specs []domain.ChartSpec
}

func (c *stubChartSink) Render(spec domain.ChartSpec) (string, error) {
	c.specs = append(c.specs, spec)
	return c.path, nil
}

type stubImageSink struct {
	path  string
	saved []ports.ImageResult
}

func (s *stubImageSink) Save(image ports.ImageResult) (string, error) {
	s.saved = append(s.saved, image)
	return s.path, nil
}

func newService(generator *stubGenerator) (*Service, *stubFactory, *stubGate, *stubArchive) {
	factory := &stubFactory{generator: generator}
	gate := &stubGate{hasKey: true}
	store := &stubArchive{}
	svc := &Service{
		ConfigProvider: stubConfigProvider{cfg: testConfig()},
		Factory:        factory,
		Prompts:        prompt.NewBuilder(),
		Extractor:      extract.NewNormalizer(),
		Credentials:    gate,
		Archive:        store,
		Logger:         logger.New(false),
	}
	return svc, factory, gate, store
}

func TestRunNormalizesTerminalReplyAndArchives(t *testing.T) {
	generator := &stubGenerator{replies: []string{"```\nprojetos\n```"}}
	svc, _, _, store := newService(generator)

	result, err := svc.Run(context.Background(), domain.SimulatedRequest{
		Capability: domain.CapabilityRNT,
		Command:    "ls",
	}, "")
	require.NoError(t, err)

	assert.False(t, result.Failed())
	assert.Equal(t, "projetos", result.Response.Output, "fences must be stripped for terminal replies")
	assert.Equal(t, "flash", result.ModelUsed)
	assert.NotEmpty(t, result.RequestID)
	require.Len(t, store.records, 1)
	assert.Equal(t, domain.CapabilityRNT, store.records[0].Capability)
}

func TestRunRetriesThroughExecutorOnRateLimit(t *testing.T) {
	generator := &stubGenerator{
		failures: []error{
			&domain.GenerationError{Status: 429, Message: "quota"},
			&domain.GenerationError{Status: 429, Message: "quota"},
		},
		replies: []string{"pronto"},
	}
	svc, _, _, _ := newService(generator)

	result, err := svc.Run(context.Background(), domain.SimulatedRequest{
		Capability: domain.CapabilityTelnet,
		Command:    "uptime",
		Host:       "h",
	}, "")
	require.NoError(t, err)

	assert.False(t, result.Failed())
	assert.Equal(t, "pronto", result.Response.Output)
	assert.Equal(t, 3, generator.calls)
}

func TestRunMissingCredentialAsksOnceAndNeverCalls(t *testing.T) {
	generator := &stubGenerator{}
	svc, _, gate, _ := newService(generator)
	gate.hasKey = false

	result, err := svc.Run(context.Background(), domain.SimulatedRequest{
		Capability: domain.CapabilityChat,
		Message:    "oi",
	}, "")
	require.NoError(t, err)

	assert.True(t, result.Failed())
	assert.Equal(t, domain.CategoryInvalidCredential, result.Category)
	assert.Equal(t, 1, gate.requests)
	assert.Equal(t, 0, generator.calls)
}

func TestRunCredentialFailureInvalidatesSessionAndPromptsOnce(t *testing.T) {
	generator := &stubGenerator{
		failures: []error{&domain.GenerationError{Status: 404, Message: "Requested entity was not found."}},
	}
	svc, factory, gate, _ := newService(generator)

	result, err := svc.Run(context.Background(), domain.SimulatedRequest{
		Capability: domain.CapabilityChat,
		Message:    "oi",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, domain.CategoryInvalidCredential, result.Category)
	assert.Equal(t, domain.UserMessage(domain.CategoryInvalidCredential), result.ErrorMessage)
	assert.Equal(t, 1, gate.requests)
	assert.Equal(t, 1, generator.calls, "credential failures are never retried")

	// The cached session was invalidated: the next call rebuilds it.
	generator.failures = nil
	_, err = svc.Run(context.Background(), domain.SimulatedRequest{
		Capability: domain.CapabilityChat,
		Message:    "oi de novo",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, factory.built)
}

func TestRunFailureProducesLocalizedMessageAndArchiveEntry(t *testing.T) {
	generator := &stubGenerator{
		failures: []error{&domain.GenerationError{Message: "response blocked by safety policies"}},
	}
	svc, _, _, store := newService(generator)

	result, err := svc.Run(context.Background(), domain.SimulatedRequest{
		Capability: domain.CapabilityCOBOL,
		Source:     "DISPLAY 'X'.",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, domain.CategoryContentBlocked, result.Category)
	assert.NotContains(t, result.ErrorMessage, "safety policies", "raw detail must not leak to the user")
	require.Len(t, store.records, 1)
	assert.Equal(t, string(domain.CategoryContentBlocked), store.records[0].Category)
}

func TestRunRoutesChartToSink(t *testing.T) {
	generator := &stubGenerator{replies: []string{
		"SEÇÃO DE EXECUÇÃO: ok\n```grafico-json\n{\"data\":[{\"y\":[1]}]}\n```",
	}}
	svc, _, _, _ := newService(generator)
	sink := &stubChartSink{path: "/tmp/grafico.json"}
	svc.Charts = sink

	result, err := svc.Run(context.Background(), domain.SimulatedRequest{
		Capability: domain.CapabilityJulia,
		Source:     "plot(1:10)",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/grafico.json", result.ChartPath)
	require.Len(t, sink.specs, 1)
	assert.NotContains(t, result.Response.Output, "grafico-json")
}

func TestRunImageUsesImageModelAndSink(t *testing.T) {
	generator := &stubGenerator{image: ports.ImageResult{Data: []byte("png"), MIMEType: "image/png"}}
	svc, _, _, _ := newService(generator)
	sink := &stubImageSink{path: "/tmp/farol.png"}
	svc.Images = sink

	result, err := svc.Run(context.Background(), domain.SimulatedRequest{
		Capability: domain.CapabilityChat,
		Message:    "um farol ao entardecer",
		WantImage:  true,
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "imagem", result.ModelUsed)
	assert.Equal(t, "/tmp/farol.png", result.ImagePath)
	require.Len(t, sink.saved, 1)
}

func TestRunImageEditThreadsLastArtifact(t *testing.T) {
	base := filepath.Join(t.TempDir(), "farol.png")
	require.NoError(t, os.WriteFile(base, []byte("png-original"), 0o600))

	generator := &stubGenerator{image: ports.ImageResult{Data: []byte("png"), MIMEType: "image/png"}}
	svc, _, _, _ := newService(generator)

	_, err := svc.Run(context.Background(), domain.SimulatedRequest{
		Capability: domain.CapabilityChat,
		Message:    "agora ao amanhecer",
		WantImage:  true,
		LastArtifact: &domain.Artifact{
			Prompt:   "um farol ao entardecer",
			Path:     base,
			MIMEType: "image/png",
		},
	}, "")
	require.NoError(t, err)

	require.Len(t, generator.imageReqs, 1)
	assert.Equal(t, []byte("png-original"), generator.imageReqs[0].BaseImage)
	assert.Equal(t, "image/png", generator.imageReqs[0].MIMEType)
}

func TestRunModelOverrideWins(t *testing.T) {
	generator := &stubGenerator{replies: []string{"ok"}}
	svc, _, _, _ := newService(generator)

	result, err := svc.Run(context.Background(), domain.SimulatedRequest{
		Capability: domain.CapabilityChat,
		Message:    "oi",
	}, "imagem")
	require.NoError(t, err)
	assert.Equal(t, "imagem", result.ModelUsed)
}

type memorySession struct {
	transcript []string
}

func (m *memorySession) Key() string                          { return "mem" }
func (m *memorySession) Transcript() []string                 { return m.transcript }
func (m *memorySession) ContextWindow() []domain.Interaction  { return nil }
func (m *memorySession) LastArtifact() *domain.Artifact       { return nil }
func (m *memorySession) SetLastArtifact(*domain.Artifact)     {}
func (m *memorySession) Append(lines ...string)               { m.transcript = append(m.transcript, lines...) }
func (m *memorySession) AppendInteraction(domain.Interaction) {}
func (m *memorySession) ClearTranscript() error               { m.transcript = nil; return nil }
func (m *memorySession) FullReset() error                     { m.transcript = nil; return nil }
func (m *memorySession) Flush() error                         { return nil }
func (m *memorySession) Close() error                         { return nil }

func TestBootstrapRunsOnlyOnEmptyTranscript(t *testing.T) {
	store := &memorySession{}
	var waits int
	var emitted []string
	sleep := func(time.Duration) { waits++ }
	emit := func(line string) { emitted = append(emitted, line) }

	lines := Bootstrap(store, domain.CapabilityRNT, sleep, emit)
	assert.NotEmpty(t, lines)
	assert.Equal(t, len(lines), waits)
	assert.Equal(t, lines, store.Transcript())
	assert.Equal(t, lines, emitted, "boot lines surface as they land")

	// Restored session: boot must not replay.
	again := Bootstrap(store, domain.CapabilityRNT, sleep, emit)
	assert.Nil(t, again)
	assert.Equal(t, lines, store.Transcript())
	assert.Len(t, emitted, len(lines))
}
