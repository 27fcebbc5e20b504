// Package simulate orchestrates one simulated-execution round trip: build
// the instruction, call the generation service through the retry executor,
// classify any failure, normalize the reply and archive the interaction.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/miragem-dev/miragem/internal/domain"
	"github.com/miragem-dev/miragem/internal/infrastructure/retry"
	"github.com/miragem-dev/miragem/internal/ports"
)

// Service wires the ports together. All fields must be set except Charts,
// Images and Credentials, which are optional collaborators.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Factory        ports.GeneratorFactory
	Prompts        ports.PromptBuilder
	Extractor      ports.Extractor
	Credentials    ports.CredentialGate
	Charts         ports.ChartSink
	Images         ports.ImageSink
	Archive        ports.ArchiveStore
	Logger         ports.Logger

	// The generator is an explicit session with the service: constructed on
	// first use, reused across calls, invalidated on credential failure.
	mu        sync.Mutex
	generator ports.Generator
	genModel  string
}

// Run processes a single simulated request. The returned result carries
// either the normalized response or a localized error message; a non-nil
// error is reserved for configuration and wiring problems.
func (s *Service) Run(ctx context.Context, req domain.SimulatedRequest, modelOverride string) (domain.SimulateResult, error) {
	if s.ConfigProvider == nil || s.Factory == nil || s.Prompts == nil ||
		s.Extractor == nil || s.Logger == nil {
		return domain.SimulateResult{}, errors.New("simulate.Service dependencies not satisfied")
	}

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.SimulateResult{}, fmt.Errorf("load config: %w", err)
	}

	model, err := pickModel(cfg, req, modelOverride)
	if err != nil {
		return domain.SimulateResult{}, err
	}

	result := domain.SimulateResult{
		RequestID: uuid.New().String(),
		ModelUsed: model.Name,
	}

	if s.Credentials != nil && !s.Credentials.HasKey(model) {
		s.Credentials.Request(model)
		result.Category = domain.CategoryInvalidCredential
		result.ErrorMessage = domain.UserMessage(domain.CategoryInvalidCredential)
		return result, nil
	}

	instruction, err := s.Prompts.Build(req)
	if err != nil {
		return domain.SimulateResult{}, err
	}

	generator, err := s.sessionGenerator(model)
	if err != nil {
		return domain.SimulateResult{}, fmt.Errorf("generator init: %w", err)
	}

	s.Logger.Info("calling generation service", map[string]interface{}{
		"request_id": result.RequestID,
		"capability": string(req.Capability),
		"model":      model.ModelID,
	})

	policy := retry.FromSettings(cfg.Retry)
	if req.WantImage {
		s.runImage(ctx, policy, generator, req, instruction, &result)
	} else {
		s.runText(ctx, policy, generator, req, instruction, &result)
	}

	s.archive(req, instruction, result)
	return result, nil
}

func (s *Service) runText(ctx context.Context, policy retry.Policy, generator ports.Generator, req domain.SimulatedRequest, instruction string, result *domain.SimulateResult) {
	raw, err := retry.Do(ctx, policy, s.Logger, func(callCtx context.Context) (ports.GenerateResponse, error) {
		return generator.Generate(callCtx, ports.GenerateRequest{
			Instruction: instruction,
			JSONReply:   req.Capability == domain.CapabilityFramework,
		})
	})
	if err != nil {
		s.recordFailure(err, result)
		return
	}

	result.Response = s.Extractor.Normalize(req.Capability, raw)
	if result.Response.Chart != nil && s.Charts != nil {
		path, renderErr := s.Charts.Render(*result.Response.Chart)
		if renderErr != nil {
			s.Logger.Warn("chart sink failed", map[string]interface{}{"error": renderErr.Error()})
		} else {
			result.ChartPath = path
		}
	}
}

func (s *Service) runImage(ctx context.Context, policy retry.Policy, generator ports.Generator, req domain.SimulatedRequest, instruction string, result *domain.SimulateResult) {
	imageReq := ports.ImageRequest{Prompt: instruction}
	if req.LastArtifact != nil {
		// A previous image turns this request into an edit of it.
		if base, readErr := os.ReadFile(req.LastArtifact.Path); readErr == nil {
			imageReq.BaseImage = base
			imageReq.MIMEType = req.LastArtifact.MIMEType
		} else {
			s.Logger.Warn("base image unavailable, generating from scratch", map[string]interface{}{
				"path": req.LastArtifact.Path,
			})
		}
	}

	image, err := retry.Do(ctx, policy, s.Logger, func(callCtx context.Context) (ports.ImageResult, error) {
		return generator.GenerateImage(callCtx, imageReq)
	})
	if err != nil {
		s.recordFailure(err, result)
		return
	}

	result.Response.Output = "Imagem gerada."
	if s.Images == nil {
		return
	}
	path, saveErr := s.Images.Save(image)
	if saveErr != nil {
		s.Logger.Warn("image sink failed", map[string]interface{}{"error": saveErr.Error()})
		return
	}
	result.ImagePath = path
}

// recordFailure converts the final failure into the localized message shown
// to the user. A credential verdict also tears the cached session down and
// asks for re-authentication, exactly once, with no automatic retry.
func (s *Service) recordFailure(err error, result *domain.SimulateResult) {
	category := domain.ClassifyError(err)
	result.Category = category
	result.ErrorMessage = domain.UserMessage(category)

	s.Logger.Error("generation call failed", err, map[string]interface{}{
		"request_id": result.RequestID,
		"category":   string(category),
	})

	if category == domain.CategoryInvalidCredential {
		s.invalidateSession()
		if s.Credentials != nil {
			s.Credentials.Request(domain.ModelDefinition{Name: result.ModelUsed})
		}
	}
}

// archive saves the interaction durably. Archive problems are logged, never
// surfaced: the transcript already has its line.
func (s *Service) archive(req domain.SimulatedRequest, instruction string, result domain.SimulateResult) {
	if s.Archive == nil {
		return
	}
	reply := result.Response.Output
	if result.Failed() {
		reply = result.ErrorMessage
	}
	record := domain.ArchiveRecord{
		RequestID:  result.RequestID,
		Timestamp:  time.Now().UTC(),
		Capability: req.Capability,
		Prompt:     instruction,
		Reply:      reply,
		Model:      result.ModelUsed,
		Category:   string(result.Category),
	}
	if err := s.Archive.Save(record); err != nil {
		s.Logger.Warn("archive save failed", map[string]interface{}{"error": err.Error()})
	}
}

// sessionGenerator returns the cached generator, rebuilding it when the
// model changed or the previous session was invalidated.
func (s *Service) sessionGenerator(model domain.ModelDefinition) (ports.Generator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generator != nil && s.genModel == model.Name {
		return s.generator, nil
	}
	generator, err := s.Factory.ForModel(model)
	if err != nil {
		return nil, err
	}
	s.generator = generator
	s.genModel = model.Name
	return generator, nil
}

func (s *Service) invalidateSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generator = nil
	s.genModel = ""
}

func pickModel(cfg domain.Config, req domain.SimulatedRequest, override string) (domain.ModelDefinition, error) {
	name := override
	if name == "" {
		if req.WantImage && cfg.Preferences.ImageModel != "" {
			name = cfg.Preferences.ImageModel
		} else {
			name = cfg.Preferences.DefaultModel
		}
	}
	if name == "" && len(cfg.Models) > 0 {
		return cfg.Models[0], nil
	}
	if model, ok := domain.FindModel(cfg, name); ok {
		return model, nil
	}
	return domain.ModelDefinition{}, fmt.Errorf("model %s not configured", name)
}

// Bootstrap appends the capability's boot sequence to an empty transcript,
// pausing between lines, and returns whatever was appended. Each line is
// handed to emit right after it lands, so an interactive surface can show
// the boot as it happens. A restored (non-empty) transcript skips the boot
// entirely.
func Bootstrap(store ports.SessionStore, capability domain.Capability, sleep func(time.Duration), emit func(string)) []string {
	if len(store.Transcript()) > 0 {
		return nil
	}
	if sleep == nil {
		sleep = time.Sleep
	}
	lines := domain.BootSequence(capability)
	for _, line := range lines {
		sleep(domain.BootDelay)
		store.Append(line)
		if emit != nil {
			emit(line)
		}
	}
	return lines
}
