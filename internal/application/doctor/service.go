// Package doctor runs environment diagnostics: configuration health,
// credential presence, session storage and the interaction archive.
package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	configapp "github.com/miragem-dev/miragem/internal/application/config"
	"github.com/miragem-dev/miragem/internal/domain"
	"github.com/miragem-dev/miragem/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Archive        ports.ArchiveStore

	// Getenv is swappable for tests; defaults to os.Getenv.
	Getenv func(string) string
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Configuração", fmt.Sprintf("falha ao carregar: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}

	if err := configapp.Validate(cfg); err != nil {
		checks = append(checks, fail("Configuração", err.Error()))
	} else {
		checks = append(checks, ok("Configuração", fmt.Sprintf("versão %s, %d modelo(s)", cfg.ConfigFormatVersion, len(cfg.Models))))
	}

	checks = append(checks, s.credentialCheck(cfg.Models))
	checks = append(checks, sessionDirCheck(cfg.Session.Dir))

	if s.Archive != nil {
		checks = append(checks, archiveCheck(s.Archive))
	}

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) credentialCheck(models []domain.ModelDefinition) domain.HealthCheck {
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	var missing []string
	seen := map[string]bool{}
	for _, model := range models {
		envVar := model.AuthEnvVarOrDefault()
		if seen[envVar] {
			continue
		}
		seen[envVar] = true
		if getenv(envVar) == "" {
			missing = append(missing, envVar)
		}
	}

	if len(missing) > 0 {
		return warn("Credenciais", fmt.Sprintf("variável %v não definida", missing))
	}
	return ok("Credenciais", "chaves presentes para todos os modelos")
}

func sessionDirCheck(dir string) domain.HealthCheck {
	if dir == "" {
		return warn("Sessões", "diretório de sessões não configurado")
	}
	if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
		return fail("Sessões", fmt.Sprintf("diretório inacessível: %v", err))
	}
	probe := filepath.Join(dir, ".doctor_probe")
	if err := os.WriteFile(probe, []byte("ok"), domain.SecureFilePermissions); err != nil {
		return fail("Sessões", fmt.Sprintf("diretório sem permissão de escrita: %v", err))
	}
	os.Remove(probe)
	return ok("Sessões", dir)
}

func archiveCheck(store ports.ArchiveStore) domain.HealthCheck {
	path := store.Path()
	info, err := os.Stat(path)
	if err != nil {
		return ok("Histórico", "vazio (nenhuma interação registrada)")
	}
	return ok("Histórico", fmt.Sprintf("%s (%s)", path, humanize.Bytes(uint64(info.Size()))))
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
