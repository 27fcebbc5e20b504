package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miragem-dev/miragem/internal/domain"
)

func TestBuildCompilerSectionsAndSource(t *testing.T) {
	builder := NewBuilder()
	instruction, err := builder.Build(domain.SimulatedRequest{
		Capability: domain.CapabilityCOBOL,
		Dialect:    "COBOL-85",
		Source:     "DISPLAY 'OLA'.",
	})
	require.NoError(t, err)

	assert.Contains(t, instruction, "SEÇÃO DE COMPILAÇÃO")
	assert.Contains(t, instruction, "SEÇÃO DE EXECUÇÃO")
	assert.Contains(t, instruction, "DISPLAY 'OLA'.")
	assert.Contains(t, instruction, "COBOL-85")
	compileIdx := strings.Index(instruction, "SEÇÃO DE COMPILAÇÃO")
	execIdx := strings.Index(instruction, "SEÇÃO DE EXECUÇÃO")
	assert.Less(t, compileIdx, execIdx, "compile section must precede execution section")
}

func TestBuildJuliaRequestsChartFence(t *testing.T) {
	builder := NewBuilder()
	instruction, err := builder.Build(domain.SimulatedRequest{
		Capability: domain.CapabilityJulia,
		Source:     "using Plots; plot(1:10)",
	})
	require.NoError(t, err)

	assert.Contains(t, instruction, ChartFenceLabel)
	assert.Contains(t, instruction, "SEÇÃO DE EXECUÇÃO")
}

func TestBuildCOBOLDoesNotMentionChart(t *testing.T) {
	builder := NewBuilder()
	instruction, err := builder.Build(domain.SimulatedRequest{
		Capability: domain.CapabilityCOBOL,
		Source:     "DISPLAY 'X'.",
	})
	require.NoError(t, err)
	assert.NotContains(t, instruction, ChartFenceLabel)
}

func TestBuildRNTEmbedsFullContextWindow(t *testing.T) {
	builder := NewBuilder()
	instruction, err := builder.Build(domain.SimulatedRequest{
		Capability: domain.CapabilityRNT,
		Command:    "ls",
		Context: []domain.Interaction{
			{Command: "mkdir projetos", Response: "Diretório 'projetos' criado."},
			{Command: "touch notas.txt", Response: "Arquivo 'notas.txt' criado."},
		},
	})
	require.NoError(t, err)

	// Continuity lives in the prompt: a prior mkdir must be visible so the
	// model can surface it in a later listing.
	assert.Contains(t, instruction, "mkdir projetos")
	assert.Contains(t, instruction, "Diretório 'projetos' criado.")
	assert.Contains(t, instruction, "rnt> ls")
	assert.Contains(t, instruction, "sem markdown")
}

func TestBuildTelnetCarriesHostAndDemandsRawText(t *testing.T) {
	builder := NewBuilder()
	instruction, err := builder.Build(domain.SimulatedRequest{
		Capability: domain.CapabilityTelnet,
		Host:       "mainframe.exemplo.com.br",
		Command:    "uptime",
	})
	require.NoError(t, err)

	assert.Contains(t, instruction, "mainframe.exemplo.com.br")
	assert.Contains(t, instruction, "$ uptime")
	assert.Contains(t, instruction, "sem markdown")
	assert.NotContains(t, instruction, "Histórico da sessão", "empty context must not render a history header")
}

func TestBuildFrameworkDemandsStructuredJSON(t *testing.T) {
	builder := NewBuilder()
	instruction, err := builder.Build(domain.SimulatedRequest{
		Capability: domain.CapabilityFramework,
		Source:     "app.get('/', handler)",
		Method:     "GET",
		Route:      "/clientes",
	})
	require.NoError(t, err)

	assert.Contains(t, instruction, `"responseBody"`)
	assert.Contains(t, instruction, `"serverLogs"`)
	assert.Contains(t, instruction, "GET /clientes")
	assert.Contains(t, instruction, "app.get('/', handler)")
}

func TestBuildChatThreadsLastArtifact(t *testing.T) {
	builder := NewBuilder()
	instruction, err := builder.Build(domain.SimulatedRequest{
		Capability:   domain.CapabilityChat,
		Message:      "deixe o céu mais escuro",
		LastArtifact: &domain.Artifact{Prompt: "um farol ao entardecer"},
	})
	require.NoError(t, err)

	assert.Contains(t, instruction, "um farol ao entardecer")
	assert.Contains(t, instruction, "deixe o céu mais escuro")
}

func TestBuildUnknownCapabilityFails(t *testing.T) {
	builder := NewBuilder()
	_, err := builder.Build(domain.SimulatedRequest{Capability: domain.Capability("fortran")})
	require.Error(t, err)
}
