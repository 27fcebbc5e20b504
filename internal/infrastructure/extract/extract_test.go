package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miragem-dev/miragem/internal/domain"
	"github.com/miragem-dev/miragem/internal/ports"
)

func normalize(capability domain.Capability, text string) domain.SimulatedResponse {
	return NewNormalizer().Normalize(capability, ports.GenerateResponse{Text: text})
}

func TestJuliaChartBlockIsExcisedAndParsed(t *testing.T) {
	raw := "SEÇÃO DE COMPILAÇÃO: Compilação concluída com sucesso.\n" +
		"SEÇÃO DE EXECUÇÃO: gráfico gerado\n" +
		"```grafico-json\n" +
		`{"data": [{"x": [1, 2], "y": [3, 4]}], "layout": {"title": "Vendas"}}` + "\n" +
		"```\n"

	resp := normalize(domain.CapabilityJulia, raw)

	require.NotNil(t, resp.Chart)
	assert.Contains(t, string(resp.Chart.Data), `"x"`)
	assert.Contains(t, string(resp.Chart.Layout), "Vendas")
	assert.NotContains(t, resp.Output, "grafico-json", "chart block must be excised from display text")
	assert.Contains(t, resp.Output, "Compilação concluída com sucesso.")
}

func TestJuliaInvalidChartKeepsTextAndAppendsNotice(t *testing.T) {
	raw := "SEÇÃO DE EXECUÇÃO: resultado numérico 42\n" +
		"```grafico-json\n{not valid json\n```\n"

	resp := normalize(domain.CapabilityJulia, raw)

	assert.Nil(t, resp.Chart)
	assert.Contains(t, resp.Output, "resultado numérico 42", "textual output must survive a bad chart block")
	assert.Contains(t, resp.Output, ChartFailureNotice)
}

func TestJuliaMultipleChartBlocksLastOneWins(t *testing.T) {
	raw := "saida\n" +
		"```grafico-json\n{\"data\": [{\"y\": [1]}]}\n```\n" +
		"meio\n" +
		"```grafico-json\n{\"data\": [{\"y\": [9]}]}\n```\n"

	resp := normalize(domain.CapabilityJulia, raw)

	require.NotNil(t, resp.Chart)
	assert.Contains(t, string(resp.Chart.Data), "9")
	assert.NotContains(t, resp.Output, "grafico-json")
	assert.Contains(t, resp.Output, "meio")
}

func TestJuliaWithoutChartBlock(t *testing.T) {
	resp := normalize(domain.CapabilityJulia, "apenas texto\n")
	assert.Nil(t, resp.Chart)
	assert.Equal(t, "apenas texto", resp.Output)
}

func TestFrameworkParsesBodyAndLogsSeparately(t *testing.T) {
	raw := "```json\n" +
		`{"responseBody": "<h1>Bem-vindo</h1>", "serverLogs": ["GET / 200", "render 3ms"]}` + "\n" +
		"```"

	resp := normalize(domain.CapabilityFramework, raw)

	require.NotNil(t, resp.Framework)
	assert.Equal(t, "<h1>Bem-vindo</h1>", resp.Framework.ResponseBody)
	assert.Equal(t, []string{"GET / 200", "render 3ms"}, resp.Framework.ServerLogs)
}

func TestFrameworkUnparseableReplyDegradesToPlaceholders(t *testing.T) {
	resp := normalize(domain.CapabilityFramework, "the server says hello")

	require.NotNil(t, resp.Framework)
	assert.Contains(t, resp.Framework.ResponseBody, "the server says hello")
	assert.Equal(t, []string{LogParseFailureNotice}, resp.Framework.ServerLogs)
}

func TestFrameworkMissingFieldsGetNotices(t *testing.T) {
	resp := normalize(domain.CapabilityFramework, `{"responseBody": "", "serverLogs": []}`)

	require.NotNil(t, resp.Framework)
	assert.Equal(t, EmptyResponseNotice, resp.Framework.ResponseBody)
	assert.Equal(t, []string{LogParseFailureNotice}, resp.Framework.ServerLogs)
}

func TestTerminalRepliesStripIncidentalFences(t *testing.T) {
	raw := "```\ntotal 2\ndrwxr-xr-x projetos\n-rw-r--r-- notas.txt\n```\n"

	resp := normalize(domain.CapabilityRNT, raw)

	assert.Equal(t, "total 2\ndrwxr-xr-x projetos\n-rw-r--r-- notas.txt", resp.Output)
}

func TestTerminalRepliesTrimWhitespace(t *testing.T) {
	resp := normalize(domain.CapabilityTelnet, "\n\n  conectado.  \n\n")
	assert.Equal(t, "conectado.", resp.Output)
}

func TestChatPassesTextThrough(t *testing.T) {
	resp := normalize(domain.CapabilityChat, "  olá!  ")
	assert.Equal(t, "olá!", resp.Output)
}

func TestCitationsSurviveNormalization(t *testing.T) {
	resp := NewNormalizer().Normalize(domain.CapabilityChat, ports.GenerateResponse{
		Text:      "resposta",
		Citations: []domain.Citation{{URI: "https://exemplo.com", Title: "Exemplo"}},
	})
	require.Len(t, resp.Citations, 1)
	assert.Equal(t, "Exemplo", resp.Citations[0].Title)
}
