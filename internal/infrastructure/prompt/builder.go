// Package prompt builds the instruction text sent to the generation service
// for each simulated capability. Everything here is string construction; no
// code is ever compiled or executed locally.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/miragem-dev/miragem/internal/domain"
	"github.com/miragem-dev/miragem/internal/ports"
)

// ChartFenceLabel tags the fenced block carrying chart data in Julia
// replies. The extractor excises blocks under this label before the text is
// displayed.
const ChartFenceLabel = "grafico-json"

// Builder renders per-capability instruction templates.
type Builder struct {
	templates map[domain.Capability]*template.Template
}

// NewBuilder parses the built-in templates once.
func NewBuilder() *Builder {
	builder := &Builder{templates: make(map[domain.Capability]*template.Template)}
	for capability, raw := range rawTemplates {
		builder.templates[capability] = template.Must(template.New(string(capability)).Parse(raw))
	}
	return builder
}

// Build produces the exact instruction text for one simulated request.
func (b *Builder) Build(req domain.SimulatedRequest) (string, error) {
	tmpl, ok := b.templates[req.Capability]
	if !ok {
		return "", fmt.Errorf("unknown capability %q", req.Capability)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData(req)); err != nil {
		return "", fmt.Errorf("render %s instruction: %w", req.Capability, err)
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}

var _ ports.PromptBuilder = (*Builder)(nil)

type promptData struct {
	Language     string
	Dialect      string
	Source       string
	Command      string
	Host         string
	Method       string
	Route        string
	Message      string
	Context      []domain.Interaction
	ChartLabel   string
	HasArtifact  bool
	ArtifactHint string
}

func templateData(req domain.SimulatedRequest) promptData {
	data := promptData{
		Language:   languageName(req.Capability),
		Dialect:    req.Dialect,
		Source:     strings.TrimRight(req.Source, "\n"),
		Command:    req.Command,
		Host:       req.Host,
		Method:     req.Method,
		Route:      req.Route,
		Message:    req.Message,
		Context:    req.Context,
		ChartLabel: ChartFenceLabel,
	}
	if req.LastArtifact != nil {
		data.HasArtifact = true
		data.ArtifactHint = req.LastArtifact.Prompt
	}
	return data
}

func languageName(capability domain.Capability) string {
	switch capability {
	case domain.CapabilityCOBOL:
		return "COBOL"
	case domain.CapabilityCCPP:
		return "C/C++"
	case domain.CapabilityJulia:
		return "Julia"
	default:
		return ""
	}
}

// The compiler- and terminal-style instruction language is Portuguese, like
// the product itself: the model answers in the persona's language.
var rawTemplates = map[domain.Capability]string{
	domain.CapabilityCOBOL:     compilerTemplate,
	domain.CapabilityCCPP:      compilerTemplate,
	domain.CapabilityJulia:     juliaTemplate,
	domain.CapabilityTelnet:    telnetTemplate,
	domain.CapabilityRNT:       rntTemplate,
	domain.CapabilityFramework: frameworkTemplate,
	domain.CapabilityChat:      chatTemplate,
}

const compilerTemplate = `Você é um compilador {{.Language}}{{if .Dialect}} (dialeto {{.Dialect}}){{end}}. Analise o código-fonte abaixo e responda exatamente em duas seções, nesta ordem:

SEÇÃO DE COMPILAÇÃO: liste os erros e avisos de compilação com número de linha. Se não houver problemas, escreva apenas "Compilação concluída com sucesso.".

SEÇÃO DE EXECUÇÃO: mostre exatamente a saída que o programa produziria ao ser executado, sem comentários adicionais. Se a compilação falhar, escreva "Execução abortada.".

Código-fonte:
{{.Source}}`

const juliaTemplate = `Você é um ambiente de execução Julia{{if .Dialect}} ({{.Dialect}}){{end}}. Analise o código abaixo e responda em seções, nesta ordem:

SEÇÃO DE COMPILAÇÃO: liste erros e avisos. Se não houver problemas, escreva apenas "Compilação concluída com sucesso.".

SEÇÃO DE EXECUÇÃO: mostre exatamente a saída que o programa produziria.

Se o programa gerar um gráfico (Plots, scatter, histogram etc.), acrescente uma terceira seção: um único bloco cercado rotulado {{.ChartLabel}} contendo apenas um documento JSON com os campos "data" (séries) e "layout" (títulos e eixos). Não explique o bloco.

Código-fonte:
{{.Source}}`

const telnetTemplate = `Você é um servidor Telnet remoto no host {{.Host}}. Responda ao comando mais recente apenas com o texto bruto que o servidor imprimiria: sem markdown, sem blocos de código, sem explicações e sem repetir o comando.

{{if .Context}}Histórico da sessão:
{{range .Context}}$ {{.Command}}
{{.Response}}
{{end}}{{end}}Novo comando:
$ {{.Command}}`

const rntTemplate = `Você é o RNT OS, um sistema operacional fictício em português com um sistema de arquivos persistente. O histórico abaixo é a única memória do sistema: comandos anteriores (mkdir, touch, rm, cd...) já alteraram o estado e devem ser respeitados nas próximas respostas. Responda apenas com o texto bruto do terminal: sem markdown, sem blocos de código e sem explicações.

{{if .Context}}Histórico da sessão:
{{range .Context}}rnt> {{.Command}}
{{.Response}}
{{end}}{{end}}Novo comando:
rnt> {{.Command}}`

const frameworkTemplate = `Você é um servidor web executando a aplicação abaixo. Processe a requisição {{.Method}} {{.Route}} e responda somente com um documento JSON válido contendo exatamente dois campos: "responseBody" (string com o corpo completo da resposta HTTP, incluindo HTML se houver) e "serverLogs" (lista de strings com as linhas de log que o servidor emitiria ao atender a requisição). Nenhum texto fora do JSON.

Código-fonte da aplicação:
{{.Source}}`

const chatTemplate = `{{if .Context}}Contexto da conversa:
{{range .Context}}Usuário: {{.Command}}
Assistente: {{.Response}}
{{end}}
{{end}}{{if .HasArtifact}}(A última imagem gerada atendeu ao pedido: "{{.ArtifactHint}}".)
{{end}}Usuário: {{.Message}}`
