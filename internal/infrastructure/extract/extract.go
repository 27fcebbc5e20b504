// Package extract normalizes raw generation-service replies into the
// structured shape the UI expects. Malformed model output never produces an
// error here: whatever can be salvaged is kept and the gap is marked with a
// visible notice.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/miragem-dev/miragem/internal/domain"
	"github.com/miragem-dev/miragem/internal/infrastructure/prompt"
	"github.com/miragem-dev/miragem/internal/ports"
)

// Visible fallback notices. These land in the transcript, so they are in the
// product's language.
const (
	ChartFailureNotice    = "[não foi possível renderizar o gráfico]"
	EmptyResponseNotice   = "[resposta vazia do servidor]"
	LogParseFailureNotice = "[falha ao interpretar os logs do servidor]"
)

// Normalizer implements ports.Extractor.
type Normalizer struct{}

// NewNormalizer returns the stock extractor.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

var _ ports.Extractor = (*Normalizer)(nil)

// Normalize dispatches on capability kind.
func (n *Normalizer) Normalize(capability domain.Capability, raw ports.GenerateResponse) domain.SimulatedResponse {
	resp := domain.SimulatedResponse{Citations: raw.Citations}

	switch {
	case capability == domain.CapabilityJulia:
		resp.Output, resp.Chart = extractChart(raw.Text)
	case capability == domain.CapabilityFramework:
		resp.Framework = extractFramework(raw.Text)
	case capability.IsTerminal():
		resp.Output = stripFences(raw.Text)
	default:
		resp.Output = strings.TrimSpace(raw.Text)
	}

	return resp
}

// extractChart excises every fenced block labeled with the chart tag from
// the display text and parses the last one as a chart spec. Earlier blocks
// are treated as superseded drafts. A block that fails to parse keeps the
// surrounding text and appends a failure notice instead of discarding the
// reply.
func extractChart(text string) (string, *domain.ChartSpec) {
	blocks, remainder := cutFencedBlocks(text, prompt.ChartFenceLabel)
	remainder = strings.TrimSpace(remainder)
	if len(blocks) == 0 {
		return remainder, nil
	}

	var spec domain.ChartSpec
	if err := json.Unmarshal([]byte(blocks[len(blocks)-1]), &spec); err != nil || len(spec.Data) == 0 {
		return remainder + "\n" + ChartFailureNotice, nil
	}
	return remainder, &spec
}

// extractFramework parses the reply as the two-field document the framework
// prompt demands. Absent or unparseable content degrades to labeled
// placeholders so body and log panes always have something to show.
func extractFramework(text string) *domain.FrameworkReply {
	payload := stripFences(text)

	var reply domain.FrameworkReply
	if err := json.Unmarshal([]byte(payload), &reply); err != nil {
		return &domain.FrameworkReply{
			ResponseBody: strings.TrimSpace(text),
			ServerLogs:   []string{LogParseFailureNotice},
		}
	}
	if strings.TrimSpace(reply.ResponseBody) == "" {
		reply.ResponseBody = EmptyResponseNotice
	}
	if len(reply.ServerLogs) == 0 {
		reply.ServerLogs = []string{LogParseFailureNotice}
	}
	return &reply
}

// stripFences removes incidental markdown fence delimiters the model may
// have wrapped a raw-text reply in, then trims whitespace.
func stripFences(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// cutFencedBlocks returns the contents of every fenced block carrying the
// given label and the text with those blocks removed.
func cutFencedBlocks(text, label string) ([]string, string) {
	var blocks []string
	var remainder strings.Builder

	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed != "```"+label {
			remainder.WriteString(lines[i])
			remainder.WriteString("\n")
			continue
		}

		var body []string
		closed := false
		for i++; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == "```" {
				closed = true
				break
			}
			body = append(body, lines[i])
		}
		content := strings.Join(body, "\n")
		if !closed {
			// Unterminated fence: salvage the body as a block anyway.
			blocks = append(blocks, content)
			break
		}
		blocks = append(blocks, content)
	}

	return blocks, remainder.String()
}
