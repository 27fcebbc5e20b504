package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/miragem-dev/miragem/internal/domain"
)

const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[31m"
	ansiDim   = "\033[2m"
)

// Renderer prints results to the user. Colors are used only when the
// destination is an interactive terminal.
type Renderer struct {
	out    io.Writer
	colors bool
}

// NewRenderer builds a renderer over out, detecting TTY capability.
func NewRenderer(out io.Writer) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	colors := false
	if f, ok := out.(*os.File); ok {
		colors = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Renderer{out: out, colors: colors}
}

// Line prints a plain line.
func (r *Renderer) Line(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Notice prints a secondary, dimmed line.
func (r *Renderer) Notice(format string, args ...interface{}) {
	if r.colors {
		fmt.Fprintf(r.out, ansiDim+format+ansiReset+"\n", args...)
		return
	}
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Prompt prints an inline prompt without a trailing newline.
func (r *Renderer) Prompt(prompt string) {
	fmt.Fprint(r.out, prompt)
}

// Error prints an error line.
func (r *Renderer) Error(message string) {
	if r.colors {
		fmt.Fprintf(r.out, ansiRed+"%s"+ansiReset+"\n", message)
		return
	}
	fmt.Fprintln(r.out, message)
}

// Result prints one simulated response, routing structured payloads to
// their panes.
func (r *Renderer) Result(result domain.SimulateResult) {
	if result.Failed() {
		r.Error(result.ErrorMessage)
		return
	}

	if result.Response.Framework != nil {
		r.renderFramework(result.Response.Framework)
	} else if result.Response.Output != "" {
		fmt.Fprintln(r.out, result.Response.Output)
	}

	if result.ChartPath != "" {
		r.Notice("Gráfico salvo em: %s", result.ChartPath)
	}
	if result.ImagePath != "" {
		r.Notice("Imagem salva em: %s", result.ImagePath)
	}
	if len(result.Response.Citations) > 0 {
		r.Notice("Fontes:")
		for _, citation := range result.Response.Citations {
			if citation.Title != "" {
				r.Notice("  - %s (%s)", citation.Title, citation.URI)
			} else {
				r.Notice("  - %s", citation.URI)
			}
		}
	}
}

func (r *Renderer) renderFramework(reply *domain.FrameworkReply) {
	fmt.Fprintln(r.out, "Resposta:")
	fmt.Fprintln(r.out, reply.ResponseBody)
	if len(reply.ServerLogs) == 0 {
		return
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Logs do servidor:")
	for _, line := range reply.ServerLogs {
		fmt.Fprintf(r.out, "  %s\n", line)
	}
}
