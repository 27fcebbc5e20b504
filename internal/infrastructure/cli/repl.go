package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/miragem-dev/miragem/internal/application/simulate"
	"github.com/miragem-dev/miragem/internal/domain"
	"github.com/miragem-dev/miragem/internal/ports"
)

const imageCommandPrefix = "/imagem "

// REPL drives one interactive session surface (terminal, rnt or chat):
// reads lines, forwards them through the simulate service and mirrors the
// exchange into the persisted session.
type REPL struct {
	In         io.Reader
	Renderer   *Renderer
	Service    *simulate.Service
	Store      ports.SessionStore
	Capability domain.Capability
	Host       string
	Model      string

	// SpinnerOut receives the in-flight indicator; defaults to stderr.
	SpinnerOut io.Writer
}

// Run loops until "sair", "exit" or EOF. The session is flushed on the way
// out regardless of how the loop ended.
func (r *REPL) Run(ctx context.Context) error {
	defer r.Store.Flush()

	if transcript := r.Store.Transcript(); len(transcript) > 0 {
		r.Renderer.Notice("Sessão anterior restaurada.")
		for _, line := range transcript {
			r.Renderer.Line("%s", line)
		}
	} else {
		r.boot()
	}

	scanner := bufio.NewScanner(r.In)
	for {
		r.Renderer.Prompt(r.promptString())
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "sair", "exit":
			return nil
		case "clear", "limpar":
			if err := r.Store.ClearTranscript(); err != nil {
				r.Renderer.Error(err.Error())
			}
			continue
		case "reset":
			if err := r.Store.FullReset(); err != nil {
				r.Renderer.Error(err.Error())
				continue
			}
			r.Renderer.Notice("Sessão reiniciada.")
			r.boot()
			continue
		}

		r.submit(ctx, line)
	}
}

func (r *REPL) boot() {
	simulate.Bootstrap(r.Store, r.Capability, nil, func(line string) {
		r.Renderer.Line("%s", line)
	})
}

func (r *REPL) submit(ctx context.Context, line string) {
	req := domain.SimulatedRequest{
		Capability:   r.Capability,
		Context:      r.Store.ContextWindow(),
		LastArtifact: r.Store.LastArtifact(),
	}

	if r.Capability == domain.CapabilityChat {
		if strings.HasPrefix(line, imageCommandPrefix) {
			req.WantImage = true
			req.Message = strings.TrimSpace(strings.TrimPrefix(line, imageCommandPrefix))
		} else {
			req.Message = line
		}
	} else {
		req.Command = line
		req.Host = r.Host
	}

	r.Store.Append(r.promptString() + line)

	spinnerOut := r.SpinnerOut
	if spinnerOut == nil {
		spinnerOut = os.Stderr
	}
	spinner := NewSpinner(spinnerOut, "consultando o servidor...")
	spinner.Start()
	result, err := r.Service.Run(ctx, req, r.Model)
	spinner.Stop()

	if err != nil {
		r.Renderer.Error(err.Error())
		return
	}

	r.Renderer.Result(result)

	reply := result.Response.Output
	if result.Failed() {
		reply = result.ErrorMessage
	}
	if reply != "" {
		r.Store.Append(strings.Split(reply, "\n")...)
	}
	r.Store.AppendInteraction(domain.Interaction{Command: line, Response: reply})

	if result.ImagePath != "" {
		r.Store.SetLastArtifact(&domain.Artifact{
			Prompt:    req.Message,
			Path:      result.ImagePath,
			MIMEType:  "image/png",
			CreatedAt: time.Now(),
		})
	}
}

func (r *REPL) promptString() string {
	switch r.Capability {
	case domain.CapabilityRNT:
		return "rnt> "
	case domain.CapabilityTelnet:
		if r.Host != "" {
			return r.Host + "$ "
		}
		return "$ "
	default:
		return "> "
	}
}
