package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/miragem-dev/miragem/internal/domain"
	"github.com/miragem-dev/miragem/internal/ports"
)

// CredentialGate checks for the API key in the environment and, when it is
// missing or rejected, tells the user how to provide one. It never blocks
// waiting for input; the surface simply reports and moves on.
type CredentialGate struct {
	out    io.Writer
	getenv func(string) string
}

// NewCredentialGate builds a gate over the process environment.
func NewCredentialGate(out io.Writer) *CredentialGate {
	if out == nil {
		out = os.Stderr
	}
	return &CredentialGate{out: out, getenv: os.Getenv}
}

// HasKey reports whether the model's auth variable is set.
func (g *CredentialGate) HasKey(model domain.ModelDefinition) bool {
	return g.getenv(model.AuthEnvVarOrDefault()) != ""
}

// Request prints the credential instructions. Called at most once per
// failure by the application layer.
func (g *CredentialGate) Request(model domain.ModelDefinition) {
	envVar := model.AuthEnvVarOrDefault()
	fmt.Fprintf(g.out, "\nNenhuma chave de API válida encontrada.\n")
	fmt.Fprintf(g.out, "Defina a variável de ambiente %s e tente novamente:\n", envVar)
	fmt.Fprintf(g.out, "  export %s=\"sua-chave\"\n\n", envVar)
}

var _ ports.CredentialGate = (*CredentialGate)(nil)
