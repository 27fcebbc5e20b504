package commands

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/miragem-dev/miragem/internal/version"
)

// NewVersaoCommand creates the versao command.
func NewVersaoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "versao",
		Short: "Mostra a versão do Miragem",
		RunE: func(cmd *cobra.Command, args []string) error {
			return displayVersionInformation(cmd.OutOrStdout())
		},
	}
}

func displayVersionInformation(out io.Writer) error {
	fmt.Fprintf(out, "Miragem versão %s\n", version.Version)

	if version.Commit != "" {
		fmt.Fprintf(out, "Commit: %s\n", version.Commit)
	}

	if version.BuildDate != "" {
		fmt.Fprintf(out, "Compilado em: %s\n", version.BuildDate)
	}

	fmt.Fprintf(out, "Go: %s\n", runtime.Version())

	return nil
}
