package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/miragem-dev/miragem/internal/app"
	"github.com/miragem-dev/miragem/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}
	container.SimulateService.Credentials = NewCredentialGate(os.Stderr)
	container.SimulateService.Charts = NewChartSink("")
	container.SimulateService.Images = NewImageSink("")

	root := &cobra.Command{
		Use:   "miragem",
		Short: "Miragem - compiladores, terminais e servidores simulados",
		Long:  "Miragem apresenta compiladores, terminais e servidores que na verdade são conversas com um serviço de geração hospedado.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newCompilarCommand(container))
	root.AddCommand(newTerminalCommand(container))
	root.AddCommand(newRNTCommand(container))
	root.AddCommand(newServirCommand(container))
	root.AddCommand(newChatCommand(container))
	root.AddCommand(commands.NewHistoricoCommand(container))
	root.AddCommand(commands.NewConfigCommand(container))
	root.AddCommand(commands.NewDoctorCommand(container))
	root.AddCommand(commands.NewVersaoCommand())
	return root, nil
}
