package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/miragem-dev/miragem/internal/app"
	"github.com/miragem-dev/miragem/internal/domain"
)

// NewHistoricoCommand creates the historico command with all subcommands.
func NewHistoricoCommand(container *app.Container) *cobra.Command {
	historicoCmd := &cobra.Command{
		Use:   "historico",
		Short: "Inspeciona o histórico de interações",
	}

	historicoCmd.AddCommand(
		newHistoricoListCommand(container),
		newHistoricoSearchCommand(container),
		newHistoricoClearCommand(container),
		newHistoricoExportCommand(container),
	)

	return historicoCmd
}

func newHistoricoListCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "listar",
		Short: "Lista as interações mais recentes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listArchiveEntries(cmd.OutOrStdout(), container, limit, "")
		},
	}

	cmd.Flags().IntVar(&limit, "limite", domain.DefaultArchiveLimit, "Máximo de entradas exibidas")
	return cmd
}

func newHistoricoSearchCommand(container *app.Container) *cobra.Command {
	var term string
	var limit int

	cmd := &cobra.Command{
		Use:   "buscar",
		Short: "Busca interações por palavra-chave",
		RunE: func(cmd *cobra.Command, args []string) error {
			if term == "" {
				return fmt.Errorf(ErrSearchTermRequired)
			}
			return listArchiveEntries(cmd.OutOrStdout(), container, limit, term)
		},
	}

	cmd.Flags().StringVar(&term, "termo", "", "Palavra-chave da busca")
	cmd.Flags().IntVar(&limit, "limite", domain.DefaultArchiveSearchLimit, "Máximo de resultados")
	return cmd
}

func newHistoricoClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "limpar",
		Short: "Apaga todo o histórico",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.ArchiveStore == nil {
				return fmt.Errorf(ErrArchiveUnavailable)
			}
			if err := container.ArchiveStore.Clear(); err != nil {
				return fmt.Errorf("falha ao apagar o histórico: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgHistoryCleared)
			return nil
		},
	}
}

func newHistoricoExportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "exportar <caminho>",
		Short: "Exporta o histórico para um arquivo JSONL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.ArchiveStore == nil {
				return fmt.Errorf(ErrArchiveUnavailable)
			}
			if err := container.ArchiveStore.ExportJSON(args[0]); err != nil {
				return fmt.Errorf("falha ao exportar para %s: %w", args[0], err)
			}
			return nil
		},
	}
}

func listArchiveEntries(out io.Writer, container *app.Container, limit int, search string) error {
	store := container.ArchiveStore
	if store == nil {
		return fmt.Errorf(ErrArchiveUnavailable)
	}

	records, err := store.Records(limit, search)
	if err != nil {
		return fmt.Errorf("falha ao consultar o histórico: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}

	for _, rec := range records {
		fmt.Fprintf(out, "%s | %s | %s | %s\n",
			rec.Timestamp.Format(TimestampFormat),
			rec.Capability,
			rec.Model,
			firstLine(rec.Prompt))
	}

	return nil
}

func firstLine(text string) string {
	for i, r := range text {
		if r == '\n' {
			return text[:i]
		}
	}
	return text
}
