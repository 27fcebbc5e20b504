package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/miragem-dev/miragem/internal/app"
	"github.com/miragem-dev/miragem/internal/domain"
)

const defaultTelnetHost = "servidor.remoto"

func newCompilarCommand(container *app.Container) *cobra.Command {
	var (
		language string
		dialect  string
		model    string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "compilar <arquivo>",
		Short: "Compila e executa um arquivo fonte",
		Long:  "Envia o fonte para compilação e execução remotas e exibe as seções de compilação e execução.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("falha ao ler %s: %w", args[0], err)
			}

			capability, err := compilerCapability(args[0], language)
			if err != nil {
				return err
			}

			ctx, cancel := requestContext(cmd.Context(), container, timeout)
			defer cancel()

			renderer := NewRenderer(cmd.OutOrStdout())
			spinner := NewSpinner(os.Stderr, "compilando...")
			spinner.Start()
			result, err := container.SimulateService.Run(ctx, domain.SimulatedRequest{
				Capability: capability,
				Source:     string(source),
				Dialect:    dialect,
			}, model)
			spinner.Stop()
			if err != nil {
				return err
			}

			renderer.Result(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "linguagem", "l", "", "Linguagem do fonte (cobol|c|julia); inferida pela extensão quando omitida")
	cmd.Flags().StringVar(&dialect, "dialeto", "", "Dialeto do compilador (ex.: gnucobol)")
	cmd.Flags().StringVarP(&model, "modelo", "m", "", "Sobrescreve o modelo configurado")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Tempo limite da requisição (padrão vem da configuração)")

	return cmd
}

func newServirCommand(container *app.Container) *cobra.Command {
	var (
		method  string
		route   string
		model   string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "servir <arquivo>",
		Short: "Simula uma requisição a um servidor de aplicação",
		Long:  "Carrega o fonte da aplicação e simula o tratamento de uma requisição HTTP, separando corpo da resposta e logs do servidor.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("falha ao ler %s: %w", args[0], err)
			}

			ctx, cancel := requestContext(cmd.Context(), container, timeout)
			defer cancel()

			renderer := NewRenderer(cmd.OutOrStdout())
			spinner := NewSpinner(os.Stderr, "processando a requisição...")
			spinner.Start()
			result, err := container.SimulateService.Run(ctx, domain.SimulatedRequest{
				Capability: domain.CapabilityFramework,
				Source:     string(source),
				Method:     strings.ToUpper(method),
				Route:      route,
			}, model)
			spinner.Stop()
			if err != nil {
				return err
			}

			renderer.Result(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&method, "metodo", "GET", "Método HTTP da requisição simulada")
	cmd.Flags().StringVar(&route, "rota", "/", "Rota da requisição simulada")
	cmd.Flags().StringVarP(&model, "modelo", "m", "", "Sobrescreve o modelo configurado")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Tempo limite da requisição (padrão vem da configuração)")

	return cmd
}

func newTerminalCommand(container *app.Container) *cobra.Command {
	var (
		host  string
		model string
	)

	cmd := &cobra.Command{
		Use:   "terminal",
		Short: "Abre uma sessão de terminal remoto",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, container, domain.CapabilityTelnet, domain.SessionKeyTelnet, host, model)
		},
	}

	cmd.Flags().StringVar(&host, "host", defaultTelnetHost, "Nome do host remoto exibido no prompt")
	cmd.Flags().StringVarP(&model, "modelo", "m", "", "Sobrescreve o modelo configurado")

	return cmd
}

func newRNTCommand(container *app.Container) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "rnt",
		Short: "Abre uma sessão do terminal RNT",
		Long:  "Terminal RNT com pseudo-sistema de arquivos persistente entre sessões.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, container, domain.CapabilityRNT, domain.SessionKeyRNT, "", model)
		},
	}

	cmd.Flags().StringVarP(&model, "modelo", "m", "", "Sobrescreve o modelo configurado")

	return cmd
}

func newChatCommand(container *app.Container) *cobra.Command {
	var (
		model     string
		wantImage bool
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "chat [mensagem]",
		Short: "Conversa com o assistente",
		Long:  "Sem argumentos abre uma conversa interativa; com argumentos envia uma única mensagem.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runSession(cmd, container, domain.CapabilityChat, domain.SessionKeyChat, "", model)
			}
			return runSingleChat(cmd, container, strings.Join(args, " "), model, wantImage, timeout)
		},
	}

	cmd.Flags().StringVarP(&model, "modelo", "m", "", "Sobrescreve o modelo configurado")
	cmd.Flags().BoolVar(&wantImage, "imagem", false, "Gera uma imagem em vez de texto")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Tempo limite da requisição (padrão vem da configuração)")

	return cmd
}

func runSession(cmd *cobra.Command, container *app.Container, capability domain.Capability, key, host, model string) error {
	store, err := container.Sessions.Open(key, container.Config.Session.ContextWindow)
	if err != nil {
		return fmt.Errorf("falha ao abrir a sessão %s: %w", key, err)
	}
	defer store.Close()

	repl := &REPL{
		In:         cmd.InOrStdin(),
		Renderer:   NewRenderer(cmd.OutOrStdout()),
		Service:    container.SimulateService,
		Store:      store,
		Capability: capability,
		Host:       host,
		Model:      model,
	}
	return repl.Run(cmd.Context())
}

func runSingleChat(cmd *cobra.Command, container *app.Container, message, model string, wantImage bool, timeout time.Duration) error {
	store, err := container.Sessions.Open(domain.SessionKeyChat, container.Config.Session.ContextWindow)
	if err != nil {
		return fmt.Errorf("falha ao abrir a sessão de chat: %w", err)
	}
	defer store.Close()

	ctx, cancel := requestContext(cmd.Context(), container, timeout)
	defer cancel()

	renderer := NewRenderer(cmd.OutOrStdout())
	spinner := NewSpinner(os.Stderr, "consultando o servidor...")
	spinner.Start()
	result, err := container.SimulateService.Run(ctx, domain.SimulatedRequest{
		Capability:   domain.CapabilityChat,
		Message:      message,
		WantImage:    wantImage,
		Context:      store.ContextWindow(),
		LastArtifact: store.LastArtifact(),
	}, model)
	spinner.Stop()
	if err != nil {
		return err
	}

	renderer.Result(result)

	reply := result.Response.Output
	if result.Failed() {
		reply = result.ErrorMessage
	}
	store.AppendInteraction(domain.Interaction{Command: message, Response: reply})
	if result.ImagePath != "" {
		store.SetLastArtifact(&domain.Artifact{
			Prompt:    message,
			Path:      result.ImagePath,
			MIMEType:  "image/png",
			CreatedAt: time.Now(),
		})
	}
	return store.Flush()
}

func requestContext(parent context.Context, container *app.Container, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = time.Duration(container.Config.Preferences.TimeoutSeconds) * time.Second
	}
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

func compilerCapability(path, language string) (domain.Capability, error) {
	switch strings.ToLower(language) {
	case "cobol":
		return domain.CapabilityCOBOL, nil
	case "c", "cpp", "c++":
		return domain.CapabilityCCPP, nil
	case "julia":
		return domain.CapabilityJulia, nil
	case "":
	default:
		return "", fmt.Errorf("linguagem desconhecida: %s (use cobol, c ou julia)", language)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".cob", ".cbl", ".cobol":
		return domain.CapabilityCOBOL, nil
	case ".c", ".h", ".cpp", ".cc", ".cxx", ".hpp":
		return domain.CapabilityCCPP, nil
	case ".jl":
		return domain.CapabilityJulia, nil
	}
	return "", fmt.Errorf("não foi possível inferir a linguagem de %s; informe --linguagem", path)
}
