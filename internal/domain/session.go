package domain

import "time"

// Session storage keys. Each terminal-like surface owns a disjoint pair of
// persisted documents (transcript + context) under its key.
const (
	SessionKeyTelnet = "telnet"
	SessionKeyRNT    = "rnt"
	SessionKeyChat   = "chat"
)

// BootDelay is the pause between consecutive boot-sequence lines.
const BootDelay = 150 * time.Millisecond

// BootSequence returns the fixed status lines replayed when a terminal
// surface starts with an empty transcript. Restored sessions skip it.
func BootSequence(capability Capability) []string {
	switch capability {
	case CapabilityRNT:
		return []string{
			"RNT OS v2.4 inicializando...",
			"Verificando memória............ OK",
			"Montando sistema de arquivos... OK",
			"Carregando interface de rede... OK",
			"Bem-vindo ao RNT OS. Digite 'ajuda' para começar.",
		}
	case CapabilityTelnet:
		return []string{
			"Conectando ao host remoto...",
			"Conexão estabelecida.",
			"Sessão Telnet pronta.",
		}
	default:
		return nil
	}
}

// ArchiveRecord captures one completed interaction for the durable archive.
type ArchiveRecord struct {
	RequestID  string     `json:"request_id"`
	Timestamp  time.Time  `json:"timestamp"`
	Capability Capability `json:"capability"`
	Prompt     string     `json:"prompt"`
	Reply      string     `json:"reply"`
	Model      string     `json:"model"`
	Category   string     `json:"category,omitempty"`
}
