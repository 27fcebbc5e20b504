package commands

// TimestampFormat is how archive timestamps are rendered.
const TimestampFormat = "2006-01-02 15:04:05"

// Error messages
const (
	ErrArchiveUnavailable      = "arquivo de histórico indisponível"
	ErrDoctorUnavailable       = "serviço de diagnóstico indisponível"
	ErrConfigLoaderUnavailable = "carregador de configuração indisponível"
	ErrSearchTermRequired      = "--termo é obrigatório"
)

// Success messages
const (
	MsgConfigurationValid = "Configuração válida"
	MsgNoHistoryRecorded  = "Nenhuma interação registrada ainda."
	MsgHistoryCleared     = "Histórico apagado."
)
