package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory classifies a generation-service failure. The category alone
// decides whether the retry executor tries again and which localized message
// the user sees.
type ErrorCategory string

const (
	CategoryRateLimited        ErrorCategory = "rate_limited"
	CategoryServiceUnavailable ErrorCategory = "service_unavailable"
	CategoryInvalidCredential  ErrorCategory = "invalid_credential"
	CategoryContentBlocked     ErrorCategory = "content_blocked"
	CategoryBillingRequired    ErrorCategory = "billing_required"
	CategoryTransientUnknown   ErrorCategory = "transient_unknown"
	CategoryFatalUnknown       ErrorCategory = "fatal_unknown"
)

// Retryable reports whether the executor should attempt the call again.
func (c ErrorCategory) Retryable() bool {
	return c == CategoryRateLimited || c == CategoryServiceUnavailable
}

// GenerationError carries the status and message of a failed service call so
// the classifier can label it without string-parsing wrapped errors.
type GenerationError struct {
	Status  int
	Message string
}

func (e *GenerationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("generation service: %d: %s", e.Status, e.Message)
	}
	return "generation service: " + e.Message
}

// Classify maps a failure's status code and message to an ErrorCategory.
// Matching is case-insensitive substring search plus exact status checks; it
// is total, so unmatched-but-definite failures land on fatal_unknown rather
// than falling through.
func Classify(status int, message string) ErrorCategory {
	lower := strings.ToLower(message)

	switch {
	case status == 429,
		strings.Contains(lower, "429"),
		strings.Contains(lower, "quota"),
		strings.Contains(lower, "resource_exhausted"):
		return CategoryRateLimited
	case status == 503,
		strings.Contains(lower, "503"),
		strings.Contains(lower, "overloaded"):
		return CategoryServiceUnavailable
	case strings.Contains(lower, "requested entity was not found"):
		return CategoryInvalidCredential
	case strings.Contains(lower, "blocked"),
		strings.Contains(lower, "safety policies"),
		strings.Contains(lower, "harmful content"):
		return CategoryContentBlocked
	case strings.Contains(lower, "imagen api is only accessible to billed users"):
		return CategoryBillingRequired
	}

	if hasDefiniteSignal(status, lower) {
		return CategoryFatalUnknown
	}
	return CategoryTransientUnknown
}

// hasDefiniteSignal reports whether the failure carries a recognizable
// verdict from the service. A non-zero status code is a verdict; so are the
// usual rejection keywords. Anything else (timeouts, dropped connections,
// empty messages) is treated as transient.
func hasDefiniteSignal(status int, lower string) bool {
	if status != 0 {
		return true
	}
	for _, signal := range []string{"invalid", "not found", "permission", "denied", "unsupported", "bad request", "malformed"} {
		if strings.Contains(lower, signal) {
			return true
		}
	}
	return false
}

// ClassifyError labels any error from a generation call. A *GenerationError
// keeps its status; everything else is classified on its message alone.
func ClassifyError(err error) ErrorCategory {
	if err == nil {
		return ""
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return Classify(genErr.Status, genErr.Message)
	}
	return Classify(0, err.Error())
}

// UserMessage converts a category into the localized line shown to the user.
// Raw technical detail never reaches the transcript.
func UserMessage(category ErrorCategory) string {
	switch category {
	case CategoryRateLimited:
		return "Limite de requisições atingido. Aguarde um momento e tente novamente."
	case CategoryServiceUnavailable:
		return "O serviço está sobrecarregado no momento. Tente novamente em instantes."
	case CategoryInvalidCredential:
		return "Chave de API inválida ou expirada. Configure uma nova chave para continuar."
	case CategoryContentBlocked:
		return "A resposta foi bloqueada pelas políticas de segurança do serviço."
	case CategoryBillingRequired:
		return "A geração de imagens exige uma conta com faturamento ativo."
	case CategoryTransientUnknown:
		return "Falha temporária de comunicação com o serviço. Tente novamente."
	default:
		return "Ocorreu um erro inesperado ao consultar o serviço."
	}
}
