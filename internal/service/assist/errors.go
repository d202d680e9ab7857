package assist

import "errors"

var (
	ErrNotConfigured = errors.New("assist service is not configured")
	ErrEmptyInput    = errors.New("text to process is empty")
	ErrInvalidTarget = errors.New("rewrite target must be record or patient")
	ErrEmptyResponse = errors.New("a resposta da API estava vazia ou em formato inesperado")
	ErrUpstream      = errors.New("falha na comunicação com o serviço de IA")
)
