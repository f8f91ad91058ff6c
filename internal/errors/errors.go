package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError é a interface central para todos os erros tipados do GoPOS.
// O Handler usa Category e HTTPStatus para montar a resposta padronizada.
type AppError interface {
	Error() string
	Category() string
	HTTPStatus() int
	Unwrap() error
}

// --- Erros de Domínio ---

// ValidationError representa entrada malformada ou fora da faixa permitida.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest }
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NotFoundError representa a ausência de uma entidade referenciada.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound }
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa conflito de estado (OCC, código duplicado).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict }
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// AmbiguousConfigurationError é retornado quando duas tabelas de preço (ou duas faixas
// de quantidade) empatam em todos os critérios de desempate.
type AmbiguousConfigurationError struct {
	Msg string
}

func (e *AmbiguousConfigurationError) Error() string {
	return fmt.Sprintf("Configuração ambígua: %s", e.Msg)
}
func (e *AmbiguousConfigurationError) Category() string { return "AMBIGUOUS_CONFIGURATION" }
func (e *AmbiguousConfigurationError) HTTPStatus() int  { return http.StatusConflict }
func (e *AmbiguousConfigurationError) Unwrap() error    { return nil }

// NewAmbiguousConfigurationError cria um erro de configuração ambígua.
func NewAmbiguousConfigurationError(msg string) AppError {
	return &AmbiguousConfigurationError{Msg: msg}
}

// UnauthorizedError representa credenciais ausentes ou inválidas.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized }
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um erro de autenticação.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// ForbiddenError representa um usuário autenticado sem o papel necessário.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string    { return fmt.Sprintf("Acesso negado: %s", e.Msg) }
func (e *ForbiddenError) Category() string { return "FORBIDDEN" }
func (e *ForbiddenError) HTTPStatus() int  { return http.StatusForbidden }
func (e *ForbiddenError) Unwrap() error    { return nil }

// NewForbiddenError cria um erro de autorização.
func NewForbiddenError(msg string) AppError {
	return &ForbiddenError{Msg: msg}
}

// RateLimitError indica que o cliente excedeu o limite de requisições.
type RateLimitError struct {
	Msg string
}

func (e *RateLimitError) Error() string    { return e.Msg }
func (e *RateLimitError) Category() string { return "RATE_LIMITED" }
func (e *RateLimitError) HTTPStatus() int  { return http.StatusTooManyRequests }
func (e *RateLimitError) Unwrap() error    { return nil }

func NewRateLimitError(msg string) AppError {
	return &RateLimitError{Msg: msg}
}

// --- Erros de Infraestrutura ---

// InternalError representa falhas inesperadas no servidor, serviço ou repositório.
type InternalError struct {
	Msg string
	Err error // erro original (driver SQL, redis, etc.)
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError }
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor.
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para um InternalError originado no banco.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB): %s", msg, err.Error()), err)
}

// --- Helper para o Handler ---

// MapToHTTPStatus traduz um erro (possivelmente encapsulado) para status, categoria e mensagem.
// Erros internos nunca expõem a causa raiz ao cliente.
func MapToHTTPStatus(err error) (int, string, string) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		if appErr.HTTPStatus() >= http.StatusInternalServerError {
			return appErr.HTTPStatus(), appErr.Category(), "Ocorreu um erro interno. Tente novamente mais tarde."
		}
		// Erros de cliente levam o contexto acrescentado pelas camadas de cima.
		return appErr.HTTPStatus(), appErr.Category(), err.Error()
	}

	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}

// IsNotFound informa se algum erro da cadeia é um NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return stderrors.As(err, &nf)
}
