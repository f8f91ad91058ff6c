package errors_test

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperror "gopos/internal/errors"
)

func TestMapToHTTPStatus_TypedErrors(t *testing.T) {
	cases := []struct {
		err      error
		status   int
		category string
	}{
		{apperror.NewValidationError("quantidade inválida"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{apperror.NewNotFoundError("produto"), http.StatusNotFound, "NOT_FOUND"},
		{apperror.NewConflictError("código duplicado"), http.StatusConflict, "CONFLICT"},
		{apperror.NewAmbiguousConfigurationError("empate"), http.StatusConflict, "AMBIGUOUS_CONFIGURATION"},
		{apperror.NewUnauthorizedError("token"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{apperror.NewForbiddenError("papel"), http.StatusForbidden, "FORBIDDEN"},
		{apperror.NewRateLimitError("limite"), http.StatusTooManyRequests, "RATE_LIMITED"},
	}

	for _, c := range cases {
		status, category, message := apperror.MapToHTTPStatus(c.err)
		assert.Equal(t, c.status, status)
		assert.Equal(t, c.category, category)
		assert.Equal(t, c.err.Error(), message)
	}
}

func TestMapToHTTPStatus_WrappedError(t *testing.T) {
	err := fmt.Errorf("falha ao resolver preço: %w", apperror.NewNotFoundError("grupo"))

	status, category, message := apperror.MapToHTTPStatus(err)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", category)
	assert.Equal(t, "falha ao resolver preço: Recurso não encontrado: grupo", message)
	assert.True(t, apperror.IsNotFound(err))
}

func TestMapToHTTPStatus_InternalErrorHidesCause(t *testing.T) {
	err := apperror.NewDBError("Falha ao buscar produto", sql.ErrConnDone)

	status, category, message := apperror.MapToHTTPStatus(err)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", category)
	assert.NotContains(t, message, sql.ErrConnDone.Error())
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestMapToHTTPStatus_UntypedError(t *testing.T) {
	status, category, _ := apperror.MapToHTTPStatus(fmt.Errorf("boom"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "UNKNOWN_ERROR", category)
}
