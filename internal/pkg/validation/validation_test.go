package validation

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopos/internal/domain"
	apperror "gopos/internal/errors"
)

type payload struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Count int    `json:"count" validate:"min=1,max=10"`
}

func TestDecodeJSONBody(t *testing.T) {
	t.Run("corpo válido", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"a","count":2}`))
		var p payload
		require.NoError(t, DecodeJSONBody(r, &p))
		assert.Equal(t, "a", p.Name)
	})

	t.Run("campo desconhecido", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"a","count":2,"x":1}`))
		var p payload
		err := DecodeJSONBody(r, &p)
		require.Error(t, err)
		assert.IsType(t, &apperror.ValidationError{}, err)
	})

	t.Run("falha nas tags usa o nome json", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/", strings.NewReader(`{"count":20}`))
		var p payload
		err := DecodeJSONBody(r, &p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "payload.name é obrigatório")
		assert.Contains(t, err.Error(), "payload.count deve ser no máximo 10")
	})
}

func TestParseQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/?page=3&quantity=2.5&as_of=2025-03-01&bad=x", nil)

	page, err := ParseQueryInt(r, "page", 1, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 3, page)

	limit, err := ParseQueryInt(r, "limit", 20, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 20, limit)

	_, err = ParseQueryInt(r, "bad", 1, 1, 100)
	assert.Error(t, err)

	q, err := ParseQueryDecimal(r, "quantity")
	require.NoError(t, err)
	assert.Equal(t, "2.5", q.String())

	_, err = ParseQueryDecimal(r, "missing")
	assert.Error(t, err)

	asOf, err := ParseQueryTime(r, "as_of")
	require.NoError(t, err)
	assert.Equal(t, 2025, asOf.Year())

	zero, err := ParseQueryTime(r, "nope")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	_, err = ParseQueryTime(r, "bad")
	assert.Error(t, err)
}

func TestRequireUUID(t *testing.T) {
	assert.NoError(t, RequireUUID("0b9f0a3e-5d0c-4f55-9a3b-1c2d3e4f5a6b", "id"))
	assert.Error(t, RequireUUID("123", "id"))
}

func TestStruct_PriceListNameFitsColumn(t *testing.T) {
	req := domain.PriceListCreateRequest{
		Name:            strings.Repeat("a", 100),
		Code:            "VAREJO-2026",
		CustomerGroupID: "6f1c2b9e-8a3d-4c5e-9f7a-1b2c3d4e5f60",
		DiscountType:    domain.DiscountPercentage,
	}
	require.NoError(t, Struct(req))

	req.Name = strings.Repeat("a", 101)
	err := Struct(req)
	var validation *apperror.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, err.Error(), "name deve ser no máximo 100")

	long := strings.Repeat("b", 101)
	err = Struct(domain.PriceListPatch{Name: &long})
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, err.Error(), "name deve ser no máximo 100")
}
