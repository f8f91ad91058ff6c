package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product é o item do catálogo. BasePrice é o preço de último recurso da resolução.
type Product struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductFilter define os parâmetros de busca e paginação de produtos.
type ProductFilter struct {
	Page       int
	Limit      int
	Name       string
	SKU        string
	ActiveOnly bool
}

// ProductPatch carrega a atualização parcial de um produto.
type ProductPatch struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=3,max=150"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	BasePrice   *decimal.Decimal `json:"base_price,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

// ProductCreateRequest é o payload de cadastro de produto.
type ProductCreateRequest struct {
	SKU         string          `json:"sku" validate:"required,max=64"`
	Name        string          `json:"name" validate:"required,min=3,max=150"`
	Description string          `json:"description,omitempty" validate:"max=1000"`
	BasePrice   decimal.Decimal `json:"base_price"`
}

// PaginatedProducts é a página devolvida pela listagem de produtos.
type PaginatedProducts struct {
	Items []Product `json:"items"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}
