package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel é o saldo de um produto em um armazém.
// A coluna version implementa controle de concorrência otimista.
type StockLevel struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Version     int             `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StockAdjustmentRequest é o payload do ajuste de estoque (delta positivo ou negativo).
type StockAdjustmentRequest struct {
	ProductID   string          `json:"product_id" validate:"required,uuid"`
	WarehouseID string          `json:"warehouse_id" validate:"required,uuid"`
	Delta       decimal.Decimal `json:"delta"`
	Reason      string          `json:"reason,omitempty" validate:"max=255"`
}
