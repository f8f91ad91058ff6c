package domain

import (
	"time"
)

// Warehouse representa um armazém físico ou lógico (loja, depósito).
type Warehouse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarehouseRequest é o payload de criação e atualização de um armazém.
type WarehouseRequest struct {
	Code     string `json:"code,omitempty" validate:"omitempty,max=50"`
	Name     string `json:"name" validate:"required,min=3,max=100"`
	Address  string `json:"address,omitempty" validate:"max=255"`
	IsActive *bool  `json:"is_active,omitempty"`
}
