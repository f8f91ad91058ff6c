package domain

import "time"

// CustomerGroup classifica clientes; tabelas de preço são escopadas por grupo.
type CustomerGroup struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CustomerGroupRequest é o payload de criação e atualização de um grupo.
type CustomerGroupRequest struct {
	Code        string `json:"code,omitempty" validate:"omitempty,max=50"`
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
	IsActive    *bool  `json:"is_active,omitempty"`
}
