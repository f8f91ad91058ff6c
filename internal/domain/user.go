package domain

import "time"

// User é um operador do back-office ou do caixa.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRole é o papel do operador.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleCashier UserRole = "cashier"
)

// IsValid informa se o papel é conhecido.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCashier:
		return true
	}
	return false
}

// UserRegistration é o payload de registro.
type UserRegistration struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8,max=72"`
	Role     UserRole `json:"role,omitempty"`
}

// UserLogin é o payload de login.
type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse devolve o token de acesso.
type LoginResponse struct {
	Token string   `json:"token"`
	Role  UserRole `json:"role"`
}
