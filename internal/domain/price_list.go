package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType define como o desconto de um item é calculado.
type DiscountType string

const (
	DiscountPercentage  DiscountType = "percentage"
	DiscountFixedAmount DiscountType = "fixed_amount"
)

// IsValid informa se o valor é um DiscountType conhecido.
func (d DiscountType) IsValid() bool {
	return d == DiscountPercentage || d == DiscountFixedAmount
}

// ParseDiscountType converte a entrada bruta em DiscountType.
func ParseDiscountType(value string) (DiscountType, error) {
	d := DiscountType(value)
	if !d.IsValid() {
		return "", fmt.Errorf("tipo de desconto inválido %q", value)
	}
	return d, nil
}

// PriceListStatus é o estado de ciclo de vida de uma tabela de preço.
// Tabelas nunca são apagadas: saem de active para inactive ou expired.
type PriceListStatus string

const (
	PriceListActive   PriceListStatus = "active"
	PriceListInactive PriceListStatus = "inactive"
	PriceListExpired  PriceListStatus = "expired"
)

func (s PriceListStatus) IsValid() bool {
	switch s {
	case PriceListActive, PriceListInactive, PriceListExpired:
		return true
	}
	return false
}

// ParsePriceListStatus converte a entrada bruta em PriceListStatus.
func ParsePriceListStatus(value string) (PriceListStatus, error) {
	s := PriceListStatus(value)
	if !s.IsValid() {
		return "", fmt.Errorf("status de tabela de preço inválido %q", value)
	}
	return s, nil
}

// ApplicableOn define o alcance de uma tabela de preço.
type ApplicableOn string

const (
	ApplicableOnAll               ApplicableOn = "all"
	ApplicableOnSelectedProducts  ApplicableOn = "selected_products"
	ApplicableOnProductCategories ApplicableOn = "product_categories"
)

func (a ApplicableOn) IsValid() bool {
	switch a {
	case ApplicableOnAll, ApplicableOnSelectedProducts, ApplicableOnProductCategories:
		return true
	}
	return false
}

// ParseApplicableOn converte a entrada bruta em ApplicableOn.
func ParseApplicableOn(value string) (ApplicableOn, error) {
	a := ApplicableOn(value)
	if !a.IsValid() {
		return "", fmt.Errorf("alcance de tabela de preço inválido %q", value)
	}
	return a, nil
}

// Limites de prioridade de uma tabela de preço.
const (
	MinPriority = 0
	MaxPriority = 100
)

// PriceList é um conjunto nomeado de preços e descontos, limitado no tempo
// e associado a um grupo de clientes.
type PriceList struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Code            string          `json:"code"`
	Description     string          `json:"description,omitempty"`
	CustomerGroupID string          `json:"customer_group_id"`
	StartDate       *time.Time      `json:"start_date,omitempty"`
	EndDate         *time.Time      `json:"end_date,omitempty"`
	Priority        int             `json:"priority"`
	DiscountType    DiscountType    `json:"discount_type"`
	Status          PriceListStatus `json:"status"`
	ApplicableOn    ApplicableOn    `json:"applicable_on"`
	IsDefault       bool            `json:"is_default"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Items []PriceListItem `json:"items,omitempty"`
}

// CoversDate informa se asOf está dentro de [StartDate, EndDate]. Limites nulos são abertos.
func (p PriceList) CoversDate(asOf time.Time) bool {
	if p.StartDate != nil && asOf.Before(*p.StartDate) {
		return false
	}
	if p.EndDate != nil && asOf.After(*p.EndDate) {
		return false
	}
	return true
}

// EffectiveStatus devolve expired para uma tabela ativa cujo EndDate já passou,
// mesmo antes de a rotina de expiração gravar a transição. A tabela padrão do
// grupo não expira pela data: a janela não se aplica a ela.
func (p PriceList) EffectiveStatus(asOf time.Time) PriceListStatus {
	if p.Status == PriceListActive && !p.IsDefault && p.EndDate != nil && asOf.After(*p.EndDate) {
		return PriceListExpired
	}
	return p.Status
}

// PriceListItem é a regra de preço de um produto dentro de uma tabela, válida
// para uma faixa de quantidade.
type PriceListItem struct {
	ID                string           `json:"id"`
	PriceListID       string           `json:"price_list_id"`
	ProductID         string           `json:"product_id"`
	Price             decimal.Decimal  `json:"price"`
	MinQuantity       decimal.Decimal  `json:"min_quantity"`
	MaxQuantity       *decimal.Decimal `json:"max_quantity,omitempty"`
	DiscountType      DiscountType     `json:"discount_type"`
	DiscountValue     decimal.Decimal  `json:"discount_value"`
	DiscountRate      decimal.Decimal  `json:"discount_rate"`
	SpecialConditions string           `json:"special_conditions,omitempty"`
	IsActive          bool             `json:"is_active"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// CoversQuantity informa se q está em [MinQuantity, MaxQuantity] (inclusivo; Max nulo = infinito).
func (i PriceListItem) CoversQuantity(q decimal.Decimal) bool {
	if q.LessThan(i.MinQuantity) {
		return false
	}
	if i.MaxQuantity != nil && q.GreaterThan(*i.MaxQuantity) {
		return false
	}
	return true
}

// DefaultMinQuantity é a quantidade mínima padrão de um item.
var DefaultMinQuantity = decimal.NewFromInt(1)

// SmallestQuantity é o menor MinQuantity aceito.
var SmallestQuantity = decimal.RequireFromString("0.01")

// PriceListFilter define os parâmetros de busca e paginação de tabelas de preço.
type PriceListFilter struct {
	CustomerGroupID string
	Status          PriceListStatus
	Page            int
	Limit           int
}

// PriceListPatch carrega a atualização parcial de uma tabela: campos nulos não mudam.
// ClearStart e ClearEnd removem o limite correspondente.
type PriceListPatch struct {
	Name         *string          `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description  *string          `json:"description,omitempty" validate:"omitempty,max=500"`
	StartDate    *time.Time       `json:"start_date,omitempty"`
	EndDate      *time.Time       `json:"end_date,omitempty"`
	ClearStart   bool             `json:"clear_start_date,omitempty"`
	ClearEnd     bool             `json:"clear_end_date,omitempty"`
	Priority     *int             `json:"priority,omitempty" validate:"omitempty,min=0,max=100"`
	DiscountType *DiscountType    `json:"discount_type,omitempty" validate:"omitempty,oneof=percentage fixed_amount"`
	Status       *PriceListStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive expired"`
	ApplicableOn *ApplicableOn    `json:"applicable_on,omitempty" validate:"omitempty,oneof=all selected_products product_categories"`
	IsDefault    *bool            `json:"is_default,omitempty"`
}

// PriceListItemPatch carrega a atualização parcial de um item.
type PriceListItemPatch struct {
	Price             *decimal.Decimal `json:"price,omitempty"`
	MinQuantity       *decimal.Decimal `json:"min_quantity,omitempty"`
	MaxQuantity       *decimal.Decimal `json:"max_quantity,omitempty"`
	ClearMaxQuantity  bool             `json:"clear_max_quantity,omitempty"`
	DiscountType      *DiscountType    `json:"discount_type,omitempty" validate:"omitempty,oneof=percentage fixed_amount"`
	DiscountValue     *decimal.Decimal `json:"discount_value,omitempty"`
	DiscountRate      *decimal.Decimal `json:"discount_rate,omitempty"`
	SpecialConditions *string          `json:"special_conditions,omitempty" validate:"omitempty,max=500"`
	IsActive          *bool            `json:"is_active,omitempty"`
}

// PriceListCreateRequest é o payload de criação de uma tabela. Campos opcionais
// recebem os padrões no serviço: prioridade 0, status active, alcance all.
type PriceListCreateRequest struct {
	Name            string                 `json:"name" validate:"required,max=100"`
	Code            string                 `json:"code" validate:"required,max=50"`
	Description     string                 `json:"description,omitempty" validate:"max=500"`
	CustomerGroupID string                 `json:"customer_group_id" validate:"required,uuid"`
	StartDate       *time.Time             `json:"start_date,omitempty"`
	EndDate         *time.Time             `json:"end_date,omitempty"`
	Priority        *int                   `json:"priority,omitempty" validate:"omitempty,min=0,max=100"`
	DiscountType    DiscountType           `json:"discount_type" validate:"required,oneof=percentage fixed_amount"`
	Status          PriceListStatus        `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	ApplicableOn    ApplicableOn           `json:"applicable_on,omitempty" validate:"omitempty,oneof=all selected_products product_categories"`
	IsDefault       bool                   `json:"is_default,omitempty"`
	Items           []PriceListItemRequest `json:"items,omitempty" validate:"omitempty,max=1000,dive"`
}

// PriceListItemRequest é o payload de criação de um item. MinQuantity ausente vale 1.
type PriceListItemRequest struct {
	ProductID         string           `json:"product_id" validate:"required,uuid"`
	Price             decimal.Decimal  `json:"price"`
	MinQuantity       *decimal.Decimal `json:"min_quantity,omitempty"`
	MaxQuantity       *decimal.Decimal `json:"max_quantity,omitempty"`
	DiscountType      DiscountType     `json:"discount_type,omitempty" validate:"omitempty,oneof=percentage fixed_amount"`
	DiscountValue     decimal.Decimal  `json:"discount_value"`
	DiscountRate      decimal.Decimal  `json:"discount_rate"`
	SpecialConditions string           `json:"special_conditions,omitempty" validate:"max=500"`
	IsActive          *bool            `json:"is_active,omitempty"`
}
