package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSource indica de onde veio o preço resolvido.
type PriceSource string

const (
	SourcePriceList   PriceSource = "price_list"
	SourceDefaultList PriceSource = "default_list"
	SourceBasePrice   PriceSource = "base_price"
)

// MsgQuantityNotPositive é a mensagem de validação para quantidade zero ou negativa.
const MsgQuantityNotPositive = "A quantidade deve ser maior que zero."

// PriceQuery identifica uma resolução: produto, grupo, quantidade e data de referência.
type PriceQuery struct {
	ProductID       string
	CustomerGroupID string
	Quantity        decimal.Decimal
	AsOf            time.Time
}

// PriceResolution é o resultado de uma resolução de preço.
type PriceResolution struct {
	ProductID         string          `json:"product_id"`
	CustomerGroupID   string          `json:"customer_group_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	AsOf              time.Time       `json:"as_of"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	BasePrice         decimal.Decimal `json:"base_price"`
	DiscountApplied   decimal.Decimal `json:"discount_applied"`
	SourcePriceListID *string         `json:"source_price_list_id"`
	SourceItemID      *string         `json:"source_item_id,omitempty"`
	Source            PriceSource     `json:"source"`
}

// QuoteLine é uma linha de cotação (produto e quantidade).
type QuoteLine struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// QuoteRequest resolve várias linhas para o mesmo grupo e data.
type QuoteRequest struct {
	CustomerGroupID string      `json:"customer_group_id" validate:"required,uuid"`
	AsOf            *time.Time  `json:"as_of,omitempty"`
	Lines           []QuoteLine `json:"lines" validate:"required,min=1,max=200,dive"`
}

// QuotedLine é uma linha resolvida, com o total da linha.
type QuotedLine struct {
	PriceResolution
	LineTotal decimal.Decimal `json:"line_total"`
}

// Quote é a cotação completa.
type Quote struct {
	CustomerGroupID string          `json:"customer_group_id"`
	AsOf            time.Time       `json:"as_of"`
	Lines           []QuotedLine    `json:"lines"`
	Total           decimal.Decimal `json:"total"`
	TotalDiscount   decimal.Decimal `json:"total_discount"`
}
