package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"gopos/internal/domain"
)

// RatePolicy define o que fazer com DiscountRate quando o item também tem DiscountValue.
type RatePolicy string

const (
	// RateCompound aplica DiscountRate (percentual) sobre o preço já descontado.
	RateCompound RatePolicy = "compound"
	// RateIgnore desconsidera DiscountRate.
	RateIgnore RatePolicy = "ignore"
)

// ParseRatePolicy converte a configuração textual em RatePolicy.
func ParseRatePolicy(value string) (RatePolicy, error) {
	switch RatePolicy(value) {
	case RateCompound, RateIgnore:
		return RatePolicy(value), nil
	}
	return "", fmt.Errorf("política de taxa de desconto inválida %q", value)
}

// Options configura o cálculo. Use DefaultOptions para os padrões documentados.
type Options struct {
	// Scale é o número de casas decimais do preço final (padrão 2).
	Scale int32
	// RatePolicy controla DiscountRate (padrão RateCompound).
	RatePolicy RatePolicy
}

// DefaultOptions retorna Scale 2 e RateCompound.
func DefaultOptions() Options {
	return Options{Scale: 2, RatePolicy: RateCompound}
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// ApplyDiscount calcula o preço unitário final de um item e o desconto concedido
// em relação a item.Price. O resultado nunca é negativo.
func ApplyDiscount(item domain.PriceListItem, listType domain.DiscountType, opts Options) (unit, discount decimal.Decimal) {
	price := item.Price
	final := price

	discountType := item.DiscountType
	if discountType == "" {
		discountType = listType
	}

	switch discountType {
	case domain.DiscountPercentage:
		final = price.Mul(one.Sub(item.DiscountValue.Div(hundred)))
	case domain.DiscountFixedAmount:
		final = price.Sub(item.DiscountValue)
	}
	final = floorZero(final)

	if opts.RatePolicy == RateCompound && item.DiscountRate.IsPositive() {
		final = floorZero(final.Mul(one.Sub(item.DiscountRate.Div(hundred))))
	}

	final = final.Round(opts.Scale)
	return final, price.Sub(final)
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
