// Package pricing escolhe o item de tabela de preço aplicável a uma consulta e
// calcula o preço final. Não acessa banco nem relógio: tudo chega por parâmetro.
package pricing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"gopos/internal/domain"
	apperror "gopos/internal/errors"
)

// Match é o par tabela/item vencedor de uma resolução.
type Match struct {
	List domain.PriceList
	Item domain.PriceListItem
}

// Engine resolve preços a partir das tabelas candidatas já carregadas.
type Engine struct {
	opts Options
}

// NewEngine cria um Engine. Scale negativo vira o padrão.
func NewEngine(opts Options) *Engine {
	if opts.Scale < 0 {
		opts.Scale = DefaultOptions().Scale
	}
	if opts.RatePolicy == "" {
		opts.RatePolicy = DefaultOptions().RatePolicy
	}
	return &Engine{opts: opts}
}

// Options devolve a configuração efetiva.
func (e *Engine) Options() Options {
	return e.opts
}

// Resolve calcula o preço de q. lists deve conter as tabelas do grupo e as de
// alcance "all"; o filtro de status, data, produto e quantidade é feito aqui.
// Ordem: melhor tabela ativa na data, depois a tabela padrão do grupo, depois o
// preço base do produto.
func (e *Engine) Resolve(lists []domain.PriceList, product domain.Product, q domain.PriceQuery) (domain.PriceResolution, error) {
	res := domain.PriceResolution{
		ProductID:       q.ProductID,
		CustomerGroupID: q.CustomerGroupID,
		Quantity:        q.Quantity,
		AsOf:            q.AsOf,
	}

	if !q.Quantity.IsPositive() {
		return res, apperror.NewValidationError(domain.MsgQuantityNotPositive)
	}

	match, err := e.SelectCandidate(lists, q)
	if err != nil {
		return res, err
	}
	source := domain.SourcePriceList

	if match == nil {
		match, err = e.SelectDefault(lists, q)
		if err != nil {
			return res, err
		}
		source = domain.SourceDefaultList
	}

	if match == nil {
		res.BasePrice = product.BasePrice
		res.UnitPrice = product.BasePrice.Round(e.opts.Scale)
		res.DiscountApplied = decimal.Zero
		res.Source = domain.SourceBasePrice
		return res, nil
	}

	unit, discount := ApplyDiscount(match.Item, match.List.DiscountType, e.opts)
	listID, itemID := match.List.ID, match.Item.ID
	res.BasePrice = match.Item.Price
	res.UnitPrice = unit
	res.DiscountApplied = discount
	res.SourcePriceListID = &listID
	res.SourceItemID = &itemID
	res.Source = source
	return res, nil
}

// SelectCandidate escolhe entre as tabelas ativas, do grupo (ou de alcance "all")
// e vigentes em q.AsOf. Retorna nil quando nenhuma tem item aplicável.
func (e *Engine) SelectCandidate(lists []domain.PriceList, q domain.PriceQuery) (*Match, error) {
	var eligible []domain.PriceList
	for _, l := range lists {
		if l.EffectiveStatus(q.AsOf) != domain.PriceListActive {
			continue
		}
		if l.CustomerGroupID != q.CustomerGroupID && l.ApplicableOn != domain.ApplicableOnAll {
			continue
		}
		if !l.CoversDate(q.AsOf) {
			continue
		}
		eligible = append(eligible, l)
	}
	return pick(eligible, q)
}

// SelectDefault procura na tabela padrão do grupo, ignorando a janela de datas.
// O resultado não depende de a rotina de expiração já ter rodado.
func (e *Engine) SelectDefault(lists []domain.PriceList, q domain.PriceQuery) (*Match, error) {
	var defaults []domain.PriceList
	for _, l := range lists {
		if l.IsDefault && l.CustomerGroupID == q.CustomerGroupID && l.EffectiveStatus(q.AsOf) == domain.PriceListActive {
			defaults = append(defaults, l)
		}
	}
	return pick(defaults, q)
}

type listMatch struct {
	list  domain.PriceList
	items []domain.PriceListItem
}

func pick(lists []domain.PriceList, q domain.PriceQuery) (*Match, error) {
	var matches []listMatch
	for _, l := range lists {
		items := matchingItems(l.Items, q)
		if len(items) > 0 {
			matches = append(matches, listMatch{list: l, items: items})
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return outranks(matches[i].list, matches[j].list)
	})

	best := matches[0]
	if len(matches) > 1 && ties(best.list, matches[1].list) {
		return nil, apperror.NewAmbiguousConfigurationError(fmt.Sprintf(
			"as tabelas %s e %s têm a mesma prioridade (%d) e data de criação",
			best.list.Code, matches[1].list.Code, best.list.Priority))
	}

	item, err := bestTier(best.list, best.items)
	if err != nil {
		return nil, err
	}
	return &Match{List: best.list, Item: item}, nil
}

func matchingItems(items []domain.PriceListItem, q domain.PriceQuery) []domain.PriceListItem {
	var out []domain.PriceListItem
	for _, it := range items {
		if it.IsActive && it.ProductID == q.ProductID && it.CoversQuantity(q.Quantity) {
			out = append(out, it)
		}
	}
	return out
}

// outranks: maior prioridade primeiro; no empate, a tabela criada mais recentemente.
func outranks(a, b domain.PriceList) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func ties(a, b domain.PriceList) bool {
	return a.Priority == b.Priority && a.CreatedAt.Equal(b.CreatedAt)
}

// bestTier escolhe, dentro de uma tabela, a faixa mais específica (maior MinQuantity).
func bestTier(list domain.PriceList, items []domain.PriceListItem) (domain.PriceListItem, error) {
	best := items[0]
	ambiguous := false
	for _, it := range items[1:] {
		switch it.MinQuantity.Cmp(best.MinQuantity) {
		case 1:
			best, ambiguous = it, false
		case 0:
			ambiguous = true
		}
	}
	if ambiguous {
		return domain.PriceListItem{}, apperror.NewAmbiguousConfigurationError(fmt.Sprintf(
			"a tabela %s tem faixas sobrepostas para o produto %s a partir de %s",
			list.Code, best.ProductID, best.MinQuantity.String()))
	}
	return best, nil
}
