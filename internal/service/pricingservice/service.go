package pricingservice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
	"gopos/internal/pkg/metrics"
	"gopos/internal/pricing"
)

// PriceListRepository carrega as tabelas candidatas de um produto para um grupo.
type PriceListRepository interface {
	FindForResolution(ctx context.Context, customerGroupID, productID string) ([]domain.PriceList, error)
}

// ProductRepository fornece o produto e o seu preço base.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (domain.Product, error)
}

// CustomerGroupRepository confirma a existência do grupo.
type CustomerGroupRepository interface {
	FindByID(ctx context.Context, id string) (domain.CustomerGroup, error)
}

// Service resolve preços. Não grava nada: só lê e calcula.
type Service struct {
	lists    PriceListRepository
	products ProductRepository
	groups   CustomerGroupRepository
	engine   *pricing.Engine
	metrics  *metrics.PricingMetrics
	logger   logger.Logger
	now      func() time.Time
}

// NewService cria o serviço. m pode ser nil.
func NewService(lists PriceListRepository, products ProductRepository, groups CustomerGroupRepository,
	engine *pricing.Engine, m *metrics.PricingMetrics, log logger.Logger) *Service {
	return &Service{
		lists:    lists,
		products: products,
		groups:   groups,
		engine:   engine,
		metrics:  m,
		logger:   log,
		now:      time.Now,
	}
}

// SetClock troca a fonte de "agora" usada quando a data de referência não é informada.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// ResolvePrice devolve o preço unitário efetivo de q.ProductID para o grupo,
// a quantidade e a data de referência informados.
func (s *Service) ResolvePrice(ctx context.Context, q domain.PriceQuery) (domain.PriceResolution, error) {
	start := time.Now()

	res, err := s.resolve(ctx, q, true)
	if err != nil {
		_, category, _ := apperror.MapToHTTPStatus(err)
		s.metrics.ObserveFailure(category, time.Since(start))
		return domain.PriceResolution{}, err
	}

	s.metrics.ObserveResolution(string(res.Source), time.Since(start))
	return res, nil
}

func (s *Service) resolve(ctx context.Context, q domain.PriceQuery, checkGroup bool) (domain.PriceResolution, error) {
	if _, err := uuid.Parse(q.ProductID); err != nil {
		return domain.PriceResolution{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}
	if _, err := uuid.Parse(q.CustomerGroupID); err != nil {
		return domain.PriceResolution{}, apperror.NewValidationError("O ID do grupo de clientes deve ser um UUID válido.")
	}
	if !q.Quantity.IsPositive() {
		return domain.PriceResolution{}, apperror.NewValidationError(domain.MsgQuantityNotPositive)
	}
	if q.AsOf.IsZero() {
		q.AsOf = s.now().UTC()
	}

	if checkGroup {
		if _, err := s.groups.FindByID(ctx, q.CustomerGroupID); err != nil {
			return domain.PriceResolution{}, err
		}
	}

	product, err := s.products.FindByID(ctx, q.ProductID)
	if err != nil {
		return domain.PriceResolution{}, err
	}

	lists, err := s.lists.FindForResolution(ctx, q.CustomerGroupID, q.ProductID)
	if err != nil {
		return domain.PriceResolution{}, err
	}

	res, err := s.engine.Resolve(lists, product, q)
	if err != nil {
		s.logger.Warn("Resolução de preço rejeitada.", map[string]interface{}{
			"product_id":        q.ProductID,
			"customer_group_id": q.CustomerGroupID,
			"quantity":          q.Quantity.String(),
			"error":             err.Error(),
		})
		return domain.PriceResolution{}, err
	}

	s.logger.Debug("Preço resolvido.", map[string]interface{}{
		"product_id":        q.ProductID,
		"customer_group_id": q.CustomerGroupID,
		"quantity":          q.Quantity.String(),
		"unit_price":        res.UnitPrice.String(),
		"source":            res.Source,
		"candidates":        len(lists),
	})
	return res, nil
}

// Quote resolve todas as linhas para o mesmo grupo e data. Qualquer linha com
// erro invalida a cotação inteira.
func (s *Service) Quote(ctx context.Context, req domain.QuoteRequest) (domain.Quote, error) {
	if len(req.Lines) == 0 {
		return domain.Quote{}, apperror.NewValidationError("A cotação precisa de ao menos uma linha.")
	}
	if _, err := uuid.Parse(req.CustomerGroupID); err != nil {
		return domain.Quote{}, apperror.NewValidationError("O ID do grupo de clientes deve ser um UUID válido.")
	}

	asOf := s.now().UTC()
	if req.AsOf != nil && !req.AsOf.IsZero() {
		asOf = *req.AsOf
	}

	if _, err := s.groups.FindByID(ctx, req.CustomerGroupID); err != nil {
		return domain.Quote{}, err
	}

	scale := s.engine.Options().Scale
	quote := domain.Quote{
		CustomerGroupID: req.CustomerGroupID,
		AsOf:            asOf,
		Lines:           make([]domain.QuotedLine, 0, len(req.Lines)),
		Total:           decimal.Zero,
		TotalDiscount:   decimal.Zero,
	}

	for i, line := range req.Lines {
		start := time.Now()
		res, err := s.resolve(ctx, domain.PriceQuery{
			ProductID:       line.ProductID,
			CustomerGroupID: req.CustomerGroupID,
			Quantity:        line.Quantity,
			AsOf:            asOf,
		}, false)
		if err != nil {
			_, category, _ := apperror.MapToHTTPStatus(err)
			s.metrics.ObserveFailure(category, time.Since(start))
			return domain.Quote{}, fmt.Errorf("linha %d: %w", i+1, err)
		}
		s.metrics.ObserveResolution(string(res.Source), time.Since(start))

		lineTotal := res.UnitPrice.Mul(line.Quantity).Round(scale)
		quote.Lines = append(quote.Lines, domain.QuotedLine{PriceResolution: res, LineTotal: lineTotal})
		quote.Total = quote.Total.Add(lineTotal)
		quote.TotalDiscount = quote.TotalDiscount.Add(res.DiscountApplied.Mul(line.Quantity))
	}
	quote.TotalDiscount = quote.TotalDiscount.Round(scale)

	s.logger.Info("Cotação calculada.", map[string]interface{}{
		"customer_group_id": req.CustomerGroupID,
		"lines":             len(quote.Lines),
		"total":             quote.Total.String(),
	})
	return quote, nil
}
