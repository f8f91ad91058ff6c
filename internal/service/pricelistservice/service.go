package pricelistservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
)

// PriceListRepository define o contrato de persistência de tabelas e itens.
type PriceListRepository interface {
	Create(ctx context.Context, list domain.PriceList) (domain.PriceList, error)
	FindByID(ctx context.Context, id string) (domain.PriceList, error)
	List(ctx context.Context, filter domain.PriceListFilter) ([]domain.PriceList, int, error)
	Update(ctx context.Context, list domain.PriceList) (domain.PriceList, error)
	ExpireOverdue(ctx context.Context, asOf time.Time) (int64, error)
	AddItem(ctx context.Context, item domain.PriceListItem) (domain.PriceListItem, error)
	FindItem(ctx context.Context, listID, itemID string) (domain.PriceListItem, error)
	UpdateItem(ctx context.Context, item domain.PriceListItem) (domain.PriceListItem, error)
}

// CustomerGroupRepository confirma a existência do grupo dono da tabela.
type CustomerGroupRepository interface {
	FindByID(ctx context.Context, id string) (domain.CustomerGroup, error)
}

// ProductRepository confirma a existência dos produtos dos itens.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (domain.Product, error)
}

// Paginação padrão da listagem.
const (
	defaultLimit = 20
	maxLimit     = 100
)

var hundred = decimal.NewFromInt(100)

// Service administra tabelas de preço. Tabelas nunca são apagadas: são
// aposentadas (inactive) ou expiradas.
type Service struct {
	repo     PriceListRepository
	groups   CustomerGroupRepository
	products ProductRepository
	logger   logger.Logger
	now      func() time.Time
}

// NewService cria o serviço de tabelas de preço.
func NewService(repo PriceListRepository, groups CustomerGroupRepository, products ProductRepository, log logger.Logger) *Service {
	return &Service{repo: repo, groups: groups, products: products, logger: log, now: time.Now}
}

// SetClock troca a fonte de "agora" (timestamps e expiração).
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CreatePriceList valida o payload, aplica os padrões e grava a tabela com seus itens.
func (s *Service) CreatePriceList(ctx context.Context, req domain.PriceListCreateRequest) (domain.PriceList, error) {
	if _, err := s.groups.FindByID(ctx, req.CustomerGroupID); err != nil {
		return domain.PriceList{}, err
	}

	now := s.now().UTC()
	list := domain.PriceList{
		ID:              uuid.New().String(),
		Name:            strings.TrimSpace(req.Name),
		Code:            strings.TrimSpace(req.Code),
		Description:     req.Description,
		CustomerGroupID: req.CustomerGroupID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Priority:        domain.MinPriority,
		DiscountType:    req.DiscountType,
		Status:          domain.PriceListActive,
		ApplicableOn:    domain.ApplicableOnAll,
		IsDefault:       req.IsDefault,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.Priority != nil {
		list.Priority = *req.Priority
	}
	if req.Status != "" {
		list.Status = req.Status
	}
	if req.ApplicableOn != "" {
		list.ApplicableOn = req.ApplicableOn
	}
	if err := validateList(list); err != nil {
		return domain.PriceList{}, err
	}

	for i, itemReq := range req.Items {
		item, err := s.buildItem(ctx, list, itemReq, now)
		if err != nil {
			return domain.PriceList{}, fmt.Errorf("item %d: %w", i+1, err)
		}
		list.Items = append(list.Items, item)
	}

	created, err := s.repo.Create(ctx, list)
	if err != nil {
		return domain.PriceList{}, err
	}

	s.logger.Info("Tabela de preço criada.", map[string]interface{}{
		"id":                created.ID,
		"code":              created.Code,
		"customer_group_id": created.CustomerGroupID,
		"is_default":        created.IsDefault,
		"items":             len(created.Items),
	})
	return created, nil
}

// GetPriceList retorna a tabela com todos os itens.
func (s *Service) GetPriceList(ctx context.Context, id string) (domain.PriceList, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.PriceList{}, apperror.NewValidationError("O ID da tabela de preço deve ser um UUID válido.")
	}
	return s.repo.FindByID(ctx, id)
}

// ListPriceLists aplica os padrões de paginação e delega ao repositório.
func (s *Service) ListPriceLists(ctx context.Context, filter domain.PriceListFilter) ([]domain.PriceList, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, apperror.NewValidationError(fmt.Sprintf("Status inválido: %s.", filter.Status))
	}
	return s.repo.List(ctx, filter)
}

// UpdatePriceList aplica uma atualização parcial. Se o tipo de desconto mudar,
// os itens que o herdam são revalidados.
func (s *Service) UpdatePriceList(ctx context.Context, id string, patch domain.PriceListPatch) (domain.PriceList, error) {
	list, err := s.GetPriceList(ctx, id)
	if err != nil {
		return domain.PriceList{}, err
	}

	if patch.Name != nil {
		list.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		list.Description = *patch.Description
	}
	if patch.ClearStart {
		list.StartDate = nil
	} else if patch.StartDate != nil {
		list.StartDate = patch.StartDate
	}
	if patch.ClearEnd {
		list.EndDate = nil
	} else if patch.EndDate != nil {
		list.EndDate = patch.EndDate
	}
	if patch.Priority != nil {
		list.Priority = *patch.Priority
	}
	if patch.DiscountType != nil {
		list.DiscountType = *patch.DiscountType
	}
	if patch.Status != nil {
		list.Status = *patch.Status
	}
	if patch.ApplicableOn != nil {
		list.ApplicableOn = *patch.ApplicableOn
	}
	if patch.IsDefault != nil {
		list.IsDefault = *patch.IsDefault
	}

	if err := validateList(list); err != nil {
		return domain.PriceList{}, err
	}
	if patch.DiscountType != nil {
		for _, it := range list.Items {
			if err := validateItem(it, list.DiscountType); err != nil {
				return domain.PriceList{}, fmt.Errorf("item %s: %w", it.ID, err)
			}
		}
	}

	list.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, list)
	if err != nil {
		return domain.PriceList{}, err
	}
	updated.Items = list.Items
	return updated, nil
}

// RetirePriceList tira a tabela de uso (status inactive). Aposentar de novo não é erro.
func (s *Service) RetirePriceList(ctx context.Context, id string) (domain.PriceList, error) {
	list, err := s.GetPriceList(ctx, id)
	if err != nil {
		return domain.PriceList{}, err
	}
	if list.Status == domain.PriceListInactive {
		return list, nil
	}

	list.Status = domain.PriceListInactive
	list.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, list)
	if err != nil {
		return domain.PriceList{}, err
	}
	updated.Items = list.Items

	s.logger.Info("Tabela de preço aposentada.", map[string]interface{}{"id": id, "code": list.Code})
	return updated, nil
}

// ExpireOverdue grava expired nas tabelas ativas cujo fim de vigência é anterior a asOf.
// asOf zero significa agora.
func (s *Service) ExpireOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	if asOf.IsZero() {
		asOf = s.now().UTC()
	}
	n, err := s.repo.ExpireOverdue(ctx, asOf)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Tabelas de preço expiradas.", map[string]interface{}{"as_of": asOf, "expired": n})
	return n, nil
}

// AddItem inclui um item numa tabela existente.
func (s *Service) AddItem(ctx context.Context, listID string, req domain.PriceListItemRequest) (domain.PriceListItem, error) {
	list, err := s.GetPriceList(ctx, listID)
	if err != nil {
		return domain.PriceListItem{}, err
	}
	item, err := s.buildItem(ctx, list, req, s.now().UTC())
	if err != nil {
		return domain.PriceListItem{}, err
	}
	return s.repo.AddItem(ctx, item)
}

// UpdateItem aplica uma atualização parcial a um item da tabela.
func (s *Service) UpdateItem(ctx context.Context, listID, itemID string, patch domain.PriceListItemPatch) (domain.PriceListItem, error) {
	list, item, err := s.loadItem(ctx, listID, itemID)
	if err != nil {
		return domain.PriceListItem{}, err
	}

	if patch.Price != nil {
		item.Price = *patch.Price
	}
	if patch.MinQuantity != nil {
		item.MinQuantity = *patch.MinQuantity
	}
	if patch.ClearMaxQuantity {
		item.MaxQuantity = nil
	} else if patch.MaxQuantity != nil {
		item.MaxQuantity = patch.MaxQuantity
	}
	if patch.DiscountType != nil {
		item.DiscountType = *patch.DiscountType
	}
	if patch.DiscountValue != nil {
		item.DiscountValue = *patch.DiscountValue
	}
	if patch.DiscountRate != nil {
		item.DiscountRate = *patch.DiscountRate
	}
	if patch.SpecialConditions != nil {
		item.SpecialConditions = *patch.SpecialConditions
	}
	if patch.IsActive != nil {
		item.IsActive = *patch.IsActive
	}

	if err := validateItem(item, list.DiscountType); err != nil {
		return domain.PriceListItem{}, err
	}
	item.UpdatedAt = s.now().UTC()
	return s.repo.UpdateItem(ctx, item)
}

// DeactivateItem retira o item da resolução sem apagá-lo.
func (s *Service) DeactivateItem(ctx context.Context, listID, itemID string) (domain.PriceListItem, error) {
	inactive := false
	return s.UpdateItem(ctx, listID, itemID, domain.PriceListItemPatch{IsActive: &inactive})
}

func (s *Service) loadItem(ctx context.Context, listID, itemID string) (domain.PriceList, domain.PriceListItem, error) {
	if _, err := uuid.Parse(itemID); err != nil {
		return domain.PriceList{}, domain.PriceListItem{}, apperror.NewValidationError("O ID do item deve ser um UUID válido.")
	}
	list, err := s.GetPriceList(ctx, listID)
	if err != nil {
		return domain.PriceList{}, domain.PriceListItem{}, err
	}
	item, err := s.repo.FindItem(ctx, listID, itemID)
	if err != nil {
		return domain.PriceList{}, domain.PriceListItem{}, err
	}
	return list, item, nil
}

func (s *Service) buildItem(ctx context.Context, list domain.PriceList, req domain.PriceListItemRequest, now time.Time) (domain.PriceListItem, error) {
	if _, err := s.products.FindByID(ctx, req.ProductID); err != nil {
		return domain.PriceListItem{}, err
	}

	item := domain.PriceListItem{
		ID:                uuid.New().String(),
		PriceListID:       list.ID,
		ProductID:         req.ProductID,
		Price:             req.Price,
		MinQuantity:       domain.DefaultMinQuantity,
		MaxQuantity:       req.MaxQuantity,
		DiscountType:      req.DiscountType,
		DiscountValue:     req.DiscountValue,
		DiscountRate:      req.DiscountRate,
		SpecialConditions: req.SpecialConditions,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.MinQuantity != nil {
		item.MinQuantity = *req.MinQuantity
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	if err := validateItem(item, list.DiscountType); err != nil {
		return domain.PriceListItem{}, err
	}
	return item, nil
}

func validateList(l domain.PriceList) error {
	if l.Name == "" || l.Code == "" {
		return apperror.NewValidationError("Nome e código da tabela de preço são obrigatórios.")
	}
	if l.Priority < domain.MinPriority || l.Priority > domain.MaxPriority {
		return apperror.NewValidationError(fmt.Sprintf("A prioridade deve estar entre %d e %d.", domain.MinPriority, domain.MaxPriority))
	}
	if !l.DiscountType.IsValid() {
		return apperror.NewValidationError(fmt.Sprintf("Tipo de desconto inválido: %q.", l.DiscountType))
	}
	if !l.Status.IsValid() {
		return apperror.NewValidationError(fmt.Sprintf("Status inválido: %q.", l.Status))
	}
	if !l.ApplicableOn.IsValid() {
		return apperror.NewValidationError(fmt.Sprintf("Alcance inválido: %q.", l.ApplicableOn))
	}
	if l.StartDate != nil && l.EndDate != nil && l.StartDate.After(*l.EndDate) {
		return apperror.NewValidationError("A data inicial deve ser anterior ou igual à data final.")
	}
	return nil
}

// validateItem confere as faixas e os valores do item; listType é o tipo herdado
// quando o item não define o seu.
func validateItem(it domain.PriceListItem, listType domain.DiscountType) error {
	if it.Price.IsNegative() {
		return apperror.NewValidationError("O preço não pode ser negativo.")
	}
	if it.MinQuantity.LessThan(domain.SmallestQuantity) {
		return apperror.NewValidationError(fmt.Sprintf("A quantidade mínima deve ser ao menos %s.", domain.SmallestQuantity))
	}
	if it.MaxQuantity != nil && it.MaxQuantity.LessThan(it.MinQuantity) {
		return apperror.NewValidationError("A quantidade máxima deve ser maior ou igual à mínima.")
	}
	if it.DiscountType != "" && !it.DiscountType.IsValid() {
		return apperror.NewValidationError(fmt.Sprintf("Tipo de desconto inválido: %q.", it.DiscountType))
	}
	if it.DiscountValue.IsNegative() || it.DiscountRate.IsNegative() {
		return apperror.NewValidationError("Desconto não pode ser negativo.")
	}
	if it.DiscountRate.GreaterThan(hundred) {
		return apperror.NewValidationError("A taxa de desconto não pode passar de 100%.")
	}

	effective := it.DiscountType
	if effective == "" {
		effective = listType
	}
	if effective == domain.DiscountPercentage && it.DiscountValue.GreaterThan(hundred) {
		return apperror.NewValidationError("Desconto percentual não pode passar de 100%.")
	}
	return nil
}
