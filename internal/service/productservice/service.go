package productservice

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ProductRepository define o contrato que este Serviço espera da camada de
// persistência (Postgres com cache Redis na frente).
type ProductRepository interface {
	Save(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, id string) (domain.Product, error)
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
}

// Service mantém o catálogo de produtos.
type Service struct {
	repo   ProductRepository
	logger logger.Logger
	now    func() time.Time
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo ProductRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log, now: time.Now}
}

// CreateProduct cadastra um produto ativo. O preço base não pode ser negativo.
func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	sku := strings.TrimSpace(req.SKU)
	name := strings.TrimSpace(req.Name)
	if sku == "" || name == "" {
		return domain.Product{}, apperror.NewValidationError("Nome e SKU são obrigatórios para o produto.")
	}
	if req.BasePrice.IsNegative() {
		return domain.Product{}, apperror.NewValidationError("O preço base do produto não pode ser negativo.")
	}

	now := s.now().UTC()
	product := domain.Product{
		ID:          uuid.New().String(),
		SKU:         sku,
		Name:        name,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Save(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}
	s.logger.Info("Produto criado.", map[string]interface{}{"id": created.ID, "sku": created.SKU})
	return created, nil
}

// GetProductByID busca um produto pelo ID.
func (s *Service) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Product{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}
	return s.repo.FindByID(ctx, id)
}

// GetProducts lista o catálogo paginado. Filtros aceitos: name, sku, is_active.
func (s *Service) GetProducts(ctx context.Context, page, limit int, filters map[string]string) (domain.PaginatedProducts, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	filter := domain.ProductFilter{
		Page:  page,
		Limit: limit,
		Name:  filters["name"],
		SKU:   filters["sku"],
	}
	if v, ok := filters["is_active"]; ok && v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return domain.PaginatedProducts{}, apperror.NewValidationError("O filtro is_active deve ser true ou false.")
		}
		filter.ActiveOnly = active
	}

	products, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Falha ao buscar produtos no repositório.", err)
		return domain.PaginatedProducts{}, err
	}

	return domain.PaginatedProducts{Items: products, Total: total, Page: page, Limit: limit}, nil
}

// UpdateProduct aplica uma atualização parcial. O SKU é imutável.
func (s *Service) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return domain.Product{}, apperror.NewValidationError("O nome do produto não pode ser vazio.")
		}
		product.Name = name
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.BasePrice != nil {
		if patch.BasePrice.IsNegative() {
			return domain.Product{}, apperror.NewValidationError("O preço base do produto não pode ser negativo.")
		}
		product.BasePrice = *patch.BasePrice
	}
	if patch.IsActive != nil {
		product.IsActive = *patch.IsActive
	}
	product.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}
	s.logger.Info("Produto atualizado.", map[string]interface{}{"id": updated.ID, "base_price": updated.BasePrice.String()})
	return updated, nil
}
