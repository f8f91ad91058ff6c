package product

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gopos/internal/api/response"
	"gopos/internal/domain"
	"gopos/internal/pkg/logger"
	"gopos/internal/pkg/middleware"
	"gopos/internal/pkg/validation"
)

// ProductService define o contrato que o Handler espera da camada de Serviço.
type ProductService interface {
	CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error)
	GetProductByID(ctx context.Context, id string) (domain.Product, error)
	GetProducts(ctx context.Context, page, limit int, filters map[string]string) (domain.PaginatedProducts, error)
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error)
}

// Handler agrupa todos os métodos de Handler do produto.
type Handler struct {
	Service ProductService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProductService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// CreateProductHandler lida com a requisição POST /v1/products.
// @Summary Cadastra um produto
// @Tags products
// @Accept json
// @Produce json
// @Param product body domain.ProductCreateRequest true "Dados do produto"
// @Success 201 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "SKU duplicado"
// @Security ApiKeyAuth
// @Router /products [post]
func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductCreateRequest
	if err := validation.DecodeJSONBody(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	if claims, ok := middleware.GetUserClaimsFromContext(r.Context()); ok {
		h.Logger.Info("Tentativa de criação de produto por", map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		})
	}

	created, err := h.Service.CreateProduct(r.Context(), req)
	response.Handle(w, r, h.Logger, created, err, http.StatusCreated)
}

// GetProductByIDHandler lida com a requisição GET /v1/products/{id}.
// @Summary Obtém um produto por ID
// @Tags products
// @Produce json
// @Param id path string true "ID do produto"
// @Success 200 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse "ID inválido"
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Security ApiKeyAuth
// @Router /products/{id} [get]
func (h *Handler) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	product, err := h.Service.GetProductByID(r.Context(), chi.URLParam(r, "id"))
	response.Handle(w, r, h.Logger, product, err, http.StatusOK)
}

// GetProductsHandler lida com a requisição GET /v1/products.
// @Summary Lista produtos
// @Tags products
// @Produce json
// @Param page query int false "Página"
// @Param limit query int false "Itens por página"
// @Param name query string false "Parte do nome"
// @Param sku query string false "SKU exato"
// @Param is_active query bool false "Somente ativos"
// @Success 200 {object} domain.PaginatedProducts
// @Failure 400 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /products [get]
func (h *Handler) GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := validation.ParseQueryInt(r, "page", 1, 1, 100000)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	limit, err := validation.ParseQueryInt(r, "limit", 20, 1, 100)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	q := r.URL.Query()
	filters := map[string]string{
		"name":      q.Get("name"),
		"sku":       q.Get("sku"),
		"is_active": q.Get("is_active"),
	}

	result, err := h.Service.GetProducts(r.Context(), page, limit, filters)
	response.Handle(w, r, h.Logger, result, err, http.StatusOK)
}

// UpdateProductHandler lida com a requisição PATCH /v1/products/{id}.
// @Summary Atualiza parcialmente um produto
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "ID do produto"
// @Param patch body domain.ProductPatch true "Campos a alterar"
// @Success 200 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /products/{id} [patch]
func (h *Handler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	var patch domain.ProductPatch
	if err := validation.DecodeJSONBody(r, &patch); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	updated, err := h.Service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), patch)
	response.Handle(w, r, h.Logger, updated, err, http.StatusOK)
}
