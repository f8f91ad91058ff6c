package warehouse

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gopos/internal/api/response"
	"gopos/internal/domain"
	"gopos/internal/pkg/logger"
	"gopos/internal/pkg/validation"
)

// WarehouseService define o contrato que o Handler espera da camada de Serviço.
type WarehouseService interface {
	CreateWarehouse(ctx context.Context, req domain.WarehouseRequest) (domain.Warehouse, error)
	GetWarehouseByID(ctx context.Context, id string) (domain.Warehouse, error)
	GetAllWarehouses(ctx context.Context) ([]domain.Warehouse, error)
	UpdateWarehouse(ctx context.Context, id string, req domain.WarehouseRequest) (domain.Warehouse, error)
	DeleteWarehouse(ctx context.Context, id string) error
}

// Handler agrupa todos os métodos de Handler de armazéns.
type Handler struct {
	Service WarehouseService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc WarehouseService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// CreateWarehouseHandler lida com a requisição POST /v1/warehouses.
// @Summary Cria um novo armazém
// @Tags warehouses
// @Accept json
// @Produce json
// @Param warehouse body domain.WarehouseRequest true "Dados do armazém para criação"
// @Success 201 {object} domain.Warehouse "Armazém criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 409 {object} domain.ErrorResponse "Código duplicado"
// @Security ApiKeyAuth
// @Router /warehouses [post]
func (h *Handler) CreateWarehouseHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.WarehouseRequest
	if err := validation.DecodeJSONBody(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	created, err := h.Service.CreateWarehouse(r.Context(), req)
	response.Handle(w, r, h.Logger, created, err, http.StatusCreated)
}

// GetWarehouseByIDHandler lida com a requisição GET /v1/warehouses/{id}.
// @Summary Obtém um armazém por ID
// @Tags warehouses
// @Produce json
// @Param id path string true "ID do Armazém"
// @Success 200 {object} domain.Warehouse "Armazém encontrado"
// @Failure 404 {object} domain.ErrorResponse "Armazém não encontrado"
// @Security ApiKeyAuth
// @Router /warehouses/{id} [get]
func (h *Handler) GetWarehouseByIDHandler(w http.ResponseWriter, r *http.Request) {
	wh, err := h.Service.GetWarehouseByID(r.Context(), chi.URLParam(r, "id"))
	response.Handle(w, r, h.Logger, wh, err, http.StatusOK)
}

// GetAllWarehousesHandler lida com a requisição GET /v1/warehouses.
// @Summary Lista todos os armazéns
// @Tags warehouses
// @Produce json
// @Success 200 {array} domain.Warehouse
// @Security ApiKeyAuth
// @Router /warehouses [get]
func (h *Handler) GetAllWarehousesHandler(w http.ResponseWriter, r *http.Request) {
	warehouses, err := h.Service.GetAllWarehouses(r.Context())
	response.Handle(w, r, h.Logger, warehouses, err, http.StatusOK)
}

// UpdateWarehouseHandler lida com a requisição PUT /v1/warehouses/{id}.
// @Summary Atualiza um armazém
// @Tags warehouses
// @Accept json
// @Produce json
// @Param id path string true "ID do Armazém"
// @Param warehouse body domain.WarehouseRequest true "Dados do armazém"
// @Success 200 {object} domain.Warehouse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /warehouses/{id} [put]
func (h *Handler) UpdateWarehouseHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.WarehouseRequest
	if err := validation.DecodeJSONBody(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	updated, err := h.Service.UpdateWarehouse(r.Context(), chi.URLParam(r, "id"), req)
	response.Handle(w, r, h.Logger, updated, err, http.StatusOK)
}

// DeleteWarehouseHandler lida com a requisição DELETE /v1/warehouses/{id}.
// @Summary Remove um armazém sem saldo
// @Tags warehouses
// @Param id path string true "ID do Armazém"
// @Success 204 "Removido"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Armazém com saldo"
// @Security ApiKeyAuth
// @Router /warehouses/{id} [delete]
func (h *Handler) DeleteWarehouseHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.DeleteWarehouse(r.Context(), chi.URLParam(r, "id"))
	response.Handle(w, r, h.Logger, nil, err, http.StatusNoContent)
}
