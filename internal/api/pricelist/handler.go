package pricelist

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gopos/internal/api/response"
	"gopos/internal/domain"
	"gopos/internal/pkg/logger"
	"gopos/internal/pkg/middleware"
	"gopos/internal/pkg/validation"
)

// PriceListService define o contrato que o Handler espera da camada de Serviço.
type PriceListService interface {
	CreatePriceList(ctx context.Context, req domain.PriceListCreateRequest) (domain.PriceList, error)
	GetPriceList(ctx context.Context, id string) (domain.PriceList, error)
	ListPriceLists(ctx context.Context, filter domain.PriceListFilter) ([]domain.PriceList, int, error)
	UpdatePriceList(ctx context.Context, id string, patch domain.PriceListPatch) (domain.PriceList, error)
	RetirePriceList(ctx context.Context, id string) (domain.PriceList, error)
	ExpireOverdue(ctx context.Context, asOf time.Time) (int64, error)
	AddItem(ctx context.Context, listID string, req domain.PriceListItemRequest) (domain.PriceListItem, error)
	UpdateItem(ctx context.Context, listID, itemID string, patch domain.PriceListItemPatch) (domain.PriceListItem, error)
	DeactivateItem(ctx context.Context, listID, itemID string) (domain.PriceListItem, error)
}

// ExpireResult é a resposta da expiração em lote.
type ExpireResult struct {
	Expired int64     `json:"expired"`
	AsOf    time.Time `json:"as_of,omitempty"`
}

// Handler agrupa os endpoints de tabelas de preço.
type Handler struct {
	Service PriceListService
	Logger  logger.Logger
}

func NewHandler(svc PriceListService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

func (h *Handler) audit(r *http.Request, action, id string) {
	fields := map[string]interface{}{"action": action, "price_list_id": id}
	if claims, ok := middleware.GetUserClaimsFromContext(r.Context()); ok {
		fields["user_id"] = claims.UserID
	}
	h.Logger.Info("Alteração de tabela de preço.", fields)
}

// CreatePriceListHandler lida com a requisição POST /v1/price-lists.
// @Summary Cria uma tabela de preço
// @Description Cria a tabela com seus itens. Marcar is_default desmarca a padrão anterior do grupo.
// @Tags price-lists
// @Accept json
// @Produce json
// @Param list body domain.PriceListCreateRequest true "Tabela e itens"
// @Success 201 {object} domain.PriceList
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Grupo ou produto inexistente"
// @Failure 409 {object} domain.ErrorResponse "Código duplicado"
// @Security ApiKeyAuth
// @Router /price-lists [post]
func (h *Handler) CreatePriceListHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.PriceListCreateRequest
	if err := validation.DecodeJSONBody(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	list, err := h.Service.CreatePriceList(r.Context(), req)
	if err == nil {
		h.audit(r, "create", list.ID)
	}
	response.Handle(w, r, h.Logger, list, err, http.StatusCreated)
}

// ListPriceListsHandler lida com a requisição GET /v1/price-lists.
// @Summary Lista tabelas de preço
// @Tags price-lists
// @Produce json
// @Param customer_group_id query string false "Filtra pelo grupo"
// @Param status query string false "active, inactive ou expired"
// @Param page query int false "Página (padrão 1)"
// @Param limit query int false "Itens por página (padrão 20, máx. 100)"
// @Success 200 {object} response.Page
// @Failure 400 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /price-lists [get]
func (h *Handler) ListPriceListsHandler(w http.ResponseWriter, r *http.Request) {
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

	filter := domain.PriceListFilter{
		CustomerGroupID: r.URL.Query().Get("customer_group_id"),
		Status:          domain.PriceListStatus(r.URL.Query().Get("status")),
		Page:            page,
		Limit:           limit,
	}
	lists, total, err := h.Service.ListPriceLists(r.Context(), filter)
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	response.Handle(w, r, h.Logger, response.Page{Items: lists, Total: total, Page: page, Limit: limit}, nil, http.StatusOK)
}

// GetPriceListHandler lida com a requisição GET /v1/price-lists/{id}.
// @Summary Obtém uma tabela de preço com seus itens
// @Tags price-lists
// @Produce json
// @Param id path string true "ID da tabela"
// @Success 200 {object} domain.PriceList
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /price-lists/{id} [get]
func (h *Handler) GetPriceListHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.GetPriceList(r.Context(), chi.URLParam(r, "id"))
	response.Handle(w, r, h.Logger, list, err, http.StatusOK)
}

// UpdatePriceListHandler lida com a requisição PATCH /v1/price-lists/{id}.
// @Summary Atualiza parcialmente uma tabela de preço
// @Tags price-lists
// @Accept json
// @Produce json
// @Param id path string true "ID da tabela"
// @Param patch body domain.PriceListPatch true "Campos a alterar"
// @Success 200 {object} domain.PriceList
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /price-lists/{id} [patch]
func (h *Handler) UpdatePriceListHandler(w http.ResponseWriter, r *http.Request) {
	var patch domain.PriceListPatch
	if err := validation.DecodeJSONBody(r, &patch); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	id := chi.URLParam(r, "id")
	list, err := h.Service.UpdatePriceList(r.Context(), id, patch)
	if err == nil {
		h.audit(r, "update", id)
	}
	response.Handle(w, r, h.Logger, list, err, http.StatusOK)
}

// RetirePriceListHandler lida com a requisição POST /v1/price-lists/{id}/retire.
// @Summary Inativa uma tabela de preço
// @Tags price-lists
// @Produce json
// @Param id path string true "ID da tabela"
// @Success 200 {object} domain.PriceList
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /price-lists/{id}/retire [post]
func (h *Handler) RetirePriceListHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	list, err := h.Service.RetirePriceList(r.Context(), id)
	if err == nil {
		h.audit(r, "retire", id)
	}
	response.Handle(w, r, h.Logger, list, err, http.StatusOK)
}

// ExpireOverdueHandler lida com a requisição POST /v1/price-lists/expire.
// @Summary Marca como expiradas as tabelas vencidas
// @Tags price-lists
// @Produce json
// @Param as_of query string false "Data de corte (padrão agora)"
// @Success 200 {object} ExpireResult
// @Failure 400 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /price-lists/expire [post]
func (h *Handler) ExpireOverdueHandler(w http.ResponseWriter, r *http.Request) {
	asOf, err := validation.ParseQueryTime(r, "as_of")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	n, err := h.Service.ExpireOverdue(r.Context(), asOf)
	response.Handle(w, r, h.Logger, ExpireResult{Expired: n, AsOf: asOf}, err, http.StatusOK)
}

// AddItemHandler lida com a requisição POST /v1/price-lists/{id}/items.
// @Summary Adiciona um item à tabela
// @Tags price-lists
// @Accept json
// @Produce json
// @Param id path string true "ID da tabela"
// @Param item body domain.PriceListItemRequest true "Item"
// @Success 201 {object} domain.PriceListItem
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /price-lists/{id}/items [post]
func (h *Handler) AddItemHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.PriceListItemRequest
	if err := validation.DecodeJSONBody(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	id := chi.URLParam(r, "id")
	item, err := h.Service.AddItem(r.Context(), id, req)
	if err == nil {
		h.audit(r, "add_item", id)
	}
	response.Handle(w, r, h.Logger, item, err, http.StatusCreated)
}

// UpdateItemHandler lida com a requisição PATCH /v1/price-lists/{id}/items/{itemID}.
// @Summary Atualiza parcialmente um item
// @Tags price-lists
// @Accept json
// @Produce json
// @Param id path string true "ID da tabela"
// @Param itemID path string true "ID do item"
// @Param patch body domain.PriceListItemPatch true "Campos a alterar"
// @Success 200 {object} domain.PriceListItem
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /price-lists/{id}/items/{itemID} [patch]
func (h *Handler) UpdateItemHandler(w http.ResponseWriter, r *http.Request) {
	var patch domain.PriceListItemPatch
	if err := validation.DecodeJSONBody(r, &patch); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	id := chi.URLParam(r, "id")
	item, err := h.Service.UpdateItem(r.Context(), id, chi.URLParam(r, "itemID"), patch)
	if err == nil {
		h.audit(r, "update_item", id)
	}
	response.Handle(w, r, h.Logger, item, err, http.StatusOK)
}

// DeactivateItemHandler lida com a requisição POST /v1/price-lists/{id}/items/{itemID}/deactivate.
// @Summary Desativa um item
// @Tags price-lists
// @Produce json
// @Param id path string true "ID da tabela"
// @Param itemID path string true "ID do item"
// @Success 200 {object} domain.PriceListItem
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /price-lists/{id}/items/{itemID}/deactivate [post]
func (h *Handler) DeactivateItemHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := h.Service.DeactivateItem(r.Context(), id, chi.URLParam(r, "itemID"))
	if err == nil {
		h.audit(r, "deactivate_item", id)
	}
	response.Handle(w, r, h.Logger, item, err, http.StatusOK)
}
