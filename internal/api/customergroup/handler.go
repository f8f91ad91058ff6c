package customergroup

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gopos/internal/api/response"
	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
	"gopos/internal/pkg/validation"
)

// CustomerGroupService define o contrato que o Handler espera da camada de Serviço.
type CustomerGroupService interface {
	CreateGroup(ctx context.Context, req domain.CustomerGroupRequest) (domain.CustomerGroup, error)
	GetGroup(ctx context.Context, id string) (domain.CustomerGroup, error)
	ListGroups(ctx context.Context, activeOnly bool) ([]domain.CustomerGroup, error)
	UpdateGroup(ctx context.Context, id string, req domain.CustomerGroupRequest) (domain.CustomerGroup, error)
}

type Handler struct {
	Service CustomerGroupService
	Logger  logger.Logger
}

func NewHandler(svc CustomerGroupService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// CreateGroupHandler lida com a requisição POST /v1/customer-groups.
// @Summary Cria um grupo de clientes
// @Tags customer-groups
// @Accept json
// @Produce json
// @Param group body domain.CustomerGroupRequest true "Grupo"
// @Success 201 {object} domain.CustomerGroup
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Código duplicado"
// @Security ApiKeyAuth
// @Router /customer-groups [post]
func (h *Handler) CreateGroupHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomerGroupRequest
	if err := validation.DecodeJSONBody(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	group, err := h.Service.CreateGroup(r.Context(), req)
	response.Handle(w, r, h.Logger, group, err, http.StatusCreated)
}

// ListGroupsHandler lida com a requisição GET /v1/customer-groups.
// @Summary Lista grupos de clientes
// @Tags customer-groups
// @Produce json
// @Param active query bool false "Somente ativos"
// @Success 200 {array} domain.CustomerGroup
// @Security ApiKeyAuth
// @Router /customer-groups [get]
func (h *Handler) ListGroupsHandler(w http.ResponseWriter, r *http.Request) {
	activeOnly := false
	if raw := r.URL.Query().Get("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(w, r, h.Logger, apperror.NewValidationError("O parâmetro active deve ser true ou false."))
			return
		}
		activeOnly = v
	}

	groups, err := h.Service.ListGroups(r.Context(), activeOnly)
	response.Handle(w, r, h.Logger, groups, err, http.StatusOK)
}

// GetGroupHandler lida com a requisição GET /v1/customer-groups/{id}.
// @Summary Obtém um grupo de clientes
// @Tags customer-groups
// @Produce json
// @Param id path string true "ID do grupo"
// @Success 200 {object} domain.CustomerGroup
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /customer-groups/{id} [get]
func (h *Handler) GetGroupHandler(w http.ResponseWriter, r *http.Request) {
	group, err := h.Service.GetGroup(r.Context(), chi.URLParam(r, "id"))
	response.Handle(w, r, h.Logger, group, err, http.StatusOK)
}

// UpdateGroupHandler lida com a requisição PATCH /v1/customer-groups/{id}.
// @Summary Atualiza um grupo de clientes
// @Tags customer-groups
// @Accept json
// @Produce json
// @Param id path string true "ID do grupo"
// @Param group body domain.CustomerGroupRequest true "Grupo"
// @Success 200 {object} domain.CustomerGroup
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /customer-groups/{id} [patch]
func (h *Handler) UpdateGroupHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomerGroupRequest
	if err := validation.DecodeJSONBody(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	group, err := h.Service.UpdateGroup(r.Context(), chi.URLParam(r, "id"), req)
	response.Handle(w, r, h.Logger, group, err, http.StatusOK)
}
