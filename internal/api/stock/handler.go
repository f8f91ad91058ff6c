package stock

import (
	"context"
	"net/http"

	"gopos/internal/api/response"
	"gopos/internal/domain"
	"gopos/internal/pkg/logger"
	"gopos/internal/pkg/validation"
)

// StockService define o contrato que o Handler espera da camada de Serviço.
type StockService interface {
	AdjustStock(ctx context.Context, adjustment domain.StockAdjustmentRequest) (domain.StockLevel, error)
	GetStockLevel(ctx context.Context, productID, warehouseID string) (domain.StockLevel, error)
}

// Handler agrupa os métodos de estoque.
type Handler struct {
	Service StockService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc StockService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// AdjustStockHandler lida com a requisição POST /v1/stock/adjust.
// @Summary Ajusta o saldo de um produto num armazém
// @Description Aplica um delta positivo ou negativo. O saldo nunca fica negativo.
// @Tags stock
// @Accept json
// @Produce json
// @Param adjustment body domain.StockAdjustmentRequest true "Ajuste"
// @Success 200 {object} domain.StockLevel
// @Failure 400 {object} domain.ErrorResponse "Delta zero ou saldo negativo"
// @Failure 409 {object} domain.ErrorResponse "Conflito de concorrência"
// @Security ApiKeyAuth
// @Router /stock/adjust [post]
func (h *Handler) AdjustStockHandler(w http.ResponseWriter, r *http.Request) {
	var adjustment domain.StockAdjustmentRequest
	if err := validation.DecodeJSONBody(r, &adjustment); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	stockLevel, err := h.Service.AdjustStock(r.Context(), adjustment)
	response.Handle(w, r, h.Logger, stockLevel, err, http.StatusOK)
}

// GetStockLevelHandler lida com a requisição GET /v1/stock.
// @Summary Consulta o saldo
// @Tags stock
// @Produce json
// @Param product_id query string true "ID do produto"
// @Param warehouse_id query string true "ID do armazém"
// @Success 200 {object} domain.StockLevel
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /stock [get]
func (h *Handler) GetStockLevelHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	level, err := h.Service.GetStockLevel(r.Context(), q.Get("product_id"), q.Get("warehouse_id"))
	response.Handle(w, r, h.Logger, level, err, http.StatusOK)
}
