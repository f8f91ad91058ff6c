package pricing

import (
	"context"
	"net/http"

	"gopos/internal/api/response"
	"gopos/internal/domain"
	"gopos/internal/pkg/logger"
	"gopos/internal/pkg/validation"
)

// PricingService define o contrato que o Handler espera da camada de Serviço.
type PricingService interface {
	ResolvePrice(ctx context.Context, q domain.PriceQuery) (domain.PriceResolution, error)
	Quote(ctx context.Context, req domain.QuoteRequest) (domain.Quote, error)
}

// Handler expõe a resolução de preços.
type Handler struct {
	Service PricingService
	Logger  logger.Logger
}

func NewHandler(svc PricingService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// ResolvePriceHandler lida com a requisição GET /v1/prices/resolve.
// @Summary Resolve o preço unitário efetivo
// @Description Escolhe a tabela vigente de maior prioridade para o grupo, aplica o desconto e devolve o preço. Sem tabela aplicável, usa a tabela padrão do grupo e depois o preço base do produto.
// @Tags prices
// @Produce json
// @Param product_id query string true "ID do produto"
// @Param customer_group_id query string true "ID do grupo de clientes"
// @Param quantity query string true "Quantidade (decimal > 0)"
// @Param as_of query string false "Data de referência (RFC 3339 ou AAAA-MM-DD); padrão agora"
// @Success 200 {object} domain.PriceResolution
// @Failure 400 {object} domain.ErrorResponse "Parâmetros inválidos"
// @Failure 404 {object} domain.ErrorResponse "Produto ou grupo inexistente"
// @Failure 409 {object} domain.ErrorResponse "Configuração ambígua"
// @Security ApiKeyAuth
// @Router /prices/resolve [get]
func (h *Handler) ResolvePriceHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	quantity, err := validation.ParseQueryDecimal(r, "quantity")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}
	asOf, err := validation.ParseQueryTime(r, "as_of")
	if err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	res, err := h.Service.ResolvePrice(r.Context(), domain.PriceQuery{
		ProductID:       query.Get("product_id"),
		CustomerGroupID: query.Get("customer_group_id"),
		Quantity:        quantity,
		AsOf:            asOf,
	})
	response.Handle(w, r, h.Logger, res, err, http.StatusOK)
}

// QuoteHandler lida com a requisição POST /v1/prices/quote.
// @Summary Cota várias linhas para um grupo
// @Tags prices
// @Accept json
// @Produce json
// @Param quote body domain.QuoteRequest true "Linhas da cotação"
// @Success 200 {object} domain.Quote
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Produto ou grupo inexistente"
// @Failure 409 {object} domain.ErrorResponse "Configuração ambígua"
// @Security ApiKeyAuth
// @Router /prices/quote [post]
func (h *Handler) QuoteHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.QuoteRequest
	if err := validation.DecodeJSONBody(r, &req); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	quote, err := h.Service.Quote(r.Context(), req)
	response.Handle(w, r, h.Logger, quote, err, http.StatusOK)
}
