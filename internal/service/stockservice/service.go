package stockservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
)

// StockRepository define o contrato que o Serviço de Estoque espera da camada de Persistência.
type StockRepository interface {
	GetStockLevel(ctx context.Context, productID, warehouseID string) (domain.StockLevel, error)
	UpdateStockLevel(ctx context.Context, adjustment domain.StockAdjustmentRequest) (domain.StockLevel, error)
}

// Service controla o saldo de produtos por armazém.
type Service struct {
	repo   StockRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Estoque.
func NewService(repo StockRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// AdjustStock aplica um ajuste ao nível de estoque de um produto em um armazém.
func (s *Service) AdjustStock(ctx context.Context, adjustment domain.StockAdjustmentRequest) (domain.StockLevel, error) {
	if err := validateIDs(adjustment.ProductID, adjustment.WarehouseID); err != nil {
		return domain.StockLevel{}, err
	}
	if adjustment.Delta.IsZero() {
		return domain.StockLevel{}, apperror.NewValidationError("O ajuste de estoque (delta) não pode ser zero.")
	}

	stockLevel, err := s.repo.UpdateStockLevel(ctx, adjustment)
	if err != nil {
		var conflictErr *apperror.ConflictError
		if errors.As(err, &conflictErr) {
			return domain.StockLevel{}, apperror.NewConflictError(fmt.Sprintf("Falha de concorrência: %s", conflictErr.Msg))
		}
		var appErr apperror.AppError
		if errors.As(err, &appErr) {
			return domain.StockLevel{}, err
		}
		s.logger.Error("Falha ao ajustar estoque no repositório.", err)
		return domain.StockLevel{}, apperror.NewInternalError("Falha interna ao ajustar estoque.", err)
	}

	s.logger.Info("Estoque ajustado com sucesso.", map[string]interface{}{
		"product_id":   stockLevel.ProductID,
		"warehouse_id": stockLevel.WarehouseID,
		"delta":        adjustment.Delta.String(),
		"reason":       adjustment.Reason,
		"new_quantity": stockLevel.Quantity.String(),
		"new_version":  stockLevel.Version,
	})
	return stockLevel, nil
}

// GetStockLevel devolve o saldo corrente.
func (s *Service) GetStockLevel(ctx context.Context, productID, warehouseID string) (domain.StockLevel, error) {
	if err := validateIDs(productID, warehouseID); err != nil {
		return domain.StockLevel{}, err
	}
	return s.repo.GetStockLevel(ctx, productID, warehouseID)
}

func validateIDs(productID, warehouseID string) error {
	if _, err := uuid.Parse(productID); err != nil {
		return apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}
	if _, err := uuid.Parse(warehouseID); err != nil {
		return apperror.NewValidationError("O ID do armazém deve ser um UUID válido.")
	}
	return nil
}
