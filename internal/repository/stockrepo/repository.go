package stockrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gopos/internal/domain"
	"gopos/internal/errors"
	"gopos/internal/pkg/database"
	"gopos/internal/pkg/logger"
)

// StockRepository persiste saldos de estoque por produto e armazém.
type StockRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewStockRepository cria e retorna uma nova instância do Repositório de Estoque.
func NewStockRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *StockRepository {
	return &StockRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const stockColumns = `id, product_id, warehouse_id, quantity, version, created_at, updated_at`

func scanStock(row interface{ Scan(...interface{}) error }) (domain.StockLevel, error) {
	var sl domain.StockLevel
	err := row.Scan(&sl.ID, &sl.ProductID, &sl.WarehouseID, &sl.Quantity, &sl.Version, &sl.CreatedAt, &sl.UpdatedAt)
	return sl, err
}

// GetStockLevel busca o saldo de um produto em um armazém.
func (r *StockRepository) GetStockLevel(ctx context.Context, productID, warehouseID string) (domain.StockLevel, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	sl, err := scanStock(r.DB.QueryRowContext(ctxTimeout,
		`SELECT `+stockColumns+` FROM stock_levels WHERE product_id = $1 AND warehouse_id = $2`,
		productID, warehouseID))
	if err == sql.ErrNoRows {
		return domain.StockLevel{}, errors.NewNotFoundError(fmt.Sprintf("Estoque do produto %s no armazém %s não encontrado.", productID, warehouseID))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar nível de estoque no DB.", err)
		return domain.StockLevel{}, errors.NewDBError("Falha ao buscar nível de estoque", err)
	}

	r.logger.Debug("Nível de estoque encontrado.", map[string]interface{}{
		"product_id":   productID,
		"warehouse_id": warehouseID,
		"quantity":     sl.Quantity.String(),
		"version":      sl.Version,
	})
	return sl, nil
}

// UpdateStockLevel aplica um ajuste ao estoque numa transação, com SELECT ... FOR UPDATE
// e controle de concorrência otimista pela coluna version.
func (r *StockRepository) UpdateStockLevel(ctx context.Context, adj domain.StockAdjustmentRequest) (domain.StockLevel, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var result domain.StockLevel
	err := database.WithTx(ctxTimeout, r.DB, func(tx *sql.Tx) error {
		current, err := scanStock(tx.QueryRowContext(ctxTimeout,
			`SELECT `+stockColumns+` FROM stock_levels WHERE product_id = $1 AND warehouse_id = $2 FOR UPDATE`,
			adj.ProductID, adj.WarehouseID))

		if err == sql.ErrNoRows {
			// Primeiro movimento: cria o saldo.
			if adj.Delta.IsNegative() {
				return errors.NewValidationError("Não é possível criar estoque com quantidade negativa.")
			}
			now := time.Now().UTC()
			created, err := scanStock(tx.QueryRowContext(ctxTimeout,
				`INSERT INTO stock_levels (`+stockColumns+`)
				 VALUES ($1, $2, $3, $4, 1, $5, $5)
				 RETURNING `+stockColumns,
				uuid.New().String(), adj.ProductID, adj.WarehouseID, adj.Delta, now,
			))
			if database.IsForeignKeyViolation(err) {
				return errors.NewNotFoundError("Produto ou armazém inexistente.")
			}
			if err != nil {
				r.logger.Error("Falha ao inserir novo nível de estoque.", err)
				return errors.NewDBError("Falha ao inserir novo nível de estoque", err)
			}
			result = created
			return nil
		}
		if err != nil {
			r.logger.Error("Falha ao selecionar nível de estoque para atualização.", err)
			return errors.NewDBError("Falha ao buscar estoque para atualização", err)
		}

		newQuantity := current.Quantity.Add(adj.Delta)
		if newQuantity.IsNegative() {
			r.logger.Warn("Tentativa de ajustar estoque para quantidade negativa.", map[string]interface{}{
				"product_id":       adj.ProductID,
				"warehouse_id":     adj.WarehouseID,
				"current_quantity": current.Quantity.String(),
				"delta":            adj.Delta.String(),
			})
			return errors.NewValidationError("Ajuste resultaria em quantidade de estoque negativa.")
		}

		now := time.Now().UTC()
		res, err := tx.ExecContext(ctxTimeout,
			`UPDATE stock_levels SET quantity = $1, version = version + 1, updated_at = $2
			 WHERE id = $3 AND version = $4`,
			newQuantity, now, current.ID, current.Version,
		)
		if err != nil {
			r.logger.Error("Falha ao atualizar nível de estoque.", err)
			return errors.NewDBError("Falha ao atualizar estoque", err)
		}
		rowsAffected, err := res.RowsAffected()
		if err != nil {
			return errors.NewDBError("Falha ao verificar linhas afetadas", err)
		}
		if rowsAffected == 0 {
			r.logger.Warn("Versão do estoque desatualizada.", map[string]interface{}{
				"product_id":       adj.ProductID,
				"expected_version": current.Version,
			})
			return errors.NewConflictError("O estoque foi modificado por outra operação. Tente novamente.")
		}

		current.Quantity = newQuantity
		current.Version++
		current.UpdatedAt = now
		result = current
		return nil
	})
	if err != nil {
		return domain.StockLevel{}, err
	}

	r.logger.Info("Nível de estoque atualizado.", map[string]interface{}{
		"product_id":   adj.ProductID,
		"warehouse_id": adj.WarehouseID,
		"quantity":     result.Quantity.String(),
		"version":      result.Version,
		"reason":       adj.Reason,
	})
	return result, nil
}
