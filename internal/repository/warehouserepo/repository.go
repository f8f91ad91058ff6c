package warehouserepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gopos/internal/domain"
	"gopos/internal/errors"
	"gopos/internal/pkg/database"
	"gopos/internal/pkg/logger"
)

// WarehouseRepository implementa o CRUD de armazéns (lojas e depósitos).
type WarehouseRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewWarehouseRepository cria e retorna uma nova instância do Repositório de Armazéns.
func NewWarehouseRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *WarehouseRepository {
	return &WarehouseRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const warehouseColumns = `id, code, name, address, is_active, created_at, updated_at`

func scanWarehouse(row interface{ Scan(...interface{}) error }) (domain.Warehouse, error) {
	var w domain.Warehouse
	err := row.Scan(&w.ID, &w.Code, &w.Name, &w.Address, &w.IsActive, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

// CreateWarehouse insere um novo armazém no banco de dados.
func (r *WarehouseRepository) CreateWarehouse(ctx context.Context, warehouse domain.Warehouse) (domain.Warehouse, error) {
	r.logger.Debug("Iniciando CreateWarehouse no repositório.", map[string]interface{}{"code": warehouse.Code})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	created, err := scanWarehouse(r.DB.QueryRowContext(ctxTimeout,
		`INSERT INTO warehouses (`+warehouseColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+warehouseColumns,
		warehouse.ID, warehouse.Code, warehouse.Name, warehouse.Address, warehouse.IsActive,
		warehouse.CreatedAt, warehouse.UpdatedAt,
	))
	if database.IsUniqueViolation(err) {
		return domain.Warehouse{}, errors.NewConflictError(fmt.Sprintf("Já existe um armazém com o código %s.", warehouse.Code))
	}
	if err != nil {
		r.logger.Error("Falha ao inserir armazém no DB.", err)
		return domain.Warehouse{}, errors.NewDBError("Falha ao criar armazém", err)
	}

	r.logger.Info("Armazém criado com sucesso.", map[string]interface{}{"id": created.ID, "code": created.Code})
	return created, nil
}

// GetWarehouseByID busca um armazém pelo ID.
func (r *WarehouseRepository) GetWarehouseByID(ctx context.Context, id string) (domain.Warehouse, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	w, err := scanWarehouse(r.DB.QueryRowContext(ctxTimeout,
		`SELECT `+warehouseColumns+` FROM warehouses WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return domain.Warehouse{}, errors.NewNotFoundError(fmt.Sprintf("Armazém com ID %s não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar armazém no DB.", err)
		return domain.Warehouse{}, errors.NewDBError("Falha ao buscar armazém", err)
	}
	return w, nil
}

// GetAllWarehouses busca todos os armazéns, ordenados por nome.
func (r *WarehouseRepository) GetAllWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, `SELECT `+warehouseColumns+` FROM warehouses ORDER BY name`)
	if err != nil {
		r.logger.Error("Falha ao executar GetAllWarehouses query.", err)
		return nil, errors.NewDBError("Falha ao buscar todos os armazéns", err)
	}
	defer rows.Close()

	warehouses := []domain.Warehouse{}
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			r.logger.Error("Falha ao mapear armazém na iteração de GetAllWarehouses.", err)
			return nil, errors.NewDBError("Falha ao mapear armazéns do DB", err)
		}
		warehouses = append(warehouses, w)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Erro após iteração de armazéns", err)
	}

	r.logger.Debug("GetAllWarehouses concluído.", map[string]interface{}{"total_warehouses": len(warehouses)})
	return warehouses, nil
}

// UpdateWarehouse grava nome, endereço e situação. O código é imutável e fica fora do SET.
func (r *WarehouseRepository) UpdateWarehouse(ctx context.Context, warehouse domain.Warehouse) (domain.Warehouse, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	w, err := scanWarehouse(r.DB.QueryRowContext(ctxTimeout,
		`UPDATE warehouses SET name = $2, address = $3, is_active = $4, updated_at = $5
		 WHERE id = $1
		 RETURNING `+warehouseColumns,
		warehouse.ID, warehouse.Name, warehouse.Address, warehouse.IsActive, warehouse.UpdatedAt,
	))
	if err == sql.ErrNoRows {
		return domain.Warehouse{}, errors.NewNotFoundError(fmt.Sprintf("Armazém com ID %s não encontrado para atualização.", warehouse.ID))
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar armazém no DB.", err)
		return domain.Warehouse{}, errors.NewDBError("Falha ao atualizar armazém", err)
	}

	r.logger.Info("Armazém atualizado com sucesso.", map[string]interface{}{"id": w.ID})
	return w, nil
}

// DeleteWarehouse remove um armazém cujo saldo total é zero. Linhas de estoque zeradas
// saem junto, na mesma transação.
func (r *WarehouseRepository) DeleteWarehouse(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	err := database.WithTx(ctxTimeout, r.DB, func(tx *sql.Tx) error {
		var balance decimal.Decimal
		if err := tx.QueryRowContext(ctxTimeout,
			`SELECT COALESCE(SUM(quantity), 0) FROM stock_levels WHERE warehouse_id = $1`, id,
		).Scan(&balance); err != nil {
			return errors.NewDBError("Falha ao consultar saldo do armazém", err)
		}
		if balance.IsPositive() {
			return errors.NewConflictError(fmt.Sprintf("O armazém ainda tem %s unidades em estoque e não pode ser removido.", balance.String()))
		}

		if _, err := tx.ExecContext(ctxTimeout, `DELETE FROM stock_levels WHERE warehouse_id = $1`, id); err != nil {
			return errors.NewDBError("Falha ao remover saldos zerados", err)
		}

		result, err := tx.ExecContext(ctxTimeout, `DELETE FROM warehouses WHERE id = $1`, id)
		if database.IsForeignKeyViolation(err) {
			return errors.NewConflictError("O armazém ainda é referenciado e não pode ser removido.")
		}
		if err != nil {
			return errors.NewDBError("Falha ao deletar armazém", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return errors.NewDBError("Falha ao verificar linhas afetadas", err)
		}
		if rowsAffected == 0 {
			return errors.NewNotFoundError(fmt.Sprintf("Armazém com ID %s não encontrado para exclusão.", id))
		}
		return nil
	})
	if err != nil {
		if !errors.IsNotFound(err) {
			r.logger.Warn("Remoção de armazém rejeitada.", map[string]interface{}{"id": id, "error": err.Error()})
		}
		return err
	}

	r.logger.Info("Armazém deletado com sucesso.", map[string]interface{}{"id": id})
	return nil
}
