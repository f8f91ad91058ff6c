package customergrouprepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gopos/internal/domain"
	"gopos/internal/errors"
	"gopos/internal/pkg/database"
	"gopos/internal/pkg/logger"
)

// CustomerGroupRepository persiste grupos de clientes.
type CustomerGroupRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewCustomerGroupRepository cria o repositório.
func NewCustomerGroupRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *CustomerGroupRepository {
	return &CustomerGroupRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const groupColumns = `id, code, name, description, is_active, created_at, updated_at`

func scanGroup(row interface{ Scan(...interface{}) error }) (domain.CustomerGroup, error) {
	var g domain.CustomerGroup
	err := row.Scan(&g.ID, &g.Code, &g.Name, &g.Description, &g.IsActive, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

// Create insere um grupo. Código duplicado vira ConflictError.
func (r *CustomerGroupRepository) Create(ctx context.Context, group domain.CustomerGroup) (domain.CustomerGroup, error) {
	r.logger.Debug("Iniciando Create de grupo de clientes.", map[string]interface{}{"code": group.Code})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	_, err := r.DB.ExecContext(ctxTimeout,
		`INSERT INTO customer_groups (`+groupColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		group.ID, group.Code, group.Name, group.Description, group.IsActive, group.CreatedAt, group.UpdatedAt,
	)
	if database.IsUniqueViolation(err) {
		return domain.CustomerGroup{}, errors.NewConflictError(fmt.Sprintf("Já existe um grupo com o código %s.", group.Code))
	}
	if err != nil {
		r.logger.Error("Falha ao inserir grupo de clientes no DB.", err)
		return domain.CustomerGroup{}, errors.NewDBError("Falha ao criar grupo de clientes", err)
	}
	return group, nil
}

// FindByID busca um grupo pelo ID.
func (r *CustomerGroupRepository) FindByID(ctx context.Context, id string) (domain.CustomerGroup, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	g, err := scanGroup(r.DB.QueryRowContext(ctxTimeout, `SELECT `+groupColumns+` FROM customer_groups WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return domain.CustomerGroup{}, errors.NewNotFoundError(fmt.Sprintf("Grupo de clientes com ID %s não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar grupo de clientes no DB.", err)
		return domain.CustomerGroup{}, errors.NewDBError("Falha ao buscar grupo de clientes", err)
	}
	return g, nil
}

// List retorna os grupos ordenados por nome.
func (r *CustomerGroupRepository) List(ctx context.Context, activeOnly bool) ([]domain.CustomerGroup, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + groupColumns + ` FROM customer_groups`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao listar grupos de clientes.", err)
		return nil, errors.NewDBError("Falha ao listar grupos de clientes", err)
	}
	defer rows.Close()

	groups := []domain.CustomerGroup{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao mapear grupos de clientes", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Erro após iteração de grupos de clientes", err)
	}
	return groups, nil
}

// Update grava nome, descrição e situação do grupo. O código é imutável.
func (r *CustomerGroupRepository) Update(ctx context.Context, group domain.CustomerGroup) (domain.CustomerGroup, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	g, err := scanGroup(r.DB.QueryRowContext(ctxTimeout,
		`UPDATE customer_groups SET name = $2, description = $3, is_active = $4, updated_at = $5
		 WHERE id = $1
		 RETURNING `+groupColumns,
		group.ID, group.Name, group.Description, group.IsActive, group.UpdatedAt,
	))
	if err == sql.ErrNoRows {
		return domain.CustomerGroup{}, errors.NewNotFoundError(fmt.Sprintf("Grupo de clientes com ID %s não encontrado.", group.ID))
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar grupo de clientes.", err)
		return domain.CustomerGroup{}, errors.NewDBError("Falha ao atualizar grupo de clientes", err)
	}

	r.logger.Info("Grupo de clientes atualizado.", map[string]interface{}{"id": g.ID, "is_active": g.IsActive})
	return g, nil
}
