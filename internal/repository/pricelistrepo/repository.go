package pricelistrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gopos/internal/domain"
	"gopos/internal/errors"
	"gopos/internal/pkg/database"
)

// PriceListRepository persiste tabelas de preço e seus itens no PostgreSQL.
type PriceListRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
}

// NewPriceListRepository cria o repositório.
func NewPriceListRepository(db *sql.DB, dbTimeout time.Duration) *PriceListRepository {
	return &PriceListRepository{DB: db, DBTimeout: dbTimeout}
}

const listColumns = `id, name, code, description, customer_group_id, start_date, end_date,
	priority, discount_type, status, applicable_on, is_default, created_at, updated_at`

const itemColumns = `id, price_list_id, product_id, price, min_quantity, max_quantity,
	discount_type, discount_value, discount_rate, special_conditions, is_active, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanList(s scanner) (domain.PriceList, error) {
	var (
		l          domain.PriceList
		start, end sql.NullTime
	)
	err := s.Scan(
		&l.ID, &l.Name, &l.Code, &l.Description, &l.CustomerGroupID, &start, &end,
		&l.Priority, &l.DiscountType, &l.Status, &l.ApplicableOn, &l.IsDefault, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return domain.PriceList{}, err
	}
	if start.Valid {
		t := start.Time
		l.StartDate = &t
	}
	if end.Valid {
		t := end.Time
		l.EndDate = &t
	}
	return l, nil
}

func scanItem(s scanner) (domain.PriceListItem, error) {
	var (
		it       domain.PriceListItem
		maxQty   decimal.NullDecimal
		itemType sql.NullString
	)
	err := s.Scan(
		&it.ID, &it.PriceListID, &it.ProductID, &it.Price, &it.MinQuantity, &maxQty,
		&itemType, &it.DiscountValue, &it.DiscountRate, &it.SpecialConditions, &it.IsActive,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return domain.PriceListItem{}, err
	}
	if maxQty.Valid {
		m := maxQty.Decimal
		it.MaxQuantity = &m
	}
	it.DiscountType = domain.DiscountType(itemType.String)
	return it, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// nullDiscountType grava NULL para o item que herda o tipo de desconto da tabela.
func nullDiscountType(d domain.DiscountType) sql.NullString {
	if d == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: string(d), Valid: true}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

// clearDefault remove a marca de padrão das outras tabelas do grupo.
func clearDefault(ctx context.Context, q database.Querier, groupID, keepID string, now time.Time) error {
	_, err := q.ExecContext(ctx,
		`UPDATE price_lists SET is_default = FALSE, updated_at = $3
		 WHERE customer_group_id = $1 AND id <> $2 AND is_default`,
		groupID, keepID, now)
	if err != nil {
		return errors.NewDBError("Falha ao limpar tabela padrão do grupo", err)
	}
	return nil
}

func mapWriteError(msg string, err error) error {
	if database.IsUniqueViolation(err) {
		return errors.NewConflictError("Já existe uma tabela de preço com este código.")
	}
	return errors.NewDBError(msg, err)
}

// Create insere a tabela e seus itens numa única transação. Se a tabela for
// padrão, as demais tabelas do grupo deixam de ser.
func (r *PriceListRepository) Create(ctx context.Context, list domain.PriceList) (domain.PriceList, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	err := database.WithTx(ctxTimeout, r.DB, func(tx *sql.Tx) error {
		if list.IsDefault {
			if err := clearDefault(ctxTimeout, tx, list.CustomerGroupID, list.ID, list.UpdatedAt); err != nil {
				return err
			}
		}

		_, err := tx.ExecContext(ctxTimeout,
			`INSERT INTO price_lists (`+listColumns+`)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
			list.ID, list.Name, list.Code, list.Description, list.CustomerGroupID,
			nullTime(list.StartDate), nullTime(list.EndDate), list.Priority, list.DiscountType,
			list.Status, list.ApplicableOn, list.IsDefault, list.CreatedAt, list.UpdatedAt,
		)
		if err != nil {
			return mapWriteError("Falha ao inserir tabela de preço", err)
		}

		for _, it := range list.Items {
			if err := insertItem(ctxTimeout, tx, it); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.PriceList{}, err
	}
	return list, nil
}

func insertItem(ctx context.Context, q database.Querier, it domain.PriceListItem) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO price_list_items (`+itemColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		it.ID, it.PriceListID, it.ProductID, it.Price, it.MinQuantity, nullDecimal(it.MaxQuantity),
		nullDiscountType(it.DiscountType), it.DiscountValue, it.DiscountRate, it.SpecialConditions, it.IsActive,
		it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		return errors.NewDBError("Falha ao inserir item da tabela de preço", err)
	}
	return nil
}

// FindByID busca a tabela com todos os itens (ativos e inativos).
func (r *PriceListRepository) FindByID(ctx context.Context, id string) (domain.PriceList, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	row := r.DB.QueryRowContext(ctxTimeout, `SELECT `+listColumns+` FROM price_lists WHERE id = $1`, id)
	list, err := scanList(row)
	if err == sql.ErrNoRows {
		return domain.PriceList{}, errors.NewNotFoundError(fmt.Sprintf("Tabela de preço com ID %s não existe.", id))
	}
	if err != nil {
		return domain.PriceList{}, errors.NewDBError("Falha ao buscar tabela de preço", err)
	}

	rows, err := r.DB.QueryContext(ctxTimeout,
		`SELECT `+itemColumns+` FROM price_list_items WHERE price_list_id = $1 ORDER BY product_id, min_quantity`, id)
	if err != nil {
		return domain.PriceList{}, errors.NewDBError("Falha ao buscar itens da tabela de preço", err)
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return domain.PriceList{}, errors.NewDBError("Falha ao ler item da tabela de preço", err)
		}
		list.Items = append(list.Items, it)
	}
	if err := rows.Err(); err != nil {
		return domain.PriceList{}, errors.NewDBError("Falha ao iterar itens da tabela de preço", err)
	}
	return list, nil
}

// List retorna uma página de tabelas (sem itens) e o total que atende ao filtro.
func (r *PriceListRepository) List(ctx context.Context, filter domain.PriceListFilter) ([]domain.PriceList, int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var (
		conds []string
		args  []interface{}
	)
	if filter.CustomerGroupID != "" {
		args = append(args, filter.CustomerGroupID)
		conds = append(conds, fmt.Sprintf("customer_group_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(ctxTimeout, `SELECT COUNT(*) FROM price_lists`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewDBError("Falha ao contar tabelas de preço", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(`SELECT %s FROM price_lists%s ORDER BY priority DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		listColumns, where, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		return nil, 0, errors.NewDBError("Falha ao listar tabelas de preço", err)
	}
	defer rows.Close()

	lists := make([]domain.PriceList, 0, filter.Limit)
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, 0, errors.NewDBError("Falha ao ler tabela de preço", err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewDBError("Falha ao iterar tabelas de preço", err)
	}
	return lists, total, nil
}

// Update grava todos os campos editáveis da tabela. A troca de tabela padrão
// acontece na mesma transação.
func (r *PriceListRepository) Update(ctx context.Context, list domain.PriceList) (domain.PriceList, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	err := database.WithTx(ctxTimeout, r.DB, func(tx *sql.Tx) error {
		if list.IsDefault {
			if err := clearDefault(ctxTimeout, tx, list.CustomerGroupID, list.ID, list.UpdatedAt); err != nil {
				return err
			}
		}

		res, err := tx.ExecContext(ctxTimeout,
			`UPDATE price_lists SET name = $2, description = $3, start_date = $4, end_date = $5,
				priority = $6, discount_type = $7, status = $8, applicable_on = $9, is_default = $10,
				updated_at = $11
			 WHERE id = $1`,
			list.ID, list.Name, list.Description, nullTime(list.StartDate), nullTime(list.EndDate),
			list.Priority, list.DiscountType, list.Status, list.ApplicableOn, list.IsDefault, list.UpdatedAt,
		)
		if err != nil {
			return mapWriteError("Falha ao atualizar tabela de preço", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.NewDBError("Falha ao verificar atualização", err)
		}
		if n == 0 {
			return errors.NewNotFoundError(fmt.Sprintf("Tabela de preço com ID %s não existe.", list.ID))
		}
		return nil
	})
	if err != nil {
		return domain.PriceList{}, err
	}
	return list, nil
}

// ExpireOverdue marca como expired as tabelas ativas com end_date anterior a asOf.
// Tabelas padrão ficam de fora: a janela de datas não vale para elas.
func (r *PriceListRepository) ExpireOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE price_lists SET status = $1, updated_at = $3
		 WHERE status = $2 AND NOT is_default AND end_date IS NOT NULL AND end_date < $3`,
		domain.PriceListExpired, domain.PriceListActive, asOf,
	)
	if err != nil {
		return 0, errors.NewDBError("Falha ao expirar tabelas de preço", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.NewDBError("Falha ao contar tabelas expiradas", err)
	}
	return n, nil
}

// FindForResolution carrega as tabelas ativas do grupo (e as de alcance "all")
// que têm itens ativos para o produto, já com esses itens. Data, quantidade e
// desempate ficam com o motor de preços.
func (r *PriceListRepository) FindForResolution(ctx context.Context, customerGroupID, productID string) ([]domain.PriceList, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `
		SELECT l.id, l.name, l.code, l.description, l.customer_group_id, l.start_date, l.end_date,
			l.priority, l.discount_type, l.status, l.applicable_on, l.is_default, l.created_at, l.updated_at,
			i.id, i.price_list_id, i.product_id, i.price, i.min_quantity, i.max_quantity,
			i.discount_type, i.discount_value, i.discount_rate, i.special_conditions, i.is_active,
			i.created_at, i.updated_at
		FROM price_lists l
		JOIN price_list_items i ON i.price_list_id = l.id
		WHERE l.status = $1
		  AND (l.customer_group_id = $2 OR l.applicable_on = $3)
		  AND i.product_id = $4
		  AND i.is_active
		ORDER BY l.id, i.min_quantity`

	rows, err := r.DB.QueryContext(ctxTimeout, query, domain.PriceListActive, customerGroupID, domain.ApplicableOnAll, productID)
	if err != nil {
		return nil, errors.NewDBError("Falha ao buscar tabelas para resolução", err)
	}
	defer rows.Close()

	var (
		lists []domain.PriceList
		index = map[string]int{}
	)
	for rows.Next() {
		var (
			l          domain.PriceList
			it         domain.PriceListItem
			start, end sql.NullTime
			maxQty     decimal.NullDecimal
			itemType   sql.NullString
		)
		err := rows.Scan(
			&l.ID, &l.Name, &l.Code, &l.Description, &l.CustomerGroupID, &start, &end,
			&l.Priority, &l.DiscountType, &l.Status, &l.ApplicableOn, &l.IsDefault, &l.CreatedAt, &l.UpdatedAt,
			&it.ID, &it.PriceListID, &it.ProductID, &it.Price, &it.MinQuantity, &maxQty,
			&itemType, &it.DiscountValue, &it.DiscountRate, &it.SpecialConditions, &it.IsActive,
			&it.CreatedAt, &it.UpdatedAt,
		)
		if err != nil {
			return nil, errors.NewDBError("Falha ao ler tabela para resolução", err)
		}
		it.DiscountType = domain.DiscountType(itemType.String)
		if maxQty.Valid {
			m := maxQty.Decimal
			it.MaxQuantity = &m
		}

		pos, seen := index[l.ID]
		if !seen {
			if start.Valid {
				t := start.Time
				l.StartDate = &t
			}
			if end.Valid {
				t := end.Time
				l.EndDate = &t
			}
			pos = len(lists)
			index[l.ID] = pos
			lists = append(lists, l)
		}
		lists[pos].Items = append(lists[pos].Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar tabelas para resolução", err)
	}
	return lists, nil
}

// AddItem insere um item numa tabela existente.
func (r *PriceListRepository) AddItem(ctx context.Context, item domain.PriceListItem) (domain.PriceListItem, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if err := insertItem(ctxTimeout, r.DB, item); err != nil {
		return domain.PriceListItem{}, err
	}
	return item, nil
}

// FindItem busca um item dentro da tabela informada.
func (r *PriceListRepository) FindItem(ctx context.Context, listID, itemID string) (domain.PriceListItem, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	row := r.DB.QueryRowContext(ctxTimeout,
		`SELECT `+itemColumns+` FROM price_list_items WHERE id = $1 AND price_list_id = $2`, itemID, listID)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return domain.PriceListItem{}, errors.NewNotFoundError(fmt.Sprintf("Item %s não existe na tabela %s.", itemID, listID))
	}
	if err != nil {
		return domain.PriceListItem{}, errors.NewDBError("Falha ao buscar item da tabela de preço", err)
	}
	return it, nil
}

// UpdateItem grava todos os campos editáveis do item.
func (r *PriceListRepository) UpdateItem(ctx context.Context, item domain.PriceListItem) (domain.PriceListItem, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE price_list_items SET price = $3, min_quantity = $4, max_quantity = $5, discount_type = $6,
			discount_value = $7, discount_rate = $8, special_conditions = $9, is_active = $10, updated_at = $11
		 WHERE id = $1 AND price_list_id = $2`,
		item.ID, item.PriceListID, item.Price, item.MinQuantity, nullDecimal(item.MaxQuantity), nullDiscountType(item.DiscountType),
		item.DiscountValue, item.DiscountRate, item.SpecialConditions, item.IsActive, item.UpdatedAt,
	)
	if err != nil {
		return domain.PriceListItem{}, errors.NewDBError("Falha ao atualizar item da tabela de preço", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.PriceListItem{}, errors.NewDBError("Falha ao verificar atualização do item", err)
	}
	if n == 0 {
		return domain.PriceListItem{}, errors.NewNotFoundError(fmt.Sprintf("Item %s não existe na tabela %s.", item.ID, item.PriceListID))
	}
	return item, nil
}
