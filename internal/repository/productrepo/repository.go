package productrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopos/internal/domain"
	"gopos/internal/errors"
	"gopos/internal/pkg/cache"
	"gopos/internal/pkg/database"
	"gopos/internal/pkg/logger"
)

// ProductRepository persiste o catálogo no PostgreSQL com cache-aside no Redis.
type ProductRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewProductRepository cria e retorna uma nova instância do Repositório.
func NewProductRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, log logger.Logger) *ProductRepository {
	return &ProductRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    log,
	}
}

const productCacheKey = "product:%s"

const productColumns = `id, sku, name, description, base_price, is_active, created_at, updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.BasePrice, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Save insere um novo produto. SKU duplicado vira ConflictError.
func (r *ProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	_, err := r.DB.ExecContext(ctxTimeout,
		`INSERT INTO products (`+productColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		product.ID, product.SKU, product.Name, product.Description, product.BasePrice,
		product.IsActive, product.CreatedAt, product.UpdatedAt,
	)
	if database.IsUniqueViolation(err) {
		return domain.Product{}, errors.NewConflictError(fmt.Sprintf("Já existe um produto com o SKU %s.", product.SKU))
	}
	if err != nil {
		return domain.Product{}, errors.NewDBError("failed to insert product", err)
	}
	return product, nil
}

// FindByID busca um produto pelo ID, utilizando a estratégia Cache-Aside.
// Falhas do Redis são logadas e a busca segue no banco.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(productCacheKey, id)

	cached, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		var product domain.Product
		if jsonErr := json.Unmarshal([]byte(cached), &product); jsonErr == nil {
			return product, nil
		}
		r.logger.Warn("Produto em cache corrompido; lendo do DB.", map[string]interface{}{"key": key})
	} else if err != cache.ErrCacheMiss {
		r.logger.Warn("Falha ao ler do cache Redis.", map[string]interface{}{"key": key, "error": err.Error()})
	}

	product, err := scanProduct(r.DB.QueryRowContext(ctxTimeout,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return domain.Product{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", id))
	}
	if err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao buscar produto no DB", err)
	}

	if payload, marshalErr := json.Marshal(product); marshalErr == nil {
		if setErr := r.Cache.Set(ctxTimeout, key, payload, r.CacheTTL); setErr != nil {
			r.logger.Warn("Falha ao gravar produto no cache.", map[string]interface{}{"key": key, "error": setErr.Error()})
		}
	}
	return product, nil
}

// FindAll retorna uma página do catálogo e o total que atende ao filtro.
func (r *ProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var (
		conds []string
		args  []interface{}
	)
	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.SKU != "" {
		args = append(args, filter.SKU)
		conds = append(conds, fmt.Sprintf("sku = $%d", len(args)))
	}
	if filter.ActiveOnly {
		conds = append(conds, "is_active")
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(ctxTimeout, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewDBError("Falha ao contar produtos", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY name LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		return nil, 0, errors.NewDBError("Falha ao listar produtos", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, filter.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, errors.NewDBError("Falha ao mapear produtos", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewDBError("Erro após iteração de produtos", err)
	}
	return products, total, nil
}

// Update grava o produto e invalida a entrada de cache.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	updated, err := scanProduct(r.DB.QueryRowContext(ctxTimeout,
		`UPDATE products SET name = $2, description = $3, base_price = $4, is_active = $5, updated_at = $6
		 WHERE id = $1
		 RETURNING `+productColumns,
		product.ID, product.Name, product.Description, product.BasePrice, product.IsActive, product.UpdatedAt,
	))
	if err == sql.ErrNoRows {
		return domain.Product{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", product.ID))
	}
	if err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao atualizar produto", err)
	}

	if delErr := r.Cache.Delete(ctxTimeout, fmt.Sprintf(productCacheKey, product.ID)); delErr != nil {
		r.logger.Warn("Falha ao invalidar produto no cache.", map[string]interface{}{"id": product.ID, "error": delErr.Error()})
	}
	return updated, nil
}
