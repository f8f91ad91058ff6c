package userrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/database"
	"gopos/internal/pkg/logger"
)

// UserRepository persiste os operadores do PDV.
type UserRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria o repositório de operadores.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const userColumns = `id, email, password_hash, role, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Save insere um operador. Email já cadastrado vira ConflictError.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	_, err := r.DB.ExecContext(ctxTimeout,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt,
	)
	if database.IsUniqueViolation(err) {
		return domain.User{}, apperror.NewConflictError(fmt.Sprintf("O email '%s' já está em uso.", user.Email))
	}
	if err != nil {
		r.logger.Error("Falha ao inserir operador no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao cadastrar operador", err)
	}

	r.logger.Info("Operador cadastrado.", map[string]interface{}{"user_id": user.ID, "role": user.Role})
	return user, nil
}

// FindByEmail busca um operador pelo email (já normalizado em minúsculas pelo serviço).
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user, err := scanUser(r.DB.QueryRowContext(ctxTimeout,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err == sql.ErrNoRows {
		return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Operador com email '%s' não encontrado.", email))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar operador por email no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao buscar operador", err)
	}
	return user, nil
}

// CountUsers retorna o total de operadores. Zero significa que o próximo cadastro vira admin.
func (r *UserRepository) CountUsers(ctx context.Context) (int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var n int
	if err := r.DB.QueryRowContext(ctxTimeout, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		r.logger.Error("Falha ao contar operadores.", err)
		return 0, apperror.NewDBError("Falha ao contar operadores", err)
	}
	return n, nil
}
