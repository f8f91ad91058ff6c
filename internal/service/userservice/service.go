package userservice

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
)

// UserRepository é o contrato de persistência dos operadores.
type UserRepository interface {
	Save(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	CountUsers(ctx context.Context) (int, error)
}

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(userID string, role domain.UserRole) (string, error)
}

// UserService define o serviço de lógica de negócio para a entidade User.
type UserService struct {
	UserRepo UserRepository
	TokenSvc TokenService
	logger   logger.Logger
}

// NewService cria uma nova instância do UserService.
func NewService(repo UserRepository, tokenSvc TokenService, log logger.Logger) *UserService {
	return &UserService{UserRepo: repo, TokenSvc: tokenSvc, logger: log}
}

// Register registra um novo operador. O primeiro operador da base vira admin;
// os demais entram como caixa e não podem pedir um papel acima disso.
func (s *UserService) Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(registration.Email))
	if email == "" || registration.Password == "" {
		return domain.User{}, apperror.NewValidationError("Email e senha são obrigatórios.")
	}
	if registration.Role != "" && !registration.Role.IsValid() {
		return domain.User{}, apperror.NewValidationError("Papel de usuário desconhecido.")
	}

	count, err := s.UserRepo.CountUsers(ctx)
	if err != nil {
		return domain.User{}, err
	}

	role := domain.RoleCashier
	switch {
	case count == 0:
		role = domain.RoleAdmin
	case registration.Role != "" && registration.Role != domain.RoleCashier:
		return domain.User{}, apperror.NewForbiddenError("Somente um administrador pode conceder papéis elevados.")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	now := time.Now().UTC()
	user, err := s.UserRepo.Save(ctx, domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return domain.User{}, err
	}

	s.logger.Info("Usuário registrado.", map[string]interface{}{"user_id": user.ID, "role": user.Role})
	return user, nil
}

// Login autentica um usuário, verifica a senha e gera um JWT.
func (s *UserService) Login(ctx context.Context, email string, password string) (domain.LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return domain.LoginResponse{}, apperror.NewUnauthorizedError("Email e senha são obrigatórios.")
	}

	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		// NotFound vira 401 para não revelar quais e-mails existem.
		if apperror.IsNotFound(err) {
			return domain.LoginResponse{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return domain.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Senha incorreta no login.", map[string]interface{}{"user_id": user.ID})
		return domain.LoginResponse{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	tokenString, err := s.TokenSvc.GenerateToken(user.ID, user.Role)
	if err != nil {
		return domain.LoginResponse{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	return domain.LoginResponse{Token: tokenString, Role: user.Role}, nil
}
