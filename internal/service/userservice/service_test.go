package userservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
	"gopos/internal/service/userservice"
)

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return user, args.Error(1)
	}
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockTokenService struct{ mock.Mock }

func (m *MockTokenService) GenerateToken(userID string, role domain.UserRole) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

func newService(repo *MockUserRepository, tokens *MockTokenService) *userservice.UserService {
	return userservice.NewService(repo, tokens, logger.NewNop())
}

func TestRegister_FirstUserBecomesAdmin(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newService(repo, new(MockTokenService))

	repo.On("CountUsers", mock.Anything).Return(0, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Role == domain.RoleAdmin && u.Email == "ana@loja.com" && u.PasswordHash != "segredo123"
	})).Return(nil, nil)

	user, err := svc.Register(context.Background(), domain.UserRegistration{Email: " Ana@Loja.com ", Password: "segredo123"})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("segredo123")))
	repo.AssertExpectations(t)
}

func TestRegister_LaterUsersAreCashiers(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newService(repo, new(MockTokenService))

	repo.On("CountUsers", mock.Anything).Return(3, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil, nil)

	user, err := svc.Register(context.Background(), domain.UserRegistration{Email: "bia@loja.com", Password: "segredo123"})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleCashier, user.Role)
}

func TestRegister_Fail_ElevatedRole(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newService(repo, new(MockTokenService))

	repo.On("CountUsers", mock.Anything).Return(1, nil)

	_, err := svc.Register(context.Background(), domain.UserRegistration{
		Email: "caio@loja.com", Password: "segredo123", Role: domain.RoleManager,
	})

	assert.IsType(t, &apperror.ForbiddenError{}, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRegister_Fail_DuplicateEmail(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newService(repo, new(MockTokenService))

	repo.On("CountUsers", mock.Anything).Return(1, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(domain.User{}, apperror.NewConflictError("O email já está em uso."))

	_, err := svc.Register(context.Background(), domain.UserRegistration{Email: "ana@loja.com", Password: "segredo123"})

	assert.IsType(t, &apperror.ConflictError{}, err)
}

func TestLogin_Success(t *testing.T) {
	repo := new(MockUserRepository)
	tokens := new(MockTokenService)
	svc := newService(repo, tokens)

	hash, err := bcrypt.GenerateFromPassword([]byte("segredo123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.On("FindByEmail", mock.Anything, "ana@loja.com").
		Return(domain.User{ID: "u1", Email: "ana@loja.com", PasswordHash: string(hash), Role: domain.RoleManager}, nil)
	tokens.On("GenerateToken", "u1", domain.RoleManager).Return("jwt-token", nil)

	resp, err := svc.Login(context.Background(), "ana@loja.com", "segredo123")

	require.NoError(t, err)
	assert.Equal(t, "jwt-token", resp.Token)
	assert.Equal(t, domain.RoleManager, resp.Role)
}

func TestLogin_Fail_WrongPassword(t *testing.T) {
	repo := new(MockUserRepository)
	tokens := new(MockTokenService)
	svc := newService(repo, tokens)

	hash, err := bcrypt.GenerateFromPassword([]byte("segredo123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.On("FindByEmail", mock.Anything, "ana@loja.com").
		Return(domain.User{ID: "u1", PasswordHash: string(hash)}, nil)

	_, err = svc.Login(context.Background(), "ana@loja.com", "errada")

	assert.IsType(t, &apperror.UnauthorizedError{}, err)
	tokens.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything)
}

func TestLogin_Fail_UnknownEmail(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newService(repo, new(MockTokenService))

	repo.On("FindByEmail", mock.Anything, "x@loja.com").Return(domain.User{}, apperror.NewNotFoundError("usuário"))

	_, err := svc.Login(context.Background(), "x@loja.com", "qualquer")

	assert.IsType(t, &apperror.UnauthorizedError{}, err)
}

func TestLogin_Fail_TokenError(t *testing.T) {
	repo := new(MockUserRepository)
	tokens := new(MockTokenService)
	svc := newService(repo, tokens)

	hash, err := bcrypt.GenerateFromPassword([]byte("segredo123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.On("FindByEmail", mock.Anything, "ana@loja.com").Return(domain.User{ID: "u1", PasswordHash: string(hash)}, nil)
	tokens.On("GenerateToken", "u1", domain.UserRole("")).Return("", errors.New("assinatura"))

	_, err = svc.Login(context.Background(), "ana@loja.com", "segredo123")

	assert.IsType(t, &apperror.InternalError{}, err)
}
