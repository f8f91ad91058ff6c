package user_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gopos/internal/api/user"
	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
)

type MockUserService struct{ mock.Mock }

func (m *MockUserService) Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	args := m.Called(ctx, registration)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email string, password string) (domain.LoginResponse, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(domain.LoginResponse), args.Error(1)
}

func TestRegisterUserHandler_HidesPasswordHash(t *testing.T) {
	svc := new(MockUserService)
	h := user.NewHandler(svc, logger.NewNop())

	svc.On("Register", mock.Anything, domain.UserRegistration{Email: "ana@loja.com", Password: "segredo123"}).
		Return(domain.User{ID: "u1", Email: "ana@loja.com", PasswordHash: "$2a$10$hash", Role: domain.RoleAdmin}, nil)

	rec := httptest.NewRecorder()
	h.RegisterUserHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/users/register",
		strings.NewReader(`{"email":"ana@loja.com","password":"segredo123"}`)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "$2a$10$hash")
	assert.Contains(t, rec.Body.String(), `"role":"admin"`)
}

func TestRegisterUserHandler_ShortPassword(t *testing.T) {
	svc := new(MockUserService)
	h := user.NewHandler(svc, logger.NewNop())

	rec := httptest.NewRecorder()
	h.RegisterUserHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/users/register",
		strings.NewReader(`{"email":"ana@loja.com","password":"123"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegisterUserHandler_Forbidden(t *testing.T) {
	svc := new(MockUserService)
	h := user.NewHandler(svc, logger.NewNop())

	svc.On("Register", mock.Anything, mock.Anything).Return(domain.User{}, apperror.NewForbiddenError("papel"))

	rec := httptest.NewRecorder()
	h.RegisterUserHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/users/register",
		strings.NewReader(`{"email":"bia@loja.com","password":"segredo123","role":"admin"}`)))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLoginUserHandler_Success(t *testing.T) {
	svc := new(MockUserService)
	h := user.NewHandler(svc, logger.NewNop())

	svc.On("Login", mock.Anything, "ana@loja.com", "segredo123").
		Return(domain.LoginResponse{Token: "jwt", Role: domain.RoleAdmin}, nil)

	rec := httptest.NewRecorder()
	h.LoginUserHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/users/login",
		strings.NewReader(`{"email":"ana@loja.com","password":"segredo123"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"token":"jwt","role":"admin"}`, rec.Body.String())
}

func TestLoginUserHandler_Unauthorized(t *testing.T) {
	svc := new(MockUserService)
	h := user.NewHandler(svc, logger.NewNop())

	svc.On("Login", mock.Anything, "ana@loja.com", "errada").
		Return(domain.LoginResponse{}, apperror.NewUnauthorizedError("Credenciais inválidas."))

	rec := httptest.NewRecorder()
	h.LoginUserHandler(rec, httptest.NewRequest(http.MethodPost, "/v1/users/login",
		strings.NewReader(`{"email":"ana@loja.com","password":"errada"}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
