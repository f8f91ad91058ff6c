package user

import (
	"context"
	"net/http"

	"gopos/internal/api/response"
	"gopos/internal/domain"
	"gopos/internal/pkg/logger"
	"gopos/internal/pkg/validation"
)

// UserService define o contrato para as operações de registro e login.
type UserService interface {
	Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error)
	Login(ctx context.Context, email string, password string) (domain.LoginResponse, error)
}

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// RegisterUserHandler lida com a requisição POST /v1/users/register.
// @Summary Registra um novo usuário
// @Description O primeiro usuário vira admin; os seguintes entram como caixa.
// @Tags users
// @Accept json
// @Produce json
// @Param registration body domain.UserRegistration true "Credenciais de registro"
// @Success 201 {object} domain.User "Usuário criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 403 {object} domain.ErrorResponse "Papel elevado solicitado"
// @Failure 409 {object} domain.ErrorResponse "Email já cadastrado"
// @Router /users/register [post]
func (h *Handler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var reg domain.UserRegistration
	if err := validation.DecodeJSONBody(r, &reg); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	// PasswordHash não é serializado (tag json:"-").
	newUser, err := h.Service.Register(r.Context(), reg)
	response.Handle(w, r, h.Logger, newUser, err, http.StatusCreated)
}

// LoginUserHandler lida com a requisição POST /v1/users/login.
// @Summary Autentica um usuário e retorna um JWT
// @Tags users
// @Accept json
// @Produce json
// @Param login body domain.UserLogin true "Credenciais do usuário"
// @Success 200 {object} domain.LoginResponse "Token JWT emitido"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Router /users/login [post]
func (h *Handler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var loginReq domain.UserLogin
	if err := validation.DecodeJSONBody(r, &loginReq); err != nil {
		response.Error(w, r, h.Logger, err)
		return
	}

	resp, err := h.Service.Login(r.Context(), loginReq.Email, loginReq.Password)
	response.Handle(w, r, h.Logger, resp, err, http.StatusOK)
}
