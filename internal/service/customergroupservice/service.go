package customergroupservice

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
)

// CustomerGroupRepository é o contrato de persistência dos grupos de clientes.
type CustomerGroupRepository interface {
	Create(ctx context.Context, group domain.CustomerGroup) (domain.CustomerGroup, error)
	FindByID(ctx context.Context, id string) (domain.CustomerGroup, error)
	List(ctx context.Context, activeOnly bool) ([]domain.CustomerGroup, error)
	Update(ctx context.Context, group domain.CustomerGroup) (domain.CustomerGroup, error)
}

// Service mantém o cadastro de grupos de clientes.
type Service struct {
	repo   CustomerGroupRepository
	logger logger.Logger
	now    func() time.Time
}

func NewService(repo CustomerGroupRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log, now: time.Now}
}

// CreateGroup cadastra um grupo. O código é normalizado para maiúsculas.
func (s *Service) CreateGroup(ctx context.Context, req domain.CustomerGroupRequest) (domain.CustomerGroup, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return domain.CustomerGroup{}, apperror.NewValidationError("O código do grupo é obrigatório.")
	}
	if strings.TrimSpace(req.Name) == "" {
		return domain.CustomerGroup{}, apperror.NewValidationError("O nome do grupo é obrigatório.")
	}

	now := s.now().UTC()
	group := domain.CustomerGroup{
		ID:          uuid.New().String(),
		Code:        code,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		IsActive:    req.IsActive == nil || *req.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Create(ctx, group)
	if err != nil {
		return domain.CustomerGroup{}, err
	}
	s.logger.Info("Grupo de clientes criado.", map[string]interface{}{"id": created.ID, "code": created.Code})
	return created, nil
}

func (s *Service) GetGroup(ctx context.Context, id string) (domain.CustomerGroup, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.CustomerGroup{}, apperror.NewValidationError("O ID do grupo de clientes deve ser um UUID válido.")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) ListGroups(ctx context.Context, activeOnly bool) ([]domain.CustomerGroup, error) {
	return s.repo.List(ctx, activeOnly)
}

// UpdateGroup troca nome, descrição e situação. O código é imutável.
func (s *Service) UpdateGroup(ctx context.Context, id string, req domain.CustomerGroupRequest) (domain.CustomerGroup, error) {
	current, err := s.GetGroup(ctx, id)
	if err != nil {
		return domain.CustomerGroup{}, err
	}
	if req.Code != "" && !strings.EqualFold(strings.TrimSpace(req.Code), current.Code) {
		return domain.CustomerGroup{}, apperror.NewValidationError("O código do grupo não pode ser alterado.")
	}
	if strings.TrimSpace(req.Name) == "" {
		return domain.CustomerGroup{}, apperror.NewValidationError("O nome do grupo é obrigatório.")
	}

	current.Name = strings.TrimSpace(req.Name)
	current.Description = req.Description
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}
	current.UpdatedAt = s.now().UTC()

	return s.repo.Update(ctx, current)
}
