package warehouseservice

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
)

// WarehouseRepository define o contrato que o Serviço de Armazéns espera da camada de Persistência.
type WarehouseRepository interface {
	CreateWarehouse(ctx context.Context, warehouse domain.Warehouse) (domain.Warehouse, error)
	GetWarehouseByID(ctx context.Context, id string) (domain.Warehouse, error)
	GetAllWarehouses(ctx context.Context) ([]domain.Warehouse, error)
	UpdateWarehouse(ctx context.Context, warehouse domain.Warehouse) (domain.Warehouse, error)
	DeleteWarehouse(ctx context.Context, id string) error
}

// Service mantém o cadastro de lojas e depósitos.
type Service struct {
	repo   WarehouseRepository
	logger logger.Logger
	now    func() time.Time
}

// NewService cria e retorna uma nova instância do Serviço de Armazéns.
func NewService(repo WarehouseRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// CreateWarehouse cria um novo armazém após validações de negócio.
func (s *Service) CreateWarehouse(ctx context.Context, req domain.WarehouseRequest) (domain.Warehouse, error) {
	if err := validateWarehouse(req); err != nil {
		s.logger.Warn("Falha na validação do armazém.", map[string]interface{}{"code": req.Code, "error": err.Error()})
		return domain.Warehouse{}, err
	}

	now := s.now().UTC()
	warehouse := domain.Warehouse{
		ID:        uuid.New().String(),
		Code:      strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:      strings.TrimSpace(req.Name),
		Address:   req.Address,
		IsActive:  req.IsActive == nil || *req.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repo.CreateWarehouse(ctx, warehouse)
	if err != nil {
		return domain.Warehouse{}, err
	}

	s.logger.Info("Armazém criado com sucesso.", map[string]interface{}{"id": created.ID, "code": created.Code})
	return created, nil
}

// GetWarehouseByID busca um armazém pelo ID após validações de formato.
func (s *Service) GetWarehouseByID(ctx context.Context, id string) (domain.Warehouse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Warehouse{}, apperror.NewValidationError("O ID do armazém deve ser um UUID válido.")
	}
	return s.repo.GetWarehouseByID(ctx, id)
}

// GetAllWarehouses busca todos os armazéns.
func (s *Service) GetAllWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	warehouses, err := s.repo.GetAllWarehouses(ctx)
	if err != nil {
		s.logger.Error("Falha ao buscar todos os armazéns no repositório.", err)
		return nil, err
	}
	return warehouses, nil
}

// UpdateWarehouse atualiza nome, endereço e situação. O código não muda.
func (s *Service) UpdateWarehouse(ctx context.Context, id string, req domain.WarehouseRequest) (domain.Warehouse, error) {
	current, err := s.GetWarehouseByID(ctx, id)
	if err != nil {
		return domain.Warehouse{}, err
	}
	if req.Code == "" {
		req.Code = current.Code
	}
	if err := validateWarehouse(req); err != nil {
		return domain.Warehouse{}, err
	}
	if !strings.EqualFold(strings.TrimSpace(req.Code), current.Code) {
		return domain.Warehouse{}, apperror.NewValidationError("O código do armazém não pode ser alterado.")
	}

	current.Name = strings.TrimSpace(req.Name)
	current.Address = req.Address
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}
	current.UpdatedAt = s.now().UTC()

	updated, err := s.repo.UpdateWarehouse(ctx, current)
	if err != nil {
		return domain.Warehouse{}, err
	}

	s.logger.Info("Armazém atualizado com sucesso.", map[string]interface{}{"id": updated.ID, "name": updated.Name})
	return updated, nil
}

// DeleteWarehouse remove um armazém sem saldo vinculado.
func (s *Service) DeleteWarehouse(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID do armazém deve ser um UUID válido.")
	}

	if err := s.repo.DeleteWarehouse(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Armazém deletado com sucesso.", map[string]interface{}{"id": id})
	return nil
}

func validateWarehouse(req domain.WarehouseRequest) error {
	if strings.TrimSpace(req.Code) == "" {
		return apperror.NewValidationError("O código do armazém não pode ser vazio.")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return apperror.NewValidationError("O nome do armazém não pode ser vazio.")
	}
	if len(name) < 3 || len(name) > 100 {
		return apperror.NewValidationError("O nome do armazém deve ter entre 3 e 100 caracteres.")
	}
	return nil
}
