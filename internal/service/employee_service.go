package service

import (
	"context"
	"errors"
	"time"

	"flourmill/internal/model"
	"flourmill/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateEmployeeRequest struct {
	FirstName   string          `json:"firstName" binding:"required"`
	LastName    string          `json:"lastName" binding:"required"`
	Email       string          `json:"email" binding:"omitempty,email"`
	Phone       string          `json:"phone"`
	Position    string          `json:"position" binding:"required"`
	Salary      decimal.Decimal `json:"salary"`
	HireDate    string          `json:"hire_date" binding:"required"` // YYYY-MM-DD
	WarehouseID string          `json:"warehouse_id"`
}

type UpdateEmployeeRequest struct {
	FirstName   string           `json:"firstName"`
	LastName    string           `json:"lastName"`
	Email       string           `json:"email" binding:"omitempty,email"`
	Phone       string           `json:"phone"`
	Position    string           `json:"position"`
	Salary      *decimal.Decimal `json:"salary"`
	WarehouseID string           `json:"warehouse_id"`
	IsActive    *bool            `json:"is_active"`
}

type EmployeeResponse struct {
	ID            uuid.UUID       `json:"id"`
	FirstName     string          `json:"firstName"`
	LastName      string          `json:"lastName"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	Position      string          `json:"position"`
	Salary        decimal.Decimal `json:"salary"`
	HireDate      string          `json:"hire_date"`
	WarehouseID   string          `json:"warehouse_id,omitempty"`
	WarehouseName string          `json:"warehouse_name,omitempty"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     string          `json:"created_at"`
}

// EmployeeService defines the business logic for employee records
type EmployeeService interface {
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*EmployeeResponse, error)
	GetEmployeeByID(ctx context.Context, id string) (*EmployeeResponse, error)
	ListEmployees(ctx context.Context, page, limit int) ([]EmployeeResponse, int64, error)
	UpdateEmployee(ctx context.Context, id string, req UpdateEmployeeRequest) (*EmployeeResponse, error)
	DeleteEmployee(ctx context.Context, id string) error
}

type employeeService struct {
	repo       repository.EmployeeRepository
	warehouses repository.WarehouseRepository
	audit      AuditService
}

func NewEmployeeService(repo repository.EmployeeRepository, warehouses repository.WarehouseRepository, audit AuditService) EmployeeService {
	return &employeeService{repo: repo, warehouses: warehouses, audit: audit}
}

func mapEmployeeToResponse(e *model.Employee) *EmployeeResponse {
	resp := &EmployeeResponse{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Email:     e.Email,
		Phone:     e.Phone,
		Position:  e.Position,
		Salary:    e.Salary,
		HireDate:  e.HireDate.Format("2006-01-02"),
		IsActive:  e.IsActive,
		CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if e.WarehouseID != nil {
		resp.WarehouseID = e.WarehouseID.String()
	}
	if e.Warehouse != nil {
		resp.WarehouseName = e.Warehouse.Name
	}
	return resp
}

func (s *employeeService) resolveWarehouse(ctx context.Context, id string) (*uuid.UUID, error) {
	if id == "" {
		return nil, nil
	}
	warehouseID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.New("invalid warehouse id")
	}
	if _, err := s.warehouses.GetByID(ctx, id); err != nil {
		return nil, errors.New("warehouse not found")
	}
	return &warehouseID, nil
}

func (s *employeeService) CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*EmployeeResponse, error) {
	if req.Salary.IsNegative() {
		return nil, errors.New("salary cannot be negative")
	}
	hireDate, err := time.Parse("2006-01-02", req.HireDate)
	if err != nil {
		return nil, errors.New("invalid hire_date: expected YYYY-MM-DD")
	}
	warehouseID, err := s.resolveWarehouse(ctx, req.WarehouseID)
	if err != nil {
		return nil, err
	}

	employee := &model.Employee{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Position:    req.Position,
		Salary:      req.Salary,
		HireDate:    hireDate,
		WarehouseID: warehouseID,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, nil, model.ActionCreateEmployee, employee.ID.String(), employee.FirstName+" "+employee.LastName, nil)
	return mapEmployeeToResponse(employee), nil
}

func (s *employeeService) GetEmployeeByID(ctx context.Context, id string) (*EmployeeResponse, error) {
	employee, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("employee not found")
	}
	return mapEmployeeToResponse(employee), nil
}

func (s *employeeService) ListEmployees(ctx context.Context, page, limit int) ([]EmployeeResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	employees, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	var responses []EmployeeResponse
	for _, e := range employees {
		responses = append(responses, *mapEmployeeToResponse(&e))
	}
	return responses, total, nil
}

func (s *employeeService) UpdateEmployee(ctx context.Context, id string, req UpdateEmployeeRequest) (*EmployeeResponse, error) {
	employee, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("employee not found")
	}

	if req.FirstName != "" {
		employee.FirstName = req.FirstName
	}
	if req.LastName != "" {
		employee.LastName = req.LastName
	}
	if req.Email != "" {
		employee.Email = req.Email
	}
	if req.Phone != "" {
		employee.Phone = req.Phone
	}
	if req.Position != "" {
		employee.Position = req.Position
	}
	if req.Salary != nil {
		if req.Salary.IsNegative() {
			return nil, errors.New("salary cannot be negative")
		}
		employee.Salary = *req.Salary
	}
	if req.WarehouseID != "" {
		warehouseID, err := s.resolveWarehouse(ctx, req.WarehouseID)
		if err != nil {
			return nil, err
		}
		employee.WarehouseID = warehouseID
	}
	if req.IsActive != nil {
		employee.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, employee); err != nil {
		return nil, err
	}
	return mapEmployeeToResponse(employee), nil
}

func (s *employeeService) DeleteEmployee(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return errors.New("employee not found")
	}
	return s.repo.Delete(ctx, id)
}
