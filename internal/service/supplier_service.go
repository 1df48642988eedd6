package service

import (
	"context"
	"errors"

	"flourmill/internal/model"
	"flourmill/internal/repository"

	"github.com/google/uuid"
)

type CreateSupplierRequest struct {
	Name          string `json:"name" binding:"required"`
	CompanyName   string `json:"company_name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email" binding:"omitempty,email"`
	Address       string `json:"address"`
	TaxCode       string `json:"tax_code"`
	BankAccount   string `json:"bank_account"`
}

type UpdateSupplierRequest struct {
	Name          string `json:"name"`
	CompanyName   string `json:"company_name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email" binding:"omitempty,email"`
	Address       string `json:"address"`
	TaxCode       string `json:"tax_code"`
	BankAccount   string `json:"bank_account"`
	IsActive      *bool  `json:"is_active"`
}

type SupplierResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	CompanyName   string    `json:"company_name"`
	ContactPerson string    `json:"contact_person"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	TaxCode       string    `json:"tax_code"`
	BankAccount   string    `json:"bank_account"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     string    `json:"created_at"`
	UpdatedAt     string    `json:"updated_at"`
}

// SupplierService defines the business logic for supplier management
type SupplierService interface {
	CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error)
	GetSupplierByID(ctx context.Context, id string) (*SupplierResponse, error)
	ListSuppliers(ctx context.Context, page, limit int, activeOnly bool) ([]SupplierResponse, int64, error)
	UpdateSupplier(ctx context.Context, id string, req UpdateSupplierRequest) (*SupplierResponse, error)
	DeleteSupplier(ctx context.Context, id string) error
}

type supplierService struct {
	repo  repository.SupplierRepository
	audit AuditService
}

func NewSupplierService(repo repository.SupplierRepository, audit AuditService) SupplierService {
	return &supplierService{repo: repo, audit: audit}
}

func mapSupplierToResponse(s *model.Supplier) *SupplierResponse {
	return &SupplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		CompanyName:   s.CompanyName,
		ContactPerson: s.ContactPerson,
		Phone:         s.Phone,
		Email:         s.Email,
		Address:       s.Address,
		TaxCode:       s.TaxCode,
		BankAccount:   s.BankAccount,
		IsActive:      s.IsActive,
		CreatedAt:     s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:     s.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *supplierService) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier := &model.Supplier{
		Name:          req.Name,
		CompanyName:   req.CompanyName,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		TaxCode:       req.TaxCode,
		BankAccount:   req.BankAccount,
		IsActive:      true,
	}
	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, nil, model.ActionCreateSupplier, supplier.ID.String(), supplier.Name, nil)
	return mapSupplierToResponse(supplier), nil
}

func (s *supplierService) GetSupplierByID(ctx context.Context, id string) (*SupplierResponse, error) {
	supplier, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("supplier not found")
	}
	return mapSupplierToResponse(supplier), nil
}

func (s *supplierService) ListSuppliers(ctx context.Context, page, limit int, activeOnly bool) ([]SupplierResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	suppliers, total, err := s.repo.List(ctx, page, limit, activeOnly)
	if err != nil {
		return nil, 0, err
	}

	var responses []SupplierResponse
	for _, sup := range suppliers {
		responses = append(responses, *mapSupplierToResponse(&sup))
	}
	return responses, total, nil
}

func (s *supplierService) UpdateSupplier(ctx context.Context, id string, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("supplier not found")
	}

	if req.Name != "" {
		supplier.Name = req.Name
	}
	if req.CompanyName != "" {
		supplier.CompanyName = req.CompanyName
	}
	if req.ContactPerson != "" {
		supplier.ContactPerson = req.ContactPerson
	}
	if req.Phone != "" {
		supplier.Phone = req.Phone
	}
	if req.Email != "" {
		supplier.Email = req.Email
	}
	if req.Address != "" {
		supplier.Address = req.Address
	}
	if req.TaxCode != "" {
		supplier.TaxCode = req.TaxCode
	}
	if req.BankAccount != "" {
		supplier.BankAccount = req.BankAccount
	}
	if req.IsActive != nil {
		supplier.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, nil, model.ActionUpdateSupplier, supplier.ID.String(), supplier.Name, req)
	return mapSupplierToResponse(supplier), nil
}

func (s *supplierService) DeleteSupplier(ctx context.Context, id string) error {
	supplier, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return errors.New("supplier not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, nil, model.ActionDeleteSupplier, id, supplier.Name, nil)
	return nil
}
