package service

import (
	"context"
	"errors"

	"flourmill/internal/model"
	"flourmill/internal/repository"
	"flourmill/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateWarehouseRequest struct {
	Name       string          `json:"name" binding:"required"`
	Location   string          `json:"location"`
	CapacityKg decimal.Decimal `json:"capacity_kg"`
}

type UpdateWarehouseRequest struct {
	Name       string           `json:"name"`
	Location   string           `json:"location"`
	CapacityKg *decimal.Decimal `json:"capacity_kg"`
	IsActive   *bool            `json:"is_active"`
}

// AdjustStockRequest moves stock in or out of a warehouse. Positive delta
// receives stock, negative issues it.
type AdjustStockRequest struct {
	DeltaKg decimal.Decimal `json:"delta_kg" binding:"required"`
	Note    string          `json:"note"`
}

type WarehouseResponse struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Location   string          `json:"location"`
	CapacityKg decimal.Decimal `json:"capacity_kg"`
	StockKg    decimal.Decimal `json:"stock_kg"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
}

// WarehouseService defines the business logic for warehouses and stock levels
type WarehouseService interface {
	CreateWarehouse(ctx context.Context, req CreateWarehouseRequest) (*WarehouseResponse, error)
	GetWarehouseByID(ctx context.Context, id string) (*WarehouseResponse, error)
	ListWarehouses(ctx context.Context, page, limit int) ([]WarehouseResponse, int64, error)
	UpdateWarehouse(ctx context.Context, id string, req UpdateWarehouseRequest) (*WarehouseResponse, error)
	DeleteWarehouse(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, id string, req AdjustStockRequest) (*WarehouseResponse, error)
	ListMovements(ctx context.Context, id string, page, limit int) ([]model.StockMovement, int64, error)
}

type warehouseService struct {
	repo  repository.WarehouseRepository
	txMgr repository.TransactionManager
	audit AuditService
	hub   *websocket.Hub
}

func NewWarehouseService(repo repository.WarehouseRepository, txMgr repository.TransactionManager, audit AuditService, hub *websocket.Hub) WarehouseService {
	return &warehouseService{repo: repo, txMgr: txMgr, audit: audit, hub: hub}
}

func mapWarehouseToResponse(w *model.Warehouse) *WarehouseResponse {
	return &WarehouseResponse{
		ID:         w.ID,
		Name:       w.Name,
		Location:   w.Location,
		CapacityKg: w.CapacityKg,
		StockKg:    w.StockKg,
		IsActive:   w.IsActive,
		CreatedAt:  w.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:  w.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *warehouseService) CreateWarehouse(ctx context.Context, req CreateWarehouseRequest) (*WarehouseResponse, error) {
	if req.CapacityKg.IsNegative() {
		return nil, errors.New("capacity cannot be negative")
	}

	warehouse := &model.Warehouse{
		Name:       req.Name,
		Location:   req.Location,
		CapacityKg: req.CapacityKg,
		StockKg:    decimal.Zero,
		IsActive:   true,
	}
	if err := s.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, nil, model.ActionCreateWarehouse, warehouse.ID.String(), warehouse.Name, nil)
	return mapWarehouseToResponse(warehouse), nil
}

func (s *warehouseService) GetWarehouseByID(ctx context.Context, id string) (*WarehouseResponse, error) {
	warehouse, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("warehouse not found")
	}
	return mapWarehouseToResponse(warehouse), nil
}

func (s *warehouseService) ListWarehouses(ctx context.Context, page, limit int) ([]WarehouseResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	warehouses, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	var responses []WarehouseResponse
	for _, w := range warehouses {
		responses = append(responses, *mapWarehouseToResponse(&w))
	}
	return responses, total, nil
}

func (s *warehouseService) UpdateWarehouse(ctx context.Context, id string, req UpdateWarehouseRequest) (*WarehouseResponse, error) {
	warehouse, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("warehouse not found")
	}

	if req.Name != "" {
		warehouse.Name = req.Name
	}
	if req.Location != "" {
		warehouse.Location = req.Location
	}
	if req.CapacityKg != nil {
		if req.CapacityKg.IsNegative() {
			return nil, errors.New("capacity cannot be negative")
		}
		warehouse.CapacityKg = *req.CapacityKg
	}
	if req.IsActive != nil {
		warehouse.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, warehouse); err != nil {
		return nil, err
	}
	return mapWarehouseToResponse(warehouse), nil
}

func (s *warehouseService) DeleteWarehouse(ctx context.Context, id string) error {
	warehouse, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return errors.New("warehouse not found")
	}
	if !warehouse.StockKg.IsZero() {
		return errors.New("cannot delete a warehouse holding stock")
	}
	return s.repo.Delete(ctx, id)
}

// AdjustStock applies a manual stock movement inside a transaction, so the
// warehouse level and the movement record cannot diverge.
func (s *warehouseService) AdjustStock(ctx context.Context, id string, req AdjustStockRequest) (*WarehouseResponse, error) {
	if req.DeltaKg.IsZero() {
		return nil, errors.New("stock adjustment cannot be zero")
	}

	var updated *model.Warehouse
	err := s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		warehouse, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return errors.New("warehouse not found")
		}

		newStock := warehouse.StockKg.Add(req.DeltaKg)
		if newStock.IsNegative() {
			return errors.New("insufficient stock for adjustment")
		}
		if warehouse.CapacityKg.IsPositive() && newStock.GreaterThan(warehouse.CapacityKg) {
			return errors.New("adjustment exceeds warehouse capacity")
		}

		warehouse.StockKg = newStock
		if err := s.repo.Update(txCtx, warehouse); err != nil {
			return err
		}

		movementType := model.StockMoveIn
		if req.DeltaKg.IsNegative() {
			movementType = model.StockMoveOut
		}
		movement := &model.StockMovement{
			WarehouseID:  warehouse.ID,
			MovementType: movementType,
			QuantityKg:   req.DeltaKg.Abs(),
			StockAfterKg: newStock,
			Note:         req.Note,
		}
		if err := s.repo.CreateMovement(txCtx, movement); err != nil {
			return err
		}

		updated = warehouse
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, nil, model.ActionAdjustStock, updated.ID.String(), updated.Name, req)
	s.hub.BroadcastEvent(websocket.EventStockChanged, map[string]interface{}{
		"warehouse_id": updated.ID.String(),
		"stock_kg":     updated.StockKg,
	})
	return mapWarehouseToResponse(updated), nil
}

func (s *warehouseService) ListMovements(ctx context.Context, id string, page, limit int) ([]model.StockMovement, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	return s.repo.ListMovements(ctx, id, page, limit)
}
