package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flourmill/internal/model"
	"flourmill/internal/repository"
	"flourmill/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseItemRequest struct {
	Product    string          `json:"product" binding:"required"`
	QuantityKg decimal.Decimal `json:"quantity_kg" binding:"required"`
	UnitPrice  decimal.Decimal `json:"unit_price" binding:"required"`
}

type CreatePurchaseRequest struct {
	SupplierID   string                `json:"supplier_id" binding:"required"`
	WarehouseID  string                `json:"warehouse_id"`
	Items        []PurchaseItemRequest `json:"items" binding:"required,min=1"`
	PaidAmount   decimal.Decimal       `json:"paid_amount"`
	PurchaseDate string                `json:"purchase_date"` // YYYY-MM-DD, default today
	Note         string                `json:"note"`
}

type UpdatePurchaseRequest struct {
	Items        []PurchaseItemRequest `json:"items"`
	PurchaseDate string                `json:"purchase_date"`
	Note         *string               `json:"note"`
}

// RecordPaymentRequest adds a payment against a purchase's outstanding due
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// PurchaseService defines the business logic for purchase records. Totals,
// due amounts, and payment status are always derived here, never accepted
// from the client.
type PurchaseService interface {
	CreatePurchase(ctx context.Context, createdBy *uuid.UUID, req CreatePurchaseRequest) (*model.Purchase, error)
	GetPurchaseByID(ctx context.Context, id string) (*model.Purchase, error)
	ListPurchases(ctx context.Context, page, limit int, paymentStatus string) ([]model.Purchase, int64, error)
	UpdatePurchase(ctx context.Context, id string, req UpdatePurchaseRequest) (*model.Purchase, error)
	RecordPayment(ctx context.Context, id string, req RecordPaymentRequest) (*model.Purchase, error)
	DeletePurchase(ctx context.Context, id string) error
	Summary(ctx context.Context) (*model.PurchaseSummary, error)
}

type purchaseService struct {
	repo       repository.PurchaseRepository
	suppliers  repository.SupplierRepository
	warehouses repository.WarehouseRepository
	txMgr      repository.TransactionManager
	audit      AuditService
	hub        *websocket.Hub
}

func NewPurchaseService(
	repo repository.PurchaseRepository,
	suppliers repository.SupplierRepository,
	warehouses repository.WarehouseRepository,
	txMgr repository.TransactionManager,
	audit AuditService,
	hub *websocket.Hub,
) PurchaseService {
	return &purchaseService{
		repo:       repo,
		suppliers:  suppliers,
		warehouses: warehouses,
		txMgr:      txMgr,
		audit:      audit,
		hub:        hub,
	}
}

// derivePaymentStatus maps a paid amount onto the Pending→Partial→Paid ladder
func derivePaymentStatus(total, paid decimal.Decimal) string {
	switch {
	case paid.LessThanOrEqual(decimal.Zero):
		return model.PaymentPending
	case paid.LessThan(total):
		return model.PaymentPartial
	default:
		return model.PaymentPaid
	}
}

// buildItems validates line items and computes their totals
func buildItems(reqs []PurchaseItemRequest) ([]model.PurchaseItem, decimal.Decimal, error) {
	if len(reqs) == 0 {
		return nil, decimal.Zero, errors.New("purchase requires at least one line item")
	}

	items := make([]model.PurchaseItem, 0, len(reqs))
	total := decimal.Zero
	for _, req := range reqs {
		if !req.QuantityKg.IsPositive() {
			return nil, decimal.Zero, errors.New("item quantity must be positive")
		}
		if req.UnitPrice.IsNegative() {
			return nil, decimal.Zero, errors.New("item unit price cannot be negative")
		}
		lineTotal := req.QuantityKg.Mul(req.UnitPrice)
		items = append(items, model.PurchaseItem{
			Product:    req.Product,
			QuantityKg: req.QuantityKg,
			UnitPrice:  req.UnitPrice,
			LineTotal:  lineTotal,
		})
		total = total.Add(lineTotal)
	}
	return items, total, nil
}

func (s *purchaseService) nextPurchaseNo(ctx context.Context) (string, error) {
	count, err := s.repo.CountThisYear(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PO-%d-%05d", time.Now().Year(), count+1), nil
}

func (s *purchaseService) CreatePurchase(ctx context.Context, createdBy *uuid.UUID, req CreatePurchaseRequest) (*model.Purchase, error) {
	supplier, err := s.suppliers.GetByID(ctx, req.SupplierID)
	if err != nil {
		return nil, errors.New("supplier not found")
	}
	if !supplier.IsActive {
		return nil, errors.New("supplier is inactive")
	}

	items, total, err := buildItems(req.Items)
	if err != nil {
		return nil, err
	}

	if req.PaidAmount.IsNegative() {
		return nil, errors.New("paid amount cannot be negative")
	}
	if req.PaidAmount.GreaterThan(total) {
		return nil, errors.New("paid amount cannot exceed the purchase total")
	}

	purchaseDate := time.Now()
	if req.PurchaseDate != "" {
		purchaseDate, err = time.Parse("2006-01-02", req.PurchaseDate)
		if err != nil {
			return nil, errors.New("invalid purchase_date: expected YYYY-MM-DD")
		}
	}

	var warehouseID *uuid.UUID
	if req.WarehouseID != "" {
		parsed, err := uuid.Parse(req.WarehouseID)
		if err != nil {
			return nil, errors.New("invalid warehouse id")
		}
		warehouseID = &parsed
	}

	var created *model.Purchase
	err = s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		purchaseNo, err := s.nextPurchaseNo(txCtx)
		if err != nil {
			return err
		}

		purchase := &model.Purchase{
			PurchaseNo:    purchaseNo,
			SupplierID:    supplier.ID,
			WarehouseID:   warehouseID,
			Items:         items,
			TotalAmount:   total,
			PaidAmount:    req.PaidAmount,
			DueAmount:     total.Sub(req.PaidAmount),
			PaymentStatus: derivePaymentStatus(total, req.PaidAmount),
			PurchaseDate:  purchaseDate,
			Note:          req.Note,
			CreatedBy:     createdBy,
		}
		if err := s.repo.Create(txCtx, purchase); err != nil {
			return err
		}

		// Receiving a purchase into a warehouse moves stock in atomically.
		if warehouseID != nil {
			if err := s.receiveStock(txCtx, purchase); err != nil {
				return err
			}
		}

		created = purchase
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, createdBy, model.ActionCreatePurchase, created.ID.String(), created.PurchaseNo, nil)
	s.hub.BroadcastEvent(websocket.EventPurchaseCreated, map[string]interface{}{
		"purchase_id":    created.ID.String(),
		"purchase_no":    created.PurchaseNo,
		"total_amount":   created.TotalAmount,
		"payment_status": created.PaymentStatus,
	})
	return created, nil
}

func (s *purchaseService) receiveStock(ctx context.Context, purchase *model.Purchase) error {
	warehouse, err := s.warehouses.GetByID(ctx, purchase.WarehouseID.String())
	if err != nil {
		return errors.New("warehouse not found")
	}

	quantity := decimal.Zero
	for _, item := range purchase.Items {
		quantity = quantity.Add(item.QuantityKg)
	}

	newStock := warehouse.StockKg.Add(quantity)
	if warehouse.CapacityKg.IsPositive() && newStock.GreaterThan(warehouse.CapacityKg) {
		return errors.New("purchase exceeds warehouse capacity")
	}

	warehouse.StockKg = newStock
	if err := s.warehouses.Update(ctx, warehouse); err != nil {
		return err
	}
	return s.warehouses.CreateMovement(ctx, &model.StockMovement{
		WarehouseID:  warehouse.ID,
		PurchaseID:   &purchase.ID,
		MovementType: model.StockMoveIn,
		QuantityKg:   quantity,
		StockAfterKg: newStock,
		Note:         "Received " + purchase.PurchaseNo,
	})
}

func (s *purchaseService) GetPurchaseByID(ctx context.Context, id string) (*model.Purchase, error) {
	purchase, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("purchase not found")
	}
	return purchase, nil
}

func (s *purchaseService) ListPurchases(ctx context.Context, page, limit int, paymentStatus string) ([]model.Purchase, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	return s.repo.List(ctx, page, limit, paymentStatus)
}

func (s *purchaseService) UpdatePurchase(ctx context.Context, id string, req UpdatePurchaseRequest) (*model.Purchase, error) {
	purchase, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("purchase not found")
	}
	if purchase.PaymentStatus == model.PaymentPaid {
		return nil, errors.New("cannot modify a fully paid purchase")
	}

	if req.PurchaseDate != "" {
		purchaseDate, err := time.Parse("2006-01-02", req.PurchaseDate)
		if err != nil {
			return nil, errors.New("invalid purchase_date: expected YYYY-MM-DD")
		}
		purchase.PurchaseDate = purchaseDate
	}
	if req.Note != nil {
		purchase.Note = *req.Note
	}

	err = s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		if len(req.Items) > 0 {
			items, total, err := buildItems(req.Items)
			if err != nil {
				return err
			}
			if purchase.PaidAmount.GreaterThan(total) {
				return errors.New("new total is below the amount already paid")
			}
			if err := s.repo.ReplaceItems(txCtx, purchase, items); err != nil {
				return err
			}
			purchase.Items = items
			purchase.TotalAmount = total
			purchase.DueAmount = total.Sub(purchase.PaidAmount)
			purchase.PaymentStatus = derivePaymentStatus(total, purchase.PaidAmount)
		}
		return s.repo.Update(txCtx, purchase)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, nil, model.ActionUpdatePurchase, purchase.ID.String(), purchase.PurchaseNo, req)
	s.hub.BroadcastEvent(websocket.EventPurchaseUpdated, map[string]interface{}{
		"purchase_id":    purchase.ID.String(),
		"purchase_no":    purchase.PurchaseNo,
		"total_amount":   purchase.TotalAmount,
		"payment_status": purchase.PaymentStatus,
	})
	return purchase, nil
}

func (s *purchaseService) RecordPayment(ctx context.Context, id string, req RecordPaymentRequest) (*model.Purchase, error) {
	if !req.Amount.IsPositive() {
		return nil, errors.New("payment amount must be positive")
	}

	purchase, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("purchase not found")
	}
	if purchase.PaymentStatus == model.PaymentPaid {
		return nil, errors.New("purchase is already fully paid")
	}
	if req.Amount.GreaterThan(purchase.DueAmount) {
		return nil, errors.New("payment exceeds the outstanding due amount")
	}

	purchase.PaidAmount = purchase.PaidAmount.Add(req.Amount)
	purchase.DueAmount = purchase.TotalAmount.Sub(purchase.PaidAmount)
	purchase.PaymentStatus = derivePaymentStatus(purchase.TotalAmount, purchase.PaidAmount)

	if err := s.repo.Update(ctx, purchase); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, nil, model.ActionUpdatePurchase, purchase.ID.String(), purchase.PurchaseNo, req)
	s.hub.BroadcastEvent(websocket.EventPurchaseUpdated, map[string]interface{}{
		"purchase_id":    purchase.ID.String(),
		"purchase_no":    purchase.PurchaseNo,
		"paid_amount":    purchase.PaidAmount,
		"due_amount":     purchase.DueAmount,
		"payment_status": purchase.PaymentStatus,
	})
	return purchase, nil
}

func (s *purchaseService) DeletePurchase(ctx context.Context, id string) error {
	purchase, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return errors.New("purchase not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, nil, model.ActionDeletePurchase, id, purchase.PurchaseNo, nil)
	return nil
}

func (s *purchaseService) Summary(ctx context.Context) (*model.PurchaseSummary, error) {
	return s.repo.Summary(ctx)
}
