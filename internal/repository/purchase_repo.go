package repository

import (
	"context"

	"flourmill/internal/model"

	"gorm.io/gorm"
)

// PurchaseRepository defines the interface for data access of Purchase
// entities, including the reporting aggregations
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.Purchase) error
	GetByID(ctx context.Context, id string) (*model.Purchase, error)
	List(ctx context.Context, page, limit int, paymentStatus string) ([]model.Purchase, int64, error)
	Update(ctx context.Context, purchase *model.Purchase) error
	ReplaceItems(ctx context.Context, purchase *model.Purchase, items []model.PurchaseItem) error
	Delete(ctx context.Context, id string) error
	CountThisYear(ctx context.Context) (int64, error)

	Summary(ctx context.Context) (*model.PurchaseSummary, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *model.Purchase) error {
	return GetDB(ctx, r.db).Create(purchase).Error
}

func (r *purchaseRepository) GetByID(ctx context.Context, id string) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := GetDB(ctx, r.db).Preload("Items").Preload("Supplier").Preload("Warehouse").
		First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) List(ctx context.Context, page, limit int, paymentStatus string) ([]model.Purchase, int64, error) {
	var purchases []model.Purchase
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Purchase{})
	if paymentStatus != "" {
		db = db.Where("payment_status = ?", paymentStatus)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Items").Preload("Supplier").
		Order("purchase_date DESC, created_at DESC").
		Offset(offset).Limit(limit).Find(&purchases).Error; err != nil {
		return nil, 0, err
	}
	return purchases, total, nil
}

func (r *purchaseRepository) Update(ctx context.Context, purchase *model.Purchase) error {
	return GetDB(ctx, r.db).Save(purchase).Error
}

// ReplaceItems swaps a purchase's line items wholesale. Runs inside the
// caller's transaction when one is bound to ctx.
func (r *purchaseRepository) ReplaceItems(ctx context.Context, purchase *model.Purchase, items []model.PurchaseItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("purchase_id = ?", purchase.ID).Delete(&model.PurchaseItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].PurchaseID = purchase.ID
	}
	if len(items) == 0 {
		return nil
	}
	return db.Create(&items).Error
}

func (r *purchaseRepository) Delete(ctx context.Context, id string) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Purchase{}).Error
}

func (r *purchaseRepository) CountThisYear(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Purchase{}).Unscoped().
		Where("date_part('year', created_at) = date_part('year', now())").
		Count(&count).Error
	return count, err
}

func (r *purchaseRepository) Summary(ctx context.Context) (*model.PurchaseSummary, error) {
	db := GetDB(ctx, r.db)
	summary := &model.PurchaseSummary{}

	row := db.Model(&model.Purchase{}).
		Select("COUNT(*), COALESCE(SUM(total_amount), 0), COALESCE(SUM(paid_amount), 0), COALESCE(SUM(due_amount), 0)").
		Row()
	if err := row.Scan(&summary.TotalPurchases, &summary.TotalAmount, &summary.TotalPaid, &summary.TotalDue); err != nil {
		return nil, err
	}

	if err := db.Model(&model.Purchase{}).
		Select("payment_status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS total_amount").
		Group("payment_status").
		Scan(&summary.ByStatus).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&model.Purchase{}).
		Select(`purchases.supplier_id::text AS supplier_id, suppliers.name AS supplier_name,
			COUNT(*) AS count, COALESCE(SUM(purchases.total_amount), 0) AS total_amount,
			COALESCE(SUM(purchases.due_amount), 0) AS total_due`).
		Joins("INNER JOIN suppliers ON suppliers.id = purchases.supplier_id").
		Group("purchases.supplier_id, suppliers.name").
		Order("total_amount DESC").
		Scan(&summary.BySupplier).Error; err != nil {
		return nil, err
	}

	return summary, nil
}
