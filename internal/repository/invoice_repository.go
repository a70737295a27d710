package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nullbyte2020/TadbeerPlus-sub000/internal/model"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) WithTx(tx *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: tx}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *InvoiceRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("invoice_number = ?", number).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *InvoiceRepository) ListByContract(ctx context.Context, contractID uint) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("id ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// CancelOpenByContract marks every pending or overdue invoice of the
// contract cancelled. Paid invoices are left alone. Returns the number
// of invoices affected; zero is a normal outcome.
func (r *InvoiceRepository) CancelOpenByContract(ctx context.Context, contractID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("contract_id = ? AND status IN ?", contractID,
			[]model.InvoiceStatus{model.InvoiceStatusPending, model.InvoiceStatusOverdue}).
		Updates(map[string]any{
			"status":     model.InvoiceStatusCancelled,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}
