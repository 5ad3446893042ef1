package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hesabdar/backend/internal/domain/ledger"
	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/hesabdar/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return r.db
}

// FindByID finds an invoice by ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Invoice, error) {
	var model models.InvoiceModel
	if err := r.conn(ctx).WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoiceNumber finds an invoice by its number
func (r *GormInvoiceRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*ledger.Invoice, error) {
	var model models.InvoiceModel
	if err := r.conn(ctx).WithContext(ctx).
		First(&model, "invoice_number = ?", invoiceNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds invoices with filtering
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter ledger.InvoiceFilter) ([]ledger.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.applyFilter(r.conn(ctx).WithContext(ctx).Model(&models.InvoiceModel{}), filter)

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if filter.Page > 0 {
			query = query.Offset((filter.Page - 1) * filter.PageSize)
		}
	}

	if err := query.Order("issue_date DESC, id DESC").Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]ledger.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// FindOpenByRepresentative finds all open invoices for a representative.
// Ordering is issue date then ID ascending so allocation always consumes the
// oldest invoice first, with a deterministic tie-break for same-day invoices.
func (r *GormInvoiceRepository) FindOpenByRepresentative(ctx context.Context, representativeID uuid.UUID) ([]ledger.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.conn(ctx).WithContext(ctx).
		Where("representative_id = ? AND status IN ?", representativeID, []ledger.InvoiceStatus{
			ledger.InvoiceStatusUnpaid,
			ledger.InvoiceStatusPartial,
			ledger.InvoiceStatusOverdue,
		}).
		Order("issue_date ASC, id ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]ledger.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *ledger.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.conn(ctx).WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking. The stored version must still be
// behind the aggregate's version for the update to land; zero rows affected
// means another writer got there first.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *ledger.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	result := r.conn(ctx).WithContext(ctx).
		Model(model).
		Where("id = ? AND version < ?", invoice.ID, invoice.Version).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The invoice has been modified by another process")
	}
	return nil
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter ledger.InvoiceFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.conn(ctx).WithContext(ctx).Model(&models.InvoiceModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumTotalByRepresentative sums invoice total amounts for a representative
func (r *GormInvoiceRepository) SumTotalByRepresentative(ctx context.Context, representativeID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.conn(ctx).WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("representative_id = ?", representativeID).
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// SumOutstandingByRepresentative sums outstanding amounts for a representative
func (r *GormInvoiceRepository) SumOutstandingByRepresentative(ctx context.Context, representativeID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.conn(ctx).WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("COALESCE(SUM(outstanding_amount), 0)").
		Where("representative_id = ?", representativeID).
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// GenerateInvoiceNumber generates a unique invoice number.
// Format: INV-YYYYMMDD-NNNN where NNNN restarts each day.
func (r *GormInvoiceRepository) GenerateInvoiceNumber(ctx context.Context) (string, error) {
	today := time.Now().UTC().Format("20060102")
	prefix := fmt.Sprintf("INV-%s-", today)

	var maxNumber string
	if err := r.conn(ctx).WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("invoice_number").
		Where("invoice_number LIKE ?", prefix+"%").
		Order("invoice_number DESC").
		Limit(1).
		Scan(&maxNumber).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	nextSeq := 1
	if maxNumber != "" {
		var seq int
		if _, err := fmt.Sscanf(maxNumber[len(maxNumber)-4:], "%04d", &seq); err == nil {
			nextSeq = seq + 1
		}
	}

	return fmt.Sprintf("%s%04d", prefix, nextSeq), nil
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter ledger.InvoiceFilter) *gorm.DB {
	if filter.RepresentativeID != nil {
		query = query.Where("representative_id = ?", *filter.RepresentativeID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.IssuedFrom != nil {
		query = query.Where("issue_date >= ?", *filter.IssuedFrom)
	}
	if filter.IssuedTo != nil {
		query = query.Where("issue_date <= ?", *filter.IssuedTo)
	}
	if filter.Overdue != nil && *filter.Overdue {
		query = query.Where("status = ? OR (due_date IS NOT NULL AND due_date < ? AND outstanding_amount > 0)",
			ledger.InvoiceStatusOverdue, time.Now().UTC())
	}
	if filter.MinOutstanding != nil {
		query = query.Where("outstanding_amount >= ?", *filter.MinOutstanding)
	}
	if filter.Search != "" {
		query = query.Where("invoice_number ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// Ensure GormInvoiceRepository implements the interface
var _ ledger.InvoiceRepository = (*GormInvoiceRepository)(nil)
