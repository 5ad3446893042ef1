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

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return r.db
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := r.conn(ctx).WithContext(ctx).
		Preload("Allocations").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPaymentNumber finds a payment by its number
func (r *GormPaymentRepository) FindByPaymentNumber(ctx context.Context, paymentNumber string) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := r.conn(ctx).WithContext(ctx).
		Preload("Allocations").
		First(&model, "payment_number = ?", paymentNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds payments with filtering
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter ledger.PaymentFilter) ([]ledger.Payment, error) {
	query := r.applyFilter(r.conn(ctx).WithContext(ctx).Model(&models.PaymentModel{}), filter)

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if filter.Page > 0 {
			query = query.Offset((filter.Page - 1) * filter.PageSize)
		}
	}

	return r.scan(query.Order("payment_date DESC, id DESC"))
}

// FindUnallocatedByRepresentative finds payments with remaining unallocated
// amount for a representative. Ordering is payment date then ID ascending so
// the oldest payment is consumed first.
func (r *GormPaymentRepository) FindUnallocatedByRepresentative(ctx context.Context, representativeID uuid.UUID) ([]ledger.Payment, error) {
	query := r.conn(ctx).WithContext(ctx).
		Where("representative_id = ? AND status IN ?", representativeID, []ledger.PaymentStatus{
			ledger.PaymentStatusUnallocated,
			ledger.PaymentStatusPartial,
		}).
		Order("payment_date ASC, id ASC")
	return r.scan(query)
}

// FindUnallocated finds all payments lacking full allocation, oldest first
func (r *GormPaymentRepository) FindUnallocated(ctx context.Context, filter ledger.PaymentFilter) ([]ledger.Payment, error) {
	query := r.applyFilter(r.conn(ctx).WithContext(ctx).Model(&models.PaymentModel{}), filter).
		Where("status IN ?", []ledger.PaymentStatus{
			ledger.PaymentStatusUnallocated,
			ledger.PaymentStatusPartial,
		})

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if filter.Page > 0 {
			query = query.Offset((filter.Page - 1) * filter.PageSize)
		}
	}

	return r.scan(query.Order("payment_date ASC, id ASC"))
}

// Save creates or updates a payment together with its allocation entries.
// FullSaveAssociations keeps the allocations table in step with the aggregate;
// allocation rows are append-only so updates never rewrite history.
func (r *GormPaymentRepository) Save(ctx context.Context, payment *ledger.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return r.conn(ctx).WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(model).Error
}

// SaveWithLock saves with optimistic locking and persists any new allocation
// entries. The version check rejects the write when another writer already
// advanced the row.
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, payment *ledger.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	db := r.conn(ctx).WithContext(ctx)

	result := db.Model(&models.PaymentModel{}).
		Omit("Allocations").
		Where("id = ? AND version < ?", payment.ID, payment.Version).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The payment has been modified by another process")
	}

	// Allocation rows are immutable once written; only new entries need to land.
	for i := range model.Allocations {
		if err := db.Where("id = ?", model.Allocations[i].ID).
			FirstOrCreate(&model.Allocations[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Count counts payments matching the filter
func (r *GormPaymentRepository) Count(ctx context.Context, filter ledger.PaymentFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.conn(ctx).WithContext(ctx).Model(&models.PaymentModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumAllocatedByRepresentative sums net allocated amounts across a
// representative's payments. Reversal entries carry negative amounts, so a
// plain SUM over the allocation ledger nets them out.
func (r *GormPaymentRepository) SumAllocatedByRepresentative(ctx context.Context, representativeID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.conn(ctx).WithContext(ctx).
		Model(&models.AllocationModel{}).
		Select("COALESCE(SUM(allocations.amount), 0)").
		Joins("JOIN payments ON payments.id = allocations.payment_id").
		Where("payments.representative_id = ?", representativeID).
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// SummaryByRepresentative computes the allocation summary for a representative
func (r *GormPaymentRepository) SummaryByRepresentative(ctx context.Context, representativeID uuid.UUID) (*ledger.PaymentSummary, error) {
	var row struct {
		TotalPayments          int64
		AllocatedPayments      int64
		UnallocatedPayments    int64
		TotalPaidAmount        decimal.Decimal
		TotalUnallocatedAmount decimal.Decimal
	}
	if err := r.conn(ctx).WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select(`COUNT(*) AS total_payments,
			COUNT(*) FILTER (WHERE status = ?) AS allocated_payments,
			COUNT(*) FILTER (WHERE status IN ?) AS unallocated_payments,
			COALESCE(SUM(amount), 0) AS total_paid_amount,
			COALESCE(SUM(unallocated_amount), 0) AS total_unallocated_amount`,
			ledger.PaymentStatusAllocated,
			[]ledger.PaymentStatus{ledger.PaymentStatusUnallocated, ledger.PaymentStatusPartial}).
		Where("representative_id = ?", representativeID).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	return &ledger.PaymentSummary{
		TotalPayments:          row.TotalPayments,
		AllocatedPayments:      row.AllocatedPayments,
		UnallocatedPayments:    row.UnallocatedPayments,
		TotalPaidAmount:        row.TotalPaidAmount,
		TotalUnallocatedAmount: row.TotalUnallocatedAmount,
	}, nil
}

// GeneratePaymentNumber generates a unique payment number.
// Format: PAY-YYYYMMDD-NNNN where NNNN restarts each day.
func (r *GormPaymentRepository) GeneratePaymentNumber(ctx context.Context) (string, error) {
	today := time.Now().UTC().Format("20060102")
	prefix := fmt.Sprintf("PAY-%s-", today)

	var maxNumber string
	if err := r.conn(ctx).WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("payment_number").
		Where("payment_number LIKE ?", prefix+"%").
		Order("payment_number DESC").
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

func (r *GormPaymentRepository) applyFilter(query *gorm.DB, filter ledger.PaymentFilter) *gorm.DB {
	if filter.RepresentativeID != nil {
		query = query.Where("representative_id = ?", *filter.RepresentativeID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaidFrom != nil {
		query = query.Where("payment_date >= ?", *filter.PaidFrom)
	}
	if filter.PaidTo != nil {
		query = query.Where("payment_date <= ?", *filter.PaidTo)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("payment_number ILIKE ? OR reference_number ILIKE ?", pattern, pattern)
	}
	return query
}

func (r *GormPaymentRepository) scan(query *gorm.DB) ([]ledger.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := query.Preload("Allocations").Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]ledger.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// Ensure GormPaymentRepository implements the interface
var _ ledger.PaymentRepository = (*GormPaymentRepository)(nil)
