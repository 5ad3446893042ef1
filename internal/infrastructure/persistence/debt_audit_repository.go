package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/hesabdar/backend/internal/domain/ledger"
	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/hesabdar/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDebtAuditRepository implements DebtAuditRepository using GORM
type GormDebtAuditRepository struct {
	db *gorm.DB
}

// NewGormDebtAuditRepository creates a new GormDebtAuditRepository
func NewGormDebtAuditRepository(db *gorm.DB) *GormDebtAuditRepository {
	return &GormDebtAuditRepository{db: db}
}

func (r *GormDebtAuditRepository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return r.db
}

// Save appends an audit record
func (r *GormDebtAuditRepository) Save(ctx context.Context, audit *ledger.DebtAudit) error {
	model := models.DebtAuditModelFromDomain(audit)
	return r.conn(ctx).WithContext(ctx).Create(model).Error
}

// FindByRepresentative returns audit records newest first
func (r *GormDebtAuditRepository) FindByRepresentative(ctx context.Context, representativeID uuid.UUID, filter shared.Filter) ([]ledger.DebtAudit, error) {
	var auditModels []models.DebtAuditModel
	query := r.conn(ctx).WithContext(ctx).
		Where("representative_id = ?", representativeID).
		Order("recorded_at DESC, id DESC")

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if filter.Page > 0 {
			query = query.Offset((filter.Page - 1) * filter.PageSize)
		}
	}

	if err := query.Find(&auditModels).Error; err != nil {
		return nil, err
	}
	audits := make([]ledger.DebtAudit, len(auditModels))
	for i, model := range auditModels {
		audits[i] = *model.ToDomain()
	}
	return audits, nil
}

// Ensure GormDebtAuditRepository implements the interface
var _ ledger.DebtAuditRepository = (*GormDebtAuditRepository)(nil)
