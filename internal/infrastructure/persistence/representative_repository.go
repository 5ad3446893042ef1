package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hesabdar/backend/internal/domain/ledger"
	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/hesabdar/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRepresentativeRepository implements RepresentativeRepository using GORM
type GormRepresentativeRepository struct {
	db *gorm.DB
}

// NewGormRepresentativeRepository creates a new GormRepresentativeRepository
func NewGormRepresentativeRepository(db *gorm.DB) *GormRepresentativeRepository {
	return &GormRepresentativeRepository{db: db}
}

// conn returns the transaction handle from the context when one is open,
// otherwise the base connection
func (r *GormRepresentativeRepository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return r.db
}

// FindByID finds a representative by ID
func (r *GormRepresentativeRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Representative, error) {
	var model models.RepresentativeModel
	if err := r.conn(ctx).WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a representative by its unique code
func (r *GormRepresentativeRepository) FindByCode(ctx context.Context, code string) (*ledger.Representative, error) {
	var model models.RepresentativeModel
	if err := r.conn(ctx).WithContext(ctx).
		First(&model, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds representatives with filtering
func (r *GormRepresentativeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.Representative, error) {
	var repModels []models.RepresentativeModel
	query := r.conn(ctx).WithContext(ctx).Model(&models.RepresentativeModel{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ? OR store_name ILIKE ?", pattern, pattern, pattern)
	}

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if filter.Page > 0 {
			query = query.Offset((filter.Page - 1) * filter.PageSize)
		}
	}

	if err := query.Order("code ASC").Find(&repModels).Error; err != nil {
		return nil, err
	}
	reps := make([]ledger.Representative, len(repModels))
	for i, model := range repModels {
		reps[i] = *model.ToDomain()
	}
	return reps, nil
}

// Save creates or updates a representative
func (r *GormRepresentativeRepository) Save(ctx context.Context, representative *ledger.Representative) error {
	model := models.RepresentativeModelFromDomain(representative)
	return r.conn(ctx).WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking. The update only lands when the
// stored version is still behind the aggregate's version; a concurrent writer
// that already advanced the row makes this a conflict. This version check is
// the compare-and-set guard for reconciliation aggregate updates.
func (r *GormRepresentativeRepository) SaveWithLock(ctx context.Context, representative *ledger.Representative) error {
	model := models.RepresentativeModelFromDomain(representative)
	result := r.conn(ctx).WithContext(ctx).
		Model(model).
		Where("id = ? AND version < ?", representative.ID, representative.Version).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The representative has been modified by another process")
	}
	return nil
}

// Count counts representatives matching the filter
func (r *GormRepresentativeRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.conn(ctx).WithContext(ctx).Model(&models.RepresentativeModel{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ? OR store_name ILIKE ?", pattern, pattern, pattern)
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormRepresentativeRepository implements the interface
var _ ledger.RepresentativeRepository = (*GormRepresentativeRepository)(nil)
