package ledger

import (
	"time"

	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/hesabdar/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Representative is a sales representative whose invoices and payments flow
// through the ledger. TotalDebt and TotalSales are derived aggregates: they
// are only ever rewritten by reconciliation, never incrementally adjusted by
// individual postings.
type Representative struct {
	shared.BaseAggregateRoot
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	StoreName   string          `json:"store_name"`
	PhoneNumber string          `json:"phone_number"`
	TotalDebt   decimal.Decimal `json:"total_debt"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	IsActive    bool            `json:"is_active"`
}

// NewRepresentative creates a new representative with zeroed aggregates
func NewRepresentative(code, name, storeName string) (*Representative, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Representative code cannot be empty")
	}
	if len(code) > 30 {
		return nil, shared.NewDomainError("INVALID_CODE", "Representative code cannot exceed 30 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Representative name cannot be empty")
	}

	r := &Representative{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		StoreName:         storeName,
		TotalDebt:         decimal.Zero,
		TotalSales:        decimal.Zero,
		IsActive:          true,
	}

	return r, nil
}

// ApplyReconciliation overwrites the stored aggregates with recomputed values.
// Returns the debt delta so callers can record the audit entry.
func (r *Representative) ApplyReconciliation(trueDebt, trueSales valueobject.Money) decimal.Decimal {
	delta := trueDebt.Amount().Sub(r.TotalDebt)

	r.TotalDebt = trueDebt.Amount()
	r.TotalSales = trueSales.Amount()
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	if !delta.IsZero() {
		r.AddDomainEvent(NewDebtReconciledEvent(r, delta))
	}

	return delta
}

// SetPhoneNumber sets the contact phone number
func (r *Representative) SetPhoneNumber(phone string) {
	r.PhoneNumber = phone
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// Deactivate marks the representative as inactive
func (r *Representative) Deactivate() {
	r.IsActive = false
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// GetTotalDebtMoney returns the stored debt aggregate as Money
func (r *Representative) GetTotalDebtMoney() valueobject.Money {
	return valueobject.NewMoneyIRR(r.TotalDebt)
}

// GetTotalSalesMoney returns the stored sales aggregate as Money
func (r *Representative) GetTotalSalesMoney() valueobject.Money {
	return valueobject.NewMoneyIRR(r.TotalSales)
}
