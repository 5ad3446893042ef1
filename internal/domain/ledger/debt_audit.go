package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DebtAudit records one correction of a representative's stored debt aggregate.
// One row per reconciliation run that found drift; zero-delta runs write nothing.
type DebtAudit struct {
	shared.BaseEntity
	RepresentativeID uuid.UUID       `json:"representative_id"`
	PreviousDebt     decimal.Decimal `json:"previous_debt"`
	NewDebt          decimal.Decimal `json:"new_debt"`
	Delta            decimal.Decimal `json:"delta"`
	RecordedAt       time.Time       `json:"recorded_at"`
}

// NewDebtAudit creates an audit record for a corrected debt aggregate
func NewDebtAudit(representativeID uuid.UUID, previousDebt, newDebt decimal.Decimal) (*DebtAudit, error) {
	if representativeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REPRESENTATIVE", "Representative ID cannot be empty")
	}

	return &DebtAudit{
		BaseEntity:       shared.NewBaseEntity(),
		RepresentativeID: representativeID,
		PreviousDebt:     previousDebt,
		NewDebt:          newDebt,
		Delta:            newDebt.Sub(previousDebt),
		RecordedAt:       time.Now(),
	}, nil
}

// HasDrift returns true if the audit records an actual correction
func (a *DebtAudit) HasDrift() bool {
	return !a.Delta.IsZero()
}
