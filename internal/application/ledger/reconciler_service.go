package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hesabdar/backend/internal/domain/ledger"
	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/hesabdar/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ReconcilerService recomputes a representative's debt and sales aggregates
// from the invoice and allocation ledgers and writes them back. The stored
// aggregates are a cache; the ledgers are the source of truth:
//
//	trueDebt  = sum(invoice totals) - sum(net allocated amounts)
//	trueSales = sum(invoice totals)
//
// A nonzero delta between the stored and recomputed debt is drift. Drift is
// recorded in the audit trail but never fails the request.
type ReconcilerService struct {
	representativeRepo ledger.RepresentativeRepository
	invoiceRepo        ledger.InvoiceRepository
	paymentRepo        ledger.PaymentRepository
	auditRepo          ledger.DebtAuditRepository
	txManager          ledger.TransactionManager
	locker             ledger.RepresentativeLocker
}

// NewReconcilerService creates a new ReconcilerService
func NewReconcilerService(
	representativeRepo ledger.RepresentativeRepository,
	invoiceRepo ledger.InvoiceRepository,
	paymentRepo ledger.PaymentRepository,
	auditRepo ledger.DebtAuditRepository,
	txManager ledger.TransactionManager,
	locker ledger.RepresentativeLocker,
) *ReconcilerService {
	return &ReconcilerService{
		representativeRepo: representativeRepo,
		invoiceRepo:        invoiceRepo,
		paymentRepo:        paymentRepo,
		auditRepo:          auditRepo,
		txManager:          txManager,
		locker:             locker,
	}
}

// ReconcileResponse reports the outcome of one reconciliation run
type ReconcileResponse struct {
	RepresentativeID uuid.UUID       `json:"representative_id"`
	PreviousDebt     decimal.Decimal `json:"previous_debt"`
	NewDebt          decimal.Decimal `json:"new_debt"`
	Delta            decimal.Decimal `json:"delta"`
	TotalSales       decimal.Decimal `json:"total_sales"`
	DriftDetected    bool            `json:"drift_detected"`
	ReconciledAt     time.Time       `json:"reconciled_at"`
}

// Reconcile recomputes and stores the representative's aggregates. Running it
// twice in a row yields a zero delta on the second run.
func (s *ReconcilerService) Reconcile(ctx context.Context, representativeID uuid.UUID) (*ReconcileResponse, error) {
	rep, err := s.representativeRepo.FindByID(ctx, representativeID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("REPRESENTATIVE_NOT_FOUND", "Representative not found")
		}
		return nil, err
	}

	// Reconciliation shares the representative lock with allocation runs so
	// the recomputed totals cannot interleave with an in-flight allocation.
	release, err := s.locker.Acquire(ctx, representativeID)
	if err != nil {
		return nil, err
	}
	defer release()

	totalSales, err := s.invoiceRepo.SumTotalByRepresentative(ctx, representativeID)
	if err != nil {
		return nil, err
	}
	totalAllocated, err := s.paymentRepo.SumAllocatedByRepresentative(ctx, representativeID)
	if err != nil {
		return nil, err
	}

	trueDebt := totalSales.Sub(totalAllocated)
	previousDebt := rep.TotalDebt
	delta := rep.ApplyReconciliation(valueobject.NewMoneyIRR(trueDebt), valueobject.NewMoneyIRR(totalSales))

	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.representativeRepo.SaveWithLock(txCtx, rep); err != nil {
			return err
		}
		if !delta.IsZero() {
			audit, err := ledger.NewDebtAudit(representativeID, previousDebt, trueDebt)
			if err != nil {
				return err
			}
			return s.auditRepo.Save(txCtx, audit)
		}
		return nil
	})
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrPersistenceFailure, err)
	}

	return &ReconcileResponse{
		RepresentativeID: representativeID,
		PreviousDebt:     previousDebt,
		NewDebt:          trueDebt,
		Delta:            delta,
		TotalSales:       totalSales,
		DriftDetected:    !delta.IsZero(),
		ReconciledAt:     time.Now(),
	}, nil
}

// DebtAuditResponse is one row of the reconciliation audit trail
type DebtAuditResponse struct {
	ID               uuid.UUID       `json:"id"`
	RepresentativeID uuid.UUID       `json:"representative_id"`
	PreviousDebt     decimal.Decimal `json:"previous_debt"`
	NewDebt          decimal.Decimal `json:"new_debt"`
	Delta            decimal.Decimal `json:"delta"`
	RecordedAt       time.Time       `json:"recorded_at"`
}

// ListAuditsRequest filters the audit trail listing
type ListAuditsRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// ListDebtAudits returns the reconciliation audit trail for a representative,
// newest first.
func (s *ReconcilerService) ListDebtAudits(ctx context.Context, representativeID uuid.UUID, req ListAuditsRequest) ([]DebtAuditResponse, error) {
	if _, err := s.representativeRepo.FindByID(ctx, representativeID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("REPRESENTATIVE_NOT_FOUND", "Representative not found")
		}
		return nil, err
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 && req.PageSize <= 200 {
		filter.PageSize = req.PageSize
	}

	audits, err := s.auditRepo.FindByRepresentative(ctx, representativeID, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]DebtAuditResponse, 0, len(audits))
	for i := range audits {
		a := &audits[i]
		responses = append(responses, DebtAuditResponse{
			ID:               a.ID,
			RepresentativeID: a.RepresentativeID,
			PreviousDebt:     a.PreviousDebt,
			NewDebt:          a.NewDebt,
			Delta:            a.Delta,
			RecordedAt:       a.RecordedAt,
		})
	}
	return responses, nil
}
