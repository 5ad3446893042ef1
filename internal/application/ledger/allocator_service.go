package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hesabdar/backend/internal/domain/ledger"
	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AllocatorService orchestrates payment-to-invoice allocation for one
// representative at a time. A run loads the unallocated payments and open
// invoices, plans allocations with the configured policy, and persists every
// resulting row in a single transaction: either the whole run commits or
// nothing does.
type AllocatorService struct {
	representativeRepo ledger.RepresentativeRepository
	invoiceRepo        ledger.InvoiceRepository
	paymentRepo        ledger.PaymentRepository
	txManager          ledger.TransactionManager
	locker             ledger.RepresentativeLocker
	allocationSvc      *ledger.AllocationService
}

// AllocatorServiceOption is a functional option for configuring AllocatorService
type AllocatorServiceOption func(*AllocatorService)

// WithAllocationPolicy sets the default allocation policy type
func WithAllocationPolicy(policyType ledger.AllocationPolicyType) AllocatorServiceOption {
	return func(s *AllocatorService) {
		s.allocationSvc = ledger.NewAllocationService(ledger.WithDefaultPolicy(policyType))
	}
}

// WithAllocationService allows injecting a custom domain allocation service
func WithAllocationService(svc *ledger.AllocationService) AllocatorServiceOption {
	return func(s *AllocatorService) {
		s.allocationSvc = svc
	}
}

// NewAllocatorService creates a new AllocatorService
func NewAllocatorService(
	representativeRepo ledger.RepresentativeRepository,
	invoiceRepo ledger.InvoiceRepository,
	paymentRepo ledger.PaymentRepository,
	txManager ledger.TransactionManager,
	locker ledger.RepresentativeLocker,
	opts ...AllocatorServiceOption,
) *AllocatorService {
	s := &AllocatorService{
		representativeRepo: representativeRepo,
		invoiceRepo:        invoiceRepo,
		paymentRepo:        paymentRepo,
		txManager:          txManager,
		locker:             locker,
		allocationSvc:      ledger.NewAllocationService(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AutoAllocateResponse summarizes one allocation run
type AutoAllocateResponse struct {
	RepresentativeID uuid.UUID       `json:"representative_id"`
	Allocated        int             `json:"allocated"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	InvoicesPaid     int             `json:"invoices_paid"`
	RunAt            time.Time       `json:"run_at"`
}

// AutoAllocate runs one FIFO allocation pass for the representative.
// At most one run per representative executes at a time; a concurrent
// request fails fast with ALLOCATION_IN_PROGRESS. Re-running with no new
// payments or invoices allocates nothing and succeeds.
func (s *AllocatorService) AutoAllocate(ctx context.Context, representativeID uuid.UUID) (*AutoAllocateResponse, error) {
	if _, err := s.representativeRepo.FindByID(ctx, representativeID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("REPRESENTATIVE_NOT_FOUND", "Representative not found")
		}
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, representativeID)
	if err != nil {
		return nil, err
	}
	defer release()

	payments, err := s.paymentRepo.FindUnallocatedByRepresentative(ctx, representativeID)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoiceRepo.FindOpenByRepresentative(ctx, representativeID)
	if err != nil {
		return nil, err
	}

	allocatedCount := 0
	totalAllocated := decimal.Zero
	invoicesPaid := 0
	touchedPayments := make([]*ledger.Payment, 0, len(payments))
	touchedInvoiceIDs := make(map[uuid.UUID]bool)

	// Each payment plans against the same invoice slice; allocations applied
	// for one payment reduce the outstanding amounts the next payment sees.
	for i := range payments {
		payment := &payments[i]

		result, err := s.allocationSvc.AllocatePayment(ctx, ledger.AllocatePaymentRequest{
			Payment:    payment,
			Invoices:   invoices,
			PolicyType: s.allocationSvc.DefaultPolicy(),
		})
		if err != nil {
			return nil, err
		}
		if len(result.Allocations) == 0 {
			// Remaining invoices are exhausted; later payments cannot fare better
			break
		}

		allocatedCount++
		totalAllocated = totalAllocated.Add(result.TotalAllocated)
		invoicesPaid += len(result.InvoicesFullyPaid)
		touchedPayments = append(touchedPayments, payment)
		for _, alloc := range result.Allocations {
			touchedInvoiceIDs[alloc.InvoiceID] = true
		}
	}

	if allocatedCount > 0 {
		err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
			for _, payment := range touchedPayments {
				if err := s.paymentRepo.SaveWithLock(txCtx, payment); err != nil {
					return err
				}
			}
			for i := range invoices {
				if !touchedInvoiceIDs[invoices[i].ID] {
					continue
				}
				if err := s.invoiceRepo.SaveWithLock(txCtx, &invoices[i]); err != nil {
					return err
				}
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
	}

	return &AutoAllocateResponse{
		RepresentativeID: representativeID,
		Allocated:        allocatedCount,
		TotalAmount:      totalAllocated,
		InvoicesPaid:     invoicesPaid,
		RunAt:            time.Now(),
	}, nil
}

// UnallocatedPaymentResponse represents a payment lacking full allocation
type UnallocatedPaymentResponse struct {
	ID                uuid.UUID       `json:"id"`
	PaymentNumber     string          `json:"payment_number"`
	RepresentativeID  uuid.UUID       `json:"representative_id"`
	Amount            decimal.Decimal `json:"amount"`
	AllocatedAmount   decimal.Decimal `json:"allocated_amount"`
	UnallocatedAmount decimal.Decimal `json:"unallocated_amount"`
	Status            string          `json:"status"`
	Method            string          `json:"method"`
	PaymentDate       time.Time       `json:"payment_date"`
}

// ListUnallocatedRequest filters the unallocated payment listing
type ListUnallocatedRequest struct {
	RepresentativeID *uuid.UUID `form:"representative_id"`
	Page             int        `form:"page"`
	PageSize         int        `form:"page_size"`
}

// ListUnallocatedPayments returns payments lacking full allocation, oldest
// payment date first.
func (s *AllocatorService) ListUnallocatedPayments(ctx context.Context, req ListUnallocatedRequest) ([]UnallocatedPaymentResponse, error) {
	filter := ledger.PaymentFilter{Filter: shared.DefaultFilter()}
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 && req.PageSize <= 200 {
		filter.PageSize = req.PageSize
	}
	filter.RepresentativeID = req.RepresentativeID

	payments, err := s.paymentRepo.FindUnallocated(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]UnallocatedPaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, toUnallocatedPaymentResponse(&payments[i]))
	}
	return responses, nil
}

// AllocationSummaryResponse aggregates allocation state for one representative
type AllocationSummaryResponse struct {
	RepresentativeID       uuid.UUID       `json:"representative_id"`
	TotalPayments          int64           `json:"total_payments"`
	AllocatedPayments      int64           `json:"allocated_payments"`
	UnallocatedPayments    int64           `json:"unallocated_payments"`
	TotalPaidAmount        decimal.Decimal `json:"total_paid_amount"`
	TotalUnallocatedAmount decimal.Decimal `json:"total_unallocated_amount"`
}

// GetAllocationSummary computes the allocation summary for a representative
func (s *AllocatorService) GetAllocationSummary(ctx context.Context, representativeID uuid.UUID) (*AllocationSummaryResponse, error) {
	if _, err := s.representativeRepo.FindByID(ctx, representativeID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("REPRESENTATIVE_NOT_FOUND", "Representative not found")
		}
		return nil, err
	}

	summary, err := s.paymentRepo.SummaryByRepresentative(ctx, representativeID)
	if err != nil {
		return nil, err
	}

	return &AllocationSummaryResponse{
		RepresentativeID:       representativeID,
		TotalPayments:          summary.TotalPayments,
		AllocatedPayments:      summary.AllocatedPayments,
		UnallocatedPayments:    summary.UnallocatedPayments,
		TotalPaidAmount:        summary.TotalPaidAmount,
		TotalUnallocatedAmount: summary.TotalUnallocatedAmount,
	}, nil
}

func toUnallocatedPaymentResponse(p *ledger.Payment) UnallocatedPaymentResponse {
	return UnallocatedPaymentResponse{
		ID:                p.ID,
		PaymentNumber:     p.PaymentNumber,
		RepresentativeID:  p.RepresentativeID,
		Amount:            p.Amount,
		AllocatedAmount:   p.AllocatedAmount,
		UnallocatedAmount: p.UnallocatedAmount,
		Status:            p.Status.String(),
		Method:            string(p.Method),
		PaymentDate:       p.PaymentDate,
	}
}
