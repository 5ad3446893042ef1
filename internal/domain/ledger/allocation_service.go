package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/hesabdar/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AllocationService is a domain service that applies an allocation policy to
// one payment and the representative's open invoices, keeping both sides of
// the ledger consistent:
// 1. No allocation exceeds the payment's unallocated amount
// 2. No allocation exceeds an invoice's outstanding amount
// 3. Payment allocations and invoice payment records are updated together
//
// The service is pure in-memory coordination; persisting the mutated
// aggregates (atomically) is the caller's responsibility.
type AllocationService struct {
	policyFactory     *AllocationPolicyFactory
	defaultPolicyType AllocationPolicyType
}

// AllocationServiceOption is a functional option for configuring AllocationService
type AllocationServiceOption func(*AllocationService)

// WithDefaultPolicy sets the default allocation policy type
func WithDefaultPolicy(policyType AllocationPolicyType) AllocationServiceOption {
	return func(s *AllocationService) {
		if policyType.IsValid() {
			s.defaultPolicyType = policyType
		}
	}
}

// NewAllocationService creates a new allocation service with optional configuration
func NewAllocationService(opts ...AllocationServiceOption) *AllocationService {
	s := &AllocationService{
		policyFactory:     NewAllocationPolicyFactory(),
		defaultPolicyType: AllocationPolicyTypeFIFO,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultPolicy returns the default policy type
func (s *AllocationService) DefaultPolicy() AllocationPolicyType {
	return s.defaultPolicyType
}

// AllocatePaymentRequest represents a request to allocate one payment
type AllocatePaymentRequest struct {
	Payment    *Payment
	Invoices   []Invoice
	PolicyType AllocationPolicyType
	// ManualRequests is only used when PolicyType is MANUAL
	ManualRequests []ManualAllocationRequest
}

// AllocatePaymentResult represents the outcome of allocating one payment
type AllocatePaymentResult struct {
	Payment           *Payment        // Updated payment with new allocations
	UpdatedInvoices   []Invoice       // Invoices that received amounts
	Allocations       []Allocation    // Allocation entries that were made
	TotalAllocated    decimal.Decimal // Total amount allocated in this run
	RemainingAmount   decimal.Decimal // Amount still unallocated on the payment
	FullyAllocated    bool            // True if the payment is now fully allocated
	InvoicesFullyPaid []uuid.UUID     // Invoices that became fully paid
}

// AllocatePayment applies the policy plan to the payment and invoices.
// Both aggregates are mutated in memory; no storage is touched.
func (s *AllocationService) AllocatePayment(ctx context.Context, req AllocatePaymentRequest) (*AllocatePaymentResult, error) {
	if req.Payment == nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment cannot be nil")
	}
	if !req.Payment.Status.CanAllocate() {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot allocate payment in %s status", req.Payment.Status))
	}
	if req.Payment.UnallocatedAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidAmount
	}
	if !req.PolicyType.IsValid() {
		return nil, shared.NewDomainError("INVALID_POLICY", "Invalid allocation policy type")
	}

	policy, err := s.policyFactory.GetPolicy(req.PolicyType, req.ManualRequests)
	if err != nil {
		return nil, err
	}

	// Only the same representative's open invoices participate
	targets := make([]AllocationTarget, 0, len(req.Invoices))
	invoiceMap := make(map[uuid.UUID]*Invoice)
	for i := range req.Invoices {
		inv := &req.Invoices[i]
		if inv.RepresentativeID == req.Payment.RepresentativeID &&
			inv.Status.IsOpen() &&
			inv.OutstandingAmount.GreaterThan(decimal.Zero) {
			targets = append(targets, AllocationTarget{
				InvoiceID:       inv.ID,
				InvoiceNumber:   inv.InvoiceNumber,
				RemainingAmount: inv.OutstandingAmount,
				IssueDate:       inv.IssueDate,
			})
			invoiceMap[inv.ID] = inv
		}
	}

	if len(targets) == 0 {
		return &AllocatePaymentResult{
			Payment:           req.Payment,
			UpdatedInvoices:   []Invoice{},
			Allocations:       []Allocation{},
			TotalAllocated:    decimal.Zero,
			RemainingAmount:   req.Payment.UnallocatedAmount,
			FullyAllocated:    false,
			InvoicesFullyPaid: []uuid.UUID{},
		}, nil
	}

	plan, err := policy.Allocate(req.Payment.GetUnallocatedAmountMoney(), targets)
	if err != nil {
		return nil, err
	}

	updatedInvoices := make([]Invoice, 0, len(plan.Entries))
	allocations := make([]Allocation, 0, len(plan.Entries))

	for _, entry := range plan.Entries {
		invoice, exists := invoiceMap[entry.InvoiceID]
		if !exists {
			continue
		}

		amount := valueobject.NewMoneyIRR(entry.Amount)

		if err := req.Payment.AllocateToInvoice(invoice.ID, invoice.InvoiceNumber, amount,
			fmt.Sprintf("Auto-allocated via %s policy", req.PolicyType)); err != nil {
			return nil, fmt.Errorf("failed to allocate to invoice %s: %w", invoice.InvoiceNumber, err)
		}
		allocations = append(allocations, req.Payment.Allocations[len(req.Payment.Allocations)-1])

		if err := invoice.ApplyPayment(amount, req.Payment.ID,
			fmt.Sprintf("Payment %s", req.Payment.PaymentNumber)); err != nil {
			return nil, fmt.Errorf("failed to apply payment to invoice %s: %w", invoice.InvoiceNumber, err)
		}
		updatedInvoices = append(updatedInvoices, *invoice)
	}

	return &AllocatePaymentResult{
		Payment:           req.Payment,
		UpdatedInvoices:   updatedInvoices,
		Allocations:       allocations,
		TotalAllocated:    plan.TotalPlanned,
		RemainingAmount:   plan.RemainingAmount,
		FullyAllocated:    plan.FullyAllocated,
		InvoicesFullyPaid: plan.InvoicesFullyPaid,
	}, nil
}

// PreviewAllocation calculates the plan without mutating payment or invoices
func (s *AllocationService) PreviewAllocation(ctx context.Context, req AllocatePaymentRequest) (*AllocationPlan, error) {
	if req.Payment == nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment cannot be nil")
	}
	if req.Payment.UnallocatedAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidAmount
	}

	policy, err := s.policyFactory.GetPolicy(req.PolicyType, req.ManualRequests)
	if err != nil {
		return nil, err
	}

	targets := make([]AllocationTarget, 0, len(req.Invoices))
	for i := range req.Invoices {
		inv := &req.Invoices[i]
		if inv.RepresentativeID == req.Payment.RepresentativeID &&
			inv.Status.IsOpen() &&
			inv.OutstandingAmount.GreaterThan(decimal.Zero) {
			targets = append(targets, AllocationTarget{
				InvoiceID:       inv.ID,
				InvoiceNumber:   inv.InvoiceNumber,
				RemainingAmount: inv.OutstandingAmount,
				IssueDate:       inv.IssueDate,
			})
		}
	}

	return policy.Allocate(req.Payment.GetUnallocatedAmountMoney(), targets)
}
