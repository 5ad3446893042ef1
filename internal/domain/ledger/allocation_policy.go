package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/hesabdar/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AllocationPolicyType defines how a payment is split across open invoices
type AllocationPolicyType string

const (
	AllocationPolicyTypeFIFO   AllocationPolicyType = "FIFO"   // Oldest invoice first by issue date
	AllocationPolicyTypeManual AllocationPolicyType = "MANUAL" // Caller-specified invoice targets
)

// IsValid checks if the policy type is valid
func (t AllocationPolicyType) IsValid() bool {
	switch t {
	case AllocationPolicyTypeFIFO, AllocationPolicyTypeManual:
		return true
	}
	return false
}

// String returns the string representation
func (t AllocationPolicyType) String() string {
	return string(t)
}

// AllocationTarget is a snapshot of one open invoice for planning purposes
type AllocationTarget struct {
	InvoiceID       uuid.UUID       // ID of the invoice
	InvoiceNumber   string          // Number for display purposes
	RemainingAmount decimal.Decimal // amount - paidAmount
	IssueDate       time.Time       // FIFO ordering key
}

// PlannedAllocation is one entry of an allocation plan
type PlannedAllocation struct {
	InvoiceID     uuid.UUID
	InvoiceNumber string
	Amount        decimal.Decimal
}

// AllocationPlan is the complete output of a policy run.
// The plan is advisory: nothing is persisted until the allocator applies it.
type AllocationPlan struct {
	Entries               []PlannedAllocation // Ordered allocations to make
	TotalPlanned          decimal.Decimal     // Total amount covered by entries
	RemainingAmount       decimal.Decimal     // Amount left unallocated
	FullyAllocated        bool                // True if nothing remained
	InvoicesFullyPaid     []uuid.UUID         // Invoices the plan pays off completely
	InvoicesPartiallyPaid []uuid.UUID         // Invoices the plan covers partially
}

// AllocationPolicy decides how to split an unallocated amount across invoices.
// Implementations are pure: identical inputs always produce identical plans,
// and no implementation may touch storage.
type AllocationPolicy interface {
	PolicyType() AllocationPolicyType
	Allocate(amount valueobject.Money, targets []AllocationTarget) (*AllocationPlan, error)
}

// FIFOAllocationPolicy pays the oldest debt first: invoices sorted by issue
// date ascending, ties broken by invoice ID ascending so repeated runs over
// the same snapshot produce the same plan.
type FIFOAllocationPolicy struct{}

// NewFIFOAllocationPolicy creates a new FIFO allocation policy
func NewFIFOAllocationPolicy() *FIFOAllocationPolicy {
	return &FIFOAllocationPolicy{}
}

// PolicyType returns the allocation policy type
func (p *FIFOAllocationPolicy) PolicyType() AllocationPolicyType {
	return AllocationPolicyTypeFIFO
}

// Allocate splits the amount across targets in FIFO order
func (p *FIFOAllocationPolicy) Allocate(amount valueobject.Money, targets []AllocationTarget) (*AllocationPlan, error) {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidAmount
	}
	if len(targets) == 0 {
		return emptyPlan(amount.Amount()), nil
	}

	sorted := make([]AllocationTarget, len(targets))
	copy(sorted, targets)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].IssueDate.Equal(sorted[j].IssueDate) {
			return sorted[i].IssueDate.Before(sorted[j].IssueDate)
		}
		return sorted[i].InvoiceID.String() < sorted[j].InvoiceID.String()
	})

	entries := make([]PlannedAllocation, 0)
	fullyPaid := make([]uuid.UUID, 0)
	partiallyPaid := make([]uuid.UUID, 0)
	remaining := amount.Amount()
	totalPlanned := decimal.Zero

	for _, target := range sorted {
		if remaining.IsZero() {
			break
		}
		if target.RemainingAmount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		allocAmount := decimal.Min(remaining, target.RemainingAmount)

		entries = append(entries, PlannedAllocation{
			InvoiceID:     target.InvoiceID,
			InvoiceNumber: target.InvoiceNumber,
			Amount:        allocAmount,
		})

		totalPlanned = totalPlanned.Add(allocAmount)
		remaining = remaining.Sub(allocAmount)

		if allocAmount.GreaterThanOrEqual(target.RemainingAmount) {
			fullyPaid = append(fullyPaid, target.InvoiceID)
		} else {
			partiallyPaid = append(partiallyPaid, target.InvoiceID)
		}
	}

	return &AllocationPlan{
		Entries:               entries,
		TotalPlanned:          totalPlanned,
		RemainingAmount:       remaining,
		FullyAllocated:        remaining.IsZero(),
		InvoicesFullyPaid:     fullyPaid,
		InvoicesPartiallyPaid: partiallyPaid,
	}, nil
}

// ManualAllocationRequest targets a specific invoice with an optional amount.
// A zero amount means "as much as possible".
type ManualAllocationRequest struct {
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
}

// ManualAllocationPolicy allocates to caller-specified invoices in request
// order, subject to the same conservation rules as FIFO.
type ManualAllocationPolicy struct {
	requests []ManualAllocationRequest
}

// NewManualAllocationPolicy creates a manual policy for the given requests
func NewManualAllocationPolicy(requests []ManualAllocationRequest) *ManualAllocationPolicy {
	return &ManualAllocationPolicy{requests: requests}
}

// PolicyType returns the allocation policy type
func (p *ManualAllocationPolicy) PolicyType() AllocationPolicyType {
	return AllocationPolicyTypeManual
}

// Requests returns the configured allocation requests
func (p *ManualAllocationPolicy) Requests() []ManualAllocationRequest {
	return p.requests
}

// Allocate splits the amount across the requested targets in request order
func (p *ManualAllocationPolicy) Allocate(amount valueobject.Money, targets []AllocationTarget) (*AllocationPlan, error) {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidAmount
	}
	if len(targets) == 0 {
		return emptyPlan(amount.Amount()), nil
	}

	targetMap := make(map[uuid.UUID]*AllocationTarget)
	for i := range targets {
		targetMap[targets[i].InvoiceID] = &targets[i]
	}

	entries := make([]PlannedAllocation, 0)
	fullyPaid := make([]uuid.UUID, 0)
	partiallyPaid := make([]uuid.UUID, 0)
	remaining := amount.Amount()
	totalPlanned := decimal.Zero

	for _, req := range p.requests {
		if remaining.IsZero() {
			break
		}

		target, exists := targetMap[req.InvoiceID]
		if !exists {
			continue
		}
		if target.RemainingAmount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		var allocAmount decimal.Decimal
		if req.Amount.IsZero() {
			allocAmount = decimal.Min(remaining, target.RemainingAmount)
		} else {
			allocAmount = decimal.Min(req.Amount, remaining)
			allocAmount = decimal.Min(allocAmount, target.RemainingAmount)
		}

		if allocAmount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		entries = append(entries, PlannedAllocation{
			InvoiceID:     target.InvoiceID,
			InvoiceNumber: target.InvoiceNumber,
			Amount:        allocAmount,
		})

		totalPlanned = totalPlanned.Add(allocAmount)
		remaining = remaining.Sub(allocAmount)

		if allocAmount.GreaterThanOrEqual(target.RemainingAmount) {
			fullyPaid = append(fullyPaid, target.InvoiceID)
		} else {
			partiallyPaid = append(partiallyPaid, target.InvoiceID)
		}

		target.RemainingAmount = target.RemainingAmount.Sub(allocAmount)
	}

	return &AllocationPlan{
		Entries:               entries,
		TotalPlanned:          totalPlanned,
		RemainingAmount:       remaining,
		FullyAllocated:        remaining.IsZero(),
		InvoicesFullyPaid:     fullyPaid,
		InvoicesPartiallyPaid: partiallyPaid,
	}, nil
}

func emptyPlan(remaining decimal.Decimal) *AllocationPlan {
	return &AllocationPlan{
		Entries:               make([]PlannedAllocation, 0),
		TotalPlanned:          decimal.Zero,
		RemainingAmount:       remaining,
		FullyAllocated:        false,
		InvoicesFullyPaid:     make([]uuid.UUID, 0),
		InvoicesPartiallyPaid: make([]uuid.UUID, 0),
	}
}

// AllocationPolicyFactory creates allocation policies
type AllocationPolicyFactory struct{}

// NewAllocationPolicyFactory creates a new factory
func NewAllocationPolicyFactory() *AllocationPolicyFactory {
	return &AllocationPolicyFactory{}
}

// GetPolicy returns a policy by type
func (f *AllocationPolicyFactory) GetPolicy(policyType AllocationPolicyType, requests []ManualAllocationRequest) (AllocationPolicy, error) {
	switch policyType {
	case AllocationPolicyTypeFIFO:
		return NewFIFOAllocationPolicy(), nil
	case AllocationPolicyTypeManual:
		if len(requests) == 0 {
			return nil, shared.NewDomainError("INVALID_ALLOCATIONS", "Manual policy requires allocation requests")
		}
		return NewManualAllocationPolicy(requests), nil
	default:
		return nil, shared.NewDomainError("INVALID_POLICY", "Unknown allocation policy type")
	}
}
