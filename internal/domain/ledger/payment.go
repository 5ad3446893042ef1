package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/hesabdar/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the allocation status of a payment
type PaymentStatus string

const (
	PaymentStatusUnallocated PaymentStatus = "UNALLOCATED" // No amount assigned to invoices yet
	PaymentStatusPartial     PaymentStatus = "PARTIAL"     // Some amount assigned, some remaining
	PaymentStatusAllocated   PaymentStatus = "ALLOCATED"   // Fully assigned to invoices
	PaymentStatusReversed    PaymentStatus = "REVERSED"    // All allocations reversed
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnallocated, PaymentStatusPartial, PaymentStatusAllocated, PaymentStatusReversed:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// CanAllocate returns true if further allocations may be recorded in this status
func (s PaymentStatus) CanAllocate() bool {
	return s == PaymentStatusUnallocated || s == PaymentStatusPartial
}

// PaymentMethod represents how the payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCard, PaymentMethodCheque:
		return true
	}
	return false
}

// AllocationKind distinguishes original allocations from compensating reversals
type AllocationKind string

const (
	AllocationKindAllocation AllocationKind = "ALLOCATION"
	AllocationKindReversal   AllocationKind = "REVERSAL" // Negative compensating entry
)

// Allocation records an amount of this payment assigned to one invoice.
// Allocations are immutable once created; corrections are appended as
// compensating REVERSAL entries, never edited in place.
type Allocation struct {
	ID            uuid.UUID       `json:"id"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"` // Negative for reversals
	Kind          AllocationKind  `json:"kind"`
	AllocatedAt   time.Time       `json:"allocated_at"`
	Remark        string          `json:"remark,omitempty"`
}

// IsReversal returns true for compensating entries
func (a *Allocation) IsReversal() bool {
	return a.Kind == AllocationKindReversal
}

// Payment represents money received from a representative.
// The amount is assigned to invoices through child Allocation records; the
// payment itself never mutates an invoice directly.
type Payment struct {
	shared.BaseAggregateRoot
	PaymentNumber     string          `json:"payment_number"`
	RepresentativeID  uuid.UUID       `json:"representative_id"`
	Amount            decimal.Decimal `json:"amount"`
	AllocatedAmount   decimal.Decimal `json:"allocated_amount"`
	UnallocatedAmount decimal.Decimal `json:"unallocated_amount"`
	Status            PaymentStatus   `json:"status"`
	Method            PaymentMethod   `json:"method"`
	PaymentDate       time.Time       `json:"payment_date"`
	ReferenceNumber   string          `json:"reference_number"` // Bank slip / cheque number
	Allocations       []Allocation    `json:"allocations"`
	Remark            string          `json:"remark"`
}

// NewPayment creates a new payment in unallocated state
func NewPayment(
	paymentNumber string,
	representativeID uuid.UUID,
	amount valueobject.Money,
	method PaymentMethod,
	paymentDate time.Time,
) (*Payment, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot be empty")
	}
	if len(paymentNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot exceed 50 characters")
	}
	if representativeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REPRESENTATIVE", "Representative ID cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidAmount
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if paymentDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_DATE", "Payment date cannot be empty")
	}

	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PaymentNumber:     paymentNumber,
		RepresentativeID:  representativeID,
		Amount:            amount.Amount(),
		AllocatedAmount:   decimal.Zero,
		UnallocatedAmount: amount.Amount(),
		Status:            PaymentStatusUnallocated,
		Method:            method,
		PaymentDate:       paymentDate,
		Allocations:       make([]Allocation, 0),
	}

	p.AddDomainEvent(NewPaymentReceivedEvent(p))

	return p, nil
}

// AllocateToInvoice records an allocation of part of this payment to an invoice.
// Returns error if the amount exceeds the unallocated remainder or an active
// allocation to the same invoice already exists.
func (p *Payment) AllocateToInvoice(invoiceID uuid.UUID, invoiceNumber string, amount valueobject.Money, remark string) error {
	if !p.Status.CanAllocate() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot allocate payment in %s status", p.Status))
	}
	if invoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidAmount
	}
	if amount.Amount().GreaterThan(p.UnallocatedAmount) {
		return shared.NewDomainError("EXCEEDS_UNALLOCATED", fmt.Sprintf("Allocation amount %s exceeds unallocated amount %s", amount.Amount().String(), p.UnallocatedAmount.String()))
	}
	if p.hasActiveAllocation(invoiceID) {
		return shared.NewDomainError("ALREADY_ALLOCATED", fmt.Sprintf("Payment already has an active allocation to invoice %s", invoiceNumber))
	}

	alloc := Allocation{
		ID:            uuid.New(),
		PaymentID:     p.ID,
		InvoiceID:     invoiceID,
		InvoiceNumber: invoiceNumber,
		Amount:        amount.Amount(),
		Kind:          AllocationKindAllocation,
		AllocatedAt:   time.Now(),
		Remark:        remark,
	}
	p.Allocations = append(p.Allocations, alloc)

	p.AllocatedAmount = p.AllocatedAmount.Add(amount.Amount())
	p.UnallocatedAmount = p.Amount.Sub(p.AllocatedAmount)
	p.refreshStatus()

	p.AddDomainEvent(NewPaymentAllocatedEvent(p, &alloc))

	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// ReverseAllocation appends a compensating entry undoing the active allocation
// to the given invoice. The original allocation record is left untouched.
func (p *Payment) ReverseAllocation(invoiceID uuid.UUID, reason string) (*Allocation, error) {
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Reversal reason is required")
	}

	original := p.activeAllocation(invoiceID)
	if original == nil {
		return nil, shared.NewDomainError("ALLOCATION_NOT_FOUND", "No active allocation to this invoice")
	}

	reversal := Allocation{
		ID:            uuid.New(),
		PaymentID:     p.ID,
		InvoiceID:     invoiceID,
		InvoiceNumber: original.InvoiceNumber,
		Amount:        original.Amount.Neg(),
		Kind:          AllocationKindReversal,
		AllocatedAt:   time.Now(),
		Remark:        reason,
	}
	p.Allocations = append(p.Allocations, reversal)

	p.AllocatedAmount = p.AllocatedAmount.Sub(original.Amount)
	p.UnallocatedAmount = p.Amount.Sub(p.AllocatedAmount)
	p.refreshStatus()

	p.AddDomainEvent(NewPaymentAllocationReversedEvent(p, &reversal))

	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return &reversal, nil
}

// activeAllocation returns the allocation to invoiceID that has not been
// cancelled out by a reversal, or nil.
func (p *Payment) activeAllocation(invoiceID uuid.UUID) *Allocation {
	net := decimal.Zero
	var last *Allocation
	for i := range p.Allocations {
		if p.Allocations[i].InvoiceID != invoiceID {
			continue
		}
		net = net.Add(p.Allocations[i].Amount)
		if !p.Allocations[i].IsReversal() {
			last = &p.Allocations[i]
		}
	}
	if net.GreaterThan(decimal.Zero) {
		return last
	}
	return nil
}

func (p *Payment) hasActiveAllocation(invoiceID uuid.UUID) bool {
	return p.activeAllocation(invoiceID) != nil
}

// refreshStatus re-derives the status from the allocated amount. A fully
// reversed payment goes back to UNALLOCATED so it can be allocated again;
// REVERSED is reserved for payments voided outright.
func (p *Payment) refreshStatus() {
	if p.Status == PaymentStatusReversed {
		return
	}
	switch {
	case p.UnallocatedAmount.IsZero():
		p.Status = PaymentStatusAllocated
	case p.AllocatedAmount.GreaterThan(decimal.Zero):
		p.Status = PaymentStatusPartial
	default:
		p.Status = PaymentStatusUnallocated
	}
}

// Void marks the payment as reversed outright (e.g. bounced cheque).
// All active allocations must be reversed first.
func (p *Payment) Void(reason string) error {
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Void reason is required")
	}
	if p.AllocatedAmount.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("HAS_ALLOCATIONS", "Reverse all allocations before voiding the payment")
	}
	p.Status = PaymentStatusReversed
	p.Remark = reason
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetReferenceNumber sets the bank slip or cheque reference
func (p *Payment) SetReferenceNumber(ref string) {
	p.ReferenceNumber = ref
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetRemark sets the remark
func (p *Payment) SetRemark(remark string) {
	p.Remark = remark
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// GetAmountMoney returns the payment amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyIRR(p.Amount)
}

// GetAllocatedAmountMoney returns the allocated amount as Money
func (p *Payment) GetAllocatedAmountMoney() valueobject.Money {
	return valueobject.NewMoneyIRR(p.AllocatedAmount)
}

// GetUnallocatedAmountMoney returns the unallocated amount as Money
func (p *Payment) GetUnallocatedAmountMoney() valueobject.Money {
	return valueobject.NewMoneyIRR(p.UnallocatedAmount)
}

// IsAllocated returns true if the payment amount is fully assigned to invoices
func (p *Payment) IsAllocated() bool {
	return p.Status == PaymentStatusAllocated
}

// HasUnallocatedAmount returns true if any amount remains unassigned
func (p *Payment) HasUnallocatedAmount() bool {
	return p.UnallocatedAmount.GreaterThan(decimal.Zero)
}

// AllocationCount returns the number of allocation entries (including reversals)
func (p *Payment) AllocationCount() int {
	return len(p.Allocations)
}
