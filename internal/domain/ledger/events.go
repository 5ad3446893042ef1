package ledger

import (
	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/hesabdar/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Event types for the ledger domain
const (
	EventTypeInvoiceIssued             = "ledger.invoice.issued"
	EventTypeInvoicePaid               = "ledger.invoice.paid"
	EventTypeInvoicePartiallyPaid      = "ledger.invoice.partially_paid"
	EventTypePaymentReceived           = "ledger.payment.received"
	EventTypePaymentAllocated          = "ledger.payment.allocated"
	EventTypePaymentAllocationReversed = "ledger.payment.allocation_reversed"
	EventTypeDebtReconciled            = "ledger.representative.debt_reconciled"
)

// InvoiceIssuedEvent is raised when a new invoice enters the ledger
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewInvoiceIssuedEvent creates a new invoice issued event
func NewInvoiceIssuedEvent(inv *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, "Invoice", inv.ID),
		InvoiceNumber:   inv.InvoiceNumber,
		TotalAmount:     inv.TotalAmount,
	}
}

// InvoicePaidEvent is raised when an invoice becomes fully paid
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
}

// NewInvoicePaidEvent creates a new invoice paid event
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, "Invoice", inv.ID),
		InvoiceNumber:   inv.InvoiceNumber,
		PaidAmount:      inv.PaidAmount,
	}
}

// InvoicePartiallyPaidEvent is raised when a payment covers part of an invoice
type InvoicePartiallyPaidEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber     string          `json:"invoice_number"`
	AppliedAmount     decimal.Decimal `json:"applied_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
}

// NewInvoicePartiallyPaidEvent creates a new partial payment event
func NewInvoicePartiallyPaidEvent(inv *Invoice, applied valueobject.Money) *InvoicePartiallyPaidEvent {
	return &InvoicePartiallyPaidEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeInvoicePartiallyPaid, "Invoice", inv.ID),
		InvoiceNumber:     inv.InvoiceNumber,
		AppliedAmount:     applied.Amount(),
		OutstandingAmount: inv.OutstandingAmount,
	}
}

// PaymentReceivedEvent is raised when a payment is recorded
type PaymentReceivedEvent struct {
	shared.BaseDomainEvent
	PaymentNumber string          `json:"payment_number"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewPaymentReceivedEvent creates a new payment received event
func NewPaymentReceivedEvent(p *Payment) *PaymentReceivedEvent {
	return &PaymentReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentReceived, "Payment", p.ID),
		PaymentNumber:   p.PaymentNumber,
		Amount:          p.Amount,
	}
}

// PaymentAllocatedEvent is raised for every allocation entry recorded
type PaymentAllocatedEvent struct {
	shared.BaseDomainEvent
	PaymentNumber string          `json:"payment_number"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewPaymentAllocatedEvent creates a new payment allocated event
func NewPaymentAllocatedEvent(p *Payment, alloc *Allocation) *PaymentAllocatedEvent {
	return &PaymentAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentAllocated, "Payment", p.ID),
		PaymentNumber:   p.PaymentNumber,
		InvoiceNumber:   alloc.InvoiceNumber,
		Amount:          alloc.Amount,
	}
}

// PaymentAllocationReversedEvent is raised when a compensating entry is recorded
type PaymentAllocationReversedEvent struct {
	shared.BaseDomainEvent
	PaymentNumber string          `json:"payment_number"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
}

// NewPaymentAllocationReversedEvent creates a new allocation reversed event
func NewPaymentAllocationReversedEvent(p *Payment, reversal *Allocation) *PaymentAllocationReversedEvent {
	return &PaymentAllocationReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentAllocationReversed, "Payment", p.ID),
		PaymentNumber:   p.PaymentNumber,
		InvoiceNumber:   reversal.InvoiceNumber,
		Amount:          reversal.Amount,
		Reason:          reversal.Remark,
	}
}

// DebtReconciledEvent is raised when reconciliation corrects a stored aggregate
type DebtReconciledEvent struct {
	shared.BaseDomainEvent
	Code    string          `json:"code"`
	NewDebt decimal.Decimal `json:"new_debt"`
	Delta   decimal.Decimal `json:"delta"`
}

// NewDebtReconciledEvent creates a new debt reconciled event
func NewDebtReconciledEvent(r *Representative, delta decimal.Decimal) *DebtReconciledEvent {
	return &DebtReconciledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDebtReconciled, "Representative", r.ID),
		Code:            r.Code,
		NewDebt:         r.TotalDebt,
		Delta:           delta,
	}
}
