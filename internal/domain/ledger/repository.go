package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	RepresentativeID *uuid.UUID       // Filter by representative
	Status           *InvoiceStatus   // Filter by status
	IssuedFrom       *time.Time       // Filter by issue date range start
	IssuedTo         *time.Time       // Filter by issue date range end
	Overdue          *bool            // Filter only overdue invoices
	MinOutstanding   *decimal.Decimal // Filter by minimum outstanding amount
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByInvoiceNumber finds an invoice by its number
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)

	// FindAll finds invoices with filtering
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)

	// FindOpenByRepresentative finds all open (unpaid/partial/overdue) invoices
	// for a representative, ordered by issue date then ID ascending
	FindOpenByRepresentative(ctx context.Context, representativeID uuid.UUID) ([]Invoice, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter InvoiceFilter) (int64, error)

	// SumTotalByRepresentative sums invoice total amounts for a representative
	SumTotalByRepresentative(ctx context.Context, representativeID uuid.UUID) (decimal.Decimal, error)

	// SumOutstandingByRepresentative sums outstanding amounts for a representative
	SumOutstandingByRepresentative(ctx context.Context, representativeID uuid.UUID) (decimal.Decimal, error)

	// GenerateInvoiceNumber generates a unique invoice number
	GenerateInvoiceNumber(ctx context.Context) (string, error)
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	RepresentativeID *uuid.UUID     // Filter by representative
	Status           *PaymentStatus // Filter by status
	PaidFrom         *time.Time     // Filter by payment date range start
	PaidTo           *time.Time     // Filter by payment date range end
}

// PaymentSummary aggregates payment counts and amounts for one representative
type PaymentSummary struct {
	TotalPayments          int64
	AllocatedPayments      int64
	UnallocatedPayments    int64
	TotalPaidAmount        decimal.Decimal
	TotalUnallocatedAmount decimal.Decimal
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByPaymentNumber finds a payment by its number
	FindByPaymentNumber(ctx context.Context, paymentNumber string) (*Payment, error)

	// FindAll finds payments with filtering
	FindAll(ctx context.Context, filter PaymentFilter) ([]Payment, error)

	// FindUnallocatedByRepresentative finds payments with remaining unallocated
	// amount for a representative, ordered by payment date then ID ascending
	FindUnallocatedByRepresentative(ctx context.Context, representativeID uuid.UUID) ([]Payment, error)

	// FindUnallocated finds all payments lacking full allocation, oldest first
	FindUnallocated(ctx context.Context, filter PaymentFilter) ([]Payment, error)

	// Save creates or updates a payment together with its allocation entries
	Save(ctx context.Context, payment *Payment) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, payment *Payment) error

	// Count counts payments matching the filter
	Count(ctx context.Context, filter PaymentFilter) (int64, error)

	// SumAllocatedByRepresentative sums net allocated amounts (allocations minus
	// reversals) across a representative's payments
	SumAllocatedByRepresentative(ctx context.Context, representativeID uuid.UUID) (decimal.Decimal, error)

	// SummaryByRepresentative computes the allocation summary for a representative
	SummaryByRepresentative(ctx context.Context, representativeID uuid.UUID) (*PaymentSummary, error)

	// GeneratePaymentNumber generates a unique payment number
	GeneratePaymentNumber(ctx context.Context) (string, error)
}

// RepresentativeRepository defines the interface for representative persistence
type RepresentativeRepository interface {
	// FindByID finds a representative by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Representative, error)

	// FindByCode finds a representative by its unique code
	FindByCode(ctx context.Context, code string) (*Representative, error)

	// FindAll finds representatives with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Representative, error)

	// Save creates or updates a representative
	Save(ctx context.Context, representative *Representative) error

	// SaveWithLock saves with optimistic locking; the version check doubles as
	// the compare-and-set guard for reconciliation aggregate updates
	SaveWithLock(ctx context.Context, representative *Representative) error

	// Count counts representatives matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// DebtAuditRepository defines the interface for debt audit persistence
type DebtAuditRepository interface {
	// Save appends an audit record
	Save(ctx context.Context, audit *DebtAudit) error

	// FindByRepresentative returns audit records newest first
	FindByRepresentative(ctx context.Context, representativeID uuid.UUID, filter shared.Filter) ([]DebtAudit, error)
}

// TransactionManager runs a function inside one storage transaction.
// Repository calls made with the ctx passed to fn join that transaction;
// any error from fn rolls the whole transaction back.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// RepresentativeLocker provides per-representative mutual exclusion for
// allocation and reconciliation runs. Acquire waits up to its configured
// timeout and returns shared.ErrAllocationInProgress on contention.
type RepresentativeLocker interface {
	// Acquire obtains the lock for a representative, returning a release
	// function. The release function is safe to call exactly once.
	Acquire(ctx context.Context, representativeID uuid.UUID) (release func(), err error)
}
