package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/hesabdar/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the payment status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "UNPAID"  // No payment applied
	InvoiceStatusPartial InvoiceStatus = "PARTIAL" // 0 < paid < total
	InvoiceStatusPaid    InvoiceStatus = "PAID"    // Fully paid
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE" // Past due date and not fully paid
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPartial, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsOpen returns true if the invoice can still receive payment allocations
func (s InvoiceStatus) IsOpen() bool {
	return s != InvoiceStatusPaid
}

// PaymentRecord represents a payment applied to the invoice.
// This is a value object within the Invoice aggregate, stored as JSONB.
type PaymentRecord struct {
	ID        uuid.UUID       `json:"id"`
	PaymentID uuid.UUID       `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	AppliedAt time.Time       `json:"applied_at"`
	Remark    string          `json:"remark,omitempty"`
}

// PaymentRecords is a slice of PaymentRecord that implements GORM Scanner/Valuer for JSONB storage
type PaymentRecords []PaymentRecord

// Value implements driver.Valuer interface for GORM to store as JSONB
func (p PaymentRecords) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (p *PaymentRecords) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentRecords{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentRecords: unsupported type")
	}

	if len(bytes) == 0 {
		*p = PaymentRecords{}
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// NewPaymentRecord creates a new payment record
func NewPaymentRecord(paymentID uuid.UUID, amount valueobject.Money, remark string) *PaymentRecord {
	return &PaymentRecord{
		ID:        uuid.New(),
		PaymentID: paymentID,
		Amount:    amount.Amount(),
		AppliedAt: time.Now(),
		Remark:    remark,
	}
}

// Invoice represents an invoice issued to a representative.
// It tracks how much of the invoiced amount has been covered by payment allocations.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber     string          `json:"invoice_number"`
	RepresentativeID  uuid.UUID       `json:"representative_id"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	Status            InvoiceStatus   `json:"status"`
	IssueDate         time.Time       `json:"issue_date"`
	DueDate           *time.Time      `json:"due_date"`
	PaymentRecords    PaymentRecords  `json:"payment_records"`
	Remark            string          `json:"remark"`
	PaidAt            *time.Time      `json:"paid_at"`
}

// NewInvoice creates a new invoice
func NewInvoice(
	invoiceNumber string,
	representativeID uuid.UUID,
	totalAmount valueobject.Money,
	issueDate time.Time,
	dueDate *time.Time,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if representativeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REPRESENTATIVE", "Representative ID cannot be empty")
	}
	if totalAmount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidAmount
	}
	if issueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_ISSUE_DATE", "Issue date cannot be empty")
	}
	if dueDate != nil && dueDate.Before(issueDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before issue date")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		RepresentativeID:  representativeID,
		TotalAmount:       totalAmount.Amount(),
		PaidAmount:        decimal.Zero,
		OutstandingAmount: totalAmount.Amount(),
		Status:            InvoiceStatusUnpaid,
		IssueDate:         issueDate,
		DueDate:           dueDate,
		PaymentRecords:    PaymentRecords{},
	}
	inv.RefreshStatus(time.Now())

	inv.AddDomainEvent(NewInvoiceIssuedEvent(inv))

	return inv, nil
}

// ApplyPayment applies an allocated payment amount to the invoice.
// Returns error if the amount exceeds the outstanding amount or the invoice is already paid.
func (inv *Invoice) ApplyPayment(amount valueobject.Money, paymentID uuid.UUID, remark string) error {
	if !inv.Status.IsOpen() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply payment to invoice in %s status", inv.Status))
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidAmount
	}
	if amount.Amount().GreaterThan(inv.OutstandingAmount) {
		return shared.NewDomainError("EXCEEDS_OUTSTANDING", fmt.Sprintf("Payment amount %s exceeds outstanding amount %s", amount.Amount().String(), inv.OutstandingAmount.String()))
	}
	if paymentID == uuid.Nil {
		return shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}

	record := NewPaymentRecord(paymentID, amount, remark)
	inv.PaymentRecords = append(inv.PaymentRecords, *record)

	inv.PaidAmount = inv.PaidAmount.Add(amount.Amount())
	inv.OutstandingAmount = inv.TotalAmount.Sub(inv.PaidAmount)

	now := time.Now()
	if inv.OutstandingAmount.IsZero() {
		inv.PaidAt = &now
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	} else {
		inv.AddDomainEvent(NewInvoicePartiallyPaidEvent(inv, amount))
	}
	inv.RefreshStatus(now)

	inv.UpdatedAt = now
	inv.IncrementVersion()

	return nil
}

// RevertPayment removes a previously applied amount as part of a compensating reversal.
// The original payment record stays in place; the reversal is appended as a negative record.
func (inv *Invoice) RevertPayment(amount valueobject.Money, paymentID uuid.UUID, reason string) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidAmount
	}
	if amount.Amount().GreaterThan(inv.PaidAmount) {
		return shared.NewDomainError("EXCEEDS_PAID", fmt.Sprintf("Reversal amount %s exceeds paid amount %s", amount.Amount().String(), inv.PaidAmount.String()))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Reversal reason is required")
	}

	record := NewPaymentRecord(paymentID, valueobject.NewMoneyIRR(amount.Amount().Neg()), reason)
	inv.PaymentRecords = append(inv.PaymentRecords, *record)

	inv.PaidAmount = inv.PaidAmount.Sub(amount.Amount())
	inv.OutstandingAmount = inv.TotalAmount.Sub(inv.PaidAmount)
	inv.PaidAt = nil

	now := time.Now()
	inv.RefreshStatus(now)
	inv.UpdatedAt = now
	inv.IncrementVersion()

	return nil
}

// RefreshStatus re-derives the status from paid amount and due date.
// Status is never set directly anywhere else.
func (inv *Invoice) RefreshStatus(now time.Time) {
	switch {
	case inv.OutstandingAmount.IsZero():
		inv.Status = InvoiceStatusPaid
	case inv.DueDate != nil && now.After(*inv.DueDate):
		inv.Status = InvoiceStatusOverdue
	case inv.PaidAmount.GreaterThan(decimal.Zero):
		inv.Status = InvoiceStatusPartial
	default:
		inv.Status = InvoiceStatusUnpaid
	}
}

// SetRemark sets the remark
func (inv *Invoice) SetRemark(remark string) {
	inv.Remark = remark
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

// GetTotalAmountMoney returns total amount as Money
func (inv *Invoice) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyIRR(inv.TotalAmount)
}

// GetPaidAmountMoney returns paid amount as Money
func (inv *Invoice) GetPaidAmountMoney() valueobject.Money {
	return valueobject.NewMoneyIRR(inv.PaidAmount)
}

// GetOutstandingAmountMoney returns outstanding amount as Money
func (inv *Invoice) GetOutstandingAmountMoney() valueobject.Money {
	return valueobject.NewMoneyIRR(inv.OutstandingAmount)
}

// IsOpen returns true if the invoice still has outstanding amount
func (inv *Invoice) IsOpen() bool {
	return inv.OutstandingAmount.GreaterThan(decimal.Zero)
}

// IsPaid returns true if the invoice is fully paid
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// IsOverdue returns true if the invoice is past due date and not fully paid
func (inv *Invoice) IsOverdue() bool {
	if !inv.IsOpen() {
		return false
	}
	if inv.DueDate == nil {
		return false
	}
	return time.Now().After(*inv.DueDate)
}

// DaysOverdue returns the number of days past due (0 if not overdue)
func (inv *Invoice) DaysOverdue() int {
	if !inv.IsOverdue() {
		return 0
	}
	return int(time.Since(*inv.DueDate).Hours() / 24)
}

// PaymentCount returns the number of payment records applied
func (inv *Invoice) PaymentCount() int {
	return len(inv.PaymentRecords)
}
