package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hesabdar/backend/internal/domain/ledger"
	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RepresentativeModel is the persistence model for the Representative aggregate root.
type RepresentativeModel struct {
	AggregateModel
	Code        string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	Name        string          `gorm:"type:varchar(100);not null"`
	StoreName   string          `gorm:"type:varchar(100)"`
	PhoneNumber string          `gorm:"type:varchar(20)"`
	TotalDebt   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalSales  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IsActive    bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (RepresentativeModel) TableName() string {
	return "representatives"
}

// ToDomain converts the persistence model to a domain Representative entity.
func (m *RepresentativeModel) ToDomain() *ledger.Representative {
	r := &ledger.Representative{
		Code:        m.Code,
		Name:        m.Name,
		StoreName:   m.StoreName,
		PhoneNumber: m.PhoneNumber,
		TotalDebt:   m.TotalDebt,
		TotalSales:  m.TotalSales,
		IsActive:    m.IsActive,
	}
	m.PopulateAggregateRoot(&r.BaseAggregateRoot)
	return r
}

// FromDomain populates the persistence model from a domain Representative entity.
func (m *RepresentativeModel) FromDomain(r *ledger.Representative) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.Code = r.Code
	m.Name = r.Name
	m.StoreName = r.StoreName
	m.PhoneNumber = r.PhoneNumber
	m.TotalDebt = r.TotalDebt
	m.TotalSales = r.TotalSales
	m.IsActive = r.IsActive
}

// RepresentativeModelFromDomain creates a new persistence model from a domain Representative.
func RepresentativeModelFromDomain(r *ledger.Representative) *RepresentativeModel {
	m := &RepresentativeModel{}
	m.FromDomain(r)
	return m
}

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber     string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	RepresentativeID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	TotalAmount       decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaidAmount        decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	OutstandingAmount decimal.Decimal       `gorm:"type:decimal(18,4);not null;index"`
	Status            ledger.InvoiceStatus  `gorm:"type:varchar(20);not null;default:'UNPAID';index"`
	IssueDate         time.Time             `gorm:"not null;index"`
	DueDate           *time.Time            `gorm:"index"`
	PaymentRecords    ledger.PaymentRecords `gorm:"type:jsonb;default:'[]'"`
	Remark            string                `gorm:"type:text"`
	PaidAt            *time.Time
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *ledger.Invoice {
	inv := &ledger.Invoice{
		InvoiceNumber:     m.InvoiceNumber,
		RepresentativeID:  m.RepresentativeID,
		TotalAmount:       m.TotalAmount,
		PaidAmount:        m.PaidAmount,
		OutstandingAmount: m.OutstandingAmount,
		Status:            m.Status,
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		PaymentRecords:    m.PaymentRecords,
		Remark:            m.Remark,
		PaidAt:            m.PaidAt,
	}
	m.PopulateAggregateRoot(&inv.BaseAggregateRoot)
	return inv
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *ledger.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.RepresentativeID = inv.RepresentativeID
	m.TotalAmount = inv.TotalAmount
	m.PaidAmount = inv.PaidAmount
	m.OutstandingAmount = inv.OutstandingAmount
	m.Status = inv.Status
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.PaymentRecords = inv.PaymentRecords
	m.Remark = inv.Remark
	m.PaidAt = inv.PaidAt
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *ledger.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate root.
// Allocations live in their own table so the allocation ledger can be
// aggregated in SQL.
type PaymentModel struct {
	AggregateModel
	PaymentNumber     string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	RepresentativeID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	Amount            decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	AllocatedAmount   decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	UnallocatedAmount decimal.Decimal      `gorm:"type:decimal(18,4);not null;index"`
	Status            ledger.PaymentStatus `gorm:"type:varchar(20);not null;default:'UNALLOCATED';index"`
	Method            ledger.PaymentMethod `gorm:"type:varchar(30);not null"`
	PaymentDate       time.Time            `gorm:"not null;index"`
	ReferenceNumber   string               `gorm:"type:varchar(50)"`
	Allocations       []AllocationModel    `gorm:"foreignKey:PaymentID;references:ID"`
	Remark            string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *ledger.Payment {
	p := &ledger.Payment{
		PaymentNumber:     m.PaymentNumber,
		RepresentativeID:  m.RepresentativeID,
		Amount:            m.Amount,
		AllocatedAmount:   m.AllocatedAmount,
		UnallocatedAmount: m.UnallocatedAmount,
		Status:            m.Status,
		Method:            m.Method,
		PaymentDate:       m.PaymentDate,
		ReferenceNumber:   m.ReferenceNumber,
		Remark:            m.Remark,
		Allocations:       make([]ledger.Allocation, len(m.Allocations)),
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	for i := range m.Allocations {
		p.Allocations[i] = *m.Allocations[i].ToDomain()
	}
	return p
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *ledger.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.PaymentNumber = p.PaymentNumber
	m.RepresentativeID = p.RepresentativeID
	m.Amount = p.Amount
	m.AllocatedAmount = p.AllocatedAmount
	m.UnallocatedAmount = p.UnallocatedAmount
	m.Status = p.Status
	m.Method = p.Method
	m.PaymentDate = p.PaymentDate
	m.ReferenceNumber = p.ReferenceNumber
	m.Remark = p.Remark
	m.Allocations = make([]AllocationModel, len(p.Allocations))
	for i := range p.Allocations {
		m.Allocations[i] = *AllocationModelFromDomain(p.ID, &p.Allocations[i])
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *ledger.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// AllocationModel is the persistence model for one payment-to-invoice
// allocation entry. Rows are append-only; reversals are stored as separate
// rows with negative amounts.
type AllocationModel struct {
	ID            uuid.UUID             `gorm:"type:uuid;primary_key"`
	PaymentID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	InvoiceID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	InvoiceNumber string                `gorm:"type:varchar(50);not null"`
	Amount        decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Kind          ledger.AllocationKind `gorm:"type:varchar(20);not null;default:'ALLOCATION'"`
	AllocatedAt   time.Time             `gorm:"not null;index"`
	Remark        string                `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (AllocationModel) TableName() string {
	return "allocations"
}

// ToDomain converts the persistence model to a domain Allocation.
func (m *AllocationModel) ToDomain() *ledger.Allocation {
	return &ledger.Allocation{
		ID:            m.ID,
		PaymentID:     m.PaymentID,
		InvoiceID:     m.InvoiceID,
		InvoiceNumber: m.InvoiceNumber,
		Amount:        m.Amount,
		Kind:          m.Kind,
		AllocatedAt:   m.AllocatedAt,
		Remark:        m.Remark,
	}
}

// AllocationModelFromDomain creates a new persistence model from a domain Allocation.
func AllocationModelFromDomain(paymentID uuid.UUID, a *ledger.Allocation) *AllocationModel {
	return &AllocationModel{
		ID:            a.ID,
		PaymentID:     paymentID,
		InvoiceID:     a.InvoiceID,
		InvoiceNumber: a.InvoiceNumber,
		Amount:        a.Amount,
		Kind:          a.Kind,
		AllocatedAt:   a.AllocatedAt,
		Remark:        a.Remark,
	}
}

// DebtAuditModel is the persistence model for reconciliation audit records.
type DebtAuditModel struct {
	BaseModel
	RepresentativeID uuid.UUID       `gorm:"type:uuid;not null;index"`
	PreviousDebt     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NewDebt          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Delta            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RecordedAt       time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (DebtAuditModel) TableName() string {
	return "debt_audits"
}

// ToDomain converts the persistence model to a domain DebtAudit.
func (m *DebtAuditModel) ToDomain() *ledger.DebtAudit {
	return &ledger.DebtAudit{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		RepresentativeID: m.RepresentativeID,
		PreviousDebt:     m.PreviousDebt,
		NewDebt:          m.NewDebt,
		Delta:            m.Delta,
		RecordedAt:       m.RecordedAt,
	}
}

// DebtAuditModelFromDomain creates a new persistence model from a domain DebtAudit.
func DebtAuditModelFromDomain(a *ledger.DebtAudit) *DebtAuditModel {
	m := &DebtAuditModel{}
	m.FromDomainBaseEntity(a.BaseEntity)
	m.RepresentativeID = a.RepresentativeID
	m.PreviousDebt = a.PreviousDebt
	m.NewDebt = a.NewDebt
	m.Delta = a.Delta
	m.RecordedAt = a.RecordedAt
	return m
}
