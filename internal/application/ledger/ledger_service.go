package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hesabdar/backend/internal/domain/ledger"
	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/hesabdar/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LedgerService handles ingestion and lookup of representatives, invoices
// and payments. Allocation and reconciliation live in their own services.
type LedgerService struct {
	representativeRepo ledger.RepresentativeRepository
	invoiceRepo        ledger.InvoiceRepository
	paymentRepo        ledger.PaymentRepository
	auditRepo          ledger.DebtAuditRepository
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	representativeRepo ledger.RepresentativeRepository,
	invoiceRepo ledger.InvoiceRepository,
	paymentRepo ledger.PaymentRepository,
	auditRepo ledger.DebtAuditRepository,
) *LedgerService {
	return &LedgerService{
		representativeRepo: representativeRepo,
		invoiceRepo:        invoiceRepo,
		paymentRepo:        paymentRepo,
		auditRepo:          auditRepo,
	}
}

// CreateRepresentativeRequest carries the fields for registering a representative
type CreateRepresentativeRequest struct {
	Code        string `json:"code" binding:"required,max=30"`
	Name        string `json:"name" binding:"required,max=100"`
	StoreName   string `json:"store_name" binding:"max=100"`
	PhoneNumber string `json:"phone_number" binding:"max=20"`
}

// RepresentativeResponse is the outward view of a representative
type RepresentativeResponse struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	StoreName   string          `json:"store_name"`
	PhoneNumber string          `json:"phone_number"`
	TotalDebt   decimal.Decimal `json:"total_debt"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CreateRepresentative registers a new representative. Codes are unique.
func (s *LedgerService) CreateRepresentative(ctx context.Context, req CreateRepresentativeRequest) (*RepresentativeResponse, error) {
	if existing, err := s.representativeRepo.FindByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_CODE", "A representative with this code already exists")
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	rep, err := ledger.NewRepresentative(req.Code, req.Name, req.StoreName)
	if err != nil {
		return nil, err
	}
	if req.PhoneNumber != "" {
		rep.SetPhoneNumber(req.PhoneNumber)
	}

	if err := s.representativeRepo.Save(ctx, rep); err != nil {
		return nil, err
	}

	resp := toRepresentativeResponse(rep)
	return &resp, nil
}

// GetRepresentative returns one representative by ID
func (s *LedgerService) GetRepresentative(ctx context.Context, id uuid.UUID) (*RepresentativeResponse, error) {
	rep, err := s.representativeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("REPRESENTATIVE_NOT_FOUND", "Representative not found")
		}
		return nil, err
	}
	resp := toRepresentativeResponse(rep)
	return &resp, nil
}

// ListRequest carries common pagination and search parameters
type ListRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
}

func (r ListRequest) toFilter() shared.Filter {
	filter := shared.DefaultFilter()
	if r.Page > 0 {
		filter.Page = r.Page
	}
	if r.PageSize > 0 && r.PageSize <= 200 {
		filter.PageSize = r.PageSize
	}
	filter.Search = r.Search
	return filter
}

// ListRepresentatives returns a page of representatives
func (s *LedgerService) ListRepresentatives(ctx context.Context, req ListRequest) (*shared.Paginated[RepresentativeResponse], error) {
	filter := req.toFilter()

	reps, err := s.representativeRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.representativeRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]RepresentativeResponse, 0, len(reps))
	for i := range reps {
		responses = append(responses, toRepresentativeResponse(&reps[i]))
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

// CreateInvoiceRequest carries the fields for issuing an invoice.
// Amount is a positive decimal string, e.g. "1000000".
type CreateInvoiceRequest struct {
	RepresentativeID uuid.UUID  `json:"representative_id" binding:"required"`
	Amount           string     `json:"amount" binding:"required"`
	IssueDate        time.Time  `json:"issue_date" binding:"required"`
	DueDate          *time.Time `json:"due_date"`
	Remark           string     `json:"remark" binding:"max=500"`
}

// InvoiceResponse is the outward view of an invoice
type InvoiceResponse struct {
	ID                uuid.UUID       `json:"id"`
	InvoiceNumber     string          `json:"invoice_number"`
	RepresentativeID  uuid.UUID       `json:"representative_id"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	Status            string          `json:"status"`
	IssueDate         time.Time       `json:"issue_date"`
	DueDate           *time.Time      `json:"due_date"`
	PaidAt            *time.Time      `json:"paid_at"`
	PaymentRecords    int             `json:"payment_records"`
}

// CreateInvoice issues a new invoice against a representative
func (s *LedgerService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if _, err := s.representativeRepo.FindByID(ctx, req.RepresentativeID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("REPRESENTATIVE_NOT_FOUND", "Representative not found")
		}
		return nil, err
	}

	amount, err := valueobject.NewMoneyIRRFromString(req.Amount)
	if err != nil {
		return nil, shared.ErrInvalidAmount
	}

	invoiceNumber, err := s.invoiceRepo.GenerateInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	invoice, err := ledger.NewInvoice(invoiceNumber, req.RepresentativeID, amount, req.IssueDate, req.DueDate)
	if err != nil {
		return nil, err
	}
	invoice.Remark = req.Remark

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	resp := toInvoiceResponse(invoice)
	return &resp, nil
}

// GetInvoice returns one invoice by ID
func (s *LedgerService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
		}
		return nil, err
	}
	resp := toInvoiceResponse(invoice)
	return &resp, nil
}

// ListInvoicesRequest filters the invoice listing
type ListInvoicesRequest struct {
	ListRequest
	RepresentativeID *uuid.UUID `form:"representative_id"`
	Status           *string    `form:"status"`
	Overdue          *bool      `form:"overdue"`
}

// ListInvoices returns a page of invoices
func (s *LedgerService) ListInvoices(ctx context.Context, req ListInvoicesRequest) (*shared.Paginated[InvoiceResponse], error) {
	filter := ledger.InvoiceFilter{Filter: req.toFilter()}
	filter.RepresentativeID = req.RepresentativeID
	filter.Overdue = req.Overdue
	if req.Status != nil {
		status := ledger.InvoiceStatus(*req.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Unknown invoice status")
		}
		filter.Status = &status
	}

	invoices, err := s.invoiceRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.invoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		responses = append(responses, toInvoiceResponse(&invoices[i]))
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

// CreatePaymentRequest carries the fields for recording a received payment.
// Amount is a positive decimal string, e.g. "1200000".
type CreatePaymentRequest struct {
	RepresentativeID uuid.UUID `json:"representative_id" binding:"required"`
	Amount           string    `json:"amount" binding:"required"`
	Method           string    `json:"method" binding:"required,oneof=CASH BANK_TRANSFER CARD CHEQUE"`
	PaymentDate      time.Time `json:"payment_date" binding:"required"`
	ReferenceNumber  string    `json:"reference_number" binding:"max=50"`
	Remark           string    `json:"remark" binding:"max=500"`
}

// PaymentResponse is the outward view of a payment
type PaymentResponse struct {
	ID                uuid.UUID            `json:"id"`
	PaymentNumber     string               `json:"payment_number"`
	RepresentativeID  uuid.UUID            `json:"representative_id"`
	Amount            decimal.Decimal      `json:"amount"`
	AllocatedAmount   decimal.Decimal      `json:"allocated_amount"`
	UnallocatedAmount decimal.Decimal      `json:"unallocated_amount"`
	Status            string               `json:"status"`
	Method            string               `json:"method"`
	PaymentDate       time.Time            `json:"payment_date"`
	ReferenceNumber   string               `json:"reference_number,omitempty"`
	Allocations       []AllocationResponse `json:"allocations"`
}

// AllocationResponse is one allocation entry on a payment
type AllocationResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          string          `json:"kind"`
	AllocatedAt   time.Time       `json:"allocated_at"`
}

// CreatePayment records a received payment in unallocated state
func (s *LedgerService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*PaymentResponse, error) {
	if _, err := s.representativeRepo.FindByID(ctx, req.RepresentativeID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("REPRESENTATIVE_NOT_FOUND", "Representative not found")
		}
		return nil, err
	}

	amount, err := valueobject.NewMoneyIRRFromString(req.Amount)
	if err != nil {
		return nil, shared.ErrInvalidAmount
	}

	paymentNumber, err := s.paymentRepo.GeneratePaymentNumber(ctx)
	if err != nil {
		return nil, err
	}

	payment, err := ledger.NewPayment(paymentNumber, req.RepresentativeID, amount,
		ledger.PaymentMethod(req.Method), req.PaymentDate)
	if err != nil {
		return nil, err
	}
	if req.ReferenceNumber != "" {
		payment.SetReferenceNumber(req.ReferenceNumber)
	}
	if req.Remark != "" {
		payment.SetRemark(req.Remark)
	}

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}

	resp := toPaymentResponse(payment)
	return &resp, nil
}

// GetPayment returns one payment by ID including its allocation entries
func (s *LedgerService) GetPayment(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
		}
		return nil, err
	}
	resp := toPaymentResponse(payment)
	return &resp, nil
}

// ListPaymentsRequest filters the payment listing
type ListPaymentsRequest struct {
	ListRequest
	RepresentativeID *uuid.UUID `form:"representative_id"`
	Status           *string    `form:"status"`
}

// ListPayments returns a page of payments
func (s *LedgerService) ListPayments(ctx context.Context, req ListPaymentsRequest) (*shared.Paginated[PaymentResponse], error) {
	filter := ledger.PaymentFilter{Filter: req.toFilter()}
	filter.RepresentativeID = req.RepresentativeID
	if req.Status != nil {
		status := ledger.PaymentStatus(*req.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Unknown payment status")
		}
		filter.Status = &status
	}

	payments, err := s.paymentRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.paymentRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, toPaymentResponse(&payments[i]))
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

func toRepresentativeResponse(r *ledger.Representative) RepresentativeResponse {
	return RepresentativeResponse{
		ID:          r.ID,
		Code:        r.Code,
		Name:        r.Name,
		StoreName:   r.StoreName,
		PhoneNumber: r.PhoneNumber,
		TotalDebt:   r.TotalDebt,
		TotalSales:  r.TotalSales,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
	}
}

func toInvoiceResponse(inv *ledger.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:                inv.ID,
		InvoiceNumber:     inv.InvoiceNumber,
		RepresentativeID:  inv.RepresentativeID,
		TotalAmount:       inv.TotalAmount,
		PaidAmount:        inv.PaidAmount,
		OutstandingAmount: inv.OutstandingAmount,
		Status:            inv.Status.String(),
		IssueDate:         inv.IssueDate,
		DueDate:           inv.DueDate,
		PaidAt:            inv.PaidAt,
		PaymentRecords:    len(inv.PaymentRecords),
	}
}

func toPaymentResponse(p *ledger.Payment) PaymentResponse {
	allocations := make([]AllocationResponse, 0, len(p.Allocations))
	for i := range p.Allocations {
		a := &p.Allocations[i]
		allocations = append(allocations, AllocationResponse{
			ID:            a.ID,
			InvoiceID:     a.InvoiceID,
			InvoiceNumber: a.InvoiceNumber,
			Amount:        a.Amount,
			Kind:          string(a.Kind),
			AllocatedAt:   a.AllocatedAt,
		})
	}
	return PaymentResponse{
		ID:                p.ID,
		PaymentNumber:     p.PaymentNumber,
		RepresentativeID:  p.RepresentativeID,
		Amount:            p.Amount,
		AllocatedAmount:   p.AllocatedAmount,
		UnallocatedAmount: p.UnallocatedAmount,
		Status:            p.Status.String(),
		Method:            string(p.Method),
		PaymentDate:       p.PaymentDate,
		ReferenceNumber:   p.ReferenceNumber,
		Allocations:       allocations,
	}
}
