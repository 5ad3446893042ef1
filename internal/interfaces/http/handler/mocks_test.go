package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/hesabdar/backend/internal/domain/ledger"
	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockRepresentativeRepository implements ledger.RepresentativeRepository for testing
type MockRepresentativeRepository struct {
	mock.Mock
}

func (m *MockRepresentativeRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Representative, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Representative), args.Error(1)
}

func (m *MockRepresentativeRepository) FindByCode(ctx context.Context, code string) (*ledger.Representative, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Representative), args.Error(1)
}

func (m *MockRepresentativeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.Representative, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Representative), args.Error(1)
}

func (m *MockRepresentativeRepository) Save(ctx context.Context, representative *ledger.Representative) error {
	args := m.Called(ctx, representative)
	return args.Error(0)
}

func (m *MockRepresentativeRepository) SaveWithLock(ctx context.Context, representative *ledger.Representative) error {
	args := m.Called(ctx, representative)
	return args.Error(0)
}

func (m *MockRepresentativeRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockInvoiceRepository implements ledger.InvoiceRepository for testing
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*ledger.Invoice, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter ledger.InvoiceFilter) ([]ledger.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOpenByRepresentative(ctx context.Context, representativeID uuid.UUID) ([]ledger.Invoice, error) {
	args := m.Called(ctx, representativeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *ledger.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *ledger.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter ledger.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) SumTotalByRepresentative(ctx context.Context, representativeID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, representativeID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockInvoiceRepository) SumOutstandingByRepresentative(ctx context.Context, representativeID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, representativeID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockInvoiceRepository) GenerateInvoiceNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockPaymentRepository implements ledger.PaymentRepository for testing
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByPaymentNumber(ctx context.Context, paymentNumber string) (*ledger.Payment, error) {
	args := m.Called(ctx, paymentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAll(ctx context.Context, filter ledger.PaymentFilter) ([]ledger.Payment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindUnallocatedByRepresentative(ctx context.Context, representativeID uuid.UUID) ([]ledger.Payment, error) {
	args := m.Called(ctx, representativeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindUnallocated(ctx context.Context, filter ledger.PaymentFilter) ([]ledger.Payment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *ledger.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveWithLock(ctx context.Context, payment *ledger.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) Count(ctx context.Context, filter ledger.PaymentFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) SumAllocatedByRepresentative(ctx context.Context, representativeID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, representativeID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) SummaryByRepresentative(ctx context.Context, representativeID uuid.UUID) (*ledger.PaymentSummary, error) {
	args := m.Called(ctx, representativeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PaymentSummary), args.Error(1)
}

func (m *MockPaymentRepository) GeneratePaymentNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockDebtAuditRepository implements ledger.DebtAuditRepository for testing
type MockDebtAuditRepository struct {
	mock.Mock
}

func (m *MockDebtAuditRepository) Save(ctx context.Context, audit *ledger.DebtAudit) error {
	args := m.Called(ctx, audit)
	return args.Error(0)
}

func (m *MockDebtAuditRepository) FindByRepresentative(ctx context.Context, representativeID uuid.UUID, filter shared.Filter) ([]ledger.DebtAudit, error) {
	args := m.Called(ctx, representativeID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.DebtAudit), args.Error(1)
}

// MockTransactionManager runs the callback inline
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

// MockRepresentativeLocker hands out no-op release functions
type MockRepresentativeLocker struct {
	mock.Mock
}

func (m *MockRepresentativeLocker) Acquire(ctx context.Context, representativeID uuid.UUID) (func(), error) {
	args := m.Called(ctx, representativeID)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return func() {}, nil
}
