package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/hesabdar/backend/internal/domain/ledger"
	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockRepresentativeRepo struct {
	mock.Mock
}

func (m *mockRepresentativeRepo) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Representative, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Representative), args.Error(1)
}

func (m *mockRepresentativeRepo) FindByCode(ctx context.Context, code string) (*ledger.Representative, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Representative), args.Error(1)
}

func (m *mockRepresentativeRepo) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.Representative, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Representative), args.Error(1)
}

func (m *mockRepresentativeRepo) Save(ctx context.Context, representative *ledger.Representative) error {
	args := m.Called(ctx, representative)
	return args.Error(0)
}

func (m *mockRepresentativeRepo) SaveWithLock(ctx context.Context, representative *ledger.Representative) error {
	args := m.Called(ctx, representative)
	return args.Error(0)
}

func (m *mockRepresentativeRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type mockInvoiceRepo struct {
	mock.Mock
}

func (m *mockInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*ledger.Invoice, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) FindAll(ctx context.Context, filter ledger.InvoiceFilter) ([]ledger.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) FindOpenByRepresentative(ctx context.Context, representativeID uuid.UUID) ([]ledger.Invoice, error) {
	args := m.Called(ctx, representativeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) Save(ctx context.Context, invoice *ledger.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *mockInvoiceRepo) SaveWithLock(ctx context.Context, invoice *ledger.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *mockInvoiceRepo) Count(ctx context.Context, filter ledger.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockInvoiceRepo) SumTotalByRepresentative(ctx context.Context, representativeID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, representativeID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockInvoiceRepo) SumOutstandingByRepresentative(ctx context.Context, representativeID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, representativeID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockInvoiceRepo) GenerateInvoiceNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Payment), args.Error(1)
}

func (m *mockPaymentRepo) FindByPaymentNumber(ctx context.Context, paymentNumber string) (*ledger.Payment, error) {
	args := m.Called(ctx, paymentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Payment), args.Error(1)
}

func (m *mockPaymentRepo) FindAll(ctx context.Context, filter ledger.PaymentFilter) ([]ledger.Payment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Payment), args.Error(1)
}

func (m *mockPaymentRepo) FindUnallocatedByRepresentative(ctx context.Context, representativeID uuid.UUID) ([]ledger.Payment, error) {
	args := m.Called(ctx, representativeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Payment), args.Error(1)
}

func (m *mockPaymentRepo) FindUnallocated(ctx context.Context, filter ledger.PaymentFilter) ([]ledger.Payment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Payment), args.Error(1)
}

func (m *mockPaymentRepo) Save(ctx context.Context, payment *ledger.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *mockPaymentRepo) SaveWithLock(ctx context.Context, payment *ledger.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *mockPaymentRepo) Count(ctx context.Context, filter ledger.PaymentFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPaymentRepo) SumAllocatedByRepresentative(ctx context.Context, representativeID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, representativeID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockPaymentRepo) SummaryByRepresentative(ctx context.Context, representativeID uuid.UUID) (*ledger.PaymentSummary, error) {
	args := m.Called(ctx, representativeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.PaymentSummary), args.Error(1)
}

func (m *mockPaymentRepo) GeneratePaymentNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type mockDebtAuditRepo struct {
	mock.Mock
}

func (m *mockDebtAuditRepo) Save(ctx context.Context, audit *ledger.DebtAudit) error {
	args := m.Called(ctx, audit)
	return args.Error(0)
}

func (m *mockDebtAuditRepo) FindByRepresentative(ctx context.Context, representativeID uuid.UUID, filter shared.Filter) ([]ledger.DebtAudit, error) {
	args := m.Called(ctx, representativeID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.DebtAudit), args.Error(1)
}

// mockTxManager runs the callback inline; a preset error simulates a failed
// begin or commit without invoking the callback.
type mockTxManager struct {
	mock.Mock
}

func (m *mockTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

type mockLocker struct {
	mock.Mock
}

func (m *mockLocker) Acquire(ctx context.Context, representativeID uuid.UUID) (func(), error) {
	args := m.Called(ctx, representativeID)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return func() {}, nil
}
