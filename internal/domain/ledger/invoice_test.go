package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(t *testing.T, amount int64) *Invoice {
	t.Helper()
	inv, err := NewInvoice("INV-20260101-00001", uuid.New(), irr(amount), day(1), nil)
	require.NoError(t, err)
	return inv
}

func TestNewInvoice(t *testing.T) {
	t.Run("creates unpaid invoice", func(t *testing.T) {
		repID := uuid.New()
		due := day(30)
		inv, err := NewInvoice("INV-20260101-00001", repID, irr(1000000), day(1), &due)
		require.NoError(t, err)

		assert.Equal(t, InvoiceStatusUnpaid, inv.Status)
		assert.Equal(t, repID, inv.RepresentativeID)
		assert.True(t, inv.PaidAmount.IsZero())
		assert.True(t, inv.OutstandingAmount.Equal(decimal.NewFromInt(1000000)))
		assert.Equal(t, 1, inv.GetVersion())
		assert.Len(t, inv.GetDomainEvents(), 1)
	})

	t.Run("rejects empty invoice number", func(t *testing.T) {
		_, err := NewInvoice("", uuid.New(), irr(100), day(1), nil)
		assert.Error(t, err)
	})

	t.Run("rejects nil representative", func(t *testing.T) {
		_, err := NewInvoice("INV-1", uuid.Nil, irr(100), day(1), nil)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewInvoice("INV-1", uuid.New(), irr(0), day(1), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	})

	t.Run("rejects due date before issue date", func(t *testing.T) {
		due := day(1)
		_, err := NewInvoice("INV-1", uuid.New(), irr(100), day(5), &due)
		assert.Error(t, err)
	})

	t.Run("already past due date starts overdue", func(t *testing.T) {
		issued := time.Now().AddDate(0, -2, 0)
		due := time.Now().AddDate(0, -1, 0)
		inv, err := NewInvoice("INV-1", uuid.New(), irr(100), issued, &due)
		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusOverdue, inv.Status)
	})
}

func TestInvoiceApplyPayment(t *testing.T) {
	t.Run("partial payment", func(t *testing.T) {
		inv := newTestInvoice(t, 1000000)

		err := inv.ApplyPayment(irr(400000), uuid.New(), "first installment")
		require.NoError(t, err)

		assert.Equal(t, InvoiceStatusPartial, inv.Status)
		assert.True(t, inv.PaidAmount.Equal(decimal.NewFromInt(400000)))
		assert.True(t, inv.OutstandingAmount.Equal(decimal.NewFromInt(600000)))
		assert.Equal(t, 1, inv.PaymentCount())
		assert.Equal(t, 2, inv.GetVersion())
	})

	t.Run("full payment", func(t *testing.T) {
		inv := newTestInvoice(t, 500000)

		require.NoError(t, inv.ApplyPayment(irr(500000), uuid.New(), ""))

		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.True(t, inv.OutstandingAmount.IsZero())
		assert.NotNil(t, inv.PaidAt)
		assert.False(t, inv.IsOpen())
	})

	t.Run("rejects amount exceeding outstanding", func(t *testing.T) {
		inv := newTestInvoice(t, 100)

		err := inv.ApplyPayment(irr(101), uuid.New(), "")
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EXCEEDS_OUTSTANDING", domainErr.Code)
		assert.True(t, inv.PaidAmount.IsZero())
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		inv := newTestInvoice(t, 100)
		err := inv.ApplyPayment(irr(0), uuid.New(), "")
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	})

	t.Run("rejects payment on paid invoice", func(t *testing.T) {
		inv := newTestInvoice(t, 100)
		require.NoError(t, inv.ApplyPayment(irr(100), uuid.New(), ""))

		err := inv.ApplyPayment(irr(1), uuid.New(), "")
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("rejects nil payment ID", func(t *testing.T) {
		inv := newTestInvoice(t, 100)
		err := inv.ApplyPayment(irr(50), uuid.Nil, "")
		assert.Error(t, err)
	})

	t.Run("paid amount never exceeds total", func(t *testing.T) {
		inv := newTestInvoice(t, 300)
		require.NoError(t, inv.ApplyPayment(irr(100), uuid.New(), ""))
		require.NoError(t, inv.ApplyPayment(irr(100), uuid.New(), ""))
		require.NoError(t, inv.ApplyPayment(irr(100), uuid.New(), ""))

		assert.True(t, inv.PaidAmount.Equal(inv.TotalAmount))
		assert.Error(t, inv.ApplyPayment(irr(1), uuid.New(), ""))
	})
}

func TestInvoiceRevertPayment(t *testing.T) {
	t.Run("reverts applied amount and reopens invoice", func(t *testing.T) {
		inv := newTestInvoice(t, 500)
		paymentID := uuid.New()
		require.NoError(t, inv.ApplyPayment(irr(500), paymentID, ""))
		require.True(t, inv.IsPaid())

		err := inv.RevertPayment(irr(500), paymentID, "allocation reversed")
		require.NoError(t, err)

		assert.Equal(t, InvoiceStatusUnpaid, inv.Status)
		assert.True(t, inv.OutstandingAmount.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, 2, inv.PaymentCount())
	})

	t.Run("rejects reversal exceeding paid amount", func(t *testing.T) {
		inv := newTestInvoice(t, 500)
		require.NoError(t, inv.ApplyPayment(irr(200), uuid.New(), ""))

		err := inv.RevertPayment(irr(300), uuid.New(), "oops")
		assert.Error(t, err)
	})

	t.Run("requires a reason", func(t *testing.T) {
		inv := newTestInvoice(t, 500)
		require.NoError(t, inv.ApplyPayment(irr(200), uuid.New(), ""))

		err := inv.RevertPayment(irr(200), uuid.New(), "")
		assert.Error(t, err)
	})
}

func TestInvoiceOverdue(t *testing.T) {
	t.Run("open invoice past due date is overdue", func(t *testing.T) {
		issued := time.Now().AddDate(0, 0, -10)
		due := time.Now().AddDate(0, 0, -3)
		inv, err := NewInvoice("INV-1", uuid.New(), irr(100), issued, &due)
		require.NoError(t, err)

		assert.True(t, inv.IsOverdue())
		assert.Equal(t, 3, inv.DaysOverdue())
	})

	t.Run("paid invoice is never overdue", func(t *testing.T) {
		issued := time.Now().AddDate(0, 0, -10)
		due := time.Now().AddDate(0, 0, -3)
		inv, err := NewInvoice("INV-1", uuid.New(), irr(100), issued, &due)
		require.NoError(t, err)
		require.NoError(t, inv.ApplyPayment(irr(100), uuid.New(), ""))

		assert.False(t, inv.IsOverdue())
		assert.Equal(t, 0, inv.DaysOverdue())
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})

	t.Run("no due date means never overdue", func(t *testing.T) {
		inv := newTestInvoice(t, 100)
		assert.False(t, inv.IsOverdue())
	})
}

func TestPaymentRecordsScanValue(t *testing.T) {
	t.Run("nil stores empty array", func(t *testing.T) {
		var records PaymentRecords
		v, err := records.Value()
		require.NoError(t, err)
		assert.Equal(t, "[]", v)
	})

	t.Run("round trips through JSONB", func(t *testing.T) {
		records := PaymentRecords{
			*NewPaymentRecord(uuid.New(), irr(100), "test"),
		}
		v, err := records.Value()
		require.NoError(t, err)

		var decoded PaymentRecords
		require.NoError(t, decoded.Scan(v))
		require.Len(t, decoded, 1)
		assert.Equal(t, records[0].PaymentID, decoded[0].PaymentID)
		assert.True(t, decoded[0].Amount.Equal(decimal.NewFromInt(100)))
	})

	t.Run("scans nil as empty", func(t *testing.T) {
		var decoded PaymentRecords
		require.NoError(t, decoded.Scan(nil))
		assert.Empty(t, decoded)
	})
}
