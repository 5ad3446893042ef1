package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hesabdar/backend/internal/domain/shared"
	"github.com/hesabdar/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2026, 1, n, 0, 0, 0, 0, time.UTC)
}

func irr(amount int64) valueobject.Money {
	return valueobject.NewMoneyIRR(decimal.NewFromInt(amount))
}

func TestFIFOAllocationPolicy_Allocate(t *testing.T) {
	policy := NewFIFOAllocationPolicy()

	t.Run("pays oldest invoice first then spills to next", func(t *testing.T) {
		invA := uuid.New()
		invB := uuid.New()
		targets := []AllocationTarget{
			{InvoiceID: invB, InvoiceNumber: "INV-B", RemainingAmount: decimal.NewFromInt(500000), IssueDate: day(2)},
			{InvoiceID: invA, InvoiceNumber: "INV-A", RemainingAmount: decimal.NewFromInt(1000000), IssueDate: day(1)},
		}

		plan, err := policy.Allocate(irr(1200000), targets)
		require.NoError(t, err)

		require.Len(t, plan.Entries, 2)
		assert.Equal(t, invA, plan.Entries[0].InvoiceID)
		assert.True(t, plan.Entries[0].Amount.Equal(decimal.NewFromInt(1000000)))
		assert.Equal(t, invB, plan.Entries[1].InvoiceID)
		assert.True(t, plan.Entries[1].Amount.Equal(decimal.NewFromInt(200000)))

		assert.True(t, plan.TotalPlanned.Equal(decimal.NewFromInt(1200000)))
		assert.True(t, plan.RemainingAmount.IsZero())
		assert.True(t, plan.FullyAllocated)
		assert.Equal(t, []uuid.UUID{invA}, plan.InvoicesFullyPaid)
		assert.Equal(t, []uuid.UUID{invB}, plan.InvoicesPartiallyPaid)
	})

	t.Run("breaks issue date ties by invoice ID ascending", func(t *testing.T) {
		idLow := uuid.MustParse("11111111-1111-1111-1111-111111111111")
		idHigh := uuid.MustParse("99999999-9999-9999-9999-999999999999")
		targets := []AllocationTarget{
			{InvoiceID: idHigh, InvoiceNumber: "INV-H", RemainingAmount: decimal.NewFromInt(100), IssueDate: day(1)},
			{InvoiceID: idLow, InvoiceNumber: "INV-L", RemainingAmount: decimal.NewFromInt(100), IssueDate: day(1)},
		}

		plan, err := policy.Allocate(irr(150), targets)
		require.NoError(t, err)

		require.Len(t, plan.Entries, 2)
		assert.Equal(t, idLow, plan.Entries[0].InvoiceID)
		assert.True(t, plan.Entries[0].Amount.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, idHigh, plan.Entries[1].InvoiceID)
		assert.True(t, plan.Entries[1].Amount.Equal(decimal.NewFromInt(50)))
	})

	t.Run("identical inputs produce identical plans", func(t *testing.T) {
		targets := []AllocationTarget{
			{InvoiceID: uuid.New(), InvoiceNumber: "INV-1", RemainingAmount: decimal.NewFromInt(300), IssueDate: day(3)},
			{InvoiceID: uuid.New(), InvoiceNumber: "INV-2", RemainingAmount: decimal.NewFromInt(200), IssueDate: day(1)},
			{InvoiceID: uuid.New(), InvoiceNumber: "INV-3", RemainingAmount: decimal.NewFromInt(400), IssueDate: day(2)},
		}

		first, err := policy.Allocate(irr(600), targets)
		require.NoError(t, err)
		second, err := policy.Allocate(irr(600), targets)
		require.NoError(t, err)

		require.Equal(t, len(first.Entries), len(second.Entries))
		for i := range first.Entries {
			assert.Equal(t, first.Entries[i].InvoiceID, second.Entries[i].InvoiceID)
			assert.True(t, first.Entries[i].Amount.Equal(second.Entries[i].Amount))
		}
	})

	t.Run("skips invoices with zero remaining amount", func(t *testing.T) {
		open := uuid.New()
		targets := []AllocationTarget{
			{InvoiceID: uuid.New(), InvoiceNumber: "INV-0", RemainingAmount: decimal.Zero, IssueDate: day(1)},
			{InvoiceID: open, InvoiceNumber: "INV-1", RemainingAmount: decimal.NewFromInt(100), IssueDate: day(2)},
		}

		plan, err := policy.Allocate(irr(100), targets)
		require.NoError(t, err)

		require.Len(t, plan.Entries, 1)
		assert.Equal(t, open, plan.Entries[0].InvoiceID)
	})

	t.Run("leftover stays unallocated when invoices run out", func(t *testing.T) {
		targets := []AllocationTarget{
			{InvoiceID: uuid.New(), InvoiceNumber: "INV-1", RemainingAmount: decimal.NewFromInt(300), IssueDate: day(1)},
		}

		plan, err := policy.Allocate(irr(1000), targets)
		require.NoError(t, err)

		assert.True(t, plan.TotalPlanned.Equal(decimal.NewFromInt(300)))
		assert.True(t, plan.RemainingAmount.Equal(decimal.NewFromInt(700)))
		assert.False(t, plan.FullyAllocated)
	})

	t.Run("empty target list yields empty plan", func(t *testing.T) {
		plan, err := policy.Allocate(irr(500), nil)
		require.NoError(t, err)

		assert.Empty(t, plan.Entries)
		assert.True(t, plan.RemainingAmount.Equal(decimal.NewFromInt(500)))
		assert.False(t, plan.FullyAllocated)
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		_, err := policy.Allocate(irr(0), []AllocationTarget{
			{InvoiceID: uuid.New(), RemainingAmount: decimal.NewFromInt(100), IssueDate: day(1)},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := policy.Allocate(irr(-100), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	})

	t.Run("never over-allocates any invoice", func(t *testing.T) {
		targets := []AllocationTarget{
			{InvoiceID: uuid.New(), InvoiceNumber: "INV-1", RemainingAmount: decimal.NewFromInt(250), IssueDate: day(1)},
			{InvoiceID: uuid.New(), InvoiceNumber: "INV-2", RemainingAmount: decimal.NewFromInt(250), IssueDate: day(2)},
		}

		plan, err := policy.Allocate(irr(10000), targets)
		require.NoError(t, err)

		total := decimal.Zero
		for i, entry := range plan.Entries {
			assert.True(t, entry.Amount.LessThanOrEqual(targets[i].RemainingAmount))
			total = total.Add(entry.Amount)
		}
		assert.True(t, total.Equal(decimal.NewFromInt(500)))
	})
}

func TestManualAllocationPolicy_Allocate(t *testing.T) {
	t.Run("allocates to requested invoices in request order", func(t *testing.T) {
		invA := uuid.New()
		invB := uuid.New()
		targets := []AllocationTarget{
			{InvoiceID: invA, InvoiceNumber: "INV-A", RemainingAmount: decimal.NewFromInt(500), IssueDate: day(1)},
			{InvoiceID: invB, InvoiceNumber: "INV-B", RemainingAmount: decimal.NewFromInt(500), IssueDate: day(2)},
		}
		policy := NewManualAllocationPolicy([]ManualAllocationRequest{
			{InvoiceID: invB, Amount: decimal.NewFromInt(300)},
			{InvoiceID: invA},
		})

		plan, err := policy.Allocate(irr(600), targets)
		require.NoError(t, err)

		require.Len(t, plan.Entries, 2)
		assert.Equal(t, invB, plan.Entries[0].InvoiceID)
		assert.True(t, plan.Entries[0].Amount.Equal(decimal.NewFromInt(300)))
		assert.Equal(t, invA, plan.Entries[1].InvoiceID)
		assert.True(t, plan.Entries[1].Amount.Equal(decimal.NewFromInt(300)))
		assert.True(t, plan.FullyAllocated)
	})

	t.Run("caps requested amount at outstanding", func(t *testing.T) {
		invA := uuid.New()
		targets := []AllocationTarget{
			{InvoiceID: invA, InvoiceNumber: "INV-A", RemainingAmount: decimal.NewFromInt(100), IssueDate: day(1)},
		}
		policy := NewManualAllocationPolicy([]ManualAllocationRequest{
			{InvoiceID: invA, Amount: decimal.NewFromInt(9999)},
		})

		plan, err := policy.Allocate(irr(500), targets)
		require.NoError(t, err)

		require.Len(t, plan.Entries, 1)
		assert.True(t, plan.Entries[0].Amount.Equal(decimal.NewFromInt(100)))
		assert.True(t, plan.RemainingAmount.Equal(decimal.NewFromInt(400)))
	})

	t.Run("skips unknown invoice IDs", func(t *testing.T) {
		targets := []AllocationTarget{
			{InvoiceID: uuid.New(), InvoiceNumber: "INV-A", RemainingAmount: decimal.NewFromInt(100), IssueDate: day(1)},
		}
		policy := NewManualAllocationPolicy([]ManualAllocationRequest{
			{InvoiceID: uuid.New()},
		})

		plan, err := policy.Allocate(irr(100), targets)
		require.NoError(t, err)
		assert.Empty(t, plan.Entries)
	})
}

func TestAllocationPolicyFactory(t *testing.T) {
	factory := NewAllocationPolicyFactory()

	t.Run("returns FIFO policy", func(t *testing.T) {
		policy, err := factory.GetPolicy(AllocationPolicyTypeFIFO, nil)
		require.NoError(t, err)
		assert.Equal(t, AllocationPolicyTypeFIFO, policy.PolicyType())
	})

	t.Run("returns manual policy with requests", func(t *testing.T) {
		policy, err := factory.GetPolicy(AllocationPolicyTypeManual, []ManualAllocationRequest{{InvoiceID: uuid.New()}})
		require.NoError(t, err)
		assert.Equal(t, AllocationPolicyTypeManual, policy.PolicyType())
	})

	t.Run("rejects manual policy without requests", func(t *testing.T) {
		_, err := factory.GetPolicy(AllocationPolicyTypeManual, nil)
		assert.Error(t, err)
	})

	t.Run("rejects unknown policy type", func(t *testing.T) {
		_, err := factory.GetPolicy("LIFO", nil)
		assert.Error(t, err)
	})
}
