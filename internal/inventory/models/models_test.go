package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
)

func TestReasonValidFor(t *testing.T) {
	assert.True(t, ReasonPurchase.ValidFor(MovementEntry))
	assert.False(t, ReasonPurchase.ValidFor(MovementExit))
	assert.True(t, ReasonDelivery.ValidFor(MovementExit))
	assert.False(t, ReasonDelivery.ValidFor(MovementEntry))
	assert.True(t, ReasonAdjustment.ValidFor(MovementEntry))
	assert.True(t, ReasonAdjustment.ValidFor(MovementExit))
	assert.False(t, Reason("gift").ValidFor(MovementEntry))
}

func TestSupplyCanDebit(t *testing.T) {
	now := time.Now()
	s, err := NewSupply(id.SupplyID(uuid.New()), "Insulina", "vial", 2, now)
	require.NoError(t, err)
	s.ApplyCredit(5, now)

	require.NoError(t, s.CanDebit(5))

	err = s.CanDebit(6)
	require.True(t, dErrors.HasCode(err, dErrors.CodeInsufficientStock))
	de, _ := dErrors.As(err)
	assert.Equal(t, int64(5), de.Details["available"])
	assert.Equal(t, int64(6), de.Details["requested"])
	assert.Equal(t, int64(5), s.CurrentStock, "check must not mutate")
}

func TestNewMovement(t *testing.T) {
	supplyID := id.SupplyID(uuid.New())
	actor := id.UserID(uuid.New())
	now := time.Now()

	_, err := NewMovement(id.MovementID(uuid.New()), supplyID, MovementExit, 0, ReasonLoss, actor, "", nil, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	_, err = NewMovement(id.MovementID(uuid.New()), supplyID, MovementExit, 3, ReasonDonation, actor, "", nil, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	m, err := NewMovement(id.MovementID(uuid.New()), supplyID, MovementExit, 3, ReasonDelivery, actor, "  ok ", nil, now)
	require.NoError(t, err)
	assert.Equal(t, int64(-3), m.Signed())
	assert.Equal(t, "ok", m.Notes)
}

func TestFold(t *testing.T) {
	supplyID := id.SupplyID(uuid.New())
	actor := id.UserID(uuid.New())
	mk := func(kind MovementKind, q int64, r Reason) *Movement {
		m, err := NewMovement(id.MovementID(uuid.New()), supplyID, kind, q, r, actor, "", nil, time.Now())
		require.NoError(t, err)
		return m
	}

	t.Run("consistent ledger", func(t *testing.T) {
		report := Fold(supplyID, 12, []*Movement{
			mk(MovementEntry, 20, ReasonPurchase),
			mk(MovementExit, 10, ReasonDelivery),
			mk(MovementEntry, 2, ReasonDonation),
		})
		assert.Equal(t, int64(12), report.Derived)
		assert.Equal(t, int64(22), report.Entries)
		assert.Equal(t, int64(10), report.Exits)
		assert.True(t, report.Consistent())
	})

	t.Run("drifted cache", func(t *testing.T) {
		report := Fold(supplyID, 7, []*Movement{mk(MovementEntry, 5, ReasonPurchase)})
		assert.False(t, report.Consistent())
	})

	t.Run("negative running balance is flagged", func(t *testing.T) {
		report := Fold(supplyID, 0, []*Movement{
			mk(MovementExit, 1, ReasonLoss),
			mk(MovementEntry, 1, ReasonPurchase),
		})
		assert.Equal(t, 0, report.NegativeAt)
		assert.False(t, report.Consistent())
	})
}

func TestDebitRequestValidate(t *testing.T) {
	req := DebitRequest{SupplyID: id.SupplyID(uuid.New()), Quantity: 1, Reason: " Delivery "}
	req.Normalize()
	require.NoError(t, req.Validate())

	req.Reason = ReasonPurchase
	assert.True(t, dErrors.HasCode(req.Validate(), dErrors.CodeValidation))

	req = DebitRequest{Quantity: 1, Reason: ReasonLoss}
	assert.True(t, dErrors.HasCode(req.Validate(), dErrors.CodeValidation))
}
