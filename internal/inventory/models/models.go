package models

import (
	"strings"
	"time"

	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
)

// MovementKind is the direction of a stock movement.
type MovementKind string

const (
	MovementEntry MovementKind = "entry"
	MovementExit  MovementKind = "exit"
)

// Reason explains a movement. Entries and exits accept different sets;
// adjustment is valid for both.
type Reason string

const (
	ReasonPurchase   Reason = "purchase"
	ReasonDonation   Reason = "donation"
	ReasonReturn     Reason = "return"
	ReasonAdjustment Reason = "adjustment"
	ReasonLoss       Reason = "loss"
	ReasonOther      Reason = "other"
	ReasonDelivery   Reason = "delivery"
)

var reasonsByKind = map[MovementKind]map[Reason]struct{}{
	MovementEntry: {ReasonPurchase: {}, ReasonDonation: {}, ReasonReturn: {}, ReasonAdjustment: {}},
	MovementExit:  {ReasonLoss: {}, ReasonAdjustment: {}, ReasonOther: {}, ReasonDelivery: {}},
}

// ValidFor reports whether r may be used on a movement of kind k.
func (r Reason) ValidFor(k MovementKind) bool {
	_, ok := reasonsByKind[k][r]
	return ok
}

// Supply is a stocked item.
//
// Invariants:
//   - CurrentStock == Σ entry quantities − Σ exit quantities over its movements
//   - CurrentStock >= 0
//   - MinStock is a reporting threshold only; it never blocks a movement
type Supply struct {
	ID            id.SupplyID
	Name          string
	Unit          string
	Concentration string
	CategoryID    *id.CategoryID
	CurrentStock  int64
	MinStock      int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewSupply builds an empty supply. Stock only arrives through credits.
func NewSupply(supplyID id.SupplyID, name, unit string, minStock int64, now time.Time) (*Supply, error) {
	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "supply name cannot be empty")
	}
	if unit == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "supply unit cannot be empty")
	}
	if minStock < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "min stock cannot be negative")
	}
	return &Supply{
		ID:        supplyID,
		Name:      name,
		Unit:      unit,
		MinStock:  minStock,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsLow reports whether stock sits at or below the alert threshold.
func (s *Supply) IsLow() bool {
	return s.CurrentStock <= s.MinStock
}

// CanDebit checks the non-negativity guard. Call it while holding the row.
func (s *Supply) CanDebit(quantity int64) error {
	if quantity > s.CurrentStock {
		return dErrors.New(dErrors.CodeInsufficientStock, "insufficient stock").
			WithDetail("supply_id", s.ID.String()).
			WithDetail("available", s.CurrentStock).
			WithDetail("requested", quantity)
	}
	return nil
}

func (s *Supply) ApplyCredit(quantity int64, now time.Time) {
	s.CurrentStock += quantity
	s.UpdatedAt = now
}

// ApplyDebit decrements stock. Call CanDebit first.
func (s *Supply) ApplyDebit(quantity int64, now time.Time) {
	s.CurrentStock -= quantity
	s.UpdatedAt = now
}

// Movement is an immutable ledger entry.
type Movement struct {
	ID           id.MovementID
	SupplyID     id.SupplyID
	Kind         MovementKind
	Quantity     int64
	Reason       Reason
	OriginItemID *id.CaseItemID
	ActorID      id.UserID
	Notes        string
	CreatedAt    time.Time
}

// NewMovement validates and builds a movement.
func NewMovement(movementID id.MovementID, supplyID id.SupplyID, kind MovementKind, quantity int64, reason Reason, actorID id.UserID, notes string, origin *id.CaseItemID, now time.Time) (*Movement, error) {
	if kind != MovementEntry && kind != MovementExit {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown movement kind")
	}
	if quantity <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "movement quantity must be positive")
	}
	if !reason.ValidFor(kind) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "reason "+string(reason)+" is not valid for "+string(kind))
	}
	return &Movement{
		ID:           movementID,
		SupplyID:     supplyID,
		Kind:         kind,
		Quantity:     quantity,
		Reason:       reason,
		OriginItemID: origin,
		ActorID:      actorID,
		Notes:        strings.TrimSpace(notes),
		CreatedAt:    now,
	}, nil
}

// Signed returns +quantity for entries and −quantity for exits.
func (m *Movement) Signed() int64 {
	if m.Kind == MovementExit {
		return -m.Quantity
	}
	return m.Quantity
}

// ReconcileReport compares the cached counter with the ledger fold.
type ReconcileReport struct {
	SupplyID      id.SupplyID
	Cached        int64
	Derived       int64
	Entries       int64
	Exits         int64
	MovementCount int
	// NegativeAt is the index of the first movement after which the running
	// balance went below zero, or -1.
	NegativeAt int
}

func (r *ReconcileReport) Consistent() bool {
	return r.Cached == r.Derived && r.NegativeAt < 0
}

// Fold replays movements in order.
func Fold(supplyID id.SupplyID, cached int64, movements []*Movement) *ReconcileReport {
	report := &ReconcileReport{SupplyID: supplyID, Cached: cached, MovementCount: len(movements), NegativeAt: -1}
	var running int64
	for i, m := range movements {
		if m.Kind == MovementEntry {
			report.Entries += m.Quantity
		} else {
			report.Exits += m.Quantity
		}
		running += m.Signed()
		if running < 0 && report.NegativeAt < 0 {
			report.NegativeAt = i
		}
	}
	report.Derived = running
	return report
}
