package models

import (
	"strings"

	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
)

const maxNotesLength = 1000

// CreditRequest adds stock.
type CreditRequest struct {
	SupplyID id.SupplyID
	Quantity int64
	Reason   Reason
	Notes    string
}

func (r *CreditRequest) Normalize() {
	r.Reason = Reason(strings.ToLower(strings.TrimSpace(string(r.Reason))))
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r *CreditRequest) Validate() error {
	return validateMovementRequest(r.SupplyID, r.Quantity, r.Reason, MovementEntry, r.Notes)
}

// DebitRequest removes stock. OriginItemID links a delivery to the case item
// that caused it.
type DebitRequest struct {
	SupplyID     id.SupplyID
	Quantity     int64
	Reason       Reason
	Notes        string
	OriginItemID *id.CaseItemID
}

func (r *DebitRequest) Normalize() {
	r.Reason = Reason(strings.ToLower(strings.TrimSpace(string(r.Reason))))
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r *DebitRequest) Validate() error {
	return validateMovementRequest(r.SupplyID, r.Quantity, r.Reason, MovementExit, r.Notes)
}

func validateMovementRequest(supplyID id.SupplyID, quantity int64, reason Reason, kind MovementKind, notes string) error {
	if supplyID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "supply_id is required")
	}
	if quantity <= 0 {
		return dErrors.New(dErrors.CodeValidation, "quantity must be greater than zero")
	}
	if !reason.ValidFor(kind) {
		return dErrors.New(dErrors.CodeValidation, "reason "+string(reason)+" is not valid for an "+string(kind))
	}
	if len(notes) > maxNotesLength {
		return dErrors.New(dErrors.CodeValidation, "notes must be 1000 characters or less")
	}
	return nil
}
