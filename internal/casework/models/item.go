package models

import (
	"strings"
	"time"

	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
)

const maxItemDescription = 500

// CaseItem is one requested unit of aid inside a case.
//
// Invariants:
//   - RequestedQuantity > 0 and never changes
//   - ApprovedQuantity is nil while pending, 0 when rejected and within
//     [0, RequestedQuantity] when approved or fulfilled
//   - fulfilled is final
//   - for service targets Description carries the chosen sub-specialty
type CaseItem struct {
	ID                id.CaseItemID
	CaseID            id.CaseID
	Target            Target
	Description       string
	RequestedQuantity int64
	ApprovedQuantity  *int64
	Status            ItemStatus
	AssignedTo        *id.UserID
	ReviewedBy        *id.UserID
	ReviewNote        string
	FulfilledBy       *id.UserID
	FulfilledAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func NewCaseItem(itemID id.CaseItemID, caseID id.CaseID, target Target, description string, requested int64, now time.Time) (*CaseItem, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if requested <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "requested quantity must be positive")
	}
	description = strings.TrimSpace(description)
	if target.Kind == TargetService && target.SubSpecialty != "" {
		description = target.SubSpecialty
	}
	if len(description) > maxItemDescription {
		return nil, dErrors.New(dErrors.CodeValidation, "item description must be 500 characters or less")
	}
	return &CaseItem{
		ID:                itemID,
		CaseID:            caseID,
		Target:            target,
		Description:       description,
		RequestedQuantity: requested,
		Status:            ItemStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// IsAssignedTo reports whether userID currently owns the item.
func (i *CaseItem) IsAssignedTo(userID id.UserID) bool {
	return i.AssignedTo != nil && *i.AssignedTo == userID
}

// DeliverableQuantity is what a fulfillment hands out: the approved
// quantity, or the requested quantity when none was recorded.
func (i *CaseItem) DeliverableQuantity() int64 {
	if i.ApprovedQuantity != nil {
		return *i.ApprovedQuantity
	}
	return i.RequestedQuantity
}

// CheckQuantities verifies the approved quantity against the status.
func (i *CaseItem) CheckQuantities() error {
	switch i.Status {
	case ItemStatusPending:
		if i.ApprovedQuantity != nil {
			return dErrors.New(dErrors.CodeInvariantViolation, "pending item cannot carry an approved quantity")
		}
	case ItemStatusRejected:
		if i.ApprovedQuantity == nil || *i.ApprovedQuantity != 0 {
			return dErrors.New(dErrors.CodeInvariantViolation, "rejected item must have approved quantity 0")
		}
	case ItemStatusApproved, ItemStatusFulfilled:
		if i.ApprovedQuantity == nil || *i.ApprovedQuantity < 0 || *i.ApprovedQuantity > i.RequestedQuantity {
			return dErrors.New(dErrors.CodeInvariantViolation, "approved quantity must be within the requested quantity")
		}
	default:
		return dErrors.New(dErrors.CodeInvariantViolation, "unknown item status")
	}
	return nil
}

// ApplyAssignment hands the item to userID.
func (i *CaseItem) ApplyAssignment(userID id.UserID, now time.Time) {
	assignee := userID
	i.AssignedTo = &assignee
	i.UpdatedAt = now
}

// CanReview checks that a review decision may still change the item.
func (i *CaseItem) CanReview() error {
	if i.Status == ItemStatusFulfilled {
		return dErrors.New(dErrors.CodeInvalidTransition, "item is already fulfilled").
			WithDetail("item_id", i.ID.String())
	}
	return nil
}

// ResolveApprovedQuantity applies the review quantity rules: a rejection
// forces 0; an approval defaults to the requested quantity and may not
// exceed it.
func (i *CaseItem) ResolveApprovedQuantity(decision ItemStatus, qty *int64) (int64, error) {
	switch decision {
	case ItemStatusRejected:
		return 0, nil
	case ItemStatusApproved:
		if qty == nil {
			return i.RequestedQuantity, nil
		}
		if *qty < 0 {
			return 0, dErrors.New(dErrors.CodeValidation, "approved quantity cannot be negative")
		}
		if *qty > i.RequestedQuantity {
			return 0, dErrors.New(dErrors.CodeValidation, "approved quantity exceeds requested quantity").
				WithDetail("requested", i.RequestedQuantity).
				WithDetail("approved", *qty)
		}
		return *qty, nil
	default:
		return 0, dErrors.New(dErrors.CodeValidation, "decision must be approved or rejected")
	}
}

// ApplyReview records a decision. Call CanReview and ResolveApprovedQuantity
// first.
func (i *CaseItem) ApplyReview(decision ItemStatus, approved int64, reviewer id.UserID, note string, now time.Time) {
	qty := approved
	by := reviewer
	i.Status = decision
	i.ApprovedQuantity = &qty
	i.ReviewedBy = &by
	i.ReviewNote = strings.TrimSpace(note)
	i.UpdatedAt = now
}

// ApplyCaseApproval marks the item approved as part of a whole-case
// approval. Items without a usable quantity get the requested quantity;
// fulfilled items are left alone.
func (i *CaseItem) ApplyCaseApproval(now time.Time) {
	switch i.Status {
	case ItemStatusFulfilled, ItemStatusApproved:
		return
	}
	qty := i.RequestedQuantity
	i.Status = ItemStatusApproved
	i.ApprovedQuantity = &qty
	i.UpdatedAt = now
}

// CanFulfill enforces that only approved items are delivered.
func (i *CaseItem) CanFulfill() error {
	if i.Status != ItemStatusApproved {
		return dErrors.New(dErrors.CodeInvalidTransition, "only approved items can be fulfilled").
			WithDetail("item_id", i.ID.String()).
			WithDetail("status", string(i.Status))
	}
	return nil
}

func (i *CaseItem) ApplyFulfillment(actor id.UserID, now time.Time) {
	by := actor
	at := now
	if i.ApprovedQuantity == nil {
		qty := i.RequestedQuantity
		i.ApprovedQuantity = &qty
	}
	i.Status = ItemStatusFulfilled
	i.FulfilledBy = &by
	i.FulfilledAt = &at
	i.UpdatedAt = now
}
