package models

import (
	"strings"
	"time"
	"unicode/utf8"

	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
)

const (
	minReasonLength = 10
	maxReasonLength = 500
	maxDescription  = 2000
)

// SocialCase is the aggregate root for one aid request.
//
// Invariants:
//   - CaseNumber is unique and never changes
//   - at most one open/in_progress case per (BeneficiaryID, CategoryID)
//   - CategoryID is a top-level category; SubcategoryID, when set, descends from it
//   - closed and rejected are terminal; only approved items of a closed case
//     may still be fulfilled
//   - closed implies every item is approved, rejected or fulfilled when the
//     status came from derivation
//   - DeletedAt hides the case from every read; cases are never removed
type SocialCase struct {
	ID              id.CaseID
	CaseNumber      string
	ApplicantID     id.CitizenID
	BeneficiaryID   id.CitizenID
	CategoryID      id.CategoryID
	SubcategoryID   *id.CategoryID
	Channel         Channel
	Description     string
	Status          CaseStatus
	CreatedBy       id.UserID
	AssignedTo      *id.UserID
	RejectionReason string
	Items           []*CaseItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

func NewSocialCase(
	caseID id.CaseID,
	caseNumber string,
	applicantID id.CitizenID,
	beneficiaryID id.CitizenID,
	categoryID id.CategoryID,
	subcategoryID *id.CategoryID,
	channel Channel,
	description string,
	createdBy id.UserID,
	now time.Time,
) (*SocialCase, error) {
	if !IsCaseNumber(caseNumber) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "malformed case number")
	}
	if applicantID.IsNil() || beneficiaryID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "applicant and beneficiary are required")
	}
	if categoryID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "category is required")
	}
	if !channel.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown channel")
	}
	if createdBy.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "creator is required")
	}
	return &SocialCase{
		ID:            caseID,
		CaseNumber:    caseNumber,
		ApplicantID:   applicantID,
		BeneficiaryID: beneficiaryID,
		CategoryID:    categoryID,
		SubcategoryID: subcategoryID,
		Channel:       channel,
		Description:   strings.TrimSpace(description),
		Status:        CaseStatusOpen,
		CreatedBy:     createdBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Item returns the item with itemID if it belongs to the case.
func (c *SocialCase) Item(itemID id.CaseItemID) (*CaseItem, bool) {
	for _, item := range c.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return nil, false
}

func (c *SocialCase) IsAssignedTo(userID id.UserID) bool {
	return c.AssignedTo != nil && *c.AssignedTo == userID
}

// CanMutateItems refuses changes once the case reached a terminal status.
func (c *SocialCase) CanMutateItems() error {
	if c.Status.IsTerminal() {
		return dErrors.New(dErrors.CodeInvalidTransition, "case is "+string(c.Status)).
			WithDetail("case_number", c.CaseNumber)
	}
	return nil
}

// CanFulfillItems allows delivery on a closed case, whose approved items
// still have to be handed out, but not on a rejected one.
func (c *SocialCase) CanFulfillItems() error {
	if c.Status == CaseStatusRejected {
		return dErrors.New(dErrors.CodeInvalidTransition, "case is rejected").
			WithDetail("case_number", c.CaseNumber)
	}
	return nil
}

// ApplyCaseAssignment makes assignee the case owner, starts work on the
// case and hands every unassigned item to the same user. Items owned by
// someone else keep their owner. Returns the items that changed hands.
func (c *SocialCase) ApplyCaseAssignment(assignee id.UserID, now time.Time) []*CaseItem {
	owner := assignee
	c.AssignedTo = &owner
	c.Status = CaseStatusInProgress
	c.UpdatedAt = now

	var changed []*CaseItem
	for _, item := range c.Items {
		if item.AssignedTo != nil {
			continue
		}
		item.ApplyAssignment(assignee, now)
		changed = append(changed, item)
	}
	return changed
}

// ApplyItemAssignment hands exactly the listed items to assignee. Every id
// must belong to the case. An open case moves to in_progress.
func (c *SocialCase) ApplyItemAssignment(assignee id.UserID, itemIDs []id.CaseItemID, now time.Time) ([]*CaseItem, error) {
	items := make([]*CaseItem, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		item, ok := c.Item(itemID)
		if !ok {
			return nil, dErrors.New(dErrors.CodeNotFound, "item does not belong to case").
				WithDetail("item_id", itemID.String())
		}
		items = append(items, item)
	}
	for _, item := range items {
		item.ApplyAssignment(assignee, now)
	}
	if c.Status == CaseStatusOpen {
		c.Status = CaseStatusInProgress
	}
	c.UpdatedAt = now
	return items, nil
}

// CanDecide restricts whole-case decisions to the case assignee.
func (c *SocialCase) CanDecide(actor id.UserID) error {
	if err := c.CanMutateItems(); err != nil {
		return err
	}
	if !c.IsAssignedTo(actor) {
		return dErrors.New(dErrors.CodeForbidden, "only the case assignee can decide the case")
	}
	return nil
}

// ApplyApproval approves the case and every item still open to approval.
func (c *SocialCase) ApplyApproval(now time.Time) {
	c.Status = CaseStatusApproved
	c.UpdatedAt = now
	for _, item := range c.Items {
		item.ApplyCaseApproval(now)
	}
}

// ApplyRejection rejects the case. Call ValidateReason first.
func (c *SocialCase) ApplyRejection(reason string, now time.Time) {
	c.Status = CaseStatusRejected
	c.RejectionReason = reason
	c.UpdatedAt = now
}

// ApplyStatus sets status and reports whether it changed.
func (c *SocialCase) ApplyStatus(status CaseStatus, now time.Time) bool {
	if c.Status == status {
		return false
	}
	c.Status = status
	c.UpdatedAt = now
	return true
}

// ValidateReason trims reason and checks its length in characters.
func ValidateReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	n := utf8.RuneCountInString(reason)
	if n < minReasonLength || n > maxReasonLength {
		return "", dErrors.New(dErrors.CodeValidation, "reason must be between 10 and 500 characters").
			WithDetail("length", n)
	}
	return reason, nil
}
