package models

import (
	"strings"

	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
)

const maxItemsPerCase = 50

// ItemRequest is one line of a new case.
type ItemRequest struct {
	Target      Target
	Quantity    int64
	Description string
}

// CreateCaseRequest carries everything needed to open a case.
type CreateCaseRequest struct {
	ApplicantID   id.CitizenID
	BeneficiaryID id.CitizenID
	CategoryID    id.CategoryID
	SubcategoryID *id.CategoryID
	Channel       Channel
	Description   string
	Items         []ItemRequest
}

func (r *CreateCaseRequest) Normalize() {
	r.Channel = Channel(strings.ToLower(strings.TrimSpace(string(r.Channel))))
	r.Description = strings.TrimSpace(r.Description)
	for i := range r.Items {
		r.Items[i].Description = strings.TrimSpace(r.Items[i].Description)
		r.Items[i].Target.SubSpecialty = strings.TrimSpace(r.Items[i].Target.SubSpecialty)
	}
}

func (r *CreateCaseRequest) Validate() error {
	if r.ApplicantID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "applicant_id is required")
	}
	if r.BeneficiaryID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "beneficiary_id is required")
	}
	if r.CategoryID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "category_id is required")
	}
	if r.SubcategoryID != nil && *r.SubcategoryID == r.CategoryID {
		return dErrors.New(dErrors.CodeValidation, "subcategory must differ from category")
	}
	if !r.Channel.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "channel is not recognised")
	}
	if len(r.Description) > maxDescription {
		return dErrors.New(dErrors.CodeValidation, "description must be 2000 characters or less")
	}
	if len(r.Items) == 0 {
		return dErrors.New(dErrors.CodeValidation, "a case needs at least one item")
	}
	if len(r.Items) > maxItemsPerCase {
		return dErrors.New(dErrors.CodeValidation, "a case holds at most 50 items")
	}
	for i, item := range r.Items {
		if err := item.Target.Validate(); err != nil {
			return withIndex(err, i)
		}
		if item.Quantity <= 0 {
			return withIndex(dErrors.New(dErrors.CodeValidation, "requested quantity must be positive"), i)
		}
		if len(item.Description) > maxItemDescription {
			return withIndex(dErrors.New(dErrors.CodeValidation, "item description must be 500 characters or less"), i)
		}
	}
	return nil
}

func withIndex(err error, index int) error {
	if de, ok := dErrors.As(err); ok {
		return de.WithDetail("item_index", index)
	}
	return err
}

// ItemDecision is one reviewer verdict on an item. ApprovedQuantity is
// ignored for rejections and defaults to the requested quantity for
// approvals.
type ItemDecision struct {
	ItemID           id.CaseItemID
	Decision         ItemStatus
	ApprovedQuantity *int64
	Note             string
}

func (d ItemDecision) Validate() error {
	if d.ItemID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "item_id is required")
	}
	if !d.Decision.IsDecision() {
		return dErrors.New(dErrors.CodeValidation, "decision must be approved or rejected")
	}
	if len(d.Note) > maxReasonLength {
		return dErrors.New(dErrors.CodeValidation, "note must be 500 characters or less")
	}
	return nil
}

// ValidGeneralStatus reports whether s may be set by a bulk review.
func ValidGeneralStatus(s CaseStatus) bool {
	return s == CaseStatusApproved || s == CaseStatusRejected || s == CaseStatusClosed
}

// ListFilter narrows case listings. Zero values mean no filter.
type ListFilter struct {
	Status        CaseStatus
	AssignedTo    *id.UserID
	BeneficiaryID *id.CitizenID
	Limit         int
	Offset        int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

func (f *ListFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

func (f ListFilter) Validate() error {
	if f.Status != "" && !f.Status.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown status filter")
	}
	return nil
}
