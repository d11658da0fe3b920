package adapters

import (
	"context"

	"ayuda/internal/casework/models"
	"ayuda/internal/casework/ports"
	refmodels "ayuda/internal/reference/models"
	refService "ayuda/internal/reference/service"
	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
)

// ReferenceAdapter binds the workflow's profile, permission and catalog ports
// to the in-process reference service.
type ReferenceAdapter struct {
	reference *refService.Service
	supplies  SupplyLookup
}

// SupplyLookup confirms a supply exists. The ledger owns supply rows.
type SupplyLookup interface {
	SupplyExists(ctx context.Context, supplyID id.SupplyID) error
}

func NewReferenceAdapter(reference *refService.Service, supplies SupplyLookup) *ReferenceAdapter {
	return &ReferenceAdapter{reference: reference, supplies: supplies}
}

var (
	_ ports.ProfileValidator = (*ReferenceAdapter)(nil)
	_ ports.PermissionGate   = (*ReferenceAdapter)(nil)
	_ ports.Catalog          = (*ReferenceAdapter)(nil)
)

func (a *ReferenceAdapter) Validate(ctx context.Context, citizenID id.CitizenID) ([]ports.ProfileIssue, error) {
	citizen, err := a.reference.Citizen(ctx, citizenID)
	if err != nil {
		return nil, err
	}
	issues := a.reference.Validate(ctx, citizen)
	out := make([]ports.ProfileIssue, 0, len(issues))
	for _, issue := range issues {
		out = append(out, ports.ProfileIssue{Field: issue.Field, Message: issue.Message})
	}
	return out, nil
}

func (a *ReferenceAdapter) Can(ctx context.Context, userID id.UserID, capability ports.Capability) bool {
	return a.reference.Can(ctx, userID, refmodels.Capability(capability))
}

func (a *ReferenceAdapter) CheckCategory(ctx context.Context, categoryID id.CategoryID, subcategoryID *id.CategoryID) error {
	category, err := a.reference.Category(ctx, categoryID)
	if err != nil {
		return err
	}
	if !category.IsTopLevel() {
		return dErrors.New(dErrors.CodeValidation, "category must be a top-level category").
			WithDetail("category_id", categoryID.String())
	}
	if subcategoryID == nil {
		return nil
	}
	root, err := a.reference.TopLevelCategory(ctx, *subcategoryID)
	if err != nil {
		return err
	}
	if *subcategoryID == categoryID || root.ID != categoryID {
		return dErrors.New(dErrors.CodeValidation, "subcategory does not belong to category").
			WithDetail("subcategory_id", subcategoryID.String())
	}
	return nil
}

func (a *ReferenceAdapter) CheckTarget(ctx context.Context, target models.Target) error {
	switch target.Kind {
	case models.TargetSupply:
		return a.supplies.SupplyExists(ctx, target.SupplyID)
	case models.TargetService:
		service, err := a.reference.MedicalService(ctx, target.ServiceID)
		if err != nil {
			return err
		}
		if !service.HasSubSpecialty(target.SubSpecialty) {
			return dErrors.New(dErrors.CodeValidation, "sub-specialty is not offered by "+service.Name).
				WithDetail("service_id", target.ServiceID.String())
		}
		return nil
	default:
		return dErrors.New(dErrors.CodeValidation, "unknown target kind")
	}
}
