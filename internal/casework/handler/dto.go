package handler

import (
	"time"

	"ayuda/internal/casework/models"
	id "ayuda/pkg/domain"
)

type itemLineRequest struct {
	TargetKind   string `json:"target_kind" validate:"required,oneof=supply service"`
	SupplyID     string `json:"supply_id" validate:"required_if=TargetKind supply"`
	ServiceID    string `json:"service_id" validate:"required_if=TargetKind service"`
	SubSpecialty string `json:"sub_specialty" validate:"max=120"`
	Quantity     int64  `json:"quantity" validate:"gt=0"`
	Description  string `json:"description" validate:"max=500"`
}

type createCaseRequest struct {
	ApplicantID   string            `json:"applicant_id" validate:"required,uuid"`
	BeneficiaryID string            `json:"beneficiary_id" validate:"required,uuid"`
	CategoryID    string            `json:"category_id" validate:"required,uuid"`
	SubcategoryID string            `json:"subcategory_id" validate:"omitempty,uuid"`
	Channel       string            `json:"channel" validate:"required"`
	Description   string            `json:"description" validate:"max=2000"`
	Items         []itemLineRequest `json:"items" validate:"required,min=1,max=50,dive"`
}

func (r createCaseRequest) toModel() (models.CreateCaseRequest, error) {
	var (
		req models.CreateCaseRequest
		err error
	)
	if req.ApplicantID, err = id.ParseCitizenID(r.ApplicantID); err != nil {
		return req, err
	}
	if req.BeneficiaryID, err = id.ParseCitizenID(r.BeneficiaryID); err != nil {
		return req, err
	}
	if req.CategoryID, err = id.ParseCategoryID(r.CategoryID); err != nil {
		return req, err
	}
	if r.SubcategoryID != "" {
		sub, err := id.ParseCategoryID(r.SubcategoryID)
		if err != nil {
			return req, err
		}
		req.SubcategoryID = &sub
	}
	req.Channel = models.Channel(r.Channel)
	req.Description = r.Description
	for _, line := range r.Items {
		var target models.Target
		switch models.TargetKind(line.TargetKind) {
		case models.TargetSupply:
			supplyID, err := id.ParseSupplyID(line.SupplyID)
			if err != nil {
				return req, err
			}
			target = models.SupplyTarget(supplyID)
		default:
			serviceID, err := id.ParseMedicalServiceID(line.ServiceID)
			if err != nil {
				return req, err
			}
			target = models.ServiceTarget(serviceID, line.SubSpecialty)
		}
		req.Items = append(req.Items, models.ItemRequest{Target: target, Quantity: line.Quantity, Description: line.Description})
	}
	return req, nil
}

type assignRequest struct {
	AssigneeID string   `json:"assignee_id" validate:"required,uuid"`
	ItemIDs    []string `json:"item_ids" validate:"max=50,dive,uuid"`
}

type itemDecisionRequest struct {
	Decision         string `json:"decision" validate:"required,oneof=approved rejected"`
	ApprovedQuantity *int64 `json:"approved_quantity" validate:"omitempty,gte=0"`
	Note             string `json:"note" validate:"max=500"`
}

func (r itemDecisionRequest) toModel(itemID id.CaseItemID) models.ItemDecision {
	return models.ItemDecision{
		ItemID:           itemID,
		Decision:         models.ItemStatus(r.Decision),
		ApprovedQuantity: r.ApprovedQuantity,
		Note:             r.Note,
	}
}

type caseItemDecisionRequest struct {
	ItemID string `json:"item_id" validate:"required,uuid"`
	itemDecisionRequest
}

type reviewCaseRequest struct {
	Status string                    `json:"status" validate:"required,oneof=approved rejected closed"`
	Items  []caseItemDecisionRequest `json:"items" validate:"max=50,dive"`
}

type reasonRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type itemResponse struct {
	ID                string     `json:"id"`
	TargetKind        string     `json:"target_kind"`
	TargetID          string     `json:"target_id"`
	SubSpecialty      string     `json:"sub_specialty,omitempty"`
	Description       string     `json:"description,omitempty"`
	RequestedQuantity int64      `json:"requested_quantity"`
	ApprovedQuantity  *int64     `json:"approved_quantity,omitempty"`
	Status            string     `json:"status"`
	AssignedTo        string     `json:"assigned_to,omitempty"`
	ReviewedBy        string     `json:"reviewed_by,omitempty"`
	ReviewNote        string     `json:"review_note,omitempty"`
	FulfilledBy       string     `json:"fulfilled_by,omitempty"`
	FulfilledAt       *time.Time `json:"fulfilled_at,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type caseResponse struct {
	ID              string         `json:"id"`
	CaseNumber      string         `json:"case_number"`
	ApplicantID     string         `json:"applicant_id"`
	BeneficiaryID   string         `json:"beneficiary_id"`
	CategoryID      string         `json:"category_id"`
	SubcategoryID   string         `json:"subcategory_id,omitempty"`
	Channel         string         `json:"channel"`
	Description     string         `json:"description,omitempty"`
	Status          string         `json:"status"`
	CreatedBy       string         `json:"created_by"`
	AssignedTo      string         `json:"assigned_to,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	Items           []itemResponse `json:"items"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type itemResultResponse struct {
	Item          itemResponse `json:"item"`
	CaseNumber    string       `json:"case_number"`
	CaseStatus    string       `json:"case_status"`
	StatusChanged bool         `json:"status_changed"`
	MovementID    string       `json:"movement_id,omitempty"`
	StockSkipped  bool         `json:"stock_skipped,omitempty"`
}

func userString(u *id.UserID) string {
	if u == nil {
		return ""
	}
	return u.String()
}

func toItemResponse(item *models.CaseItem) itemResponse {
	return itemResponse{
		ID:                item.ID.String(),
		TargetKind:        string(item.Target.Kind),
		TargetID:          item.Target.ID(),
		SubSpecialty:      item.Target.SubSpecialty,
		Description:       item.Description,
		RequestedQuantity: item.RequestedQuantity,
		ApprovedQuantity:  item.ApprovedQuantity,
		Status:            string(item.Status),
		AssignedTo:        userString(item.AssignedTo),
		ReviewedBy:        userString(item.ReviewedBy),
		ReviewNote:        item.ReviewNote,
		FulfilledBy:       userString(item.FulfilledBy),
		FulfilledAt:       item.FulfilledAt,
		UpdatedAt:         item.UpdatedAt,
	}
}

func toCaseResponse(c *models.SocialCase) caseResponse {
	resp := caseResponse{
		ID:              c.ID.String(),
		CaseNumber:      c.CaseNumber,
		ApplicantID:     c.ApplicantID.String(),
		BeneficiaryID:   c.BeneficiaryID.String(),
		CategoryID:      c.CategoryID.String(),
		Channel:         string(c.Channel),
		Description:     c.Description,
		Status:          string(c.Status),
		CreatedBy:       c.CreatedBy.String(),
		AssignedTo:      userString(c.AssignedTo),
		RejectionReason: c.RejectionReason,
		Items:           make([]itemResponse, 0, len(c.Items)),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if c.SubcategoryID != nil {
		resp.SubcategoryID = c.SubcategoryID.String()
	}
	for _, item := range c.Items {
		resp.Items = append(resp.Items, toItemResponse(item))
	}
	return resp
}

func toItemResult(res *models.ItemResult) itemResultResponse {
	out := itemResultResponse{
		Item:          toItemResponse(res.Item),
		CaseNumber:    res.CaseNumber,
		CaseStatus:    string(res.CaseStatus),
		StatusChanged: res.StatusChanged,
		StockSkipped:  res.StockSkipped,
	}
	if res.MovementID != nil {
		out.MovementID = res.MovementID.String()
	}
	return out
}
