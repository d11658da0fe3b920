package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "ayuda/pkg/domain-errors"
)

// Typed identifiers. Each is a distinct named type over uuid.UUID so a CaseID can
// never be passed where a SupplyID is expected.
type (
	UserID           uuid.UUID
	CitizenID        uuid.UUID
	CategoryID       uuid.UUID
	CaseID           uuid.UUID
	CaseItemID       uuid.UUID
	SupplyID         uuid.UUID
	MedicalServiceID uuid.UUID
	MovementID       uuid.UUID
	AttachmentID     uuid.UUID
)

func (id UserID) String() string           { return uuid.UUID(id).String() }
func (id CitizenID) String() string        { return uuid.UUID(id).String() }
func (id CategoryID) String() string       { return uuid.UUID(id).String() }
func (id CaseID) String() string           { return uuid.UUID(id).String() }
func (id CaseItemID) String() string       { return uuid.UUID(id).String() }
func (id SupplyID) String() string         { return uuid.UUID(id).String() }
func (id MedicalServiceID) String() string { return uuid.UUID(id).String() }
func (id MovementID) String() string       { return uuid.UUID(id).String() }
func (id AttachmentID) String() string     { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool           { return uuid.UUID(id) == uuid.Nil }
func (id CitizenID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id CategoryID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id CaseID) IsNil() bool           { return uuid.UUID(id) == uuid.Nil }
func (id CaseItemID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id SupplyID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id MedicalServiceID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id MovementID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id AttachmentID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

// parseUUID is the single trust-boundary parser behind every Parse* function.
// Rejects empty input, malformed UUIDs and the nil UUID.
func parseUUID(s, label string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return parsed, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user_id")
	return UserID(u), err
}

func ParseCitizenID(s string) (CitizenID, error) {
	u, err := parseUUID(s, "citizen_id")
	return CitizenID(u), err
}

func ParseCategoryID(s string) (CategoryID, error) {
	u, err := parseUUID(s, "category_id")
	return CategoryID(u), err
}

func ParseCaseID(s string) (CaseID, error) {
	u, err := parseUUID(s, "case_id")
	return CaseID(u), err
}

func ParseCaseItemID(s string) (CaseItemID, error) {
	u, err := parseUUID(s, "item_id")
	return CaseItemID(u), err
}

func ParseSupplyID(s string) (SupplyID, error) {
	u, err := parseUUID(s, "supply_id")
	return SupplyID(u), err
}

func ParseMedicalServiceID(s string) (MedicalServiceID, error) {
	u, err := parseUUID(s, "service_id")
	return MedicalServiceID(u), err
}

func ParseAttachmentID(s string) (AttachmentID, error) {
	u, err := parseUUID(s, "attachment_id")
	return AttachmentID(u), err
}
