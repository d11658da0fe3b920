package models

import (
	"strings"

	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
)

// TargetKind discriminates what a case item asks for.
type TargetKind string

const (
	TargetSupply  TargetKind = "supply"
	TargetService TargetKind = "service"
)

func (k TargetKind) IsValid() bool {
	return k == TargetSupply || k == TargetService
}

// Target is the tagged reference from a case item to the catalog. Exactly
// one of SupplyID and ServiceID is set, matching Kind. SubSpecialty only
// applies to services.
type Target struct {
	Kind         TargetKind
	SupplyID     id.SupplyID
	ServiceID    id.MedicalServiceID
	SubSpecialty string
}

func SupplyTarget(supplyID id.SupplyID) Target {
	return Target{Kind: TargetSupply, SupplyID: supplyID}
}

func ServiceTarget(serviceID id.MedicalServiceID, subSpecialty string) Target {
	return Target{Kind: TargetService, ServiceID: serviceID, SubSpecialty: strings.TrimSpace(subSpecialty)}
}

func (t Target) IsSupply() bool {
	return t.Kind == TargetSupply
}

// ID returns the referenced catalog identifier as a string.
func (t Target) ID() string {
	if t.Kind == TargetSupply {
		return t.SupplyID.String()
	}
	return t.ServiceID.String()
}

// Validate checks that the variant is well formed.
func (t Target) Validate() error {
	switch t.Kind {
	case TargetSupply:
		if t.SupplyID.IsNil() {
			return dErrors.New(dErrors.CodeValidation, "supply target requires a supply id")
		}
		if !t.ServiceID.IsNil() || t.SubSpecialty != "" {
			return dErrors.New(dErrors.CodeValidation, "supply target cannot reference a service")
		}
	case TargetService:
		if t.ServiceID.IsNil() {
			return dErrors.New(dErrors.CodeValidation, "service target requires a service id")
		}
		if !t.SupplyID.IsNil() {
			return dErrors.New(dErrors.CodeValidation, "service target cannot reference a supply")
		}
	default:
		return dErrors.New(dErrors.CodeValidation, "unknown target kind")
	}
	return nil
}
