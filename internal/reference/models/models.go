// Package models holds the read-only catalog the workflow consumes. The
// workflow never mutates these records.
package models

import (
	"strings"
	"time"

	id "ayuda/pkg/domain"
)

// Capability names an action a staff member may be granted.
type Capability string

const (
	CapabilityCreateCase  Capability = "case:create"
	CapabilityAssignCase  Capability = "case:assign"
	CapabilityReviewCase  Capability = "case:review"
	CapabilityFulfillItem Capability = "item:fulfill"
	CapabilityManageStock Capability = "stock:manage"
	CapabilityAttachFiles Capability = "case:attach"
)

// Category is a node in the aid category tree. Cases are deduplicated on the
// top-level category.
type Category struct {
	ID       id.CategoryID
	Name     string
	ParentID *id.CategoryID
}

func (c *Category) IsTopLevel() bool {
	return c.ParentID == nil
}

// MedicalService is a bookable service; SubSpecialties lists the accepted
// values for a case item's description.
type MedicalService struct {
	ID             id.MedicalServiceID
	Name           string
	SubSpecialties []string
}

// HasSubSpecialty matches case-insensitively. An empty name is always accepted.
func (m *MedicalService) HasSubSpecialty(name string) bool {
	if name == "" {
		return true
	}
	for _, s := range m.SubSpecialties {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// Citizen is the profile checked before a case is opened for them.
type Citizen struct {
	ID             id.CitizenID
	DocumentNumber string
	FirstName      string
	LastName       string
	BirthDate      *time.Time
	Phone          string
	Address        string
	District       string
}

func (c *Citizen) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// User is a staff member acting on cases.
type User struct {
	ID           id.UserID
	Name         string
	Email        string
	Capabilities []Capability
	Active       bool
}

func (u *User) Has(c Capability) bool {
	if !u.Active {
		return false
	}
	for _, have := range u.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// Issue is one reason a citizen profile is not eligible yet.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
