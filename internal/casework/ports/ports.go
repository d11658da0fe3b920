//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// Package ports defines the collaborators the case workflow depends on.
// Adapters in the sibling package bind them to the reference catalog and the
// stock ledger running in the same process.
package ports

import (
	"context"

	"ayuda/internal/casework/models"
	id "ayuda/pkg/domain"
	"ayuda/pkg/platform/audit"
)

// Capability mirrors the reference catalog capability names the workflow
// checks.
type Capability string

const (
	CapabilityCreateCase  Capability = "case:create"
	CapabilityAssignCase  Capability = "case:assign"
	CapabilityReviewCase  Capability = "case:review"
	CapabilityFulfillItem Capability = "item:fulfill"
)

// ProfileIssue is one reason the beneficiary is not yet eligible.
type ProfileIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ProfileValidator checks that a citizen profile is complete enough to open
// a case. An empty slice means eligible; an error means the check itself
// failed.
type ProfileValidator interface {
	Validate(ctx context.Context, citizenID id.CitizenID) ([]ProfileIssue, error)
}

// PermissionGate answers capability checks. It never errors; lookup
// failures deny.
type PermissionGate interface {
	Can(ctx context.Context, userID id.UserID, capability Capability) bool
}

// Catalog resolves references a new case makes into the read-only catalog.
type Catalog interface {
	// CheckCategory verifies categoryID is a top-level category and, when
	// given, that subcategoryID sits somewhere below it.
	CheckCategory(ctx context.Context, categoryID id.CategoryID, subcategoryID *id.CategoryID) error

	// CheckTarget verifies the item target exists and, for services, that the
	// sub-specialty is offered.
	CheckTarget(ctx context.Context, target models.Target) error
}

// StockLedger is the slice of the ledger the workflow drives on delivery.
type StockLedger interface {
	// DeliverItem debits quantity units of supplyID with reason delivery,
	// linking the movement to itemID. It joins the transaction in ctx when
	// there is one.
	DeliverItem(ctx context.Context, actorID id.UserID, supplyID id.SupplyID, itemID id.CaseItemID, quantity int64) (*Delivery, error)
}

// Delivery summarises the movement a fulfillment produced.
type Delivery struct {
	MovementID id.MovementID
	StockAfter int64
}

// AuditPublisher emits audit events for case and item state changes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Locker serializes work on a key across instances. The release func must
// be called once the critical section ends.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(context.Context), error)
}
