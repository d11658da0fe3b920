package audit

import (
	"context"
	"time"

	id "ayuda/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryCompliance covers decisions with accountability significance:
	// approvals, rejections, deliveries and stock movements.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine workflow activity such as assignment
	// and status reconciliation.
	CategoryOperations EventCategory = "operations"
)

// SubjectType names the kind of record an event is about.
type SubjectType string

const (
	SubjectCase       SubjectType = "social_case"
	SubjectCaseItem   SubjectType = "case_item"
	SubjectSupply     SubjectType = "supply"
	SubjectMovement   SubjectType = "stock_movement"
	SubjectAttachment SubjectType = "attachment"
)

// Event is emitted from domain logic after each state change. It is
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category    EventCategory
	Timestamp   time.Time
	ActorID     id.UserID
	SubjectType SubjectType
	SubjectID   string
	Action      string
	Reason      string
	RequestID   string
	// Metadata carries before/after values and other context for the action,
	// e.g. {"from_status": "open", "to_status": "in_progress"}.
	Metadata map[string]string
}

// Store persists audit events. Append is the only write.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subjectType SubjectType, subjectID string) ([]Event, error)
}

type AuditEvent string

const (
	// Case events
	EventCaseCreated        AuditEvent = "case_created"
	EventCaseAssigned       AuditEvent = "case_assigned"
	EventCaseItemsAssigned  AuditEvent = "case_items_assigned"
	EventCaseReviewed       AuditEvent = "case_reviewed"
	EventCaseApproved       AuditEvent = "case_approved"
	EventCaseRejected       AuditEvent = "case_rejected"
	EventCaseStatusDerived  AuditEvent = "case_status_reconciled"
	EventCaseDeleted        AuditEvent = "case_deleted"
	EventAttachmentUploaded AuditEvent = "attachment_uploaded"
	EventAttachmentDeleted  AuditEvent = "attachment_deleted"

	// Item events
	EventItemReviewed  AuditEvent = "item_reviewed"
	EventItemApproved  AuditEvent = "item_approved"
	EventItemRejected  AuditEvent = "item_rejected"
	EventItemFulfilled AuditEvent = "item_fulfilled"

	// Ledger events
	EventStockCredited     AuditEvent = "stock_credited"
	EventStockDebited      AuditEvent = "stock_debited"
	EventStockDebitSkipped AuditEvent = "stock_debit_skipped"
	EventStockRepaired     AuditEvent = "stock_repaired"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventCaseCreated:       CategoryCompliance,
	EventCaseReviewed:      CategoryCompliance,
	EventCaseApproved:      CategoryCompliance,
	EventCaseRejected:      CategoryCompliance,
	EventCaseDeleted:       CategoryCompliance,
	EventItemReviewed:      CategoryCompliance,
	EventItemApproved:      CategoryCompliance,
	EventItemRejected:      CategoryCompliance,
	EventItemFulfilled:     CategoryCompliance,
	EventStockCredited:     CategoryCompliance,
	EventStockDebited:      CategoryCompliance,
	EventStockDebitSkipped: CategoryCompliance,
	EventStockRepaired:     CategoryCompliance,

	EventCaseAssigned:       CategoryOperations,
	EventCaseItemsAssigned:  CategoryOperations,
	EventCaseStatusDerived:  CategoryOperations,
	EventAttachmentUploaded: CategoryOperations,
	EventAttachmentDeleted:  CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
