package audit

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEntry is a persisted audit event awaiting publication to the
// message broker.
type OutboxEntry struct {
	ID          uuid.UUID
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}
