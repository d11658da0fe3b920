package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "ayuda/pkg/domain"
	audit "ayuda/pkg/platform/audit"
	txcontext "ayuda/pkg/platform/tx"
)

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to the audit_events table and to the outbox in the
// caller's transaction (when one is present in the context); the outbox relay
// publishes them to Kafka afterwards.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// OutboxPayload is the JSON structure published to Kafka.
type OutboxPayload struct {
	ID          string            `json:"id"`
	Category    string            `json:"category"`
	Timestamp   string            `json:"timestamp"`
	ActorID     string            `json:"actor_id,omitempty"`
	SubjectType string            `json:"subject_type"`
	SubjectID   string            `json:"subject_id"`
	Action      string            `json:"action"`
	Reason      string            `json:"reason,omitempty"`
	RequestID   string            `json:"request_id,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Append writes an audit event to audit_events and the outbox.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}

	payload := OutboxPayload{
		ID:          eventID.String(),
		Category:    string(category),
		Timestamp:   event.Timestamp.Format(time.RFC3339Nano),
		SubjectType: string(event.SubjectType),
		SubjectID:   event.SubjectID,
		Action:      event.Action,
		Reason:      event.Reason,
		RequestID:   event.RequestID,
		Metadata:    event.Metadata,
	}
	var actorID *uuid.UUID
	if !event.ActorID.IsNil() {
		uid := uuid.UUID(event.ActorID)
		actorID = &uid
		payload.ActorID = uid.String()
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	metadataBytes, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}

	exec := txcontext.ExecutorFrom(ctx, s.db)
	_, err = exec.ExecContext(ctx, `
		INSERT INTO audit_events (
			id, category, timestamp, actor_id, subject_type, subject_id,
			action, reason, request_id, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		eventID,
		string(category),
		event.Timestamp,
		actorID,
		string(event.SubjectType),
		event.SubjectID,
		event.Action,
		event.Reason,
		event.RequestID,
		metadataBytes,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	_, err = exec.ExecContext(ctx, `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.New(),
		string(event.SubjectType),
		event.SubjectID,
		event.Action,
		payloadBytes,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// ListBySubject returns events for one subject, oldest first.
func (s *Store) ListBySubject(ctx context.Context, subjectType audit.SubjectType, subjectID string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, timestamp, actor_id, subject_type, subject_id,
			   action, reason, request_id, metadata
		FROM audit_events
		WHERE subject_type = $1 AND subject_id = $2
		ORDER BY timestamp ASC
	`, string(subjectType), subjectID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event       audit.Event
			category    string
			subjectKind string
			actorID     *uuid.UUID
			metadata    []byte
		)
		if err := rows.Scan(
			&category,
			&event.Timestamp,
			&actorID,
			&subjectKind,
			&event.SubjectID,
			&event.Action,
			&event.Reason,
			&event.RequestID,
			&metadata,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		event.SubjectType = audit.SubjectType(subjectKind)
		if actorID != nil {
			event.ActorID = id.UserID(*actorID)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
				return nil, fmt.Errorf("decode audit metadata: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

// FetchUnpublished returns up to limit outbox rows not yet published, oldest first.
func (s *Store) FetchUnpublished(ctx context.Context, limit int) ([]audit.OutboxEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []audit.OutboxEntry
	for rows.Next() {
		var e audit.OutboxEntry
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return entries, nil
}

// MarkPublished stamps the given outbox rows as published.
func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, len(ids))
	for i, v := range ids {
		raw[i] = v.String()
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE outbox SET published_at = $2 WHERE id = ANY($1::uuid[])`,
		pq.Array(raw), at)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
