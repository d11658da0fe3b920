package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ayuda/internal/attachments/models"
	"ayuda/internal/platform/postgres"
	id "ayuda/pkg/domain"
	"ayuda/pkg/platform/sentinel"
	txcontext "ayuda/pkg/platform/tx"
)

// PostgresStore persists attachment metadata in case_attachments.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const attachmentColumns = `id, case_id, object_key, filename, content_type, size_bytes, uploaded_by, created_at, deleted_at`

func (s *PostgresStore) Create(ctx context.Context, a *models.Attachment) error {
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO case_attachments (`+attachmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL)`,
		uuid.UUID(a.ID), uuid.UUID(a.CaseID), a.ObjectKey, a.Filename, a.ContentType,
		a.SizeBytes, uuid.UUID(a.UploadedBy), a.CreatedAt,
	)
	if err != nil {
		switch {
		case postgres.IsCode(err, postgres.UniqueViolation):
			return sentinel.ErrConflict
		case postgres.IsCode(err, postgres.ForeignKeyViolation):
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, caseID id.CaseID, attachmentID id.AttachmentID) (*models.Attachment, error) {
	row := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+attachmentColumns+` FROM case_attachments
		WHERE id = $1 AND case_id = $2 AND deleted_at IS NULL`,
		uuid.UUID(attachmentID), uuid.UUID(caseID))
	return scanAttachment(row)
}

func (s *PostgresStore) ListByCase(ctx context.Context, caseID id.CaseID) ([]*models.Attachment, error) {
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, `
		SELECT `+attachmentColumns+` FROM case_attachments
		WHERE case_id = $1 AND deleted_at IS NULL
		ORDER BY created_at`, uuid.UUID(caseID))
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var out []*models.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attachments: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SoftDelete(ctx context.Context, attachmentID id.AttachmentID, at time.Time) error {
	res, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx,
		`UPDATE case_attachments SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		uuid.UUID(attachmentID), at)
	if err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttachment(row rowScanner) (*models.Attachment, error) {
	var (
		a                                models.Attachment
		attachmentID, caseID, uploadedBy uuid.UUID
		deletedAt                        sql.NullTime
	)
	err := row.Scan(&attachmentID, &caseID, &a.ObjectKey, &a.Filename, &a.ContentType,
		&a.SizeBytes, &uploadedBy, &a.CreatedAt, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan attachment: %w", err)
	}
	a.ID = id.AttachmentID(attachmentID)
	a.CaseID = id.CaseID(caseID)
	a.UploadedBy = id.UserID(uploadedBy)
	if deletedAt.Valid {
		t := deletedAt.Time
		a.DeletedAt = &t
	}
	return &a, nil
}
