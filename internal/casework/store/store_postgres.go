package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"ayuda/internal/casework/models"
	"ayuda/internal/platform/postgres"
	id "ayuda/pkg/domain"
	"ayuda/pkg/platform/sentinel"
	txcontext "ayuda/pkg/platform/tx"
)

const (
	activeCaseIndex      = "uq_social_cases_active"
	caseNumberConstraint = "social_cases_case_number_key"
)

// PostgresStore persists cases and items. Every statement joins the
// transaction carried by ctx when there is one.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const caseColumns = `id, case_number, applicant_id, beneficiary_id, category_id, subcategory_id, channel,
	description, status, created_by, assigned_to, rejection_reason, created_at, updated_at, deleted_at`

const itemColumns = `id, case_id, target_kind, supply_id, service_id, description, requested_quantity,
	approved_quantity, status, assigned_to, reviewed_by, review_note, fulfilled_by, fulfilled_at, created_at, updated_at`

func (s *PostgresStore) CreateCase(ctx context.Context, c *models.SocialCase) error {
	exec := txcontext.ExecutorFrom(ctx, s.db)
	_, err := exec.ExecContext(ctx, `
		INSERT INTO social_cases (`+caseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		uuid.UUID(c.ID), c.CaseNumber, uuid.UUID(c.ApplicantID), uuid.UUID(c.BeneficiaryID),
		uuid.UUID(c.CategoryID), nullCategory(c.SubcategoryID), string(c.Channel), c.Description,
		string(c.Status), uuid.UUID(c.CreatedBy), nullUser(c.AssignedTo), c.RejectionReason,
		c.CreatedAt, c.UpdatedAt, c.DeletedAt,
	)
	if err != nil {
		return translateWrite(err, "insert case")
	}
	for _, item := range c.Items {
		if err := insertItem(ctx, exec, item); err != nil {
			return err
		}
	}
	return nil
}

func insertItem(ctx context.Context, exec txcontext.Executor, item *models.CaseItem) error {
	var supplyID, serviceID any
	if item.Target.IsSupply() {
		supplyID = uuid.UUID(item.Target.SupplyID)
	} else {
		serviceID = uuid.UUID(item.Target.ServiceID)
	}
	_, err := exec.ExecContext(ctx, `
		INSERT INTO case_items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		uuid.UUID(item.ID), uuid.UUID(item.CaseID), string(item.Target.Kind), supplyID, serviceID,
		item.Description, item.RequestedQuantity, item.ApprovedQuantity, string(item.Status),
		nullUser(item.AssignedTo), nullUser(item.ReviewedBy), item.ReviewNote,
		nullUser(item.FulfilledBy), item.FulfilledAt, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return translateWrite(err, "insert case item")
	}
	return nil
}

func (s *PostgresStore) FindCase(ctx context.Context, caseID id.CaseID) (*models.SocialCase, error) {
	return s.findCase(ctx, caseID, "")
}

// FindCaseForUpdate locks the case row. Item mutations always lock their
// case first, so the case row guards its items too.
func (s *PostgresStore) FindCaseForUpdate(ctx context.Context, caseID id.CaseID) (*models.SocialCase, error) {
	return s.findCase(ctx, caseID, " FOR UPDATE")
}

func (s *PostgresStore) findCase(ctx context.Context, caseID id.CaseID, lock string) (*models.SocialCase, error) {
	exec := txcontext.ExecutorFrom(ctx, s.db)
	row := exec.QueryRowContext(ctx,
		`SELECT `+caseColumns+` FROM social_cases WHERE id = $1 AND deleted_at IS NULL`+lock, uuid.UUID(caseID))
	c, err := scanCase(row)
	if err != nil {
		return nil, err
	}
	items, err := s.loadItems(ctx, exec, []id.CaseID{c.ID})
	if err != nil {
		return nil, err
	}
	c.Items = items[c.ID]
	return c, nil
}

func (s *PostgresStore) FindCaseIDByItem(ctx context.Context, itemID id.CaseItemID) (id.CaseID, error) {
	var raw uuid.UUID
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT i.case_id FROM case_items i
		JOIN social_cases c ON c.id = i.case_id
		WHERE i.id = $1 AND c.deleted_at IS NULL`, uuid.UUID(itemID)).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return id.CaseID{}, sentinel.ErrNotFound
		}
		return id.CaseID{}, fmt.Errorf("find case by item: %w", err)
	}
	return id.CaseID(raw), nil
}

func (s *PostgresStore) FindActiveCase(ctx context.Context, beneficiaryID id.CitizenID, categoryID id.CategoryID) (*models.SocialCase, error) {
	row := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+caseColumns+` FROM social_cases
		WHERE beneficiary_id = $1 AND category_id = $2
		  AND status IN ('open', 'in_progress') AND deleted_at IS NULL
		LIMIT 1`, uuid.UUID(beneficiaryID), uuid.UUID(categoryID))
	return scanCase(row)
}

func (s *PostgresStore) UpdateCase(ctx context.Context, c *models.SocialCase) error {
	res, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		UPDATE social_cases
		SET status = $2, assigned_to = $3, rejection_reason = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL`,
		uuid.UUID(c.ID), string(c.Status), nullUser(c.AssignedTo), c.RejectionReason, c.UpdatedAt)
	if err != nil {
		return translateWrite(err, "update case")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateItems(ctx context.Context, items []*models.CaseItem) error {
	exec := txcontext.ExecutorFrom(ctx, s.db)
	for _, item := range items {
		res, err := exec.ExecContext(ctx, `
			UPDATE case_items
			SET approved_quantity = $2, status = $3, assigned_to = $4, reviewed_by = $5,
			    review_note = $6, fulfilled_by = $7, fulfilled_at = $8, updated_at = $9
			WHERE id = $1`,
			uuid.UUID(item.ID), item.ApprovedQuantity, string(item.Status), nullUser(item.AssignedTo),
			nullUser(item.ReviewedBy), item.ReviewNote, nullUser(item.FulfilledBy), item.FulfilledAt, item.UpdatedAt)
		if err != nil {
			return translateWrite(err, "update case item")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return sentinel.ErrNotFound
		}
	}
	return nil
}

func (s *PostgresStore) ListCases(ctx context.Context, filter models.ListFilter) ([]*models.SocialCase, error) {
	var (
		where = []string{"deleted_at IS NULL"}
		args  []any
	)
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, clause+" $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		add("status =", string(filter.Status))
	}
	if filter.AssignedTo != nil {
		add("assigned_to =", uuid.UUID(*filter.AssignedTo))
	}
	if filter.BeneficiaryID != nil {
		add("beneficiary_id =", uuid.UUID(*filter.BeneficiaryID))
	}
	args = append(args, filter.Limit, filter.Offset)
	query := `SELECT ` + caseColumns + ` FROM social_cases WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at DESC, case_number DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	exec := txcontext.ExecutorFrom(ctx, s.db)
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var (
		out []*models.SocialCase
		ids []id.CaseID
	)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	items, err := s.loadItems(ctx, exec, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range out {
		c.Items = items[c.ID]
	}
	return out, nil
}

func (s *PostgresStore) SoftDeleteCase(ctx context.Context, caseID id.CaseID, at time.Time) error {
	res, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx,
		`UPDATE social_cases SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		uuid.UUID(caseID), at)
	if err != nil {
		return fmt.Errorf("delete case: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) loadItems(ctx context.Context, exec txcontext.Executor, caseIDs []id.CaseID) (map[id.CaseID][]*models.CaseItem, error) {
	raw := make([]string, 0, len(caseIDs))
	for _, caseID := range caseIDs {
		raw = append(raw, caseID.String())
	}
	rows, err := exec.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM case_items WHERE case_id = ANY($1::uuid[]) ORDER BY created_at, id`,
		pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("load case items: %w", err)
	}
	defer rows.Close()

	out := make(map[id.CaseID][]*models.CaseItem, len(caseIDs))
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out[item.CaseID] = append(out[item.CaseID], item)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCase(row scanner) (*models.SocialCase, error) {
	var (
		c                                       models.SocialCase
		rawID, applicant, beneficiary, category uuid.UUID
		createdBy                               uuid.UUID
		subcategory, assignee                   uuid.NullUUID
		channel, status                         string
		deletedAt                               sql.NullTime
	)
	err := row.Scan(&rawID, &c.CaseNumber, &applicant, &beneficiary, &category, &subcategory, &channel,
		&c.Description, &status, &createdBy, &assignee, &c.RejectionReason, &c.CreatedAt, &c.UpdatedAt, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan case: %w", err)
	}
	c.ID = id.CaseID(rawID)
	c.ApplicantID = id.CitizenID(applicant)
	c.BeneficiaryID = id.CitizenID(beneficiary)
	c.CategoryID = id.CategoryID(category)
	c.CreatedBy = id.UserID(createdBy)
	c.Channel = models.Channel(channel)
	c.Status = models.CaseStatus(status)
	if subcategory.Valid {
		sub := id.CategoryID(subcategory.UUID)
		c.SubcategoryID = &sub
	}
	c.AssignedTo = userPtr(assignee)
	if deletedAt.Valid {
		at := deletedAt.Time
		c.DeletedAt = &at
	}
	return &c, nil
}

func scanItem(row scanner) (*models.CaseItem, error) {
	var (
		item                          models.CaseItem
		rawID, caseID                 uuid.UUID
		supplyID, serviceID           uuid.NullUUID
		assignee, reviewer, fulfiller uuid.NullUUID
		kind, status                  string
		approved                      sql.NullInt64
		fulfilledAt                   sql.NullTime
	)
	err := row.Scan(&rawID, &caseID, &kind, &supplyID, &serviceID, &item.Description, &item.RequestedQuantity,
		&approved, &status, &assignee, &reviewer, &item.ReviewNote, &fulfiller, &fulfilledAt, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan case item: %w", err)
	}
	item.ID = id.CaseItemID(rawID)
	item.CaseID = id.CaseID(caseID)
	item.Status = models.ItemStatus(status)
	switch models.TargetKind(kind) {
	case models.TargetSupply:
		item.Target = models.SupplyTarget(id.SupplyID(supplyID.UUID))
	case models.TargetService:
		item.Target = models.ServiceTarget(id.MedicalServiceID(serviceID.UUID), item.Description)
	default:
		return nil, fmt.Errorf("scan case item: unknown target kind %q", kind)
	}
	if approved.Valid {
		qty := approved.Int64
		item.ApprovedQuantity = &qty
	}
	item.AssignedTo = userPtr(assignee)
	item.ReviewedBy = userPtr(reviewer)
	item.FulfilledBy = userPtr(fulfiller)
	if fulfilledAt.Valid {
		at := fulfilledAt.Time
		item.FulfilledAt = &at
	}
	return &item, nil
}

// translateWrite maps constraint violations to store facts.
func translateWrite(err error, op string) error {
	switch {
	case postgres.IsCode(err, postgres.UniqueViolation):
		switch postgres.ConstraintName(err) {
		case activeCaseIndex:
			return ErrActiveCaseExists
		case caseNumberConstraint:
			return ErrCaseNumberTaken
		}
		return sentinel.ErrConflict
	case postgres.IsCode(err, postgres.CheckViolation):
		return sentinel.ErrInvalidState
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullUser(u *id.UserID) any {
	if u == nil {
		return nil
	}
	return uuid.UUID(*u)
}

func nullCategory(c *id.CategoryID) any {
	if c == nil {
		return nil
	}
	return uuid.UUID(*c)
}

func userPtr(n uuid.NullUUID) *id.UserID {
	if !n.Valid {
		return nil
	}
	u := id.UserID(n.UUID)
	return &u
}
