package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ayuda/internal/inventory/models"
	"ayuda/internal/platform/postgres"
	id "ayuda/pkg/domain"
	"ayuda/pkg/platform/sentinel"
	txcontext "ayuda/pkg/platform/tx"
)

// PostgresStore persists supplies and movements. Every statement joins the
// transaction carried by ctx when there is one.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const supplyColumns = `id, name, unit, concentration, category_id, current_stock, min_stock, created_at, updated_at`

func (s *PostgresStore) CreateSupply(ctx context.Context, supply *models.Supply) error {
	var category any
	if supply.CategoryID != nil {
		category = uuid.UUID(*supply.CategoryID)
	}
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO supplies (`+supplyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(supply.ID), supply.Name, supply.Unit, supply.Concentration, category,
		supply.CurrentStock, supply.MinStock, supply.CreatedAt, supply.UpdatedAt,
	)
	if err != nil {
		if postgres.IsCode(err, postgres.UniqueViolation) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert supply: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindSupply(ctx context.Context, supplyID id.SupplyID) (*models.Supply, error) {
	row := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+supplyColumns+` FROM supplies WHERE id = $1`, uuid.UUID(supplyID))
	return scanSupply(row)
}

// FindSupplyForUpdate takes the row lock that serializes concurrent debits.
// Only meaningful inside a transaction.
func (s *PostgresStore) FindSupplyForUpdate(ctx context.Context, supplyID id.SupplyID) (*models.Supply, error) {
	row := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+supplyColumns+` FROM supplies WHERE id = $1 FOR UPDATE`, uuid.UUID(supplyID))
	return scanSupply(row)
}

func (s *PostgresStore) UpdateStock(ctx context.Context, supplyID id.SupplyID, stock int64, at time.Time) error {
	res, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx,
		`UPDATE supplies SET current_stock = $2, updated_at = $3 WHERE id = $1`,
		uuid.UUID(supplyID), stock, at)
	if err != nil {
		if postgres.IsCode(err, postgres.CheckViolation) {
			return sentinel.ErrInvalidState
		}
		return fmt.Errorf("update stock: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AppendMovement(ctx context.Context, m *models.Movement) error {
	var origin any
	if m.OriginItemID != nil {
		origin = uuid.UUID(*m.OriginItemID)
	}
	_, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO stock_movements (id, supply_id, kind, quantity, reason, origin_item_id, actor_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(m.ID), uuid.UUID(m.SupplyID), string(m.Kind), m.Quantity, string(m.Reason),
		origin, uuid.UUID(m.ActorID), m.Notes, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMovements(ctx context.Context, supplyID id.SupplyID) ([]*models.Movement, error) {
	exec := txcontext.ExecutorFrom(ctx, s.db)
	var exists bool
	if err := exec.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM supplies WHERE id = $1)`, uuid.UUID(supplyID)).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check supply: %w", err)
	}
	if !exists {
		return nil, sentinel.ErrNotFound
	}

	rows, err := exec.QueryContext(ctx, `
		SELECT id, supply_id, kind, quantity, reason, origin_item_id, actor_id, notes, created_at
		FROM stock_movements
		WHERE supply_id = $1
		ORDER BY created_at, id`, uuid.UUID(supplyID))
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []*models.Movement
	for rows.Next() {
		var (
			m                     models.Movement
			rawID, rawSupply, act uuid.UUID
			origin                uuid.NullUUID
			kind, reason          string
		)
		if err := rows.Scan(&rawID, &rawSupply, &kind, &m.Quantity, &reason, &origin, &act, &m.Notes, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.ID = id.MovementID(rawID)
		m.SupplyID = id.SupplyID(rawSupply)
		m.ActorID = id.UserID(act)
		m.Kind = models.MovementKind(kind)
		m.Reason = models.Reason(reason)
		if origin.Valid {
			item := id.CaseItemID(origin.UUID)
			m.OriginItemID = &item
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListLowStock(ctx context.Context) ([]*models.Supply, error) {
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx,
		`SELECT `+supplyColumns+` FROM supplies WHERE current_stock <= min_stock ORDER BY current_stock, name`)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()

	var out []*models.Supply
	for rows.Next() {
		supply, err := scanSupply(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, supply)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSupply(row rowScanner) (*models.Supply, error) {
	var (
		supply   models.Supply
		rawID    uuid.UUID
		category uuid.NullUUID
	)
	err := row.Scan(&rawID, &supply.Name, &supply.Unit, &supply.Concentration, &category,
		&supply.CurrentStock, &supply.MinStock, &supply.CreatedAt, &supply.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan supply: %w", err)
	}
	supply.ID = id.SupplyID(rawID)
	if category.Valid {
		c := id.CategoryID(category.UUID)
		supply.CategoryID = &c
	}
	return &supply, nil
}
