package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"ayuda/internal/reference/models"
	id "ayuda/pkg/domain"
	"ayuda/pkg/platform/sentinel"
	txcontext "ayuda/pkg/platform/tx"
)

// PostgresStore reads the catalog tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindCitizen(ctx context.Context, citizenID id.CitizenID) (*models.Citizen, error) {
	var (
		c         models.Citizen
		rawID     uuid.UUID
		birthDate sql.NullTime
	)
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, document_number, first_name, last_name, birth_date, phone, address, district
		FROM citizens WHERE id = $1`, uuid.UUID(citizenID),
	).Scan(&rawID, &c.DocumentNumber, &c.FirstName, &c.LastName, &birthDate, &c.Phone, &c.Address, &c.District)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find citizen: %w", err)
	}
	c.ID = id.CitizenID(rawID)
	if birthDate.Valid {
		t := birthDate.Time
		c.BirthDate = &t
	}
	return &c, nil
}

func (s *PostgresStore) FindCategory(ctx context.Context, categoryID id.CategoryID) (*models.Category, error) {
	var (
		rawID  uuid.UUID
		parent uuid.NullUUID
		c      models.Category
	)
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, name, parent_id FROM categories WHERE id = $1`, uuid.UUID(categoryID),
	).Scan(&rawID, &c.Name, &parent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	c.ID = id.CategoryID(rawID)
	if parent.Valid {
		p := id.CategoryID(parent.UUID)
		c.ParentID = &p
	}
	return &c, nil
}

func (s *PostgresStore) FindMedicalService(ctx context.Context, serviceID id.MedicalServiceID) (*models.MedicalService, error) {
	var (
		rawID uuid.UUID
		m     models.MedicalService
	)
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, name, sub_specialties FROM medical_services WHERE id = $1`, uuid.UUID(serviceID),
	).Scan(&rawID, &m.Name, pq.Array(&m.SubSpecialties))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find medical service: %w", err)
	}
	m.ID = id.MedicalServiceID(rawID)
	return &m, nil
}

func (s *PostgresStore) FindUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	var (
		rawID uuid.UUID
		caps  []string
		u     models.User
	)
	err := txcontext.ExecutorFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, name, email, capabilities, active FROM users WHERE id = $1`, uuid.UUID(userID),
	).Scan(&rawID, &u.Name, &u.Email, pq.Array(&caps), &u.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.ID = id.UserID(rawID)
	for _, c := range caps {
		u.Capabilities = append(u.Capabilities, models.Capability(c))
	}
	return &u, nil
}
