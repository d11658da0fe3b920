package store

import (
	"context"

	"ayuda/internal/reference/models"
	id "ayuda/pkg/domain"
)

// Store is the read surface of the reference catalog. Lookups of unknown ids
// return sentinel.ErrNotFound.
type Store interface {
	FindCitizen(ctx context.Context, citizenID id.CitizenID) (*models.Citizen, error)
	FindCategory(ctx context.Context, categoryID id.CategoryID) (*models.Category, error)
	FindMedicalService(ctx context.Context, serviceID id.MedicalServiceID) (*models.MedicalService, error)
	FindUser(ctx context.Context, userID id.UserID) (*models.User, error)
}
