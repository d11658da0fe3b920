package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"ayuda/internal/reference/models"
	"ayuda/internal/reference/store"
	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
	"ayuda/pkg/platform/sentinel"
	"ayuda/pkg/requestcontext"
)

// Service answers catalog lookups, citizen profile checks and capability
// checks for the workflow and ledger.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Citizen(ctx context.Context, citizenID id.CitizenID) (*models.Citizen, error) {
	c, err := s.store.FindCitizen(ctx, citizenID)
	if err != nil {
		return nil, translate(err, "citizen not found", "failed to load citizen")
	}
	return c, nil
}

func (s *Service) Category(ctx context.Context, categoryID id.CategoryID) (*models.Category, error) {
	c, err := s.store.FindCategory(ctx, categoryID)
	if err != nil {
		return nil, translate(err, "category not found", "failed to load category")
	}
	return c, nil
}

// TopLevelCategory walks up the parent chain. Cycles are reported as an
// internal error rather than looping.
func (s *Service) TopLevelCategory(ctx context.Context, categoryID id.CategoryID) (*models.Category, error) {
	current, err := s.Category(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	seen := map[id.CategoryID]struct{}{current.ID: {}}
	for !current.IsTopLevel() {
		parent, err := s.Category(ctx, *current.ParentID)
		if err != nil {
			return nil, err
		}
		if _, loop := seen[parent.ID]; loop {
			return nil, dErrors.New(dErrors.CodeInternal, "category hierarchy contains a cycle")
		}
		seen[parent.ID] = struct{}{}
		current = parent
	}
	return current, nil
}

func (s *Service) MedicalService(ctx context.Context, serviceID id.MedicalServiceID) (*models.MedicalService, error) {
	m, err := s.store.FindMedicalService(ctx, serviceID)
	if err != nil {
		return nil, translate(err, "medical service not found", "failed to load medical service")
	}
	return m, nil
}

func (s *Service) User(ctx context.Context, userID id.UserID) (*models.User, error) {
	u, err := s.store.FindUser(ctx, userID)
	if err != nil {
		return nil, translate(err, "user not found", "failed to load user")
	}
	return u, nil
}

var phonePattern = regexp.MustCompile(`^\+?[0-9 ()-]{6,20}$`)

// Validate lists everything missing from the citizen profile before a case
// can be opened. An empty result means the profile is complete.
func (s *Service) Validate(ctx context.Context, c *models.Citizen) []models.Issue {
	var issues []models.Issue
	if c == nil {
		return []models.Issue{{Field: "citizen", Message: "citizen profile is missing"}}
	}
	if strings.TrimSpace(c.DocumentNumber) == "" {
		issues = append(issues, models.Issue{Field: "document_number", Message: "document number is required"})
	}
	if strings.TrimSpace(c.FirstName) == "" {
		issues = append(issues, models.Issue{Field: "first_name", Message: "first name is required"})
	}
	if strings.TrimSpace(c.LastName) == "" {
		issues = append(issues, models.Issue{Field: "last_name", Message: "last name is required"})
	}
	switch {
	case c.BirthDate == nil:
		issues = append(issues, models.Issue{Field: "birth_date", Message: "birth date is required"})
	case c.BirthDate.After(requestcontext.Now(ctx)):
		issues = append(issues, models.Issue{Field: "birth_date", Message: "birth date is in the future"})
	}
	switch phone := strings.TrimSpace(c.Phone); {
	case phone == "":
		issues = append(issues, models.Issue{Field: "phone", Message: "contact phone is required"})
	case !phonePattern.MatchString(phone):
		issues = append(issues, models.Issue{Field: "phone", Message: "contact phone is malformed"})
	}
	if strings.TrimSpace(c.Address) == "" {
		issues = append(issues, models.Issue{Field: "address", Message: "address is required"})
	}
	if strings.TrimSpace(c.District) == "" {
		issues = append(issues, models.Issue{Field: "district", Message: "district is required"})
	}
	return issues
}

// Can reports whether the user holds the capability. Lookup failures deny.
func (s *Service) Can(ctx context.Context, userID id.UserID, capability models.Capability) bool {
	u, err := s.store.FindUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.ErrorContext(ctx, "capability lookup failed",
				"user_id", userID.String(),
				"capability", string(capability),
				"error", err,
			)
		}
		return false
	}
	return u.Has(capability)
}

func translate(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
}
