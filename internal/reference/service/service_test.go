package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"ayuda/internal/reference/models"
	"ayuda/internal/reference/store"
	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
	"ayuda/pkg/requestcontext"
)

type ReferenceServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	service *Service
	ctx     context.Context
}

func TestReferenceServiceSuite(t *testing.T) {
	suite.Run(t, new(ReferenceServiceSuite))
}

func (s *ReferenceServiceSuite) SetupTest() {
	s.store = store.NewInMemoryStore()
	s.service = New(s.store)
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
}

func completeCitizen() models.Citizen {
	birth := time.Date(1980, 5, 4, 0, 0, 0, 0, time.UTC)
	return models.Citizen{
		ID:             id.CitizenID(uuid.New()),
		DocumentNumber: "0912345678",
		FirstName:      "Ana",
		LastName:       "Paredes",
		BirthDate:      &birth,
		Phone:          "+593 99 123 4567",
		Address:        "Av. Central 12",
		District:       "Norte",
	}
}

// -----------------------------------------------------------------------------
// Profile validation
// -----------------------------------------------------------------------------

func (s *ReferenceServiceSuite) TestValidate() {
	s.Run("complete profile has no issues", func() {
		c := completeCitizen()
		s.Empty(s.service.Validate(s.ctx, &c))
	})

	s.Run("every missing field is reported", func() {
		c := models.Citizen{ID: id.CitizenID(uuid.New())}
		issues := s.service.Validate(s.ctx, &c)
		fields := make([]string, 0, len(issues))
		for _, i := range issues {
			fields = append(fields, i.Field)
		}
		s.ElementsMatch([]string{"document_number", "first_name", "last_name", "birth_date", "phone", "address", "district"}, fields)
	})

	s.Run("future birth date and malformed phone", func() {
		c := completeCitizen()
		future := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		c.BirthDate = &future
		c.Phone = "call me"
		issues := s.service.Validate(s.ctx, &c)
		s.Len(issues, 2)
	})
}

// -----------------------------------------------------------------------------
// Capabilities
// -----------------------------------------------------------------------------

func (s *ReferenceServiceSuite) TestCan() {
	active := models.User{ID: id.UserID(uuid.New()), Active: true, Capabilities: []models.Capability{models.CapabilityAssignCase}}
	inactive := models.User{ID: id.UserID(uuid.New()), Active: false, Capabilities: []models.Capability{models.CapabilityAssignCase}}
	s.store.PutUser(active)
	s.store.PutUser(inactive)

	s.True(s.service.Can(s.ctx, active.ID, models.CapabilityAssignCase))
	s.False(s.service.Can(s.ctx, active.ID, models.CapabilityManageStock))
	s.False(s.service.Can(s.ctx, inactive.ID, models.CapabilityAssignCase))
	s.False(s.service.Can(s.ctx, id.UserID(uuid.New()), models.CapabilityAssignCase))
}

// -----------------------------------------------------------------------------
// Catalog lookups
// -----------------------------------------------------------------------------

func (s *ReferenceServiceSuite) TestTopLevelCategory() {
	root := models.Category{ID: id.CategoryID(uuid.New()), Name: "Salud"}
	child := models.Category{ID: id.CategoryID(uuid.New()), Name: "Medicamentos", ParentID: &root.ID}
	grandchild := models.Category{ID: id.CategoryID(uuid.New()), Name: "Insulina", ParentID: &child.ID}
	s.store.PutCategory(root)
	s.store.PutCategory(child)
	s.store.PutCategory(grandchild)

	s.Run("walks to the root", func() {
		top, err := s.service.TopLevelCategory(s.ctx, grandchild.ID)
		s.Require().NoError(err)
		s.Equal(root.ID, top.ID)
	})

	s.Run("unknown category is not found", func() {
		_, err := s.service.TopLevelCategory(s.ctx, id.CategoryID(uuid.New()))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("cycle is an internal error", func() {
		a := id.CategoryID(uuid.New())
		b := id.CategoryID(uuid.New())
		s.store.PutCategory(models.Category{ID: a, ParentID: &b})
		s.store.PutCategory(models.Category{ID: b, ParentID: &a})
		_, err := s.service.TopLevelCategory(s.ctx, a)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ReferenceServiceSuite) TestMedicalServiceSubSpecialty() {
	svc := models.MedicalService{ID: id.MedicalServiceID(uuid.New()), Name: "Consulta", SubSpecialties: []string{"Cardiología"}}
	s.store.PutMedicalService(svc)

	found, err := s.service.MedicalService(s.ctx, svc.ID)
	s.Require().NoError(err)
	s.True(found.HasSubSpecialty("cardiología"))
	s.True(found.HasSubSpecialty(""))
	s.False(found.HasSubSpecialty("Dermatología"))
}
