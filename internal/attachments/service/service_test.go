package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ayuda/internal/attachments/blob"
	"ayuda/internal/attachments/service/mocks"
	"ayuda/internal/attachments/store"
	refmodels "ayuda/internal/reference/models"
	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
	"ayuda/pkg/platform/audit"
	"ayuda/pkg/platform/sentinel"
	"ayuda/pkg/requestcontext"
)

type AttachmentSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	cases   *mocks.MockCaseLookup
	gate    *mocks.MockPermissionGate
	audit   *mocks.MockAuditPublisher
	store   *store.InMemoryStore
	objects *blob.MemoryStore
	service *Service
	actor   id.UserID
	caseID  id.CaseID
	ctx     context.Context
}

func TestAttachmentSuite(t *testing.T) {
	suite.Run(t, new(AttachmentSuite))
}

func (s *AttachmentSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.cases = mocks.NewMockCaseLookup(s.ctrl)
	s.gate = mocks.NewMockPermissionGate(s.ctrl)
	s.audit = mocks.NewMockAuditPublisher(s.ctrl)
	s.store = store.NewInMemoryStore()
	s.objects = blob.NewMemoryStore()
	s.actor = id.UserID(uuid.New())
	s.caseID = id.CaseID(uuid.New())
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC))

	svc, err := New(s.store, s.objects, s.cases, s.gate, WithAuditPublisher(s.audit), WithURLExpiry(time.Minute))
	s.Require().NoError(err)
	s.service = svc
}

func (s *AttachmentSuite) allow() {
	s.gate.EXPECT().Can(gomock.Any(), s.actor, refmodels.CapabilityAttachFiles).Return(true).AnyTimes()
}

func (s *AttachmentSuite) upload(body string) (*Document, error) {
	return s.service.Upload(s.ctx, s.actor, s.caseID, Upload{
		Filename: "cedula.png", ContentType: "image/png", Size: int64(len(body)), Body: strings.NewReader(body),
	})
}

func (s *AttachmentSuite) TestUpload() {
	s.allow()
	s.cases.EXPECT().CaseExists(gomock.Any(), s.caseID).Return(nil).Times(2)
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventAttachmentUploaded), e.Action)
			s.Equal(s.caseID.String(), e.Metadata["case_id"])
			return nil
		})

	doc, err := s.upload("png-bytes")
	s.Require().NoError(err)
	s.Equal("cedula.png", doc.Filename)
	s.Contains(doc.URL, doc.ObjectKey)

	stored, ok := s.objects.Object(doc.ObjectKey)
	s.Require().True(ok)
	s.Equal("png-bytes", string(stored))

	docs, err := s.service.List(s.ctx, s.caseID)
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.Equal(doc.ID, docs[0].ID)
}

func (s *AttachmentSuite) TestUpload_Refusals() {
	s.Run("missing capability", func() {
		s.gate.EXPECT().Can(gomock.Any(), s.actor, refmodels.CapabilityAttachFiles).Return(false)
		_, err := s.upload("x")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("unknown case", func() {
		s.gate.EXPECT().Can(gomock.Any(), s.actor, refmodels.CapabilityAttachFiles).Return(true)
		s.cases.EXPECT().CaseExists(gomock.Any(), s.caseID).Return(dErrors.New(dErrors.CodeNotFound, "case not found"))
		_, err := s.upload("x")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unsupported type stores nothing", func() {
		s.gate.EXPECT().Can(gomock.Any(), s.actor, refmodels.CapabilityAttachFiles).Return(true)
		s.cases.EXPECT().CaseExists(gomock.Any(), s.caseID).Return(nil)
		_, err := s.service.Upload(s.ctx, s.actor, s.caseID, Upload{
			Filename: "a.zip", ContentType: "application/zip", Size: 1, Body: strings.NewReader("x"),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		docs, err := s.store.ListByCase(s.ctx, s.caseID)
		s.Require().NoError(err)
		s.Empty(docs)
	})
}

func (s *AttachmentSuite) TestAuditFailureDoesNotFailUpload() {
	s.allow()
	s.cases.EXPECT().CaseExists(gomock.Any(), s.caseID).Return(nil)
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("outbox down"))

	_, err := s.upload("x")
	s.NoError(err)
}

func (s *AttachmentSuite) TestDelete() {
	s.allow()
	s.cases.EXPECT().CaseExists(gomock.Any(), s.caseID).Return(nil)
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	doc, err := s.upload("x")
	s.Require().NoError(err)

	s.Require().NoError(s.service.Delete(s.ctx, s.actor, s.caseID, doc.ID))
	_, ok := s.objects.Object(doc.ObjectKey)
	s.False(ok)
	_, err = s.store.Find(s.ctx, s.caseID, doc.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Run("twice", func() {
		err := s.service.Delete(s.ctx, s.actor, s.caseID, doc.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("attachment of another case", func() {
		s.cases.EXPECT().CaseExists(gomock.Any(), s.caseID).Return(nil)
		s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
		other, err := s.upload("y")
		s.Require().NoError(err)

		err = s.service.Delete(s.ctx, s.actor, id.CaseID(uuid.New()), other.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
