package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ayuda/internal/attachments/handler/mocks"
	"ayuda/internal/attachments/models"
	"ayuda/internal/attachments/service"
	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
	"ayuda/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	docs   *mocks.MockService
	router chi.Router
	actor  id.UserID
	caseID id.CaseID
	now    time.Time
	doc    *service.Document
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.docs = mocks.NewMockService(s.ctrl)
	s.actor = id.UserID(uuid.New())
	s.caseID = id.CaseID(uuid.New())

	s.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	a, err := models.NewAttachment(id.AttachmentID(uuid.New()), s.caseID, "receta.pdf", "application/pdf", 4, s.actor, s.now)
	s.Require().NoError(err)
	s.doc = &service.Document{Attachment: a, URL: "memory:///" + a.ObjectKey}

	s.router = chi.NewRouter()
	New(s.docs, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *HandlerSuite) serve(req *http.Request, authenticated bool) *httptest.ResponseRecorder {
	if authenticated {
		req = testutil.WithActor(req, s.actor, s.now)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) uploadRequest(field, filename, contentType string, content []byte) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	s.Require().NoError(err)
	_, err = part.Write(content)
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/cases/"+s.caseID.String()+"/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (s *HandlerSuite) body(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func (s *HandlerSuite) TestUpload() {
	s.Run("streams the file part to the service", func() {
		s.docs.EXPECT().Upload(gomock.Any(), s.actor, s.caseID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ id.UserID, _ id.CaseID, up service.Upload) (*service.Document, error) {
				s.Equal("receta.pdf", up.Filename)
				s.Equal("application/pdf", up.ContentType)
				s.EqualValues(4, up.Size)
				content, err := io.ReadAll(up.Body)
				s.Require().NoError(err)
				s.Equal("%PDF", string(content))
				return s.doc, nil
			})

		rec := s.serve(s.uploadRequest("file", "receta.pdf", "application/pdf", []byte("%PDF")), true)
		s.Equal(http.StatusCreated, rec.Code)
		body := s.body(rec)
		s.Equal(s.doc.ID.String(), body["id"])
		s.Equal("receta.pdf", body["filename"])
		s.Equal(s.doc.URL, body["url"])
	})

	s.Run("missing file field", func() {
		rec := s.serve(s.uploadRequest("document", "receta.pdf", "application/pdf", []byte("%PDF")), true)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal(string(dErrors.CodeBadRequest), s.body(rec)["error"])
	})

	s.Run("oversized body", func() {
		big := make([]byte, models.MaxSize+formOverhead+1)
		rec := s.serve(s.uploadRequest("file", "scan.png", "image/png", big), true)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal(string(dErrors.CodeValidation), s.body(rec)["error"])
	})

	s.Run("service refusal maps to status", func() {
		s.docs.EXPECT().Upload(gomock.Any(), s.actor, s.caseID, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeForbidden, "missing capability"))
		rec := s.serve(s.uploadRequest("file", "receta.pdf", "application/pdf", []byte("%PDF")), true)
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("unauthenticated", func() {
		rec := s.serve(s.uploadRequest("file", "receta.pdf", "application/pdf", []byte("%PDF")), false)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *HandlerSuite) TestList() {
	s.docs.EXPECT().List(gomock.Any(), s.caseID).Return([]*service.Document{s.doc}, nil)

	req := httptest.NewRequest(http.MethodGet, "/cases/"+s.caseID.String()+"/attachments", nil)
	rec := s.serve(req, true)
	s.Require().Equal(http.StatusOK, rec.Code)

	list, ok := s.body(rec)["attachments"].([]any)
	s.Require().True(ok)
	s.Require().Len(list, 1)
	s.Equal(s.doc.ID.String(), list[0].(map[string]any)["id"])
}

func (s *HandlerSuite) TestList_InvalidCaseID() {
	req := httptest.NewRequest(http.MethodGet, "/cases/not-a-uuid/attachments", nil)
	rec := s.serve(req, true)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestDelete() {
	path := "/cases/" + s.caseID.String() + "/attachments/" + s.doc.ID.String()

	s.Run("removes the document", func() {
		s.docs.EXPECT().Delete(gomock.Any(), s.actor, s.caseID, s.doc.ID).Return(nil)
		rec := s.serve(httptest.NewRequest(http.MethodDelete, path, nil), true)
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("not found", func() {
		s.docs.EXPECT().Delete(gomock.Any(), s.actor, s.caseID, s.doc.ID).
			Return(dErrors.New(dErrors.CodeNotFound, "attachment not found"))
		rec := s.serve(httptest.NewRequest(http.MethodDelete, path, nil), true)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("internal errors do not leak", func() {
		s.docs.EXPECT().Delete(gomock.Any(), s.actor, s.caseID, s.doc.ID).
			Return(errors.New("bucket credentials rejected"))
		rec := s.serve(httptest.NewRequest(http.MethodDelete, path, nil), true)
		s.Equal(http.StatusInternalServerError, rec.Code)
		s.NotContains(rec.Body.String(), "credentials")
	})
}
