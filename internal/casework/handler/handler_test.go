package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ayuda/internal/casework/handler/mocks"
	"ayuda/internal/casework/models"
	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
	"ayuda/pkg/requestcontext"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	cases   *mocks.MockService
	router  chi.Router
	actor   id.UserID
	fixedAt time.Time
	sample  *models.SocialCase
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.cases = mocks.NewMockService(s.ctrl)
	s.actor = id.UserID(uuid.New())
	s.fixedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	citizen := id.CitizenID(uuid.New())
	c, err := models.NewSocialCase(id.CaseID(uuid.New()), "AYU-2026-000042", citizen, citizen,
		id.CategoryID(uuid.New()), nil, models.ChannelWalkIn, "", s.actor, s.fixedAt)
	s.Require().NoError(err)
	item, err := models.NewCaseItem(id.CaseItemID(uuid.New()), c.ID, models.SupplyTarget(id.SupplyID(uuid.New())), "", 3, s.fixedAt)
	s.Require().NoError(err)
	c.Items = []*models.CaseItem{item}
	s.sample = c

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.cases, logger).Register(s.router)
}

func (s *HandlerSuite) do(method, path, body string, authenticated bool) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	ctx := requestcontext.WithTime(req.Context(), s.fixedAt)
	if authenticated {
		ctx = requestcontext.WithUserID(ctx, s.actor)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func (s *HandlerSuite) itemResult(status models.CaseStatus) *models.ItemResult {
	return &models.ItemResult{Item: s.sample.Items[0], CaseNumber: s.sample.CaseNumber, CaseStatus: status}
}

// -----------------------------------------------------------------------------
// POST /cases
// -----------------------------------------------------------------------------

func (s *HandlerSuite) createBody(items string) string {
	citizen := uuid.NewString()
	return `{"applicant_id":"` + citizen + `","beneficiary_id":"` + citizen + `","category_id":"` + uuid.NewString() +
		`","channel":"walk_in","items":` + items + `}`
}

func (s *HandlerSuite) TestCreateCase() {
	supplyID := uuid.New()
	serviceID := uuid.New()

	s.Run("maps both target kinds", func() {
		s.cases.EXPECT().CreateCase(gomock.Any(), s.actor, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ id.UserID, req models.CreateCaseRequest) (*models.SocialCase, error) {
				s.Require().Len(req.Items, 2)
				s.Equal(models.SupplyTarget(id.SupplyID(supplyID)), req.Items[0].Target)
				s.Equal(models.ServiceTarget(id.MedicalServiceID(serviceID), "Fisica"), req.Items[1].Target)
				s.Equal(int64(4), req.Items[0].Quantity)
				return s.sample, nil
			})

		rec := s.do(http.MethodPost, "/cases", s.createBody(`[
			{"target_kind":"supply","supply_id":"`+supplyID.String()+`","quantity":4},
			{"target_kind":"service","service_id":"`+serviceID.String()+`","sub_specialty":"Fisica","quantity":1}
		]`), true)
		s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
		body := s.decode(rec)
		s.Equal("AYU-2026-000042", body["case_number"])
		s.Equal("open", body["status"])
	})

	s.Run("duplicate active case returns 409 with the blocking number", func() {
		s.cases.EXPECT().CreateCase(gomock.Any(), s.actor, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeDuplicateActive, "beneficiary already has an active case in this category").
				WithDetail("case_number", "AYU-2026-000001"))

		rec := s.do(http.MethodPost, "/cases", s.createBody(`[{"target_kind":"supply","supply_id":"`+supplyID.String()+`","quantity":1}]`), true)
		s.Equal(http.StatusConflict, rec.Code)
		body := s.decode(rec)
		s.Equal("duplicate_active_case", body["error"])
		s.Equal("AYU-2026-000001", body["details"].(map[string]any)["case_number"])
	})

	s.Run("incomplete profile returns 422", func() {
		s.cases.EXPECT().CreateCase(gomock.Any(), s.actor, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeIncompleteProfile, "beneficiary profile is incomplete"))

		rec := s.do(http.MethodPost, "/cases", s.createBody(`[{"target_kind":"supply","supply_id":"`+supplyID.String()+`","quantity":1}]`), true)
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})

	s.Run("supply line without supply id", func() {
		rec := s.do(http.MethodPost, "/cases", s.createBody(`[{"target_kind":"supply","quantity":1}]`), true)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("validation_error", s.decode(rec)["error"])
	})

	s.Run("no items", func() {
		rec := s.do(http.MethodPost, "/cases", s.createBody(`[]`), true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("unauthenticated", func() {
		rec := s.do(http.MethodPost, "/cases", s.createBody(`[]`), false)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

// -----------------------------------------------------------------------------
// Case routes
// -----------------------------------------------------------------------------

func (s *HandlerSuite) TestGetCase() {
	s.cases.EXPECT().GetCase(gomock.Any(), s.sample.ID).Return(s.sample, nil)

	rec := s.do(http.MethodGet, "/cases/"+s.sample.ID.String(), "", true)
	s.Require().Equal(http.StatusOK, rec.Code)
	items := s.decode(rec)["items"].([]any)
	s.Require().Len(items, 1)
	s.Equal("pending", items[0].(map[string]any)["status"])

	s.Run("malformed id", func() {
		rec := s.do(http.MethodGet, "/cases/not-a-uuid", "", true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestListCases() {
	assignee := id.UserID(uuid.New())
	s.cases.EXPECT().ListCases(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f models.ListFilter) ([]*models.SocialCase, error) {
			s.Equal(models.CaseStatusApproved, f.Status)
			s.Require().NotNil(f.AssignedTo)
			s.Equal(assignee, *f.AssignedTo)
			s.Equal(10, f.Limit)
			return []*models.SocialCase{s.sample}, nil
		})

	rec := s.do(http.MethodGet, "/cases?status=approved&assignee="+assignee.String()+"&limit=10", "", true)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Len(s.decode(rec)["cases"], 1)

	s.Run("bad limit", func() {
		rec := s.do(http.MethodGet, "/cases?limit=-1", "", true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestAssignCase() {
	assignee := id.UserID(uuid.New())
	itemID := s.sample.Items[0].ID
	s.cases.EXPECT().AssignCase(gomock.Any(), s.actor, s.sample.ID, assignee, []id.CaseItemID{itemID}).Return(s.sample, nil)

	rec := s.do(http.MethodPost, "/cases/"+s.sample.ID.String()+"/assign",
		`{"assignee_id":"`+assignee.String()+`","item_ids":["`+itemID.String()+`"]}`, true)
	s.Equal(http.StatusOK, rec.Code, rec.Body.String())

	s.Run("item id must be a uuid", func() {
		rec := s.do(http.MethodPost, "/cases/"+s.sample.ID.String()+"/assign",
			`{"assignee_id":"`+assignee.String()+`","item_ids":["x"]}`, true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestReviewCase() {
	itemID := s.sample.Items[0].ID
	s.cases.EXPECT().ReviewCase(gomock.Any(), s.actor, s.sample.ID, gomock.Any(), models.CaseStatusApproved).
		DoAndReturn(func(_ context.Context, _ id.UserID, _ id.CaseID, decisions []models.ItemDecision, _ models.CaseStatus) (*models.SocialCase, error) {
			s.Require().Len(decisions, 1)
			s.Equal(itemID, decisions[0].ItemID)
			s.Equal(models.ItemStatusApproved, decisions[0].Decision)
			s.Equal(int64(2), *decisions[0].ApprovedQuantity)
			return s.sample, nil
		})

	rec := s.do(http.MethodPost, "/cases/"+s.sample.ID.String()+"/review",
		`{"status":"approved","items":[{"item_id":"`+itemID.String()+`","decision":"approved","approved_quantity":2}]}`, true)
	s.Equal(http.StatusOK, rec.Code, rec.Body.String())

	s.Run("open is not a review outcome", func() {
		rec := s.do(http.MethodPost, "/cases/"+s.sample.ID.String()+"/review", `{"status":"open"}`, true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestRejectCase() {
	s.cases.EXPECT().RejectCase(gomock.Any(), s.actor, s.sample.ID, "documentos incompletos").
		Return(nil, dErrors.New(dErrors.CodeForbidden, "only the case assignee can decide the case"))

	rec := s.do(http.MethodPost, "/cases/"+s.sample.ID.String()+"/reject", `{"reason":"documentos incompletos"}`, true)
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *HandlerSuite) TestReconcileCase() {
	path := "/cases/" + s.sample.ID.String() + "/reconcile"

	s.Run("runs as the caller", func() {
		s.cases.EXPECT().ReconcileCase(gomock.Any(), s.actor, s.sample.ID).Return(s.sample, nil)

		rec := s.do(http.MethodPost, path, "", true)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		s.Equal("open", s.decode(rec)["status"])
	})

	s.Run("missing capability", func() {
		s.cases.EXPECT().ReconcileCase(gomock.Any(), s.actor, s.sample.ID).
			Return(nil, dErrors.New(dErrors.CodeForbidden, "missing capability case:review"))

		rec := s.do(http.MethodPost, path, "", true)
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("anonymous", func() {
		rec := s.do(http.MethodPost, path, "", false)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *HandlerSuite) TestDeleteCase() {
	s.cases.EXPECT().DeleteCase(gomock.Any(), s.actor, s.sample.ID).Return(nil)

	rec := s.do(http.MethodDelete, "/cases/"+s.sample.ID.String(), "", true)
	s.Equal(http.StatusNoContent, rec.Code)
}

// -----------------------------------------------------------------------------
// Item routes
// -----------------------------------------------------------------------------

func (s *HandlerSuite) TestFulfill() {
	itemID := s.sample.Items[0].ID
	path := "/items/" + itemID.String() + "/fulfill"

	s.Run("default entry point", func() {
		movement := id.MovementID(uuid.New())
		res := s.itemResult(models.CaseStatusClosed)
		res.MovementID = &movement
		res.StatusChanged = true
		s.cases.EXPECT().FulfillItem(gomock.Any(), s.actor, itemID).Return(res, nil)

		rec := s.do(http.MethodPost, path, "", true)
		s.Require().Equal(http.StatusOK, rec.Code)
		body := s.decode(rec)
		s.Equal("closed", body["case_status"])
		s.Equal(movement.String(), body["movement_id"])
	})

	s.Run("case detail entry point", func() {
		s.cases.EXPECT().FulfillItemFromCaseDetail(gomock.Any(), s.actor, itemID).Return(s.itemResult(models.CaseStatusApproved), nil)

		rec := s.do(http.MethodPost, path+"?from=case_detail", "", true)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("unknown origin", func() {
		rec := s.do(http.MethodPost, path+"?from=kiosk", "", true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("insufficient stock", func() {
		s.cases.EXPECT().FulfillItem(gomock.Any(), s.actor, itemID).
			Return(nil, dErrors.New(dErrors.CodeInsufficientStock, "insufficient stock").
				WithDetail("available", int64(5)).WithDetail("requested", int64(10)))

		rec := s.do(http.MethodPost, path, "", true)
		s.Equal(http.StatusConflict, rec.Code)
		details := s.decode(rec)["details"].(map[string]any)
		s.InDelta(5, details["available"], 0)
	})

	s.Run("internal error hides the cause", func() {
		s.cases.EXPECT().FulfillItem(gomock.Any(), s.actor, itemID).
			Return(nil, dErrors.Wrap(errors.New("pq: connection reset"), dErrors.CodeInternal, "failed to fulfill item"))

		rec := s.do(http.MethodPost, path, "", true)
		s.Equal(http.StatusInternalServerError, rec.Code)
		s.NotContains(rec.Body.String(), "pq:")
	})
}

func (s *HandlerSuite) TestReviewItem() {
	itemID := s.sample.Items[0].ID
	s.cases.EXPECT().ReviewItem(gomock.Any(), s.actor, models.ItemDecision{
		ItemID: itemID, Decision: models.ItemStatusRejected, Note: "fuera de cobertura",
	}).Return(s.itemResult(models.CaseStatusInProgress), nil)

	rec := s.do(http.MethodPost, "/items/"+itemID.String()+"/review", `{"decision":"rejected","note":"fuera de cobertura"}`, true)
	s.Equal(http.StatusOK, rec.Code, rec.Body.String())

	s.Run("decision must be approved or rejected", func() {
		rec := s.do(http.MethodPost, "/items/"+itemID.String()+"/review", `{"decision":"fulfilled"}`, true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestApproveAndRejectItem() {
	itemID := s.sample.Items[0].ID
	s.cases.EXPECT().ApproveItem(gomock.Any(), s.actor, itemID).Return(s.itemResult(models.CaseStatusApproved), nil)
	s.cases.EXPECT().RejectItem(gomock.Any(), s.actor, itemID, "no corresponde").
		Return(nil, dErrors.New(dErrors.CodeValidation, "reason must be between 10 and 500 characters"))

	rec := s.do(http.MethodPost, "/items/"+itemID.String()+"/approve", "", true)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/items/"+itemID.String()+"/reject", `{"reason":"no corresponde"}`, true)
	s.Equal(http.StatusBadRequest, rec.Code)
}
