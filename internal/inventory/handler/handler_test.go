package handler

import (
	"context"
	"encoding/json"
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

	"ayuda/internal/inventory/handler/mocks"
	"ayuda/internal/inventory/models"
	refmodels "ayuda/internal/reference/models"
	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
	"ayuda/pkg/requestcontext"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	ledger  *mocks.MockService
	gate    *mocks.MockPermissionGate
	router  chi.Router
	actor   id.UserID
	supply  *models.Supply
	fixedAt time.Time
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.ledger = mocks.NewMockService(s.ctrl)
	s.gate = mocks.NewMockPermissionGate(s.ctrl)
	s.actor = id.UserID(uuid.New())
	s.fixedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	supply, err := models.NewSupply(id.SupplyID(uuid.New()), "Leche en polvo", "lata", 5, s.fixedAt)
	s.Require().NoError(err)
	supply.ApplyCredit(12, s.fixedAt)
	s.supply = supply

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.ledger, s.gate, logger).Register(s.router)
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

// -----------------------------------------------------------------------------
// Credit / debit
// -----------------------------------------------------------------------------

func (s *HandlerSuite) TestCredit() {
	path := "/supplies/" + s.supply.ID.String() + "/credit"

	s.Run("records the entry and returns the new balance", func() {
		movement, err := models.NewMovement(id.MovementID(uuid.New()), s.supply.ID, models.MovementEntry, 12,
			models.ReasonDonation, s.actor, "", nil, s.fixedAt)
		s.Require().NoError(err)

		s.gate.EXPECT().Can(gomock.Any(), s.actor, refmodels.CapabilityManageStock).Return(true)
		s.ledger.EXPECT().
			Credit(gomock.Any(), s.actor, models.CreditRequest{SupplyID: s.supply.ID, Quantity: 12, Reason: models.ReasonDonation}).
			Return(s.supply, movement, nil)

		rec := s.do(http.MethodPost, path, `{"quantity":12,"reason":"donation"}`, true)

		s.Equal(http.StatusCreated, rec.Code)
		body := s.decode(rec)
		s.Equal(float64(12), body["supply"].(map[string]any)["current_stock"])
		s.Equal("entry", body["movement"].(map[string]any)["kind"])
	})

	s.Run("rejects callers without the manage-stock capability", func() {
		s.gate.EXPECT().Can(gomock.Any(), s.actor, refmodels.CapabilityManageStock).Return(false)

		rec := s.do(http.MethodPost, path, `{"quantity":12,"reason":"donation"}`, true)

		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("rejects unauthenticated calls", func() {
		rec := s.do(http.MethodPost, path, `{"quantity":12,"reason":"donation"}`, false)

		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("rejects a non-positive quantity before reaching the ledger", func() {
		s.gate.EXPECT().Can(gomock.Any(), s.actor, refmodels.CapabilityManageStock).Return(true)

		rec := s.do(http.MethodPost, path, `{"quantity":0,"reason":"donation"}`, true)

		s.Equal(http.StatusBadRequest, rec.Code)
		body := s.decode(rec)
		s.Equal("validation_error", body["error"])
	})

	s.Run("rejects unknown fields", func() {
		s.gate.EXPECT().Can(gomock.Any(), s.actor, refmodels.CapabilityManageStock).Return(true)

		rec := s.do(http.MethodPost, path, `{"quantity":1,"reason":"donation","price":3}`, true)

		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestDebit() {
	path := "/supplies/" + s.supply.ID.String() + "/debit"

	s.Run("insufficient stock surfaces available and requested", func() {
		s.gate.EXPECT().Can(gomock.Any(), s.actor, refmodels.CapabilityManageStock).Return(true)
		s.ledger.EXPECT().
			Debit(gomock.Any(), s.actor, gomock.Any()).
			Return(nil, nil, s.supply.CanDebit(50))

		rec := s.do(http.MethodPost, path, `{"quantity":50,"reason":"delivery"}`, true)

		s.Equal(http.StatusConflict, rec.Code)
		body := s.decode(rec)
		s.Equal("insufficient_stock", body["error"])
		details := body["details"].(map[string]any)
		s.Equal(float64(12), details["available"])
		s.Equal(float64(50), details["requested"])
	})

	s.Run("internal errors do not leak", func() {
		s.gate.EXPECT().Can(gomock.Any(), s.actor, refmodels.CapabilityManageStock).Return(true)
		s.ledger.EXPECT().
			Debit(gomock.Any(), s.actor, gomock.Any()).
			Return(nil, nil, dErrors.Wrap(context.DeadlineExceeded, dErrors.CodeInternal, "failed to debit stock"))

		rec := s.do(http.MethodPost, path, `{"quantity":1,"reason":"delivery"}`, true)

		s.Equal(http.StatusInternalServerError, rec.Code)
		s.NotContains(rec.Body.String(), "deadline")
	})
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

func (s *HandlerSuite) TestBalance() {
	s.Run("returns the cached stock", func() {
		s.ledger.EXPECT().Balance(gomock.Any(), s.supply.ID).Return(s.supply, nil)

		rec := s.do(http.MethodGet, "/supplies/"+s.supply.ID.String()+"/", "", true)

		s.Equal(http.StatusOK, rec.Code)
		body := s.decode(rec)
		s.Equal("Leche en polvo", body["name"])
		s.Equal(false, body["low"])
	})

	s.Run("malformed supply id is a bad request", func() {
		rec := s.do(http.MethodGet, "/supplies/not-a-uuid/", "", true)

		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("unknown supply is not found", func() {
		s.ledger.EXPECT().Balance(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "supply not found"))

		rec := s.do(http.MethodGet, "/supplies/"+uuid.NewString()+"/", "", true)

		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *HandlerSuite) TestReconcile() {
	report := models.Fold(s.supply.ID, 10, nil)
	s.ledger.EXPECT().Rebuild(gomock.Any(), s.supply.ID).Return(report, nil)

	rec := s.do(http.MethodGet, "/supplies/"+s.supply.ID.String()+"/reconcile", "", true)

	s.Equal(http.StatusOK, rec.Code)
	body := s.decode(rec)
	s.Equal(false, body["consistent"])
	s.Equal(float64(0), body["derived"])
}

func (s *HandlerSuite) TestExport() {
	movement, err := models.NewMovement(id.MovementID(uuid.New()), s.supply.ID, models.MovementEntry, 12,
		models.ReasonPurchase, s.actor, "", nil, s.fixedAt)
	s.Require().NoError(err)
	s.ledger.EXPECT().Balance(gomock.Any(), s.supply.ID).Return(s.supply, nil)
	s.ledger.EXPECT().Movements(gomock.Any(), s.supply.ID).Return([]*models.Movement{movement}, nil)

	rec := s.do(http.MethodGet, "/supplies/"+s.supply.ID.String()+"/movements.xlsx", "", true)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	s.Contains(rec.Header().Get("Content-Disposition"), "20260301.xlsx")
	s.NotZero(rec.Body.Len())
}
