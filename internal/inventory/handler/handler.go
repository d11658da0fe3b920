package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ayuda/internal/inventory/export"
	"ayuda/internal/inventory/models"
	refmodels "ayuda/internal/reference/models"
	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
	"ayuda/pkg/platform/httputil"
	"ayuda/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service,PermissionGate

// Service is the ledger surface the handler drives.
type Service interface {
	Credit(ctx context.Context, actorID id.UserID, req models.CreditRequest) (*models.Supply, *models.Movement, error)
	Debit(ctx context.Context, actorID id.UserID, req models.DebitRequest) (*models.Supply, *models.Movement, error)
	Balance(ctx context.Context, supplyID id.SupplyID) (*models.Supply, error)
	Movements(ctx context.Context, supplyID id.SupplyID) ([]*models.Movement, error)
	Rebuild(ctx context.Context, supplyID id.SupplyID) (*models.ReconcileReport, error)
	Repair(ctx context.Context, actorID id.UserID, supplyID id.SupplyID) (*models.ReconcileReport, error)
	LowStock(ctx context.Context) ([]*models.Supply, error)
}

type PermissionGate interface {
	Can(ctx context.Context, userID id.UserID, capability refmodels.Capability) bool
}

// Handler exposes the stock ledger over HTTP. Stock-changing routes require
// the manage-stock capability.
type Handler struct {
	ledger Service
	gate   PermissionGate
	logger *slog.Logger
}

func New(ledger Service, gate PermissionGate, logger *slog.Logger) *Handler {
	return &Handler{ledger: ledger, gate: gate, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/supplies/low-stock", h.handleLowStock)
	r.Route("/supplies/{supplyID}", func(r chi.Router) {
		r.Get("/", h.handleBalance)
		r.Get("/movements", h.handleMovements)
		r.Get("/movements.xlsx", h.handleExport)
		r.Get("/reconcile", h.handleReconcile)
		r.Post("/reconcile/repair", h.handleRepair)
		r.Post("/credit", h.handleCredit)
		r.Post("/debit", h.handleDebit)
	})
}

type movementRequest struct {
	Quantity int64  `json:"quantity" validate:"gt=0"`
	Reason   string `json:"reason" validate:"required"`
	Notes    string `json:"notes" validate:"max=1000"`
}

func (h *Handler) handleCredit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	supplyID, actor, req, ok := h.prepareMovement(w, r)
	if !ok {
		return
	}
	supply, movement, err := h.ledger.Credit(ctx, actor, models.CreditRequest{
		SupplyID: supplyID,
		Quantity: req.Quantity,
		Reason:   models.Reason(req.Reason),
		Notes:    req.Notes,
	})
	if err != nil {
		h.writeError(ctx, w, "credit stock", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, movementResult{Supply: toSupplyResponse(supply), Movement: toMovementResponse(movement)})
}

func (h *Handler) handleDebit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	supplyID, actor, req, ok := h.prepareMovement(w, r)
	if !ok {
		return
	}
	supply, movement, err := h.ledger.Debit(ctx, actor, models.DebitRequest{
		SupplyID: supplyID,
		Quantity: req.Quantity,
		Reason:   models.Reason(req.Reason),
		Notes:    req.Notes,
	})
	if err != nil {
		h.writeError(ctx, w, "debit stock", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, movementResult{Supply: toSupplyResponse(supply), Movement: toMovementResponse(movement)})
}

func (h *Handler) prepareMovement(w http.ResponseWriter, r *http.Request) (id.SupplyID, id.UserID, movementRequest, bool) {
	var req movementRequest
	supplyID, err := id.ParseSupplyID(chi.URLParam(r, "supplyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return supplyID, id.UserID{}, req, false
	}
	actor, ok := h.requireCapability(w, r, refmodels.CapabilityManageStock)
	if !ok {
		return supplyID, actor, req, false
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return supplyID, actor, req, false
	}
	if err := httputil.ValidateStruct(req); err != nil {
		httputil.WriteError(w, err)
		return supplyID, actor, req, false
	}
	return supplyID, actor, req, true
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	supplyID, err := id.ParseSupplyID(chi.URLParam(r, "supplyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	supply, err := h.ledger.Balance(ctx, supplyID)
	if err != nil {
		h.writeError(ctx, w, "load balance", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSupplyResponse(supply))
}

func (h *Handler) handleMovements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	supplyID, err := id.ParseSupplyID(chi.URLParam(r, "supplyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	movements, err := h.ledger.Movements(ctx, supplyID)
	if err != nil {
		h.writeError(ctx, w, "list movements", err)
		return
	}
	out := make([]movementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"movements": out})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	supplyID, err := id.ParseSupplyID(chi.URLParam(r, "supplyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	supply, err := h.ledger.Balance(ctx, supplyID)
	if err != nil {
		h.writeError(ctx, w, "export movements", err)
		return
	}
	movements, err := h.ledger.Movements(ctx, supplyID)
	if err != nil {
		h.writeError(ctx, w, "export movements", err)
		return
	}

	filename := fmt.Sprintf("movimientos-%s-%s.xlsx", supplyID.String()[:8], requestcontext.Now(ctx).Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteMovements(w, supply, movements); err != nil {
		h.logger.ErrorContext(ctx, "failed to write movement export",
			"supply_id", supplyID.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	supplyID, err := id.ParseSupplyID(chi.URLParam(r, "supplyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	report, err := h.ledger.Rebuild(ctx, supplyID)
	if err != nil {
		h.writeError(ctx, w, "reconcile stock", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toReportResponse(report))
}

func (h *Handler) handleRepair(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	supplyID, err := id.ParseSupplyID(chi.URLParam(r, "supplyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	actor, ok := h.requireCapability(w, r, refmodels.CapabilityManageStock)
	if !ok {
		return
	}
	report, err := h.ledger.Repair(ctx, actor, supplyID)
	if err != nil {
		h.writeError(ctx, w, "repair stock", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toReportResponse(report))
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	supplies, err := h.ledger.LowStock(ctx)
	if err != nil {
		h.writeError(ctx, w, "list low stock", err)
		return
	}
	out := make([]supplyResponse, 0, len(supplies))
	for _, s := range supplies {
		out = append(out, toSupplyResponse(s))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"supplies": out})
}

func (h *Handler) requireCapability(w http.ResponseWriter, r *http.Request, capability refmodels.Capability) (id.UserID, bool) {
	ctx := r.Context()
	actor := requestcontext.UserID(ctx)
	if actor.IsNil() {
		h.logger.ErrorContext(ctx, "actor missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return actor, false
	}
	if !h.gate.Can(ctx, actor, capability) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "missing capability "+string(capability)))
		return actor, false
	}
	return actor, true
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "failed to "+op,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}

type supplyResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	CurrentStock int64     `json:"current_stock"`
	MinStock     int64     `json:"min_stock"`
	Low          bool      `json:"low"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type movementResponse struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Quantity     int64     `json:"quantity"`
	Reason       string    `json:"reason"`
	OriginItemID string    `json:"origin_item_id,omitempty"`
	ActorID      string    `json:"actor_id"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type movementResult struct {
	Supply   supplyResponse   `json:"supply"`
	Movement movementResponse `json:"movement"`
}

type reportResponse struct {
	SupplyID      string `json:"supply_id"`
	Cached        int64  `json:"cached"`
	Derived       int64  `json:"derived"`
	Entries       int64  `json:"entries"`
	Exits         int64  `json:"exits"`
	MovementCount int    `json:"movement_count"`
	Consistent    bool   `json:"consistent"`
}

func toSupplyResponse(s *models.Supply) supplyResponse {
	return supplyResponse{
		ID:           s.ID.String(),
		Name:         s.Name,
		Unit:         s.Unit,
		CurrentStock: s.CurrentStock,
		MinStock:     s.MinStock,
		Low:          s.IsLow(),
		UpdatedAt:    s.UpdatedAt,
	}
}

func toMovementResponse(m *models.Movement) movementResponse {
	resp := movementResponse{
		ID:        m.ID.String(),
		Kind:      string(m.Kind),
		Quantity:  m.Quantity,
		Reason:    string(m.Reason),
		ActorID:   m.ActorID.String(),
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
	}
	if m.OriginItemID != nil {
		resp.OriginItemID = m.OriginItemID.String()
	}
	return resp
}

func toReportResponse(r *models.ReconcileReport) reportResponse {
	return reportResponse{
		SupplyID:      r.SupplyID.String(),
		Cached:        r.Cached,
		Derived:       r.Derived,
		Entries:       r.Entries,
		Exits:         r.Exits,
		MovementCount: r.MovementCount,
		Consistent:    r.Consistent(),
	}
}
