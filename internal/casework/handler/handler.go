package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ayuda/internal/casework/models"
	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
	"ayuda/pkg/platform/httputil"
	"ayuda/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service is the workflow surface the handler drives. Capability checks
// happen in the service; the handler only resolves the actor.
type Service interface {
	CreateCase(ctx context.Context, actorID id.UserID, req models.CreateCaseRequest) (*models.SocialCase, error)
	GetCase(ctx context.Context, caseID id.CaseID) (*models.SocialCase, error)
	ListCases(ctx context.Context, filter models.ListFilter) ([]*models.SocialCase, error)
	DeleteCase(ctx context.Context, actorID id.UserID, caseID id.CaseID) error
	AssignCase(ctx context.Context, actorID id.UserID, caseID id.CaseID, assigneeID id.UserID, itemIDs []id.CaseItemID) (*models.SocialCase, error)
	ReviewCase(ctx context.Context, actorID id.UserID, caseID id.CaseID, decisions []models.ItemDecision, generalStatus models.CaseStatus) (*models.SocialCase, error)
	ApproveCase(ctx context.Context, actorID id.UserID, caseID id.CaseID) (*models.SocialCase, error)
	RejectCase(ctx context.Context, actorID id.UserID, caseID id.CaseID, reason string) (*models.SocialCase, error)
	ReconcileCase(ctx context.Context, actorID id.UserID, caseID id.CaseID) (*models.SocialCase, error)
	ReviewItem(ctx context.Context, actorID id.UserID, decision models.ItemDecision) (*models.ItemResult, error)
	ApproveItem(ctx context.Context, actorID id.UserID, itemID id.CaseItemID) (*models.ItemResult, error)
	RejectItem(ctx context.Context, actorID id.UserID, itemID id.CaseItemID, reason string) (*models.ItemResult, error)
	FulfillItem(ctx context.Context, actorID id.UserID, itemID id.CaseItemID) (*models.ItemResult, error)
	FulfillItemFromCaseDetail(ctx context.Context, actorID id.UserID, itemID id.CaseItemID) (*models.ItemResult, error)
}

// Handler exposes the case workflow over HTTP.
type Handler struct {
	cases  Service
	logger *slog.Logger
}

func New(cases Service, logger *slog.Logger) *Handler {
	return &Handler{cases: cases, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/cases", h.handleCreate)
	r.Get("/cases", h.handleList)
	r.Route("/cases/{caseID}", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Delete("/", h.handleDelete)
		r.Post("/assign", h.handleAssign)
		r.Post("/review", h.handleReviewCase)
		r.Post("/approve", h.handleApproveCase)
		r.Post("/reject", h.handleRejectCase)
		r.Post("/reconcile", h.handleReconcile)
	})
	r.Route("/items/{itemID}", func(r chi.Router) {
		r.Post("/review", h.handleReviewItem)
		r.Post("/approve", h.handleApproveItem)
		r.Post("/reject", h.handleRejectItem)
		r.Post("/fulfill", h.handleFulfill)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	var body createCaseRequest
	if !decode(w, r, &body) {
		return
	}
	req, err := body.toModel()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.cases.CreateCase(ctx, actor, req)
	if err != nil {
		h.writeError(ctx, w, "create case", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toCaseResponse(c))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireActor(w, r); !ok {
		return
	}
	caseID, ok := caseParam(w, r)
	if !ok {
		return
	}
	c, err := h.cases.GetCase(ctx, caseID)
	if err != nil {
		h.writeError(ctx, w, "load case", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireActor(w, r); !ok {
		return
	}
	filter, err := parseListFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cases, err := h.cases.ListCases(ctx, filter)
	if err != nil {
		h.writeError(ctx, w, "list cases", err)
		return
	}
	out := make([]caseResponse, 0, len(cases))
	for _, c := range cases {
		out = append(out, toCaseResponse(c))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"cases": out})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	caseID, ok := caseParam(w, r)
	if !ok {
		return
	}
	if err := h.cases.DeleteCase(ctx, actor, caseID); err != nil {
		h.writeError(ctx, w, "delete case", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	caseID, ok := caseParam(w, r)
	if !ok {
		return
	}
	var body assignRequest
	if !decode(w, r, &body) {
		return
	}
	assignee, err := id.ParseUserID(body.AssigneeID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	itemIDs := make([]id.CaseItemID, 0, len(body.ItemIDs))
	for _, raw := range body.ItemIDs {
		itemID, err := id.ParseCaseItemID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		itemIDs = append(itemIDs, itemID)
	}
	c, err := h.cases.AssignCase(ctx, actor, caseID, assignee, itemIDs)
	if err != nil {
		h.writeError(ctx, w, "assign case", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleReviewCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	caseID, ok := caseParam(w, r)
	if !ok {
		return
	}
	var body reviewCaseRequest
	if !decode(w, r, &body) {
		return
	}
	decisions := make([]models.ItemDecision, 0, len(body.Items))
	for _, item := range body.Items {
		itemID, err := id.ParseCaseItemID(item.ItemID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		decisions = append(decisions, item.toModel(itemID))
	}
	c, err := h.cases.ReviewCase(ctx, actor, caseID, decisions, models.CaseStatus(body.Status))
	if err != nil {
		h.writeError(ctx, w, "review case", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleApproveCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	caseID, ok := caseParam(w, r)
	if !ok {
		return
	}
	c, err := h.cases.ApproveCase(ctx, actor, caseID)
	if err != nil {
		h.writeError(ctx, w, "approve case", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleRejectCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	caseID, ok := caseParam(w, r)
	if !ok {
		return
	}
	var body reasonRequest
	if !decode(w, r, &body) {
		return
	}
	c, err := h.cases.RejectCase(ctx, actor, caseID, body.Reason)
	if err != nil {
		h.writeError(ctx, w, "reject case", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	caseID, ok := caseParam(w, r)
	if !ok {
		return
	}
	c, err := h.cases.ReconcileCase(ctx, actor, caseID)
	if err != nil {
		h.writeError(ctx, w, "reconcile case", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCaseResponse(c))
}

func (h *Handler) handleReviewItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	itemID, ok := itemParam(w, r)
	if !ok {
		return
	}
	var body itemDecisionRequest
	if !decode(w, r, &body) {
		return
	}
	res, err := h.cases.ReviewItem(ctx, actor, body.toModel(itemID))
	if err != nil {
		h.writeError(ctx, w, "review item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toItemResult(res))
}

func (h *Handler) handleApproveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	itemID, ok := itemParam(w, r)
	if !ok {
		return
	}
	res, err := h.cases.ApproveItem(ctx, actor, itemID)
	if err != nil {
		h.writeError(ctx, w, "approve item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toItemResult(res))
}

func (h *Handler) handleRejectItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	itemID, ok := itemParam(w, r)
	if !ok {
		return
	}
	var body reasonRequest
	if !decode(w, r, &body) {
		return
	}
	res, err := h.cases.RejectItem(ctx, actor, itemID, body.Reason)
	if err != nil {
		h.writeError(ctx, w, "reject item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toItemResult(res))
}

const fromCaseDetail = "case_detail"

func (h *Handler) handleFulfill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	itemID, ok := itemParam(w, r)
	if !ok {
		return
	}
	fulfill := h.cases.FulfillItem
	switch from := r.URL.Query().Get("from"); from {
	case "":
	case fromCaseDetail:
		fulfill = h.cases.FulfillItemFromCaseDetail
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unknown fulfillment origin "+strconv.Quote(from)))
		return
	}
	res, err := fulfill(ctx, actor, itemID)
	if err != nil {
		h.writeError(ctx, w, "fulfill item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toItemResult(res))
}

func (h *Handler) requireActor(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	ctx := r.Context()
	actor := requestcontext.UserID(ctx)
	if actor.IsNil() {
		h.logger.ErrorContext(ctx, "actor missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
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

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httputil.DecodeJSON(r, dst); err != nil {
		httputil.WriteError(w, err)
		return false
	}
	if err := httputil.ValidateStruct(dst); err != nil {
		httputil.WriteError(w, err)
		return false
	}
	return true
}

func caseParam(w http.ResponseWriter, r *http.Request) (id.CaseID, bool) {
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return caseID, false
	}
	return caseID, true
}

func itemParam(w http.ResponseWriter, r *http.Request) (id.CaseItemID, bool) {
	itemID, err := id.ParseCaseItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, err)
		return itemID, false
	}
	return itemID, true
}

func parseListFilter(r *http.Request) (models.ListFilter, error) {
	q := r.URL.Query()
	filter := models.ListFilter{Status: models.CaseStatus(q.Get("status"))}
	if raw := q.Get("assignee"); raw != "" {
		userID, err := id.ParseUserID(raw)
		if err != nil {
			return filter, err
		}
		filter.AssignedTo = &userID
	}
	if raw := q.Get("beneficiary"); raw != "" {
		citizenID, err := id.ParseCitizenID(raw)
		if err != nil {
			return filter, err
		}
		filter.BeneficiaryID = &citizenID
	}
	for key, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, dErrors.New(dErrors.CodeBadRequest, key+" must be a non-negative integer")
		}
		*dst = n
	}
	return filter, nil
}
