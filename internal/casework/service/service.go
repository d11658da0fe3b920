package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ayuda/internal/casework/metrics"
	"ayuda/internal/casework/models"
	"ayuda/internal/casework/ports"
	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
	"ayuda/pkg/platform/audit"
	"ayuda/pkg/platform/sentinel"
	"ayuda/pkg/requestcontext"
)

// Store is the persistence surface of the workflow. It is pure I/O; all
// rules live in the service and models.
type Store interface {
	CreateCase(ctx context.Context, c *models.SocialCase) error
	FindCase(ctx context.Context, caseID id.CaseID) (*models.SocialCase, error)
	FindCaseForUpdate(ctx context.Context, caseID id.CaseID) (*models.SocialCase, error)
	FindCaseIDByItem(ctx context.Context, itemID id.CaseItemID) (id.CaseID, error)
	FindActiveCase(ctx context.Context, beneficiaryID id.CitizenID, categoryID id.CategoryID) (*models.SocialCase, error)
	UpdateCase(ctx context.Context, c *models.SocialCase) error
	UpdateItems(ctx context.Context, items []*models.CaseItem) error
	ListCases(ctx context.Context, filter models.ListFilter) ([]*models.SocialCase, error)
	SoftDeleteCase(ctx context.Context, caseID id.CaseID, at time.Time) error
}

// StockPolicy decides what a supply fulfillment does when the ledger refuses
// the debit.
type StockPolicy string

const (
	// StockPolicyStrict fails the fulfillment and changes nothing.
	StockPolicyStrict StockPolicy = "strict"
	// StockPolicyBestEffort fulfills the item without a debit and records a
	// stock_debit_skipped event.
	StockPolicyBestEffort StockPolicy = "best_effort"
)

const defaultCaseNumberAttempts = 5

// Service is the case workflow engine. Every operation takes the acting
// user explicitly; nothing is read from ambient request state except the
// request clock and id.
type Service struct {
	store          Store
	tx             StoreTx
	profiles       ports.ProfileValidator
	gate           ports.PermissionGate
	catalog        ports.Catalog
	ledger         ports.StockLedger
	locker         ports.Locker
	auditPublisher ports.AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer

	stockPolicy    StockPolicy
	numberSource   io.Reader
	numberAttempts int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTx replaces the in-memory runner, typically with a postgres one.
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// WithLocker serializes case creation per beneficiary across instances.
func WithLocker(locker ports.Locker) Option {
	return func(s *Service) {
		s.locker = locker
	}
}

func WithStockPolicy(policy StockPolicy) Option {
	return func(s *Service) {
		s.stockPolicy = policy
	}
}

// WithCaseNumberSource overrides the entropy used for case numbers.
func WithCaseNumberSource(r io.Reader) Option {
	return func(s *Service) {
		s.numberSource = r
	}
}

func New(
	store Store,
	profiles ports.ProfileValidator,
	gate ports.PermissionGate,
	catalog ports.Catalog,
	ledger ports.StockLedger,
	opts ...Option,
) (*Service, error) {
	if store == nil || profiles == nil || gate == nil || catalog == nil || ledger == nil {
		return nil, errors.New("casework: store, profile validator, permission gate, catalog and ledger are required")
	}
	s := &Service{
		store:          store,
		profiles:       profiles,
		gate:           gate,
		catalog:        catalog,
		ledger:         ledger,
		logger:         slog.Default(),
		tracer:         otel.Tracer("ayuda/casework"),
		stockPolicy:    StockPolicyStrict,
		numberAttempts: defaultCaseNumberAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.stockPolicy != StockPolicyBestEffort {
		s.stockPolicy = StockPolicyStrict
	}
	if s.tx == nil {
		s.tx = NewShardedTx(store)
	}
	return s, nil
}

func (s *Service) requireCapability(ctx context.Context, actorID id.UserID, capability ports.Capability) error {
	if actorID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "actor is required")
	}
	if !s.gate.Can(ctx, actorID, capability) {
		s.logger.WarnContext(ctx, "capability check failed",
			"user_id", actorID.String(),
			"capability", string(capability),
			"request_id", requestcontext.RequestID(ctx),
		)
		return dErrors.New(dErrors.CodeForbidden, "missing capability "+string(capability))
	}
	return nil
}

// mutateCase runs fn inside a transaction with the case row locked.
func (s *Service) mutateCase(ctx context.Context, caseID id.CaseID, fn func(ctx context.Context, store Store, c *models.SocialCase) error) error {
	return s.tx.RunInTx(withShardKey(ctx, "case:"+caseID.String()), func(ctx context.Context, store Store) error {
		c, err := store.FindCaseForUpdate(ctx, caseID)
		if err != nil {
			return translate(err, "case not found", "failed to load case")
		}
		return fn(ctx, store, c)
	})
}

// mutateItem resolves the owning case and runs fn with it locked.
func (s *Service) mutateItem(ctx context.Context, itemID id.CaseItemID, fn func(ctx context.Context, store Store, c *models.SocialCase, item *models.CaseItem) error) error {
	if itemID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "item_id is required")
	}
	caseID, err := s.store.FindCaseIDByItem(ctx, itemID)
	if err != nil {
		return translate(err, "item not found", "failed to load item")
	}
	return s.mutateCase(ctx, caseID, func(ctx context.Context, store Store, c *models.SocialCase) error {
		item, ok := c.Item(itemID)
		if !ok {
			return dErrors.New(dErrors.CodeNotFound, "item not found")
		}
		return fn(ctx, store, c, item)
	})
}

type deriveFunc func(models.CaseStatus, []*models.CaseItem) models.CaseStatus

// rederive recomputes the case status with derive and persists a change.
// Derivation never moves a case out of a terminal status.
func (s *Service) rederive(ctx context.Context, store Store, c *models.SocialCase, actorID id.UserID, rule string, derive deriveFunc) (bool, error) {
	from := c.Status
	if from.IsTerminal() {
		return false, nil
	}
	to := derive(from, c.Items)
	if !c.ApplyStatus(to, requestcontext.Now(ctx)) {
		return false, nil
	}
	if err := store.UpdateCase(ctx, c); err != nil {
		return false, translate(err, "case not found", "failed to update case status")
	}
	if s.metrics != nil {
		s.metrics.RecordTransition(string(from), string(to))
	}
	return true, s.emit(ctx, auditRecord{
		event:       audit.EventCaseStatusDerived,
		actorID:     actorID,
		subjectType: audit.SubjectCase,
		subjectID:   c.ID.String(),
		meta: map[string]string{
			"case_number": c.CaseNumber,
			"from_status": string(from),
			"to_status":   string(to),
			"rule":        rule,
		},
	})
}

type auditRecord struct {
	event       audit.AuditEvent
	actorID     id.UserID
	subjectType audit.SubjectType
	subjectID   string
	reason      string
	meta        map[string]string
}

// emit logs the event and hands it to the publisher. It runs inside the
// transaction, so a publisher failure aborts the change.
func (s *Service) emit(ctx context.Context, r auditRecord) error {
	attrs := make([]any, 0, 2*len(r.meta)+4)
	attrs = append(attrs, "subject_id", r.subjectID, "actor_id", r.actorID.String())
	for k, v := range r.meta {
		attrs = append(attrs, k, v)
	}
	if r.reason != "" {
		attrs = append(attrs, "reason", r.reason)
	}
	s.logAudit(ctx, string(r.event), attrs...)

	if s.auditPublisher == nil {
		return nil
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		ActorID:     r.actorID,
		SubjectType: r.subjectType,
		SubjectID:   r.subjectID,
		Action:      string(r.event),
		Reason:      r.reason,
		Metadata:    r.meta,
	}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

func (s *Service) logAudit(ctx context.Context, event string, attrs ...any) {
	args := append(attrs, "event", event, "log_type", "audit", "request_id", requestcontext.RequestID(ctx))
	s.logger.InfoContext(ctx, event, args...)
}

// translate maps store facts to domain errors. Domain errors pass through.
func translate(err error, notFoundMsg, internalMsg string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "item quantities violate the review rules")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
}

func recordSpanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	return err
}

func itemResult(c *models.SocialCase, item *models.CaseItem, changed bool) *models.ItemResult {
	return &models.ItemResult{
		Item:          item,
		CaseNumber:    c.CaseNumber,
		CaseStatus:    c.Status,
		StatusChanged: changed,
	}
}
