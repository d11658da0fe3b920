package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ayuda/internal/inventory/metrics"
	"ayuda/internal/inventory/models"
	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
	"ayuda/pkg/platform/audit"
	"ayuda/pkg/platform/sentinel"
	"ayuda/pkg/requestcontext"
)

// Store is the persistence surface of the ledger. It is pure I/O; all rules
// live in the service and models.
type Store interface {
	CreateSupply(ctx context.Context, supply *models.Supply) error
	FindSupply(ctx context.Context, supplyID id.SupplyID) (*models.Supply, error)
	FindSupplyForUpdate(ctx context.Context, supplyID id.SupplyID) (*models.Supply, error)
	UpdateStock(ctx context.Context, supplyID id.SupplyID, stock int64, at time.Time) error
	AppendMovement(ctx context.Context, m *models.Movement) error
	ListMovements(ctx context.Context, supplyID id.SupplyID) ([]*models.Movement, error)
	ListLowStock(ctx context.Context) ([]*models.Supply, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Ledger is the only writer of Supply.CurrentStock. Every change appends an
// immutable movement and adjusts the cached counter in one transaction.
type Ledger struct {
	store          Store
	tx             StoreTx
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Ledger)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(l *Ledger) {
		l.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Ledger) {
		l.metrics = m
	}
}

// WithTx replaces the in-memory runner, typically with a postgres one.
func WithTx(tx StoreTx) Option {
	return func(l *Ledger) {
		l.tx = tx
	}
}

func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer("ayuda/inventory"),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.tx == nil {
		l.tx = NewShardedTx(store)
	}
	return l
}

// RegisterSupply adds a catalog supply with zero stock.
func (l *Ledger) RegisterSupply(ctx context.Context, name, unit string, minStock int64) (*models.Supply, error) {
	supply, err := models.NewSupply(id.SupplyID(uuid.New()), name, unit, minStock, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}
	if err := l.store.CreateSupply(ctx, supply); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register supply")
	}
	return supply, nil
}

// Credit appends an entry movement and raises the balance.
func (l *Ledger) Credit(ctx context.Context, actorID id.UserID, req models.CreditRequest) (*models.Supply, *models.Movement, error) {
	ctx, span := l.tracer.Start(ctx, "inventory.Credit", trace.WithAttributes(
		attribute.String("supply_id", req.SupplyID.String()),
		attribute.Int64("quantity", req.Quantity),
	))
	defer span.End()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, nil, recordSpanError(span, err)
	}

	var (
		supply   *models.Supply
		movement *models.Movement
	)
	err := l.tx.RunInTx(withShardKey(ctx, req.SupplyID.String()), func(ctx context.Context, store Store) error {
		var err error
		supply, err = store.FindSupplyForUpdate(ctx, req.SupplyID)
		if err != nil {
			return translateLookup(err)
		}
		now := requestcontext.Now(ctx)
		movement, err = models.NewMovement(id.MovementID(uuid.New()), supply.ID, models.MovementEntry, req.Quantity, req.Reason, actorID, req.Notes, nil, now)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, err.Error())
		}
		before := supply.CurrentStock
		supply.ApplyCredit(req.Quantity, now)

		if err := store.AppendMovement(ctx, movement); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record movement")
		}
		if err := store.UpdateStock(ctx, supply.ID, supply.CurrentStock, now); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update stock")
		}
		return l.emit(ctx, audit.EventStockCredited, actorID, movement, before, supply.CurrentStock)
	})
	if err != nil {
		return nil, nil, recordSpanError(span, err)
	}

	l.recordMovement(movement, supply)
	return supply, movement, nil
}

// Debit appends an exit movement and lowers the balance. The supply row is
// locked before the sufficiency check so concurrent debits cannot both pass
// against a stale balance. On InsufficientStock nothing is written.
//
// When ctx already carries a transaction (for example a case item being
// fulfilled) the debit joins it.
func (l *Ledger) Debit(ctx context.Context, actorID id.UserID, req models.DebitRequest) (*models.Supply, *models.Movement, error) {
	start := time.Now()
	ctx, span := l.tracer.Start(ctx, "inventory.Debit", trace.WithAttributes(
		attribute.String("supply_id", req.SupplyID.String()),
		attribute.Int64("quantity", req.Quantity),
	))
	defer span.End()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, nil, recordSpanError(span, err)
	}

	var (
		supply   *models.Supply
		movement *models.Movement
	)
	err := l.tx.RunInTx(withShardKey(ctx, req.SupplyID.String()), func(ctx context.Context, store Store) error {
		var err error
		supply, err = store.FindSupplyForUpdate(ctx, req.SupplyID)
		if err != nil {
			return translateLookup(err)
		}
		if err := supply.CanDebit(req.Quantity); err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		movement, err = models.NewMovement(id.MovementID(uuid.New()), supply.ID, models.MovementExit, req.Quantity, req.Reason, actorID, req.Notes, req.OriginItemID, now)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, err.Error())
		}
		before := supply.CurrentStock
		supply.ApplyDebit(req.Quantity, now)

		if err := store.AppendMovement(ctx, movement); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record movement")
		}
		if err := store.UpdateStock(ctx, supply.ID, supply.CurrentStock, now); err != nil {
			if errors.Is(err, sentinel.ErrInvalidState) {
				return dErrors.New(dErrors.CodeInsufficientStock, "insufficient stock")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update stock")
		}
		return l.emit(ctx, audit.EventStockDebited, actorID, movement, before, supply.CurrentStock)
	})
	if l.metrics != nil {
		l.metrics.ObserveDebit(start)
	}
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInsufficientStock) {
			l.logger.WarnContext(ctx, "debit refused: insufficient stock",
				"supply_id", req.SupplyID.String(),
				"requested", req.Quantity,
				"request_id", requestcontext.RequestID(ctx),
			)
			if l.metrics != nil {
				l.metrics.IncrementInsufficientStock()
			}
		}
		return nil, nil, recordSpanError(span, err)
	}

	l.recordMovement(movement, supply)
	return supply, movement, nil
}

// Balance returns the supply with its cached balance.
func (l *Ledger) Balance(ctx context.Context, supplyID id.SupplyID) (*models.Supply, error) {
	supply, err := l.store.FindSupply(ctx, supplyID)
	if err != nil {
		return nil, translateLookup(err)
	}
	return supply, nil
}

// Movements returns the ledger for a supply in insertion order.
func (l *Ledger) Movements(ctx context.Context, supplyID id.SupplyID) ([]*models.Movement, error) {
	movements, err := l.store.ListMovements(ctx, supplyID)
	if err != nil {
		return nil, translateLookup(err)
	}
	return movements, nil
}

// Rebuild folds the ledger and compares it to the cached counter. It never
// writes.
func (l *Ledger) Rebuild(ctx context.Context, supplyID id.SupplyID) (*models.ReconcileReport, error) {
	ctx, span := l.tracer.Start(ctx, "inventory.Rebuild", trace.WithAttributes(attribute.String("supply_id", supplyID.String())))
	defer span.End()

	var report *models.ReconcileReport
	err := l.tx.RunInTx(withShardKey(ctx, supplyID.String()), func(ctx context.Context, store Store) error {
		var err error
		report, err = l.fold(ctx, store, supplyID, false)
		return err
	})
	if err != nil {
		return nil, recordSpanError(span, err)
	}
	if !report.Consistent() {
		l.logger.WarnContext(ctx, "stock ledger drift detected",
			"supply_id", supplyID.String(),
			"cached", report.Cached,
			"derived", report.Derived,
			"negative_at", report.NegativeAt,
		)
		if l.metrics != nil {
			l.metrics.IncrementReconcileDrift()
		}
	}
	return report, nil
}

// Repair rewrites the cached counter from the ledger fold. A ledger whose
// fold is negative cannot be repaired automatically.
func (l *Ledger) Repair(ctx context.Context, actorID id.UserID, supplyID id.SupplyID) (*models.ReconcileReport, error) {
	ctx, span := l.tracer.Start(ctx, "inventory.Repair", trace.WithAttributes(attribute.String("supply_id", supplyID.String())))
	defer span.End()

	var report *models.ReconcileReport
	err := l.tx.RunInTx(withShardKey(ctx, supplyID.String()), func(ctx context.Context, store Store) error {
		var err error
		report, err = l.fold(ctx, store, supplyID, true)
		if err != nil {
			return err
		}
		if report.Derived < 0 {
			return dErrors.New(dErrors.CodeInvariantViolation, "ledger fold is negative; manual correction required").
				WithDetail("derived", report.Derived)
		}
		if report.Cached == report.Derived {
			return nil
		}
		if err := store.UpdateStock(ctx, supplyID, report.Derived, requestcontext.Now(ctx)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to repair stock")
		}
		if l.auditPublisher == nil {
			return nil
		}
		return l.auditPublisher.Emit(ctx, audit.Event{
			ActorID:     actorID,
			SubjectType: audit.SubjectSupply,
			SubjectID:   supplyID.String(),
			Action:      string(audit.EventStockRepaired),
			Metadata: map[string]string{
				"from_stock": strconv.FormatInt(report.Cached, 10),
				"to_stock":   strconv.FormatInt(report.Derived, 10),
			},
		})
	})
	if err != nil {
		return nil, recordSpanError(span, err)
	}
	if report.Cached != report.Derived {
		l.logger.InfoContext(ctx, string(audit.EventStockRepaired),
			"supply_id", supplyID.String(),
			"from_stock", report.Cached,
			"to_stock", report.Derived,
			"event", string(audit.EventStockRepaired),
			"log_type", "audit",
		)
	}
	return report, nil
}

// LowStock lists supplies at or below their alert threshold.
func (l *Ledger) LowStock(ctx context.Context) ([]*models.Supply, error) {
	supplies, err := l.store.ListLowStock(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list low stock")
	}
	return supplies, nil
}

func (l *Ledger) fold(ctx context.Context, store Store, supplyID id.SupplyID, lock bool) (*models.ReconcileReport, error) {
	find := store.FindSupply
	if lock {
		find = store.FindSupplyForUpdate
	}
	supply, err := find(ctx, supplyID)
	if err != nil {
		return nil, translateLookup(err)
	}
	movements, err := store.ListMovements(ctx, supplyID)
	if err != nil {
		return nil, translateLookup(err)
	}
	return models.Fold(supplyID, supply.CurrentStock, movements), nil
}

func (l *Ledger) emit(ctx context.Context, event audit.AuditEvent, actorID id.UserID, m *models.Movement, before, after int64) error {
	l.logger.InfoContext(ctx, string(event),
		"supply_id", m.SupplyID.String(),
		"movement_id", m.ID.String(),
		"quantity", m.Quantity,
		"reason", string(m.Reason),
		"from_stock", before,
		"to_stock", after,
		"event", string(event),
		"log_type", "audit",
		"request_id", requestcontext.RequestID(ctx),
	)
	if l.auditPublisher == nil {
		return nil
	}
	meta := map[string]string{
		"supply_id":  m.SupplyID.String(),
		"kind":       string(m.Kind),
		"quantity":   strconv.FormatInt(m.Quantity, 10),
		"reason":     string(m.Reason),
		"from_stock": strconv.FormatInt(before, 10),
		"to_stock":   strconv.FormatInt(after, 10),
	}
	if m.OriginItemID != nil {
		meta["origin_item_id"] = m.OriginItemID.String()
	}
	if err := l.auditPublisher.Emit(ctx, audit.Event{
		ActorID:     actorID,
		SubjectType: audit.SubjectMovement,
		SubjectID:   m.ID.String(),
		Action:      string(event),
		Reason:      m.Notes,
		Metadata:    meta,
	}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

func (l *Ledger) recordMovement(m *models.Movement, supply *models.Supply) {
	if l.metrics != nil {
		l.metrics.RecordMovement(string(m.Kind), string(m.Reason), supply.ID.String(), supply.CurrentStock)
	}
}

func translateLookup(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "supply not found")
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load supply")
}

func recordSpanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	return err
}
