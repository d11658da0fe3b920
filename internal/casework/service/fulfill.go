package service

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ayuda/internal/casework/models"
	"ayuda/internal/casework/ports"
	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
	"ayuda/pkg/platform/audit"
	"ayuda/pkg/requestcontext"
)

// FulfillItem delivers an approved item and re-derives the case status with
// the majority rule.
func (s *Service) FulfillItem(ctx context.Context, actorID id.UserID, itemID id.CaseItemID) (*models.ItemResult, error) {
	return s.fulfill(ctx, "casework.FulfillItem", actorID, itemID, ruleMajority, models.DeriveMajorityStatus)
}

// FulfillItemFromCaseDetail delivers an approved item from the case detail
// screen. The case only closes once every item is fulfilled or rejected.
func (s *Service) FulfillItemFromCaseDetail(ctx context.Context, actorID id.UserID, itemID id.CaseItemID) (*models.ItemResult, error) {
	return s.fulfill(ctx, "casework.FulfillItemFromCaseDetail", actorID, itemID, ruleCompletion, models.DeriveCompletionStatus)
}

// fulfill debits stock for supply items before touching the item, so a
// refused debit under the strict policy leaves nothing changed. Debit, item
// update and audit events share one transaction.
func (s *Service) fulfill(ctx context.Context, spanName string, actorID id.UserID, itemID id.CaseItemID, rule string, derive deriveFunc) (*models.ItemResult, error) {
	ctx, span := s.tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("item_id", itemID.String()),
		attribute.String("stock_policy", string(s.stockPolicy)),
	))
	defer span.End()

	if err := s.requireCapability(ctx, actorID, ports.CapabilityFulfillItem); err != nil {
		return nil, recordSpanError(span, err)
	}

	var result *models.ItemResult
	err := s.mutateItem(ctx, itemID, func(ctx context.Context, store Store, c *models.SocialCase, item *models.CaseItem) error {
		if err := c.CanFulfillItems(); err != nil {
			return err
		}
		if err := item.CanFulfill(); err != nil {
			return err
		}

		var (
			movementID *id.MovementID
			skipped    bool
			stock      = "none"
		)
		qty := item.DeliverableQuantity()
		if item.Target.IsSupply() && qty > 0 {
			delivery, err := s.ledger.DeliverItem(ctx, actorID, item.Target.SupplyID, item.ID, qty)
			switch {
			case err == nil:
				mid := delivery.MovementID
				movementID = &mid
				stock = "debited"
			case dErrors.HasCode(err, dErrors.CodeInsufficientStock) && s.stockPolicy == StockPolicyBestEffort:
				skipped = true
				stock = "skipped"
				if err := s.skipDebit(ctx, actorID, c, item, qty, err); err != nil {
					return err
				}
			default:
				return err
			}
		}

		item.ApplyFulfillment(actorID, requestcontext.Now(ctx))
		if err := store.UpdateItems(ctx, []*models.CaseItem{item}); err != nil {
			return translate(err, "item not found", "failed to fulfill item")
		}
		meta := map[string]string{
			"case_id":     c.ID.String(),
			"case_number": c.CaseNumber,
			"target_kind": string(item.Target.Kind),
			"target_id":   item.Target.ID(),
			"quantity":    strconv.FormatInt(qty, 10),
			"stock":       stock,
		}
		if movementID != nil {
			meta["movement_id"] = movementID.String()
		}
		if err := s.emit(ctx, auditRecord{
			event:       audit.EventItemFulfilled,
			actorID:     actorID,
			subjectType: audit.SubjectCaseItem,
			subjectID:   item.ID.String(),
			meta:        meta,
		}); err != nil {
			return err
		}

		changed, err := s.rederive(ctx, store, c, actorID, rule, derive)
		if err != nil {
			return err
		}
		if s.metrics != nil {
			s.metrics.RecordFulfillment(string(item.Target.Kind), stock)
		}
		result = itemResult(c, item, changed)
		result.MovementID = movementID
		result.StockSkipped = skipped
		return nil
	})
	if err != nil {
		return nil, recordSpanError(span, err)
	}
	return result, nil
}

func (s *Service) skipDebit(ctx context.Context, actorID id.UserID, c *models.SocialCase, item *models.CaseItem, qty int64, cause error) error {
	available := ""
	if de, ok := dErrors.As(cause); ok {
		if v, ok := de.Details["available"]; ok {
			available = strconv.FormatInt(toInt64(v), 10)
		}
	}
	s.logger.WarnContext(ctx, "delivering without stock debit",
		"case_number", c.CaseNumber,
		"item_id", item.ID.String(),
		"supply_id", item.Target.SupplyID.String(),
		"requested", qty,
		"available", available,
		"request_id", requestcontext.RequestID(ctx),
	)
	return s.emit(ctx, auditRecord{
		event:       audit.EventStockDebitSkipped,
		actorID:     actorID,
		subjectType: audit.SubjectSupply,
		subjectID:   item.Target.SupplyID.String(),
		reason:      "insufficient stock",
		meta: map[string]string{
			"case_number": c.CaseNumber,
			"item_id":     item.ID.String(),
			"requested":   strconv.FormatInt(qty, 10),
			"available":   available,
		},
	})
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
