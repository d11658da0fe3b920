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

const (
	ruleMajority   = "majority"
	ruleCompletion = "completion"
)

// ReviewItem records a reviewer decision on one item. It does not touch the
// case status; call ReconcileCaseStatus afterwards.
func (s *Service) ReviewItem(ctx context.Context, actorID id.UserID, decision models.ItemDecision) (*models.ItemResult, error) {
	ctx, span := s.tracer.Start(ctx, "casework.ReviewItem", trace.WithAttributes(
		attribute.String("item_id", decision.ItemID.String()),
		attribute.String("decision", string(decision.Decision)),
	))
	defer span.End()

	if err := s.requireCapability(ctx, actorID, ports.CapabilityReviewCase); err != nil {
		return nil, recordSpanError(span, err)
	}
	if err := decision.Validate(); err != nil {
		return nil, recordSpanError(span, err)
	}

	var result *models.ItemResult
	err := s.mutateItem(ctx, decision.ItemID, func(ctx context.Context, store Store, c *models.SocialCase, item *models.CaseItem) error {
		if err := c.CanMutateItems(); err != nil {
			return err
		}
		if err := s.applyDecision(ctx, store, c, item, actorID, decision, audit.EventItemReviewed); err != nil {
			return err
		}
		result = itemResult(c, item, false)
		return nil
	})
	if err != nil {
		return nil, recordSpanError(span, err)
	}
	return result, nil
}

// resolveDecision checks that d may change item and returns the approved
// quantity it records. Nothing is written.
func resolveDecision(item *models.CaseItem, d models.ItemDecision) (int64, error) {
	if err := item.CanReview(); err != nil {
		return 0, err
	}
	qty, err := item.ResolveApprovedQuantity(d.Decision, d.ApprovedQuantity)
	if err != nil {
		if de, ok := dErrors.As(err); ok {
			return 0, de.WithDetail("item_id", item.ID.String())
		}
		return 0, err
	}
	return qty, nil
}

// applyDecision validates and writes one decision and emits event for it.
func (s *Service) applyDecision(ctx context.Context, store Store, c *models.SocialCase, item *models.CaseItem, actorID id.UserID, d models.ItemDecision, event audit.AuditEvent) error {
	qty, err := resolveDecision(item, d)
	if err != nil {
		return err
	}
	from := item.Status
	item.ApplyReview(d.Decision, qty, actorID, d.Note, requestcontext.Now(ctx))
	if err := store.UpdateItems(ctx, []*models.CaseItem{item}); err != nil {
		return translate(err, "item not found", "failed to update item")
	}
	return s.recordDecision(ctx, c, item, from, actorID, d.Decision, event)
}

func (s *Service) recordDecision(ctx context.Context, c *models.SocialCase, item *models.CaseItem, from models.ItemStatus, actorID id.UserID, decision models.ItemStatus, event audit.AuditEvent) error {
	if s.metrics != nil {
		s.metrics.RecordDecision(string(decision))
	}
	var approved int64
	if item.ApprovedQuantity != nil {
		approved = *item.ApprovedQuantity
	}
	return s.emit(ctx, auditRecord{
		event:       event,
		actorID:     actorID,
		subjectType: audit.SubjectCaseItem,
		subjectID:   item.ID.String(),
		reason:      item.ReviewNote,
		meta: map[string]string{
			"case_id":            c.ID.String(),
			"case_number":        c.CaseNumber,
			"from_status":        string(from),
			"to_status":          string(item.Status),
			"requested_quantity": strconv.FormatInt(item.RequestedQuantity, 10),
			"approved_quantity":  strconv.FormatInt(approved, 10),
		},
	})
}

// ReviewCase applies every decision and then sets the case status to
// generalStatus directly, without derivation. When the derived status
// would differ the mismatch is logged and kept in the audit record.
func (s *Service) ReviewCase(ctx context.Context, actorID id.UserID, caseID id.CaseID, decisions []models.ItemDecision, generalStatus models.CaseStatus) (*models.SocialCase, error) {
	ctx, span := s.tracer.Start(ctx, "casework.ReviewCase", trace.WithAttributes(
		attribute.String("case_id", caseID.String()),
		attribute.Int("decisions", len(decisions)),
		attribute.String("general_status", string(generalStatus)),
	))
	defer span.End()

	if err := s.requireCapability(ctx, actorID, ports.CapabilityReviewCase); err != nil {
		return nil, recordSpanError(span, err)
	}
	if !models.ValidGeneralStatus(generalStatus) {
		return nil, recordSpanError(span, dErrors.New(dErrors.CodeValidation, "general status must be approved, rejected or closed"))
	}
	seen := make(map[id.CaseItemID]struct{}, len(decisions))
	for _, d := range decisions {
		if err := d.Validate(); err != nil {
			return nil, recordSpanError(span, err)
		}
		if _, dup := seen[d.ItemID]; dup {
			return nil, recordSpanError(span, dErrors.New(dErrors.CodeValidation, "item reviewed twice").
				WithDetail("item_id", d.ItemID.String()))
		}
		seen[d.ItemID] = struct{}{}
	}

	var result *models.SocialCase
	err := s.mutateCase(ctx, caseID, func(ctx context.Context, store Store, c *models.SocialCase) error {
		if err := c.CanMutateItems(); err != nil {
			return err
		}
		// Every decision is resolved before anything is written.
		items := make([]*models.CaseItem, len(decisions))
		qtys := make([]int64, len(decisions))
		for i, d := range decisions {
			item, ok := c.Item(d.ItemID)
			if !ok {
				return dErrors.New(dErrors.CodeNotFound, "item does not belong to case").
					WithDetail("item_id", d.ItemID.String())
			}
			qty, err := resolveDecision(item, d)
			if err != nil {
				return err
			}
			items[i], qtys[i] = item, qty
		}

		now := requestcontext.Now(ctx)
		before := make([]models.ItemStatus, len(items))
		for i, item := range items {
			before[i] = item.Status
			item.ApplyReview(decisions[i].Decision, qtys[i], actorID, decisions[i].Note, now)
		}
		from := c.Status
		derived := models.DeriveMajorityStatus(from, c.Items)
		c.ApplyStatus(generalStatus, now)

		if len(items) > 0 {
			if err := store.UpdateItems(ctx, items); err != nil {
				return translate(err, "item not found", "failed to update items")
			}
		}
		if err := store.UpdateCase(ctx, c); err != nil {
			return translate(err, "case not found", "failed to update case")
		}
		for i, item := range items {
			if err := s.recordDecision(ctx, c, item, before[i], actorID, decisions[i].Decision, audit.EventItemReviewed); err != nil {
				return err
			}
		}
		if s.metrics != nil && from != c.Status {
			s.metrics.RecordTransition(string(from), string(c.Status))
		}
		if derived != generalStatus {
			s.logger.WarnContext(ctx, "bulk review status differs from derived status",
				"case_id", c.ID.String(),
				"case_number", c.CaseNumber,
				"requested_status", string(generalStatus),
				"derived_status", string(derived),
				"request_id", requestcontext.RequestID(ctx),
			)
			if s.metrics != nil {
				s.metrics.IncrementDerivationMismatch()
			}
		}
		result = c
		return s.emit(ctx, auditRecord{
			event:       audit.EventCaseReviewed,
			actorID:     actorID,
			subjectType: audit.SubjectCase,
			subjectID:   c.ID.String(),
			meta: map[string]string{
				"case_number":    c.CaseNumber,
				"from_status":    string(from),
				"to_status":      string(c.Status),
				"derived_status": string(derived),
				"items_reviewed": strconv.Itoa(len(decisions)),
			},
		})
	})
	if err != nil {
		return nil, recordSpanError(span, err)
	}
	return result, nil
}

// ApproveItem approves an item at its requested quantity, or keeps the
// quantity of an earlier approval. Only the item assignee may call it. The
// case status is re-derived afterwards.
func (s *Service) ApproveItem(ctx context.Context, actorID id.UserID, itemID id.CaseItemID) (*models.ItemResult, error) {
	ctx, span := s.tracer.Start(ctx, "casework.ApproveItem", trace.WithAttributes(attribute.String("item_id", itemID.String())))
	defer span.End()

	if actorID.IsNil() {
		return nil, recordSpanError(span, dErrors.New(dErrors.CodeUnauthorized, "actor is required"))
	}
	var result *models.ItemResult
	err := s.mutateItem(ctx, itemID, func(ctx context.Context, store Store, c *models.SocialCase, item *models.CaseItem) error {
		if err := c.CanMutateItems(); err != nil {
			return err
		}
		if !item.IsAssignedTo(actorID) {
			return dErrors.New(dErrors.CodeForbidden, "only the item assignee can approve it")
		}
		var qty *int64
		if item.Status == models.ItemStatusApproved {
			qty = item.ApprovedQuantity
		}
		d := models.ItemDecision{ItemID: itemID, Decision: models.ItemStatusApproved, ApprovedQuantity: qty}
		if err := s.applyDecision(ctx, store, c, item, actorID, d, audit.EventItemApproved); err != nil {
			return err
		}
		changed, err := s.rederive(ctx, store, c, actorID, ruleMajority, models.DeriveMajorityStatus)
		if err != nil {
			return err
		}
		result = itemResult(c, item, changed)
		return nil
	})
	if err != nil {
		return nil, recordSpanError(span, err)
	}
	return result, nil
}

// RejectItem rejects an item with a 10 to 500 character reason. Only the
// item assignee may call it. The case status is re-derived afterwards.
func (s *Service) RejectItem(ctx context.Context, actorID id.UserID, itemID id.CaseItemID, reason string) (*models.ItemResult, error) {
	ctx, span := s.tracer.Start(ctx, "casework.RejectItem", trace.WithAttributes(attribute.String("item_id", itemID.String())))
	defer span.End()

	if actorID.IsNil() {
		return nil, recordSpanError(span, dErrors.New(dErrors.CodeUnauthorized, "actor is required"))
	}
	reason, err := models.ValidateReason(reason)
	if err != nil {
		return nil, recordSpanError(span, err)
	}

	var result *models.ItemResult
	err = s.mutateItem(ctx, itemID, func(ctx context.Context, store Store, c *models.SocialCase, item *models.CaseItem) error {
		if err := c.CanMutateItems(); err != nil {
			return err
		}
		if !item.IsAssignedTo(actorID) {
			return dErrors.New(dErrors.CodeForbidden, "only the item assignee can reject it")
		}
		d := models.ItemDecision{ItemID: itemID, Decision: models.ItemStatusRejected, Note: reason}
		if err := s.applyDecision(ctx, store, c, item, actorID, d, audit.EventItemRejected); err != nil {
			return err
		}
		changed, err := s.rederive(ctx, store, c, actorID, ruleMajority, models.DeriveMajorityStatus)
		if err != nil {
			return err
		}
		result = itemResult(c, item, changed)
		return nil
	})
	if err != nil {
		return nil, recordSpanError(span, err)
	}
	return result, nil
}

// ApproveCase approves the case and every item not yet decided or
// delivered; those items get their requested quantity. Only the case
// assignee may call it.
func (s *Service) ApproveCase(ctx context.Context, actorID id.UserID, caseID id.CaseID) (*models.SocialCase, error) {
	ctx, span := s.tracer.Start(ctx, "casework.ApproveCase", trace.WithAttributes(attribute.String("case_id", caseID.String())))
	defer span.End()

	if actorID.IsNil() {
		return nil, recordSpanError(span, dErrors.New(dErrors.CodeUnauthorized, "actor is required"))
	}
	var result *models.SocialCase
	err := s.mutateCase(ctx, caseID, func(ctx context.Context, store Store, c *models.SocialCase) error {
		if err := c.CanDecide(actorID); err != nil {
			return err
		}
		before := make(map[id.CaseItemID]models.ItemStatus, len(c.Items))
		for _, item := range c.Items {
			before[item.ID] = item.Status
		}
		from := c.Status
		c.ApplyApproval(requestcontext.Now(ctx))

		var changed []*models.CaseItem
		for _, item := range c.Items {
			if before[item.ID] != item.Status {
				changed = append(changed, item)
			}
		}
		if len(changed) > 0 {
			if err := store.UpdateItems(ctx, changed); err != nil {
				return translate(err, "item not found", "failed to approve items")
			}
		}
		if err := store.UpdateCase(ctx, c); err != nil {
			return translate(err, "case not found", "failed to approve case")
		}
		if s.metrics != nil && from != c.Status {
			s.metrics.RecordTransition(string(from), string(c.Status))
		}
		result = c
		return s.emit(ctx, auditRecord{
			event:       audit.EventCaseApproved,
			actorID:     actorID,
			subjectType: audit.SubjectCase,
			subjectID:   c.ID.String(),
			meta: map[string]string{
				"case_number":    c.CaseNumber,
				"from_status":    string(from),
				"to_status":      string(c.Status),
				"items_approved": strconv.Itoa(len(changed)),
			},
		})
	})
	if err != nil {
		return nil, recordSpanError(span, err)
	}
	return result, nil
}

// RejectCase rejects the case with a 10 to 500 character reason. Only the
// case assignee may call it. Items keep their status.
func (s *Service) RejectCase(ctx context.Context, actorID id.UserID, caseID id.CaseID, reason string) (*models.SocialCase, error) {
	ctx, span := s.tracer.Start(ctx, "casework.RejectCase", trace.WithAttributes(attribute.String("case_id", caseID.String())))
	defer span.End()

	if actorID.IsNil() {
		return nil, recordSpanError(span, dErrors.New(dErrors.CodeUnauthorized, "actor is required"))
	}
	reason, err := models.ValidateReason(reason)
	if err != nil {
		return nil, recordSpanError(span, err)
	}

	var result *models.SocialCase
	err = s.mutateCase(ctx, caseID, func(ctx context.Context, store Store, c *models.SocialCase) error {
		if err := c.CanDecide(actorID); err != nil {
			return err
		}
		from := c.Status
		c.ApplyRejection(reason, requestcontext.Now(ctx))
		if err := store.UpdateCase(ctx, c); err != nil {
			return translate(err, "case not found", "failed to reject case")
		}
		if s.metrics != nil {
			s.metrics.RecordTransition(string(from), string(c.Status))
		}
		result = c
		return s.emit(ctx, auditRecord{
			event:       audit.EventCaseRejected,
			actorID:     actorID,
			subjectType: audit.SubjectCase,
			subjectID:   c.ID.String(),
			reason:      reason,
			meta: map[string]string{
				"case_number": c.CaseNumber,
				"from_status": string(from),
				"to_status":   string(c.Status),
			},
		})
	})
	if err != nil {
		return nil, recordSpanError(span, err)
	}
	return result, nil
}
