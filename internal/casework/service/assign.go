package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ayuda/internal/casework/models"
	"ayuda/internal/casework/ports"
	casestore "ayuda/internal/casework/store"
	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
	"ayuda/pkg/platform/audit"
	"ayuda/pkg/platform/sentinel"
	"ayuda/pkg/requestcontext"
)

// AssignCase routes work to assigneeID.
//
// With itemIDs, exactly those items change owner and an open case moves to
// in_progress; the case assignee and unlisted items are untouched. Without
// itemIDs, assigneeID becomes the case owner, the case moves to in_progress
// and every unassigned item follows; items already owned by someone else
// keep their owner.
func (s *Service) AssignCase(ctx context.Context, actorID id.UserID, caseID id.CaseID, assigneeID id.UserID, itemIDs []id.CaseItemID) (*models.SocialCase, error) {
	ctx, span := s.tracer.Start(ctx, "casework.AssignCase", trace.WithAttributes(
		attribute.String("case_id", caseID.String()),
		attribute.Int("items", len(itemIDs)),
	))
	defer span.End()

	if err := s.requireCapability(ctx, actorID, ports.CapabilityAssignCase); err != nil {
		return nil, recordSpanError(span, err)
	}
	if assigneeID.IsNil() {
		return nil, recordSpanError(span, dErrors.New(dErrors.CodeValidation, "assignee_id is required"))
	}
	itemIDs = dedupeItems(itemIDs)

	var result *models.SocialCase
	err := s.mutateCase(ctx, caseID, func(ctx context.Context, store Store, c *models.SocialCase) error {
		if err := c.CanMutateItems(); err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		from := c.Status

		var (
			changed []*models.CaseItem
			event   = audit.EventCaseAssigned
			err     error
		)
		if len(itemIDs) > 0 {
			event = audit.EventCaseItemsAssigned
			changed, err = c.ApplyItemAssignment(assigneeID, itemIDs, now)
			if err != nil {
				return err
			}
		} else {
			changed = c.ApplyCaseAssignment(assigneeID, now)
		}

		if err := s.checkReopen(ctx, store, c, from); err != nil {
			return err
		}
		if err := s.updateCase(ctx, store, c, "failed to assign case"); err != nil {
			return err
		}
		if len(changed) > 0 {
			if err := store.UpdateItems(ctx, changed); err != nil {
				return translate(err, "item not found", "failed to assign items")
			}
		}
		if s.metrics != nil && from != c.Status {
			s.metrics.RecordTransition(string(from), string(c.Status))
		}

		ids := make([]string, 0, len(changed))
		for _, item := range changed {
			ids = append(ids, item.ID.String())
		}
		result = c
		return s.emit(ctx, auditRecord{
			event:       event,
			actorID:     actorID,
			subjectType: audit.SubjectCase,
			subjectID:   c.ID.String(),
			meta: map[string]string{
				"case_number": c.CaseNumber,
				"assignee_id": assigneeID.String(),
				"from_status": string(from),
				"to_status":   string(c.Status),
				"item_count":  strconv.Itoa(len(changed)),
				"item_ids":    strings.Join(ids, ","),
			},
		})
	})
	if err != nil {
		return nil, recordSpanError(span, err)
	}
	return result, nil
}

func dedupeItems(itemIDs []id.CaseItemID) []id.CaseItemID {
	if len(itemIDs) < 2 {
		return itemIDs
	}
	seen := make(map[id.CaseItemID]struct{}, len(itemIDs))
	out := itemIDs[:0:0]
	for _, itemID := range itemIDs {
		if _, dup := seen[itemID]; dup {
			continue
		}
		seen[itemID] = struct{}{}
		out = append(out, itemID)
	}
	return out
}

// checkReopen refuses to move a settled case back to an active status while
// the beneficiary holds another active case in the same category.
func (s *Service) checkReopen(ctx context.Context, st Store, c *models.SocialCase, from models.CaseStatus) error {
	if from.IsActive() || !c.Status.IsActive() {
		return nil
	}
	other, err := st.FindActiveCase(ctx, c.BeneficiaryID, c.CategoryID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return nil
	case err != nil:
		return translate(err, "case not found", "failed to check active cases")
	case other.ID != c.ID:
		return duplicateActive(other.CaseNumber)
	}
	return nil
}

// updateCase persists c. A concurrent reopen that loses the active-case
// index race surfaces as a duplicate, like CreateCase.
func (s *Service) updateCase(ctx context.Context, st Store, c *models.SocialCase, internalMsg string) error {
	err := st.UpdateCase(ctx, c)
	if errors.Is(err, casestore.ErrActiveCaseExists) {
		number := ""
		if other, lookupErr := s.store.FindActiveCase(ctx, c.BeneficiaryID, c.CategoryID); lookupErr == nil {
			number = other.CaseNumber
		}
		return duplicateActive(number)
	}
	if err != nil {
		return translate(err, "case not found", internalMsg)
	}
	return nil
}
