package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ayuda/internal/casework/models"
	"ayuda/internal/casework/ports"
	id "ayuda/pkg/domain"
	"ayuda/pkg/platform/audit"
	"ayuda/pkg/requestcontext"
)

func (s *Service) GetCase(ctx context.Context, caseID id.CaseID) (*models.SocialCase, error) {
	ctx, span := s.tracer.Start(ctx, "casework.GetCase", trace.WithAttributes(attribute.String("case_id", caseID.String())))
	defer span.End()

	c, err := s.store.FindCase(ctx, caseID)
	if err != nil {
		return nil, recordSpanError(span, translate(err, "case not found", "failed to load case"))
	}
	return c, nil
}

// ListCases returns cases matching filter, newest first.
func (s *Service) ListCases(ctx context.Context, filter models.ListFilter) ([]*models.SocialCase, error) {
	ctx, span := s.tracer.Start(ctx, "casework.ListCases")
	defer span.End()

	filter.Normalize()
	if err := filter.Validate(); err != nil {
		return nil, recordSpanError(span, err)
	}
	cases, err := s.store.ListCases(ctx, filter)
	if err != nil {
		return nil, recordSpanError(span, translate(err, "case not found", "failed to list cases"))
	}
	return cases, nil
}

// DeleteCase soft-deletes a case. It stops counting as active, so the
// beneficiary can open a new one in the same category.
func (s *Service) DeleteCase(ctx context.Context, actorID id.UserID, caseID id.CaseID) error {
	ctx, span := s.tracer.Start(ctx, "casework.DeleteCase", trace.WithAttributes(attribute.String("case_id", caseID.String())))
	defer span.End()

	if err := s.requireCapability(ctx, actorID, ports.CapabilityAssignCase); err != nil {
		return recordSpanError(span, err)
	}
	err := s.mutateCase(ctx, caseID, func(ctx context.Context, store Store, c *models.SocialCase) error {
		if err := store.SoftDeleteCase(ctx, c.ID, requestcontext.Now(ctx)); err != nil {
			return translate(err, "case not found", "failed to delete case")
		}
		return s.emit(ctx, auditRecord{
			event:       audit.EventCaseDeleted,
			actorID:     actorID,
			subjectType: audit.SubjectCase,
			subjectID:   c.ID.String(),
			meta: map[string]string{
				"case_number": c.CaseNumber,
				"status":      string(c.Status),
			},
		})
	})
	if err != nil {
		return recordSpanError(span, err)
	}
	return nil
}
