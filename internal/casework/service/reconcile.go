package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ayuda/internal/casework/models"
	"ayuda/internal/casework/ports"
	id "ayuda/pkg/domain"
)

// ReconcileCaseStatus re-derives the case status from its items with the
// majority rule. Terminal cases are returned unchanged. No actor is
// attached; audit records carry the nil user.
func (s *Service) ReconcileCaseStatus(ctx context.Context, caseID id.CaseID) (*models.SocialCase, error) {
	ctx, span := s.tracer.Start(ctx, "casework.ReconcileCaseStatus", trace.WithAttributes(attribute.String("case_id", caseID.String())))
	defer span.End()

	c, err := s.reconcile(ctx, id.UserID{}, caseID)
	if err != nil {
		return nil, recordSpanError(span, err)
	}
	return c, nil
}

// ReconcileCase is ReconcileCaseStatus requested by a reviewer, who is
// recorded as the actor of any derived change.
func (s *Service) ReconcileCase(ctx context.Context, actorID id.UserID, caseID id.CaseID) (*models.SocialCase, error) {
	ctx, span := s.tracer.Start(ctx, "casework.ReconcileCase", trace.WithAttributes(attribute.String("case_id", caseID.String())))
	defer span.End()

	if err := s.requireCapability(ctx, actorID, ports.CapabilityReviewCase); err != nil {
		return nil, recordSpanError(span, err)
	}
	c, err := s.reconcile(ctx, actorID, caseID)
	if err != nil {
		return nil, recordSpanError(span, err)
	}
	return c, nil
}

func (s *Service) reconcile(ctx context.Context, actorID id.UserID, caseID id.CaseID) (*models.SocialCase, error) {
	var result *models.SocialCase
	err := s.mutateCase(ctx, caseID, func(ctx context.Context, store Store, c *models.SocialCase) error {
		if _, err := s.rederive(ctx, store, c, actorID, ruleMajority, models.DeriveMajorityStatus); err != nil {
			return err
		}
		result = c
		return nil
	})
	return result, err
}
