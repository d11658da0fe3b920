package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"ayuda/internal/casework/models"
	"ayuda/internal/casework/ports"
	"ayuda/internal/casework/store"
	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
	"ayuda/pkg/platform/audit"
	"ayuda/pkg/platform/sentinel"
	"ayuda/pkg/requestcontext"
)

// CreateCase opens a case with its items after the eligibility gates pass:
// the beneficiary profile must be complete, the catalog references must
// resolve and the beneficiary may not already hold an active case in the
// category.
//
// Case and items are written in one transaction. A case number collision
// regenerates the number; a concurrent create for the same beneficiary and
// category loses on the unique index and reports DuplicateActiveCase.
func (s *Service) CreateCase(ctx context.Context, actorID id.UserID, req models.CreateCaseRequest) (*models.SocialCase, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "casework.CreateCase", trace.WithAttributes(
		attribute.String("beneficiary_id", req.BeneficiaryID.String()),
		attribute.String("category_id", req.CategoryID.String()),
		attribute.Int("items", len(req.Items)),
	))
	defer span.End()

	c, err := s.createCase(ctx, actorID, req)
	if s.metrics != nil {
		s.metrics.ObserveCreate(start)
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementCreateRejected(string(dErrors.CodeOf(err)))
		}
		return nil, recordSpanError(span, err)
	}
	if s.metrics != nil {
		s.metrics.IncrementCasesCreated()
	}
	return c, nil
}

func (s *Service) createCase(ctx context.Context, actorID id.UserID, req models.CreateCaseRequest) (*models.SocialCase, error) {
	if err := s.requireCapability(ctx, actorID, ports.CapabilityCreateCase); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkEligibility(ctx, req); err != nil {
		return nil, err
	}

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, "ayuda:case-create:"+req.BeneficiaryID.String())
		if err != nil {
			// The unique index still guards the invariant.
			s.logger.WarnContext(ctx, "case creation lock unavailable, relying on unique index",
				"beneficiary_id", req.BeneficiaryID.String(),
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		} else {
			defer release(context.WithoutCancel(ctx))
		}
	}

	if existing, err := s.store.FindActiveCase(ctx, req.BeneficiaryID, req.CategoryID); err == nil {
		return nil, duplicateActive(existing.CaseNumber)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, translate(err, "case not found", "failed to check active cases")
	}

	for attempt := 1; attempt <= s.numberAttempts; attempt++ {
		c, err := s.insertCase(ctx, actorID, req)
		switch {
		case err == nil:
			return c, nil
		case errors.Is(err, store.ErrCaseNumberTaken):
			s.logger.WarnContext(ctx, "case number collision, regenerating",
				"attempt", attempt,
				"request_id", requestcontext.RequestID(ctx),
			)
			continue
		case errors.Is(err, store.ErrActiveCaseExists):
			number := ""
			if existing, lookupErr := s.store.FindActiveCase(ctx, req.BeneficiaryID, req.CategoryID); lookupErr == nil {
				number = existing.CaseNumber
			}
			return nil, duplicateActive(number)
		default:
			return nil, translate(err, "case not found", "failed to create case")
		}
	}
	return nil, dErrors.New(dErrors.CodeInternal, "could not allocate a unique case number")
}

// checkEligibility runs the profile, category and target checks in
// parallel. Collaborator failures win over profile issues.
func (s *Service) checkEligibility(ctx context.Context, req models.CreateCaseRequest) error {
	var (
		mu     sync.Mutex
		issues []ports.ProfileIssue
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := s.profiles.Validate(gctx, req.BeneficiaryID)
		if err != nil {
			return err
		}
		mu.Lock()
		issues = found
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		return s.catalog.CheckCategory(gctx, req.CategoryID, req.SubcategoryID)
	})
	for i, item := range req.Items {
		g.Go(func() error {
			if err := s.catalog.CheckTarget(gctx, item.Target); err != nil {
				if de, ok := dErrors.As(err); ok && de.Code != dErrors.CodeInternal {
					return de.WithDetail("item_index", i)
				}
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if _, ok := dErrors.As(err); ok {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "eligibility check failed")
	}
	if len(issues) > 0 {
		return dErrors.New(dErrors.CodeIncompleteProfile, "beneficiary profile is incomplete").
			WithDetail("issues", issues)
	}
	return nil
}

func (s *Service) insertCase(ctx context.Context, actorID id.UserID, req models.CreateCaseRequest) (*models.SocialCase, error) {
	now := requestcontext.Now(ctx)
	number, err := models.GenerateCaseNumber(now.Year(), s.numberSource)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate case number")
	}
	c, err := models.NewSocialCase(id.CaseID(uuid.New()), number, req.ApplicantID, req.BeneficiaryID,
		req.CategoryID, req.SubcategoryID, req.Channel, req.Description, actorID, now)
	if err != nil {
		return nil, err
	}
	for _, line := range req.Items {
		item, err := models.NewCaseItem(id.CaseItemID(uuid.New()), c.ID, line.Target, line.Description, line.Quantity, now)
		if err != nil {
			return nil, err
		}
		c.Items = append(c.Items, item)
	}

	err = s.tx.RunInTx(withShardKey(ctx, "beneficiary:"+req.BeneficiaryID.String()), func(ctx context.Context, st Store) error {
		if err := st.CreateCase(ctx, c); err != nil {
			return err
		}
		return s.emit(ctx, auditRecord{
			event:       audit.EventCaseCreated,
			actorID:     actorID,
			subjectType: audit.SubjectCase,
			subjectID:   c.ID.String(),
			meta: map[string]string{
				"case_number":    c.CaseNumber,
				"beneficiary_id": c.BeneficiaryID.String(),
				"category_id":    c.CategoryID.String(),
				"channel":        string(c.Channel),
				"item_count":     strconv.Itoa(len(c.Items)),
				"to_status":      string(c.Status),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func duplicateActive(caseNumber string) error {
	err := dErrors.New(dErrors.CodeDuplicateActive, "beneficiary already has an active case in this category")
	if caseNumber != "" {
		err = err.WithDetail("case_number", caseNumber)
	}
	return err
}
