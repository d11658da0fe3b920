package adapters

import (
	"context"

	cwmodels "ayuda/internal/casework/models"
	id "ayuda/pkg/domain"
)

// CaseReader is the slice of the case workflow the attachments need.
type CaseReader interface {
	GetCase(ctx context.Context, caseID id.CaseID) (*cwmodels.SocialCase, error)
}

// CaseAdapter answers existence checks from the case workflow.
type CaseAdapter struct {
	cases CaseReader
}

func NewCaseAdapter(cases CaseReader) *CaseAdapter {
	return &CaseAdapter{cases: cases}
}

func (a *CaseAdapter) CaseExists(ctx context.Context, caseID id.CaseID) error {
	_, err := a.cases.GetCase(ctx, caseID)
	return err
}
