// Package store persists social cases and their items.
package store

import (
	"fmt"

	"ayuda/pkg/platform/sentinel"
)

// Both wrap sentinel.ErrConflict; callers that only care about a uniqueness
// failure can match on that.
var (
	// ErrActiveCaseExists reports that the beneficiary already holds an open
	// or in-progress case in the category.
	ErrActiveCaseExists = fmt.Errorf("active case exists: %w", sentinel.ErrConflict)

	// ErrCaseNumberTaken reports a case number collision.
	ErrCaseNumberTaken = fmt.Errorf("case number taken: %w", sentinel.ErrConflict)
)
