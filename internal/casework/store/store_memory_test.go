package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ayuda/internal/casework/models"
	id "ayuda/pkg/domain"
	"ayuda/pkg/platform/sentinel"
)

func newCase(t *testing.T, number string, beneficiary id.CitizenID, category id.CategoryID) *models.SocialCase {
	t.Helper()
	now := time.Now()
	c, err := models.NewSocialCase(id.CaseID(uuid.New()), number, id.CitizenID(uuid.New()), beneficiary, category, nil,
		models.ChannelPhone, "", id.UserID(uuid.New()), now)
	require.NoError(t, err)
	item, err := models.NewCaseItem(id.CaseItemID(uuid.New()), c.ID, models.SupplyTarget(id.SupplyID(uuid.New())), "", 3, now)
	require.NoError(t, err)
	c.Items = []*models.CaseItem{item}
	return c
}

func TestInMemoryStoreCreateCase(t *testing.T) {
	ctx := context.Background()
	beneficiary := id.CitizenID(uuid.New())
	category := id.CategoryID(uuid.New())

	t.Run("second active case for the same pair is refused", func(t *testing.T) {
		s := NewInMemoryStore()
		require.NoError(t, s.CreateCase(ctx, newCase(t, "AYU-2026-000001", beneficiary, category)))

		err := s.CreateCase(ctx, newCase(t, "AYU-2026-000002", beneficiary, category))

		assert.ErrorIs(t, err, ErrActiveCaseExists)
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("a closed case does not block", func(t *testing.T) {
		s := NewInMemoryStore()
		first := newCase(t, "AYU-2026-000001", beneficiary, category)
		require.NoError(t, s.CreateCase(ctx, first))
		first.ApplyStatus(models.CaseStatusClosed, time.Now())
		require.NoError(t, s.UpdateCase(ctx, first))

		assert.NoError(t, s.CreateCase(ctx, newCase(t, "AYU-2026-000002", beneficiary, category)))
	})

	t.Run("case number collision", func(t *testing.T) {
		s := NewInMemoryStore()
		require.NoError(t, s.CreateCase(ctx, newCase(t, "AYU-2026-000001", beneficiary, category)))

		err := s.CreateCase(ctx, newCase(t, "AYU-2026-000001", id.CitizenID(uuid.New()), category))

		assert.ErrorIs(t, err, ErrCaseNumberTaken)
	})
}

func TestInMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	c := newCase(t, "AYU-2026-000010", id.CitizenID(uuid.New()), id.CategoryID(uuid.New()))
	require.NoError(t, s.CreateCase(ctx, c))

	loaded, err := s.FindCase(ctx, c.ID)
	require.NoError(t, err)
	loaded.Status = models.CaseStatusRejected
	loaded.Items[0].Status = models.ItemStatusFulfilled

	again, err := s.FindCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CaseStatusOpen, again.Status)
	assert.Equal(t, models.ItemStatusPending, again.Items[0].Status)
}

func TestInMemoryStoreUpdateItemsChecksQuantities(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	c := newCase(t, "AYU-2026-000011", id.CitizenID(uuid.New()), id.CategoryID(uuid.New()))
	require.NoError(t, s.CreateCase(ctx, c))

	bad := *c.Items[0]
	bad.Status = models.ItemStatusRejected

	err := s.UpdateItems(ctx, []*models.CaseItem{&bad})

	assert.True(t, errors.Is(err, sentinel.ErrInvalidState))
}

func TestInMemoryStoreSoftDelete(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	beneficiary := id.CitizenID(uuid.New())
	category := id.CategoryID(uuid.New())
	c := newCase(t, "AYU-2026-000012", beneficiary, category)
	require.NoError(t, s.CreateCase(ctx, c))

	require.NoError(t, s.SoftDeleteCase(ctx, c.ID, time.Now()))

	_, err := s.FindCase(ctx, c.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	_, err = s.FindCaseIDByItem(ctx, c.Items[0].ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	listed, err := s.ListCases(ctx, models.ListFilter{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, listed)
	assert.NoError(t, s.CreateCase(ctx, newCase(t, "AYU-2026-000013", beneficiary, category)),
		"a deleted case no longer blocks")
}

func TestInMemoryStoreListCases(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	assignee := id.UserID(uuid.New())
	for i, number := range []string{"AYU-2026-000021", "AYU-2026-000022", "AYU-2026-000023"} {
		c := newCase(t, number, id.CitizenID(uuid.New()), id.CategoryID(uuid.New()))
		c.CreatedAt = c.CreatedAt.Add(time.Duration(i) * time.Minute)
		if i > 0 {
			c.ApplyCaseAssignment(assignee, c.CreatedAt)
		}
		require.NoError(t, s.CreateCase(ctx, c))
	}

	all, err := s.ListCases(ctx, models.ListFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "AYU-2026-000023", all[0].CaseNumber, "newest first")

	mine, err := s.ListCases(ctx, models.ListFilter{AssignedTo: &assignee, Status: models.CaseStatusInProgress, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	page, err := s.ListCases(ctx, models.ListFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "AYU-2026-000022", page[0].CaseNumber)
}
