package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intecsystems/nda-survey/internal/models"
)

func seedSurvey(t *testing.T, repo *MemoryRepository, bank string, status models.SurveyStatus, at time.Time) *models.Survey {
	t.Helper()
	s := &models.Survey{
		ID: uuid.NewString(),
		NdaDetails: models.NdaDetails{
			BankName:        bank,
			BankContactName: "Contact " + bank,
			ReceiverName:    "Intec Systems",
		},
		QuestionnaireData: models.QuestionnaireData{
			"contactPersonEmail": "ciso@" + bank + ".example",
		},
		SubmissionDate: at,
		Status:         status,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	require.NoError(t, repo.CreateSurvey(context.Background(), s))
	return s
}

func TestMemoryGetSurvey(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	s := seedSurvey(t, repo, "Alpha Bank", models.StatusSubmitted, time.Now().UTC())

	got, err := repo.GetSurvey(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alpha Bank", got.NdaDetails.BankName)

	missing, err := repo.GetSurvey(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryCopiesAnswerMap(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	s := seedSurvey(t, repo, "Alpha Bank", models.StatusSubmitted, time.Now().UTC())

	got, err := repo.GetSurvey(ctx, s.ID)
	require.NoError(t, err)
	got.QuestionnaireData["q1_1"] = "tampered"

	again, err := repo.GetSurvey(ctx, s.ID)
	require.NoError(t, err)
	assert.NotContains(t, again.QuestionnaireData, "q1_1", "mutating a returned survey must not touch the store")

	listed, _, err := repo.ListSurveys(ctx, models.ListFilters{Limit: 10})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	listed[0].QuestionnaireData["q1_2"] = "tampered"

	updated, err := repo.UpdateSurveyStatus(ctx, s.ID, models.StatusReviewed, "")
	require.NoError(t, err)
	assert.NotContains(t, updated.QuestionnaireData, "q1_2")
	updated.QuestionnaireData["q1_3"] = "tampered"

	final, err := repo.GetSurvey(ctx, s.ID)
	require.NoError(t, err)
	assert.NotContains(t, final.QuestionnaireData, "q1_3")
}

func TestMemoryUpdateSurveyStatus(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	s := seedSurvey(t, repo, "Alpha Bank", models.StatusSubmitted, time.Now().UTC())

	updated, err := repo.UpdateSurveyStatus(ctx, s.ID, models.StatusReviewed, "looks complete")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, models.StatusReviewed, updated.Status)
	assert.Equal(t, "looks complete", updated.ReviewNotes)

	missing, err := repo.UpdateSurveyStatus(ctx, uuid.NewString(), models.StatusReviewed, "")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryListFilters(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	seedSurvey(t, repo, "Alpha Bank", models.StatusReviewed, base)
	seedSurvey(t, repo, "Beta Bank", models.StatusSubmitted, base.Add(24*time.Hour))
	seedSurvey(t, repo, "Alpha Credit", models.StatusReviewed, base.Add(48*time.Hour))

	t.Run("status filter is exact", func(t *testing.T) {
		items, total, err := repo.ListSurveys(ctx, models.ListFilters{Status: models.StatusReviewed})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		for _, s := range items {
			assert.Equal(t, models.StatusReviewed, s.Status)
		}
	})

	t.Run("search ORs text fields, ANDs with status", func(t *testing.T) {
		items, total, err := repo.ListSurveys(ctx, models.ListFilters{
			Search: "alpha",
			Status: models.StatusReviewed,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		for _, s := range items {
			assert.Contains(t, []string{"Alpha Bank", "Alpha Credit"}, s.NdaDetails.BankName)
		}

		_, total, err = repo.ListSurveys(ctx, models.ListFilters{
			Search: "beta",
			Status: models.StatusReviewed,
		})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("search matches contact email", func(t *testing.T) {
		_, total, err := repo.ListSurveys(ctx, models.ListFilters{Search: "ciso@Beta Bank"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	t.Run("date range is inclusive and needs both bounds", func(t *testing.T) {
		start := base
		end := base.Add(24 * time.Hour)
		_, total, err := repo.ListSurveys(ctx, models.ListFilters{StartDate: &start, EndDate: &end})
		require.NoError(t, err)
		assert.Equal(t, 2, total)

		// only one bound set: filter not applied
		_, total, err = repo.ListSurveys(ctx, models.ListFilters{StartDate: &start})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
	})

	t.Run("default sort is submission date descending", func(t *testing.T) {
		items, _, err := repo.ListSurveys(ctx, models.ListFilters{})
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "Alpha Credit", items[0].NdaDetails.BankName)
		assert.Equal(t, "Alpha Bank", items[2].NdaDetails.BankName)
	})

	t.Run("sort by bank name ascending", func(t *testing.T) {
		items, _, err := repo.ListSurveys(ctx, models.ListFilters{
			SortBy:    "bankName",
			SortOrder: models.SortAsc,
		})
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "Alpha Bank", items[0].NdaDetails.BankName)
		assert.Equal(t, "Beta Bank", items[2].NdaDetails.BankName)
	})
}

func TestMemoryPagination(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 25; i++ {
		seedSurvey(t, repo, fmt.Sprintf("Bank %02d", i), models.StatusSubmitted, base.Add(time.Duration(i)*time.Hour))
	}

	items, total, err := repo.ListSurveys(ctx, models.ListFilters{Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Len(t, items, 10)

	p := models.NewPagination(2, 10, total)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNextPage)
	assert.True(t, p.HasPrevPage)

	// last page has the remainder
	items, _, err = repo.ListSurveys(ctx, models.ListFilters{Limit: 10, Offset: 20})
	require.NoError(t, err)
	assert.Len(t, items, 5)

	// offset past the end
	items, _, err = repo.ListSurveys(ctx, models.ListFilters{Limit: 10, Offset: 30})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMemoryStats(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	seedSurvey(t, repo, "A", models.StatusSubmitted, now)
	seedSurvey(t, repo, "B", models.StatusSubmitted, now)
	seedSurvey(t, repo, "C", models.StatusReviewed, now)
	seedSurvey(t, repo, "D", models.StatusDraft, now)

	stats, err := repo.SurveyStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalSurveys)
	assert.Equal(t, 2, stats.SubmittedSurveys)
	assert.Equal(t, 1, stats.ReviewedSurveys)
	assert.Equal(t, 1, stats.DraftSurveys)
}

func TestMemoryDeleteStaleDrafts(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	old := seedSurvey(t, repo, "Old Draft", models.StatusDraft, now.Add(-40*24*time.Hour))
	fresh := seedSurvey(t, repo, "Fresh Draft", models.StatusDraft, now)
	submitted := seedSurvey(t, repo, "Old Submitted", models.StatusSubmitted, now.Add(-40*24*time.Hour))

	deleted, err := repo.DeleteStaleDrafts(ctx, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	gone, _ := repo.GetSurvey(ctx, old.ID)
	assert.Nil(t, gone)
	kept, _ := repo.GetSurvey(ctx, fresh.ID)
	assert.NotNil(t, kept)
	keptSubmitted, _ := repo.GetSurvey(ctx, submitted.ID)
	assert.NotNil(t, keptSubmitted)
}

func TestMemoryAdminUsers(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	hash, err := models.HashPassword("pw")
	require.NoError(t, err)
	repo.AddAdmin(&models.AdminUser{ID: 1, Username: "admin", PasswordHash: hash, IsActive: true})

	u, err := repo.GetAdminByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.True(t, u.CheckPassword("pw"))
	assert.Nil(t, u.LastLoginAt)

	require.NoError(t, repo.TouchAdminLogin(ctx, "admin"))
	u, _ = repo.GetAdminByUsername(ctx, "admin")
	assert.NotNil(t, u.LastLoginAt)

	missing, err := repo.GetAdminByUsername(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
