package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/intecsystems/nda-survey/internal/models"
)

// MemoryRepository is an in-memory Repository used by tests and the
// memory storage driver. Filter, sort, and pagination semantics mirror the
// Postgres implementation.
type MemoryRepository struct {
	mu      sync.RWMutex
	surveys map[string]*models.Survey
	admins  map[string]*models.AdminUser
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		surveys: make(map[string]*models.Survey),
		admins:  make(map[string]*models.AdminUser),
	}
}

// Ping always succeeds
func (r *MemoryRepository) Ping(ctx context.Context) error { return nil }

// Close is a no-op
func (r *MemoryRepository) Close() error { return nil }

// copySurvey clones a survey including its answer map, so neither side
// of the store boundary can mutate the other.
func copySurvey(s *models.Survey) *models.Survey {
	cp := *s
	if s.QuestionnaireData != nil {
		cp.QuestionnaireData = make(models.QuestionnaireData, len(s.QuestionnaireData))
		for k, v := range s.QuestionnaireData {
			cp.QuestionnaireData[k] = v
		}
	}
	return &cp
}

// CreateSurvey stores a copy of the survey
func (r *MemoryRepository) CreateSurvey(ctx context.Context, s *models.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.surveys[s.ID] = copySurvey(s)
	return nil
}

// GetSurvey returns a copy of the stored survey, or (nil, nil) if absent
func (r *MemoryRepository) GetSurvey(ctx context.Context, id string) (*models.Survey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.surveys[id]
	if !ok {
		return nil, nil
	}
	return copySurvey(s), nil
}

// UpdateSurveyStatus mutates status and review notes, or returns (nil, nil)
func (r *MemoryRepository) UpdateSurveyStatus(ctx context.Context, id string, status models.SurveyStatus, reviewNotes string) (*models.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.surveys[id]
	if !ok {
		return nil, nil
	}

	s.Status = status
	s.ReviewNotes = reviewNotes
	s.UpdatedAt = time.Now().UTC()

	return copySurvey(s), nil
}

// ListSurveys applies search/status/date filters, sorts, and paginates
func (r *MemoryRepository) ListSurveys(ctx context.Context, filters models.ListFilters) ([]*models.Survey, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*models.Survey
	for _, s := range r.surveys {
		if !matchesFilters(s, filters) {
			continue
		}
		matched = append(matched, s)
	}

	total := len(matched)
	sortSurveys(matched, filters.SortBy, filters.SortOrder)

	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filters.Offset:]
		}
	}
	if filters.Limit > 0 && len(matched) > filters.Limit {
		matched = matched[:filters.Limit]
	}

	result := make([]*models.Survey, 0, len(matched))
	for _, s := range matched {
		result = append(result, copySurvey(s))
	}
	return result, total, nil
}

// SurveyStats counts surveys by status
func (r *MemoryRepository) SurveyStats(ctx context.Context) (*models.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &models.Stats{}
	for _, s := range r.surveys {
		stats.TotalSurveys++
		switch s.Status {
		case models.StatusSubmitted:
			stats.SubmittedSurveys++
		case models.StatusReviewed:
			stats.ReviewedSurveys++
		case models.StatusDraft:
			stats.DraftSurveys++
		}
	}
	return stats, nil
}

// DeleteStaleDrafts removes drafts older than the given time
func (r *MemoryRepository) DeleteStaleDrafts(ctx context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for id, s := range r.surveys {
		if s.Status == models.StatusDraft && s.SubmissionDate.Before(olderThan) {
			delete(r.surveys, id)
			deleted++
		}
	}
	return deleted, nil
}

// GetAdminByUsername returns an admin user, or (nil, nil) if unknown
func (r *MemoryRepository) GetAdminByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.admins[username]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// TouchAdminLogin records the login time for an admin user
func (r *MemoryRepository) TouchAdminLogin(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.admins[username]; ok {
		now := time.Now().UTC()
		u.LastLoginAt = &now
	}
	return nil
}

// AddAdmin seeds an admin user (memory driver / tests)
func (r *MemoryRepository) AddAdmin(u *models.AdminUser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.admins[u.Username] = &cp
}

func matchesFilters(s *models.Survey, filters models.ListFilters) bool {
	if filters.Status != "" && s.Status != filters.Status {
		return false
	}

	if filters.StartDate != nil && filters.EndDate != nil {
		if s.SubmissionDate.Before(*filters.StartDate) || s.SubmissionDate.After(*filters.EndDate) {
			return false
		}
	}

	if filters.Search != "" {
		needle := strings.ToLower(filters.Search)
		haystacks := []string{
			s.NdaDetails.BankName,
			s.NdaDetails.BankContactName,
			s.NdaDetails.ReceiverName,
			s.QuestionnaireData["contactPersonEmail"],
		}
		found := false
		for _, h := range haystacks {
			if strings.Contains(strings.ToLower(h), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

func sortSurveys(surveys []*models.Survey, sortBy string, order models.SortOrder) {
	asc := order == models.SortAsc

	less := func(a, b *models.Survey) bool {
		switch sortBy {
		case "status":
			if a.Status != b.Status {
				return a.Status < b.Status
			}
		case "bankName":
			if a.NdaDetails.BankName != b.NdaDetails.BankName {
				return a.NdaDetails.BankName < b.NdaDetails.BankName
			}
		}
		return a.SubmissionDate.Before(b.SubmissionDate)
	}

	sort.SliceStable(surveys, func(i, j int) bool {
		if asc {
			return less(surveys[i], surveys[j])
		}
		return less(surveys[j], surveys[i])
	})
}
