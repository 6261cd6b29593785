package wizard

import (
	"context"
	"fmt"
	"sync"

	"github.com/intecsystems/nda-survey/internal/models"
	"github.com/intecsystems/nda-survey/pkg/client"
)

// AdminAPI is the slice of the survey API the review view needs
type AdminAPI interface {
	ListSurveys(ctx context.Context, opts client.ListOptions) ([]*models.Survey, *models.Pagination, error)
	UpdateStatus(ctx context.Context, id string, status models.SurveyStatus, reviewNotes string) (*models.Survey, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// AdminView holds the submission listing an administrator reviews.
// Refreshes are sequenced: when responses arrive out of order, only the
// most recently issued refresh is applied.
type AdminView struct {
	api AdminAPI

	mu         sync.Mutex
	issued     uint64
	applied    uint64
	surveys    []*models.Survey
	pagination *models.Pagination
	stats      *models.Stats
}

// NewAdminView creates an empty review view
func NewAdminView(api AdminAPI) *AdminView {
	return &AdminView{api: api}
}

// Refresh fetches the survey listing and stats for the given filters.
// A stale response, one from a refresh issued before the latest, is
// discarded.
func (v *AdminView) Refresh(ctx context.Context, opts client.ListOptions) error {
	v.mu.Lock()
	v.issued++
	seq := v.issued
	v.mu.Unlock()

	surveys, pagination, err := v.api.ListSurveys(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to refresh surveys: %w", err)
	}

	stats, err := v.api.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh stats: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq < v.issued {
		// A newer refresh is in flight or already applied
		return nil
	}
	if seq <= v.applied {
		return nil
	}
	v.applied = seq
	v.surveys = surveys
	v.pagination = pagination
	v.stats = stats
	return nil
}

// SetStatus updates a survey's review status and refreshes the view so
// the listing and stats reflect the change.
func (v *AdminView) SetStatus(ctx context.Context, id string, status models.SurveyStatus, reviewNotes string, opts client.ListOptions) (*models.Survey, error) {
	updated, err := v.api.UpdateStatus(ctx, id, status, reviewNotes)
	if err != nil {
		return nil, fmt.Errorf("failed to update survey status: %w", err)
	}

	if err := v.Refresh(ctx, opts); err != nil {
		return updated, err
	}
	return updated, nil
}

// Surveys returns the current page of surveys
func (v *AdminView) Surveys() []*models.Survey {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.surveys
}

// Pagination returns the pagination block of the last applied refresh
func (v *AdminView) Pagination() *models.Pagination {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pagination
}

// Stats returns the aggregate counts of the last applied refresh
func (v *AdminView) Stats() *models.Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stats
}
