package storage

import (
	"context"
	"time"

	"github.com/intecsystems/nda-survey/internal/models"
)

// Repository defines the interface for survey persistence
type Repository interface {
	// Surveys
	CreateSurvey(ctx context.Context, s *models.Survey) error
	GetSurvey(ctx context.Context, id string) (*models.Survey, error)
	UpdateSurveyStatus(ctx context.Context, id string, status models.SurveyStatus, reviewNotes string) (*models.Survey, error)
	ListSurveys(ctx context.Context, filters models.ListFilters) ([]*models.Survey, int, error)
	SurveyStats(ctx context.Context) (*models.Stats, error)
	DeleteStaleDrafts(ctx context.Context, olderThan time.Time) (int64, error)

	// Admin users
	GetAdminByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	TouchAdminLogin(ctx context.Context, username string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
