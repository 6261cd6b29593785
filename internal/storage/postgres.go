package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intecsystems/nda-survey/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25 // default
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5 // default
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

const surveyColumns = `id, nda_details, questionnaire_data, submission_date, ip_address, user_agent, status, review_notes, created_at, updated_at`

// sortColumns whitelists the sortable fields. Unknown sort keys fall back
// to submission_date.
var sortColumns = map[string]string{
	"submissionDate": "submission_date",
	"status":         "status",
	"bankName":       "nda_details->>'bankName'",
}

// CreateSurvey creates a new survey record
func (r *PostgresRepository) CreateSurvey(ctx context.Context, s *models.Survey) error {
	ndaJSON, err := json.Marshal(s.NdaDetails)
	if err != nil {
		return fmt.Errorf("failed to marshal nda details: %w", err)
	}

	dataJSON, err := json.Marshal(s.QuestionnaireData)
	if err != nil {
		return fmt.Errorf("failed to marshal questionnaire data: %w", err)
	}

	query := `
		INSERT INTO surveys (id, nda_details, questionnaire_data, submission_date, ip_address, user_agent, status, review_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.pool.Exec(ctx, query,
		s.ID,
		ndaJSON,
		dataJSON,
		s.SubmissionDate,
		nullString(s.IPAddress),
		nullString(s.UserAgent),
		string(s.Status),
		nullString(s.ReviewNotes),
		s.CreatedAt,
		s.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create survey: %w", err)
	}

	return nil
}

// GetSurvey retrieves a survey by ID. Returns (nil, nil) when no record
// matches.
func (r *PostgresRepository) GetSurvey(ctx context.Context, id string) (*models.Survey, error) {
	query := `SELECT ` + surveyColumns + ` FROM surveys WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	s, err := scanSurvey(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	return s, nil
}

// UpdateSurveyStatus updates status and review notes for a survey and
// returns the updated record. Returns (nil, nil) when the id does not
// resolve. Status validity is checked by the caller; the repository only
// writes values it is handed.
func (r *PostgresRepository) UpdateSurveyStatus(ctx context.Context, id string, status models.SurveyStatus, reviewNotes string) (*models.Survey, error) {
	query := `
		UPDATE surveys
		SET status = $2, review_notes = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + surveyColumns

	row := r.pool.QueryRow(ctx, query, id, string(status), nullString(reviewNotes))
	s, err := scanSurvey(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update survey status: %w", err)
	}

	return s, nil
}

// ListSurveys returns surveys matching filters plus the unpaginated total
func (r *PostgresRepository) ListSurveys(ctx context.Context, filters models.ListFilters) ([]*models.Survey, int, error) {
	where := " WHERE 1=1"
	args := make([]interface{}, 0)
	argNum := 1

	if filters.Search != "" {
		where += fmt.Sprintf(` AND (
			nda_details->>'bankName' ILIKE $%d
			OR nda_details->>'bankContactName' ILIKE $%d
			OR nda_details->>'receiverName' ILIKE $%d
			OR questionnaire_data->>'contactPersonEmail' ILIKE $%d
		)`, argNum, argNum, argNum, argNum)
		args = append(args, "%"+filters.Search+"%")
		argNum++
	}

	if filters.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(filters.Status))
		argNum++
	}

	if filters.StartDate != nil && filters.EndDate != nil {
		where += fmt.Sprintf(" AND submission_date >= $%d AND submission_date <= $%d", argNum, argNum+1)
		args = append(args, *filters.StartDate, *filters.EndDate)
		argNum += 2
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM surveys"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count surveys: %w", err)
	}

	sortCol, ok := sortColumns[filters.SortBy]
	if !ok {
		sortCol = "submission_date"
	}
	dir := "DESC"
	if filters.SortOrder == models.SortAsc {
		dir = "ASC"
	}

	query := `SELECT ` + surveyColumns + ` FROM surveys` + where +
		fmt.Sprintf(" ORDER BY %s %s", sortCol, dir)

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list surveys: %w", err)
	}
	defer rows.Close()

	var surveys []*models.Survey
	for rows.Next() {
		s, err := scanSurvey(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan survey: %w", err)
		}
		surveys = append(surveys, s)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating surveys: %w", err)
	}

	return surveys, total, nil
}

// SurveyStats returns aggregate counts over the full collection
func (r *PostgresRepository) SurveyStats(ctx context.Context) (*models.Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'submitted'),
			COUNT(*) FILTER (WHERE status = 'reviewed'),
			COUNT(*) FILTER (WHERE status = 'draft')
		FROM surveys
	`

	var stats models.Stats
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalSurveys,
		&stats.SubmittedSurveys,
		&stats.ReviewedSurveys,
		&stats.DraftSurveys,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey stats: %w", err)
	}

	return &stats, nil
}

// DeleteStaleDrafts removes draft submissions older than the given time
func (r *PostgresRepository) DeleteStaleDrafts(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `DELETE FROM surveys WHERE status = 'draft' AND submission_date < $1`

	result, err := r.pool.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale drafts: %w", err)
	}

	return result.RowsAffected(), nil
}

// GetAdminByUsername retrieves an admin user. Returns (nil, nil) when the
// username is unknown.
func (r *PostgresRepository) GetAdminByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	query := `
		SELECT id, username, password_hash, is_active, created_at, last_login_at
		FROM admin_users
		WHERE username = $1
	`

	var u models.AdminUser
	var lastLoginAt sql.NullTime

	err := r.pool.QueryRow(ctx, query, username).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.IsActive,
		&u.CreatedAt,
		&lastLoginAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}

	if lastLoginAt.Valid {
		u.LastLoginAt = &lastLoginAt.Time
	}

	return &u, nil
}

// TouchAdminLogin updates the last_login_at timestamp for an admin user
func (r *PostgresRepository) TouchAdminLogin(ctx context.Context, username string) error {
	query := `UPDATE admin_users SET last_login_at = NOW() WHERE username = $1`

	_, err := r.pool.Exec(ctx, query, username)
	if err != nil {
		return fmt.Errorf("failed to update admin last_login_at: %w", err)
	}

	return nil
}

// scanSurvey reads one survey row from either a Row or Rows scanner
func scanSurvey(row pgx.Row) (*models.Survey, error) {
	var s models.Survey
	var statusStr string
	var ipAddress, userAgent, reviewNotes sql.NullString
	var ndaJSON, dataJSON []byte

	err := row.Scan(
		&s.ID,
		&ndaJSON,
		&dataJSON,
		&s.SubmissionDate,
		&ipAddress,
		&userAgent,
		&statusStr,
		&reviewNotes,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Status = models.SurveyStatus(statusStr)
	s.IPAddress = ipAddress.String
	s.UserAgent = userAgent.String
	s.ReviewNotes = reviewNotes.String

	if err := json.Unmarshal(ndaJSON, &s.NdaDetails); err != nil {
		return nil, fmt.Errorf("failed to unmarshal nda details: %w", err)
	}

	if dataJSON != nil {
		if err := json.Unmarshal(dataJSON, &s.QuestionnaireData); err != nil {
			return nil, fmt.Errorf("failed to unmarshal questionnaire data: %w", err)
		}
	}

	return &s, nil
}

// Helper for nullable text columns

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
