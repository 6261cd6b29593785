package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/intecsystems/nda-survey/internal/models"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

func (s *Server) handleCreateSurvey(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.NdaDetails == nil || strings.TrimSpace(req.NdaDetails.BankName) == "" {
		respondError(w, http.StatusBadRequest, "NDA details and bank name are required")
		return
	}

	now := time.Now().UTC()
	survey := &models.Survey{
		ID:                uuid.New().String(),
		NdaDetails:        *req.NdaDetails,
		QuestionnaireData: req.QuestionnaireData,
		SubmissionDate:    now,
		IPAddress:         clientIP(r),
		UserAgent:         r.UserAgent(),
		Status:            models.StatusSubmitted,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if survey.QuestionnaireData == nil {
		survey.QuestionnaireData = models.QuestionnaireData{}
	}

	if err := s.repo.CreateSurvey(r.Context(), survey); err != nil {
		slog.Error("failed to create survey", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to submit survey")
		return
	}

	slog.Info("survey submitted", "id", survey.ID, "bank", survey.NdaDetails.BankName)

	if s.metrics != nil {
		s.metrics.Submissions.Inc()
	}
	s.events.Broadcast(NewEvent(EventSurveyCreated, survey))

	writeResponse(w, http.StatusCreated, apiResponse{
		Success: true,
		Data: map[string]interface{}{
			"id":             survey.ID,
			"submissionDate": survey.SubmissionDate,
		},
		Message: "Survey submitted successfully",
	})
}

func (s *Server) handleListSurveys(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := parsePositiveInt(q.Get("page"), defaultPage)
	limit := parsePositiveInt(q.Get("limit"), defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}

	filters := models.ListFilters{
		Search:    strings.TrimSpace(q.Get("search")),
		SortBy:    q.Get("sortBy"),
		SortOrder: models.SortOrder(q.Get("sortOrder")),
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}

	if statusStr := q.Get("status"); statusStr != "" {
		status := models.SurveyStatus(statusStr)
		if !status.Valid() {
			respondError(w, http.StatusBadRequest, "Invalid status value")
			return
		}
		filters.Status = status
	}

	filters.StartDate = parseDateParam(q.Get("startDate"), false)
	filters.EndDate = parseDateParam(q.Get("endDate"), true)

	surveys, total, err := s.repo.ListSurveys(r.Context(), filters)
	if err != nil {
		slog.Error("failed to list surveys", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch surveys")
		return
	}

	pagination := models.NewPagination(page, limit, total)
	respondPage(w, surveys, &pagination)
}

func (s *Server) handleGetSurvey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusNotFound, "Survey not found")
		return
	}

	survey, err := s.repo.GetSurvey(r.Context(), id)
	if err != nil {
		slog.Error("failed to get survey", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "Failed to fetch survey")
		return
	}
	if survey == nil {
		respondError(w, http.StatusNotFound, "Survey not found")
		return
	}

	respondJSON(w, http.StatusOK, survey)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if !req.Status.Valid() {
		respondError(w, http.StatusBadRequest, "Invalid status value")
		return
	}

	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusNotFound, "Survey not found")
		return
	}

	survey, err := s.repo.UpdateSurveyStatus(r.Context(), id, req.Status, req.ReviewNotes)
	if err != nil {
		slog.Error("failed to update survey status", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "Failed to update survey status")
		return
	}
	if survey == nil {
		respondError(w, http.StatusNotFound, "Survey not found")
		return
	}

	slog.Info("survey status updated", "id", id, "status", survey.Status)

	if s.metrics != nil {
		s.metrics.StatusUpdates.WithLabelValues(string(survey.Status)).Inc()
	}
	s.events.Broadcast(NewEvent(EventSurveyStatus, survey))

	writeResponse(w, http.StatusOK, apiResponse{
		Success: true,
		Data:    survey,
		Message: "Survey status updated successfully",
	})
}

func (s *Server) handleSurveyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.repo.SurveyStats(r.Context())
	if err != nil {
		slog.Error("failed to fetch survey stats", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch statistics")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGetQuestionnaire(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	def := s.questionnaires.Get(name)
	if def == nil {
		respondError(w, http.StatusNotFound, "Questionnaire not found")
		return
	}

	respondJSON(w, http.StatusOK, def)
}

func parsePositiveInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// parseDateParam accepts RFC 3339 timestamps or plain dates. A plain
// end date is pushed to the end of that day so the range is inclusive.
func parseDateParam(value string, endOfDay bool) *time.Time {
	if value == "" {
		return nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t
	}

	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t
}
