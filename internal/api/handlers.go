package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/intecsystems/nda-survey/internal/models"
)

// Response helpers

type apiResponse struct {
	Success    bool               `json:"success"`
	Data       interface{}        `json:"data,omitempty"`
	Message    string             `json:"message,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	writeResponse(w, status, apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

func respondPage(w http.ResponseWriter, data interface{}, page *models.Pagination) {
	writeResponse(w, http.StatusOK, apiResponse{
		Success:    true,
		Data:       data,
		Pagination: page,
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeResponse(w, status, apiResponse{
		Success: false,
		Message: message,
	})
}

func writeResponse(w http.ResponseWriter, status int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "OK",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime":      time.Since(s.startedAt).Seconds(),
		"environment": s.config.Environment,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
