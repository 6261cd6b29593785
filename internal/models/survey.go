package models

import (
	"strings"
	"time"
)

// SurveyStatus represents the review state of a submission
type SurveyStatus string

const (
	StatusDraft     SurveyStatus = "draft"
	StatusSubmitted SurveyStatus = "submitted"
	StatusReviewed  SurveyStatus = "reviewed"
)

// Valid returns true if the status is one of the known values
func (s SurveyStatus) Valid() bool {
	return s == StatusDraft || s == StatusSubmitted || s == StatusReviewed
}

// NdaDetails holds the party and contract fields entered on the first
// wizard step. All thirteen fields are required before the NDA text is
// generated.
type NdaDetails struct {
	BankName            string `json:"bankName"`
	BankAddress         string `json:"bankAddress"`
	BankRegNumber       string `json:"bankRegNumber"`
	BankContactName     string `json:"bankContactName"`
	BankContactPosition string `json:"bankContactPosition"`
	ReceiverName        string `json:"receiverName"`
	ReceiverAddress     string `json:"receiverAddress"`
	ReceiverRegNumber   string `json:"receiverRegNumber"`
	ReceiverContactName string `json:"receiverContactName"`
	ReceiverContactPos  string `json:"receiverContactPosition"`
	NdaPurpose          string `json:"ndaPurpose"`
	NdaDurationYears    string `json:"ndaDurationYears"`
	NdaEffectiveDate    string `json:"ndaEffectiveDate"`
}

// RequiredNdaFields lists the NDA field keys in form order. The keys match
// the JSON wire names used by the frontend.
var RequiredNdaFields = []string{
	"bankName",
	"bankAddress",
	"bankRegNumber",
	"bankContactName",
	"bankContactPosition",
	"receiverName",
	"receiverAddress",
	"receiverRegNumber",
	"receiverContactName",
	"receiverContactPosition",
	"ndaPurpose",
	"ndaDurationYears",
	"ndaEffectiveDate",
}

// FieldMap returns the details as a key-value map using wire field names
func (d *NdaDetails) FieldMap() map[string]string {
	return map[string]string{
		"bankName":                d.BankName,
		"bankAddress":             d.BankAddress,
		"bankRegNumber":           d.BankRegNumber,
		"bankContactName":         d.BankContactName,
		"bankContactPosition":     d.BankContactPosition,
		"receiverName":            d.ReceiverName,
		"receiverAddress":         d.ReceiverAddress,
		"receiverRegNumber":       d.ReceiverRegNumber,
		"receiverContactName":     d.ReceiverContactName,
		"receiverContactPosition": d.ReceiverContactPos,
		"ndaPurpose":              d.NdaPurpose,
		"ndaDurationYears":        d.NdaDurationYears,
		"ndaEffectiveDate":        d.NdaEffectiveDate,
	}
}

// MissingFields returns the wire names of required NDA fields that are
// empty or whitespace, in form order.
func (d *NdaDetails) MissingFields() []string {
	if d == nil {
		return append([]string(nil), RequiredNdaFields...)
	}

	values := d.FieldMap()
	var missing []string
	for _, field := range RequiredNdaFields {
		if strings.TrimSpace(values[field]) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// QuestionnaireData is the open answer map: fixed top-level fields plus
// q<section>_<index> question keys and their conditional children.
type QuestionnaireData map[string]string

// Survey is the persisted submission aggregate. Only Status and
// ReviewNotes change after creation.
type Survey struct {
	ID                string            `json:"id"`
	NdaDetails        NdaDetails        `json:"ndaDetails"`
	QuestionnaireData QuestionnaireData `json:"questionnaireData"`
	SubmissionDate    time.Time         `json:"submissionDate"`
	IPAddress         string            `json:"ipAddress,omitempty"`
	UserAgent         string            `json:"userAgent,omitempty"`
	Status            SurveyStatus      `json:"status"`
	ReviewNotes       string            `json:"reviewNotes,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// SortOrder for survey listings
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListFilters defines filters for listing surveys
type ListFilters struct {
	Search    string
	Status    SurveyStatus
	StartDate *time.Time
	EndDate   *time.Time
	SortBy    string
	SortOrder SortOrder
	Limit     int
	Offset    int
}

// Pagination describes one page of a survey listing
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

// NewPagination computes the pagination block for a page/limit over total items
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
}

// Stats holds aggregate submission counts
type Stats struct {
	TotalSurveys     int `json:"totalSurveys"`
	SubmittedSurveys int `json:"submittedSurveys"`
	ReviewedSurveys  int `json:"reviewedSurveys"`
	DraftSurveys     int `json:"draftSurveys"`
}

// CreateSurveyRequest is the POST /api/surveys body
type CreateSurveyRequest struct {
	NdaDetails        *NdaDetails       `json:"ndaDetails"`
	QuestionnaireData QuestionnaireData `json:"questionnaireData"`
}

// UpdateStatusRequest is the PATCH /api/surveys/{id}/status body
type UpdateStatusRequest struct {
	Status      SurveyStatus `json:"status"`
	ReviewNotes string       `json:"reviewNotes,omitempty"`
}
