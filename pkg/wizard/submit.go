package wizard

import (
	"context"
	"fmt"
	"strings"

	"github.com/intecsystems/nda-survey/internal/models"
	"github.com/intecsystems/nda-survey/pkg/client"
)

// SurveyAPI is the slice of the survey API the submitter needs
type SurveyAPI interface {
	SubmitSurvey(ctx context.Context, req models.CreateSurveyRequest) (*client.SubmitResult, error)
}

// Submitter sends a finished wizard session to the survey service
type Submitter struct {
	api  SurveyAPI
	ctrl *Controller
}

// NewSubmitter creates a submitter for the given wizard session
func NewSubmitter(api SurveyAPI, ctrl *Controller) *Submitter {
	return &Submitter{api: api, ctrl: ctrl}
}

// Submit merges the wizard answers with freeform data and submits the
// survey. The wizard's structured answers take precedence, but a blank
// structured value never erases a freeform one. On success the draft is
// cleared; on failure it is left intact so the session can be retried.
func (s *Submitter) Submit(ctx context.Context, freeform models.QuestionnaireData) (*client.SubmitResult, error) {
	details := s.ctrl.Details()
	if details == nil {
		return nil, fmt.Errorf("nda details are not filled in")
	}

	merged := make(models.QuestionnaireData, len(freeform))
	for k, v := range freeform {
		merged[k] = v
	}
	for k, v := range s.ctrl.Answers() {
		if strings.TrimSpace(v) == "" {
			if _, exists := merged[k]; exists {
				continue
			}
		}
		merged[k] = v
	}

	result, err := s.api.SubmitSurvey(ctx, models.CreateSurveyRequest{
		NdaDetails:        details,
		QuestionnaireData: merged,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit survey: %w", err)
	}

	if err := s.ctrl.Reset(); err != nil {
		// The survey is already accepted; a leftover draft is an
		// inconvenience, not a failure.
		return result, fmt.Errorf("survey submitted but draft cleanup failed: %w", err)
	}

	return result, nil
}
