package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/intecsystems/nda-survey/internal/models"
	"github.com/intecsystems/nda-survey/internal/questionnaire"
)

// Step identifies a wizard screen
type Step int

const (
	StepInputNDA Step = iota
	StepDisplayNDA
	StepQuestionnaire
)

var stepNames = map[Step]string{
	StepInputNDA:      "inputNda",
	StepDisplayNDA:    "displayNda",
	StepQuestionnaire: "questionnaire",
}

var stepValues = map[string]Step{
	"inputNda":      StepInputNDA,
	"displayNda":    StepDisplayNDA,
	"questionnaire": StepQuestionnaire,
}

// Valid reports whether the step is one of the three wizard screens
func (s Step) Valid() bool {
	_, ok := stepNames[s]
	return ok
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// MarshalJSON writes the step as its name. The draft files are shared
// with the web frontend, which stores the bare step name.
func (s Step) MarshalJSON() ([]byte, error) {
	name, ok := stepNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown wizard step %d", int(s))
	}
	return json.Marshal(name)
}

func (s *Step) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	step, ok := stepValues[name]
	if !ok {
		return fmt.Errorf("unknown wizard step %q", name)
	}
	*s = step
	return nil
}

// ErrConsentRequired is returned when the NDA is not accepted before
// advancing to the questionnaire.
var ErrConsentRequired = errors.New("nda consent is required to continue")

// ValidationError reports the NDA detail fields that failed validation
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid nda details: " + strings.Join(e.Fields, ", ")
}

// Controller drives the three-step survey wizard and keeps every state
// change mirrored into the draft store, so an interrupted session
// resumes where it stopped.
type Controller struct {
	store   DraftStore
	def     *questionnaire.Definition
	step    Step
	details *models.NdaDetails
	answers models.QuestionnaireData
}

// NewController creates a wizard controller, resuming any persisted
// draft from the store.
func NewController(store DraftStore, def *questionnaire.Definition) (*Controller, error) {
	c := &Controller{
		store:   store,
		def:     def,
		step:    StepInputNDA,
		answers: models.QuestionnaireData{},
	}

	details, err := store.LoadDetails()
	if err != nil {
		return nil, fmt.Errorf("failed to load draft details: %w", err)
	}
	c.details = details

	answers, err := store.LoadAnswers()
	if err != nil {
		return nil, fmt.Errorf("failed to load draft answers: %w", err)
	}
	if answers != nil {
		c.answers = answers
	}

	step, err := store.LoadStep()
	if err != nil {
		return nil, fmt.Errorf("failed to load draft step: %w", err)
	}
	// Later steps require details to exist; fall back if the draft lost them
	if step > StepInputNDA && c.details == nil {
		step = StepInputNDA
	}
	c.step = step

	return c, nil
}

// Step returns the current wizard screen
func (c *Controller) Step() Step {
	return c.step
}

// Details returns the entered NDA details, or nil before the first step
// is completed.
func (c *Controller) Details() *models.NdaDetails {
	return c.details
}

// SubmitDetails validates and stores the NDA detail form, advancing to
// the NDA display step. All thirteen fields are required and the
// duration must be a whole number of years between 1 and 50.
func (c *Controller) SubmitDetails(details *models.NdaDetails) error {
	fields := details.MissingFields()

	if !containsField(fields, "ndaDurationYears") {
		years, err := strconv.Atoi(strings.TrimSpace(details.NdaDurationYears))
		if err != nil || years < 1 || years > 50 {
			fields = append(fields, "ndaDurationYears")
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	copied := *details
	c.details = &copied
	if err := c.store.SaveDetails(c.details); err != nil {
		return err
	}
	return c.setStep(StepDisplayNDA)
}

// Accept records the NDA consent decision. Declining keeps the wizard
// on the display step.
func (c *Controller) Accept(consent bool) error {
	if c.step != StepDisplayNDA {
		return fmt.Errorf("cannot accept nda on step %s", c.step)
	}
	if !consent {
		return ErrConsentRequired
	}
	return c.setStep(StepQuestionnaire)
}

// Back returns from the NDA display to the detail form. On any other
// step it is a no-op: the questionnaire has no back navigation.
func (c *Controller) Back() error {
	if c.step != StepDisplayNDA {
		return nil
	}
	return c.setStep(StepInputNDA)
}

// SetAnswer records a questionnaire answer and persists the draft
func (c *Controller) SetAnswer(key, value string) error {
	c.answers[key] = value
	return c.store.SaveAnswers(c.answers)
}

// Answers returns a copy of the current questionnaire answers
func (c *Controller) Answers() models.QuestionnaireData {
	out := make(models.QuestionnaireData, len(c.answers))
	for k, v := range c.answers {
		out[k] = v
	}
	return out
}

// Progress returns questionnaire completion as a whole percentage.
// Conditional questions only count once their parent answer enables
// them.
func (c *Controller) Progress() int {
	return questionnaire.Progress(c.def, c.answers)
}

// Reset discards all wizard state and the persisted draft
func (c *Controller) Reset() error {
	c.step = StepInputNDA
	c.details = nil
	c.answers = models.QuestionnaireData{}
	return c.store.Clear()
}

func (c *Controller) setStep(step Step) error {
	c.step = step
	return c.store.SaveStep(step)
}

func containsField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
