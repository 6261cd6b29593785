package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/intecsystems/nda-survey/internal/models"
)

// Draft storage keys. These names are shared with the web frontend so
// both clients recognise each other's drafts.
const (
	keyNdaDetails = "survey_nda_details"
	keyFormData   = "survey_form_data"
	keyLastStep   = "survey_last_step"
)

// DraftStore persists in-progress wizard state between sessions. A
// missing value is not an error: loads return zero values so a fresh
// start and a cleared draft look the same.
type DraftStore interface {
	SaveDetails(details *models.NdaDetails) error
	LoadDetails() (*models.NdaDetails, error)
	ClearDetails() error

	SaveAnswers(answers models.QuestionnaireData) error
	LoadAnswers() (models.QuestionnaireData, error)

	SaveStep(step Step) error
	LoadStep() (Step, error)

	// Clear removes all three draft keys
	Clear() error
}

// FileStore is a DraftStore backed by one file per key in a directory
type FileStore struct {
	dir string
}

// NewFileStore creates a draft store rooted at dir, creating it if
// needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create draft dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) SaveDetails(details *models.NdaDetails) error {
	return s.write(keyNdaDetails, details)
}

func (s *FileStore) LoadDetails() (*models.NdaDetails, error) {
	var details models.NdaDetails
	found, err := s.read(keyNdaDetails, &details)
	if err != nil || !found {
		return nil, err
	}
	return &details, nil
}

func (s *FileStore) ClearDetails() error {
	if err := os.Remove(s.path(keyNdaDetails)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear draft details: %w", err)
	}
	return nil
}

func (s *FileStore) SaveAnswers(answers models.QuestionnaireData) error {
	return s.write(keyFormData, answers)
}

func (s *FileStore) LoadAnswers() (models.QuestionnaireData, error) {
	answers := models.QuestionnaireData{}
	if _, err := s.read(keyFormData, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

func (s *FileStore) SaveStep(step Step) error {
	return s.write(keyLastStep, step)
}

func (s *FileStore) LoadStep() (Step, error) {
	var step Step
	found, err := s.read(keyLastStep, &step)
	if err != nil || !found {
		return StepInputNDA, err
	}
	if !step.Valid() {
		return StepInputNDA, nil
	}
	return step, nil
}

func (s *FileStore) Clear() error {
	for _, key := range []string{keyNdaDetails, keyFormData, keyLastStep} {
		if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to clear draft key %s: %w", key, err)
		}
	}
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) write(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal draft key %s: %w", key, err)
	}
	if err := os.WriteFile(s.path(key), data, 0o600); err != nil {
		return fmt.Errorf("failed to write draft key %s: %w", key, err)
	}
	return nil
}

// read returns false when the key has never been saved
func (s *FileStore) read(key string, out interface{}) (bool, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read draft key %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		// A corrupt draft is treated as absent rather than wedging the wizard
		return false, nil
	}
	return true, nil
}
