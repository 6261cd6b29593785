package questionnaire

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Loader manages loading and caching of questionnaire definitions
type Loader struct {
	mu          sync.RWMutex
	definitions map[string]*Definition
}

// NewLoader creates a new definition loader
func NewLoader() *Loader {
	return &Loader{
		definitions: make(map[string]*Definition),
	}
}

// LoadFromDir loads all YAML definitions from a directory
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading questionnaires from directory", "dir", dir)

	patterns := []string{"*.yaml", "*.yml"}
	var files []string

	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	loaded := 0
	for _, file := range files {
		if err := l.LoadFromFile(file); err != nil {
			slog.Warn("failed to load questionnaire", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("questionnaires loaded", "count", loaded, "total_files", len(files))
	return nil
}

// LoadFromFile loads a single definition from a YAML file
func (l *Loader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if def.Name == "" {
		return fmt.Errorf("questionnaire name is required")
	}
	if len(def.RequiredFields) == 0 {
		return fmt.Errorf("questionnaire %q has no required fields", def.Name)
	}

	for i := range def.Conditionals {
		rule := &def.Conditionals[i]
		if rule.QuestionKey == "" {
			return fmt.Errorf("questionnaire %q: conditional rule %d has no question key", def.Name, i)
		}
		if len(rule.ChildKeys) == 0 {
			return fmt.Errorf("questionnaire %q: conditional rule for %s has no children", def.Name, rule.QuestionKey)
		}
	}

	l.mu.Lock()
	l.definitions[def.Name] = &def
	l.mu.Unlock()

	slog.Info("questionnaire loaded", "name", def.Name, "required_fields", len(def.RequiredFields))
	return nil
}

// Get retrieves a definition by name
func (l *Loader) Get(name string) *Definition {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.definitions[name]
}

// List returns all loaded definitions
func (l *Loader) List() []*Definition {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*Definition, 0, len(l.definitions))
	for _, def := range l.definitions {
		result = append(result, def)
	}
	return result
}

// Add programmatically adds a definition
func (l *Loader) Add(def *Definition) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.definitions[def.Name] = def
}

// Default returns the built-in bank compliance questionnaire, used when no
// definition directory is configured. It matches the reference form: five
// contact fields, two first-section questions, and the conditional
// sub-fields unlocked by affirmative or partial answers.
func Default() *Definition {
	return &Definition{
		Name:  "bank-compliance",
		Title: "Прашалник за проценка на усогласеност на банка",
		RequiredFields: []string{
			"bankName",
			"fillDate",
			"contactPersonName",
			"contactPersonPosition",
			"contactPersonEmail",
			"q1_1",
			"q1_2",
		},
		Sections: []Section{
			{
				ID:    "q1",
				Title: "Управување со усогласеност",
				Questions: []Question{
					{Key: "q1_1", Text: "Дали банката има воспоставено програма за усогласеност?", Options: []string{"Да", "Не", "Делумно"}, Required: true},
					{Key: "q1_2", Text: "Дали програмата се ревидира редовно?", Options: []string{"Да", "Не", "Делумно"}, Required: true},
				},
			},
		},
		Conditionals: []ConditionalRule{
			{QuestionKey: "q1_1", EnablingValues: []string{"Да", "Делумно"}, ChildKeys: []string{"q1_1_status", "q1_1_date"}},
			{QuestionKey: "q1_2", EnablingValues: []string{"Да", "Делумно"}, ChildKeys: []string{"q1_2_freq"}},
		},
	}
}
