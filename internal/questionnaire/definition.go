package questionnaire

// Definition describes one questionnaire form: the fixed top-level fields
// required for completion, the question sections, and the conditional rule
// table shared by the progress calculator and the review display.
type Definition struct {
	Name           string            `yaml:"name" json:"name"`
	Title          string            `yaml:"title" json:"title"`
	RequiredFields []string          `yaml:"required_fields" json:"required_fields"`
	Sections       []Section         `yaml:"sections" json:"sections"`
	Conditionals   []ConditionalRule `yaml:"conditionals" json:"conditionals"`
}

// Section groups questions under a numbered heading
type Section struct {
	ID        string     `yaml:"id" json:"id"`
	Title     string     `yaml:"title" json:"title"`
	Questions []Question `yaml:"questions" json:"questions"`
}

// Question is one answerable item. Options, when present, enumerate the
// allowed radio values.
type Question struct {
	Key      string   `yaml:"key" json:"key"`
	Text     string   `yaml:"text" json:"text"`
	Options  []string `yaml:"options,omitempty" json:"options,omitempty"`
	Required bool     `yaml:"required" json:"required"`
}

// ConditionalRule declares that the child keys of a question are only
// meaningful while the question's answer is one of the enabling values.
type ConditionalRule struct {
	QuestionKey    string   `yaml:"question" json:"question"`
	EnablingValues []string `yaml:"enabling_values" json:"enabling_values"`
	ChildKeys      []string `yaml:"children" json:"children"`
}

// Enabled reports whether the rule's children are unlocked by the answer
func (r *ConditionalRule) Enabled(answer string) bool {
	for _, v := range r.EnablingValues {
		if answer == v {
			return true
		}
	}
	return false
}

// RuleFor returns the conditional rule attached to a question key, if any
func (d *Definition) RuleFor(questionKey string) *ConditionalRule {
	for i := range d.Conditionals {
		if d.Conditionals[i].QuestionKey == questionKey {
			return &d.Conditionals[i]
		}
	}
	return nil
}

// ActiveKeys returns the required fields plus every conditional child
// currently unlocked by the answer set. This is the denominator set of the
// progress calculation and the key set the review display renders.
func (d *Definition) ActiveKeys(answers map[string]string) []string {
	keys := make([]string, 0, len(d.RequiredFields))
	keys = append(keys, d.RequiredFields...)

	for i := range d.Conditionals {
		rule := &d.Conditionals[i]
		if rule.Enabled(answers[rule.QuestionKey]) {
			keys = append(keys, rule.ChildKeys...)
		}
	}
	return keys
}
