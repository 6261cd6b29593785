package questionnaire

import (
	"math"
	"strings"
)

// Progress maps an answer set to a 0-100 completion percentage against the
// definition. A field counts as filled when present and non-blank. Children
// of a conditional rule join both sides of the ratio only while their parent
// answer is in the enabling set. The required-field list is never empty, so
// the denominator cannot be zero.
func Progress(def *Definition, answers map[string]string) int {
	keys := def.ActiveKeys(answers)

	filled := 0
	for _, key := range keys {
		if strings.TrimSpace(answers[key]) != "" {
			filled++
		}
	}

	if len(keys) == 0 {
		return 0
	}
	return int(math.Round(100 * float64(filled) / float64(len(keys))))
}
