package questionnaire

import "testing"

func TestProgressEmpty(t *testing.T) {
	def := Default()
	if got := Progress(def, nil); got != 0 {
		t.Errorf("empty answers: expected 0, got %d", got)
	}
	if got := Progress(def, map[string]string{}); got != 0 {
		t.Errorf("empty map: expected 0, got %d", got)
	}
}

func TestProgressCountsRequiredFields(t *testing.T) {
	def := Default()

	answers := map[string]string{"bankName": "Alpha Bank"}
	// 1 of 7 required fields
	if got := Progress(def, answers); got != 14 {
		t.Errorf("expected 14, got %d", got)
	}

	answers["fillDate"] = "2024-01-15"
	answers["contactPersonName"] = "Ana"
	answers["contactPersonPosition"] = "CISO"
	answers["contactPersonEmail"] = "ana@alpha.mk"
	answers["q1_1"] = "Не"
	answers["q1_2"] = "Не"
	// negative answers unlock nothing: all 7 of 7
	if got := Progress(def, answers); got != 100 {
		t.Errorf("expected 100, got %d", got)
	}
}

func TestProgressConditionalChildren(t *testing.T) {
	def := Default()

	answers := map[string]string{
		"bankName":              "Alpha Bank",
		"fillDate":              "2024-01-15",
		"contactPersonName":     "Ana",
		"contactPersonPosition": "CISO",
		"contactPersonEmail":    "ana@alpha.mk",
		"q1_1":                  "Да",
		"q1_2":                  "Не",
	}
	// q1_1="Да" adds 2 unfilled children: 7 of 9
	if got := Progress(def, answers); got != 78 {
		t.Errorf("expected 78, got %d", got)
	}

	answers["q1_1_status"] = "reviewed Q1 2024"
	if got := Progress(def, answers); got != 89 {
		t.Errorf("expected 89, got %d", got)
	}

	answers["q1_1_date"] = "2024-01-15"
	if got := Progress(def, answers); got != 100 {
		t.Errorf("expected 100, got %d", got)
	}

	// Partially also unlocks children
	answers["q1_2"] = "Делумно"
	if got := Progress(def, answers); got == 100 {
		t.Error("unlocking q1_2_freq should drop progress below 100")
	}
	answers["q1_2_freq"] = "годишно"
	if got := Progress(def, answers); got != 100 {
		t.Errorf("expected 100 after filling q1_2_freq, got %d", got)
	}
}

func TestProgressMonotonic(t *testing.T) {
	def := Default()
	answers := map[string]string{}

	fills := [][2]string{
		{"bankName", "Alpha Bank"},
		{"fillDate", "2024-01-15"},
		{"contactPersonName", "Ana"},
		{"contactPersonPosition", "CISO"},
		{"contactPersonEmail", "ana@alpha.mk"},
		{"q1_1_status", "done"}, // filled before its parent unlocks it
		{"q1_1_date", "2024-01-15"},
		{"q1_1", "Да"},
		{"q1_2", "Да"},
		{"q1_2_freq", "годишно"},
	}

	prev := 0
	for _, kv := range fills {
		answers[kv[0]] = kv[1]
		got := Progress(def, answers)
		if got < prev {
			// Unlocking children legitimately enlarges the denominator;
			// only already-enabled fills must be monotone. But pre-filled
			// children join numerator and denominator together here, so
			// the sequence stays non-decreasing.
			t.Errorf("progress decreased from %d to %d after %s", prev, got, kv[0])
		}
		prev = got
	}
	if prev != 100 {
		t.Errorf("expected 100 at the end, got %d", prev)
	}
}

func TestProgressOrderIndependent(t *testing.T) {
	def := Default()
	a := map[string]string{"q1_1": "Да", "q1_1_status": "ok", "bankName": "Alpha"}
	b := map[string]string{"bankName": "Alpha", "q1_1_status": "ok", "q1_1": "Да"}
	if Progress(def, a) != Progress(def, b) {
		t.Error("progress must not depend on fill order")
	}
	// idempotent
	if Progress(def, a) != Progress(def, a) {
		t.Error("progress must be idempotent")
	}
}

func TestProgressBlankValuesDoNotCount(t *testing.T) {
	def := Default()
	answers := map[string]string{"bankName": "   "}
	if got := Progress(def, answers); got != 0 {
		t.Errorf("whitespace answer should not count, got %d", got)
	}
}
