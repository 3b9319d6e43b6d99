package model

import (
	"encoding/json"
	"testing"
)

func TestQuiz_QuestionCount(t *testing.T) {
	q := Quiz{
		ID:        "mbti",
		Questions: []json.RawMessage{[]byte(`{}`), []byte(`{}`)},
		Variants: []QuizVariant{
			{Questions: []json.RawMessage{[]byte(`{}`), []byte(`{}`), []byte(`{}`)}},
			{Questions: []json.RawMessage{[]byte(`{}`)}},
		},
	}
	// The largest of base and variant question lists wins.
	if got := q.QuestionCount(); got != 3 {
		t.Errorf("QuestionCount() = %d, want 3", got)
	}

	q.Variants = nil
	if got := q.QuestionCount(); got != 2 {
		t.Errorf("QuestionCount() without variants = %d, want 2", got)
	}
}

func TestQuiz_Summary(t *testing.T) {
	q := Quiz{
		ID:        "scl-90",
		Title:     "Symptom Checklist",
		Category:  "emotion",
		Tags:      []string{"clinical"},
		Estimated: 15,
		Questions: []json.RawMessage{[]byte(`{}`)},
	}
	s := q.Summary()
	if s.ID != "scl-90" || s.Title != "Symptom Checklist" || s.QuestionCount != 1 {
		t.Errorf("Summary() = %+v", s)
	}
}
