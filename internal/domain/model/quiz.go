package model

import "encoding/json"

// Quiz is one catalog entry in tests.json. Question payloads and scoring
// tables are authored by the content team and passed through opaquely;
// the backend only validates the id and surfaces summary fields.
type Quiz struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Category  string            `json:"category"`
	Tags      []string          `json:"tags,omitempty"`
	Estimated int               `json:"estimated,omitempty"`
	Questions []json.RawMessage `json:"questions,omitempty"`
	Variants  []QuizVariant     `json:"variants,omitempty"`
	Extra     json.RawMessage   `json:"extra,omitempty"`
}

// QuizVariant is an alternate question set (short form, clinical form).
type QuizVariant struct {
	ID        string            `json:"id"`
	Title     string            `json:"title,omitempty"`
	Questions []json.RawMessage `json:"questions,omitempty"`
}

// QuestionCount returns the largest question set across the base quiz
// and its variants, which is what the catalog listing advertises.
func (q *Quiz) QuestionCount() int {
	n := len(q.Questions)
	for _, v := range q.Variants {
		if len(v.Questions) > n {
			n = len(v.Questions)
		}
	}
	return n
}

// QuizSummary is the listing projection of a Quiz.
type QuizSummary struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	QuestionCount int      `json:"questionCount"`
	Estimated     int      `json:"estimated"`
}

// Summary projects the quiz into its listing form.
func (q *Quiz) Summary() QuizSummary {
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	return QuizSummary{
		ID:            q.ID,
		Title:         q.Title,
		Category:      q.Category,
		Tags:          tags,
		QuestionCount: q.QuestionCount(),
		Estimated:     q.Estimated,
	}
}
