package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"papergen/internal/model"
)

// rawQuestion is the loosely-typed shape the model returns. Every field is
// optional; parseResponse fills in defaults.
type rawQuestion struct {
	Question      string             `json:"question"`
	Type          model.QuestionType `json:"type"`
	Marks         int                `json:"marks"`
	Options       []string           `json:"options"`
	CorrectAnswer string             `json:"correctAnswer"`
}

// parseResponse extracts the first JSON array from a model response and
// coerces it into questions. Markdown code fences and surrounding prose are
// tolerated. At most questionCount questions are returned, renumbered with
// sequential 1-based ids.
func parseResponse(response string, questionCount int) ([]model.Question, error) {
	clean := strings.ReplaceAll(response, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	start := strings.Index(clean, "[")
	end := strings.LastIndex(clean, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	var raw []rawQuestion
	if err := json.Unmarshal([]byte(clean[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("parse question array: %w", err)
	}

	if len(raw) > questionCount {
		raw = raw[:questionCount]
	}

	questions := make([]model.Question, len(raw))
	for i, q := range raw {
		if q.Type == "" {
			q.Type = model.TypeShort
		}
		if q.Question == "" {
			q.Question = fmt.Sprintf("Question %d", i+1)
		}
		if q.Marks == 0 {
			q.Marks = 2
		}
		questions[i] = model.Question{
			ID:            i + 1,
			Type:          q.Type,
			Question:      q.Question,
			Marks:         q.Marks,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		}
	}
	return questions, nil
}
