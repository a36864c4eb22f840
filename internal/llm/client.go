// Package llm generates exam questions from a syllabus via a text-completion
// provider (Gemini by default).
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"papergen/internal/model"
)

// Client turns generation configs into question lists. Generation never
// fails: any provider or parse error is logged and replaced with placeholder
// questions so a paper can still be assembled and the UI stays responsive.
type Client struct {
	provider Provider
}

// NewClient wraps a provider.
func NewClient(p Provider) *Client {
	return &Client{provider: p}
}

// Generate requests cfg.QuestionCount questions from the provider. The
// returned error is always nil; failures degrade to placeholders.
func (c *Client) Generate(ctx context.Context, cfg model.GenerationConfig) ([]model.Question, error) {
	cfg = cfg.WithDefaults()

	prompt := buildPrompt(cfg)
	slog.Debug("requesting questions",
		"model", c.provider.ModelID(),
		"question_count", cfg.QuestionCount,
		"exam_type", cfg.ExamType,
		"excluded", len(cfg.ExcludeQuestions))

	response, err := c.provider.Complete(ctx, prompt, temperatureFor(cfg))
	if err != nil {
		slog.Warn("question generation failed, using placeholders", "error", err)
		return placeholderQuestions(cfg.QuestionCount), nil
	}

	questions, err := parseResponse(response, cfg.QuestionCount)
	if err != nil {
		slog.Warn("unparseable model response, using placeholders", "error", err)
		return placeholderQuestions(cfg.QuestionCount), nil
	}
	if len(questions) == 0 {
		slog.Warn("model returned no questions, using placeholders")
		return placeholderQuestions(cfg.QuestionCount), nil
	}
	return questions, nil
}

// placeholderQuestions returns visibly fake short-answer questions so a
// failed generation still produces a complete, exportable paper.
func placeholderQuestions(count int) []model.Question {
	questions := make([]model.Question, count)
	for i := range questions {
		questions[i] = model.Question{
			ID:       i + 1,
			Type:     model.TypeShort,
			Question: fmt.Sprintf("Engineering question %d: This is a fallback question. Please check your API key and connection, then try again for AI-generated questions.", i+1),
			Marks:    2,
		}
	}
	return questions
}
