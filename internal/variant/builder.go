// Package variant assembles non-overlapping exam paper variants from a pool
// of AI-generated questions.
package variant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"papergen/internal/model"
)

// ErrPoolTooSmall is returned when the initial question pool is smaller than
// one paper's question count. Per-variant top-ups that still come up short do
// NOT fail: they yield a smaller paper instead.
var ErrPoolTooSmall = errors.New("not enough questions generated for creating variants")

// Generator produces candidate questions for a generation config.
// Implementations must honor cfg.QuestionCount and cfg.ExcludeQuestions.
type Generator interface {
	Generate(ctx context.Context, cfg model.GenerationConfig) ([]model.Question, error)
}

// Builder splits a generated question pool into unique paper variants.
// It owns no persistent state: Build is a pure function of the pool, the
// config, and the shuffle outcomes.
type Builder struct {
	gen  Generator
	intn func(n int) int
	now  func() time.Time
}

// New creates a Builder backed by the given question generator.
func New(gen Generator) *Builder {
	return &Builder{gen: gen, intn: rand.IntN, now: time.Now}
}

// Build produces cfg.NumberOfVariants papers of cfg.QuestionCount questions
// each. No two papers from the same call share a question (compared by
// normalized text). A single-variant request skips pooling and distribution
// enforcement entirely.
func (b *Builder) Build(ctx context.Context, cfg model.GenerationConfig) ([]model.Paper, error) {
	cfg = cfg.WithDefaults()

	if cfg.NumberOfVariants == 1 {
		questions, err := b.gen.Generate(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("generate questions: %w", err)
		}
		return []model.Paper{b.assemble(1, questions, cfg)}, nil
	}

	poolSize := initialPoolSize(cfg.QuestionCount, cfg.NumberOfVariants)
	slog.Info("generating question pool",
		"pool_size", poolSize,
		"variants", cfg.NumberOfVariants,
		"question_count", cfg.QuestionCount)

	poolCfg := cfg
	poolCfg.QuestionCount = poolSize
	pool, err := b.gen.Generate(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("generate question pool: %w", err)
	}
	if len(pool) < cfg.QuestionCount {
		return nil, ErrPoolTooSmall
	}

	usedSet := make(map[string]bool)
	var usedTexts []string

	papers := make([]model.Paper, 0, cfg.NumberOfVariants)
	for i := 1; i <= cfg.NumberOfVariants; i++ {
		available := unused(pool, usedSet)

		if len(available) < cfg.QuestionCount {
			slog.Info("topping up question pool", "variant", i, "available", len(available))
			topUpCfg := cfg
			topUpCfg.QuestionCount = cfg.QuestionCount * 2
			topUpCfg.ExcludeQuestions = usedTexts
			extra, err := b.gen.Generate(ctx, topUpCfg)
			if err != nil {
				return nil, fmt.Errorf("top up variant %d: %w", i, err)
			}
			available = append(available, unused(extra, usedSet)...)
		}

		b.shuffle(available)

		candidates := available
		if len(candidates) > cfg.QuestionCount {
			candidates = candidates[:cfg.QuestionCount]
		}
		selected := enforceDistribution(candidates, cfg.ExamType, cfg.QuestionCount)

		for _, q := range selected {
			usedSet[Normalize(q.Question)] = true
			usedTexts = append(usedTexts, q.Question)
		}

		papers = append(papers, b.assemble(i, selected, cfg))
	}

	return papers, nil
}

// initialPoolSize is ceil(questionCount * max(2.5, variants*1.5)): large
// enough to make per-variant top-up round-trips rare.
func initialPoolSize(questionCount, variants int) int {
	multiplier := math.Max(2.5, float64(variants)*1.5)
	return int(math.Ceil(float64(questionCount) * multiplier))
}

func unused(pool []model.Question, usedSet map[string]bool) []model.Question {
	var out []model.Question
	for _, q := range pool {
		if !usedSet[Normalize(q.Question)] {
			out = append(out, q)
		}
	}
	return out
}

// shuffle applies an unbiased Fisher-Yates permutation in place.
func (b *Builder) shuffle(qs []model.Question) {
	for i := len(qs) - 1; i > 0; i-- {
		j := b.intn(i + 1)
		qs[i], qs[j] = qs[j], qs[i]
	}
}

func (b *Builder) assemble(paperID int, questions []model.Question, cfg model.GenerationConfig) model.Paper {
	numbered := make([]model.Question, len(questions))
	for i, q := range questions {
		q.ID = i + 1
		numbered[i] = q
	}
	return model.Paper{
		PaperID:     paperID,
		Questions:   numbered,
		TotalMarks:  cfg.TotalMarks,
		ExamType:    cfg.ExamType,
		GeneratedAt: b.now(),
		Subject:     cfg.Subject,
		Branch:      cfg.Branch,
	}
}
