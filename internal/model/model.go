package model

import (
	"context"
	"time"
)

// QuestionType tags a question as multiple-choice, short answer, or long answer.
type QuestionType string

const (
	// TypeMCQ is a multiple-choice question with four options.
	TypeMCQ QuestionType = "mcq"
	// TypeShort is a short-answer question.
	TypeShort QuestionType = "short"
	// TypeLong is a long-answer question requiring a detailed explanation.
	TypeLong QuestionType = "long"
)

// ExamType selects the paper blueprint (question count, marks, type mix).
type ExamType string

const (
	// ExamText is a 20-mark paper built from pasted syllabus text.
	ExamText ExamType = "text"
	// ExamPDF is a 60-mark paper built from an uploaded syllabus document.
	ExamPDF ExamType = "pdf"
)

// Question is a single exam question. Options and CorrectAnswer are only
// populated for mcq questions. ID is positional: 1-based and contiguous
// within a paper, renumbered on any structural edit.
type Question struct {
	ID            int          `json:"id"`
	Type          QuestionType `json:"type"`
	Question      string       `json:"question"`
	Marks         int          `json:"marks"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
}

// Paper is one generated exam variant.
type Paper struct {
	PaperID     int        `json:"paperId"`
	Questions   []Question `json:"questions"`
	TotalMarks  int        `json:"totalMarks"`
	ExamType    ExamType   `json:"examType"`
	GeneratedAt time.Time  `json:"generatedAt"`
	Subject     string     `json:"subject"`
	Branch      string     `json:"branch"`
}

// GenerationConfig holds the user-chosen generation parameters. It is an
// immutable input: the variant builder and the LLM client read it but never
// mutate it.
type GenerationConfig struct {
	ExamType         ExamType `json:"examType" validate:"required"`
	NumberOfVariants int      `json:"numberOfVariants" validate:"min=0,max=10"`
	SyllabusText     string   `json:"syllabusText"`
	Subject          string   `json:"subject"`
	Branch           string   `json:"branch"`
	University       string   `json:"university"`
	TotalMarks       int      `json:"totalMarks"`
	QuestionCount    int      `json:"questionCount"`
	ApplyWeightage   bool     `json:"applyWeightage"`

	// ExcludeQuestions lists literal question texts the generator must not
	// repeat. Set on per-variant top-up requests.
	ExcludeQuestions []string `json:"excludeQuestions,omitempty"`
}

// DefaultQuestionCount returns the per-paper question count for an exam type
// when the config does not override it.
func DefaultQuestionCount(t ExamType) int {
	switch t {
	case ExamText:
		return 8
	case ExamPDF:
		return 24
	default:
		return 10
	}
}

// DefaultTotalMarks returns the paper marks for an exam type when the config
// does not override it.
func DefaultTotalMarks(t ExamType) int {
	switch t {
	case ExamText:
		return 20
	case ExamPDF:
		return 60
	default:
		return 50
	}
}

// WithDefaults returns a copy of the config with zero-valued fields replaced
// by the exam-type defaults.
func (c GenerationConfig) WithDefaults() GenerationConfig {
	if c.NumberOfVariants == 0 {
		c.NumberOfVariants = 1
	}
	if c.QuestionCount == 0 {
		c.QuestionCount = DefaultQuestionCount(c.ExamType)
	}
	if c.TotalMarks == 0 {
		c.TotalMarks = DefaultTotalMarks(c.ExamType)
	}
	if c.Subject == "" {
		c.Subject = "Engineering Subject"
	}
	if c.Branch == "" {
		c.Branch = "Engineering"
	}
	if c.University == "" {
		c.University = "Mumbai University"
	}
	return c
}

// HistoryEntry records one successful generation in a user's history.
// ID is derived from the generation timestamp (unix milliseconds).
type HistoryEntry struct {
	ID       int64            `json:"id"`
	Date     time.Time        `json:"date"`
	Config   GenerationConfig `json:"config"`
	Papers   []Paper          `json:"questions"`
	FileName string           `json:"fileName"`
}

// DownloadedPaper records one export download in a user's history.
type DownloadedPaper struct {
	ID           int64     `json:"id"`
	FileName     string    `json:"fileName"`
	Format       string    `json:"format"`
	DownloadedAt time.Time `json:"downloadedAt"`
}

// User is a registered account. Password is stored and compared in plain
// text: this is a mock identity store, not a security boundary.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthSession is a cookie-backed login session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Theme is the persisted UI theme preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

// ServerConfig holds runtime HTTP parameters set via CLI flags.
type ServerConfig struct {
	Addr          string
	BasePath      string
	SecureCookies bool
	AllowedOrigin string
	Lang          string
}
