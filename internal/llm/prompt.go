package llm

import (
	"fmt"
	"regexp"
	"strings"

	"papergen/internal/model"
)

var subjectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Subject\s*[:\-]\s*(.+)`),
	regexp.MustCompile(`(?i)Course\s*Name\s*[:\-]\s*(.+)`),
	regexp.MustCompile(`(?i)Course\s*Title\s*[:\-]\s*(.+)`),
	regexp.MustCompile(`(?i)Paper\s*Name\s*[:\-]\s*(.+)`),
}

// InferSubject guesses the subject name from syllabus text. It tries labeled
// header lines first ("Subject:", "Course Name:", ...), then falls back to
// the first non-empty line if it is short enough to be a title. Returns ""
// when nothing plausible is found.
func InferSubject(syllabusText string) string {
	if syllabusText == "" {
		return ""
	}
	for _, p := range subjectPatterns {
		if m := p.FindStringSubmatch(syllabusText); m != nil {
			subject := strings.TrimSpace(strings.SplitN(m[1], "\n", 2)[0])
			if subject != "" {
				return subject
			}
		}
	}
	for _, line := range strings.Split(syllabusText, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		if len(line) <= 80 {
			return line
		}
		return ""
	}
	return ""
}

// buildPrompt renders the full generation prompt for a config. The config is
// expected to already carry its defaults.
func buildPrompt(cfg model.GenerationConfig) string {
	subject := cfg.Subject
	if inferred := InferSubject(cfg.SyllabusText); inferred != "" {
		subject = inferred
	}

	var sb strings.Builder

	if cfg.SyllabusText != "" {
		fmt.Fprintf(&sb, "Generate %d balanced difficulty level questions strictly based on the provided syllabus for the %s program at %s. Focus on the syllabus content rather than any generic subject classification.",
			cfg.QuestionCount, cfg.Branch, cfg.University)
	} else {
		fmt.Fprintf(&sb, "Generate %d balanced difficulty level questions for %s in the %s program at %s.",
			cfg.QuestionCount, subject, cfg.Branch, cfg.University)
	}

	sb.WriteString("\n\n")
	sb.WriteString(distributionInstructions(cfg))

	sb.WriteString("\n\nFormat each question as:\n")
	sb.WriteString(`{
  "question": "Your question here",
  "type": "mcq|short|long",
  "marks": <number>,
  "options": ["...", "...", "...", "..."] (only for mcq),
  "correctAnswer": "A" (only for mcq)
}`)

	if cfg.SyllabusText != "" {
		sb.WriteString("\n\nSyllabus Context (AUTHORITATIVE SOURCE):\n")
		sb.WriteString(cfg.SyllabusText)
		sb.WriteString("\n\nSTRICTLY use ONLY the topics explicitly present in this syllabus. Ignore any outside knowledge or topics not covered here.")
	}

	if len(cfg.ExcludeQuestions) > 0 {
		sb.WriteString("\n\nDo NOT repeat, rephrase, or overlap with the following questions (or their meaning):\n- ")
		sb.WriteString(strings.Join(cfg.ExcludeQuestions, "\n- "))
	}

	sb.WriteString("\n\nIMPORTANT (HARD CONSTRAINTS):\n")
	sb.WriteString("- All questions MUST be unique (no repeats or rephrasing).\n")
	sb.WriteString("- MCQs must come first, then short answers, then long answers.\n")
	sb.WriteString("- Arrange questions strictly in ascending order of marks.\n")
	sb.WriteString("- Provide 4 options and a correct answer for every MCQ.\n")
	sb.WriteString("- Descriptive questions should test understanding and application.\n")
	sb.WriteString("- Questions should be balanced in difficulty (easy to pass, hard to score full marks).\n")
	if cfg.ApplyWeightage {
		sb.WriteString("- Ensure proper topic weightage distribution across the syllabus.\n")
	}
	if cfg.SyllabusText != "" {
		sb.WriteString("- Questions MUST be EXCLUSIVELY from topics mentioned in the syllabus above.\n")
		sb.WriteString("- Do NOT include any topic or subtopic that is not present in the syllabus.\n")
	}
	fmt.Fprintf(&sb, "- This is a %s examination with %d total marks.\n", cfg.ExamType, cfg.TotalMarks)
	fmt.Fprintf(&sb, "- Questions should follow %s examination patterns.\n", cfg.University)

	sb.WriteString("\nReturn ONLY a JSON array, no additional text.")

	return sb.String()
}

// distributionInstructions states the per-type question mix for the exam
// type, mirroring the mix the variant builder enforces.
func distributionInstructions(cfg model.GenerationConfig) string {
	switch cfg.ExamType {
	case model.ExamText:
		return fmt.Sprintf(`Generate exactly %d questions for a %d-mark unit test:
- 4 Multiple Choice Questions (1 mark each)
- 2 Short Answer Questions (3 marks each)
- 2 Long Answer Questions (5 marks each)`, cfg.QuestionCount, cfg.TotalMarks)
	case model.ExamPDF:
		return fmt.Sprintf(`Generate exactly %d questions for a %d-mark end-semester examination:
- 10 Multiple Choice Questions (1 mark each)
- 8 Short Answer Questions (3 marks each)
- 6 Long Answer Questions (5 marks each)`, cfg.QuestionCount, cfg.TotalMarks)
	default:
		return fmt.Sprintf(`Generate %d questions mixing these types:
1. Multiple Choice Questions: 4 options with one correct answer
2. Short Answer Questions: brief explanations (2-4 sentences)
3. Long Answer Questions: detailed explanations (1-2 paragraphs)`, cfg.QuestionCount)
	}
}

// temperatureFor returns a low temperature for syllabus-grounded generation
// and a higher one for free-form subject generation.
func temperatureFor(cfg model.GenerationConfig) float32 {
	if cfg.SyllabusText != "" {
		return 0.2
	}
	return 0.7
}
