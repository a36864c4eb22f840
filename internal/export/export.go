// Package export renders generated papers to downloadable Word and PDF
// documents. Both exporters are pure functions of a Paper.
package export

import (
	"fmt"

	"papergen/internal/model"
)

// FileName returns the canonical download name for an exported paper.
// ext is "docx" or "pdf".
func FileName(paper model.Paper, ext string) string {
	return fmt.Sprintf("%s_Paper_Variant_%d.%s", paper.ExamType, paper.PaperID, ext)
}

// timeAllotted returns the exam duration line for a paper.
func timeAllotted(paper model.Paper) string {
	if paper.ExamType == model.ExamPDF {
		return "3 Hours"
	}
	return "1.5 Hours"
}

// instructions is the fixed block printed on every paper.
var instructions = []string{
	"1. Answer all questions",
	"2. Write clearly and legibly",
}

// optionLabel returns the letter for an option index: A, B, C, D...
func optionLabel(i int) string {
	return string(rune('A' + i))
}
