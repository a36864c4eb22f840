package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"papergen/internal/model"
)

// PDF renders a paper as an A4 PDF document.
func PDF(paper model.Paper) ([]byte, error) {
	return renderPDF(paper, true)
}

// renderPDF builds the document. Compression is switchable so tests can
// inspect the raw content stream.
func renderPDF(paper model.Paper, compress bool) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Question Paper", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, fmt.Sprintf("Total Marks: %d", paper.TotalMarks), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Time: "+timeAllotted(paper), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Instructions:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	for _, line := range instructions {
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	for i, q := range paper.Questions {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 6, fmt.Sprintf("%d. %s [%d marks]", i+1, q.Question, q.Marks), "", "L", false)

		if q.Type == model.TypeMCQ {
			pdf.SetFont("Helvetica", "", 12)
			for j, option := range q.Options {
				pdf.MultiCell(0, 6, fmt.Sprintf("   %s. %s", optionLabel(j), option), "", "L", false)
			}
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
