package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"papergen/internal/model"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// Word renders a paper as a .docx file: a zip archive carrying the OOXML
// document part plus the minimal package plumbing.
func Word(paper model.Paper) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", documentXML(paper)},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", part.name, err)
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize docx archive: %w", err)
	}
	return buf.Bytes(), nil
}

func documentXML(paper model.Paper) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sb.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	writeStyledPara(&sb, "Question Paper", `<w:b/><w:sz w:val="40"/>`)
	writePara(&sb, fmt.Sprintf("Total Marks: %d", paper.TotalMarks))
	writePara(&sb, "Time: "+timeAllotted(paper))
	writeStyledPara(&sb, "Instructions:", `<w:b/><w:sz w:val="28"/>`)
	for _, line := range instructions {
		writePara(&sb, line)
	}
	writePara(&sb, "")

	for i, q := range paper.Questions {
		sb.WriteString("<w:p>")
		writeRun(&sb, fmt.Sprintf("%d. ", i+1), "<w:b/>")
		writeRun(&sb, q.Question+" ", "")
		writeRun(&sb, fmt.Sprintf("[%d marks]", q.Marks), "<w:i/>")
		sb.WriteString("</w:p>")

		if q.Type == model.TypeMCQ {
			for j, option := range q.Options {
				writePara(&sb, fmt.Sprintf("   %s. %s", optionLabel(j), option))
			}
		}
		writePara(&sb, "")
	}

	sb.WriteString(`</w:body></w:document>`)
	return sb.String()
}

func writePara(sb *strings.Builder, text string) {
	sb.WriteString("<w:p>")
	if text != "" {
		writeRun(sb, text, "")
	}
	sb.WriteString("</w:p>")
}

func writeStyledPara(sb *strings.Builder, text, runProps string) {
	sb.WriteString("<w:p>")
	writeRun(sb, text, runProps)
	sb.WriteString("</w:p>")
}

func writeRun(sb *strings.Builder, text, runProps string) {
	sb.WriteString("<w:r>")
	if runProps != "" {
		sb.WriteString("<w:rPr>")
		sb.WriteString(runProps)
		sb.WriteString("</w:rPr>")
	}
	sb.WriteString(`<w:t xml:space="preserve">`)
	sb.WriteString(escapeXML(text))
	sb.WriteString("</w:t></w:r>")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
