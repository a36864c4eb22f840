package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSyllabus = `Subject: Engineering Mathematics
Module 1: Linear Algebra - matrices, determinants, eigenvalues.
Module 2: Calculus - limits, differentiation, integration.`

// makeDocx builds a minimal OOXML document holding the given paragraphs.
func makeDocx(t *testing.T, paragraphs []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	doc.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		doc.WriteString(`<w:p><w:r><w:t>`)
		doc.WriteString(p)
		doc.WriteString(`</w:t></w:r></w:p>`)
	}
	doc.WriteString(`</w:body></w:document>`)

	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(doc.String()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractPlainText(t *testing.T) {
	e := New()
	text, err := e.Extract(context.Background(), "syllabus.txt", []byte(sampleSyllabus))
	require.NoError(t, err)
	assert.Equal(t, sampleSyllabus, text)
}

func TestExtractExtensionCaseInsensitive(t *testing.T) {
	e := New()
	_, err := e.Extract(context.Background(), "SYLLABUS.TXT", []byte(sampleSyllabus))
	assert.NoError(t, err)
}

func TestExtractShortTextInsufficient(t *testing.T) {
	e := New()
	_, err := e.Extract(context.Background(), "syllabus.txt", []byte("too short"))
	assert.ErrorIs(t, err, ErrInsufficientText)
}

func TestExtractFileTooLarge(t *testing.T) {
	e := New()
	_, err := e.Extract(context.Background(), "big.pdf", make([]byte, MaxFileSize+1))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestExtractLegacyWordRejected(t *testing.T) {
	e := New()
	_, err := e.Extract(context.Background(), "syllabus.doc", []byte("anything"))
	assert.ErrorIs(t, err, ErrLegacyWordFormat)
}

func TestExtractUnsupportedFormat(t *testing.T) {
	e := New()
	for _, name := range []string{"syllabus.png", "syllabus.csv", "syllabus"} {
		_, err := e.Extract(context.Background(), name, []byte(sampleSyllabus))
		assert.ErrorIs(t, err, ErrUnsupportedFormat, "file %q", name)
	}
}

func TestExtractDocx(t *testing.T) {
	e := New()
	data := makeDocx(t, []string{
		"Subject: Engineering Mathematics",
		"Module 1: Linear Algebra covers matrices and determinants.",
	})

	text, err := e.Extract(context.Background(), "syllabus.docx", data)
	require.NoError(t, err)
	assert.Contains(t, text, "Subject: Engineering Mathematics")
	assert.Contains(t, text, "Module 1: Linear Algebra")

	// Paragraphs come back on separate lines.
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 2)
}

func TestDocxTextNotAnArchive(t *testing.T) {
	_, err := DocxText([]byte("this is not a zip file"))
	assert.Error(t, err)
}

func TestDocxTextMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("unrelated.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = DocxText(buf.Bytes())
	assert.Error(t, err)
}

func TestDocumentTextBreaksAndTabs(t *testing.T) {
	doc := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>before</w:t><w:br/><w:t>after</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	text, err := documentText(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "before after\n", text)
}
