// Package extract pulls plain text out of uploaded syllabus documents.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// MaxFileSize is the upload ceiling, enforced before any extraction attempt.
const MaxFileSize = 10 << 20

const (
	// minTextLen is the minimum extracted length considered usable syllabus.
	minTextLen = 50
	// minOCRLen is the lower bar applied to OCR output, which is noisier.
	minOCRLen = 20
)

var (
	// ErrFileTooLarge is returned before extraction when the upload exceeds
	// MaxFileSize.
	ErrFileTooLarge = fmt.Errorf("file is too large (max %dMB)", MaxFileSize>>20)

	// ErrUnsupportedFormat is returned for file types outside the accepted
	// set (PDF, DOCX, TXT).
	ErrUnsupportedFormat = errors.New("unsupported file format: please upload a PDF, DOCX, or TXT file")

	// ErrLegacyWordFormat is returned for .doc uploads: the legacy binary
	// Word format has no extractor, only the OOXML .docx format does.
	ErrLegacyWordFormat = errors.New("legacy .doc files are not supported: save the file as .docx or PDF and try again")

	// ErrInsufficientText is returned when a document yields too little text
	// to generate questions from. It is a user-input problem, not a bug.
	ErrInsufficientText = errors.New("could not extract enough text from the document: it may be empty, scanned at low quality, or image-only")
)

// Extractor converts uploaded documents to plain text. PDF extraction shells
// out to poppler's pdftotext, with a pdftoppm+tesseract OCR fallback for
// scanned documents.
type Extractor struct {
	ocrLang    string
	ocrTimeout time.Duration
}

// New returns an Extractor with English OCR and a per-page OCR timeout.
func New() *Extractor {
	return &Extractor{ocrLang: "eng", ocrTimeout: 30 * time.Second}
}

// Extract returns the plain text of an uploaded file. The filename's
// extension selects the extraction strategy. Returned text is trimmed and
// guaranteed to be at least minTextLen characters.
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) > MaxFileSize {
		return "", ErrFileTooLarge
	}

	var text string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".text":
		text = string(data)
	case ".pdf":
		text, err = e.extractPDF(ctx, data)
	case ".docx":
		text, err = DocxText(data)
	case ".doc":
		return "", ErrLegacyWordFormat
	default:
		return "", ErrUnsupportedFormat
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if len(text) < minTextLen {
		return "", ErrInsufficientText
	}
	return text, nil
}
