package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// extractPDF writes the upload to a temp file and extracts its embedded text
// with pdftotext. If the result is too short (a scanned document, usually),
// it falls back to rendering each page and running OCR.
func (e *Extractor) extractPDF(ctx context.Context, data []byte) (string, error) {
	f, err := os.CreateTemp("", "syllabus-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() { f.Close(); os.Remove(f.Name()) }()
	if _, err := f.Write(data); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}

	text, err := pdfToText(ctx, f.Name())
	if err != nil {
		return "", err
	}
	if len(strings.TrimSpace(text)) >= minTextLen {
		return text, nil
	}

	slog.Info("embedded pdf text too short, trying OCR", "chars", len(strings.TrimSpace(text)))
	ocrText, err := e.ocrPDF(ctx, f.Name())
	if err != nil {
		slog.Warn("OCR fallback failed", "error", err)
		return "", ErrInsufficientText
	}
	if len(strings.TrimSpace(ocrText)) < minOCRLen {
		return "", ErrInsufficientText
	}
	return ocrText, nil
}

// pdfToText extracts embedded text using poppler's pdftotext.
func pdfToText(ctx context.Context, path string) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", errors.New("pdftotext not found in PATH: install poppler-utils")
	}
	cmd := exec.CommandContext(ctx, "pdftotext", path, "-")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return string(output), nil
}

// ocrPDF renders every page to PNG with pdftoppm and runs tesseract on each,
// concatenating the per-page results.
func (e *Extractor) ocrPDF(ctx context.Context, path string) (string, error) {
	for _, bin := range []string{"pdftoppm", "tesseract"} {
		if _, err := exec.LookPath(bin); err != nil {
			return "", fmt.Errorf("%s not found in PATH", bin)
		}
	}

	dir, err := os.MkdirTemp("", "syllabus-ocr-")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm", "-r", "200", "-png", path, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftoppm failed: %s", strings.TrimSpace(stderr.String()))
	}

	pages, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(pages) == 0 {
		return "", errors.New("pdftoppm produced no page images")
	}
	sort.Strings(pages)

	var sb strings.Builder
	for _, page := range pages {
		text, err := e.tesseract(ctx, page)
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func (e *Extractor) tesseract(ctx context.Context, imagePath string) (string, error) {
	if e.ocrTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.ocrTimeout)
		defer cancel()
	}
	args := []string{imagePath, "stdout"}
	if e.ocrLang != "" {
		args = append(args, "-l", e.ocrLang)
	}
	cmd := exec.CommandContext(ctx, "tesseract", args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %s", strings.TrimSpace(stderr.String()))
	}
	return out.String(), nil
}
