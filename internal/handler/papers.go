package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"papergen/internal/export"
	"papergen/internal/extract"
	"papergen/internal/llm"
	"papergen/internal/model"
	"papergen/internal/variant"
)

type generateRequest struct {
	model.GenerationConfig
	FileName string `json:"fileName"`
}

// handleSyllabusUpload accepts a multipart syllabus document, extracts its
// text, and returns it with an inferred subject so the client can prefill
// the generation form.
func (h *Handler) handleSyllabusUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, extract.MaxFileSize+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}
	defer file.Close()

	if header.Size > extract.MaxFileSize {
		h.respondError(w, r, http.StatusRequestEntityTooLarge, "FileTooLarge")
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}

	text, err := h.extractor.Extract(r.Context(), header.Filename, data)
	if err != nil {
		h.respondExtractError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"text":     text,
		"subject":  llm.InferSubject(text),
		"fileName": header.Filename,
	})
}

func (h *Handler) respondExtractError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, extract.ErrFileTooLarge):
		h.respondError(w, r, http.StatusRequestEntityTooLarge, "FileTooLarge")
	case errors.Is(err, extract.ErrLegacyWordFormat):
		h.respondError(w, r, http.StatusUnsupportedMediaType, "LegacyWordFormat")
	case errors.Is(err, extract.ErrUnsupportedFormat):
		h.respondError(w, r, http.StatusUnsupportedMediaType, "UnsupportedFormat")
	case errors.Is(err, extract.ErrInsufficientText):
		h.respondError(w, r, http.StatusUnprocessableEntity, "InsufficientText")
	default:
		slog.Error("extraction failed", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "InternalError")
	}
}

// handleGeneratePapers runs the variant builder and records the result in
// the user's history.
func (h *Handler) handleGeneratePapers(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	papers, err := h.builder.Build(r.Context(), req.GenerationConfig)
	if errors.Is(err, variant.ErrPoolTooSmall) {
		h.respondError(w, r, http.StatusUnprocessableEntity, "PoolTooSmall")
		return
	}
	if err != nil {
		slog.Error("paper generation failed", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}

	user := model.UserFromContext(r.Context())
	now := time.Now()
	entry := model.HistoryEntry{
		ID:       now.UnixMilli(),
		Date:     now,
		Config:   req.GenerationConfig,
		Papers:   papers,
		FileName: req.FileName,
	}
	if err := h.store.AddHistoryEntry(user.ID, entry); err != nil {
		slog.Error("record history", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"papers":    papers,
		"historyId": entry.ID,
	})
}

func (h *Handler) handleListHistory(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())
	entries, err := h.store.ListHistory(user.ID)
	if err != nil {
		slog.Error("list history", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "testHistory": entries})
}

func (h *Handler) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "InvalidRequest")
		return
	}

	user := model.UserFromContext(r.Context())
	if err := h.store.DeleteHistoryEntry(user.ID, id); err != nil {
		h.respondError(w, r, http.StatusNotFound, "HistoryNotFound")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) handleExportWord(w http.ResponseWriter, r *http.Request) {
	h.exportPaper(w, r, "docx",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document", export.Word)
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	h.exportPaper(w, r, "pdf", "application/pdf", export.PDF)
}

// exportPaper renders the posted paper and streams it back as an attachment.
// Rendering failures are generic and safely retryable by the client.
func (h *Handler) exportPaper(w http.ResponseWriter, r *http.Request, ext, contentType string, render func(model.Paper) ([]byte, error)) {
	var paper model.Paper
	if !h.decodeAndValidate(w, r, &paper) {
		return
	}

	data, err := render(paper)
	if err != nil {
		slog.Error("export failed", "format", ext, "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "ExportFailed")
		return
	}

	user := model.UserFromContext(r.Context())
	fileName := export.FileName(paper, ext)
	if err := h.store.AddDownload(user.ID, fileName, ext); err != nil {
		slog.Warn("record download", "error", err)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("write export", "error", err)
	}
}

type themeRequest struct {
	Theme model.Theme `json:"theme" validate:"required,oneof=dark light"`
}

func (h *Handler) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())
	theme, err := h.store.Theme(user.ID)
	if err != nil {
		slog.Error("get theme", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "theme": theme})
}

func (h *Handler) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	user := model.UserFromContext(r.Context())
	if err := h.store.SetTheme(user.ID, req.Theme); err != nil {
		slog.Error("set theme", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "theme": req.Theme})
}
