// Package handler exposes the JSON API consumed by the web front end.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator"

	"papergen/internal/extract"
	"papergen/internal/i18n"
	"papergen/internal/model"
	"papergen/internal/store"
	"papergen/internal/variant"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store     *store.Store
	builder   *variant.Builder
	extractor *extract.Extractor
	config    model.ServerConfig
	validate  *validator.Validate
}

// New creates a new Handler.
func New(s *store.Store, b *variant.Builder, e *extract.Extractor, cfg model.ServerConfig) *Handler {
	return &Handler{
		store:     s,
		builder:   b,
		extractor: e,
		config:    cfg,
		validate:  validator.New(),
	}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", h.handleSignup)
		r.Post("/auth/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Post("/auth/logout", h.handleLogout)
			r.Get("/auth/me", h.handleMe)
			r.Patch("/auth/me", h.handleUpdateMe)

			r.Post("/syllabus", h.handleSyllabusUpload)
			r.Post("/papers", h.handleGeneratePapers)
			r.Get("/history", h.handleListHistory)
			r.Delete("/history/{id}", h.handleDeleteHistory)
			r.Post("/papers/export/word", h.handleExportWord)
			r.Post("/papers/export/pdf", h.handleExportPDF)

			r.Get("/theme", h.handleGetTheme)
			r.Put("/theme", h.handleSetTheme)
		})
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// respondError writes the canonical failure shape with a localized message.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, status int, msgID string) {
	respondJSON(w, status, map[string]any{
		"success": false,
		"error":   i18n.T(r.Context(), msgID),
	})
}

// decodeAndValidate decodes the request body into v and runs struct
// validation. It writes the error response itself and reports whether the
// caller should continue.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "InvalidRequest")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		slog.Debug("request validation failed", "error", err)
		h.respondError(w, r, http.StatusBadRequest, "MissingRequiredField")
		return false
	}
	return true
}
