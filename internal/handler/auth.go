package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"papergen/internal/model"
	"papergen/internal/store"
)

const sessionCookieName = "session"

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	id, err := h.store.CreateUser(model.User{Name: req.Name, Email: req.Email, Password: req.Password})
	if errors.Is(err, store.ErrEmailTaken) {
		h.respondError(w, r, http.StatusConflict, "EmailTaken")
		return
	}
	if err != nil {
		slog.Error("signup failed", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}

	user, err := h.store.GetUserByID(id)
	if err != nil || user == nil {
		h.respondError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	if !h.startSession(w, r, user.ID) {
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "user": user})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.store.Login(req.Email, req.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		h.respondError(w, r, http.StatusUnauthorized, "InvalidCredentials")
		return
	}
	if err != nil {
		slog.Error("login failed", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	if !h.startSession(w, r, user.ID) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		_ = h.store.DeleteAuthSession(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     h.cookiePath(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.SecureCookies,
	})
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleMe returns the current user with their activity lists. The
// testHistory and downloadedPapers arrays are always present, empty when the
// user has none.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	history, err := h.store.ListHistory(user.ID)
	if err != nil {
		slog.Error("list history", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	downloads, err := h.store.ListDownloads(user.ID)
	if err != nil {
		slog.Error("list downloads", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"user":             user,
		"testHistory":      history,
		"downloadedPapers": downloads,
	})
}

// handleUpdateMe shallow-merges the submitted fields into the current user.
func (h *Handler) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user := model.UserFromContext(r.Context())
	updated, err := h.store.UpdateUser(user.ID, req.Name, req.Email, req.Password)
	if err != nil {
		slog.Error("update user", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "user": updated})
}

// requireAuth checks for a valid session cookie and puts the user on the
// request context.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			h.respondError(w, r, http.StatusUnauthorized, "AuthRequired")
			return
		}

		authSess, err := h.store.GetAuthSession(cookie.Value)
		if err != nil {
			slog.Error("failed to get auth session", "error", err)
			h.respondError(w, r, http.StatusUnauthorized, "AuthRequired")
			return
		}
		if authSess == nil {
			h.respondError(w, r, http.StatusUnauthorized, "AuthRequired")
			return
		}

		user, err := h.store.GetUserByID(authSess.UserID)
		if err != nil || user == nil {
			h.respondError(w, r, http.StatusUnauthorized, "AuthRequired")
			return
		}

		ctx := model.ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// startSession creates a session and sets the cookie. Reports success;
// failures are already written to the response.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, userID int64) bool {
	token, err := h.store.CreateAuthSession(userID)
	if err != nil {
		slog.Error("failed to create auth session", "error", err)
		h.respondError(w, r, http.StatusInternalServerError, "InternalError")
		return false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     h.cookiePath(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.config.SecureCookies,
	})
	return true
}

func (h *Handler) cookiePath() string {
	if h.config.BasePath != "" {
		return h.config.BasePath + "/"
	}
	return "/"
}
