// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/auth"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/middleware"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/model"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/render"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/service"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

// AuthHandler handles admin console login and logout.
type AuthHandler struct {
	queries         *store.Queries
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, es *service.EventService, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		queries:         store.New(db),
		renderer:        renderer,
		sessionManager:  sm,
		eventService:    es,
		loginProtection: lp,
	}
}

// LoginForm displays the login form.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID) != 0 {
		http.Redirect(w, r, RouteAdmin, http.StatusSeeOther)
		return
	}

	err := h.renderer.Render(w, r, "auth/login", render.TemplateData{
		Title:     "Login",
		CSRFToken: middleware.Token(r),
	})
	if err != nil {
		serverError(w, "rendering login form", err)
	}
}

// Login processes a login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, RouteLogin, "Invalid form submission")
		return
	}

	email := formValue(r, "email")
	password := r.FormValue("password")
	clientIP := middleware.ClientIP(r)

	if msg := ValidateEmail(email); msg != "" {
		flashError(w, r, h.renderer, RouteLogin, msg)
		return
	}
	if password == "" {
		flashError(w, r, h.renderer, RouteLogin, "Password is required")
		return
	}

	if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning,
			"Login attempt on locked account", nil, clientIP, map[string]any{"email": email})
		flashError(w, r, h.renderer, RouteLogin,
			fmt.Sprintf("Account locked, try again in %s", formatDuration(remaining)))
		return
	}

	user, err := h.queries.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning,
				"Login failed: user not found", nil, clientIP, map[string]any{"email": email})
		} else {
			slog.Error("database error during login", "error", err)
		}
		// Unknown accounts still count as failed attempts, which keeps the
		// responses indistinguishable from a wrong password.
		h.recordFailure(w, r, email, nil, clientIP)
		return
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err, "user_id", user.ID)
		flashError(w, r, h.renderer, RouteLogin, "Invalid email or password")
		return
	}
	if !valid {
		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning,
			"Login failed: invalid password", &user.ID, clientIP, map[string]any{"email": email})
		h.recordFailure(w, r, email, &user.ID, clientIP)
		return
	}

	h.loginProtection.RecordSuccess(email)

	// Re-hash when the stored hash uses outdated cost parameters.
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), user.ID, newHash, time.Now()); err != nil {
				slog.Error("re-hashing password", "error", err, "user_id", user.ID)
			}
		}
	}

	// New session token on privilege change.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		serverError(w, "renewing session token", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo,
		"User logged in", &user.ID, clientIP, map[string]any{"email": email})
	http.Redirect(w, r, RouteAdmin, http.StatusSeeOther)
}

// recordFailure records a failed attempt and flashes the matching message.
func (h *AuthHandler) recordFailure(w http.ResponseWriter, r *http.Request, email string, userID *int64, clientIP string) {
	if locked, duration := h.loginProtection.RecordFailedAttempt(email); locked {
		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning,
			"Account locked after failed attempts", userID, clientIP,
			map[string]any{"email": email, "duration": duration.String()})
		flashError(w, r, h.renderer, RouteLogin,
			fmt.Sprintf("Too many failed attempts, account locked for %s", formatDuration(duration)))
		return
	}
	flashError(w, r, h.renderer, RouteLogin, "Invalid email or password")
}

// Logout destroys the session and redirects to the login form.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID)

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("destroying session", "error", err)
	}

	if userID != 0 {
		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo,
			"User logged out", &userID, middleware.ClientIP(r), nil)
	}
	http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
}

// formatDuration renders a lockout duration in whole minutes for flash
// messages.
func formatDuration(d time.Duration) string {
	minutes := int(d.Round(time.Minute).Minutes())
	if minutes <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
