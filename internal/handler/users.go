// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/auth"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/middleware"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/model"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/render"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/service"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/util"
)

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 10

// UserHandler manages admin console accounts. Admin only.
type UserHandler struct {
	queries      *store.Queries
	renderer     *render.Renderer
	eventService *service.EventService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *sql.DB, renderer *render.Renderer, es *service.EventService) *UserHandler {
	return &UserHandler{queries: store.New(db), renderer: renderer, eventService: es}
}

const adminUsersPath = RouteAdmin + RouteAdminUsers

// UserFormData is the payload of the user form template.
type UserFormData struct {
	User  store.User
	Sites []store.Site
	IsNew bool
}

// List renders the account listing.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		serverError(w, "listing users", err)
		return
	}

	err = h.renderer.Render(w, r, "admin/users", render.TemplateData{
		Title:     "Users",
		User:      middleware.GetUser(r),
		CSRFToken: middleware.Token(r),
		Data:      users,
	})
	if err != nil {
		serverError(w, "rendering users", err)
	}
}

// NewForm renders the empty account form.
func (h *UserHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, UserFormData{User: store.User{Role: model.RoleOwner}, IsNew: true})
}

// EditForm renders the account form populated with an existing user.
func (h *UserHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, adminUsersPath, "Invalid user")
		return
	}
	user, err := h.queries.GetUserByID(r.Context(), id)
	if err != nil {
		flashError(w, r, h.renderer, adminUsersPath, "User not found")
		return
	}
	h.renderForm(w, r, UserFormData{User: user})
}

func (h *UserHandler) renderForm(w http.ResponseWriter, r *http.Request, data UserFormData) {
	sites, err := h.queries.ListSites(r.Context())
	if err != nil {
		slog.Warn("listing sites for user form", "error", err)
	}
	data.Sites = sites

	title := "Edit User"
	if data.IsNew {
		title = "New User"
	}
	err = h.renderer.Render(w, r, "admin/user_form", render.TemplateData{
		Title:     title,
		User:      middleware.GetUser(r),
		CSRFToken: middleware.Token(r),
		Data:      data,
	})
	if err != nil {
		serverError(w, "rendering user form", err)
	}
}

// userForm holds the parsed user form fields.
type userForm struct {
	Email    string
	Name     string
	Role     string
	SiteID   sql.NullInt64
	Password string
}

// parseUserForm validates the submitted account form. Owners must be scoped
// to a site; admins must not be.
func parseUserForm(r *http.Request) (userForm, string) {
	f := userForm{
		Email:    formValue(r, "email"),
		Name:     formValue(r, "name"),
		Role:     formValue(r, "role"),
		Password: r.FormValue("password"),
	}

	if msg := ValidateEmail(f.Email); msg != "" {
		return f, msg
	}
	if msg := ValidateRequired(f.Name, "Name"); msg != "" {
		return f, msg
	}

	switch f.Role {
	case model.RoleAdmin:
	case model.RoleOwner:
		f.SiteID = util.ParseNullInt64Positive(formValue(r, "site_id"))
		if !f.SiteID.Valid {
			return f, "Owners must be assigned to a site"
		}
	default:
		return f, "Invalid role"
	}
	return f, ""
}

// Create inserts a new account.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, adminUsersPath+RouteSuffixNew, "Invalid form submission")
		return
	}
	f, msg := parseUserForm(r)
	if msg != "" {
		flashError(w, r, h.renderer, adminUsersPath+RouteSuffixNew, msg)
		return
	}
	if len(f.Password) < minPasswordLength {
		flashError(w, r, h.renderer, adminUsersPath+RouteSuffixNew, "Password must be at least 10 characters")
		return
	}

	hash, err := auth.HashPassword(f.Password)
	if err != nil {
		serverError(w, "hashing password", err)
		return
	}

	now := time.Now()
	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Email:        f.Email,
		PasswordHash: hash,
		Name:         f.Name,
		Role:         f.Role,
		SiteID:       f.SiteID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		slog.Error("creating user", "email", f.Email, "error", err)
		flashError(w, r, h.renderer, adminUsersPath+RouteSuffixNew, "Could not create user (email taken?)")
		return
	}

	actorID := middleware.GetUserID(r)
	_ = h.eventService.LogEvent(r.Context(), model.EventLevelInfo, model.EventCategoryUser,
		"User created", &actorID, middleware.ClientIP(r),
		map[string]any{"email": user.Email, "role": user.Role})
	flashSuccess(w, r, h.renderer, adminUsersPath, "User created")
}

// Update saves changes to an existing account. Demoting the last admin is
// rejected.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, adminUsersPath, "Invalid user")
		return
	}
	user, err := h.queries.GetUserByID(r.Context(), id)
	if err != nil {
		flashError(w, r, h.renderer, adminUsersPath, "User not found")
		return
	}
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, adminUsersPath, "Invalid form submission")
		return
	}
	f, msg := parseUserForm(r)
	if msg != "" {
		flashError(w, r, h.renderer, adminUsersPath, msg)
		return
	}

	if user.Role == model.RoleAdmin && f.Role != model.RoleAdmin {
		admins, err := h.queries.CountAdmins(r.Context())
		if err != nil {
			serverError(w, "counting admins", err)
			return
		}
		if admins <= 1 {
			flashError(w, r, h.renderer, adminUsersPath, "Cannot demote the last administrator")
			return
		}
	}

	err = h.queries.UpdateUser(r.Context(), store.UpdateUserParams{
		ID:        user.ID,
		Email:     f.Email,
		Name:      f.Name,
		Role:      f.Role,
		SiteID:    f.SiteID,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("updating user", "id", user.ID, "error", err)
		flashError(w, r, h.renderer, adminUsersPath, "Could not update user")
		return
	}

	if f.Password != "" {
		if len(f.Password) < minPasswordLength {
			flashError(w, r, h.renderer, adminUsersPath, "Password must be at least 10 characters")
			return
		}
		hash, err := auth.HashPassword(f.Password)
		if err != nil {
			serverError(w, "hashing password", err)
			return
		}
		if err := h.queries.UpdateUserPassword(r.Context(), user.ID, hash, time.Now()); err != nil {
			slog.Error("updating user password", "id", user.ID, "error", err)
		}
	}

	actorID := middleware.GetUserID(r)
	_ = h.eventService.LogEvent(r.Context(), model.EventLevelInfo, model.EventCategoryUser,
		"User updated", &actorID, middleware.ClientIP(r), map[string]any{"email": f.Email})
	flashSuccess(w, r, h.renderer, adminUsersPath, "User updated")
}

// Delete removes an account. The last admin and the current user cannot be
// deleted.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, adminUsersPath, "Invalid user")
		return
	}
	if id == middleware.GetUserID(r) {
		flashError(w, r, h.renderer, adminUsersPath, "You cannot delete your own account")
		return
	}
	user, err := h.queries.GetUserByID(r.Context(), id)
	if err != nil {
		flashError(w, r, h.renderer, adminUsersPath, "User not found")
		return
	}

	if user.Role == model.RoleAdmin {
		admins, err := h.queries.CountAdmins(r.Context())
		if err != nil {
			serverError(w, "counting admins", err)
			return
		}
		if admins <= 1 {
			flashError(w, r, h.renderer, adminUsersPath, "Cannot delete the last administrator")
			return
		}
	}

	if err := h.queries.DeleteUser(r.Context(), user.ID); err != nil {
		slog.Error("deleting user", "id", user.ID, "error", err)
		flashError(w, r, h.renderer, adminUsersPath, "Could not delete user")
		return
	}

	actorID := middleware.GetUserID(r)
	_ = h.eventService.LogEvent(r.Context(), model.EventLevelWarning, model.EventCategoryUser,
		"User deleted", &actorID, middleware.ClientIP(r), map[string]any{"email": user.Email})
	flashSuccess(w, r, h.renderer, adminUsersPath, "User deleted")
}
