// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/layout"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/middleware"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/model"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/render"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/service"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

// NicheHandler manages niches and their layout configs. Admin only.
type NicheHandler struct {
	queries      *store.Queries
	renderer     *render.Renderer
	eventService *service.EventService
}

// NewNicheHandler creates a new NicheHandler.
func NewNicheHandler(db *sql.DB, renderer *render.Renderer, es *service.EventService) *NicheHandler {
	return &NicheHandler{queries: store.New(db), renderer: renderer, eventService: es}
}

const adminNichesPath = RouteAdmin + RouteAdminNiches

// NicheFormData is the payload of the niche form template.
type NicheFormData struct {
	Niche store.Niche
	IsNew bool
}

// List renders the niche listing.
func (h *NicheHandler) List(w http.ResponseWriter, r *http.Request) {
	niches, err := h.queries.ListNiches(r.Context())
	if err != nil {
		serverError(w, "listing niches", err)
		return
	}

	err = h.renderer.Render(w, r, "admin/niches", render.TemplateData{
		Title:     "Niches",
		User:      middleware.GetUser(r),
		CSRFToken: middleware.Token(r),
		Data:      niches,
	})
	if err != nil {
		serverError(w, "rendering niches", err)
	}
}

// NewForm renders the empty niche form.
func (h *NicheHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, NicheFormData{IsNew: true})
}

// EditForm renders the niche form populated with an existing niche.
func (h *NicheHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, adminNichesPath, "Invalid niche")
		return
	}
	niche, err := h.queries.GetNicheByID(r.Context(), id)
	if err != nil {
		flashError(w, r, h.renderer, adminNichesPath, "Niche not found")
		return
	}
	h.renderForm(w, r, NicheFormData{Niche: niche})
}

func (h *NicheHandler) renderForm(w http.ResponseWriter, r *http.Request, data NicheFormData) {
	title := "Edit Niche"
	if data.IsNew {
		title = "New Niche"
	}
	err := h.renderer.Render(w, r, "admin/niche_form", render.TemplateData{
		Title:     title,
		User:      middleware.GetUser(r),
		CSRFToken: middleware.Token(r),
		Data:      data,
	})
	if err != nil {
		serverError(w, "rendering niche form", err)
	}
}

// parseNicheForm validates the submitted form. The layout config must parse
// as a layout document before it is accepted; a broken config would silently
// degrade every site on the niche.
func (h *NicheHandler) parseNicheForm(r *http.Request, currentSlug string) (store.CreateNicheParams, string) {
	f := store.CreateNicheParams{
		Name:         formValue(r, "name"),
		Slug:         formValue(r, "slug"),
		LayoutConfig: formValue(r, "layout_config"),
	}

	if msg := ValidateRequired(f.Name, "Name"); msg != "" {
		return f, msg
	}
	if msg := ValidateSlugForUpdate(f.Slug, currentSlug, func() (int64, error) {
		_, err := h.queries.GetNicheBySlug(r.Context(), f.Slug)
		if err == sql.ErrNoRows {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		return 1, nil
	}); msg != "" {
		return f, msg
	}
	if _, err := layout.Parse(f.LayoutConfig); err != nil {
		return f, "Layout config is not a valid layout document: " + err.Error()
	}
	return f, ""
}

// Create inserts a new niche.
func (h *NicheHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, adminNichesPath+RouteSuffixNew, "Invalid form submission")
		return
	}
	f, msg := h.parseNicheForm(r, "")
	if msg != "" {
		flashError(w, r, h.renderer, adminNichesPath+RouteSuffixNew, msg)
		return
	}

	now := time.Now()
	f.CreatedAt = now
	f.UpdatedAt = now
	niche, err := h.queries.CreateNiche(r.Context(), f)
	if err != nil {
		slog.Error("creating niche", "slug", f.Slug, "error", err)
		flashError(w, r, h.renderer, adminNichesPath+RouteSuffixNew, "Could not create niche")
		return
	}

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogEvent(r.Context(), model.EventLevelInfo, model.EventCategorySite,
		"Niche created", &userID, middleware.ClientIP(r), map[string]any{"slug": niche.Slug})
	flashSuccess(w, r, h.renderer, adminNichesPath, "Niche created")
}

// Update saves changes to an existing niche.
func (h *NicheHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, adminNichesPath, "Invalid niche")
		return
	}
	niche, err := h.queries.GetNicheByID(r.Context(), id)
	if err != nil {
		flashError(w, r, h.renderer, adminNichesPath, "Niche not found")
		return
	}
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, adminNichesPath, "Invalid form submission")
		return
	}
	f, msg := h.parseNicheForm(r, niche.Slug)
	if msg != "" {
		flashError(w, r, h.renderer, adminNichesPath, msg)
		return
	}

	err = h.queries.UpdateNiche(r.Context(), store.UpdateNicheParams{
		ID:           niche.ID,
		Name:         f.Name,
		Slug:         f.Slug,
		LayoutConfig: f.LayoutConfig,
		UpdatedAt:    time.Now(),
	})
	if err != nil {
		slog.Error("updating niche", "id", niche.ID, "error", err)
		flashError(w, r, h.renderer, adminNichesPath, "Could not update niche")
		return
	}

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogEvent(r.Context(), model.EventLevelInfo, model.EventCategorySite,
		"Niche updated", &userID, middleware.ClientIP(r), map[string]any{"slug": f.Slug})
	flashSuccess(w, r, h.renderer, adminNichesPath, "Niche updated")
}

// Delete removes a niche unless sites still reference it.
func (h *NicheHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, adminNichesPath, "Invalid niche")
		return
	}
	niche, err := h.queries.GetNicheByID(r.Context(), id)
	if err != nil {
		flashError(w, r, h.renderer, adminNichesPath, "Niche not found")
		return
	}

	count, err := h.queries.CountSitesByNiche(r.Context(), niche.ID)
	if err != nil {
		serverError(w, "counting sites by niche", err)
		return
	}
	if count > 0 {
		flashError(w, r, h.renderer, adminNichesPath, "Niche is still used by one or more sites")
		return
	}

	if err := h.queries.DeleteNiche(r.Context(), niche.ID); err != nil {
		slog.Error("deleting niche", "id", niche.ID, "error", err)
		flashError(w, r, h.renderer, adminNichesPath, "Could not delete niche")
		return
	}

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogEvent(r.Context(), model.EventLevelWarning, model.EventCategorySite,
		"Niche deleted", &userID, middleware.ClientIP(r), map[string]any{"slug": niche.Slug})
	flashSuccess(w, r, h.renderer, adminNichesPath, "Niche deleted")
}
