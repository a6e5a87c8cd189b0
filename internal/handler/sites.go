// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/middleware"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/model"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/render"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/service"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/tenant"
)

// SiteHandler manages tenant sites. Admin only.
type SiteHandler struct {
	queries      *store.Queries
	renderer     *render.Renderer
	eventService *service.EventService
}

// NewSiteHandler creates a new SiteHandler.
func NewSiteHandler(db *sql.DB, renderer *render.Renderer, es *service.EventService) *SiteHandler {
	return &SiteHandler{queries: store.New(db), renderer: renderer, eventService: es}
}

const adminSitesPath = RouteAdmin + RouteAdminSites

// SiteFormData is the payload of the site form template.
type SiteFormData struct {
	Site   store.Site
	Niches []store.Niche
	IsNew  bool
}

// List renders the site listing.
func (h *SiteHandler) List(w http.ResponseWriter, r *http.Request) {
	sites, err := h.queries.ListSites(r.Context())
	if err != nil {
		serverError(w, "listing sites", err)
		return
	}

	err = h.renderer.Render(w, r, "admin/sites", render.TemplateData{
		Title:     "Sites",
		User:      middleware.GetUser(r),
		CSRFToken: middleware.Token(r),
		Data:      sites,
	})
	if err != nil {
		serverError(w, "rendering sites", err)
	}
}

// NewForm renders the empty site form.
func (h *SiteHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, SiteFormData{IsNew: true})
}

// EditForm renders the site form populated with an existing site.
func (h *SiteHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, adminSitesPath, "Invalid site")
		return
	}
	site, err := h.queries.GetSiteByID(r.Context(), id)
	if err != nil {
		flashError(w, r, h.renderer, adminSitesPath, "Site not found")
		return
	}
	h.renderForm(w, r, SiteFormData{Site: site})
}

func (h *SiteHandler) renderForm(w http.ResponseWriter, r *http.Request, data SiteFormData) {
	niches, err := h.queries.ListNiches(r.Context())
	if err != nil {
		serverError(w, "listing niches", err)
		return
	}
	data.Niches = niches

	title := "Edit Site"
	if data.IsNew {
		title = "New Site"
	}
	err = h.renderer.Render(w, r, "admin/site_form", render.TemplateData{
		Title:     title,
		User:      middleware.GetUser(r),
		CSRFToken: middleware.Token(r),
		Data:      data,
	})
	if err != nil {
		serverError(w, "rendering site form", err)
	}
}

// siteForm holds the parsed and validated site form fields.
type siteForm struct {
	Slug         string
	Name         string
	Domain       string
	NicheID      int64
	ThemePrimary string
	ThemeAccent  string
	SocialLinks  string
	Tagline      string
	Active       bool
}

// parseSiteForm validates the submitted form, returning an error message on
// the first failure.
func (h *SiteHandler) parseSiteForm(r *http.Request, currentSlug string) (siteForm, string) {
	f := siteForm{
		Slug:         formValue(r, "slug"),
		Name:         formValue(r, "name"),
		Domain:       tenant.NormalizeHost(formValue(r, "domain")),
		NicheID:      formInt64(r, "niche_id", 0),
		ThemePrimary: formValue(r, "theme_primary"),
		ThemeAccent:  formValue(r, "theme_accent"),
		SocialLinks:  formValue(r, "social_links"),
		Tagline:      formValue(r, "tagline"),
		Active:       r.FormValue("active") == "on",
	}

	if msg := ValidateRequired(f.Name, "Name"); msg != "" {
		return f, msg
	}
	if msg := ValidateSlugForUpdate(f.Slug, currentSlug, func() (int64, error) {
		_, err := h.queries.GetSiteBySlug(r.Context(), f.Slug)
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
	if f.NicheID <= 0 {
		return f, "Niche is required"
	}
	if f.SocialLinks != "" && !json.Valid([]byte(f.SocialLinks)) {
		return f, "Social links must be valid JSON"
	}
	return f, ""
}

// Create inserts a new site.
func (h *SiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, adminSitesPath+RouteSuffixNew, "Invalid form submission")
		return
	}
	f, msg := h.parseSiteForm(r, "")
	if msg != "" {
		flashError(w, r, h.renderer, adminSitesPath+RouteSuffixNew, msg)
		return
	}

	now := time.Now()
	site, err := h.queries.CreateSite(r.Context(), store.CreateSiteParams{
		Slug:         f.Slug,
		Name:         f.Name,
		Domain:       f.Domain,
		NicheID:      f.NicheID,
		ThemePrimary: f.ThemePrimary,
		ThemeAccent:  f.ThemeAccent,
		SocialLinks:  f.SocialLinks,
		Tagline:      f.Tagline,
		Active:       f.Active,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		slog.Error("creating site", "slug", f.Slug, "error", err)
		flashError(w, r, h.renderer, adminSitesPath+RouteSuffixNew, "Could not create site")
		return
	}

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogEvent(r.Context(), model.EventLevelInfo, model.EventCategorySite,
		"Site created", &userID, middleware.ClientIP(r), map[string]any{"slug": site.Slug})
	flashSuccess(w, r, h.renderer, adminSitesPath, "Site created")
}

// Update saves changes to an existing site.
func (h *SiteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, adminSitesPath, "Invalid site")
		return
	}
	site, err := h.queries.GetSiteByID(r.Context(), id)
	if err != nil {
		flashError(w, r, h.renderer, adminSitesPath, "Site not found")
		return
	}
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, adminSitesPath, "Invalid form submission")
		return
	}
	f, msg := h.parseSiteForm(r, site.Slug)
	if msg != "" {
		flashError(w, r, h.renderer, adminSitesPath, msg)
		return
	}

	err = h.queries.UpdateSite(r.Context(), store.UpdateSiteParams{
		ID:           site.ID,
		Slug:         f.Slug,
		Name:         f.Name,
		Domain:       f.Domain,
		NicheID:      f.NicheID,
		ThemePrimary: f.ThemePrimary,
		ThemeAccent:  f.ThemeAccent,
		SocialLinks:  f.SocialLinks,
		Tagline:      f.Tagline,
		Active:       f.Active,
		UpdatedAt:    time.Now(),
	})
	if err != nil {
		slog.Error("updating site", "id", site.ID, "error", err)
		flashError(w, r, h.renderer, adminSitesPath, "Could not update site")
		return
	}

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogEvent(r.Context(), model.EventLevelInfo, model.EventCategorySite,
		"Site updated", &userID, middleware.ClientIP(r), map[string]any{"slug": f.Slug})
	flashSuccess(w, r, h.renderer, adminSitesPath, "Site updated")
}

// Delete removes a site and all of its content.
func (h *SiteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, adminSitesPath, "Invalid site")
		return
	}
	site, err := h.queries.GetSiteByID(r.Context(), id)
	if err != nil {
		flashError(w, r, h.renderer, adminSitesPath, "Site not found")
		return
	}

	if err := h.queries.DeleteSite(r.Context(), site.ID); err != nil {
		slog.Error("deleting site", "id", site.ID, "error", err)
		flashError(w, r, h.renderer, adminSitesPath, "Could not delete site")
		return
	}

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogEvent(r.Context(), model.EventLevelWarning, model.EventCategorySite,
		"Site deleted", &userID, middleware.ClientIP(r), map[string]any{"slug": site.Slug})
	flashSuccess(w, r, h.renderer, adminSitesPath, "Site deleted")
}
