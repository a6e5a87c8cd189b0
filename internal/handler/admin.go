// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/middleware"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/render"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

// AdminHandler serves the admin console dashboard.
type AdminHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *sql.DB, renderer *render.Renderer) *AdminHandler {
	return &AdminHandler{queries: store.New(db), renderer: renderer}
}

// DashboardData is the payload of the dashboard template.
type DashboardData struct {
	Site         store.Site
	Sites        []store.Site
	ProductCount int64
	ArticleCount int64
	MediaCount   int64
	RecentEvents []store.Event
	Submissions  []store.FormSubmission
}

// Dashboard renders the admin landing page with content counts for the
// selected site. Owners see their own site only; admins can switch.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	site, err := selectedSite(r, h.queries)
	if err != nil {
		serverError(w, "resolving admin site", err)
		return
	}

	data := DashboardData{Site: site}
	user := middleware.GetUser(r)

	if user != nil && !user.SiteID.Valid {
		if sites, err := h.queries.ListSites(r.Context()); err != nil {
			slog.Warn("listing sites for dashboard", "error", err)
		} else {
			data.Sites = sites
		}
		if events, err := h.queries.ListEvents(r.Context(), store.ListEventsParams{Limit: 10}); err != nil {
			slog.Warn("listing recent events", "error", err)
		} else {
			data.RecentEvents = events
		}
	}

	if count, err := h.queries.CountProductsBySite(r.Context(), site.ID); err == nil {
		data.ProductCount = count
	}
	if count, err := h.queries.CountArticlesBySite(r.Context(), site.ID); err == nil {
		data.ArticleCount = count
	}
	if count, err := h.queries.CountMediaBySite(r.Context(), site.ID); err == nil {
		data.MediaCount = count
	}
	if subs, err := h.queries.ListFormSubmissionsBySite(r.Context(), site.ID, 5); err == nil {
		data.Submissions = subs
	}

	err = h.renderer.Render(w, r, "admin/dashboard", render.TemplateData{
		Title:     "Dashboard",
		User:      user,
		CSRFToken: middleware.Token(r),
		Data:      data,
	})
	if err != nil {
		serverError(w, "rendering dashboard", err)
	}
}
