// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/middleware"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/model"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/render"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/service"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

// TaxonomyHandler manages one of the two per-site category trees. Product
// categories and article categories share the same schema and forms, so one
// handler serves both behind different routes.
type TaxonomyHandler struct {
	queries      *store.Queries
	renderer     *render.Renderer
	eventService *service.EventService
	article      bool
	basePath     string
	label        string
}

// NewCategoryHandler creates the handler for product categories.
func NewCategoryHandler(db *sql.DB, renderer *render.Renderer, es *service.EventService) *TaxonomyHandler {
	return &TaxonomyHandler{
		queries:      store.New(db),
		renderer:     renderer,
		eventService: es,
		basePath:     RouteAdmin + RouteAdminCategories,
		label:        "Category",
	}
}

// NewArticleCategoryHandler creates the handler for article categories.
func NewArticleCategoryHandler(db *sql.DB, renderer *render.Renderer, es *service.EventService) *TaxonomyHandler {
	return &TaxonomyHandler{
		queries:      store.New(db),
		renderer:     renderer,
		eventService: es,
		article:      true,
		basePath:     RouteAdmin + RouteAdminArticleCat,
		label:        "Article category",
	}
}

// TaxonomyEntry is the normalized view of either category type for
// templates.
type TaxonomyEntry struct {
	ID          int64
	SiteID      int64
	ParentID    int64
	Name        string
	Slug        string
	Description string
	SortOrder   int64
	Active      bool
}

// TaxonomyListData is the payload of the taxonomy list template.
type TaxonomyListData struct {
	Site     store.Site
	Entries  []TaxonomyEntry
	BasePath string
	Label    string
}

// TaxonomyFormData is the payload of the taxonomy form template.
type TaxonomyFormData struct {
	Site     store.Site
	Entry    TaxonomyEntry
	Parents  []TaxonomyEntry
	BasePath string
	Label    string
	IsNew    bool
}

func entryFromCategory(c store.Category) TaxonomyEntry {
	e := TaxonomyEntry{
		ID:          c.ID,
		SiteID:      c.SiteID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		SortOrder:   c.SortOrder,
		Active:      c.Active,
	}
	if c.ParentID.Valid {
		e.ParentID = c.ParentID.Int64
	}
	return e
}

func entryFromArticleCategory(c store.ArticleCategory) TaxonomyEntry {
	e := TaxonomyEntry{
		ID:          c.ID,
		SiteID:      c.SiteID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		SortOrder:   c.SortOrder,
		Active:      c.Active,
	}
	if c.ParentID.Valid {
		e.ParentID = c.ParentID.Int64
	}
	return e
}

// listEntries loads the tree for one site in normalized form.
func (h *TaxonomyHandler) listEntries(ctx context.Context, siteID int64) ([]TaxonomyEntry, error) {
	var entries []TaxonomyEntry
	if h.article {
		cats, err := h.queries.ListArticleCategoriesBySite(ctx, siteID)
		if err != nil {
			return nil, err
		}
		for _, c := range cats {
			entries = append(entries, entryFromArticleCategory(c))
		}
		return entries, nil
	}
	cats, err := h.queries.ListCategoriesBySite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		entries = append(entries, entryFromCategory(c))
	}
	return entries, nil
}

// getEntry loads one entry by ID in normalized form.
func (h *TaxonomyHandler) getEntry(ctx context.Context, id int64) (TaxonomyEntry, error) {
	if h.article {
		c, err := h.queries.GetArticleCategoryByID(ctx, id)
		if err != nil {
			return TaxonomyEntry{}, err
		}
		return entryFromArticleCategory(c), nil
	}
	c, err := h.queries.GetCategoryByID(ctx, id)
	if err != nil {
		return TaxonomyEntry{}, err
	}
	return entryFromCategory(c), nil
}

// slugTaken reports whether a slug exists within the site's tree.
func (h *TaxonomyHandler) slugTaken(ctx context.Context, siteID int64, slug string) (int64, error) {
	arg := store.GetCategoryBySlugParams{SiteID: siteID, Slug: slug}
	var err error
	if h.article {
		_, err = h.queries.GetArticleCategoryBySlug(ctx, arg)
	} else {
		_, err = h.queries.GetCategoryBySlug(ctx, arg)
	}
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return 1, nil
}

// List renders the tree for the selected site.
func (h *TaxonomyHandler) List(w http.ResponseWriter, r *http.Request) {
	site, err := selectedSite(r, h.queries)
	if err != nil {
		serverError(w, "resolving admin site", err)
		return
	}
	entries, err := h.listEntries(r.Context(), site.ID)
	if err != nil {
		serverError(w, "listing categories", err)
		return
	}

	err = h.renderer.Render(w, r, "admin/taxonomy", render.TemplateData{
		Title:     h.label + " tree",
		User:      middleware.GetUser(r),
		CSRFToken: middleware.Token(r),
		Data: TaxonomyListData{
			Site:     site,
			Entries:  entries,
			BasePath: h.basePath,
			Label:    h.label,
		},
	})
	if err != nil {
		serverError(w, "rendering taxonomy", err)
	}
}

// NewForm renders the empty category form.
func (h *TaxonomyHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	site, err := selectedSite(r, h.queries)
	if err != nil {
		serverError(w, "resolving admin site", err)
		return
	}
	h.renderForm(w, r, site, TaxonomyEntry{Active: true}, true)
}

// EditForm renders the category form populated with an existing entry.
func (h *TaxonomyHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, h.basePath, "Invalid category")
		return
	}
	entry, err := h.getEntry(r.Context(), id)
	if err != nil {
		flashError(w, r, h.renderer, h.basePath, h.label+" not found")
		return
	}
	if !middleware.CanManageSite(middleware.GetUser(r), entry.SiteID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	site, err := h.queries.GetSiteByID(r.Context(), entry.SiteID)
	if err != nil {
		serverError(w, "fetching category site", err)
		return
	}
	h.renderForm(w, r, site, entry, false)
}

func (h *TaxonomyHandler) renderForm(w http.ResponseWriter, r *http.Request, site store.Site, entry TaxonomyEntry, isNew bool) {
	parents, err := h.listEntries(r.Context(), site.ID)
	if err != nil {
		slog.Warn("listing parent categories", "error", err)
	}
	// An entry cannot parent itself.
	filtered := parents[:0]
	for _, p := range parents {
		if p.ID != entry.ID {
			filtered = append(filtered, p)
		}
	}

	title := "Edit " + h.label
	if isNew {
		title = "New " + h.label
	}
	err = h.renderer.Render(w, r, "admin/taxonomy_form", render.TemplateData{
		Title:     title,
		User:      middleware.GetUser(r),
		CSRFToken: middleware.Token(r),
		Data: TaxonomyFormData{
			Site:     site,
			Entry:    entry,
			Parents:  filtered,
			BasePath: h.basePath,
			Label:    h.label,
			IsNew:    isNew,
		},
	})
	if err != nil {
		serverError(w, "rendering taxonomy form", err)
	}
}

// parseForm validates the submitted category form.
func (h *TaxonomyHandler) parseForm(r *http.Request, siteID int64, currentSlug string) (store.CreateCategoryParams, string) {
	f := store.CreateCategoryParams{
		SiteID:      siteID,
		Name:        formValue(r, "name"),
		Slug:        formValue(r, "slug"),
		Description: formValue(r, "description"),
		SortOrder:   formInt64(r, "sort_order", 0),
		Active:      r.FormValue("active") == "on",
	}
	if id := formInt64(r, "parent_id", 0); id > 0 {
		f.ParentID = &id
	}

	if msg := ValidateRequired(f.Name, "Name"); msg != "" {
		return f, msg
	}
	if msg := ValidateSlugForUpdate(f.Slug, currentSlug, func() (int64, error) {
		return h.slugTaken(r.Context(), siteID, f.Slug)
	}); msg != "" {
		return f, msg
	}
	return f, ""
}

// Create inserts a new category on the selected site.
func (h *TaxonomyHandler) Create(w http.ResponseWriter, r *http.Request) {
	site, err := selectedSite(r, h.queries)
	if err != nil {
		serverError(w, "resolving admin site", err)
		return
	}
	if !middleware.CanManageSite(middleware.GetUser(r), site.ID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, h.basePath+RouteSuffixNew, "Invalid form submission")
		return
	}
	f, msg := h.parseForm(r, site.ID, "")
	if msg != "" {
		flashError(w, r, h.renderer, h.basePath+RouteSuffixNew, msg)
		return
	}

	now := time.Now()
	f.CreatedAt = now
	f.UpdatedAt = now
	if h.article {
		_, err = h.queries.CreateArticleCategory(r.Context(), f)
	} else {
		_, err = h.queries.CreateCategory(r.Context(), f)
	}
	if err != nil {
		slog.Error("creating category", "slug", f.Slug, "error", err)
		flashError(w, r, h.renderer, h.basePath+RouteSuffixNew, "Could not create "+h.label)
		return
	}

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventCategorySite,
		h.label+" created", &userID, map[string]any{"slug": f.Slug, "site": site.Slug})
	flashSuccess(w, r, h.renderer, h.basePath, h.label+" created")
}

// Update saves changes to an existing category.
func (h *TaxonomyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, h.basePath, "Invalid category")
		return
	}
	entry, err := h.getEntry(r.Context(), id)
	if err != nil {
		flashError(w, r, h.renderer, h.basePath, h.label+" not found")
		return
	}
	if !middleware.CanManageSite(middleware.GetUser(r), entry.SiteID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, h.basePath, "Invalid form submission")
		return
	}
	f, msg := h.parseForm(r, entry.SiteID, entry.Slug)
	if msg != "" {
		flashError(w, r, h.renderer, h.basePath, msg)
		return
	}
	if f.ParentID != nil && *f.ParentID == entry.ID {
		flashError(w, r, h.renderer, h.basePath, "A category cannot be its own parent")
		return
	}

	arg := store.UpdateCategoryParams{
		ID:          entry.ID,
		ParentID:    f.ParentID,
		Name:        f.Name,
		Slug:        f.Slug,
		Description: f.Description,
		SortOrder:   f.SortOrder,
		Active:      f.Active,
		UpdatedAt:   time.Now(),
	}
	if h.article {
		err = h.queries.UpdateArticleCategory(r.Context(), arg)
	} else {
		err = h.queries.UpdateCategory(r.Context(), arg)
	}
	if err != nil {
		slog.Error("updating category", "id", entry.ID, "error", err)
		flashError(w, r, h.renderer, h.basePath, "Could not update "+h.label)
		return
	}

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventCategorySite,
		h.label+" updated", &userID, map[string]any{"slug": f.Slug})
	flashSuccess(w, r, h.renderer, h.basePath, h.label+" updated")
}

// Delete removes a category. Children are re-parented to the root by the
// schema.
func (h *TaxonomyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, h.basePath, "Invalid category")
		return
	}
	entry, err := h.getEntry(r.Context(), id)
	if err != nil {
		flashError(w, r, h.renderer, h.basePath, h.label+" not found")
		return
	}
	if !middleware.CanManageSite(middleware.GetUser(r), entry.SiteID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if h.article {
		err = h.queries.DeleteArticleCategory(r.Context(), entry.ID)
	} else {
		err = h.queries.DeleteCategory(r.Context(), entry.ID)
	}
	if err != nil {
		slog.Error("deleting category", "id", entry.ID, "error", err)
		flashError(w, r, h.renderer, h.basePath, "Could not delete "+h.label)
		return
	}

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventCategorySite,
		h.label+" deleted", &userID, map[string]any{"slug": entry.Slug})
	flashSuccess(w, r, h.renderer, h.basePath, h.label+" deleted")
}
