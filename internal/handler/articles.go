// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/middleware"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/model"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/render"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/service"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/util"
)

// ArticleHandler manages editorial articles and their featured products.
type ArticleHandler struct {
	queries      *store.Queries
	renderer     *render.Renderer
	eventService *service.EventService
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(db *sql.DB, renderer *render.Renderer, es *service.EventService) *ArticleHandler {
	return &ArticleHandler{queries: store.New(db), renderer: renderer, eventService: es}
}

const adminArticlesPath = RouteAdmin + RouteAdminArticles

// ArticleListData is the payload of the article list template.
type ArticleListData struct {
	Site       store.Site
	Articles   []store.Article
	Pagination AdminPagination
}

// ArticleFormData is the payload of the article form template.
type ArticleFormData struct {
	Site       store.Site
	Article    store.Article
	Categories []store.ArticleCategory
	Products   []store.Product
	FeaturedID map[int64]bool
	IsNew      bool
}

// List renders the article listing for the selected site.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	site, err := selectedSite(r, h.queries)
	if err != nil {
		serverError(w, "resolving admin site", err)
		return
	}

	page := queryPage(r)
	total, err := h.queries.CountArticlesBySite(r.Context(), site.ID)
	if err != nil {
		serverError(w, "counting articles", err)
		return
	}
	articles, err := h.queries.ListArticlesBySite(r.Context(), store.ListArticlesBySiteParams{
		SiteID: site.ID,
		Limit:  adminPerPage,
		Offset: int64((page - 1) * adminPerPage),
	})
	if err != nil {
		serverError(w, "listing articles", err)
		return
	}

	err = h.renderer.Render(w, r, "admin/articles", render.TemplateData{
		Title:     "Articles",
		User:      middleware.GetUser(r),
		CSRFToken: middleware.Token(r),
		Data: ArticleListData{
			Site:       site,
			Articles:   articles,
			Pagination: BuildAdminPagination(page, total, adminPerPage, adminArticlesPath, r.URL.Query()),
		},
	})
	if err != nil {
		serverError(w, "rendering articles", err)
	}
}

// NewForm renders the empty article form.
func (h *ArticleHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	site, err := selectedSite(r, h.queries)
	if err != nil {
		serverError(w, "resolving admin site", err)
		return
	}
	h.renderForm(w, r, ArticleFormData{
		Site: site,
		Article: store.Article{
			Status:     model.ArticleStatusDraft,
			BodyFormat: model.BodyFormatMarkdown,
			Type:       model.ArticleTypeReview,
		},
		FeaturedID: map[int64]bool{},
		IsNew:      true,
	})
}

// EditForm renders the article form populated with an existing article.
func (h *ArticleHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	article, site, ok := h.loadArticle(w, r)
	if !ok {
		return
	}

	featured := map[int64]bool{}
	products, err := h.queries.ListProductsByArticle(r.Context(), article.ID)
	if err != nil {
		slog.Warn("listing article products", "article", article.Slug, "error", err)
	}
	for _, p := range products {
		featured[p.ID] = true
	}

	h.renderForm(w, r, ArticleFormData{
		Site:       site,
		Article:    article,
		FeaturedID: featured,
	})
}

func (h *ArticleHandler) renderForm(w http.ResponseWriter, r *http.Request, data ArticleFormData) {
	categories, err := h.queries.ListArticleCategoriesBySite(r.Context(), data.Site.ID)
	if err != nil {
		serverError(w, "listing article categories", err)
		return
	}
	data.Categories = categories

	products, err := h.queries.ListProductsBySite(r.Context(), store.ListProductsBySiteParams{
		SiteID: data.Site.ID,
		Limit:  500,
	})
	if err != nil {
		slog.Warn("listing site products for article form", "error", err)
	}
	data.Products = products

	title := "Edit Article"
	if data.IsNew {
		title = "New Article"
	}
	err = h.renderer.Render(w, r, "admin/article_form", render.TemplateData{
		Title:     title,
		User:      middleware.GetUser(r),
		CSRFToken: middleware.Token(r),
		Data:      data,
	})
	if err != nil {
		serverError(w, "rendering article form", err)
	}
}

// loadArticle fetches the article behind {id} and verifies the current user
// may manage its site.
func (h *ArticleHandler) loadArticle(w http.ResponseWriter, r *http.Request) (store.Article, store.Site, bool) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, adminArticlesPath, "Invalid article")
		return store.Article{}, store.Site{}, false
	}
	article, err := h.queries.GetArticleByID(r.Context(), id)
	if err != nil {
		flashError(w, r, h.renderer, adminArticlesPath, "Article not found")
		return store.Article{}, store.Site{}, false
	}
	if !middleware.CanManageSite(middleware.GetUser(r), article.SiteID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return store.Article{}, store.Site{}, false
	}
	site, err := h.queries.GetSiteByID(r.Context(), article.SiteID)
	if err != nil {
		serverError(w, "fetching article site", err)
		return store.Article{}, store.Site{}, false
	}
	return article, site, true
}

// articleForm holds the parsed article form fields.
type articleForm struct {
	Slug       string
	Title      string
	Excerpt    string
	Body       string
	BodyFormat string
	Type       string
	Status     string
	CategoryID *int64
	Featured   string
	ProductIDs []int64
}

// parseArticleForm validates the submitted form.
func (h *ArticleHandler) parseArticleForm(r *http.Request, siteID int64, currentSlug string) (articleForm, string) {
	f := articleForm{
		Slug:       formValue(r, "slug"),
		Title:      formValue(r, "title"),
		Excerpt:    formValue(r, "excerpt"),
		Body:       r.FormValue("body"),
		BodyFormat: formValue(r, "body_format"),
		Type:       formValue(r, "type"),
		Status:     formValue(r, "status"),
		Featured:   formValue(r, "featured_image"),
	}

	if msg := ValidateRequired(f.Title, "Title"); msg != "" {
		return f, msg
	}
	if f.Slug == "" {
		f.Slug = util.Slugify(f.Title)
	}
	if msg := ValidateSlugForUpdate(f.Slug, currentSlug, func() (int64, error) {
		_, err := h.queries.GetArticleBySlug(r.Context(), store.GetArticleBySlugParams{SiteID: siteID, Slug: f.Slug})
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

	switch f.BodyFormat {
	case model.BodyFormatHTML, model.BodyFormatMarkdown:
	default:
		return f, "Invalid body format"
	}
	if !model.IsValidArticleType(f.Type) {
		return f, "Invalid article type"
	}
	switch f.Status {
	case model.ArticleStatusDraft, model.ArticleStatusPublished, model.ArticleStatusArchived:
	default:
		return f, "Invalid status"
	}

	if id := formInt64(r, "article_category_id", 0); id > 0 {
		f.CategoryID = &id
	}
	for _, raw := range r.Form["product_ids"] {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			f.ProductIDs = append(f.ProductIDs, id)
		}
	}

	return f, ""
}

// Create inserts a new article on the selected site.
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
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
		flashError(w, r, h.renderer, adminArticlesPath+RouteSuffixNew, "Invalid form submission")
		return
	}
	f, msg := h.parseArticleForm(r, site.ID, "")
	if msg != "" {
		flashError(w, r, h.renderer, adminArticlesPath+RouteSuffixNew, msg)
		return
	}

	now := time.Now()
	article, err := h.queries.CreateArticle(r.Context(), store.CreateArticleParams{
		SiteID:            site.ID,
		ArticleCategoryID: f.CategoryID,
		Slug:              f.Slug,
		Title:             f.Title,
		Excerpt:           f.Excerpt,
		Body:              f.Body,
		BodyFormat:        f.BodyFormat,
		Type:              f.Type,
		Status:            f.Status,
		FeaturedImage:     f.Featured,
		CreatedAt:         now,
		UpdatedAt:         now,
		PublishedAt:       publishedAt(f.Status, nil),
	})
	if err != nil {
		slog.Error("creating article", "slug", f.Slug, "error", err)
		flashError(w, r, h.renderer, adminArticlesPath+RouteSuffixNew, "Could not create article")
		return
	}

	if err := h.queries.SetArticleProducts(r.Context(), store.SetArticleProductsParams{
		ArticleID:  article.ID,
		ProductIDs: f.ProductIDs,
	}); err != nil {
		slog.Error("linking article products", "article", article.Slug, "error", err)
	}

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventCategoryArticle,
		"Article created", &userID, map[string]any{"slug": article.Slug, "site": site.Slug})
	flashSuccess(w, r, h.renderer, adminArticlesPath, "Article created")
}

// Update saves changes to an existing article.
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	article, site, ok := h.loadArticle(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, adminArticlesPath, "Invalid form submission")
		return
	}
	f, msg := h.parseArticleForm(r, site.ID, article.Slug)
	if msg != "" {
		flashError(w, r, h.renderer, adminArticlesPath, msg)
		return
	}

	var current *time.Time
	if article.PublishedAt.Valid {
		t := article.PublishedAt.Time
		current = &t
	}

	err := h.queries.UpdateArticle(r.Context(), store.UpdateArticleParams{
		ID:                article.ID,
		ArticleCategoryID: f.CategoryID,
		Slug:              f.Slug,
		Title:             f.Title,
		Excerpt:           f.Excerpt,
		Body:              f.Body,
		BodyFormat:        f.BodyFormat,
		Type:              f.Type,
		Status:            f.Status,
		FeaturedImage:     f.Featured,
		UpdatedAt:         time.Now(),
		PublishedAt:       publishedAt(f.Status, current),
	})
	if err != nil {
		slog.Error("updating article", "id", article.ID, "error", err)
		flashError(w, r, h.renderer, adminArticlesPath, "Could not update article")
		return
	}

	if err := h.queries.SetArticleProducts(r.Context(), store.SetArticleProductsParams{
		ArticleID:  article.ID,
		ProductIDs: f.ProductIDs,
	}); err != nil {
		slog.Error("linking article products", "article", f.Slug, "error", err)
	}

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventCategoryArticle,
		"Article updated", &userID, map[string]any{"slug": f.Slug, "site": site.Slug})
	flashSuccess(w, r, h.renderer, adminArticlesPath, "Article updated")
}

// Delete removes an article.
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	article, site, ok := h.loadArticle(w, r)
	if !ok {
		return
	}

	if err := h.queries.DeleteArticle(r.Context(), article.ID); err != nil {
		slog.Error("deleting article", "id", article.ID, "error", err)
		flashError(w, r, h.renderer, adminArticlesPath, "Could not delete article")
		return
	}

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventCategoryArticle,
		"Article deleted", &userID, map[string]any{"slug": article.Slug, "site": site.Slug})
	flashSuccess(w, r, h.renderer, adminArticlesPath, "Article deleted")
}
