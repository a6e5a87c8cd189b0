// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/content"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/layout"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/middleware"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/model"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/page"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/render"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/repo"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/section"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/seo"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/service"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/tenant"
)

// Frontend listing sizes.
const (
	homeProductLimit  = 12
	homeArticleLimit  = 6
	categoryPageLimit = 24
)

// FrontendHandler serves the public pages of every tenant site.
type FrontendHandler struct {
	db           *sql.DB
	queries      *store.Queries
	renderer     *render.Renderer
	content      *content.Renderer
	registry     *section.Registry
	eventService *service.EventService
	autoLink     bool
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(db *sql.DB, renderer *render.Renderer, contentRenderer *content.Renderer, registry *section.Registry, es *service.EventService, autoLink bool) *FrontendHandler {
	return &FrontendHandler{
		db:           db,
		queries:      store.New(db),
		renderer:     renderer,
		content:      contentRenderer,
		registry:     registry,
		eventService: es,
		autoLink:     autoLink,
	}
}

// builder returns a page builder over a fresh request-scoped repo. The repo
// memoizes reads for the lifetime of one request only.
func (h *FrontendHandler) builder() (*repo.Repo, *page.Builder) {
	r := repo.New(h.queries)
	return r, page.NewBuilder(r, h.content, h.autoLink)
}

// HomeData is the payload of the home template.
type HomeData struct {
	Products   []store.Product
	Articles   []store.Article
	Categories []store.Category
}

// Home renders the tenant's landing page.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	site, ok := tenant.FromContext(r.Context())
	if !ok {
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}

	rp, _ := h.builder()
	data := HomeData{}

	if products, err := rp.LatestProducts(r.Context(), site.ID, homeProductLimit); err != nil {
		slog.Warn("fetching home products", "site", site.Slug, "error", err)
	} else {
		data.Products = products
	}
	if articles, err := rp.LatestArticles(r.Context(), site.ID, homeArticleLimit); err != nil {
		slog.Warn("fetching home articles", "site", site.Slug, "error", err)
	} else {
		data.Articles = articles
	}
	if categories, err := rp.Categories(r.Context(), site.ID); err != nil {
		slog.Warn("fetching home categories", "site", site.Slug, "error", err)
	} else {
		data.Categories = categories
	}

	err := h.renderer.Render(w, r, "frontend/home", render.TemplateData{
		Title:          site.Name,
		Site:           &site,
		Data:           data,
		StructuredData: seo.Render(seo.WebSite(site)),
	})
	if err != nil {
		serverError(w, "rendering home", err)
	}
}

// Product renders a product review page: the page context is assembled once,
// the niche layout resolved against the product's metadata, and each selected
// section rendered from the shared context.
func (h *FrontendHandler) Product(w http.ResponseWriter, r *http.Request) {
	site, ok := tenant.FromContext(r.Context())
	if !ok {
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}
	slug := chi.URLParam(r, "slug")

	_, builder := h.builder()
	pc, err := builder.BuildProduct(r.Context(), site, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.NotFound(w, r)
			return
		}
		serverError(w, "building product page", err)
		return
	}

	resolved := h.resolveLayout(pc.Niche, pc.Meta)
	sections := h.registry.Dispatch(pc, resolved.ZoneSections("main"))
	sections = append(sections, h.registry.Dispatch(pc, resolved.ZoneSections("overlay"))...)

	baseURL := seo.BaseURL(site)
	price := page.ProductPrice(*pc.Product)
	structured := seo.Render(
		seo.WebSite(site),
		seo.Product(*pc.Product, price, pc.Rating, baseURL+page.ProductURL(slug)),
		seo.Review(*pc.Product, pc.Rating, site),
		seo.BreadcrumbList(pc.Breadcrumbs, baseURL),
		seo.FAQPage(pc.Meta.FAQItems()),
	)

	err = h.renderer.Render(w, r, "frontend/product", render.TemplateData{
		Title:          pc.Product.Name + " | " + site.Name,
		Site:           &site,
		Data:           pc,
		Sections:       sections,
		StructuredData: structured,
	})
	if err != nil {
		serverError(w, "rendering product page", err)
	}
}

// Article renders an article page.
func (h *FrontendHandler) Article(w http.ResponseWriter, r *http.Request) {
	site, ok := tenant.FromContext(r.Context())
	if !ok {
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}
	slug := chi.URLParam(r, "slug")

	_, builder := h.builder()
	pc, err := builder.BuildArticle(r.Context(), site, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.NotFound(w, r)
			return
		}
		serverError(w, "building article page", err)
		return
	}

	baseURL := seo.BaseURL(site)
	structured := seo.Render(
		seo.WebSite(site),
		seo.Article(*pc.Article, site, baseURL+page.ArticleURL(slug)),
		seo.BreadcrumbList(pc.Breadcrumbs, baseURL),
	)

	err = h.renderer.Render(w, r, "frontend/article", render.TemplateData{
		Title:          pc.Article.Title + " | " + site.Name,
		Site:           &site,
		Data:           pc,
		StructuredData: structured,
	})
	if err != nil {
		serverError(w, "rendering article page", err)
	}
}

// CategoryData is the payload of the category template.
type CategoryData struct {
	Category    store.Category
	Products    []store.Product
	Breadcrumbs []page.Breadcrumb
}

// Category renders a product category listing.
func (h *FrontendHandler) Category(w http.ResponseWriter, r *http.Request) {
	site, ok := tenant.FromContext(r.Context())
	if !ok {
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}
	slug := chi.URLParam(r, "slug")

	rp, _ := h.builder()
	category, err := rp.CategoryBySlug(r.Context(), site.ID, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.NotFound(w, r)
			return
		}
		serverError(w, "fetching category", err)
		return
	}

	products, err := rp.ProductsByCategory(r.Context(), site.ID, category.Slug, categoryPageLimit)
	if err != nil {
		slog.Warn("fetching category products", "category", category.Slug, "error", err)
	}

	crumbs := []page.Breadcrumb{{Label: "Home", URL: "/"}}
	chain, err := rp.CategoryBreadcrumb(r.Context(), site.ID, category.ID)
	if err != nil {
		slog.Warn("building category breadcrumb", "category", category.Slug, "error", err)
		chain = []store.Category{category}
	}
	for _, c := range chain {
		crumbs = append(crumbs, page.Breadcrumb{Label: c.Name, URL: page.CategoryURL(c.Slug)})
	}

	baseURL := seo.BaseURL(site)
	err = h.renderer.Render(w, r, "frontend/category", render.TemplateData{
		Title: category.Name + " | " + site.Name,
		Site:  &site,
		Data: CategoryData{
			Category:    category,
			Products:    products,
			Breadcrumbs: crumbs,
		},
		StructuredData: seo.Render(seo.WebSite(site), seo.BreadcrumbList(crumbs, baseURL)),
	})
	if err != nil {
		serverError(w, "rendering category page", err)
	}
}

// ContactForm displays the contact form.
func (h *FrontendHandler) ContactForm(w http.ResponseWriter, r *http.Request) {
	site, ok := tenant.FromContext(r.Context())
	if !ok {
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}

	err := h.renderer.Render(w, r, "frontend/contact", render.TemplateData{
		Title:     "Contact | " + site.Name,
		Site:      &site,
		CSRFToken: middleware.Token(r),
	})
	if err != nil {
		serverError(w, "rendering contact form", err)
	}
}

// ContactSubmit stores a contact form submission.
func (h *FrontendHandler) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	site, ok := tenant.FromContext(r.Context())
	if !ok {
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, RouteContact, "Invalid form submission")
		return
	}

	name := formValue(r, "name")
	email := formValue(r, "email")
	subject := formValue(r, "subject")
	message := formValue(r, "message")

	if msg := ValidateRequired(name, "Name"); msg != "" {
		flashError(w, r, h.renderer, RouteContact, msg)
		return
	}
	if msg := ValidateEmail(email); msg != "" {
		flashError(w, r, h.renderer, RouteContact, msg)
		return
	}
	if msg := ValidateRequired(message, "Message"); msg != "" {
		flashError(w, r, h.renderer, RouteContact, msg)
		return
	}

	clientIP := middleware.ClientIP(r)
	err := h.queries.CreateFormSubmission(r.Context(), store.CreateFormSubmissionParams{
		SiteID:    site.ID,
		Name:      name,
		Email:     email,
		Subject:   subject,
		Message:   message,
		IPAddress: clientIP,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("storing contact submission", "site", site.Slug, "error", err)
		flashError(w, r, h.renderer, RouteContact, "Could not send your message, please try again")
		return
	}

	_ = h.eventService.LogEvent(r.Context(), model.EventLevelInfo, model.EventCategoryForm,
		"Contact form submission", nil, clientIP, map[string]any{"site": site.Slug, "email": email})
	flashSuccess(w, r, h.renderer, RouteContact, "Thanks, your message has been sent")
}

// resolveLayout parses the niche layout config, merges it over the default
// layout and filters sections against the product metadata. A malformed niche
// config logs and falls back to the default layout.
func (h *FrontendHandler) resolveLayout(niche store.Niche, meta model.Metadata) layout.Config {
	nicheCfg, err := layout.Parse(niche.LayoutConfig)
	if err != nil {
		slog.Warn("invalid niche layout config", "niche", niche.Slug, "error", err)
		nicheCfg = nil
	}
	return layout.Resolve(layout.Merge(layout.Default(), nicheCfg), meta)
}

// NotFound renders the themed 404 page, falling back to a plain error when
// the template itself fails.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)

	data := render.TemplateData{Title: "Page not found"}
	if site, ok := tenant.FromContext(r.Context()); ok {
		data.Site = &site
		data.Title = "Page not found | " + site.Name
	}
	if err := h.renderer.Render(w, r, "frontend/404", data); err != nil {
		slog.Error("rendering 404 page", "error", err)
		fmt.Fprint(w, "Page not found")
	}
}

// sitemapURL is one <url> entry of the sitemap.
type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// sitemapURLSet is the root element of the sitemap.
type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap serves the tenant's sitemap.xml with its published products,
// articles and categories.
func (h *FrontendHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	site, ok := tenant.FromContext(r.Context())
	if !ok {
		http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
		return
	}

	baseURL := seo.BaseURL(site)
	set := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  []sitemapURL{{Loc: baseURL + "/"}},
	}

	rp, _ := h.builder()
	if products, err := rp.LatestProducts(r.Context(), site.ID, 1000); err == nil {
		for _, p := range products {
			set.URLs = append(set.URLs, sitemapURL{
				Loc:     baseURL + page.ProductURL(p.Slug),
				LastMod: p.UpdatedAt.Format("2006-01-02"),
			})
		}
	}
	if articles, err := rp.LatestArticles(r.Context(), site.ID, 1000); err == nil {
		for _, a := range articles {
			set.URLs = append(set.URLs, sitemapURL{
				Loc:     baseURL + page.ArticleURL(a.Slug),
				LastMod: a.UpdatedAt.Format("2006-01-02"),
			})
		}
	}
	if categories, err := rp.Categories(r.Context(), site.ID); err == nil {
		for _, c := range categories {
			set.URLs = append(set.URLs, sitemapURL{Loc: baseURL + page.CategoryURL(c.Slug)})
		}
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	fmt.Fprint(w, xml.Header)
	if err := xml.NewEncoder(w).Encode(set); err != nil {
		slog.Error("encoding sitemap", "site", site.Slug, "error", err)
	}
}

// Robots serves robots.txt, pointing crawlers at the sitemap and keeping
// them out of the admin console.
func (h *FrontendHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Disallow: /admin")
	fmt.Fprintln(w, "Disallow: /login")
	if site, ok := tenant.FromContext(r.Context()); ok {
		if baseURL := seo.BaseURL(site); baseURL != "" {
			fmt.Fprintln(w, "Sitemap: "+baseURL+RouteSitemap)
		}
	}
}
