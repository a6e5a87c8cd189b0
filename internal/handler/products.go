// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
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

// ProductHandler manages products, their affiliate links and category
// assignments.
type ProductHandler struct {
	queries      *store.Queries
	renderer     *render.Renderer
	eventService *service.EventService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(db *sql.DB, renderer *render.Renderer, es *service.EventService) *ProductHandler {
	return &ProductHandler{queries: store.New(db), renderer: renderer, eventService: es}
}

const adminProductsPath = RouteAdmin + RouteAdminProducts

// ProductListData is the payload of the product list template.
type ProductListData struct {
	Site       store.Site
	Products   []store.Product
	Pagination AdminPagination
}

// ProductFormData is the payload of the product form template.
type ProductFormData struct {
	Site           store.Site
	Product        store.Product
	Categories     []store.Category
	AssignedIDs    map[int64]bool
	PrimaryID      int64
	AffiliateLinks []store.AffiliateLink
	IsNew          bool
}

// List renders the product listing for the selected site.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	site, err := selectedSite(r, h.queries)
	if err != nil {
		serverError(w, "resolving admin site", err)
		return
	}

	page := queryPage(r)
	total, err := h.queries.CountProductsBySite(r.Context(), site.ID)
	if err != nil {
		serverError(w, "counting products", err)
		return
	}
	products, err := h.queries.ListProductsBySite(r.Context(), store.ListProductsBySiteParams{
		SiteID: site.ID,
		Limit:  adminPerPage,
		Offset: int64((page - 1) * adminPerPage),
	})
	if err != nil {
		serverError(w, "listing products", err)
		return
	}

	err = h.renderer.Render(w, r, "admin/products", render.TemplateData{
		Title:     "Products",
		User:      middleware.GetUser(r),
		CSRFToken: middleware.Token(r),
		Data: ProductListData{
			Site:       site,
			Products:   products,
			Pagination: BuildAdminPagination(page, total, adminPerPage, adminProductsPath, r.URL.Query()),
		},
	})
	if err != nil {
		serverError(w, "rendering products", err)
	}
}

// NewForm renders the empty product form.
func (h *ProductHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	site, err := selectedSite(r, h.queries)
	if err != nil {
		serverError(w, "resolving admin site", err)
		return
	}
	h.renderForm(w, r, ProductFormData{
		Site:        site,
		Product:     store.Product{Status: model.ProductStatusDraft},
		AssignedIDs: map[int64]bool{},
		IsNew:       true,
	})
}

// EditForm renders the product form populated with an existing product.
func (h *ProductHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	product, site, ok := h.loadProduct(w, r)
	if !ok {
		return
	}

	assigned := map[int64]bool{}
	ids, primary, err := h.queries.ListCategoryIDsByProduct(r.Context(), product.ID)
	if err != nil {
		slog.Warn("listing product categories", "product", product.Slug, "error", err)
	}
	for _, id := range ids {
		assigned[id] = true
	}

	links, err := h.queries.ListAffiliateLinksByProduct(r.Context(), product.ID)
	if err != nil {
		slog.Warn("listing affiliate links", "product", product.Slug, "error", err)
	}

	h.renderForm(w, r, ProductFormData{
		Site:           site,
		Product:        product,
		AssignedIDs:    assigned,
		PrimaryID:      primary,
		AffiliateLinks: links,
	})
}

func (h *ProductHandler) renderForm(w http.ResponseWriter, r *http.Request, data ProductFormData) {
	categories, err := h.queries.ListCategoriesBySite(r.Context(), data.Site.ID)
	if err != nil {
		serverError(w, "listing categories", err)
		return
	}
	data.Categories = categories

	title := "Edit Product"
	if data.IsNew {
		title = "New Product"
	}
	err = h.renderer.Render(w, r, "admin/product_form", render.TemplateData{
		Title:     title,
		User:      middleware.GetUser(r),
		CSRFToken: middleware.Token(r),
		Data:      data,
	})
	if err != nil {
		serverError(w, "rendering product form", err)
	}
}

// loadProduct fetches the product behind {id} and verifies the current user
// may manage its site.
func (h *ProductHandler) loadProduct(w http.ResponseWriter, r *http.Request) (store.Product, store.Site, bool) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, adminProductsPath, "Invalid product")
		return store.Product{}, store.Site{}, false
	}
	product, err := h.queries.GetProductByID(r.Context(), id)
	if err != nil {
		flashError(w, r, h.renderer, adminProductsPath, "Product not found")
		return store.Product{}, store.Site{}, false
	}
	if !middleware.CanManageSite(middleware.GetUser(r), product.SiteID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return store.Product{}, store.Site{}, false
	}
	site, err := h.queries.GetSiteByID(r.Context(), product.SiteID)
	if err != nil {
		serverError(w, "fetching product site", err)
		return store.Product{}, store.Site{}, false
	}
	return product, site, true
}

// productForm holds the parsed product form fields.
type productForm struct {
	Slug          string
	Name          string
	Summary       string
	Body          string
	Status        string
	PriceAmount   *float64
	PriceMax      *float64
	PriceCurrency string
	PriceText     string
	Rating        *float64
	ReviewCount   int64
	Metadata      string
	FeaturedImage string
	CategoryIDs   []int64
	PrimaryID     int64
	Links         []store.CreateAffiliateLinkParams
}

// parseProductForm validates the submitted form. An empty slug is derived
// from the name.
func (h *ProductHandler) parseProductForm(r *http.Request, siteID int64, currentSlug string) (productForm, string) {
	f := productForm{
		Slug:          formValue(r, "slug"),
		Name:          formValue(r, "name"),
		Summary:       formValue(r, "summary"),
		Body:          r.FormValue("body"),
		Status:        formValue(r, "status"),
		PriceAmount:   formFloat(r, "price_amount"),
		PriceMax:      formFloat(r, "price_max"),
		PriceCurrency: formValue(r, "price_currency"),
		PriceText:     formValue(r, "price_text"),
		Rating:        formFloat(r, "rating"),
		ReviewCount:   formInt64(r, "review_count", 0),
		Metadata:      formValue(r, "metadata"),
		FeaturedImage: formValue(r, "featured_image"),
		PrimaryID:     formInt64(r, "primary_category", 0),
	}

	if msg := ValidateRequired(f.Name, "Name"); msg != "" {
		return f, msg
	}
	if f.Slug == "" {
		f.Slug = util.Slugify(f.Name)
	}
	if msg := ValidateSlugForUpdate(f.Slug, currentSlug, func() (int64, error) {
		_, err := h.queries.GetProductBySlug(r.Context(), store.GetProductBySlugParams{SiteID: siteID, Slug: f.Slug})
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

	switch f.Status {
	case model.ProductStatusDraft, model.ProductStatusPublished, model.ProductStatusArchived:
	default:
		return f, "Invalid status"
	}
	if f.Rating != nil && (*f.Rating < 0 || *f.Rating > 5) {
		return f, "Rating must be between 0 and 5"
	}
	if f.Metadata == "" {
		f.Metadata = "{}"
	} else if !json.Valid([]byte(f.Metadata)) {
		return f, "Metadata must be valid JSON"
	}

	for _, raw := range r.Form["category_ids"] {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			f.CategoryIDs = append(f.CategoryIDs, id)
		}
	}

	labels := r.Form["link_label"]
	urls := r.Form["link_url"]
	primaryIdx := formInt64(r, "link_primary", -1)
	for i := range urls {
		url := urls[i]
		if url == "" {
			continue
		}
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		f.Links = append(f.Links, store.CreateAffiliateLinkParams{
			Label:     label,
			URL:       url,
			IsPrimary: int64(i) == primaryIdx,
			SortOrder: int64(i),
		})
	}

	return f, ""
}

// publishedAt preserves an existing publication timestamp and stamps the
// first transition to published.
func publishedAt(status string, current *time.Time) *time.Time {
	if status != model.ProductStatusPublished && status != model.ArticleStatusPublished {
		return current
	}
	if current != nil {
		return current
	}
	now := time.Now()
	return &now
}

// saveRelations replaces a product's affiliate links and category
// assignments with the submitted set.
func (h *ProductHandler) saveRelations(r *http.Request, productID int64, f productForm) error {
	if err := h.queries.DeleteAffiliateLinksByProduct(r.Context(), productID); err != nil {
		return err
	}
	now := time.Now()
	for _, link := range f.Links {
		link.ProductID = productID
		link.CreatedAt = now
		if err := h.queries.CreateAffiliateLink(r.Context(), link); err != nil {
			return err
		}
	}
	return h.queries.SetProductCategories(r.Context(), store.SetProductCategoriesParams{
		ProductID:   productID,
		CategoryIDs: f.CategoryIDs,
		PrimaryID:   f.PrimaryID,
	})
}

// Create inserts a new product on the selected site.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
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
		flashError(w, r, h.renderer, adminProductsPath+RouteSuffixNew, "Invalid form submission")
		return
	}
	f, msg := h.parseProductForm(r, site.ID, "")
	if msg != "" {
		flashError(w, r, h.renderer, adminProductsPath+RouteSuffixNew, msg)
		return
	}

	now := time.Now()
	product, err := h.queries.CreateProduct(r.Context(), store.CreateProductParams{
		SiteID:        site.ID,
		Slug:          f.Slug,
		Name:          f.Name,
		Summary:       f.Summary,
		Body:          f.Body,
		Status:        f.Status,
		PriceAmount:   f.PriceAmount,
		PriceMax:      f.PriceMax,
		PriceCurrency: f.PriceCurrency,
		PriceText:     f.PriceText,
		Rating:        f.Rating,
		ReviewCount:   f.ReviewCount,
		Metadata:      f.Metadata,
		FeaturedImage: f.FeaturedImage,
		CreatedAt:     now,
		UpdatedAt:     now,
		PublishedAt:   publishedAt(f.Status, nil),
	})
	if err != nil {
		slog.Error("creating product", "slug", f.Slug, "error", err)
		flashError(w, r, h.renderer, adminProductsPath+RouteSuffixNew, "Could not create product")
		return
	}

	if err := h.saveRelations(r, product.ID, f); err != nil {
		slog.Error("saving product relations", "product", product.Slug, "error", err)
	}

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventCategoryProduct,
		"Product created", &userID, map[string]any{"slug": product.Slug, "site": site.Slug})
	flashSuccess(w, r, h.renderer, adminProductsPath, "Product created")
}

// Update saves changes to an existing product.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	product, site, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, adminProductsPath, "Invalid form submission")
		return
	}
	f, msg := h.parseProductForm(r, site.ID, product.Slug)
	if msg != "" {
		flashError(w, r, h.renderer, adminProductsPath, msg)
		return
	}

	var current *time.Time
	if product.PublishedAt.Valid {
		t := product.PublishedAt.Time
		current = &t
	}

	err := h.queries.UpdateProduct(r.Context(), store.UpdateProductParams{
		ID:            product.ID,
		Slug:          f.Slug,
		Name:          f.Name,
		Summary:       f.Summary,
		Body:          f.Body,
		Status:        f.Status,
		PriceAmount:   f.PriceAmount,
		PriceMax:      f.PriceMax,
		PriceCurrency: f.PriceCurrency,
		PriceText:     f.PriceText,
		Rating:        f.Rating,
		ReviewCount:   f.ReviewCount,
		Metadata:      f.Metadata,
		FeaturedImage: f.FeaturedImage,
		UpdatedAt:     time.Now(),
		PublishedAt:   publishedAt(f.Status, current),
	})
	if err != nil {
		slog.Error("updating product", "id", product.ID, "error", err)
		flashError(w, r, h.renderer, adminProductsPath, "Could not update product")
		return
	}

	if err := h.saveRelations(r, product.ID, f); err != nil {
		slog.Error("saving product relations", "product", f.Slug, "error", err)
	}

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventCategoryProduct,
		"Product updated", &userID, map[string]any{"slug": f.Slug, "site": site.Slug})
	flashSuccess(w, r, h.renderer, adminProductsPath, "Product updated")
}

// Delete removes a product.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	product, site, ok := h.loadProduct(w, r)
	if !ok {
		return
	}

	if err := h.queries.DeleteProduct(r.Context(), product.ID); err != nil {
		slog.Error("deleting product", "id", product.ID, "error", err)
		flashError(w, r, h.renderer, adminProductsPath, "Could not delete product")
		return
	}

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogContentEvent(r.Context(), model.EventCategoryProduct,
		"Product deleted", &userID, map[string]any{"slug": product.Slug, "site": site.Slug})
	flashSuccess(w, r, h.renderer, adminProductsPath, "Product deleted")
}
