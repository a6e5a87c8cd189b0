// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package page assembles the per-request context a page's sections render
// from. The context is built once, read-only afterwards, and shared by every
// section renderer on the page.
package page

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/content"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/model"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/repo"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

// Default fetch sizes for decorative page data.
const (
	relatedLimit   = 4
	featuredLimit  = 3
	linkTargetsMax = 100
)

// Breadcrumb is one trail entry.
type Breadcrumb struct {
	Label string
	URL   string
}

// Context is the immutable per-request aggregate shared by all section
// renderers. Decorative fields may be empty when their reads failed; only
// the primary entity is mandatory.
type Context struct {
	Site  store.Site
	Niche store.Niche

	Product *store.Product
	Article *store.Article
	Meta    model.Metadata

	PriceDisplay  string
	RatingDisplay string
	Rating        model.Rating

	Breadcrumbs      []Breadcrumb
	AffiliateLinks   []store.AffiliateLink
	Related          []store.Product
	FeaturedArticles []store.Article
	Gallery          []string

	Lookup content.Lookup
	Blocks []content.Block
}

// ProductURL returns the public path of a product page.
func ProductURL(slug string) string { return "/products/" + slug }

// ArticleURL returns the public path of an article page.
func ArticleURL(slug string) string { return "/articles/" + slug }

// CategoryURL returns the public path of a category listing.
func CategoryURL(slug string) string { return "/category/" + slug }

// ProductPrice builds the display price from a product row.
func ProductPrice(p store.Product) model.Price {
	price := model.Price{Currency: p.PriceCurrency, Text: p.PriceText}
	if p.PriceAmount.Valid {
		v := p.PriceAmount.Float64
		price.Amount = &v
	}
	if p.PriceMax.Valid {
		v := p.PriceMax.Float64
		price.Max = &v
	}
	return price
}

// ProductRating builds the review aggregate from a product row.
func ProductRating(p store.Product) model.Rating {
	rating := model.Rating{Count: p.ReviewCount}
	if p.Rating.Valid {
		v := p.Rating.Float64
		rating.Value = &v
	}
	return rating
}

// Builder assembles page contexts from the request-scoped repo.
type Builder struct {
	repo     *repo.Repo
	renderer *content.Renderer
	autoLink bool
}

// NewBuilder returns a Builder. autoLink controls whether link targets are
// gathered for the prose auto-linking pass.
func NewBuilder(r *repo.Repo, renderer *content.Renderer, autoLink bool) *Builder {
	return &Builder{repo: r, renderer: renderer, autoLink: autoLink}
}

// BuildProduct assembles the context for a product page. The product read is
// mandatory; everything else is decorative and fetched concurrently, a
// failure there logs and leaves the field empty.
func (b *Builder) BuildProduct(ctx context.Context, site store.Site, slug string) (*Context, error) {
	product, err := b.repo.ProductBySlug(ctx, site.ID, slug)
	if err != nil {
		return nil, err
	}
	niche, err := b.repo.NicheByID(ctx, site.NicheID)
	if err != nil {
		return nil, err
	}

	meta := model.ParseMetadata(product.Metadata)
	rating := ProductRating(product)
	pc := &Context{
		Site:          site,
		Niche:         niche,
		Product:       &product,
		Meta:          meta,
		PriceDisplay:  ProductPrice(product).Display(),
		RatingDisplay: rating.Display(),
		Rating:        rating,
		Gallery:       meta.StringSlice("gallery"),
	}

	var targets []content.LinkTarget
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		links, err := b.repo.AffiliateLinks(gctx, product.ID)
		if err != nil {
			slog.Warn("fetching affiliate links", "product", product.Slug, "error", err)
			return nil
		}
		pc.AffiliateLinks = links
		return nil
	})
	g.Go(func() error {
		related, err := b.repo.RelatedProducts(gctx, site.ID, product.ID, relatedLimit)
		if err != nil {
			slog.Warn("fetching related products", "product", product.Slug, "error", err)
			return nil
		}
		pc.Related = related
		return nil
	})
	g.Go(func() error {
		articles, err := b.repo.ArticlesFeaturingProduct(gctx, product.ID, featuredLimit)
		if err != nil {
			slog.Warn("fetching featuring articles", "product", product.Slug, "error", err)
			return nil
		}
		pc.FeaturedArticles = articles
		return nil
	})
	g.Go(func() error {
		pc.Breadcrumbs = b.productBreadcrumbs(gctx, site, product)
		return nil
	})
	g.Go(func() error {
		pc.Lookup = b.prefetchLookup(gctx, site.ID, product.Body)
		return nil
	})
	if b.autoLink {
		g.Go(func() error {
			targets = b.linkTargets(gctx, site.ID, product.Slug)
			return nil
		})
	}
	_ = g.Wait()

	blocks, err := b.renderer.Render(product.Body, model.BodyFormatHTML, targets, pc.Lookup)
	if err != nil {
		return nil, err
	}
	pc.Blocks = blocks
	return pc, nil
}

// BuildArticle assembles the context for an article page.
func (b *Builder) BuildArticle(ctx context.Context, site store.Site, slug string) (*Context, error) {
	article, err := b.repo.ArticleBySlug(ctx, site.ID, slug)
	if err != nil {
		return nil, err
	}
	niche, err := b.repo.NicheByID(ctx, site.NicheID)
	if err != nil {
		return nil, err
	}

	pc := &Context{
		Site:    site,
		Niche:   niche,
		Article: &article,
		Breadcrumbs: []Breadcrumb{
			{Label: "Home", URL: "/"},
			{Label: article.Title, URL: ArticleURL(article.Slug)},
		},
	}

	var targets []content.LinkTarget
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		pc.Lookup = b.prefetchLookup(gctx, site.ID, article.Body)
		return nil
	})
	g.Go(func() error {
		articles, err := b.repo.LatestArticles(gctx, site.ID, featuredLimit+1)
		if err != nil {
			slog.Warn("fetching latest articles", "article", article.Slug, "error", err)
			return nil
		}
		// The page itself does not belong in its own featured list.
		for _, a := range articles {
			if a.ID != article.ID && len(pc.FeaturedArticles) < featuredLimit {
				pc.FeaturedArticles = append(pc.FeaturedArticles, a)
			}
		}
		return nil
	})
	if b.autoLink {
		g.Go(func() error {
			targets = b.linkTargets(gctx, site.ID, "")
			return nil
		})
	}
	_ = g.Wait()

	blocks, err := b.renderer.Render(article.Body, article.BodyFormat, targets, pc.Lookup)
	if err != nil {
		return nil, err
	}
	pc.Blocks = blocks
	return pc, nil
}

// productBreadcrumbs builds Home → category trail → product.
func (b *Builder) productBreadcrumbs(ctx context.Context, site store.Site, product store.Product) []Breadcrumb {
	trail := []Breadcrumb{{Label: "Home", URL: "/"}}

	primary, err := b.repo.PrimaryCategory(ctx, product.ID)
	if err == nil {
		chain, err := b.repo.CategoryBreadcrumb(ctx, site.ID, primary.ID)
		if err != nil {
			slog.Warn("building category breadcrumb", "product", product.Slug, "error", err)
		}
		for _, cat := range chain {
			trail = append(trail, Breadcrumb{Label: cat.Name, URL: CategoryURL(cat.Slug)})
		}
	}

	return append(trail, Breadcrumb{Label: product.Name, URL: ProductURL(product.Slug)})
}

// prefetchLookup resolves every shortcode reference in a body with one query
// per reference kind. A failed prefetch logs and yields an empty lookup; the
// affected shortcodes then render placeholders.
func (b *Builder) prefetchLookup(ctx context.Context, siteID int64, body string) content.Lookup {
	refs := content.ExtractRefs(body)
	lookup := content.Lookup{
		Products: map[string]store.Product{},
		Grids:    map[string][]store.Product{},
	}

	if len(refs.ProductSlugs) > 0 {
		products, err := b.repo.ProductLookup(ctx, siteID, refs.ProductSlugs)
		if err != nil {
			slog.Warn("prefetching shortcode products", "error", err)
		} else {
			lookup.Products = products
		}
	}
	for _, grid := range refs.Grids {
		products, err := b.repo.ProductsByCategory(ctx, siteID, grid.Category, grid.Limit)
		if err != nil {
			slog.Warn("prefetching shortcode grid", "category", grid.Category, "error", err)
			continue
		}
		lookup.Grids[content.GridKey(grid)] = products
	}
	return lookup
}

// linkTargets gathers the known product and category names the auto-linker
// may wrap, excluding the page's own product.
func (b *Builder) linkTargets(ctx context.Context, siteID int64, excludeSlug string) []content.LinkTarget {
	var targets []content.LinkTarget

	products, err := b.repo.LatestProducts(ctx, siteID, linkTargetsMax)
	if err != nil {
		slog.Warn("fetching auto-link products", "error", err)
	}
	for _, p := range products {
		if p.Slug == excludeSlug {
			continue
		}
		targets = append(targets, content.LinkTarget{Name: p.Name, URL: ProductURL(p.Slug)})
	}

	categories, err := b.repo.Categories(ctx, siteID)
	if err != nil {
		slog.Warn("fetching auto-link categories", "error", err)
	}
	for _, c := range categories {
		targets = append(targets, content.LinkTarget{Name: c.Name, URL: CategoryURL(c.Slug)})
	}
	return targets
}
