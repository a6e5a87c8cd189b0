// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package page

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/content"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/repo"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

// fakeQuerier serves canned rows and lets individual reads be failed to
// exercise the decorative-read fallbacks.
type fakeQuerier struct {
	site     store.Site
	niche    store.Niche
	products map[string]store.Product
	articles map[string]store.Article
	links    []store.AffiliateLink
	related  []store.Product
	featured []store.Article
	latest   []store.Product
	latestAr []store.Article
	cats     []store.Category
	primary  map[int64]store.Category

	failLinks   bool
	failRelated bool
}

func (f *fakeQuerier) GetSiteBySlug(_ context.Context, slug string) (store.Site, error) {
	if f.site.Slug == slug {
		return f.site, nil
	}
	return store.Site{}, sql.ErrNoRows
}

func (f *fakeQuerier) GetSiteByDomain(_ context.Context, domain string) (store.Site, error) {
	if f.site.Domain == domain {
		return f.site, nil
	}
	return store.Site{}, sql.ErrNoRows
}

func (f *fakeQuerier) GetNicheByID(_ context.Context, id int64) (store.Niche, error) {
	if f.niche.ID == id {
		return f.niche, nil
	}
	return store.Niche{}, sql.ErrNoRows
}

func (f *fakeQuerier) GetPublishedProductBySlug(_ context.Context, arg store.GetProductBySlugParams) (store.Product, error) {
	if p, ok := f.products[arg.Slug]; ok {
		return p, nil
	}
	return store.Product{}, sql.ErrNoRows
}

func (f *fakeQuerier) GetPublishedArticleBySlug(_ context.Context, arg store.GetArticleBySlugParams) (store.Article, error) {
	if a, ok := f.articles[arg.Slug]; ok {
		return a, nil
	}
	return store.Article{}, sql.ErrNoRows
}

func (f *fakeQuerier) ListAffiliateLinksByProduct(context.Context, int64) ([]store.AffiliateLink, error) {
	if f.failLinks {
		return nil, errors.New("links table on fire")
	}
	return f.links, nil
}

func (f *fakeQuerier) ListRelatedProducts(context.Context, store.ListRelatedProductsParams) ([]store.Product, error) {
	if f.failRelated {
		return nil, errors.New("related query failed")
	}
	return f.related, nil
}

func (f *fakeQuerier) ListArticlesFeaturingProduct(context.Context, store.ListArticlesFeaturingProductParams) ([]store.Article, error) {
	return f.featured, nil
}

func (f *fakeQuerier) ListProductsBySlugs(_ context.Context, arg store.ListProductsBySlugsParams) ([]store.Product, error) {
	var out []store.Product
	for _, slug := range arg.Slugs {
		if p, ok := f.products[slug]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeQuerier) ListProductsByCategorySlug(context.Context, store.ListProductsByCategorySlugParams) ([]store.Product, error) {
	return f.latest, nil
}

func (f *fakeQuerier) ListPublishedProductsBySite(context.Context, int64, int64) ([]store.Product, error) {
	return f.latest, nil
}

func (f *fakeQuerier) ListPublishedArticlesBySite(context.Context, int64, int64) ([]store.Article, error) {
	return f.latestAr, nil
}

func (f *fakeQuerier) ListActiveCategoriesBySite(context.Context, int64) ([]store.Category, error) {
	return f.cats, nil
}

func (f *fakeQuerier) GetPrimaryCategoryByProduct(_ context.Context, productID int64) (store.Category, error) {
	if c, ok := f.primary[productID]; ok {
		return c, nil
	}
	return store.Category{}, sql.ErrNoRows
}

func (f *fakeQuerier) GetCategoryByID(_ context.Context, id int64) (store.Category, error) {
	for _, c := range f.cats {
		if c.ID == id {
			return c, nil
		}
	}
	return store.Category{}, sql.ErrNoRows
}

func (f *fakeQuerier) GetCategoryBySlug(_ context.Context, arg store.GetCategoryBySlugParams) (store.Category, error) {
	for _, c := range f.cats {
		if c.Slug == arg.Slug {
			return c, nil
		}
	}
	return store.Category{}, sql.ErrNoRows
}

func newFixture() *fakeQuerier {
	return &fakeQuerier{
		site:  store.Site{ID: 1, Slug: "demo", Domain: "demo.test", NicheID: 7},
		niche: store.Niche{ID: 7, Slug: "gaming"},
		products: map[string]store.Product{
			"nimbus": {
				ID: 10, SiteID: 1, Slug: "nimbus", Name: "Nimbus Pro",
				Body:     `<p>Check [product:aero] out</p>`,
				Metadata: `{"gallery":["a.jpg","b.jpg"]}`,
				Rating:   sql.NullFloat64{Float64: 4.5, Valid: true},
			},
			"aero": {ID: 11, SiteID: 1, Slug: "aero", Name: "Aero X"},
		},
		articles: map[string]store.Article{
			"best-headsets": {
				ID: 20, SiteID: 1, Slug: "best-headsets", Title: "Best Headsets",
				Body: "<p>Our picks.</p>", BodyFormat: "html",
			},
		},
		links: []store.AffiliateLink{{ID: 1, ProductID: 10, URL: "https://amzn.example/x", IsPrimary: true}},
		related: []store.Product{
			{ID: 12, SiteID: 1, Slug: "other", Name: "Other"},
		},
		featured: []store.Article{{ID: 20, Slug: "best-headsets", Title: "Best Headsets"}},
		cats: []store.Category{
			{ID: 2, SiteID: 1, Slug: "headsets", Name: "Headsets", ParentID: sql.NullInt64{Int64: 3, Valid: true}},
			{ID: 3, SiteID: 1, Slug: "audio", Name: "Audio"},
		},
		primary: map[int64]store.Category{10: {ID: 2, SiteID: 1, Slug: "headsets", Name: "Headsets", ParentID: sql.NullInt64{Int64: 3, Valid: true}}},
	}
}

func newBuilder(q repo.Querier) *Builder {
	return NewBuilder(repo.New(q), content.NewRenderer(false), false)
}

func TestBuildProduct(t *testing.T) {
	f := newFixture()
	pc, err := newBuilder(f).BuildProduct(context.Background(), f.site, "nimbus")
	require.NoError(t, err)

	require.NotNil(t, pc.Product)
	assert.Equal(t, "nimbus", pc.Product.Slug)
	assert.Equal(t, "gaming", pc.Niche.Slug)
	assert.Equal(t, "4.5/5", pc.RatingDisplay)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, pc.Gallery)
	assert.Len(t, pc.AffiliateLinks, 1)
	assert.Len(t, pc.Related, 1)
	assert.Len(t, pc.FeaturedArticles, 1)

	// Shortcode reference was prefetched and resolved into a product block.
	var found bool
	for _, b := range pc.Blocks {
		if b.Kind == content.KindProduct && b.Product.Slug == "aero" {
			found = true
		}
	}
	assert.True(t, found, "expected the [product:aero] shortcode resolved")
}

func TestBuildProductBreadcrumbs(t *testing.T) {
	f := newFixture()
	pc, err := newBuilder(f).BuildProduct(context.Background(), f.site, "nimbus")
	require.NoError(t, err)

	// Home → Audio → Headsets → product, root first.
	require.Len(t, pc.Breadcrumbs, 4)
	assert.Equal(t, "Home", pc.Breadcrumbs[0].Label)
	assert.Equal(t, "Audio", pc.Breadcrumbs[1].Label)
	assert.Equal(t, "Headsets", pc.Breadcrumbs[2].Label)
	assert.Equal(t, "Nimbus Pro", pc.Breadcrumbs[3].Label)
	assert.Equal(t, "/category/headsets", pc.Breadcrumbs[2].URL)
}

func TestBuildProductNotFound(t *testing.T) {
	f := newFixture()
	_, err := newBuilder(f).BuildProduct(context.Background(), f.site, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestBuildProductDecorativeFailures(t *testing.T) {
	f := newFixture()
	f.failLinks = true
	f.failRelated = true

	pc, err := newBuilder(f).BuildProduct(context.Background(), f.site, "nimbus")
	require.NoError(t, err, "decorative read failures must not fail the page")
	assert.Empty(t, pc.AffiliateLinks)
	assert.Empty(t, pc.Related)
	assert.NotNil(t, pc.Product)
	assert.NotEmpty(t, pc.Blocks)
}

func TestBuildArticle(t *testing.T) {
	f := newFixture()
	f.latestAr = []store.Article{
		{ID: 20, Slug: "best-headsets", Title: "Best Headsets"},
		{ID: 21, Slug: "budget-picks", Title: "Budget Picks"},
	}

	pc, err := newBuilder(f).BuildArticle(context.Background(), f.site, "best-headsets")
	require.NoError(t, err)

	require.NotNil(t, pc.Article)
	assert.Equal(t, "best-headsets", pc.Article.Slug)
	require.Len(t, pc.Breadcrumbs, 2)
	assert.Equal(t, "Home", pc.Breadcrumbs[0].Label)

	// The article never features itself.
	require.Len(t, pc.FeaturedArticles, 1)
	assert.Equal(t, "budget-picks", pc.FeaturedArticles[0].Slug)
}

func TestProductPriceAndRating(t *testing.T) {
	p := store.Product{
		PriceAmount:   sql.NullFloat64{Float64: 99.99, Valid: true},
		PriceCurrency: "USD",
		Rating:        sql.NullFloat64{Float64: 4.2, Valid: true},
		ReviewCount:   120,
	}

	price := ProductPrice(p)
	require.NotNil(t, price.Amount)
	assert.Equal(t, 99.99, *price.Amount)
	assert.Nil(t, price.Max)

	rating := ProductRating(p)
	require.NotNil(t, rating.Value)
	assert.Equal(t, 4.2, *rating.Value)
	assert.Equal(t, int64(120), rating.Count)
}

func TestPageURLs(t *testing.T) {
	assert.Equal(t, "/products/nimbus", ProductURL("nimbus"))
	assert.Equal(t, "/articles/best", ArticleURL("best"))
	assert.Equal(t, "/category/headsets", CategoryURL("headsets"))
}
