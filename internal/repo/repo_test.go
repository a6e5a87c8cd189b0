// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package repo

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

// countingQuerier records how many times each underlying read runs.
type countingQuerier struct {
	calls      map[string]int
	sites      map[string]store.Site
	products   map[string]store.Product
	categories map[int64]store.Category
}

func newCountingQuerier() *countingQuerier {
	return &countingQuerier{
		calls:      make(map[string]int),
		sites:      make(map[string]store.Site),
		products:   make(map[string]store.Product),
		categories: make(map[int64]store.Category),
	}
}

func (c *countingQuerier) GetSiteBySlug(_ context.Context, slug string) (store.Site, error) {
	c.calls["GetSiteBySlug"]++
	if s, ok := c.sites[slug]; ok {
		return s, nil
	}
	return store.Site{}, sql.ErrNoRows
}

func (c *countingQuerier) GetSiteByDomain(_ context.Context, _ string) (store.Site, error) {
	c.calls["GetSiteByDomain"]++
	return store.Site{}, sql.ErrNoRows
}

func (c *countingQuerier) GetNicheByID(_ context.Context, id int64) (store.Niche, error) {
	c.calls["GetNicheByID"]++
	return store.Niche{ID: id}, nil
}

func (c *countingQuerier) GetPublishedProductBySlug(_ context.Context, arg store.GetProductBySlugParams) (store.Product, error) {
	c.calls["GetPublishedProductBySlug"]++
	if p, ok := c.products[arg.Slug]; ok && p.SiteID == arg.SiteID {
		return p, nil
	}
	return store.Product{}, sql.ErrNoRows
}

func (c *countingQuerier) GetPublishedArticleBySlug(_ context.Context, _ store.GetArticleBySlugParams) (store.Article, error) {
	c.calls["GetPublishedArticleBySlug"]++
	return store.Article{}, sql.ErrNoRows
}

func (c *countingQuerier) ListAffiliateLinksByProduct(_ context.Context, _ int64) ([]store.AffiliateLink, error) {
	c.calls["ListAffiliateLinksByProduct"]++
	return nil, nil
}

func (c *countingQuerier) ListRelatedProducts(_ context.Context, _ store.ListRelatedProductsParams) ([]store.Product, error) {
	c.calls["ListRelatedProducts"]++
	return nil, nil
}

func (c *countingQuerier) ListArticlesFeaturingProduct(_ context.Context, _ store.ListArticlesFeaturingProductParams) ([]store.Article, error) {
	c.calls["ListArticlesFeaturingProduct"]++
	return nil, nil
}

func (c *countingQuerier) ListProductsBySlugs(_ context.Context, arg store.ListProductsBySlugsParams) ([]store.Product, error) {
	c.calls["ListProductsBySlugs"]++
	var out []store.Product
	for _, slug := range arg.Slugs {
		if p, ok := c.products[slug]; ok && p.SiteID == arg.SiteID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *countingQuerier) ListProductsByCategorySlug(_ context.Context, _ store.ListProductsByCategorySlugParams) ([]store.Product, error) {
	c.calls["ListProductsByCategorySlug"]++
	return nil, nil
}

func (c *countingQuerier) ListPublishedProductsBySite(_ context.Context, _, _ int64) ([]store.Product, error) {
	c.calls["ListPublishedProductsBySite"]++
	return nil, nil
}

func (c *countingQuerier) ListPublishedArticlesBySite(_ context.Context, _, _ int64) ([]store.Article, error) {
	c.calls["ListPublishedArticlesBySite"]++
	return nil, nil
}

func (c *countingQuerier) ListActiveCategoriesBySite(_ context.Context, _ int64) ([]store.Category, error) {
	c.calls["ListActiveCategoriesBySite"]++
	return nil, nil
}

func (c *countingQuerier) GetPrimaryCategoryByProduct(_ context.Context, _ int64) (store.Category, error) {
	c.calls["GetPrimaryCategoryByProduct"]++
	return store.Category{}, sql.ErrNoRows
}

func (c *countingQuerier) GetCategoryByID(_ context.Context, id int64) (store.Category, error) {
	c.calls["GetCategoryByID"]++
	if cat, ok := c.categories[id]; ok {
		return cat, nil
	}
	return store.Category{}, sql.ErrNoRows
}

func (c *countingQuerier) GetCategoryBySlug(_ context.Context, _ store.GetCategoryBySlugParams) (store.Category, error) {
	c.calls["GetCategoryBySlug"]++
	return store.Category{}, sql.ErrNoRows
}

func parent(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: true}
}

func TestMemoizesRepeatedReads(t *testing.T) {
	q := newCountingQuerier()
	q.sites["demo-gaming"] = store.Site{ID: 1, Slug: "demo-gaming"}
	r := New(q)

	for i := 0; i < 3; i++ {
		site, err := r.SiteBySlug(context.Background(), "demo-gaming")
		require.NoError(t, err)
		assert.Equal(t, int64(1), site.ID)
	}

	assert.Equal(t, 1, q.calls["GetSiteBySlug"], "second and third calls must hit the cache")
}

func TestMemoizesErrors(t *testing.T) {
	q := newCountingQuerier()
	r := New(q)

	_, err := r.SiteBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = r.SiteBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.Equal(t, 1, q.calls["GetSiteBySlug"], "a not-found result is memoized too")
}

func TestDistinctArgsAreDistinctEntries(t *testing.T) {
	q := newCountingQuerier()
	q.sites["a"] = store.Site{ID: 1, Slug: "a"}
	q.sites["b"] = store.Site{ID: 2, Slug: "b"}
	r := New(q)

	_, err := r.SiteBySlug(context.Background(), "a")
	require.NoError(t, err)
	_, err = r.SiteBySlug(context.Background(), "b")
	require.NoError(t, err)

	assert.Equal(t, 2, q.calls["GetSiteBySlug"])
}

func TestProductLookup(t *testing.T) {
	q := newCountingQuerier()
	q.products["alpha"] = store.Product{ID: 1, SiteID: 1, Slug: "alpha"}
	q.products["beta"] = store.Product{ID: 2, SiteID: 1, Slug: "beta"}
	r := New(q)

	lookup, err := r.ProductLookup(context.Background(), 1, []string{"beta", "alpha", "missing"})
	require.NoError(t, err)
	assert.Len(t, lookup, 2)
	assert.Equal(t, int64(1), lookup["alpha"].ID)
	_, ok := lookup["missing"]
	assert.False(t, ok)

	// Same slugs in a different order hit the cache.
	_, err = r.ProductLookup(context.Background(), 1, []string{"missing", "alpha", "beta"})
	require.NoError(t, err)
	assert.Equal(t, 1, q.calls["ListProductsBySlugs"])

	// No slugs means no query at all.
	lookup, err = r.ProductLookup(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Empty(t, lookup)
	assert.Equal(t, 1, q.calls["ListProductsBySlugs"])
}

func TestCategoryBreadcrumb(t *testing.T) {
	q := newCountingQuerier()
	q.categories[1] = store.Category{ID: 1, SiteID: 1, Slug: "audio"}
	q.categories[2] = store.Category{ID: 2, SiteID: 1, Slug: "headsets", ParentID: parent(1)}
	q.categories[3] = store.Category{ID: 3, SiteID: 1, Slug: "wireless", ParentID: parent(2)}
	r := New(q)

	trail, err := r.CategoryBreadcrumb(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, trail, 3)
	assert.Equal(t, "audio", trail[0].Slug)
	assert.Equal(t, "headsets", trail[1].Slug)
	assert.Equal(t, "wireless", trail[2].Slug)
}

func TestCategoryBreadcrumbStopsOnSiteMismatch(t *testing.T) {
	q := newCountingQuerier()
	// Parent chain crosses into another site's taxonomy.
	q.categories[10] = store.Category{ID: 10, SiteID: 2, Slug: "other-tenant"}
	q.categories[11] = store.Category{ID: 11, SiteID: 1, Slug: "mine", ParentID: parent(10)}
	r := New(q)

	trail, err := r.CategoryBreadcrumb(context.Background(), 1, 11)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, "mine", trail[0].Slug)
}

func TestCategoryBreadcrumbBoundsCycles(t *testing.T) {
	q := newCountingQuerier()
	q.categories[1] = store.Category{ID: 1, SiteID: 1, Slug: "a", ParentID: parent(2)}
	q.categories[2] = store.Category{ID: 2, SiteID: 1, Slug: "b", ParentID: parent(1)}
	r := New(q)

	trail, err := r.CategoryBreadcrumb(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(trail), maxBreadcrumbDepth)
}

func TestCategoryBreadcrumbMissingCategory(t *testing.T) {
	r := New(newCountingQuerier())

	trail, err := r.CategoryBreadcrumb(context.Background(), 1, 99)
	require.NoError(t, err)
	assert.Empty(t, trail)
}
