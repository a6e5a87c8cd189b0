// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/testutil"
)

func TestProductSlugUniquePerSite(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	queries := store.New(db)

	siteA := testutil.SeedSite(t, db, "site-a", "a.test")
	siteB := testutil.SeedSite(t, db, "site-b", "b.test")

	testutil.SeedProduct(t, db, siteA.ID, "nimbus", "Nimbus A")

	// Same slug on another site is fine.
	testutil.SeedProduct(t, db, siteB.ID, "nimbus", "Nimbus B")

	// Duplicate within one site is rejected.
	now := time.Now()
	_, err := queries.CreateProduct(ctx, store.CreateProductParams{
		SiteID: siteA.ID, Slug: "nimbus", Name: "Dup", Status: "draft",
		Metadata: "{}", CreatedAt: now, UpdatedAt: now,
	})
	assert.Error(t, err)
}

func TestPublishedProductLookup(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	queries := store.New(db)
	site := testutil.SeedSite(t, db, "demo", "demo.test")

	testutil.SeedProduct(t, db, site.ID, "live", "Live")

	now := time.Now()
	_, err := queries.CreateProduct(ctx, store.CreateProductParams{
		SiteID: site.ID, Slug: "hidden", Name: "Hidden", Status: "draft",
		Metadata: "{}", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	_, err = queries.GetPublishedProductBySlug(ctx, store.GetProductBySlugParams{SiteID: site.ID, Slug: "live"})
	assert.NoError(t, err)

	_, err = queries.GetPublishedProductBySlug(ctx, store.GetProductBySlugParams{SiteID: site.ID, Slug: "hidden"})
	assert.Error(t, err, "drafts must not resolve on the frontend")
}

func TestListProductsBySlugs(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	queries := store.New(db)
	site := testutil.SeedSite(t, db, "demo", "demo.test")

	testutil.SeedProduct(t, db, site.ID, "one", "One")
	testutil.SeedProduct(t, db, site.ID, "two", "Two")

	products, err := queries.ListProductsBySlugs(ctx, store.ListProductsBySlugsParams{
		SiteID: site.ID,
		Slugs:  []string{"one", "two", "missing"},
	})
	require.NoError(t, err)
	assert.Len(t, products, 2, "absent slugs are simply not returned")

	products, err = queries.ListProductsBySlugs(ctx, store.ListProductsBySlugsParams{SiteID: site.ID})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestAffiliateLinkSinglePrimary(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	queries := store.New(db)
	site := testutil.SeedSite(t, db, "demo", "demo.test")
	product := testutil.SeedProduct(t, db, site.ID, "nimbus", "Nimbus")

	now := time.Now()
	require.NoError(t, queries.CreateAffiliateLink(ctx, store.CreateAffiliateLinkParams{
		ProductID: product.ID, Label: "Amazon", URL: "https://a.test", IsPrimary: true, CreatedAt: now,
	}))
	require.NoError(t, queries.CreateAffiliateLink(ctx, store.CreateAffiliateLinkParams{
		ProductID: product.ID, Label: "Direct", URL: "https://b.test", IsPrimary: true, SortOrder: 1, CreatedAt: now,
	}))

	links, err := queries.ListAffiliateLinksByProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)

	var primaries int
	for _, l := range links {
		if l.IsPrimary {
			primaries++
		}
	}
	assert.Equal(t, 1, primaries, "a later primary clears the earlier one")
	assert.True(t, links[0].IsPrimary, "primary sorts first")
	assert.Equal(t, "Direct", links[0].Label)
}

func TestSetProductCategories(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	queries := store.New(db)
	site := testutil.SeedSite(t, db, "demo", "demo.test")
	product := testutil.SeedProduct(t, db, site.ID, "nimbus", "Nimbus")

	now := time.Now()
	catA, err := queries.CreateCategory(ctx, store.CreateCategoryParams{
		SiteID: site.ID, Name: "Headsets", Slug: "headsets", Active: true,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	catB, err := queries.CreateCategory(ctx, store.CreateCategoryParams{
		SiteID: site.ID, Name: "Wireless", Slug: "wireless", Active: true,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	require.NoError(t, queries.SetProductCategories(ctx, store.SetProductCategoriesParams{
		ProductID:   product.ID,
		CategoryIDs: []int64{catA.ID, catB.ID},
		PrimaryID:   catB.ID,
	}))

	ids, primary, err := queries.ListCategoryIDsByProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Equal(t, catB.ID, primary)

	got, err := queries.GetPrimaryCategoryByProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, catB.ID, got.ID)

	// Replace-on-save semantics.
	require.NoError(t, queries.SetProductCategories(ctx, store.SetProductCategoriesParams{
		ProductID:   product.ID,
		CategoryIDs: []int64{catA.ID},
		PrimaryID:   catA.ID,
	}))
	ids, primary, err = queries.ListCategoryIDsByProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{catA.ID}, ids)
	assert.Equal(t, catA.ID, primary)
}

func TestRelatedProductsShareCategory(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	queries := store.New(db)
	site := testutil.SeedSite(t, db, "demo", "demo.test")

	a := testutil.SeedProduct(t, db, site.ID, "a", "A")
	b := testutil.SeedProduct(t, db, site.ID, "b", "B")
	c := testutil.SeedProduct(t, db, site.ID, "c", "C")

	now := time.Now()
	cat, err := queries.CreateCategory(ctx, store.CreateCategoryParams{
		SiteID: site.ID, Name: "Shared", Slug: "shared", Active: true,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	for _, p := range []store.Product{a, b} {
		require.NoError(t, queries.SetProductCategories(ctx, store.SetProductCategoriesParams{
			ProductID: p.ID, CategoryIDs: []int64{cat.ID},
		}))
	}

	related, err := queries.ListRelatedProducts(ctx, store.ListRelatedProductsParams{
		SiteID: site.ID, ProductID: a.ID, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, b.ID, related[0].ID)

	// c shares nothing and never appears.
	related, err = queries.ListRelatedProducts(ctx, store.ListRelatedProductsParams{
		SiteID: site.ID, ProductID: c.ID, Limit: 10,
	})
	require.NoError(t, err)
	assert.Empty(t, related)
}

func TestSeedIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	queries := store.New(db)

	require.NoError(t, store.Seed(ctx, db, true))
	require.NoError(t, store.Seed(ctx, db, true), "seeding twice must be a no-op")

	admins, err := queries.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), admins)

	site, err := queries.GetSiteBySlug(ctx, "demo-gaming")
	require.NoError(t, err)

	count, err := queries.CountProductsBySite(ctx, site.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
