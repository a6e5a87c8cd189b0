// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package repo provides a request-scoped, memoizing read layer over the
// store. A Repo is created per request and discarded with it; repeated reads
// of the same entity within one request hit the cache instead of the
// database. There is no cross-request caching and no invalidation.
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

// Querier is the read slice of store.Queries the frontend needs.
type Querier interface {
	GetSiteBySlug(ctx context.Context, slug string) (store.Site, error)
	GetSiteByDomain(ctx context.Context, domain string) (store.Site, error)
	GetNicheByID(ctx context.Context, id int64) (store.Niche, error)
	GetPublishedProductBySlug(ctx context.Context, arg store.GetProductBySlugParams) (store.Product, error)
	GetPublishedArticleBySlug(ctx context.Context, arg store.GetArticleBySlugParams) (store.Article, error)
	ListAffiliateLinksByProduct(ctx context.Context, productID int64) ([]store.AffiliateLink, error)
	ListRelatedProducts(ctx context.Context, arg store.ListRelatedProductsParams) ([]store.Product, error)
	ListArticlesFeaturingProduct(ctx context.Context, arg store.ListArticlesFeaturingProductParams) ([]store.Article, error)
	ListProductsBySlugs(ctx context.Context, arg store.ListProductsBySlugsParams) ([]store.Product, error)
	ListProductsByCategorySlug(ctx context.Context, arg store.ListProductsByCategorySlugParams) ([]store.Product, error)
	ListPublishedProductsBySite(ctx context.Context, siteID int64, limit int64) ([]store.Product, error)
	ListPublishedArticlesBySite(ctx context.Context, siteID int64, limit int64) ([]store.Article, error)
	ListActiveCategoriesBySite(ctx context.Context, siteID int64) ([]store.Category, error)
	GetPrimaryCategoryByProduct(ctx context.Context, productID int64) (store.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (store.Category, error)
	GetCategoryBySlug(ctx context.Context, arg store.GetCategoryBySlugParams) (store.Category, error)
}

type result struct {
	val any
	err error
}

// Repo memoizes Querier reads for the lifetime of one request. Safe for use
// from the concurrent sibling fetches a page build issues.
type Repo struct {
	q     Querier
	mu    sync.Mutex
	cache map[string]result
}

// New builds a Repo for one request.
func New(q Querier) *Repo {
	return &Repo{q: q, cache: make(map[string]result)}
}

// cached runs fn once per key and replays the stored result, error included,
// on later calls. The lock is not held across fn, so two goroutines racing on
// the same cold key may both query; the cache is about avoiding repeats, not
// about single-flight.
func cached[T any](r *Repo, key string, fn func() (T, error)) (T, error) {
	r.mu.Lock()
	if res, ok := r.cache[key]; ok {
		r.mu.Unlock()
		v, _ := res.val.(T)
		return v, res.err
	}
	r.mu.Unlock()

	v, err := fn()
	r.mu.Lock()
	r.cache[key] = result{val: v, err: err}
	r.mu.Unlock()
	return v, err
}

// SiteBySlug fetches a site by slug.
func (r *Repo) SiteBySlug(ctx context.Context, slug string) (store.Site, error) {
	return cached(r, "SiteBySlug:"+slug, func() (store.Site, error) {
		return r.q.GetSiteBySlug(ctx, slug)
	})
}

// SiteByDomain fetches an active site by its mapped domain.
func (r *Repo) SiteByDomain(ctx context.Context, domain string) (store.Site, error) {
	return cached(r, "SiteByDomain:"+domain, func() (store.Site, error) {
		return r.q.GetSiteByDomain(ctx, domain)
	})
}

// NicheByID fetches a niche.
func (r *Repo) NicheByID(ctx context.Context, id int64) (store.Niche, error) {
	return cached(r, fmt.Sprintf("NicheByID:%d", id), func() (store.Niche, error) {
		return r.q.GetNicheByID(ctx, id)
	})
}

// ProductBySlug fetches a published product by (site, slug).
func (r *Repo) ProductBySlug(ctx context.Context, siteID int64, slug string) (store.Product, error) {
	return cached(r, fmt.Sprintf("ProductBySlug:%d:%s", siteID, slug), func() (store.Product, error) {
		return r.q.GetPublishedProductBySlug(ctx, store.GetProductBySlugParams{SiteID: siteID, Slug: slug})
	})
}

// ArticleBySlug fetches a published article by (site, slug).
func (r *Repo) ArticleBySlug(ctx context.Context, siteID int64, slug string) (store.Article, error) {
	return cached(r, fmt.Sprintf("ArticleBySlug:%d:%s", siteID, slug), func() (store.Article, error) {
		return r.q.GetPublishedArticleBySlug(ctx, store.GetArticleBySlugParams{SiteID: siteID, Slug: slug})
	})
}

// AffiliateLinks returns a product's affiliate links, primary first.
func (r *Repo) AffiliateLinks(ctx context.Context, productID int64) ([]store.AffiliateLink, error) {
	return cached(r, fmt.Sprintf("AffiliateLinks:%d", productID), func() ([]store.AffiliateLink, error) {
		return r.q.ListAffiliateLinksByProduct(ctx, productID)
	})
}

// RelatedProducts returns published products sharing a category with the
// given product.
func (r *Repo) RelatedProducts(ctx context.Context, siteID, productID, limit int64) ([]store.Product, error) {
	key := fmt.Sprintf("RelatedProducts:%d:%d:%d", siteID, productID, limit)
	return cached(r, key, func() ([]store.Product, error) {
		return r.q.ListRelatedProducts(ctx, store.ListRelatedProductsParams{
			SiteID: siteID, ProductID: productID, Limit: limit,
		})
	})
}

// ArticlesFeaturingProduct returns published articles that link the product.
func (r *Repo) ArticlesFeaturingProduct(ctx context.Context, productID, limit int64) ([]store.Article, error) {
	key := fmt.Sprintf("ArticlesFeaturingProduct:%d:%d", productID, limit)
	return cached(r, key, func() ([]store.Article, error) {
		return r.q.ListArticlesFeaturingProduct(ctx, store.ListArticlesFeaturingProductParams{
			ProductID: productID, Limit: limit,
		})
	})
}

// ProductsByCategory returns published products in a category, best rated
// first.
func (r *Repo) ProductsByCategory(ctx context.Context, siteID int64, categorySlug string, limit int64) ([]store.Product, error) {
	key := fmt.Sprintf("ProductsByCategory:%d:%s:%d", siteID, categorySlug, limit)
	return cached(r, key, func() ([]store.Product, error) {
		return r.q.ListProductsByCategorySlug(ctx, store.ListProductsByCategorySlugParams{
			SiteID: siteID, CategorySlug: categorySlug, Limit: limit,
		})
	})
}

// LatestProducts returns a site's most recently published products.
func (r *Repo) LatestProducts(ctx context.Context, siteID, limit int64) ([]store.Product, error) {
	return cached(r, fmt.Sprintf("LatestProducts:%d:%d", siteID, limit), func() ([]store.Product, error) {
		return r.q.ListPublishedProductsBySite(ctx, siteID, limit)
	})
}

// LatestArticles returns a site's most recently published articles.
func (r *Repo) LatestArticles(ctx context.Context, siteID, limit int64) ([]store.Article, error) {
	return cached(r, fmt.Sprintf("LatestArticles:%d:%d", siteID, limit), func() ([]store.Article, error) {
		return r.q.ListPublishedArticlesBySite(ctx, siteID, limit)
	})
}

// Categories returns a site's active product categories.
func (r *Repo) Categories(ctx context.Context, siteID int64) ([]store.Category, error) {
	return cached(r, fmt.Sprintf("Categories:%d", siteID), func() ([]store.Category, error) {
		return r.q.ListActiveCategoriesBySite(ctx, siteID)
	})
}

// CategoryBySlug fetches one product category by (site, slug).
func (r *Repo) CategoryBySlug(ctx context.Context, siteID int64, slug string) (store.Category, error) {
	return cached(r, fmt.Sprintf("CategoryBySlug:%d:%s", siteID, slug), func() (store.Category, error) {
		return r.q.GetCategoryBySlug(ctx, store.GetCategoryBySlugParams{SiteID: siteID, Slug: slug})
	})
}

// PrimaryCategory returns a product's primary category, or sql.ErrNoRows when
// the product has none.
func (r *Repo) PrimaryCategory(ctx context.Context, productID int64) (store.Category, error) {
	return cached(r, fmt.Sprintf("PrimaryCategory:%d", productID), func() (store.Category, error) {
		return r.q.GetPrimaryCategoryByProduct(ctx, productID)
	})
}

// ProductLookup prefetches the published products for a set of slugs in one
// query and returns them keyed by slug. Slugs that resolve to nothing are
// simply absent from the map.
func (r *Repo) ProductLookup(ctx context.Context, siteID int64, slugs []string) (map[string]store.Product, error) {
	if len(slugs) == 0 {
		return map[string]store.Product{}, nil
	}
	sorted := make([]string, len(slugs))
	copy(sorted, slugs)
	sort.Strings(sorted)
	key := fmt.Sprintf("ProductLookup:%d:%s", siteID, strings.Join(sorted, ","))

	return cached(r, key, func() (map[string]store.Product, error) {
		products, err := r.q.ListProductsBySlugs(ctx, store.ListProductsBySlugsParams{
			SiteID: siteID, Slugs: sorted,
		})
		if err != nil {
			return nil, err
		}
		lookup := make(map[string]store.Product, len(products))
		for _, p := range products {
			lookup[p.Slug] = p
		}
		return lookup, nil
	})
}

// maxBreadcrumbDepth bounds the parent walk so a corrupted parent cycle
// cannot loop forever.
const maxBreadcrumbDepth = 16

// CategoryBreadcrumb walks a category's parent chain upward and returns the
// trail ordered root first. The walk stops at a null parent, and also when a
// parent belongs to a different site, so a miswired parent ID can never leak
// another tenant's taxonomy into the trail.
func (r *Repo) CategoryBreadcrumb(ctx context.Context, siteID, categoryID int64) ([]store.Category, error) {
	key := fmt.Sprintf("CategoryBreadcrumb:%d:%d", siteID, categoryID)
	return cached(r, key, func() ([]store.Category, error) {
		var trail []store.Category
		id := categoryID
		for depth := 0; depth < maxBreadcrumbDepth; depth++ {
			cat, err := r.q.GetCategoryByID(ctx, id)
			if errors.Is(err, sql.ErrNoRows) {
				break
			}
			if err != nil {
				return nil, err
			}
			if cat.SiteID != siteID {
				break
			}
			trail = append(trail, cat)
			if !cat.ParentID.Valid {
				break
			}
			id = cat.ParentID.Int64
		}

		// Reverse so the root comes first.
		for i, j := 0, len(trail)-1; i < j; i, j = i+1, j-1 {
			trail[i], trail[j] = trail[j], trail[i]
		}
		return trail, nil
	})
}
