// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const articleColumns = `id, site_id, article_category_id, slug, title, excerpt, body,
	body_format, type, status, featured_image, created_at, updated_at, published_at`

func scanArticle(row interface{ Scan(...any) error }) (Article, error) {
	var a Article
	err := row.Scan(&a.ID, &a.SiteID, &a.ArticleCategoryID, &a.Slug, &a.Title, &a.Excerpt,
		&a.Body, &a.BodyFormat, &a.Type, &a.Status, &a.FeaturedImage, &a.CreatedAt,
		&a.UpdatedAt, &a.PublishedAt)
	return a, err
}

func collectArticles(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
	Close() error
}) ([]Article, error) {
	defer rows.Close()
	var articles []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// GetArticleByID fetches an article by primary key.
func (q *Queries) GetArticleByID(ctx context.Context, id int64) (Article, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	return scanArticle(row)
}

// GetArticleBySlugParams identifies an article within one site.
type GetArticleBySlugParams struct {
	SiteID int64
	Slug   string
}

// GetArticleBySlug fetches an article by (site, slug).
func (q *Queries) GetArticleBySlug(ctx context.Context, arg GetArticleBySlugParams) (Article, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE site_id = ? AND slug = ?`,
		arg.SiteID, arg.Slug)
	return scanArticle(row)
}

// GetPublishedArticleBySlug fetches a published article by (site, slug).
func (q *Queries) GetPublishedArticleBySlug(ctx context.Context, arg GetArticleBySlugParams) (Article, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles
		 WHERE site_id = ? AND slug = ? AND status = 'published'`,
		arg.SiteID, arg.Slug)
	return scanArticle(row)
}

// ListArticlesBySiteParams holds paging for ListArticlesBySite.
type ListArticlesBySiteParams struct {
	SiteID int64
	Limit  int64
	Offset int64
}

// ListArticlesBySite returns articles of a site for the admin list, newest first.
func (q *Queries) ListArticlesBySite(ctx context.Context, arg ListArticlesBySiteParams) ([]Article, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE site_id = ?
		 ORDER BY updated_at DESC LIMIT ? OFFSET ?`,
		arg.SiteID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return collectArticles(rows)
}

// CountArticlesBySite returns the number of articles belonging to a site.
func (q *Queries) CountArticlesBySite(ctx context.Context, siteID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE site_id = ?`, siteID).Scan(&count)
	return count, err
}

// ListPublishedArticlesBySite returns published articles of a site, newest first.
func (q *Queries) ListPublishedArticlesBySite(ctx context.Context, siteID int64, limit int64) ([]Article, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles
		 WHERE site_id = ? AND status = 'published'
		 ORDER BY published_at DESC LIMIT ?`,
		siteID, limit)
	if err != nil {
		return nil, err
	}
	return collectArticles(rows)
}

// ListArticlesFeaturingProductParams holds arguments for ListArticlesFeaturingProduct.
type ListArticlesFeaturingProductParams struct {
	ProductID int64
	Limit     int64
}

// ListArticlesFeaturingProduct returns published articles linked to a product
// through the article_products join, newest first.
func (q *Queries) ListArticlesFeaturingProduct(ctx context.Context, arg ListArticlesFeaturingProductParams) ([]Article, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+prefixedColumns("a", articleColumns)+`
		 FROM articles a
		 JOIN article_products ap ON ap.article_id = a.id
		 WHERE ap.product_id = ? AND a.status = 'published'
		 ORDER BY a.published_at DESC
		 LIMIT ?`,
		arg.ProductID, arg.Limit)
	if err != nil {
		return nil, err
	}
	return collectArticles(rows)
}

// ListProductsByArticle returns the products an article features, in sort order.
func (q *Queries) ListProductsByArticle(ctx context.Context, articleID int64) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+prefixedColumns("p", productColumns)+`
		 FROM products p
		 JOIN article_products ap ON ap.product_id = p.id
		 WHERE ap.article_id = ?
		 ORDER BY ap.sort_order, p.name`, articleID)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// SetArticleProductsParams holds arguments for SetArticleProducts.
type SetArticleProductsParams struct {
	ArticleID  int64
	ProductIDs []int64
}

// SetArticleProducts replaces the set of products an article features,
// preserving the given order.
func (q *Queries) SetArticleProducts(ctx context.Context, arg SetArticleProductsParams) error {
	if _, err := q.db.ExecContext(ctx,
		`DELETE FROM article_products WHERE article_id = ?`, arg.ArticleID); err != nil {
		return err
	}
	for i, productID := range arg.ProductIDs {
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO article_products (article_id, product_id, sort_order) VALUES (?, ?, ?)`,
			arg.ArticleID, productID, i); err != nil {
			return err
		}
	}
	return nil
}

// CreateArticleParams holds the fields for CreateArticle.
type CreateArticleParams struct {
	SiteID            int64
	ArticleCategoryID *int64
	Slug              string
	Title             string
	Excerpt           string
	Body              string
	BodyFormat        string
	Type              string
	Status            string
	FeaturedImage     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	PublishedAt       *time.Time
}

// CreateArticle inserts a new article and returns the created row.
func (q *Queries) CreateArticle(ctx context.Context, arg CreateArticleParams) (Article, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO articles (site_id, article_category_id, slug, title, excerpt, body,
			body_format, type, status, featured_image, created_at, updated_at, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.SiteID, arg.ArticleCategoryID, arg.Slug, arg.Title, arg.Excerpt, arg.Body,
		arg.BodyFormat, arg.Type, arg.Status, arg.FeaturedImage, arg.CreatedAt,
		arg.UpdatedAt, arg.PublishedAt)
	if err != nil {
		return Article{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Article{}, err
	}
	return q.GetArticleByID(ctx, id)
}

// UpdateArticleParams holds the fields for UpdateArticle.
type UpdateArticleParams struct {
	ID                int64
	ArticleCategoryID *int64
	Slug              string
	Title             string
	Excerpt           string
	Body              string
	BodyFormat        string
	Type              string
	Status            string
	FeaturedImage     string
	UpdatedAt         time.Time
	PublishedAt       *time.Time
}

// UpdateArticle updates an existing article.
func (q *Queries) UpdateArticle(ctx context.Context, arg UpdateArticleParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE articles SET article_category_id = ?, slug = ?, title = ?, excerpt = ?,
			body = ?, body_format = ?, type = ?, status = ?, featured_image = ?,
			updated_at = ?, published_at = ?
		WHERE id = ?`,
		arg.ArticleCategoryID, arg.Slug, arg.Title, arg.Excerpt, arg.Body, arg.BodyFormat,
		arg.Type, arg.Status, arg.FeaturedImage, arg.UpdatedAt, arg.PublishedAt, arg.ID)
	return err
}

// DeleteArticle removes an article.
func (q *Queries) DeleteArticle(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	return err
}
