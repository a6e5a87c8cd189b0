// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const categoryColumns = `id, site_id, parent_id, name, slug, description, sort_order,
	active, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.SiteID, &c.ParentID, &c.Name, &c.Slug, &c.Description,
		&c.SortOrder, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanArticleCategory(row interface{ Scan(...any) error }) (ArticleCategory, error) {
	var c ArticleCategory
	err := row.Scan(&c.ID, &c.SiteID, &c.ParentID, &c.Name, &c.Slug, &c.Description,
		&c.SortOrder, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// GetCategoryByID fetches a product category by primary key.
func (q *Queries) GetCategoryByID(ctx context.Context, id int64) (Category, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	return scanCategory(row)
}

// GetCategoryBySlugParams identifies a category within one site.
type GetCategoryBySlugParams struct {
	SiteID int64
	Slug   string
}

// GetCategoryBySlug fetches a product category by (site, slug).
func (q *Queries) GetCategoryBySlug(ctx context.Context, arg GetCategoryBySlugParams) (Category, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE site_id = ? AND slug = ?`,
		arg.SiteID, arg.Slug)
	return scanCategory(row)
}

// ListCategoriesBySite returns all product categories of a site in tree-friendly
// order (sort order, then name).
func (q *Queries) ListCategoriesBySite(ctx context.Context, siteID int64) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE site_id = ?
		 ORDER BY sort_order, name`, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListActiveCategoriesBySite returns the active product categories of a site.
func (q *Queries) ListActiveCategoriesBySite(ctx context.Context, siteID int64) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE site_id = ? AND active = 1
		 ORDER BY sort_order, name`, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateCategoryParams holds the fields for CreateCategory.
type CreateCategoryParams struct {
	SiteID      int64
	ParentID    *int64
	Name        string
	Slug        string
	Description string
	SortOrder   int64
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateCategory inserts a new product category and returns the created row.
func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO categories (site_id, parent_id, name, slug, description, sort_order,
			active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.SiteID, arg.ParentID, arg.Name, arg.Slug, arg.Description, arg.SortOrder,
		arg.Active, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Category{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Category{}, err
	}
	return q.GetCategoryByID(ctx, id)
}

// UpdateCategoryParams holds the fields for UpdateCategory.
type UpdateCategoryParams struct {
	ID          int64
	ParentID    *int64
	Name        string
	Slug        string
	Description string
	SortOrder   int64
	Active      bool
	UpdatedAt   time.Time
}

// UpdateCategory updates an existing product category.
func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE categories SET parent_id = ?, name = ?, slug = ?, description = ?,
			sort_order = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		arg.ParentID, arg.Name, arg.Slug, arg.Description, arg.SortOrder, arg.Active,
		arg.UpdatedAt, arg.ID)
	return err
}

// DeleteCategory removes a product category. Children are re-parented to NULL
// by the schema's ON DELETE SET NULL.
func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	return err
}

// GetArticleCategoryByID fetches an article category by primary key.
func (q *Queries) GetArticleCategoryByID(ctx context.Context, id int64) (ArticleCategory, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM article_categories WHERE id = ?`, id)
	return scanArticleCategory(row)
}

// GetArticleCategoryBySlug fetches an article category by (site, slug).
func (q *Queries) GetArticleCategoryBySlug(ctx context.Context, arg GetCategoryBySlugParams) (ArticleCategory, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM article_categories WHERE site_id = ? AND slug = ?`,
		arg.SiteID, arg.Slug)
	return scanArticleCategory(row)
}

// ListArticleCategoriesBySite returns all article categories of a site.
func (q *Queries) ListArticleCategoriesBySite(ctx context.Context, siteID int64) ([]ArticleCategory, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM article_categories WHERE site_id = ?
		 ORDER BY sort_order, name`, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []ArticleCategory
	for rows.Next() {
		c, err := scanArticleCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateArticleCategory inserts a new article category and returns the created row.
func (q *Queries) CreateArticleCategory(ctx context.Context, arg CreateCategoryParams) (ArticleCategory, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO article_categories (site_id, parent_id, name, slug, description,
			sort_order, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.SiteID, arg.ParentID, arg.Name, arg.Slug, arg.Description, arg.SortOrder,
		arg.Active, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return ArticleCategory{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ArticleCategory{}, err
	}
	return q.GetArticleCategoryByID(ctx, id)
}

// UpdateArticleCategory updates an existing article category.
func (q *Queries) UpdateArticleCategory(ctx context.Context, arg UpdateCategoryParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE article_categories SET parent_id = ?, name = ?, slug = ?, description = ?,
			sort_order = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		arg.ParentID, arg.Name, arg.Slug, arg.Description, arg.SortOrder, arg.Active,
		arg.UpdatedAt, arg.ID)
	return err
}

// DeleteArticleCategory removes an article category.
func (q *Queries) DeleteArticleCategory(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM article_categories WHERE id = ?`, id)
	return err
}
