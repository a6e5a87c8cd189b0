// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"strings"
	"time"
)

const productColumns = `id, site_id, slug, name, summary, body, status, price_amount,
	price_max, price_currency, price_text, rating, review_count, metadata,
	featured_image, created_at, updated_at, published_at`

func scanProduct(row interface{ Scan(...any) error }) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SiteID, &p.Slug, &p.Name, &p.Summary, &p.Body, &p.Status,
		&p.PriceAmount, &p.PriceMax, &p.PriceCurrency, &p.PriceText, &p.Rating,
		&p.ReviewCount, &p.Metadata, &p.FeaturedImage, &p.CreatedAt, &p.UpdatedAt,
		&p.PublishedAt)
	return p, err
}

func collectProducts(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
	Close() error
}) ([]Product, error) {
	defer rows.Close()
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProductByID fetches a product by primary key.
func (q *Queries) GetProductByID(ctx context.Context, id int64) (Product, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	return scanProduct(row)
}

// GetProductBySlugParams identifies a product within one site.
type GetProductBySlugParams struct {
	SiteID int64
	Slug   string
}

// GetProductBySlug fetches a product by (site, slug). Slugs are unique per
// site, not globally.
func (q *Queries) GetProductBySlug(ctx context.Context, arg GetProductBySlugParams) (Product, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE site_id = ? AND slug = ?`,
		arg.SiteID, arg.Slug)
	return scanProduct(row)
}

// GetPublishedProductBySlug fetches a published product by (site, slug).
func (q *Queries) GetPublishedProductBySlug(ctx context.Context, arg GetProductBySlugParams) (Product, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE site_id = ? AND slug = ? AND status = 'published'`,
		arg.SiteID, arg.Slug)
	return scanProduct(row)
}

// ListProductsBySiteParams holds paging for ListProductsBySite.
type ListProductsBySiteParams struct {
	SiteID int64
	Limit  int64
	Offset int64
}

// ListProductsBySite returns products of a site for the admin list, newest first.
func (q *Queries) ListProductsBySite(ctx context.Context, arg ListProductsBySiteParams) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE site_id = ?
		 ORDER BY updated_at DESC LIMIT ? OFFSET ?`,
		arg.SiteID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// CountProductsBySite returns the number of products belonging to a site.
func (q *Queries) CountProductsBySite(ctx context.Context, siteID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE site_id = ?`, siteID).Scan(&count)
	return count, err
}

// ListPublishedProductsBySite returns published products of a site, newest first.
func (q *Queries) ListPublishedProductsBySite(ctx context.Context, siteID int64, limit int64) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE site_id = ? AND status = 'published'
		 ORDER BY published_at DESC LIMIT ?`,
		siteID, limit)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// ListProductsByCategorySlugParams holds arguments for ListProductsByCategorySlug.
type ListProductsByCategorySlugParams struct {
	SiteID       int64
	CategorySlug string
	Limit        int64
}

// ListProductsByCategorySlug returns published products assigned to the named
// category of a site, used by the product-grid shortcode.
func (q *Queries) ListProductsByCategorySlug(ctx context.Context, arg ListProductsByCategorySlugParams) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+prefixedColumns("p", productColumns)+`
		 FROM products p
		 JOIN product_category pc ON pc.product_id = p.id
		 JOIN categories c ON c.id = pc.category_id
		 WHERE p.site_id = ? AND c.slug = ? AND p.status = 'published'
		 ORDER BY p.rating DESC, p.review_count DESC
		 LIMIT ?`,
		arg.SiteID, arg.CategorySlug, arg.Limit)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// ListProductsBySlugsParams holds arguments for ListProductsBySlugs.
type ListProductsBySlugsParams struct {
	SiteID int64
	Slugs  []string
}

// ListProductsBySlugs fetches the published products matching any of the given
// slugs in one query. Used to prefetch the shortcode lookup map; slugs absent
// from the result are rendered as placeholders, never errors.
func (q *Queries) ListProductsBySlugs(ctx context.Context, arg ListProductsBySlugsParams) ([]Product, error) {
	if len(arg.Slugs) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(arg.Slugs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(arg.Slugs)+1)
	args = append(args, arg.SiteID)
	for _, s := range arg.Slugs {
		args = append(args, s)
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE site_id = ? AND status = 'published' AND slug IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// ListRelatedProductsParams holds arguments for ListRelatedProducts.
type ListRelatedProductsParams struct {
	SiteID    int64
	ProductID int64
	Limit     int64
}

// ListRelatedProducts returns published products sharing at least one category
// with the given product, best-rated first.
func (q *Queries) ListRelatedProducts(ctx context.Context, arg ListRelatedProductsParams) ([]Product, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT DISTINCT `+prefixedColumns("p", productColumns)+`
		 FROM products p
		 JOIN product_category pc ON pc.product_id = p.id
		 WHERE p.site_id = ? AND p.status = 'published' AND p.id != ?
		   AND pc.category_id IN (
			 SELECT category_id FROM product_category WHERE product_id = ?)
		 ORDER BY p.rating DESC, p.review_count DESC
		 LIMIT ?`,
		arg.SiteID, arg.ProductID, arg.ProductID, arg.Limit)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// CreateProductParams holds the fields for CreateProduct.
type CreateProductParams struct {
	SiteID        int64
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
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PublishedAt   *time.Time
}

// CreateProduct inserts a new product and returns the created row.
func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO products (site_id, slug, name, summary, body, status, price_amount,
			price_max, price_currency, price_text, rating, review_count, metadata,
			featured_image, created_at, updated_at, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.SiteID, arg.Slug, arg.Name, arg.Summary, arg.Body, arg.Status,
		arg.PriceAmount, arg.PriceMax, arg.PriceCurrency, arg.PriceText, arg.Rating,
		arg.ReviewCount, arg.Metadata, arg.FeaturedImage, arg.CreatedAt, arg.UpdatedAt,
		arg.PublishedAt)
	if err != nil {
		return Product{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Product{}, err
	}
	return q.GetProductByID(ctx, id)
}

// UpdateProductParams holds the fields for UpdateProduct.
type UpdateProductParams struct {
	ID            int64
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
	UpdatedAt     time.Time
	PublishedAt   *time.Time
}

// UpdateProduct updates an existing product.
func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE products SET slug = ?, name = ?, summary = ?, body = ?, status = ?,
			price_amount = ?, price_max = ?, price_currency = ?, price_text = ?,
			rating = ?, review_count = ?, metadata = ?, featured_image = ?,
			updated_at = ?, published_at = ?
		WHERE id = ?`,
		arg.Slug, arg.Name, arg.Summary, arg.Body, arg.Status, arg.PriceAmount,
		arg.PriceMax, arg.PriceCurrency, arg.PriceText, arg.Rating, arg.ReviewCount,
		arg.Metadata, arg.FeaturedImage, arg.UpdatedAt, arg.PublishedAt, arg.ID)
	return err
}

// DeleteProduct removes a product and, via cascade, its links and joins.
func (q *Queries) DeleteProduct(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	return err
}

// ListAffiliateLinksByProduct returns a product's affiliate links,
// primary first, then by sort order.
func (q *Queries) ListAffiliateLinksByProduct(ctx context.Context, productID int64) ([]AffiliateLink, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, product_id, label, url, is_primary, sort_order, created_at
		 FROM affiliate_links WHERE product_id = ?
		 ORDER BY is_primary DESC, sort_order, id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []AffiliateLink
	for rows.Next() {
		var l AffiliateLink
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Label, &l.URL, &l.IsPrimary,
			&l.SortOrder, &l.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// CreateAffiliateLinkParams holds the fields for CreateAffiliateLink.
type CreateAffiliateLinkParams struct {
	ProductID int64
	Label     string
	URL       string
	IsPrimary bool
	SortOrder int64
	CreatedAt time.Time
}

// CreateAffiliateLink inserts a new affiliate link. When IsPrimary is set,
// any existing primary on the same product is cleared first so the
// single-primary invariant holds.
func (q *Queries) CreateAffiliateLink(ctx context.Context, arg CreateAffiliateLinkParams) error {
	if arg.IsPrimary {
		if _, err := q.db.ExecContext(ctx,
			`UPDATE affiliate_links SET is_primary = 0 WHERE product_id = ?`,
			arg.ProductID); err != nil {
			return err
		}
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO affiliate_links (product_id, label, url, is_primary, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		arg.ProductID, arg.Label, arg.URL, arg.IsPrimary, arg.SortOrder, arg.CreatedAt)
	return err
}

// DeleteAffiliateLinksByProduct removes all affiliate links of a product.
// The product form replaces the full link set on save.
func (q *Queries) DeleteAffiliateLinksByProduct(ctx context.Context, productID int64) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM affiliate_links WHERE product_id = ?`, productID)
	return err
}

// ListCategoryIDsByProduct returns the category IDs assigned to a product and
// the primary category ID (0 when none is marked primary).
func (q *Queries) ListCategoryIDsByProduct(ctx context.Context, productID int64) ([]int64, int64, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT category_id, is_primary FROM product_category WHERE product_id = ?`,
		productID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var ids []int64
	var primary int64
	for rows.Next() {
		var id int64
		var isPrimary bool
		if err := rows.Scan(&id, &isPrimary); err != nil {
			return nil, 0, err
		}
		ids = append(ids, id)
		if isPrimary {
			primary = id
		}
	}
	return ids, primary, rows.Err()
}

// SetProductCategoriesParams holds arguments for SetProductCategories.
type SetProductCategoriesParams struct {
	ProductID   int64
	CategoryIDs []int64
	PrimaryID   int64 // zero means no primary
}

// SetProductCategories replaces a product's category assignments. At most one
// assignment carries the primary flag.
func (q *Queries) SetProductCategories(ctx context.Context, arg SetProductCategoriesParams) error {
	if _, err := q.db.ExecContext(ctx,
		`DELETE FROM product_category WHERE product_id = ?`, arg.ProductID); err != nil {
		return err
	}
	for _, catID := range arg.CategoryIDs {
		isPrimary := catID == arg.PrimaryID
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO product_category (product_id, category_id, is_primary) VALUES (?, ?, ?)`,
			arg.ProductID, catID, isPrimary); err != nil {
			return err
		}
	}
	return nil
}

// GetPrimaryCategoryByProduct returns the product's primary category, falling
// back to any assigned category when none is marked primary.
func (q *Queries) GetPrimaryCategoryByProduct(ctx context.Context, productID int64) (Category, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+prefixedColumns("c", categoryColumns)+`
		 FROM categories c
		 JOIN product_category pc ON pc.category_id = c.id
		 WHERE pc.product_id = ?
		 ORDER BY pc.is_primary DESC
		 LIMIT 1`, productID)
	return scanCategory(row)
}

// prefixedColumns qualifies a comma-separated column list with a table alias.
func prefixedColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
