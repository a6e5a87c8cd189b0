// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const siteColumns = `id, slug, name, domain, niche_id, theme_primary, theme_accent,
	social_links, tagline, active, created_at, updated_at`

func scanSite(row interface{ Scan(...any) error }) (Site, error) {
	var s Site
	err := row.Scan(&s.ID, &s.Slug, &s.Name, &s.Domain, &s.NicheID, &s.ThemePrimary,
		&s.ThemeAccent, &s.SocialLinks, &s.Tagline, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// GetSiteByID fetches a site by primary key.
func (q *Queries) GetSiteByID(ctx context.Context, id int64) (Site, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+siteColumns+` FROM sites WHERE id = ?`, id)
	return scanSite(row)
}

// GetSiteBySlug fetches a site by its unique slug.
func (q *Queries) GetSiteBySlug(ctx context.Context, slug string) (Site, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+siteColumns+` FROM sites WHERE slug = ?`, slug)
	return scanSite(row)
}

// GetSiteByDomain fetches an active site by its mapped domain.
func (q *Queries) GetSiteByDomain(ctx context.Context, domain string) (Site, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE domain = ? AND active = 1`, domain)
	return scanSite(row)
}

// ListSites returns all sites ordered by name.
func (q *Queries) ListSites(ctx context.Context) ([]Site, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+siteColumns+` FROM sites ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}
	return sites, rows.Err()
}

// CreateSiteParams holds the fields for CreateSite.
type CreateSiteParams struct {
	Slug         string
	Name         string
	Domain       string
	NicheID      int64
	ThemePrimary string
	ThemeAccent  string
	SocialLinks  string
	Tagline      string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateSite inserts a new site and returns the created row.
func (q *Queries) CreateSite(ctx context.Context, arg CreateSiteParams) (Site, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO sites (slug, name, domain, niche_id, theme_primary, theme_accent,
			social_links, tagline, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Slug, arg.Name, arg.Domain, arg.NicheID, arg.ThemePrimary, arg.ThemeAccent,
		arg.SocialLinks, arg.Tagline, arg.Active, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Site{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Site{}, err
	}
	return q.GetSiteByID(ctx, id)
}

// UpdateSiteParams holds the fields for UpdateSite.
type UpdateSiteParams struct {
	ID           int64
	Slug         string
	Name         string
	Domain       string
	NicheID      int64
	ThemePrimary string
	ThemeAccent  string
	SocialLinks  string
	Tagline      string
	Active       bool
	UpdatedAt    time.Time
}

// UpdateSite updates an existing site.
func (q *Queries) UpdateSite(ctx context.Context, arg UpdateSiteParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE sites SET slug = ?, name = ?, domain = ?, niche_id = ?, theme_primary = ?,
			theme_accent = ?, social_links = ?, tagline = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		arg.Slug, arg.Name, arg.Domain, arg.NicheID, arg.ThemePrimary, arg.ThemeAccent,
		arg.SocialLinks, arg.Tagline, arg.Active, arg.UpdatedAt, arg.ID)
	return err
}

// DeleteSite removes a site and, via cascade, its content.
func (q *Queries) DeleteSite(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sites WHERE id = ?`, id)
	return err
}

const nicheColumns = `id, name, slug, layout_config, created_at, updated_at`

func scanNiche(row interface{ Scan(...any) error }) (Niche, error) {
	var n Niche
	err := row.Scan(&n.ID, &n.Name, &n.Slug, &n.LayoutConfig, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

// GetNicheByID fetches a niche by primary key.
func (q *Queries) GetNicheByID(ctx context.Context, id int64) (Niche, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+nicheColumns+` FROM niches WHERE id = ?`, id)
	return scanNiche(row)
}

// GetNicheBySlug fetches a niche by slug.
func (q *Queries) GetNicheBySlug(ctx context.Context, slug string) (Niche, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+nicheColumns+` FROM niches WHERE slug = ?`, slug)
	return scanNiche(row)
}

// ListNiches returns all niches ordered by name.
func (q *Queries) ListNiches(ctx context.Context) ([]Niche, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+nicheColumns+` FROM niches ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var niches []Niche
	for rows.Next() {
		n, err := scanNiche(rows)
		if err != nil {
			return nil, err
		}
		niches = append(niches, n)
	}
	return niches, rows.Err()
}

// CreateNicheParams holds the fields for CreateNiche.
type CreateNicheParams struct {
	Name         string
	Slug         string
	LayoutConfig string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateNiche inserts a new niche and returns the created row.
func (q *Queries) CreateNiche(ctx context.Context, arg CreateNicheParams) (Niche, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO niches (name, slug, layout_config, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		arg.Name, arg.Slug, arg.LayoutConfig, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Niche{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Niche{}, err
	}
	return q.GetNicheByID(ctx, id)
}

// UpdateNicheParams holds the fields for UpdateNiche.
type UpdateNicheParams struct {
	ID           int64
	Name         string
	Slug         string
	LayoutConfig string
	UpdatedAt    time.Time
}

// UpdateNiche updates an existing niche.
func (q *Queries) UpdateNiche(ctx context.Context, arg UpdateNicheParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE niches SET name = ?, slug = ?, layout_config = ?, updated_at = ? WHERE id = ?`,
		arg.Name, arg.Slug, arg.LayoutConfig, arg.UpdatedAt, arg.ID)
	return err
}

// DeleteNiche removes a niche. Fails if sites still reference it.
func (q *Queries) DeleteNiche(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM niches WHERE id = ?`, id)
	return err
}

// CountSitesByNiche returns the number of sites referencing a niche.
func (q *Queries) CountSitesByNiche(ctx context.Context, nicheID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sites WHERE niche_id = ?`, nicheID).Scan(&count)
	return count, err
}
