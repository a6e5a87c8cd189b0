// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const mediaColumns = `id, site_id, uuid, filename, original_name, mime_type, size,
	width, height, alt_text, created_at`

func scanMedia(row interface{ Scan(...any) error }) (Media, error) {
	var m Media
	err := row.Scan(&m.ID, &m.SiteID, &m.UUID, &m.Filename, &m.OriginalName,
		&m.MimeType, &m.Size, &m.Width, &m.Height, &m.AltText, &m.CreatedAt)
	return m, err
}

// GetMediaByID fetches a media row by primary key.
func (q *Queries) GetMediaByID(ctx context.Context, id int64) (Media, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = ?`, id)
	return scanMedia(row)
}

// ListMediaBySiteParams holds paging for ListMediaBySite.
type ListMediaBySiteParams struct {
	SiteID int64
	Limit  int64
	Offset int64
}

// ListMediaBySite returns a site's media, newest first.
func (q *Queries) ListMediaBySite(ctx context.Context, arg ListMediaBySiteParams) ([]Media, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE site_id = ?
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		arg.SiteID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var media []Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

// CountMediaBySite returns the number of media rows belonging to a site.
func (q *Queries) CountMediaBySite(ctx context.Context, siteID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM media WHERE site_id = ?`, siteID).Scan(&count)
	return count, err
}

// CreateMediaParams holds the fields for CreateMedia.
type CreateMediaParams struct {
	SiteID       int64
	UUID         string
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
	Width        int64
	Height       int64
	AltText      string
	CreatedAt    time.Time
}

// CreateMedia inserts a new media row and returns it.
func (q *Queries) CreateMedia(ctx context.Context, arg CreateMediaParams) (Media, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO media (site_id, uuid, filename, original_name, mime_type, size,
			width, height, alt_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.SiteID, arg.UUID, arg.Filename, arg.OriginalName, arg.MimeType, arg.Size,
		arg.Width, arg.Height, arg.AltText, arg.CreatedAt)
	if err != nil {
		return Media{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Media{}, err
	}
	return q.GetMediaByID(ctx, id)
}

// UpdateMediaAltText updates the alt text of a media row.
func (q *Queries) UpdateMediaAltText(ctx context.Context, id int64, altText string) error {
	_, err := q.db.ExecContext(ctx, `UPDATE media SET alt_text = ? WHERE id = ?`, altText, id)
	return err
}

// DeleteMedia removes a media row.
func (q *Queries) DeleteMedia(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	return err
}
