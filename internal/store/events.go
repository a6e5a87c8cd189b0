// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const eventColumns = `id, level, category, message, user_id, ip_address, url, metadata, created_at`

func scanEvent(row interface{ Scan(...any) error }) (Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.UserID, &e.IPAddress,
		&e.URL, &e.Metadata, &e.CreatedAt)
	return e, err
}

// CreateEventParams holds the fields for CreateEvent.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	IPAddress string
	URL       string
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent inserts a new event log entry.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	if arg.Metadata == "" {
		arg.Metadata = "{}"
	}
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO events (level, category, message, user_id, ip_address, url, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Level, arg.Category, arg.Message, arg.UserID, arg.IPAddress, arg.URL,
		arg.Metadata, arg.CreatedAt)
	if err != nil {
		return Event{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Event{}, err
	}
	row := q.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	return scanEvent(row)
}

// ListEventsParams holds paging for ListEvents.
type ListEventsParams struct {
	Limit  int64
	Offset int64
}

// ListEvents returns event log entries, newest first.
func (q *Queries) ListEvents(ctx context.Context, arg ListEventsParams) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountEvents returns the total number of event log entries.
func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count)
	return count, err
}

// CreateFormSubmissionParams holds the fields for CreateFormSubmission.
type CreateFormSubmissionParams struct {
	SiteID    int64
	Name      string
	Email     string
	Subject   string
	Message   string
	IPAddress string
	CreatedAt time.Time
}

// CreateFormSubmission stores a contact form submission.
func (q *Queries) CreateFormSubmission(ctx context.Context, arg CreateFormSubmissionParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO form_submissions (site_id, name, email, subject, message, ip_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.SiteID, arg.Name, arg.Email, arg.Subject, arg.Message, arg.IPAddress, arg.CreatedAt)
	return err
}

// ListFormSubmissionsBySite returns a site's contact form submissions, newest first.
func (q *Queries) ListFormSubmissionsBySite(ctx context.Context, siteID int64, limit int64) ([]FormSubmission, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, site_id, name, email, subject, message, ip_address, created_at
		 FROM form_submissions WHERE site_id = ?
		 ORDER BY created_at DESC LIMIT ?`, siteID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []FormSubmission
	for rows.Next() {
		var s FormSubmission
		if err := rows.Scan(&s.ID, &s.SiteID, &s.Name, &s.Email, &s.Subject, &s.Message,
			&s.IPAddress, &s.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
