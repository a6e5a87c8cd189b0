// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

// User is an admin console account. Owners carry a SiteID scope; admins do not.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	Role         string
	SiteID       sql.NullInt64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Niche is a vertical-specific configuration bundle shared by tenants.
type Niche struct {
	ID           int64
	Name         string
	Slug         string
	LayoutConfig string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Site is one independently branded affiliate property.
type Site struct {
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
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Category is a node in the product taxonomy tree, scoped to a site.
type Category struct {
	ID          int64
	SiteID      int64
	ParentID    sql.NullInt64
	Name        string
	Slug        string
	Description string
	SortOrder   int64
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ArticleCategory is a node in the content taxonomy tree, scoped to a site.
// It is independent of the product taxonomy.
type ArticleCategory struct {
	ID          int64
	SiteID      int64
	ParentID    sql.NullInt64
	Name        string
	Slug        string
	Description string
	SortOrder   int64
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Product is a monetizable entity belonging to one site.
type Product struct {
	ID            int64
	SiteID        int64
	Slug          string
	Name          string
	Summary       string
	Body          string
	Status        string
	PriceAmount   sql.NullFloat64
	PriceMax      sql.NullFloat64
	PriceCurrency string
	PriceText     string
	Rating        sql.NullFloat64
	ReviewCount   int64
	Metadata      string
	FeaturedImage string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PublishedAt   sql.NullTime
}

// IsPublished returns true if the product is published.
func (p *Product) IsPublished() bool {
	return p.Status == "published"
}

// AffiliateLink is one outbound monetized link on a product. At most one
// link per product carries IsPrimary.
type AffiliateLink struct {
	ID        int64
	ProductID int64
	Label     string
	URL       string
	IsPrimary bool
	SortOrder int64
	CreatedAt time.Time
}

// Article is editorial content belonging to one site.
type Article struct {
	ID                int64
	SiteID            int64
	ArticleCategoryID sql.NullInt64
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
	PublishedAt       sql.NullTime
}

// IsPublished returns true if the article is published.
func (a *Article) IsPublished() bool {
	return a.Status == "published"
}

// Media is an uploaded file belonging to one site.
type Media struct {
	ID           int64
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

// Event is one event log entry.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	IPAddress string
	URL       string
	Metadata  string
	CreatedAt time.Time
}

// FormSubmission is one stored contact form submission.
type FormSubmission struct {
	ID        int64
	SiteID    int64
	Name      string
	Email     string
	Subject   string
	Message   string
	IPAddress string
	CreatedAt time.Time
}
