// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides database helpers for tests.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

// NewTestDB opens a fresh in-memory SQLite database with all migrations
// applied. Each call yields an isolated database; it closes with the test.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// A single connection keeps the in-memory database alive and visible.
	db, err := store.NewDBWithConfig(":memory:", store.DBConfig{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, store.Migrate(db))
	return db
}

// SeedSite creates a niche and a site for tests, returning the site.
func SeedSite(t *testing.T, db *sql.DB, slug, domain string) store.Site {
	t.Helper()

	queries := store.New(db)
	now := time.Now()

	niche, err := queries.CreateNiche(context.Background(), store.CreateNicheParams{
		Name:      "Test Niche " + slug,
		Slug:      "niche-" + slug,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)

	site, err := queries.CreateSite(context.Background(), store.CreateSiteParams{
		Slug:      slug,
		Name:      "Test Site " + slug,
		Domain:    domain,
		NicheID:   niche.ID,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	return site
}

// SeedProduct creates a published product on a site for tests.
func SeedProduct(t *testing.T, db *sql.DB, siteID int64, slug, name string) store.Product {
	t.Helper()

	now := time.Now()
	product, err := store.New(db).CreateProduct(context.Background(), store.CreateProductParams{
		SiteID:      siteID,
		Slug:        slug,
		Name:        name,
		Status:      "published",
		Metadata:    "{}",
		CreatedAt:   now,
		UpdatedAt:   now,
		PublishedAt: &now,
	})
	require.NoError(t, err)
	return product
}
