// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/auth"
)

// Default admin credentials
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme"
	DefaultAdminName     = "Administrator"
)

// Seed creates the initial admin user if none exists, and demo content when
// doSeed is set.
func Seed(ctx context.Context, db *sql.DB, doSeed bool) error {
	queries := New(db)

	if err := seedAdmin(ctx, queries); err != nil {
		return err
	}

	if doSeed {
		if err := seedDemo(ctx, queries); err != nil {
			return fmt.Errorf("seeding demo content: %w", err)
		}
	}

	return nil
}

func seedAdmin(ctx context.Context, queries *Queries) error {
	_, err := queries.GetUserByEmail(ctx, DefaultAdminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		Name:         DefaultAdminName,
		Role:         "admin",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
		"password", DefaultAdminPassword,
	)

	return nil
}

// gamingLayoutConfig is the demo niche layout: the gaming vertical adds a
// specifications zone section conditioned on benchmark data and disables the
// sticky bar.
const gamingLayoutConfig = `{
  "zones": [
    {
      "id": "main",
      "sections": [
        {"id": "hero"},
        {"id": "specifications", "conditionField": "specs"},
        {"id": "pros-cons"},
        {"id": "full-review"},
        {"id": "related-products", "props": {"limit": 4}},
        {"id": "featured-articles"}
      ]
    },
    {
      "id": "overlay",
      "sections": [
        {"id": "sticky-bar", "enabled": false}
      ]
    }
  ]
}`

func seedDemo(ctx context.Context, queries *Queries) error {
	// Idempotent: skip when the demo site already exists.
	if _, err := queries.GetSiteBySlug(ctx, "demo-gaming"); err == nil {
		slog.Info("demo content already exists, skipping seed")
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for demo site: %w", err)
	}

	now := time.Now()

	niche, err := queries.CreateNiche(ctx, CreateNicheParams{
		Name:         "Gaming",
		Slug:         "gaming",
		LayoutConfig: gamingLayoutConfig,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating demo niche: %w", err)
	}

	site, err := queries.CreateSite(ctx, CreateSiteParams{
		Slug:         "demo-gaming",
		Name:         "The Gaming Hub Guide",
		Domain:       "thegaminghubguide.com",
		NicheID:      niche.ID,
		ThemePrimary: "#1a1a2e",
		ThemeAccent:  "#e94560",
		SocialLinks:  `{"twitter":"https://twitter.com/gaminghubguide"}`,
		Tagline:      "Honest reviews of gaming gear",
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating demo site: %w", err)
	}

	category, err := queries.CreateCategory(ctx, CreateCategoryParams{
		SiteID:    site.ID,
		Name:      "Headsets",
		Slug:      "headsets",
		SortOrder: 1,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("creating demo category: %w", err)
	}

	price := 99.99
	rating := 4.5
	published := now
	product, err := queries.CreateProduct(ctx, CreateProductParams{
		SiteID:        site.ID,
		Slug:          "nimbus-pro-wireless",
		Name:          "Nimbus Pro Wireless",
		Summary:       "A wireless gaming headset with low-latency audio.",
		Body:          "<p>Full review body.</p>",
		Status:        "published",
		PriceAmount:   &price,
		PriceCurrency: "USD",
		Rating:        &rating,
		ReviewCount:   128,
		Metadata: `{"specs":{"weight":"310g","battery":"30h"},` +
			`"pros":["Great battery","Comfortable"],"cons":["Bulky case"]}`,
		CreatedAt:   now,
		UpdatedAt:   now,
		PublishedAt: &published,
	})
	if err != nil {
		return fmt.Errorf("creating demo product: %w", err)
	}

	if err := queries.SetProductCategories(ctx, SetProductCategoriesParams{
		ProductID:   product.ID,
		CategoryIDs: []int64{category.ID},
		PrimaryID:   category.ID,
	}); err != nil {
		return fmt.Errorf("assigning demo category: %w", err)
	}

	if err := queries.CreateAffiliateLink(ctx, CreateAffiliateLinkParams{
		ProductID: product.ID,
		Label:     "Check price on Amazon",
		URL:       "https://example.com/go/nimbus-pro",
		IsPrimary: true,
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("creating demo affiliate link: %w", err)
	}

	article, err := queries.CreateArticle(ctx, CreateArticleParams{
		SiteID:     site.ID,
		Slug:       "best-wireless-headsets",
		Title:      "Best Wireless Headsets",
		Excerpt:    "Our top picks this year.",
		Body:       "<h2>Our pick</h2><p>The clear winner:</p>[product:nimbus-pro-wireless]",
		BodyFormat: "html",
		Type:       "roundup",
		Status:     "published",
		CreatedAt:  now,
		UpdatedAt:  now,
		PublishedAt: func() *time.Time {
			t := now
			return &t
		}(),
	})
	if err != nil {
		return fmt.Errorf("creating demo article: %w", err)
	}

	if err := queries.SetArticleProducts(ctx, SetArticleProductsParams{
		ArticleID:  article.ID,
		ProductIDs: []int64{product.ID},
	}); err != nil {
		return fmt.Errorf("linking demo article products: %w", err)
	}

	slog.Info("seeded demo content", "site", site.Slug, "domain", site.Domain)
	return nil
}
