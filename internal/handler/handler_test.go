// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/model"
)

func TestBuildAdminPagination(t *testing.T) {
	t.Run("single page", func(t *testing.T) {
		p := BuildAdminPagination(1, 5, 20, "/admin/products", nil)
		assert.Equal(t, 1, p.TotalPages)
		assert.False(t, p.HasPrev)
		assert.False(t, p.HasNext)
		require.Len(t, p.Pages, 1)
		assert.True(t, p.Pages[0].IsCurrent)
	})

	t.Run("middle page", func(t *testing.T) {
		p := BuildAdminPagination(2, 45, 20, "/admin/products", nil)
		assert.Equal(t, 3, p.TotalPages)
		assert.True(t, p.HasPrev)
		assert.True(t, p.HasNext)
		assert.Equal(t, 1, p.PrevPage)
		assert.Equal(t, 3, p.NextPage)
		assert.Equal(t, "/admin/products?page=2", p.Pages[1].URL)
	})

	t.Run("preserves filters but not page", func(t *testing.T) {
		params := url.Values{"site": {"3"}, "page": {"7"}}
		p := BuildAdminPagination(1, 45, 20, "/admin/products", params)
		assert.Equal(t, "site=3", p.QueryString)
		assert.Equal(t, "/admin/products?site=3&page=2", p.Pages[1].URL)
	})

	t.Run("clamps out-of-range page", func(t *testing.T) {
		p := BuildAdminPagination(99, 45, 20, "/admin/products", nil)
		assert.Equal(t, 3, p.CurrentPage)

		p = BuildAdminPagination(0, 45, 20, "/admin/products", nil)
		assert.Equal(t, 1, p.CurrentPage)
	})

	t.Run("zero items still yields one page", func(t *testing.T) {
		p := BuildAdminPagination(1, 0, 20, "/admin/products", nil)
		assert.Equal(t, 1, p.TotalPages)
	})
}

func TestValidateSlug(t *testing.T) {
	taken := func() (int64, error) { return 1, nil }
	free := func() (int64, error) { return 0, nil }

	assert.Empty(t, ValidateSlugWithChecker("good-slug", free))
	assert.NotEmpty(t, ValidateSlugWithChecker("", free))
	assert.NotEmpty(t, ValidateSlugWithChecker("Bad Slug!", free))
	assert.NotEmpty(t, ValidateSlugWithChecker("good-slug", taken))

	// Unchanged slug skips the existence check entirely.
	assert.Empty(t, ValidateSlugForUpdate("same", "same", taken))
	assert.NotEmpty(t, ValidateSlugForUpdate("changed", "same", taken))
}

func TestValidateEmail(t *testing.T) {
	assert.Empty(t, ValidateEmail("user@example.com"))
	assert.NotEmpty(t, ValidateEmail(""))
	assert.NotEmpty(t, ValidateEmail("not-an-email"))
}

func TestPublishedAt(t *testing.T) {
	t.Run("draft keeps nil", func(t *testing.T) {
		assert.Nil(t, publishedAt(model.ProductStatusDraft, nil))
	})

	t.Run("first publish stamps now", func(t *testing.T) {
		got := publishedAt(model.ProductStatusPublished, nil)
		require.NotNil(t, got)
		assert.WithinDuration(t, time.Now(), *got, time.Second)
	})

	t.Run("republish preserves original timestamp", func(t *testing.T) {
		orig := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		got := publishedAt(model.ProductStatusPublished, &orig)
		require.NotNil(t, got)
		assert.Equal(t, orig, *got)
	})

	t.Run("unpublish keeps existing timestamp", func(t *testing.T) {
		orig := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		got := publishedAt(model.ProductStatusArchived, &orig)
		require.NotNil(t, got)
		assert.Equal(t, orig, *got)
	})
}

func TestQueryPage(t *testing.T) {
	tests := []struct {
		url  string
		want int
	}{
		{"/admin/products", 1},
		{"/admin/products?page=3", 3},
		{"/admin/products?page=0", 1},
		{"/admin/products?page=abc", 1},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.url, nil)
		assert.Equal(t, tt.want, queryPage(r), tt.url)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1 minute", formatDuration(30*time.Second))
	assert.Equal(t, "15 minutes", formatDuration(15*time.Minute))
	assert.Equal(t, "2 minutes", formatDuration(90*time.Second))
}
