// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package tenant

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

type fakeLookup struct {
	byDomain map[string]store.Site
	bySlug   map[string]store.Site
}

func (f *fakeLookup) GetSiteByDomain(_ context.Context, domain string) (store.Site, error) {
	if s, ok := f.byDomain[domain]; ok {
		return s, nil
	}
	return store.Site{}, sql.ErrNoRows
}

func (f *fakeLookup) GetSiteBySlug(_ context.Context, slug string) (store.Site, error) {
	if s, ok := f.bySlug[slug]; ok {
		return s, nil
	}
	return store.Site{}, sql.ErrNoRows
}

func newFakeLookup() *fakeLookup {
	gaming := store.Site{ID: 1, Slug: "demo-gaming", Domain: "thegaminghubguide.com"}
	kitchen := store.Site{ID: 2, Slug: "kitchen", Domain: "kitchenreviewlab.com"}
	return &fakeLookup{
		byDomain: map[string]store.Site{
			"thegaminghubguide.com": gaming,
			"kitchenreviewlab.com":  kitchen,
		},
		bySlug: map[string]store.Site{
			"demo-gaming": gaming,
			"kitchen":     kitchen,
		},
	}
}

func TestResolveExactHost(t *testing.T) {
	rv := NewResolver(newFakeLookup(), "demo-gaming", false)

	site, err := rv.Resolve(context.Background(), "kitchenreviewlab.com", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), site.ID)
}

func TestResolveStripsPortAndCase(t *testing.T) {
	rv := NewResolver(newFakeLookup(), "demo-gaming", false)

	site, err := rv.Resolve(context.Background(), "TheGamingHubGuide.com:8080", "")
	require.NoError(t, err)
	assert.Equal(t, "demo-gaming", site.Slug)
}

func TestResolveWwwFallsBackToBareDomain(t *testing.T) {
	rv := NewResolver(newFakeLookup(), "demo-gaming", false)

	site, err := rv.Resolve(context.Background(), "www.kitchenreviewlab.com", "")
	require.NoError(t, err)
	assert.Equal(t, "kitchen", site.Slug)
}

func TestResolveUnmappedHostUsesFallback(t *testing.T) {
	rv := NewResolver(newFakeLookup(), "demo-gaming", false)

	site, err := rv.Resolve(context.Background(), "unknown.example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "demo-gaming", site.Slug)
}

func TestResolveOverride(t *testing.T) {
	lookup := newFakeLookup()

	rv := NewResolver(lookup, "demo-gaming", true)
	site, err := rv.Resolve(context.Background(), "thegaminghubguide.com", "kitchen")
	require.NoError(t, err)
	assert.Equal(t, "kitchen", site.Slug, "override should win over host match")

	// Unknown override falls through to host resolution.
	site, err = rv.Resolve(context.Background(), "thegaminghubguide.com", "nope")
	require.NoError(t, err)
	assert.Equal(t, "demo-gaming", site.Slug)

	// Override disabled: the parameter is ignored.
	rv = NewResolver(lookup, "demo-gaming", false)
	site, err = rv.Resolve(context.Background(), "thegaminghubguide.com", "kitchen")
	require.NoError(t, err)
	assert.Equal(t, "demo-gaming", site.Slug)
}

func TestMiddlewareInjectsSite(t *testing.T) {
	rv := NewResolver(newFakeLookup(), "demo-gaming", false)

	var got store.Site
	var ok bool
	handler := rv.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "http://kitchenreviewlab.com/reviews", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.True(t, ok)
	assert.Equal(t, "kitchen", got.Slug)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareMissingFallbackSite(t *testing.T) {
	rv := NewResolver(&fakeLookup{}, "demo-gaming", false)

	handler := rv.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "http://unknown.example.com/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCanonicalHost(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		host         string
		forwardProto string
		wantStatus   int
		wantLocation string
	}{
		{
			name:       "bare domain passes through",
			url:        "http://example.com/p/widget",
			host:       "example.com",
			wantStatus: http.StatusOK,
		},
		{
			name:         "www redirects preserving path and query",
			url:          "http://www.example.com/reviews?page=2",
			host:         "www.example.com",
			wantStatus:   http.StatusMovedPermanently,
			wantLocation: "http://example.com/reviews?page=2",
		},
		{
			name:         "forwarded proto https",
			url:          "http://www.example.com/",
			host:         "www.example.com",
			forwardProto: "https",
			wantStatus:   http.StatusMovedPermanently,
			wantLocation: "https://example.com/",
		},
		{
			name:         "www with port",
			url:          "http://www.example.com:8080/x",
			host:         "www.example.com:8080",
			wantStatus:   http.StatusMovedPermanently,
			wantLocation: "http://example.com/x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := CanonicalHost(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			req.Host = tt.host
			if tt.forwardProto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.forwardProto)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			}
		})
	}
}

func TestNormalizeHost(t *testing.T) {
	assert.Equal(t, "example.com", NormalizeHost("Example.COM:443"))
	assert.Equal(t, "example.com", NormalizeHost(" example.com "))
	assert.Equal(t, "localhost", NormalizeHost("localhost:8080"))
}
