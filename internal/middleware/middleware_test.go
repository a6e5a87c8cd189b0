// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/model"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

func withUser(r *http.Request, user store.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ContextKeyUser, user))
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		minRole    string
		user       *store.User
		wantStatus int
	}{
		{"no user redirects to login", model.RoleOwner, nil, http.StatusSeeOther},
		{"admin passes admin gate", model.RoleAdmin, &store.User{Role: model.RoleAdmin}, http.StatusOK},
		{"owner fails admin gate", model.RoleAdmin, &store.User{Role: model.RoleOwner}, http.StatusForbidden},
		{"admin passes owner gate", model.RoleOwner, &store.User{Role: model.RoleAdmin}, http.StatusOK},
		{"owner passes owner gate", model.RoleOwner, &store.User{Role: model.RoleOwner}, http.StatusOK},
		{"unknown role forbidden", model.RoleOwner, &store.User{Role: "guest"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
			if tt.user != nil {
				req = withUser(req, *tt.user)
			}
			rec := httptest.NewRecorder()
			RequireRole(tt.minRole)(next).ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestCanManageSite(t *testing.T) {
	admin := &store.User{Role: model.RoleAdmin}
	owner := &store.User{Role: model.RoleOwner, SiteID: sql.NullInt64{Int64: 1, Valid: true}}
	unscoped := &store.User{Role: model.RoleOwner}

	assert.True(t, CanManageSite(admin, 1))
	assert.True(t, CanManageSite(admin, 2))
	assert.True(t, CanManageSite(owner, 1))
	assert.False(t, CanManageSite(owner, 2))
	assert.False(t, CanManageSite(unscoped, 1))
	assert.False(t, CanManageSite(nil, 1))
}

func TestStripTrailingSlash(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("redirects and keeps query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/products/nimbus/?page=2", nil)
		rec := httptest.NewRecorder()
		StripTrailingSlash(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusMovedPermanently, rec.Code)
		assert.Equal(t, "/products/nimbus?page=2", rec.Header().Get("Location"))
	})

	t.Run("root passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		StripTrailingSlash(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSecurityHeaders(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("production includes HSTS", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		SecurityHeaders(DefaultSecurityHeadersConfig(false))(next).ServeHTTP(rec, req)

		assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=31536000")
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
		assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	})

	t.Run("development skips HSTS", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		SecurityHeaders(DefaultSecurityHeadersConfig(true))(next).ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	})
}

func TestTimeout(t *testing.T) {
	t.Run("fast handler passes", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		Timeout(time.Second)(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("slow handler gets 503", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		Timeout(20*time.Millisecond)(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestLoginProtectionLockout(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       100,
		IPBurst:           100,
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	locked, _ := lp.IsAccountLocked("a@example.com")
	assert.False(t, locked)

	for i := 0; i < 2; i++ {
		nowLocked, _ := lp.RecordFailedAttempt("a@example.com")
		assert.False(t, nowLocked)
	}
	nowLocked, duration := lp.RecordFailedAttempt("a@example.com")
	assert.True(t, nowLocked)
	assert.Equal(t, time.Minute, duration)

	locked, remaining := lp.IsAccountLocked("a@example.com")
	assert.True(t, locked)
	assert.Greater(t, remaining, time.Duration(0))

	// Another account is unaffected.
	locked, _ = lp.IsAccountLocked("b@example.com")
	assert.False(t, locked)
}

func TestLoginProtectionExponentialBackoff(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       100,
		IPBurst:           100,
		MaxFailedAttempts: 1,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	_, first := lp.RecordFailedAttempt("a@example.com")
	_, second := lp.RecordFailedAttempt("a@example.com")
	require.Equal(t, time.Minute, first)
	assert.Equal(t, 2*time.Minute, second)

	lp.RecordSuccess("a@example.com")
	locked, _ := lp.IsAccountLocked("a@example.com")
	assert.False(t, locked)
}

func TestLoginProtectionIPRateLimit(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       1,
		IPBurst:           2,
		MaxFailedAttempts: 5,
	})

	assert.True(t, lp.CheckIPRateLimit("10.0.0.1"))
	assert.True(t, lp.CheckIPRateLimit("10.0.0.1"))
	assert.False(t, lp.CheckIPRateLimit("10.0.0.1"), "burst exhausted")
	assert.True(t, lp.CheckIPRateLimit("10.0.0.2"), "other IPs unaffected")
}
