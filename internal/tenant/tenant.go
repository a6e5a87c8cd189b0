// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package tenant resolves the incoming hostname to one of the sites served
// by this installation and makes the resolved site available on the request
// context.
package tenant

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

type contextKey string

const siteContextKey contextKey = "tenant.site"

// siteLookup is the slice of the store the resolver needs.
type siteLookup interface {
	GetSiteByDomain(ctx context.Context, domain string) (store.Site, error)
	GetSiteBySlug(ctx context.Context, slug string) (store.Site, error)
}

// Resolver maps request hosts to sites. Resolution order: explicit ?site=
// override (when enabled), exact host match, bare-domain match after
// stripping a www. prefix, then the configured fallback slug.
type Resolver struct {
	lookup        siteLookup
	fallbackSlug  string
	allowOverride bool
}

// NewResolver builds a Resolver. allowOverride enables the ?site= query
// override, intended for development only.
func NewResolver(lookup siteLookup, fallbackSlug string, allowOverride bool) *Resolver {
	return &Resolver{
		lookup:        lookup,
		fallbackSlug:  fallbackSlug,
		allowOverride: allowOverride,
	}
}

// Resolve determines the site for a request host. An unmapped host is not an
// error: it resolves to the fallback site so a misconfigured DNS entry serves
// content instead of an error page.
func (rv *Resolver) Resolve(ctx context.Context, host, override string) (store.Site, error) {
	if rv.allowOverride && override != "" {
		site, err := rv.lookup.GetSiteBySlug(ctx, override)
		if err == nil {
			return site, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return store.Site{}, err
		}
	}

	normalized := NormalizeHost(host)
	if normalized != "" {
		site, err := rv.lookup.GetSiteByDomain(ctx, normalized)
		if err == nil {
			return site, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return store.Site{}, err
		}

		if bare := strings.TrimPrefix(normalized, "www."); bare != normalized {
			site, err = rv.lookup.GetSiteByDomain(ctx, bare)
			if err == nil {
				return site, nil
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return store.Site{}, err
			}
		}
	}

	return rv.lookup.GetSiteBySlug(ctx, rv.fallbackSlug)
}

// Middleware resolves the site for each request and stores it in the request
// context. Requests for which no site can be resolved (including a missing
// fallback site) get a 503, since the installation is unusable without one.
func (rv *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site, err := rv.Resolve(r.Context(), r.Host, r.URL.Query().Get("site"))
		if err != nil {
			slog.Error("resolving tenant", "host", r.Host, "error", err)
			http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
			return
		}
		ctx := context.WithValue(r.Context(), siteContextKey, site)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the site resolved for this request. The bool is false
// when the tenant middleware did not run.
func FromContext(ctx context.Context) (store.Site, bool) {
	site, ok := ctx.Value(siteContextKey).(store.Site)
	return site, ok
}

// WithSite returns a context carrying the given site. Used by tests and by
// internal jobs that act on behalf of a site outside a request.
func WithSite(ctx context.Context, site store.Site) context.Context {
	return context.WithValue(ctx, siteContextKey, site)
}

// NormalizeHost lowercases a request host and strips any port.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

// CanonicalHost 301-redirects www. hosts to the bare domain, preserving the
// path and query string. Scheme follows X-Forwarded-Proto when present so the
// redirect is correct behind a TLS-terminating proxy.
func CanonicalHost(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := NormalizeHost(r.Host)
		if !strings.HasPrefix(host, "www.") {
			next.ServeHTTP(w, r)
			return
		}

		scheme := "http"
		if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
			scheme = "https"
		} else if r.TLS != nil {
			scheme = "https"
		}

		target := scheme + "://" + strings.TrimPrefix(host, "www.") + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusMovedPermanently)
	})
}
