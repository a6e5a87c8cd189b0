// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides HTTP handlers for the frontend and the admin
// console.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/middleware"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/render"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

// flashError sets an error flash and redirects.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	renderer.SetFlash(r, message, "error")
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashSuccess sets a success flash and redirects.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	renderer.SetFlash(r, message, "success")
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// urlParamID parses the {id} chi route parameter.
func urlParamID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// formValue returns a trimmed form value.
func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

// formInt64 parses an integer form value, returning def when absent or
// malformed.
func formInt64(r *http.Request, key string, def int64) int64 {
	v, err := strconv.ParseInt(formValue(r, key), 10, 64)
	if err != nil {
		return def
	}
	return v
}

// formFloat parses a decimal form value into a pointer, nil when empty.
func formFloat(r *http.Request, key string) *float64 {
	raw := formValue(r, key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// queryPage parses the ?page= parameter, defaulting to 1.
func queryPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// selectedSite resolves the site an admin request operates on. Owners are
// pinned to their own site; admins pick one with ?site= and default to the
// first configured site.
func selectedSite(r *http.Request, queries *store.Queries) (store.Site, error) {
	user := middleware.GetUser(r)
	if user != nil && user.SiteID.Valid {
		return queries.GetSiteByID(r.Context(), user.SiteID.Int64)
	}

	if raw := r.URL.Query().Get("site"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return queries.GetSiteByID(r.Context(), id)
		}
	}

	sites, err := queries.ListSites(r.Context())
	if err != nil {
		return store.Site{}, err
	}
	if len(sites) == 0 {
		return store.Site{}, errors.New("no sites configured")
	}
	return sites[0], nil
}

// serverError logs and renders a plain 500. Admin pages have no themed error
// template; the frontend's themed errors live on FrontendHandler.
func serverError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
