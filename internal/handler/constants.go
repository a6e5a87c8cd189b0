// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	RouteRoot         = "/"
	RouteParamID      = "/{id}"
	RouteSuffixNew    = "/new"
	RouteSuffixDelete = "/{id}/delete"
	RouteSuffixUpload = "/upload"

	RouteLogin  = "/login"
	RouteLogout = "/logout"

	RouteProductSlug  = "/products/{slug}"
	RouteArticleSlug  = "/articles/{slug}"
	RouteCategorySlug = "/category/{slug}"
	RouteContact      = "/contact"
	RouteSitemap      = "/sitemap.xml"
	RouteRobots       = "/robots.txt"

	RouteAdmin           = "/admin"
	RouteAdminSites      = "/sites"
	RouteAdminNiches     = "/niches"
	RouteAdminProducts   = "/products"
	RouteAdminArticles   = "/articles"
	RouteAdminCategories = "/categories"
	RouteAdminArticleCat = "/article-categories"
	RouteAdminMedia      = "/media"
	RouteAdminUsers      = "/users"
	RouteAdminEvents     = "/events"
	RouteAdminForms      = "/forms"
)

// Admin list page sizes.
const (
	adminPerPage  = 20
	eventsPerPage = 50
)
