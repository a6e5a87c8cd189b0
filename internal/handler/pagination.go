// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/url"
)

// AdminPagination holds pagination data for admin templates.
type AdminPagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int64
	PerPage     int
	HasPrev     bool
	HasNext     bool
	PrevPage    int
	NextPage    int
	Pages       []AdminPaginationPage
	BaseURL     string
	QueryString string
}

// AdminPaginationPage is a single page link in admin pagination.
type AdminPaginationPage struct {
	Number    int
	URL       string
	IsCurrent bool
}

// BuildAdminPagination creates pagination data for admin list templates.
// baseURL is the path without query string; queryParams are preserved on
// every page link, minus page itself.
func BuildAdminPagination(currentPage int, totalItems int64, perPage int, baseURL string, queryParams url.Values) AdminPagination {
	totalPages := int((totalItems + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}
	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > totalPages {
		currentPage = totalPages
	}

	p := AdminPagination{
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		PerPage:     perPage,
		HasPrev:     currentPage > 1,
		HasNext:     currentPage < totalPages,
		PrevPage:    currentPage - 1,
		NextPage:    currentPage + 1,
		BaseURL:     baseURL,
	}

	if queryParams != nil {
		params := make(url.Values)
		for k, v := range queryParams {
			if k != "page" && len(v) > 0 && v[0] != "" {
				params[k] = v
			}
		}
		if len(params) > 0 {
			p.QueryString = params.Encode()
		}
	}

	buildURL := func(page int) string {
		if p.QueryString != "" {
			return fmt.Sprintf("%s?%s&page=%d", baseURL, p.QueryString, page)
		}
		return fmt.Sprintf("%s?page=%d", baseURL, page)
	}

	for i := 1; i <= totalPages; i++ {
		p.Pages = append(p.Pages, AdminPaginationPage{
			Number:    i,
			URL:       buildURL(i),
			IsCurrent: i == currentPage,
		})
	}

	return p
}
