// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/middleware"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/render"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

// FormHandler serves contact form submissions in the admin console.
type FormHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(db *sql.DB, renderer *render.Renderer) *FormHandler {
	return &FormHandler{queries: store.New(db), renderer: renderer}
}

// FormListData is the payload of the submissions template.
type FormListData struct {
	Site        store.Site
	Submissions []store.FormSubmission
}

// List renders the contact form submissions of the selected site.
func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	site, err := selectedSite(r, h.queries)
	if err != nil {
		serverError(w, "resolving admin site", err)
		return
	}

	subs, err := h.queries.ListFormSubmissionsBySite(r.Context(), site.ID, 200)
	if err != nil {
		serverError(w, "listing form submissions", err)
		return
	}

	err = h.renderer.Render(w, r, "admin/forms", render.TemplateData{
		Title:     "Form Submissions",
		User:      middleware.GetUser(r),
		CSRFToken: middleware.Token(r),
		Data: FormListData{
			Site:        site,
			Submissions: subs,
		},
	})
	if err != nil {
		serverError(w, "rendering form submissions", err)
	}
}
