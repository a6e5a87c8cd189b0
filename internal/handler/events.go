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

// EventHandler serves the event log. Admin only.
type EventHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(db *sql.DB, renderer *render.Renderer) *EventHandler {
	return &EventHandler{queries: store.New(db), renderer: renderer}
}

const adminEventsPath = RouteAdmin + RouteAdminEvents

// EventListData is the payload of the event list template.
type EventListData struct {
	Events     []store.Event
	Pagination AdminPagination
}

// List renders the event log, newest first.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryPage(r)
	total, err := h.queries.CountEvents(r.Context())
	if err != nil {
		serverError(w, "counting events", err)
		return
	}
	events, err := h.queries.ListEvents(r.Context(), store.ListEventsParams{
		Limit:  eventsPerPage,
		Offset: int64((page - 1) * eventsPerPage),
	})
	if err != nil {
		serverError(w, "listing events", err)
		return
	}

	err = h.renderer.Render(w, r, "admin/events", render.TemplateData{
		Title:     "Event Log",
		User:      middleware.GetUser(r),
		CSRFToken: middleware.Token(r),
		Data: EventListData{
			Events:     events,
			Pagination: BuildAdminPagination(page, total, eventsPerPage, adminEventsPath, r.URL.Query()),
		},
	})
	if err != nil {
		serverError(w, "rendering events", err)
	}
}
