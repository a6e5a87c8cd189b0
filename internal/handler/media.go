// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/0xSimbaDev/affiliate-website-sub002/internal/imaging"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/middleware"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/model"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/render"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/service"
	"github.com/0xSimbaDev/affiliate-website-sub002/internal/store"
)

// maxUploadSize caps media uploads at 10 MiB.
const maxUploadSize = 10 << 20

// MediaHandler manages image uploads for the selected site.
type MediaHandler struct {
	queries      *store.Queries
	renderer     *render.Renderer
	eventService *service.EventService
	processor    *imaging.Processor
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(db *sql.DB, renderer *render.Renderer, es *service.EventService, processor *imaging.Processor) *MediaHandler {
	return &MediaHandler{
		queries:      store.New(db),
		renderer:     renderer,
		eventService: es,
		processor:    processor,
	}
}

const adminMediaPath = RouteAdmin + RouteAdminMedia

// MediaListData is the payload of the media list template.
type MediaListData struct {
	Site       store.Site
	Media      []store.Media
	Pagination AdminPagination
}

// List renders the media library for the selected site.
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	site, err := selectedSite(r, h.queries)
	if err != nil {
		serverError(w, "resolving admin site", err)
		return
	}

	page := queryPage(r)
	total, err := h.queries.CountMediaBySite(r.Context(), site.ID)
	if err != nil {
		serverError(w, "counting media", err)
		return
	}
	media, err := h.queries.ListMediaBySite(r.Context(), store.ListMediaBySiteParams{
		SiteID: site.ID,
		Limit:  adminPerPage,
		Offset: int64((page - 1) * adminPerPage),
	})
	if err != nil {
		serverError(w, "listing media", err)
		return
	}

	err = h.renderer.Render(w, r, "admin/media", render.TemplateData{
		Title:     "Media",
		User:      middleware.GetUser(r),
		CSRFToken: middleware.Token(r),
		Data: MediaListData{
			Site:       site,
			Media:      media,
			Pagination: BuildAdminPagination(page, total, adminPerPage, adminMediaPath, r.URL.Query()),
		},
	})
	if err != nil {
		serverError(w, "rendering media", err)
	}
}

// Upload processes a multipart image upload: the normalized original is
// saved, derived sizes generated, and a media row created.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	site, err := selectedSite(r, h.queries)
	if err != nil {
		serverError(w, "resolving admin site", err)
		return
	}
	if !middleware.CanManageSite(middleware.GetUser(r), site.ID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		flashError(w, r, h.renderer, adminMediaPath, "Upload too large (max 10 MB)")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		flashError(w, r, h.renderer, adminMediaPath, "No file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		flashError(w, r, h.renderer, adminMediaPath, "Could not read upload")
		return
	}

	mimeType := h.processor.DetectMimeType(data)
	if !h.processor.IsImage(mimeType) {
		flashError(w, r, h.renderer, adminMediaPath, "Unsupported file type")
		return
	}

	id := uuid.New().String()
	result, err := h.processor.ProcessImage(bytes.NewReader(data), id, header.Filename)
	if err != nil {
		slog.Error("processing upload", "filename", header.Filename, "error", err)
		flashError(w, r, h.renderer, adminMediaPath, "Could not process image")
		return
	}

	if _, err := h.processor.CreateAllVariants(result.FilePath, id, header.Filename); err != nil {
		slog.Warn("creating image variants", "uuid", id, "error", err)
	}

	media, err := h.queries.CreateMedia(r.Context(), store.CreateMediaParams{
		SiteID:       site.ID,
		UUID:         id,
		Filename:     header.Filename,
		OriginalName: header.Filename,
		MimeType:     result.MimeType,
		Size:         result.Size,
		Width:        int64(result.Width),
		Height:       int64(result.Height),
		AltText:      formValue(r, "alt_text"),
		CreatedAt:    time.Now(),
	})
	if err != nil {
		slog.Error("storing media row", "uuid", id, "error", err)
		flashError(w, r, h.renderer, adminMediaPath, "Could not store media")
		return
	}

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogEvent(r.Context(), model.EventLevelInfo, model.EventCategoryMedia,
		"Media uploaded", &userID, middleware.ClientIP(r),
		map[string]any{"uuid": media.UUID, "filename": media.Filename, "site": site.Slug})
	flashSuccess(w, r, h.renderer, adminMediaPath, "Image uploaded")
}

// UpdateAltText saves the alt text of a media row.
func (h *MediaHandler) UpdateAltText(w http.ResponseWriter, r *http.Request) {
	media, ok := h.loadMedia(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, adminMediaPath, "Invalid form submission")
		return
	}

	if err := h.queries.UpdateMediaAltText(r.Context(), media.ID, formValue(r, "alt_text")); err != nil {
		slog.Error("updating media alt text", "id", media.ID, "error", err)
		flashError(w, r, h.renderer, adminMediaPath, "Could not update alt text")
		return
	}
	flashSuccess(w, r, h.renderer, adminMediaPath, "Alt text updated")
}

// Delete removes a media row and its files.
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	media, ok := h.loadMedia(w, r)
	if !ok {
		return
	}

	if err := h.processor.DeleteMediaFiles(media.UUID); err != nil {
		slog.Warn("deleting media files", "uuid", media.UUID, "error", err)
	}
	if err := h.queries.DeleteMedia(r.Context(), media.ID); err != nil {
		slog.Error("deleting media row", "id", media.ID, "error", err)
		flashError(w, r, h.renderer, adminMediaPath, "Could not delete media")
		return
	}

	userID := middleware.GetUserID(r)
	_ = h.eventService.LogEvent(r.Context(), model.EventLevelInfo, model.EventCategoryMedia,
		"Media deleted", &userID, middleware.ClientIP(r), map[string]any{"uuid": media.UUID})
	flashSuccess(w, r, h.renderer, adminMediaPath, "Media deleted")
}

// loadMedia fetches the media row behind {id} and verifies site access.
func (h *MediaHandler) loadMedia(w http.ResponseWriter, r *http.Request) (store.Media, bool) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, adminMediaPath, "Invalid media")
		return store.Media{}, false
	}
	media, err := h.queries.GetMediaByID(r.Context(), id)
	if err != nil {
		flashError(w, r, h.renderer, adminMediaPath, "Media not found")
		return store.Media{}, false
	}
	if !middleware.CanManageSite(middleware.GetUser(r), media.SiteID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return store.Media{}, false
	}
	return media, true
}
