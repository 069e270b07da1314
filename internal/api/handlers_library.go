// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/waypoint/internal/auth"
	"github.com/tomtom215/waypoint/internal/events"
	"github.com/tomtom215/waypoint/internal/library"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/validation"
)

const maxItemBody = 256 << 10

// LikesPage is the body of GET /likes.
type LikesPage struct {
	Items   []models.MapMarkerCandidate `json:"items"`
	HasMore bool                        `json:"hasMore"`
	Offset  int                         `json:"offset"`
	Limit   int                         `json:"limit"`
}

// CreateCollectionRequest is the body of POST /collections.
type CreateCollectionRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

// AddItemRequest is the body of POST /collections/{collectionID}/items.
// Item, when present, is stored before it is added.
type AddItemRequest struct {
	ItemID string                     `json:"itemId" validate:"required,resource_id"`
	Item   *models.MapMarkerCandidate `json:"item,omitempty"`
}

// Likes lists the caller's liked items, most recent first.
//
// @Summary List liked items
// @Tags Library
// @Produce json
// @Param offset query int false "Offset" default(0)
// @Param limit query int false "Page size"
// @Success 200 {object} models.APIResponse{data=LikesPage}
// @Failure 401 {object} models.APIResponse "Authentication required"
// @Security BearerAuth
// @Router /likes [get]
func (h *Handler) Likes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !h.requireLibrary(w) {
		return
	}
	offset := getIntParam(r, "offset", 0)
	limit := getIntParam(r, "limit", h.config.Server.DefaultPageSize)
	if offset < 0 {
		offset = 0
	}
	if maxSize := h.config.Server.MaxPageSize; maxSize > 0 && (limit <= 0 || limit > maxSize) {
		limit = maxSize
	}

	items, hasMore, err := h.library.LikedItems(r.Context(), auth.UserID(r.Context()), offset, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to load likes", err)
		return
	}
	respondSuccess(w, http.StatusOK, LikesPage{Items: items, HasMore: hasMore, Offset: offset, Limit: limit}, start)
}

// LikeItem likes an item. The optional body is the item itself, stored
// before the like so new places can be liked in one call.
//
// @Summary Like an item
// @Tags Library
// @Accept json
// @Produce json
// @Param itemID path string true "Item id"
// @Param item body models.MapMarkerCandidate false "Item to store"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse "Unknown item"
// @Security BearerAuth
// @Router /likes/{itemID} [put]
func (h *Handler) LikeItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !h.requireLibrary(w) {
		return
	}
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}
	if !h.storeOptionalItem(w, r, itemID) {
		return
	}

	userID := auth.UserID(r.Context())
	if err := h.library.Like(r.Context(), userID, itemID); err != nil {
		h.respondLibraryError(w, "Failed to like item", err)
		return
	}
	h.publish(r.Context(), events.LikesChanged(userID, events.ReasonLike))
	respondSuccess(w, http.StatusOK, map[string]interface{}{"itemId": itemID, "liked": true}, start)
}

// UnlikeItem removes a like.
//
// @Summary Unlike an item
// @Tags Library
// @Produce json
// @Param itemID path string true "Item id"
// @Success 200 {object} models.APIResponse
// @Security BearerAuth
// @Router /likes/{itemID} [delete]
func (h *Handler) UnlikeItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !h.requireLibrary(w) {
		return
	}
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}
	userID := auth.UserID(r.Context())
	removed, err := h.library.Unlike(r.Context(), userID, itemID)
	if err != nil {
		h.respondLibraryError(w, "Failed to unlike item", err)
		return
	}
	if removed {
		h.publish(r.Context(), events.LikesChanged(userID, events.ReasonUnlike))
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"itemId": itemID, "removed": removed}, start)
}

// CreateCollection creates an empty collection owned by the caller.
//
// @Summary Create a collection
// @Tags Library
// @Accept json
// @Produce json
// @Param request body CreateCollectionRequest true "Collection"
// @Success 201 {object} models.APIResponse{data=models.Collection}
// @Failure 400 {object} models.APIResponse "Invalid body"
// @Security BearerAuth
// @Router /collections [post]
func (h *Handler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !h.requireLibrary(w) {
		return
	}
	var req CreateCollectionRequest
	if !decodeBody(w, r, maxItemBody, &req) {
		return
	}
	userID := auth.UserID(r.Context())
	col, err := h.library.CreateCollection(r.Context(), userID, req.Name)
	if err != nil {
		h.respondLibraryError(w, "Failed to create collection", err)
		return
	}
	h.publish(r.Context(), events.CollectionChanged(userID, "", events.ReasonCollectionCreate))
	respondSuccess(w, http.StatusCreated, col, start)
}

// AddCollectionItem adds an item to a collection the caller may manage.
//
// @Summary Add an item to a collection
// @Tags Library
// @Accept json
// @Produce json
// @Param collectionID path string true "Collection id"
// @Param request body AddItemRequest true "Item"
// @Success 200 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse "Not the owner"
// @Failure 404 {object} models.APIResponse "Unknown collection or item"
// @Security BearerAuth
// @Router /collections/{collectionID}/items [post]
func (h *Handler) AddCollectionItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !h.requireLibrary(w) {
		return
	}
	collectionID, ok := pathID(w, r, "collectionID")
	if !ok {
		return
	}
	var req AddItemRequest
	if !decodeBody(w, r, maxItemBody, &req) {
		return
	}

	owner, err := h.library.CollectionOwner(r.Context(), collectionID)
	if err != nil {
		h.respondLibraryError(w, "Failed to load collection", err)
		return
	}
	if !h.canManageCollection(r, owner) {
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "You cannot modify this collection", nil)
		return
	}

	if req.Item != nil {
		item := *req.Item
		item.ID = req.ItemID
		if err := h.library.UpsertItem(r.Context(), &item); err != nil {
			respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to store item", err)
			return
		}
	}
	if err := h.library.AddToCollection(r.Context(), collectionID, req.ItemID); err != nil {
		h.respondLibraryError(w, "Failed to add item", err)
		return
	}
	h.publish(r.Context(), events.CollectionChanged(owner, collectionID, events.ReasonCollectionAdd))
	respondSuccess(w, http.StatusOK, map[string]interface{}{"collectionId": collectionID, "itemId": req.ItemID}, start)
}

// ListCollections returns the caller's collections with their items.
//
// @Summary List collections
// @Tags Library
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.Collection}
// @Security BearerAuth
// @Router /collections [get]
func (h *Handler) ListCollections(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !h.requireLibrary(w) {
		return
	}
	cols, err := h.library.Collections(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.respondLibraryError(w, "Failed to load collections", err)
		return
	}
	if cols == nil {
		cols = []models.Collection{}
	}
	respondSuccess(w, http.StatusOK, cols, start)
}

func (h *Handler) canManageCollection(r *http.Request, owner string) bool {
	subject := auth.SubjectFromContext(r.Context())
	if h.enforcer != nil {
		return h.enforcer.CanManageCollection(subject, owner)
	}
	return subject != nil && subject.UserID == owner
}

// storeOptionalItem upserts the request body as item itemID when a body is
// present.
func (h *Handler) storeOptionalItem(w http.ResponseWriter, r *http.Request, itemID string) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxItemBody))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "Request body too large", nil)
		return false
	}
	if len(body) == 0 {
		return true
	}
	var item models.MapMarkerCandidate
	if err := json.Unmarshal(body, &item); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid item body", nil)
		return false
	}
	item.ID = itemID
	if err := h.library.UpsertItem(r.Context(), &item); err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to store item", err)
		return false
	}
	return true
}

func (h *Handler) requireLibrary(w http.ResponseWriter) bool {
	if h.library == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, ErrLibraryDisabled.Error(), nil)
		return false
	}
	return true
}

func (h *Handler) respondLibraryError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, library.ErrNotFound) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, err.Error(), nil)
		return
	}
	respondError(w, http.StatusInternalServerError, ErrCodeInternal, message, err)
}

// pathID reads and validates a chi URL parameter.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := chi.URLParam(r, name)
	if verr := validation.ValidateVar(name, id, "required,resource_id"); verr != nil {
		respondAPIError(w, http.StatusBadRequest, verr.ToAPIError())
		return "", false
	}
	return id, true
}
