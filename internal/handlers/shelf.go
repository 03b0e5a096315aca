package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookstore/internal/models"
	"bookstore/internal/pagination"
)

type addBookRequest struct {
	BookID uuid.UUID `json:"book_id" binding:"required"`
}

// ─── Wishlist ─────────────────────────────────────────────────────────────────

func (h *Handler) listWishlist(c *gin.Context) {
	user := currentUser(c)
	page, pageSize := pageParams(c)

	entries, meta, err := h.shelfSvc.ListWishlist(user.ID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.NewPage(entries, meta))
}

func (h *Handler) addToWishlist(c *gin.Context) {
	user := currentUser(c)
	var req addBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	entry, err := h.shelfSvc.AddToWishlist(user.ID, req.BookID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) getWishlistEntry(c *gin.Context) {
	user := currentUser(c)
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	entry, err := h.shelfSvc.GetWishlistEntry(user.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) removeFromWishlist(c *gin.Context) {
	user := currentUser(c)
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.shelfSvc.RemoveFromWishlist(user.ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ─── Library ──────────────────────────────────────────────────────────────────

func (h *Handler) listLibrary(c *gin.Context) {
	user := currentUser(c)
	page, pageSize := pageParams(c)

	entries, meta, err := h.shelfSvc.ListLibrary(user.ID, c.Query("q"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.NewPage(entries, meta))
}

func (h *Handler) addToLibrary(c *gin.Context) {
	user := currentUser(c)
	var req addBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	// Clients may only add manual entries; purchase rows come from purchases.
	entry, err := h.shelfSvc.AddToLibrary(user.ID, req.BookID, models.LibrarySourceManual)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) getLibraryEntry(c *gin.Context) {
	user := currentUser(c)
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	entry, err := h.shelfSvc.GetLibraryEntry(user.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) removeFromLibrary(c *gin.Context) {
	user := currentUser(c)
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.shelfSvc.RemoveFromLibrary(user.ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
