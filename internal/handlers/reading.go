package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookstore/internal/pagination"
	"bookstore/internal/services"
)

// progressRequest uses pointers throughout so an absent field is
// distinguishable from an explicit zero.
type progressRequest struct {
	ProgressPercent *float64 `json:"progress_percent"`
	CurrentChapter  *string  `json:"current_chapter"`
	CurrentLocation *string  `json:"current_location"`
	IsCompleted     *bool    `json:"is_completed"`
}

func (h *Handler) listReadingProgress(c *gin.Context) {
	user := currentUser(c)
	page, pageSize := pageParams(c)

	entries, meta, err := h.shelfSvc.ListProgress(user.ID, boolQuery(c, "is_completed"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.NewPage(entries, meta))
}

func (h *Handler) getReadingProgress(c *gin.Context) {
	user := currentUser(c)
	bookID, ok := uuidParam(c, "book_id")
	if !ok {
		return
	}
	progress, err := h.shelfSvc.GetProgress(user.ID, bookID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *Handler) upsertReadingProgress(c *gin.Context) {
	user := currentUser(c)
	bookID, ok := uuidParam(c, "book_id")
	if !ok {
		return
	}
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	progress, created, err := h.shelfSvc.UpsertProgress(user.ID, bookID, services.ProgressPatch{
		ProgressPercent: req.ProgressPercent,
		CurrentChapter:  req.CurrentChapter,
		CurrentLocation: req.CurrentLocation,
		IsCompleted:     req.IsCompleted,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, progress)
}
