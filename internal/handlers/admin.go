package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) salesByDay(c *gin.Context) {
	days := intQuery(c, "days", 30, 1, 90)
	rows, err := h.statsSvc.SalesByDay(days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days, "sales": rows})
}

func (h *Handler) topBooks(c *gin.Context) {
	limit := intQuery(c, "limit", 10, 1, 50)
	rows, err := h.statsSvc.TopBooks(limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"limit": limit, "books": rows})
}

func (h *Handler) statsSummary(c *gin.Context) {
	summary, err := h.statsSvc.Summary()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
