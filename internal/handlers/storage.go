package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	minPresignSeconds = 1
	maxPresignSeconds = 3600
)

type presignRequest struct {
	Key       string `json:"key" binding:"required"`
	ExpiresIn int    `json:"expires_in"`
}

func presignTTL(seconds int) (time.Duration, bool) {
	if seconds == 0 {
		seconds = 900
	}
	if seconds < minPresignSeconds || seconds > maxPresignSeconds {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}

func (h *Handler) presignUpload(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ttl, ok := presignTTL(req.ExpiresIn)
	if !ok {
		badRequest(c, "expires_in must be between 1 and 3600 seconds")
		return
	}

	url, fields, err := h.storage.PresignUpload(req.Key, ttl)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "fields": fields})
}

func (h *Handler) presignDownload(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ttl, ok := presignTTL(req.ExpiresIn)
	if !ok {
		badRequest(c, "expires_in must be between 1 and 3600 seconds")
		return
	}

	url, err := h.storage.PresignDownload(req.Key, ttl)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
