package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookstore/internal/pagination"
	"bookstore/internal/services"
)

type purchaseRequest struct {
	BookID        uuid.UUID `json:"book_id" binding:"required"`
	PriceCents    int       `json:"price_cents" binding:"min=0"`
	Currency      string    `json:"currency"`
	TransactionID *string   `json:"transaction_id"`
}

func (h *Handler) listPurchases(c *gin.Context) {
	user := currentUser(c)
	page, pageSize := pageParams(c)

	purchases, meta, err := h.shelfSvc.ListPurchases(user.ID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.NewPage(purchases, meta))
}

func (h *Handler) createPurchase(c *gin.Context) {
	user := currentUser(c)
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	purchase, err := h.shelfSvc.CreatePurchase(user.ID, services.PurchaseInput{
		BookID:        req.BookID,
		PriceCents:    req.PriceCents,
		Currency:      req.Currency,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func (h *Handler) getPurchase(c *gin.Context) {
	user := currentUser(c)
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	purchase, err := h.shelfSvc.GetPurchase(user.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}
