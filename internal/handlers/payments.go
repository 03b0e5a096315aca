package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type paymentInitRequest struct {
	BookID uuid.UUID `json:"book_id" binding:"required"`
}

func (h *Handler) initPayment(c *gin.Context) {
	user := currentUser(c)
	var req paymentInitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	// The amount always comes from the catalog, never from the client.
	book, err := h.catalogSvc.GetBook(req.BookID)
	if err != nil {
		respondError(c, err)
		return
	}

	session, err := h.payments.CreateSession(user.ID, book.ID, book.PriceCents, book.Currency)
	if err != nil {
		log.Printf("[ERROR] initPayment: provider %s rejected session for user %s / book %s: %v",
			h.payments.Name(), user.ID, book.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"detail": "payment provider unavailable"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// paymentWebhook is authenticated by the provider's signature, not by a bearer
// token. Replayed events for an already-recorded transaction are acknowledged
// without side effects.
func (h *Handler) paymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badRequest(c, "unreadable payload")
		return
	}
	headers := make(map[string]string, len(c.Request.Header))
	for k := range c.Request.Header {
		headers[k] = c.GetHeader(k)
	}

	event, err := h.payments.VerifyWebhook(payload, headers)
	if err != nil {
		log.Printf("[WARN] paymentWebhook: signature verification failed: %v", err)
		badRequest(c, "invalid webhook signature")
		return
	}

	resp := gin.H{"status": "ok", "event": event.Type}
	if event.TransactionID != "" {
		if purchase, err := h.shelfSvc.FindPurchaseByTransaction(event.TransactionID); err == nil {
			log.Printf("[INFO] paymentWebhook: transaction %s already recorded, acknowledging replay", event.TransactionID)
			resp["purchase_id"] = purchase.ID
		}
	}
	c.JSON(http.StatusOK, resp)
}
