package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookstore/internal/auth"
	"bookstore/internal/services"
)

// respondError maps service-layer sentinels onto HTTP statuses. Anything
// unrecognised is logged and reported as a bare 500 so internals never leak.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, gin.H{"detail": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"detail": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrWrongTokenKind),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInactiveUser):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrAdminRequired):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrInvalidAssertion),
		errors.Is(err, auth.ErrUnverifiedEmail),
		errors.Is(err, auth.ErrMissingEmailClaim),
		errors.Is(err, services.ErrInvalidProgress):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrBookNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrWishlistEntryNotFound),
		errors.Is(err, services.ErrLibraryEntryNotFound),
		errors.Is(err, services.ErrPurchaseNotFound),
		errors.Is(err, services.ErrProgressNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrSlugTaken),
		errors.Is(err, services.ErrAlreadyInWishlist),
		errors.Is(err, services.ErrAlreadyInLibrary),
		errors.Is(err, services.ErrAlreadyPurchased):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": msg})
}
