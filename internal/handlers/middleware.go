package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bookstore/internal/models"
	"bookstore/internal/services"
)

const principalKey = "principal"

// requireAuth resolves the bearer token into a user and stores it on the
// request context. Missing or malformed headers short-circuit with 401.
func (h *Handler) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "missing authorization header"})
		return
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid authorization header"})
		return
	}

	user, err := h.authSvc.ResolvePrincipal(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(statusFor(err), gin.H{"detail": err.Error()})
		return
	}
	c.Set(principalKey, user)
	c.Next()
}

// requireAdmin must run after requireAuth. The admin decision itself belongs
// to the auth service; the middleware only translates it to a response.
func (h *Handler) requireAdmin(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": services.ErrAdminRequired.Error()})
		return
	}
	if err := h.authSvc.RequireAdmin(user); err != nil {
		c.AbortWithStatusJSON(statusFor(err), gin.H{"detail": err.Error()})
		return
	}
	c.Next()
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
