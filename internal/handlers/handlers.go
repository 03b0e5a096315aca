package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookstore/internal/payments"
	"bookstore/internal/services"
	"bookstore/internal/storage"
)

// Handler bundles the services behind the HTTP surface. It holds no state of
// its own; every request is independent.
type Handler struct {
	authSvc    services.AuthService
	catalogSvc services.CatalogService
	shelfSvc   services.ShelfService
	statsSvc   services.StatsService
	storage    storage.Backend
	payments   payments.Provider
}

func RegisterRoutes(
	r *gin.Engine,
	authSvc services.AuthService,
	catalogSvc services.CatalogService,
	shelfSvc services.ShelfService,
	statsSvc services.StatsService,
	storageBackend storage.Backend,
	paymentProvider payments.Provider,
) {
	h := &Handler{
		authSvc:    authSvc,
		catalogSvc: catalogSvc,
		shelfSvc:   shelfSvc,
		statsSvc:   statsSvc,
		storage:    storageBackend,
		payments:   paymentProvider,
	}

	r.GET("/", h.health)

	// Auth endpoints
	authGroup := r.Group("/auth")
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)
	authGroup.POST("/refresh", h.refreshTokens)
	authGroup.POST("/google", h.googleSignIn)

	// Catalog endpoints; browsing is public, mutation is admin-only.
	books := r.Group("/books")
	books.GET("", h.listBooks)
	books.GET("/:id", h.getBook)
	books.POST("", h.requireAuth, h.requireAdmin, h.createBook)
	books.PATCH("/:id", h.requireAuth, h.requireAdmin, h.updateBook)
	books.DELETE("/:id", h.requireAuth, h.requireAdmin, h.deleteBook)

	categories := r.Group("/categories")
	categories.GET("", h.listCategories)
	categories.GET("/:id", h.getCategory)
	categories.GET("/slug/:slug", h.getCategoryBySlug)
	categories.POST("", h.requireAuth, h.requireAdmin, h.createCategory)
	categories.PATCH("/:id", h.requireAuth, h.requireAdmin, h.updateCategory)
	categories.DELETE("/:id", h.requireAuth, h.requireAdmin, h.deleteCategory)

	// Per-user collections
	wishlist := r.Group("/wishlist", h.requireAuth)
	wishlist.GET("", h.listWishlist)
	wishlist.POST("", h.addToWishlist)
	wishlist.GET("/:id", h.getWishlistEntry)
	wishlist.DELETE("/:id", h.removeFromWishlist)

	library := r.Group("/library", h.requireAuth)
	library.GET("", h.listLibrary)
	library.POST("", h.addToLibrary)
	library.GET("/:id", h.getLibraryEntry)
	library.DELETE("/:id", h.removeFromLibrary)

	purchases := r.Group("/purchases", h.requireAuth)
	purchases.GET("", h.listPurchases)
	purchases.POST("", h.createPurchase)
	purchases.GET("/:id", h.getPurchase)

	reading := r.Group("/reading", h.requireAuth)
	reading.GET("", h.listReadingProgress)
	reading.GET("/:book_id", h.getReadingProgress)
	reading.PUT("/:book_id", h.upsertReadingProgress)

	// Storage presigning
	storageGroup := r.Group("/storage", h.requireAuth)
	storageGroup.POST("/presign/upload", h.presignUpload)
	storageGroup.POST("/presign/download", h.presignDownload)

	// Payments; the webhook is authenticated by provider signature, not bearer.
	paymentsGroup := r.Group("/payments")
	paymentsGroup.POST("/init", h.requireAuth, h.initPayment)
	paymentsGroup.POST("/webhook", h.paymentWebhook)

	// Admin aggregates
	admin := r.Group("/admin", h.requireAuth, h.requireAdmin)
	admin.GET("/stats/sales_by_day", h.salesByDay)
	admin.GET("/stats/top_books", h.topBooks)
	admin.GET("/stats/summary", h.statsSummary)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
