package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookstore/internal/pagination"
	"bookstore/internal/repositories"
	"bookstore/internal/services"
)

type bookCreateRequest struct {
	Title         string      `json:"title" binding:"required"`
	Author        string      `json:"author" binding:"required"`
	Description   *string     `json:"description"`
	CoverImageURL *string     `json:"cover_image_url"`
	FileURL       *string     `json:"file_url"`
	SampleFileURL *string     `json:"sample_file_url"`
	PriceCents    int         `json:"price_cents" binding:"min=0"`
	Currency      string      `json:"currency"`
	PublishedDate *time.Time  `json:"published_date"`
	ISBN          *string     `json:"isbn"`
	Language      *string     `json:"language"`
	PageCount     *int        `json:"page_count"`
	Rating        *float64    `json:"rating"`
	CategoryIDs   []uuid.UUID `json:"category_ids"`
}

type bookUpdateRequest struct {
	Title         *string      `json:"title"`
	Author        *string      `json:"author"`
	Description   *string      `json:"description"`
	CoverImageURL *string      `json:"cover_image_url"`
	FileURL       *string      `json:"file_url"`
	SampleFileURL *string      `json:"sample_file_url"`
	PriceCents    *int         `json:"price_cents"`
	Currency      *string      `json:"currency"`
	PublishedDate *time.Time   `json:"published_date"`
	ISBN          *string      `json:"isbn"`
	Language      *string      `json:"language"`
	PageCount     *int         `json:"page_count"`
	Rating        *float64     `json:"rating"`
	CategoryIDs   *[]uuid.UUID `json:"category_ids"`
}

func bookFiltersFromQuery(c *gin.Context) (repositories.BookFilters, error) {
	filters := repositories.BookFilters{
		Query:        c.Query("q"),
		Author:       c.Query("author"),
		CategorySlug: c.Query("category_slug"),
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, err
		}
		filters.CategoryID = &id
	}
	filters.PriceMin = intQueryPtr(c, "price_min")
	filters.PriceMax = intQueryPtr(c, "price_max")
	return filters, nil
}

func (h *Handler) listBooks(c *gin.Context) {
	filters, err := bookFiltersFromQuery(c)
	if err != nil {
		badRequest(c, "invalid category_id")
		return
	}
	page, pageSize := pageParams(c)

	books, meta, err := h.catalogSvc.ListBooks(filters, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.NewPage(books, meta))
}

func (h *Handler) getBook(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	book, err := h.catalogSvc.GetBook(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *Handler) createBook(c *gin.Context) {
	var req bookCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	book, err := h.catalogSvc.CreateBook(services.BookInput{
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		CoverImageURL: req.CoverImageURL,
		FileURL:       req.FileURL,
		SampleFileURL: req.SampleFileURL,
		PriceCents:    req.PriceCents,
		Currency:      req.Currency,
		PublishedDate: req.PublishedDate,
		ISBN:          req.ISBN,
		Language:      req.Language,
		PageCount:     req.PageCount,
		Rating:        req.Rating,
		CategoryIDs:   req.CategoryIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (h *Handler) updateBook(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req bookUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	book, err := h.catalogSvc.UpdateBook(id, services.BookPatch{
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		CoverImageURL: req.CoverImageURL,
		FileURL:       req.FileURL,
		SampleFileURL: req.SampleFileURL,
		PriceCents:    req.PriceCents,
		Currency:      req.Currency,
		PublishedDate: req.PublishedDate,
		ISBN:          req.ISBN,
		Language:      req.Language,
		PageCount:     req.PageCount,
		Rating:        req.Rating,
		CategoryIDs:   req.CategoryIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *Handler) deleteBook(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogSvc.DeleteBook(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
