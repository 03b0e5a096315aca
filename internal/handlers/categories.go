package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookstore/internal/pagination"
	"bookstore/internal/services"
)

type categoryCreateRequest struct {
	Name string  `json:"name" binding:"required"`
	Slug *string `json:"slug"`
}

type categoryUpdateRequest struct {
	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

func (h *Handler) listCategories(c *gin.Context) {
	page, pageSize := pageParams(c)
	categories, meta, err := h.catalogSvc.ListCategories(c.Query("q"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.NewPage(categories, meta))
}

func (h *Handler) getCategory(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	category, err := h.catalogSvc.GetCategory(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) getCategoryBySlug(c *gin.Context) {
	category, err := h.catalogSvc.GetCategoryBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) createCategory(c *gin.Context) {
	var req categoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	category, err := h.catalogSvc.CreateCategory(services.CategoryInput{Name: req.Name, Slug: req.Slug})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) updateCategory(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req categoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	category, err := h.catalogSvc.UpdateCategory(id, services.CategoryPatch{Name: req.Name, Slug: req.Slug})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) deleteCategory(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogSvc.DeleteCategory(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
