package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"libraryhub/internal/api/dto"
	"libraryhub/internal/api/middleware"
	"libraryhub/internal/api/models"
	"libraryhub/internal/api/service"
)

// CatalogHandler serves authors and genres.
type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	authors := rg.Group("/authors")
	{
		authors.POST("", h.CreateAuthor)
		authors.GET("", h.ListAuthors)
		authors.GET("/:id", h.GetAuthor)
		authors.PUT("/:id", h.UpdateAuthor)
		authors.DELETE("/:id", h.DeleteAuthor)
	}

	genres := rg.Group("/genres")
	{
		genres.POST("", h.CreateGenre)
		genres.GET("", h.ListGenres)
		genres.PUT("/:id", h.UpdateGenre)
		genres.DELETE("/:id", h.DeleteGenre)
	}
}

func (h *CatalogHandler) CreateAuthor(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req dto.CreateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	author, err := h.catalogService.CreateAuthor(ctx, actor, &models.Author{Name: req.Name, Bio: req.Bio})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, author)
}

func (h *CatalogHandler) GetAuthor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	author, err := h.catalogService.GetAuthor(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, author)
}

func (h *CatalogHandler) ListAuthors(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	authors, total, err := h.catalogService.ListAuthors(ctx, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":      authors,
		"pagination": dto.NewPagination(page, pageSize, total),
	})
}

func (h *CatalogHandler) UpdateAuthor(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	author, err := h.catalogService.UpdateAuthor(ctx, actor, &models.Author{ID: id, Name: req.Name, Bio: req.Bio})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, author)
}

func (h *CatalogHandler) DeleteAuthor(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.catalogService.DeleteAuthor(ctx, actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) CreateGenre(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req dto.CreateGenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	genre, err := h.catalogService.CreateGenre(ctx, actor, &models.Genre{Name: req.Name})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, genre)
}

func (h *CatalogHandler) ListGenres(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	genres, err := h.catalogService.ListGenres(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": genres})
}

func (h *CatalogHandler) UpdateGenre(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateGenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	genre, err := h.catalogService.UpdateGenre(ctx, actor, &models.Genre{ID: id, Name: req.Name})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, genre)
}

func (h *CatalogHandler) DeleteGenre(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.catalogService.DeleteGenre(ctx, actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
