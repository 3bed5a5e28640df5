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

// LibraryHandler serves libraries and their circulation policies. The policy
// lives under its library because there is exactly one per library.
type LibraryHandler struct {
	catalogService service.CatalogService
	policyService  service.PolicyService
}

func NewLibraryHandler(catalogService service.CatalogService, policyService service.PolicyService) *LibraryHandler {
	return &LibraryHandler{catalogService: catalogService, policyService: policyService}
}

func (h *LibraryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	libraries := rg.Group("/libraries")
	{
		libraries.POST("", h.Create)
		libraries.GET("", h.List)
		libraries.GET("/:id", h.Get)
		libraries.PUT("/:id", h.Update)
		libraries.DELETE("/:id", h.Delete)
		libraries.GET("/:id/policy", h.GetPolicy)
		libraries.PUT("/:id/policy", h.UpsertPolicy)
	}
}

func (h *LibraryHandler) Create(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req dto.CreateLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	library, err := h.catalogService.CreateLibrary(ctx, actor, &models.Library{Name: req.Name, Address: req.Address})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, library)
}

func (h *LibraryHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	library, err := h.catalogService.GetLibrary(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, library)
}

func (h *LibraryHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	libraries, total, err := h.catalogService.ListLibraries(ctx, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":      libraries,
		"pagination": dto.NewPagination(page, pageSize, total),
	})
}

func (h *LibraryHandler) Update(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	library, err := h.catalogService.UpdateLibrary(ctx, actor, &models.Library{ID: id, Name: req.Name, Address: req.Address})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, library)
}

func (h *LibraryHandler) Delete(c *gin.Context) {
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

	if err := h.catalogService.DeleteLibrary(ctx, actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LibraryHandler) GetPolicy(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	policy, err := h.policyService.GetByLibrary(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, policy)
}

func (h *LibraryHandler) UpsertPolicy(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpsertPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	policy, err := h.policyService.Upsert(ctx, actor, &models.Policy{
		LibraryID:             id,
		MaxBorrowDays:         req.MaxBorrowDays,
		FinePerDay:            req.FinePerDay,
		MaxBooksPerUser:       req.MaxBooksPerUser,
		ReservationExpiryDays: req.ReservationExpiryDays,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, policy)
}
