package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"libraryhub/internal/api/dto"
	"libraryhub/internal/api/middleware"
	"libraryhub/internal/api/repository"
	"libraryhub/internal/api/service"
)

type FineHandler struct {
	fineService service.FineService
}

func NewFineHandler(fineService service.FineService) *FineHandler {
	return &FineHandler{fineService: fineService}
}

func (h *FineHandler) RegisterRoutes(rg *gin.RouterGroup) {
	fines := rg.Group("/fines")
	{
		fines.GET("", h.List)
		fines.GET("/:id", h.Get)
		fines.PUT("/:id/pay", h.Pay)
	}
}

func (h *FineHandler) Get(c *gin.Context) {
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

	fine, err := h.fineService.Get(ctx, actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToFineResponse(fine))
}

func (h *FineHandler) Pay(c *gin.Context) {
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

	fine, err := h.fineService.Pay(ctx, actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToFineResponse(fine))
}

func (h *FineHandler) List(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	params := repository.ListFinesParams{
		UserID:   c.Query("user_id"), // staff only; overridden for members
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	if raw := c.Query("paid"); raw != "" {
		if paid, err := strconv.ParseBool(raw); err == nil {
			params.Paid = &paid
		}
	}

	fines, total, err := h.fineService.List(ctx, actor, params)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]dto.FineResponse, 0, len(fines))
	for i := range fines {
		items = append(items, *dto.FromModelToFineResponse(&fines[i]))
	}
	c.JSON(http.StatusOK, dto.FineListResponse{
		Items:      items,
		Pagination: dto.NewPagination(params.Page, params.PageSize, total),
	})
}
