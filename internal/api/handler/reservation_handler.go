package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"libraryhub/internal/api/dto"
	"libraryhub/internal/api/middleware"
	"libraryhub/internal/api/repository"
	"libraryhub/internal/api/service"
)

type ReservationHandler struct {
	reservationService service.ReservationService
}

func NewReservationHandler(reservationService service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

func (h *ReservationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reservations := rg.Group("/reservations")
	{
		reservations.POST("", h.Create)
		reservations.GET("", h.List)
		reservations.DELETE("/:id", h.Cancel)
	}
}

func (h *ReservationHandler) Create(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	reservation, err := h.reservationService.Create(ctx, actor, req.BookID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromModelToReservationResponse(reservation, time.Now()))
}

func (h *ReservationHandler) Cancel(c *gin.Context) {
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

	if err := h.reservationService.Cancel(ctx, actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReservationHandler) List(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	params := repository.ListReservationsParams{
		UserID:      c.Query("user_id"), // staff only; overridden for members
		BookID:      queryInt64Ptr(c, "book_id"),
		ExpiredOnly: c.Query("expired") == "true",
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "page_size", 20),
	}

	reservations, total, err := h.reservationService.List(ctx, actor, params)
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	items := make([]dto.ReservationResponse, 0, len(reservations))
	for i := range reservations {
		items = append(items, *dto.FromModelToReservationResponse(&reservations[i], now))
	}
	c.JSON(http.StatusOK, dto.ReservationListResponse{
		Items:      items,
		Pagination: dto.NewPagination(params.Page, params.PageSize, total),
	})
}
