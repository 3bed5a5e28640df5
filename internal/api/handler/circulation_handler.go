package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"libraryhub/internal/api/dto"
	"libraryhub/internal/api/middleware"
	"libraryhub/internal/api/repository"
	"libraryhub/internal/api/service"
)

// CirculationHandler is the borrow/return lifecycle surface. Every mutation
// here funnels into a single coordinator transaction in the service layer.
type CirculationHandler struct {
	circulationService service.CirculationService
}

func NewCirculationHandler(circulationService service.CirculationService) *CirculationHandler {
	return &CirculationHandler{circulationService: circulationService}
}

func (h *CirculationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	loans := rg.Group("/borrow-transactions")
	{
		loans.POST("", h.Borrow)
		loans.GET("", h.List)
		loans.PUT("/:id/return", h.Return)
		loans.PUT("/:id/approve", h.Approve)
		loans.DELETE("/:id/cancel", h.Cancel)
	}
}

func (h *CirculationHandler) Borrow(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req dto.BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	loan, err := h.circulationService.Borrow(ctx, actor, req.BookID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromModelToLoanResponse(loan))
}

func (h *CirculationHandler) Return(c *gin.Context) {
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

	loan, fine, err := h.circulationService.Return(ctx, actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.ReturnResponse{Loan: dto.FromModelToLoanResponse(loan)}
	if fine != nil {
		resp.Fine = dto.FromModelToFineResponse(fine)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CirculationHandler) Approve(c *gin.Context) {
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

	loan, err := h.circulationService.Approve(ctx, actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToLoanResponse(loan))
}

func (h *CirculationHandler) Cancel(c *gin.Context) {
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

	if err := h.circulationService.Cancel(ctx, actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CirculationHandler) List(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	params := repository.ListLoansParams{
		UserID:   c.Query("user_id"), // staff only; overridden for members
		BookID:   queryInt64Ptr(c, "book_id"),
		Status:   c.Query("status"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}

	loans, total, err := h.circulationService.List(ctx, actor, params)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]dto.LoanResponse, 0, len(loans))
	for i := range loans {
		items = append(items, *dto.FromModelToLoanResponse(&loans[i]))
	}
	c.JSON(http.StatusOK, dto.LoanListResponse{
		Items:      items,
		Pagination: dto.NewPagination(params.Page, params.PageSize, total),
	})
}
