package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"libraryhub/internal/api/dto"
	"libraryhub/internal/api/middleware"
	"libraryhub/internal/api/service"
)

type BookHandler struct {
	bookService   service.BookService
	reviewService service.ReviewService
}

func NewBookHandler(bookService service.BookService, reviewService service.ReviewService) *BookHandler {
	return &BookHandler{bookService: bookService, reviewService: reviewService}
}

func (h *BookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	books := rg.Group("/books")
	{
		books.POST("", h.Create)
		books.GET("", h.List)
		books.GET("/:id", h.Get)
		books.PUT("/:id", h.Update)
		books.DELETE("/:id", h.Delete)

		books.GET("/:id/reviews", h.ListReviews)
		books.POST("/:id/reviews", h.CreateReview)
	}
}

func (h *BookHandler) Create(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	book, err := h.bookService.Create(ctx, actor, service.CreateBookInput{
		LibraryID:   req.LibraryID,
		Title:       req.Title,
		ISBN:        req.ISBN,
		Description: req.Description,
		AuthorID:    req.AuthorID,
		GenreIDs:    req.GenreIDs,
		TotalCopies: req.TotalCopies,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromModelToBookResponse(book))
}

func (h *BookHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	book, err := h.bookService.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToBookResponse(book))
}

func (h *BookHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	query := service.BookListQuery{
		LibraryID: queryInt64Ptr(c, "library_id"),
		AuthorID:  queryInt64Ptr(c, "author_id"),
		GenreID:   queryInt64Ptr(c, "genre_id"),
		Search:    c.Query("search"),
		Sort:      c.Query("sort"),
		Desc:      c.Query("order") == "desc",
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 20),
	}

	books, total, err := h.bookService.List(ctx, query)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]dto.BookResponse, 0, len(books))
	for i := range books {
		items = append(items, *dto.FromModelToBookResponse(&books[i]))
	}
	c.JSON(http.StatusOK, dto.BookListResponse{
		Items:      items,
		Pagination: dto.NewPagination(query.Page, query.PageSize, total),
	})
}

func (h *BookHandler) Update(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	book, err := h.bookService.Update(ctx, actor, id, service.UpdateBookInput{
		Title:       req.Title,
		ISBN:        req.ISBN,
		Description: req.Description,
		AuthorID:    req.AuthorID,
		GenreIDs:    req.GenreIDs,
		TotalCopies: req.TotalCopies,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToBookResponse(book))
}

func (h *BookHandler) Delete(c *gin.Context) {
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

	if err := h.bookService.Delete(ctx, actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookHandler) CreateReview(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	bookID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	review, err := h.reviewService.Create(ctx, actor, bookID, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromModelToReviewResponse(review))
}

func (h *BookHandler) ListReviews(c *gin.Context) {
	bookID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	reviews, total, err := h.reviewService.ListByBook(ctx, bookID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		items = append(items, *dto.FromModelToReviewResponse(&reviews[i]))
	}
	c.JSON(http.StatusOK, dto.ReviewListResponse{
		Items:      items,
		Pagination: dto.NewPagination(page, pageSize, total),
	})
}
