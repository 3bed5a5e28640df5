package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"libraryhub/internal/api/dto"
	"libraryhub/internal/api/middleware"
	"libraryhub/internal/api/service"
)

type WishlistHandler struct {
	wishlistService service.WishlistService
}

func NewWishlistHandler(wishlistService service.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

func (h *WishlistHandler) RegisterRoutes(rg *gin.RouterGroup) {
	wishlist := rg.Group("/wishlist")
	{
		wishlist.POST("", h.Add)
		wishlist.GET("", h.List)
		wishlist.DELETE("/:id", h.Remove)
	}
}

func (h *WishlistHandler) Add(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req dto.AddToWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.wishlistService.Add(ctx, actor, req.BookID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// Remove deletes the wishlist entry for the given book id.
func (h *WishlistHandler) Remove(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	bookID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.wishlistService.Remove(ctx, actor, bookID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WishlistHandler) List(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	entries, err := h.wishlistService.List(ctx, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]dto.WishlistItemResponse, 0, len(entries))
	for i := range entries {
		item := dto.WishlistItemResponse{
			BookID:  entries[i].BookID,
			AddedAt: entries[i].AddedAt,
		}
		if entries[i].Book != nil {
			item.Book = dto.FromModelToBookResponse(entries[i].Book)
		}
		items = append(items, item)
	}
	c.JSON(http.StatusOK, dto.WishlistResponse{Items: items, Total: len(items)})
}
