package dto

import (
	"time"

	"libraryhub/internal/api/models"
)

type CreateBookRequest struct {
	LibraryID   int64   `json:"library_id" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	ISBN        *string `json:"isbn,omitempty"`
	Description *string `json:"description,omitempty"`
	AuthorID    *int64  `json:"author_id,omitempty"`
	GenreIDs    []int64 `json:"genre_ids,omitempty"`
	TotalCopies int     `json:"total_copies" binding:"min=0"`
}

type UpdateBookRequest struct {
	Title       *string `json:"title,omitempty"`
	ISBN        *string `json:"isbn,omitempty"`
	Description *string `json:"description,omitempty"`
	AuthorID    *int64  `json:"author_id,omitempty"`
	GenreIDs    []int64 `json:"genre_ids,omitempty"`
	TotalCopies *int    `json:"total_copies,omitempty"`
}

type BookResponse struct {
	ID              int64      `json:"id"`
	LibraryID       int64      `json:"library_id"`
	Title           string     `json:"title"`
	ISBN            *string    `json:"isbn,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Author          *string    `json:"author,omitempty"`
	Genres          []string   `json:"genres,omitempty"`
	TotalCopies     int        `json:"total_copies"`
	AvailableCopies int        `json:"available_copies"`
	ReservedCopies  int        `json:"reserved_copies"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}

func FromModelToBookResponse(book *models.Book) *BookResponse {
	resp := &BookResponse{
		ID:              book.ID,
		LibraryID:       book.LibraryID,
		Title:           book.Title,
		ISBN:            book.ISBN,
		Description:     book.Description,
		TotalCopies:     book.TotalCopies,
		AvailableCopies: book.AvailableCopies,
		ReservedCopies:  book.ReservedCopies,
		CreatedAt:       book.CreatedAt,
	}
	if book.Author != nil {
		resp.Author = &book.Author.Name
	}
	for _, genre := range book.Genres {
		resp.Genres = append(resp.Genres, genre.Name)
	}
	return resp
}

type BookListResponse struct {
	Items      []BookResponse `json:"items"`
	Pagination Pagination     `json:"pagination"`
}

type WishlistItemResponse struct {
	BookID  int64         `json:"book_id"`
	AddedAt time.Time     `json:"added_at"`
	Book    *BookResponse `json:"book,omitempty"`
}

type WishlistResponse struct {
	Items []WishlistItemResponse `json:"items"`
	Total int                    `json:"total"`
}

type AddToWishlistRequest struct {
	BookID int64 `json:"book_id" binding:"required"`
}
