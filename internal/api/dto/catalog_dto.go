package dto

type CreateLibraryRequest struct {
	Name    string  `json:"name" binding:"required"`
	Address *string `json:"address,omitempty"`
}

type UpdateLibraryRequest struct {
	Name    string  `json:"name" binding:"required"`
	Address *string `json:"address,omitempty"`
}

type CreateAuthorRequest struct {
	Name string  `json:"name" binding:"required"`
	Bio  *string `json:"bio,omitempty"`
}

type CreateGenreRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpsertPolicyRequest struct {
	MaxBorrowDays         int     `json:"max_borrow_days" binding:"required,min=1"`
	FinePerDay            float64 `json:"fine_per_day" binding:"min=0"`
	MaxBooksPerUser       int     `json:"max_books_per_user" binding:"required,min=1"`
	ReservationExpiryDays int     `json:"reservation_expiry_days" binding:"required,min=1"`
}
