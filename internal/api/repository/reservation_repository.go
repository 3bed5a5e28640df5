package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"libraryhub/internal/api/models"
)

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	if err := r.db.WithContext(ctx).Create(reservation).Error; err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).First(&reservation, id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindByUserAndBook(ctx context.Context, userID string, bookID int64) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&reservation).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Reservation{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete reservation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reservationRepository) List(ctx context.Context, params ListReservationsParams) ([]models.Reservation, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Reservation{})

	if params.UserID != "" {
		query = query.Where("user_id = ?", params.UserID)
	}
	if params.BookID != nil {
		query = query.Where("book_id = ?", *params.BookID)
	}
	if params.ExpiredOnly {
		query = query.Where("expires_at < ?", params.Now)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count reservations: %w", err)
	}

	var reservations []models.Reservation
	if err := query.
		Order("reserved_at DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&reservations).Error; err != nil {
		return nil, 0, fmt.Errorf("list reservations: %w", err)
	}

	return reservations, total, nil
}

func (r *reservationRepository) ListExpiredIDs(ctx context.Context, now time.Time, limit int) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("expires_at < ?", now).
		Order("expires_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list expired reservations: %w", err)
	}
	return ids, nil
}
