package service

import (
	"context"
	"time"

	"libraryhub/internal/api/models"
	"libraryhub/internal/api/repository"
)

// FineService exposes fine queries and the one-way payment transition.
type FineService interface {
	Get(ctx context.Context, actor Actor, fineID int64) (*models.Fine, error)
	Pay(ctx context.Context, actor Actor, fineID int64) (*models.Fine, error)
	List(ctx context.Context, actor Actor, params repository.ListFinesParams) ([]models.Fine, int64, error)
}

type fineService struct {
	coordinator repository.Coordinator
	fineRepo    repository.FineRepository
}

func NewFineService(coordinator repository.Coordinator, fineRepo repository.FineRepository) FineService {
	return &fineService{coordinator: coordinator, fineRepo: fineRepo}
}

func (s *fineService) Get(ctx context.Context, actor Actor, fineID int64) (*models.Fine, error) {
	fine, err := s.fineRepo.GetByID(ctx, fineID)
	if err != nil {
		return nil, translateNotFound(err, ErrFineNotFound)
	}
	if !actor.canActOn(fine.UserID) {
		return nil, ErrForbidden
	}
	return fine, nil
}

// Pay flips is_paid false -> true exactly once; paying twice is a conflict.
func (s *fineService) Pay(ctx context.Context, actor Actor, fineID int64) (*models.Fine, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}

	var fine *models.Fine
	err := s.coordinator.Execute(ctx, func(uow repository.UnitOfWork) error {
		var err error
		fine, err = uow.Fines().GetByID(ctx, fineID)
		if err != nil {
			return translateNotFound(err, ErrFineNotFound)
		}
		if fine.IsPaid {
			return ErrFineAlreadyPaid
		}
		now := time.Now()
		fine.IsPaid = true
		fine.PaidAt = &now
		return uow.Fines().Update(ctx, fine)
	})
	if err != nil {
		return nil, err
	}
	return fine, nil
}

func (s *fineService) List(ctx context.Context, actor Actor, params repository.ListFinesParams) ([]models.Fine, int64, error) {
	if !actor.IsStaff() {
		params.UserID = actor.UserID
	}
	normalizePage(&params.Page, &params.PageSize)
	return s.fineRepo.List(ctx, params)
}
