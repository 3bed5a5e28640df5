package service

import (
	"context"
	"fmt"

	"libraryhub/internal/api/models"
	"libraryhub/internal/api/repository"
)

// PolicyService reads and writes per-library circulation policies. The
// circulation core never goes through here; it fetches policies fresh inside
// its own transactions to avoid staleness under concurrent policy edits.
type PolicyService interface {
	GetByLibrary(ctx context.Context, libraryID int64) (*models.Policy, error)
	Upsert(ctx context.Context, actor Actor, policy *models.Policy) (*models.Policy, error)
}

type policyService struct {
	policyRepo  repository.PolicyRepository
	libraryRepo repository.LibraryRepository
}

func NewPolicyService(policyRepo repository.PolicyRepository, libraryRepo repository.LibraryRepository) PolicyService {
	return &policyService{policyRepo: policyRepo, libraryRepo: libraryRepo}
}

func (s *policyService) GetByLibrary(ctx context.Context, libraryID int64) (*models.Policy, error) {
	policy, err := s.policyRepo.GetByLibraryID(ctx, libraryID)
	if err != nil {
		return nil, translateNotFound(err, ErrPolicyNotFound)
	}
	return policy, nil
}

func (s *policyService) Upsert(ctx context.Context, actor Actor, policy *models.Policy) (*models.Policy, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}

	if _, err := s.libraryRepo.GetByID(ctx, policy.LibraryID); err != nil {
		return nil, translateNotFound(err, ErrLibraryNotFound)
	}

	if policy.MaxBorrowDays <= 0 || policy.MaxBooksPerUser <= 0 {
		return nil, fmt.Errorf("%w: max_borrow_days and max_books_per_user must be positive", ErrInvalidInput)
	}
	if policy.FinePerDay < 0 {
		return nil, fmt.Errorf("%w: fine_per_day must not be negative", ErrInvalidInput)
	}

	if err := s.policyRepo.Upsert(ctx, policy); err != nil {
		return nil, err
	}
	return policy, nil
}
