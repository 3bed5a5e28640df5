package service

import (
	"context"
	"fmt"

	"libraryhub/internal/api/models"
	"libraryhub/internal/api/repository"
)

// CatalogService is routine CRUD for libraries, authors, and genres. Writes
// require staff; reads are open to any authenticated user.
type CatalogService interface {
	CreateLibrary(ctx context.Context, actor Actor, library *models.Library) (*models.Library, error)
	GetLibrary(ctx context.Context, id int64) (*models.Library, error)
	ListLibraries(ctx context.Context, page, pageSize int) ([]models.Library, int64, error)
	UpdateLibrary(ctx context.Context, actor Actor, library *models.Library) (*models.Library, error)
	DeleteLibrary(ctx context.Context, actor Actor, id int64) error

	CreateAuthor(ctx context.Context, actor Actor, author *models.Author) (*models.Author, error)
	GetAuthor(ctx context.Context, id int64) (*models.Author, error)
	ListAuthors(ctx context.Context, page, pageSize int) ([]models.Author, int64, error)
	UpdateAuthor(ctx context.Context, actor Actor, author *models.Author) (*models.Author, error)
	DeleteAuthor(ctx context.Context, actor Actor, id int64) error

	CreateGenre(ctx context.Context, actor Actor, genre *models.Genre) (*models.Genre, error)
	ListGenres(ctx context.Context) ([]models.Genre, error)
	UpdateGenre(ctx context.Context, actor Actor, genre *models.Genre) (*models.Genre, error)
	DeleteGenre(ctx context.Context, actor Actor, id int64) error
}

type catalogService struct {
	libraryRepo repository.LibraryRepository
	authorRepo  repository.AuthorRepository
	genreRepo   repository.GenreRepository
}

func NewCatalogService(
	libraryRepo repository.LibraryRepository,
	authorRepo repository.AuthorRepository,
	genreRepo repository.GenreRepository,
) CatalogService {
	return &catalogService{
		libraryRepo: libraryRepo,
		authorRepo:  authorRepo,
		genreRepo:   genreRepo,
	}
}

func (s *catalogService) CreateLibrary(ctx context.Context, actor Actor, library *models.Library) (*models.Library, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	if library.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := s.libraryRepo.Create(ctx, library); err != nil {
		return nil, err
	}
	return library, nil
}

func (s *catalogService) GetLibrary(ctx context.Context, id int64) (*models.Library, error) {
	library, err := s.libraryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, ErrLibraryNotFound)
	}
	return library, nil
}

func (s *catalogService) ListLibraries(ctx context.Context, page, pageSize int) ([]models.Library, int64, error) {
	normalizePage(&page, &pageSize)
	return s.libraryRepo.List(ctx, page, pageSize)
}

func (s *catalogService) UpdateLibrary(ctx context.Context, actor Actor, library *models.Library) (*models.Library, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	existing, err := s.libraryRepo.GetByID(ctx, library.ID)
	if err != nil {
		return nil, translateNotFound(err, ErrLibraryNotFound)
	}
	existing.Name = library.Name
	existing.Address = library.Address
	if err := s.libraryRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *catalogService) DeleteLibrary(ctx context.Context, actor Actor, id int64) error {
	if !actor.IsStaff() {
		return ErrForbidden
	}
	return translateNotFound(s.libraryRepo.Delete(ctx, id), ErrLibraryNotFound)
}

func (s *catalogService) CreateAuthor(ctx context.Context, actor Actor, author *models.Author) (*models.Author, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	if author.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := s.authorRepo.Create(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

func (s *catalogService) GetAuthor(ctx context.Context, id int64) (*models.Author, error) {
	author, err := s.authorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err, ErrAuthorNotFound)
	}
	return author, nil
}

func (s *catalogService) ListAuthors(ctx context.Context, page, pageSize int) ([]models.Author, int64, error) {
	normalizePage(&page, &pageSize)
	return s.authorRepo.List(ctx, page, pageSize)
}

func (s *catalogService) UpdateAuthor(ctx context.Context, actor Actor, author *models.Author) (*models.Author, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	existing, err := s.authorRepo.GetByID(ctx, author.ID)
	if err != nil {
		return nil, translateNotFound(err, ErrAuthorNotFound)
	}
	existing.Name = author.Name
	existing.Bio = author.Bio
	if err := s.authorRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *catalogService) DeleteAuthor(ctx context.Context, actor Actor, id int64) error {
	if !actor.IsStaff() {
		return ErrForbidden
	}
	return translateNotFound(s.authorRepo.Delete(ctx, id), ErrAuthorNotFound)
}

func (s *catalogService) CreateGenre(ctx context.Context, actor Actor, genre *models.Genre) (*models.Genre, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	if genre.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := s.genreRepo.Create(ctx, genre); err != nil {
		return nil, err
	}
	return genre, nil
}

func (s *catalogService) ListGenres(ctx context.Context) ([]models.Genre, error) {
	return s.genreRepo.List(ctx)
}

func (s *catalogService) UpdateGenre(ctx context.Context, actor Actor, genre *models.Genre) (*models.Genre, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	existing, err := s.genreRepo.GetByID(ctx, genre.ID)
	if err != nil {
		return nil, translateNotFound(err, ErrGenreNotFound)
	}
	existing.Name = genre.Name
	if err := s.genreRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *catalogService) DeleteGenre(ctx context.Context, actor Actor, id int64) error {
	if !actor.IsStaff() {
		return ErrForbidden
	}
	return translateNotFound(s.genreRepo.Delete(ctx, id), ErrGenreNotFound)
}
