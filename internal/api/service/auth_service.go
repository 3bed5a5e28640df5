package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"libraryhub/internal/api/middleware/auth"
	"libraryhub/internal/api/models"
	"libraryhub/internal/api/repository"
	"libraryhub/internal/config"
)

var (
	ErrNameInUse          = errors.New("username already in use")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Claims is what the middleware hands to handlers after verification. The
// circulation core consumes it as an Actor and performs no verification of
// its own.
type Claims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	LibraryID int64  `json:"library_id"`
	jwt.RegisteredClaims
}

// Actor converts verified claims into the service-layer identity.
func (c *Claims) Actor() Actor {
	return Actor{UserID: c.UserID, Role: c.Role, LibraryID: c.LibraryID}
}

type AuthService interface {
	Register(ctx context.Context, username, password, email string, libraryID int64) (*models.User, error)
	Login(ctx context.Context, username, password string) (accessToken string, user *models.User, err error)
	ValidateToken(tokenString string) (*Claims, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

type authService struct {
	userRepo       repository.UserRepository
	libraryRepo    repository.LibraryRepository
	jwtSecret      string
	accessTokenTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, libraryRepo repository.LibraryRepository, cfg *config.Config) AuthService {
	return &authService{
		userRepo:       userRepo,
		libraryRepo:    libraryRepo,
		jwtSecret:      cfg.JWTSecret,
		accessTokenTTL: cfg.AccessTokenTTL,
	}
}

// Register creates a member account in the given library.
func (s *authService) Register(ctx context.Context, username, password, email string, libraryID int64) (*models.User, error) {
	// Check if user exists
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, ErrNameInUse
	}

	// Check if email exists
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	}

	if _, err := s.libraryRepo.GetByID(ctx, libraryID); err != nil {
		return nil, translateNotFound(err, ErrLibraryNotFound)
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  username,
		Email:     email,
		Password:  hashedPassword,
		Role:      models.RoleMember,
		LibraryID: libraryID,
		IsActive:  true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login authenticates a user and returns an access token upon success.
func (s *authService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		// User not found: dummy compare to mitigate timing attacks (always take same time)
		auth.VerifyPassword("$2a$10$7EqJtq98hPqEX7fNZaFWoOHi6VbU5h6K9v8u5rO0m3j0h6dX5r8e", password)
		return "", nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrUserInactive
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		LibraryID: user.LibraryID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken parses and verifies an access token and returns its claims.
func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, translateNotFound(err, ErrUserNotFound)
	}
	return user, nil
}
