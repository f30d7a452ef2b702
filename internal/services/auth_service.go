package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// ErrUserExists is returned when the username or email is already taken.
var ErrUserExists = errors.New("user already exists")

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
	}
}

// RegisterUser hashes the user's password and saves them with the "user"
// role, whatever role the request asked for.
func (s *AuthService) RegisterUser(ctx context.Context, user *models.User) error {
	if err := s.ensureFree(ctx, s.userRepo.GetByUsername, user.Username, "username '%s' already taken"); err != nil {
		return err
	}
	if err := s.ensureFree(ctx, s.userRepo.GetByEmail, user.Email, "email '%s' already registered"); err != nil {
		return err
	}

	user.Role = models.RoleUser
	if err := s.create(ctx, user); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return nil
}

// EnsureAdmin creates an admin account unless username already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	_, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to look up admin %q: %w", username, err)
	}

	admin := &models.User{Username: username, Email: email, Password: password, Role: models.RoleAdmin}
	if err := s.create(ctx, admin); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("user_id", admin.ID).Str("username", username).Msg("admin account created")
	return nil
}

func (s *AuthService) create(ctx context.Context, user *models.User) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperror.Wrap(http.StatusInternalServerError, "Failed to register user", fmt.Errorf("hash password: %w", err))
	}
	user.Password = string(hashedPassword)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return apperror.Wrap(http.StatusInternalServerError, "Failed to register user", err)
	}
	return nil
}

func (s *AuthService) ensureFree(ctx context.Context, lookup func(context.Context, string) (*models.User, error), value, format string) error {
	existing, err := lookup(ctx, value)
	switch {
	case err == nil && existing != nil:
		return apperror.Wrap(http.StatusConflict, fmt.Sprintf(format, value), ErrUserExists)
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return apperror.Wrap(http.StatusInternalServerError, "Failed to register user", err)
	}
	return nil
}

// LoginUser authenticates a user and returns a signed JWT.
func (s *AuthService) LoginUser(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", apperror.Unauthorized("Invalid credentials")
		}
		return "", apperror.Wrap(http.StatusInternalServerError, "Failed to log in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apperror.Unauthorized("Invalid credentials")
	}

	tokenString, err := signToken(s.jwtSecret, user.ID, user.Username, user.Role, s.tokenDurat)
	if err != nil {
		return "", apperror.Wrap(http.StatusInternalServerError, "Failed to log in", fmt.Errorf("sign token: %w", err))
	}

	log.Ctx(ctx).Info().Str("user_id", user.ID).Msg("user logged in")
	return tokenString, nil
}

// IssueServiceToken signs a short-lived token with the service role so that
// one service can call the protected endpoints of another sharing secret.
func IssueServiceToken(secret, service string, ttl time.Duration) (string, error) {
	token, err := signToken([]byte(secret), service, service, models.RoleService, ttl)
	if err != nil {
		return "", fmt.Errorf("sign service token for %s: %w", service, err)
	}
	return token, nil
}

func signToken(secret []byte, userID, username, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"role":     role,
		"exp":      now.Add(ttl).Unix(),
		"iat":      now.Unix(),
	})
	return token.SignedString(secret)
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
