package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dan9191/loan-service/internal/models"
	"github.com/Dan9191/loan-service/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Claims are the JWT claims issued at login
type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Register creates a new user with hashed password
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	return s.createUser(ctx, req, models.RoleUser)
}

func (s *Service) createUser(ctx context.Context, req models.RegisterRequest, role models.Role) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	encryptedPhone, err := utils.Encrypt(req.Phone, s.config.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt phone: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         strings.TrimSpace(req.Name),
		Phone:        encryptedPhone,
		Role:         role,
		PasswordHash: string(hashedPassword),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	// Return user with decrypted phone for response
	user.Phone = req.Phone
	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// EnsureAdmin creates the bootstrap administrator unless the email is
// already registered
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" {
		return nil
	}
	_, err := s.repo.FindUserByEmail(ctx, strings.ToLower(email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	req := models.RegisterRequest{Email: email, Name: "Administrator", Password: password}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid bootstrap admin: %w", err)
	}
	if _, err := s.createUser(ctx, req, models.RoleAdmin); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	return nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", invalid(err)
	}
	user, err := s.repo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL)),
		},
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// ParseToken validates a JWT and returns the caller it identifies
func (s *Service) ParseToken(tokenString string) (Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: invalid subject", ErrUnauthorized)
	}
	return Identity{UserID: userID, Role: claims.Role}, nil
}
