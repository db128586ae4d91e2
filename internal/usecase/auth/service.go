package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/hugodutra/cryptofolio-backend/internal/domain"
)

const bcryptCost = 10

// Session is the result of a successful registration or login.
type Session struct {
	Token string
	User  *domain.User
}

// AuthService handles registration, login and token verification.
// Tokens are HMAC-SHA256 JWTs carrying the user ID as subject.
type AuthService struct {
	UserRepo    domain.UserRepository
	Secret      []byte
	TokenExpiry time.Duration
}

// NewAuthService creates a new AuthService instance
func NewAuthService(userRepo domain.UserRepository, secret []byte, tokenExpiry time.Duration) *AuthService {
	return &AuthService{
		UserRepo:    userRepo,
		Secret:      secret,
		TokenExpiry: tokenExpiry,
	}
}

// Register creates a user with a zero cash balance and returns a session.
// The email must not already be registered.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*Session, error) {
	if name == "" || email == "" || password == "" {
		return nil, errors.New("name, email and password are required")
	}

	if _, err := s.UserRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:                   uuid.New(),
		Name:                 name,
		Email:                email,
		PasswordHash:         string(hash),
		CashBalance:          decimal.Zero,
		LifetimeContribution: decimal.Zero,
		CreatedAt:            time.Now(),
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.sign(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

// Login verifies the credentials and returns a session. Unknown emails and
// wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.UserRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.sign(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

// GetUser returns the user for a verified ID.
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.UserRepo.GetByID(ctx, userID)
}

// sign creates a signed HMAC-SHA256 JWT for the given user.
func (s *AuthService) sign(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"name":  user.Name,
		"iss":   "cryptofolio-server",
		"iat":   now.Unix(),
		"exp":   now.Add(s.TokenExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.Secret)
}

// VerifyToken parses and validates a token string and returns the user ID
// it was issued for.
func (s *AuthService) VerifyToken(tokenString string) (uuid.UUID, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	if !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, fmt.Errorf("token has no subject: %w", err)
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("token subject is not a user ID: %w", err)
	}
	return userID, nil
}
