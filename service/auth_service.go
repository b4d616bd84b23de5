package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"lexdraft-backend/logger"
	"lexdraft-backend/models"
	"lexdraft-backend/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "lexdraft-backend"

// JWTClaims are the claims carried by access tokens. Subject is the user ID.
type JWTClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService authenticates users and issues access tokens
type AuthService struct {
	userRepo UserStore
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	log      *logger.Logger
}

// AuthServiceOption is a functional option for AuthService
type AuthServiceOption func(*AuthService)

// WithUserRepository sets the user repository
func WithUserRepository(repo UserStore) AuthServiceOption {
	return func(s *AuthService) {
		s.userRepo = repo
	}
}

// WithTokenSecret sets the HMAC secret and token lifetime
func WithTokenSecret(secret string, ttl time.Duration) AuthServiceOption {
	return func(s *AuthService) {
		s.secret = []byte(secret)
		s.ttl = ttl
	}
}

// WithAuthLogger sets the logger
func WithAuthLogger(log *logger.Logger) AuthServiceOption {
	return func(s *AuthService) {
		s.log = log
	}
}

// NewAuthService creates a new auth service
func NewAuthService(opts ...AuthServiceOption) *AuthService {
	s := &AuthService{ttl: 24 * time.Hour, now: time.Now, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("service", "AuthService")
	return s
}

// LoginResult carries the issued token
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

// Login checks the password and issues an access token
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if s.userRepo == nil {
		return nil, errors.New("user repository not set")
	}
	if len(s.secret) == 0 {
		return nil, errors.New("token secret not set")
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Info("Login rejected", "email", user.Email)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt, User: user}, nil
}

// IssueToken signs an HS256 access token for the user
func (s *AuthService) IssueToken(user *models.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := JWTClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// VerifyToken validates a token and returns the user ID it was issued to
func (s *AuthService) VerifyToken(tokenString string) (uuid.UUID, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

// HashPassword hashes a password with bcrypt's default cost
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
