package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"reservation-service/internal/config"
	"reservation-service/internal/entity"
	"reservation-service/internal/metrics"
	"reservation-service/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const invalidCredentials = "invalid credentials"

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

type JwtCustomClaims struct {
	UserID int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type LoginResult struct {
	Token     string `json:"token"`
	ExpiresIn string `json:"expiresIn"`
}

type AuthService struct {
	users    UserRepository
	secret   []byte
	ttl      time.Duration
	hashCost int
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(users UserRepository, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		users:    users,
		secret:   []byte(cfg.JWTSecret),
		ttl:      cfg.TokenTTL,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// Register creates an account and returns it without the password hash.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*entity.User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		metrics.IncAuthAttempt("register", "invalid")
		return nil, newError(ErrValidation, "name, email and password are required")
	}
	if len(password) > maxPasswordBytes {
		metrics.IncAuthAttempt("register", "invalid")
		return nil, newError(ErrValidation, "password must be at most %d bytes", maxPasswordBytes)
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		metrics.IncAuthAttempt("register", "conflict")
		return nil, newError(ErrConflict, "email already registered")
	case !errors.Is(err, repository.ErrNotFound):
		logger.Error().Err(err).Msg("Error looking up user by email")
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, &entity.User{Name: name, Email: email, Password: string(hash)})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			metrics.IncAuthAttempt("register", "conflict")
			return nil, newError(ErrConflict, "email already registered")
		}
		logger.Error().Err(err).Msg("Error creating user")
		return nil, err
	}

	metrics.IncAuthAttempt("register", "ok")
	logger.Info().Int64("user_id", user.ID).Msg("user registered")
	return &entity.User{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}

// Login checks the credentials and issues a signed token. Unknown email and wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		metrics.IncAuthAttempt("login", "invalid")
		return nil, newError(ErrValidation, "email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Error().Err(err).Msg("Error looking up user by email")
			return nil, err
		}
		// keep the response time close to the wrong-password path
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		metrics.IncAuthAttempt("login", "denied")
		return nil, newError(ErrAuth, invalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		metrics.IncAuthAttempt("login", "denied")
		return nil, newError(ErrAuth, invalidCredentials)
	}

	now := s.now()
	claims := &JwtCustomClaims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := tkn.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	metrics.IncAuthAttempt("login", "ok")
	return &LoginResult{Token: t, ExpiresIn: formatTTL(s.ttl)}, nil
}

// ParseToken verifies signature and expiry and returns the caller identity.
func (s *AuthService) ParseToken(token string) (Identity, error) {
	claims := &JwtCustomClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return Identity{}, newError(ErrAuth, "invalid or expired token")
	}
	if claims.UserID <= 0 {
		return Identity{}, newError(ErrAuth, "invalid or expired token")
	}
	return Identity{ID: claims.UserID, Name: claims.Name, Email: claims.Email}, nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.hashCost)
	})
	return s.dummyHash
}

// formatTTL renders 2h as "2h" and 90m as "90m".
func formatTTL(d time.Duration) string {
	switch {
	case d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%dm", d/time.Minute)
	default:
		return fmt.Sprintf("%ds", d/time.Second)
	}
}
