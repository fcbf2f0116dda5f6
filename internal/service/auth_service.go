package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"smartgarden/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL = 12 * time.Hour
	tokenIssuer     = "smartgarden"
	randomKeyBytes  = 32
)

// AuthConfig carries the JWT settings from configuration.
type AuthConfig struct {
	SigningKey  string
	TokenTTL    time.Duration
	AllowSignUp bool // self-service registration on /auth/sign-up
}

// Validate rejects a config that cannot run in production.
func (c AuthConfig) Validate() error {
	if strings.TrimSpace(c.SigningKey) == "" {
		return ErrNoSigningKey
	}
	return nil
}

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidToken    = errors.New("invalid token")
	ErrSignUpDisabled  = errors.New("sign-up is disabled")
	ErrNoSigningKey    = errors.New("auth.signing_key is not set")
)

// AuthService signs operators up and in and validates their tokens.
type AuthService struct {
	authRepo    repository.Authorization
	key         []byte
	ttl         time.Duration
	allowSignUp bool
	parser      *jwt.Parser
}

// NewAuthService builds the service. Without a signing key it signs with a random
// per-process key, so no token outlives the process; cmd rejects that config.
func NewAuthService(repo repository.Authorization, cfg AuthConfig) *AuthService {
	key := []byte(cfg.SigningKey)
	if cfg.Validate() != nil {
		key = make([]byte, randomKeyBytes)
		_, _ = rand.Read(key)
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	return &AuthService{
		authRepo:    repo,
		key:         key,
		ttl:         cfg.TokenTTL,
		allowSignUp: cfg.AllowSignUp,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(tokenIssuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// EnsureOperator creates the configured operator account unless it already exists.
// An empty username disables seeding.
func (s *AuthService) EnsureOperator(username, password string) (created bool, err error) {
	if strings.TrimSpace(username) == "" {
		return false, nil
	}
	u, err := s.authRepo.GetByUsername(username)
	if err != nil {
		return false, fmt.Errorf("look up operator %q: %w", username, err)
	}
	if u != nil {
		return false, nil
	}
	if _, err := s.createUser(username, password); err != nil {
		return false, fmt.Errorf("seed operator %q: %w", username, err)
	}
	return true, nil
}

// SignUp registers an operator when self-service registration is enabled.
func (s *AuthService) SignUp(username, password string) (int, error) {
	if !s.allowSignUp {
		return 0, ErrSignUpDisabled
	}
	return s.createUser(username, password)
}

func (s *AuthService) createUser(username, password string) (int, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("invalid password: %w", err)
	}
	return s.authRepo.Create(username, hash)
}

// Claims is the token payload.
type Claims struct {
	jwt.RegisteredClaims
	OperatorID int `json:"operator_id"`
}

// GenerateToken checks the credentials and returns a signed token.
func (s *AuthService) GenerateToken(username, password string) (string, error) {
	u, err := s.authRepo.GetByUsername(username)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidPassword
	}
	return s.issueToken(u.ID)
}

// ParseToken validates accessToken and returns the operator id it was issued for.
func (s *AuthService) ParseToken(accessToken string) (int, error) {
	var claims Claims
	token, err := s.parser.ParseWithClaims(accessToken, &claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, ErrInvalidToken
	}
	return claims.OperatorID, nil
}

func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) issueToken(operatorID int) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OperatorID: operatorID,
	})
	return token.SignedString(s.key)
}
