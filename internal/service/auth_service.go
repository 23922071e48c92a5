package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/primeivy/portal-backend/internal/config"
	"github.com/primeivy/portal-backend/internal/model"
	"github.com/primeivy/portal-backend/internal/source"
)

// Common auth errors.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrSessionAlreadyActive = errors.New("another session is already active")
	ErrUsernameTaken        = errors.New("username already taken")
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// AuthService handles authentication, JWT, and session management.
// Credentials live in the workbook's Users sheet.
type AuthService struct {
	cfg      *config.Config
	rdb      *redis.Client
	workbook *source.Workbook
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client, workbook *source.Workbook, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:      cfg,
		rdb:      rdb,
		workbook: workbook,
		log:      log.With().Str("component", "auth").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
// Default cost is 6 for high-concurrency performance. Adjustable via BCRYPT_COST env.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a password against the stored value. Rows written
// by this service hold bcrypt hashes; rows edited by hand in the sheet may
// hold plaintext, which is compared directly as a legacy fallback.
func (s *AuthService) CheckPassword(stored, password string) error {
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)); err != nil {
			return ErrInvalidCredentials
		}
		return nil
	}
	if stored != password {
		return ErrInvalidCredentials
	}
	return nil
}

// Login verifies credentials against the Users sheet and issues a JWT,
// registering the session in Redis. A second login while a session is
// active is rejected.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.findUser(username)
	if err != nil {
		return "", err
	}
	if err := s.CheckPassword(user.Password, password); err != nil {
		return "", err
	}
	return s.generateToken(ctx, user.Username)
}

// Register appends a new user row to the Users sheet with a bcrypt hash
// and issues a first token.
func (s *AuthService) Register(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if _, err := s.findUser(username); err == nil {
		return "", ErrUsernameTaken
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if err := s.workbook.AppendUser(model.User{Username: username, Password: hash}); err != nil {
		return "", fmt.Errorf("append user: %w", err)
	}

	s.log.Info().Str("username", username).Msg("user registered")
	return s.generateToken(ctx, username)
}

// findUser looks a username up in the Users sheet, case-insensitively.
func (s *AuthService) findUser(username string) (model.User, error) {
	users, err := s.workbook.LoadUsers()
	if err != nil {
		return model.User{}, fmt.Errorf("load users: %w", err)
	}
	needle := strings.ToLower(strings.TrimSpace(username))
	for _, u := range users {
		if strings.ToLower(u.Username) == needle {
			return u, nil
		}
	}
	return model.User{}, ErrInvalidCredentials
}

// generateToken creates a JWT and registers its JTI as the user's single
// active session.
func (s *AuthService) generateToken(ctx context.Context, username string) (string, error) {
	sessionKey := config.CacheKey.UserSessionKey(username)

	// Reject the login if an active session exists.
	existing, err := s.rdb.Get(ctx, sessionKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("check session: %w", err)
	}
	if existing != "" {
		return "", ErrSessionAlreadyActive
	}

	jti := uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	// Store session in Redis with same expiry as JWT.
	if err := s.rdb.Set(ctx, sessionKey, jti, s.cfg.JWTExpiry).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// ValidateSession checks that the token's JTI matches the active session in Redis.
func (s *AuthService) ValidateSession(ctx context.Context, username, jti string) error {
	sessionKey := config.CacheKey.UserSessionKey(username)
	stored, err := s.rdb.Get(ctx, sessionKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return errors.New("no active session")
		}
		return fmt.Errorf("check session: %w", err)
	}
	if stored != jti {
		return errors.New("session invalidated")
	}
	return nil
}

// Logout removes the user's session from Redis, allowing a new login.
func (s *AuthService) Logout(ctx context.Context, username string) error {
	return s.rdb.Del(ctx, config.CacheKey.UserSessionKey(username)).Err()
}
