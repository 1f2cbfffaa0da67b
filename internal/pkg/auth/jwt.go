// internal/pkg/auth/jwt.go
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/your-org/storefront-api/internal/config"
)

var (
	// ErrTokenExpired is returned when a token's exp claim is in the past
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers bad signatures, malformed tokens and wrong claims
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims carries the user id. Refresh tokens also carry a jti so they can
// be revoked individually.
type Claims struct {
	ID uint `json:"id"`
	jwt.RegisteredClaims
}

// TokenPair is what every successful login, registration and refresh hands out
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// JWTManager signs and verifies tokens. Access and refresh tokens use
// separate secrets and lifetimes.
type JWTManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(cfg *config.Config) *JWTManager {
	return &JWTManager{
		accessSecret:  []byte(cfg.JWT.AccessSecret),
		refreshSecret: []byte(cfg.JWT.RefreshSecret),
		accessTTL:     cfg.JWT.AccessTokenExpiry,
		refreshTTL:    cfg.JWT.RefreshTokenExpiry,
		issuer:        cfg.App.Name,
		now:           time.Now,
	}
}

// RefreshTTL returns the refresh token lifetime, which is also the cookie max age
func (j *JWTManager) RefreshTTL() time.Duration {
	return j.refreshTTL
}

// IssueTokens generates a fresh access/refresh pair for a user
func (j *JWTManager) IssueTokens(userID uint) (TokenPair, error) {
	access, err := j.GenerateAccessToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := j.GenerateRefreshToken(userID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// GenerateAccessToken generates a new access token
func (j *JWTManager) GenerateAccessToken(userID uint) (string, error) {
	return j.sign(userID, "", j.accessTTL, j.accessSecret)
}

// GenerateRefreshToken generates a new refresh token
func (j *JWTManager) GenerateRefreshToken(userID uint) (string, error) {
	return j.sign(userID, uuid.NewString(), j.refreshTTL, j.refreshSecret)
}

func (j *JWTManager) sign(userID uint, jti string, ttl time.Duration, secret []byte) (string, error) {
	now := j.now().UTC()

	claims := &Claims{
		ID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    j.issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken verifies a token against the access secret
func (j *JWTManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.parse(tokenString, j.accessSecret)
}

// ValidateRefreshToken verifies a token against the refresh secret
func (j *JWTManager) ValidateRefreshToken(tokenString string) (*Claims, error) {
	claims, err := j.parse(tokenString, j.refreshSecret)
	if err != nil {
		return nil, err
	}
	if claims.RegisteredClaims.ID == "" {
		return nil, fmt.Errorf("%w: refresh token without jti", ErrTokenInvalid)
	}
	return claims, nil
}

func (j *JWTManager) parse(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(j.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == 0 {
		return nil, fmt.Errorf("%w: invalid token claims", ErrTokenInvalid)
	}

	return claims, nil
}

// ExtractTokenFromHeader extracts JWT token from Authorization header
func ExtractTokenFromHeader(authHeader string) string {
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return ""
}
