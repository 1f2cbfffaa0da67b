// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/config"
	"github.com/your-org/storefront-api/internal/pkg/apperr"
	"github.com/your-org/storefront-api/internal/pkg/auth"
	"github.com/your-org/storefront-api/internal/pkg/validation"
	"gorm.io/gorm"
)

var (
	ErrMissingFields      = apperr.Validation("Please enter all required fields")
	ErrEmailTaken         = apperr.Conflict("User with this email already exists")
	ErrPhoneTaken         = apperr.Conflict("User with this phone number already exists")
	ErrInvalidCredentials = apperr.Unauthorized("Invalid credentials")
	ErrUserNotFound       = apperr.NotFound("User not found")
	ErrUserGone           = apperr.Unauthorized("User not found")
	ErrRefreshExpired     = apperr.Forbidden("Refresh token expired")
	ErrRefreshInvalid     = apperr.Forbidden("Invalid refresh token")
)

// Service handles user business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
	revocations     auth.RevocationStore
	logger          *logrus.Logger
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config, jwtManager *auth.JWTManager, revocations auth.RevocationStore, logger *logrus.Logger) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      jwtManager,
		revocations:     revocations,
		logger:          logger,
	}
}

// AddressInput is the client shape of an address
type AddressInput struct {
	Street    string `json:"street" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Name      string         `json:"name"`
	Email     string         `json:"email" validate:"required,email"`
	Password  string         `json:"password"`
	Phone     string         `json:"phone"`
	Addresses []AddressInput `json:"addresses" validate:"dive"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest replaces name, email and phone only when non-empty.
// A non-nil Addresses replaces the whole address list.
type UpdateProfileRequest struct {
	Name      string          `json:"name"`
	Email     string          `json:"email" validate:"omitempty,email"`
	Phone     string          `json:"phone"`
	Password  string          `json:"password"`
	Addresses *[]AddressInput `json:"addresses" validate:"omitempty,dive"`
}

// AuthResult is a user plus the tokens issued for them
type AuthResult struct {
	User   *User
	Tokens auth.TokenPair
}

// Register creates a new user account
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)

	if req.Name == "" || req.Email == "" || req.Password == "" || req.Phone == "" {
		return nil, ErrMissingFields
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var existing User
	err := db.Where("email = ? OR phone = ?", req.Email, req.Phone).First(&existing).Error
	switch {
	case err == nil:
		if existing.Email == req.Email {
			return nil, ErrEmailTaken
		}
		return nil, ErrPhoneTaken
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashedPassword, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := User{
		Name:        req.Name,
		Email:       req.Email,
		Password:    hashedPassword,
		Phone:       req.Phone,
		Preferences: DefaultPreferences(),
		LastLogin:   &now,
		Addresses:   buildAddresses(req.Addresses),
	}

	if err := db.Create(&user).Error; err != nil {
		// A concurrent registration won the unique email index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	tokens, err := s.jwtManager.IssueTokens(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")

	return &AuthResult{User: &user, Tokens: tokens}, nil
}

// Login authenticates a user
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	db := s.db.WithContext(ctx)

	var user User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.passwordManager.VerifyPassword(req.Password, user.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.jwtManager.IssueTokens(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	now := time.Now().UTC()
	if err := db.Model(&user).UpdateColumn("last_login", now).Error; err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
	}
	user.LastLogin = &now

	return &AuthResult{User: &user, Tokens: tokens}, nil
}

// Refresh exchanges a refresh token for a new pair and revokes the old one
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, ErrRefreshExpired
		}
		return nil, apperr.Wrap(apperr.KindForbidden, ErrRefreshInvalid.Message, err)
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.RegisteredClaims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRefreshInvalid
	}

	user, err := s.GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserGone
		}
		return nil, err
	}

	tokens, err := s.jwtManager.IssueTokens(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	s.revoke(ctx, claims)

	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Logout revokes the presented refresh token if it is still valid. An
// unusable token is not an error since the cookie is cleared either way.
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return
	}
	s.revoke(ctx, claims)
}

func (s *Service) revoke(ctx context.Context, claims *auth.Claims) {
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revocations.Revoke(ctx, claims.RegisteredClaims.ID, ttl); err != nil {
		s.logger.WithError(err).WithField("user_id", claims.ID).Warn("failed to revoke refresh token")
	}
}

// GetByID loads a user without sub-collections
func (s *Service) GetByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetProfile loads a user with addresses
func (s *Service) GetProfile(ctx context.Context, id uint) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).
		Preload("Addresses", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return &user, nil
}

// UpdateProfile applies a partial update and issues a fresh token pair
func (s *Service) UpdateProfile(ctx context.Context, id uint, req *UpdateProfileRequest) (*AuthResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name := strings.TrimSpace(req.Name); name != "" {
		updates["name"] = name
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != user.Email {
		if err := s.ensureUnique(ctx, "email", email, id, ErrEmailTaken); err != nil {
			return nil, err
		}
		updates["email"] = email
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" && phone != user.Phone {
		if err := s.ensureUnique(ctx, "phone", phone, id, ErrPhoneTaken); err != nil {
			return nil, err
		}
		updates["phone"] = phone
	}
	if req.Password != "" {
		hashed, err := s.hashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hashed
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrEmailTaken
				}
				return fmt.Errorf("failed to update user: %w", err)
			}
		}
		if req.Addresses != nil {
			if err := tx.Where("user_id = ?", id).Delete(&Address{}).Error; err != nil {
				return fmt.Errorf("failed to replace addresses: %w", err)
			}
			addresses := buildAddresses(*req.Addresses)
			for i := range addresses {
				addresses[i].UserID = id
			}
			if len(addresses) > 0 {
				if err := tx.Create(&addresses).Error; err != nil {
					return fmt.Errorf("failed to replace addresses: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	tokens, err := s.jwtManager.IssueTokens(id)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	return &AuthResult{User: updated, Tokens: tokens}, nil
}

// DeleteProfile hard-deletes the user and everything the user owns
func (s *Service) DeleteProfile(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, owned := range []interface{}{&Address{}, &CartItem{}, &WishlistItem{}} {
			if err := tx.Where("user_id = ?", id).Delete(owned).Error; err != nil {
				return fmt.Errorf("failed to delete user data: %w", err)
			}
		}
		result := tx.Delete(&User{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		s.logger.WithField("user_id", id).Info("user deleted")
		return nil
	})
}

func (s *Service) hashPassword(password string) (string, error) {
	if err := s.passwordManager.ValidatePassword(password); err != nil {
		return "", apperr.Wrap(apperr.KindValidation, strings.TrimPrefix(err.Error(), auth.ErrWeakPassword.Error()+": "), err)
	}
	return s.passwordManager.HashPassword(password)
}

func (s *Service) ensureUnique(ctx context.Context, column, value string, selfID uint, taken error) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&User{}).
		Where(column+" = ? AND id <> ?", value, selfID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", column, err)
	}
	if count > 0 {
		return taken
	}
	return nil
}

// buildAddresses converts client addresses and keeps exactly one default
// when any are given: the first flagged one, or the first in the list.
func buildAddresses(in []AddressInput) []Address {
	if len(in) == 0 {
		return nil
	}
	out := make([]Address, len(in))
	defaultIdx := 0
	for i, a := range in {
		if a.IsDefault {
			defaultIdx = i
			break
		}
	}
	for i, a := range in {
		out[i] = Address{
			Street:    a.Street,
			City:      a.City,
			State:     a.State,
			ZipCode:   a.ZipCode,
			Country:   a.Country,
			IsDefault: i == defaultIdx,
		}
	}
	return out
}
