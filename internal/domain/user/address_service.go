// internal/domain/user/address_service.go
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/storefront-api/internal/pkg/apperr"
	"github.com/your-org/storefront-api/internal/pkg/validation"
	"gorm.io/gorm"
)

// ErrAddressNotFound is returned when the address does not belong to the user
var ErrAddressNotFound = apperr.NotFound("Address not found")

// AddressService handles address business logic
type AddressService struct {
	db *gorm.DB
}

// NewAddressService creates a new address service
func NewAddressService(db *gorm.DB) *AddressService {
	return &AddressService{db: db}
}

// ListAddresses returns the user's addresses in insertion order
func (s *AddressService) ListAddresses(ctx context.Context, userID uint) ([]Address, error) {
	addresses := []Address{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&addresses).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve addresses: %w", err)
	}
	return addresses, nil
}

// AddAddress appends an address. The first address a user adds becomes the
// default regardless of the flag sent.
func (s *AddressService) AddAddress(ctx context.Context, userID uint, req *AddressInput) ([]Address, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count addresses: %w", err)
		}

		isDefault := count == 0 || req.IsDefault
		if isDefault && count > 0 {
			if err := unsetDefaultAddresses(tx, userID); err != nil {
				return err
			}
		}

		address := Address{
			UserID:    userID,
			Street:    req.Street,
			City:      req.City,
			State:     req.State,
			ZipCode:   req.ZipCode,
			Country:   req.Country,
			IsDefault: isDefault,
		}
		if err := tx.Create(&address).Error; err != nil {
			return fmt.Errorf("failed to create address: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.ListAddresses(ctx, userID)
}

// SetDefaultAddress rewrites every flag of the user so that only addressID is default
func (s *AddressService) SetDefaultAddress(ctx context.Context, userID, addressID uint) ([]Address, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var address Address
		if err := tx.Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAddressNotFound
			}
			return fmt.Errorf("failed to retrieve address: %w", err)
		}

		if err := tx.Model(&Address{}).
			Where("user_id = ?", userID).
			Update("is_default", gorm.Expr("id = ?", addressID)).Error; err != nil {
			return fmt.Errorf("failed to set default address: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.ListAddresses(ctx, userID)
}

// unsetDefaultAddresses clears the default flag on all of a user's addresses
func unsetDefaultAddresses(tx *gorm.DB, userID uint) error {
	if err := tx.Model(&Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error; err != nil {
		return fmt.Errorf("failed to unset default addresses: %w", err)
	}
	return nil
}
