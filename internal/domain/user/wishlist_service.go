// internal/domain/user/wishlist_service.go
package user

import (
	"context"
	"fmt"
	"time"

	"github.com/your-org/storefront-api/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrWishlistItemNotFound is returned when removing a product that was never saved
var ErrWishlistItemNotFound = apperr.NotFound("Item not found in wishlist")

// WishlistService manages the wishlist sub-collection of a user
type WishlistService struct {
	db       *gorm.DB
	products ProductLookup
}

// NewWishlistService creates a new wishlist service
func NewWishlistService(db *gorm.DB, products ProductLookup) *WishlistService {
	return &WishlistService{db: db, products: products}
}

// AddToWishlistRequest represents add to wishlist request
type AddToWishlistRequest struct {
	ProductID uint `json:"productId"`
}

// GetWishlist returns the saved products in the order they were added
func (s *WishlistService) GetWishlist(ctx context.Context, userID uint) ([]WishlistItem, error) {
	items := []WishlistItem{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve wishlist: %w", err)
	}
	return items, nil
}

// AddToWishlist saves a product. Adding a product twice is a no-op.
func (s *WishlistService) AddToWishlist(ctx context.Context, userID uint, req *AddToWishlistRequest) ([]WishlistItem, error) {
	if req.ProductID == 0 {
		return nil, apperr.Validation("productId is required")
	}
	if _, err := s.products.ProductPrice(ctx, req.ProductID); err != nil {
		return nil, err
	}

	item := WishlistItem{UserID: userID, ProductID: req.ProductID, AddedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(&item).Error
	if err != nil {
		return nil, fmt.Errorf("failed to add to wishlist: %w", err)
	}

	return s.GetWishlist(ctx, userID)
}

// RemoveFromWishlist drops a product from the wishlist
func (s *WishlistService) RemoveFromWishlist(ctx context.Context, userID, productID uint) ([]WishlistItem, error) {
	result := s.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&WishlistItem{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to remove from wishlist: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrWishlistItemNotFound
	}
	return s.GetWishlist(ctx, userID)
}
