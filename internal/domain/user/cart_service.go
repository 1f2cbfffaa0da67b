// internal/domain/user/cart_service.go
package user

import (
	"context"
	"fmt"
	"time"

	"github.com/your-org/storefront-api/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCartItemNotFound = apperr.NotFound("Item not found in cart")
	ErrInvalidQuantity  = apperr.Validation("Quantity must be at least 1")
)

// ProductLookup resolves the current price of a catalog product
type ProductLookup interface {
	ProductPrice(ctx context.Context, productID uint) (float64, error)
}

// Cart is the user's cart with derived totals
type Cart struct {
	Items     []CartItem `json:"items"`
	Total     float64    `json:"cartTotal"`
	ItemCount int        `json:"cartItemCount"`
}

// CartService manages the cart sub-collection of a user
type CartService struct {
	db       *gorm.DB
	products ProductLookup
}

// NewCartService creates a new cart service
func NewCartService(db *gorm.DB, products ProductLookup) *CartService {
	return &CartService{db: db, products: products}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity"`
}

// GetCart returns the cart with totals
func (s *CartService) GetCart(ctx context.Context, userID uint) (*Cart, error) {
	items := []CartItem{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	u := User{Cart: items}
	return &Cart{Items: items, Total: u.CartTotal(), ItemCount: u.CartItemCount()}, nil
}

// AddToCart adds quantity units of a product. A product already in the cart
// has its quantity increased and keeps its original price snapshot.
func (s *CartService) AddToCart(ctx context.Context, userID uint, req *AddToCartRequest) (*Cart, error) {
	if req.ProductID == 0 {
		return nil, apperr.Validation("productId is required")
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	price, err := s.products.ProductPrice(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	item := CartItem{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  quantity,
		Price:     price,
		AddedAt:   time.Now().UTC(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("user_cart_items.quantity + ?", quantity),
		}),
	}).Create(&item).Error
	if err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	return s.GetCart(ctx, userID)
}

// RemoveFromCart drops a product from the cart
func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID uint) (*Cart, error) {
	result := s.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&CartItem{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to remove from cart: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrCartItemNotFound
	}
	return s.GetCart(ctx, userID)
}

// ClearCart empties the cart
func (s *CartService) ClearCart(ctx context.Context, userID uint) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
