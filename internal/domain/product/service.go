// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/your-org/storefront-api/internal/pkg/apperr"
	"github.com/your-org/storefront-api/internal/pkg/validation"
	"gorm.io/gorm"
)

// ErrProductNotFound is returned for unknown product ids
var ErrProductNotFound = apperr.NotFound("Product not found")

// Service handles product business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new product service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateRequest represents product creation data. Numeric fields are
// pointers so an explicit zero is distinguishable from a missing value.
type CreateRequest struct {
	Name            string   `json:"name" validate:"required"`
	Description     string   `json:"description" validate:"required"`
	Image           string   `json:"image"`
	Price           *float64 `json:"price" validate:"required,gte=0"`
	Category        string   `json:"category" validate:"required"`
	Rating          *float64 `json:"rating" validate:"omitempty,gte=0"`
	NumbersOfRating *int     `json:"numbersOfRating" validate:"omitempty,gte=0"`
	Stock           *bool    `json:"stock"`
	Discount        *float64 `json:"discount" validate:"omitempty,gte=0"`
}

// UpdateRequest represents a partial product update. String fields and price
// are applied only when non-empty and non-zero; rating, rating count, stock
// and discount are applied whenever present, zero included.
type UpdateRequest struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Image           string   `json:"image"`
	Price           *float64 `json:"price" validate:"omitempty,gte=0"`
	Category        string   `json:"category"`
	Rating          *float64 `json:"rating" validate:"omitempty,gte=0"`
	NumbersOfRating *int     `json:"numbersOfRating" validate:"omitempty,gte=0"`
	Stock           *bool    `json:"stock"`
	Discount        *float64 `json:"discount" validate:"omitempty,gte=0"`
}

// ListProducts returns every product, newest first
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	products := []Product{}
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}
	return products, nil
}

// GetProduct retrieves a single product by id
func (s *Service) GetProduct(ctx context.Context, id uint) (*Product, error) {
	var product Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &product, nil
}

// ProductPrice returns the current price of a product
func (s *Service) ProductPrice(ctx context.Context, id uint) (float64, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return 0, err
	}
	return product.Price, nil
}

// CreateProduct creates a new product with a generated slug
func (s *Service) CreateProduct(ctx context.Context, req *CreateRequest) (*Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.Category = strings.TrimSpace(req.Category)

	if err := validation.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "Invalid product data: "+apperr.MessageOf(err, err.Error()), err)
	}

	product := Product{
		Name:        req.Name,
		Description: req.Description,
		Image:       strings.TrimSpace(req.Image),
		Price:       *req.Price,
		Category:    req.Category,
		Stock:       true,
		Slug:        generateSlug(req.Name),
	}
	if req.Rating != nil {
		product.Rating = *req.Rating
	}
	if req.NumbersOfRating != nil {
		product.NumbersOfRating = *req.NumbersOfRating
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Discount != nil {
		product.Discount = *req.Discount
	}

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &product, nil
}

// UpdateProduct applies a partial update
func (s *Service) UpdateProduct(ctx context.Context, id uint, req *UpdateRequest) (*Product, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if v := strings.TrimSpace(req.Name); v != "" {
		updates["name"] = v
	}
	if v := strings.TrimSpace(req.Description); v != "" {
		updates["description"] = v
	}
	if v := strings.TrimSpace(req.Image); v != "" {
		updates["image"] = v
	}
	if req.Price != nil && *req.Price != 0 {
		updates["price"] = *req.Price
	}
	if v := strings.TrimSpace(req.Category); v != "" {
		updates["category"] = v
	}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}
	if req.NumbersOfRating != nil {
		updates["numbers_of_rating"] = *req.NumbersOfRating
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.Discount != nil {
		updates["discount"] = *req.Discount
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	return s.GetProduct(ctx, id)
}

// DeleteProduct removes a product permanently
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// GetCategories returns the distinct category values in alphabetical order
func (s *Service) GetCategories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := s.db.WithContext(ctx).Model(&Product{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// GetProductsByCategory returns the products of a category. An empty result
// is reported as not found.
func (s *Service) GetProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	products := []Product{}
	if err := s.db.WithContext(ctx).Where("category = ?", category).Order("id ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}
	if len(products) == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("No products found in category: %s", category))
	}
	return products, nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// generateSlug generates URL-friendly slug from name with a short random
// suffix so products sharing a name still get distinct slugs
func generateSlug(name string) string {
	slug := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = "product"
	}
	return slug + "-" + uuid.NewString()[:8]
}
