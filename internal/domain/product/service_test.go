package product

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-api/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&Product{}))
	return NewService(db)
}

func ptr[T any](v T) *T { return &v }

func seed(t *testing.T, s *Service, name, category string, price float64) *Product {
	t.Helper()
	p, err := s.CreateProduct(context.Background(), &CreateRequest{
		Name:        name,
		Description: name + " description",
		Price:       ptr(price),
		Category:    category,
		Rating:      ptr(4.5),
	})
	require.NoError(t, err)
	return p
}

func TestCreateProduct(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	p := seed(t, s, "Cotton T-Shirt!", "apparel", 250)
	assert.NotZero(t, p.ID)
	assert.True(t, p.Stock)
	assert.Regexp(t, `^cotton-t-shirt-[0-9a-f]{8}$`, p.Slug)

	other := seed(t, s, "Cotton T-Shirt!", "apparel", 250)
	assert.NotEqual(t, p.Slug, other.Slug)

	_, err := s.CreateProduct(ctx, &CreateRequest{Name: "x"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	msg := apperr.MessageOf(err, "")
	assert.Contains(t, msg, "Invalid product data")
	assert.Contains(t, msg, "description is required")
	assert.Contains(t, msg, "price is required")
	assert.Contains(t, msg, "category is required")

	outOfStock, err := s.CreateProduct(ctx, &CreateRequest{
		Name: "Mug", Description: "d", Price: ptr(0.0), Category: "kitchen", Stock: ptr(false),
	})
	require.NoError(t, err)
	reloaded, err := s.GetProduct(ctx, outOfStock.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.Stock)
	assert.Equal(t, 0.0, reloaded.Price)
}

func TestUpdateProductFalsyVersusNullish(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	p := seed(t, s, "Lamp", "home", 100)

	updated, err := s.UpdateProduct(ctx, p.ID, &UpdateRequest{
		Name:     "",
		Price:    ptr(0.0),
		Rating:   ptr(0.0),
		Stock:    ptr(false),
		Category: "lighting",
	})
	require.NoError(t, err)

	assert.Equal(t, "Lamp", updated.Name)
	assert.Equal(t, 100.0, updated.Price)
	assert.Equal(t, 0.0, updated.Rating)
	assert.False(t, updated.Stock)
	assert.Equal(t, "lighting", updated.Category)
	assert.Equal(t, p.Slug, updated.Slug)
}

func TestUpdateAndDeleteMissingProduct(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.UpdateProduct(ctx, 999, &UpdateRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrProductNotFound)

	err = s.DeleteProduct(ctx, 999)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = s.GetProduct(ctx, 999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestDeleteProduct(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	p := seed(t, s, "Chair", "home", 900)

	require.NoError(t, s.DeleteProduct(ctx, p.ID))
	_, err := s.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCategories(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	seed(t, s, "Chair", "home", 900)
	seed(t, s, "Table", "home", 1500)
	seed(t, s, "Shirt", "apparel", 200)

	categories, err := s.GetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"apparel", "home"}, categories)

	products, err := s.GetProductsByCategory(ctx, "home")
	require.NoError(t, err)
	assert.Len(t, products, 2)

	_, err = s.GetProductsByCategory(ctx, "garden")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, "No products found in category: garden", apperr.MessageOf(err, ""))
}

func TestListProductsEmpty(t *testing.T) {
	s := newTestService(t)
	products, err := s.ListProducts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}
