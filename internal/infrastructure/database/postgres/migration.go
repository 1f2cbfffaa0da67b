// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/order"
	"github.com/your-org/storefront-api/internal/domain/product"
	"github.com/your-org/storefront-api/internal/domain/user"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	// Owners before the tables that reference them
	models := []interface{}{
		&user.User{},
		&user.Address{},
		&product.Product{},
		&user.CartItem{},
		&user.WishlistItem{},
		&order.Order{},
		&order.OrderItem{},
	}

	for _, model := range models {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates the composite indexes AutoMigrate cannot express
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_payment_status ON orders(payment_status)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_category_created ON products(category, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_user_addresses_user_default ON user_addresses(user_id, is_default)",
	}

	failed := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).WithField("sql", indexSQL).Warn("Failed to create index")
			failed++
		}
	}

	m.logger.WithFields(logrus.Fields{
		"created": len(indexes) - failed,
		"failed":  failed,
	}).Info("Database indexes ensured")

	if failed > 0 {
		return fmt.Errorf("%d of %d indexes failed", failed, len(indexes))
	}
	return nil
}

// SeedInitialData inserts a small development catalog when the products
// table is empty
func (m *Migration) SeedInitialData(ctx context.Context) error {
	var count int64
	if err := m.db.WithContext(ctx).Model(&product.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		m.logger.WithField("products", count).Debug("Catalog already seeded")
		return nil
	}

	price := func(v float64) *float64 { return &v }
	seed := []product.CreateRequest{
		{Name: "Wireless Headphones", Description: "Over-ear noise cancelling headphones", Price: price(2499), Category: "Electronics", Image: "/images/headphones.jpg"},
		{Name: "Smart Watch", Description: "Fitness tracking smart watch", Price: price(3199), Category: "Electronics", Image: "/images/watch.jpg"},
		{Name: "Cotton T-Shirt", Description: "Plain crew neck t-shirt", Price: price(299), Category: "Clothing", Image: "/images/tshirt.jpg"},
		{Name: "Ceramic Mug", Description: "350ml ceramic mug", Price: price(149), Category: "Home", Image: "/images/mug.jpg"},
	}

	products := product.NewService(m.db)
	for i := range seed {
		p, err := products.CreateProduct(ctx, &seed[i])
		if err != nil {
			return fmt.Errorf("failed to seed product %q: %w", seed[i].Name, err)
		}
		m.logger.WithField("slug", p.Slug).Debug("Seeded product")
	}

	m.logger.WithField("products", len(seed)).Info("Development catalog seeded")
	return nil
}
