package postgres

import (
	"context"
	"io"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-api/internal/domain/product"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMigrationRunsOnSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)
	m := NewMigration(db, log)

	require.NoError(t, m.RunAutoMigrations())
	require.NoError(t, m.CreateIndexes())

	for _, table := range []string{"users", "user_addresses", "user_cart_items", "user_wishlist_items", "products", "orders", "order_items"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	ctx := context.Background()
	require.NoError(t, m.SeedInitialData(ctx))
	require.NoError(t, m.SeedInitialData(ctx))

	var count int64
	require.NoError(t, db.Model(&product.Product{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}
