package market

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/farmermarket/farmer_market/internal/config"
	"github.com/farmermarket/farmer_market/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func createProduct(t *testing.T, db *gorm.DB, storeID uint, price float64, discount *float64) models.Product {
	t.Helper()
	p := models.Product{
		StoreID:       storeID,
		Name:          "test product",
		Price:         price,
		DiscountPrice: discount,
		Status:        "active",
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func ptr(v float64) *float64 { return &v }
