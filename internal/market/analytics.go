package market

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/farmermarket/farmer_market/internal/models"
)

const topProductsLimit = 5

// AnalyticsService is a read-only projection over historical order items.
// Only approved and received items count toward sales and revenue; pending
// and discarded items are excluded.
type AnalyticsService struct {
	DB *gorm.DB
}

type ProductSales struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  uint    `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

type StoreStats struct {
	TotalSold   uint           `json:"total_sold"`
	Revenue     float64        `json:"revenue"`
	ItemCount   int            `json:"item_count"`
	TopProducts []ProductSales `json:"top_products"`
}

type PlatformStats struct {
	Users   int64   `json:"users"`
	Stores  int64   `json:"stores"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// StoreStats aggregates the store's sold items in memory. Rows are read in
// insertion order and ranked with a stable sort, so equal quantities keep
// first-sold-first ranking.
func (s *AnalyticsService) StoreStats(ctx context.Context, storeID uint) (*StoreStats, error) {
	db := s.DB.WithContext(ctx)

	var items []models.OrderItem
	err := db.Where("store_id = ? AND seller_status IN ?", storeID, []string{StatusApproved, StatusReceived}).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("load sold items: %w", err)
	}

	stats := &StoreStats{ItemCount: len(items)}
	byProduct := make(map[uint]*ProductSales)
	var productOrder []uint
	for _, it := range items {
		stats.TotalSold += it.Quantity
		stats.Revenue += it.LineTotal

		agg, ok := byProduct[it.ProductID]
		if !ok {
			agg = &ProductSales{ProductID: it.ProductID}
			byProduct[it.ProductID] = agg
			productOrder = append(productOrder, it.ProductID)
		}
		agg.Quantity += it.Quantity
		agg.Revenue += it.LineTotal
	}

	ranked := make([]ProductSales, 0, len(productOrder))
	for _, id := range productOrder {
		ranked = append(ranked, *byProduct[id])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Quantity > ranked[j].Quantity
	})
	if len(ranked) > topProductsLimit {
		ranked = ranked[:topProductsLimit]
	}

	for i := range ranked {
		var p models.Product
		if err := db.First(&p, ranked[i].ProductID).Error; err == nil {
			ranked[i].Name = p.Name
		}
	}
	stats.TopProducts = ranked
	return stats, nil
}

// PlatformStats is the admin dashboard projection over the whole marketplace.
func (s *AnalyticsService) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	db := s.DB.WithContext(ctx)
	stats := &PlatformStats{}

	if err := db.Model(&models.User{}).Count(&stats.Users).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if err := db.Model(&models.Store{}).Count(&stats.Stores).Error; err != nil {
		return nil, fmt.Errorf("count stores: %w", err)
	}
	if err := db.Model(&models.Order{}).Count(&stats.Orders).Error; err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	var items []models.OrderItem
	err := db.Where("seller_status IN ?", []string{StatusApproved, StatusReceived}).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("load sold items: %w", err)
	}
	for _, it := range items {
		stats.Revenue += it.LineTotal
	}
	return stats, nil
}
