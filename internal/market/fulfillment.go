package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/farmermarket/farmer_market/internal/models"
)

// FulfillmentService moves order line items through the seller-controlled
// states and lets the buyer close the loop. Every transition is a conditional
// update keyed on the expected prior status, so concurrent writers cannot
// revert a terminal state.
type FulfillmentService struct {
	DB *gorm.DB
}

// StoreOrderItem is a line item as the seller sees it, joined with the order
// number and product name.
type StoreOrderItem struct {
	models.OrderItem
	OrderNumber string `json:"order_number"`
	ProductName string `json:"product_name"`
}

// SetItemStatus transitions a pending line item of the given store to
// "approved" or "discarded". Items in any other state are rejected with
// ErrInvalidTransition.
func (s *FulfillmentService) SetItemStatus(ctx context.Context, storeID, itemID uint, target string) (*models.OrderItem, error) {
	if !SellerTargets[target] {
		return nil, fmt.Errorf("%w: target %q", ErrInvalidTransition, target)
	}

	db := s.DB.WithContext(ctx)

	res := db.Model(&models.OrderItem{}).
		Where("id = ? AND store_id = ? AND seller_status = ?", itemID, storeID, StatusPending).
		Update("seller_status", target)
	if res.Error != nil {
		return nil, fmt.Errorf("update line item: %w", res.Error)
	}

	var item models.OrderItem
	if err := db.Where("id = ? AND store_id = ?", itemID, storeID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load line item: %w", err)
	}

	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: item is %s", ErrInvalidTransition, item.SellerStatus)
	}
	return &item, nil
}

// ConfirmReceived marks every approved line item of the buyer's order as
// received. Pending and discarded items are left untouched; calling it again
// with nothing approved is rejected.
func (s *FulfillmentService) ConfirmReceived(ctx context.Context, userID, orderID uint) ([]models.OrderItem, error) {
	db := s.DB.WithContext(ctx)

	var order models.Order
	if err := db.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}

	now := time.Now().UTC()
	res := db.Model(&models.OrderItem{}).
		Where("order_id = ? AND seller_status = ?", orderID, StatusApproved).
		Updates(map[string]any{
			"seller_status":      StatusReceived,
			"received_confirmed": true,
			"received_at":        now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("confirm received: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: no approved items", ErrInvalidTransition)
	}

	var items []models.OrderItem
	if err := db.Where("order_id = ?", orderID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	return items, nil
}

// ListStoreItems returns the store's line items, newest first, for the
// seller's fulfillment view.
func (s *FulfillmentService) ListStoreItems(ctx context.Context, storeID uint) ([]StoreOrderItem, error) {
	var rows []StoreOrderItem
	err := s.DB.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("order_items.*, orders.order_number AS order_number, products.name AS product_name").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("order_items.store_id = ?", storeID).
		Order("order_items.id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load store items: %w", err)
	}
	return rows, nil
}
