package market

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/farmermarket/farmer_market/internal/models"
)

// CartService accumulates the line items a buyer intends to purchase.
// One row per (user, product), enforced by upsert semantics and a unique index.
type CartService struct {
	DB *gorm.DB
}

// CartLine is a cart row with its product resolved for display. Prices are
// read live on every List call; nothing is frozen until checkout.
type CartLine struct {
	models.CartItem
	Product models.Product `json:"product"`
}

func (l *CartLine) LineTotal() float64 {
	return l.Product.EffectivePrice() * float64(l.Quantity)
}

// AddOrIncrement adds quantity to the existing line for (userID, productID),
// creating the line if none exists.
func (s *CartService) AddOrIncrement(ctx context.Context, userID, productID, quantity uint) (*models.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	db := s.DB.WithContext(ctx)

	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}

	var item models.CartItem
	err := db.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	if err == nil {
		item.Quantity += quantity
		if err := db.Save(&item).Error; err != nil {
			return nil, fmt.Errorf("update cart line: %w", err)
		}
		return &item, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load cart line: %w", err)
	}

	item = models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := db.Create(&item).Error; err != nil {
		// A concurrent add won the insert; fold this one into it.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.AddOrIncrement(ctx, userID, productID, quantity)
		}
		return nil, fmt.Errorf("create cart line: %w", err)
	}
	return &item, nil
}

// SetQuantity overwrites the quantity of the caller's cart line.
// A quantity of zero or less deletes the line.
func (s *CartService) SetQuantity(ctx context.Context, userID, itemID uint, quantity int) (*models.CartItem, error) {
	db := s.DB.WithContext(ctx)

	var item models.CartItem
	if err := db.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load cart line: %w", err)
	}

	if quantity <= 0 {
		if err := db.Delete(&item).Error; err != nil {
			return nil, fmt.Errorf("delete cart line: %w", err)
		}
		return nil, nil
	}

	item.Quantity = uint(quantity)
	if err := db.Save(&item).Error; err != nil {
		return nil, fmt.Errorf("update cart line: %w", err)
	}
	return &item, nil
}

// Remove deletes the caller's cart line outright.
func (s *CartService) Remove(ctx context.Context, userID, itemID uint) error {
	res := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("delete cart line: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the buyer's cart lines with current product data.
func (s *CartService) List(ctx context.Context, userID uint) ([]CartLine, error) {
	db := s.DB.WithContext(ctx)

	var items []models.CartItem
	if err := db.Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	lines := make([]CartLine, 0, len(items))
	for _, it := range items {
		var product models.Product
		if err := db.First(&product, it.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("load product: %w", err)
		}
		lines = append(lines, CartLine{CartItem: it, Product: product})
	}
	return lines, nil
}

// Subtotal sums effective price times quantity over the given lines.
func Subtotal(lines []CartLine) float64 {
	var total float64
	for i := range lines {
		total += lines[i].LineTotal()
	}
	return total
}
