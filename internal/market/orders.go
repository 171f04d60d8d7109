package market

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"gorm.io/gorm"

	"github.com/farmermarket/farmer_market/internal/models"
)

const orderNumberAttempts = 5

// OrderService converts a cart snapshot into an immutable order with
// per-line-item fulfillment records.
type OrderService struct {
	DB *gorm.DB
}

type ShippingInfo struct {
	Address string `json:"shipping_address"`
	City    string `json:"shipping_city"`
	State   string `json:"shipping_state"`
	Pincode string `json:"shipping_pincode"`
	Phone   string `json:"shipping_phone"`
}

// OrderWithItems pairs an order with its line items and the derived
// buyer-facing status.
type OrderWithItems struct {
	models.Order
	Items         []models.OrderItem `json:"items"`
	DisplayStatus string             `json:"display_status"`
}

// PlaceOrder snapshots the buyer's cart into an order. Unit prices are frozen
// at this instant; the cart is cleared. Everything runs in one transaction so
// an orphaned order or half-cleared cart cannot be observed.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint, shipping ShippingInfo) (*models.Order, []models.OrderItem, error) {
	var (
		order models.Order
		items []models.OrderItem
	)

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cartItems []models.CartItem
		if err := tx.Where("user_id = ?", userID).Order("id ASC").Find(&cartItems).Error; err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if len(cartItems) == 0 {
			return ErrEmptyCart
		}

		type pricedLine struct {
			cart    models.CartItem
			product models.Product
			price   float64
		}
		lines := make([]pricedLine, 0, len(cartItems))
		var total float64
		for _, it := range cartItems {
			var p models.Product
			if err := tx.First(&p, it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product %d: %w", it.ProductID, ErrNotFound)
				}
				return fmt.Errorf("load product: %w", err)
			}
			price := p.EffectivePrice()
			lines = append(lines, pricedLine{cart: it, product: p, price: price})
			total += price * float64(it.Quantity)
		}

		order = models.Order{
			UserID:          userID,
			TotalAmount:     total,
			Status:          "pending",
			ShippingAddress: shipping.Address,
			ShippingCity:    shipping.City,
			ShippingState:   shipping.State,
			ShippingPincode: shipping.Pincode,
			ShippingPhone:   shipping.Phone,
			PaymentMethod:   "cod",
			PaymentStatus:   "pending",
		}
		if err := createWithOrderNumber(tx, &order); err != nil {
			return err
		}

		items = make([]models.OrderItem, 0, len(lines))
		for _, l := range lines {
			oi := models.OrderItem{
				OrderID:      order.ID,
				ProductID:    l.product.ID,
				StoreID:      l.product.StoreID,
				Quantity:     l.cart.Quantity,
				UnitPrice:    l.price,
				LineTotal:    l.price * float64(l.cart.Quantity),
				SellerStatus: StatusPending,
			}
			if err := tx.Create(&oi).Error; err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
			items = append(items, oi)
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})

	if txErr != nil {
		return nil, nil, txErr
	}
	return &order, items, nil
}

var newOrderNumber = NewOrderNumber

// createWithOrderNumber inserts the order, regenerating the human-readable
// number on a unique-constraint collision. Each attempt runs in its own
// savepoint: on Postgres a unique violation aborts the enclosing transaction,
// and only a rollback to the savepoint makes the next insert possible.
func createWithOrderNumber(tx *gorm.DB, order *models.Order) error {
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.ID = 0
		order.OrderNumber = newOrderNumber()
		err := tx.Transaction(func(tx *gorm.DB) error {
			return tx.Create(order).Error
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		return fmt.Errorf("create order: %w", err)
	}
	return fmt.Errorf("create order: could not allocate a unique order number")
}

const orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderNumber returns a human-readable order number, a fixed prefix plus
// six base-36 characters.
func NewOrderNumber() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = orderNumberAlphabet[rand.IntN(len(orderNumberAlphabet))]
	}
	return "ORD-" + string(b)
}

// ListByUser returns the buyer's orders, newest first, each with its items
// and derived display status.
func (s *OrderService) ListByUser(ctx context.Context, userID uint) ([]OrderWithItems, error) {
	db := s.DB.WithContext(ctx)

	var orders []models.Order
	if err := db.Where("user_id = ?", userID).Order("id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	out := make([]OrderWithItems, 0, len(orders))
	for _, o := range orders {
		var items []models.OrderItem
		if err := db.Where("order_id = ?", o.ID).Order("id ASC").Find(&items).Error; err != nil {
			return nil, fmt.Errorf("load order items: %w", err)
		}
		out = append(out, OrderWithItems{Order: o, Items: items, DisplayStatus: DisplayStatus(items)})
	}
	return out, nil
}

// Get returns one of the buyer's orders with its items.
func (s *OrderService) Get(ctx context.Context, userID, orderID uint) (*OrderWithItems, error) {
	db := s.DB.WithContext(ctx)

	var order models.Order
	if err := db.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}

	var items []models.OrderItem
	if err := db.Where("order_id = ?", order.ID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	return &OrderWithItems{Order: order, Items: items, DisplayStatus: DisplayStatus(items)}, nil
}
