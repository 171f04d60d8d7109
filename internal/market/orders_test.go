package market

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/farmermarket/farmer_market/internal/models"
)

func TestPlaceOrderEmptyCart(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}

	_, _, err := svc.PlaceOrder(context.Background(), 1, ShippingInfo{})
	require.ErrorIs(t, err, ErrEmptyCart)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestPlaceOrderFreezesPricesAndClearsCart(t *testing.T) {
	db := newTestDB(t)
	cart := &CartService{DB: db}
	svc := &OrderService{DB: db}
	ctx := context.Background()

	p1 := createProduct(t, db, 1, 100, nil)
	p2 := createProduct(t, db, 2, 200, ptr(150))

	_, err := cart.AddOrIncrement(ctx, 1, p1.ID, 2)
	require.NoError(t, err)
	_, err = cart.AddOrIncrement(ctx, 1, p2.ID, 1)
	require.NoError(t, err)

	order, items, err := svc.PlaceOrder(ctx, 1, ShippingInfo{
		Address: "12 Farm Lane",
		City:    "Pune",
		Pincode: "411001",
	})
	require.NoError(t, err)

	require.Equal(t, float64(350), order.TotalAmount)
	require.Equal(t, "pending", order.Status)
	require.Equal(t, "cod", order.PaymentMethod)
	require.Equal(t, "pending", order.PaymentStatus)
	require.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))
	require.Len(t, order.OrderNumber, 10)

	require.Len(t, items, 2)
	require.Equal(t, float64(100), items[0].UnitPrice)
	require.Equal(t, float64(200), items[0].LineTotal)
	require.Equal(t, p1.StoreID, items[0].StoreID)
	require.Equal(t, float64(150), items[1].UnitPrice)
	require.Equal(t, float64(150), items[1].LineTotal)
	for _, it := range items {
		require.Equal(t, StatusPending, it.SellerStatus)
	}

	lines, err := cart.List(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, lines)

	// Later price edits must not touch the frozen order.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", p1.ID).Update("price", 999).Error)
	var stored models.OrderItem
	require.NoError(t, db.First(&stored, items[0].ID).Error)
	require.Equal(t, float64(100), stored.UnitPrice)
}

func TestPlaceOrderMissingProductRollsBack(t *testing.T) {
	db := newTestDB(t)
	svc := &OrderService{DB: db}
	ctx := context.Background()

	require.NoError(t, db.Create(&models.CartItem{UserID: 1, ProductID: 777, Quantity: 1}).Error)

	_, _, err := svc.PlaceOrder(ctx, 1, ShippingInfo{})
	require.ErrorIs(t, err, ErrNotFound)

	var orders, cartLines int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.CartItem{}).Count(&cartLines).Error)
	require.Zero(t, orders)
	require.Equal(t, int64(1), cartLines)
}

func TestPlaceOrderRegeneratesCollidingNumber(t *testing.T) {
	db := newTestDB(t)
	cart := &CartService{DB: db}
	svc := &OrderService{DB: db}
	ctx := context.Background()

	taken := models.Order{OrderNumber: "ORD-AAAAAA", UserID: 9, Status: "pending"}
	require.NoError(t, db.Create(&taken).Error)

	numbers := []string{"ORD-AAAAAA", "ORD-ZZZZZZ"}
	orig := newOrderNumber
	newOrderNumber = func() string {
		n := numbers[0]
		if len(numbers) > 1 {
			numbers = numbers[1:]
		}
		return n
	}
	t.Cleanup(func() { newOrderNumber = orig })

	p := createProduct(t, db, 1, 50, nil)
	_, err := cart.AddOrIncrement(ctx, 1, p.ID, 1)
	require.NoError(t, err)

	order, _, err := svc.PlaceOrder(ctx, 1, ShippingInfo{})
	require.NoError(t, err)
	require.Equal(t, "ORD-ZZZZZZ", order.OrderNumber)

	// The colliding attempt leaves no extra rows behind.
	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	require.Equal(t, int64(2), count)
}

func TestNewOrderNumberFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := NewOrderNumber()
		require.True(t, strings.HasPrefix(n, "ORD-"))
		require.Len(t, n, 10)
		for _, r := range n[4:] {
			require.Contains(t, orderNumberAlphabet, string(r))
		}
		seen[n] = true
	}
	require.Greater(t, len(seen), 90)
}

func TestListByUserAndGet(t *testing.T) {
	db := newTestDB(t)
	cart := &CartService{DB: db}
	svc := &OrderService{DB: db}
	ctx := context.Background()

	p := createProduct(t, db, 1, 50, nil)
	_, err := cart.AddOrIncrement(ctx, 1, p.ID, 1)
	require.NoError(t, err)
	order, _, err := svc.PlaceOrder(ctx, 1, ShippingInfo{})
	require.NoError(t, err)

	list, err := svc.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, order.ID, list[0].ID)
	require.Equal(t, "Pending", list[0].DisplayStatus)
	require.Len(t, list[0].Items, 1)

	got, err := svc.Get(ctx, 1, order.ID)
	require.NoError(t, err)
	require.Equal(t, order.OrderNumber, got.OrderNumber)

	_, err = svc.Get(ctx, 2, order.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
