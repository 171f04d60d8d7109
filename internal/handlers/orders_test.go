package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/farmermarket/farmer_market/internal/market"
	"github.com/farmermarket/farmer_market/internal/models"
)

func TestCheckoutFlow(t *testing.T) {
	env := newTestEnv(t)
	store := env.createStore(2, "approved")
	p1 := env.createProduct(store.ID, 100, nil)
	p2 := env.createProduct(store.ID, 200, ptr(150))

	require.NoError(t, env.DB.Create(&models.CartItem{UserID: 1, ProductID: p1.ID, Quantity: 2}).Error)
	require.NoError(t, env.DB.Create(&models.CartItem{UserID: 1, ProductID: p2.ID, Quantity: 1}).Error)

	rec, c := env.doJSON(http.MethodPost, "/api/v1/cart/checkout", map[string]string{
		"shipping_address": "12 Farm Lane",
		"shipping_city":    "Pune",
		"shipping_pincode": "411001",
		"shipping_phone":   "9999999999",
	})
	asUser(c, 1, "buyer")
	require.NoError(t, env.Orders.Checkout(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp market.OrderWithItems
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, float64(350), resp.TotalAmount)
	require.Equal(t, "Pending", resp.DisplayStatus)
	require.Len(t, resp.Items, 2)
	require.Equal(t, float64(100), resp.Items[0].UnitPrice)
	require.Equal(t, float64(150), resp.Items[1].UnitPrice)

	var cartCount int64
	require.NoError(t, env.DB.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&cartCount).Error)
	require.Zero(t, cartCount)

	require.Contains(t, env.Events.topics(), "order_events")
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSON(http.MethodPost, "/api/v1/cart/checkout", map[string]string{})
	asUser(c, 1, "buyer")
	err := env.Orders.Checkout(c)
	require.Equal(t, http.StatusBadRequest, httpCode(t, err))

	var orderCount int64
	require.NoError(t, env.DB.Model(&models.Order{}).Count(&orderCount).Error)
	require.Zero(t, orderCount)
}

func TestConfirmReceivedLifecycle(t *testing.T) {
	env := newTestEnv(t)
	store := env.createStore(2, "approved")
	p := env.createProduct(store.ID, 100, nil)
	require.NoError(t, env.DB.Create(&models.CartItem{UserID: 1, ProductID: p.ID, Quantity: 1}).Error)

	rec, c := env.doJSON(http.MethodPost, "/api/v1/cart/checkout", map[string]string{})
	asUser(c, 1, "buyer")
	require.NoError(t, env.Orders.Checkout(c))

	var placed market.OrderWithItems
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))
	orderID := strconv.Itoa(int(placed.ID))
	itemID := strconv.Itoa(int(placed.Items[0].ID))

	// Nothing approved yet: confirmation is rejected.
	_, c = env.doJSON(http.MethodPost, "/api/v1/orders/"+orderID+"/received", nil)
	c.SetParamNames("id")
	c.SetParamValues(orderID)
	asUser(c, 1, "buyer")
	err := env.Orders.ConfirmReceived(c)
	require.Equal(t, http.StatusConflict, httpCode(t, err))

	// Seller approves their line item.
	_, c = env.doJSON(http.MethodPatch, "/api/v1/seller/order-items/"+itemID+"/status", map[string]string{"status": "approved"})
	c.SetParamNames("id")
	c.SetParamValues(itemID)
	asUser(c, 2, "seller")
	require.NoError(t, env.Seller.SetItemStatus(c))

	rec, c = env.doJSON(http.MethodPost, "/api/v1/orders/"+orderID+"/received", nil)
	c.SetParamNames("id")
	c.SetParamValues(orderID)
	asUser(c, 1, "buyer")
	require.NoError(t, env.Orders.ConfirmReceived(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		DisplayStatus string             `json:"display_status"`
		Items         []models.OrderItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Received", resp.DisplayStatus)
	require.Equal(t, "received", resp.Items[0].SellerStatus)
	require.True(t, resp.Items[0].ReceivedConfirmed)
}

func TestGetOrderDisplayStatusPriority(t *testing.T) {
	env := newTestEnv(t)

	order := models.Order{OrderNumber: market.NewOrderNumber(), UserID: 1, Status: "pending"}
	require.NoError(t, env.DB.Create(&order).Error)
	require.NoError(t, env.DB.Create(&models.OrderItem{OrderID: order.ID, ProductID: 1, StoreID: 1, Quantity: 1, UnitPrice: 10, LineTotal: 10, SellerStatus: "approved"}).Error)
	require.NoError(t, env.DB.Create(&models.OrderItem{OrderID: order.ID, ProductID: 2, StoreID: 1, Quantity: 1, UnitPrice: 10, LineTotal: 10, SellerStatus: "pending"}).Error)

	id := strconv.Itoa(int(order.ID))
	rec, c := env.doJSON(http.MethodGet, "/api/v1/orders/"+id, nil)
	c.SetParamNames("id")
	c.SetParamValues(id)
	asUser(c, 1, "buyer")
	require.NoError(t, env.Orders.GetOrder(c))

	var resp market.OrderWithItems
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Approved", resp.DisplayStatus)
}
