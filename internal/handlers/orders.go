package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmermarket/farmer_market/internal/events"
	"github.com/farmermarket/farmer_market/internal/market"
	"github.com/farmermarket/farmer_market/internal/service/token"
)

type OrderHandler struct {
	Orders      *market.OrderService
	Fulfillment *market.FulfillmentService
	Producer    events.Publisher
}

// Checkout snapshots the cart into an order.
func (h *OrderHandler) Checkout(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var shipping market.ShippingInfo
	if err := c.Bind(&shipping); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, items, err := h.Orders.PlaceOrder(c.Request().Context(), userID, shipping)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, events.TopicOrder, userID, map[string]any{
		"type":        "order_created",
		"userID":      userID,
		"orderID":     order.ID,
		"orderNumber": order.OrderNumber,
		"total":       order.TotalAmount,
	})

	return c.JSON(http.StatusCreated, market.OrderWithItems{
		Order:         *order,
		Items:         items,
		DisplayStatus: market.DisplayStatus(items),
	})
}

func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	orders, err := h.Orders.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	order, err := h.Orders.Get(c.Request().Context(), userID, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

// ConfirmReceived marks the order's approved items as received.
func (h *OrderHandler) ConfirmReceived(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	items, err := h.Fulfillment.ConfirmReceived(c.Request().Context(), userID, id)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, events.TopicOrder, userID, map[string]any{
		"type":    "order_received",
		"userID":  userID,
		"orderID": id,
	})

	return c.JSON(http.StatusOK, map[string]any{
		"items":          items,
		"display_status": market.DisplayStatus(items),
	})
}
