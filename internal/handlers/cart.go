package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/farmermarket/farmer_market/internal/events"
	"github.com/farmermarket/farmer_market/internal/market"
	"github.com/farmermarket/farmer_market/internal/service/token"
)

type CartHandler struct {
	Cart     *market.CartService
	Producer events.Publisher
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	lines, err := h.Cart.List(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"items":    lines,
		"subtotal": market.Subtotal(lines),
	})
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ProductID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is required")
	}

	item, err := h.Cart.AddOrIncrement(c.Request().Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, events.TopicCart, userID, map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": req.ProductID,
		"quantity":  item.Quantity,
	})
	return c.JSON(http.StatusOK, item)
}

// SetQuantity overwrites a line's quantity; zero or less removes the line.
func (h *CartHandler) SetQuantity(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.Cart.SetQuantity(c.Request().Context(), userID, id, req.Quantity)
	if err != nil {
		return httpError(err)
	}

	if item == nil {
		publish(c, h.Producer, events.TopicCart, userID, map[string]any{
			"type":         "cart_item_deleted",
			"userID":       userID,
			"deleted_item": id,
		})
		return c.JSON(http.StatusOK, map[string]any{"deleted_item": id})
	}

	publish(c, h.Producer, events.TopicCart, userID, map[string]any{
		"type":         "cart_item_updated",
		"userID":       userID,
		"id":           item.ID,
		"new_quantity": item.Quantity,
	})
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) DeleteFromCart(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	if err := h.Cart.Remove(c.Request().Context(), userID, id); err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, events.TopicCart, userID, map[string]any{
		"type":         "cart_item_deleted",
		"userID":       userID,
		"deleted_item": id,
	})
	return c.JSON(http.StatusOK, map[string]any{"deleted_item": id})
}
