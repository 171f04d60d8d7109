package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/farmermarket/farmer_market/internal/events"
	"github.com/farmermarket/farmer_market/internal/market"
	"github.com/farmermarket/farmer_market/internal/service/token"
)

// SellerHandler exposes the fulfillment and reporting views scoped to the
// caller's store.
type SellerHandler struct {
	DB          *gorm.DB
	Fulfillment *market.FulfillmentService
	Analytics   *market.AnalyticsService
	Producer    events.Publisher
}

func (h *SellerHandler) ListOrderItems(c echo.Context) error {
	sellerID, err := token.UserID(c)
	if err != nil {
		return err
	}
	store, err := storeForSeller(h.DB, sellerID)
	if err != nil {
		return err
	}

	rows, err := h.Fulfillment.ListStoreItems(c.Request().Context(), store.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rows)
}

// SetItemStatus approves or discards one pending line item of the seller's
// store.
func (h *SellerHandler) SetItemStatus(c echo.Context) error {
	sellerID, err := token.UserID(c)
	if err != nil {
		return err
	}
	store, err := storeForSeller(h.DB, sellerID)
	if err != nil {
		return err
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.Fulfillment.SetItemStatus(c.Request().Context(), store.ID, id, req.Status)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, events.TopicOrder, item.OrderID, map[string]any{
		"type":    "order_item_" + item.SellerStatus,
		"itemID":  item.ID,
		"orderID": item.OrderID,
		"storeID": item.StoreID,
	})
	return c.JSON(http.StatusOK, item)
}

func (h *SellerHandler) StoreAnalytics(c echo.Context) error {
	sellerID, err := token.UserID(c)
	if err != nil {
		return err
	}
	store, err := storeForSeller(h.DB, sellerID)
	if err != nil {
		return err
	}

	stats, err := h.Analytics.StoreStats(c.Request().Context(), store.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}
