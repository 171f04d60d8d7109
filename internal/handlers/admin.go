package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/farmermarket/farmer_market/internal/market"
	"github.com/farmermarket/farmer_market/internal/models"
)

type AdminHandler struct {
	DB        *gorm.DB
	Analytics *market.AnalyticsService
}

var storeStatuses = map[string]bool{
	"pending":   true,
	"approved":  true,
	"suspended": true,
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	var users []models.User
	if err := h.DB.Order("id ASC").Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) ListStores(c echo.Context) error {
	var stores []models.Store
	if err := h.DB.Order("id ASC").Find(&stores).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stores)
}

// SetStoreStatus approves or suspends a store.
func (h *AdminHandler) SetStoreStatus(c echo.Context) error {
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
	if !storeStatuses[req.Status] {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var store models.Store
	if err := h.DB.First(&store, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "store not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	store.Status = req.Status
	if err := h.DB.Save(&store).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, store)
}

func (h *AdminHandler) PlatformAnalytics(c echo.Context) error {
	stats, err := h.Analytics.PlatformStats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}
