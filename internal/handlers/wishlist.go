package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/farmermarket/farmer_market/internal/models"
	"github.com/farmermarket/farmer_market/internal/service/token"
)

type WishlistHandler struct {
	DB *gorm.DB
}

type wishlistLine struct {
	models.WishlistItem
	Product models.Product `json:"product"`
}

func (h *WishlistHandler) List(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var items []models.WishlistItem
	if err := h.DB.Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	lines := make([]wishlistLine, 0, len(items))
	for _, it := range items {
		var p models.Product
		if err := h.DB.First(&p, it.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		lines = append(lines, wishlistLine{WishlistItem: it, Product: p})
	}
	return c.JSON(http.StatusOK, lines)
}

func (h *WishlistHandler) Add(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint `json:"product_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ProductID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is required")
	}

	var product models.Product
	if err := h.DB.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var existing models.WishlistItem
	err = h.DB.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&existing).Error
	if err == nil {
		return c.JSON(http.StatusOK, existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	item := models.WishlistItem{UserID: userID, ProductID: req.ProductID}
	if err := h.DB.Create(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *WishlistHandler) Remove(c echo.Context) error {
	userID, err := token.UserID(c)
	if err != nil {
		return err
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	res := h.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.WishlistItem{})
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "wishlist item not found")
	}
	return c.NoContent(http.StatusNoContent)
}
