package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/farmermarket/farmer_market/internal/events"
	"github.com/farmermarket/farmer_market/internal/models"
	"github.com/farmermarket/farmer_market/internal/service/token"
)

type StoreHandler struct {
	DB       *gorm.DB
	Producer events.Publisher
}

// CreateStore registers the seller's store. One store per seller; it starts
// "pending" until an admin approves it.
func (h *StoreHandler) CreateStore(c echo.Context) error {
	sellerID, err := token.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		City        string `json:"city"`
		State       string `json:"state"`
		LogoURL     string `json:"logo_url"`
		BannerURL   string `json:"banner_url"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "store name is required")
	}

	var existing models.Store
	if err := h.DB.Where("seller_id = ?", sellerID).First(&existing).Error; err == nil {
		return echo.NewHTTPError(http.StatusConflict, "seller already has a store")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	store := models.Store{
		SellerID:    sellerID,
		Name:        req.Name,
		Description: req.Description,
		City:        req.City,
		State:       req.State,
		Status:      "pending",
		LogoURL:     req.LogoURL,
		BannerURL:   req.BannerURL,
	}
	if err := h.DB.Create(&store).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, store)
}

// GetMyStore returns the authenticated seller's store.
func (h *StoreHandler) GetMyStore(c echo.Context) error {
	sellerID, err := token.UserID(c)
	if err != nil {
		return err
	}
	store, err := storeForSeller(h.DB, sellerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, store)
}

// GetStores lists approved stores.
func (h *StoreHandler) GetStores(c echo.Context) error {
	var stores []models.Store
	if err := h.DB.Where("status = ?", "approved").Order("id ASC").Find(&stores).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stores)
}

// GetStore returns one approved store with its active products.
func (h *StoreHandler) GetStore(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	var store models.Store
	if err := h.DB.Where("id = ? AND status = ?", id, "approved").First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "store not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var products []models.Product
	if err := h.DB.Where("store_id = ? AND status = ?", store.ID, "active").Order("id ASC").Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"store":    store,
		"products": products,
	})
}

// storeForSeller resolves the seller's store or a 404.
func storeForSeller(db *gorm.DB, sellerID uint) (*models.Store, error) {
	var store models.Store
	if err := db.Where("seller_id = ?", sellerID).First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "seller has no store")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return &store, nil
}
