package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/farmermarket/farmer_market/internal/events"
	"github.com/farmermarket/farmer_market/internal/models"
	"github.com/farmermarket/farmer_market/internal/service/search"
	"github.com/farmermarket/farmer_market/internal/service/token"
	"github.com/farmermarket/farmer_market/internal/storage"
	"github.com/farmermarket/farmer_market/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer events.Publisher
	ES       *elasticsearch.Client
	ESIndex  string
	Images   storage.ObjectStore
}

type productRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	DiscountPrice *float64 `json:"discount_price"`
	Unit          string   `json:"unit"`
	Stock         uint     `json:"stock"`
	Status        string   `json:"status"`
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Product{}).Where("status = ?", "active")
	if storeID := parseIntDefault(c.QueryParam("store_id"), 0); storeID > 0 {
		q = q.Where("store_id = ?", storeID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var items []models.Product
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

// ListMyProducts returns every product of the seller's store, whatever the
// status.
func (h *ProductHandler) ListMyProducts(c echo.Context) error {
	sellerID, err := token.UserID(c)
	if err != nil {
		return err
	}
	store, err := storeForSeller(h.DB, sellerID)
	if err != nil {
		return err
	}

	var items []models.Product
	if err := h.DB.Where("store_id = ?", store.ID).Order("id ASC").Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	sellerID, err := token.UserID(c)
	if err != nil {
		return err
	}
	store, err := storeForSeller(h.DB, sellerID)
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" || req.Price <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "name and a positive price are required")
	}

	product := models.Product{
		StoreID:       store.ID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Unit:          req.Unit,
		Stock:         req.Stock,
		Status:        "active",
	}
	if err := h.DB.Create(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.index(c, &product)
	publish(c, h.Producer, events.TopicProduct, product.ID, map[string]any{
		"type":      "product_created",
		"productID": product.ID,
		"storeID":   product.StoreID,
		"name":      product.Name,
	})
	return c.JSON(http.StatusCreated, product)
}

// productPatch distinguishes absent keys from zero values, so a seller can
// set stock to 0 or clear a discount. "discount_price": null removes the
// discount; an absent key keeps it.
type productPatch struct {
	Name          *string         `json:"name"`
	Description   *string         `json:"description"`
	Price         *float64        `json:"price"`
	DiscountPrice json.RawMessage `json:"discount_price"`
	Unit          *string         `json:"unit"`
	Stock         *uint           `json:"stock"`
	Status        *string         `json:"status"`
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	product, err := h.ownProduct(c)
	if err != nil {
		return err
	}

	var req productPatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.Name != nil {
		if *req.Name == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "name cannot be empty")
		}
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "price must be positive")
		}
		product.Price = *req.Price
	}
	if len(req.DiscountPrice) > 0 {
		if string(req.DiscountPrice) == "null" {
			product.DiscountPrice = nil
		} else {
			var v float64
			if err := json.Unmarshal(req.DiscountPrice, &v); err != nil || v <= 0 {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid discount_price")
			}
			product.DiscountPrice = &v
		}
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Status != nil {
		product.Status = *req.Status
	}

	if err := h.DB.Save(product).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.index(c, product)
	publish(c, h.Producer, events.TopicProduct, product.ID, map[string]any{
		"type":      "product_updated",
		"productID": product.ID,
		"name":      product.Name,
	})
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	product, err := h.ownProduct(c)
	if err != nil {
		return err
	}

	if err := h.DB.Delete(&models.Product{}, product.ID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if product.ImageURL != "" && h.Images != nil {
		if err := h.Images.Delete(c.Request().Context(), product.ImageURL); err != nil {
			c.Logger().Errorf("image delete error: %v", err)
		}
	}
	if h.ES != nil {
		if err := search.DeleteProduct(c.Request().Context(), h.ES, h.ESIndex, product.ID); err != nil {
			c.Logger().Errorf("search deindex error: %v", err)
		}
	}

	publish(c, h.Producer, events.TopicProduct, product.ID, map[string]any{
		"type":      "product_deleted",
		"productID": product.ID,
	})
	return c.NoContent(http.StatusNoContent)
}

// UploadImage stores a product image and records its public URL on the
// product.
func (h *ProductHandler) UploadImage(c echo.Context) error {
	sellerID, err := token.UserID(c)
	if err != nil {
		return err
	}
	product, err := h.ownProduct(c)
	if err != nil {
		return err
	}
	if h.Images == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "image storage not configured")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	if fileHeader.Size > storage.MaxImageSize {
		return echo.NewHTTPError(http.StatusBadRequest, "image size must be less than 5MB")
	}
	if ct := fileHeader.Header.Get("Content-Type"); ct != "" && len(ct) >= 6 && ct[:6] != "image/" {
		return echo.NewHTTPError(http.StatusBadRequest, "not an image")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer src.Close()

	key := storage.ImageKey(sellerID, product.ID, fileHeader.Filename)
	url, err := h.Images.Upload(c.Request().Context(), key, src)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	old := product.ImageURL
	product.ImageURL = url
	if err := h.DB.Save(product).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if old != "" {
		if err := h.Images.Delete(c.Request().Context(), old); err != nil {
			c.Logger().Errorf("image delete error: %v", err)
		}
	}

	h.index(c, product)
	return c.JSON(http.StatusOK, product)
}

// ownProduct loads the :id product and checks it belongs to the caller's
// store.
func (h *ProductHandler) ownProduct(c echo.Context) (*models.Product, error) {
	sellerID, err := token.UserID(c)
	if err != nil {
		return nil, err
	}
	store, err := storeForSeller(h.DB, sellerID)
	if err != nil {
		return nil, err
	}

	id, err := paramUint(c, "id")
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := h.DB.Where("id = ? AND store_id = ?", id, store.ID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return &product, nil
}

func (h *ProductHandler) index(c echo.Context, p *models.Product) {
	if h.ES == nil {
		return
	}
	if err := search.IndexProduct(c.Request().Context(), h.ES, h.ESIndex, p); err != nil {
		c.Logger().Errorf("search index error: %v", err)
	}
}
