package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/farmermarket/farmer_market/internal/models"
)

func TestWishlistAddIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct(1, 10, nil)

	rec, c := env.doJSON(http.MethodPost, "/api/v1/wishlist", map[string]uint{"product_id": p.ID})
	asUser(c, 1, "buyer")
	require.NoError(t, env.Wishlist.Add(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, c = env.doJSON(http.MethodPost, "/api/v1/wishlist", map[string]uint{"product_id": p.ID})
	asUser(c, 1, "buyer")
	require.NoError(t, env.Wishlist.Add(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.WishlistItem{}).Where("user_id = ?", 1).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestWishlistListAndRemove(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct(1, 10, nil)

	item := models.WishlistItem{UserID: 1, ProductID: p.ID}
	require.NoError(t, env.DB.Create(&item).Error)

	rec, c := env.doJSON(http.MethodGet, "/api/v1/wishlist", nil)
	asUser(c, 1, "buyer")
	require.NoError(t, env.Wishlist.List(c))

	var lines []struct {
		ID      uint           `json:"id"`
		Product models.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lines))
	require.Len(t, lines, 1)
	require.Equal(t, "Tomatoes", lines[0].Product.Name)

	id := strconv.Itoa(int(item.ID))
	_, c = env.doJSON(http.MethodDelete, "/api/v1/wishlist/"+id, nil)
	c.SetParamNames("id")
	c.SetParamValues(id)
	asUser(c, 1, "buyer")
	require.NoError(t, env.Wishlist.Remove(c))

	// Removing someone else's line is a 404.
	item2 := models.WishlistItem{UserID: 2, ProductID: p.ID}
	require.NoError(t, env.DB.Create(&item2).Error)
	id2 := strconv.Itoa(int(item2.ID))
	_, c = env.doJSON(http.MethodDelete, "/api/v1/wishlist/"+id2, nil)
	c.SetParamNames("id")
	c.SetParamValues(id2)
	asUser(c, 1, "buyer")
	err := env.Wishlist.Remove(c)
	require.Equal(t, http.StatusNotFound, httpCode(t, err))
}
