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

func TestSetStoreStatus(t *testing.T) {
	env := newTestEnv(t)
	store := env.createStore(2, "pending")

	id := strconv.Itoa(int(store.ID))
	rec, c := env.doJSON(http.MethodPatch, "/api/v1/admin/stores/"+id+"/status", map[string]string{"status": "approved"})
	c.SetParamNames("id")
	c.SetParamValues(id)
	asUser(c, 1, "admin")
	require.NoError(t, env.Admin.SetStoreStatus(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Store
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, "approved", updated.Status)
}

func TestSetStoreStatusInvalid(t *testing.T) {
	env := newTestEnv(t)
	store := env.createStore(2, "pending")

	id := strconv.Itoa(int(store.ID))
	_, c := env.doJSON(http.MethodPatch, "/api/v1/admin/stores/"+id+"/status", map[string]string{"status": "closed"})
	c.SetParamNames("id")
	c.SetParamValues(id)
	asUser(c, 1, "admin")
	err := env.Admin.SetStoreStatus(c)
	require.Equal(t, http.StatusBadRequest, httpCode(t, err))
}

func TestPlatformAnalytics(t *testing.T) {
	env := newTestEnv(t)
	store := env.createStore(2, "approved")
	p := env.createProduct(store.ID, 10, nil)
	seedOrderItem(t, env, store.ID, p.ID, "approved", 2, 20)
	seedOrderItem(t, env, store.ID, p.ID, "pending", 1, 10)

	rec, c := env.doJSON(http.MethodGet, "/api/v1/admin/analytics", nil)
	asUser(c, 1, "admin")
	require.NoError(t, env.Admin.PlatformAnalytics(c))

	var stats market.PlatformStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, float64(20), stats.Revenue)
	require.Equal(t, int64(2), stats.Orders)
}
