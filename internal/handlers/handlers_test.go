package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/farmermarket/farmer_market/internal/config"
	"github.com/farmermarket/farmer_market/internal/market"
	"github.com/farmermarket/farmer_market/internal/models"
)

type recordedEvent struct {
	Topic string
	Key   string
	Event any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *fakePublisher) Publish(ctx context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Topic
	}
	return out
}

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	DB       *gorm.DB
	Events   *fakePublisher
	Auth     *AuthHandler
	Stores   *StoreHandler
	Products *ProductHandler
	Carts    *CartHandler
	Orders   *OrderHandler
	Seller   *SellerHandler
	Admin    *AdminHandler
	Wishlist *WishlistHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	events := &fakePublisher{}
	cartSvc := &market.CartService{DB: db}
	orderSvc := &market.OrderService{DB: db}
	fulfillmentSvc := &market.FulfillmentService{DB: db}
	analyticsSvc := &market.AnalyticsService{DB: db}

	return &testEnv{
		T:        t,
		E:        echo.New(),
		DB:       db,
		Events:   events,
		Auth:     &AuthHandler{DB: db, JWTSecret: []byte("test-secret"), RefreshSecret: []byte("test-refresh"), Producer: events},
		Stores:   &StoreHandler{DB: db, Producer: events},
		Products: &ProductHandler{DB: db, Producer: events},
		Carts:    &CartHandler{Cart: cartSvc, Producer: events},
		Orders:   &OrderHandler{Orders: orderSvc, Fulfillment: fulfillmentSvc, Producer: events},
		Seller:   &SellerHandler{DB: db, Fulfillment: fulfillmentSvc, Analytics: analyticsSvc, Producer: events},
		Admin:    &AdminHandler{DB: db, Analytics: analyticsSvc},
		Wishlist: &WishlistHandler{DB: db},
	}
}

// doJSON builds a request/recorder pair around a JSON body.
func (env *testEnv) doJSON(method, target string, body any) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// asUser marks the context as authenticated the way the token middleware
// would.
func asUser(c echo.Context, userID uint, role string) {
	c.Set("userID", userID)
	c.Set("role", role)
}

func (env *testEnv) createStore(sellerID uint, status string) models.Store {
	env.T.Helper()
	store := models.Store{SellerID: sellerID, Name: "Green Farm", Status: status}
	require.NoError(env.T, env.DB.Create(&store).Error)
	return store
}

func (env *testEnv) createProduct(storeID uint, price float64, discount *float64) models.Product {
	env.T.Helper()
	p := models.Product{StoreID: storeID, Name: "Tomatoes", Price: price, DiscountPrice: discount, Unit: "kg", Status: "active"}
	require.NoError(env.T, env.DB.Create(&p).Error)
	return p
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}

func ptr(v float64) *float64 { return &v }
