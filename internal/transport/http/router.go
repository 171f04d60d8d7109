package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/farmermarket/farmer_market/internal/handlers"
	"github.com/farmermarket/farmer_market/internal/service/token"
)

type Deps struct {
	DB              *gorm.DB
	AuthHandler     *handlers.AuthHandler
	StoreHandler    *handlers.StoreHandler
	ProductHandler  *handlers.ProductHandler
	CartHandler     *handlers.CartHandler
	OrderHandler    *handlers.OrderHandler
	SellerHandler   *handlers.SellerHandler
	AdminHandler    *handlers.AdminHandler
	WishlistHandler *handlers.WishlistHandler
	SearchHandler   *handlers.SearchHandler
	TokenService    *token.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.Logout)

	v1.GET("/products", d.ProductHandler.GetProducts)
	v1.GET("/products/:id", d.ProductHandler.GetProduct)
	v1.GET("/stores", d.StoreHandler.GetStores)
	v1.GET("/stores/:id", d.StoreHandler.GetStore)
	v1.GET("/search", d.SearchHandler.Search)

	cart := v1.Group("/cart", d.TokenService.AutoRefreshMiddleware)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.PATCH("/:id", d.CartHandler.SetQuantity)
	cart.DELETE("/:id", d.CartHandler.DeleteFromCart)
	cart.POST("/checkout", d.OrderHandler.Checkout)

	orders := v1.Group("/orders", d.TokenService.AutoRefreshMiddleware)
	orders.GET("", d.OrderHandler.ListMyOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.POST("/:id/received", d.OrderHandler.ConfirmReceived)

	wishlist := v1.Group("/wishlist", d.TokenService.AutoRefreshMiddleware)
	wishlist.GET("", d.WishlistHandler.List)
	wishlist.POST("", d.WishlistHandler.Add)
	wishlist.DELETE("/:id", d.WishlistHandler.Remove)

	seller := v1.Group("/seller", d.TokenService.AutoRefreshMiddleware, token.RequireRole("seller"))
	seller.POST("/store", d.StoreHandler.CreateStore)
	seller.GET("/store", d.StoreHandler.GetMyStore)
	seller.GET("/products", d.ProductHandler.ListMyProducts)
	seller.POST("/products", d.ProductHandler.CreateProduct)
	seller.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	seller.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
	seller.POST("/products/:id/image", d.ProductHandler.UploadImage)
	seller.GET("/orders", d.SellerHandler.ListOrderItems)
	seller.PATCH("/order-items/:id/status", d.SellerHandler.SetItemStatus)
	seller.GET("/analytics", d.SellerHandler.StoreAnalytics)

	admin := v1.Group("/admin", d.TokenService.AutoRefreshMiddleware, token.RequireRole("admin"))
	admin.GET("/users", d.AdminHandler.ListUsers)
	admin.GET("/stores", d.AdminHandler.ListStores)
	admin.PATCH("/stores/:id/status", d.AdminHandler.SetStoreStatus)
	admin.GET("/analytics", d.AdminHandler.PlatformAnalytics)
}
