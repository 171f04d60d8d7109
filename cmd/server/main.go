package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/farmermarket/farmer_market/internal/config"
	"github.com/farmermarket/farmer_market/internal/es"
	"github.com/farmermarket/farmer_market/internal/events"
	"github.com/farmermarket/farmer_market/internal/handlers"
	"github.com/farmermarket/farmer_market/internal/logging"
	"github.com/farmermarket/farmer_market/internal/market"
	"github.com/farmermarket/farmer_market/internal/service/token"
	"github.com/farmermarket/farmer_market/internal/storage"
	httpserver "github.com/farmermarket/farmer_market/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("DB init error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	var producer events.Publisher
	if configuration.KAFKA_ADDRESS != "" {
		kp, err := events.NewKafkaPublisher(configuration.KAFKA_ADDRESS)
		if err != nil {
			log.Fatal(err)
		}
		producer = kp
	} else {
		logger.Warn("KAFKA_ADDRESS not set, events disabled")
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatalf("Elasticsearch init error: %v", err)
	}

	imageStore := storage.NewFileStore(configuration.UPLOAD_DIR, configuration.UPLOAD_BASE_URL)

	cartSvc := &market.CartService{DB: db}
	orderSvc := &market.OrderService{DB: db}
	fulfillmentSvc := &market.FulfillmentService{DB: db}
	analyticsSvc := &market.AnalyticsService{DB: db}
	tokenSvc := &token.TokenService{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	if prefix, ok := storage.LocalPrefix(configuration.UPLOAD_BASE_URL); ok {
		e.Static(prefix, configuration.UPLOAD_DIR)
	} else {
		logger.Info("uploads served externally", "base_url", configuration.UPLOAD_BASE_URL)
	}

	deps := httpserver.Deps{
		DB:              db,
		AuthHandler:     &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: producer},
		StoreHandler:    &handlers.StoreHandler{DB: db, Producer: producer},
		ProductHandler:  &handlers.ProductHandler{DB: db, Producer: producer, ES: esClient, ESIndex: configuration.ES_INDEX, Images: imageStore},
		CartHandler:     &handlers.CartHandler{Cart: cartSvc, Producer: producer},
		OrderHandler:    &handlers.OrderHandler{Orders: orderSvc, Fulfillment: fulfillmentSvc, Producer: producer},
		SellerHandler:   &handlers.SellerHandler{DB: db, Fulfillment: fulfillmentSvc, Analytics: analyticsSvc, Producer: producer},
		AdminHandler:    &handlers.AdminHandler{DB: db, Analytics: analyticsSvc},
		WishlistHandler: &handlers.WishlistHandler{DB: db},
		SearchHandler:   &handlers.SearchHandler{ES: esClient, Index: configuration.ES_INDEX},
		TokenService:    tokenSvc,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.LISTEN_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	logger.Info("server started", "addr", configuration.LISTEN_ADDR)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	} else {
		logger.Error("db handle error", "error", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
