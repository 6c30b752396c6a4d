package main

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/amirfaris/storefront-backend/cache"
	"github.com/amirfaris/storefront-backend/config"
	"github.com/amirfaris/storefront-backend/controllers"
	"github.com/amirfaris/storefront-backend/database"
	"github.com/amirfaris/storefront-backend/kafka"
	"github.com/amirfaris/storefront-backend/logger"
	"github.com/amirfaris/storefront-backend/models"
	"github.com/amirfaris/storefront-backend/repository"
	"github.com/amirfaris/storefront-backend/routes"
	"github.com/amirfaris/storefront-backend/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger.Initialize(cfg.Env)
	log := logger.Log
	defer log.Sync()

	db, err := database.ConnectPostgres(cfg, log,
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderPayment{},
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	productRepo := repository.NewGormProductRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)
	paymentRepo := repository.NewGormPaymentRepository(db)

	gateway := services.NewGatewayClient(cfg.GatewayBaseURL, cfg.GatewaySecretKey, cfg.GatewayCategoryCode, log)
	shipping := services.NewShippingCalculator(cfg.FreeShippingThreshold)

	var events services.EventPublisher
	if cfg.KafkaBrokers != "" {
		producer := kafka.NewPaymentEventProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.PaymentEventTopic)
		defer producer.Close()
		events = producer
	}

	var productCache *cache.ProductCache
	var invalidator services.StockCacheInvalidator
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		productCache = cache.NewProductCache(client, log)
		invalidator = productCache
	}

	checkoutService := services.NewCheckoutService(productRepo, orderRepo, paymentRepo, gateway, shipping, log)
	webhookService := services.NewWebhookService(orderRepo, paymentRepo, gateway, events, invalidator, log)
	orderService := services.NewOrderService(orderRepo, log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestLogger())

	routes.Register(r, &routes.Controllers{
		Checkout: controllers.NewCheckoutController(checkoutService, cfg.AppBaseURL, log),
		Webhook:  controllers.NewWebhookController(webhookService, log),
		Order:    controllers.NewOrderController(orderService, log),
		Product:  controllers.NewProductController(productRepo, productCache, log),
	}, cfg.JWTSecret)

	log.Info("Starting server", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server exited", zap.Error(err))
	}
}
