package main

import (
	"log"
	"os"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/controllers/http"
	"marketplace/internal/infra"
	"marketplace/internal/infra/cache"
	"marketplace/internal/infra/mailer"
	mmysql "marketplace/internal/infra/mysql"
	"marketplace/internal/infra/rabbitmq"
	"marketplace/internal/infra/workers"
	"marketplace/internal/logging"
	mysqlrepo "marketplace/internal/repository/mysql"
	"marketplace/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const productCacheTTL = time.Minute

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.Init(cfg.Logger)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	db, err := mmysql.NewMySQL(cfg.MySQL)
	if err != nil {
		zap.L().Fatal("db: connect", zap.Error(err))
	}

	orderRepo := mysqlrepo.NewOrderRepository(db)
	productRepo := mysqlrepo.NewProductRepository(db)
	userRepo := mysqlrepo.NewUserRepository(db)
	notificationRepo := mysqlrepo.NewNotificationRepository(db)
	reviewRepo := mysqlrepo.NewReviewRepository(db)
	settingsRepo := mysqlrepo.NewSettingsRepository(db)

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		DB:           cfg.Redis.DB,
		PoolSize:     200,
		MinIdleConns: 20,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	defer redisClient.Close()
	productCache := cache.NewRedisProductCache(redisClient, productCacheTTL)

	var publisher rabbitmq.PublisherInterface = rabbitmq.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			zap.L().Fatal("rabbitmq: init publisher", zap.Error(err))
		}
		defer p.Close()
		publisher = p
	} else {
		zap.L().Warn("rabbitmq: RABBITMQ_URL not set, events will be dropped")
	}

	var mail mailer.Sender = mailer.LogMailer{}
	if cfg.SMTP.Enabled() {
		mail = mailer.NewSMTPMailer(cfg.SMTP)
	}

	pool, err := workers.NewPool(cfg.Workers)
	if err != nil {
		zap.L().Fatal("workers: init pool", zap.Error(err))
	}
	defer pool.Release()

	gateway := infra.NewPaymentClient(cfg.Payment.GatewayURL, cfg.Payment.APIKey, cfg.Payment.Timeout)

	notifier := services.NewNotificationService(notificationRepo, userRepo, productRepo)
	settings := services.NewSettingsService(settingsRepo)
	settlement := services.NewSettlementEngine(orderRepo, productRepo, notifier, productCache, publisher, pool)
	orders := services.NewOrderService(orderRepo, productRepo, userRepo, settings, notifier, settlement, publisher)
	orders.SetMailer(mail)
	orders.SetRunner(pool)

	handler := http.NewHandler(http.Services{
		Orders:        orders,
		Payments:      services.NewPaymentService(orderRepo, gateway, orders, cfg.Payment),
		Notifications: notifier,
		Reports:       services.NewReportService(orderRepo, productRepo, userRepo),
		Reviews:       services.NewReviewService(reviewRepo, orderRepo, productRepo),
		Sellers:       services.NewSellerService(userRepo, notifier, mail),
		Settings:      settings,
		Catalog:       services.NewCatalogService(productRepo, productCache),
	}, redisClient, cfg.Auth.JWTSecret)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	handler.RegisterRoutes(r)

	zap.L().Info("starting marketplace service", zap.String("port", cfg.HTTP.Port))
	if err := r.Run(":" + cfg.HTTP.Port); err != nil {
		zap.L().Fatal("server run", zap.Error(err))
	}
}
