package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"storefront/internal/config"
	"storefront/internal/infra"
	"storefront/internal/infra/mail"
	mmysql "storefront/internal/infra/mysql"
	"storefront/internal/infra/rabbitmq"
	"storefront/internal/infra/redisstore"
	mysqlrepo "storefront/internal/repository/mysql"
	"storefront/internal/services"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// stack holds the shared infrastructure and services every command builds on.
type stack struct {
	cfg       *config.Config
	db        *gorm.DB
	rdb       *redis.Client
	publisher *rabbitmq.Publisher

	settings *services.SettingsService
	orders   *services.OrderService
	tokens   *services.TokenService
	payments *services.PaymentService
}

func openDB(cfg *config.Config) (*gorm.DB, *services.SettingsService, error) {
	db, err := mmysql.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db: connect: %w", err)
	}
	return db, services.NewSettingsService(mysqlrepo.NewSettingsRepository(db)), nil
}

func newRedisClient(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.RedisAddr, err)
	}
	return rdb, nil
}

// buildStack connects every backing service. Redis is optional: without it
// invoice numbers come from the orders table.
func buildStack(cfg *config.Config) (*stack, error) {
	db, settings, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := settings.SeedDefaults(context.Background()); err != nil {
		return nil, fmt.Errorf("settings: seed defaults: %w", err)
	}

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	if err != nil {
		return nil, fmt.Errorf("failed to init publisher: %w", err)
	}

	orderRepo := mysqlrepo.NewOrderRepository(db)
	productRepo := mysqlrepo.NewProductRepository(db)
	tokenRepo := mysqlrepo.NewTokenRepository(db)

	qris := infra.NewQRISClient(cfg.QRISServiceURL, cfg.QRISTimeout)

	orders := services.NewOrderService(orderRepo, productRepo, settings, qris, publisher, services.OrderOptions{
		UniqueCodeMax:      cfg.UniqueCodeMax,
		UniqueCodeCheck:    cfg.UniqueCodeCheck,
		UniqueCodeAttempts: cfg.UniqueCodeAttempts,
		PendingOrderTTL:    cfg.PendingOrderTTL,
	})

	rdb, err := newRedisClient(cfg)
	if err != nil {
		log.Printf("Redis unavailable, invoice sequence falls back to the database: %v", err)
	} else {
		orders.SetSequencer(redisstore.NewInvoiceSequencer(rdb))
	}

	dispatcher := services.NewDispatcher(settings, mail.NewSMTPMailer(), services.NewQueueChatNotifier(publisher))
	tokens := services.NewTokenService(tokenRepo, orderRepo, productRepo, settings, dispatcher)
	payments := services.NewPaymentService(orderRepo, tokens, settings, dispatcher, publisher, cfg.WebhookAPIKey)

	return &stack{
		cfg:       cfg,
		db:        db,
		rdb:       rdb,
		publisher: publisher,
		settings:  settings,
		orders:    orders,
		tokens:    tokens,
		payments:  payments,
	}, nil
}

func (s *stack) Close() {
	if s.publisher != nil {
		s.publisher.Close()
	}
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}
