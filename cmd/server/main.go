package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"posterminal/internal/adjustment"
	"posterminal/internal/cart"
	"posterminal/internal/checkout"
	"posterminal/internal/commons"
	"posterminal/internal/config"
	"posterminal/internal/infrastructure/backend"
	"posterminal/internal/infrastructure/logger"
	"posterminal/internal/infrastructure/metrics"
	"posterminal/internal/infrastructure/mysql"
	"posterminal/internal/infrastructure/redis"
	"posterminal/internal/inventory"
	"posterminal/internal/server"
)

const initialRefreshTimeout = 20 * time.Second

func main() {
	cfg, err := commons.LoadConfig(commons.DefaultConfigPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	appMetrics := metrics.New()
	backendClient := backend.NewClient(cfg.Backend, zapLogger, appMetrics)

	stores := cart.Stores{}
	switch cfg.Cart.Store {
	case config.CartStoreRedis:
		client, err := redis.NewClient(cfg.Redis)
		if err != nil {
			zapLogger.Fatal("connecting to redis", zap.Error(err))
		}
		defer client.Close()
		stores.Redis = client
		zapLogger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	default:
		db, err := mysql.NewConnection(cfg.Database)
		if err != nil {
			zapLogger.Fatal("connecting to database", zap.Error(err))
		}
		defer db.Close()
		stores.DB = db
		zapLogger.Info("database connected")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	cartRepo, err := cart.NewRepository(ctx, cfg.Cart, stores)
	if err != nil {
		zapLogger.Fatal("creating cart store", zap.Error(err))
	}

	refresher := inventory.NewRefresher(backendClient, appMetrics, zapLogger)
	refreshCtx, cancelRefresh := context.WithTimeout(ctx, initialRefreshTimeout)
	if snapshot, err := refresher.Refresh(refreshCtx); err != nil {
		zapLogger.Warn("initial inventory refresh failed", zap.Error(err))
	} else {
		zapLogger.Info("inventory loaded",
			zap.Int("products", len(snapshot.Products)),
			zap.Strings("failed", snapshot.Failed))
	}
	cancelRefresh()
	go refresher.Run(ctx, cfg.Inventory.RefreshInterval)

	cartSvc, cartCtrl := cart.NewModule(cartRepo, refresher, cfg, zapLogger)
	checkoutCtrl := checkout.NewModule(cartSvc, backendClient, appMetrics, cfg, zapLogger)
	adjustmentCtrl := adjustment.NewModule(backendClient, refresher, appMetrics, cfg, zapLogger)
	inventoryCtrl := inventory.NewModule(refresher, cfg, zapLogger)

	router := server.NewRouter(server.Controllers{
		Cart:       cartCtrl,
		Checkout:   checkoutCtrl,
		Adjustment: adjustmentCtrl,
		Inventory:  inventoryCtrl,
	}, appMetrics, zapLogger)

	srv := server.New(cfg.Server, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Checkout.Timeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
