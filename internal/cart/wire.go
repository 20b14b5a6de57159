package cart

import (
	"context"
	"database/sql"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"posterminal/internal/cart/controller"
	"posterminal/internal/cart/repository"
	"posterminal/internal/cart/service"
	"posterminal/internal/config"
	"posterminal/internal/domain"
)

// Stores holds whichever connection cart.store selects; the other is nil.
type Stores struct {
	DB    *sql.DB
	Redis *goredis.Client
}

func NewRepository(ctx context.Context, cfg config.CartConfig, stores Stores) (service.Repository, error) {
	switch cfg.Store {
	case config.CartStoreRedis:
		if stores.Redis == nil {
			return nil, fmt.Errorf("cart store %q selected without a redis client", cfg.Store)
		}
		return repository.NewRedisCartRepository(stores.Redis, cfg.TTL), nil
	case config.CartStoreMySQL:
		if stores.DB == nil {
			return nil, fmt.Errorf("cart store %q selected without a database", cfg.Store)
		}
		repo := repository.NewMySQLCartRepository(stores.DB)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("preparing cart schema: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown cart store %q", cfg.Store)
	}
}

func NewModule(repo service.Repository, catalog service.Catalog, cfg *config.Config, logger *zap.Logger) (*service.CartService, *controller.CartController) {
	svc := service.NewCartService(repo, catalog, service.Options{
		Tax:             domain.FlatRateTax(cfg.Pricing.TaxRate),
		BlockOutOfStock: cfg.Cart.BlockOutOfStock,
	}, logger)
	return svc, controller.NewCartController(svc, logger)
}
