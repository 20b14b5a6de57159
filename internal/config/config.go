package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Backend   BackendConfig
	Cart      CartConfig
	Checkout  CheckoutConfig
	Pricing   PricingConfig
	Inventory InventoryConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
	Breaker BreakerConfig
}

type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

type CartConfig struct {
	Store           string
	TTL             time.Duration
	BlockOutOfStock bool
}

type CheckoutConfig struct {
	Timeout        time.Duration
	PaymentMethods []string
}

type PricingConfig struct {
	TaxRate decimal.Decimal
}

type InventoryConfig struct {
	InStockAbove    int64
	RefreshInterval time.Duration
	DefaultLocation string
}

const (
	CartStoreMySQL = "mysql"
	CartStoreRedis = "redis"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "45s")
	v.SetDefault("log.level", "info")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "posterminal")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.name", "posterminal")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("backend.base_url", "http://localhost:7000/api/v1")
	v.SetDefault("backend.timeout", "15s")
	v.SetDefault("backend.breaker.max_requests", 1)
	v.SetDefault("backend.breaker.interval", "60s")
	v.SetDefault("backend.breaker.timeout", "30s")
	v.SetDefault("backend.breaker.failure_threshold", 5)

	v.SetDefault("cart.store", CartStoreMySQL)
	v.SetDefault("cart.ttl", "0s")
	v.SetDefault("cart.block_out_of_stock", false)

	v.SetDefault("checkout.timeout", "30s")
	v.SetDefault("checkout.payment_methods", []string{"Cash", "Bank/Card", "Ecocash"})

	v.SetDefault("pricing.tax_rate", "0")

	v.SetDefault("inventory.in_stock_above", 100)
	v.SetDefault("inventory.refresh_interval", "0s")
	v.SetDefault("inventory.default_location", "LOC-1")
}

// Load reads the YAML file at path, if it exists, and applies
// POSTERMINAL_* environment overrides, e.g. POSTERMINAL_BACKEND_BASE_URL.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("POSTERMINAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	taxRate, err := decimal.NewFromString(v.GetString("pricing.tax_rate"))
	if err != nil {
		return nil, fmt.Errorf("parsing pricing.tax_rate: %w", err)
	}
	if taxRate.IsNegative() {
		return nil, fmt.Errorf("pricing.tax_rate must not be negative")
	}

	cartStore := strings.ToLower(v.GetString("cart.store"))
	if cartStore != CartStoreMySQL && cartStore != CartStoreRedis {
		return nil, fmt.Errorf("cart.store must be %q or %q, got %q", CartStoreMySQL, CartStoreRedis, cartStore)
	}

	if w, c := v.GetDuration("server.write_timeout"), v.GetDuration("checkout.timeout"); w > 0 && w <= c {
		return nil, fmt.Errorf("server.write_timeout (%s) must exceed checkout.timeout (%s)", w, c)
	}

	// A backend call must give up before the checkout deadline so a reply is
	// never lost to it.
	if b, c := v.GetDuration("backend.timeout"), v.GetDuration("checkout.timeout"); b > 0 && b >= c {
		return nil, fmt.Errorf("backend.timeout (%s) must be shorter than checkout.timeout (%s)", b, c)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(v.GetString("backend.base_url"), "/"),
			Timeout: v.GetDuration("backend.timeout"),
			Breaker: BreakerConfig{
				MaxRequests:      v.GetUint32("backend.breaker.max_requests"),
				Interval:         v.GetDuration("backend.breaker.interval"),
				Timeout:          v.GetDuration("backend.breaker.timeout"),
				FailureThreshold: v.GetUint32("backend.breaker.failure_threshold"),
			},
		},
		Cart: CartConfig{
			Store:           cartStore,
			TTL:             v.GetDuration("cart.ttl"),
			BlockOutOfStock: v.GetBool("cart.block_out_of_stock"),
		},
		Checkout: CheckoutConfig{
			Timeout:        v.GetDuration("checkout.timeout"),
			PaymentMethods: v.GetStringSlice("checkout.payment_methods"),
		},
		Pricing: PricingConfig{
			TaxRate: taxRate,
		},
		Inventory: InventoryConfig{
			InStockAbove:    v.GetInt64("inventory.in_stock_above"),
			RefreshInterval: v.GetDuration("inventory.refresh_interval"),
			DefaultLocation: v.GetString("inventory.default_location"),
		},
	}

	return cfg, nil
}
