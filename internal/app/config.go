package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (FRESHCART_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	ImageBaseURL string `default:"" usage:"Base URL for product images (e.g. https://cdn.example.com/images)" flag:"image-base-url"`

	RecordStore RecordStoreConfig
	Cart        CartConfig
	Cache       CacheConfig
	Redis       RedisConfig
	Admin       AdminConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// RecordStoreConfig points at the hosted record store backing the catalog.
type RecordStoreConfig struct {
	BaseURL   string        `usage:"Record store base URL (FRESHCART_RECORD_STORE_BASE_URL)" flag:"record-store-url"`
	ProjectID string        `usage:"Record store project ID" flag:"record-store-project"`
	APIKey    string        `usage:"Record store API key" flag:"record-store-key"`
	Timeout   time.Duration `default:"10s" usage:"Record store request timeout"`
}

// CartConfig selects and configures the cart persistence backend.
type CartConfig struct {
	Backend  string        `default:"file" usage:"Cart persistence backend: file or redis"`
	FilePath string        `default:"freshcart-cart.json" usage:"Cart file path (file backend)" flag:"cart-file"`
	TTL      time.Duration `default:"0" usage:"Cart expiry (redis backend, 0 = never)"`
}

// CacheConfig controls the optional Redis read-through product cache.
type CacheConfig struct {
	Enabled bool          `default:"false" usage:"Enable the Redis product cache"`
	TTL     time.Duration `default:"5m" usage:"Product cache entry TTL"`
}

// RedisConfig is the shared Redis connection used by the cart backend and
// the product cache.
type RedisConfig struct {
	Addr     string `default:"localhost:6379" usage:"Redis address"`
	Password string `usage:"Redis password"`
	DB       int    `default:"0" usage:"Redis database"`
}

// AdminConfig secures the admin product endpoints.
type AdminConfig struct {
	KeyPepper string   `usage:"HMAC pepper for admin API key hashing (FRESHCART_ADMIN_KEY_PEPPER)" flag:"admin-key-pepper"`
	KeyHashes []string `usage:"Hex HMAC-SHA256 hashes of valid admin API keys" flag:"admin-key-hashes"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "FRESHCART",
		Files:     []string{"config.yaml", "/etc/freshcart/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.RecordStore.BaseURL == "" {
		return nil, errors.New("record store URL is required: set FRESHCART_RECORD_STORE_BASE_URL")
	}
	switch cfg.Cart.Backend {
	case "file", "redis":
	default:
		return nil, errors.Errorf("unknown cart backend %q: expected file or redis", cfg.Cart.Backend)
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like PORT to the
// application's FRESHCART_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
	if c.Redis.Addr == "localhost:6379" {
		if v := os.Getenv("REDIS_URL"); v != "" {
			c.Redis.Addr = v
		}
	}
}
