package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Shopify ShopifyConfig
	Redis   RedisConfig
	CORS    CORSConfig
	Sync    SyncConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type ShopifyConfig struct {
	StoreDomain     string
	APIVersion      string
	StorefrontToken string
	RequestTimeout  time.Duration
	RetryBackoff    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type SyncConfig struct {
	Enabled  bool
	CronSpec string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Shopify: ShopifyConfig{
			StoreDomain:     getEnv("SHOPIFY_STORE_DOMAIN", "q71pur-g1.myshopify.com"),
			APIVersion:      getEnv("SHOPIFY_API_VERSION", "2025-07"),
			StorefrontToken: getEnv("SHOPIFY_STOREFRONT_TOKEN", ""),
			RequestTimeout:  parseDuration(getEnv("SHOPIFY_REQUEST_TIMEOUT", "15s")),
			RetryBackoff:    parseDuration(getEnv("SHOPIFY_RETRY_BACKOFF", "500ms")),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0")),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Sync: SyncConfig{
			Enabled:  getEnv("CART_SYNC_ENABLED", "true") == "true",
			CronSpec: getEnv("CART_SYNC_CRON", "*/15 * * * *"),
		},
	}

	return config, nil
}

// StorefrontURL builds the Storefront API GraphQL endpoint.
func (c *ShopifyConfig) StorefrontURL() string {
	return fmt.Sprintf("https://%s/api/%s/graphql.json", c.StoreDomain, c.APIVersion)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default 15s", s)
		return 15 * time.Second
	}
	return duration
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using 0", s)
		return 0
	}
	return n
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
