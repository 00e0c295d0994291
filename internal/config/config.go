// internal/config/config.go
package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	LLM       LLMConfig
	Notify    NotifyConfig
	RateLimit RateLimitConfig
	App       AppConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	APIKey         string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled        bool
	RedisURL       string
	RedisHost      string
	RedisPort      string
	RedisPassword  string
	RedisDB        int
	SupplyTTL      time.Duration
	DashboardTTL   time.Duration
}

// LLMConfig controls the reasoning client: provider ordering, credentials,
// retry policy, and the confidence gate.
type LLMConfig struct {
	// ProviderMode selects provider ordering: "primary", "backup" or "auto"
	// (primary then backup). Providers without credentials are skipped.
	ProviderMode string

	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string

	RequestTimeout time.Duration

	// RetryAttempts bounds retries within a single provider before failover.
	RetryAttempts int
	RetryBackoff  time.Duration

	// ConfidenceThreshold gates auto-execution vs. pending review.
	ConfidenceThreshold float64

	// DefaultUnitPrice is used for cost estimates when the data supplier
	// carries no unit price.
	DefaultUnitPrice float64
}

type NotifyConfig struct {
	SlackWebhookURL string
	TelegramToken   string
	TelegramChatID  string
	Timeout         time.Duration
}

type RateLimitConfig struct {
	Enabled           bool
	TriggerPerMinute  int
	BatchPerMinute    int
}

type AppConfig struct {
	DataDir string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 60)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("API_KEY", "")
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "inventory_agent")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_SUPPLY_TTL_SECONDS", 300)
		viper.SetDefault("CACHE_DASHBOARD_TTL_SECONDS", 60)
		viper.SetDefault("LLM_PROVIDER", "auto")
		viper.SetDefault("GEMINI_API_KEY", "")
		viper.SetDefault("GEMINI_MODEL", "gemini-1.5-pro")
		viper.SetDefault("GROQ_API_KEY", "")
		viper.SetDefault("GROQ_MODEL", "llama-3.3-70b-versatile")
		viper.SetDefault("LLM_REQUEST_TIMEOUT_SECONDS", 30)
		viper.SetDefault("LLM_RETRY_ATTEMPTS", 2)
		viper.SetDefault("LLM_RETRY_BACKOFF_MS", 1000)
		viper.SetDefault("LLM_CONFIDENCE_THRESHOLD", 0.6)
		viper.SetDefault("DEFAULT_UNIT_PRICE", 100.0)
		viper.SetDefault("SLACK_WEBHOOK_URL", "")
		viper.SetDefault("TELEGRAM_BOT_TOKEN", "")
		viper.SetDefault("TELEGRAM_CHAT_ID", "")
		viper.SetDefault("NOTIFY_TIMEOUT_SECONDS", 10)
		viper.SetDefault("RATE_LIMIT_ENABLED", true)
		viper.SetDefault("RATE_LIMIT_TRIGGER_PER_MINUTE", 10)
		viper.SetDefault("RATE_LIMIT_BATCH_PER_MINUTE", 5)
		viper.SetDefault("APP_DATA_DIR", "./data")

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
				APIKey:         viper.GetString("API_KEY"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:       viper.GetBool("CACHE_ENABLED"),
				RedisURL:      viper.GetString("REDIS_URL"),
				RedisHost:     viper.GetString("REDIS_HOST"),
				RedisPort:     viper.GetString("REDIS_PORT"),
				RedisPassword: viper.GetString("REDIS_PASSWORD"),
				RedisDB:       viper.GetInt("REDIS_DB"),
				SupplyTTL:     time.Duration(viper.GetInt("CACHE_SUPPLY_TTL_SECONDS")) * time.Second,
				DashboardTTL:  time.Duration(viper.GetInt("CACHE_DASHBOARD_TTL_SECONDS")) * time.Second,
			},
			LLM: LLMConfig{
				ProviderMode:        viper.GetString("LLM_PROVIDER"),
				GeminiAPIKey:        viper.GetString("GEMINI_API_KEY"),
				GeminiModel:         viper.GetString("GEMINI_MODEL"),
				GroqAPIKey:          viper.GetString("GROQ_API_KEY"),
				GroqModel:           viper.GetString("GROQ_MODEL"),
				RequestTimeout:      time.Duration(viper.GetInt("LLM_REQUEST_TIMEOUT_SECONDS")) * time.Second,
				RetryAttempts:       viper.GetInt("LLM_RETRY_ATTEMPTS"),
				RetryBackoff:        time.Duration(viper.GetInt("LLM_RETRY_BACKOFF_MS")) * time.Millisecond,
				ConfidenceThreshold: viper.GetFloat64("LLM_CONFIDENCE_THRESHOLD"),
				DefaultUnitPrice:    viper.GetFloat64("DEFAULT_UNIT_PRICE"),
			},
			Notify: NotifyConfig{
				SlackWebhookURL: viper.GetString("SLACK_WEBHOOK_URL"),
				TelegramToken:   viper.GetString("TELEGRAM_BOT_TOKEN"),
				TelegramChatID:  viper.GetString("TELEGRAM_CHAT_ID"),
				Timeout:         time.Duration(viper.GetInt("NOTIFY_TIMEOUT_SECONDS")) * time.Second,
			},
			RateLimit: RateLimitConfig{
				Enabled:          viper.GetBool("RATE_LIMIT_ENABLED"),
				TriggerPerMinute: viper.GetInt("RATE_LIMIT_TRIGGER_PER_MINUTE"),
				BatchPerMinute:   viper.GetInt("RATE_LIMIT_BATCH_PER_MINUTE"),
			},
			App: AppConfig{
				DataDir: viper.GetString("APP_DATA_DIR"),
			},
		}
	})

	return instance
}
