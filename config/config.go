package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"ronlotto/database"
	"ronlotto/domain/entities"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// HTTP configuration
	HTTPAddr string // Listen address of the round and payment endpoints

	// Chain configuration
	RoninRPCURL     string
	RoninChainID    int64
	RoninPrivateKey string // Hex key of the prize wallet, without 0x
	TreasuryAddress string // Optional; ticket payments must be addressed to it when set
	ExplorerTxURL   string // Transaction hashes are appended to this prefix

	// Lottery configuration
	MinTicketPrice  float64              // In RON
	RewardTable     entities.RewardTable // Prize pool per hit count
	RoundDuration   time.Duration
	PollInterval    time.Duration // 0 disables the in-process poller
	ConfirmAttempts int
	ConfirmInterval time.Duration

	// Notification configuration
	DiscordWebhookURL string // Empty disables winner announcements
	NotifyTimeout     time.Duration

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated), empty disables publishing

	// Logging configuration
	LogLevel  string
	LogFormat string // "text" or "json"

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelServiceName          string
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// Load reads configuration from the environment without touching the
// global instance
func Load() (*Config, error) {
	return load()
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	config := &Config{
		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// HTTP
		HTTPAddr: getEnvWithDefault("HTTP_ADDR", ":8080"),

		// Chain
		RoninRPCURL:     getEnvWithDefault("RONIN_RPC_URL", "https://api.roninchain.com/rpc"),
		RoninChainID:    2020,
		RoninPrivateKey: strings.TrimPrefix(os.Getenv("RONIN_PRIVATE_KEY"), "0x"),
		TreasuryAddress: os.Getenv("TREASURY_ADDRESS"),
		ExplorerTxURL:   getEnvWithDefault("EXPLORER_TX_URL", "https://app.roninchain.com/tx/"),

		// Lottery
		MinTicketPrice:  2,
		RewardTable:     entities.DefaultRewardTable(),
		RoundDuration:   15 * time.Minute,
		ConfirmAttempts: 5,
		ConfirmInterval: 5 * time.Second,

		// Notifications
		DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
		NotifyTimeout:     5 * time.Second,

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		// Logging
		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),

		// OpenTelemetry
		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "ronlotto"),
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "otlp"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelExportIntervalMillis: 30000,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if chainID := os.Getenv("RONIN_CHAIN_ID"); chainID != "" {
		parsed, err := strconv.ParseInt(chainID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RONIN_CHAIN_ID: %w", err)
		}
		config.RoninChainID = parsed
	}
	if price := os.Getenv("MIN_TICKET_PRICE"); price != "" {
		parsed, err := strconv.ParseFloat(price, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid MIN_TICKET_PRICE %q", price)
		}
		config.MinTicketPrice = parsed
	}
	if table := os.Getenv("REWARD_TABLE"); table != "" {
		parsed, err := entities.ParseRewardTable(table)
		if err != nil {
			return nil, fmt.Errorf("invalid REWARD_TABLE: %w", err)
		}
		config.RewardTable = parsed
	}
	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MILLIS"); interval != "" {
		parsed, err := strconv.Atoi(interval)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid OTEL_EXPORT_INTERVAL_MILLIS %q", interval)
		}
		config.OTelExportIntervalMillis = parsed
	}
	if attempts := os.Getenv("CONFIRM_ATTEMPTS"); attempts != "" {
		parsed, err := strconv.Atoi(attempts)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid CONFIRM_ATTEMPTS %q", attempts)
		}
		config.ConfirmAttempts = parsed
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"ROUND_DURATION", &config.RoundDuration},
		{"POLL_INTERVAL", &config.PollInterval},
		{"CONFIRM_INTERVAL", &config.ConfirmInterval},
		{"NOTIFY_TIMEOUT", &config.NotifyTimeout},
	}
	for _, d := range durations {
		value := os.Getenv(d.key)
		if value == "" {
			continue
		}
		parsed, err := time.ParseDuration(value)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("invalid %s %q", d.key, value)
		}
		*d.target = parsed
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.RoninPrivateKey == "" {
			return nil, fmt.Errorf("RONIN_PRIVATE_KEY is required")
		}
		if config.RoundDuration <= 0 {
			return nil, fmt.Errorf("ROUND_DURATION must be positive")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsProduction reports whether the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:     "test",
		HTTPAddr:        ":0",
		RoninChainID:    2020,
		MinTicketPrice:  2,
		RewardTable:     entities.DefaultRewardTable(),
		RoundDuration:   15 * time.Minute,
		ConfirmAttempts: 5,
		ConfirmInterval: 0,
		NotifyTimeout:   5 * time.Second,
		LogLevel:        "info",
		LogFormat:       "text",

		OTelServiceName:  "ronlotto-test",
		OTelExporterType: "none",
	}
}
