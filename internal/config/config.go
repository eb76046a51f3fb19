package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `yaml:"app" mapstructure:"app"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Redis    RedisConfig    `yaml:"redis" mapstructure:"redis"`
	Auth     AuthConfig     `yaml:"auth" mapstructure:"auth"`
	Upstream UpstreamConfig `yaml:"upstream" mapstructure:"upstream"`
	Credits  CreditsConfig  `yaml:"credits" mapstructure:"credits"`
	Refresh  RefreshConfig  `yaml:"refresh" mapstructure:"refresh"`
}

type AppConfig struct {
	Environment    string   `yaml:"environment" mapstructure:"environment"`
	Port           string   `yaml:"port" mapstructure:"port"`
	LogLevel       string   `yaml:"log_level" mapstructure:"log_level"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimit      int      `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per minute
}

type DatabaseConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     string `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DBName   string `yaml:"db_name" mapstructure:"db_name"`
	SSLMode  string `yaml:"ssl_mode" mapstructure:"ssl_mode"`
	MaxConns int    `yaml:"max_conns" mapstructure:"max_conns"`
}

type RedisConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     string `yaml:"port" mapstructure:"port"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours" mapstructure:"token_ttl_hours"`
}

type UpstreamConfig struct {
	VerifierBaseURL  string `yaml:"verifier_base_url" mapstructure:"verifier_base_url"`
	DefiLlamaBaseURL string `yaml:"defillama_base_url" mapstructure:"defillama_base_url"`
}

type CreditsConfig struct {
	InitialBalance int `yaml:"initial_balance" mapstructure:"initial_balance"`
}

type RefreshConfig struct {
	Enabled   bool     `yaml:"enabled" mapstructure:"enabled"`
	Schedule  string   `yaml:"schedule" mapstructure:"schedule"` // cron spec
	Chains    []string `yaml:"chains" mapstructure:"chains"`
	Protocols []string `yaml:"protocols" mapstructure:"protocols"`
	MinAPY    float64  `yaml:"min_apy" mapstructure:"min_apy"`
	MinTVL    float64  `yaml:"min_tvl" mapstructure:"min_tvl"`
}

func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Database.User = getEnv("DB_USER", config.Database.User)
	config.Database.Password = getEnv("DB_PASSWORD", config.Database.Password)
	config.Database.DBName = getEnv("DB_NAME", config.Database.DBName)
	config.Database.Port = getEnv("DB_PORT", config.Database.Port)
	config.Redis.Password = getEnv("REDIS_PASSWORD", config.Redis.Password)
	config.Auth.JWTSecret = getEnv("JWT_SECRET", config.Auth.JWTSecret)
	config.Upstream.VerifierBaseURL = getEnv("VERIFIER_BASE_URL", config.Upstream.VerifierBaseURL)

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func applyDefaults(c *Config) {
	if c.App.Port == "" {
		c.App.Port = "8080"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.RateLimit == 0 {
		c.App.RateLimit = 60
	}
	if c.Auth.TokenTTLHours == 0 {
		c.Auth.TokenTTLHours = 24
	}
	if c.Credits.InitialBalance == 0 {
		c.Credits.InitialBalance = 10
	}
	if c.Refresh.Schedule == "" {
		c.Refresh.Schedule = "*/15 * * * *"
	}
}

func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}

	if c.Database.Port == "" {
		return fmt.Errorf("database.port is required")
	}

	if c.Database.DBName == "" {
		return fmt.Errorf("database.db_name is required")
	}

	if c.Database.Password == "" {
		return fmt.Errorf("database.password is required")
	}

	if c.Upstream.VerifierBaseURL == "" {
		return fmt.Errorf("upstream.verifier_base_url is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	// Redis обов'язковий лише для production
	if c.App.Environment == "production" {
		if c.Redis.Host == "" {
			return fmt.Errorf("redis.host is required for production")
		}

		if c.Redis.Port == "" {
			return fmt.Errorf("redis.port is required for production")
		}
	}

	return nil
}

func (c *Config) SafeString() string {
	return fmt.Sprintf(`Config:
		Environment: %s
		Port: %s
		Log Level: %s
		Rate Limit: %d/min

		Database:
			Host: %s:%s
			User: %s
			Database: %s
			SSL Mode: %s
			Max Connections: %d

		Redis:
			Host: %s:%s
			Database: %d

		Auth:
			JWT Secret: %s
			Token TTL: %dh

		Upstream:
			Verifier: %s
			DeFiLlama: %s

		Credits:
			Initial Balance: %d

		Refresh:
			Enabled: %t
			Schedule: %s
			Chains: %v
			Protocols: %v
			Min APY: %.2f%%
			Min TVL: $%.0f
		`,
		c.App.Environment,
		c.App.Port,
		c.App.LogLevel,
		c.App.RateLimit,
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.DBName,
		c.Database.SSLMode,
		c.Database.MaxConns,
		c.Redis.Host,
		c.Redis.Port,
		c.Redis.DB,
		maskSecret(c.Auth.JWTSecret),
		c.Auth.TokenTTLHours,
		c.Upstream.VerifierBaseURL,
		c.Upstream.DefiLlamaBaseURL,
		c.Credits.InitialBalance,
		c.Refresh.Enabled,
		c.Refresh.Schedule,
		c.Refresh.Chains,
		c.Refresh.Protocols,
		c.Refresh.MinAPY,
		c.Refresh.MinTVL,
	)
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	return value
}

func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}

	length := len(s)
	if length <= 8 {
		return strings.Repeat("*", length)
	}

	return s[:4] + "..." + s[length-4:]
}
