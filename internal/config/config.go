package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full runtime configuration, loaded from config.yaml, a .env
// file and process environment variables, in ascending precedence.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Ledger LedgerConfig `mapstructure:"ledger"`
	Pools  PoolsConfig  `mapstructure:"pools"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	ListenAddr  string `mapstructure:"listen_addr"`
	Environment string `mapstructure:"environment"` // development or production
}

type AuthConfig struct {
	SessionSecret    string `mapstructure:"session_secret"`
	VerifySignatures bool   `mapstructure:"verify_signatures"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"` // empty runs on in-memory backends
}

type LedgerConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	ProjectID      string        `mapstructure:"project_id"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
}

type PoolsConfig struct {
	SnapshotDir string `mapstructure:"snapshot_dir"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from config.yaml, .env and the environment.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom reads configuration rooted at the given directory.
func LoadFrom(dir string) (*Config, error) {
	godotenv.Load(dir + "/.env")

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		// The file is optional; anything else is a real problem.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("CARDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.environment", "development")
	// Registering the key, even empty, lets AutomaticEnv feed it into
	// Unmarshal.
	v.SetDefault("auth.session_secret", "")
	v.SetDefault("auth.verify_signatures", false)
	v.SetDefault("redis.url", "")
	v.SetDefault("ledger.base_url", "https://cardano-mainnet.blockfrost.io/api/v0")
	v.SetDefault("ledger.project_id", "")
	v.SetDefault("ledger.request_timeout", 30*time.Second)
	v.SetDefault("ledger.max_retries", 3)
	v.SetDefault("pools.snapshot_dir", "data/pools")
	v.SetDefault("log.level", "info")
}

func (c *Config) validate() error {
	if c.Auth.SessionSecret == "" {
		return fmt.Errorf("auth.session_secret is required")
	}
	if c.Ledger.BaseURL == "" {
		return fmt.Errorf("ledger.base_url is required")
	}
	return nil
}

// IsProduction reports whether the server runs with production hardening.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
