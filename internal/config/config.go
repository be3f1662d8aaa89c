package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Lookup   LookupConfig
	Server   ServerConfig
	Log      LogConfig
	Cache    CacheConfig
	Database DatabaseConfig
}

type LookupConfig struct {
	DNSTimeout     time.Duration
	DNSLifetime    time.Duration
	Nameserver     string
	TLSTimeout     time.Duration
	WhoisTimeout   time.Duration
	WhoisRateLimit int
	Sequential     bool
	Workers        int
}

type ServerConfig struct {
	Port string
	Mode string
}

type LogConfig struct {
	Level       string
	Development bool
}

type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	MaxIdleConns   int
}

// Load reads config.yaml from . or ./config, then INSPECTOR_* environment
// variables. A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("INSPECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Override with environment variables
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if url := os.Getenv("REDIS_URL"); url != "" {
		cfg.Cache.RedisURL = url
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("lookup.dnstimeout", "5s")
	v.SetDefault("lookup.dnslifetime", "5s")
	v.SetDefault("lookup.nameserver", "")
	v.SetDefault("lookup.tlstimeout", "5s")
	v.SetDefault("lookup.whoistimeout", "5s")
	v.SetDefault("lookup.whoisratelimit", 30)
	v.SetDefault("lookup.sequential", false)
	v.SetDefault("lookup.workers", 4)
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("cache.redisurl", "")
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("database.url", "")
	v.SetDefault("database.maxconnections", 10)
	v.SetDefault("database.maxidleconns", 5)
}
