package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Identity  IdentityConfig  `yaml:"identity"`
	Cache     CacheConfig     `yaml:"cache"`
	Redis     RedisConfig     `yaml:"redis"`
	Mail      MailConfig      `yaml:"mail"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test

	// CORSOrigins empty allows every origin.
	CORSOrigins []string `yaml:"cors_origins"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

// IdentityConfig points at the external identity provider. Session tokens
// are verified with JWTPublicKey (RS256, PEM) or JWTSecret (HS256);
// user lookups go through APIURL authenticated with SecretKey.
type IdentityConfig struct {
	APIURL            string   `yaml:"api_url"`
	SecretKey         string   `yaml:"secret_key"`
	JWTPublicKey      string   `yaml:"jwt_public_key"`
	JWTSecret         string   `yaml:"jwt_secret"`
	Issuer            string   `yaml:"issuer"`
	AuthorizedParties []string `yaml:"authorized_parties"`
	TimeoutSeconds    int      `yaml:"timeout_seconds"`
}

// CacheConfig controls caching of identity lookups.
type CacheConfig struct {
	Driver     string `yaml:"driver"` // memory, redis, none
	Size       int    `yaml:"size"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MailConfig for invite notifications
type MailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	UseTLS   bool   `yaml:"use_tls"`
	AppURL   string `yaml:"app_url"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		// Unmarshal over the defaults so omitted keys keep them.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.overrideFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8000",
			Mode: "debug",
		},
		Log: LogConfig{
			Level: "info",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "teamtask.db",
		},
		Identity: IdentityConfig{
			APIURL:         "https://api.clerk.com/v1",
			TimeoutSeconds: 10,
		},
		Cache: CacheConfig{
			Driver:     "memory",
			Size:       1024,
			TTLSeconds: 300,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Mail: MailConfig{
			Port: 587,
		},
		RateLimit: RateLimitConfig{
			RPS:   5,
			Burst: 10,
		},
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	switch c.Cache.Driver {
	case "memory", "redis", "none", "":
	default:
		return fmt.Errorf("unsupported cache driver: %s", c.Cache.Driver)
	}
	if c.Identity.JWTPublicKey == "" && c.Identity.JWTSecret == "" {
		return fmt.Errorf("identity: jwt_public_key or jwt_secret is required")
	}
	return nil
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Server.CORSOrigins = append(c.Server.CORSOrigins, o)
			}
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if apiURL := os.Getenv("IDENTITY_API_URL"); apiURL != "" {
		c.Identity.APIURL = apiURL
	}
	if key := os.Getenv("CLERK_SECRET_KEY"); key != "" {
		c.Identity.SecretKey = key
	}
	if pem := os.Getenv("IDENTITY_JWT_PUBLIC_KEY"); pem != "" {
		c.Identity.JWTPublicKey = pem
	}
	if secret := os.Getenv("IDENTITY_JWT_SECRET"); secret != "" {
		c.Identity.JWTSecret = secret
	}
	if issuer := os.Getenv("IDENTITY_ISSUER"); issuer != "" {
		c.Identity.Issuer = issuer
	}
	if driver := os.Getenv("CACHE_DRIVER"); driver != "" {
		c.Cache.Driver = driver
	}
	if host := os.Getenv("SMTP_HOST"); host != "" {
		c.Mail.Host = host
	}
	if password := os.Getenv("SMTP_PASSWORD"); password != "" {
		c.Mail.Password = password
	}
	// Redis URL override (format: redis://:password@host:port/db)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Cache.Driver = "redis"
		c.parseRedisURL(redisURL)
	}
}

// parseRedisURL parses a Redis URL and sets config values
// Format: redis://:password@host:port/db
func (c *Config) parseRedisURL(redisURL string) {
	url := strings.TrimPrefix(redisURL, "redis://")

	if atIdx := strings.Index(url, "@"); atIdx != -1 {
		authPart := url[:atIdx]
		url = url[atIdx+1:]
		// Password format: :password or user:password
		if colonIdx := strings.Index(authPart, ":"); colonIdx != -1 {
			c.Redis.Password = authPart[colonIdx+1:]
		}
	}

	if slashIdx := strings.LastIndex(url, "/"); slashIdx != -1 {
		dbStr := url[slashIdx+1:]
		url = url[:slashIdx]
		if db, err := strconv.Atoi(dbStr); err == nil {
			c.Redis.DB = db
		}
	}

	c.Redis.Addr = url
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
