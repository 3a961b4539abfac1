package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/huntdb95-cloud/PERSONALAUTO/pkg/logger"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Autosave  AutosaveConfig
	Files     FilesConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
	VIN       VINConfig
	Rabbit    RabbitConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AutosaveConfig selects the durable cache backend that receives debounced writes.
type AutosaveConfig struct {
	Debounce time.Duration
	Key      string
	Backend  string // file|redis|mongo|memory
	Dir      string
}

// FilesConfig selects how Open/Save/Save As resolve user-chosen destinations.
type FilesConfig struct {
	Mode        string // local|minio|none
	Dir         string
	DownloadDir string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type VINConfig struct {
	BaseURL string
	Timeout time.Duration
	RPS     float64
}

type RabbitConfig struct {
	URI   string
	Queue string
}

type RateLimitConfig struct {
	Enabled  bool
	RPS      float64
	Burst    int
	UseRedis bool
	Window   time.Duration
}

// Addr returns host:port for the redis client.
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// LoadConfig loads configuration from environment variables and an optional .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "5020")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("AUTOSAVE_DEBOUNCE_MS", 150)
	v.SetDefault("AUTOSAVE_KEY", "quote_intake_v1")
	v.SetDefault("AUTOSAVE_BACKEND", "file")
	v.SetDefault("AUTOSAVE_DIR", ".intake")
	v.SetDefault("FILES_MODE", "local")
	v.SetDefault("FILES_DIR", "intakes")
	v.SetDefault("DOWNLOAD_DIR", "downloads")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MONGODB_DATABASE", "quote_intake")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("MINIO_BUCKET", "quote-intake")
	v.SetDefault("VIN_BASE_URL", "https://vpic.nhtsa.dot.gov/api/vehicles")
	v.SetDefault("VIN_TIMEOUT", 8)
	v.SetDefault("VIN_RPS", 2.0)
	v.SetDefault("RABBIT_QUEUE", "intake_events")
	v.SetDefault("RATE_LIMIT_RPS", 20.0)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Autosave: AutosaveConfig{
			Debounce: time.Duration(v.GetInt("AUTOSAVE_DEBOUNCE_MS")) * time.Millisecond,
			Key:      v.GetString("AUTOSAVE_KEY"),
			Backend:  strings.ToLower(v.GetString("AUTOSAVE_BACKEND")),
			Dir:      v.GetString("AUTOSAVE_DIR"),
		},
		Files: FilesConfig{
			Mode:        strings.ToLower(v.GetString("FILES_MODE")),
			Dir:         v.GetString("FILES_DIR"),
			DownloadDir: v.GetString("DOWNLOAD_DIR"),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
		VIN: VINConfig{
			BaseURL: strings.TrimRight(v.GetString("VIN_BASE_URL"), "/"),
			Timeout: time.Duration(v.GetInt("VIN_TIMEOUT")) * time.Second,
			RPS:     v.GetFloat64("VIN_RPS"),
		},
		Rabbit: RabbitConfig{
			URI:   v.GetString("RABBIT_URI"),
			Queue: v.GetString("RABBIT_QUEUE"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:      v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:    v.GetInt("RATE_LIMIT_BURST"),
			UseRedis: v.GetBool("RATE_LIMIT_USE_REDIS"),
			Window:   time.Duration(v.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Autosave.Backend {
	case "file", "memory":
	case "redis":
		if c.Redis.Host == "" {
			return fmt.Errorf("AUTOSAVE_BACKEND=redis requires REDIS_HOST")
		}
	case "mongo":
		if c.MongoDB.URI == "" {
			return fmt.Errorf("AUTOSAVE_BACKEND=mongo requires MONGODB_URI")
		}
	default:
		return fmt.Errorf("unknown AUTOSAVE_BACKEND %q", c.Autosave.Backend)
	}
	switch c.Files.Mode {
	case "local", "none":
	case "minio":
		if c.MinIO.Endpoint == "" {
			logger.Warn("FILES_MODE=minio without MINIO_ENDPOINT; file save will be unavailable")
		}
	default:
		return fmt.Errorf("unknown FILES_MODE %q", c.Files.Mode)
	}
	if c.Autosave.Debounce <= 0 {
		return fmt.Errorf("AUTOSAVE_DEBOUNCE_MS must be positive")
	}
	return nil
}
