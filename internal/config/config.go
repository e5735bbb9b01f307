package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Geocoder GeocoderConfig
	Cache    CacheConfig
	Resolver ResolverConfig
	Log      LogConfig
	Worker   WorkerConfig
	Tracing  TracingConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// GeocoderConfig - настройки провайдера геокодирования.
// API ключ приходит из конфигурации, резолвер его не читает
type GeocoderConfig struct {
	Provider       string
	AzureKey       string
	AzureBaseURL   string
	GeoapifyKey    string
	GeoapifyURL    string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	RateLimit      float64
	RateBurst      int
	UserAgent      string
}

type CacheConfig struct {
	Backend   string
	Dir       string
	Precision int
	// TTL == 0 - записи не устаревают
	TTL time.Duration
}

type ResolverConfig struct {
	Concurrency int
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled       bool
	ConsumerGroup string
	BatchSize     int
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Exporter    string // stdout | otlp
	Endpoint    string
	SampleRatio float64
}

// Load читает .env из рабочей директории и переменные окружения
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom читает конфигурацию из указанного файла; отсутствие файла не ошибка
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("API_HOST"),
			Port: v.GetInt("API_PORT"),
			Env:  v.GetString("API_ENV"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Geocoder: GeocoderConfig{
			Provider:       strings.ToLower(v.GetString("GEOCODER_PROVIDER")),
			AzureKey:       v.GetString("AZURE_MAPS_KEY"),
			AzureBaseURL:   v.GetString("AZURE_MAPS_BASE_URL"),
			GeoapifyKey:    v.GetString("GEOAPIFY_KEY"),
			GeoapifyURL:    v.GetString("GEOAPIFY_BASE_URL"),
			ConnectTimeout: time.Duration(v.GetInt("GEOCODER_CONNECT_TIMEOUT")) * time.Second,
			RequestTimeout: time.Duration(v.GetInt("GEOCODER_REQUEST_TIMEOUT")) * time.Second,
			RateLimit:      v.GetFloat64("GEOCODER_RATE_LIMIT"),
			RateBurst:      v.GetInt("GEOCODER_RATE_BURST"),
			UserAgent:      v.GetString("GEOCODER_USER_AGENT"),
		},
		Cache: CacheConfig{
			Backend:   strings.ToLower(v.GetString("CACHE_BACKEND")),
			Dir:       v.GetString("CACHE_DIR"),
			Precision: v.GetInt("CACHE_PRECISION"),
			TTL:       time.Duration(v.GetInt("CACHE_TTL")) * time.Second,
		},
		Resolver: ResolverConfig{
			Concurrency: v.GetInt("RESOLVER_CONCURRENCY"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:       v.GetBool("WORKER_ENABLED"),
			ConsumerGroup: v.GetString("WORKER_CONSUMER_GROUP"),
			BatchSize:     v.GetInt("WORKER_BATCH_SIZE"),
		},
		Tracing: TracingConfig{
			Enabled:     v.GetBool("TRACING_ENABLED"),
			ServiceName: v.GetString("TRACING_SERVICE_NAME"),
			Exporter:    strings.ToLower(v.GetString("TRACING_EXPORTER")),
			Endpoint:    v.GetString("TRACING_OTLP_ENDPOINT"),
			SampleRatio: v.GetFloat64("TRACING_SAMPLE_RATIO"),
		},
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Geocoder.Provider == "" {
		c.Geocoder.Provider = "azure"
	}
	if c.Geocoder.AzureBaseURL == "" {
		c.Geocoder.AzureBaseURL = "https://atlas.microsoft.com"
	}
	if c.Geocoder.GeoapifyURL == "" {
		c.Geocoder.GeoapifyURL = "https://api.geoapify.com"
	}
	if c.Geocoder.ConnectTimeout == 0 {
		c.Geocoder.ConnectTimeout = 10 * time.Second
	}
	if c.Geocoder.RequestTimeout == 0 {
		c.Geocoder.RequestTimeout = 30 * time.Second
	}
	if c.Geocoder.RateLimit == 0 {
		c.Geocoder.RateLimit = 10
	}
	if c.Geocoder.RateBurst == 0 {
		c.Geocoder.RateBurst = 20
	}
	if c.Geocoder.UserAgent == "" {
		c.Geocoder.UserAgent = "boundary-microservice/1.0"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "file"
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "./data/boundary-cache"
	}
	if c.Cache.Precision == 0 {
		c.Cache.Precision = 4
	}
	if c.Resolver.Concurrency == 0 {
		c.Resolver.Concurrency = 8
	}
	if c.Worker.ConsumerGroup == "" {
		c.Worker.ConsumerGroup = "boundary-prefetch-workers"
	}
	if c.Worker.BatchSize == 0 {
		c.Worker.BatchSize = 20
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "boundary-microservice"
	}
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = "stdout"
	}
	if c.Tracing.SampleRatio <= 0 || c.Tracing.SampleRatio > 1 {
		c.Tracing.SampleRatio = 1
	}
}

// Validate проверяет значения, для которых нет разумного значения по умолчанию
func (c *Config) Validate() error {
	switch c.Geocoder.Provider {
	case "azure", "geoapify":
	default:
		return fmt.Errorf("unknown geocoder provider %q", c.Geocoder.Provider)
	}
	switch c.Cache.Backend {
	case "file", "redis", "postgres":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Precision < 0 || c.Cache.Precision > 8 {
		return fmt.Errorf("cache precision must be between 0 and 8, got %d", c.Cache.Precision)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	return nil
}

// APIKey возвращает ключ выбранного провайдера
func (c *Config) APIKey() string {
	if c.Geocoder.Provider == "geoapify" {
		return c.Geocoder.GeoapifyKey
	}
	return c.Geocoder.AzureKey
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
