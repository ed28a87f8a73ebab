package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string         `yaml:"environment" default:"development" validate:"oneof=development staging production test"`
	Log         LogConfig      `yaml:"log"`
	Provider    ProviderConfig `yaml:"provider"`
	Batch       BatchConfig    `yaml:"batch"`
	Backtest    BacktestConfig `yaml:"backtest"`
	Output      OutputConfig   `yaml:"output"`
	Cache       CacheConfig    `yaml:"cache"`
	ClickHouse  CHConfig       `yaml:"clickhouse"`
	Kafka       KafkaConfig    `yaml:"kafka"`
	Server      ServerConfig   `yaml:"server"`
	Metrics     MetricsConfig  `yaml:"metrics"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error fatal panic"`
	Format string `yaml:"format" default:"console" validate:"oneof=json console"`
	Output string `yaml:"output" default:"stderr" validate:"required"`

	// Digest ships deduplicated warn/error events to kafka.topics.logs.
	Digest         bool          `yaml:"digest"`
	DigestInterval time.Duration `yaml:"digest_interval" default:"30s"`
}

type ProviderConfig struct {
	BaseURL        string        `yaml:"base_url" default:"https://query1.finance.yahoo.com" validate:"required,url"`
	SymbolSuffix   string        `yaml:"symbol_suffix" default:".NS"`
	LookbackMonths int           `yaml:"lookback_months" default:"24" validate:"gte=1,lte=240"`
	Interval       string        `yaml:"interval" default:"1d" validate:"oneof=1d 1wk 1mo"`
	MinInterval    time.Duration `yaml:"min_interval" default:"500ms"`
	Timeout        time.Duration `yaml:"timeout" default:"15s"`
	Retries        int           `yaml:"retries" default:"1" validate:"gte=0,lte=5"`
	RetryBackoff   time.Duration `yaml:"retry_backoff" default:"1s"`
	UserAgent      string        `yaml:"user_agent" default:"Mozilla/5.0 (compatible; PairScope/1.0)"`
	Breaker        struct {
		FailureThreshold uint32        `yaml:"failure_threshold" default:"5" validate:"gte=1"`
		OpenTimeout      time.Duration `yaml:"open_timeout" default:"30s"`
	} `yaml:"breaker"`
}

type BatchConfig struct {
	MaxPairs    int    `yaml:"max_pairs" default:"100" validate:"gte=1"`
	SymbolsFile string `yaml:"symbols_file" default:"symbols.csv"`
}

type BacktestConfig struct {
	MaxPairs  int    `yaml:"max_pairs" default:"25" validate:"gte=1"`
	PairsFile string `yaml:"pairs_file" default:"pairs.csv"`
	M2Policy  string `yaml:"m2_policy" default:"bounded" validate:"oneof=bounded scan"`
}

type OutputConfig struct {
	Dir string `yaml:"dir" default:"." validate:"required"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Type    string        `yaml:"type" default:"memory" validate:"oneof=memory redis layered"`
	TTL     time.Duration `yaml:"ttl" default:"6h"`
	Memory  struct {
		MaxSize int           `yaml:"max_size" default:"512" validate:"gte=1"`
		TTL     time.Duration `yaml:"ttl" default:"15m"`
	} `yaml:"memory"`
	Redis struct {
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"pairscope"`
	} `yaml:"redis"`
}

type CHConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Host         string        `yaml:"host" default:"localhost"`
	Port         int           `yaml:"port" default:"9000"`
	Database     string        `yaml:"database" default:"pairscope"`
	User         string        `yaml:"user" default:"default"`
	Password     string        `yaml:"password"`
	UseHTTP      bool          `yaml:"use_http"`
	AsyncInsert  bool          `yaml:"async_insert"`
	DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
}

type KafkaConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers" validate:"required_if=Enabled true"`
	Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
	RequiredAcks int           `yaml:"required_acks" default:"-1"`
	MaxAttempts  int           `yaml:"max_attempts" default:"3"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	BatchSize    int           `yaml:"batch_size" default:"100" validate:"gte=1"`
	BatchBytes   int           `yaml:"batch_bytes" default:"1048576" validate:"gte=1"`
	Linger       time.Duration `yaml:"linger" default:"50ms"`
	Topics       struct {
		Scan     string `yaml:"scan" default:"pairscope.scan"`
		Backtest string `yaml:"backtest" default:"pairscope.backtest"`
		Trades   string `yaml:"trades" default:"pairscope.trades"`
		Logs     string `yaml:"logs" default:"pairscope.logs"`
	} `yaml:"topics"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	CORS            bool          `yaml:"cors" default:"true"`
	Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

var validate = validator.New()

// Default returns a configuration with every default applied.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PAIRSCOPE_OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v, ok := os.LookupEnv("PAIRSCOPE_SYMBOL_SUFFIX"); ok {
		c.Provider.SymbolSuffix = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Cache.Redis.Host = host
		if ok {
			p, err := strconv.Atoi(port)
			if err != nil {
				return nil, fmt.Errorf("REDIS_ADDR port: %w", err)
			}
			c.Cache.Redis.Port = p
		}
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Provider.MinInterval < 0 {
		return fmt.Errorf("provider.min_interval must not be negative")
	}
	return nil
}
